// group_test.go: Tests for group resolution and extends chains
//
// Copyright (c) 2025 AGILira
// Series: AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package herald

import (
	"context"
	"reflect"
	"strings"
	"testing"
)

func newTestGroup(t *testing.T, files map[string]string) *Group {
	t.Helper()
	return &Group{
		Name: "Tests",
		Root: "/work",
		fs:   newMemFS(t, files),
	}
}

func TestGroupResolveOrderAndDuplicates(t *testing.T) {
	g := newTestGroup(t, map[string]string{
		"/work/vendor/jquery.js":       "",
		"/work/src/a.js":               "",
		"/work/src/b.js":               "",
		"/work/test/helper.js":         "",
		"/work/test/a-test.js":         "",
		"/work/test/browser/b-test.js": "",
	})
	g.Libs = []string{"vendor/jquery.js"}
	g.Sources = []string{"src/b.js", "src/*.js"}
	g.TestHelpers = []string{"test/helper.js", "missing/**/*.js"}
	g.Tests = []string{"test/**/*.js"}

	rs, err := g.Resolve(context.Background())
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}

	want := []string{
		"vendor/jquery.js",
		"src/b.js",
		"src/a.js",
		"test/helper.js",
		"test/a-test.js",
		"test/browser/b-test.js",
	}
	if got := rs.LoadPath(); !reflect.DeepEqual(got, want) {
		t.Errorf("load path = %v, want %v", got, want)
	}

	helper, ok := rs.Get("test/helper.js")
	if !ok || helper.Kind != KindTestHelper {
		t.Errorf("test/helper.js should stay a test helper, got %+v", helper)
	}
	if len(rs.Tests()) != 2 || len(rs.Sources()) != 2 {
		t.Errorf("got %d tests and %d sources, want 2 and 2", len(rs.Tests()), len(rs.Sources()))
	}
}

func TestGroupResolveDirectoryEntry(t *testing.T) {
	g := newTestGroup(t, map[string]string{
		"/work/lib/z.js":        "",
		"/work/lib/nested/a.js": "",
	})
	g.Sources = []string{"lib"}

	rs, err := g.Resolve(context.Background())
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	want := []string{"lib/nested/a.js", "lib/z.js"}
	if got := rs.LoadPath(); !reflect.DeepEqual(got, want) {
		t.Errorf("load path = %v, want %v", got, want)
	}
}

func TestResourceSetGet(t *testing.T) {
	g := newTestGroup(t, map[string]string{"/work/src/a.js": ""})
	g.Sources = []string{"src/a.js"}

	rs, err := g.Resolve(context.Background())
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}

	for _, key := range []string{"src/a.js", "./src/a.js", "/work/src/a.js"} {
		r, ok := rs.Get(key)
		if !ok {
			t.Errorf("Get(%q) found nothing", key)
			continue
		}
		if r.AbsPath != "/work/src/a.js" || r.Kind != KindSource {
			t.Errorf("Get(%q) = %+v", key, r)
		}
	}
	if _, ok := rs.Get("src/b.js"); ok {
		t.Error("Get should miss unknown paths")
	}
}

func TestGroupResolveCanceled(t *testing.T) {
	g := newTestGroup(t, map[string]string{"/work/src/a.js": ""})
	g.Sources = []string{"src/a.js"}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := g.Resolve(ctx); err == nil {
		t.Error("Resolve with a canceled context should fail")
	}
}

func TestGroupSetTestFilter(t *testing.T) {
	g := &Group{Root: "/work/project"}
	g.SetTestFilter("/work", []string{"project/test/a.js", "/work/project/test/other/**"})

	want := []string{"test/a.js", "test/other/**"}
	if got := g.TestFilter(); !reflect.DeepEqual(got, want) {
		t.Errorf("TestFilter() = %v, want %v", got, want)
	}
}

func TestGroupString(t *testing.T) {
	if got := (&Group{Name: "Unit"}).String(); got != "Unit" {
		t.Errorf("String() = %q", got)
	}
	if got := (&Group{Name: "Unit", Environment: "node"}).String(); got != "Unit (node)" {
		t.Errorf("String() = %q", got)
	}
}

func TestResourceKindString(t *testing.T) {
	kinds := map[ResourceKind]string{
		KindLib:        "libs",
		KindSource:     "sources",
		KindTestHelper: "test_helpers",
		KindTest:       "tests",
	}
	for kind, want := range kinds {
		if kind.String() != want {
			t.Errorf("%d.String() = %q, want %q", kind, kind.String(), want)
		}
	}
}

func TestBuildGroupsExtends(t *testing.T) {
	file := &ConfigFile{
		Path: "/work/buster.yaml",
		Name: "buster.yaml",
		Specs: []GroupSpec{
			{Name: "Base", Environment: "node", RootPath: "lib", Libs: []string{"vendor/a.js"}, Tests: []string{"test/base.js"}},
			{Name: "Node tests", Extends: "Base", Tests: []string{"test/node.js"}},
			{Name: "Browser tests", Extends: "Node tests", Environment: "browser"},
		},
	}

	groups, err := buildGroups(file, newMemFS(t, nil), nil)
	if err != nil {
		t.Fatalf("buildGroups failed: %v", err)
	}

	node := groups[1]
	if node.Environment != "node" || node.Root != "/work/lib" {
		t.Errorf("Node tests inherited env %q and root %q", node.Environment, node.Root)
	}
	if !reflect.DeepEqual(node.Libs, []string{"vendor/a.js"}) {
		t.Errorf("Node tests libs = %v", node.Libs)
	}
	if !reflect.DeepEqual(node.Tests, []string{"test/base.js", "test/node.js"}) {
		t.Errorf("Node tests tests = %v, want parent patterns first", node.Tests)
	}

	browser := groups[2]
	if browser.Environment != "browser" {
		t.Errorf("Browser tests environment = %q, own value should win", browser.Environment)
	}
	if !reflect.DeepEqual(browser.Tests, []string{"test/base.js", "test/node.js"}) {
		t.Errorf("Browser tests tests = %v", browser.Tests)
	}
	if !reflect.DeepEqual(file.Specs[1].Tests, []string{"test/node.js"}) {
		t.Error("flattening must not modify the declared specs")
	}
}

func TestBuildGroupsExtendsErrors(t *testing.T) {
	tests := []struct {
		name  string
		specs []GroupSpec
		want  string
	}{
		{
			"cycle",
			[]GroupSpec{{Name: "A", Extends: "B"}, {Name: "B", Extends: "A"}},
			`group "A" has a cyclic extends chain: A -> B -> A`,
		},
		{
			"self",
			[]GroupSpec{{Name: "A", Extends: "A"}},
			`group "A" has a cyclic extends chain: A -> A`,
		},
		{
			"unknown parent",
			[]GroupSpec{{Name: "A", Extends: "Nope"}},
			`group "A" extends unknown group "Nope"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			file := &ConfigFile{Path: "/work/buster.yaml", Name: "buster.yaml", Specs: tt.specs}
			_, err := buildGroups(file, newMemFS(t, nil), nil)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error = %v, want %q", err, tt.want)
			}
		})
	}
}
