// group.go: Configuration groups and their resolved file sets
//
// Copyright (c) 2025 AGILira
// Series: AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package herald

import (
	"context"
	"fmt"
	"path"
	"path/filepath"
	"strings"

	"github.com/agilira/go-errors"
	"github.com/agilira/herald/internal/fsutil"
	"github.com/spf13/afero"
)

// GroupSpec is a group definition as written in a configuration file.
type GroupSpec struct {
	Name        string
	Environment string
	RootPath    string
	Libs        []string
	Sources     []string
	TestHelpers []string
	Tests       []string
	Extends     string
}

// Group is a loaded configuration group. Patterns are relative to Root.
type Group struct {
	Name        string
	Environment string
	// Root is the absolute directory patterns are resolved against.
	Root        string
	Libs        []string
	Sources     []string
	TestHelpers []string
	Tests       []string

	// ConfigFile is the file the group was declared in.
	ConfigFile *ConfigFile

	testFilter []string
	fs         afero.Fs
	logger     *StdioLogger
}

// String renders "Name (environment)", or just the name without one.
func (g *Group) String() string {
	if g.Environment == "" {
		return g.Name
	}
	return g.Name + " (" + g.Environment + ")"
}

// TestFilter returns the root-relative patterns narrowing the tests.
func (g *Group) TestFilter() []string { return g.testFilter }

// SetTestFilter narrows Tests to files matching patterns. Patterns are
// interpreted relative to dir and normalised relative to Root.
func (g *Group) SetTestFilter(dir string, patterns []string) {
	g.testFilter = nil
	for _, p := range patterns {
		g.testFilter = append(g.testFilter, fsutil.RelSlash(g.Root, fsutil.Abs(dir, p)))
	}
}

// ResourceKind tells which group list a resource came from.
type ResourceKind int

const (
	KindLib ResourceKind = iota
	KindSource
	KindTestHelper
	KindTest
)

// String returns the configuration key of the kind.
func (k ResourceKind) String() string {
	switch k {
	case KindLib:
		return "libs"
	case KindSource:
		return "sources"
	case KindTestHelper:
		return "test_helpers"
	case KindTest:
		return "tests"
	default:
		return "unknown"
	}
}

// Resource is a single resolved file.
type Resource struct {
	// Path is relative to the group root, slash-separated.
	Path    string
	AbsPath string
	Kind    ResourceKind
}

// ResourceSet is the ordered, duplicate-free result of resolving a group.
type ResourceSet struct {
	Root      string
	resources []*Resource
	byPath    map[string]*Resource
}

func newResourceSet(root string) *ResourceSet {
	return &ResourceSet{Root: root, byPath: make(map[string]*Resource)}
}

func (rs *ResourceSet) add(abs string, kind ResourceKind) bool {
	rel := fsutil.RelSlash(rs.Root, abs)
	if _, ok := rs.byPath[rel]; ok {
		return false
	}
	r := &Resource{Path: rel, AbsPath: abs, Kind: kind}
	rs.resources = append(rs.resources, r)
	rs.byPath[rel] = r
	return true
}

// LoadPath returns every resource path in load order: libs, sources,
// test helpers, tests.
func (rs *ResourceSet) LoadPath() []string {
	paths := make([]string, len(rs.resources))
	for i, r := range rs.resources {
		paths[i] = r.Path
	}
	return paths
}

// Get looks a resource up by root-relative or absolute path.
func (rs *ResourceSet) Get(p string) (*Resource, bool) {
	if filepath.IsAbs(p) {
		p = fsutil.RelSlash(rs.Root, p)
	}
	r, ok := rs.byPath[path.Clean(filepath.ToSlash(p))]
	return r, ok
}

// Len returns the number of resources.
func (rs *ResourceSet) Len() int { return len(rs.resources) }

// Resources returns all resources in load order.
func (rs *ResourceSet) Resources() []*Resource { return rs.resources }

// Tests returns the test resources.
func (rs *ResourceSet) Tests() []*Resource { return rs.ofKind(KindTest) }

// Sources returns the source resources.
func (rs *ResourceSet) Sources() []*Resource { return rs.ofKind(KindSource) }

func (rs *ResourceSet) ofKind(kind ResourceKind) []*Resource {
	var out []*Resource
	for _, r := range rs.resources {
		if r.Kind == kind {
			out = append(out, r)
		}
	}
	return out
}

// Resolve expands the group's patterns into files. Patterns matching
// nothing are dropped. When a test filter is set, only tests it matches
// are kept.
func (g *Group) Resolve(ctx context.Context) (*ResourceSet, error) {
	fs := g.fs
	if fs == nil {
		fs = afero.NewOsFs()
	}
	rs := newResourceSet(g.Root)

	lists := []struct {
		kind     ResourceKind
		patterns []string
	}{
		{KindLib, g.Libs},
		{KindSource, g.Sources},
		{KindTestHelper, g.TestHelpers},
		{KindTest, g.Tests},
	}

	for _, list := range lists {
		for _, pattern := range list.patterns {
			if err := ctx.Err(); err != nil {
				return nil, errors.Wrap(err, ErrCodeCanceled, "resolution of group "+g.Name+" canceled")
			}

			files, err := fsutil.Expand(fs, g.Root, pattern)
			if err != nil {
				return nil, errors.Wrap(err, ErrCodeResolve,
					fmt.Sprintf("failed to resolve %s pattern %q of group %s", list.kind, pattern, g.Name)).
					WithContext("root", g.Root)
			}
			if len(files) == 0 {
				g.debugf("%s: %s pattern %q matched no files, dropping", g.Name, list.kind, pattern)
				continue
			}

			for _, file := range files {
				if list.kind == KindTest && !g.matchesTestFilter(fsutil.RelSlash(g.Root, file)) {
					continue
				}
				rs.add(file, list.kind)
			}
		}
	}

	g.debugf("%s: resolved %d file(s) under %s", g.Name, rs.Len(), g.Root)
	return rs, nil
}

func (g *Group) matchesTestFilter(rel string) bool {
	if len(g.testFilter) == 0 {
		return true
	}
	for _, pattern := range g.testFilter {
		if fsutil.Match(pattern, rel) {
			return true
		}
	}
	return false
}

func (g *Group) debugf(format string, args ...interface{}) {
	if g.logger != nil {
		g.logger.Debugf(format, args...)
	}
}

// buildGroups turns the specs of one file into groups, following extends
// chains within the file.
func buildGroups(file *ConfigFile, fs afero.Fs, logger *StdioLogger) ([]*Group, error) {
	byName := make(map[string]GroupSpec, len(file.Specs))
	for _, spec := range file.Specs {
		byName[spec.Name] = spec
	}

	groups := make([]*Group, 0, len(file.Specs))
	for _, spec := range file.Specs {
		flat, err := flattenSpec(spec, byName, nil)
		if err != nil {
			return nil, newEvalError(file.Name, err.Error())
		}
		groups = append(groups, &Group{
			Name:        flat.Name,
			Environment: flat.Environment,
			Root:        fsutil.Abs(filepath.Dir(file.Path), flat.RootPath),
			Libs:        flat.Libs,
			Sources:     flat.Sources,
			TestHelpers: flat.TestHelpers,
			Tests:       flat.Tests,
			ConfigFile:  file,
			fs:          fs,
			logger:      logger,
		})
	}
	return groups, nil
}

// flattenSpec merges spec with the group it extends. The parent's patterns
// come first; its environment and root path apply when spec sets none.
func flattenSpec(spec GroupSpec, byName map[string]GroupSpec, visiting []string) (GroupSpec, error) {
	if spec.Extends == "" {
		return spec, nil
	}
	for _, name := range visiting {
		if name == spec.Name {
			return GroupSpec{}, fmt.Errorf("group %q has a cyclic extends chain: %s",
				spec.Name, strings.Join(append(visiting, spec.Name), " -> "))
		}
	}
	parentSpec, ok := byName[spec.Extends]
	if !ok {
		return GroupSpec{}, fmt.Errorf("group %q extends unknown group %q", spec.Name, spec.Extends)
	}
	parent, err := flattenSpec(parentSpec, byName, append(visiting, spec.Name))
	if err != nil {
		return GroupSpec{}, err
	}

	merged := spec
	if merged.Environment == "" {
		merged.Environment = parent.Environment
	}
	if merged.RootPath == "" {
		merged.RootPath = parent.RootPath
	}
	merged.Libs = concatLists(parent.Libs, spec.Libs)
	merged.Sources = concatLists(parent.Sources, spec.Sources)
	merged.TestHelpers = concatLists(parent.TestHelpers, spec.TestHelpers)
	merged.Tests = concatLists(parent.Tests, spec.Tests)
	merged.Extends = ""
	return merged, nil
}

func concatLists(a, b []string) []string {
	if len(a) == 0 {
		return b
	}
	out := make([]string, 0, len(a)+len(b))
	out = append(out, a...)
	return append(out, b...)
}
