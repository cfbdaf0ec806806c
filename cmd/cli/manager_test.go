// Tests for the herald management CLI
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package cli

import (
	"bytes"
	"io"
	"os"
	"strings"
	"testing"

	"github.com/agilira/herald"
	"github.com/google/go-cmp/cmp"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
)

const fixtureConfig = `group "Node tests" {
  environment = "node"
  sources     = ["src/*.js"]
  tests       = ["test/**/*.js"]
}

group "Browser tests" {
  environment = "browser"
  libs        = ["vendor/jquery.js"]
  tests       = ["test/browser/*.js"]
}
`

// CLITestFixture runs the management CLI against an in-memory project.
type CLITestFixture struct {
	t       *testing.T
	fs      afero.Fs
	out     *bytes.Buffer
	errOut  *bytes.Buffer
	manager *Manager
}

func NewCLITestFixture(t *testing.T) *CLITestFixture {
	t.Helper()

	fs := afero.NewMemMapFs()
	out, errOut := &bytes.Buffer{}, &bytes.Buffer{}
	f := &CLITestFixture{
		t:       t,
		fs:      fs,
		out:     out,
		errOut:  errOut,
		manager: NewManager().WithFS(fs).WithOutput(out, errOut).WithWorkingDir("/work"),
	}

	f.WriteFile("/work/herald.hcl", fixtureConfig)
	for _, path := range []string{
		"/work/src/a.js",
		"/work/src/b.js",
		"/work/vendor/jquery.js",
		"/work/test/a-test.js",
		"/work/test/browser/b-test.js",
	} {
		f.WriteFile(path, "")
	}
	return f
}

// RunCLI runs the CLI and returns what it printed to the output stream.
func (f *CLITestFixture) RunCLI(args ...string) (string, error) {
	f.t.Helper()
	f.out.Reset()
	f.errOut.Reset()
	err := f.manager.Run(args)
	return f.out.String(), err
}

func (f *CLITestFixture) WriteFile(path, content string) {
	f.t.Helper()
	require.NoError(f.t, afero.WriteFile(f.fs, path, []byte(content), 0o644))
}

func (f *CLITestFixture) ReadFile(path string) string {
	f.t.Helper()
	data, err := afero.ReadFile(f.fs, path)
	require.NoError(f.t, err)
	return string(data)
}

func TestNewManager(t *testing.T) {
	manager := NewManager()
	require.NotNil(t, manager)
	require.NotNil(t, manager.app)
	require.NotNil(t, manager.fs)
}

func TestGroupsCommand(t *testing.T) {
	fixture := NewCLITestFixture(t)

	t.Run("all_groups", func(t *testing.T) {
		output, err := fixture.RunCLI("groups")
		require.NoError(t, err)
		if diff := cmp.Diff("Node tests (node)\nBrowser tests (browser)\n", output); diff != "" {
			t.Errorf("groups output mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("environment_filter", func(t *testing.T) {
		output, err := fixture.RunCLI("groups", "--environment=browser")
		require.NoError(t, err)
		require.Equal(t, "Browser tests (browser)\n", output)
	})

	t.Run("no_match", func(t *testing.T) {
		_, err := fixture.RunCLI("groups", "--group=stuff")
		require.Error(t, err)
		require.Contains(t, err.Error(), "contains no configuration groups that matches 'stuff'")
		require.Contains(t, fixture.errOut.String(), "Try one of:")
	})

	t.Run("missing_configuration", func(t *testing.T) {
		_, err := fixture.RunCLI("groups", "--base=nothing")
		require.Error(t, err)
		require.Contains(t, err.Error(), "none of")
	})
}

func TestRunStartsFromDefaults(t *testing.T) {
	fixture := NewCLITestFixture(t)

	output, err := fixture.RunCLI("groups", "--environment=browser")
	require.NoError(t, err)
	require.Equal(t, "Browser tests (browser)\n", output)

	output, err = fixture.RunCLI("groups")
	require.NoError(t, err)
	require.Equal(t, "Node tests (node)\nBrowser tests (browser)\n", output)
}

func TestPrefixFlag(t *testing.T) {
	fixture := NewCLITestFixture(t)

	t.Run("plain", func(t *testing.T) {
		_, err := fixture.RunCLI("groups", "--prefix", "--group=stuff")
		require.Error(t, err)
		require.True(t, strings.HasPrefix(fixture.errOut.String(), "[ERROR] "), fixture.errOut.String())
		require.NotContains(t, fixture.errOut.String(), "\x1b[")
	})

	t.Run("terminal", func(t *testing.T) {
		fixture.manager.terminal = func(io.Writer) bool { return true }
		defer func() { fixture.manager.terminal = isTerminal }()

		_, err := fixture.RunCLI("files", "-p", "--group=stuff")
		require.Error(t, err)
		require.Contains(t, fixture.errOut.String(), "\x1b[")
		require.Contains(t, fixture.errOut.String(), "[ERROR]")
	})

	t.Run("off_by_default", func(t *testing.T) {
		fixture.manager.terminal = func(io.Writer) bool { return true }
		defer func() { fixture.manager.terminal = isTerminal }()

		_, err := fixture.RunCLI("groups", "--group=stuff")
		require.Error(t, err)
		require.NotContains(t, fixture.errOut.String(), "[ERROR]")
		require.NotContains(t, fixture.errOut.String(), "\x1b[")
	})
}

func TestIsTerminal(t *testing.T) {
	require.False(t, isTerminal(&bytes.Buffer{}))

	file, err := os.CreateTemp(t.TempDir(), "out")
	require.NoError(t, err)
	defer file.Close()
	require.False(t, isTerminal(file))
}

func TestFilesCommand(t *testing.T) {
	fixture := NewCLITestFixture(t)

	t.Run("load_paths", func(t *testing.T) {
		output, err := fixture.RunCLI("files")
		require.NoError(t, err)

		want := strings.Join([]string{
			"Node tests (node):",
			"  src/a.js",
			"  src/b.js",
			"  test/a-test.js",
			"  test/browser/b-test.js",
			"",
			"Browser tests (browser):",
			"  vendor/jquery.js",
			"  test/browser/b-test.js",
			"",
		}, "\n")
		if diff := cmp.Diff(want, output); diff != "" {
			t.Errorf("files output mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("test_filter", func(t *testing.T) {
		output, err := fixture.RunCLI("files", "--environment=node", "--tests=test/a-test.js")
		require.NoError(t, err)
		require.Equal(t, "Node tests (node):\n  src/a.js\n  src/b.js\n  test/a-test.js\n", output)
	})

	t.Run("kinds", func(t *testing.T) {
		output, err := fixture.RunCLI("files", "--environment=browser", "--kinds")
		require.NoError(t, err)
		require.Contains(t, output, "  libs         vendor/jquery.js\n")
		require.Contains(t, output, "  tests        test/browser/b-test.js\n")
	})
}

func TestValidateCommand(t *testing.T) {
	fixture := NewCLITestFixture(t)

	t.Run("valid", func(t *testing.T) {
		output, err := fixture.RunCLI("validate", "herald.hcl")
		require.NoError(t, err)
		require.Equal(t, "Valid HCL configuration: herald.hcl (2 groups)\n  Node tests (node)\n  Browser tests (browser)\n", output)
	})

	t.Run("invalid", func(t *testing.T) {
		fixture.WriteFile("/work/broken.yaml", "Group:\n  enviroment: node\n")
		output, err := fixture.RunCLI("validate", "broken.yaml")
		require.Error(t, err)
		require.Contains(t, output, "Invalid configuration: Error loading configuration broken.yaml")
		require.Contains(t, output, "broken.yaml:2:3:")
	})

	t.Run("missing_argument", func(t *testing.T) {
		_, err := fixture.RunCLI("validate")
		require.Error(t, err)
	})
}

func TestInitCommand(t *testing.T) {
	fixture := NewCLITestFixture(t)

	t.Run("default_template", func(t *testing.T) {
		output, err := fixture.RunCLI("init", "conf/herald.yaml")
		require.NoError(t, err)
		require.Equal(t, "Created YAML configuration: conf/herald.yaml\nTemplate: basic\n", output)

		specs, err := herald.ParseConfig(herald.EvalInput{
			Path: "herald.yaml",
			Data: []byte(fixture.ReadFile("/work/conf/herald.yaml")),
		}, herald.FormatYAML)
		require.NoError(t, err)
		expected, _ := herald.Template("basic")
		if diff := cmp.Diff(expected, specs); diff != "" {
			t.Errorf("written template mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("refuses_to_overwrite", func(t *testing.T) {
		_, err := fixture.RunCLI("init", "herald.hcl")
		require.Error(t, err)
		require.Contains(t, err.Error(), "already exists")
		require.Equal(t, fixtureConfig, fixture.ReadFile("/work/herald.hcl"))
	})

	t.Run("named_template_with_force", func(t *testing.T) {
		output, err := fixture.RunCLI("init", "--template=browser", "--force", "herald.hcl")
		require.NoError(t, err)
		require.Contains(t, output, "Template: browser")
		require.Contains(t, fixture.ReadFile("/work/herald.hcl"), `group "Browser tests"`)
	})

	t.Run("flags_after_file", func(t *testing.T) {
		output, err := fixture.RunCLI("init", "node.json", "--template=node")
		require.NoError(t, err)
		require.Equal(t, "Created JSON configuration: node.json\nTemplate: node\n", output)
	})

	t.Run("unknown_template", func(t *testing.T) {
		_, err := fixture.RunCLI("init", "--template=nope", "other.hcl")
		require.Error(t, err)
		exists, _ := afero.Exists(fixture.fs, "/work/other.hcl")
		require.False(t, exists)
	})
}

func TestConvertCommand(t *testing.T) {
	fixture := NewCLITestFixture(t)

	output, err := fixture.RunCLI("convert", "herald.hcl", "herald.json")
	require.NoError(t, err)
	require.Equal(t, "Converted herald.hcl (HCL) -> herald.json (JSON)\n", output)

	loader := herald.NewLoader(herald.LoaderConfig{FS: fixture.fs, WorkingDir: "/work"})
	original, err := loader.LoadFile(t.Context(), "herald.hcl")
	require.NoError(t, err)
	converted, err := loader.LoadFile(t.Context(), "herald.json")
	require.NoError(t, err)
	if diff := cmp.Diff(original.Specs, converted.Specs); diff != "" {
		t.Errorf("converted groups differ (-hcl +json):\n%s", diff)
	}

	_, err = fixture.RunCLI("convert", "herald.hcl", "herald.ini")
	require.Error(t, err)
}

func TestConfigPatternAlternatives(t *testing.T) {
	fixture := NewCLITestFixture(t)
	fixture.WriteFile("/work/extra.yaml", "Extra:\n  environment: node\n")

	output, err := fixture.RunCLI("groups", "--config=herald.hcl,{extra,missing}.yaml")
	require.NoError(t, err)
	require.Equal(t, "Node tests (node)\nBrowser tests (browser)\nExtra (node)\n", output)
}
