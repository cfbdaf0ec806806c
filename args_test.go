// args_test.go: Tests for option and operand parsing
//
// Copyright (c) 2025 AGILira
// Series: AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package herald

import (
	"bytes"
	"strings"
	"testing"

	"github.com/agilira/go-errors"
)

// newTestCLI creates a CLI logging into buffers.
func newTestCLI(t *testing.T) (*CLI, *bytes.Buffer, *bytes.Buffer) {
	t.Helper()
	cli := New()
	stdout, stderr := &bytes.Buffer{}, &bytes.Buffer{}
	cli.CreateLogger(stdout, stderr)
	return cli, stdout, stderr
}

func TestOptionAddressableByShortAndLongKey(t *testing.T) {
	for _, arg := range []string{"-p", "--port"} {
		t.Run(arg, func(t *testing.T) {
			cli, _, _ := newTestCLI(t)
			port := cli.Opt("-p", "--port", "Help text is here.")

			if err := cli.ParseArgs([]string{arg}); err != nil {
				t.Fatalf("ParseArgs(%q) failed: %v", arg, err)
			}
			if !port.IsSet {
				t.Errorf("expected %s to set the option", arg)
			}
			if port.Times != 1 {
				t.Errorf("Times = %d, want 1", port.Times)
			}
		})
	}
}

func TestOptionValueForms(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"separate short", []string{"-s", "ssssssBOOOOOM!"}, "ssssssBOOOOOM!"},
		{"separate long", []string{"--ss", "value"}, "value"},
		{"inline long", []string{"--ss=value"}, "value"},
		{"attached short", []string{"-svalue"}, "value"},
		{"inline empty", []string{"--ss="}, ""},
		{"lone dash is a value", []string{"-s", "-"}, "-"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cli, _, stderr := newTestCLI(t)
			opt := cli.Opt("-s", "--ss", "A creeper.", OptionConfig{HasValue: true})

			if err := cli.ParseArgs(tt.args); err != nil {
				t.Fatalf("ParseArgs(%v) failed: %v (stderr %q)", tt.args, err, stderr.String())
			}
			if opt.Value != tt.want {
				t.Errorf("Value = %q, want %q", opt.Value, tt.want)
			}
		})
	}
}

func TestOptionClusteredFlags(t *testing.T) {
	cli, _, _ := newTestCLI(t)
	a := cli.Opt("-a", "", "A.")
	b := cli.Opt("-b", "", "B.")
	name := cli.Opt("-n", "--name", "Name.", OptionConfig{HasValue: true})

	if err := cli.ParseArgs([]string{"-abnfoo"}); err != nil {
		t.Fatalf("ParseArgs failed: %v", err)
	}
	if !a.IsSet || !b.IsSet {
		t.Errorf("expected -a and -b to be set, got %v and %v", a.IsSet, b.IsSet)
	}
	if name.Value != "foo" {
		t.Errorf("name = %q, want foo", name.Value)
	}
}

func TestOptionRestrictedValues(t *testing.T) {
	cli, _, stderr := newTestCLI(t)
	aaa := cli.Opt("-a", "--aaa", "Aaaaa!", OptionConfig{Values: []string{"foo", "bar", "baz"}})

	if err := cli.ParseArgs([]string{"-a", "bar"}); err != nil {
		t.Fatalf("ParseArgs failed: %v", err)
	}
	if aaa.Value != "bar" {
		t.Errorf("Value = %q, want bar", aaa.Value)
	}

	err := cli.ParseArgs([]string{"-a", "lolcat"})
	if ExitCode(err) != 1 {
		t.Fatalf("expected exit code 1, got %d (%v)", ExitCode(err), err)
	}
	want := "-a/--aaa needs to be one of [foo, bar, baz], got lolcat.\n"
	if stderr.String() != want {
		t.Errorf("stderr = %q, want %q", stderr.String(), want)
	}
}

func TestOptionDefaultValue(t *testing.T) {
	cli, _, stderr := newTestCLI(t)
	opt := cli.Opt("-f", "--ffff", "Fffffuuu", OptionConfig{DefaultValue: "DRM"})

	if err := cli.ParseArgs(nil); err != nil {
		t.Fatalf("ParseArgs failed: %v", err)
	}
	if opt.Value != "DRM" || opt.IsSet {
		t.Errorf("got Value=%q IsSet=%v, want DRM and unset", opt.Value, opt.IsSet)
	}

	if err := cli.ParseArgs([]string{"-f", "gaming consoles"}); err != nil {
		t.Fatalf("ParseArgs failed: %v", err)
	}
	if opt.Value != "gaming consoles" {
		t.Errorf("Value = %q, want overridden value", opt.Value)
	}

	if err := cli.ParseArgs([]string{"-f"}); err == nil {
		t.Fatal("expected -f without value to fail")
	}
	if !strings.Contains(stderr.String(), "No value specified for -f/--ffff.") {
		t.Errorf("stderr = %q", stderr.String())
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
		code errors.ErrorCode
	}{
		{"unknown short", []string{"-x"}, "Unknown option -x.", ErrCodeUnknownOption},
		{"unknown long", []string{"--nope"}, "Unknown option --nope.", ErrCodeUnknownOption},
		{"value twice", []string{"-p", "1", "--port", "2"}, "-p/--port can only be set once.", ErrCodeRepeatedOption},
		{"flag with value", []string{"--flag=yes"}, "--flag does not take a value.", ErrCodeUnexpectedValue},
		{"extra operand", []string{"one", "two"}, "Unexpected argument two.", ErrCodeUnexpectedOperand},
		{"missing value", []string{"--port"}, "No value specified for -p/--port.", ErrCodeMissingValue},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cli, stdout, stderr := newTestCLI(t)
			cli.Opt("-p", "--port", "Port.", OptionConfig{HasValue: true})
			cli.Opt("", "--flag", "Flag.")
			cli.Opd("Foo", "Does a foo.")

			err := cli.ParseArgs(tt.args)
			if ExitCode(err) != 1 {
				t.Fatalf("ExitCode = %d, want 1 (err %v)", ExitCode(err), err)
			}
			if err.Error() != tt.want {
				t.Errorf("error = %q, want %q", err.Error(), tt.want)
			}
			if !errors.HasCode(err, tt.code) {
				t.Errorf("error %v does not carry code %s", err, tt.code)
			}
			if stderr.String() != tt.want+"\n" {
				t.Errorf("stderr = %q, want %q", stderr.String(), tt.want+"\n")
			}
			if stdout.Len() != 0 {
				t.Errorf("stdout should be empty, got %q", stdout.String())
			}
		})
	}
}

func TestOperandAssignment(t *testing.T) {
	cli, _, _ := newTestCLI(t)
	foo := cli.Opd("Foo", "Does a foo.")
	bar := cli.Opd("Bar", "Does a bar.")
	verbose := cli.Opt("-x", "--extra", "Extra.")

	if err := cli.ParseArgs([]string{"some value", "--", "-x"}); err != nil {
		t.Fatalf("ParseArgs failed: %v", err)
	}
	if foo.Value != "some value" || !foo.IsSet {
		t.Errorf("Foo = %q (set %v)", foo.Value, foo.IsSet)
	}
	if bar.Value != "-x" {
		t.Errorf("Bar = %q, want -x after --", bar.Value)
	}
	if verbose.IsSet {
		t.Error("-x after -- must not set the option")
	}
}

func TestParseArgsResetsPreviousState(t *testing.T) {
	cli, _, _ := newTestCLI(t)
	port := cli.Opt("-p", "--port", "Port.", OptionConfig{DefaultValue: "80"})

	if err := cli.ParseArgs([]string{"-p", "8080"}); err != nil {
		t.Fatalf("first ParseArgs failed: %v", err)
	}
	if err := cli.ParseArgs(nil); err != nil {
		t.Fatalf("second ParseArgs failed: %v", err)
	}
	if port.IsSet || port.Value != "80" {
		t.Errorf("got IsSet=%v Value=%q, want state of a fresh parse", port.IsSet, port.Value)
	}
}

func TestOptionList(t *testing.T) {
	opt := newOption("-c", "--config", "", OptionConfig{HasValue: true})
	opt.Value = " a.hcl, ,b.hcl ,"

	got := opt.List()
	if len(got) != 2 || got[0] != "a.hcl" || got[1] != "b.hcl" {
		t.Errorf("List() = %v, want [a.hcl b.hcl]", got)
	}

	opt.Value = "buster{1,2}.json,other.hcl"
	got = opt.List()
	if len(got) != 2 || got[0] != "buster{1,2}.json" || got[1] != "other.hcl" {
		t.Errorf("List() = %v, want the brace pattern kept whole", got)
	}
}

func TestSignature(t *testing.T) {
	tests := []struct {
		short, long, want string
	}{
		{"-p", "--port", "-p/--port"},
		{"", "--port", "--port"},
		{"-p", "", "-p"},
	}
	for _, tt := range tests {
		if got := newOption(tt.short, tt.long, "", OptionConfig{}).Signature(); got != tt.want {
			t.Errorf("Signature(%q, %q) = %q, want %q", tt.short, tt.long, got, tt.want)
		}
	}
}
