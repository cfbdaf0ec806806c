// parser_hcl.go: HCL configuration evaluator for herald
//
// A configuration file declares one block per group:
//
//	group "Node tests" {
//	  environment = "node"
//	  sources     = ["lib/**/*.js"]
//	  tests       = ["test/**/*-test.js"]
//	}
//
// Expressions are evaluated with the process environment available as
// env, the file's directory as config_dir, and a small set of string and
// collection functions.
//
// Copyright (c) 2025 AGILira
// Series: AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package herald

import (
	"fmt"
	"sort"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/function"
	"github.com/zclconf/go-cty/cty/function/stdlib"
)

// hclConfigFile is the top-level structure of an HCL configuration file.
type hclConfigFile struct {
	Groups []*hclGroup `hcl:"group,block"`
}

type hclGroup struct {
	Name        string   `hcl:"name,label"`
	Environment string   `hcl:"environment,optional"`
	Env         string   `hcl:"env,optional"`
	RootPath    string   `hcl:"root_path,optional"`
	Libs        []string `hcl:"libs,optional"`
	Sources     []string `hcl:"sources,optional"`
	TestHelpers []string `hcl:"test_helpers,optional"`
	Tests       []string `hcl:"tests,optional"`
	Extends     string   `hcl:"extends,optional"`

	DefRange hcl.Range `hcl:",def_range"`
}

// hclFunctions are available to every expression in a configuration file.
var hclFunctions = map[string]function.Function{
	"upper":     stdlib.UpperFunc,
	"lower":     stdlib.LowerFunc,
	"format":    stdlib.FormatFunc,
	"join":      stdlib.JoinFunc,
	"split":     stdlib.SplitFunc,
	"concat":    stdlib.ConcatFunc,
	"coalesce":  stdlib.CoalesceFunc,
	"replace":   stdlib.ReplaceFunc,
	"trimspace": stdlib.TrimSpaceFunc,
}

// HCLFunctionNames lists the functions available in HCL configuration.
func HCLFunctionNames() []string {
	names := make([]string, 0, len(hclFunctions))
	for name := range hclFunctions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func hclEvalContext(in EvalInput) *hcl.EvalContext {
	env := cty.MapValEmpty(cty.String)
	if len(in.Environ) > 0 {
		values := make(map[string]cty.Value, len(in.Environ))
		for k, v := range in.Environ {
			values[k] = cty.StringVal(v)
		}
		env = cty.MapVal(values)
	}

	return &hcl.EvalContext{
		Variables: map[string]cty.Value{
			"env":        env,
			"config_dir": cty.StringVal(in.Dir),
		},
		Functions: hclFunctions,
	}
}

// parseHCL evaluates an HCL configuration file.
func parseHCL(in EvalInput) ([]GroupSpec, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(in.Data, in.Path)
	if diags.HasErrors() {
		return nil, diagnosticsError(in.Path, diags)
	}

	var parsed hclConfigFile
	if diags := gohcl.DecodeBody(file.Body, hclEvalContext(in), &parsed); diags.HasErrors() {
		return nil, diagnosticsError(in.Path, diags)
	}

	declared := make(map[string]hcl.Range, len(parsed.Groups))
	specs := make([]GroupSpec, 0, len(parsed.Groups))
	for _, g := range parsed.Groups {
		if first, ok := declared[g.Name]; ok {
			subject := g.DefRange
			return nil, diagnosticsError(in.Path, hcl.Diagnostics{{
				Severity: hcl.DiagError,
				Summary:  fmt.Sprintf("duplicate group %q", g.Name),
				Detail:   "first declared at " + first.String(),
				Subject:  &subject,
			}})
		}
		declared[g.Name] = g.DefRange

		environment := g.Environment
		if environment == "" {
			environment = g.Env
		}
		specs = append(specs, GroupSpec{
			Name:        g.Name,
			Environment: environment,
			RootPath:    g.RootPath,
			Libs:        g.Libs,
			Sources:     g.Sources,
			TestHelpers: g.TestHelpers,
			Tests:       g.Tests,
			Extends:     g.Extends,
		})
	}
	return specs, nil
}

// diagnosticsError converts HCL error diagnostics into an *EvalError whose
// trace carries one "file:line:column: summary" entry per diagnostic.
func diagnosticsError(path string, diags hcl.Diagnostics) *EvalError {
	var detail string
	var trace []string
	for _, diag := range diags {
		if diag.Severity != hcl.DiagError {
			continue
		}
		message := diag.Summary
		if diag.Detail != "" {
			message += ": " + diag.Detail
		}
		if detail == "" {
			detail = message
		}
		if diag.Subject != nil {
			trace = append(trace, fmt.Sprintf("%s:%d:%d: %s",
				diag.Subject.Filename, diag.Subject.Start.Line, diag.Subject.Start.Column, diag.Summary))
		}
	}
	return newEvalError(path, detail, trace...)
}
