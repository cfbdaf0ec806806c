// parser_structured.go: Structured configuration parsers for herald
//
// This file contains parsers for structured configuration formats:
// - YAML (YAML Ain't Markup Language)
// - JSON (JavaScript Object Notation)
//
// Both are decoded into yaml.Node trees so that group order follows the
// file.
//
// Copyright (c) 2025 AGILira
// Series: AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package herald

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"

	"go.yaml.in/yaml/v3"
)

var yamlLinePattern = regexp.MustCompile(`line (\d+)`)

// parseYAML parses a YAML configuration file.
func parseYAML(in EvalInput) ([]GroupSpec, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(in.Data, &doc); err != nil {
		return nil, yamlSyntaxError(in.Path, err)
	}
	return groupsFromDocument(in.Path, &doc)
}

// parseJSON parses a JSON configuration file. Syntax is checked with
// encoding/json first so errors carry JSON positions.
func parseJSON(in EvalInput) ([]GroupSpec, error) {
	if len(bytes.TrimSpace(in.Data)) == 0 {
		return nil, nil
	}
	var probe interface{}
	if err := json.Unmarshal(in.Data, &probe); err != nil {
		return nil, jsonSyntaxError(in.Path, in.Data, err)
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(in.Data, &doc); err != nil {
		return nil, yamlSyntaxError(in.Path, err)
	}
	return groupsFromDocument(in.Path, &doc)
}

// groupsFromDocument reads the top-level mapping of group name to
// definition.
func groupsFromDocument(path string, doc *yaml.Node) ([]GroupSpec, error) {
	if doc.Kind == 0 || len(doc.Content) == 0 {
		return nil, nil
	}
	root := doc
	if root.Kind == yaml.DocumentNode {
		root = root.Content[0]
	}
	if isNull(root) {
		return nil, nil
	}
	if root.Kind != yaml.MappingNode {
		message := "configuration must be a mapping of group name to group definition"
		return nil, nodeError(path, root, message)
	}

	pairs, err := mappingPairs(path, root, 0)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]bool, len(pairs))
	specs := make([]GroupSpec, 0, len(pairs))
	for _, pair := range pairs {
		key := pair.key
		if seen[key.Value] {
			if pair.merged {
				continue
			}
			message := fmt.Sprintf("duplicate group %q", key.Value)
			return nil, nodeError(path, key, message)
		}
		seen[key.Value] = true

		spec, err := bindGroup(path, key.Value, pair.value)
		if err != nil {
			return nil, err
		}
		specs = append(specs, spec)
	}
	return specs, nil
}

func yamlSyntaxError(path string, err error) *EvalError {
	detail := err.Error()
	var trace []string
	if m := yamlLinePattern.FindStringSubmatch(detail); m != nil {
		trace = append(trace, fmt.Sprintf("%s:%s:1: %s", path, m[1], detail))
	}
	return newEvalError(path, detail, trace...)
}

func jsonSyntaxError(path string, data []byte, err error) *EvalError {
	detail := err.Error()
	var offset int64 = -1
	switch e := err.(type) {
	case *json.SyntaxError:
		offset = e.Offset
	case *json.UnmarshalTypeError:
		offset = e.Offset
	}
	if offset < 0 {
		return newEvalError(path, detail)
	}

	line, column := 1, 1
	for i := int64(0); i < offset && i < int64(len(data)); i++ {
		if data[i] == '\n' {
			line++
			column = 1
			continue
		}
		column++
	}
	return newEvalError(path, detail,
		path+":"+strconv.Itoa(line)+":"+strconv.Itoa(column)+": "+detail)
}
