// config_binder.go - Group definition binding for structured formats
//
// YAML and JSON files describe each group as a mapping node. The binder
// declares which keys land in which GroupSpec field, then applies them in
// one pass and rejects keys nobody asked for, reporting their position.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package herald

import (
	"fmt"
	"strings"

	"go.yaml.in/yaml/v3"
)

type bindKind uint8

const (
	bindString bindKind = iota
	bindList
)

// binding maps one or more key aliases onto a target field.
type binding struct {
	keys   []string
	kind   bindKind
	str    *string
	list   *[]string
	nodeAt *yaml.Node
}

// groupBinder binds the keys of a YAML mapping node onto a GroupSpec.
type groupBinder struct {
	path     string
	group    string
	node     *yaml.Node
	bindings []binding
}

func newGroupBinder(path, group string, node *yaml.Node) *groupBinder {
	return &groupBinder{path: path, group: group, node: node, bindings: make([]binding, 0, 8)}
}

// BindString binds a scalar value. Aliases are accepted as alternative keys;
// the first one present wins.
func (gb *groupBinder) BindString(target *string, key string, aliases ...string) *groupBinder {
	gb.bindings = append(gb.bindings, binding{keys: append([]string{key}, aliases...), kind: bindString, str: target})
	return gb
}

// BindList binds a sequence of scalars. A single scalar is accepted as a
// one-element list.
func (gb *groupBinder) BindList(target *[]string, key string) *groupBinder {
	gb.bindings = append(gb.bindings, binding{keys: []string{key}, kind: bindList, list: target})
	return gb
}

// Apply assigns every bound key and fails on the first malformed or
// unknown key. Keys written in the group take precedence over keys merged
// in with "<<".
func (gb *groupBinder) Apply() error {
	node := resolveAlias(gb.node)
	if node == nil || node.Kind == 0 || isNull(node) {
		return nil
	}
	if node.Kind != yaml.MappingNode {
		return gb.errorAt(node, fmt.Sprintf("group %q must be a mapping", gb.group))
	}

	pairs, err := mappingPairs(gb.path, node, 0)
	if err != nil {
		return err
	}
	for _, pair := range pairs {
		b := gb.lookup(pair.key.Value)
		if b == nil {
			return gb.errorAt(pair.key, fmt.Sprintf("unsupported argument %q in group %q; expected one of %s",
				pair.key.Value, gb.group, strings.Join(gb.knownKeys(), ", ")))
		}
		if b.nodeAt != nil {
			continue
		}
		b.nodeAt = pair.value
		if err := gb.applyBinding(b, pair.value); err != nil {
			return err
		}
	}
	return nil
}

func (gb *groupBinder) applyBinding(b *binding, value *yaml.Node) error {
	value = resolveAlias(value)
	if isNull(value) {
		return nil
	}

	switch b.kind {
	case bindString:
		if value.Kind != yaml.ScalarNode {
			return gb.errorAt(value, fmt.Sprintf("%s of group %q must be a string", b.keys[0], gb.group))
		}
		*b.str = value.Value
	case bindList:
		switch value.Kind {
		case yaml.ScalarNode:
			*b.list = []string{value.Value}
		case yaml.SequenceNode:
			list := make([]string, 0, len(value.Content))
			for _, item := range value.Content {
				item = resolveAlias(item)
				if item.Kind != yaml.ScalarNode {
					return gb.errorAt(item, fmt.Sprintf("%s of group %q must only contain strings", b.keys[0], gb.group))
				}
				list = append(list, item.Value)
			}
			*b.list = list
		default:
			return gb.errorAt(value, fmt.Sprintf("%s of group %q must be a list of strings", b.keys[0], gb.group))
		}
	}
	return nil
}

func (gb *groupBinder) lookup(key string) *binding {
	for i := range gb.bindings {
		for _, k := range gb.bindings[i].keys {
			if k == key {
				return &gb.bindings[i]
			}
		}
	}
	return nil
}

func (gb *groupBinder) knownKeys() []string {
	var keys []string
	for _, b := range gb.bindings {
		keys = append(keys, b.keys...)
	}
	return keys
}

func (gb *groupBinder) errorAt(node *yaml.Node, message string) *EvalError {
	return nodeError(gb.path, node, message)
}

func nodeError(path string, node *yaml.Node, message string) *EvalError {
	return newEvalError(path, message, fmt.Sprintf("%s:%d:%d: %s", path, node.Line, node.Column, message))
}

// maxMergeDepth bounds nested "<<" merges.
const maxMergeDepth = 16

type yamlPair struct {
	key, value *yaml.Node
	merged     bool
}

// mappingPairs lists the key/value pairs of a mapping node with "<<" merge
// keys expanded. Pairs written in the mapping come first, then merged pairs
// in merge order, so the first occurrence of a key is the one that applies.
func mappingPairs(path string, node *yaml.Node, depth int) ([]yamlPair, error) {
	if depth > maxMergeDepth {
		return nil, nodeError(path, node, "merge keys nested too deeply")
	}

	var own, merged []yamlPair
	for i := 0; i+1 < len(node.Content); i += 2 {
		key, value := node.Content[i], node.Content[i+1]
		if key.Kind != yaml.ScalarNode || key.ShortTag() != "!!merge" {
			own = append(own, yamlPair{key: key, value: value})
			continue
		}

		sources := []*yaml.Node{value}
		if resolved := resolveAlias(value); resolved != nil && resolved.Kind == yaml.SequenceNode {
			sources = resolved.Content
		}
		for _, source := range sources {
			mapping := resolveAlias(source)
			if mapping == nil || mapping.Kind != yaml.MappingNode {
				return nil, nodeError(path, source, "merge value must be a mapping or a list of mappings")
			}
			pairs, err := mappingPairs(path, mapping, depth+1)
			if err != nil {
				return nil, err
			}
			for _, pair := range pairs {
				pair.merged = true
				merged = append(merged, pair)
			}
		}
	}
	return append(own, merged...), nil
}

// resolveAlias follows alias nodes to the node they refer to.
func resolveAlias(node *yaml.Node) *yaml.Node {
	for i := 0; node != nil && node.Kind == yaml.AliasNode && i <= maxMergeDepth; i++ {
		node = node.Alias
	}
	return node
}

// bindGroup decodes one group definition node.
func bindGroup(path, name string, node *yaml.Node) (GroupSpec, error) {
	spec := GroupSpec{Name: name}
	err := newGroupBinder(path, name, node).
		BindString(&spec.Environment, "environment", "env").
		BindString(&spec.RootPath, "root_path").
		BindList(&spec.Libs, "libs").
		BindList(&spec.Sources, "sources").
		BindList(&spec.TestHelpers, "test_helpers").
		BindList(&spec.Tests, "tests").
		BindString(&spec.Extends, "extends").
		Apply()
	return spec, err
}

func isNull(node *yaml.Node) bool {
	return node.Kind == yaml.ScalarNode && node.ShortTag() == "!!null"
}
