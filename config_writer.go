// config_writer.go: Writing group definitions for herald
//
// Group definitions can be written in every built-in format. The writer
// backs the starter templates of the management CLI and the conversion of
// configuration files between formats.
//
// Philosophy:
// - Output parses back into the same group definitions
// - Group order is preserved in every format
// - Atomic writes: temporary file then rename
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package herald

import (
	"bytes"
	"encoding/json"
	"fmt"
	"path/filepath"
	"sort"

	"github.com/agilira/go-errors"
	"github.com/agilira/go-timecache"
	"github.com/hashicorp/hcl/v2/hclwrite"
	"github.com/spf13/afero"
	"github.com/zclconf/go-cty/cty"
	"go.yaml.in/yaml/v3"
)

// ConfigWriter writes group definitions to a configuration file.
type ConfigWriter struct {
	fs       afero.Fs
	filePath string
	format   ConfigFormat
	specs    []GroupSpec
}

// NewConfigWriter creates a writer for filePath. The format follows the
// file extension.
func NewConfigWriter(fs afero.Fs, filePath string, specs []GroupSpec) (*ConfigWriter, error) {
	format := DetectFormat(filePath)
	if format == FormatUnknown {
		return nil, errors.New(ErrCodeUnsupportedFormat,
			fmt.Sprintf("cannot write configuration with extension %q", filepath.Ext(filePath))).
			WithContext("path", filePath)
	}
	if fs == nil {
		fs = afero.NewOsFs()
	}
	return &ConfigWriter{fs: fs, filePath: filePath, format: format, specs: specs}, nil
}

// AddGroup appends a group definition.
func (w *ConfigWriter) AddGroup(spec GroupSpec) {
	w.specs = append(w.specs, spec)
}

// Groups returns the group definitions to be written.
func (w *ConfigWriter) Groups() []GroupSpec { return w.specs }

// WriteConfig serializes the groups and writes them atomically.
func (w *ConfigWriter) WriteConfig() error {
	data, err := MarshalGroups(w.specs, w.format)
	if err != nil {
		return err
	}
	if err := w.atomicWrite(data); err != nil {
		return errors.Wrap(err, ErrCodeConfigWrite, "failed to write configuration").
			WithContext("path", w.filePath)
	}
	return nil
}

// WriteConfigAs writes to another path, switching format if the extension
// differs.
func (w *ConfigWriter) WriteConfigAs(filePath string) error {
	other, err := NewConfigWriter(w.fs, filePath, w.specs)
	if err != nil {
		return err
	}
	return other.WriteConfig()
}

// atomicWrite performs atomic file write using temporary file + rename.
func (w *ConfigWriter) atomicWrite(data []byte) error {
	dir := filepath.Dir(w.filePath)
	if err := w.fs.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	tempPath := filepath.Join(dir, fmt.Sprintf(".%s.tmp.%d", filepath.Base(w.filePath), timecache.CachedTimeNano()))
	if err := afero.WriteFile(w.fs, tempPath, data, 0o644); err != nil {
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := w.fs.Rename(tempPath, w.filePath); err != nil {
		_ = w.fs.Remove(tempPath)
		return fmt.Errorf("failed to rename temp file: %w", err)
	}
	return nil
}

// MarshalGroups serializes group definitions in the given format.
func MarshalGroups(specs []GroupSpec, format ConfigFormat) ([]byte, error) {
	switch format {
	case FormatHCL:
		return marshalHCL(specs), nil
	case FormatYAML:
		return marshalYAML(specs)
	case FormatJSON:
		return marshalJSON(specs)
	default:
		return nil, errors.New(ErrCodeUnsupportedFormat, "unsupported format: "+format.String())
	}
}

func marshalHCL(specs []GroupSpec) []byte {
	f := hclwrite.NewEmptyFile()
	body := f.Body()

	for i, spec := range specs {
		if i > 0 {
			body.AppendNewline()
		}
		block := body.AppendNewBlock("group", []string{spec.Name}).Body()
		if spec.Extends != "" {
			block.SetAttributeValue("extends", cty.StringVal(spec.Extends))
		}
		if spec.Environment != "" {
			block.SetAttributeValue("environment", cty.StringVal(spec.Environment))
		}
		if spec.RootPath != "" {
			block.SetAttributeValue("root_path", cty.StringVal(spec.RootPath))
		}
		for _, list := range specLists(spec) {
			if len(list.values) == 0 {
				continue
			}
			values := make([]cty.Value, len(list.values))
			for j, v := range list.values {
				values[j] = cty.StringVal(v)
			}
			block.SetAttributeValue(list.key, cty.ListVal(values))
		}
	}
	return hclwrite.Format(f.Bytes())
}

func marshalYAML(specs []GroupSpec) ([]byte, error) {
	root := &yaml.Node{Kind: yaml.MappingNode}
	for _, spec := range specs {
		group := &yaml.Node{Kind: yaml.MappingNode}
		addScalar := func(key, value string) {
			if value == "" {
				return
			}
			group.Content = append(group.Content,
				&yaml.Node{Kind: yaml.ScalarNode, Value: key},
				&yaml.Node{Kind: yaml.ScalarNode, Value: value})
		}
		addScalar("extends", spec.Extends)
		addScalar("environment", spec.Environment)
		addScalar("root_path", spec.RootPath)
		for _, list := range specLists(spec) {
			if len(list.values) == 0 {
				continue
			}
			seq := &yaml.Node{Kind: yaml.SequenceNode}
			for _, v := range list.values {
				seq.Content = append(seq.Content, &yaml.Node{Kind: yaml.ScalarNode, Value: v})
			}
			group.Content = append(group.Content, &yaml.Node{Kind: yaml.ScalarNode, Value: list.key}, seq)
		}
		if len(group.Content) == 0 {
			group = &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "~"}
		}
		root.Content = append(root.Content, &yaml.Node{Kind: yaml.ScalarNode, Value: spec.Name}, group)
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(&yaml.Node{Kind: yaml.DocumentNode, Content: []*yaml.Node{root}}); err != nil {
		return nil, errors.Wrap(err, ErrCodeConfigWrite, "failed to encode YAML")
	}
	if err := enc.Close(); err != nil {
		return nil, errors.Wrap(err, ErrCodeConfigWrite, "failed to encode YAML")
	}
	return buf.Bytes(), nil
}

type jsonGroup struct {
	Extends     string   `json:"extends,omitempty"`
	Environment string   `json:"environment,omitempty"`
	RootPath    string   `json:"root_path,omitempty"`
	Libs        []string `json:"libs,omitempty"`
	Sources     []string `json:"sources,omitempty"`
	TestHelpers []string `json:"test_helpers,omitempty"`
	Tests       []string `json:"tests,omitempty"`
}

// marshalJSON writes the top-level object by hand so group order survives.
func marshalJSON(specs []GroupSpec) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString("{")
	for i, spec := range specs {
		if i > 0 {
			buf.WriteString(",")
		}
		key, err := json.Marshal(spec.Name)
		if err != nil {
			return nil, errors.Wrap(err, ErrCodeConfigWrite, "failed to encode JSON")
		}
		body, err := json.MarshalIndent(jsonGroup{
			Extends:     spec.Extends,
			Environment: spec.Environment,
			RootPath:    spec.RootPath,
			Libs:        spec.Libs,
			Sources:     spec.Sources,
			TestHelpers: spec.TestHelpers,
			Tests:       spec.Tests,
		}, "  ", "  ")
		if err != nil {
			return nil, errors.Wrap(err, ErrCodeConfigWrite, "failed to encode JSON")
		}
		buf.WriteString("\n  ")
		buf.Write(key)
		buf.WriteString(": ")
		buf.Write(body)
	}
	if len(specs) > 0 {
		buf.WriteString("\n")
	}
	buf.WriteString("}\n")
	return buf.Bytes(), nil
}

type specList struct {
	key    string
	values []string
}

func specLists(spec GroupSpec) []specList {
	return []specList{
		{"libs", spec.Libs},
		{"sources", spec.Sources},
		{"test_helpers", spec.TestHelpers},
		{"tests", spec.Tests},
	}
}

// templates are the starter configurations offered by the management CLI.
var templates = map[string][]GroupSpec{
	"basic": {
		{
			Name:    "Tests",
			Sources: []string{"lib/**/*"},
			Tests:   []string{"test/**/*"},
		},
	},
	"node": {
		{
			Name:        "Node tests",
			Environment: "node",
			Sources:     []string{"lib/**/*.js"},
			Tests:       []string{"test/**/*-test.js"},
		},
	},
	"browser": {
		{
			Name:        "Browser tests",
			Environment: "browser",
			Libs:        []string{"vendor/**/*.js"},
			Sources:     []string{"src/**/*.js"},
			TestHelpers: []string{"test/helpers/**/*.js"},
			Tests:       []string{"test/browser/**/*-test.js"},
		},
	},
}

// TemplateNames lists the available starter templates.
func TemplateNames() []string {
	names := make([]string, 0, len(templates))
	for name := range templates {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Template returns a copy of the named starter configuration.
func Template(name string) ([]GroupSpec, bool) {
	specs, ok := templates[name]
	if !ok {
		return nil, false
	}
	out := make([]GroupSpec, len(specs))
	copy(out, specs)
	return out, true
}
