// parsers.go: Configuration file evaluators for herald
//
// Supported Formats:
// - HCL (.hcl) - evaluated, with env, config_dir and string functions
// - YAML (.yml, .yaml) - ordered mapping of group name to definition
// - JSON (.json) - same shape as YAML
//
// Custom parsers registered with RegisterParser are tried before the
// built-in ones.
//
// Copyright (c) 2025 AGILira
// Series: AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package herald

import (
	"path/filepath"
	"strings"
	"sync"

	"github.com/agilira/go-errors"
)

// ConfigFormat identifies a configuration file format.
type ConfigFormat int

const (
	FormatHCL ConfigFormat = iota
	FormatYAML
	FormatJSON
	FormatUnknown
)

// String returns the format name.
func (cf ConfigFormat) String() string {
	switch cf {
	case FormatHCL:
		return "HCL"
	case FormatYAML:
		return "YAML"
	case FormatJSON:
		return "JSON"
	default:
		return "Unknown"
	}
}

// Extension returns the canonical file extension of the format.
func (cf ConfigFormat) Extension() string {
	switch cf {
	case FormatHCL:
		return ".hcl"
	case FormatYAML:
		return ".yaml"
	case FormatJSON:
		return ".json"
	default:
		return ""
	}
}

// DetectFormat detects the configuration format from the file extension.
func DetectFormat(filePath string) ConfigFormat {
	switch strings.ToLower(filepath.Ext(filePath)) {
	case ".hcl":
		return FormatHCL
	case ".yaml", ".yml":
		return FormatYAML
	case ".json":
		return FormatJSON
	default:
		return FormatUnknown
	}
}

// ParseFormat converts a format name such as "yaml" into a ConfigFormat.
func ParseFormat(name string) ConfigFormat {
	switch strings.ToLower(strings.TrimPrefix(name, ".")) {
	case "hcl":
		return FormatHCL
	case "yaml", "yml":
		return FormatYAML
	case "json":
		return FormatJSON
	default:
		return FormatUnknown
	}
}

// EvalInput is what a parser receives for one configuration file.
type EvalInput struct {
	// Path is the file name used in messages and traces.
	Path string
	// Dir is the absolute directory of the file.
	Dir string
	// Data is the file content.
	Data []byte
	// Environ is exposed to evaluated formats as the env variable.
	Environ map[string]string
}

// ConfigParser evaluates a configuration file into group definitions.
//
// Go binaries are compiled statically, so additional formats are added via
// compile-time registration:
//
//	herald.RegisterParser(&MyTOMLParser{})
type ConfigParser interface {
	// Parse evaluates the file. Group order must follow the file.
	Parse(in EvalInput) ([]GroupSpec, error)

	// Supports returns true if this parser can handle the given format
	Supports(format ConfigFormat) bool

	// Name returns a human-readable name for this parser (for debugging)
	Name() string
}

var (
	customParsers []ConfigParser
	parserMutex   sync.RWMutex
)

// RegisterParser registers a custom parser. Custom parsers are tried
// before the built-in ones.
func RegisterParser(parser ConfigParser) {
	parserMutex.Lock()
	defer parserMutex.Unlock()
	customParsers = append(customParsers, parser)
}

// customParser returns the first registered parser supporting format.
func customParser(format ConfigFormat) ConfigParser {
	parserMutex.RLock()
	defer parserMutex.RUnlock()
	for _, parser := range customParsers {
		if parser.Supports(format) {
			return parser
		}
	}
	return nil
}

// EvalError describes a configuration file that could not be evaluated.
type EvalError struct {
	// Detail is the human-readable reason.
	Detail string
	// Trace holds "file:line:column: summary" locations, most relevant first.
	Trace []string
	cause error
}

// Error implements the error interface.
func (e *EvalError) Error() string { return e.Detail }

// Unwrap exposes the coded cause.
func (e *EvalError) Unwrap() error { return e.cause }

func newEvalError(path, detail string, trace ...string) *EvalError {
	return &EvalError{
		Detail: detail,
		Trace:  trace,
		cause:  errors.New(ErrCodeConfigLoad, detail).WithContext("file", path),
	}
}

// ParseConfig evaluates a configuration file of the given format.
func ParseConfig(in EvalInput, format ConfigFormat) ([]GroupSpec, error) {
	if parser := customParser(format); parser != nil {
		return parser.Parse(in)
	}

	switch format {
	case FormatHCL:
		return parseHCL(in)
	case FormatYAML:
		return parseYAML(in)
	case FormatJSON:
		return parseJSON(in)
	default:
		return nil, newEvalError(in.Path, "unsupported configuration format "+filepath.Ext(in.Path))
	}
}
