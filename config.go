// config.go: Loader configuration for herald
//
// Copyright (c) 2025 AGILira
// Series: AGILira System Libraries
// SPDX-License-Identifier: MPL-2.0

package herald

import (
	"os"
	"path"
	"strings"

	"github.com/spf13/afero"
)

// DefaultBaseName is the configuration base name used when none is given.
const DefaultBaseName = "herald"

// LoaderConfig configures configuration discovery and evaluation.
type LoaderConfig struct {
	// BaseName is the file name without extension searched for when no
	// explicit configuration is given, e.g. "buster" for buster.hcl.
	BaseName string

	// ConfigFlag is the option signature used in error messages.
	// Default: "-c/--config"
	ConfigFlag string

	// FS is the file system configuration files are read from.
	// Default: afero.NewOsFs()
	FS afero.Fs

	// WorkingDir anchors relative paths and starts the upward search.
	// Default: os.Getwd()
	WorkingDir string

	// Logger receives debug diagnostics. Optional.
	Logger *StdioLogger

	// Locations are the directories, relative to each searched directory,
	// tried for a default configuration file.
	// Default: "", "test", "spec"
	Locations []string

	// Extensions are tried in order for every location.
	// Default: .hcl, .yaml, .yml, .json
	Extensions []string

	// Environ is exposed to evaluated formats.
	// Default: the process environment
	Environ map[string]string
}

// WithDefaults applies sensible defaults to the configuration
func (c *LoaderConfig) WithDefaults() *LoaderConfig {
	config := *c

	if config.BaseName == "" {
		config.BaseName = DefaultBaseName
	}
	if config.ConfigFlag == "" {
		config.ConfigFlag = "-c/--config"
	}
	if config.FS == nil {
		config.FS = afero.NewOsFs()
	}
	if config.WorkingDir == "" {
		if wd, err := os.Getwd(); err == nil {
			config.WorkingDir = wd
		} else {
			config.WorkingDir = "."
		}
	}
	if len(config.Locations) == 0 {
		config.Locations = []string{"", "test", "spec"}
	}
	if len(config.Extensions) == 0 {
		config.Extensions = []string{".hcl", ".yaml", ".yml", ".json"}
	}
	if config.Environ == nil {
		config.Environ = environMap(os.Environ())
	}

	return &config
}

// Candidates lists the default file locations in search order.
func (c *LoaderConfig) Candidates() []string {
	var out []string
	for _, ext := range c.Extensions {
		for _, loc := range c.Locations {
			out = append(out, path.Join(loc, c.BaseName+ext))
		}
	}
	return out
}

func environMap(environ []string) map[string]string {
	env := make(map[string]string, len(environ))
	for _, kv := range environ {
		if k, v, ok := strings.Cut(kv, "="); ok && k != "" {
			env[k] = v
		}
	}
	return env
}
