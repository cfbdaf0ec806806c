// Package cli provides the command-line interface for herald configuration management.
//
// This package implements the management CLI using the Orpheus framework:
// listing configuration groups, printing their resolved load paths,
// validating configuration files, writing starter configurations and
// converting between formats.
//
// Architecture:
// - Manager: Core CLI orchestration and command routing
// - Handlers: Individual command implementations
// - Utils: Shared helpers for flags, logging and output
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package cli

import (
	"io"
	"os"
	"strings"

	"github.com/agilira/herald"
	"github.com/agilira/orpheus/pkg/orpheus"
	"github.com/spf13/afero"
)

// Version is reported by the management CLI.
const Version = "1.0.0"

// Manager routes management commands to their handlers.
type Manager struct {
	app        *orpheus.App
	fs         afero.Fs
	out        io.Writer
	errOut     io.Writer
	workingDir string
	terminal   func(io.Writer) bool
}

// NewManager creates the management CLI on the process streams and the
// operating system file system.
func NewManager() *Manager {
	manager := &Manager{
		fs:       afero.NewOsFs(),
		out:      os.Stdout,
		errOut:   os.Stderr,
		terminal: isTerminal,
	}
	manager.app = manager.newApp()
	return manager
}

// newApp builds the command tree. Flag values live in the commands, so
// every Run starts from a fresh tree.
func (m *Manager) newApp() *orpheus.App {
	m.app = orpheus.New("herald").
		SetDescription("Inspect, validate and convert test configuration groups").
		SetVersion(Version)

	m.setupGroupCommands()
	m.setupFileCommands()

	return m.app
}

// WithFS replaces the file system configuration is read from and written to.
func (m *Manager) WithFS(fs afero.Fs) *Manager {
	m.fs = fs
	return m
}

// WithOutput redirects command output and diagnostics.
func (m *Manager) WithOutput(out, errOut io.Writer) *Manager {
	m.out = out
	m.errOut = errOut
	return m
}

// WithWorkingDir anchors relative paths and the configuration search.
func (m *Manager) WithWorkingDir(dir string) *Manager {
	m.workingDir = dir
	return m
}

// Run executes the CLI application with the provided arguments.
func (m *Manager) Run(args []string) error {
	return m.newApp().Run(args)
}

const prefixUsage = "Prefix diagnostics with their level, coloured on a terminal"

// setupGroupCommands configures the commands that load and select groups.
func (m *Manager) setupGroupCommands() {
	levels := "Log level (" + strings.Join(herald.LevelNames(), "|") + ")"
	defaultLevel := herald.DefaultLogLevel().String()

	// groups [-c files] [-g name] [-e env]
	groupsCmd := orpheus.NewCommand("groups", "List configuration groups").
		AddFlag("config", "c", "", "Configuration file(s), comma-separated paths or glob patterns").
		AddFlag("group", "g", "", "Only groups whose name contains this text").
		AddFlag("environment", "e", "", "Only groups of this environment").
		AddFlag("base", "b", herald.DefaultBaseName, "Base name of the default configuration file").
		AddFlag("log-level", "l", defaultLevel, levels).
		AddBoolFlag("prefix", "p", false, prefixUsage).
		SetHandler(m.handleGroups)
	m.app.AddCommand(groupsCmd)

	// files [-c files] [-g name] [-e env] [-t tests]
	filesCmd := orpheus.NewCommand("files", "Print the resolved load path of every group").
		AddFlag("config", "c", "", "Configuration file(s), comma-separated paths or glob patterns").
		AddFlag("group", "g", "", "Only groups whose name contains this text").
		AddFlag("environment", "e", "", "Only groups of this environment").
		AddFlag("tests", "t", "", "Only tests matching these comma-separated paths or patterns").
		AddFlag("base", "b", herald.DefaultBaseName, "Base name of the default configuration file").
		AddFlag("log-level", "l", defaultLevel, levels).
		AddBoolFlag("prefix", "p", false, prefixUsage).
		AddBoolFlag("kinds", "k", false, "Prefix every file with its list (libs, sources, test_helpers, tests)").
		SetHandler(m.handleFiles)
	m.app.AddCommand(filesCmd)
}

// setupFileCommands configures the commands that operate on single files.
func (m *Manager) setupFileCommands() {
	// validate <file>
	validateCmd := orpheus.NewCommand("validate", "Evaluate a configuration file and report its groups").
		SetHandler(m.handleValidate)
	m.app.AddCommand(validateCmd)

	// init [--template=basic] [--force] <file>
	initCmd := orpheus.NewCommand("init", "Write a starter configuration file").
		AddFlag("template", "t", "basic", "Template ("+strings.Join(herald.TemplateNames(), "|")+")").
		AddBoolFlag("force", "f", false, "Overwrite an existing file").
		SetHandler(m.handleInit)
	m.app.AddCommand(initCmd)

	// convert <input> <output>
	convertCmd := orpheus.NewCommand("convert", "Convert a configuration file to the format of the output extension").
		SetHandler(m.handleConvert)
	m.app.AddCommand(convertCmd)
}
