// Command handlers for the herald CLI
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package cli

import (
	"context"
	goerrors "errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/agilira/go-errors"
	"github.com/agilira/herald"
	"github.com/agilira/orpheus/pkg/orpheus"
	"github.com/spf13/afero"
)

// Error codes for management commands
const (
	ErrCodeMissingArgument = "HERALD_CLI_MISSING_ARGUMENT"
	ErrCodeFileExists      = "HERALD_CLI_FILE_EXISTS"
	ErrCodeUnknownTemplate = "HERALD_CLI_UNKNOWN_TEMPLATE"
)

// handleGroups prints every selected group as "Name (environment)".
func (m *Manager) handleGroups(ctx *orpheus.Context) error {
	logger, err := m.newLogger(ctx)
	if err != nil {
		return err
	}

	groups, err := m.loader(ctx, logger).Load(context.Background(), selection(ctx, false))
	if err != nil {
		logger.Error(err.Error())
		return reported(err)
	}

	for _, g := range groups {
		fmt.Fprintln(m.out, g.String())
	}
	return nil
}

// handleFiles prints the resolved load path of every selected group.
func (m *Manager) handleFiles(ctx *orpheus.Context) error {
	logger, err := m.newLogger(ctx)
	if err != nil {
		return err
	}

	background := context.Background()
	groups, err := m.loader(ctx, logger).Load(background, selection(ctx, true))
	if err != nil {
		logger.Error(err.Error())
		return reported(err)
	}

	withKinds := ctx.GetFlagBool("kinds")
	for i, g := range groups {
		rs, err := g.Resolve(background)
		if err != nil {
			logger.Error(err.Error())
			return reported(err)
		}

		if i > 0 {
			fmt.Fprintln(m.out)
		}
		fmt.Fprintf(m.out, "%s:\n", g.String())
		for _, r := range rs.Resources() {
			if withKinds {
				fmt.Fprintf(m.out, "  %-12s %s\n", r.Kind, r.Path)
				continue
			}
			fmt.Fprintf(m.out, "  %s\n", r.Path)
		}
	}
	return nil
}

// handleValidate evaluates a single configuration file.
func (m *Manager) handleValidate(ctx *orpheus.Context) error {
	filePath := arg(ctx, 0)
	if filePath == "" {
		return errors.New(ErrCodeMissingArgument, "usage: herald validate <file>")
	}

	loader := herald.NewLoader(herald.LoaderConfig{FS: m.fs, WorkingDir: m.dir()})
	file, err := loader.LoadFile(context.Background(), filePath)
	if err != nil {
		fmt.Fprintf(m.out, "Invalid configuration: %s\n", err.Error())
		var loadErr *herald.LoadError
		if goerrors.As(err, &loadErr) && loadErr.Trace != "" {
			fmt.Fprintln(m.out, loadErr.Trace)
		}
		return reported(err)
	}

	fmt.Fprintf(m.out, "Valid %s configuration: %s (%d groups)\n", file.Format, file.Name, len(file.Groups))
	for _, g := range file.Groups {
		fmt.Fprintf(m.out, "  %s\n", g.String())
	}
	return nil
}

// handleInit writes a starter configuration in the format implied by the
// file extension.
func (m *Manager) handleInit(ctx *orpheus.Context) error {
	filePath := arg(ctx, 0)
	if filePath == "" {
		return errors.New(ErrCodeMissingArgument, "usage: herald init [--template=basic] [--force] <file>")
	}

	template := ctx.GetFlagString("template")
	if template == "" {
		template = "basic"
	}
	specs, ok := herald.Template(template)
	if !ok {
		return errors.New(ErrCodeUnknownTemplate, fmt.Sprintf("unknown template '%s'", template)).
			WithContext("available", strings.Join(herald.TemplateNames(), ","))
	}

	target := m.abs(filePath)
	if exists, _ := afero.Exists(m.fs, target); exists && !ctx.GetFlagBool("force") {
		return errors.New(ErrCodeFileExists, fmt.Sprintf("%s already exists, use --force to overwrite", filePath))
	}

	writer, err := herald.NewConfigWriter(m.fs, target, specs)
	if err != nil {
		return err
	}
	if err := writer.WriteConfig(); err != nil {
		return err
	}

	fmt.Fprintf(m.out, "Created %s configuration: %s\n", herald.DetectFormat(target), filePath)
	fmt.Fprintf(m.out, "Template: %s\n", template)
	return nil
}

// handleConvert re-writes a configuration file in the format of the output
// extension.
func (m *Manager) handleConvert(ctx *orpheus.Context) error {
	input, output := arg(ctx, 0), arg(ctx, 1)
	if input == "" || output == "" {
		return errors.New(ErrCodeMissingArgument, "usage: herald convert <input> <output>")
	}

	loader := herald.NewLoader(herald.LoaderConfig{FS: m.fs, WorkingDir: m.dir()})
	file, err := loader.LoadFile(context.Background(), input)
	if err != nil {
		return err
	}

	writer, err := herald.NewConfigWriter(m.fs, m.abs(output), file.Specs)
	if err != nil {
		return err
	}
	if err := writer.WriteConfig(); err != nil {
		return err
	}

	fmt.Fprintf(m.out, "Converted %s (%s) -> %s (%s)\n", input, file.Format, output, herald.DetectFormat(output))
	return nil
}

// reported marks err as already written to the user.
func reported(err error) error {
	return &herald.ExitError{Code: 1, Message: err.Error(), Cause: err}
}

func (m *Manager) dir() string {
	if m.workingDir != "" {
		return m.workingDir
	}
	if wd, err := os.Getwd(); err == nil {
		return wd
	}
	return "."
}

func (m *Manager) abs(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(m.dir(), path)
}
