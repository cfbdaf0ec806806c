// Utility functions for the herald CLI
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package cli

import (
	"io"
	"os"

	"github.com/agilira/herald"
	"github.com/agilira/herald/internal/fsutil"
	"github.com/agilira/orpheus/pkg/orpheus"
	"golang.org/x/term"
)

// newLogger creates a logger on the manager streams at the level given by
// the log-level flag.
func (m *Manager) newLogger(ctx *orpheus.Context) (*herald.StdioLogger, error) {
	logger := herald.NewStdioLogger(m.out, m.errOut)
	if level := ctx.GetFlagString("log-level"); level != "" {
		if err := logger.SetLevel(level); err != nil {
			return nil, err
		}
	}
	if ctx.GetFlagBool("prefix") {
		logger.SetVerbose(true)
		logger.SetColor(m.terminal(m.errOut))
	}
	return logger, nil
}

// arg returns the i-th operand of the command. Flags may precede operands,
// so the raw argument list cannot be indexed directly.
func arg(ctx *orpheus.Context, i int) string {
	if ctx.Flags == nil {
		return ctx.GetArg(i)
	}
	operands := ctx.Flags.Args()
	if i < 0 || i >= len(operands) {
		return ""
	}
	return operands[i]
}

// loader builds a configuration loader from the command flags.
func (m *Manager) loader(ctx *orpheus.Context, logger *herald.StdioLogger) *herald.Loader {
	return herald.NewLoader(herald.LoaderConfig{
		BaseName:   ctx.GetFlagString("base"),
		FS:         m.fs,
		WorkingDir: m.workingDir,
		Logger:     logger,
	})
}

// selection reads the group selection flags.
func selection(ctx *orpheus.Context, withTests bool) herald.Selection {
	sel := herald.Selection{
		ConfigPaths: fsutil.SplitList(ctx.GetFlagString("config")),
		Group:       ctx.GetFlagString("group"),
		Environment: ctx.GetFlagString("environment"),
	}
	if withTests {
		sel.Tests = fsutil.SplitList(ctx.GetFlagString("tests"))
	}
	return sel
}

// isTerminal reports whether w is a terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
