// herald: command-line front-end toolkit
//
// Philosophy:
// - One CLI value per invocation, discarded on exit
// - Descriptive user-facing errors, written to the error stream once
// - Configuration files are evaluated, merged and filtered before any work starts
// - File system access goes through afero so everything is testable in memory
//
// Example Usage:
//   cli := herald.New()
//   logger := cli.CreateLogger(os.Stdout, os.Stderr)
//   cli.AddHelpOption("Runs things.", "Longer description.")
//   cli.AddConfigOption("buster")
//
//   if err := cli.ParseArgs(os.Args[1:]); err != nil {
//       os.Exit(herald.ExitCode(err))
//   }
//
//   groups, err := cli.LoadConfig(context.Background())
//   if err != nil {
//       logger.Error(err)
//       os.Exit(1)
//   }
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package herald

import (
	"context"
	goerrors "errors"
	"io"
	"os"

	"github.com/agilira/go-errors"
	"github.com/spf13/afero"
)

// Error codes for herald operations
const (
	ErrCodeUnknownOption     = "HERALD_UNKNOWN_OPTION"
	ErrCodeMissingValue      = "HERALD_MISSING_VALUE"
	ErrCodeUnexpectedValue   = "HERALD_UNEXPECTED_VALUE"
	ErrCodeInvalidValue      = "HERALD_INVALID_VALUE"
	ErrCodeRepeatedOption    = "HERALD_REPEATED_OPTION"
	ErrCodeUnexpectedOperand = "HERALD_UNEXPECTED_OPERAND"
	ErrCodeValidation        = "HERALD_VALIDATION_FAILED"
	ErrCodeHelpTopic         = "HERALD_UNKNOWN_HELP_TOPIC"
	ErrCodeHelpRequested     = "HERALD_HELP_REQUESTED"
	ErrCodeInvalidLogLevel   = "HERALD_INVALID_LOG_LEVEL"
	ErrCodeEnvArguments      = "HERALD_INVALID_ENV_ARGUMENTS"
	ErrCodeConfigNotFound    = "HERALD_CONFIG_NOT_FOUND"
	ErrCodeConfigLoad        = "HERALD_CONFIG_LOAD_ERROR"
	ErrCodeConfigEmpty       = "HERALD_CONFIG_EMPTY"
	ErrCodeConfigInvalid     = "HERALD_CONFIG_INVALID"
	ErrCodeNoMatchingGroups  = "HERALD_NO_MATCHING_GROUPS"
	ErrCodeUnsupportedFormat = "HERALD_UNSUPPORTED_FORMAT"
	ErrCodeResolve           = "HERALD_RESOLVE_ERROR"
	ErrCodeConfigWrite       = "HERALD_CONFIG_WRITE_ERROR"
	ErrCodeCanceled          = "HERALD_CANCELED"
)

// ExitError is returned by ParseArgs when the program should stop.
// The message has already been written to the appropriate stream.
type ExitError struct {
	Code    int
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *ExitError) Error() string { return e.Message }

// Unwrap exposes the coded cause.
func (e *ExitError) Unwrap() error { return e.Cause }

func newUsageError(code errors.ErrorCode, message string) *ExitError {
	return &ExitError{Code: 1, Message: message, Cause: errors.New(code, message)}
}

// ExitCode maps an error returned by this package to a process exit code.
// A nil error maps to 0, an *ExitError to its Code, anything else to 1.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var exitErr *ExitError
	if goerrors.As(err, &exitErr) {
		return exitErr.Code
	}
	return 1
}

// CLI ties together the option parser, the help renderer, the logger and
// the configuration loader for a single command-line invocation.
type CLI struct {
	// EnvironmentVariable names a variable whose value is split into
	// arguments and placed in front of the vector given to ParseArgs.
	EnvironmentVariable string

	// FS is used by validators and the configuration loader.
	// Default: afero.NewOsFs()
	FS afero.Fs

	// WorkingDir anchors relative paths. Default: os.Getwd()
	WorkingDir string

	args   *argParser
	help   *helpOption
	logger *StdioLogger
	stdout io.Writer
	stderr io.Writer

	logLevel *Option
	verbose  *Option

	config *configOptions
}

// New creates an empty CLI. Options are added with Opt, Opd and the
// Add*Option helpers before calling ParseArgs.
func New() *CLI {
	return &CLI{
		FS:   afero.NewOsFs(),
		args: newArgParser(),
	}
}

// CreateLogger creates the CLI logger on the given streams and registers
// the -l/--log-level and -v/--verbose options that control it.
// Nil writers default to os.Stdout and os.Stderr.
func (c *CLI) CreateLogger(stdout, stderr io.Writer) *StdioLogger {
	c.logger = NewStdioLogger(stdout, stderr)
	c.stdout = c.logger.stdout
	c.stderr = c.logger.stderr

	if c.logLevel == nil {
		c.logLevel = c.Opt("-l", "--log-level", "Set logging level.", OptionConfig{
			Values:       LevelNames(),
			DefaultValue: LevelLog.String(),
		})
		c.verbose = c.Opt("-v", "--verbose",
			"Increase verbosity level. Include one (log level info) or two (debug) times.",
			OptionConfig{MaxTimes: 2})
	}
	return c.logger
}

// Logger returns the CLI logger, creating one on the process streams when
// CreateLogger has not been called.
func (c *CLI) Logger() *StdioLogger {
	if c.logger == nil {
		c.logger = NewStdioLogger(nil, nil)
		c.stdout = c.logger.stdout
		c.stderr = c.logger.stderr
	}
	return c.logger
}

// Opt registers an option. Either short or long may be empty.
func (c *CLI) Opt(short, long, description string, config ...OptionConfig) *Option {
	var cfg OptionConfig
	if len(config) > 0 {
		cfg = config[0]
	}
	opt := newOption(short, long, description, cfg)
	c.args.addOption(opt)
	return opt
}

// Opd registers an operand. Operands receive positional arguments in
// registration order.
func (c *CLI) Opd(name, description string, config ...OperandConfig) *Operand {
	var cfg OperandConfig
	if len(config) > 0 {
		cfg = config[0]
	}
	opd := &Operand{Name: name, Description: description, validators: cfg.Validators}
	c.args.addOperand(opd)
	return opd
}

// Err logs message to the error stream and returns an *ExitError with code 1.
func (c *CLI) Err(message string) error {
	c.Logger().Error(message)
	return &ExitError{Code: 1, Message: message, Cause: errors.New(ErrCodeValidation, message)}
}

// ParseArgs parses args (prefixed by the arguments found in
// EnvironmentVariable), handles help, runs validators and applies the
// requested log level. It returns nil when the program should continue.
func (c *CLI) ParseArgs(args []string) error {
	logger := c.Logger()

	argv, err := c.argumentVector(args)
	if err != nil {
		logger.Error(err.Error())
		return err
	}

	if err := c.args.handle(argv); err != nil {
		logger.Error(err.Error())
		return err
	}

	if c.help != nil && c.help.option.IsSet {
		return c.printHelp(c.help.option.Value)
	}

	if err := c.args.validate(c.fs(), c.workingDir()); err != nil {
		logger.Error(err.Error())
		return err
	}

	if err := c.applyLogLevel(); err != nil {
		logger.Error(err.Error())
		return err
	}
	return nil
}

// applyLogLevel sets the logger level from -l and raises it once per -v.
func (c *CLI) applyLogLevel() error {
	if c.logLevel == nil {
		return nil
	}
	level, err := ParseLevel(c.logLevel.Value)
	if err != nil {
		return newUsageError(ErrCodeInvalidLogLevel, err.Error())
	}
	for i := 0; i < c.verbose.Times; i++ {
		level = level.raise()
	}
	c.logger.SetLevelValue(level)
	return nil
}

// LoadConfig loads, merges and filters configuration groups according to
// the options registered by AddConfigOption. It fails with a *LoadError.
func (c *CLI) LoadConfig(ctx context.Context) ([]*Group, error) {
	if c.config == nil {
		return nil, &LoadError{
			Message: "no configuration option registered",
			Cause:   errors.New(ErrCodeConfigInvalid, "AddConfigOption was not called"),
		}
	}

	loader := NewLoader(LoaderConfig{
		BaseName:   c.config.baseName,
		ConfigFlag: c.config.config.Signature(),
		FS:         c.fs(),
		WorkingDir: c.WorkingDir,
		Logger:     c.Logger(),
	})

	return loader.Load(ctx, Selection{
		ConfigPaths: c.config.config.List(),
		Group:       c.config.group.Value,
		Environment: c.config.environment.Value,
		Tests:       c.config.tests.List(),
	})
}

func (c *CLI) fs() afero.Fs {
	if c.FS == nil {
		c.FS = afero.NewOsFs()
	}
	return c.FS
}

func (c *CLI) workingDir() string {
	if c.WorkingDir != "" {
		return c.WorkingDir
	}
	wd, err := os.Getwd()
	if err != nil {
		return "."
	}
	return wd
}
