// logger.go: Leveled stdio logger for herald
//
// Five severities, ordered error < warn < log < info < debug. Debug, info and
// log messages go to the output stream; warnings and errors go to the error
// stream. Messages above the current level are dropped.
//
// Copyright (c) 2025 AGILira
// Series: AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package herald

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/agilira/go-errors"
	"github.com/fatih/color"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Level is a logger severity. Levels map onto zapcore levels so that a
// higher value is more severe.
type Level int8

const (
	LevelDebug Level = Level(zapcore.DebugLevel)
	LevelInfo  Level = LevelDebug + 1
	LevelLog   Level = LevelDebug + 2
	LevelWarn  Level = LevelDebug + 3
	LevelError Level = LevelDebug + 4
)

// String returns the lower-case level name.
func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "debug"
	case LevelInfo:
		return "info"
	case LevelLog:
		return "log"
	case LevelWarn:
		return "warn"
	case LevelError:
		return "error"
	default:
		return "unknown"
	}
}

// raise returns the next more verbose level, stopping at debug.
func (l Level) raise() Level {
	if l <= LevelDebug {
		return LevelDebug
	}
	return l - 1
}

// LevelNames lists the level names from least to most verbose.
func LevelNames() []string {
	return []string{"error", "warn", "log", "info", "debug"}
}

// ParseLevel converts a level name into a Level.
func ParseLevel(name string) (Level, error) {
	for _, l := range []Level{LevelError, LevelWarn, LevelLog, LevelInfo, LevelDebug} {
		if l.String() == name {
			return l, nil
		}
	}
	return LevelLog, errors.New(ErrCodeInvalidLogLevel,
		fmt.Sprintf("unknown log level %q, expected one of [%s]", name, strings.Join(LevelNames(), ", ")))
}

var levelColors = map[Level]color.Attribute{
	LevelDebug: color.FgHiBlack,
	LevelInfo:  color.FgCyan,
	LevelLog:   color.FgWhite,
	LevelWarn:  color.FgYellow,
	LevelError: color.FgRed,
}

// StdioLogger writes leveled messages to an output and an error stream.
type StdioLogger struct {
	mu      sync.Mutex
	stdout  io.Writer
	stderr  io.Writer
	level   zap.AtomicLevel
	verbose bool
	color   bool
	zap     *zap.Logger
}

// NewStdioLogger creates a logger at level log. Nil writers default to
// os.Stdout and os.Stderr.
func NewStdioLogger(stdout, stderr io.Writer) *StdioLogger {
	if stdout == nil {
		stdout = os.Stdout
	}
	if stderr == nil {
		stderr = os.Stderr
	}
	l := &StdioLogger{
		stdout: stdout,
		stderr: stderr,
		level:  zap.NewAtomicLevelAt(zapcore.Level(LevelLog)),
	}
	l.build()
	return l
}

// build assembles the two console cores. It is called whenever the prefix
// or colour settings change.
func (l *StdioLogger) build() {
	encoderConfig := zapcore.EncoderConfig{
		MessageKey:       "message",
		LineEnding:       "\n",
		ConsoleSeparator: " ",
	}
	if l.verbose {
		encoderConfig.LevelKey = "level"
		encoderConfig.EncodeLevel = l.encodeLevel
	}
	encoder := zapcore.NewConsoleEncoder(encoderConfig)

	threshold := l.level
	out := zapcore.NewCore(encoder, unsynced(l.stdout),
		zap.LevelEnablerFunc(func(lvl zapcore.Level) bool {
			return threshold.Enabled(lvl) && lvl < zapcore.Level(LevelWarn)
		}))
	errOut := zapcore.NewCore(encoder, unsynced(l.stderr),
		zap.LevelEnablerFunc(func(lvl zapcore.Level) bool {
			return threshold.Enabled(lvl) && lvl >= zapcore.Level(LevelWarn)
		}))

	l.zap = zap.New(zapcore.NewTee(out, errOut))
}

// unsynced hides Sync from w. Errors are written at a level zap syncs
// after, and syncing a terminal or pipe fails on some platforms.
func unsynced(w io.Writer) zapcore.WriteSyncer {
	return zapcore.AddSync(struct{ io.Writer }{w})
}

func (l *StdioLogger) encodeLevel(lvl zapcore.Level, enc zapcore.PrimitiveArrayEncoder) {
	level := Level(lvl)
	prefix := "[" + strings.ToUpper(level.String()) + "]"
	if l.color {
		c := color.New(levelColors[level])
		c.EnableColor()
		prefix = c.Sprint(prefix)
	}
	enc.AppendString(prefix)
}

// SetVerbose toggles the [LEVEL] prefix on every message.
func (l *StdioLogger) SetVerbose(verbose bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.verbose = verbose
	l.build()
}

// Verbose reports whether messages are prefixed with their level.
func (l *StdioLogger) Verbose() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.verbose
}

// SetColor toggles coloured level prefixes.
func (l *StdioLogger) SetColor(enabled bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.color = enabled
	l.build()
}

// SetLevel sets the threshold by name.
func (l *StdioLogger) SetLevel(name string) error {
	level, err := ParseLevel(name)
	if err != nil {
		return err
	}
	l.SetLevelValue(level)
	return nil
}

// SetLevelValue sets the threshold.
func (l *StdioLogger) SetLevelValue(level Level) {
	l.level.SetLevel(zapcore.Level(level))
}

// Level returns the current threshold.
func (l *StdioLogger) Level() Level {
	return Level(l.level.Level())
}

// Enabled reports whether messages at level are written.
func (l *StdioLogger) Enabled(level Level) bool {
	return l.level.Enabled(zapcore.Level(level))
}

func (l *StdioLogger) write(level Level, args []interface{}) {
	l.mu.Lock()
	logger := l.zap
	l.mu.Unlock()

	if ce := logger.Check(zapcore.Level(level), joinArgs(args)); ce != nil {
		ce.Write()
	}
}

// joinArgs formats arguments separated by single spaces.
func joinArgs(args []interface{}) string {
	return strings.TrimSuffix(fmt.Sprintln(args...), "\n")
}

// Debug writes to the output stream at level debug.
func (l *StdioLogger) Debug(args ...interface{}) { l.write(LevelDebug, args) }

// Info writes to the output stream at level info.
func (l *StdioLogger) Info(args ...interface{}) { l.write(LevelInfo, args) }

// Log writes to the output stream at level log.
func (l *StdioLogger) Log(args ...interface{}) { l.write(LevelLog, args) }

// Warn writes to the error stream at level warn.
func (l *StdioLogger) Warn(args ...interface{}) { l.write(LevelWarn, args) }

// Error writes to the error stream at level error.
func (l *StdioLogger) Error(args ...interface{}) { l.write(LevelError, args) }

// D is shorthand for Debug.
func (l *StdioLogger) D(args ...interface{}) { l.Debug(args...) }

// I is shorthand for Info.
func (l *StdioLogger) I(args ...interface{}) { l.Info(args...) }

// L is shorthand for Log.
func (l *StdioLogger) L(args ...interface{}) { l.Log(args...) }

// W is shorthand for Warn.
func (l *StdioLogger) W(args ...interface{}) { l.Warn(args...) }

// E is shorthand for Error.
func (l *StdioLogger) E(args ...interface{}) { l.Error(args...) }

// Debugf formats according to a format specifier and writes at level debug.
func (l *StdioLogger) Debugf(format string, args ...interface{}) {
	if l.Enabled(LevelDebug) {
		l.write(LevelDebug, []interface{}{fmt.Sprintf(format, args...)})
	}
}

// Sync flushes both streams when they support it.
func (l *StdioLogger) Sync() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.zap.Sync()
}
