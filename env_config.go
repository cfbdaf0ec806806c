// env_config.go: Environment variable support for herald
//
// Copyright (c) 2025 AGILira
// Series: AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package herald

import (
	"fmt"
	"os"
	"strings"

	"github.com/agilira/go-errors"
	"github.com/mattn/go-shellwords"
)

// LogLevelEnv seeds the default log level of programs that honour it.
const LogLevelEnv = "HERALD_LOG_LEVEL"

// argumentVector returns args prefixed by the arguments found in the
// variable named by EnvironmentVariable, split with shell quoting rules.
func (c *CLI) argumentVector(args []string) ([]string, error) {
	if c.EnvironmentVariable == "" {
		return args, nil
	}
	extra, err := SplitEnvArguments(os.Getenv(c.EnvironmentVariable))
	if err != nil {
		message := fmt.Sprintf("Could not parse %s: %s", c.EnvironmentVariable, err.Error())
		return nil, &ExitError{
			Code:    1,
			Message: message,
			Cause: errors.Wrap(err, ErrCodeEnvArguments, message).
				WithContext("variable", c.EnvironmentVariable),
		}
	}

	argv := make([]string, 0, len(extra)+len(args))
	argv = append(argv, extra...)
	return append(argv, args...), nil
}

// SplitEnvArguments splits value the way a POSIX shell would, without
// expanding variables or running commands.
func SplitEnvArguments(value string) ([]string, error) {
	if strings.TrimSpace(value) == "" {
		return nil, nil
	}
	parser := shellwords.NewParser()
	parser.ParseEnv = false
	parser.ParseBacktick = false
	return parser.Parse(value)
}

// GetEnvWithDefault returns environment variable value or default if not set
func GetEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// DefaultLogLevel returns the level named by HERALD_LOG_LEVEL, or log when
// the variable is unset or names no level.
func DefaultLogLevel() Level {
	level, err := ParseLevel(strings.ToLower(GetEnvWithDefault(LogLevelEnv, LevelLog.String())))
	if err != nil {
		return LevelLog
	}
	return level
}
