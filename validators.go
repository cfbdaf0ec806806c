// validators.go - option and operand validation for herald
//
// Validators run after the argument vector has been assigned and before the
// program is allowed to continue. Messages may contain ${1} for the value
// and ${2} for the option signature.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package herald

import (
	"path/filepath"
	"strconv"
	"strings"

	"github.com/agilira/go-errors"
	"github.com/spf13/afero"
)

// Validation is the input handed to a Validator.
type Validation struct {
	Signature string
	Value     string
	IsSet     bool

	// FS and Dir let validators inspect the file system; relative values
	// are resolved against Dir.
	FS  afero.Fs
	Dir string
}

// Path returns Value resolved against Dir.
func (v Validation) Path() string {
	if filepath.IsAbs(v.Value) || v.Dir == "" {
		return v.Value
	}
	return filepath.Join(v.Dir, v.Value)
}

// Validator checks a parsed option or operand.
type Validator func(v Validation) error

// ValidationError is the failure reported by a Validator.
type ValidationError struct {
	Signature string
	Message   string
	cause     error
}

// Error implements the error interface.
func (e *ValidationError) Error() string { return e.Message }

// Unwrap exposes the coded cause.
func (e *ValidationError) Unwrap() error { return e.cause }

func newValidationError(v Validation, message string) *ValidationError {
	return &ValidationError{
		Signature: v.Signature,
		Message:   message,
		cause:     errors.New(ErrCodeValidation, message).WithContext("signature", v.Signature),
	}
}

// interpolate replaces ${1} with the value and ${2} with the signature.
func interpolate(message string, v Validation) string {
	return strings.NewReplacer("${1}", v.Value, "${2}", v.Signature).Replace(message)
}

func messageOr(custom, fallback string, v Validation) string {
	if custom == "" {
		custom = fallback
	}
	return interpolate(custom, v)
}

// Required fails when the option or operand was not given and has no default.
func Required(message string) Validator {
	return func(v Validation) error {
		if v.IsSet || v.Value != "" {
			return nil
		}
		return newValidationError(v, messageOr(message, "${2} is required.", v))
	}
}

// Integer fails when a given value is not a base-10 integer.
func Integer(message string) Validator {
	return func(v Validation) error {
		if v.Value == "" {
			return nil
		}
		if _, err := strconv.Atoi(v.Value); err != nil {
			return newValidationError(v, messageOr(message, "${2}: ${1} is not an integer.", v))
		}
		return nil
	}
}

// Number fails when a given value is not a number.
func Number(message string) Validator {
	return func(v Validation) error {
		if v.Value == "" {
			return nil
		}
		if _, err := strconv.ParseFloat(v.Value, 64); err != nil {
			return newValidationError(v, messageOr(message, "${2}: ${1} is not a number.", v))
		}
		return nil
	}
}

// File fails when a given value does not name a regular file.
func File(message string) Validator {
	return func(v Validation) error {
		if v.Value == "" {
			return nil
		}
		info, err := v.FS.Stat(v.Path())
		if err != nil || !info.Mode().IsRegular() {
			return newValidationError(v, messageOr(message, "${2}: ${1} is not a file.", v))
		}
		return nil
	}
}

// Directory fails when a given value does not name a directory.
func Directory(message string) Validator {
	return func(v Validation) error {
		if v.Value == "" {
			return nil
		}
		info, err := v.FS.Stat(v.Path())
		if err != nil || !info.IsDir() {
			return newValidationError(v, messageOr(message, "${2}: ${1} is not a directory.", v))
		}
		return nil
	}
}

// FileOrDirectory fails when a given value names nothing on disk.
func FileOrDirectory(message string) Validator {
	return func(v Validation) error {
		if v.Value == "" {
			return nil
		}
		if _, err := v.FS.Stat(v.Path()); err != nil {
			return newValidationError(v, messageOr(message, "${2}: ${1} is not a file or directory.", v))
		}
		return nil
	}
}

// InEnum fails when a given value is not one of values.
func InEnum(message string, values ...string) Validator {
	return func(v Validation) error {
		if v.Value == "" || contains(values, v.Value) {
			return nil
		}
		fallback := "${2} needs to be one of [" + strings.Join(values, ", ") + "], got ${1}."
		return newValidationError(v, messageOr(message, fallback, v))
	}
}

// Custom adapts a plain check into a Validator. A non-nil error from check
// is reported with its own text.
func Custom(check func(value string) error) Validator {
	return func(v Validation) error {
		if err := check(v.Value); err != nil {
			return newValidationError(v, interpolate(err.Error(), v))
		}
		return nil
	}
}

func runValidators(validators []Validator, v Validation) error {
	for _, validate := range validators {
		if err := validate(v); err != nil {
			return &ExitError{Code: 1, Message: err.Error(), Cause: err}
		}
	}
	return nil
}
