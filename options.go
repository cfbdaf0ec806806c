// options.go: Options and operands for the herald argument parser
//
// Copyright (c) 2025 AGILira
// Series: AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package herald

import "github.com/agilira/herald/internal/fsutil"

// OptionConfig configures an option at registration time.
type OptionConfig struct {
	// HasValue makes the option consume a value (--port 80, --port=80, -p80).
	HasValue bool

	// OptionalValue makes the option consume the next argument only when
	// it does not look like another option.
	OptionalValue bool

	// DefaultValue is the value when the option is not given. Implies HasValue.
	DefaultValue string

	// Values restricts the accepted values. Implies HasValue.
	Values []string

	// Validators run after parsing, in order. The first failure wins.
	Validators []Validator

	// MaxTimes caps how often a flag may be repeated (-vv counts twice).
	// Zero means unlimited for flags; value options may only be set once.
	MaxTimes int
}

// Option is a named command-line flag such as -p/--port.
type Option struct {
	Short       string
	Long        string
	Description string

	// IsSet reports whether the option appeared in the argument vector.
	IsSet bool
	// Times counts the occurrences of the option.
	Times int
	// Value holds the assigned value, or DefaultValue when unset.
	Value string

	config OptionConfig
}

func newOption(short, long, description string, config OptionConfig) *Option {
	if config.DefaultValue != "" || len(config.Values) > 0 {
		config.HasValue = true
	}
	return &Option{
		Short:       short,
		Long:        long,
		Description: description,
		Value:       config.DefaultValue,
		config:      config,
	}
}

// Signature renders the option the way users type it, e.g. -p/--port.
func (o *Option) Signature() string {
	switch {
	case o.Short != "" && o.Long != "":
		return o.Short + "/" + o.Long
	case o.Long != "":
		return o.Long
	default:
		return o.Short
	}
}

// HasValue reports whether the option takes a value.
func (o *Option) HasValue() bool { return o.config.HasValue || o.config.OptionalValue }

// DefaultValue returns the configured default.
func (o *Option) DefaultValue() string { return o.config.DefaultValue }

// AllowedValues returns the restricted value set, if any.
func (o *Option) AllowedValues() []string { return o.config.Values }

// List splits a comma-separated value into trimmed, non-empty entries.
// Commas inside {a,b} pattern alternatives are kept.
func (o *Option) List() []string {
	return fsutil.SplitList(o.Value)
}

func (o *Option) reset() {
	o.IsSet = false
	o.Times = 0
	o.Value = o.config.DefaultValue
}

// OperandConfig configures an operand at registration time.
type OperandConfig struct {
	Validators []Validator
}

// Operand is a positional argument.
type Operand struct {
	Name        string
	Description string

	IsSet bool
	Value string

	validators []Validator
}

// Signature returns the operand name.
func (o *Operand) Signature() string { return o.Name }

func (o *Operand) reset() {
	o.IsSet = false
	o.Value = ""
}
