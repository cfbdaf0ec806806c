// args.go: Argument vector parsing for herald
//
// Copyright (c) 2025 AGILira
// Series: AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package herald

import (
	"fmt"
	"strings"

	"github.com/spf13/afero"
)

// argParser holds registered options and operands and assigns an argument
// vector to them.
type argParser struct {
	options  []*Option
	operands []*Operand
	flags    map[string]*Option // "-p" and "--port" both map to the option
}

func newArgParser() *argParser {
	return &argParser{flags: make(map[string]*Option)}
}

func (p *argParser) addOption(opt *Option) {
	p.options = append(p.options, opt)
	if opt.Short != "" {
		p.flags[opt.Short] = opt
	}
	if opt.Long != "" {
		p.flags[opt.Long] = opt
	}
}

func (p *argParser) addOperand(opd *Operand) {
	p.operands = append(p.operands, opd)
}

// handle assigns argv to the registered options and operands. State from a
// previous call is discarded first.
func (p *argParser) handle(argv []string) error {
	for _, opt := range p.options {
		opt.reset()
	}
	for _, opd := range p.operands {
		opd.reset()
	}

	for i := 0; i < len(argv); i++ {
		arg := argv[i]

		switch {
		case arg == "--":
			for _, rest := range argv[i+1:] {
				if err := p.assignOperand(rest); err != nil {
					return err
				}
			}
			return nil

		case strings.HasPrefix(arg, "--"):
			next, err := p.handleLong(arg, argv, i)
			if err != nil {
				return err
			}
			i = next

		case isShortOption(arg):
			next, err := p.handleShort(arg, argv, i)
			if err != nil {
				return err
			}
			i = next

		default:
			if err := p.assignOperand(arg); err != nil {
				return err
			}
		}
	}
	return nil
}

// handleLong processes --name and --name=value. It returns the index of the
// last consumed argument.
func (p *argParser) handleLong(arg string, argv []string, i int) (int, error) {
	name, inline, hasInline := strings.Cut(arg, "=")

	opt, ok := p.flags[name]
	if !ok {
		return i, newUsageError(ErrCodeUnknownOption, fmt.Sprintf("Unknown option %s.", name))
	}
	if err := p.mark(opt); err != nil {
		return i, err
	}

	if !opt.HasValue() {
		if hasInline {
			return i, newUsageError(ErrCodeUnexpectedValue,
				fmt.Sprintf("%s does not take a value.", opt.Signature()))
		}
		return i, nil
	}

	if hasInline {
		return i, p.assign(opt, inline)
	}
	return p.consumeValue(opt, argv, i)
}

// handleShort processes clusters like -v, -vv, -p 80 and -p80.
func (p *argParser) handleShort(arg string, argv []string, i int) (int, error) {
	cluster := arg[1:]
	for j, ch := range cluster {
		flag := "-" + string(ch)
		opt, ok := p.flags[flag]
		if !ok {
			return i, newUsageError(ErrCodeUnknownOption, fmt.Sprintf("Unknown option %s.", flag))
		}
		if err := p.mark(opt); err != nil {
			return i, err
		}
		if !opt.HasValue() {
			continue
		}

		if rest := cluster[j+len(string(ch)):]; rest != "" {
			return i, p.assign(opt, rest)
		}
		return p.consumeValue(opt, argv, i)
	}
	return i, nil
}

// consumeValue takes the argument after index i as the value of opt.
func (p *argParser) consumeValue(opt *Option, argv []string, i int) (int, error) {
	if i+1 < len(argv) && !looksLikeOption(argv[i+1]) {
		return i + 1, p.assign(opt, argv[i+1])
	}
	if opt.config.OptionalValue {
		opt.Value = ""
		return i, nil
	}
	return i, newUsageError(ErrCodeMissingValue,
		fmt.Sprintf("No value specified for %s.", opt.Signature()))
}

// mark records an occurrence of opt and enforces repetition limits.
func (p *argParser) mark(opt *Option) error {
	opt.Times++
	opt.IsSet = true

	switch {
	case opt.HasValue() && opt.Times > 1:
		return newUsageError(ErrCodeRepeatedOption,
			fmt.Sprintf("%s can only be set once.", opt.Signature()))
	case opt.config.MaxTimes > 0 && opt.Times > opt.config.MaxTimes:
		return newUsageError(ErrCodeRepeatedOption,
			fmt.Sprintf("%s can only be set %d times.", opt.Signature(), opt.config.MaxTimes))
	}
	return nil
}

// assign sets the value of opt, honouring a restricted value set.
func (p *argParser) assign(opt *Option, value string) error {
	if allowed := opt.config.Values; len(allowed) > 0 && !contains(allowed, value) {
		return newUsageError(ErrCodeInvalidValue,
			fmt.Sprintf("%s needs to be one of [%s], got %s.",
				opt.Signature(), strings.Join(allowed, ", "), value))
	}
	opt.Value = value
	return nil
}

func (p *argParser) assignOperand(value string) error {
	for _, opd := range p.operands {
		if !opd.IsSet {
			opd.IsSet = true
			opd.Value = value
			return nil
		}
	}
	return newUsageError(ErrCodeUnexpectedOperand, fmt.Sprintf("Unexpected argument %s.", value))
}

// validate runs option validators, then operand validators, and returns
// the first failure.
func (p *argParser) validate(fs afero.Fs, dir string) error {
	for _, opt := range p.options {
		in := Validation{Signature: opt.Signature(), Value: opt.Value, IsSet: opt.IsSet, FS: fs, Dir: dir}
		if err := runValidators(opt.config.Validators, in); err != nil {
			return err
		}
	}
	for _, opd := range p.operands {
		in := Validation{Signature: opd.Signature(), Value: opd.Value, IsSet: opd.IsSet, FS: fs, Dir: dir}
		if err := runValidators(opd.validators, in); err != nil {
			return err
		}
	}
	return nil
}

func isShortOption(arg string) bool {
	return len(arg) > 1 && arg[0] == '-' && arg[1] != '-'
}

// looksLikeOption reports whether arg would be parsed as an option.
// A lone "-" is an ordinary value.
func looksLikeOption(arg string) bool {
	return len(arg) > 1 && arg[0] == '-'
}

func contains(values []string, value string) bool {
	for _, v := range values {
		if v == value {
			return true
		}
	}
	return false
}
