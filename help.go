// help.go: Help text rendering for herald
//
// Copyright (c) 2025 AGILira
// Series: AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package herald

import (
	"fmt"
	"io"
	"strings"

	"github.com/agilira/go-errors"
	"github.com/mitchellh/go-wordwrap"
)

// helpWidth is the terminal width help text is wrapped to.
const helpWidth = 80

// HelpTopic is extra help text shown with --help <topic>.
type HelpTopic struct {
	Name string
	Text string
}

type helpOption struct {
	option      *Option
	mission     string
	description string
	topics      []HelpTopic
}

// AddHelpOption registers -h/--help. mission and description head the
// generated help; topics become available as --help <name>.
func (c *CLI) AddHelpOption(mission, description string, topics ...HelpTopic) *Option {
	h := &helpOption{mission: mission, description: description, topics: topics}

	desc := "Show this message."
	if hint := h.topicHint("-h/--help"); hint != "" {
		desc += " " + hint
	}
	h.option = c.Opt("-h", "--help", desc, OptionConfig{OptionalValue: len(topics) > 0})
	c.help = h
	return h.option
}

// topicHint renders "See also -h/--help topic." or the bracketed list form.
func (h *helpOption) topicHint(signature string) string {
	switch len(h.topics) {
	case 0:
		return ""
	case 1:
		return fmt.Sprintf("See also %s %s.", signature, h.topics[0].Name)
	default:
		return fmt.Sprintf("See also %s [%s].", signature, strings.Join(h.topicNames(), ","))
	}
}

func (h *helpOption) topicNames() []string {
	names := make([]string, len(h.topics))
	for i, t := range h.topics {
		names[i] = t.Name
	}
	return names
}

func (h *helpOption) lookup(name string) (string, bool) {
	for _, t := range h.topics {
		if t.Name == name {
			return t.Text, true
		}
	}
	return "", false
}

// printHelp writes the full help or a single topic and returns the
// *ExitError that ends the invocation.
func (c *CLI) printHelp(topic string) error {
	c.Logger()

	if topic != "" {
		text, ok := c.help.lookup(topic)
		if !ok {
			message := fmt.Sprintf("No such help topic '%s'. Try without a specific help topic, or one of: %s.",
				topic, strings.Join(c.help.topicNames(), ","))
			c.logger.Error(message)
			return &ExitError{Code: 1, Message: message, Cause: errors.New(ErrCodeHelpTopic, message)}
		}
		fmt.Fprintln(c.stdout, text)
		return &ExitError{Code: 0, Message: "help topic shown", Cause: errors.New(ErrCodeHelpRequested, topic)}
	}

	c.WriteHelp(c.stdout)
	return &ExitError{Code: 0, Message: "help shown", Cause: errors.New(ErrCodeHelpRequested, "help")}
}

// WriteHelp renders the help text for every registered option and operand.
func (c *CLI) WriteHelp(w io.Writer) {
	var b strings.Builder

	if c.help != nil {
		if c.help.mission != "" {
			b.WriteString(c.help.mission + "\n\n")
		}
		if c.help.description != "" {
			b.WriteString(wordwrap.WrapString(c.help.description, helpWidth) + "\n\n")
		}
	}

	width := 0
	for _, opt := range c.args.options {
		width = max(width, len(opt.Signature()))
	}
	for _, opd := range c.args.operands {
		width = max(width, len(opd.Signature()))
	}

	if len(c.args.options) > 0 {
		b.WriteString("Options:\n")
		for _, opt := range c.args.options {
			writeHelpRow(&b, width, opt.Signature(), optionHelp(opt))
		}
	}
	if len(c.args.operands) > 0 {
		if len(c.args.options) > 0 {
			b.WriteString("\n")
		}
		b.WriteString("Operands:\n")
		for _, opd := range c.args.operands {
			writeHelpRow(&b, width, opd.Signature(), opd.Description)
		}
	}

	_, _ = io.WriteString(w, b.String())
}

// optionHelp appends the restricted value set and the default to the
// option description.
func optionHelp(opt *Option) string {
	parts := []string{opt.Description}
	if values := opt.AllowedValues(); len(values) > 0 {
		parts = append(parts, "One of "+strings.Join(values, ", ")+".")
	}
	if def := opt.DefaultValue(); def != "" {
		parts = append(parts, "Default is "+def+".")
	}
	return strings.TrimSpace(strings.Join(parts, " "))
}

// writeHelpRow writes "    <signature padded>    <description>" and wraps
// the description under its own column.
func writeHelpRow(b *strings.Builder, width int, signature, description string) {
	const indent, gap = 4, 4
	column := indent + width + gap

	limit := helpWidth - column
	if limit < 30 {
		limit = 30
	}
	lines := strings.Split(wordwrap.WrapString(description, uint(limit)), "\n")

	b.WriteString(strings.Repeat(" ", indent))
	b.WriteString(signature)
	b.WriteString(strings.Repeat(" ", width-len(signature)+gap))
	b.WriteString(lines[0])
	b.WriteString("\n")
	for _, line := range lines[1:] {
		b.WriteString(strings.Repeat(" ", column))
		b.WriteString(line)
		b.WriteString("\n")
	}
}
