// Copyright © 2024 The ELPS authors

package formatter

import "github.com/luthersystems/sembind/symbols"

// IndentStyle determines how the children of a broken form are indented.
type IndentStyle int

const (
	// IndentBody indents all children at bracket column + indent size.
	IndentBody IndentStyle = iota
	// IndentAlign keeps the first child on the head line and aligns the
	// rest under it.
	IndentAlign
	// IndentSpecial keeps N header children on the head line and indents
	// the rest as a body.
	IndentSpecial
)

// IndentRule specifies the indentation behavior for a particular form.
type IndentRule struct {
	Style      IndentStyle
	HeaderArgs int // for IndentSpecial: children kept on the head line
}

// Config holds printing configuration.
type Config struct {
	IndentSize int // spaces per indent level (default: 2)
	Width      int // forms wider than this are broken over lines (default: 80)
	// Types annotates bound expressions with their type and constant
	// value.
	Types bool
	// Table qualifies symbol names when set; otherwise bare names are
	// printed.
	Table *symbols.Table
	Rules map[string]*IndentRule // form head -> rule
}

// DefaultConfig returns the default printing configuration.
func DefaultConfig() *Config {
	return &Config{
		IndentSize: 2,
		Width:      80,
		Types:      true,
		Rules:      DefaultRules(),
	}
}

// DefaultRules returns the default indent rules table.
func DefaultRules() map[string]*IndentRule {
	return map[string]*IndentRule{
		// operands read best aligned
		"Binary":        {Style: IndentAlign},
		"binary":        {Style: IndentAlign},
		"Conversion":    {Style: IndentAlign},
		"cast":          {Style: IndentAlign},
		"member-access": {Style: IndentAlign},

		// receiver stays with the head
		"Call":           {Style: IndentSpecial, HeaderArgs: 1},
		"IndexerAccess":  {Style: IndentSpecial, HeaderArgs: 1},
		"ArrayAccess":    {Style: IndentSpecial, HeaderArgs: 1},
		"invocation":     {Style: IndentSpecial, HeaderArgs: 1},
		"element-access": {Style: IndentSpecial, HeaderArgs: 1},
	}
}

func (cfg *Config) rule(head string) *IndentRule {
	if r, ok := cfg.Rules[head]; ok && r != nil {
		return r
	}
	return &IndentRule{Style: IndentBody}
}

func (cfg *Config) withDefaults() *Config {
	c := *cfg
	if c.IndentSize <= 0 {
		c.IndentSize = 2
	}
	if c.Width <= 0 {
		c.Width = 80
	}
	if c.Rules == nil {
		c.Rules = DefaultRules()
	}
	return &c
}
