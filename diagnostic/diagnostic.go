// Copyright © 2024 The ELPS authors

// Package diagnostic defines the diagnostics produced while binding
// expressions: stable codes, an append-only Sink, and Rust-style annotated
// rendering for CLI output. It is intentionally independent of the binder
// packages so that every layer can report into it without import cycles.
package diagnostic

import (
	"fmt"

	"github.com/luthersystems/sembind/syntax"
)

// Severity indicates the severity level of a diagnostic.
type Severity int

const (
	SeverityError Severity = iota
	SeverityWarning
	SeverityNote
)

func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	case SeverityNote:
		return "note"
	default:
		return "unknown"
	}
}

// Span identifies a region of source code to highlight in the diagnostic.
type Span struct {
	File   string // path for reading source; display name if unreadable
	Line   int    // 1-based line number
	Col    int    // 1-based start column
	EndCol int    // 1-based end column (0 = auto-detect from source)
	Label  string // text shown under the underline
}

// SpanOf returns the span covering loc. A nil loc yields the zero Span.
func SpanOf(loc *syntax.Location) Span {
	if loc == nil {
		return Span{}
	}
	sp := Span{File: loc.File, Line: loc.Line, Col: loc.Col}
	if loc.Path != "" {
		sp.File = loc.Path
	}
	// Location ends are exclusive, span ends inclusive.
	if loc.EndLine == loc.Line && loc.EndCol > loc.Col {
		sp.EndCol = loc.EndCol - 1
	}
	return sp
}

// Diagnostic represents a single error, warning, or note with optional
// source annotations and trailing notes.
type Diagnostic struct {
	Severity Severity
	Code     Code
	Message  string
	Args     []any
	Spans    []Span
	Notes    []string // "= note:" lines (candidate lists, etc.)
}

// New creates a diagnostic for code at span, formatting the code's message
// template with args.
func New(code Code, span Span, args ...any) Diagnostic {
	return Diagnostic{
		Severity: code.Severity(),
		Code:     code,
		Message:  fmt.Sprintf(code.Format(), args...),
		Args:     args,
		Spans:    []Span{span},
	}
}

// WithNotes returns a copy of d with notes appended.
func (d Diagnostic) WithNotes(notes ...string) Diagnostic {
	d.Notes = append(append([]string(nil), d.Notes...), notes...)
	return d
}

// Span returns the primary span of d, or the zero Span.
func (d Diagnostic) Span() Span {
	if len(d.Spans) == 0 {
		return Span{}
	}
	return d.Spans[0]
}

func (d Diagnostic) String() string {
	sp := d.Span()
	if d.Code == 0 {
		return fmt.Sprintf("%s:%d:%d: %s: %s", sp.File, sp.Line, sp.Col, d.Severity, d.Message)
	}
	return fmt.Sprintf("%s:%d:%d: %s %s: %s", sp.File, sp.Line, sp.Col, d.Severity, d.Code, d.Message)
}
