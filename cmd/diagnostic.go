// Copyright © 2024 The ELPS authors

package cmd

import (
	"io"

	"github.com/luthersystems/sembind/diagnostic"
	lintpkg "github.com/luthersystems/sembind/lint"
)

func newRenderer() *diagnostic.Renderer {
	return &diagnostic.Renderer{Color: colorMode()}
}

// lintDiagToDiagnostic converts a lint.Diagnostic to a diagnostic.Diagnostic.
func lintDiagToDiagnostic(ld lintpkg.Diagnostic) diagnostic.Diagnostic {
	d := diagnostic.Diagnostic{
		Severity: diagnostic.SeverityWarning,
		Message:  ld.Message + " (" + ld.Analyzer + ")",
	}
	switch ld.Severity {
	case lintpkg.SeverityError:
		d.Severity = diagnostic.SeverityError
	case lintpkg.SeverityInfo:
		d.Severity = diagnostic.SeverityNote
	}
	if ld.Pos.Line > 0 {
		span := diagnostic.Span{
			File: ld.Pos.File,
			Line: ld.Pos.Line,
			Col:  ld.Pos.Col,
		}
		// Span end columns are inclusive.
		if ld.End != nil && ld.End.Line == ld.Pos.Line && ld.End.Col > ld.Pos.Col {
			span.EndCol = ld.End.Col - 1
		}
		d.Spans = append(d.Spans, span)
	}
	d.Notes = append(d.Notes, ld.Notes...)
	d.Notes = append(d.Notes, "to suppress: add \"# nolint:"+ld.Analyzer+"\" as a comment on this line")
	return d
}

// renderDiagnostics renders binder diagnostics to w.
func renderDiagnostics(w io.Writer, diags []diagnostic.Diagnostic) {
	_ = newRenderer().RenderAll(w, diags)
}

// renderLintDiagnostics renders lint diagnostics with diagnostic formatting to w.
func renderLintDiagnostics(w io.Writer, diags []lintpkg.Diagnostic) {
	var ds []diagnostic.Diagnostic
	for _, ld := range diags {
		ds = append(ds, lintDiagToDiagnostic(ld))
	}
	renderDiagnostics(w, ds)
}
