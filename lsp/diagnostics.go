// Copyright © 2024 The ELPS authors

package lsp

import (
	"regexp"
	"strconv"
	"time"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/luthersystems/sembind/analysis"
	"github.com/luthersystems/sembind/diagnostic"
	"github.com/luthersystems/sembind/lint"
)

const debounceDelay = 300 * time.Millisecond

const (
	sourceBinder = "sembind"
	sourceLint   = "sembind-lint"
)

// textDocumentDidOpen handles the textDocument/didOpen notification.
func (s *Server) textDocumentDidOpen(ctx *glsp.Context, params *protocol.DidOpenTextDocumentParams) error {
	s.captureNotify(ctx)
	doc := s.docs.Open(
		params.TextDocument.URI,
		int32(params.TextDocument.Version),
		params.TextDocument.Text,
		s.workspaceOptions(uriToPath(params.TextDocument.URI))...,
	)
	s.analyzeAndPublish(doc)
	return nil
}

// textDocumentDidChange handles the textDocument/didChange notification.
func (s *Server) textDocumentDidChange(ctx *glsp.Context, params *protocol.DidChangeTextDocumentParams) error {
	s.captureNotify(ctx)
	// With full sync, the last content change is the complete document.
	var content string
	for _, change := range params.ContentChanges {
		switch c := change.(type) {
		case protocol.TextDocumentContentChangeEventWhole:
			content = c.Text
		case protocol.TextDocumentContentChangeEvent:
			content = c.Text
		}
	}

	doc := s.docs.Change(
		params.TextDocument.URI,
		int32(params.TextDocument.Version),
		content,
		s.workspaceOptions(uriToPath(params.TextDocument.URI))...,
	)

	// Debounce: delay analysis to avoid thrashing during rapid edits.
	s.debounceMu.Lock()
	if t, ok := s.debounce[doc.URI]; ok {
		t.Stop()
	}
	s.debounce[doc.URI] = time.AfterFunc(debounceDelay, func() {
		defer func() { _ = recover() }() // don't crash the server on analysis panic
		d := s.docs.Get(doc.URI)
		if d != nil {
			s.analyzeAndPublish(d)
		}
	})
	s.debounceMu.Unlock()
	return nil
}

// textDocumentDidSave handles the textDocument/didSave notification.
func (s *Server) textDocumentDidSave(ctx *glsp.Context, params *protocol.DidSaveTextDocumentParams) error {
	s.captureNotify(ctx)
	// Cancel any pending debounce and publish immediately.
	s.debounceMu.Lock()
	if t, ok := s.debounce[params.TextDocument.URI]; ok {
		t.Stop()
		delete(s.debounce, params.TextDocument.URI)
	}
	s.debounceMu.Unlock()

	doc := s.docs.Get(params.TextDocument.URI)
	if doc != nil {
		s.analyzeAndPublish(doc)
	}
	return nil
}

// textDocumentDidClose handles the textDocument/didClose notification.
func (s *Server) textDocumentDidClose(_ *glsp.Context, params *protocol.DidCloseTextDocumentParams) error {
	// Cancel pending debounce.
	s.debounceMu.Lock()
	if t, ok := s.debounce[params.TextDocument.URI]; ok {
		t.Stop()
		delete(s.debounce, params.TextDocument.URI)
	}
	s.debounceMu.Unlock()

	// Clear diagnostics for the closed file.
	s.sendNotification(protocol.ServerTextDocumentPublishDiagnostics, &protocol.PublishDiagnosticsParams{
		URI:         params.TextDocument.URI,
		Diagnostics: []protocol.Diagnostic{},
	})

	s.docs.Close(params.TextDocument.URI)
	return nil
}

// analyzeAndPublish runs analysis and lint on a document and publishes
// the resulting diagnostics to the client.
func (s *Server) analyzeAndPublish(doc *Document) {
	s.ensureAnalysis(doc)
	s.sendNotification(protocol.ServerTextDocumentPublishDiagnostics, &protocol.PublishDiagnosticsParams{
		URI:         doc.URI,
		Diagnostics: s.documentDiagnostics(doc),
	})
}

// documentDiagnostics collects the declaration, syntax, binding and lint
// diagnostics of an analyzed document.
func (s *Server) documentDiagnostics(doc *Document) []protocol.Diagnostic {
	_, ws, res, loadErr := doc.snapshot()
	diags := []protocol.Diagnostic{}
	if ws == nil {
		// The content is not YAML; nothing was declared.
		if loadErr != nil {
			diags = append(diags, protocol.Diagnostic{
				Range:    yamlErrorRange(loadErr),
				Severity: severity(protocol.DiagnosticSeverityError),
				Source:   strPtr(sourceBinder),
				Message:  loadErr.Error(),
			})
		}
		return diags
	}

	for _, d := range analysis.DeclarationDiagnostics(loadErr) {
		diags = append(diags, convertDiagnostic(d))
	}
	if res == nil {
		return diags
	}
	for _, d := range res.Diagnostics() {
		diags = append(diags, convertDiagnostic(d))
	}
	lintDiags, err := s.linter.Lint(res)
	if err != nil {
		s.log.WithError(err).Warn("lint failed")
		return diags
	}
	for _, d := range lintDiags {
		diags = append(diags, convertLintDiagnostic(d))
	}
	return diags
}

// convertDiagnostic converts a binder diagnostic to an LSP Diagnostic.
func convertDiagnostic(d diagnostic.Diagnostic) protocol.Diagnostic {
	out := protocol.Diagnostic{
		Range:    spanToLSPRange(d.Span()),
		Severity: severity(mapSeverity(d.Severity)),
		Source:   strPtr(sourceBinder),
		Message:  d.Message,
	}
	if d.Code != 0 {
		out.Code = &protocol.IntegerOrString{Value: d.Code.String()}
	}
	for _, sp := range d.Spans[min(1, len(d.Spans)):] {
		if sp.Label == "" {
			continue
		}
		out.RelatedInformation = append(out.RelatedInformation, protocol.DiagnosticRelatedInformation{
			Location: protocol.Location{URI: pathToURI(sp.File), Range: spanToLSPRange(sp)},
			Message:  sp.Label,
		})
	}
	for _, n := range d.Notes {
		out.Message += "\nnote: " + n
	}
	return out
}

func mapSeverity(sev diagnostic.Severity) protocol.DiagnosticSeverity {
	switch sev {
	case diagnostic.SeverityError:
		return protocol.DiagnosticSeverityError
	case diagnostic.SeverityWarning:
		return protocol.DiagnosticSeverityWarning
	default:
		return protocol.DiagnosticSeverityInformation
	}
}

// convertLintDiagnostic converts a lint.Diagnostic to an LSP Diagnostic.
func convertLintDiagnostic(d lint.Diagnostic) protocol.Diagnostic {
	start := toLSPPosition(d.Pos.Line, d.Pos.Col)
	end := start // Default: zero-width range.
	if d.End != nil && d.End.Line > 0 {
		end = toLSPPosition(d.End.Line, d.End.Col)
	}
	sev := mapLintSeverity(d.Severity)
	msg := d.Message
	for _, n := range d.Notes {
		msg += "\nnote: " + n
	}
	return protocol.Diagnostic{
		Range:    protocol.Range{Start: start, End: end},
		Severity: &sev,
		Source:   strPtr(sourceLint),
		Code:     &protocol.IntegerOrString{Value: d.Analyzer},
		Message:  msg,
	}
}

// mapLintSeverity converts a lint.Severity to a protocol.DiagnosticSeverity.
func mapLintSeverity(sev lint.Severity) protocol.DiagnosticSeverity {
	switch sev {
	case lint.SeverityError:
		return protocol.DiagnosticSeverityError
	case lint.SeverityWarning:
		return protocol.DiagnosticSeverityWarning
	case lint.SeverityInfo:
		return protocol.DiagnosticSeverityInformation
	default:
		return protocol.DiagnosticSeverityWarning
	}
}

func severity(s protocol.DiagnosticSeverity) *protocol.DiagnosticSeverity {
	return &s
}

var yamlLine = regexp.MustCompile(`line (\d+)`)

// yamlErrorRange returns the first line named by a YAML error, or the
// start of the document.
func yamlErrorRange(err error) protocol.Range {
	m := yamlLine.FindStringSubmatch(err.Error())
	if m == nil {
		return protocol.Range{}
	}
	line, _ := strconv.Atoi(m[1])
	start := toLSPPosition(line, 1)
	return protocol.Range{Start: start, End: protocol.Position{Line: start.Line + 1}}
}

func strPtr(s string) *string {
	return &s
}
