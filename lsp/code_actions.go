// Copyright © 2024 The ELPS authors

package lsp

import (
	"fmt"
	"slices"
	"strings"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

// textDocumentCodeAction handles the textDocument/codeAction request.
// Every lint diagnostic in the request can be suppressed with a trailing
// nolint comment.
func (s *Server) textDocumentCodeAction(_ *glsp.Context, params *protocol.CodeActionParams) (any, error) {
	doc := s.docs.Get(params.TextDocument.URI)
	if doc == nil {
		return nil, nil
	}

	// If the client only wants specific kinds, check we support them.
	if len(params.Context.Only) > 0 && !slices.Contains(params.Context.Only, protocol.CodeActionKindQuickFix) {
		return nil, nil
	}

	content, _, _, _ := doc.snapshot()

	var actions []protocol.CodeAction
	for _, diag := range params.Context.Diagnostics {
		// Only handle diagnostics from our lint source.
		if diag.Source == nil || *diag.Source != sourceLint || diag.Code == nil {
			continue
		}
		analyzerName := fmt.Sprintf("%v", diag.Code.Value)
		if analyzerName == "" {
			continue
		}
		actions = append(actions,
			suppressLintAction(params.TextDocument.URI, diag, analyzerName, content))
	}

	if len(actions) == 0 {
		return nil, nil
	}
	return actions, nil
}

// suppressLintAction creates a code action that adds a # nolint:analyzer-name
// comment to the end of the diagnostic line. A line that already carries a
// nolint directive gets the analyzer appended to it.
func suppressLintAction(uri string, diag protocol.Diagnostic, analyzer, content string) protocol.CodeAction {
	line := int(diag.Range.Start.Line)
	lines := strings.Split(content, "\n")
	text := ""
	if line >= 0 && line < len(lines) {
		text = strings.TrimRight(lines[line], "\r")
	}

	insertPos := protocol.Position{Line: diag.Range.Start.Line, Character: safeUint(len(text))}
	newText := " # nolint:" + analyzer
	if strings.Contains(text, "# nolint:") {
		newText = "," + analyzer
	}

	kind := protocol.CodeActionKindQuickFix
	return protocol.CodeAction{
		Title:       fmt.Sprintf("Suppress with # nolint:%s", analyzer),
		Kind:        &kind,
		Diagnostics: []protocol.Diagnostic{diag},
		Edit: &protocol.WorkspaceEdit{
			Changes: map[string][]protocol.TextEdit{
				uri: {
					{
						Range:   protocol.Range{Start: insertPos, End: insertPos},
						NewText: newText,
					},
				},
			},
		},
	}
}
