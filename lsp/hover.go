// Copyright © 2024 The ELPS authors

package lsp

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/luthersystems/sembind/analysis"
	"github.com/luthersystems/sembind/formatter"
	"github.com/luthersystems/sembind/symbols"
)

// textDocumentHover handles the textDocument/hover request.
func (s *Server) textDocumentHover(_ *glsp.Context, params *protocol.HoverParams) (*protocol.Hover, error) {
	doc := s.docs.Get(params.TextDocument.URI)
	if doc == nil {
		return nil, nil
	}
	s.ensureAnalysis(doc)
	_, _, res, _ := doc.snapshot()
	if res == nil {
		return nil, nil
	}

	var content string
	var rng *protocol.Range
	if hit := hitAtPosition(res, params.Position); hit != nil {
		content = buildHitContent(res.Workspace.Table, hit)
		if loc := hit.Source(); loc != nil {
			r := locToLSPRange(loc, 0)
			rng = &r
		}
	} else if sym := declarationAtPosition(res, params.Position); sym != nil {
		content = buildSymbolContent(res.Workspace.Table, sym)
	}
	if content == "" {
		return nil, nil
	}

	return &protocol.Hover{
		Contents: protocol.MarkupContent{
			Kind:  protocol.MarkupKindMarkdown,
			Value: content,
		},
		Range: rng,
	}, nil
}

// buildHitContent builds Markdown hover text for a position inside an
// expression: the symbol used there, the lookup that failed, or the type
// of the innermost bound node.
func buildHitContent(tab *symbols.Table, hit *analysis.Hit) string {
	switch {
	case hit.Reference != nil:
		return buildSymbolContent(tab, hit.Reference.Symbol)
	case hit.Unresolved != nil:
		return buildUnresolvedContent(tab, hit.Unresolved)
	case hit.Node != nil && hit.Node.Type() != nil:
		var sb strings.Builder
		fmt.Fprintf(&sb, "**expression** `%s`", hit.Node.Type())
		if v := hit.Node.ConstantValue(); v != nil {
			fmt.Fprintf(&sb, "\n\nconstant value `%s`", formatter.Constant(v))
		}
		return sb.String()
	}
	return ""
}

// buildSymbolContent builds Markdown hover text for a symbol.
func buildSymbolContent(tab *symbols.Table, sym *symbols.Symbol) string {
	var sb strings.Builder

	// Header: **kind** `name`
	fmt.Fprintf(&sb, "**%s** `%s`", sym.Kind, tab.DisplayString(sym))

	fmt.Fprintf(&sb, "\n\n```csharp\n%s\n```", tab.Signature(sym))

	if sym.Constant != nil {
		fmt.Fprintf(&sb, "\n\nconstant value `%s`", formatter.Constant(sym.Constant))
	}

	if ob := sym.Obsolete; ob != nil {
		sb.WriteString("\n\n*Obsolete*")
		if ob.Message != "" {
			fmt.Fprintf(&sb, ": %s", ob.Message)
		}
	}

	// Docstring.
	if sym.Doc != "" {
		fmt.Fprintf(&sb, "\n\n%s", sym.Doc)
	}

	// Source location.
	if src := sym.Source; src != nil && src.File != "" {
		fmt.Fprintf(&sb, "\n\n*Defined in %s:%d*", filepath.Base(src.File), src.Line)
	}

	return sb.String()
}

// buildUnresolvedContent describes a name that did not bind and the
// candidates that were considered.
func buildUnresolvedContent(tab *symbols.Table, u *analysis.UnresolvedRef) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "**unresolved** `%s` (%s)", u.Name, u.Kind)
	if len(u.Candidates) > 0 {
		sb.WriteString("\n\nCandidates:\n")
		for _, c := range u.Candidates {
			fmt.Fprintf(&sb, "\n- `%s`", tab.Signature(c))
		}
	}
	return sb.String()
}
