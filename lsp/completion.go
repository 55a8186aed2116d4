// Copyright © 2024 The ELPS authors

package lsp

import (
	"context"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/luthersystems/sembind/analysis"
	"github.com/luthersystems/sembind/binder"
	"github.com/luthersystems/sembind/symbols"
)

// textDocumentCompletion handles the textDocument/completion request. It
// completes the name ending at the cursor inside an expression text.
func (s *Server) textDocumentCompletion(_ *glsp.Context, params *protocol.CompletionParams) (any, error) {
	doc := s.docs.Get(params.TextDocument.URI)
	if doc == nil {
		return nil, nil
	}
	s.ensureAnalysis(doc)
	_, _, res, _ := doc.snapshot()
	if res == nil {
		return nil, nil
	}

	tab := res.Workspace.Table
	b := binder.New(tab, binder.WithLogger(s.log), binder.WithProfiler(s.profiler))
	comp := res.CompleteAt(context.Background(), analysis.NewCompleter(tab, b),
		int(params.Position.Line)+1, int(params.Position.Character)+1)
	if comp == nil {
		return nil, nil
	}

	items := make([]protocol.CompletionItem, 0, len(comp.Candidates))
	for _, c := range comp.Candidates {
		kind := mapCompletionItemKind(c.Symbol)
		item := protocol.CompletionItem{
			Label: c.Name,
			Kind:  &kind,
		}
		if c.Symbol != nil {
			detail := tab.Signature(c.Symbol)
			item.Detail = &detail
			if c.Symbol.Doc != "" {
				item.Documentation = &protocol.MarkupContent{
					Kind:  protocol.MarkupKindMarkdown,
					Value: c.Symbol.Doc,
				}
			}
		}
		items = append(items, item)
	}
	return items, nil
}

// mapCompletionItemKind maps a symbol to an LSP CompletionItemKind. A nil
// symbol is a keyword.
func mapCompletionItemKind(sym *symbols.Symbol) protocol.CompletionItemKind {
	if sym == nil {
		return protocol.CompletionItemKindKeyword
	}
	switch mapSymbolKind(sym) {
	case protocol.SymbolKindNamespace:
		return protocol.CompletionItemKindModule
	case protocol.SymbolKindClass:
		return protocol.CompletionItemKindClass
	case protocol.SymbolKindStruct:
		return protocol.CompletionItemKindStruct
	case protocol.SymbolKindInterface:
		return protocol.CompletionItemKindInterface
	case protocol.SymbolKindEnum:
		return protocol.CompletionItemKindEnum
	case protocol.SymbolKindFunction:
		return protocol.CompletionItemKindFunction
	case protocol.SymbolKindTypeParameter:
		return protocol.CompletionItemKindTypeParameter
	case protocol.SymbolKindConstructor:
		return protocol.CompletionItemKindConstructor
	case protocol.SymbolKindOperator:
		return protocol.CompletionItemKindOperator
	case protocol.SymbolKindMethod:
		return protocol.CompletionItemKindMethod
	case protocol.SymbolKindProperty:
		return protocol.CompletionItemKindProperty
	case protocol.SymbolKindConstant:
		return protocol.CompletionItemKindConstant
	case protocol.SymbolKindField:
		return protocol.CompletionItemKindField
	default:
		return protocol.CompletionItemKindVariable
	}
}
