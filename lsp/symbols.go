// Copyright © 2024 The ELPS authors

package lsp

import (
	"sort"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/luthersystems/sembind/analysis"
	"github.com/luthersystems/sembind/symbols"
)

// textDocumentDocumentSymbol handles the textDocument/documentSymbol
// request. Types are listed with their members, scopes with their locals,
// then the expressions with the type they bind to.
func (s *Server) textDocumentDocumentSymbol(_ *glsp.Context, params *protocol.DocumentSymbolParams) (any, error) {
	doc := s.docs.Get(params.TextDocument.URI)
	if doc == nil {
		return nil, nil
	}
	s.ensureAnalysis(doc)
	_, _, res, _ := doc.snapshot()
	if res == nil {
		return nil, nil
	}
	return documentSymbols(res), nil
}

func documentSymbols(res *analysis.Result) []protocol.DocumentSymbol {
	ws := res.Workspace
	tab := ws.Table
	inFile := func(sym *symbols.Symbol) bool {
		return sym.Source != nil && sym.Source.File == ws.File
	}

	// Return as []DocumentSymbol (the preferred hierarchical form).
	var out []protocol.DocumentSymbol
	types := make(map[symbols.ID]int)
	for _, sym := range tab.Symbols() {
		if sym.Kind != symbols.SymType || !inFile(sym) {
			continue
		}
		types[sym.ID] = len(out)
		out = append(out, symbolEntry(tab, sym))
	}
	for _, sym := range tab.Symbols() {
		i, ok := types[sym.Container]
		if !ok || sym.Kind == symbols.SymType || !inFile(sym) {
			continue
		}
		out[i].Children = append(out[i].Children, symbolEntry(tab, sym))
	}

	for _, sc := range ws.Scopes {
		if sc.Source == nil {
			continue
		}
		r := locToLSPRange(sc.Source, len(sc.Name))
		entry := protocol.DocumentSymbol{
			Name:           sc.Name,
			Kind:           protocol.SymbolKindModule,
			Range:          r,
			SelectionRange: r,
		}
		var locals []*symbols.Symbol
		for _, syms := range sc.Scope.Symbols {
			for _, sym := range syms {
				if inFile(sym) {
					locals = append(locals, sym)
				}
			}
		}
		sort.Slice(locals, func(i, j int) bool {
			return locals[i].Source.Line < locals[j].Source.Line
		})
		for _, sym := range locals {
			entry.Children = append(entry.Children, symbolEntry(tab, sym))
		}
		out = append(out, entry)
	}

	for _, b := range res.Bindings {
		e := b.Expression
		if e.Source == nil {
			continue
		}
		r := locToLSPRange(e.Source, len(e.Text))
		entry := protocol.DocumentSymbol{
			Name:           e.Name,
			Kind:           protocol.SymbolKindVariable,
			Range:          r,
			SelectionRange: r,
		}
		if b.Tree != nil && b.Tree.Type() != nil {
			detail := b.Tree.Type().String()
			entry.Detail = &detail
		}
		out = append(out, entry)
	}
	return out
}

func symbolEntry(tab *symbols.Table, sym *symbols.Symbol) protocol.DocumentSymbol {
	r := locToLSPRange(sym.Source, len(sym.Name))
	detail := tab.Signature(sym)
	return protocol.DocumentSymbol{
		Name:           tab.DisplayString(sym),
		Detail:         &detail,
		Kind:           mapSymbolKind(sym),
		Range:          r,
		SelectionRange: r,
	}
}
