// Copyright © 2024 The ELPS authors

package lsp

import (
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

// textDocumentReferences handles the textDocument/references request. It
// works from a use in an expression and from a declaration alike.
func (s *Server) textDocumentReferences(_ *glsp.Context, params *protocol.ReferenceParams) ([]protocol.Location, error) {
	doc := s.docs.Get(params.TextDocument.URI)
	if doc == nil {
		return nil, nil
	}
	s.ensureAnalysis(doc)
	_, _, res, _ := doc.snapshot()

	sym := symbolAtPosition(res, params.Position)
	if sym == nil {
		return nil, nil
	}

	var locs []protocol.Location

	// Optionally include the declaration.
	if params.Context.IncludeDeclaration && sym.Source != nil {
		locs = append(locs, protocol.Location{
			URI:   s.resolveURI(params.TextDocument.URI, sym.Source),
			Range: locToLSPRange(sym.Source, len(sym.Name)),
		})
	}

	// Find all references to this symbol in the current file.
	for _, ref := range res.ReferencesTo(sym) {
		if ref.Source == nil {
			continue
		}
		locs = append(locs, protocol.Location{
			URI:   s.resolveURI(params.TextDocument.URI, ref.Source),
			Range: locToLSPRange(ref.Source, len(sym.Name)),
		})
	}

	return locs, nil
}
