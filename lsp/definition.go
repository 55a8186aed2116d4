// Copyright © 2024 The ELPS authors

package lsp

import (
	"path/filepath"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/luthersystems/sembind/syntax"
)

// textDocumentDefinition handles the textDocument/definition request. The
// definition of a symbol used in an expression is its declaration in the
// YAML document.
func (s *Server) textDocumentDefinition(_ *glsp.Context, params *protocol.DefinitionParams) (any, error) {
	doc := s.docs.Get(params.TextDocument.URI)
	if doc == nil {
		return nil, nil
	}
	s.ensureAnalysis(doc)
	_, _, res, _ := doc.snapshot()

	sym := symbolAtPosition(res, params.Position)
	// Core library symbols have no navigable source.
	if sym == nil || sym.Source == nil {
		return nil, nil
	}

	return protocol.Location{
		URI:   s.resolveURI(params.TextDocument.URI, sym.Source),
		Range: locToLSPRange(sym.Source, len(sym.Name)),
	}, nil
}

// resolveURI resolves the file of a location into a document URI. If the
// file is the current document, the original URI is returned.
func (s *Server) resolveURI(currentURI string, loc *syntax.Location) string {
	path := loc.Path
	if path == "" {
		path = loc.File
	}
	current := uriToPath(currentURI)
	if path == "" || path == current || path == filepath.Base(current) {
		return currentURI
	}
	if !filepath.IsAbs(path) && s.rootPath != "" {
		path = filepath.Join(s.rootPath, path)
	}
	return pathToURI(path)
}
