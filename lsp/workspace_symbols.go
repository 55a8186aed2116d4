// Copyright © 2024 The ELPS authors

package lsp

import (
	"strings"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/luthersystems/sembind/symbols"
	"github.com/luthersystems/sembind/workspace"
)

// workspaceSymbol handles the workspace/symbol request.
// It returns the types and members declared in open documents and in the
// declaration files under the workspace root that match the query string.
// An empty query returns all symbols.
func (s *Server) workspaceSymbol(_ *glsp.Context, params *protocol.WorkspaceSymbolParams) ([]protocol.SymbolInformation, error) {
	query := strings.ToLower(params.Query)
	var results []protocol.SymbolInformation

	// Open documents take precedence over their saved contents.
	open := make(map[string]bool)
	for _, doc := range s.docs.All() {
		_, ws, _, _ := doc.snapshot()
		open[uriToPath(doc.URI)] = true
		if ws != nil {
			results = append(results, declaredSymbols(ws, doc.URI, query)...)
		}
	}

	if s.rootPath == "" {
		return results, nil
	}
	paths, err := workspace.Scan(s.rootPath)
	if err != nil {
		s.log.WithError(err).Warn("workspace scan failed")
		return results, nil
	}
	for _, path := range paths {
		if open[path] {
			continue
		}
		ws, _ := workspace.Load(path, workspace.WithLogger(s.log), workspace.WithFeatures(s.features))
		if ws == nil {
			continue
		}
		results = append(results, declaredSymbols(ws, pathToURI(path), query)...)
	}
	return results, nil
}

// declaredSymbols returns the types and members declared in ws matching
// query.
func declaredSymbols(ws *workspace.Workspace, uri, query string) []protocol.SymbolInformation {
	tab := ws.Table
	var results []protocol.SymbolInformation
	for _, sym := range tab.Symbols() {
		if sym.Source == nil || sym.Source.File != ws.File {
			continue
		}
		if sym.Kind != symbols.SymType && tab.ContainingType(sym) == nil {
			continue
		}
		if !matchesQuery(sym.Name, query) {
			continue
		}
		var container *string
		if c := tab.Container(sym); c != nil {
			name := tab.DisplayString(c)
			if name != "" {
				container = &name
			}
		}
		results = append(results, protocol.SymbolInformation{
			Name:          sym.Name,
			Kind:          mapSymbolKind(sym),
			ContainerName: container,
			Location: protocol.Location{
				URI:   uri,
				Range: locToLSPRange(sym.Source, len(sym.Name)),
			},
		})
	}
	return results
}

// matchesQuery performs a case-insensitive substring match.
func matchesQuery(name, query string) bool {
	if query == "" {
		return true
	}
	return strings.Contains(strings.ToLower(name), query)
}
