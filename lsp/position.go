// Copyright © 2024 The ELPS authors

package lsp

import (
	"strings"

	"fortio.org/safecast"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/luthersystems/sembind/analysis"
	"github.com/luthersystems/sembind/diagnostic"
	"github.com/luthersystems/sembind/symbols"
	"github.com/luthersystems/sembind/syntax"
)

// toLSPPosition converts a 1-based line and column to a 0-based LSP
// position.
func toLSPPosition(line, col int) protocol.Position {
	if line > 0 {
		line--
	}
	if col > 0 {
		col--
	}
	return protocol.Position{
		Line:      safeUint(line),
		Character: safeUint(col),
	}
}

// safeUint converts a non-negative int to protocol.UInteger, clamping
// negative values to zero.
func safeUint(n int) protocol.UInteger {
	u, err := safecast.Convert[protocol.UInteger](n)
	if err != nil {
		return 0
	}
	return u
}

// locToLSPRange converts a location to an LSP range. Locations without an
// end, or with an empty one, span nameLen characters.
func locToLSPRange(loc *syntax.Location, nameLen int) protocol.Range {
	start := toLSPPosition(loc.Line, loc.Col)
	var end protocol.Position
	if loc.EndLine > 0 && (loc.EndLine > loc.Line || loc.EndCol > loc.Col) {
		end = toLSPPosition(loc.EndLine, loc.EndCol)
	} else {
		end = protocol.Position{
			Line:      start.Line,
			Character: start.Character + safeUint(nameLen),
		}
	}
	return protocol.Range{Start: start, End: end}
}

// spanToLSPRange converts a diagnostic span, whose end column is
// inclusive, to an LSP range. Spans without an end cover one character.
func spanToLSPRange(sp diagnostic.Span) protocol.Range {
	start := toLSPPosition(sp.Line, sp.Col)
	end := protocol.Position{Line: start.Line, Character: start.Character + 1}
	if sp.EndCol >= sp.Col && sp.EndCol > 0 {
		end.Character = safeUint(sp.EndCol)
	}
	return protocol.Range{Start: start, End: end}
}

// hitAtPosition answers a position query at the given 0-based LSP
// position of a document's analysis.
func hitAtPosition(res *analysis.Result, pos protocol.Position) *analysis.Hit {
	if res == nil {
		return nil
	}
	return res.SymbolAtLine(int(pos.Line)+1, int(pos.Character)+1)
}

// declarationAtPosition returns the symbol declared at the given 0-based
// LSP position of the declaration file, or nil.
func declarationAtPosition(res *analysis.Result, pos protocol.Position) *symbols.Symbol {
	if res == nil {
		return nil
	}
	ws := res.Workspace
	line, col := int(pos.Line)+1, int(pos.Character)+1
	for _, sym := range ws.Table.Symbols() {
		loc := sym.Source
		if loc == nil || loc.File != ws.File || loc.Path != ws.Path {
			continue
		}
		if loc.ContainsLine(line, col) {
			return sym
		}
	}
	return nil
}

// symbolAtPosition returns the symbol used or declared at the position.
func symbolAtPosition(res *analysis.Result, pos protocol.Position) *symbols.Symbol {
	if sym := hitAtPosition(res, pos).Symbol(); sym != nil {
		return sym.OriginalDefinition()
	}
	return declarationAtPosition(res, pos)
}

// mapSymbolKind converts a symbol kind to an LSP SymbolKind.
func mapSymbolKind(sym *symbols.Symbol) protocol.SymbolKind {
	switch sym.Kind {
	case symbols.SymNamespace:
		return protocol.SymbolKindNamespace
	case symbols.SymType:
		if nt, ok := sym.Declared.(*symbols.NamedType); ok {
			switch nt.TypeKind {
			case symbols.TypeStruct:
				return protocol.SymbolKindStruct
			case symbols.TypeInterface:
				return protocol.SymbolKindInterface
			case symbols.TypeEnum:
				return protocol.SymbolKindEnum
			case symbols.TypeDelegate:
				return protocol.SymbolKindFunction
			}
		}
		return protocol.SymbolKindClass
	case symbols.SymTypeParameter:
		return protocol.SymbolKindTypeParameter
	case symbols.SymMethod:
		switch sym.MethodKind {
		case symbols.MethodConstructor:
			return protocol.SymbolKindConstructor
		case symbols.MethodOperator, symbols.MethodBuiltinOperator,
			symbols.MethodImplicitConversion, symbols.MethodExplicitConversion:
			return protocol.SymbolKindOperator
		}
		return protocol.SymbolKindMethod
	case symbols.SymProperty:
		return protocol.SymbolKindProperty
	case symbols.SymField:
		if sym.Constant != nil {
			return protocol.SymbolKindConstant
		}
		return protocol.SymbolKindField
	default:
		return protocol.SymbolKindVariable
	}
}

// uriToPath converts a file:// URI to a filesystem path.
func uriToPath(uri string) string {
	if path, ok := strings.CutPrefix(uri, "file://"); ok {
		return path
	}
	return uri
}

// pathToURI converts a filesystem path to a file:// URI.
func pathToURI(path string) string {
	if strings.HasPrefix(path, "/") {
		return "file://" + path
	}
	return path
}
