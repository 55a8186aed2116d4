// Copyright © 2024 The ELPS authors

package lsp

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/luthersystems/sembind/diagnostic"
	"github.com/luthersystems/sembind/symbols"
	"github.com/luthersystems/sembind/syntax"
)

const testURI = "file:///work/app.bind.yaml"

// testDecls is the declaration file most tests open. Positions in the
// tests below are 0-based offsets into its lines.
const testDecls = `module: app
namespaces:
  - name: App
    types:
      - name: Widget
        doc: A resizable widget.
        members:
          - {kind: property, name: Size, type: int}
          - {kind: method, name: Scale, returns: int, params: [{name: by, type: int}], doc: Grows the widget.}
          - {kind: method, name: Scale, returns: int, params: [{name: by, type: double}]}
scopes:
  - name: main
    namespace: App
    locals:
      - {name: w, type: Widget}
      - {name: d, type: double}
      - {name: l, type: long}
expressions:
  - {name: grow, scope: main, text: "w.Scale(2)"}
  - {name: lossy, scope: main, text: "d + l"}
  - {name: missing, scope: main, text: "w.Shrink(1)"}
`

func testServer() *Server {
	return New()
}

// openDoc opens a document in the test server and returns it.
func openDoc(s *Server, uri, content string) *Document {
	return s.docs.Open(uri, 1, content, s.workspaceOptions(uriToPath(uri))...)
}

// mockContext returns a minimal glsp.Context for testing.
func mockContext() *glsp.Context {
	return &glsp.Context{
		Notify: func(method string, params any) {},
	}
}

// capturingContext returns a context that captures published diagnostics.
func capturingContext() (*glsp.Context, *[]*protocol.PublishDiagnosticsParams) {
	var captured []*protocol.PublishDiagnosticsParams
	ctx := &glsp.Context{
		Notify: func(method string, params any) {
			if method == protocol.ServerTextDocumentPublishDiagnostics {
				captured = append(captured, params.(*protocol.PublishDiagnosticsParams))
			}
		},
	}
	return ctx, &captured
}

func at(uri string, line, char uint32) protocol.TextDocumentPositionParams {
	return protocol.TextDocumentPositionParams{
		TextDocument: protocol.TextDocumentIdentifier{URI: uri},
		Position:     protocol.Position{Line: line, Character: char},
	}
}

func publishOpen(t *testing.T, s *Server, uri, text string) *protocol.PublishDiagnosticsParams {
	t.Helper()
	ctx, captured := capturingContext()
	err := s.textDocumentDidOpen(ctx, &protocol.DidOpenTextDocumentParams{
		TextDocument: protocol.TextDocumentItem{
			URI:        uri,
			LanguageID: "yaml",
			Version:    1,
			Text:       text,
		},
	})
	require.NoError(t, err)
	require.Len(t, *captured, 1)
	return (*captured)[0]
}

func codes(diags []protocol.Diagnostic) []string {
	var out []string
	for _, d := range diags {
		if d.Code != nil {
			out = append(out, d.Code.Value.(string))
		}
	}
	return out
}

// --- Position conversion tests ---

func TestPositionConversion(t *testing.T) {
	assert.Equal(t, protocol.Position{Line: 0, Character: 0}, toLSPPosition(1, 1))
	assert.Equal(t, protocol.Position{Line: 4, Character: 9}, toLSPPosition(5, 10))
	assert.Equal(t, protocol.Position{Line: 0, Character: 0}, toLSPPosition(0, 0))
	assert.Equal(t, protocol.UInteger(0), safeUint(-3))
}

func TestLocationRange(t *testing.T) {
	loc := &syntax.Location{Line: 3, Col: 5, EndLine: 3, EndCol: 9}
	assert.Equal(t, protocol.Range{
		Start: protocol.Position{Line: 2, Character: 4},
		End:   protocol.Position{Line: 2, Character: 8},
	}, locToLSPRange(loc, 0))

	// Without an end the name length is used.
	loc = &syntax.Location{Line: 1, Col: 2}
	assert.Equal(t, protocol.Range{
		Start: protocol.Position{Line: 0, Character: 1},
		End:   protocol.Position{Line: 0, Character: 4},
	}, locToLSPRange(loc, 3))
}

func TestSpanRange(t *testing.T) {
	r := spanToLSPRange(diagnostic.Span{Line: 2, Col: 3, EndCol: 6})
	assert.Equal(t, protocol.Position{Line: 1, Character: 2}, r.Start)
	assert.Equal(t, protocol.Position{Line: 1, Character: 6}, r.End)

	r = spanToLSPRange(diagnostic.Span{Line: 2, Col: 3})
	assert.Equal(t, protocol.Position{Line: 1, Character: 3}, r.End)
}

func TestURIConversion(t *testing.T) {
	assert.Equal(t, "/work/app.bind.yaml", uriToPath(testURI))
	assert.Equal(t, testURI, pathToURI("/work/app.bind.yaml"))
	assert.Equal(t, "relative.yaml", pathToURI("relative.yaml"))
}

func TestMatchesQuery(t *testing.T) {
	assert.True(t, matchesQuery("Scale", ""))
	assert.True(t, matchesQuery("Scale", "cal"))
	assert.False(t, matchesQuery("Size", "cal"))
}

func TestMapSymbolKind(t *testing.T) {
	tests := []struct {
		name string
		sym  *symbols.Symbol
		want protocol.SymbolKind
	}{
		{"namespace", &symbols.Symbol{Kind: symbols.SymNamespace}, protocol.SymbolKindNamespace},
		{"class", &symbols.Symbol{Kind: symbols.SymType}, protocol.SymbolKindClass},
		{"enum", &symbols.Symbol{Kind: symbols.SymType, Declared: &symbols.NamedType{TypeKind: symbols.TypeEnum}}, protocol.SymbolKindEnum},
		{"method", &symbols.Symbol{Kind: symbols.SymMethod}, protocol.SymbolKindMethod},
		{"constructor", &symbols.Symbol{Kind: symbols.SymMethod, MethodKind: symbols.MethodConstructor}, protocol.SymbolKindConstructor},
		{"operator", &symbols.Symbol{Kind: symbols.SymMethod, MethodKind: symbols.MethodOperator}, protocol.SymbolKindOperator},
		{"property", &symbols.Symbol{Kind: symbols.SymProperty}, protocol.SymbolKindProperty},
		{"field", &symbols.Symbol{Kind: symbols.SymField}, protocol.SymbolKindField},
		{"local", &symbols.Symbol{Kind: symbols.SymLocal}, protocol.SymbolKindVariable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, mapSymbolKind(tt.sym))
		})
	}
}

// --- Document store tests ---

func TestDocumentStore(t *testing.T) {
	s := testServer()
	doc := openDoc(s, testURI, testDecls)
	require.NotNil(t, doc)
	assert.Same(t, doc, s.docs.Get(testURI))
	assert.Len(t, s.docs.All(), 1)

	_, ws, _, err := doc.snapshot()
	require.NoError(t, err)
	require.NotNil(t, ws)
	assert.Equal(t, "app.bind.yaml", ws.File)
	assert.Len(t, ws.Expressions, 3)

	doc = s.docs.Change(testURI, 2, "module: app\n", s.workspaceOptions(uriToPath(testURI))...)
	assert.Equal(t, int32(2), doc.Version)
	_, ws, _, _ = doc.snapshot()
	require.NotNil(t, ws)
	assert.Empty(t, ws.Expressions)

	s.docs.Close(testURI)
	assert.Nil(t, s.docs.Get(testURI))
}

// --- Diagnostics tests ---

func TestDiagnosticsOnOpen(t *testing.T) {
	s := testServer()
	pub := publishOpen(t, s, testURI, testDecls)
	assert.Equal(t, testURI, pub.URI)

	got := codes(pub.Diagnostics)
	assert.Contains(t, got, "B1002")
	assert.Contains(t, got, "lossy-numeric-conversion")

	for _, d := range pub.Diagnostics {
		if d.Code == nil || d.Code.Value != "lossy-numeric-conversion" {
			continue
		}
		assert.Equal(t, sourceLint, *d.Source)
		assert.Equal(t, protocol.Position{Line: 19, Character: 42}, d.Range.Start)
	}
	for _, d := range pub.Diagnostics {
		if d.Code == nil || d.Code.Value != "B1002" {
			continue
		}
		assert.Equal(t, sourceBinder, *d.Source)
		assert.Equal(t, protocol.DiagnosticSeverityError, *d.Severity)
		assert.Equal(t, uint32(20), d.Range.Start.Line)
	}
}

func TestDiagnosticsOnInvalidYAML(t *testing.T) {
	s := testServer()
	pub := publishOpen(t, s, testURI, "module: [app\n")
	require.Len(t, pub.Diagnostics, 1)
	assert.Equal(t, protocol.DiagnosticSeverityError, *pub.Diagnostics[0].Severity)
	assert.Equal(t, sourceBinder, *pub.Diagnostics[0].Source)
}

func TestDiagnosticsOnBadDeclaration(t *testing.T) {
	s := testServer()
	pub := publishOpen(t, s, testURI, "module: app\nscopes:\n  - name: main\n    namespace: Nope\n")
	assert.Contains(t, codes(pub.Diagnostics), "B7002")
}

func TestYAMLErrorRange(t *testing.T) {
	r := yamlErrorRange(assert.AnError)
	assert.Equal(t, protocol.Range{}, r)

	r = yamlErrorRange(&yamlLineError{"yaml: line 4: mapping values are not allowed"})
	assert.Equal(t, uint32(3), r.Start.Line)
	assert.Equal(t, uint32(4), r.End.Line)
}

type yamlLineError struct{ msg string }

func (e *yamlLineError) Error() string { return e.msg }

func TestDiagnosticsOnClose_Cleared(t *testing.T) {
	s := testServer()
	publishOpen(t, s, testURI, testDecls)

	ctx, captured := capturingContext()
	s.captureNotify(ctx)
	err := s.textDocumentDidClose(ctx, &protocol.DidCloseTextDocumentParams{
		TextDocument: protocol.TextDocumentIdentifier{URI: testURI},
	})
	require.NoError(t, err)
	require.Len(t, *captured, 1)
	assert.Empty(t, (*captured)[0].Diagnostics)
	assert.Nil(t, s.docs.Get(testURI))
}

func TestDiagnosticsOnSave_Immediate(t *testing.T) {
	s := testServer()
	openDoc(s, testURI, testDecls)

	ctx, captured := capturingContext()
	err := s.textDocumentDidSave(ctx, &protocol.DidSaveTextDocumentParams{
		TextDocument: protocol.TextDocumentIdentifier{URI: testURI},
	})
	require.NoError(t, err)
	require.Len(t, *captured, 1)
	assert.NotEmpty(t, (*captured)[0].Diagnostics)
}

// --- Hover tests ---

func TestHoverOnMethod(t *testing.T) {
	s := testServer()
	openDoc(s, testURI, testDecls)

	hover, err := s.textDocumentHover(mockContext(), &protocol.HoverParams{
		TextDocumentPositionParams: at(testURI, 18, 40),
	})
	require.NoError(t, err)
	require.NotNil(t, hover)
	content := hover.Contents.(protocol.MarkupContent)
	assert.Equal(t, protocol.MarkupKindMarkdown, content.Kind)
	assert.Contains(t, content.Value, "**method**")
	assert.Contains(t, content.Value, "Scale")
	assert.Contains(t, content.Value, "Grows the widget.")
	assert.Contains(t, content.Value, "*Defined in app.bind.yaml:9*")
	require.NotNil(t, hover.Range)
	assert.Equal(t, protocol.Position{Line: 18, Character: 39}, hover.Range.Start)
}

func TestHoverOnLocal(t *testing.T) {
	s := testServer()
	openDoc(s, testURI, testDecls)

	hover, err := s.textDocumentHover(mockContext(), &protocol.HoverParams{
		TextDocumentPositionParams: at(testURI, 18, 37),
	})
	require.NoError(t, err)
	require.NotNil(t, hover)
	value := hover.Contents.(protocol.MarkupContent).Value
	assert.True(t, strings.HasPrefix(value, "**local** `w`"), value)
}

func TestHoverOnLiteral(t *testing.T) {
	s := testServer()
	openDoc(s, testURI, testDecls)

	hover, err := s.textDocumentHover(mockContext(), &protocol.HoverParams{
		TextDocumentPositionParams: at(testURI, 18, 45),
	})
	require.NoError(t, err)
	require.NotNil(t, hover)
	value := hover.Contents.(protocol.MarkupContent).Value
	assert.Contains(t, value, "**expression** `int`")
	assert.Contains(t, value, "constant value `2`")
}

func TestHoverOnUnresolved(t *testing.T) {
	s := testServer()
	openDoc(s, testURI, testDecls)

	// "Shrink" in w.Shrink(1)
	hover, err := s.textDocumentHover(mockContext(), &protocol.HoverParams{
		TextDocumentPositionParams: at(testURI, 20, 42),
	})
	require.NoError(t, err)
	require.NotNil(t, hover)
	assert.Contains(t, hover.Contents.(protocol.MarkupContent).Value, "**unresolved** `Shrink`")
}

func TestHoverOnDeclaration(t *testing.T) {
	s := testServer()
	openDoc(s, testURI, testDecls)

	hover, err := s.textDocumentHover(mockContext(), &protocol.HoverParams{
		TextDocumentPositionParams: at(testURI, 8, 35),
	})
	require.NoError(t, err)
	require.NotNil(t, hover)
	assert.Contains(t, hover.Contents.(protocol.MarkupContent).Value, "Grows the widget.")
	assert.Nil(t, hover.Range)
}

func TestHoverOutsideExpressions(t *testing.T) {
	s := testServer()
	openDoc(s, testURI, testDecls)

	hover, err := s.textDocumentHover(mockContext(), &protocol.HoverParams{
		TextDocumentPositionParams: at(testURI, 17, 2),
	})
	require.NoError(t, err)
	assert.Nil(t, hover)

	hover, err = s.textDocumentHover(mockContext(), &protocol.HoverParams{
		TextDocumentPositionParams: at("file:///unknown.bind.yaml", 0, 0),
	})
	require.NoError(t, err)
	assert.Nil(t, hover)
}

// --- Definition tests ---

func TestDefinition(t *testing.T) {
	s := testServer()
	openDoc(s, testURI, testDecls)

	tests := []struct {
		name string
		pos  protocol.TextDocumentPositionParams
		want protocol.Range
	}{
		{"method", at(testURI, 18, 40), protocol.Range{
			Start: protocol.Position{Line: 8, Character: 33},
			End:   protocol.Position{Line: 8, Character: 38},
		}},
		{"local", at(testURI, 18, 37), protocol.Range{
			Start: protocol.Position{Line: 14, Character: 15},
			End:   protocol.Position{Line: 14, Character: 16},
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := s.textDocumentDefinition(mockContext(), &protocol.DefinitionParams{
				TextDocumentPositionParams: tt.pos,
			})
			require.NoError(t, err)
			require.NotNil(t, result)
			loc, ok := result.(protocol.Location)
			require.True(t, ok, "definition should be a Location, got %T", result)
			assert.Equal(t, testURI, loc.URI)
			assert.Equal(t, tt.want, loc.Range)
		})
	}
}

func TestDefinitionOfBuiltin(t *testing.T) {
	s := testServer()
	openDoc(s, testURI, testDecls)

	// The literal 2 has no declared symbol.
	result, err := s.textDocumentDefinition(mockContext(), &protocol.DefinitionParams{
		TextDocumentPositionParams: at(testURI, 18, 45),
	})
	require.NoError(t, err)
	assert.Nil(t, result)
}

func TestResolveURI(t *testing.T) {
	s := testServer()
	s.rootPath = "/work"
	assert.Equal(t, testURI, s.resolveURI(testURI, &syntax.Location{File: "app.bind.yaml"}))
	assert.Equal(t, testURI, s.resolveURI(testURI, &syntax.Location{Path: "/work/app.bind.yaml"}))
	assert.Equal(t, "file:///work/other.bind.yaml", s.resolveURI(testURI, &syntax.Location{File: "other.bind.yaml"}))
}

// --- References tests ---

func TestReferencesFromDeclaration(t *testing.T) {
	s := testServer()
	openDoc(s, testURI, testDecls)

	locs, err := s.textDocumentReferences(mockContext(), &protocol.ReferenceParams{
		TextDocumentPositionParams: at(testURI, 14, 15),
		Context:                    protocol.ReferenceContext{IncludeDeclaration: true},
	})
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(locs), 2)
	assert.Equal(t, protocol.Position{Line: 14, Character: 15}, locs[0].Range.Start)
	assert.Equal(t, protocol.Position{Line: 18, Character: 37}, locs[1].Range.Start)
}

func TestReferencesWithoutDeclaration(t *testing.T) {
	s := testServer()
	openDoc(s, testURI, testDecls)

	locs, err := s.textDocumentReferences(mockContext(), &protocol.ReferenceParams{
		TextDocumentPositionParams: at(testURI, 18, 40),
	})
	require.NoError(t, err)
	require.Len(t, locs, 1)
	assert.Equal(t, protocol.Position{Line: 18, Character: 39}, locs[0].Range.Start)
}

// --- Signature help tests ---

func TestSignatureHelp(t *testing.T) {
	s := testServer()
	openDoc(s, testURI, testDecls)

	help, err := s.textDocumentSignatureHelp(mockContext(), &protocol.SignatureHelpParams{
		TextDocumentPositionParams: at(testURI, 18, 45), // on the argument of w.Scale(2)
	})
	require.NoError(t, err)
	require.NotNil(t, help)
	require.Len(t, help.Signatures, 2)
	require.NotNil(t, help.ActiveSignature)
	assert.Equal(t, protocol.UInteger(0), *help.ActiveSignature)
	require.NotNil(t, help.ActiveParameter)
	assert.Equal(t, protocol.UInteger(0), *help.ActiveParameter)
	assert.Equal(t, "Grows the widget.", help.Signatures[0].Documentation)
	require.Len(t, help.Signatures[0].Parameters, 1)
	assert.Contains(t, help.Signatures[0].Parameters[0].Label, "by")
}

func TestSignatureHelpOutsideCall(t *testing.T) {
	s := testServer()
	openDoc(s, testURI, testDecls)

	help, err := s.textDocumentSignatureHelp(mockContext(), &protocol.SignatureHelpParams{
		TextDocumentPositionParams: at(testURI, 19, 38), // "d" in d + l
	})
	require.NoError(t, err)
	assert.Nil(t, help)
}

// --- Completion tests ---

func completionLabels(t *testing.T, result any) []string {
	t.Helper()
	items, ok := result.([]protocol.CompletionItem)
	require.True(t, ok, "expected []CompletionItem, got %T", result)
	labels := make([]string, len(items))
	for i, item := range items {
		labels[i] = item.Label
	}
	return labels
}

func TestCompletion(t *testing.T) {
	s := testServer()
	openDoc(s, testURI, testDecls)

	tests := []struct {
		name string
		line uint32
		char uint32
		want []string
	}{
		{"member prefix", 18, 40, []string{"Scale", "Size"}}, // after "w.S"
		{"after dot", 18, 39, []string{"Scale", "Size"}},     // after "w."
		{"end of expression", 19, 43, []string{"l"}},         // after "d + l"
		{"unqualified", 19, 39, []string{"d", "default"}},    // after "d"
		{"local", 18, 38, []string{"w"}},                     // after "w"
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := s.textDocumentCompletion(mockContext(), &protocol.CompletionParams{
				TextDocumentPositionParams: at(testURI, tt.line, tt.char),
			})
			require.NoError(t, err)
			assert.Equal(t, tt.want, completionLabels(t, result))
		})
	}
}

func TestCompletionItemDetails(t *testing.T) {
	s := testServer()
	openDoc(s, testURI, testDecls)

	result, err := s.textDocumentCompletion(mockContext(), &protocol.CompletionParams{
		TextDocumentPositionParams: at(testURI, 18, 40),
	})
	require.NoError(t, err)
	items := result.([]protocol.CompletionItem)
	require.Len(t, items, 2)

	scale := items[0]
	require.NotNil(t, scale.Kind)
	assert.Equal(t, protocol.CompletionItemKindMethod, *scale.Kind)
	require.NotNil(t, scale.Detail)
	assert.Contains(t, *scale.Detail, "Scale")
	doc, ok := scale.Documentation.(*protocol.MarkupContent)
	require.True(t, ok)
	assert.Equal(t, "Grows the widget.", doc.Value)

	size := items[1]
	require.NotNil(t, size.Kind)
	assert.Equal(t, protocol.CompletionItemKindProperty, *size.Kind)
	assert.Nil(t, size.Documentation)
}

func TestCompletionOutsideExpressions(t *testing.T) {
	s := testServer()
	openDoc(s, testURI, testDecls)

	result, err := s.textDocumentCompletion(mockContext(), &protocol.CompletionParams{
		TextDocumentPositionParams: at(testURI, 4, 14), // in "name: Widget"
	})
	require.NoError(t, err)
	assert.Nil(t, result)

	result, err = s.textDocumentCompletion(mockContext(), &protocol.CompletionParams{
		TextDocumentPositionParams: at("file:///work/unopened.bind.yaml", 0, 0),
	})
	require.NoError(t, err)
	assert.Nil(t, result)
}

func TestMapCompletionItemKind(t *testing.T) {
	tests := []struct {
		name string
		sym  *symbols.Symbol
		want protocol.CompletionItemKind
	}{
		{"keyword", nil, protocol.CompletionItemKindKeyword},
		{"namespace", &symbols.Symbol{Kind: symbols.SymNamespace}, protocol.CompletionItemKindModule},
		{"class", &symbols.Symbol{Kind: symbols.SymType}, protocol.CompletionItemKindClass},
		{"method", &symbols.Symbol{Kind: symbols.SymMethod}, protocol.CompletionItemKindMethod},
		{"field", &symbols.Symbol{Kind: symbols.SymField}, protocol.CompletionItemKindField},
		{"local", &symbols.Symbol{Kind: symbols.SymLocal}, protocol.CompletionItemKindVariable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, mapCompletionItemKind(tt.sym))
		})
	}
}

// --- Symbol tests ---

func TestDocumentSymbols(t *testing.T) {
	s := testServer()
	openDoc(s, testURI, testDecls)

	result, err := s.textDocumentDocumentSymbol(mockContext(), &protocol.DocumentSymbolParams{
		TextDocument: protocol.TextDocumentIdentifier{URI: testURI},
	})
	require.NoError(t, err)
	syms, ok := result.([]protocol.DocumentSymbol)
	require.True(t, ok, "document symbols should be []DocumentSymbol, got %T", result)

	byName := make(map[string]protocol.DocumentSymbol)
	for _, sym := range syms {
		byName[sym.Name] = sym
	}
	for _, name := range []string{"main", "grow", "lossy", "missing"} {
		assert.Contains(t, byName, name)
	}
	assert.Len(t, byName["main"].Children, 3)
	assert.Equal(t, protocol.SymbolKindModule, byName["main"].Kind)
	require.NotNil(t, byName["grow"].Detail)
	assert.Equal(t, "int", *byName["grow"].Detail)

	var widget *protocol.DocumentSymbol
	for i := range syms {
		if strings.HasSuffix(syms[i].Name, "Widget") {
			widget = &syms[i]
		}
	}
	require.NotNil(t, widget, "Widget should be listed")
	assert.Equal(t, protocol.SymbolKindClass, widget.Kind)
	assert.Len(t, widget.Children, 3)
}

func TestWorkspaceSymbols(t *testing.T) {
	s := testServer()
	openDoc(s, testURI, testDecls)

	results, err := s.workspaceSymbol(mockContext(), &protocol.WorkspaceSymbolParams{Query: "sca"})
	require.NoError(t, err)
	require.Len(t, results, 2)
	for _, r := range results {
		assert.Equal(t, "Scale", r.Name)
		assert.Equal(t, protocol.SymbolKindMethod, r.Kind)
		assert.Equal(t, testURI, r.Location.URI)
		require.NotNil(t, r.ContainerName)
		assert.Contains(t, *r.ContainerName, "Widget")
	}

	// Locals are not workspace symbols.
	results, err = s.workspaceSymbol(mockContext(), &protocol.WorkspaceSymbolParams{Query: "w"})
	require.NoError(t, err)
	for _, r := range results {
		assert.NotEqual(t, protocol.SymbolKindVariable, r.Kind)
	}
}

// --- Code action tests ---

func TestCodeActionSuppressLint(t *testing.T) {
	s := testServer()
	pub := publishOpen(t, s, testURI, testDecls)

	var diag *protocol.Diagnostic
	for i, d := range pub.Diagnostics {
		if d.Source != nil && *d.Source == sourceLint {
			diag = &pub.Diagnostics[i]
		}
	}
	require.NotNil(t, diag, "lint diagnostic expected")

	result, err := s.textDocumentCodeAction(mockContext(), &protocol.CodeActionParams{
		TextDocument: protocol.TextDocumentIdentifier{URI: testURI},
		Range:        diag.Range,
		Context:      protocol.CodeActionContext{Diagnostics: pub.Diagnostics},
	})
	require.NoError(t, err)
	actions, ok := result.([]protocol.CodeAction)
	require.True(t, ok, "expected []CodeAction, got %T", result)
	require.Len(t, actions, 1, "only lint diagnostics get a quick fix")

	action := actions[0]
	assert.Equal(t, "Suppress with # nolint:lossy-numeric-conversion", action.Title)
	require.NotNil(t, action.Edit)
	edits := action.Edit.Changes[testURI]
	require.Len(t, edits, 1)
	line := strings.Split(testDecls, "\n")[19]
	assert.Equal(t, " # nolint:lossy-numeric-conversion", edits[0].NewText)
	assert.Equal(t, protocol.Position{Line: 19, Character: protocol.UInteger(len(line))}, edits[0].Range.Start)
}

func TestCodeActionAppendsToNolint(t *testing.T) {
	content := "a: 1 # nolint:redundant-cast\n"
	code := protocol.IntegerOrString{Value: "implicit-boxing"}
	diag := protocol.Diagnostic{Source: strPtr(sourceLint), Code: &code}
	action := suppressLintAction(testURI, diag, "implicit-boxing", content)
	edits := action.Edit.Changes[testURI]
	require.Len(t, edits, 1)
	assert.Equal(t, ",implicit-boxing", edits[0].NewText)
	assert.Equal(t, protocol.UInteger(len("a: 1 # nolint:redundant-cast")), edits[0].Range.Start.Character)
}

func TestCodeActionOnlyFilter(t *testing.T) {
	s := testServer()
	pub := publishOpen(t, s, testURI, testDecls)

	result, err := s.textDocumentCodeAction(mockContext(), &protocol.CodeActionParams{
		TextDocument: protocol.TextDocumentIdentifier{URI: testURI},
		Context: protocol.CodeActionContext{
			Diagnostics: pub.Diagnostics,
			Only:        []protocol.CodeActionKind{protocol.CodeActionKindRefactor},
		},
	})
	require.NoError(t, err)
	assert.Nil(t, result)
}

// --- Lifecycle tests ---

func TestInitialize(t *testing.T) {
	s := testServer()
	root := "file:///work"
	result, err := s.initialize(mockContext(), &protocol.InitializeParams{RootURI: &root})
	require.NoError(t, err)
	init, ok := result.(protocol.InitializeResult)
	require.True(t, ok)
	assert.Equal(t, serverName, init.ServerInfo.Name)
	assert.Equal(t, "/work", s.rootPath)
	require.NotNil(t, init.Capabilities.SignatureHelpProvider)
	assert.Contains(t, init.Capabilities.SignatureHelpProvider.TriggerCharacters, "(")
	require.NotNil(t, init.Capabilities.CompletionProvider)
	assert.Equal(t, []string{"."}, init.Capabilities.CompletionProvider.TriggerCharacters)
}

func TestExit(t *testing.T) {
	s := testServer()
	code := -1
	s.exitFn = func(c int) { code = c }
	require.NoError(t, s.shutdown(mockContext()))
	require.NoError(t, s.exit(mockContext()))
	assert.Equal(t, 0, code)
}
