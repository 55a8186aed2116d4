// Copyright © 2024 The ELPS authors

package lint

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/luthersystems/sembind/analysis"
	"github.com/luthersystems/sembind/workspace"
)

// header declares the locals the test expressions use.
const header = `module: app
namespaces:
  - name: App
    types:
      - name: Program
        members:
          - {kind: method, name: Main, static: true}
          - {kind: method, name: Take, static: true, params: [{name: o, type: object}]}
scopes:
  - name: main
    namespace: App
    type: Program
    method: Main
    locals:
      - {name: n, type: int}
      - {name: l, type: long}
      - {name: d, type: double}
      - {name: m, type: decimal}
      - {name: s, type: string}
      - {name: ni, type: "int?"}
expressions:
`

// source returns a declaration file with one expression per entry. An
// entry is the text of the expression optionally followed by "=>" and a
// target type.
func source(exprs ...string) string {
	var sb strings.Builder
	sb.WriteString(header)
	for i, e := range exprs {
		text, target, _ := strings.Cut(e, "=>")
		fmt.Fprintf(&sb, "  - {name: e%d, scope: main, text: %q", i, strings.TrimSpace(text))
		if target != "" {
			fmt.Fprintf(&sb, ", target: %q", strings.TrimSpace(target))
		}
		sb.WriteString("}\n")
	}
	return sb.String()
}

// exprLine returns the 1-based line of the i'th expression of source.
func exprLine(i int) int {
	return strings.Count(header, "\n") + i + 1
}

// textCol returns the 1-based column of the byte at offset in the text of
// an expression declared by source.
func textCol(offset int) int {
	return len(`  - {name: e0, scope: main, text: "`) + offset + 1
}

func analyze(t *testing.T, text string) *analysis.Result {
	t.Helper()
	ws, err := workspace.Parse("lint.bind.yaml", []byte(text))
	require.NoError(t, err)
	return analysis.Analyze(ws, nil)
}

// lintSource runs all default analyzers on the given source and returns diagnostics.
func lintSource(t *testing.T, text string) []Diagnostic {
	t.Helper()
	l := &Linter{Analyzers: DefaultAnalyzers()}
	diags, err := l.Lint(analyze(t, text))
	require.NoError(t, err)
	return diags
}

// lintCheck runs a single analyzer on the given source.
func lintCheck(t *testing.T, analyzer *Analyzer, text string) []Diagnostic {
	t.Helper()
	l := &Linter{Analyzers: []*Analyzer{analyzer}}
	diags, err := l.Lint(analyze(t, text))
	require.NoError(t, err)
	return diags
}

// assertDiagOnLine checks that a diagnostic exists on the given line with the given substring.
func assertDiagOnLine(t *testing.T, diags []Diagnostic, line int, substr string) {
	t.Helper()
	for _, d := range diags {
		if d.Pos.Line == line && strings.Contains(d.Message, substr) {
			return
		}
	}
	var msgs []string
	for _, d := range diags {
		msgs = append(msgs, fmt.Sprintf("line %d: %s", d.Pos.Line, d.Message))
	}
	t.Errorf("expected diagnostic on line %d containing %q, got: %v", line, substr, msgs)
}

// assertNoDiags checks that there are no diagnostics.
func assertNoDiags(t *testing.T, diags []Diagnostic) {
	t.Helper()
	if len(diags) > 0 {
		var msgs []string
		for _, d := range diags {
			msgs = append(msgs, d.String())
		}
		t.Errorf("expected no diagnostics, got %d: %v", len(diags), msgs)
	}
}

// --- Position.String() ---

func TestPosition_String(t *testing.T) {
	tests := []struct {
		pos  Position
		want string
	}{
		{Position{File: "app.bind.yaml"}, "app.bind.yaml"},
		{Position{File: "app.bind.yaml", Line: 10}, "app.bind.yaml:10"},
		{Position{File: "app.bind.yaml", Line: 10, Col: 5}, "app.bind.yaml:10:5"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.pos.String())
		})
	}
}

func TestDiagnostic_String(t *testing.T) {
	d := Diagnostic{
		Pos:      Position{File: "app.bind.yaml", Line: 10},
		Message:  "redundant cast to int",
		Analyzer: "redundant-cast",
		Notes:    []string{"the operand already has type int"},
	}
	assert.Equal(t, "app.bind.yaml:10: redundant cast to int (redundant-cast)\n  = note: the operand already has type int", d.String())
}

// --- Severity ---

func TestSeverity_JSON(t *testing.T) {
	for _, s := range []Severity{SeverityError, SeverityWarning, SeverityInfo} {
		data, err := json.Marshal(s)
		require.NoError(t, err)
		var back Severity
		require.NoError(t, json.Unmarshal(data, &back))
		assert.Equal(t, s, back)
	}

	data, err := json.Marshal(severityUnset)
	require.NoError(t, err)
	assert.Equal(t, `"warning"`, string(data))

	var s Severity
	assert.Error(t, json.Unmarshal([]byte(`"fatal"`), &s))
	assert.Error(t, json.Unmarshal([]byte(`3`), &s))
}

// --- Analyzer error propagation ---

func TestLint_AnalyzerError(t *testing.T) {
	errAnalyzer := &Analyzer{
		Name: "fail",
		Doc:  "Always fails.",
		Run: func(pass *Pass) error {
			return fmt.Errorf("intentional failure")
		},
	}
	l := &Linter{Analyzers: []*Analyzer{errAnalyzer}}
	_, err := l.Lint(analyze(t, source("n")))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "intentional failure")
	assert.Contains(t, err.Error(), "fail")
}

func TestLint_DefaultsFileAndSeverity(t *testing.T) {
	custom := &Analyzer{
		Name:     "every-binding",
		Severity: SeverityError,
		Run: func(pass *Pass) error {
			for _, b := range pass.Result.Bindings {
				pass.Report(Diagnostic{Pos: Position{Line: b.Expression.Source.Line}, Message: b.Expression.Name})
			}
			return nil
		},
	}
	l := &Linter{Analyzers: []*Analyzer{custom}}
	diags, err := l.Lint(analyze(t, source("n", "l")))
	require.NoError(t, err)
	require.Len(t, diags, 2)
	for _, d := range diags {
		assert.Equal(t, "lint.bind.yaml", d.Pos.File)
		assert.Equal(t, SeverityError, d.Severity)
		assert.Equal(t, "every-binding", d.Analyzer)
	}
	assert.Equal(t, "e0", diags[0].Message)
	assert.Equal(t, "e1", diags[1].Message)
}

func TestLint_SkipsUnparsedExpressions(t *testing.T) {
	assertNoDiags(t, lintSource(t, source("(int)(", "n +")))
}

// --- implicit-boxing ---

func TestImplicitBoxing(t *testing.T) {
	tests := []struct {
		name string
		expr string
		want string
		col  int
	}{
		{"target", "n => object", "value of type int is implicitly boxed to object", 0},
		{"argument", "Take(d)", "value of type double is implicitly boxed to object", 5},
		{"nullable", "ni => object", "value of type int? is implicitly boxed to object", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			diags := lintCheck(t, AnalyzerImplicitBoxing, source(tt.expr))
			require.Len(t, diags, 1)
			assertDiagOnLine(t, diags, exprLine(0), tt.want)
			assert.Equal(t, textCol(tt.col), diags[0].Pos.Col)
			assert.Equal(t, SeverityInfo, diags[0].Severity)
		})
	}
}

func TestImplicitBoxing_Negative(t *testing.T) {
	tests := []struct {
		name string
		expr string
	}{
		{"cast", "(object)n"},
		{"reference", "s => object"},
		{"reference argument", "Take(s)"},
		{"numeric", "n => long"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assertNoDiags(t, lintCheck(t, AnalyzerImplicitBoxing, source(tt.expr)))
		})
	}
}

// --- redundant-cast ---

func TestRedundantCast(t *testing.T) {
	diags := lintCheck(t, AnalyzerRedundantCast, source("(int)n", "(string)s"))
	require.Len(t, diags, 2)
	assertDiagOnLine(t, diags, exprLine(0), "redundant cast to int")
	assertDiagOnLine(t, diags, exprLine(1), "redundant cast to string")
	assert.Equal(t, textCol(0), diags[0].Pos.Col)
	require.NotNil(t, diags[0].End)
	assert.Equal(t, textCol(len("(int)n")), diags[0].End.Col)
	assert.Equal(t, []string{"the operand already has type int"}, diags[0].Notes)
}

func TestRedundantCast_Negative(t *testing.T) {
	tests := []struct {
		name string
		expr string
	}{
		{"widening", "(long)n"},
		{"narrowing", "(int)l"},
		{"boxing", "(object)n"},
		{"no cast", "n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assertNoDiags(t, lintCheck(t, AnalyzerRedundantCast, source(tt.expr)))
		})
	}
}

// --- lossy-numeric-conversion ---

func TestLossyNumericConversion(t *testing.T) {
	tests := []struct {
		name string
		expr string
		want string
		col  int
	}{
		{"int to float", "n => float", "implicit conversion from int to float may lose precision", 0},
		{"long to double", "l => double", "implicit conversion from long to double may lose precision", 0},
		{"long operand", "d + l", "implicit conversion from long to double may lose precision", 4},
		{"double cast", "(int)d", "cast from double to int truncates the fractional part", 0},
		{"decimal cast", "(long)m", "cast from decimal to long truncates the fractional part", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			diags := lintCheck(t, AnalyzerLossyNumericConversion, source(tt.expr))
			require.Len(t, diags, 1)
			assertDiagOnLine(t, diags, exprLine(0), tt.want)
			assert.Equal(t, textCol(tt.col), diags[0].Pos.Col)
		})
	}
}

func TestLossyNumericConversion_Negative(t *testing.T) {
	tests := []struct {
		name string
		expr string
	}{
		{"int to double", "n => double"},
		{"int to long", "n => long"},
		{"constant", "1 => float"},
		{"constant cast", "(int)2.5"},
		{"integral cast", "(int)l"},
		{"floating cast", "(float)d"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assertNoDiags(t, lintCheck(t, AnalyzerLossyNumericConversion, source(tt.expr)))
		})
	}
}

// --- nolint suppression ---

func TestNolint(t *testing.T) {
	tests := []struct {
		name    string
		comment string
		want    int
	}{
		{"all", "# nolint", 0},
		{"named", "# nolint:redundant-cast", 1},
		{"list", "# nolint:redundant-cast, lossy-numeric-conversion", 0},
		{"other", "# nolint:implicit-boxing", 2},
		{"plain comment", "# truncation is intended", 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			text := source("(int)(int)d")
			text = strings.TrimSuffix(text, "\n") + "  " + tt.comment + "\n"
			assert.Len(t, lintSource(t, text), tt.want)
		})
	}
}

func TestNolint_OwnLine(t *testing.T) {
	text := header + "  # nolint\n" + strings.TrimPrefix(source("(int)n"), header)
	diags := lintSource(t, text)
	require.Len(t, diags, 1)
	assert.Equal(t, exprLine(1), diags[0].Pos.Line)
}

func TestNolintLines(t *testing.T) {
	lines := nolintLines([]byte("a: 1 # nolint\nb:\n  - x # nolint:one,two\n  - y # other\n"))
	assert.Equal(t, map[int]string{1: "", 3: "one,two"}, lines)
	assert.Empty(t, nolintLines([]byte("a: [")))
}

// --- ordering ---

func TestLint_Ordered(t *testing.T) {
	diags := lintSource(t, source("(int)d", "n => object", "(int)n"))
	require.Len(t, diags, 3)
	assert.Equal(t, "lossy-numeric-conversion", diags[0].Analyzer)
	assert.Equal(t, "implicit-boxing", diags[1].Analyzer)
	assert.Equal(t, "redundant-cast", diags[2].Analyzer)
	for i := 1; i < len(diags); i++ {
		assert.Less(t, diags[i-1].Pos.Line, diags[i].Pos.Line)
	}
}

// --- LintFile ---

func TestLintFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "app.bind.yaml")
	require.NoError(t, os.WriteFile(path, []byte(source("(int)n")), 0o600))

	l := &Linter{Analyzers: DefaultAnalyzers()}
	diags, err := l.LintFile(context.Background(), path, nil)
	require.NoError(t, err)
	require.Len(t, diags, 1)
	assert.Equal(t, path, diags[0].Pos.File)

	bad := filepath.Join(dir, "bad.bind.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("expressions: ["), 0o600))
	_, err = l.LintFile(context.Background(), bad, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), bad)

	_, err = l.LintFile(context.Background(), filepath.Join(dir, "missing.bind.yaml"), nil)
	assert.Error(t, err)
}

// --- output formats ---

func TestFormatText(t *testing.T) {
	diags := []Diagnostic{
		{Pos: Position{File: "app.bind.yaml", Line: 10, Col: 3}, Message: "redundant cast to int", Analyzer: "redundant-cast"},
		{Pos: Position{File: "app.bind.yaml", Line: 12}, Message: "value of type int is implicitly boxed to object", Analyzer: "implicit-boxing"},
	}
	var buf bytes.Buffer
	FormatText(&buf, diags)
	assert.Equal(t, "app.bind.yaml:10:3: redundant cast to int (redundant-cast)\n"+
		"app.bind.yaml:12: value of type int is implicitly boxed to object (implicit-boxing)\n", buf.String())
}

func TestFormatJSON(t *testing.T) {
	diags := []Diagnostic{
		{
			Pos:      Position{File: "app.bind.yaml", Line: 10, Col: 3},
			End:      &Position{File: "app.bind.yaml", Line: 10, Col: 9},
			Message:  "redundant cast to int",
			Analyzer: "redundant-cast",
			Severity: SeverityWarning,
			Notes:    []string{"the operand already has type int"},
		},
	}
	var buf bytes.Buffer
	require.NoError(t, FormatJSON(&buf, diags))

	var back []Diagnostic
	require.NoError(t, json.Unmarshal(buf.Bytes(), &back))
	assert.Equal(t, diags, back)
	assert.Contains(t, buf.String(), `"severity": "warning"`)
}

func TestDefaultAnalyzers(t *testing.T) {
	seen := map[string]bool{}
	for _, a := range DefaultAnalyzers() {
		assert.NotEmpty(t, a.Doc, a.Name)
		assert.NotNil(t, a.Run, a.Name)
		assert.False(t, seen[a.Name], "duplicate analyzer %s", a.Name)
		seen[a.Name] = true
	}
	assert.Equal(t, map[string]bool{
		"implicit-boxing":          true,
		"redundant-cast":           true,
		"lossy-numeric-conversion": true,
	}, seen)
}

func TestAnalyzerNames(t *testing.T) {
	assert.Equal(t, []string{"implicit-boxing", "lossy-numeric-conversion", "redundant-cast"}, AnalyzerNames())

	doc := AnalyzerDoc()
	assert.Contains(t, doc, "  redundant-cast\n    Report casts that convert a value to its own type.\n")
	assert.NotContains(t, doc, "An identity cast")
}
