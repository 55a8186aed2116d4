// Copyright © 2024 The ELPS authors

package diagnostic

import (
	"bytes"
	"strings"
	"testing"
)

// testRenderer returns a Renderer with colors disabled and a fake source reader.
func testRenderer(sources map[string]string) *Renderer {
	return &Renderer{
		Color: ColorNever,
		SourceReader: func(name string) ([]byte, error) {
			s, ok := sources[name]
			if !ok {
				return nil, &fakeErr{name}
			}
			return []byte(s), nil
		},
	}
}

type fakeErr struct{ name string }

func (e *fakeErr) Error() string { return "not found: " + e.name }

func TestRenderError(t *testing.T) {
	r := testRenderer(map[string]string{
		"test.cs": "Program.M(x: 1, x: 2)",
	})

	d := Diagnostic{
		Severity: SeverityError,
		Message:  "named argument 'x' cannot be specified multiple times",
		Spans: []Span{
			{File: "test.cs", Line: 1, Col: 17, EndCol: 20, Label: "second use of x"},
		},
	}

	var buf bytes.Buffer
	if err := r.Render(&buf, d); err != nil {
		t.Fatal(err)
	}

	got := buf.String()

	// Verify key structural elements
	assertContains(t, got, "error: named argument 'x' cannot be specified multiple times")
	assertContains(t, got, "--> test.cs:1:17")
	assertContains(t, got, "Program.M(x: 1, x: 2)")
	assertContains(t, got, "^^^^")
	assertContains(t, got, "second use of x")
}

func TestRenderWarning(t *testing.T) {
	r := testRenderer(map[string]string{
		"test.cs": "Old(1)\nOld(2)",
	})

	d := Diagnostic{
		Severity: SeverityWarning,
		Message:  "'Old(int)' is obsolete: 'use New'",
		Spans: []Span{
			{File: "test.cs", Line: 2, Col: 1, EndCol: 6},
		},
	}

	var buf bytes.Buffer
	if err := r.Render(&buf, d); err != nil {
		t.Fatal(err)
	}

	got := buf.String()
	assertContains(t, got, "warning: 'Old(int)' is obsolete: 'use New'")
	assertContains(t, got, "--> test.cs:2:1")
	assertContains(t, got, "Old(2)")
}

func TestRenderNoSource(t *testing.T) {
	r := testRenderer(nil)

	d := Diagnostic{
		Severity: SeverityError,
		Message:  "some error",
		Spans: []Span{
			{File: "<stdin>", Line: 5, Col: 3},
		},
	}

	var buf bytes.Buffer
	if err := r.Render(&buf, d); err != nil {
		t.Fatal(err)
	}

	got := buf.String()
	assertContains(t, got, "error: some error")
	assertContains(t, got, "--> <stdin>:5:3")
	// Should have a gutter but no source line
	assertContains(t, got, "|")
	assertNotContains(t, got, "^")
}

func TestRenderNotes(t *testing.T) {
	r := testRenderer(map[string]string{
		"test.cs": "Frob(1, 2)",
	})

	d := Diagnostic{
		Severity: SeverityError,
		Message:  "the name 'Frob' does not exist in the current context",
		Spans: []Span{
			{File: "test.cs", Line: 1, Col: 1, EndCol: 4},
		},
		Notes: []string{
			"candidate: Program.Frab(int, int)",
			"candidate: Program.Frobnicate(int)",
		},
	}

	var buf bytes.Buffer
	if err := r.Render(&buf, d); err != nil {
		t.Fatal(err)
	}

	got := buf.String()
	assertContains(t, got, "= note: candidate: Program.Frab(int, int)")
	assertContains(t, got, "= note: candidate: Program.Frobnicate(int)")
}

func TestRenderAutoDetectEndCol(t *testing.T) {
	r := testRenderer(map[string]string{
		"test.cs": "Take(value, other)",
	})

	d := Diagnostic{
		Severity: SeverityError,
		Message:  "the name 'value' does not exist in the current context",
		Spans: []Span{
			{File: "test.cs", Line: 1, Col: 6}, // EndCol=0 → auto-detect
		},
	}

	var buf bytes.Buffer
	if err := r.Render(&buf, d); err != nil {
		t.Fatal(err)
	}

	got := buf.String()
	// "value" starts at col 6 and stops at the comma
	assertContains(t, got, "^^^^^")
	assertNotContains(t, got, "^^^^^^")
}

func TestRenderMultipleDiagnostics(t *testing.T) {
	r := testRenderer(map[string]string{
		"test.cs": "M(1)\nM(\"s\")\nM(null)",
	})

	diags := []Diagnostic{
		{
			Severity: SeverityError,
			Message:  "argument 1: cannot convert from 'string' to 'int'",
			Spans:    []Span{{File: "test.cs", Line: 2, Col: 3, EndCol: 5}},
		},
		{
			Severity: SeverityError,
			Message:  "the call is ambiguous",
			Spans:    []Span{{File: "test.cs", Line: 3, Col: 1, EndCol: 7}},
		},
	}

	var buf bytes.Buffer
	if err := r.RenderAll(&buf, diags); err != nil {
		t.Fatal(err)
	}

	got := buf.String()
	// Should have both diagnostics separated by blank line
	parts := strings.Split(got, "\n\n")
	if len(parts) < 2 {
		t.Errorf("expected diagnostics separated by blank line, got:\n%s", got)
	}
	assertContains(t, got, "argument 1: cannot convert from 'string' to 'int'")
	assertContains(t, got, "the call is ambiguous")
}

func TestRenderNoSpans(t *testing.T) {
	r := testRenderer(nil)

	d := Diagnostic{
		Severity: SeverityError,
		Message:  "declaration file not found",
	}

	var buf bytes.Buffer
	if err := r.Render(&buf, d); err != nil {
		t.Fatal(err)
	}

	got := buf.String()
	assertContains(t, got, "error: declaration file not found")
	// Should be just the header, no arrows or source
	assertNotContains(t, got, "-->")
}

func TestRenderCode(t *testing.T) {
	r := testRenderer(map[string]string{
		"test.cs": "Missing(1)",
	})

	d := New(ErrNameNotFound, Span{File: "test.cs", Line: 1, Col: 1, EndCol: 7}, "Missing")

	var buf bytes.Buffer
	if err := r.Render(&buf, d); err != nil {
		t.Fatal(err)
	}

	got := buf.String()
	assertContains(t, got, "error[B1001]: the name 'Missing' does not exist in the current context")
	assertContains(t, got, "^^^^^^^")
}

func TestRenderSecondarySpan(t *testing.T) {
	r := testRenderer(map[string]string{
		"app.bind.yaml": "a: 1\nexpr: \"M(x: 1, x: 2)\"",
	})

	d := Diagnostic{
		Severity: SeverityError,
		Message:  "named argument 'x' cannot be specified multiple times",
		Spans: []Span{
			{File: "app.bind.yaml", Line: 2, Col: 17, EndCol: 17},
			{File: "app.bind.yaml", Line: 2, Col: 10, EndCol: 10, Label: "first use"},
		},
	}

	var buf bytes.Buffer
	if err := r.Render(&buf, d); err != nil {
		t.Fatal(err)
	}

	got := buf.String()
	assertContains(t, got, "--> app.bind.yaml:2:17")
	assertContains(t, got, "--> app.bind.yaml:2:10")
	assertContains(t, got, "- first use")
	if strings.Count(got, "--> app.bind.yaml") != 2 {
		t.Errorf("expected two span headers:\n%s", got)
	}
}

func TestDetectEndCol(t *testing.T) {
	tests := []struct {
		source string
		col    int
		want   int
	}{
		{"Take(value, other)", 6, 10},
		{"Take(value, other)", 5, 5},
		{`M("a\"b", 1)`, 3, 8},
		{"x", 4, 4},
		{"Größe + 1", 1, 7}, // byte columns
	}
	for _, tt := range tests {
		if got := detectEndCol(tt.source, tt.col); got != tt.want {
			t.Errorf("detectEndCol(%q, %d) = %d, want %d", tt.source, tt.col, got, tt.want)
		}
	}
}

func TestParseColorMode(t *testing.T) {
	for _, mode := range []ColorMode{ColorAuto, ColorAlways, ColorNever} {
		got, err := ParseColorMode(mode.String())
		if err != nil || got != mode {
			t.Errorf("ParseColorMode(%q) = %v, %v", mode.String(), got, err)
		}
	}
	if _, err := ParseColorMode("sometimes"); err == nil {
		t.Error("expected an error for an unknown mode")
	}
}

func TestRenderColor(t *testing.T) {
	r := testRenderer(map[string]string{"test.cs": "Old(1)"})
	r.Color = ColorAlways
	d := Diagnostic{
		Severity: SeverityWarning,
		Message:  "obsolete",
		Spans:    []Span{{File: "test.cs", Line: 1, Col: 1, EndCol: 3}},
	}
	var buf bytes.Buffer
	if err := r.Render(&buf, d); err != nil {
		t.Fatal(err)
	}
	assertContains(t, buf.String(), "\033[1;33mwarning\033[0m")
}

func assertContains(t *testing.T, got, want string) {
	t.Helper()
	if !strings.Contains(got, want) {
		t.Errorf("output does not contain %q:\n%s", want, got)
	}
}

func assertNotContains(t *testing.T, got, unwanted string) {
	t.Helper()
	if strings.Contains(got, unwanted) {
		t.Errorf("output unexpectedly contains %q:\n%s", unwanted, got)
	}
}
