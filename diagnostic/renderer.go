// Copyright © 2024 The ELPS authors

package diagnostic

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// tabWidth is the number of columns a tab in a source line is expanded to.
const tabWidth = 4

// Renderer formats diagnostics as annotated source snippets:
//
//	error[B1002]: 'Widget' does not contain a definition for 'Shrink'
//	  --> app.bind.yaml:21:43
//	   |
//	21 |  - {name: missing, scope: main, text: "w.Shrink(1)"}
//	   |                                          ^^^^^^
//	   = note: candidate: ...
//
// The first span of a diagnostic is underlined with '^' in the color of
// its severity; further spans are underlined with '-'.
type Renderer struct {
	// Color controls ANSI color output. Default is ColorAuto.
	Color ColorMode

	// SourceReader reads source file contents. If nil, os.ReadFile is used.
	SourceReader func(string) ([]byte, error)

	// lines caches the split contents of files read during RenderAll.
	lines map[string][]string
}

// Render writes a single diagnostic to w.
func (r *Renderer) Render(w io.Writer, d Diagnostic) error {
	p := choosePalette(r.Color, fileFromWriter(w))
	bw := bufio.NewWriter(w)
	ew := &errWriter{w: bw}

	r.writeHeader(ew, d, p)
	gutter := gutterWidth(d.Spans)
	for i, span := range d.Spans {
		underline, style := '^', p.styleOf(d.Severity)
		if i > 0 {
			underline, style = '-', p.label
		}
		r.writeSpan(ew, span, gutter, underline, style, p)
	}
	for _, note := range d.Notes {
		ew.printf("%s %s=%s note: %s\n", strings.Repeat(" ", gutter), p.note, p.reset, note)
	}

	if ew.err != nil {
		return ew.err
	}
	return bw.Flush()
}

// RenderAll writes all diagnostics to w separated by blank lines. Each
// source file is read at most once.
func (r *Renderer) RenderAll(w io.Writer, diags []Diagnostic) error {
	r.lines = make(map[string][]string)
	defer func() { r.lines = nil }()
	for i, d := range diags {
		if i > 0 {
			if _, err := io.WriteString(w, "\n"); err != nil {
				return err
			}
		}
		if err := r.Render(w, d); err != nil {
			return err
		}
	}
	return nil
}

// errWriter wraps a writer and captures the first error, short-circuiting
// subsequent writes. This avoids checking every fmt.Fprintf return value.
type errWriter struct {
	w   io.Writer
	err error
}

func (ew *errWriter) printf(format string, a ...interface{}) {
	if ew.err != nil {
		return
	}
	_, ew.err = fmt.Fprintf(ew.w, format, a...)
}

func (r *Renderer) writeHeader(ew *errWriter, d Diagnostic, p palette) {
	head := d.Severity.String()
	if d.Code != 0 {
		head = fmt.Sprintf("%s[%s]", head, d.Code)
	}
	ew.printf("%s%s%s: %s%s%s\n", p.styleOf(d.Severity), head, p.reset, p.message, d.Message, p.reset)
}

// gutterWidth is the width of the widest line number among spans, and at
// least one.
func gutterWidth(spans []Span) int {
	w := 1
	for _, sp := range spans {
		if n := len(strconv.Itoa(sp.Line)); sp.Line > 0 && n > w {
			w = n
		}
	}
	return w
}

func (r *Renderer) writeSpan(ew *errWriter, span Span, gutter int, underline rune, style string, p palette) {
	pad := strings.Repeat(" ", gutter)
	ew.printf("%s%s-->%s %s\n", pad, p.gutter, p.reset, spanLocation(span))

	source, ok := r.sourceLine(span.File, span.Line)
	if !ok {
		ew.printf("%s %s|%s\n", pad, p.gutter, p.reset)
		return
	}

	col := max(span.Col, 1)
	endCol := span.EndCol
	if endCol <= 0 {
		endCol = detectEndCol(source, col)
	}
	endCol = max(endCol, col)

	prefix := ""
	if col-1 <= len(source) {
		prefix = source[:col-1]
	}
	marked := ""
	if col-1 < len(source) {
		marked = source[col-1 : min(endCol, len(source))]
	}
	marks := strings.Repeat(string(underline), max(displayWidth(marked), 1))

	ew.printf("%s %s|%s\n", pad, p.gutter, p.reset)
	ew.printf("%s%*d |%s  %s\n", p.gutter, gutter, span.Line, p.reset, expandTabs(source))
	ew.printf("%s %s|%s  %s%s%s%s", pad, p.gutter, p.reset,
		strings.Repeat(" ", displayWidth(prefix)), style, marks, p.reset)
	if span.Label != "" {
		ew.printf(" %s%s%s", style, span.Label, p.reset)
	}
	ew.printf("\n%s %s|%s\n", pad, p.gutter, p.reset)
}

func spanLocation(span Span) string {
	switch {
	case span.Line <= 0:
		return span.File
	case span.Col <= 0:
		return fmt.Sprintf("%s:%d", span.File, span.Line)
	}
	return fmt.Sprintf("%s:%d:%d", span.File, span.Line, span.Col)
}

// sourceLine returns the 1-based line of file, or false when the file
// cannot be read or is too short.
func (r *Renderer) sourceLine(file string, line int) (string, bool) {
	if line <= 0 || file == "" {
		return "", false
	}
	lines, ok := r.lines[file]
	if !ok {
		lines = r.readLines(file)
		if r.lines != nil {
			r.lines[file] = lines
		}
	}
	if line > len(lines) {
		return "", false
	}
	return lines[line-1], true
}

func (r *Renderer) readLines(file string) []string {
	reader := r.SourceReader
	if reader == nil {
		reader = func(name string) ([]byte, error) {
			return os.ReadFile(name) //nolint:gosec // reads user-specified source files for display
		}
	}
	data, err := reader(file)
	if err != nil {
		return nil
	}
	var lines []string
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	return lines
}

// detectEndCol returns the inclusive end column of the token starting at
// col: a quoted literal through its closing quote, a name through its last
// identifier character, and any other character by itself.
func detectEndCol(source string, col int) int {
	start := col - 1
	if start < 0 || start >= len(source) {
		return col
	}
	first, size := utf8.DecodeRuneInString(source[start:])
	end := start + size
	switch {
	case first == '"' || first == '\'':
		for end < len(source) {
			ch, n := utf8.DecodeRuneInString(source[end:])
			end += n
			if ch == '\\' && end < len(source) {
				_, n = utf8.DecodeRuneInString(source[end:])
				end += n
				continue
			}
			if ch == first {
				break
			}
		}
	case isIdentRune(first):
		for end < len(source) {
			ch, n := utf8.DecodeRuneInString(source[end:])
			if !isIdentRune(ch) {
				break
			}
			end += n
		}
	}
	return end
}

func isIdentRune(ch rune) bool {
	return ch == '_' || unicode.IsLetter(ch) || unicode.IsDigit(ch)
}

func expandTabs(s string) string {
	return strings.ReplaceAll(s, "\t", strings.Repeat(" ", tabWidth))
}

// displayWidth returns the number of columns s occupies once tabs are
// expanded.
func displayWidth(s string) int {
	w := 0
	for _, ch := range s {
		if ch == '\t' {
			w += tabWidth
		} else {
			w++
		}
	}
	return w
}

// fileFromWriter returns the file behind w for terminal detection, or nil.
func fileFromWriter(w io.Writer) *os.File {
	if f, ok := w.(*os.File); ok {
		return f
	}
	return nil
}
