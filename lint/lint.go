// Copyright © 2024 The ELPS authors

// Package lint provides static checks over bound expression trees.
//
// The linter is modeled after go vet: each check is an independent Analyzer
// that receives the analysis of a declaration file and reports diagnostics.
// The framework handles loading, running analyzers, collecting results, and
// formatting output.
//
// Embedders can define custom checks alongside the built-in set.
package lint

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/luthersystems/sembind/analysis"
	"github.com/luthersystems/sembind/symbols"
	"github.com/luthersystems/sembind/syntax"
	"github.com/luthersystems/sembind/workspace"
)

// Severity indicates the severity level of a lint diagnostic.
type Severity int

const (
	severityUnset Severity = iota // unexported zero sentinel for default detection
	SeverityError
	SeverityWarning
	SeverityInfo
)

func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	case SeverityInfo:
		return "info"
	default:
		return "unknown"
	}
}

// MarshalJSON serializes the severity as a JSON string.
// An unset severity (zero value) is marshaled as "warning".
func (s Severity) MarshalJSON() ([]byte, error) {
	if s == severityUnset {
		return json.Marshal("warning")
	}
	return json.Marshal(s.String())
}

// UnmarshalJSON deserializes a severity from a JSON string.
func (s *Severity) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}
	switch str {
	case "error":
		*s = SeverityError
	case "warning":
		*s = SeverityWarning
	case "info":
		*s = SeverityInfo
	default:
		return fmt.Errorf("unknown severity: %q", str)
	}
	return nil
}

// Analyzer defines a single lint check.
type Analyzer struct {
	// Name is a short identifier for this check (e.g. "redundant-cast").
	Name string

	// Doc is a human-readable description. The first line is a short summary.
	Doc string

	// Severity is the default severity for diagnostics from this analyzer.
	Severity Severity

	// Run executes the check. It should call pass.Report() for each finding.
	Run func(pass *Pass) error
}

// Pass provides context to a running analyzer.
type Pass struct {
	// Analyzer is the currently running check.
	Analyzer *Analyzer

	// Filename is the declaration file being analyzed.
	Filename string

	// Result holds the bound expressions of the file and their references.
	Result *analysis.Result

	// Table is the symbol table the expressions were bound against.
	Table *symbols.Table

	// diagnostics collects reported findings.
	diagnostics []Diagnostic
}

// Report records a diagnostic finding.
func (p *Pass) Report(d Diagnostic) {
	d.Analyzer = p.Analyzer.Name
	if d.Severity == severityUnset {
		d.Severity = p.Analyzer.Severity
	}
	p.diagnostics = append(p.diagnostics, d)
}

// ReportWithNotes records a diagnostic with additional hint text.
func (p *Pass) ReportWithNotes(d Diagnostic, notes ...string) {
	d.Notes = append(d.Notes, notes...)
	p.Report(d)
}

// Reportf is a convenience for reporting a diagnostic at a location.
func (p *Pass) Reportf(source *syntax.Location, format string, args ...interface{}) {
	p.Report(Diagnostic{
		Pos:     PositionOf(source),
		End:     EndOf(source),
		Message: fmt.Sprintf(format, args...),
	})
}

// Diagnostic is a single reported problem.
type Diagnostic struct {
	// Pos is the source location of the problem.
	Pos Position `json:"pos"`

	// End is the exclusive end of the problem's span, when known.
	End *Position `json:"end,omitempty"`

	// Message is a human-readable description of the problem.
	Message string `json:"message"`

	// Analyzer is the name of the check that found this problem.
	Analyzer string `json:"analyzer"`

	// Severity is the severity level of the diagnostic.
	Severity Severity `json:"severity"`

	// Notes are optional hint text lines for the user.
	Notes []string `json:"notes,omitempty"`
}

// Position identifies a location in source code.
type Position struct {
	File string `json:"file"`
	Line int    `json:"line"`
	Col  int    `json:"col,omitempty"`
}

// PositionOf returns the start of a location. Physical paths are preferred
// over display names.
func PositionOf(loc *syntax.Location) Position {
	if loc == nil {
		return Position{}
	}
	file := loc.File
	if loc.Path != "" {
		file = loc.Path
	}
	return Position{File: file, Line: loc.Line, Col: loc.Col}
}

// EndOf returns the end of a location, or nil when it has none.
func EndOf(loc *syntax.Location) *Position {
	if loc == nil || loc.EndLine == 0 {
		return nil
	}
	end := PositionOf(loc)
	end.Line, end.Col = loc.EndLine, loc.EndCol
	return &end
}

// String returns the position in file:line format.
func (p Position) String() string {
	if p.Line == 0 {
		return p.File
	}
	if p.Col > 0 {
		return fmt.Sprintf("%s:%d:%d", p.File, p.Line, p.Col)
	}
	return fmt.Sprintf("%s:%d", p.File, p.Line)
}

// String returns the diagnostic in go vet style: file:line: message (analyzer)
// with optional note lines appended.
func (d Diagnostic) String() string {
	s := fmt.Sprintf("%s: %s (%s)", d.Pos, d.Message, d.Analyzer)
	for _, n := range d.Notes {
		s += "\n  = note: " + n
	}
	return s
}

// Linter runs a set of analyzers over analyzed declaration files.
type Linter struct {
	Analyzers []*Analyzer
}

// Lint runs every analyzer over an analysis result and returns the
// findings that are not suppressed by a nolint comment, ordered by
// position.
func (l *Linter) Lint(result *analysis.Result) ([]Diagnostic, error) {
	ws := result.Workspace
	filename := ws.File
	if ws.Path != "" {
		filename = ws.Path
	}

	var all []Diagnostic
	for _, analyzer := range l.Analyzers {
		pass := &Pass{
			Analyzer: analyzer,
			Filename: filename,
			Result:   result,
			Table:    ws.Table,
		}
		if err := analyzer.Run(pass); err != nil {
			return nil, fmt.Errorf("%s: analyzer %s: %w", filename, analyzer.Name, err)
		}
		// Set file on diagnostics that don't have one
		for i := range pass.diagnostics {
			if pass.diagnostics[i].Pos.File == "" {
				pass.diagnostics[i].Pos.File = filename
			}
		}
		all = append(all, pass.diagnostics...)
	}

	all = filterSuppressed(all, nolintLines(ws.Text))

	sort.SliceStable(all, func(i, j int) bool {
		if all[i].Pos.File != all[j].Pos.File {
			return all[i].Pos.File < all[j].Pos.File
		}
		if all[i].Pos.Line != all[j].Pos.Line {
			return all[i].Pos.Line < all[j].Pos.Line
		}
		return all[i].Pos.Col < all[j].Pos.Col
	})

	return all, nil
}

// LintFile loads, analyzes, and lints a declaration file in one call.
// Files that cannot be read as YAML are reported as errors; invalid
// declarations are not, since the valid ones are still linted.
func (l *Linter) LintFile(ctx context.Context, path string, cfg *analysis.Config, opts ...workspace.Option) ([]Diagnostic, error) {
	f := analysis.AnalyzeFile(ctx, path, cfg, opts...)
	if f.Result == nil {
		return nil, fmt.Errorf("%s: %w", path, f.Err)
	}
	return l.Lint(f.Result)
}

// filterSuppressed removes diagnostics on lines with nolint comments.
func filterSuppressed(diags []Diagnostic, nolint map[int]string) []Diagnostic {
	var filtered []Diagnostic
	for _, d := range diags {
		directive, ok := nolint[d.Pos.Line]
		if !ok {
			filtered = append(filtered, d)
			continue
		}
		// Empty directive = suppress all
		if directive == "" {
			continue
		}
		suppressed := false
		for _, name := range strings.Split(directive, ",") {
			if strings.TrimSpace(name) == d.Analyzer {
				suppressed = true
				break
			}
		}
		if !suppressed {
			filtered = append(filtered, d)
		}
	}
	return filtered
}

// nolintLines maps line numbers to the nolint directives of trailing YAML
// comments: "" suppresses every analyzer and "a,b" only the named ones.
// Comments on a line of their own suppress nothing.
func nolintLines(text []byte) map[int]string {
	lines := make(map[int]string)
	var doc yaml.Node
	if err := yaml.Unmarshal(text, &doc); err != nil {
		return lines
	}
	walkForNolint(&doc, lines)
	return lines
}

func walkForNolint(n *yaml.Node, lines map[int]string) {
	if n == nil {
		return
	}
	checkNolintComment(n.LineComment, n.Line, lines)
	for _, child := range n.Content {
		walkForNolint(child, lines)
	}
}

func checkNolintComment(comment string, line int, lines map[int]string) {
	text := strings.TrimSpace(comment)
	// Strip comment prefix
	text = strings.TrimLeft(text, "#")
	text = strings.TrimSpace(text)

	if !strings.HasPrefix(text, "nolint") {
		return
	}
	rest := strings.TrimPrefix(text, "nolint")
	if rest == "" {
		lines[line] = ""
		return
	}
	if strings.HasPrefix(rest, ":") {
		lines[line] = strings.TrimPrefix(rest, ":")
	}
}

// FormatText writes diagnostics in go vet text format.
func FormatText(w io.Writer, diags []Diagnostic) {
	for _, d := range diags {
		fmt.Fprintln(w, d.String()) //nolint:errcheck // best-effort output to writer
	}
}

// FormatJSON writes diagnostics as JSON.
func FormatJSON(w io.Writer, diags []Diagnostic) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(diags)
}

// DefaultAnalyzers returns the built-in set of lint checks.
func DefaultAnalyzers() []*Analyzer {
	return []*Analyzer{
		AnalyzerImplicitBoxing,
		AnalyzerRedundantCast,
		AnalyzerLossyNumericConversion,
	}
}

// AnalyzerNames returns the sorted names of the built-in checks.
func AnalyzerNames() []string {
	analyzers := DefaultAnalyzers()
	names := make([]string, len(analyzers))
	for i, a := range analyzers {
		names[i] = a.Name
	}
	sort.Strings(names)
	return names
}

// AnalyzerDoc returns a formatted documentation string for all analyzers.
func AnalyzerDoc() string {
	var b strings.Builder
	for _, a := range DefaultAnalyzers() {
		fmt.Fprintf(&b, "  %s\n", a.Name)
		lines := strings.Split(a.Doc, "\n")
		fmt.Fprintf(&b, "    %s\n\n", lines[0])
	}
	return b.String()
}
