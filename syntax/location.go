// Copyright © 2024 The ELPS authors

package syntax

import "fmt"

// Location is a half-open byte range [Pos, End) in a named source together
// with the 1-based line and column of both ends.
type Location struct {
	File    string // a name representing the source stream
	Path    string // a physical location which may differ from File
	Pos     int
	End     int
	Line    int // line number (starting at 1 when tracked)
	Col     int // line column number (starting at 1 when tracked)
	EndLine int
	EndCol  int
}

func (loc *Location) String() string {
	if loc == nil {
		return "<unknown>"
	}
	switch {
	case loc.Pos < 0:
		return loc.File
	case loc.Line == 0:
		return fmt.Sprintf("%s[%d]", loc.File, loc.Pos)
	case loc.Col == 0:
		return fmt.Sprintf("%s:%d", loc.File, loc.Line)
	default:
		return fmt.Sprintf("%s:%d:%d", loc.File, loc.Line, loc.Col)
	}
}

// Contains reports whether the byte offset lies inside loc.
func (loc *Location) Contains(offset int) bool {
	if loc == nil {
		return false
	}
	return loc.Pos <= offset && offset < loc.End
}

// ContainsLine reports whether the 1-based line/column position lies inside
// loc.
func (loc *Location) ContainsLine(line, col int) bool {
	if loc == nil || loc.Line == 0 {
		return false
	}
	if line < loc.Line || line > loc.EndLine {
		return false
	}
	if line == loc.Line && col < loc.Col {
		return false
	}
	if line == loc.EndLine && col >= loc.EndCol {
		return false
	}
	return true
}

// Width returns the number of bytes covered by loc.
func (loc *Location) Width() int {
	if loc == nil {
		return 0
	}
	return loc.End - loc.Pos
}

// Merge returns a location spanning from the start of a to the end of b.
func Merge(a, b *Location) *Location {
	switch {
	case a == nil:
		return b
	case b == nil:
		return a
	}
	return &Location{
		File:    a.File,
		Path:    a.Path,
		Pos:     a.Pos,
		End:     b.End,
		Line:    a.Line,
		Col:     a.Col,
		EndLine: b.EndLine,
		EndCol:  b.EndCol,
	}
}

// LocationError is an error attached to a source location.
type LocationError struct {
	Err    error
	Source *Location
}

func (err *LocationError) Error() string {
	return fmt.Sprintf("%s: %s", err.Source, err.Err)
}

func (err *LocationError) Unwrap() error {
	return err.Err
}
