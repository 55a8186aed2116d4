// Copyright © 2024 The ELPS authors

package diagnostic

import (
	"fmt"
	"os"

	"github.com/mattn/go-isatty"
)

// ColorMode controls when ANSI color codes are used.
type ColorMode int

const (
	ColorAuto   ColorMode = iota // detect based on terminal and NO_COLOR
	ColorAlways                  // always use colors
	ColorNever                   // never use colors
)

func (m ColorMode) String() string {
	switch m {
	case ColorAlways:
		return "always"
	case ColorNever:
		return "never"
	default:
		return "auto"
	}
}

// ParseColorMode parses "auto", "always" or "never".
func ParseColorMode(s string) (ColorMode, error) {
	switch s {
	case "", "auto":
		return ColorAuto, nil
	case "always":
		return ColorAlways, nil
	case "never":
		return ColorNever, nil
	}
	return ColorAuto, fmt.Errorf("invalid color mode %q: want auto, always or never", s)
}

// palette maps the roles of rendered text to ANSI escape sequences. The
// zero palette renders plain text.
type palette struct {
	message string
	gutter  string
	note    string
	label   string // secondary span underlines and labels
	reset   string
	// severity styles headers and primary underlines.
	severity [SeverityNote + 1]string
}

var ansiPalette = palette{
	message: "\033[1m",
	gutter:  "\033[1;34m",
	note:    "\033[1;36m",
	label:   "\033[34m",
	reset:   "\033[0m",
	severity: [...]string{
		SeverityError:   "\033[1;31m",
		SeverityWarning: "\033[1;33m",
		SeverityNote:    "\033[1;36m",
	},
}

func (p palette) styleOf(s Severity) string {
	if s < 0 || int(s) >= len(p.severity) {
		return ""
	}
	return p.severity[s]
}

// choosePalette selects the palette for mode and the file output goes to,
// which is nil when it is not a file.
func choosePalette(mode ColorMode, w *os.File) palette {
	switch mode {
	case ColorAlways:
		return ansiPalette
	case ColorNever:
		return palette{}
	}
	if os.Getenv("NO_COLOR") != "" || !isTerminal(w) {
		return palette{}
	}
	return ansiPalette
}

func isTerminal(f *os.File) bool {
	if f == nil {
		return false
	}
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
