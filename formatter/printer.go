// Copyright © 2024 The ELPS authors

package formatter

import (
	"strings"

	"github.com/muesli/reflow/indent"
	"github.com/muesli/reflow/wordwrap"
)

// form is one parenthesized S-expression: a head, inline atoms, nested
// children and an optional note printed as a comment.
type form struct {
	head     string
	atoms    []string
	children []*form
	note     string
}

func (f *form) atom(s string) {
	if s != "" {
		f.atoms = append(f.atoms, s)
	}
}

func (f *form) child(c *form) {
	if c != nil {
		f.children = append(f.children, c)
	}
}

// flat renders f on a single line.
func (f *form) flat() string {
	var sb strings.Builder
	f.writeFlat(&sb)
	return sb.String()
}

func (f *form) writeFlat(sb *strings.Builder) {
	sb.WriteByte('(')
	sb.WriteString(f.head)
	for _, a := range f.atoms {
		sb.WriteByte(' ')
		sb.WriteString(a)
	}
	for _, c := range f.children {
		sb.WriteByte(' ')
		c.writeFlat(sb)
	}
	sb.WriteByte(')')
}

func (f *form) headLine() string {
	if len(f.atoms) == 0 {
		return "(" + f.head
	}
	return "(" + f.head + " " + strings.Join(f.atoms, " ")
}

type printer struct {
	cfg *Config
}

// render lays out f within width columns. The result never starts with
// indentation; callers indent nested blocks.
func (p *printer) render(f *form, width int) string {
	if width < 20 {
		width = 20
	}
	if f.note == "" {
		if flat := f.flat(); len(flat) <= width || len(f.children) == 0 {
			return flat
		}
	}
	head := f.headLine()
	rule := p.cfg.rule(f.head)
	header := 0
	switch rule.Style {
	case IndentAlign:
		// The first child shares the head line and the rest line up
		// beneath it.
		header = len(f.children)
	case IndentSpecial:
		header = rule.HeaderArgs
	}
	if header > len(f.children) {
		header = len(f.children)
	}
	if f.note != "" {
		// A note forces the children below it.
		header = 0
	}

	var sb strings.Builder
	sb.WriteString(head)
	align := len(head) + 1
	for i, c := range f.children[:header] {
		text := p.render(c, width-align)
		if i == 0 {
			sb.WriteByte(' ')
			sb.WriteString(hang(text, align))
			continue
		}
		sb.WriteByte('\n')
		sb.WriteString(indent.String(text, uint(align)))
	}
	if f.note != "" {
		sb.WriteByte('\n')
		sb.WriteString(indent.String(p.comment(f.note, width-p.cfg.IndentSize), uint(p.cfg.IndentSize)))
	}
	for _, c := range f.children[header:] {
		sb.WriteByte('\n')
		text := p.render(c, width-p.cfg.IndentSize)
		sb.WriteString(indent.String(text, uint(p.cfg.IndentSize)))
	}
	sb.WriteByte(')')
	return sb.String()
}

// comment wraps note text into "; " comment lines.
func (p *printer) comment(note string, width int) string {
	wrapped := wordwrap.String(note, width-2)
	lines := strings.Split(wrapped, "\n")
	for i, line := range lines {
		lines[i] = "; " + strings.TrimRight(line, " ")
	}
	return strings.Join(lines, "\n")
}

// hang indents every line of text but the first.
func hang(text string, n int) string {
	i := strings.IndexByte(text, '\n')
	if i < 0 {
		return text
	}
	return text[:i+1] + indent.String(text[i+1:], uint(n))
}
