// Copyright © 2024 The ELPS authors

package analysis

import (
	"context"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/luthersystems/sembind/binder"
	"github.com/luthersystems/sembind/diagnostic"
	"github.com/luthersystems/sembind/parser"
	"github.com/luthersystems/sembind/symbols"
	"github.com/luthersystems/sembind/workspace"
)

// completionFile names the receiver text parsed while completing.
const completionFile = "completion"

// Candidate is a name that can complete a partially typed expression.
type Candidate struct {
	Name string
	// Symbol is the first symbol found under Name, or nil for keywords.
	Symbol *symbols.Symbol
}

// Completion is the result of a completion request.
type Completion struct {
	// Prefix is the part of the name already typed. Every candidate
	// starts with it.
	Prefix     string
	Candidates []Candidate
}

// Completer proposes the names that can continue an expression typed in a
// binder environment.
type Completer struct {
	tab *symbols.Table
	b   *binder.Binder
}

// NewCompleter returns a completer over tab. The binder types the
// receivers of member completions.
func NewCompleter(tab *symbols.Table, b *binder.Binder) *Completer {
	return &Completer{tab: tab, b: b}
}

// Complete completes the dotted name that ends the text before the
// cursor. An unqualified name completes from the scope chain of env and
// the keywords. A qualified name completes from the members of its
// receiver, which may name a namespace, a type or a value. The result is
// nil when there is no name to complete.
func (c *Completer) Complete(ctx context.Context, env binder.Env, before string) *Completion {
	word := trailingName(before)
	if word == "" {
		return nil
	}
	var comp *Completion
	if i := strings.LastIndexByte(word, '.'); i >= 0 {
		comp = c.memberNames(ctx, env, word[:i], word[i+1:])
	} else {
		comp = c.scopeNames(env, word)
	}
	if comp == nil || len(comp.Candidates) == 0 {
		return nil
	}
	return comp
}

// CompleteAt completes the name ending at a 1-based line and column of
// the declaration file. The cursor may sit just past the last character
// of an expression.
func (r *Result) CompleteAt(ctx context.Context, c *Completer, line, col int) *Completion {
	expr := expressionAtCursor(r.Workspace, line, col)
	if expr == nil {
		return nil
	}
	lines := strings.Split(expr.Text, "\n")
	k := line - expr.Source.Line
	if k < 0 || k >= len(lines) {
		return nil
	}
	text := lines[k]
	off := min(max(col-expr.Source.Col, 0), len(text))
	return c.Complete(ctx, expr.Env, text[:off])
}

func expressionAtCursor(ws *workspace.Workspace, line, col int) *workspace.Expression {
	for _, e := range ws.Expressions {
		loc := e.Source
		if loc == nil || line < loc.Line || line > loc.EndLine {
			continue
		}
		if line == loc.Line && col < loc.Col {
			continue
		}
		if line == loc.EndLine && col > loc.EndCol {
			continue
		}
		return e
	}
	return nil
}

// trailingName returns the dotted name at the end of s.
func trailingName(s string) string {
	start := len(s)
	for start > 0 {
		ch, size := utf8.DecodeLastRuneInString(s[:start])
		if !isNameRune(ch) && ch != '.' {
			break
		}
		start -= size
	}
	return s[start:]
}

func isNameRune(ch rune) bool {
	return ch == '_' || unicode.IsLetter(ch) || unicode.IsDigit(ch)
}

func isName(s string) bool {
	if s == "" || unicode.IsDigit(rune(s[0])) {
		return false
	}
	for _, ch := range s {
		if !isNameRune(ch) {
			return false
		}
	}
	return true
}

type nameSet struct {
	prefix string
	seen   map[string]bool
	comp   *Completion
}

func newNameSet(prefix string) *nameSet {
	return &nameSet{
		prefix: prefix,
		seen:   make(map[string]bool),
		comp:   &Completion{Prefix: prefix},
	}
}

func (ns *nameSet) add(name string, sym *symbols.Symbol) {
	if !isName(name) || !strings.HasPrefix(name, ns.prefix) || ns.seen[name] {
		return
	}
	ns.seen[name] = true
	ns.comp.Candidates = append(ns.comp.Candidates, Candidate{Name: name, Symbol: sym})
}

func (ns *nameSet) sorted() *Completion {
	sort.Slice(ns.comp.Candidates, func(i, j int) bool {
		return ns.comp.Candidates[i].Name < ns.comp.Candidates[j].Name
	})
	return ns.comp
}

var keywords = []string{"true", "false", "null", "default", "new", "this"}

// scopeNames returns the unqualified names starting with prefix: locals and
// parameters of the scope chain, members of the enclosing types and the
// types and namespaces of the enclosing and imported namespaces.
func (c *Completer) scopeNames(env binder.Env, prefix string) *Completion {
	names := newNameSet(prefix)
	for sc := env.Scope; sc != nil; sc = sc.Parent {
		for name, syms := range sc.Symbols {
			if len(syms) > 0 {
				names.add(name, syms[0])
			}
		}
		if sc.Type != nil {
			for _, m := range c.tab.AllMembersOf(sc.Type) {
				names.add(m.Name, m)
			}
		}
		for ns := sc.Namespace; ns != nil; ns = c.tab.Container(ns) {
			for _, m := range ns.NamespaceMembers() {
				names.add(m.Name, m)
			}
		}
		for _, ns := range sc.Usings {
			for _, m := range ns.NamespaceMembers() {
				if m.Kind == symbols.SymType {
					names.add(m.Name, m)
				}
			}
		}
	}
	for _, kw := range keywords {
		names.add(kw, nil)
	}
	return names.sorted()
}

// memberNames returns the names after "receiver." starting with prefix.
func (c *Completer) memberNames(ctx context.Context, env binder.Env, receiver, prefix string) *Completion {
	names := newNameSet(prefix)
	if ns := c.tab.LookupNamespace(receiver); ns != nil {
		for _, m := range ns.NamespaceMembers() {
			names.add(m.Name, m)
		}
		return names.sorted()
	}

	if ref, err := parser.ParseType(completionFile, receiver); err == nil {
		if nt, ok := c.b.BindType(ctx, env, ref, diagnostic.Discard).(*symbols.NamedType); ok {
			for _, m := range c.tab.AllMembersOf(nt) {
				if m.Static {
					names.add(m.Name, m)
				}
			}
			return names.sorted()
		}
	}
	e, err := parser.Parse(completionFile, []byte(receiver))
	if err != nil {
		return nil
	}
	tree := c.b.Bind(ctx, env, e, diagnostic.Discard)
	if nt, ok := tree.Type().(*symbols.NamedType); ok {
		for _, m := range c.tab.AllMembersOf(nt) {
			if !m.Static {
				names.add(m.Name, m)
			}
		}
	}
	return names.sorted()
}
