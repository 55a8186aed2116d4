// Copyright © 2024 The ELPS authors

package analysis

import (
	"github.com/luthersystems/sembind/astutil"
	"github.com/luthersystems/sembind/bound"
	"github.com/luthersystems/sembind/symbols"
	"github.com/luthersystems/sembind/syntax"
	"github.com/luthersystems/sembind/workspace"
)

// Hit is the answer to a position query.
type Hit struct {
	Binding *Binding
	// At most one of Reference and Unresolved is set.
	Reference  *Reference
	Unresolved *UnresolvedRef
	// Node is the innermost bound node whose source contains the position.
	Node bound.Expr
}

// Symbol returns the symbol used at the position, or nil.
func (h *Hit) Symbol() *symbols.Symbol {
	if h == nil || h.Reference == nil {
		return nil
	}
	return h.Reference.Symbol
}

// Source returns the location of the name at the position, or of the
// innermost node when no name was found.
func (h *Hit) Source() *syntax.Location {
	switch {
	case h.Reference != nil:
		return h.Reference.Source
	case h.Unresolved != nil:
		return h.Unresolved.Source
	case h.Node != nil:
		return h.Node.Syntax().Location()
	}
	return nil
}

// SymbolAt returns what the expression refers to at the byte offset into
// its text, or nil when nothing bound covers the offset. Names inside
// error nodes are found too: their Hit carries the unresolved reference
// with the candidates that were considered.
func (r *Result) SymbolAt(expr *workspace.Expression, offset int) *Hit {
	return r.hit(r.bindingOf(expr), func(loc *syntax.Location) bool {
		return loc.Contains(offset)
	})
}

// SymbolAtLine is SymbolAt for a 1-based line and column of the
// declaration file.
func (r *Result) SymbolAtLine(line, col int) *Hit {
	expr := r.Workspace.ExpressionAt(line, col)
	if expr == nil {
		return nil
	}
	return r.hit(r.bindingOf(expr), func(loc *syntax.Location) bool {
		return loc.ContainsLine(line, col)
	})
}

func (r *Result) bindingOf(expr *workspace.Expression) *Binding {
	for _, b := range r.Bindings {
		if b.Expression == expr {
			return b
		}
	}
	return nil
}

func (r *Result) hit(b *Binding, contains func(*syntax.Location) bool) *Hit {
	if b == nil || b.Tree == nil {
		return nil
	}
	h := &Hit{Binding: b}
	width := -1
	narrower := func(loc *syntax.Location) bool {
		if !contains(loc) {
			return false
		}
		return width < 0 || loc.Width() <= width
	}
	for _, ref := range r.References {
		if ref.Expression == b && narrower(ref.Source) {
			h.Reference, h.Unresolved = ref, nil
			width = ref.Source.Width()
		}
	}
	for _, ref := range r.Unresolved {
		if ref.Expression == b && narrower(ref.Source) && (h.Reference == nil || ref.Source.Width() < width) {
			h.Reference, h.Unresolved = nil, ref
			width = ref.Source.Width()
		}
	}
	h.Node = innermost(b.Tree, contains)
	if h.Node == nil && h.Reference == nil && h.Unresolved == nil {
		return nil
	}
	return h
}

// innermost returns the deepest bound node whose source contains the
// position. Nodes synthesized for their parent's syntax are skipped.
func innermost(tree bound.Expr, contains func(*syntax.Location) bool) bound.Expr {
	var found bound.Expr
	bound.Walk(tree, func(n bound.Node) bool {
		e, ok := n.(bound.Expr)
		if !ok || e.Syntax() == nil || !contains(e.Syntax().Location()) {
			return false
		}
		if !synthesized(e) {
			found = e
		}
		return true
	})
	return found
}

func synthesized(e bound.Expr) bool {
	switch e := e.(type) {
	case *bound.DefaultArgument, *bound.ArrayCreation:
		return true
	case *bound.This:
		return e.Implicit
	}
	return false
}

// CallSite describes the call enclosing a position, for signature help.
type CallSite struct {
	Binding *Binding
	Syntax  syntax.Expr
	// Node is the bound call, object creation or indexer access, or the
	// error node that replaced it.
	Node       bound.Expr
	Candidates []*symbols.Symbol
	// Active is the index into Candidates of the member the call bound
	// to, or -1.
	Active int
	// Argument is the index of the source argument at the position and
	// Parameter the ordinal of the parameter of the active candidate it
	// binds to, or -1 when unknown.
	Argument  int
	Parameter int
}

// CallAt returns the call whose argument list contains the 1-based line
// and column, or nil.
func (r *Result) CallAt(line, col int) *CallSite {
	expr := r.Workspace.ExpressionAt(line, col)
	if expr == nil || expr.Syntax == nil {
		return nil
	}
	b := r.bindingOf(expr)
	if b == nil || b.Tree == nil {
		return nil
	}
	call, arg := astutil.EnclosingCall(astutil.PathTo(expr.Syntax, line, col), line, col)
	if call == nil {
		return nil
	}
	site := &CallSite{Binding: b, Syntax: call, Active: -1, Argument: arg, Parameter: -1}
	n := bound.Find(b.Tree, func(n bound.Node) bool {
		if n.Syntax() != call {
			return false
		}
		switch n.(type) {
		case *bound.Call, *bound.ObjectCreation, *bound.IndexerAccess, *bound.Bad:
			return true
		}
		return false
	})
	if n == nil {
		return site
	}
	site.Node = n.(bound.Expr)
	tab := r.Workspace.Table
	var a2p []int
	switch n := n.(type) {
	case *bound.Call:
		site.Candidates, site.Active = overloads(tab, n.Method)
		a2p = n.ArgsToParams
		if n.InvokedAsExtension && len(a2p) > 0 {
			a2p = a2p[1:]
		}
	case *bound.ObjectCreation:
		if n.Constructor != nil {
			site.Candidates, site.Active = overloads(tab, n.Constructor)
			a2p = n.ArgsToParams
		}
	case *bound.IndexerAccess:
		site.Candidates, site.Active = overloads(tab, n.Indexer)
		a2p = n.ArgsToParams
	case *bound.Bad:
		site.Candidates = n.Candidates
		if len(n.Candidates) == 1 {
			site.Active = 0
		}
	}
	switch {
	case arg < len(a2p):
		site.Parameter = a2p[arg]
	case site.Active >= 0:
		site.Parameter = parameterFor(site.Candidates[site.Active], astutil.Args(call), arg)
	}
	return site
}

// overloads returns the members sharing m's name in its containing type
// and the index of m among them.
func overloads(tab *symbols.Table, m *symbols.Symbol) ([]*symbols.Symbol, int) {
	nt := tab.ContainingType(m)
	if nt == nil {
		return []*symbols.Symbol{m}, 0
	}
	all := tab.MembersOf(nt, m.Name)
	for i, o := range all {
		if o.OriginalDefinition() == m.OriginalDefinition() {
			return all, i
		}
	}
	return append(all, m), len(all)
}

// parameterFor guesses the parameter an unbound argument would go to:
// named arguments by name, positional ones by position, and trailing
// arguments to a params array.
func parameterFor(m *symbols.Symbol, args []*syntax.Argument, arg int) int {
	params := m.Params
	if m.Extension && len(params) > 0 {
		params = params[1:]
	}
	if arg < len(args) && args[arg].Name != "" {
		for _, p := range params {
			if p.Name == args[arg].Name {
				return p.Ordinal
			}
		}
		return -1
	}
	switch {
	case arg < len(params):
		return params[arg].Ordinal
	case len(params) > 0 && params[len(params)-1].IsParams:
		return params[len(params)-1].Ordinal
	}
	return -1
}
