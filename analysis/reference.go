// Copyright © 2024 The ELPS authors

package analysis

import (
	"github.com/luthersystems/sembind/astutil"
	"github.com/luthersystems/sembind/bound"
	"github.com/luthersystems/sembind/conversions"
	"github.com/luthersystems/sembind/lookup"
	"github.com/luthersystems/sembind/symbols"
	"github.com/luthersystems/sembind/syntax"
)

// Reference records a resolved symbol usage.
type Reference struct {
	Symbol     *symbols.Symbol
	Source     *syntax.Location
	Node       bound.Expr
	Expression *Binding
}

// UnresolvedRef records a name that could not be bound. Candidates are the
// symbols lookup or overload resolution considered before giving up.
type UnresolvedRef struct {
	Name       string
	Source     *syntax.Location
	Node       *bound.Bad
	Kind       lookup.ResultKind
	Candidates []*symbols.Symbol
	Expression *Binding
}

func (r *Result) index(b *Binding) {
	if b.Tree == nil {
		return
	}
	tab := r.Workspace.Table
	bound.Walk(b.Tree, func(n bound.Node) bool {
		e, ok := n.(bound.Expr)
		if !ok || e.Syntax() == nil {
			return true
		}
		if bad, ok := e.(*bound.Bad); ok {
			r.Unresolved = append(r.Unresolved, &UnresolvedRef{
				Name:       astutil.Name(calleeOf(bad.Syntax())),
				Source:     astutil.NameLoc(bad.Syntax()),
				Node:       bad,
				Kind:       bad.ResultKind,
				Candidates: bad.Candidates,
				Expression: b,
			})
			return true
		}
		sym := referenced(tab, e)
		if sym == nil {
			return true
		}
		r.References = append(r.References, &Reference{
			Symbol:     sym,
			Source:     astutil.NameLoc(e.Syntax()),
			Node:       e,
			Expression: b,
		})
		return true
	})
}

// calleeOf returns the name-shaped part of a call-shaped node.
func calleeOf(e syntax.Expr) syntax.Expr {
	if inv, ok := e.(*syntax.Invocation); ok {
		return inv.Callee
	}
	return e
}

// referenced returns the declared symbol a bound node uses, or nil for
// nodes that use none or only synthesized ones.
func referenced(tab *symbols.Table, e bound.Expr) *symbols.Symbol {
	var sym *symbols.Symbol
	switch n := e.(type) {
	case *bound.Local:
		sym = n.Symbol
	case *bound.Parameter:
		sym = n.Symbol
	case *bound.FieldAccess:
		sym = n.Field
	case *bound.PropertyAccess:
		sym = n.Property
	case *bound.Call:
		sym = n.Method
	case *bound.ObjectCreation:
		if n.Constructor != nil {
			sym = n.Constructor
		} else if nt, ok := n.Typ.(*symbols.NamedType); ok {
			sym = tab.TypeSymbol(nt)
		}
	case *bound.IndexerAccess:
		sym = n.Indexer
	case *bound.DelegateCreation:
		sym = n.Method
	case *bound.TypeExpr:
		if nt, ok := n.Typ.(*symbols.NamedType); ok {
			sym = tab.TypeSymbol(nt)
		}
	case *bound.Binary:
		sym = userDefined(n.Operator)
	case *bound.Unary:
		sym = userDefined(n.Operator)
	case *bound.Conversion:
		if n.Conversion.Kind == conversions.ImplicitUserDefined || n.Conversion.Kind == conversions.ExplicitUserDefined {
			sym = n.Conversion.Method
		}
	}
	if sym == nil || sym.MethodKind == symbols.MethodBuiltinOperator {
		return nil
	}
	return sym
}

func userDefined(op *symbols.Symbol) *symbols.Symbol {
	if op == nil || op.MethodKind != symbols.MethodOperator {
		return nil
	}
	return op
}

// ReferencesTo returns the references to sym in source order. Uses of
// constructed or substituted forms of sym count as uses of sym.
func (r *Result) ReferencesTo(sym *symbols.Symbol) []*Reference {
	if sym == nil {
		return nil
	}
	def := sym.OriginalDefinition()
	var refs []*Reference
	for _, ref := range r.References {
		if ref.Symbol.OriginalDefinition() == def {
			refs = append(refs, ref)
		}
	}
	return refs
}
