// Copyright © 2024 The ELPS authors

package binder

import (
	"github.com/luthersystems/sembind/bound"
	"github.com/luthersystems/sembind/diagnostic"
	"github.com/luthersystems/sembind/lookup"
	"github.com/luthersystems/sembind/symbols"
	"github.com/luthersystems/sembind/syntax"
)

// natural gives a pending node its natural type. Only tuple literals have
// one; the other pending shapes are reported and become error nodes.
func (c *binding) natural(n bound.Node) bound.Expr {
	if e, ok := n.(bound.Expr); ok {
		return e
	}
	v := &naturalizer{c: c, report: true}
	n.(bound.Pending).AcceptPending(v)
	return v.out
}

// recoverNode turns n into a resolved node without reporting anything.
// It is used for the children of nodes that already failed.
func (c *binding) recoverNode(n bound.Node) bound.Expr {
	if e, ok := n.(bound.Expr); ok {
		return e
	}
	v := &naturalizer{c: c}
	n.(bound.Pending).AcceptPending(v)
	return v.out
}

// badExpr builds the error node for src. A nil typ is replaced by the
// return type of the single candidate, or an error type.
func (c *binding) badExpr(src syntax.Expr, kind lookup.ResultKind, candidates []*symbols.Symbol, children []bound.Node, typ symbols.Type) *bound.Bad {
	exprs := make([]bound.Expr, 0, len(children))
	for _, ch := range children {
		if ch != nil {
			exprs = append(exprs, c.recoverNode(ch))
		}
	}
	if typ == nil {
		typ = recoveryType(candidates)
	}
	return &bound.Bad{
		Typed:      bound.Header(src, typ, true),
		ResultKind: kind,
		Candidates: candidates,
		Children:   exprs,
	}
}

func recoveryType(candidates []*symbols.Symbol) symbols.Type {
	if len(candidates) == 1 {
		if t := symbolType(candidates[0]); t != nil {
			return t
		}
	}
	return &symbols.ErrorType{}
}

// exprNodes converts resolved or pending nodes to bound.Node values for
// badExpr.
func exprNodes[N bound.Node](ns ...N) []bound.Node {
	out := make([]bound.Node, 0, len(ns))
	for _, n := range ns {
		if bound.Node(n) != nil {
			out = append(out, n)
		}
	}
	return out
}

type naturalizer struct {
	c      *binding
	report bool
	out    bound.Expr
}

func (v *naturalizer) noNaturalType(n bound.Node, what string) {
	if v.report {
		v.c.report(diagnostic.ErrNoNaturalType, n.Syntax().Location(), what)
	}
}

func (v *naturalizer) VisitNullLiteral(n *bound.NullLiteral) {
	v.noNaturalType(n, "'null'")
	v.out = v.c.badExpr(n.Syntax(), lookup.Empty, nil, nil, &symbols.ErrorType{Name: "null"})
}

func (v *naturalizer) VisitDefaultLiteral(n *bound.DefaultLiteral) {
	v.noNaturalType(n, "'default'")
	v.out = v.c.badExpr(n.Syntax(), lookup.Empty, nil, nil, &symbols.ErrorType{Name: "default"})
}

// VisitUnboundLambda binds the body with the declared parameter types, or
// error types, so that the body can still be queried.
func (v *naturalizer) VisitUnboundLambda(n *bound.UnboundLambda) {
	v.noNaturalType(n, "lambda expression")
	types := n.ExplicitTypes
	if types == nil {
		types = make([]symbols.Type, len(n.Names))
		for i, name := range n.Names {
			types[i] = &symbols.ErrorType{Name: name}
		}
	}
	sink := v.c.sink
	if !v.report {
		sink = diagnostic.Discard
	}
	_, body := n.BindBody(types, nil, sink)
	v.out = v.c.badExpr(n.Syntax(), lookup.Empty, nil, exprNodes(body), &symbols.ErrorType{})
}

func (v *naturalizer) VisitMethodGroup(n *bound.MethodGroup) {
	if v.report {
		switch {
		case len(n.Methods) == 0 && n.Lookup.Code != 0:
			v.c.reportLookup(n.Lookup, n.Syntax().Location())
		default:
			v.noNaturalType(n, "method group '"+n.Name+"'")
		}
	}
	v.out = v.c.badExpr(n.Syntax(), n.ResultKind, n.Methods, exprNodes(n.Receiver), nil)
}

func (v *naturalizer) VisitUnconvertedTuple(n *bound.UnconvertedTuple) {
	elems := make([]bound.Expr, len(n.Elements))
	types := make([]symbols.Type, len(n.Elements))
	for i, e := range n.Elements {
		if v.report {
			elems[i] = v.c.natural(e)
		} else {
			elems[i] = v.c.recoverNode(e)
		}
		types[i] = elems[i].Type()
	}
	v.out = &bound.Tuple{
		Typed:    bound.Header(n.Syntax(), &symbols.TupleType{Elems: types, Names: n.Names}, bound.AnyErrors(elems...)),
		Elements: elems,
		Names:    n.Names,
	}
}

func (v *naturalizer) VisitUnconvertedCollection(n *bound.UnconvertedCollection) {
	v.noNaturalType(n, "collection expression")
	v.out = v.c.badExpr(n.Syntax(), lookup.Empty, nil, n.Elements, &symbols.ErrorType{})
}
