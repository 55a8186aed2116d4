// Copyright © 2024 The ELPS authors

package binder

import (
	"github.com/luthersystems/sembind/bound"
	"github.com/luthersystems/sembind/diagnostic"
	"github.com/luthersystems/sembind/lookup"
	"github.com/luthersystems/sembind/symbols"
	"github.com/luthersystems/sembind/syntax"
)

// bindTuple binds a tuple literal. It has a natural tuple type when every
// element has a type; otherwise it stays pending until converted.
func (c *binding) bindTuple(n *syntax.Tuple) bound.Node {
	elems := make([]bound.Node, len(n.Elements))
	var names []string
	for i, a := range n.Elements {
		elems[i] = c.bindNode(a.Expr)
		if a.Name != "" {
			if names == nil {
				names = make([]string, len(n.Elements))
			}
			names[i] = a.Name
		}
	}
	if len(n.Elements) < 2 {
		c.report(diagnostic.ErrTupleTooShort, n.Location())
		return c.badExpr(n, lookup.Empty, nil, elems, nil)
	}
	types := make([]symbols.Type, len(elems))
	exprs := make([]bound.Expr, len(elems))
	for i, e := range elems {
		x, ok := e.(bound.Expr)
		if !ok {
			return &bound.UnconvertedTuple{
				PendingBase: bound.PendingBase{Base: bound.Base{Src: n, Errors: bound.AnyErrors(elems...)}},
				Elements:    elems,
				Names:       names,
			}
		}
		exprs[i], types[i] = x, x.Type()
	}
	return &bound.Tuple{
		Typed:    bound.Header(n, &symbols.TupleType{Elems: types, Names: names}, bound.AnyErrors(exprs...)),
		Elements: exprs,
		Names:    names,
	}
}

// bindCollection binds a collection literal, which has no natural type.
func (c *binding) bindCollection(n *syntax.Collection) bound.Node {
	elems := make([]bound.Node, len(n.Elements))
	var spread []bool
	for i, e := range n.Elements {
		elems[i] = c.bindNode(e.Expr)
		if e.Spread {
			if spread == nil {
				spread = make([]bool, len(n.Elements))
			}
			spread[i] = true
		}
	}
	return &bound.UnconvertedCollection{
		PendingBase: bound.PendingBase{Base: bound.Base{Src: n, Errors: bound.AnyErrors(elems...)}},
		Elements:    elems,
		Spread:      spread,
	}
}
