// Copyright © 2024 The ELPS authors

package binder

import (
	"github.com/luthersystems/sembind/bound"
	"github.com/luthersystems/sembind/diagnostic"
	"github.com/luthersystems/sembind/lookup"
	"github.com/luthersystems/sembind/overload"
	"github.com/luthersystems/sembind/symbols"
	"github.com/luthersystems/sembind/syntax"
)

// bindElementAccess binds recv[args] on arrays, on types with indexers,
// and on countable types through the Index and Range patterns.
func (c *binding) bindElementAccess(n *syntax.ElementAccess) bound.Expr {
	recv := c.bindValue(n.Receiver)
	args := c.bindArguments(n.Args)
	t := recv.Type()
	if symbols.IsErrorType(t) {
		return c.badExpr(n, lookup.Empty, nil, append(exprNodes(recv), args.Args...), nil)
	}
	if at, ok := t.(*symbols.ArrayType); ok {
		return c.arrayAccess(n, recv, at, args)
	}
	return c.indexerAccess(n, recv, args)
}

func (c *binding) arrayAccess(n *syntax.ElementAccess, recv bound.Expr, at *symbols.ArrayType, args *overload.Arguments) bound.Expr {
	if args.Len() != at.Rank {
		c.report(diagnostic.ErrBadIndexCount, n.Location(), at.Rank)
		return c.badExpr(n, lookup.Empty, nil, append(exprNodes(recv), args.Args...), at.Elem)
	}
	typ := at.Elem
	indices := make([]bound.Expr, args.Len())
	for i, a := range args.Args {
		if at.Rank == 1 {
			switch c.tab.WellKnownOf(bound.TypeOf(a)) {
			case symbols.WellKnownIndex:
				indices[i] = a.(bound.Expr)
				continue
			case symbols.WellKnownRange:
				indices[i] = a.(bound.Expr)
				typ = at
				continue
			}
		}
		indices[i] = c.convert(a, c.indexType(a), a.Syntax().Location())
	}
	return &bound.ArrayAccess{
		Typed:   bound.Header(n, typ, recv.HasErrors() || bound.AnyErrors(indices...)),
		Array:   recv,
		Indices: indices,
	}
}

// indexType is the integral type an array index converts to: int, or
// long for operands that only convert to long.
func (c *binding) indexType(a bound.Node) symbols.Type {
	integer := c.tab.Special(symbols.SpecialInt32)
	if c.ClassifyArgument(a, integer).IsImplicit() {
		return integer
	}
	long := c.tab.Special(symbols.SpecialInt64)
	if c.ClassifyArgument(a, long).IsImplicit() {
		return long
	}
	return integer
}

func (c *binding) indexerAccess(n *syntax.ElementAccess, recv bound.Expr, args *overload.Arguments) bound.Expr {
	t := recv.Type()
	res := c.lookup.LookupMembers(t, symbols.IndexerName, 0, 0, c.within())
	var indexers []*symbols.Symbol
	if res.IsViable() {
		indexers = res.Symbols
	}
	pattern := c.patternArgument(args)
	if len(indexers) > 0 {
		r := c.overload.Resolve(indexers, args, overload.Context{Within: c.within(), Receiver: overload.ReceiverInstance})
		c.logResolution(symbols.IndexerName, "indexer", &r)
		if r.HasApplicable() || pattern == symbols.WellKnownNone {
			return c.finishIndexer(n, recv, args, &r)
		}
		if e := c.implicitIndexer(n, recv, args.Args[0].(bound.Expr), pattern, indexers); e != nil {
			return e
		}
		return c.finishIndexer(n, recv, args, &r)
	}
	if pattern != symbols.WellKnownNone {
		if e := c.implicitIndexer(n, recv, args.Args[0].(bound.Expr), pattern, nil); e != nil {
			return e
		}
	}
	c.report(diagnostic.ErrNotIndexable, n.Location(), t.String())
	return c.badExpr(n, lookup.Empty, nil, append(exprNodes(recv), args.Args...), &symbols.ErrorType{})
}

func (c *binding) finishIndexer(n *syntax.ElementAccess, recv bound.Expr, args *overload.Arguments, res *overload.Result) bound.Expr {
	if !res.Succeeded() {
		site := overload.Site{Kind: overload.SiteIndexer, Name: recv.Type().String(), Loc: n.Location()}
		c.overload.Report(c.sink, site, args, res)
		return c.badExpr(n, res.LookupKind(), res.Candidates(), append(exprNodes(recv), args.Args...), nil)
	}
	best := res.Best()
	c.useSite(best.Member, n.Location())
	exprs := c.buildArguments(n, best, args)
	return &bound.IndexerAccess{
		Typed:        bound.Header(n, best.Member.Type, recv.HasErrors() || bound.AnyErrors(exprs...)),
		Receiver:     recv,
		Indexer:      best.Member,
		Args:         exprs,
		ArgsToParams: best.ArgsToParams,
		Expanded:     best.Expanded,
	}
}

// patternArgument returns WellKnownIndex or WellKnownRange when args is a
// single plain argument of one of those types.
func (c *binding) patternArgument(args *overload.Arguments) symbols.WellKnownType {
	if args.Len() != 1 || args.HasNames() || args.RefKind(0) != syntax.RefNone {
		return symbols.WellKnownNone
	}
	t := bound.TypeOf(args.Args[0])
	if t == nil {
		return symbols.WellKnownNone
	}
	switch wk := c.tab.WellKnownOf(t); wk {
	case symbols.WellKnownIndex, symbols.WellKnownRange:
		return wk
	}
	return symbols.WellKnownNone
}

// implicitIndexer binds recv[i] for an Index or Range argument on a type
// with an int Length or Count property, using the int indexer for Index
// and Slice(int, int) (Substring for strings) for Range. It returns nil
// when the type does not fit the pattern.
func (c *binding) implicitIndexer(n *syntax.ElementAccess, recv bound.Expr, arg bound.Expr, wk symbols.WellKnownType, indexers []*symbols.Symbol) bound.Expr {
	t := recv.Type()
	length := c.countProperty(t)
	if length == nil {
		return nil
	}
	var member *symbols.Symbol
	if wk == symbols.WellKnownIndex {
		for _, ix := range indexers {
			if len(ix.Params) == 1 && c.isInt(ix.Params[0].Type) {
				member = ix
				break
			}
		}
	} else {
		name := "Slice"
		if symbols.IsString(t) {
			name = "Substring"
		}
		res := c.lookup.LookupMembers(t, name, 0, lookup.OptMethodsOnly, c.within())
		for _, m := range res.Symbols {
			if res.IsViable() && !m.Static && len(m.Params) == 2 && c.isInt(m.Params[0].Type) && c.isInt(m.Params[1].Type) {
				member = m
				break
			}
		}
	}
	if member == nil {
		return nil
	}
	c.useSite(member, n.Location())
	return &bound.ImplicitIndexerAccess{
		Typed:         bound.Header(n, member.Type, recv.HasErrors() || arg.HasErrors()),
		Receiver:      recv,
		Argument:      arg,
		LengthOrCount: length,
		Indexer:       member,
	}
}

// countProperty finds the accessible instance int Length or Count
// property of t.
func (c *binding) countProperty(t symbols.Type) *symbols.Symbol {
	for _, name := range []string{"Length", "Count"} {
		res := c.lookup.LookupMembers(t, name, 0, 0, c.within())
		if p := res.Single(); res.IsViable() && p != nil && p.Kind == symbols.SymProperty && !p.Static && c.isInt(p.Type) {
			return p
		}
	}
	return nil
}

func (c *binding) isInt(t symbols.Type) bool {
	return symbols.SpecialOf(t) == symbols.SpecialInt32
}

// wellKnown returns the well-known type wk, reporting it at loc when the
// table does not define it.
func (c *binding) wellKnown(wk symbols.WellKnownType, loc *syntax.Location) *symbols.NamedType {
	nt := c.tab.WellKnown(wk)
	if nt == nil {
		c.report(diagnostic.ErrMissingWellKnownType, loc, wk.String())
	}
	return nt
}

// constructorOf returns the constructor of nt whose parameter types are
// exactly params, ignoring trailing optional parameters.
func (c *binding) constructorOf(nt *symbols.NamedType, params ...symbols.Type) *symbols.Symbol {
	for _, m := range c.tab.MembersOf(nt, symbols.ConstructorName) {
		if len(m.Params) < len(params) {
			continue
		}
		ok := true
		for i, p := range m.Params {
			if i < len(params) {
				ok = ok && symbols.Identical(p.Type, params[i])
			} else {
				ok = ok && p.IsOptional()
			}
		}
		if ok {
			return m
		}
	}
	return nil
}

// bindIndexFromEnd binds ^e as new Index(e, true).
func (c *binding) bindIndexFromEnd(n *syntax.Unary) bound.Expr {
	index := c.wellKnown(symbols.WellKnownIndex, n.Location())
	if index == nil {
		return c.badExpr(n, lookup.Empty, nil, exprNodes(c.bindNode(n.Operand)), nil)
	}
	integer := c.tab.Special(symbols.SpecialInt32)
	operand := c.bindTo(n.Operand, integer)
	return &bound.Unary{
		Typed:    bound.Header(n, index, operand.HasErrors()),
		Op:       syntax.OpHat,
		Operand:  operand,
		Operator: c.constructorOf(index, integer),
	}
}

// bindRange binds start..end as new Range(start, end). A missing start is
// index 0 and a missing end is ^0.
func (c *binding) bindRange(n *syntax.Range) bound.Expr {
	rng := c.wellKnown(symbols.WellKnownRange, n.Location())
	index := c.tab.WellKnown(symbols.WellKnownIndex)
	if rng == nil || index == nil {
		if rng != nil {
			c.report(diagnostic.ErrMissingWellKnownType, n.Location(), symbols.WellKnownIndex.String())
		}
		var children []bound.Node
		for _, e := range []syntax.Expr{n.Start, n.End} {
			if e != nil {
				children = append(children, c.bindNode(e))
			}
		}
		return c.badExpr(n, lookup.Empty, nil, children, nil)
	}
	start := c.rangeBound(n, n.Start, index, false)
	end := c.rangeBound(n, n.End, index, true)
	return &bound.ObjectCreation{
		Typed:        bound.Header(n, rng, start.HasErrors() || end.HasErrors()),
		Constructor:  c.constructorOf(rng, index, index),
		Args:         []bound.Expr{start, end},
		ArgsToParams: []int{0, 1},
	}
}

// rangeBound converts one bound of a range to Index, synthesizing 0 or ^0
// for an omitted bound.
func (c *binding) rangeBound(n *syntax.Range, e syntax.Expr, index *symbols.NamedType, fromEnd bool) bound.Expr {
	if e != nil {
		return c.bindTo(e, index)
	}
	integer := c.tab.Special(symbols.SpecialInt32)
	zero := &bound.Literal{Typed: bound.Header(n, integer, false)}
	zero.Const = constantZero
	if fromEnd {
		return &bound.Unary{
			Typed:    bound.Header(n, index, false),
			Op:       syntax.OpHat,
			Operand:  zero,
			Operator: c.constructorOf(index, integer),
		}
	}
	return c.convert(zero, index, n.Location())
}
