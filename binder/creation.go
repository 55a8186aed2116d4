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

// bindObjectCreation binds new T(args). The result is typed T even when
// constructor resolution fails.
func (c *binding) bindObjectCreation(n *syntax.ObjectCreation) bound.Expr {
	t := c.bindType(n.Type)
	args := c.bindArguments(n.Args)
	if symbols.IsErrorType(t) {
		return c.badExpr(n, lookup.Empty, nil, args.Args, t)
	}
	nt, ok := t.(*symbols.NamedType)
	switch {
	case !ok:
		c.report(diagnostic.ErrNoConstructor, n.Location(), t.String(), args.Len())
		return c.badExpr(n, lookup.NotCreatable, nil, args.Args, t)
	case nt.Static:
		c.report(diagnostic.ErrStaticCreation, n.Location(), t.String())
		return c.badExpr(n, lookup.NotCreatable, nil, args.Args, t)
	case nt.Abstract || nt.TypeKind == symbols.TypeInterface:
		c.report(diagnostic.ErrAbstractCreation, n.Location(), t.String())
		return c.badExpr(n, lookup.NotCreatable, nil, args.Args, t)
	case nt.TypeKind == symbols.TypeDelegate:
		return c.delegateObjectCreation(n, nt, args)
	}

	var ctors []*symbols.Symbol
	for _, m := range c.tab.MembersOf(nt, symbols.ConstructorName) {
		if m.MethodKind == symbols.MethodConstructor {
			ctors = append(ctors, m)
		}
	}
	if len(ctors) == 0 {
		// Value types without declared constructors are zero-initialized.
		if symbols.IsValueType(nt) && args.Len() == 0 {
			return &bound.ObjectCreation{Typed: bound.Header(n, t, false)}
		}
		if !args.HasErrors {
			c.report(diagnostic.ErrNoConstructor, n.Location(), t.String(), args.Len())
		}
		return c.badExpr(n, lookup.OverloadResolutionFailure, nil, args.Args, t)
	}

	res := c.overload.Resolve(ctors, args, overload.Context{Within: c.within()})
	c.logResolution(nt.String(), "constructor", &res)
	if !res.Succeeded() {
		site := overload.Site{Kind: overload.SiteConstructor, Name: nt.String(), Loc: n.Location()}
		c.overload.Report(c.sink, site, args, &res)
		return c.badExpr(n, res.LookupKind(), res.Candidates(), args.Args, t)
	}
	best := res.Best()
	c.useSite(best.Member, n.Location())
	exprs := c.buildArguments(n, best, args)
	return &bound.ObjectCreation{
		Typed:        bound.Header(n, t, bound.AnyErrors(exprs...)),
		Constructor:  best.Member,
		Args:         exprs,
		ArgsToParams: best.ArgsToParams,
		Expanded:     best.Expanded,
	}
}

// delegateObjectCreation binds new D(x), which converts its single
// argument to the delegate type D.
func (c *binding) delegateObjectCreation(n *syntax.ObjectCreation, d *symbols.NamedType, args *overload.Arguments) bound.Expr {
	if args.Len() != 1 || args.Name(0) != "" || args.RefKind(0) != syntax.RefNone {
		if !args.HasErrors {
			c.report(diagnostic.ErrNoConstructor, n.Location(), d.String(), args.Len())
		}
		return c.badExpr(n, lookup.OverloadResolutionFailure, nil, args.Args, d)
	}
	return c.convert(args.Args[0], d, n.Location())
}
