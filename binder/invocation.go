// Copyright © 2024 The ELPS authors

package binder

import (
	"github.com/sirupsen/logrus"

	"github.com/luthersystems/sembind/bound"
	"github.com/luthersystems/sembind/diagnostic"
	"github.com/luthersystems/sembind/lookup"
	"github.com/luthersystems/sembind/overload"
	"github.com/luthersystems/sembind/symbols"
	"github.com/luthersystems/sembind/syntax"
)

func (c *binding) bindInvocation(n *syntax.Invocation) bound.Expr {
	callee := c.bindIn(n.Callee, modeInvoked)
	args := c.bindArguments(n.Args)
	switch callee := callee.(type) {
	case *bound.MethodGroup:
		return c.invokeMethodGroup(n, callee, args)
	case bound.Expr:
		t := callee.Type()
		if symbols.IsDelegate(t) {
			return c.invokeDelegate(n, callee, t.(*symbols.NamedType), args)
		}
		if !callee.HasErrors() && !symbols.IsErrorType(t) {
			c.report(diagnostic.ErrNotInvocable, nameLocation(n.Callee), t.String())
		}
		return c.badExpr(n, lookup.NotInvocable, nil, append(exprNodes(callee), args.Args...), &symbols.ErrorType{})
	}
	c.report(diagnostic.ErrNotInvocable, nameLocation(n.Callee), bound.Display(callee))
	return c.badExpr(n, lookup.NotInvocable, nil, append(exprNodes(callee), args.Args...), &symbols.ErrorType{})
}

// nameLocation is where call site diagnostics are reported: the member
// name of a member access, or the callee itself.
func nameLocation(e syntax.Expr) *syntax.Location {
	if ma, ok := e.(*syntax.MemberAccess); ok && ma.NameLoc != nil {
		return ma.NameLoc
	}
	return e.Location()
}

// invokeMethodGroup resolves mg against args. Instance methods are tried
// first. When none of them is applicable and the group has a receiver,
// extension scopes are searched innermost first. The first scope with an
// applicable extension method or a receiver-compatible extension property
// decides the call: outer scopes are never consulted after it.
func (c *binding) invokeMethodGroup(n *syntax.Invocation, mg *bound.MethodGroup, args *overload.Arguments) bound.Expr {
	site := overload.Site{
		Kind:         overload.SiteMethod,
		Name:         mg.Name,
		Loc:          nameLocation(n.Callee),
		TypeArgCount: len(mg.TypeArgs),
	}
	var res overload.Result
	if len(mg.Methods) > 0 {
		res = c.overload.Resolve(mg.Methods, args, overload.Context{
			Within:   c.within(),
			Receiver: receiverKind(mg.Receiver),
			TypeArgs: mg.TypeArgs,
		})
		c.logResolution(mg.Name, "instance", &res)
		if res.HasApplicable() || !mg.SearchExtensions {
			return c.finishCall(n, mg, args, &res, site, false)
		}
	}

	if mg.SearchExtensions && mg.Receiver != nil && !symbols.IsErrorType(mg.Receiver.Type()) {
		withRecv := args.WithReceiver(mg.Receiver)
		ctx := overload.Context{Within: c.within(), TypeArgs: mg.TypeArgs, Extension: true}
		var first *overload.Result
		for i, es := range c.lookup.ExtensionScopes(c.env.Scope) {
			found := c.lookup.LookupExtensions(es, mg.Name, len(mg.TypeArgs), mg.Receiver.Type())
			methods, props := splitExtensions(found.Symbols)
			var er overload.Result
			if len(methods) > 0 {
				er = c.overload.Resolve(methods, withRecv, ctx)
			}
			c.log.WithFields(logrus.Fields{
				"name":       mg.Name,
				"scope":      i,
				"candidates": len(methods),
				"properties": len(props),
				"outcome":    er.Kind,
			}).Debug("extension method resolution")
			switch {
			case er.HasApplicable() && len(props) > 0:
				c.report(diagnostic.ErrAmbiguousExtension, site.Loc, c.tab.DisplayString(methods[0]), c.tab.DisplayString(props[0]))
				return c.badExpr(n, lookup.Ambiguous, found.Symbols, append(exprNodes(mg.Receiver), args.Args...), nil)
			case er.HasApplicable():
				return c.finishCall(n, mg, withRecv, &er, site, true)
			case len(props) > 0:
				return c.invokeExtensionProperty(n, mg, props, args)
			}
			if len(methods) > 0 && first == nil {
				first = &er
			}
		}
		if len(mg.Methods) == 0 && first != nil {
			return c.finishCall(n, mg, withRecv, first, site, true)
		}
	}
	if len(mg.Methods) > 0 {
		return c.finishCall(n, mg, args, &res, site, false)
	}

	c.reportLookup(mg.Lookup, site.Loc)
	return c.badExpr(n, mg.ResultKind, mg.Lookup.Symbols, append(exprNodes(mg.Receiver), args.Args...), nil)
}

// invokeExtensionProperty reads the extension property the deciding scope
// offers and invokes its delegate value.
func (c *binding) invokeExtensionProperty(n *syntax.Invocation, mg *bound.MethodGroup, props []*symbols.Symbol, args *overload.Arguments) bound.Expr {
	loc := nameLocation(n.Callee)
	children := append(exprNodes(mg.Receiver), args.Args...)
	if len(props) > 1 {
		c.report(diagnostic.ErrAmbiguousName, loc, mg.Name, c.tab.DisplayString(props[0]), c.tab.DisplayString(props[1]))
		return c.badExpr(n, lookup.Ambiguous, props, children, nil)
	}
	ma, ok := n.Callee.(*syntax.MemberAccess)
	if !ok {
		c.report(diagnostic.ErrNotInvocable, loc, c.tab.DisplayString(props[0]))
		return c.badExpr(n, lookup.NotInvocable, props, children, nil)
	}
	value := c.extensionProperty(ma, mg.Receiver, props[0])
	t := value.Type()
	if symbols.IsDelegate(t) && !value.HasErrors() {
		return c.invokeDelegate(n, value, t.(*symbols.NamedType), args)
	}
	if !value.HasErrors() {
		c.report(diagnostic.ErrNotInvocable, loc, t.String())
	}
	return c.badExpr(n, lookup.NotInvocable, props, append(exprNodes(value), args.Args...), nil)
}

func (c *binding) logResolution(name, form string, res *overload.Result) {
	fields := logrus.Fields{
		"name":       name,
		"form":       form,
		"candidates": len(res.Members),
		"outcome":    res.Kind,
	}
	if best := res.Best(); best != nil {
		fields["best"] = c.tab.DisplayString(best.Member)
	}
	c.log.WithFields(fields).Debug("overload resolution")
}

// finishCall builds the call for a resolution result, or reports it and
// builds an error node.
func (c *binding) finishCall(n *syntax.Invocation, mg *bound.MethodGroup, args *overload.Arguments, res *overload.Result, site overload.Site, extension bool) bound.Expr {
	if !res.Succeeded() {
		c.overload.Report(c.sink, site, args, res)
		children := args.Args
		if !extension {
			children = append(exprNodes(mg.Receiver), children...)
		}
		return c.badExpr(n, res.LookupKind(), res.Candidates(), children, nil)
	}
	best := res.Best()
	c.useSite(best.Member, site.Loc)
	exprs := c.buildArguments(n, best, args)
	recv := mg.Receiver
	switch {
	case extension:
		recv = nil
	case best.Member.Static:
		if _, ok := recv.(*bound.TypeExpr); !ok {
			recv = nil
		}
	}
	return &bound.Call{
		Typed:              bound.Header(n, best.Member.Type, bound.AnyErrors(exprs...) || bound.AnyErrors(recv)),
		Receiver:           recv,
		Method:             best.Member,
		Args:               exprs,
		ArgsToParams:       best.ArgsToParams,
		Expanded:           best.Expanded,
		InvokedAsExtension: extension,
	}
}

// invokeDelegate calls the Invoke method of the delegate type d.
func (c *binding) invokeDelegate(n *syntax.Invocation, callee bound.Expr, d *symbols.NamedType, args *overload.Arguments) bound.Expr {
	invoke := c.tab.DelegateInvoke(d)
	if invoke == nil {
		c.report(diagnostic.ErrNotInvocable, nameLocation(n.Callee), d.String())
		return c.badExpr(n, lookup.NotInvocable, nil, append(exprNodes(callee), args.Args...), nil)
	}
	site := overload.Site{Kind: overload.SiteDelegate, Name: d.String(), Loc: nameLocation(n.Callee)}
	res := c.overload.Resolve([]*symbols.Symbol{invoke}, args, overload.Context{Within: c.within()})
	c.logResolution(d.String(), "delegate", &res)
	if !res.Succeeded() {
		c.overload.Report(c.sink, site, args, &res)
		return c.badExpr(n, res.LookupKind(), res.Candidates(), append(exprNodes(callee), args.Args...), nil)
	}
	best := res.Best()
	exprs := c.buildArguments(n, best, args)
	return &bound.Call{
		Typed:        bound.Header(n, best.Member.Type, callee.HasErrors() || bound.AnyErrors(exprs...)),
		Receiver:     callee,
		Method:       best.Member,
		Args:         exprs,
		ArgsToParams: best.ArgsToParams,
		Expanded:     best.Expanded,
	}
}
