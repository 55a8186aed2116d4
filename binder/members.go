// Copyright © 2024 The ELPS authors

package binder

import (
	"github.com/sirupsen/logrus"

	"github.com/luthersystems/sembind/bound"
	"github.com/luthersystems/sembind/diagnostic"
	"github.com/luthersystems/sembind/lookup"
	"github.com/luthersystems/sembind/symbols"
	"github.com/luthersystems/sembind/syntax"
)

// qualifier is the bound left side of a member access: a namespace, or a
// bound node (a value or a TypeExpr).
type qualifier struct {
	ns   *symbols.Symbol
	node bound.Node
}

func (c *binding) bindMemberAccess(n *syntax.MemberAccess, m mode) bound.Node {
	q := c.bindQualifier(n.Receiver)
	if q.ns != nil {
		return c.namespaceMember(n, q.ns, m)
	}
	return c.memberOf(n, q.node, m)
}

// bindQualifier binds the receiver of a member access, where namespaces
// and types are allowed.
func (c *binding) bindQualifier(e syntax.Expr) qualifier {
	switch e := e.(type) {
	case *syntax.Identifier:
		res, _ := c.lookupSimpleName(e, e.Name, nil, modeReceiver)
		if sym := res.Single(); res.IsViable() && sym != nil && sym.Kind == symbols.SymNamespace {
			return qualifier{ns: sym}
		}
		return qualifier{node: c.simpleNameResult(e, e.Name, nil, res, modeReceiver)}
	case *syntax.MemberAccess:
		inner := c.bindQualifier(e.Receiver)
		if inner.ns == nil {
			return qualifier{node: c.memberOf(e, inner.node, modeReceiver)}
		}
		if len(e.TypeArgs) == 0 {
			for _, sym := range inner.ns.NamespaceMembersNamed(e.Name) {
				if sym.Kind == symbols.SymNamespace {
					return qualifier{ns: sym}
				}
			}
		}
		return qualifier{node: c.namespaceMember(e, inner.ns, modeReceiver)}
	}
	return qualifier{node: c.bindIn(e, modeReceiver)}
}

// namespaceMember binds N.T where N is a namespace. Only types are
// members of namespaces.
func (c *binding) namespaceMember(n *syntax.MemberAccess, ns *symbols.Symbol, m mode) bound.Node {
	typeArgs := c.bindTypeArgs(n.TypeArgs)
	nsName := c.tab.NamespaceName(ns)
	var found, wrongArity *symbols.Symbol
	for _, sym := range ns.NamespaceMembersNamed(n.Name) {
		switch {
		case sym.Kind == symbols.SymNamespace:
			c.report(diagnostic.ErrNotAValue, n.Location(), nsName+"."+n.Name, "namespace")
			return c.badExpr(n, lookup.NotAValue, []*symbols.Symbol{sym}, nil, &symbols.ErrorType{Name: n.Name})
		case sym.Kind != symbols.SymType:
		case sym.Arity() == len(typeArgs):
			found = sym
		default:
			wrongArity = sym
		}
	}
	if found == nil {
		if wrongArity != nil {
			c.report(diagnostic.ErrWrongArity, n.Location(), "type", n.Name, len(typeArgs))
			return c.badExpr(n, lookup.WrongArity, []*symbols.Symbol{wrongArity}, nil, wrongArity.Declared)
		}
		c.report(diagnostic.ErrMemberNotFound, n.Location(), nsName, n.Name)
		return c.badExpr(n, lookup.Empty, nil, nil, &symbols.ErrorType{Name: n.Name})
	}
	t := c.constructDeclared(found, typeArgs)
	if !c.lookup.IsAccessible(found, c.within()) {
		c.report(diagnostic.ErrInaccessible, n.Location(), c.tab.DisplayString(found))
		return c.badExpr(n, lookup.Inaccessible, []*symbols.Symbol{found}, nil, t)
	}
	c.useSite(found, n.Location())
	if m != modeReceiver {
		c.report(diagnostic.ErrNotAValue, n.Location(), n.Name, found.Kind.String())
		return c.badExpr(n, lookup.NotAValue, []*symbols.Symbol{found}, nil, t)
	}
	return &bound.TypeExpr{Typed: bound.Header(n, t, false)}
}

// memberOf binds recv.Name for a bound receiver.
func (c *binding) memberOf(n *syntax.MemberAccess, recv bound.Node, m mode) bound.Node {
	typeArgs := c.bindTypeArgs(n.TypeArgs)
	if te, ok := recv.(*bound.TypeExpr); ok {
		return c.staticMember(n, te, typeArgs, m)
	}
	e, ok := recv.(bound.Expr)
	if !ok {
		c.report(diagnostic.ErrBadReceiver, n.Location(), bound.Display(recv))
		return c.badExpr(n, lookup.Empty, nil, []bound.Node{recv}, nil)
	}
	t := e.Type()
	if symbols.IsErrorType(t) {
		return c.badExpr(n, lookup.Empty, nil, []bound.Node{e}, &symbols.ErrorType{Name: n.Name})
	}
	if symbols.IsVoid(t) {
		c.report(diagnostic.ErrBadReceiver, n.Location(), t.String())
		return c.badExpr(n, lookup.Empty, nil, []bound.Node{e}, nil)
	}
	var opts lookup.Options
	if m == modeInvoked {
		opts |= lookup.OptMustBeInvocable
	}
	res := c.lookup.LookupMembers(t, n.Name, len(typeArgs), opts, c.within())
	c.log.WithFields(logrus.Fields{
		"name":       n.Name,
		"receiver":   t.String(),
		"outcome":    res.Kind,
		"candidates": len(res.Symbols),
	}).Debug("member lookup")

	if res.IsViable() && res.IsMethodGroup() {
		return c.methodGroup(n, e, typeArgs, res, true)
	}
	if !res.IsViable() {
		if m == modeInvoked {
			// Extension methods are searched by the invocation, which
			// reports res if none applies.
			return c.methodGroup(n, e, typeArgs, res, true)
		}
		if res.Kind == lookup.Empty {
			return c.extensionMember(n, e, typeArgs, res)
		}
		c.reportLookup(res, n.Location())
		return c.badExpr(n, res.Kind, res.Symbols, []bound.Node{e}, c.lookupRecoveryType(n.Name, res))
	}

	sym := res.Single()
	switch {
	case sym.Kind == symbols.SymType:
		c.report(diagnostic.ErrNotAValue, n.Location(), n.Name, sym.Kind.String())
		return c.badExpr(n, lookup.NotAValue, res.Symbols, []bound.Node{e}, c.constructDeclared(sym, typeArgs))
	case sym.Static:
		c.report(diagnostic.ErrStaticViaInstance, n.Location(), c.tab.DisplayString(sym))
		return c.badExpr(n, lookup.StaticInstanceMismatch, res.Symbols, []bound.Node{e}, sym.Type)
	}
	c.useSite(sym, n.Location())
	return c.memberValue(n, e, sym)
}

// staticMember binds T.Name. Instance fields and properties fail the
// lookup; instance methods are rejected by overload resolution.
func (c *binding) staticMember(n *syntax.MemberAccess, te *bound.TypeExpr, typeArgs []symbols.Type, m mode) bound.Node {
	res := c.lookup.LookupMembers(te.Type(), n.Name, len(typeArgs), lookup.OptStaticOnly, c.within())
	if !res.IsViable() {
		c.reportLookup(res, n.Location())
		return c.badExpr(n, res.Kind, res.Symbols, nil, c.lookupRecoveryType(n.Name, res))
	}
	if res.IsMethodGroup() {
		return c.methodGroup(n, te, typeArgs, res, false)
	}
	sym := res.Single()
	switch sym.Kind {
	case symbols.SymType:
		t := c.constructDeclared(sym, typeArgs)
		c.useSite(sym, n.Location())
		if m == modeReceiver {
			return &bound.TypeExpr{Typed: bound.Header(n, t, false)}
		}
		c.report(diagnostic.ErrNotAValue, n.Location(), n.Name, sym.Kind.String())
		return c.badExpr(n, lookup.NotAValue, res.Symbols, nil, t)
	case symbols.SymField, symbols.SymProperty:
		c.useSite(sym, n.Location())
		return c.memberValue(n, nil, sym)
	}
	c.report(diagnostic.ErrNotAValue, n.Location(), n.Name, sym.Kind.String())
	return c.badExpr(n, lookup.NotAValue, res.Symbols, nil, nil)
}

func (c *binding) methodGroup(n *syntax.MemberAccess, recv bound.Expr, typeArgs []symbols.Type, res lookup.Result, extensions bool) *bound.MethodGroup {
	var methods []*symbols.Symbol
	if res.IsViable() {
		methods = res.Symbols
	}
	return &bound.MethodGroup{
		PendingBase:      bound.PendingBase{Base: bound.Base{Src: n, Errors: recv.HasErrors()}},
		Receiver:         recv,
		Name:             n.Name,
		Methods:          methods,
		TypeArgs:         typeArgs,
		ResultKind:       res.Kind,
		Lookup:           res,
		SearchExtensions: extensions,
		Scope:            c.env.Scope,
		Within:           c.within(),
	}
}

// extensionMember binds recv.Name in value position when the receiver's
// type has no such member. Scopes are searched innermost first and the
// first scope with a match decides: an extension property is read, an
// extension method group stays pending for a delegate conversion, and a
// scope offering both is ambiguous.
func (c *binding) extensionMember(n *syntax.MemberAccess, recv bound.Expr, typeArgs []symbols.Type, res lookup.Result) bound.Node {
	for i, es := range c.lookup.ExtensionScopes(c.env.Scope) {
		found := c.lookup.LookupExtensions(es, n.Name, len(typeArgs), recv.Type())
		if !found.IsViable() {
			continue
		}
		var props, methods []*symbols.Symbol
		for _, sym := range found.Symbols {
			if sym.Kind == symbols.SymProperty {
				props = append(props, sym)
			} else {
				methods = append(methods, sym)
			}
		}
		c.log.WithFields(logrus.Fields{
			"name":       n.Name,
			"scope":      i,
			"properties": len(props),
			"methods":    len(methods),
		}).Debug("extension member lookup")
		switch {
		case len(props) > 0 && len(methods) > 0:
			c.report(diagnostic.ErrAmbiguousExtension, n.Location(), c.tab.DisplayString(methods[0]), c.tab.DisplayString(props[0]))
			return c.badExpr(n, lookup.Ambiguous, found.Symbols, []bound.Node{recv}, nil)
		case len(props) > 1:
			c.report(diagnostic.ErrAmbiguousName, n.Location(), n.Name, c.tab.DisplayString(props[0]), c.tab.DisplayString(props[1]))
			return c.badExpr(n, lookup.Ambiguous, props, []bound.Node{recv}, nil)
		case len(props) == 1:
			return c.extensionProperty(n, recv, props[0])
		}
		mg := c.methodGroup(n, recv, typeArgs, lookup.Result{Kind: lookup.Viable, Symbols: methods}, true)
		mg.Methods = nil
		return mg
	}
	c.reportLookup(res, n.Location())
	return c.badExpr(n, res.Kind, res.Symbols, []bound.Node{recv}, &symbols.ErrorType{Name: n.Name})
}

func (c *binding) extensionProperty(n *syntax.MemberAccess, recv bound.Expr, prop *symbols.Symbol) bound.Expr {
	if !c.lookup.IsAccessible(prop, c.within()) {
		c.report(diagnostic.ErrInaccessible, n.Location(), c.tab.DisplayString(prop))
		return c.badExpr(n, lookup.Inaccessible, []*symbols.Symbol{prop}, []bound.Node{recv}, prop.Type)
	}
	c.useSite(prop, n.Location())
	return &bound.PropertyAccess{
		Typed:       bound.Header(n, prop.Type, recv.HasErrors()),
		Receiver:    recv,
		Property:    prop,
		IsExtension: true,
	}
}
