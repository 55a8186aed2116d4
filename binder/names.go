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

// bindSimpleName binds an identifier or a generic name.
func (c *binding) bindSimpleName(n syntax.Expr, name string, typeArgRefs []*syntax.TypeRef, m mode) bound.Node {
	res, typeArgs := c.lookupSimpleName(n, name, typeArgRefs, m)
	return c.simpleNameResult(n, name, typeArgs, res, m)
}

func (c *binding) lookupSimpleName(n syntax.Expr, name string, typeArgRefs []*syntax.TypeRef, m mode) (lookup.Result, []symbols.Type) {
	typeArgs := c.bindTypeArgs(typeArgRefs)
	var opts lookup.Options
	if len(typeArgs) > 0 {
		opts |= lookup.OptArityZeroFallback
	}
	if m == modeInvoked {
		opts |= lookup.OptMustBeInvocable
	}
	res := c.lookup.LookupSymbols(c.env.Scope, name, len(typeArgs), opts, c.within())
	c.log.WithFields(logrus.Fields{
		"name":       name,
		"arity":      len(typeArgs),
		"outcome":    res.Kind,
		"candidates": len(res.Symbols),
	}).Debug("name lookup")
	return res, typeArgs
}

func (c *binding) simpleNameResult(n syntax.Expr, name string, typeArgs []symbols.Type, res lookup.Result, m mode) bound.Node {
	if !res.IsViable() {
		c.reportLookup(res, n.Location())
		return c.badExpr(n, res.Kind, res.Symbols, nil, c.lookupRecoveryType(name, res))
	}
	if res.IsMethodGroup() {
		var recv bound.Expr
		if !c.env.Static && c.env.ContainingType != nil {
			recv = c.implicitThis(n)
		}
		return &bound.MethodGroup{
			PendingBase: bound.PendingBase{Base: bound.Base{Src: n}},
			Receiver:    recv,
			Name:        name,
			Methods:     res.Symbols,
			TypeArgs:    typeArgs,
			ResultKind:  res.Kind,
			Lookup:      res,
			Scope:       c.env.Scope,
			Within:      c.within(),
		}
	}
	sym := res.Single()
	c.useSite(sym, n.Location())
	switch sym.Kind {
	case symbols.SymLocal:
		node := &bound.Local{Typed: bound.Header(n, sym.Type, false), Symbol: sym}
		node.Const = sym.Constant
		return node
	case symbols.SymParameter:
		return &bound.Parameter{Typed: bound.Header(n, sym.Type, false), Symbol: sym}
	case symbols.SymField, symbols.SymProperty:
		var recv bound.Expr
		if sym.IsInstance() {
			if c.env.Static {
				c.report(diagnostic.ErrInstanceRequired, n.Location(), c.tab.DisplayString(sym))
				return c.badExpr(n, lookup.StaticInstanceMismatch, []*symbols.Symbol{sym}, nil, sym.Type)
			}
			recv = c.implicitThis(n)
		}
		return c.memberValue(n, recv, sym)
	case symbols.SymType, symbols.SymTypeParameter:
		t := c.constructDeclared(sym, typeArgs)
		if m == modeReceiver {
			return &bound.TypeExpr{Typed: bound.Header(n, t, false)}
		}
		c.report(diagnostic.ErrNotAValue, n.Location(), name, sym.Kind.String())
		return c.badExpr(n, lookup.NotAValue, []*symbols.Symbol{sym}, nil, t)
	}
	c.report(diagnostic.ErrNotAValue, n.Location(), name, sym.Kind.String())
	return c.badExpr(n, lookup.NotAValue, []*symbols.Symbol{sym}, nil, &symbols.ErrorType{Name: name})
}

// constructDeclared returns the type a type symbol declares, constructed
// with typeArgs when they match its arity.
func (c *binding) constructDeclared(sym *symbols.Symbol, typeArgs []symbols.Type) symbols.Type {
	nt, ok := sym.Declared.(*symbols.NamedType)
	if !ok || len(typeArgs) == 0 || len(typeArgs) != len(nt.TypeParams) {
		return sym.Declared
	}
	return symbols.Construct(nt, typeArgs)
}

// memberValue builds a read of a field or property. recv is nil for
// static members.
func (c *binding) memberValue(src syntax.Expr, recv bound.Expr, sym *symbols.Symbol) bound.Expr {
	errs := recv != nil && recv.HasErrors()
	if sym.Kind == symbols.SymField {
		node := &bound.FieldAccess{Typed: bound.Header(src, sym.Type, errs), Receiver: recv, Field: sym}
		node.Const = sym.Constant
		return node
	}
	return &bound.PropertyAccess{Typed: bound.Header(src, sym.Type, errs), Receiver: recv, Property: sym}
}

func (c *binding) implicitThis(src syntax.Expr) bound.Expr {
	return &bound.This{Typed: bound.Header(src, c.env.ContainingType, false), Implicit: true}
}

func (c *binding) bindThis(n *syntax.This) bound.Expr {
	if c.env.Static || c.env.ContainingType == nil {
		c.report(diagnostic.ErrThisInStatic, n.Location())
		var t symbols.Type = &symbols.ErrorType{Name: "this"}
		if c.env.ContainingType != nil {
			t = c.env.ContainingType
		}
		return c.badExpr(n, lookup.StaticInstanceMismatch, nil, nil, t)
	}
	return &bound.This{Typed: bound.Header(n, c.env.ContainingType, false)}
}

// reportLookup reports the failure carried by a lookup result.
func (c *binding) reportLookup(res lookup.Result, loc *syntax.Location) {
	if d, ok := res.Diagnose(diagnostic.SpanOf(loc)); ok {
		c.sink.Add(d)
	}
}

// lookupRecoveryType is the type of the error node for a failed lookup.
func (c *binding) lookupRecoveryType(name string, res lookup.Result) symbols.Type {
	if len(res.Symbols) == 1 {
		if t := symbolType(res.Symbols[0]); t != nil {
			return t
		}
	}
	return &symbols.ErrorType{Name: name}
}

// symbolType is the type an expression naming sym would have.
func symbolType(sym *symbols.Symbol) symbols.Type {
	switch sym.Kind {
	case symbols.SymType, symbols.SymTypeParameter:
		return sym.Declared
	case symbols.SymNamespace:
		return nil
	}
	if sym.MethodKind == symbols.MethodConstructor {
		return nil
	}
	return sym.Type
}

// useSite reports obsolete symbols.
func (c *binding) useSite(sym *symbols.Symbol, loc *syntax.Location) {
	if sym == nil {
		return
	}
	ob := sym.OriginalDefinition().Obsolete
	if ob == nil {
		return
	}
	code := diagnostic.WarnObsolete
	if ob.IsError {
		code = diagnostic.ErrObsolete
	}
	c.report(code, loc, c.tab.DisplayString(sym), ob.Message)
}
