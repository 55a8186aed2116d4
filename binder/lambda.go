// Copyright © 2024 The ELPS authors

package binder

import (
	"github.com/luthersystems/sembind/bound"
	"github.com/luthersystems/sembind/diagnostic"
	"github.com/luthersystems/sembind/symbols"
	"github.com/luthersystems/sembind/syntax"
)

// bindLambda returns an unbound lambda. Its body is bound once per
// candidate delegate type, each time in a fresh scope holding the
// parameters, so speculative binds never observe each other.
func (c *binding) bindLambda(n *syntax.Lambda) bound.Node {
	names := make([]string, len(n.Params))
	var explicit []symbols.Type
	for i, p := range n.Params {
		names[i] = p.Name
		if p.Type != nil && explicit == nil {
			explicit = make([]symbols.Type, len(n.Params))
		}
	}
	if explicit != nil {
		for i, p := range n.Params {
			if p.Type == nil {
				explicit[i] = &symbols.ErrorType{Name: p.Name}
				continue
			}
			explicit[i] = c.bindType(p.Type)
		}
	}

	env := c.env
	bindBody := func(types []symbols.Type, ret symbols.Type, sink diagnostic.Sink) ([]*symbols.Symbol, bound.Expr) {
		scope := symbols.NewDetachedScope(symbols.ScopeLambda, env.Scope)
		scope.Node = n
		params := make([]*symbols.Symbol, len(names))
		for i, name := range names {
			var t symbols.Type = &symbols.ErrorType{Name: name}
			if i < len(types) && types[i] != nil {
				t = types[i]
			}
			p := symbols.NewParam(name, t)
			p.Ordinal = i
			p.Source = n.Params[i].Source
			params[i] = symbols.NewParameterSymbol(p)
			scope.Define(params[i])
		}
		inner := c.with(env.WithScope(scope), sink)
		if ret == nil || symbols.IsVoid(ret) {
			return params, inner.bindValue(n.Body)
		}
		return params, inner.bindTo(n.Body, ret)
	}

	return &bound.UnboundLambda{
		PendingBase:   bound.PendingBase{Base: bound.Base{Src: n}},
		Lambda:        n,
		Names:         names,
		ExplicitTypes: explicit,
		BindBody:      bindBody,
	}
}
