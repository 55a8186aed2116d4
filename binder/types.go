// Copyright © 2024 The ELPS authors

package binder

import (
	"context"
	"strings"

	"github.com/luthersystems/sembind/diagnostic"
	"github.com/luthersystems/sembind/lookup"
	"github.com/luthersystems/sembind/symbols"
	"github.com/luthersystems/sembind/syntax"
)

// BindType resolves a type written in source in env. Declaration loaders
// use it before the table is frozen to resolve member signatures.
func (b *Binder) BindType(ctx context.Context, env Env, ref *syntax.TypeRef, sink diagnostic.Sink) symbols.Type {
	return b.begin(ctx, env, sink).bindType(ref)
}

// bindType resolves a type written in source. Unknown types are reported
// and yield an error type carrying the name.
func (c *binding) bindType(ref *syntax.TypeRef) symbols.Type {
	if ref == nil {
		return &symbols.ErrorType{}
	}
	t := c.bindTypeName(ref)
	if ref.Nullable && symbols.IsValueType(t) && !symbols.IsNullable(t) {
		t = &symbols.NullableType{Underlying: t}
	}
	for i := len(ref.ArrayRanks) - 1; i >= 0; i-- {
		t = &symbols.ArrayType{Elem: t, Rank: ref.ArrayRanks[i]}
	}
	return t
}

func (c *binding) bindTypeArgs(refs []*syntax.TypeRef) []symbols.Type {
	if len(refs) == 0 {
		return nil
	}
	out := make([]symbols.Type, len(refs))
	for i, r := range refs {
		out[i] = c.bindType(r)
	}
	return out
}

func (c *binding) bindTypeName(ref *syntax.TypeRef) symbols.Type {
	if st, ok := symbols.SpecialTypeByKeyword(ref.Name); ok && len(ref.TypeArgs) == 0 {
		return c.tab.Special(st)
	}
	args := c.bindTypeArgs(ref.TypeArgs)
	var sym *symbols.Symbol
	if i := strings.LastIndexByte(ref.Name, '.'); i >= 0 {
		ns, name := ref.Name[:i], ref.Name[i+1:]
		if nt := c.tab.LookupType(ns, name, len(args)); nt != nil {
			sym = c.tab.TypeSymbol(nt)
		}
		if sym == nil || !c.lookup.IsAccessible(sym, c.within()) {
			code := diagnostic.ErrTypeNotFound
			if sym != nil {
				code = diagnostic.ErrInaccessible
			}
			c.report(code, ref.Source, ref.Name)
			return &symbols.ErrorType{Name: ref.Name}
		}
	} else {
		res := c.lookup.LookupSymbols(c.env.Scope, ref.Name, len(args), lookup.OptTypesOnly, c.within())
		if !res.IsViable() {
			c.reportLookup(res, ref.Source)
			return &symbols.ErrorType{Name: ref.Name}
		}
		sym = res.Single()
	}
	if sym.Kind == symbols.SymNamespace {
		c.report(diagnostic.ErrNotAValue, ref.Source, ref.Name, "namespace")
		return &symbols.ErrorType{Name: ref.Name}
	}
	return c.constructDeclared(sym, args)
}
