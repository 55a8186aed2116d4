// Copyright © 2024 The ELPS authors

package lookup

import (
	"github.com/luthersystems/sembind/symbols"
	"github.com/luthersystems/sembind/syntax"
)

// ExtensionScope is one namespace-level scope together with the static
// types declaring extension members that it makes visible.
type ExtensionScope struct {
	Scope      *symbols.Scope
	Containers []*symbols.NamedType
}

// ExtensionScopes returns the namespace-level scopes enclosing scope that
// make extension members visible, innermost first. Callers must stop at
// the first scope that produces any applicable candidate.
func (r *Resolver) ExtensionScopes(scope *symbols.Scope) []ExtensionScope {
	var out []ExtensionScope
	for s := scope; s != nil; s = s.Parent {
		if !s.IsNamespaceLevel() {
			continue
		}
		if cs := s.ExtensionContainers(); len(cs) > 0 {
			out = append(out, ExtensionScope{Scope: s, Containers: cs})
		}
	}
	return out
}

// LookupExtensions gathers the extension methods and properties named name
// from the containers of es whose receiver parameter accepts receiver.
// Accessibility is not checked here: an inaccessible candidate
// still belongs to its scope and fails in final validation.
func (r *Resolver) LookupExtensions(es ExtensionScope, name string, arity int, receiver symbols.Type) Result {
	var res Result
	for _, c := range es.Containers {
		for _, m := range r.tab.MembersOf(c, name) {
			if !m.Extension {
				continue
			}
			switch m.Kind {
			case symbols.SymMethod:
				if arity > 0 && m.Arity() != arity {
					continue
				}
			case symbols.SymProperty:
				if arity > 0 {
					continue
				}
			default:
				continue
			}
			if !r.ReceiverCompatible(m, receiver) {
				continue
			}
			res.Symbols = append(res.Symbols, m)
		}
	}
	if len(res.Symbols) > 0 {
		res.Kind = Viable
	}
	return res
}

// ReceiverCompatible reports whether receiver may be passed as the
// receiver parameter of extension member m. Generic receiver parameters
// are compared by shape; type inference and constraints are checked by
// overload resolution.
func (r *Resolver) ReceiverCompatible(m *symbols.Symbol, receiver symbols.Type) bool {
	if len(m.Params) == 0 || receiver == nil || symbols.IsErrorType(receiver) {
		return false
	}
	if m.Params[0].RefKind != syntax.RefNone && !symbols.IsValueType(receiver) {
		return false
	}
	return r.shapeMatches(receiver, m.Params[0].Type, m.TypeParams)
}

func (r *Resolver) shapeMatches(arg, p symbols.Type, tps []*symbols.TypeParameter) bool {
	if len(tps) == 0 || !symbols.ContainsTypeParameter(p, tps...) {
		return r.conv.IsImplicitReferenceOrIdentity(arg, p)
	}
	switch p := p.(type) {
	case *symbols.TypeParameter:
		return true
	case *symbols.ArrayType:
		a, ok := arg.(*symbols.ArrayType)
		return ok && a.Rank == p.Rank && r.shapeMatches(a.Elem, p.Elem, tps)
	case *symbols.NullableType:
		u := symbols.NullableUnderlying(arg)
		return u != nil && r.shapeMatches(u, p.Underlying, tps)
	case *symbols.TupleType:
		a, ok := arg.(*symbols.TupleType)
		if !ok || len(a.Elems) != len(p.Elems) {
			return false
		}
		for i := range a.Elems {
			if !r.shapeMatches(a.Elems[i], p.Elems[i], tps) {
				return false
			}
		}
		return true
	case *symbols.NamedType:
		def := p.OriginalDefinition()
		if a, ok := arg.(*symbols.ArrayType); ok {
			switch r.tab.WellKnownOf(p) {
			case symbols.WellKnownIEnumerable, symbols.WellKnownIReadOnlyList:
				return a.Rank == 1
			}
			return false
		}
		for _, nt := range r.TypeChain(arg) {
			if nt.OriginalDefinition() == def {
				return true
			}
			for _, it := range nt.AllInterfaces() {
				if it.OriginalDefinition() == def {
					return true
				}
			}
		}
	}
	return false
}
