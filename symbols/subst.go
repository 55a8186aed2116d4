// Copyright © 2024 The ELPS authors

package symbols

// Substitution maps type parameters to type arguments.
type Substitution map[*TypeParameter]Type

// NewSubstitution pairs params with args positionally.
func NewSubstitution(params []*TypeParameter, args []Type) Substitution {
	if len(params) == 0 {
		return nil
	}
	m := make(Substitution, len(params))
	for i, p := range params {
		if i < len(args) && args[i] != nil {
			m[p] = args[i]
		}
	}
	return m
}

// Substitute replaces the type parameters of t according to m.
func Substitute(t Type, m Substitution) Type {
	if len(m) == 0 || t == nil {
		return t
	}
	switch t := t.(type) {
	case *TypeParameter:
		if r, ok := m[t]; ok {
			return r
		}
		return t
	case *ArrayType:
		elem := Substitute(t.Elem, m)
		if elem == t.Elem {
			return t
		}
		return &ArrayType{Elem: elem, Rank: t.Rank}
	case *NullableType:
		u := Substitute(t.Underlying, m)
		if u == t.Underlying {
			return t
		}
		return &NullableType{Underlying: u}
	case *TupleType:
		elems, changed := substituteList(t.Elems, m)
		if !changed {
			return t
		}
		return &TupleType{Elems: elems, Names: t.Names}
	case *NamedType:
		if len(t.TypeArgs) == 0 {
			return t
		}
		args, changed := substituteList(t.TypeArgs, m)
		if !changed {
			return t
		}
		return Construct(t.OriginalDefinition(), args)
	}
	return t
}

func substituteList(ts []Type, m Substitution) ([]Type, bool) {
	out := make([]Type, len(ts))
	changed := false
	for i, e := range ts {
		out[i] = Substitute(e, m)
		if out[i] != e {
			changed = true
		}
	}
	return out, changed
}

// Construct instantiates the generic declaration def with args.
func Construct(def *NamedType, args []Type) *NamedType {
	def = def.OriginalDefinition()
	return &NamedType{
		Name:           def.Name,
		Namespace:      def.Namespace,
		TypeKind:       def.TypeKind,
		Special:        def.Special,
		Symbol:         def.Symbol,
		TypeParams:     def.TypeParams,
		TypeArgs:       args,
		Definition:     def,
		Static:         def.Static,
		Abstract:       def.Abstract,
		EnumUnderlying: def.EnumUnderlying,
	}
}

// ConstructMethod instantiates a generic method with type arguments.
func ConstructMethod(m *Symbol, args []Type) *Symbol {
	subst := NewSubstitution(m.TypeParams, args)
	c := substituteSymbol(m, subst)
	c.TypeArgs = args
	return c
}

// SubstituteMember returns sym with the type parameters of its containing
// type replaced by the type arguments of the constructed type in. The
// result keeps sym as its Definition. Declarations are returned unchanged
// when in is not constructed.
func SubstituteMember(sym *Symbol, in *NamedType) *Symbol {
	if in == nil || in.Definition == nil {
		return sym
	}
	c := substituteSymbol(sym, in.substitution())
	c.constructedIn = in
	return c
}

func substituteSymbol(sym *Symbol, subst Substitution) *Symbol {
	c := *sym
	c.Definition = sym
	c.members = nil
	c.Type = Substitute(sym.Type, subst)
	if len(sym.Params) > 0 {
		c.Params = make([]*Parameter, len(sym.Params))
		for i, p := range sym.Params {
			np := *p
			np.Type = Substitute(p.Type, subst)
			c.Params[i] = &np
		}
	}
	return &c
}

// Identical reports whether a and b denote the same type. Tuple element
// names do not participate in identity.
func Identical(a, b Type) bool {
	if a == b {
		return true
	}
	if a == nil || b == nil {
		return false
	}
	switch a := a.(type) {
	case *NamedType:
		b, ok := b.(*NamedType)
		if !ok || a.OriginalDefinition() != b.OriginalDefinition() {
			return false
		}
		aa, ba := typeArgsOf(a), typeArgsOf(b)
		if len(aa) != len(ba) {
			return false
		}
		for i := range aa {
			if !Identical(aa[i], ba[i]) {
				return false
			}
		}
		return true
	case *ArrayType:
		b, ok := b.(*ArrayType)
		return ok && a.Rank == b.Rank && Identical(a.Elem, b.Elem)
	case *NullableType:
		b, ok := b.(*NullableType)
		return ok && Identical(a.Underlying, b.Underlying)
	case *TupleType:
		b, ok := b.(*TupleType)
		if !ok || len(a.Elems) != len(b.Elems) {
			return false
		}
		for i := range a.Elems {
			if !Identical(a.Elems[i], b.Elems[i]) {
				return false
			}
		}
		return true
	case *ErrorType:
		b, ok := b.(*ErrorType)
		return ok && a.Name == b.Name
	}
	return false
}

// typeArgsOf returns the type arguments of t, treating a generic
// declaration as constructed over its own type parameters.
func typeArgsOf(t *NamedType) []Type {
	if t.Definition != nil {
		return t.TypeArgs
	}
	if len(t.TypeParams) == 0 {
		return nil
	}
	args := make([]Type, len(t.TypeParams))
	for i, tp := range t.TypeParams {
		args[i] = tp
	}
	return args
}

// ContainsTypeParameter reports whether t mentions any of params (any type
// parameter when params is empty).
func ContainsTypeParameter(t Type, params ...*TypeParameter) bool {
	switch t := t.(type) {
	case *TypeParameter:
		if len(params) == 0 {
			return true
		}
		for _, p := range params {
			if p == t {
				return true
			}
		}
	case *ArrayType:
		return ContainsTypeParameter(t.Elem, params...)
	case *NullableType:
		return ContainsTypeParameter(t.Underlying, params...)
	case *TupleType:
		for _, e := range t.Elems {
			if ContainsTypeParameter(e, params...) {
				return true
			}
		}
	case *NamedType:
		for _, a := range t.TypeArgs {
			if ContainsTypeParameter(a, params...) {
				return true
			}
		}
	}
	return false
}
