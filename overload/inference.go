// Copyright © 2024 The ELPS authors

package overload

import (
	"github.com/luthersystems/sembind/bound"
	"github.com/luthersystems/sembind/symbols"
	"github.com/luthersystems/sembind/syntax"
)

// inferrer infers the type arguments of one generic method from one
// argument mapping. Phase one collects bounds from typed arguments; phase
// two alternates between fixing type parameters and inferring the return
// types of lambdas whose parameter types have become fixed.
type inferrer struct {
	r     *Resolver
	tps   []*symbols.TypeParameter
	exact [][]symbols.Type
	lower [][]symbols.Type
	fixed []symbols.Type
}

func (r *Resolver) infer(m *symbols.Symbol, args *Arguments, an analysis) ([]symbols.Type, bool) {
	in := &inferrer{
		r:     r,
		tps:   m.TypeParams,
		exact: make([][]symbols.Type, len(m.TypeParams)),
		lower: make([][]symbols.Type, len(m.TypeParams)),
		fixed: make([]symbols.Type, len(m.TypeParams)),
	}
	expanded := an.kind == analysisExpanded
	formal := func(i int) symbols.Type {
		p := m.Params[an.argsToParams[i]]
		if expanded && an.argsToParams[i] == len(m.Params)-1 {
			return symbols.ElementType(p.Type)
		}
		return p.Type
	}

	type lambdaArg struct {
		lambda *bound.UnboundLambda
		target *symbols.NamedType
	}
	var lambdas []lambdaArg

	for i, arg := range args.Args {
		pt := formal(i)
		switch a := arg.(type) {
		case bound.Expr:
			at := a.Type()
			if symbols.IsErrorType(at) {
				continue
			}
			if k := args.RefKind(i); k == syntax.RefRef || k == syntax.RefOut {
				in.exactBound(at, pt)
			} else {
				in.lowerBound(at, pt)
			}
		case *bound.UnboundLambda:
			d, ok := pt.(*symbols.NamedType)
			if !ok || d.TypeKind != symbols.TypeDelegate {
				continue
			}
			if invoke := r.tab.DelegateInvoke(d); invoke != nil && a.HasExplicitTypes() {
				for j, et := range a.ExplicitTypes {
					if j < len(invoke.Params) {
						in.exactBound(et, invoke.Params[j].Type)
					}
				}
			}
			lambdas = append(lambdas, lambdaArg{a, d})
		case *bound.UnconvertedTuple:
			in.tupleBound(a, pt)
		}
	}

	done := make([]bool, len(lambdas))
	for iter := 0; iter <= len(in.tps)+len(lambdas); iter++ {
		progressed := false
		for li, la := range lambdas {
			if done[li] {
				continue
			}
			invoke := r.tab.DelegateInvoke(la.target)
			if invoke == nil {
				done[li] = true
				continue
			}
			paramTypes, ok := in.fixedTypes(invoke.Params)
			if !ok {
				continue
			}
			if !symbols.IsVoid(invoke.Type) {
				if ret := la.lambda.InferReturnType(paramTypes); ret != nil {
					in.lowerBound(ret, invoke.Type)
				}
			}
			done[li] = true
			progressed = true
		}
		if progressed {
			continue
		}
		outputs := map[*symbols.TypeParameter]bool{}
		for li, la := range lambdas {
			if done[li] {
				continue
			}
			if invoke := r.tab.DelegateInvoke(la.target); invoke != nil {
				for _, tp := range in.tps {
					if symbols.ContainsTypeParameter(invoke.Type, tp) {
						outputs[tp] = true
					}
				}
			}
		}
		for i, tp := range in.tps {
			if in.fixed[i] != nil || outputs[tp] || !in.hasBounds(i) {
				continue
			}
			if !in.fix(i) {
				return nil, false
			}
			progressed = true
		}
		if !progressed {
			for i := range in.tps {
				if in.fixed[i] == nil && in.hasBounds(i) {
					if !in.fix(i) {
						return nil, false
					}
					progressed = true
				}
			}
		}
		if !progressed {
			break
		}
	}
	for _, t := range in.fixed {
		if t == nil {
			return nil, false
		}
	}
	return in.fixed, true
}

func (in *inferrer) index(t symbols.Type) int {
	tp, ok := t.(*symbols.TypeParameter)
	if !ok {
		return -1
	}
	for i, p := range in.tps {
		if p == tp {
			return i
		}
	}
	return -1
}

func (in *inferrer) hasBounds(i int) bool {
	return len(in.exact[i]) > 0 || len(in.lower[i]) > 0
}

// fixedTypes substitutes fixed type arguments into params. It fails when
// a parameter mentions an unfixed type parameter.
func (in *inferrer) fixedTypes(params []*symbols.Parameter) ([]symbols.Type, bool) {
	subst := symbols.Substitution{}
	for i, tp := range in.tps {
		if in.fixed[i] != nil {
			subst[tp] = in.fixed[i]
		}
	}
	out := make([]symbols.Type, len(params))
	for i, p := range params {
		t := symbols.Substitute(p.Type, subst)
		if symbols.ContainsTypeParameter(t, in.tps...) {
			return nil, false
		}
		out[i] = t
	}
	return out, true
}

func addBound(set []symbols.Type, t symbols.Type) []symbols.Type {
	for _, s := range set {
		if symbols.Identical(s, t) {
			return set
		}
	}
	return append(set, t)
}

func (in *inferrer) exactBound(u, v symbols.Type) {
	if i := in.index(v); i >= 0 {
		in.exact[i] = addBound(in.exact[i], u)
		return
	}
	switch v := v.(type) {
	case *symbols.ArrayType:
		if u, ok := u.(*symbols.ArrayType); ok && u.Rank == v.Rank {
			in.exactBound(u.Elem, v.Elem)
		}
	case *symbols.NullableType:
		if u := symbols.NullableUnderlying(u); u != nil {
			in.exactBound(u, v.Underlying)
		}
	case *symbols.TupleType:
		if u, ok := u.(*symbols.TupleType); ok && len(u.Elems) == len(v.Elems) {
			for i := range v.Elems {
				in.exactBound(u.Elems[i], v.Elems[i])
			}
		}
	case *symbols.NamedType:
		u, ok := u.(*symbols.NamedType)
		if !ok || u.OriginalDefinition() != v.OriginalDefinition() {
			return
		}
		for i := range v.TypeArgs {
			if i < len(u.TypeArgs) {
				in.exactBound(u.TypeArgs[i], v.TypeArgs[i])
			}
		}
	}
}

func (in *inferrer) lowerBound(u, v symbols.Type) {
	if i := in.index(v); i >= 0 {
		in.lower[i] = addBound(in.lower[i], u)
		return
	}
	if !symbols.ContainsTypeParameter(v, in.tps...) {
		return
	}
	switch v := v.(type) {
	case *symbols.ArrayType:
		u, ok := u.(*symbols.ArrayType)
		if !ok || u.Rank != v.Rank {
			return
		}
		if symbols.IsReferenceType(u.Elem) {
			in.lowerBound(u.Elem, v.Elem)
		} else {
			in.exactBound(u.Elem, v.Elem)
		}
	case *symbols.NullableType:
		if uu := symbols.NullableUnderlying(u); uu != nil {
			in.exactBound(uu, v.Underlying)
		}
	case *symbols.TupleType:
		if u, ok := u.(*symbols.TupleType); ok && len(u.Elems) == len(v.Elems) {
			for i := range v.Elems {
				in.lowerBound(u.Elems[i], v.Elems[i])
			}
		}
	case *symbols.NamedType:
		match := in.uniqueSupertype(u, v.OriginalDefinition())
		if match == nil {
			return
		}
		covariant := in.r.isCovariant(v)
		for i := range v.TypeArgs {
			if i >= len(match.TypeArgs) {
				break
			}
			ua := match.TypeArgs[i]
			if covariant && symbols.IsReferenceType(ua) {
				in.lowerBound(ua, v.TypeArgs[i])
			} else {
				in.exactBound(ua, v.TypeArgs[i])
			}
		}
	}
}

// tupleBound infers from the typed elements of a tuple literal.
func (in *inferrer) tupleBound(t *bound.UnconvertedTuple, v symbols.Type) {
	vt, ok := v.(*symbols.TupleType)
	if !ok || len(vt.Elems) != len(t.Elements) {
		return
	}
	for i, e := range t.Elements {
		switch e := e.(type) {
		case bound.Expr:
			if !symbols.IsErrorType(e.Type()) {
				in.lowerBound(e.Type(), vt.Elems[i])
			}
		case *bound.UnconvertedTuple:
			in.tupleBound(e, vt.Elems[i])
		}
	}
}

// uniqueSupertype returns the single construction of def among u and its
// base types and interfaces, or nil when there is none or several.
func (in *inferrer) uniqueSupertype(u symbols.Type, def *symbols.NamedType) *symbols.NamedType {
	var found *symbols.NamedType
	for _, st := range in.r.supertypes(u) {
		if st.OriginalDefinition() != def {
			continue
		}
		if found != nil && !symbols.Identical(found, st) {
			return nil
		}
		found = st
	}
	return found
}

// supertypes returns t (when named), its class chain and every interface
// it implements. Arrays contribute the sequence interfaces over their
// element type.
func (r *Resolver) supertypes(t symbols.Type) []*symbols.NamedType {
	var out []*symbols.NamedType
	for _, nt := range r.lookup.TypeChain(t) {
		out = append(out, nt)
		out = append(out, nt.AllInterfaces()...)
	}
	if at, ok := t.(*symbols.ArrayType); ok && at.Rank == 1 {
		for _, wk := range []symbols.WellKnownType{symbols.WellKnownIReadOnlyList, symbols.WellKnownIEnumerable} {
			if def := r.tab.WellKnown(wk); def != nil {
				out = append(out, symbols.Construct(def, []symbols.Type{at.Elem}))
			}
		}
	}
	return out
}

// isCovariant reports whether t's type argument is covariant: the
// well-known sequence interfaces.
func (r *Resolver) isCovariant(t *symbols.NamedType) bool {
	switch r.tab.WellKnownOf(t) {
	case symbols.WellKnownIEnumerable, symbols.WellKnownIReadOnlyList:
		return true
	}
	return false
}

// fix chooses the type argument for type parameter i from its bounds.
func (in *inferrer) fix(i int) bool {
	conv := in.r.conv
	if len(in.exact[i]) > 0 {
		x := in.exact[i][0]
		for _, e := range in.exact[i][1:] {
			if !symbols.Identical(e, x) {
				return false
			}
		}
		for _, l := range in.lower[i] {
			if !conv.ClassifyImplicitTypes(l, x).Exists() {
				return false
			}
		}
		in.fixed[i] = x
		return true
	}

	var viable []symbols.Type
	for _, c := range in.lower[i] {
		ok := true
		for _, l := range in.lower[i] {
			if !conv.ClassifyImplicitTypes(l, c).Exists() {
				ok = false
				break
			}
		}
		if ok {
			viable = append(viable, c)
		}
	}
	for _, v := range viable {
		best := true
		for _, o := range viable {
			if o != v && !conv.ClassifyImplicitTypes(o, v).Exists() {
				best = false
				break
			}
		}
		if best {
			in.fixed[i] = v
			return true
		}
	}
	return false
}
