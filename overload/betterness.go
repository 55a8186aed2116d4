// Copyright © 2024 The ELPS authors

package overload

import (
	"github.com/luthersystems/sembind/bound"
	"github.com/luthersystems/sembind/conversions"
	"github.com/luthersystems/sembind/symbols"
)

// chooseBest picks the unique applicable candidate that is better than
// every other applicable candidate.
func (r *Resolver) chooseBest(res *Result, args *Arguments) {
	var applicable []int
	for i := range res.Members {
		if res.Members[i].Kind == MemberApplicable {
			applicable = append(applicable, i)
		}
	}
	switch len(applicable) {
	case 0:
		res.Kind = NoApplicableCandidate
		return
	case 1:
		res.Kind = Succeeded
		res.BestIndex = applicable[0]
		return
	}

	// better[i][j] reports whether applicable[i] beats applicable[j].
	n := len(applicable)
	better := make([][]bool, n)
	for i := range better {
		better[i] = make([]bool, n)
	}
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			a, b := &res.Members[applicable[i]], &res.Members[applicable[j]]
			switch r.compare(a, b, args) {
			case 1:
				better[i][j] = true
			case -1:
				better[j][i] = true
			}
		}
	}

	for i := 0; i < n; i++ {
		wins := true
		for j := 0; j < n; j++ {
			if i != j && !better[i][j] {
				wins = false
				break
			}
		}
		if wins {
			res.Kind = Succeeded
			res.BestIndex = applicable[i]
			for j := 0; j < n; j++ {
				if j != i {
					res.Members[applicable[j]].Kind = MemberWorse
				}
			}
			return
		}
	}

	res.Kind = Ambiguous
	for i := 0; i < n; i++ {
		dominated := false
		for j := 0; j < n; j++ {
			if better[j][i] {
				dominated = true
				break
			}
		}
		if dominated {
			res.Members[applicable[i]].Kind = MemberWorse
		} else {
			res.AmbiguousIndexes = append(res.AmbiguousIndexes, applicable[i])
		}
	}
	if len(res.AmbiguousIndexes) < 2 {
		res.AmbiguousIndexes = applicable
	}
}

// compare returns 1 when a is better than b, -1 when b is better and 0
// when neither is.
func (r *Resolver) compare(a, b *MemberResult, args *Arguments) int {
	aBetter, bBetter := false, false
	for i, arg := range args.Args {
		switch r.betterConversion(arg, a.ParamType(i), b.ParamType(i), conversionAt(a, i), conversionAt(b, i)) {
		case 1:
			aBetter = true
		case -1:
			bBetter = true
		}
	}
	switch {
	case aBetter && !bBetter:
		return 1
	case bBetter && !aBetter:
		return -1
	case aBetter && bBetter:
		return 0
	}
	return r.tieBreak(a, b, args)
}

func conversionAt(m *MemberResult, i int) conversions.Conversion {
	if i < len(m.Conversions) {
		return m.Conversions[i]
	}
	return conversions.None
}

// betterConversion compares the conversions of one argument to t1 and t2.
func (r *Resolver) betterConversion(arg bound.Node, t1, t2 symbols.Type, c1, c2 conversions.Conversion) int {
	if t1 == nil || t2 == nil || symbols.Identical(t1, t2) {
		return 0
	}
	e1, e2 := r.exactMatch(arg, t1), r.exactMatch(arg, t2)
	switch {
	case e1 && !e2:
		return 1
	case e2 && !e1:
		return -1
	}
	if lambda, ok := arg.(*bound.UnboundLambda); ok {
		if res := r.betterLambdaTarget(lambda, t1, t2); res != 0 {
			return res
		}
	}
	if res := r.betterTarget(t1, t2); res != 0 {
		return res
	}
	l1, l2 := c1.IsNullableLift(), c2.IsNullableLift()
	switch {
	case !l1 && l2:
		return 1
	case l1 && !l2:
		return -1
	}
	return 0
}

// exactMatch reports whether arg has exactly type t. A lambda matches a
// delegate type whose return type is the lambda's inferred return type.
func (r *Resolver) exactMatch(arg bound.Node, t symbols.Type) bool {
	switch arg := arg.(type) {
	case bound.Expr:
		return symbols.Identical(arg.Type(), t)
	case *bound.UnboundLambda:
		d, _ := t.(*symbols.NamedType)
		invoke := r.tab.DelegateInvoke(d)
		if invoke == nil {
			return false
		}
		ret := arg.InferReturnType(paramTypes(invoke))
		if symbols.IsVoid(invoke.Type) {
			return ret == nil || symbols.IsVoid(ret)
		}
		return ret != nil && symbols.Identical(ret, invoke.Type)
	case *bound.UnconvertedTuple:
		tt, ok := t.(*symbols.TupleType)
		if !ok || len(tt.Elems) != len(arg.Elements) {
			return false
		}
		for i, e := range arg.Elements {
			if !r.exactMatch(e, tt.Elems[i]) {
				return false
			}
		}
		return true
	}
	return false
}

func paramTypes(m *symbols.Symbol) []symbols.Type {
	out := make([]symbols.Type, len(m.Params))
	for i, p := range m.Params {
		out[i] = p.Type
	}
	return out
}

// betterLambdaTarget compares two delegate targets of a lambda with the
// same parameter types by their return types.
func (r *Resolver) betterLambdaTarget(lambda *bound.UnboundLambda, t1, t2 symbols.Type) int {
	d1, _ := t1.(*symbols.NamedType)
	d2, _ := t2.(*symbols.NamedType)
	i1, i2 := r.tab.DelegateInvoke(d1), r.tab.DelegateInvoke(d2)
	if i1 == nil || i2 == nil || len(i1.Params) != len(i2.Params) {
		return 0
	}
	for k := range i1.Params {
		if !symbols.Identical(i1.Params[k].Type, i2.Params[k].Type) {
			return 0
		}
	}
	v1, v2 := symbols.IsVoid(i1.Type), symbols.IsVoid(i2.Type)
	ret := lambda.InferReturnType(paramTypes(i1))
	switch {
	case ret == nil:
		return 0
	case !v1 && v2:
		return 1
	case v1 && !v2:
		return -1
	case v1 && v2:
		return 0
	}
	return r.betterTarget(i1.Type, i2.Type)
}

// betterTarget prefers the type that converts to the other, then signed
// integral types over unsigned ones.
func (r *Resolver) betterTarget(t1, t2 symbols.Type) int {
	if symbols.Identical(t1, t2) {
		return 0
	}
	c12 := r.conv.ClassifyImplicitTypes(t1, t2).Exists()
	c21 := r.conv.ClassifyImplicitTypes(t2, t1).Exists()
	switch {
	case c12 && !c21:
		return 1
	case c21 && !c12:
		return -1
	}
	s1, s2 := symbols.SpecialOf(t1), symbols.SpecialOf(t2)
	switch {
	case s1.IsSignedIntegral() && s2.IsUnsignedIntegral():
		return 1
	case s2.IsSignedIntegral() && s1.IsUnsignedIntegral():
		return -1
	}
	if u1, u2 := symbols.NullableUnderlying(t1), symbols.NullableUnderlying(t2); u1 != nil && u2 != nil {
		return r.betterTarget(u1, u2)
	}
	return 0
}

// tieBreak applies, in order: normal form over expanded form, the member
// of the more derived type, non-generic over generic, all arguments
// supplied over defaults substituted, and more specific declared
// parameter types.
func (r *Resolver) tieBreak(a, b *MemberResult, args *Arguments) int {
	if a.Expanded != b.Expanded {
		if !a.Expanded {
			return 1
		}
		return -1
	}
	ta, tb := r.tab.ContainingType(a.Member), r.tab.ContainingType(b.Member)
	if ta != nil && tb != nil && !symbols.Identical(ta, tb) {
		switch {
		case derives(ta, tb):
			return 1
		case derives(tb, ta):
			return -1
		}
	}
	ga, gb := a.Member.OriginalDefinition().IsGenericMethod(), b.Member.OriginalDefinition().IsGenericMethod()
	if ga != gb {
		if !ga {
			return 1
		}
		return -1
	}
	if a.DefaultsUsed != b.DefaultsUsed {
		if !a.DefaultsUsed {
			return 1
		}
		return -1
	}
	return moreSpecificParams(a, b, args)
}

func derives(t, base *symbols.NamedType) bool {
	if base.TypeKind == symbols.TypeInterface {
		return symbols.ImplementsInterface(t, base)
	}
	return symbols.IsDerivedFrom(t, base)
}

// moreSpecificParams compares the declared (unsubstituted) parameter
// types of a and b.
func moreSpecificParams(a, b *MemberResult, args *Arguments) int {
	da, db := a.Member.OriginalDefinition(), b.Member.OriginalDefinition()
	aMore, bMore := false, false
	for i := range args.Args {
		pa, pb := declaredParamType(da, a, i), declaredParamType(db, b, i)
		if pa == nil || pb == nil {
			return 0
		}
		switch specificity(pa, pb) {
		case 1:
			aMore = true
		case -1:
			bMore = true
		}
	}
	switch {
	case aMore && !bMore:
		return 1
	case bMore && !aMore:
		return -1
	}
	return 0
}

func declaredParamType(def *symbols.Symbol, m *MemberResult, i int) symbols.Type {
	if i >= len(m.ArgsToParams) || m.ArgsToParams[i] >= len(def.Params) {
		return nil
	}
	p := def.Params[m.ArgsToParams[i]]
	if m.Expanded && m.ArgsToParams[i] == len(def.Params)-1 {
		return symbols.ElementType(p.Type)
	}
	return p.Type
}

// specificity: a type parameter is less specific than any other type, and
// constructed types compare by their type arguments.
func specificity(a, b symbols.Type) int {
	_, ta := a.(*symbols.TypeParameter)
	_, tb := b.(*symbols.TypeParameter)
	switch {
	case ta && !tb:
		return -1
	case tb && !ta:
		return 1
	case ta && tb:
		return 0
	}
	var as, bs []symbols.Type
	switch a := a.(type) {
	case *symbols.ArrayType:
		b, ok := b.(*symbols.ArrayType)
		if !ok {
			return 0
		}
		return specificity(a.Elem, b.Elem)
	case *symbols.NullableType:
		b, ok := b.(*symbols.NullableType)
		if !ok {
			return 0
		}
		return specificity(a.Underlying, b.Underlying)
	case *symbols.TupleType:
		b, ok := b.(*symbols.TupleType)
		if !ok || len(a.Elems) != len(b.Elems) {
			return 0
		}
		as, bs = a.Elems, b.Elems
	case *symbols.NamedType:
		b, ok := b.(*symbols.NamedType)
		if !ok || a.OriginalDefinition() != b.OriginalDefinition() || len(a.TypeArgs) != len(b.TypeArgs) {
			return 0
		}
		as, bs = a.TypeArgs, b.TypeArgs
	default:
		return 0
	}
	more, less := false, false
	for i := range as {
		switch specificity(as[i], bs[i]) {
		case 1:
			more = true
		case -1:
			less = true
		}
	}
	switch {
	case more && !less:
		return 1
	case less && !more:
		return -1
	}
	return 0
}
