// Copyright © 2024 The ELPS authors

package overload

import (
	"github.com/luthersystems/sembind/symbols"
)

// validate checks the chosen candidate for accessibility, static or
// instance access and type argument constraints.
func (r *Resolver) validate(res *Result, ctx Context) {
	best := res.Best()
	m := best.Member
	switch {
	case !r.lookup.IsAccessible(m, ctx.Within):
		best.Kind = MemberInaccessible
	case staticMismatch(m, ctx):
		best.Kind = MemberStaticInstanceMismatch
	default:
		if tp := r.failedConstraint(best); tp != nil {
			best.Kind = MemberConstraintFailure
			best.BadTypeParameter = tp
		}
	}
	if best.Kind != MemberApplicable {
		res.Kind = FailedFinalValidation
	}
}

func staticMismatch(m *symbols.Symbol, ctx Context) bool {
	if ctx.Extension || m.MethodKind == symbols.MethodConstructor || m.MethodKind == symbols.MethodBuiltinOperator {
		return false
	}
	switch ctx.Receiver {
	case ReceiverType, ReceiverStaticContext:
		return m.IsInstance()
	case ReceiverInstance:
		return m.Static
	}
	return false
}

// failedConstraint returns the first method type parameter whose type
// argument violates its constraints.
func (r *Resolver) failedConstraint(m *MemberResult) *symbols.TypeParameter {
	tps := m.Member.TypeParams
	if len(tps) == 0 || len(m.TypeArgs) != len(tps) {
		return nil
	}
	subst := symbols.NewSubstitution(tps, m.TypeArgs)
	for i, tp := range tps {
		if !r.conv.SatisfiesConstraintsIn(tp, m.TypeArgs[i], subst) {
			return tp
		}
	}
	return nil
}

// TypeArgumentFor returns the type argument supplied for tp.
func (m *MemberResult) TypeArgumentFor(tp *symbols.TypeParameter) symbols.Type {
	for i, p := range m.Member.TypeParams {
		if p == tp && i < len(m.TypeArgs) {
			return m.TypeArgs[i]
		}
	}
	return nil
}
