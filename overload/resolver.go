// Copyright © 2024 The ELPS authors

// Package overload selects the member a call site invokes.
//
// Resolution runs in stages over an ordered candidate list: duplicate
// removal, type argument substitution or inference, applicability in
// normal form and then in expanded form for params methods, betterness,
// tie-breaking and final validation of the winner. Every stage is dry:
// argument conversions are classified through an ArgumentClassifier that
// never reports diagnostics, so resolution can run speculatively. The
// outcome is deterministic for a given candidate order.
package overload

import (
	"github.com/luthersystems/sembind/bound"
	"github.com/luthersystems/sembind/conversions"
	"github.com/luthersystems/sembind/lookup"
	"github.com/luthersystems/sembind/symbols"
	"github.com/luthersystems/sembind/syntax"
)

// ArgumentClassifier classifies the implicit conversion of a bound
// argument, resolved or pending, to a parameter type. Implementations must
// not report diagnostics or retain state between calls.
type ArgumentClassifier interface {
	ClassifyArgument(arg bound.Node, target symbols.Type) conversions.Conversion
}

// ReceiverKind describes how the member is being accessed.
type ReceiverKind uint8

const (
	// ReceiverNone means no static or instance check applies, as for
	// constructors and operators.
	ReceiverNone ReceiverKind = iota
	// ReceiverInstance is an explicit instance receiver.
	ReceiverInstance
	// ReceiverType is a type name receiver: only static members apply.
	ReceiverType
	// ReceiverImplicitThis is an unqualified name in an instance context.
	ReceiverImplicitThis
	// ReceiverStaticContext is an unqualified name in a static context.
	ReceiverStaticContext
)

// Context carries the per-call-site inputs that are not arguments.
type Context struct {
	// Within is the type whose code contains the call site, for
	// accessibility.
	Within   *symbols.NamedType
	Receiver ReceiverKind
	// TypeArgs are explicit method type arguments; nil means infer.
	TypeArgs []symbols.Type
	// Extension marks extension method invocations. Args[0] is the
	// receiver, which converts only by identity, reference or boxing.
	Extension bool
	// DelegateConversion restricts parameter conversions to identity
	// and implicit reference, as for method group conversions.
	DelegateConversion bool
}

// Resolver performs overload resolution. It is immutable and safe for
// concurrent use.
type Resolver struct {
	tab    *symbols.Table
	conv   *conversions.Classifier
	lookup *lookup.Resolver
	args   ArgumentClassifier
	ops    *predefinedOperators
}

// NewResolver returns a resolver that classifies arguments with args.
func NewResolver(tab *symbols.Table, conv *conversions.Classifier, lk *lookup.Resolver, args ArgumentClassifier) *Resolver {
	return &Resolver{
		tab:    tab,
		conv:   conv,
		lookup: lk,
		args:   args,
		ops:    newPredefinedOperators(tab),
	}
}

// Resolve chooses among candidates for args.
func (r *Resolver) Resolve(candidates []*symbols.Symbol, args *Arguments, ctx Context) Result {
	res := Result{BestIndex: -1, Members: make([]MemberResult, len(candidates))}
	for i, c := range candidates {
		res.Members[i] = MemberResult{
			Member:          c,
			LeastOverridden: r.leastOverridden(c),
			BadParameter:    -1,
		}
	}
	r.removeDuplicates(res.Members)
	for i := range res.Members {
		m := &res.Members[i]
		if m.Kind == MemberDuplicate {
			continue
		}
		r.checkApplicable(m, args, ctx)
	}
	r.chooseBest(&res, args)
	if res.Kind == Succeeded {
		r.validate(&res, ctx)
	}
	return res
}

// leastOverridden follows override links to the original virtual
// declaration.
func (r *Resolver) leastOverridden(m *symbols.Symbol) *symbols.Symbol {
	cur := m
	seen := 0
	for cur.OriginalDefinition().Overrides != symbols.NoID && seen < 64 {
		next := r.tab.Symbol(cur.OriginalDefinition().Overrides)
		if next == nil {
			break
		}
		cur = next
		seen++
	}
	return cur
}

// removeDuplicates marks candidates that appear twice or whose override
// is also present.
func (r *Resolver) removeDuplicates(members []MemberResult) {
	for i := range members {
		mi := members[i].Member
		for j := range members {
			if i == j || members[j].Kind == MemberDuplicate {
				continue
			}
			mj := members[j].Member
			if j < i && sameCandidate(mi, mj) {
				members[i].Kind = MemberDuplicate
				break
			}
			if overrides(mj, mi) {
				members[i].Kind = MemberDuplicate
				break
			}
		}
	}
}

func sameCandidate(a, b *symbols.Symbol) bool {
	if a == b {
		return true
	}
	if a.OriginalDefinition() != b.OriginalDefinition() {
		return false
	}
	if len(a.Params) != len(b.Params) {
		return false
	}
	for i := range a.Params {
		if !symbols.Identical(a.Params[i].Type, b.Params[i].Type) {
			return false
		}
	}
	return true
}

// overrides reports whether derived directly overrides base.
func overrides(derived, base *symbols.Symbol) bool {
	o := derived.OriginalDefinition().Overrides
	return o != symbols.NoID && o == base.OriginalDefinition().ID
}

// refCompatible reports whether an argument passed with ak may bind to a
// parameter declared with pk.
func refCompatible(ak, pk syntax.RefKind) bool {
	return ak == pk || (pk == syntax.RefIn && ak == syntax.RefNone)
}
