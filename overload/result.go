// Copyright © 2024 The ELPS authors

package overload

import (
	"github.com/luthersystems/sembind/conversions"
	"github.com/luthersystems/sembind/lookup"
	"github.com/luthersystems/sembind/symbols"
)

// ResultKind is the outcome of overload resolution.
type ResultKind uint8

const (
	Succeeded ResultKind = iota
	Ambiguous
	NoApplicableCandidate
	FailedFinalValidation
)

func (k ResultKind) String() string {
	switch k {
	case Succeeded:
		return "succeeded"
	case Ambiguous:
		return "ambiguous"
	case NoApplicableCandidate:
		return "no-applicable-candidate"
	case FailedFinalValidation:
		return "failed-final-validation"
	default:
		return "unknown"
	}
}

// MemberKind classifies one candidate after resolution.
type MemberKind uint8

const (
	// MemberApplicable is an applicable candidate that lost nothing yet.
	MemberApplicable MemberKind = iota
	// MemberWorse is applicable but another candidate is better.
	MemberWorse
	// MemberDuplicate was removed as an overridden duplicate.
	MemberDuplicate
	MemberWrongArity
	MemberNoCorrespondingParameter
	MemberNoCorrespondingNamedParameter
	MemberNameUsedForPositional
	MemberBadNonTrailingNamed
	MemberRequiredParameterMissing
	MemberTypeInferenceFailed
	MemberBadArgumentConversion
	MemberBadArgRefKind
	// Final validation failures of the best candidate.
	MemberInaccessible
	MemberStaticInstanceMismatch
	MemberConstraintFailure
)

var memberKindNames = [...]string{
	MemberApplicable:                    "applicable",
	MemberWorse:                         "worse",
	MemberDuplicate:                     "duplicate",
	MemberWrongArity:                    "wrong-arity",
	MemberNoCorrespondingParameter:      "no-corresponding-parameter",
	MemberNoCorrespondingNamedParameter: "no-corresponding-named-parameter",
	MemberNameUsedForPositional:         "name-used-for-positional",
	MemberBadNonTrailingNamed:           "bad-non-trailing-named",
	MemberRequiredParameterMissing:      "required-parameter-missing",
	MemberTypeInferenceFailed:           "type-inference-failed",
	MemberBadArgumentConversion:         "bad-argument-conversion",
	MemberBadArgRefKind:                 "bad-arg-ref-kind",
	MemberInaccessible:                  "inaccessible",
	MemberStaticInstanceMismatch:        "static-instance-mismatch",
	MemberConstraintFailure:             "constraint-failure",
}

func (k MemberKind) String() string {
	if int(k) < len(memberKindNames) {
		return memberKindNames[k]
	}
	return "unknown"
}

// IsApplicable reports whether the candidate passed applicability.
func (k MemberKind) IsApplicable() bool {
	return k == MemberApplicable || k == MemberWorse || k >= MemberInaccessible
}

// MemberResult is the resolution state of one candidate.
type MemberResult struct {
	// Member is the candidate with inferred or explicit type arguments
	// substituted.
	Member *symbols.Symbol
	// LeastOverridden is the virtual declaration the candidate overrides,
	// or the candidate itself.
	LeastOverridden *symbols.Symbol
	Kind            MemberKind
	// ArgsToParams maps each argument to a parameter ordinal of Member.
	ArgsToParams []int
	// Conversions holds the conversion of each argument to its parameter
	// type; it is complete only for applicable candidates.
	Conversions []conversions.Conversion
	Expanded    bool
	TypeArgs    []symbols.Type
	// DefaultsUsed is set when an optional parameter was not supplied.
	DefaultsUsed bool
	// BadArguments lists the arguments that failed to convert or had the
	// wrong ref kind.
	BadArguments []int
	// BadParameter is the missing required parameter, or -1.
	BadParameter int
	// BadTypeParameter is the type parameter that failed its constraints.
	BadTypeParameter *symbols.TypeParameter
}

// ParamType returns the type argument i is converted to: the element type
// for arguments collected into the params array in expanded form.
func (m *MemberResult) ParamType(i int) symbols.Type {
	p := m.Param(i)
	if p == nil {
		return nil
	}
	if m.Expanded && m.ArgsToParams[i] == len(m.Member.Params)-1 {
		return symbols.ElementType(p.Type)
	}
	return p.Type
}

// Param returns the parameter argument i is bound to.
func (m *MemberResult) Param(i int) *symbols.Parameter {
	if i >= len(m.ArgsToParams) {
		return nil
	}
	p := m.ArgsToParams[i]
	if p < 0 || p >= len(m.Member.Params) {
		return nil
	}
	return m.Member.Params[p]
}

// Result is the outcome of resolving one call site.
type Result struct {
	Kind ResultKind
	// Members holds a result per candidate in candidate order.
	Members []MemberResult
	// BestIndex is the index of the chosen candidate in Members, or -1.
	BestIndex int
	// AmbiguousIndexes lists the undominated candidates when Kind is
	// Ambiguous.
	AmbiguousIndexes []int
}

// Succeeded reports whether a single valid candidate was chosen.
func (r *Result) Succeeded() bool {
	return r.Kind == Succeeded
}

// Best returns the chosen candidate, which exists for Succeeded and
// FailedFinalValidation results.
func (r *Result) Best() *MemberResult {
	if r.BestIndex < 0 || r.BestIndex >= len(r.Members) {
		return nil
	}
	return &r.Members[r.BestIndex]
}

// Candidates returns the symbols worth keeping on an error node: the
// ambiguous candidates, the chosen one that failed validation, or every
// candidate otherwise.
func (r *Result) Candidates() []*symbols.Symbol {
	switch r.Kind {
	case Succeeded, FailedFinalValidation:
		if b := r.Best(); b != nil {
			return []*symbols.Symbol{b.Member}
		}
	case Ambiguous:
		out := make([]*symbols.Symbol, len(r.AmbiguousIndexes))
		for i, idx := range r.AmbiguousIndexes {
			out[i] = r.Members[idx].Member
		}
		return out
	}
	out := make([]*symbols.Symbol, 0, len(r.Members))
	for _, m := range r.Members {
		if m.Kind != MemberDuplicate {
			out = append(out, m.Member)
		}
	}
	return out
}

// HasApplicable reports whether any candidate passed applicability.
func (r *Result) HasApplicable() bool {
	for _, m := range r.Members {
		if m.Kind.IsApplicable() {
			return true
		}
	}
	return false
}

// LookupKind maps the outcome to the classification kept on error nodes.
func (r *Result) LookupKind() lookup.ResultKind {
	switch r.Kind {
	case Succeeded:
		return lookup.Viable
	case Ambiguous:
		return lookup.Ambiguous
	case FailedFinalValidation:
		switch r.Best().Kind {
		case MemberInaccessible:
			return lookup.Inaccessible
		case MemberStaticInstanceMismatch:
			return lookup.StaticInstanceMismatch
		}
	}
	return lookup.OverloadResolutionFailure
}
