// Copyright © 2024 The ELPS authors

// Package lookup resolves simple names through the lexical scope chain,
// member names through type hierarchies, and extension members through the
// namespace-level scopes that import them.
package lookup

import (
	"github.com/luthersystems/sembind/diagnostic"
	"github.com/luthersystems/sembind/symbols"
)

// ResultKind classifies the outcome of a lookup. Kinds are ordered: when
// several lookups are combined, the greater kind wins, so Viable beats
// every failure and more specific failures beat Empty.
type ResultKind uint8

const (
	Empty ResultKind = iota
	NotATypeOrNamespace
	WrongArity
	NotCreatable
	Inaccessible
	NotAValue
	NotInvocable
	StaticInstanceMismatch
	OverloadResolutionFailure
	Ambiguous
	Viable
)

func (k ResultKind) String() string {
	switch k {
	case Empty:
		return "empty"
	case NotATypeOrNamespace:
		return "not-a-type-or-namespace"
	case WrongArity:
		return "wrong-arity"
	case NotCreatable:
		return "not-creatable"
	case Inaccessible:
		return "inaccessible"
	case NotAValue:
		return "not-a-value"
	case NotInvocable:
		return "not-invocable"
	case StaticInstanceMismatch:
		return "static-instance-mismatch"
	case OverloadResolutionFailure:
		return "overload-resolution-failure"
	case Ambiguous:
		return "ambiguous"
	case Viable:
		return "viable"
	default:
		return "unknown"
	}
}

// Result is the outcome of one lookup: a kind, the candidate symbols in
// declaration order and, for failures, the diagnostic that explains them.
// Results are plain values owned by the caller.
type Result struct {
	Kind    ResultKind
	Symbols []*symbols.Symbol
	// Code and Args describe the failure; Code is zero for viable
	// results.
	Code diagnostic.Code
	Args []any
}

// IsViable reports whether the lookup found usable symbols.
func (r Result) IsViable() bool {
	return r.Kind == Viable
}

// IsClear reports whether nothing at all was found.
func (r Result) IsClear() bool {
	return r.Kind == Empty && len(r.Symbols) == 0
}

// Single returns the only symbol of the result, or nil.
func (r Result) Single() *symbols.Symbol {
	if len(r.Symbols) == 1 {
		return r.Symbols[0]
	}
	return nil
}

// IsMethodGroup reports whether every symbol is a method.
func (r Result) IsMethodGroup() bool {
	if len(r.Symbols) == 0 {
		return false
	}
	for _, s := range r.Symbols {
		if s.Kind != symbols.SymMethod {
			return false
		}
	}
	return true
}

// Diagnose returns the failure diagnostic of the result at span, and false
// when the result carries none.
func (r Result) Diagnose(span diagnostic.Span) (diagnostic.Diagnostic, bool) {
	if r.Code == 0 {
		return diagnostic.Diagnostic{}, false
	}
	return diagnostic.New(r.Code, span, r.Args...), true
}

// mergePrioritized keeps the better of r and other.
func (r *Result) mergePrioritized(other Result) {
	if other.Kind > r.Kind || (other.Kind == r.Kind && len(r.Symbols) == 0) {
		*r = other
	}
}

// mergeEqual keeps the better of r and other and unions the symbols when
// they are equally good.
func (r *Result) mergeEqual(other Result) {
	switch {
	case other.Kind > r.Kind:
		*r = other
	case other.Kind == r.Kind && len(other.Symbols) > 0:
		syms := make([]*symbols.Symbol, 0, len(r.Symbols)+len(other.Symbols))
		syms = append(syms, r.Symbols...)
		syms = append(syms, other.Symbols...)
		r.Symbols = syms
		if r.Code == 0 {
			r.Code, r.Args = other.Code, other.Args
		}
	}
}

func viable(sym *symbols.Symbol) Result {
	return Result{Kind: Viable, Symbols: []*symbols.Symbol{sym}}
}

func failure(kind ResultKind, sym *symbols.Symbol, code diagnostic.Code, args ...any) Result {
	return Result{Kind: kind, Symbols: []*symbols.Symbol{sym}, Code: code, Args: args}
}
