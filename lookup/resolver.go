// Copyright © 2024 The ELPS authors

package lookup

import (
	"github.com/luthersystems/sembind/conversions"
	"github.com/luthersystems/sembind/diagnostic"
	"github.com/luthersystems/sembind/symbols"
)

// Options refine a lookup.
type Options uint8

const (
	// OptMustBeInvocable accepts only methods and delegate-typed values.
	OptMustBeInvocable Options = 1 << iota
	// OptStaticOnly rejects instance fields and properties. Instance
	// methods stay in the group; overload resolution rejects them later.
	OptStaticOnly
	// OptTypesOnly accepts only types, type parameters and namespaces.
	OptTypesOnly
	// OptArityZeroFallback retries a lookup with type arguments as a
	// lookup without them when only arity mismatches were found.
	OptArityZeroFallback
	// OptMethodsOnly ignores every symbol that is not a method.
	OptMethodsOnly
)

// Resolver looks up names. It holds only read-only collaborators and may
// be shared by concurrent binds.
type Resolver struct {
	tab  *symbols.Table
	conv *conversions.Classifier
}

// NewResolver returns a resolver over tab.
func NewResolver(tab *symbols.Table, conv *conversions.Classifier) *Resolver {
	return &Resolver{tab: tab, conv: conv}
}

// LookupSymbols resolves a simple name from scope outward. Within each
// scope, declared locals, parameters and type parameters are found before
// type members, and namespace members before types imported by using
// directives. The first scope with a viable result ends the search;
// otherwise the most specific failure seen is returned.
func (r *Resolver) LookupSymbols(scope *symbols.Scope, name string, arity int, opts Options, within *symbols.NamedType) Result {
	res := r.lookupSymbols(scope, name, arity, opts, within)
	if res.Kind == WrongArity && arity > 0 && opts&OptArityZeroFallback != 0 {
		if zero := r.lookupSymbols(scope, name, 0, opts, within); zero.IsViable() {
			return zero
		}
	}
	if res.Kind == Empty && res.Code == 0 {
		res.Code, res.Args = diagnostic.ErrNameNotFound, []any{name}
		if opts&OptTypesOnly != 0 {
			res.Code = diagnostic.ErrTypeNotFound
		}
	}
	return res
}

func (r *Resolver) lookupSymbols(scope *symbols.Scope, name string, arity int, opts Options, within *symbols.NamedType) Result {
	var best Result
	for s := scope; s != nil; s = s.Parent {
		res := r.lookupInScope(s, name, arity, opts, within)
		if res.IsViable() || res.Kind == Ambiguous {
			return res
		}
		best.mergePrioritized(res)
	}
	return best
}

func (r *Resolver) lookupInScope(s *symbols.Scope, name string, arity int, opts Options, within *symbols.NamedType) Result {
	res := r.checkAll(name, s.LookupLocal(name), arity, opts, within)
	if res.IsViable() {
		return res
	}
	switch s.Kind {
	case symbols.ScopeType:
		if s.Type != nil {
			res.mergePrioritized(r.LookupMembers(s.Type, name, arity, opts, within))
		}
	case symbols.ScopeNamespace, symbols.ScopeGlobal:
		if s.Namespace != nil {
			res.mergePrioritized(r.checkAll(name, s.Namespace.NamespaceMembersNamed(name), arity, opts, within))
			if res.IsViable() {
				return res
			}
		}
		var imported Result
		for _, u := range s.Usings {
			var types []*symbols.Symbol
			for _, m := range u.NamespaceMembersNamed(name) {
				if m.Kind == symbols.SymType {
					types = append(types, m)
				}
			}
			imported.mergeEqual(r.checkAll(name, types, arity, opts, within))
		}
		if imported.IsViable() && len(imported.Symbols) > 1 {
			imported = r.ambiguous(name, imported.Symbols)
		}
		res.mergePrioritized(imported)
	}
	return res
}

// LookupMembers finds the members named name of t and its base types. A
// member hides every same-named member of its base types, except that
// methods accumulate: a base method stays in the group unless a derived
// method overrides it or hides it with an identical signature.
func (r *Resolver) LookupMembers(t symbols.Type, name string, arity int, opts Options, within *symbols.NamedType) Result {
	res := r.checkAll(name, r.MemberCandidates(t, name), arity, opts, within)
	if res.Kind == Empty && res.Code == 0 {
		res.Code, res.Args = diagnostic.ErrMemberNotFound, []any{t.String(), name}
	}
	return res
}

// checkAll checks each symbol for viability and combines the results.
// Several viable symbols that are not all methods are ambiguous.
func (r *Resolver) checkAll(name string, syms []*symbols.Symbol, arity int, opts Options, within *symbols.NamedType) Result {
	var res Result
	for _, sym := range syms {
		res.mergeEqual(r.checkViability(sym, arity, opts, within))
	}
	if res.IsViable() && len(res.Symbols) > 1 && !res.IsMethodGroup() {
		return r.ambiguous(name, res.Symbols)
	}
	return res
}

func (r *Resolver) ambiguous(name string, syms []*symbols.Symbol) Result {
	return Result{
		Kind:    Ambiguous,
		Symbols: syms,
		Code:    diagnostic.ErrAmbiguousName,
		Args:    []any{name, r.tab.DisplayString(syms[0]), r.tab.DisplayString(syms[1])},
	}
}

func (r *Resolver) checkViability(sym *symbols.Symbol, arity int, opts Options, within *symbols.NamedType) Result {
	if opts&OptMethodsOnly != 0 && sym.Kind != symbols.SymMethod {
		return Result{}
	}
	if opts&OptTypesOnly != 0 {
		switch sym.Kind {
		case symbols.SymType, symbols.SymNamespace, symbols.SymTypeParameter:
		default:
			return failure(NotATypeOrNamespace, sym, diagnostic.ErrNotAValue, sym.Name, sym.Kind.String())
		}
	}
	switch sym.Kind {
	case symbols.SymType:
		if sym.Arity() != arity {
			return failure(WrongArity, sym, diagnostic.ErrWrongArity, "type", sym.Name, arity)
		}
	case symbols.SymMethod:
		// A method looked up without type arguments may still have its
		// type arguments inferred.
		if arity > 0 && sym.Arity() != arity {
			return failure(WrongArity, sym, diagnostic.ErrWrongArity, "method", sym.Name, arity)
		}
	default:
		if arity > 0 {
			return failure(WrongArity, sym, diagnostic.ErrWrongArity, sym.Kind.String(), sym.Name, arity)
		}
	}
	if opts&OptMustBeInvocable != 0 && !r.isInvocable(sym) {
		return failure(NotInvocable, sym, diagnostic.ErrNotInvocable, r.tab.DisplayString(sym))
	}
	if !r.IsAccessible(sym, within) {
		return failure(Inaccessible, sym, diagnostic.ErrInaccessible, r.tab.DisplayString(sym))
	}
	if opts&OptStaticOnly != 0 && sym.IsInstance() && sym.Kind != symbols.SymMethod {
		return failure(StaticInstanceMismatch, sym, diagnostic.ErrInstanceRequired, r.tab.DisplayString(sym))
	}
	return viable(sym)
}

func (r *Resolver) isInvocable(sym *symbols.Symbol) bool {
	if sym.Kind == symbols.SymMethod {
		return true
	}
	return sym.IsValue() && symbols.IsDelegate(sym.Type)
}

// IsAccessible reports whether sym may be used from code inside within
// (nil for code outside any type) in the table's module.
func (r *Resolver) IsAccessible(sym *symbols.Symbol, within *symbols.NamedType) bool {
	sym = sym.OriginalDefinition()
	switch sym.Kind {
	case symbols.SymLocal, symbols.SymParameter, symbols.SymTypeParameter, symbols.SymNamespace:
		return true
	}
	if sym.MethodKind == symbols.MethodBuiltinOperator {
		return true
	}
	declaring := r.tab.ContainingType(sym)
	if declaring != nil {
		declaring = declaring.OriginalDefinition()
		if ts := r.tab.TypeSymbol(declaring); ts != nil && !r.IsAccessible(ts, within) {
			return false
		}
	}
	internal := sym.Module == "" || sym.Module == r.tab.Module
	switch sym.Access {
	case symbols.Public:
		return true
	case symbols.Internal:
		return internal
	case symbols.Private:
		return within != nil && declaring != nil && within.OriginalDefinition() == declaring
	case symbols.Protected:
		return r.derivesFrom(within, declaring)
	case symbols.ProtectedInternal:
		return internal || r.derivesFrom(within, declaring)
	}
	return false
}

// derivesFrom reports whether within is base or derives from it.
func (r *Resolver) derivesFrom(within, base *symbols.NamedType) bool {
	if within == nil || base == nil {
		return false
	}
	for cur := within; cur != nil; cur = cur.BaseType() {
		if cur.OriginalDefinition() == base {
			return true
		}
	}
	return false
}

// MemberCandidates returns the members named name visible on t after
// hiding, most derived first.
func (r *Resolver) MemberCandidates(t symbols.Type, name string) []*symbols.Symbol {
	var out []*symbols.Symbol
	for _, nt := range r.TypeChain(t) {
		level := r.tab.MembersOf(nt, name)
		if len(level) == 0 {
			continue
		}
		foundBefore := len(out) > 0
		addedNonMethod := false
		for _, m := range level {
			if m.Kind != symbols.SymMethod {
				if foundBefore {
					continue
				}
				out = append(out, m)
				addedNonMethod = true
				continue
			}
			if r.hiddenBy(m, out) {
				continue
			}
			out = append(out, m)
		}
		if addedNonMethod {
			break
		}
	}
	return out
}

// hiddenBy reports whether base method m is overridden or hidden by one of
// the already collected members.
func (r *Resolver) hiddenBy(m *symbols.Symbol, found []*symbols.Symbol) bool {
	mdef := m.OriginalDefinition()
	for _, f := range found {
		if f.Kind != symbols.SymMethod {
			continue
		}
		for o := r.tab.Symbol(f.OriginalDefinition().Overrides); o != nil; o = r.tab.Symbol(o.Overrides) {
			if o.ID == mdef.ID {
				return true
			}
		}
		if SameSignature(f, m) {
			return true
		}
	}
	return false
}

// SameSignature reports whether two methods have the same arity and
// identical parameter types and ref kinds.
func SameSignature(a, b *symbols.Symbol) bool {
	if len(a.Params) != len(b.Params) || a.Arity() != b.Arity() {
		return false
	}
	for i := range a.Params {
		pa, pb := a.Params[i], b.Params[i]
		if pa.RefKind != pb.RefKind {
			return false
		}
		ta, tb := pa.Type, pb.Type
		// Method type parameters match by position.
		if tpa, ok := ta.(*symbols.TypeParameter); ok {
			if tpb, ok := tb.(*symbols.TypeParameter); ok && tpa.Ordinal == tpb.Ordinal &&
				tpa.Owner == a.OriginalDefinition().ID && tpb.Owner == b.OriginalDefinition().ID {
				continue
			}
		}
		if !symbols.Identical(ta, tb) {
			return false
		}
	}
	return true
}

// TypeChain returns the types whose members are visible on t, most
// derived first: the class chain, then implemented interfaces for
// interfaces and type parameters, then object.
func (r *Resolver) TypeChain(t symbols.Type) []*symbols.NamedType {
	var out []*symbols.NamedType
	add := func(nt *symbols.NamedType) {
		if nt == nil {
			return
		}
		for _, seen := range out {
			if symbols.Identical(seen, nt) {
				return
			}
		}
		out = append(out, nt)
	}
	addClassChain := func(nt *symbols.NamedType) {
		for cur := nt; cur != nil; cur = cur.BaseType() {
			add(cur)
		}
	}
	object := r.tab.Special(symbols.SpecialObject)
	switch t := t.(type) {
	case *symbols.NamedType:
		if t.TypeKind == symbols.TypeInterface {
			add(t)
			for _, it := range t.AllInterfaces() {
				add(it)
			}
			add(object)
			break
		}
		addClassChain(t)
	case *symbols.TypeParameter:
		var ifaces []*symbols.NamedType
		for _, ct := range t.ConstraintTypes {
			nt, ok := ct.(*symbols.NamedType)
			if !ok {
				continue
			}
			if nt.TypeKind == symbols.TypeInterface {
				ifaces = append(ifaces, nt)
				ifaces = append(ifaces, nt.AllInterfaces()...)
				continue
			}
			addClassChain(nt)
		}
		for _, it := range ifaces {
			add(it)
		}
		add(object)
	case *symbols.ArrayType:
		addClassChain(r.tab.Special(symbols.SpecialArray))
	case *symbols.NullableType, *symbols.TupleType:
		addClassChain(r.tab.Special(symbols.SpecialValueType))
	}
	return out
}
