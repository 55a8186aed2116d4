// Copyright © 2024 The ELPS authors

package symbols

import (
	"strings"

	"github.com/luthersystems/sembind/contract"
)

// Member names with special meaning.
const (
	ConstructorName = ".ctor"
	IndexerName     = "this[]"
	InvokeName      = "Invoke"
	ImplicitName    = "op_Implicit"
	ExplicitName    = "op_Explicit"
)

// CoreModule is the module that declares the special and well-known types.
const CoreModule = "corlib"

// Registry provides the predefined types.
type Registry interface {
	// Special returns a special type; every table provides all of them.
	Special(st SpecialType) *NamedType
	// WellKnown returns a well-known library type or nil when the table
	// does not declare it.
	WellKnown(wk WellKnownType) *NamedType
}

// Table owns every symbol of a compilation in an arena indexed by ID.
// A Table is mutable while it is being built and read-only after Freeze;
// a frozen Table is safe for concurrent use.
type Table struct {
	// Module is the name of the module being bound. Internal members are
	// accessible only from the same module.
	Module string

	arena     []*Symbol
	global    *Symbol
	special   [specialCount]*NamedType
	wellKnown [wellKnownCount]*NamedType
	frozen    bool
}

var _ Registry = (*Table)(nil)

// NewTable returns a table for module that declares the special types and
// the well-known library types.
func NewTable(module string) *Table {
	t := NewBareTable(module)
	t.addWellKnownTypes()
	return t
}

// NewBareTable returns a table that declares only the special types.
func NewBareTable(module string) *Table {
	t := &Table{Module: module}
	t.arena = []*Symbol{nil}
	t.global = &Symbol{Kind: SymNamespace, Name: "", members: newMemberSet()}
	t.register(t.global)
	t.addSpecialTypes()
	return t
}

func (t *Table) register(sym *Symbol) ID {
	contract.Assertf(!t.frozen, "symbol %q added to a frozen table", sym.Name)
	sym.ID = ID(len(t.arena))
	t.arena = append(t.arena, sym)
	return sym.ID
}

// Freeze marks the table read-only.
func (t *Table) Freeze() {
	t.frozen = true
}

// Frozen reports whether Freeze was called.
func (t *Table) Frozen() bool {
	return t.frozen
}

// Symbol resolves an arena handle. It returns nil for NoID.
func (t *Table) Symbol(id ID) *Symbol {
	if id <= NoID || int(id) >= len(t.arena) {
		return nil
	}
	return t.arena[id]
}

// Symbols returns every symbol in declaration order.
func (t *Table) Symbols() []*Symbol {
	return t.arena[1:]
}

// Container returns the symbol that declares sym, or nil.
func (t *Table) Container(sym *Symbol) *Symbol {
	return t.Symbol(sym.OriginalDefinition().Container)
}

// ContainingType returns the type that declares sym (the constructed type
// for substituted members), or nil for namespace members, locals and
// synthesized operators.
func (t *Table) ContainingType(sym *Symbol) *NamedType {
	if sym == nil {
		return nil
	}
	if sym.constructedIn != nil {
		return sym.constructedIn
	}
	for s := sym; s != nil; s = s.Definition {
		if s.constructedIn != nil {
			return s.constructedIn
		}
	}
	c := t.Container(sym)
	if c == nil || c.Kind != SymType {
		return nil
	}
	nt, _ := c.Declared.(*NamedType)
	return nt
}

// TypeSymbol returns the declaring symbol of a named type.
func (t *Table) TypeSymbol(nt *NamedType) *Symbol {
	return t.Symbol(nt.OriginalDefinition().Symbol)
}

// Global returns the root namespace.
func (t *Table) Global() *Symbol {
	return t.global
}

// Namespace returns the namespace with the dotted path, creating it and
// its parents when the table is not frozen. The empty path is the global
// namespace.
func (t *Table) Namespace(path string) *Symbol {
	ns := t.global
	if path == "" {
		return ns
	}
	for _, part := range strings.Split(path, ".") {
		var next *Symbol
		for _, m := range ns.members.named(part) {
			if m.Kind == SymNamespace {
				next = m
				break
			}
		}
		if next == nil {
			next = &Symbol{Kind: SymNamespace, Name: part, Container: ns.ID, members: newMemberSet()}
			t.register(next)
			ns.members.add(next)
		}
		ns = next
	}
	return ns
}

// LookupNamespace returns the namespace with the dotted path or nil.
func (t *Table) LookupNamespace(path string) *Symbol {
	ns := t.global
	if path == "" {
		return ns
	}
	for _, part := range strings.Split(path, ".") {
		var next *Symbol
		for _, m := range ns.members.named(part) {
			if m.Kind == SymNamespace {
				next = m
				break
			}
		}
		if next == nil {
			return nil
		}
		ns = next
	}
	return ns
}

// NamespaceName returns the dotted path of a namespace symbol.
func (t *Table) NamespaceName(ns *Symbol) string {
	var parts []string
	for s := ns; s != nil && s != t.global; s = t.Symbol(s.Container) {
		parts = append(parts, s.Name)
	}
	for i, j := 0, len(parts)-1; i < j; i, j = i+1, j-1 {
		parts[i], parts[j] = parts[j], parts[i]
	}
	return strings.Join(parts, ".")
}

// DeclareType declares a named type in the namespace ns with the given
// type parameter names.
func (t *Table) DeclareType(ns string, name string, kind TypeKind, typeParams ...string) *NamedType {
	nsSym := t.Namespace(ns)
	nt := &NamedType{
		Name:      name,
		Namespace: ns,
		TypeKind:  kind,
		members:   newMemberSet(),
	}
	sym := &Symbol{
		Kind:      SymType,
		Name:      name,
		Container: nsSym.ID,
		Module:    t.Module,
		Declared:  nt,
	}
	t.register(sym)
	nt.Symbol = sym.ID
	for i, tpName := range typeParams {
		nt.TypeParams = append(nt.TypeParams, &TypeParameter{Name: tpName, Ordinal: i, Owner: sym.ID})
	}
	nsSym.members.add(sym)
	return nt
}

// AddMember declares sym as a member of owner and returns it. Parameter
// ordinals and method type parameter owners are filled in.
func (t *Table) AddMember(owner *NamedType, sym *Symbol) *Symbol {
	owner = owner.OriginalDefinition()
	sym.Container = owner.Symbol
	if sym.Module == "" {
		if ts := t.Symbol(owner.Symbol); ts != nil {
			sym.Module = ts.Module
		}
	}
	t.register(sym)
	for i, p := range sym.Params {
		p.Ordinal = i
	}
	for i, tp := range sym.TypeParams {
		tp.Ordinal = i
		tp.Owner = sym.ID
	}
	owner.members.add(sym)
	return sym
}

// AddLocal registers a local variable or scope parameter symbol that
// belongs to no type. The caller defines it in a Scope.
func (t *Table) AddLocal(sym *Symbol) *Symbol {
	if sym.Module == "" {
		sym.Module = t.Module
	}
	t.register(sym)
	return sym
}

// MembersOf returns the members of nt named name. For constructed types
// the members are substituted with nt's type arguments.
func (t *Table) MembersOf(nt *NamedType, name string) []*Symbol {
	decl := nt.DeclaredMembersNamed(name)
	if nt.Definition == nil || len(decl) == 0 {
		return decl
	}
	out := make([]*Symbol, len(decl))
	for i, m := range decl {
		out[i] = SubstituteMember(m, nt)
	}
	return out
}

// AllMembersOf returns every declared member of nt, substituted for
// constructed types.
func (t *Table) AllMembersOf(nt *NamedType) []*Symbol {
	decl := nt.DeclaredMembers()
	if nt.Definition == nil {
		return decl
	}
	out := make([]*Symbol, len(decl))
	for i, m := range decl {
		out[i] = SubstituteMember(m, nt)
	}
	return out
}

// DelegateInvoke returns the Invoke method of a delegate type, substituted
// for constructed delegates, or nil.
func (t *Table) DelegateInvoke(nt *NamedType) *Symbol {
	if nt == nil || nt.TypeKind != TypeDelegate {
		return nil
	}
	for _, m := range t.MembersOf(nt, InvokeName) {
		if m.Kind == SymMethod {
			return m
		}
	}
	return nil
}

// LookupType finds a type declared in namespace ns by name and arity.
func (t *Table) LookupType(ns string, name string, arity int) *NamedType {
	nsSym := t.LookupNamespace(ns)
	if nsSym == nil {
		return nil
	}
	for _, m := range nsSym.members.named(name) {
		if m.Kind != SymType {
			continue
		}
		if nt, ok := m.Declared.(*NamedType); ok && len(nt.TypeParams) == arity {
			return nt
		}
	}
	return nil
}

// Special implements Registry.
func (t *Table) Special(st SpecialType) *NamedType {
	if int(st) >= len(t.special) {
		return nil
	}
	return t.special[st]
}

// WellKnown implements Registry.
func (t *Table) WellKnown(wk WellKnownType) *NamedType {
	if int(wk) >= len(t.wellKnown) {
		return nil
	}
	return t.wellKnown[wk]
}

// SetWellKnown registers nt as the well-known type wk, replacing any
// previous registration. A nil nt removes the registration.
func (t *Table) SetWellKnown(wk WellKnownType, nt *NamedType) {
	contract.Assertf(!t.frozen, "well-known type %v changed on a frozen table", wk)
	if int(wk) < len(t.wellKnown) {
		t.wellKnown[wk] = nt
	}
}

// WellKnownOf reports which well-known type t's definition is, if any.
func (t *Table) WellKnownOf(typ Type) WellKnownType {
	nt, ok := typ.(*NamedType)
	if !ok {
		return WellKnownNone
	}
	def := nt.OriginalDefinition()
	for i, wk := range t.wellKnown {
		if wk != nil && wk == def {
			return WellKnownType(i)
		}
	}
	return WellKnownNone
}
