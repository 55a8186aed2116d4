// Copyright © 2024 The ELPS authors

package symbols

import "github.com/luthersystems/sembind/syntax"

// ScopeKind classifies the kind of scope.
type ScopeKind int

const (
	ScopeGlobal    ScopeKind = iota // compilation root
	ScopeNamespace                  // namespace body with using directives
	ScopeType                       // type body: members are in scope
	ScopeMethod                     // method body: parameters and type parameters
	ScopeLambda                     // lambda body: lambda parameters
	ScopeBlock                      // block: locals
)

func (k ScopeKind) String() string {
	switch k {
	case ScopeGlobal:
		return "global"
	case ScopeNamespace:
		return "namespace"
	case ScopeType:
		return "type"
	case ScopeMethod:
		return "method"
	case ScopeLambda:
		return "lambda"
	case ScopeBlock:
		return "block"
	default:
		return "unknown"
	}
}

// Scope is one level of the lexical scope chain an expression is bound in.
// Scopes are built before binding and are read-only afterwards, except for
// lambda scopes which the binder creates per bind.
type Scope struct {
	Kind     ScopeKind
	Parent   *Scope
	Children []*Scope
	// Symbols holds locals, parameters and type parameters declared
	// directly in this scope.
	Symbols map[string][]*Symbol
	// Namespace is the namespace whose members are visible in a namespace
	// or global scope.
	Namespace *Symbol
	// Usings are namespaces imported into a namespace scope. Their types
	// are visible and their extension members are searched.
	Usings []*Symbol
	// Type is the enclosing type of a type scope.
	Type *NamedType
	// Member is the enclosing method of a method scope.
	Member *Symbol
	// Node is the syntax that introduced a lambda scope.
	Node syntax.Expr
}

// NewScope creates a new scope of the given kind with the given parent.
func NewScope(kind ScopeKind, parent *Scope) *Scope {
	s := &Scope{
		Kind:    kind,
		Parent:  parent,
		Symbols: make(map[string][]*Symbol),
	}
	if parent != nil {
		parent.Children = append(parent.Children, s)
	}
	return s
}

// NewDetachedScope creates a scope whose parent does not record it as a
// child. The binder uses detached scopes for lambda bodies so that binding
// never mutates a shared scope chain.
func NewDetachedScope(kind ScopeKind, parent *Scope) *Scope {
	return &Scope{
		Kind:    kind,
		Parent:  parent,
		Symbols: make(map[string][]*Symbol),
	}
}

// Define adds a symbol to this scope.
func (s *Scope) Define(sym *Symbol) {
	s.Symbols[sym.Name] = append(s.Symbols[sym.Name], sym)
}

// LookupLocal returns the symbols declared directly in this scope.
func (s *Scope) LookupLocal(name string) []*Symbol {
	return s.Symbols[name]
}

// Lookup resolves declared symbols (locals, parameters, type parameters)
// by walking the parent chain. Members of types and namespaces are not
// consulted; see package lookup for full name resolution.
func (s *Scope) Lookup(name string) []*Symbol {
	for scope := s; scope != nil; scope = scope.Parent {
		if syms := scope.Symbols[name]; len(syms) > 0 {
			return syms
		}
	}
	return nil
}

// EnclosingType returns the innermost type of a type scope on the chain.
func (s *Scope) EnclosingType() *NamedType {
	for scope := s; scope != nil; scope = scope.Parent {
		if scope.Kind == ScopeType && scope.Type != nil {
			return scope.Type
		}
	}
	return nil
}

// EnclosingMember returns the innermost method of a method scope on the
// chain.
func (s *Scope) EnclosingMember() *Symbol {
	for scope := s; scope != nil; scope = scope.Parent {
		if scope.Kind == ScopeMethod && scope.Member != nil {
			return scope.Member
		}
	}
	return nil
}

// IsNamespaceLevel reports whether s contributes an extension member scope.
func (s *Scope) IsNamespaceLevel() bool {
	return s.Kind == ScopeNamespace || s.Kind == ScopeGlobal
}

// ExtensionContainers returns the static types that declare extension
// members and are visible at this namespace level: types of the scope's own
// namespace first, then types of each using directive in order.
func (s *Scope) ExtensionContainers() []*NamedType {
	var out []*NamedType
	add := func(ns *Symbol) {
		if ns == nil {
			return
		}
		for _, m := range ns.NamespaceMembers() {
			nt, ok := m.Declared.(*NamedType)
			if m.Kind != SymType || !ok || !nt.Static {
				continue
			}
			if declaresExtensions(nt) {
				out = append(out, nt)
			}
		}
	}
	add(s.Namespace)
	for _, u := range s.Usings {
		add(u)
	}
	return out
}

func declaresExtensions(nt *NamedType) bool {
	for _, m := range nt.DeclaredMembers() {
		if m.Extension {
			return true
		}
	}
	return false
}
