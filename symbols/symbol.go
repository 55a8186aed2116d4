// Copyright © 2024 The ELPS authors

// Package symbols is the symbol table consumed by the binder: declared
// namespaces, types and members, the lexical scope chain, and the registry
// of special and well-known types.
//
// A Table is built once (by package workspace or by tests) and frozen; the
// binder only reads it. Back-references from a symbol to its container are
// arena handles (ID) resolved through the Table rather than pointers.
package symbols

import (
	"go/constant"

	"github.com/luthersystems/sembind/syntax"
)

// ID is an arena handle for a Symbol owned by a Table. The zero ID refers to
// no symbol.
type ID int32

// NoID is the zero handle.
const NoID ID = 0

// Kind classifies a symbol.
type Kind int

const (
	SymNamespace Kind = iota
	SymType
	SymTypeParameter
	SymMethod
	SymProperty
	SymField
	SymLocal
	SymParameter
)

func (k Kind) String() string {
	switch k {
	case SymNamespace:
		return "namespace"
	case SymType:
		return "type"
	case SymTypeParameter:
		return "type parameter"
	case SymMethod:
		return "method"
	case SymProperty:
		return "property"
	case SymField:
		return "field"
	case SymLocal:
		return "local"
	case SymParameter:
		return "parameter"
	default:
		return "unknown"
	}
}

// MethodKind refines SymMethod symbols.
type MethodKind uint8

const (
	MethodOrdinary MethodKind = iota
	MethodConstructor
	MethodOperator
	MethodImplicitConversion
	MethodExplicitConversion
	MethodDelegateInvoke
	// MethodBuiltinOperator marks synthesized predefined operator
	// signatures. They have no container.
	MethodBuiltinOperator
)

// Accessibility is the declared accessibility of a member or type.
type Accessibility uint8

const (
	Public Accessibility = iota
	Internal
	Protected
	ProtectedInternal
	Private
)

func (a Accessibility) String() string {
	switch a {
	case Public:
		return "public"
	case Internal:
		return "internal"
	case Protected:
		return "protected"
	case ProtectedInternal:
		return "protected internal"
	case Private:
		return "private"
	default:
		return "unknown"
	}
}

// ParseAccessibility maps a keyword to an Accessibility.
func ParseAccessibility(s string) (Accessibility, bool) {
	switch s {
	case "", "public":
		return Public, true
	case "internal":
		return Internal, true
	case "protected":
		return Protected, true
	case "protected internal":
		return ProtectedInternal, true
	case "private":
		return Private, true
	}
	return Public, false
}

// CallerInfo marks optional parameters whose default is replaced by call
// site information.
type CallerInfo uint8

const (
	CallerNone CallerInfo = iota
	CallerLineNumber
	CallerFilePath
	CallerMemberName
)

// Obsolete is use-site information attached to deprecated symbols.
type Obsolete struct {
	Message string
	IsError bool
}

// Parameter is a formal parameter of a method, indexer or delegate.
type Parameter struct {
	Name    string
	Ordinal int
	Type    Type
	RefKind syntax.RefKind
	// IsParams marks a trailing parameter array.
	IsParams   bool
	HasDefault bool
	// Default is the constant default value; nil with HasDefault means the
	// default value of the parameter type (null for reference types).
	Default    constant.Value
	CallerInfo CallerInfo
	Source     *syntax.Location
}

// IsOptional reports whether the parameter may be omitted at a call site.
func (p *Parameter) IsOptional() bool {
	return p.HasDefault || p.CallerInfo != CallerNone
}

// Symbol is a declared entity.
type Symbol struct {
	ID        ID
	Kind      Kind
	Name      string
	Container ID
	Module    string
	Access    Accessibility
	Static    bool

	MethodKind MethodKind
	Abstract   bool
	Virtual    bool
	// Overrides is the overridden member for override methods and
	// properties.
	Overrides ID
	// Extension marks extension methods and properties; their first
	// parameter is the receiver.
	Extension bool

	// Type is the value type of fields, properties, locals and parameters
	// and the return type of methods.
	Type       Type
	Params     []*Parameter
	TypeParams []*TypeParameter
	// TypeArgs is set on constructed generic methods.
	TypeArgs []Type
	// Definition is the original declaration of a constructed or
	// substituted symbol and nil for declarations.
	Definition *Symbol
	// Declared is the type introduced by SymType and SymTypeParameter
	// symbols.
	Declared Type
	// Param links SymParameter scope symbols to their formal parameter.
	Param *Parameter
	// Constant is the value of const fields and locals.
	Constant constant.Value
	Obsolete *Obsolete
	Source   *syntax.Location
	Doc      string

	members       *memberSet // namespaces
	constructedIn *NamedType
}

// OriginalDefinition returns the declaration sym was constructed from, or
// sym itself.
func (sym *Symbol) OriginalDefinition() *Symbol {
	for sym.Definition != nil {
		sym = sym.Definition
	}
	return sym
}

// IsGenericMethod reports whether sym declares type parameters.
func (sym *Symbol) IsGenericMethod() bool {
	return sym.Kind == SymMethod && len(sym.TypeParams) > 0
}

// Arity returns the number of type parameters of a method or type symbol.
func (sym *Symbol) Arity() int {
	if sym.Kind == SymType {
		if nt, ok := sym.Declared.(*NamedType); ok {
			return len(nt.TypeParams)
		}
		return 0
	}
	return len(sym.TypeParams)
}

// HasParamsArray reports whether the last parameter is a params array.
func (sym *Symbol) HasParamsArray() bool {
	n := len(sym.Params)
	if n == 0 || !sym.Params[n-1].IsParams {
		return false
	}
	_, ok := sym.Params[n-1].Type.(*ArrayType)
	return ok
}

// IsIndexer reports whether sym is an indexer. Extension properties also
// carry a parameter (the receiver) but are not indexers.
func (sym *Symbol) IsIndexer() bool {
	return sym.Kind == SymProperty && sym.Name == IndexerName
}

// IsValue reports whether sym denotes a value (as opposed to a type,
// namespace or method group).
func (sym *Symbol) IsValue() bool {
	switch sym.Kind {
	case SymField, SymProperty, SymLocal, SymParameter:
		return true
	}
	return false
}

// IsInstance reports whether sym is accessed through an instance receiver.
func (sym *Symbol) IsInstance() bool {
	switch sym.Kind {
	case SymMethod, SymProperty, SymField:
		return !sym.Static && sym.MethodKind != MethodConstructor
	}
	return false
}

// ConstructedIn returns the constructed type a substituted member was
// obtained from, or nil for declarations.
func (sym *Symbol) ConstructedIn() *NamedType {
	return sym.constructedIn
}

// memberSet is an ordered, name-indexed member list.
type memberSet struct {
	list   []*Symbol
	byName map[string][]*Symbol
}

func newMemberSet() *memberSet {
	return &memberSet{byName: make(map[string][]*Symbol)}
}

func (m *memberSet) add(sym *Symbol) {
	m.list = append(m.list, sym)
	m.byName[sym.Name] = append(m.byName[sym.Name], sym)
}

func (m *memberSet) named(name string) []*Symbol {
	if m == nil {
		return nil
	}
	return m.byName[name]
}

func (m *memberSet) all() []*Symbol {
	if m == nil {
		return nil
	}
	return m.list
}

// NamespaceMembers returns the types and nested namespaces of a namespace
// symbol in declaration order.
func (sym *Symbol) NamespaceMembers() []*Symbol {
	return sym.members.all()
}

// NamespaceMembersNamed returns the types and namespaces named name.
func (sym *Symbol) NamespaceMembersNamed(name string) []*Symbol {
	return sym.members.named(name)
}
