// Copyright © 2024 The ELPS authors

package symbols

import (
	"strings"
)

// Type is a semantic type. The set of implementations is closed.
type Type interface {
	String() string
	isType()
}

// TypeKind classifies named types.
type TypeKind uint8

const (
	TypeClass TypeKind = iota
	TypeStruct
	TypeInterface
	TypeEnum
	TypeDelegate
)

func (k TypeKind) String() string {
	switch k {
	case TypeClass:
		return "class"
	case TypeStruct:
		return "struct"
	case TypeInterface:
		return "interface"
	case TypeEnum:
		return "enum"
	case TypeDelegate:
		return "delegate"
	default:
		return "unknown"
	}
}

// SpecialType identifies the predefined types every table provides.
type SpecialType uint8

const (
	SpecialNone SpecialType = iota
	SpecialObject
	SpecialString
	SpecialBool
	SpecialChar
	SpecialSByte
	SpecialByte
	SpecialInt16
	SpecialUInt16
	SpecialInt32
	SpecialUInt32
	SpecialInt64
	SpecialUInt64
	SpecialSingle
	SpecialDouble
	SpecialDecimal
	SpecialVoid
	SpecialValueType
	SpecialEnum
	SpecialDelegate
	SpecialArray
	specialCount
)

var specialNames = [...]struct{ keyword, metadata string }{
	SpecialNone:      {"", ""},
	SpecialObject:    {"object", "Object"},
	SpecialString:    {"string", "String"},
	SpecialBool:      {"bool", "Boolean"},
	SpecialChar:      {"char", "Char"},
	SpecialSByte:     {"sbyte", "SByte"},
	SpecialByte:      {"byte", "Byte"},
	SpecialInt16:     {"short", "Int16"},
	SpecialUInt16:    {"ushort", "UInt16"},
	SpecialInt32:     {"int", "Int32"},
	SpecialUInt32:    {"uint", "UInt32"},
	SpecialInt64:     {"long", "Int64"},
	SpecialUInt64:    {"ulong", "UInt64"},
	SpecialSingle:    {"float", "Single"},
	SpecialDouble:    {"double", "Double"},
	SpecialDecimal:   {"decimal", "Decimal"},
	SpecialVoid:      {"void", "Void"},
	SpecialValueType: {"", "ValueType"},
	SpecialEnum:      {"", "Enum"},
	SpecialDelegate:  {"", "Delegate"},
	SpecialArray:     {"", "Array"},
}

// Keyword returns the language keyword of a special type, or "".
func (st SpecialType) Keyword() string {
	if int(st) < len(specialNames) {
		return specialNames[st].keyword
	}
	return ""
}

// SpecialTypeByKeyword maps a keyword such as "int" to its special type.
func SpecialTypeByKeyword(kw string) (SpecialType, bool) {
	for i, n := range specialNames {
		if n.keyword != "" && n.keyword == kw {
			return SpecialType(i), true
		}
	}
	return SpecialNone, false
}

// WellKnownType identifies library types the binder needs for
// pattern-based sugar. A table may omit any of them.
type WellKnownType uint8

const (
	WellKnownNone WellKnownType = iota
	WellKnownIEnumerable
	WellKnownIReadOnlyList
	WellKnownList
	WellKnownSpan
	WellKnownReadOnlySpan
	WellKnownIndex
	WellKnownRange
	WellKnownIFormattable
	WellKnownFormattableString
	wellKnownCount
)

var wellKnownNames = [...]string{
	WellKnownNone:              "",
	WellKnownIEnumerable:       "System.Collections.Generic.IEnumerable<T>",
	WellKnownIReadOnlyList:     "System.Collections.Generic.IReadOnlyList<T>",
	WellKnownList:              "System.Collections.Generic.List<T>",
	WellKnownSpan:              "System.Span<T>",
	WellKnownReadOnlySpan:      "System.ReadOnlySpan<T>",
	WellKnownIndex:             "System.Index",
	WellKnownRange:             "System.Range",
	WellKnownIFormattable:      "System.IFormattable",
	WellKnownFormattableString: "System.FormattableString",
}

func (wk WellKnownType) String() string {
	if int(wk) < len(wellKnownNames) {
		return wellKnownNames[wk]
	}
	return "unknown"
}

// ParseWellKnownType maps a short role name ("list", "span", ...) to a
// WellKnownType.
func ParseWellKnownType(role string) (WellKnownType, bool) {
	switch strings.ToLower(role) {
	case "ienumerable", "enumerable":
		return WellKnownIEnumerable, true
	case "ireadonlylist", "readonlylist":
		return WellKnownIReadOnlyList, true
	case "list":
		return WellKnownList, true
	case "span":
		return WellKnownSpan, true
	case "readonlyspan":
		return WellKnownReadOnlySpan, true
	case "index":
		return WellKnownIndex, true
	case "range":
		return WellKnownRange, true
	case "iformattable", "formattable":
		return WellKnownIFormattable, true
	case "formattablestring":
		return WellKnownFormattableString, true
	}
	return WellKnownNone, false
}

// NamedType is a class, struct, interface, enum or delegate type, either a
// declaration or a construction of a generic declaration.
type NamedType struct {
	Name      string
	Namespace string
	TypeKind  TypeKind
	Special   SpecialType
	// Symbol is the arena handle of the declaring type symbol.
	Symbol ID

	Base       *NamedType
	Interfaces []*NamedType
	TypeParams []*TypeParameter
	TypeArgs   []Type
	// Definition is the generic declaration of a constructed type and nil
	// for declarations.
	Definition *NamedType

	Static   bool
	Abstract bool
	// EnumUnderlying is the integral underlying type of an enum.
	EnumUnderlying *NamedType

	members *memberSet
}

func (*NamedType) isType() {}

// OriginalDefinition returns the generic declaration of t, or t itself.
func (t *NamedType) OriginalDefinition() *NamedType {
	if t.Definition != nil {
		return t.Definition
	}
	return t
}

// IsGenericDefinition reports whether t declares type parameters and is not
// constructed.
func (t *NamedType) IsGenericDefinition() bool {
	return t.Definition == nil && len(t.TypeParams) > 0
}

// IsConstructed reports whether t is a construction of a generic type.
func (t *NamedType) IsConstructed() bool {
	return t.Definition != nil
}

// Arity returns the number of type parameters of t.
func (t *NamedType) Arity() int {
	return len(t.OriginalDefinition().TypeParams)
}

func (t *NamedType) String() string {
	if kw := t.Special.Keyword(); kw != "" {
		return kw
	}
	var sb strings.Builder
	sb.WriteString(t.Name)
	switch {
	case len(t.TypeArgs) > 0:
		sb.WriteByte('<')
		for i, a := range t.TypeArgs {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(a.String())
		}
		sb.WriteByte('>')
	case len(t.TypeParams) > 0:
		sb.WriteByte('<')
		for i, p := range t.TypeParams {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(p.Name)
		}
		sb.WriteByte('>')
	}
	return sb.String()
}

// QualifiedName returns the namespace-qualified name of t.
func (t *NamedType) QualifiedName() string {
	if t.Namespace == "" || t.Special.Keyword() != "" {
		return t.String()
	}
	return t.Namespace + "." + t.String()
}

// substitution maps the type parameters of t's definition to its type
// arguments.
func (t *NamedType) substitution() Substitution {
	if t.Definition == nil {
		return nil
	}
	def := t.Definition
	m := make(Substitution, len(def.TypeParams))
	for i, tp := range def.TypeParams {
		if i < len(t.TypeArgs) {
			m[tp] = t.TypeArgs[i]
		}
	}
	return m
}

// BaseType returns the direct base class of t with type arguments
// substituted.
func (t *NamedType) BaseType() *NamedType {
	def := t.OriginalDefinition()
	if def.Base == nil || t.Definition == nil {
		return def.Base
	}
	b, _ := Substitute(def.Base, t.substitution()).(*NamedType)
	return b
}

// DirectInterfaces returns the declared interfaces of t with type arguments
// substituted.
func (t *NamedType) DirectInterfaces() []*NamedType {
	def := t.OriginalDefinition()
	if t.Definition == nil {
		return def.Interfaces
	}
	subst := t.substitution()
	out := make([]*NamedType, 0, len(def.Interfaces))
	for _, iface := range def.Interfaces {
		if it, ok := Substitute(iface, subst).(*NamedType); ok {
			out = append(out, it)
		}
	}
	return out
}

// AllInterfaces returns every interface t implements, directly or through
// base types and base interfaces, without duplicates and in a deterministic
// order.
func (t *NamedType) AllInterfaces() []*NamedType {
	var out []*NamedType
	var visit func(*NamedType)
	visit = func(it *NamedType) {
		for _, seen := range out {
			if Identical(seen, it) {
				return
			}
		}
		out = append(out, it)
		for _, b := range it.DirectInterfaces() {
			visit(b)
		}
	}
	for cur := t; cur != nil; cur = cur.BaseType() {
		for _, it := range cur.DirectInterfaces() {
			visit(it)
		}
	}
	return out
}

// DeclaredMembers returns the members declared directly in t's definition.
// Use Table.MembersOf to obtain members substituted for a constructed type.
func (t *NamedType) DeclaredMembers() []*Symbol {
	return t.OriginalDefinition().members.all()
}

// DeclaredMembersNamed returns the declared members of t's definition named
// name.
func (t *NamedType) DeclaredMembersNamed(name string) []*Symbol {
	return t.OriginalDefinition().members.named(name)
}

// ArrayType is a single or multi-dimensional array.
type ArrayType struct {
	Elem Type
	Rank int
}

func (*ArrayType) isType() {}

func (t *ArrayType) String() string {
	rank := t.Rank
	if rank < 1 {
		rank = 1
	}
	return t.Elem.String() + "[" + strings.Repeat(",", rank-1) + "]"
}

// NullableType is T? for a non-nullable value type T.
type NullableType struct {
	Underlying Type
}

func (*NullableType) isType() {}

func (t *NullableType) String() string {
	return t.Underlying.String() + "?"
}

// TupleType is a value tuple with optional element names.
type TupleType struct {
	Elems []Type
	Names []string
}

func (*TupleType) isType() {}

func (t *TupleType) String() string {
	var sb strings.Builder
	sb.WriteByte('(')
	for i, e := range t.Elems {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(e.String())
		if i < len(t.Names) && t.Names[i] != "" {
			sb.WriteByte(' ')
			sb.WriteString(t.Names[i])
		}
	}
	sb.WriteByte(')')
	return sb.String()
}

// TypeParameter is a type parameter of a generic type or method.
type TypeParameter struct {
	Name    string
	Ordinal int
	// Owner is the arena handle of the declaring method or type symbol.
	Owner ID

	ConstraintTypes       []Type
	ReferenceConstraint   bool
	ValueConstraint       bool
	ConstructorConstraint bool
}

func (*TypeParameter) isType() {}

func (t *TypeParameter) String() string {
	return t.Name
}

// ErrorType stands in for a type that could not be determined. It carries
// the name that failed to bind when there is one.
type ErrorType struct {
	Name string
}

func (*ErrorType) isType() {}

func (t *ErrorType) String() string {
	if t.Name == "" {
		return "?"
	}
	return t.Name
}

// IsErrorType reports whether t is nil or an *ErrorType, or is built from
// one.
func IsErrorType(t Type) bool {
	switch t := t.(type) {
	case nil:
		return true
	case *ErrorType:
		return true
	case *ArrayType:
		return IsErrorType(t.Elem)
	case *NullableType:
		return IsErrorType(t.Underlying)
	case *TupleType:
		for _, e := range t.Elems {
			if IsErrorType(e) {
				return true
			}
		}
	case *NamedType:
		for _, a := range t.TypeArgs {
			if IsErrorType(a) {
				return true
			}
		}
	}
	return false
}
