// Copyright © 2024 The ELPS authors

// Package conversions classifies conversions between types.
//
// Classification is always dry: a Classifier never reports diagnostics and
// never mutates anything, so overload resolution can call it speculatively
// for every candidate. Turning a classified Conversion into bound nodes
// (the materializing step) is done by the binder.
package conversions

import (
	"github.com/luthersystems/sembind/symbols"
)

// Kind classifies a conversion.
type Kind uint8

const (
	NoConversion Kind = iota
	Identity
	ImplicitNumeric
	// ImplicitConstant converts an integral constant to a smaller integral
	// type whose range contains the value.
	ImplicitConstant
	// ImplicitEnumeration converts the constant 0 to any enum type.
	ImplicitEnumeration
	ImplicitNullable
	NullLiteral
	DefaultLiteral
	ImplicitReference
	Boxing
	ImplicitUserDefined
	ImplicitTuple
	ImplicitTupleLiteral
	CollectionExpression
	InterpolatedString
	AnonymousFunction
	MethodGroup

	// Explicit-only conversions.
	ExplicitNumeric
	ExplicitReference
	Unboxing
	ExplicitNullable
	ExplicitEnumeration
	ExplicitUserDefined
	ExplicitTuple
)

var kindNames = [...]string{
	NoConversion:         "none",
	Identity:             "identity",
	ImplicitNumeric:      "implicit-numeric",
	ImplicitConstant:     "implicit-constant",
	ImplicitEnumeration:  "implicit-enumeration",
	ImplicitNullable:     "implicit-nullable",
	NullLiteral:          "null-literal",
	DefaultLiteral:       "default-literal",
	ImplicitReference:    "implicit-reference",
	Boxing:               "boxing",
	ImplicitUserDefined:  "implicit-user-defined",
	ImplicitTuple:        "implicit-tuple",
	ImplicitTupleLiteral: "implicit-tuple-literal",
	CollectionExpression: "collection-expression",
	InterpolatedString:   "interpolated-string",
	AnonymousFunction:    "anonymous-function",
	MethodGroup:          "method-group",
	ExplicitNumeric:      "explicit-numeric",
	ExplicitReference:    "explicit-reference",
	Unboxing:             "unboxing",
	ExplicitNullable:     "explicit-nullable",
	ExplicitEnumeration:  "explicit-enumeration",
	ExplicitUserDefined:  "explicit-user-defined",
	ExplicitTuple:        "explicit-tuple",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// Conversion is the result of classifying a conversion from a source
// expression or type to a target type.
type Conversion struct {
	Kind Kind
	// Method is the user-defined operator of user-defined conversions and
	// the selected method of method group conversions.
	Method *symbols.Symbol
	// Nested holds the underlying conversion of nullable conversions and
	// the element conversions of tuple and collection conversions.
	Nested []Conversion
	// Before and After are the standard conversions applied around a
	// user-defined operator.
	Before *Conversion
	After  *Conversion
	// Lifted marks user-defined conversions applied to nullable operands.
	Lifted bool
	// Ambiguous lists the operators of an ambiguous user-defined
	// conversion. Such a conversion does not exist.
	Ambiguous []*symbols.Symbol
}

// None is the absent conversion.
var None = Conversion{Kind: NoConversion}

// Of returns a conversion of kind k with no sub-conversions.
func Of(k Kind) Conversion {
	return Conversion{Kind: k}
}

// Exists reports whether the conversion exists.
func (c Conversion) Exists() bool {
	return c.Kind != NoConversion
}

// IsImplicit reports whether the conversion exists implicitly.
func (c Conversion) IsImplicit() bool {
	return c.Kind != NoConversion && c.Kind < ExplicitNumeric
}

// IsExplicit reports whether the conversion exists only explicitly.
func (c Conversion) IsExplicit() bool {
	return c.Kind >= ExplicitNumeric
}

// IsIdentity reports whether the conversion is the identity.
func (c Conversion) IsIdentity() bool {
	return c.Kind == Identity
}

// IsUserDefined reports whether the conversion calls a user-defined
// operator.
func (c Conversion) IsUserDefined() bool {
	return c.Kind == ImplicitUserDefined || c.Kind == ExplicitUserDefined
}

// IsNumeric reports whether the conversion is a numeric or constant
// conversion.
func (c Conversion) IsNumeric() bool {
	switch c.Kind {
	case ImplicitNumeric, ImplicitConstant, ExplicitNumeric:
		return true
	}
	return false
}

// IsNullableLift reports whether the conversion lifts an underlying
// conversion to nullable types.
func (c Conversion) IsNullableLift() bool {
	return c.Kind == ImplicitNullable || c.Kind == ExplicitNullable || c.Lifted
}

// IsBoxing reports whether the conversion boxes a value type.
func (c Conversion) IsBoxing() bool {
	return c.Kind == Boxing
}

// IsReference reports whether the conversion is a reference conversion.
func (c Conversion) IsReference() bool {
	return c.Kind == ImplicitReference || c.Kind == ExplicitReference
}

func (c Conversion) String() string {
	s := c.Kind.String()
	if c.Method != nil {
		s += "(" + c.Method.Name + ")"
	}
	return s
}
