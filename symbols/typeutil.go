// Copyright © 2024 The ELPS authors

package symbols

// SpecialOf returns the special type of t, or SpecialNone.
func SpecialOf(t Type) SpecialType {
	if nt, ok := t.(*NamedType); ok {
		return nt.Special
	}
	return SpecialNone
}

// IsNumeric reports whether st is one of the predefined numeric types
// (integral, floating point or decimal). Char is not numeric.
func (st SpecialType) IsNumeric() bool {
	return st >= SpecialSByte && st <= SpecialDecimal
}

// IsIntegral reports whether st is an integral type, including char.
func (st SpecialType) IsIntegral() bool {
	return st == SpecialChar || (st >= SpecialSByte && st <= SpecialUInt64)
}

// IsSignedIntegral reports whether st is sbyte, short, int or long.
func (st SpecialType) IsSignedIntegral() bool {
	switch st {
	case SpecialSByte, SpecialInt16, SpecialInt32, SpecialInt64:
		return true
	}
	return false
}

// IsUnsignedIntegral reports whether st is byte, ushort, uint or ulong.
func (st SpecialType) IsUnsignedIntegral() bool {
	switch st {
	case SpecialByte, SpecialUInt16, SpecialUInt32, SpecialUInt64:
		return true
	}
	return false
}

// IsFloating reports whether st is float or double.
func (st SpecialType) IsFloating() bool {
	return st == SpecialSingle || st == SpecialDouble
}

// IsNumericType reports whether t is a predefined numeric type.
func IsNumericType(t Type) bool {
	return SpecialOf(t).IsNumeric()
}

// IsVoid reports whether t is void.
func IsVoid(t Type) bool {
	return SpecialOf(t) == SpecialVoid
}

// IsObject reports whether t is object.
func IsObject(t Type) bool {
	return SpecialOf(t) == SpecialObject
}

// IsString reports whether t is string.
func IsString(t Type) bool {
	return SpecialOf(t) == SpecialString
}

// IsEnum reports whether t is an enum type.
func IsEnum(t Type) bool {
	nt, ok := t.(*NamedType)
	return ok && nt.TypeKind == TypeEnum
}

// IsInterface reports whether t is an interface type.
func IsInterface(t Type) bool {
	nt, ok := t.(*NamedType)
	return ok && nt.TypeKind == TypeInterface
}

// IsDelegate reports whether t is a delegate type.
func IsDelegate(t Type) bool {
	nt, ok := t.(*NamedType)
	return ok && nt.TypeKind == TypeDelegate
}

// IsNullable reports whether t is T? for a value type T.
func IsNullable(t Type) bool {
	_, ok := t.(*NullableType)
	return ok
}

// NullableUnderlying returns T for T?, or nil.
func NullableUnderlying(t Type) Type {
	if n, ok := t.(*NullableType); ok {
		return n.Underlying
	}
	return nil
}

// IsValueType reports whether t is known to be a value type.
func IsValueType(t Type) bool {
	switch t := t.(type) {
	case *NamedType:
		return t.TypeKind == TypeStruct || t.TypeKind == TypeEnum
	case *NullableType, *TupleType:
		return true
	case *TypeParameter:
		return t.ValueConstraint
	}
	return false
}

// IsReferenceType reports whether t is known to be a reference type.
func IsReferenceType(t Type) bool {
	switch t := t.(type) {
	case *NamedType:
		switch t.TypeKind {
		case TypeClass, TypeInterface, TypeDelegate:
			return true
		}
	case *ArrayType:
		return true
	case *TypeParameter:
		if t.ReferenceConstraint {
			return true
		}
		for _, c := range t.ConstraintTypes {
			if nt, ok := c.(*NamedType); ok && nt.TypeKind == TypeClass &&
				nt.Special != SpecialObject && nt.Special != SpecialValueType {
				return true
			}
		}
	}
	return false
}

// CanBeNull reports whether null converts to t.
func CanBeNull(t Type) bool {
	return IsReferenceType(t) || IsNullable(t)
}

// IsDerivedFrom reports whether the class chain of t includes base
// (t itself excluded).
func IsDerivedFrom(t *NamedType, base *NamedType) bool {
	if t == nil || base == nil {
		return false
	}
	for cur := t.BaseType(); cur != nil; cur = cur.BaseType() {
		if Identical(cur, base) {
			return true
		}
	}
	return false
}

// ImplementsInterface reports whether t implements iface, directly or
// indirectly.
func ImplementsInterface(t *NamedType, iface *NamedType) bool {
	for _, it := range t.AllInterfaces() {
		if Identical(it, iface) {
			return true
		}
	}
	return false
}

// EnumUnderlyingOf returns the underlying integral type of an enum.
func EnumUnderlyingOf(t Type) *NamedType {
	if nt, ok := t.(*NamedType); ok && nt.TypeKind == TypeEnum {
		return nt.OriginalDefinition().EnumUnderlying
	}
	return nil
}

// ElementType returns the element type of an array type, or nil.
func ElementType(t Type) Type {
	if at, ok := t.(*ArrayType); ok {
		return at.Elem
	}
	return nil
}
