// Copyright © 2024 The ELPS authors

package conversions

import (
	"go/constant"

	"github.com/luthersystems/sembind/symbols"
)

// Classifier classifies conversions between types and from constant
// values. It only reads the symbol table and is safe for concurrent use.
type Classifier struct {
	tab *symbols.Table
}

// NewClassifier returns a classifier over the types of tab.
func NewClassifier(tab *symbols.Table) *Classifier {
	return &Classifier{tab: tab}
}

// Table returns the symbol table the classifier reads.
func (c *Classifier) Table() *symbols.Table {
	return c.tab
}

// implicitNumeric lists, per source type, the targets of implicit numeric
// conversions.
var implicitNumeric = map[symbols.SpecialType][]symbols.SpecialType{
	symbols.SpecialSByte: {symbols.SpecialInt16, symbols.SpecialInt32, symbols.SpecialInt64,
		symbols.SpecialSingle, symbols.SpecialDouble, symbols.SpecialDecimal},
	symbols.SpecialByte: {symbols.SpecialInt16, symbols.SpecialUInt16, symbols.SpecialInt32,
		symbols.SpecialUInt32, symbols.SpecialInt64, symbols.SpecialUInt64,
		symbols.SpecialSingle, symbols.SpecialDouble, symbols.SpecialDecimal},
	symbols.SpecialInt16: {symbols.SpecialInt32, symbols.SpecialInt64,
		symbols.SpecialSingle, symbols.SpecialDouble, symbols.SpecialDecimal},
	symbols.SpecialUInt16: {symbols.SpecialInt32, symbols.SpecialUInt32, symbols.SpecialInt64,
		symbols.SpecialUInt64, symbols.SpecialSingle, symbols.SpecialDouble, symbols.SpecialDecimal},
	symbols.SpecialInt32: {symbols.SpecialInt64,
		symbols.SpecialSingle, symbols.SpecialDouble, symbols.SpecialDecimal},
	symbols.SpecialUInt32: {symbols.SpecialInt64, symbols.SpecialUInt64,
		symbols.SpecialSingle, symbols.SpecialDouble, symbols.SpecialDecimal},
	symbols.SpecialInt64:  {symbols.SpecialSingle, symbols.SpecialDouble, symbols.SpecialDecimal},
	symbols.SpecialUInt64: {symbols.SpecialSingle, symbols.SpecialDouble, symbols.SpecialDecimal},
	symbols.SpecialChar: {symbols.SpecialUInt16, symbols.SpecialInt32, symbols.SpecialUInt32,
		symbols.SpecialInt64, symbols.SpecialUInt64, symbols.SpecialSingle,
		symbols.SpecialDouble, symbols.SpecialDecimal},
	symbols.SpecialSingle: {symbols.SpecialDouble},
}

// HasImplicitNumeric reports whether an implicit numeric conversion exists
// between two special types.
func HasImplicitNumeric(from, to symbols.SpecialType) bool {
	for _, t := range implicitNumeric[from] {
		if t == to {
			return true
		}
	}
	return false
}

func isNumericOrChar(st symbols.SpecialType) bool {
	return st.IsNumeric() || st == symbols.SpecialChar
}

// HasIdentity reports whether an identity conversion exists between a and
// b.
func (c *Classifier) HasIdentity(a, b symbols.Type) bool {
	return symbols.Identical(a, b)
}

// IsImplicitReferenceOrIdentity reports whether from converts to to by an
// identity, implicit reference or boxing conversion. These are the
// conversions accepted for the receiver of an extension member.
func (c *Classifier) IsImplicitReferenceOrIdentity(from, to symbols.Type) bool {
	if symbols.Identical(from, to) {
		return true
	}
	if symbols.IsErrorType(from) || symbols.IsErrorType(to) {
		return false
	}
	return c.implicitReference(from, to) || c.boxing(from, to)
}

// ClassifyImplicitTypes classifies the implicit conversion from a value of
// type from to type to: standard conversions first, then user-defined.
func (c *Classifier) ClassifyImplicitTypes(from, to symbols.Type) Conversion {
	if conv := c.standardImplicit(from, to, nil); conv.Exists() {
		return conv
	}
	return c.userDefined(from, to, false)
}

// ClassifyStandardImplicit classifies the standard implicit conversions
// (everything but user-defined) from from to to.
func (c *Classifier) ClassifyStandardImplicit(from, to symbols.Type) Conversion {
	return c.standardImplicit(from, to, nil)
}

// ClassifyConstant classifies the implicit conversion of the constant v of
// type from to type to. Constant conversions narrow integral constants
// whose value fits the target, and convert zero to enum types.
func (c *Classifier) ClassifyConstant(v constant.Value, from, to symbols.Type) Conversion {
	if conv := c.standardImplicit(from, to, v); conv.Exists() {
		return conv
	}
	return c.userDefined(from, to, false)
}

// ClassifyExplicitTypes classifies a cast from from to to. Implicit
// conversions are also explicit.
func (c *Classifier) ClassifyExplicitTypes(from, to symbols.Type) Conversion {
	return c.ClassifyExplicitConstant(nil, from, to)
}

// ClassifyExplicitConstant is ClassifyExplicitTypes for a source whose
// constant value v is known (v may be nil).
func (c *Classifier) ClassifyExplicitConstant(v constant.Value, from, to symbols.Type) Conversion {
	if conv := c.standardImplicit(from, to, v); conv.Exists() {
		return conv
	}
	if conv := c.userDefined(from, to, false); conv.Exists() {
		return conv
	}
	if conv := c.standardExplicit(from, to); conv.Exists() {
		return conv
	}
	return c.userDefined(from, to, true)
}

func (c *Classifier) standardImplicit(from, to symbols.Type, v constant.Value) Conversion {
	if from == nil || to == nil {
		return None
	}
	if symbols.Identical(from, to) {
		return Of(Identity)
	}
	if symbols.IsErrorType(from) || symbols.IsErrorType(to) {
		return None
	}
	fs, ts := symbols.SpecialOf(from), symbols.SpecialOf(to)
	if HasImplicitNumeric(fs, ts) {
		return Of(ImplicitNumeric)
	}
	if v != nil {
		if k := constantConversion(v, fs, to); k != NoConversion {
			return Of(k)
		}
	}
	if c.implicitReference(from, to) {
		return Of(ImplicitReference)
	}
	if c.boxing(from, to) {
		return Of(Boxing)
	}
	if conv := c.implicitNullable(from, to, v); conv.Exists() {
		return conv
	}
	if conv := c.implicitTuple(from, to); conv.Exists() {
		return conv
	}
	return None
}

// constantConversion returns the implicit constant or enumeration
// conversion of v from fs to to, or NoConversion.
func constantConversion(v constant.Value, fs symbols.SpecialType, to symbols.Type) Kind {
	if v.Kind() != constant.Int {
		return NoConversion
	}
	if symbols.IsEnum(to) && fs.IsIntegral() && constant.Sign(v) == 0 {
		return ImplicitEnumeration
	}
	ts := symbols.SpecialOf(to)
	switch fs {
	case symbols.SpecialInt32:
		switch ts {
		case symbols.SpecialSByte, symbols.SpecialByte, symbols.SpecialInt16,
			symbols.SpecialUInt16, symbols.SpecialUInt32, symbols.SpecialUInt64:
			if FitsIntegral(v, ts) {
				return ImplicitConstant
			}
		}
	case symbols.SpecialInt64:
		if ts == symbols.SpecialUInt64 && constant.Sign(v) >= 0 {
			return ImplicitConstant
		}
	}
	return NoConversion
}

func (c *Classifier) implicitNullable(from, to symbols.Type, v constant.Value) Conversion {
	under := symbols.NullableUnderlying(to)
	if under == nil {
		return None
	}
	src := from
	if fu := symbols.NullableUnderlying(from); fu != nil {
		src = fu
		v = nil
	} else if !symbols.IsValueType(from) {
		return None
	}
	inner := c.standardImplicit(src, under, v)
	switch inner.Kind {
	case Identity, ImplicitNumeric, ImplicitConstant, ImplicitTuple:
		return Conversion{Kind: ImplicitNullable, Nested: []Conversion{inner}}
	}
	return None
}

func (c *Classifier) implicitTuple(from, to symbols.Type) Conversion {
	ft, ok1 := from.(*symbols.TupleType)
	tt, ok2 := to.(*symbols.TupleType)
	if !ok1 || !ok2 || len(ft.Elems) != len(tt.Elems) {
		return None
	}
	nested := make([]Conversion, len(ft.Elems))
	for i := range ft.Elems {
		nested[i] = c.ClassifyImplicitTypes(ft.Elems[i], tt.Elems[i])
		if !nested[i].Exists() {
			return None
		}
	}
	return Conversion{Kind: ImplicitTuple, Nested: nested}
}

// implicitReference reports whether an implicit reference conversion
// exists from from to to (identity excluded).
func (c *Classifier) implicitReference(from, to symbols.Type) bool {
	if !symbols.IsReferenceType(from) {
		return false
	}
	if symbols.IsObject(to) {
		return true
	}
	switch f := from.(type) {
	case *symbols.NamedType:
		t, ok := to.(*symbols.NamedType)
		if !ok {
			return false
		}
		switch t.TypeKind {
		case symbols.TypeClass:
			if f.TypeKind == symbols.TypeDelegate && t.Special == symbols.SpecialDelegate {
				return true
			}
			return f.TypeKind == symbols.TypeClass && symbols.IsDerivedFrom(f, t)
		case symbols.TypeInterface:
			return c.implementsVariant(f, t)
		}
	case *symbols.ArrayType:
		switch t := to.(type) {
		case *symbols.ArrayType:
			return f.Rank == t.Rank && symbols.IsReferenceType(f.Elem) &&
				(symbols.Identical(f.Elem, t.Elem) || c.implicitReference(f.Elem, t.Elem))
		case *symbols.NamedType:
			if t.Special == symbols.SpecialArray {
				return true
			}
			if f.Rank == 1 && t.TypeKind == symbols.TypeInterface && len(t.TypeArgs) == 1 && c.isCovariantSequence(t) {
				return symbols.Identical(f.Elem, t.TypeArgs[0]) ||
					(symbols.IsReferenceType(f.Elem) && c.implicitReference(f.Elem, t.TypeArgs[0]))
			}
		}
	case *symbols.TypeParameter:
		for _, ct := range f.ConstraintTypes {
			if symbols.Identical(ct, to) || c.implicitReference(ct, to) {
				return true
			}
		}
	}
	return false
}

// isCovariantSequence reports whether t is one of the covariant sequence
// interfaces arrays implement.
func (c *Classifier) isCovariantSequence(t *symbols.NamedType) bool {
	switch c.tab.WellKnownOf(t) {
	case symbols.WellKnownIEnumerable, symbols.WellKnownIReadOnlyList:
		return true
	}
	return false
}

// implementsVariant reports whether f is or implements an interface
// convertible to iface, honouring covariance of the sequence interfaces.
func (c *Classifier) implementsVariant(f, iface *symbols.NamedType) bool {
	candidates := f.AllInterfaces()
	if f.TypeKind == symbols.TypeInterface {
		candidates = append([]*symbols.NamedType{f}, candidates...)
	}
	for _, it := range candidates {
		if symbols.Identical(it, iface) {
			return true
		}
		if it.OriginalDefinition() != iface.OriginalDefinition() || !c.isCovariantSequence(iface) {
			continue
		}
		if len(it.TypeArgs) == 1 && len(iface.TypeArgs) == 1 &&
			symbols.IsReferenceType(it.TypeArgs[0]) && c.implicitReference(it.TypeArgs[0], iface.TypeArgs[0]) {
			return true
		}
	}
	return false
}

// boxing reports whether a boxing conversion exists from a value type.
func (c *Classifier) boxing(from, to symbols.Type) bool {
	if symbols.IsReferenceType(from) {
		return false
	}
	if under := symbols.NullableUnderlying(from); under != nil {
		return c.boxing(under, to)
	}
	t, ok := to.(*symbols.NamedType)
	if !ok || !symbols.IsReferenceType(to) {
		return false
	}
	switch f := from.(type) {
	case *symbols.NamedType:
		if f.TypeKind != symbols.TypeStruct && f.TypeKind != symbols.TypeEnum {
			return false
		}
		switch t.Special {
		case symbols.SpecialObject, symbols.SpecialValueType:
			return true
		case symbols.SpecialEnum:
			return f.TypeKind == symbols.TypeEnum
		}
		if t.TypeKind == symbols.TypeInterface {
			return c.implementsVariant(f, t)
		}
	case *symbols.TupleType:
		return t.Special == symbols.SpecialObject || t.Special == symbols.SpecialValueType
	case *symbols.TypeParameter:
		if t.Special == symbols.SpecialObject {
			return true
		}
		for _, ct := range f.ConstraintTypes {
			if symbols.Identical(ct, to) {
				return true
			}
			if cn, ok := ct.(*symbols.NamedType); ok && cn.TypeKind == symbols.TypeInterface && c.implementsVariant(cn, t) {
				return true
			}
		}
	}
	return false
}

// standardExplicit classifies the explicit-only standard conversions.
func (c *Classifier) standardExplicit(from, to symbols.Type) Conversion {
	if from == nil || to == nil || symbols.IsErrorType(from) || symbols.IsErrorType(to) {
		return None
	}
	fs, ts := symbols.SpecialOf(from), symbols.SpecialOf(to)
	if isNumericOrChar(fs) && isNumericOrChar(ts) {
		return Of(ExplicitNumeric)
	}
	if c.explicitEnumeration(from, to) {
		return Of(ExplicitEnumeration)
	}
	if conv := c.explicitNullable(from, to); conv.Exists() {
		return conv
	}
	if c.explicitReference(from, to) {
		return Of(ExplicitReference)
	}
	if c.unboxing(from, to) {
		return Of(Unboxing)
	}
	if conv := c.explicitTuple(from, to); conv.Exists() {
		return conv
	}
	return None
}

func (c *Classifier) explicitEnumeration(from, to symbols.Type) bool {
	fe, te := symbols.IsEnum(from), symbols.IsEnum(to)
	if !fe && !te {
		return false
	}
	okSide := func(t symbols.Type, isEnum bool) bool {
		return isEnum || isNumericOrChar(symbols.SpecialOf(t))
	}
	return okSide(from, fe) && okSide(to, te)
}

func (c *Classifier) explicitNullable(from, to symbols.Type) Conversion {
	fu, tu := symbols.NullableUnderlying(from), symbols.NullableUnderlying(to)
	if fu == nil && tu == nil {
		return None
	}
	src, dst := from, to
	if fu != nil {
		src = fu
	}
	if tu != nil {
		dst = tu
	}
	if !symbols.IsValueType(src) || !symbols.IsValueType(dst) {
		return None
	}
	inner := c.standardImplicit(src, dst, nil)
	if !inner.Exists() {
		inner = c.standardExplicit(src, dst)
	}
	switch inner.Kind {
	case Identity, ImplicitNumeric, ExplicitNumeric, ExplicitEnumeration:
		return Conversion{Kind: ExplicitNullable, Nested: []Conversion{inner}}
	}
	return None
}

func (c *Classifier) explicitReference(from, to symbols.Type) bool {
	if !symbols.IsReferenceType(from) || !symbols.IsReferenceType(to) {
		return false
	}
	if symbols.IsObject(from) {
		return true
	}
	// Downcasts: the reverse implicit reference conversion exists.
	if c.implicitReference(to, from) {
		return true
	}
	f, fok := from.(*symbols.NamedType)
	t, tok := to.(*symbols.NamedType)
	if fok && tok {
		// Any interface may be cast to a class or another interface and
		// any class to an interface: the runtime type may implement it.
		if f.TypeKind == symbols.TypeInterface && (t.TypeKind == symbols.TypeClass || t.TypeKind == symbols.TypeInterface) {
			return true
		}
		if f.TypeKind == symbols.TypeClass && t.TypeKind == symbols.TypeInterface {
			return true
		}
		if f.Special == symbols.SpecialDelegate && t.TypeKind == symbols.TypeDelegate {
			return true
		}
	}
	if fa, ok := from.(*symbols.ArrayType); ok {
		if ta, ok := to.(*symbols.ArrayType); ok {
			return fa.Rank == ta.Rank && symbols.IsReferenceType(fa.Elem) && c.explicitReference(fa.Elem, ta.Elem)
		}
	}
	if fok && f.Special == symbols.SpecialArray {
		_, isArray := to.(*symbols.ArrayType)
		return isArray
	}
	return false
}

func (c *Classifier) unboxing(from, to symbols.Type) bool {
	if !symbols.IsReferenceType(from) {
		return false
	}
	target := to
	if under := symbols.NullableUnderlying(to); under != nil {
		target = under
	}
	if !symbols.IsValueType(target) {
		return false
	}
	return c.boxing(target, from)
}

func (c *Classifier) explicitTuple(from, to symbols.Type) Conversion {
	ft, ok1 := from.(*symbols.TupleType)
	tt, ok2 := to.(*symbols.TupleType)
	if !ok1 || !ok2 || len(ft.Elems) != len(tt.Elems) {
		return None
	}
	nested := make([]Conversion, len(ft.Elems))
	for i := range ft.Elems {
		nested[i] = c.ClassifyExplicitTypes(ft.Elems[i], tt.Elems[i])
		if !nested[i].Exists() {
			return None
		}
	}
	return Conversion{Kind: ExplicitTuple, Nested: nested}
}
