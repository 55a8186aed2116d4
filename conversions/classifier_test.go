// Copyright © 2024 The ELPS authors

package conversions

import (
	"go/constant"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/luthersystems/sembind/symbols"
)

type fixture struct {
	tab    *symbols.Table
	c      *Classifier
	animal *symbols.NamedType
	dog    *symbols.NamedType
	iPet   *symbols.NamedType
	color  *symbols.NamedType
	meters *symbols.NamedType
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	tab := symbols.NewTable("app")
	f := &fixture{tab: tab, c: NewClassifier(tab)}
	f.iPet = tab.DeclareType("Zoo", "IPet", symbols.TypeInterface)
	f.animal = tab.DeclareType("Zoo", "Animal", symbols.TypeClass)
	f.animal.Base = tab.Special(symbols.SpecialObject)
	f.dog = tab.DeclareType("Zoo", "Dog", symbols.TypeClass)
	f.dog.Base = f.animal
	f.dog.Interfaces = []*symbols.NamedType{f.iPet}
	f.color = tab.DeclareType("Zoo", "Color", symbols.TypeEnum)
	f.color.Base = tab.Special(symbols.SpecialEnum)
	f.color.EnumUnderlying = tab.Special(symbols.SpecialInt32)

	f.meters = tab.DeclareType("Zoo", "Meters", symbols.TypeStruct)
	f.meters.Base = tab.Special(symbols.SpecialValueType)
	dbl := tab.Special(symbols.SpecialDouble)
	tab.AddMember(f.meters, symbols.NewOperator(symbols.ImplicitName, f.meters, symbols.NewParam("v", dbl)))
	tab.AddMember(f.meters, symbols.NewOperator(symbols.ExplicitName, dbl, symbols.NewParam("m", f.meters)))
	return f
}

func (f *fixture) sp(st symbols.SpecialType) symbols.Type {
	return f.tab.Special(st)
}

func TestClassifyImplicitTypes(t *testing.T) {
	f := newFixture(t)
	i32, i64 := f.sp(symbols.SpecialInt32), f.sp(symbols.SpecialInt64)
	obj, str := f.sp(symbols.SpecialObject), f.sp(symbols.SpecialString)
	list := f.tab.WellKnown(symbols.WellKnownList)
	ienum := f.tab.WellKnown(symbols.WellKnownIEnumerable)

	tests := []struct {
		name     string
		from, to symbols.Type
		want     Kind
	}{
		{"identity", i32, f.sp(symbols.SpecialInt32), Identity},
		{"widening", i32, i64, ImplicitNumeric},
		{"char to int", f.sp(symbols.SpecialChar), i32, ImplicitNumeric},
		{"narrowing", i64, i32, NoConversion},
		{"int to char", i32, f.sp(symbols.SpecialChar), NoConversion},
		{"string to object", str, obj, ImplicitReference},
		{"string to int", str, i32, NoConversion},
		{"derived to base", f.dog, f.animal, ImplicitReference},
		{"base to derived", f.animal, f.dog, NoConversion},
		{"class to interface", f.dog, f.iPet, ImplicitReference},
		{"int boxing", i32, obj, Boxing},
		{"enum boxing", f.color, f.sp(symbols.SpecialEnum), Boxing},
		{"int to long?", i32, &symbols.NullableType{Underlying: i64}, ImplicitNullable},
		{"int? to int", &symbols.NullableType{Underlying: i32}, i32, NoConversion},
		{"array covariance", &symbols.ArrayType{Elem: str, Rank: 1}, &symbols.ArrayType{Elem: obj, Rank: 1}, ImplicitReference},
		{"array to sequence", &symbols.ArrayType{Elem: i32, Rank: 1}, symbols.Construct(ienum, []symbols.Type{i32}), ImplicitReference},
		{"list to covariant sequence",
			symbols.Construct(list, []symbols.Type{str}), symbols.Construct(ienum, []symbols.Type{obj}), ImplicitReference},
		{"tuple", &symbols.TupleType{Elems: []symbols.Type{i32, str}},
			&symbols.TupleType{Elems: []symbols.Type{i64, obj}}, ImplicitTuple},
		{"user-defined", f.sp(symbols.SpecialDouble), f.meters, ImplicitUserDefined},
		{"user-defined after numeric", i32, f.meters, ImplicitUserDefined},
		{"explicit operator not implicit", f.meters, f.sp(symbols.SpecialDouble), NoConversion},
		{"error type", &symbols.ErrorType{Name: "Missing"}, i32, NoConversion},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, f.c.ClassifyImplicitTypes(tt.from, tt.to).Kind)
		})
	}
}

func TestUserDefinedBeforeConversion(t *testing.T) {
	f := newFixture(t)
	conv := f.c.ClassifyImplicitTypes(f.sp(symbols.SpecialInt32), f.meters)
	require.True(t, conv.IsUserDefined())
	require.NotNil(t, conv.Before)
	assert.Equal(t, ImplicitNumeric, conv.Before.Kind)
	assert.Equal(t, Identity, conv.After.Kind)
	assert.Equal(t, symbols.ImplicitName, conv.Method.Name)
}

func TestLiftedUserDefined(t *testing.T) {
	f := newFixture(t)
	from := &symbols.NullableType{Underlying: f.sp(symbols.SpecialDouble)}
	to := &symbols.NullableType{Underlying: f.meters}
	conv := f.c.ClassifyImplicitTypes(from, to)
	assert.Equal(t, ImplicitUserDefined, conv.Kind)
	assert.True(t, conv.Lifted)
}

func TestClassifyConstant(t *testing.T) {
	f := newFixture(t)
	i32 := f.sp(symbols.SpecialInt32)
	tests := []struct {
		name string
		v    constant.Value
		to   symbols.Type
		want Kind
	}{
		{"fits byte", constant.MakeInt64(200), f.sp(symbols.SpecialByte), ImplicitConstant},
		{"overflows byte", constant.MakeInt64(300), f.sp(symbols.SpecialByte), NoConversion},
		{"negative to uint", constant.MakeInt64(-1), f.sp(symbols.SpecialUInt32), NoConversion},
		{"zero to enum", constant.MakeInt64(0), f.color, ImplicitEnumeration},
		{"one to enum", constant.MakeInt64(1), f.color, NoConversion},
		{"to nullable short", constant.MakeInt64(7), &symbols.NullableType{Underlying: f.sp(symbols.SpecialInt16)}, ImplicitNullable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, f.c.ClassifyConstant(tt.v, i32, tt.to).Kind)
		})
	}
}

func TestClassifyExplicitTypes(t *testing.T) {
	f := newFixture(t)
	i32, i64 := f.sp(symbols.SpecialInt32), f.sp(symbols.SpecialInt64)
	obj := f.sp(symbols.SpecialObject)
	tests := []struct {
		name     string
		from, to symbols.Type
		want     Kind
	}{
		{"implicit is explicit", i32, i64, ImplicitNumeric},
		{"narrowing", i64, i32, ExplicitNumeric},
		{"double to char", f.sp(symbols.SpecialDouble), f.sp(symbols.SpecialChar), ExplicitNumeric},
		{"downcast", f.animal, f.dog, ExplicitReference},
		{"object to string", obj, f.sp(symbols.SpecialString), ExplicitReference},
		{"interface to class", f.iPet, f.animal, ExplicitReference},
		{"unboxing", obj, i32, Unboxing},
		{"int to enum", i32, f.color, ExplicitEnumeration},
		{"int? to int", &symbols.NullableType{Underlying: i32}, i32, ExplicitNullable},
		{"explicit operator", f.meters, f.sp(symbols.SpecialDouble), ExplicitUserDefined},
		{"string to int", f.sp(symbols.SpecialString), i32, NoConversion},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, f.c.ClassifyExplicitTypes(tt.from, tt.to).Kind)
		})
	}
}

func TestAmbiguousUserDefined(t *testing.T) {
	f := newFixture(t)
	feet := f.tab.DeclareType("Zoo", "Feet", symbols.TypeStruct)
	feet.Base = f.tab.Special(symbols.SpecialValueType)
	inch := f.tab.DeclareType("Zoo", "Inch", symbols.TypeStruct)
	inch.Base = f.tab.Special(symbols.SpecialValueType)
	// Two unrelated operators from Feet to Inch, one declared on each type.
	f.tab.AddMember(feet, symbols.NewOperator(symbols.ImplicitName, inch, symbols.NewParam("f", feet)))
	f.tab.AddMember(inch, symbols.NewOperator(symbols.ImplicitName, inch, symbols.NewParam("f", feet)))

	conv := f.c.ClassifyImplicitTypes(feet, inch)
	assert.False(t, conv.Exists())
	assert.Len(t, conv.Ambiguous, 2)
}

func TestConvertConstant(t *testing.T) {
	v, ok := ConvertConstant(constant.MakeFloat64(3.75), symbols.SpecialInt32)
	require.True(t, ok)
	assert.Equal(t, "3", v.ExactString())

	_, ok = ConvertConstant(constant.MakeInt64(300), symbols.SpecialByte)
	assert.False(t, ok)

	v, ok = ConvertConstant(constant.MakeInt64(2), symbols.SpecialDouble)
	require.True(t, ok)
	assert.Equal(t, constant.Float, v.Kind())

	assert.True(t, FitsIntegral(constant.MakeUint64(1<<63), symbols.SpecialUInt64))
	assert.False(t, FitsIntegral(constant.MakeUint64(1<<63), symbols.SpecialInt64))
	assert.True(t, IsZero(constant.MakeInt64(0)))
}

func TestSatisfiesConstraints(t *testing.T) {
	f := newFixture(t)
	tp := &symbols.TypeParameter{Name: "T", ReferenceConstraint: true}
	assert.True(t, f.c.SatisfiesConstraints(tp, f.sp(symbols.SpecialString)))
	assert.False(t, f.c.SatisfiesConstraints(tp, f.sp(symbols.SpecialInt32)))

	pet := &symbols.TypeParameter{Name: "TPet", ConstraintTypes: []symbols.Type{f.iPet}}
	assert.True(t, f.c.SatisfiesConstraints(pet, f.dog))
	assert.False(t, f.c.SatisfiesConstraints(pet, f.animal))

	val := &symbols.TypeParameter{Name: "TVal", ValueConstraint: true, ConstructorConstraint: true}
	assert.True(t, f.c.SatisfiesConstraints(val, f.sp(symbols.SpecialInt32)))
	assert.False(t, f.c.SatisfiesConstraints(val, &symbols.NullableType{Underlying: f.sp(symbols.SpecialInt32)}))
}
