// Copyright © 2024 The ELPS authors

package binder

import (
	"go/constant"
	"go/token"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/luthersystems/sembind/bound"
	"github.com/luthersystems/sembind/diagnostic"
	"github.com/luthersystems/sembind/symbols"
	"github.com/luthersystems/sembind/syntax"
)

func TestBindLiterals(t *testing.T) {
	f := newFixture(t)
	tests := []struct {
		lit   *syntax.Literal
		typ   symbols.SpecialType
		value constant.Value
	}{
		{num("1"), symbols.SpecialInt32, constant.MakeInt64(1)},
		{num("1_000"), symbols.SpecialInt32, constant.MakeInt64(1000)},
		{num("0xFF"), symbols.SpecialInt32, constant.MakeInt64(255)},
		{num("0b101"), symbols.SpecialInt32, constant.MakeInt64(5)},
		{num("3000000000"), symbols.SpecialUInt32, constant.MakeInt64(3000000000)},
		{num("5000000000"), symbols.SpecialInt64, constant.MakeInt64(5000000000)},
		{num("18446744073709551615"), symbols.SpecialUInt64, constant.MakeUint64(math.MaxUint64)},
		{num("1u"), symbols.SpecialUInt32, constant.MakeInt64(1)},
		{num("1L"), symbols.SpecialInt64, constant.MakeInt64(1)},
		{num("1UL"), symbols.SpecialUInt64, constant.MakeInt64(1)},
		{num("4294967296u"), symbols.SpecialUInt64, constant.MakeInt64(4294967296)},
		{num("3m"), symbols.SpecialDecimal, constant.MakeInt64(3)},
		{realLit("2.5"), symbols.SpecialDouble, constant.MakeFloat64(2.5)},
		{realLit("1.5f"), symbols.SpecialSingle, constant.MakeFloat64(1.5)},
		{realLit("0.25d"), symbols.SpecialDouble, constant.MakeFloat64(0.25)},
		{&syntax.Literal{Source: at(1), LitKind: syntax.LitTrue}, symbols.SpecialBool, constant.MakeBool(true)},
		{strLit("hi"), symbols.SpecialString, constant.MakeString("hi")},
		{&syntax.Literal{Source: at(1), LitKind: syntax.LitChar, Text: "a"}, symbols.SpecialChar, constant.MakeInt64(97)},
	}
	for _, test := range tests {
		t.Run(test.lit.Text, func(t *testing.T) {
			out, bag := f.bind(t, test.lit)
			require.Empty(t, bag.Diagnostics())
			assert.Equal(t, test.typ, symbols.SpecialOf(out.Type()))
			assertConstant(t, test.value, out.ConstantValue())
		})
	}
}

func assertConstant(t *testing.T, want, got constant.Value) {
	t.Helper()
	require.NotNil(t, got)
	switch want.Kind() {
	case constant.Int, constant.Float:
		assert.True(t, constant.Compare(constant.ToFloat(want), token.EQL, constant.ToFloat(got)), "want %s, got %s", want, got)
	default:
		assert.Equal(t, want.ExactString(), got.ExactString())
	}
}

func TestBindBadLiterals(t *testing.T) {
	f := newFixture(t)
	tests := []struct {
		lit  *syntax.Literal
		code diagnostic.Code
	}{
		{num("18446744073709551616"), diagnostic.ErrLiteralOutOfRange},
		{num("18446744073709551616u"), diagnostic.ErrLiteralOutOfRange},
		{num("12xyz"), diagnostic.ErrBadLiteral},
		{&syntax.Literal{Source: at(1), LitKind: syntax.LitChar, Text: "ab"}, diagnostic.ErrBadLiteral},
		{realLit("1e400f"), diagnostic.ErrLiteralOutOfRange},
	}
	for _, test := range tests {
		t.Run(test.lit.Text, func(t *testing.T) {
			out, bag := f.bind(t, test.lit)
			assert.True(t, out.HasErrors())
			assert.NotNil(t, out.Type())
			assert.Equal(t, 1, bag.Count(test.code), "%v", bag.Diagnostics())
		})
	}
}

func TestBindConstantFolding(t *testing.T) {
	f := newFixture(t)
	tests := []struct {
		name  string
		expr  syntax.Expr
		typ   symbols.SpecialType
		value constant.Value
	}{
		{"add", binary(syntax.OpAdd, num("1"), num("2")), symbols.SpecialInt32, constant.MakeInt64(3)},
		{"integer division truncates", binary(syntax.OpDiv, num("7"), num("2")), symbols.SpecialInt32, constant.MakeInt64(3)},
		{"negative division truncates", binary(syntax.OpDiv, &syntax.Unary{Source: at(1), Op: syntax.OpNeg, Operand: num("7")}, num("2")), symbols.SpecialInt32, constant.MakeInt64(-3)},
		{"mod", binary(syntax.OpMod, num("7"), num("3")), symbols.SpecialInt32, constant.MakeInt64(1)},
		{"widened to long", binary(syntax.OpAdd, num("1"), num("2L")), symbols.SpecialInt64, constant.MakeInt64(3)},
		{"double", binary(syntax.OpAdd, realLit("1.5"), num("1")), symbols.SpecialDouble, constant.MakeFloat64(2.5)},
		{"comparison", binary(syntax.OpLt, num("1"), num("2")), symbols.SpecialBool, constant.MakeBool(true)},
		{"mixed comparison", binary(syntax.OpEq, num("2"), realLit("2.0")), symbols.SpecialBool, constant.MakeBool(true)},
		{"logical", binary(syntax.OpAndAlso, &syntax.Literal{Source: at(1), LitKind: syntax.LitTrue}, &syntax.Literal{Source: at(1), LitKind: syntax.LitFalse}), symbols.SpecialBool, constant.MakeBool(false)},
		{"concat", binary(syntax.OpAdd, strLit("a"), strLit("b")), symbols.SpecialString, constant.MakeString("ab")},
		{"negate", &syntax.Unary{Source: at(1), Op: syntax.OpNeg, Operand: num("5")}, symbols.SpecialInt32, constant.MakeInt64(-5)},
		{"not", &syntax.Unary{Source: at(1), Op: syntax.OpNot, Operand: &syntax.Literal{Source: at(1), LitKind: syntax.LitTrue}}, symbols.SpecialBool, constant.MakeBool(false)},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			out, bag := f.bind(t, test.expr)
			require.Empty(t, bag.Diagnostics())
			assert.Equal(t, test.typ, symbols.SpecialOf(out.Type()))
			assertConstant(t, test.value, out.ConstantValue())
		})
	}
}

func TestBindConstantFoldingErrors(t *testing.T) {
	f := newFixture(t)
	tests := []struct {
		name string
		expr syntax.Expr
		code diagnostic.Code
	}{
		{"divide by zero", binary(syntax.OpDiv, num("1"), num("0")), diagnostic.ErrDivideByZero},
		{"mod by zero", binary(syntax.OpMod, num("1"), num("0")), diagnostic.ErrDivideByZero},
		{"overflow", binary(syntax.OpAdd, num("2147483647"), num("1")), diagnostic.ErrConstantOverflow},
		{"multiply overflow", binary(syntax.OpMul, num("65536"), num("65536")), diagnostic.ErrConstantOverflow},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			out, bag := f.bind(t, test.expr)
			assert.True(t, out.HasErrors())
			assert.Nil(t, out.ConstantValue())
			assert.Equal(t, 1, bag.Count(test.code))
			assert.Equal(t, 1, bag.Len())
		})
	}
}

func TestBindFloatingDivisionByZeroIsNotConstant(t *testing.T) {
	f := newFixture(t)
	out, bag := f.bind(t, binary(syntax.OpDiv, realLit("1.0"), num("0")))
	assert.Empty(t, bag.Diagnostics())
	assert.False(t, out.HasErrors())
	assert.Nil(t, out.ConstantValue())
}

func TestBindOperatorErrors(t *testing.T) {
	f := newFixture(t)
	out, bag := f.bind(t, binary(syntax.OpSub, strLit("a"), num("1")))
	assert.True(t, out.HasErrors())
	assert.Equal(t, 1, bag.Count(diagnostic.ErrBadBinaryOperands))

	out, bag = f.bind(t, &syntax.Unary{Source: at(1), Op: syntax.OpNot, Operand: num("1")})
	assert.True(t, out.HasErrors())
	assert.Equal(t, 1, bag.Count(diagnostic.ErrBadUnaryOperand))

	out, bag = f.bind(t, binary(syntax.OpAdd, ident("missing"), num("1")))
	assert.True(t, out.HasErrors())
	assert.Equal(t, 1, bag.Len(), "no cascading operator error")
}

func TestBindNonConstantOperands(t *testing.T) {
	f := newFixture(t)
	out, bag := f.bind(t, binary(syntax.OpAdd, member(ident("w"), "Size"), num("1")))
	require.Empty(t, bag.Diagnostics())
	b, ok := out.(*bound.Binary)
	require.True(t, ok)
	assert.Nil(t, b.ConstantValue())
	assert.Equal(t, symbols.SpecialInt32, symbols.SpecialOf(b.Type()))
	assert.Equal(t, bound.KindPropertyAccess, b.Left.Kind())
}

func TestBindCast(t *testing.T) {
	f := newFixture(t)
	out, bag := f.bind(t, &syntax.Cast{Source: at(1), Type: typeRef("long"), Operand: num("1")})
	require.Empty(t, bag.Diagnostics())
	assert.Equal(t, symbols.SpecialInt64, symbols.SpecialOf(out.Type()))
	assert.Equal(t, int64(1), intValue(t, out))

	out, bag = f.bind(t, &syntax.Cast{Source: at(1), Type: typeRef("byte"), Operand: num("300")})
	assert.True(t, out.HasErrors())
	assert.True(t, bag.HasErrors())

	out, bag = f.bind(t, &syntax.Cast{Source: at(1), Type: typeRef("int"), Operand: strLit("s")})
	assert.True(t, out.HasErrors())
	assert.True(t, bag.HasErrors())
}

func TestBindNullAndDefaultNeedTargets(t *testing.T) {
	f := newFixture(t)
	out, bag := f.bind(t, nullLit())
	assert.True(t, out.HasErrors())
	assert.Equal(t, 1, bag.Count(diagnostic.ErrNoNaturalType))

	out, bag = f.bindTo(t, nullLit(), f.special(symbols.SpecialString))
	require.Empty(t, bag.Diagnostics())
	lit, ok := out.(*bound.Literal)
	require.True(t, ok)
	assert.True(t, lit.IsNull())
	assert.True(t, symbols.IsString(lit.Type()))

	out, bag = f.bindTo(t, nullLit(), f.special(symbols.SpecialInt32))
	assert.True(t, out.HasErrors())
	assert.True(t, bag.HasErrors())

	out, bag = f.bindTo(t, &syntax.Default{Source: at(1)}, f.special(symbols.SpecialInt32))
	require.Empty(t, bag.Diagnostics())
	assert.Equal(t, bound.KindDefaultValue, out.Kind())
	assert.Equal(t, int64(0), intValue(t, out))
}

func TestBindInterpolatedString(t *testing.T) {
	f := newFixture(t)
	e := &syntax.InterpolatedString{Source: at(1), Parts: []syntax.InterpolationPart{
		{Text: "a"}, {Expr: strLit("b")}, {Text: "c"},
	}}
	out, bag := f.bind(t, e)
	require.Empty(t, bag.Diagnostics())
	assert.True(t, symbols.IsString(out.Type()))
	require.NotNil(t, out.ConstantValue())
	assert.Equal(t, "abc", constant.StringVal(out.ConstantValue()))

	e = &syntax.InterpolatedString{Source: at(1), Parts: []syntax.InterpolationPart{
		{Text: "n="}, {Expr: num("1")},
	}}
	out, bag = f.bind(t, e)
	require.Empty(t, bag.Diagnostics())
	assert.Nil(t, out.ConstantValue())
	assert.Len(t, out.(*bound.InterpolatedString).Holes, 1)
}

func TestBindLambdaToDelegate(t *testing.T) {
	f := newFixture(t)
	lambda := &syntax.Lambda{
		Source: at(1),
		Params: []*syntax.LambdaParam{{Source: at(2), Name: "x"}},
		Body:   binary(syntax.OpAdd, ident("x"), num("1")),
	}
	out, bag := f.bindTo(t, lambda, f.intFunc)
	require.Empty(t, bag.Diagnostics())
	l, ok := out.(*bound.Lambda)
	require.True(t, ok, "got %s", out.Kind())
	assert.Same(t, f.intFunc, l.Delegate())
	require.Len(t, l.Params, 1)
	assert.Equal(t, symbols.SpecialInt32, symbols.SpecialOf(l.Params[0].Type))
	assert.Equal(t, symbols.SpecialInt32, symbols.SpecialOf(l.Body.Type()))

	// Binding again gives fresh parameter symbols.
	again, _ := f.bindTo(t, lambda, f.intFunc)
	assert.NotSame(t, l.Params[0], again.(*bound.Lambda).Params[0])
}

func TestBindLambdaBodyErrors(t *testing.T) {
	f := newFixture(t)
	lambda := &syntax.Lambda{
		Source: at(1),
		Params: []*syntax.LambdaParam{{Source: at(2), Name: "x"}},
		Body:   member(ident("x"), "Missing"),
	}
	out, bag := f.bindTo(t, lambda, f.intFunc)
	assert.True(t, out.HasErrors())
	assert.Equal(t, 1, bag.Count(diagnostic.ErrMemberNotFound))
}

func TestBindLambdaArgument(t *testing.T) {
	f := newFixture(t)
	lambda := &syntax.Lambda{
		Source: at(1),
		Params: []*syntax.LambdaParam{{Source: at(2), Name: "x"}},
		Body:   binary(syntax.OpMul, ident("x"), num("2")),
	}
	out, bag := f.bind(t, call(ident("Apply"), arg(lambda), arg(num("3"))))
	require.Empty(t, bag.Diagnostics())
	c := requireCall(t, out)
	assert.Same(t, f.apply, c.Method)
	assert.Equal(t, bound.KindLambda, c.Args[0].Kind())
}

func TestBindTuples(t *testing.T) {
	f := newFixture(t)
	e := &syntax.Tuple{Source: at(1), Elements: []*syntax.Argument{arg(num("1")), named("name", strLit("a"))}}
	out, bag := f.bind(t, e)
	require.Empty(t, bag.Diagnostics())
	tuple, ok := out.(*bound.Tuple)
	require.True(t, ok)
	tt, ok := tuple.Type().(*symbols.TupleType)
	require.True(t, ok)
	require.Len(t, tt.Elems, 2)
	assert.Equal(t, symbols.SpecialInt32, symbols.SpecialOf(tt.Elems[0]))
	assert.True(t, symbols.IsString(tt.Elems[1]))
	assert.Equal(t, []string{"", "name"}, tuple.Names)

	target := &symbols.TupleType{Elems: []symbols.Type{f.special(symbols.SpecialInt64), f.special(symbols.SpecialString)}}
	withNull := &syntax.Tuple{Source: at(1), Elements: []*syntax.Argument{arg(num("1")), arg(nullLit())}}
	out, bag = f.bindTo(t, withNull, target)
	require.Empty(t, bag.Diagnostics())
	assert.True(t, symbols.Identical(target, out.Type()))

	out, bag = f.bind(t, &syntax.Tuple{Source: at(1), Elements: []*syntax.Argument{arg(num("1"))}})
	assert.True(t, out.HasErrors())
	assert.Equal(t, 1, bag.Count(diagnostic.ErrTupleTooShort))
}

func TestBindCollectionToArray(t *testing.T) {
	f := newFixture(t)
	e := &syntax.Collection{Source: at(1), Elements: []*syntax.CollectionElement{
		{Source: at(2), Expr: num("1")},
		{Source: at(4), Expr: num("2")},
		{Source: at(6), Expr: ident("arr"), Spread: true},
	}}
	target := &symbols.ArrayType{Elem: f.special(symbols.SpecialInt64), Rank: 1}
	out, bag := f.bindTo(t, e, target)
	require.Empty(t, bag.Diagnostics())
	coll, ok := out.(*bound.Collection)
	require.True(t, ok, "got %s", out.Kind())
	assert.Equal(t, symbols.SpecialInt64, symbols.SpecialOf(coll.ElementType))
	require.Len(t, coll.Elements, 3)
	assert.Equal(t, []bool{false, false, true}, coll.Spread)

	out, bag = f.bind(t, e)
	assert.True(t, out.HasErrors())
	assert.Equal(t, 1, bag.Count(diagnostic.ErrNoNaturalType))
}

func element(recv syntax.Expr, index syntax.Expr) *syntax.ElementAccess {
	return &syntax.ElementAccess{Source: at(1), Receiver: recv, Args: []*syntax.Argument{arg(index)}}
}

func hat(e syntax.Expr) *syntax.Unary {
	return &syntax.Unary{Source: at(1), Op: syntax.OpHat, Operand: e}
}

func TestBindIndexAndRange(t *testing.T) {
	f := newFixture(t)
	index := f.tab.WellKnown(symbols.WellKnownIndex)
	rng := f.tab.WellKnown(symbols.WellKnownRange)

	out, bag := f.bind(t, hat(num("1")))
	require.Empty(t, bag.Diagnostics())
	assert.Same(t, index, out.Type())

	out, bag = f.bind(t, &syntax.Range{Source: at(1)})
	require.Empty(t, bag.Diagnostics())
	oc, ok := out.(*bound.ObjectCreation)
	require.True(t, ok)
	assert.Same(t, rng, oc.Type())
	require.Len(t, oc.Args, 2)
	assert.Same(t, index, oc.Args[0].Type())
	assert.Equal(t, syntax.OpHat, oc.Args[1].(*bound.Unary).Op, "open end is ^0")
}

func TestBindElementAccess(t *testing.T) {
	f := newFixture(t)
	i32 := f.special(symbols.SpecialInt32)
	tests := []struct {
		name string
		expr syntax.Expr
		kind bound.Kind
		typ  symbols.Type
	}{
		{"array int", element(ident("arr"), num("0")), bound.KindArrayAccess, i32},
		{"array from end", element(ident("arr"), hat(num("1"))), bound.KindArrayAccess, i32},
		{"array range", element(ident("arr"), &syntax.Range{Source: at(1), Start: num("1")}), bound.KindArrayAccess, &symbols.ArrayType{Elem: i32, Rank: 1}},
		{"string indexer", element(ident("s"), num("0")), bound.KindIndexerAccess, f.special(symbols.SpecialChar)},
		{"string from end", element(ident("s"), hat(num("1"))), bound.KindImplicitIndexerAccess, f.special(symbols.SpecialChar)},
		{"string range", element(ident("s"), &syntax.Range{Source: at(1), Start: num("1"), End: num("3")}), bound.KindImplicitIndexerAccess, f.special(symbols.SpecialString)},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			out, bag := f.bind(t, test.expr)
			require.Empty(t, bag.Diagnostics())
			assert.Equal(t, test.kind, out.Kind())
			assert.True(t, symbols.Identical(test.typ, out.Type()), "got %s", out.Type())
		})
	}

	out, _ := f.bind(t, element(ident("s"), &syntax.Range{Source: at(1), Start: num("1")}))
	implicit := out.(*bound.ImplicitIndexerAccess)
	assert.Equal(t, "Substring", implicit.Indexer.Name)
	assert.Equal(t, "Length", implicit.LengthOrCount.Name)
}

func TestBindElementAccessErrors(t *testing.T) {
	f := newFixture(t)
	out, bag := f.bind(t, element(ident("w"), num("0")))
	assert.True(t, out.HasErrors())
	assert.Equal(t, 1, bag.Count(diagnostic.ErrNotIndexable))

	two := &syntax.ElementAccess{Source: at(1), Receiver: ident("arr"), Args: []*syntax.Argument{arg(num("0")), arg(num("1"))}}
	out, bag = f.bind(t, two)
	assert.True(t, out.HasErrors())
	assert.Equal(t, 1, bag.Count(diagnostic.ErrBadIndexCount))

	out, bag = f.bind(t, element(ident("missing"), num("0")))
	assert.True(t, out.HasErrors())
	assert.Equal(t, 1, bag.Len())
}

func TestBindTypeReceivers(t *testing.T) {
	f := newFixture(t)
	paren := func(e syntax.Expr) syntax.Expr { return &syntax.Parenthesized{Source: at(1), Inner: e} }
	tests := []struct {
		name string
		expr syntax.Expr
		code diagnostic.Code
	}{
		{"instance property through type", member(ident("Widget"), "Size"), diagnostic.ErrInstanceRequired},
		{"parenthesized type", member(paren(ident("Widget")), "Size"), diagnostic.ErrNotAValue},
		{"parenthesized value", member(paren(ident("w")), "Size"), 0},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			out, bag := f.bind(t, test.expr)
			assert.Equal(t, symbols.SpecialInt32, symbols.SpecialOf(out.Type()))
			if test.code == 0 {
				require.Empty(t, bag.Diagnostics())
				_, ok := out.(*bound.PropertyAccess)
				assert.True(t, ok, "got %s", out.Kind())
				return
			}
			assert.True(t, out.HasErrors())
			assert.Equal(t, 1, bag.Count(test.code))
			assert.Equal(t, 1, bag.Len())
		})
	}
}
