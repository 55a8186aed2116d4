// Copyright © 2024 The ELPS authors

package binder

import (
	"context"
	"go/constant"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/luthersystems/sembind/bound"
	"github.com/luthersystems/sembind/diagnostic"
	"github.com/luthersystems/sembind/lookup"
	"github.com/luthersystems/sembind/symbols"
	"github.com/luthersystems/sembind/syntax"
)

// fixture is a small program:
//
//	namespace App {            // using Inner; using System;
//	  class Program { static void Main() { Widget w; int[] arr; string s; } Pair, Pick, Sum, Apply, Amb, Log }
//	  class Widget { Widget(int size); int Size { get; } int Scale(int by); }
//	}
//	namespace Inner {
//	  static class InnerExt {
//	    private static int Grow(this Widget w, int by);
//	    static Func<int, int> Tag(this Widget w) { get; }   // extension property
//	    static int Count(this Widget w) { get; }            // extension property
//	    static int Mix(this Widget w, int by);
//	    static Func<int, int> Mix(this Widget w) { get; }   // extension property
//	  }
//	}
//	namespace Outer { static class OuterExt { static string Grow(this Widget w, int by); static string Tag(this Widget w, int by); static string Count(this Widget w, int by); } }
//
// with Outer imported at the global level, outside App.
type fixture struct {
	tab    *symbols.Table
	b      *Binder
	prog   *symbols.NamedType
	widget *symbols.NamedType
	main   *symbols.Symbol
	scope  *symbols.Scope
	ns     *symbols.Scope
	global *symbols.Scope

	pair      *symbols.Symbol
	pickInt   *symbols.Symbol
	pickObj   *symbols.Symbol
	sum       *symbols.Symbol
	apply     *symbols.Symbol
	intFunc   *symbols.NamedType
	innerGrow *symbols.Symbol
	outerGrow *symbols.Symbol
	tag       *symbols.Symbol
	outerTag  *symbols.Symbol
	mixMethod *symbols.Symbol
	mixProp   *symbols.Symbol
	log       *symbols.Symbol
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	tab := symbols.NewTable("app")
	f := &fixture{tab: tab}
	i32 := tab.Special(symbols.SpecialInt32)
	i64 := tab.Special(symbols.SpecialInt64)
	str := tab.Special(symbols.SpecialString)
	obj := tab.Special(symbols.SpecialObject)
	void := tab.Special(symbols.SpecialVoid)

	f.prog = tab.DeclareType("App", "Program", symbols.TypeClass)
	f.prog.Base = obj
	f.main = tab.AddMember(f.prog, symbols.NewStaticMethod("Main", void))
	f.pair = tab.AddMember(f.prog, symbols.NewStaticMethod("Pair", i32, symbols.NewParam("x", i32), symbols.NewParam("y", i32)))
	f.pickInt = tab.AddMember(f.prog, symbols.NewStaticMethod("Pick", i32, symbols.NewParam("v", i32)))
	f.pickObj = tab.AddMember(f.prog, symbols.NewStaticMethod("Pick", str, symbols.NewParam("v", obj)))
	values := symbols.NewParam("values", &symbols.ArrayType{Elem: i32, Rank: 1})
	values.IsParams = true
	f.sum = tab.AddMember(f.prog, symbols.NewStaticMethod("Sum", i32, values))
	f.intFunc = symbols.Construct(tab.LookupType("System", "Func", 2), []symbols.Type{i32, i32})
	f.apply = tab.AddMember(f.prog, symbols.NewStaticMethod("Apply", i32, symbols.NewParam("fn", f.intFunc), symbols.NewParam("v", i32)))
	tab.AddMember(f.prog, symbols.NewStaticMethod("Amb", void, symbols.NewParam("a", i64), symbols.NewParam("b", i32)))
	tab.AddMember(f.prog, symbols.NewStaticMethod("Amb", void, symbols.NewParam("a", i32), symbols.NewParam("b", i64)))
	line := symbols.NewParam("line", i32)
	line.CallerInfo = symbols.CallerLineNumber
	who := symbols.NewParam("who", str)
	who.CallerInfo = symbols.CallerMemberName
	file := symbols.NewParam("file", str)
	file.CallerInfo = symbols.CallerFilePath
	level := symbols.NewParam("level", i32)
	level.HasDefault = true
	level.Default = constant.MakeInt64(3)
	f.log = tab.AddMember(f.prog, symbols.NewStaticMethod("Log", i32, symbols.NewParam("msg", str), line, who, file, level))

	f.widget = tab.DeclareType("App", "Widget", symbols.TypeClass)
	f.widget.Base = obj
	tab.AddMember(f.widget, symbols.NewConstructor(symbols.NewParam("size", i32)))
	tab.AddMember(f.widget, symbols.NewProperty("Size", i32))
	tab.AddMember(f.widget, symbols.NewMethod("Scale", i32, symbols.NewParam("by", i32)))

	innerExt := tab.DeclareType("Inner", "InnerExt", symbols.TypeClass)
	innerExt.Static = true
	f.innerGrow = symbols.NewStaticMethod("Grow", i32, symbols.NewParam("w", f.widget), symbols.NewParam("by", i32))
	f.innerGrow.Extension = true
	f.innerGrow.Access = symbols.Private
	tab.AddMember(innerExt, f.innerGrow)
	f.tag = tab.AddMember(innerExt, extensionProperty("Tag", f.intFunc, f.widget))
	tab.AddMember(innerExt, extensionProperty("Count", i32, f.widget))
	f.mixMethod = symbols.NewStaticMethod("Mix", i32, symbols.NewParam("w", f.widget), symbols.NewParam("by", i32))
	f.mixMethod.Extension = true
	tab.AddMember(innerExt, f.mixMethod)
	f.mixProp = tab.AddMember(innerExt, extensionProperty("Mix", f.intFunc, f.widget))

	outerExt := tab.DeclareType("Outer", "OuterExt", symbols.TypeClass)
	outerExt.Static = true
	f.outerGrow = symbols.NewStaticMethod("Grow", str, symbols.NewParam("w", f.widget), symbols.NewParam("by", i32))
	f.outerGrow.Extension = true
	tab.AddMember(outerExt, f.outerGrow)
	f.outerTag = symbols.NewStaticMethod("Tag", str, symbols.NewParam("w", f.widget), symbols.NewParam("by", i32))
	f.outerTag.Extension = true
	tab.AddMember(outerExt, f.outerTag)
	outerCount := symbols.NewStaticMethod("Count", str, symbols.NewParam("w", f.widget), symbols.NewParam("by", i32))
	outerCount.Extension = true
	tab.AddMember(outerExt, outerCount)

	f.global = symbols.NewScope(symbols.ScopeGlobal, nil)
	f.global.Namespace = tab.Global()
	f.global.Usings = []*symbols.Symbol{tab.Namespace("Outer")}
	f.ns = symbols.NewScope(symbols.ScopeNamespace, f.global)
	f.ns.Namespace = tab.Namespace("App")
	f.ns.Usings = []*symbols.Symbol{tab.Namespace("Inner"), tab.Namespace("System")}
	typeScope := symbols.NewScope(symbols.ScopeType, f.ns)
	typeScope.Type = f.prog
	f.scope = symbols.NewScope(symbols.ScopeMethod, typeScope)
	f.scope.Member = f.main
	f.local("w", f.widget)
	f.local("arr", &symbols.ArrayType{Elem: i32, Rank: 1})
	f.local("s", str)

	tab.Freeze()
	f.b = New(tab)
	return f
}

func extensionProperty(name string, typ symbols.Type, receiver symbols.Type) *symbols.Symbol {
	p := symbols.NewProperty(name, typ)
	p.Static = true
	p.Extension = true
	p.Params = []*symbols.Parameter{symbols.NewParam("w", receiver)}
	return p
}

func (f *fixture) local(name string, typ symbols.Type) *symbols.Symbol {
	sym := f.tab.AddLocal(symbols.NewLocal(name, typ))
	f.scope.Define(sym)
	return sym
}

func (f *fixture) env() Env { return NewEnv(f.scope) }

func (f *fixture) bind(t *testing.T, e syntax.Expr) (bound.Expr, *diagnostic.Bag) {
	t.Helper()
	return f.bindIn(t, f.env(), e)
}

func (f *fixture) bindIn(t *testing.T, env Env, e syntax.Expr) (bound.Expr, *diagnostic.Bag) {
	t.Helper()
	bag := diagnostic.NewBag()
	out := f.b.Bind(context.Background(), env, e, bag)
	require.NotNil(t, out)
	return out, bag
}

func (f *fixture) bindTo(t *testing.T, e syntax.Expr, target symbols.Type) (bound.Expr, *diagnostic.Bag) {
	t.Helper()
	bag := diagnostic.NewBag()
	out := f.b.BindTo(context.Background(), f.env(), e, target, bag)
	require.NotNil(t, out)
	return out, bag
}

func (f *fixture) special(st symbols.SpecialType) symbols.Type { return f.tab.Special(st) }

func at(col int) *syntax.Location {
	return &syntax.Location{File: "test.cs", Line: 1, Col: col, EndLine: 1, EndCol: col + 1}
}

func ident(name string) *syntax.Identifier {
	return &syntax.Identifier{Source: at(1), Name: name}
}

func num(text string) *syntax.Literal {
	return &syntax.Literal{Source: at(1), LitKind: syntax.LitInteger, Text: text}
}

func realLit(text string) *syntax.Literal {
	return &syntax.Literal{Source: at(1), LitKind: syntax.LitReal, Text: text}
}

func strLit(text string) *syntax.Literal {
	return &syntax.Literal{Source: at(1), LitKind: syntax.LitString, Text: text}
}

func nullLit() *syntax.Literal {
	return &syntax.Literal{Source: at(1), LitKind: syntax.LitNull}
}

func member(recv syntax.Expr, name string) *syntax.MemberAccess {
	return &syntax.MemberAccess{Source: at(1), Receiver: recv, Name: name, NameLoc: at(3)}
}

func arg(e syntax.Expr) *syntax.Argument {
	return &syntax.Argument{Source: e.Location(), Expr: e}
}

func named(name string, e syntax.Expr) *syntax.Argument {
	return &syntax.Argument{Source: e.Location(), Name: name, NameLoc: at(5), Expr: e}
}

func call(callee syntax.Expr, args ...*syntax.Argument) *syntax.Invocation {
	return &syntax.Invocation{Source: at(1), Callee: callee, Args: args}
}

func binary(op syntax.BinaryOp, l, r syntax.Expr) *syntax.Binary {
	return &syntax.Binary{Source: at(1), Op: op, Left: l, Right: r}
}

func typeRef(name string) *syntax.TypeRef {
	return &syntax.TypeRef{Source: at(1), Name: name}
}

func intValue(t *testing.T, e bound.Expr) int64 {
	t.Helper()
	v := e.ConstantValue()
	require.NotNil(t, v, "%s has no constant value", e.Kind())
	i, ok := constant.Int64Val(v)
	require.True(t, ok)
	return i
}

// validExprs bind without diagnostics in the fixture.
func validExprs() map[string]syntax.Expr {
	return map[string]syntax.Expr{
		"literal":         num("42"),
		"local":           ident("w"),
		"property":        member(ident("w"), "Size"),
		"instance call":   call(member(ident("w"), "Scale"), arg(num("2"))),
		"static call":     call(ident("Pair"), arg(num("1")), arg(num("2"))),
		"qualified call":  call(member(ident("Program"), "Pair"), arg(num("1")), arg(num("2"))),
		"params call":     call(ident("Sum"), arg(num("1")), arg(num("2")), arg(num("3"))),
		"creation":        &syntax.ObjectCreation{Source: at(1), Type: typeRef("Widget"), Args: []*syntax.Argument{arg(num("3"))}},
		"arithmetic":      binary(syntax.OpMul, num("6"), num("7")),
		"string concat":   binary(syntax.OpAdd, strLit("a"), ident("s")),
		"array element":   &syntax.ElementAccess{Source: at(1), Receiver: ident("arr"), Args: []*syntax.Argument{arg(num("0"))}},
		"parenthesized":   &syntax.Parenthesized{Source: at(1), Inner: num("1")},
		"default of type": &syntax.Default{Source: at(1), Type: typeRef("int")},
	}
}

// invalidExprs each produce at least one error.
func invalidExprs() map[string]syntax.Expr {
	return map[string]syntax.Expr{
		"unknown name":      ident("missing"),
		"unknown member":    member(ident("w"), "Missing"),
		"no applicable":     call(ident("Pair"), arg(strLit("a")), arg(num("2"))),
		"ambiguous":         call(ident("Amb"), arg(num("1")), arg(num("1"))),
		"null":              nullLit(),
		"method group":      ident("Pair"),
		"bad operands":      binary(syntax.OpSub, strLit("a"), num("1")),
		"divide by zero":    binary(syntax.OpDiv, num("1"), num("0")),
		"unknown type":      &syntax.ObjectCreation{Source: at(1), Type: typeRef("Nope")},
		"bad nested call":   call(ident("Pair"), arg(ident("missing")), arg(num("1"))),
		"lambda no target":  &syntax.Lambda{Source: at(1), Params: []*syntax.LambdaParam{{Name: "x"}}, Body: ident("x")},
		"instance required": call(member(ident("Widget"), "Scale"), arg(num("1"))),
	}
}

func TestBindValidExpressionsHaveNoErrors(t *testing.T) {
	f := newFixture(t)
	for name, e := range validExprs() {
		t.Run(name, func(t *testing.T) {
			out, bag := f.bind(t, e)
			assert.Empty(t, bag.Diagnostics())
			assert.False(t, out.HasErrors())
			assert.NotNil(t, out.Type())
			assert.False(t, symbols.IsErrorType(out.Type()))
		})
	}
}

func TestBindErroneousExpressionsStillHaveTypes(t *testing.T) {
	f := newFixture(t)
	for name, e := range invalidExprs() {
		t.Run(name, func(t *testing.T) {
			out, bag := f.bind(t, e)
			assert.True(t, bag.HasErrors())
			assert.True(t, out.HasErrors())
			assert.NotNil(t, out.Type())
			bound.Walk(out, func(n bound.Node) bool {
				if x, ok := n.(bound.Expr); ok {
					assert.NotNil(t, x.Type(), "child %s", x.Kind())
				}
				return true
			})
		})
	}
}

func TestBindIsIdempotent(t *testing.T) {
	f := newFixture(t)
	all := validExprs()
	for name, e := range invalidExprs() {
		all[name] = e
	}
	for name, e := range all {
		t.Run(name, func(t *testing.T) {
			first, bag1 := f.bind(t, e)
			second, bag2 := f.bind(t, e)
			assert.Equal(t, first.Kind(), second.Kind())
			assert.True(t, symbols.Identical(first.Type(), second.Type()) || first.Type().String() == second.Type().String())
			assert.Equal(t, first.ConstantValue(), second.ConstantValue())
			assert.Equal(t, bag1.Diagnostics(), bag2.Diagnostics())
		})
	}
}

func TestBindIsDeterministic(t *testing.T) {
	f := newFixture(t)
	e := call(ident("Amb"), arg(num("1")), arg(num("1")))
	first, bag := f.bind(t, e)
	bad, ok := first.(*bound.Bad)
	require.True(t, ok)
	require.Equal(t, 1, bag.Count(diagnostic.ErrAmbiguousCall))
	for i := 0; i < 20; i++ {
		again, againBag := f.bind(t, e)
		other := again.(*bound.Bad)
		assert.Equal(t, bad.ResultKind, other.ResultKind)
		assert.Equal(t, bad.Candidates, other.Candidates)
		assert.Equal(t, bag.Diagnostics(), againBag.Diagnostics())
	}
}

func TestBindUnresolvedName(t *testing.T) {
	f := newFixture(t)
	out, bag := f.bind(t, ident("missing"))
	bad, ok := out.(*bound.Bad)
	require.True(t, ok)
	assert.Equal(t, lookup.Empty, bad.ResultKind)
	assert.True(t, symbols.IsErrorType(bad.Type()))
	assert.Equal(t, 1, bag.Count(diagnostic.ErrNameNotFound))
	assert.Equal(t, 1, bag.Len())
}

func TestBindNilSinkDiscards(t *testing.T) {
	f := newFixture(t)
	assert.NotPanics(t, func() {
		out := f.b.Bind(context.Background(), f.env(), ident("missing"), nil)
		assert.True(t, out.HasErrors())
	})
}

func TestBindConstantInitializer(t *testing.T) {
	f := newFixture(t)
	env := f.env().WithConstantInitializer("K")

	bag := diagnostic.NewBag()
	out := f.b.Bind(context.Background(), env, binary(syntax.OpAdd, num("1"), num("2")), bag)
	assert.Empty(t, bag.Diagnostics())
	assert.Equal(t, int64(3), intValue(t, out))

	bag = diagnostic.NewBag()
	f.b.Bind(context.Background(), env, ident("s"), bag)
	assert.Equal(t, 1, bag.Count(diagnostic.ErrNotConstant))
}

func TestBindNodeKeepsPendingShapes(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	bag := diagnostic.NewBag()
	tests := []struct {
		expr syntax.Expr
		kind bound.Kind
	}{
		{nullLit(), bound.KindNullLiteral},
		{&syntax.Default{Source: at(1)}, bound.KindDefaultLiteral},
		{ident("Pair"), bound.KindMethodGroup},
		{&syntax.Collection{Source: at(1)}, bound.KindUnconvertedCollection},
		{&syntax.Lambda{Source: at(1), Body: num("1")}, bound.KindUnboundLambda},
	}
	for _, test := range tests {
		n := f.b.BindNode(ctx, f.env(), test.expr, bag)
		assert.Equal(t, test.kind, n.Kind())
		_, isPending := n.(bound.Pending)
		assert.True(t, isPending)
	}
	assert.Empty(t, bag.Diagnostics())
}
