// Copyright © 2024 The ELPS authors

package symbols

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSpecialTypes(t *testing.T) {
	tab := NewTable("app")
	for st := SpecialObject; st < specialCount; st++ {
		require.NotNil(t, tab.Special(st), "special type %d", st)
	}
	assert.Equal(t, "int", tab.Special(SpecialInt32).String())
	assert.Equal(t, "ValueType", tab.Special(SpecialValueType).String())
	assert.True(t, IsValueType(tab.Special(SpecialInt32)))
	assert.True(t, IsReferenceType(tab.Special(SpecialString)))
	assert.Same(t, tab.Special(SpecialObject), tab.Special(SpecialString).BaseType())

	st, ok := SpecialTypeByKeyword("ulong")
	require.True(t, ok)
	assert.Equal(t, SpecialUInt64, st)
}

func TestBareTableHasNoWellKnownTypes(t *testing.T) {
	tab := NewBareTable("app")
	assert.Nil(t, tab.WellKnown(WellKnownList))
	assert.NotNil(t, NewTable("app").WellKnown(WellKnownList))
}

func TestContainerIsArenaHandle(t *testing.T) {
	tab := NewTable("app")
	shape := tab.DeclareType("App", "Shape", TypeClass)
	area := tab.AddMember(shape, NewProperty("Area", tab.Special(SpecialDouble)))

	assert.NotEqual(t, NoID, area.ID)
	assert.Equal(t, shape.Symbol, area.Container)
	assert.Same(t, shape, tab.ContainingType(area))
	assert.Equal(t, "app", area.Module)
	assert.Equal(t, "App", tab.NamespaceName(tab.Container(tab.TypeSymbol(shape))))
}

func TestFrozenTableRejectsSymbols(t *testing.T) {
	tab := NewTable("app")
	tab.Freeze()
	assert.Panics(t, func() { tab.DeclareType("App", "Late", TypeClass) })
}

func TestConstructedMembersAreSubstituted(t *testing.T) {
	tab := NewTable("app")
	list := tab.WellKnown(WellKnownList)
	listOfInt := Construct(list, []Type{tab.Special(SpecialInt32)})

	adds := tab.MembersOf(listOfInt, "Add")
	require.Len(t, adds, 1)
	assert.Equal(t, "int", adds[0].Params[0].Type.String())
	assert.Same(t, listOfInt, tab.ContainingType(adds[0]))
	assert.Same(t, list.DeclaredMembersNamed("Add")[0], adds[0].OriginalDefinition())
	assert.Equal(t, "List<int>.Add(int)", tab.DisplayString(adds[0]))

	ifaces := listOfInt.AllInterfaces()
	require.Len(t, ifaces, 2)
	assert.Equal(t, "IReadOnlyList<int>", ifaces[0].String())
	assert.Equal(t, "IEnumerable<int>", ifaces[1].String())
}

func TestIdentical(t *testing.T) {
	tab := NewTable("app")
	i32 := tab.Special(SpecialInt32)
	str := tab.Special(SpecialString)
	list := tab.WellKnown(WellKnownList)

	tests := []struct {
		name string
		a, b Type
		want bool
	}{
		{"same special", i32, tab.Special(SpecialInt32), true},
		{"different special", i32, str, false},
		{"constructed", Construct(list, []Type{i32}), Construct(list, []Type{i32}), true},
		{"constructed args differ", Construct(list, []Type{i32}), Construct(list, []Type{str}), false},
		{"array", &ArrayType{Elem: i32, Rank: 1}, &ArrayType{Elem: i32, Rank: 1}, true},
		{"array rank", &ArrayType{Elem: i32, Rank: 1}, &ArrayType{Elem: i32, Rank: 2}, false},
		{"nullable", &NullableType{Underlying: i32}, &NullableType{Underlying: i32}, true},
		{"tuple names ignored",
			&TupleType{Elems: []Type{i32, str}, Names: []string{"a", "b"}},
			&TupleType{Elems: []Type{i32, str}}, true},
		{"error by name", &ErrorType{Name: "X"}, &ErrorType{Name: "X"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Identical(tt.a, tt.b))
		})
	}
}

func TestConstructMethod(t *testing.T) {
	tab := NewTable("app")
	util := tab.DeclareType("App", "Util", TypeClass)
	tp := &TypeParameter{Name: "T"}
	first := NewStaticMethod("First", tp, NewParam("items", &ArrayType{Elem: tp, Rank: 1}))
	first.TypeParams = []*TypeParameter{tp}
	tab.AddMember(util, first)

	c := ConstructMethod(first, []Type{tab.Special(SpecialString)})
	assert.Equal(t, "string", c.Type.String())
	assert.Equal(t, "string[]", c.Params[0].Type.String())
	assert.Same(t, first, c.OriginalDefinition())
	assert.Equal(t, "Util.First<string>(string[])", tab.DisplayString(c))
	assert.Equal(t, "static T Util.First<T>(T[] items)", tab.Signature(first))
	assert.Equal(t, first.ID, tp.Owner)
}

func TestScopeLookup(t *testing.T) {
	tab := NewTable("app")
	global := NewScope(ScopeGlobal, nil)
	global.Namespace = tab.Global()
	block := NewScope(ScopeBlock, global)
	inner := NewScope(ScopeBlock, block)

	x := tab.AddLocal(NewLocal("x", tab.Special(SpecialInt32)))
	block.Define(x)
	shadow := tab.AddLocal(NewLocal("x", tab.Special(SpecialString)))
	inner.Define(shadow)

	assert.Equal(t, []*Symbol{shadow}, inner.Lookup("x"))
	assert.Equal(t, []*Symbol{x}, block.Lookup("x"))
	assert.Nil(t, inner.LookupLocal("y"))
	assert.Len(t, global.Children, 1)

	detached := NewDetachedScope(ScopeLambda, inner)
	assert.Len(t, inner.Children, 0)
	assert.Equal(t, []*Symbol{shadow}, detached.Lookup("x"))
}

func TestExtensionContainers(t *testing.T) {
	tab := NewTable("app")
	ext := tab.DeclareType("App.Ext", "StringExtensions", TypeClass)
	ext.Static = true
	shout := NewStaticMethod("Shout", tab.Special(SpecialString), NewParam("s", tab.Special(SpecialString)))
	shout.Extension = true
	tab.AddMember(ext, shout)
	plain := tab.DeclareType("App.Ext", "Helpers", TypeClass)
	plain.Static = true

	ns := NewScope(ScopeNamespace, nil)
	ns.Namespace = tab.Namespace("App")
	ns.Usings = []*Symbol{tab.Namespace("App.Ext")}

	got := ns.ExtensionContainers()
	require.Len(t, got, 1)
	assert.Same(t, ext, got[0])
}

func TestDelegateInvoke(t *testing.T) {
	tab := NewTable("app")
	fn := tab.LookupType("System", "Func", 2)
	require.NotNil(t, fn)
	c := Construct(fn, []Type{tab.Special(SpecialInt32), tab.Special(SpecialString)})
	invoke := tab.DelegateInvoke(c)
	require.NotNil(t, invoke)
	assert.Equal(t, "string", invoke.Type.String())
	assert.Equal(t, "int", invoke.Params[0].Type.String())
	assert.Nil(t, tab.DelegateInvoke(tab.Special(SpecialInt32)))
}
