// Copyright © 2024 The ELPS authors

package lookup

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/luthersystems/sembind/conversions"
	"github.com/luthersystems/sembind/diagnostic"
	"github.com/luthersystems/sembind/symbols"
)

type world struct {
	tab    *symbols.Table
	r      *Resolver
	global *symbols.Scope
	ns     *symbols.Scope
	shape  *symbols.NamedType
	circle *symbols.NamedType
}

func newWorld(t *testing.T) *world {
	t.Helper()
	tab := symbols.NewTable("app")
	w := &world{tab: tab, r: NewResolver(tab, conversions.NewClassifier(tab))}
	dbl := tab.Special(symbols.SpecialDouble)
	i32 := tab.Special(symbols.SpecialInt32)

	w.shape = tab.DeclareType("Geo", "Shape", symbols.TypeClass)
	w.shape.Base = tab.Special(symbols.SpecialObject)
	area := symbols.NewMethod("Area", dbl)
	area.Virtual = true
	tab.AddMember(w.shape, area)
	tab.AddMember(w.shape, symbols.NewMethod("Scale", w.shape, symbols.NewParam("by", dbl)))
	tab.AddMember(w.shape, symbols.NewProperty("Name", tab.Special(symbols.SpecialString)))
	secret := symbols.NewField("id", i32)
	secret.Access = symbols.Private
	tab.AddMember(w.shape, secret)

	w.circle = tab.DeclareType("Geo", "Circle", symbols.TypeClass)
	w.circle.Base = w.shape
	override := symbols.NewMethod("Area", dbl)
	override.Overrides = area.ID
	tab.AddMember(w.circle, override)
	tab.AddMember(w.circle, symbols.NewMethod("Scale", w.circle, symbols.NewParam("by", i32)))
	tab.AddMember(w.circle, symbols.NewField("Name", tab.Special(symbols.SpecialString)))

	w.global = symbols.NewScope(symbols.ScopeGlobal, nil)
	w.global.Namespace = tab.Global()
	w.ns = symbols.NewScope(symbols.ScopeNamespace, w.global)
	w.ns.Namespace = tab.Namespace("App")
	w.ns.Usings = []*symbols.Symbol{tab.Namespace("Geo"), tab.Namespace("System")}
	return w
}

func TestLookupLocalsShadowMembers(t *testing.T) {
	w := newWorld(t)
	typeScope := symbols.NewScope(symbols.ScopeType, w.ns)
	typeScope.Type = w.circle
	method := symbols.NewScope(symbols.ScopeMethod, typeScope)
	local := w.tab.AddLocal(symbols.NewLocal("Name", w.tab.Special(symbols.SpecialInt32)))
	method.Define(local)

	res := w.r.LookupSymbols(method, "Name", 0, 0, w.circle)
	require.True(t, res.IsViable())
	assert.Same(t, local, res.Single())

	res = w.r.LookupSymbols(typeScope, "Name", 0, 0, w.circle)
	require.True(t, res.IsViable())
	assert.Equal(t, symbols.SymField, res.Single().Kind, "derived field hides base property")
}

func TestLookupNameNotFound(t *testing.T) {
	w := newWorld(t)
	res := w.r.LookupSymbols(w.ns, "Missing", 0, 0, nil)
	assert.Equal(t, Empty, res.Kind)
	assert.True(t, res.IsClear())
	d, ok := res.Diagnose(diagnostic.Span{File: "x.cs", Line: 1, Col: 1})
	require.True(t, ok)
	assert.Equal(t, diagnostic.ErrNameNotFound, d.Code)
	assert.Contains(t, d.Message, "'Missing'")
}

func TestLookupUsingImportsTypes(t *testing.T) {
	w := newWorld(t)
	res := w.r.LookupSymbols(w.ns, "Circle", 0, 0, nil)
	require.True(t, res.IsViable())
	assert.Same(t, w.tab.TypeSymbol(w.circle), res.Single())

	res = w.r.LookupSymbols(w.ns, "Circle", 1, 0, nil)
	assert.Equal(t, WrongArity, res.Kind)
	assert.Equal(t, diagnostic.ErrWrongArity, res.Code)

	res = w.r.LookupSymbols(w.ns, "Circle", 1, OptArityZeroFallback, nil)
	assert.True(t, res.IsViable())
}

func TestLookupAmbiguousImports(t *testing.T) {
	w := newWorld(t)
	w.tab.DeclareType("Other", "Circle", symbols.TypeClass)
	w.ns.Usings = append(w.ns.Usings, w.tab.Namespace("Other"))
	res := w.r.LookupSymbols(w.ns, "Circle", 0, 0, nil)
	assert.Equal(t, Ambiguous, res.Kind)
	assert.Len(t, res.Symbols, 2)
	assert.Equal(t, diagnostic.ErrAmbiguousName, res.Code)
}

func TestLookupMembersMethodsAccumulate(t *testing.T) {
	w := newWorld(t)
	res := w.r.LookupMembers(w.circle, "Scale", 0, 0, nil)
	require.True(t, res.IsViable())
	require.True(t, res.IsMethodGroup())
	assert.Len(t, res.Symbols, 2, "base overload with a different signature stays in the group")

	res = w.r.LookupMembers(w.circle, "Area", 0, 0, nil)
	require.Len(t, res.Symbols, 1, "overridden base method is removed")
	assert.Equal(t, w.circle.Symbol, res.Symbols[0].Container)
}

func TestLookupMembersAccessibility(t *testing.T) {
	w := newWorld(t)
	res := w.r.LookupMembers(w.shape, "id", 0, 0, nil)
	assert.Equal(t, Inaccessible, res.Kind)
	assert.Equal(t, diagnostic.ErrInaccessible, res.Code)

	res = w.r.LookupMembers(w.shape, "id", 0, 0, w.shape)
	assert.True(t, res.IsViable())

	res = w.r.LookupMembers(w.shape, "Nope", 0, 0, nil)
	assert.Equal(t, Empty, res.Kind)
	assert.Equal(t, diagnostic.ErrMemberNotFound, res.Code)
}

func TestLookupOptions(t *testing.T) {
	w := newWorld(t)
	res := w.r.LookupMembers(w.shape, "Name", 0, OptMustBeInvocable, nil)
	assert.Equal(t, NotInvocable, res.Kind)

	res = w.r.LookupMembers(w.shape, "Name", 0, OptStaticOnly, nil)
	assert.Equal(t, StaticInstanceMismatch, res.Kind)
	assert.Equal(t, diagnostic.ErrInstanceRequired, res.Code)

	res = w.r.LookupMembers(w.shape, "Area", 0, OptStaticOnly, nil)
	assert.True(t, res.IsViable(), "instance methods are left to overload resolution")

	res = w.r.LookupSymbols(w.ns, "Circle", 0, OptTypesOnly, nil)
	assert.True(t, res.IsViable())
}

func TestLookupGenericMemberOfConstructedType(t *testing.T) {
	w := newWorld(t)
	list := symbols.Construct(w.tab.WellKnown(symbols.WellKnownList), []symbols.Type{w.tab.Special(symbols.SpecialString)})
	res := w.r.LookupMembers(list, "Add", 0, 0, nil)
	require.True(t, res.IsViable())
	assert.Equal(t, "string", res.Single().Params[0].Type.String())

	// Members of object are visible on everything.
	res = w.r.LookupMembers(list, "ToString", 0, 0, nil)
	assert.True(t, res.IsViable())
}

func TestExtensionScopesInnermostFirst(t *testing.T) {
	w := newWorld(t)
	str := w.tab.Special(symbols.SpecialString)
	declare := func(ns string) *symbols.Symbol {
		c := w.tab.DeclareType(ns, "Ext", symbols.TypeClass)
		c.Static = true
		m := symbols.NewStaticMethod("Shout", str, symbols.NewParam("s", str))
		m.Extension = true
		return w.tab.AddMember(c, m)
	}
	outer := declare("")
	inner := declare("App")

	scopes := w.r.ExtensionScopes(w.ns)
	require.Len(t, scopes, 2)
	assert.Same(t, w.ns, scopes[0].Scope)
	assert.Same(t, w.global, scopes[1].Scope)

	res := w.r.LookupExtensions(scopes[0], "Shout", 0, str)
	require.True(t, res.IsViable())
	assert.Same(t, inner, res.Single())
	res = w.r.LookupExtensions(scopes[1], "Shout", 0, str)
	assert.Same(t, outer, res.Single())

	res = w.r.LookupExtensions(scopes[0], "Shout", 0, w.tab.Special(symbols.SpecialInt32))
	assert.Equal(t, Empty, res.Kind)
}

func TestReceiverCompatibleGenericShapes(t *testing.T) {
	w := newWorld(t)
	ienum := w.tab.WellKnown(symbols.WellKnownIEnumerable)
	list := w.tab.WellKnown(symbols.WellKnownList)
	i32 := w.tab.Special(symbols.SpecialInt32)

	tp := &symbols.TypeParameter{Name: "T"}
	first := symbols.NewStaticMethod("First", tp, symbols.NewParam("source", symbols.Construct(ienum, []symbols.Type{tp})))
	first.TypeParams = []*symbols.TypeParameter{tp}
	first.Extension = true

	assert.True(t, w.r.ReceiverCompatible(first, symbols.Construct(list, []symbols.Type{i32})))
	assert.True(t, w.r.ReceiverCompatible(first, &symbols.ArrayType{Elem: i32, Rank: 1}))
	assert.False(t, w.r.ReceiverCompatible(first, i32))
	assert.False(t, w.r.ReceiverCompatible(first, &symbols.ErrorType{}))
}

func TestResultKindOrdering(t *testing.T) {
	var r Result
	r.mergePrioritized(Result{Kind: Inaccessible})
	r.mergePrioritized(Result{Kind: WrongArity})
	assert.Equal(t, Inaccessible, r.Kind)
	r.mergePrioritized(Result{Kind: Viable})
	assert.Equal(t, Viable, r.Kind)
	assert.Equal(t, "static-instance-mismatch", StaticInstanceMismatch.String())
}
