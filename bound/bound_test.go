// Copyright © 2024 The ELPS authors

package bound

import (
	"go/constant"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/luthersystems/sembind/contract"
	"github.com/luthersystems/sembind/symbols"
	"github.com/luthersystems/sembind/syntax"
)

func lit(tab *symbols.Table, v int64) *Literal {
	n := &Literal{Typed: Header(&syntax.Literal{LitKind: syntax.LitInteger}, tab.Special(symbols.SpecialInt32), false)}
	n.Const = constant.MakeInt64(v)
	return n
}

func TestChildrenEvaluationOrder(t *testing.T) {
	tab := symbols.NewBareTable("app")
	i32 := tab.Special(symbols.SpecialInt32)
	recv := &This{Typed: Header(&syntax.This{}, tab.Special(symbols.SpecialObject), false)}
	a, b := lit(tab, 1), lit(tab, 2)
	call := &Call{Typed: Header(nil, i32, false), Receiver: recv, Args: []Expr{a, b}}

	children := Children(call)
	require.Len(t, children, 3)
	assert.Same(t, recv, children[0])
	assert.Same(t, a, children[1])
	assert.Same(t, b, children[2])

	static := &Call{Typed: Header(nil, i32, false), Args: []Expr{a}}
	assert.Len(t, Children(static), 1, "absent receiver is skipped")
}

func TestWalkAndFind(t *testing.T) {
	tab := symbols.NewBareTable("app")
	i32 := tab.Special(symbols.SpecialInt32)
	inner := &Binary{Typed: Header(nil, i32, false), Op: syntax.OpAdd, Left: lit(tab, 1), Right: lit(tab, 2)}
	bad := &Bad{Typed: Header(nil, &symbols.ErrorType{}, true), Children: []Expr{inner}}

	var kinds []Kind
	Walk(bad, func(n Node) bool {
		kinds = append(kinds, n.Kind())
		return true
	})
	assert.Equal(t, []Kind{KindBad, KindBinary, KindLiteral, KindLiteral}, kinds)

	kinds = nil
	Walk(bad, func(n Node) bool {
		kinds = append(kinds, n.Kind())
		return n.Kind() != KindBinary
	})
	assert.Equal(t, []Kind{KindBad, KindBinary}, kinds)

	found := Find(bad, func(n Node) bool { return n.Kind() == KindLiteral })
	require.NotNil(t, found)
	assert.Equal(t, int64(1), mustInt(t, found.(Expr).ConstantValue()))
}

func mustInt(t *testing.T, v constant.Value) int64 {
	t.Helper()
	i, ok := constant.Int64Val(v)
	require.True(t, ok)
	return i
}

func TestPendingChildren(t *testing.T) {
	tab := symbols.NewBareTable("app")
	null := &NullLiteral{}
	tuple := &UnconvertedTuple{Elements: []Node{lit(tab, 1), null}}
	children := Children(tuple)
	require.Len(t, children, 2)
	assert.True(t, children[1].Kind().IsPending())
	assert.False(t, children[0].Kind().IsPending())
}

func TestAnyErrors(t *testing.T) {
	tab := symbols.NewBareTable("app")
	ok := lit(tab, 1)
	bad := &Bad{Typed: Header(nil, &symbols.ErrorType{}, true)}
	assert.False(t, AnyErrors[Expr](ok, nil))
	assert.True(t, AnyErrors[Expr](ok, bad))
	assert.False(t, AnyErrors[Node]())
}

func TestTypeIsNeverNil(t *testing.T) {
	n := &Literal{}
	var err error
	func() {
		defer contract.Recover(&err)
		n.Type()
	}()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "without a type")
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "BadExpression", KindBad.String())
	assert.Equal(t, "MethodGroup", KindMethodGroup.String())
	assert.Equal(t, "Unknown", Kind(200).String())
	assert.True(t, KindUnboundLambda.IsPending())
	assert.False(t, KindBad.IsPending())
}
