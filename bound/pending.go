// Copyright © 2024 The ELPS authors

package bound

import (
	"github.com/luthersystems/sembind/diagnostic"
	"github.com/luthersystems/sembind/lookup"
	"github.com/luthersystems/sembind/symbols"
	"github.com/luthersystems/sembind/syntax"
)

// NullLiteral is the literal null before it is given a type.
type NullLiteral struct {
	PendingBase
}

// DefaultLiteral is the literal default before it is given a type.
type DefaultLiteral struct {
	PendingBase
}

// BodyBinder binds the body of a lambda with the given parameter types.
// When ret is non-nil the body is converted to ret; void discards the
// body's value. Diagnostics go to sink, which is diagnostic.Discard for
// speculative binds during overload resolution.
type BodyBinder func(paramTypes []symbols.Type, ret symbols.Type, sink diagnostic.Sink) (params []*symbols.Symbol, body Expr)

// UnboundLambda is a lambda whose parameter types and body are bound only
// once a delegate type is known. It can be bound any number of times; each
// bind is independent.
type UnboundLambda struct {
	PendingBase
	Lambda *syntax.Lambda
	Names  []string
	// ExplicitTypes holds the declared parameter types, or nil when the
	// lambda's parameters are implicitly typed.
	ExplicitTypes []symbols.Type
	BindBody      BodyBinder
}

// HasExplicitTypes reports whether the parameters have declared types.
func (n *UnboundLambda) HasExplicitTypes() bool {
	return n.ExplicitTypes != nil
}

// BindTo binds the lambda for delegate, whose Invoke method is invoke.
func (n *UnboundLambda) BindTo(delegate *symbols.NamedType, invoke *symbols.Symbol, sink diagnostic.Sink) *Lambda {
	types := make([]symbols.Type, len(invoke.Params))
	for i, p := range invoke.Params {
		types[i] = p.Type
	}
	params, body := n.BindBody(types, invoke.Type, sink)
	return &Lambda{
		Typed:  Header(n.Src, delegate, body.HasErrors()),
		Params: params,
		Body:   body,
	}
}

// InferReturnType binds the body speculatively with the given parameter
// types and returns the type of the body, or nil when it has none.
func (n *UnboundLambda) InferReturnType(paramTypes []symbols.Type) symbols.Type {
	_, body := n.BindBody(paramTypes, nil, diagnostic.Discard)
	if body == nil || (body.HasErrors() && symbols.IsErrorType(body.Type())) {
		return nil
	}
	return body.Type()
}

// MethodGroup is a set of methods found by name, before overload
// resolution picks one for an invocation or a delegate conversion.
type MethodGroup struct {
	PendingBase
	// Receiver is the instance or type the methods were looked up on, or
	// nil for unqualified names in a static context.
	Receiver Expr
	Name     string
	Methods  []*symbols.Symbol
	TypeArgs []symbols.Type
	// ResultKind and Lookup describe the member lookup.
	ResultKind lookup.ResultKind
	Lookup     lookup.Result
	// SearchExtensions is set when extension methods must be considered
	// for the receiver if the instance methods do not apply.
	SearchExtensions bool
	// Scope and Within are the lookup context of the group, for
	// extension search and accessibility when the group is converted.
	Scope  *symbols.Scope
	Within *symbols.NamedType
}

// UnconvertedTuple is a tuple literal with an element that has no type.
type UnconvertedTuple struct {
	PendingBase
	Elements []Node
	Names    []string
}

// UnconvertedCollection is a collection literal awaiting its target type.
type UnconvertedCollection struct {
	PendingBase
	Elements []Node
	Spread   []bool
}

func (*NullLiteral) Kind() Kind           { return KindNullLiteral }
func (*DefaultLiteral) Kind() Kind        { return KindDefaultLiteral }
func (*UnboundLambda) Kind() Kind         { return KindUnboundLambda }
func (*MethodGroup) Kind() Kind           { return KindMethodGroup }
func (*UnconvertedTuple) Kind() Kind      { return KindUnconvertedTuple }
func (*UnconvertedCollection) Kind() Kind { return KindUnconvertedCollection }

func (n *NullLiteral) AcceptPending(v PendingVisitor)           { v.VisitNullLiteral(n) }
func (n *DefaultLiteral) AcceptPending(v PendingVisitor)        { v.VisitDefaultLiteral(n) }
func (n *UnboundLambda) AcceptPending(v PendingVisitor)         { v.VisitUnboundLambda(n) }
func (n *MethodGroup) AcceptPending(v PendingVisitor)           { v.VisitMethodGroup(n) }
func (n *UnconvertedTuple) AcceptPending(v PendingVisitor)      { v.VisitUnconvertedTuple(n) }
func (n *UnconvertedCollection) AcceptPending(v PendingVisitor) { v.VisitUnconvertedCollection(n) }
