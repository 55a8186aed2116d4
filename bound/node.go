// Copyright © 2024 The ELPS authors

// Package bound defines the typed expression trees produced by the binder.
//
// Two closed families of nodes exist. Expr nodes are resolved: they always
// have a type. Pending nodes (null and default literals, lambdas, method
// groups, tuple and collection literals) are waiting for a target type and
// have no Type method at all; the binder turns them into Expr nodes by
// converting them to a target type or, failing that, through error
// recovery. Both families are sealed by unexported marker methods and can
// be matched exhaustively with Visitor and PendingVisitor.
//
// Nodes are immutable once constructed.
package bound

import (
	"go/constant"

	"github.com/luthersystems/sembind/contract"
	"github.com/luthersystems/sembind/symbols"
	"github.com/luthersystems/sembind/syntax"
)

// Kind is the discriminant of a bound node.
type Kind uint8

const (
	KindLiteral Kind = iota
	KindLocal
	KindParameter
	KindFieldAccess
	KindPropertyAccess
	KindCall
	KindObjectCreation
	KindIndexerAccess
	KindArrayAccess
	KindImplicitIndexerAccess
	KindConversion
	KindTypeExpr
	KindThis
	KindLambda
	KindDelegateCreation
	KindTuple
	KindCollection
	KindInterpolatedString
	KindBinary
	KindUnary
	KindDefaultValue
	KindArrayCreation
	KindDefaultArgument
	KindBad

	// Pending kinds.
	KindNullLiteral
	KindDefaultLiteral
	KindUnboundLambda
	KindMethodGroup
	KindUnconvertedTuple
	KindUnconvertedCollection
)

var kindNames = [...]string{
	KindLiteral:               "Literal",
	KindLocal:                 "Local",
	KindParameter:             "Parameter",
	KindFieldAccess:           "FieldAccess",
	KindPropertyAccess:        "PropertyAccess",
	KindCall:                  "Call",
	KindObjectCreation:        "ObjectCreation",
	KindIndexerAccess:         "IndexerAccess",
	KindArrayAccess:           "ArrayAccess",
	KindImplicitIndexerAccess: "ImplicitIndexerAccess",
	KindConversion:            "Conversion",
	KindTypeExpr:              "TypeExpr",
	KindThis:                  "This",
	KindLambda:                "Lambda",
	KindDelegateCreation:      "DelegateCreation",
	KindTuple:                 "Tuple",
	KindCollection:            "Collection",
	KindInterpolatedString:    "InterpolatedString",
	KindBinary:                "Binary",
	KindUnary:                 "Unary",
	KindDefaultValue:          "DefaultValue",
	KindArrayCreation:         "ArrayCreation",
	KindDefaultArgument:       "DefaultArgument",
	KindBad:                   "BadExpression",
	KindNullLiteral:           "NullLiteral",
	KindDefaultLiteral:        "DefaultLiteral",
	KindUnboundLambda:         "UnboundLambda",
	KindMethodGroup:           "MethodGroup",
	KindUnconvertedTuple:      "UnconvertedTuple",
	KindUnconvertedCollection: "UnconvertedCollection",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "Unknown"
}

// IsPending reports whether k is the kind of a Pending node.
func (k Kind) IsPending() bool {
	return k >= KindNullLiteral
}

// Node is implemented by every bound node.
type Node interface {
	Kind() Kind
	// Syntax returns the expression the node was bound from. Synthesized
	// nodes (default arguments, params arrays, implicit receivers) return
	// the syntax they were synthesized for.
	Syntax() syntax.Expr
	// HasErrors reports whether the node or any of its children is
	// erroneous. Diagnostics for such nodes have already been reported.
	HasErrors() bool
	node()
}

// Expr is a resolved node: it has a type and possibly a constant value.
type Expr interface {
	Node
	// Type is never nil; erroneous nodes carry an error type when nothing
	// better is known.
	Type() symbols.Type
	// ConstantValue returns the compile-time value or nil.
	ConstantValue() constant.Value
	Accept(v Visitor)
	expr()
}

// Pending is a node awaiting a target type. It has no Type
// method.
type Pending interface {
	Node
	AcceptPending(v PendingVisitor)
	pending()
}

// Base holds the fields shared by all nodes.
type Base struct {
	Src    syntax.Expr
	Errors bool
}

func (b *Base) Syntax() syntax.Expr { return b.Src }
func (b *Base) HasErrors() bool     { return b.Errors }
func (*Base) node()                 {}

// Location returns the source location of the node's syntax, or nil.
func (b *Base) Location() *syntax.Location {
	if b.Src == nil {
		return nil
	}
	return b.Src.Location()
}

// Typed holds the fields shared by resolved nodes.
type Typed struct {
	Base
	Typ   symbols.Type
	Const constant.Value
}

// Header returns the common fields of a resolved node.
func Header(src syntax.Expr, typ symbols.Type, errs bool) Typed {
	return Typed{Base: Base{Src: src, Errors: errs}, Typ: typ}
}

func (t *Typed) Type() symbols.Type {
	contract.Assertf(t.Typ != nil, "bound %T without a type", t.Src)
	return t.Typ
}

func (t *Typed) ConstantValue() constant.Value { return t.Const }
func (*Typed) expr()                           {}

// PendingBase holds the fields shared by pending nodes.
type PendingBase struct {
	Base
}

func (*PendingBase) pending() {}

// AnyErrors reports whether any of nodes has errors. Nil nodes are
// skipped.
func AnyErrors[N Node](nodes ...N) bool {
	for _, n := range nodes {
		if Node(n) != nil && n.HasErrors() {
			return true
		}
	}
	return false
}

// TypeOf returns the type of a resolved node and nil for pending nodes.
func TypeOf(n Node) symbols.Type {
	if e, ok := n.(Expr); ok {
		return e.Type()
	}
	return nil
}

// Display describes n for diagnostics: the type of a resolved node, or the
// shape of a pending one.
func Display(n Node) string {
	switch n := n.(type) {
	case Expr:
		return n.Type().String()
	case *NullLiteral:
		return "<null>"
	case *DefaultLiteral:
		return "default"
	case *UnboundLambda:
		return "lambda expression"
	case *MethodGroup:
		return "method group"
	case *UnconvertedTuple:
		return "tuple literal"
	case *UnconvertedCollection:
		return "collection expression"
	}
	return "?"
}
