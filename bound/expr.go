// Copyright © 2024 The ELPS authors

package bound

import (
	"github.com/luthersystems/sembind/conversions"
	"github.com/luthersystems/sembind/lookup"
	"github.com/luthersystems/sembind/symbols"
	"github.com/luthersystems/sembind/syntax"
)

// Literal is a constant literal. A converted null literal is a Literal
// with a nil Const and the target type.
type Literal struct {
	Typed
}

// IsNull reports whether the literal is a typed null.
func (n *Literal) IsNull() bool { return n.Const == nil }

// Local is a read of a local variable or constant.
type Local struct {
	Typed
	Symbol *symbols.Symbol
}

// Parameter is a read of a method or lambda parameter.
type Parameter struct {
	Typed
	Symbol *symbols.Symbol
}

// FieldAccess reads a field. Receiver is nil for static fields.
type FieldAccess struct {
	Typed
	Receiver Expr
	Field    *symbols.Symbol
}

// PropertyAccess reads a property. Receiver is nil for static properties;
// for extension properties it is the extension receiver.
type PropertyAccess struct {
	Typed
	Receiver    Expr
	Property    *symbols.Symbol
	IsExtension bool
}

// Call invokes a method. Args are in parameter order and complete: every
// optional parameter has a DefaultArgument and, in expanded form, the
// params parameter has an ArrayCreation holding the trailing arguments.
// For extension methods the receiver is Args[0] and Receiver is nil.
type Call struct {
	Typed
	Receiver Expr
	Method   *symbols.Symbol
	Args     []Expr
	// ArgsToParams maps each source argument to the ordinal of the
	// parameter it was bound to.
	ArgsToParams       []int
	Expanded           bool
	InvokedAsExtension bool
}

// ObjectCreation calls a constructor. Constructor is nil for
// parameterless creation of a value type without declared constructors.
type ObjectCreation struct {
	Typed
	Constructor  *symbols.Symbol
	Args         []Expr
	ArgsToParams []int
	Expanded     bool
}

// IndexerAccess reads an indexer.
type IndexerAccess struct {
	Typed
	Receiver     Expr
	Indexer      *symbols.Symbol
	Args         []Expr
	ArgsToParams []int
	Expanded     bool
}

// ArrayAccess reads an array element.
type ArrayAccess struct {
	Typed
	Array   Expr
	Indices []Expr
}

// ImplicitIndexerAccess is element access with an Index or Range argument
// on a type that only has a Length or Count property and an int indexer
// or a Slice(int, int) method.
type ImplicitIndexerAccess struct {
	Typed
	Receiver Expr
	Argument Expr
	// LengthOrCount is the property used to resolve from-end indices.
	LengthOrCount *symbols.Symbol
	// Indexer is the int indexer for Index arguments or the Slice method
	// for Range arguments.
	Indexer *symbols.Symbol
}

// Conversion converts Operand to the node's type.
type Conversion struct {
	Typed
	Operand    Expr
	Conversion conversions.Conversion
	// Explicit marks conversions written as casts.
	Explicit bool
}

// TypeExpr names a type, as the receiver of a static member access.
type TypeExpr struct {
	Typed
}

// This is the instance receiver. Implicit marks receivers synthesized for
// unqualified instance member references.
type This struct {
	Typed
	Implicit bool
}

// Lambda is a function literal converted to a delegate type.
type Lambda struct {
	Typed
	Params []*symbols.Symbol
	Body   Expr
}

// Delegate returns the delegate type the lambda was converted to.
func (n *Lambda) Delegate() *symbols.NamedType {
	nt, _ := n.Typ.(*symbols.NamedType)
	return nt
}

// DelegateCreation is a method group converted to a delegate type.
type DelegateCreation struct {
	Typed
	Receiver           Expr
	Method             *symbols.Symbol
	InvokedAsExtension bool
}

// Tuple is a tuple literal with a natural or target type.
type Tuple struct {
	Typed
	Elements []Expr
	Names    []string
}

// Collection is a collection literal converted to an array, List<T>,
// Span<T>, ReadOnlySpan<T> or sequence interface.
type Collection struct {
	Typed
	ElementType symbols.Type
	Elements    []Expr
	// Spread marks elements that are spread collections; their type is
	// the collection, not the element type.
	Spread []bool
}

// InterpolatedString is an interpolated string of type string, or
// converted to IFormattable or FormattableString.
type InterpolatedString struct {
	Typed
	Holes []Expr
}

// Binary is a binary operator application. Operator is a user-defined
// operator method or a synthesized predefined operator signature.
type Binary struct {
	Typed
	Op       syntax.BinaryOp
	Left     Expr
	Right    Expr
	Operator *symbols.Symbol
	Lifted   bool
}

// Unary is a unary operator application. For ^ the operand is an int and
// Operator is the Index constructor.
type Unary struct {
	Typed
	Op       syntax.UnaryOp
	Operand  Expr
	Operator *symbols.Symbol
	Lifted   bool
}

// DefaultValue is the default value of its type: a converted default
// literal or default(T).
type DefaultValue struct {
	Typed
}

// ArrayCreation is a synthesized array, the collection of trailing
// arguments passed to a params parameter in expanded form.
type ArrayCreation struct {
	Typed
	Elements []Expr
}

// DefaultArgument is the value supplied for an omitted optional
// parameter. Caller-info parameters get a constant describing the call
// site.
type DefaultArgument struct {
	Typed
	Param      *symbols.Parameter
	CallerInfo symbols.CallerInfo
}

// Bad is the error recovery node. It keeps the failure classification,
// the candidate symbols that were considered and the children that could
// be bound, and always has a type.
type Bad struct {
	Typed
	ResultKind lookup.ResultKind
	Candidates []*symbols.Symbol
	Children   []Expr
}

func (*Literal) Kind() Kind               { return KindLiteral }
func (*Local) Kind() Kind                 { return KindLocal }
func (*Parameter) Kind() Kind             { return KindParameter }
func (*FieldAccess) Kind() Kind           { return KindFieldAccess }
func (*PropertyAccess) Kind() Kind        { return KindPropertyAccess }
func (*Call) Kind() Kind                  { return KindCall }
func (*ObjectCreation) Kind() Kind        { return KindObjectCreation }
func (*IndexerAccess) Kind() Kind         { return KindIndexerAccess }
func (*ArrayAccess) Kind() Kind           { return KindArrayAccess }
func (*ImplicitIndexerAccess) Kind() Kind { return KindImplicitIndexerAccess }
func (*Conversion) Kind() Kind            { return KindConversion }
func (*TypeExpr) Kind() Kind              { return KindTypeExpr }
func (*This) Kind() Kind                  { return KindThis }
func (*Lambda) Kind() Kind                { return KindLambda }
func (*DelegateCreation) Kind() Kind      { return KindDelegateCreation }
func (*Tuple) Kind() Kind                 { return KindTuple }
func (*Collection) Kind() Kind            { return KindCollection }
func (*InterpolatedString) Kind() Kind    { return KindInterpolatedString }
func (*Binary) Kind() Kind                { return KindBinary }
func (*Unary) Kind() Kind                 { return KindUnary }
func (*DefaultValue) Kind() Kind          { return KindDefaultValue }
func (*ArrayCreation) Kind() Kind         { return KindArrayCreation }
func (*DefaultArgument) Kind() Kind       { return KindDefaultArgument }
func (*Bad) Kind() Kind                   { return KindBad }

func (n *Literal) Accept(v Visitor)               { v.VisitLiteral(n) }
func (n *Local) Accept(v Visitor)                 { v.VisitLocal(n) }
func (n *Parameter) Accept(v Visitor)             { v.VisitParameter(n) }
func (n *FieldAccess) Accept(v Visitor)           { v.VisitFieldAccess(n) }
func (n *PropertyAccess) Accept(v Visitor)        { v.VisitPropertyAccess(n) }
func (n *Call) Accept(v Visitor)                  { v.VisitCall(n) }
func (n *ObjectCreation) Accept(v Visitor)        { v.VisitObjectCreation(n) }
func (n *IndexerAccess) Accept(v Visitor)         { v.VisitIndexerAccess(n) }
func (n *ArrayAccess) Accept(v Visitor)           { v.VisitArrayAccess(n) }
func (n *ImplicitIndexerAccess) Accept(v Visitor) { v.VisitImplicitIndexerAccess(n) }
func (n *Conversion) Accept(v Visitor)            { v.VisitConversion(n) }
func (n *TypeExpr) Accept(v Visitor)              { v.VisitTypeExpr(n) }
func (n *This) Accept(v Visitor)                  { v.VisitThis(n) }
func (n *Lambda) Accept(v Visitor)                { v.VisitLambda(n) }
func (n *DelegateCreation) Accept(v Visitor)      { v.VisitDelegateCreation(n) }
func (n *Tuple) Accept(v Visitor)                 { v.VisitTuple(n) }
func (n *Collection) Accept(v Visitor)            { v.VisitCollection(n) }
func (n *InterpolatedString) Accept(v Visitor)    { v.VisitInterpolatedString(n) }
func (n *Binary) Accept(v Visitor)                { v.VisitBinary(n) }
func (n *Unary) Accept(v Visitor)                 { v.VisitUnary(n) }
func (n *DefaultValue) Accept(v Visitor)          { v.VisitDefaultValue(n) }
func (n *ArrayCreation) Accept(v Visitor)         { v.VisitArrayCreation(n) }
func (n *DefaultArgument) Accept(v Visitor)       { v.VisitDefaultArgument(n) }
func (n *Bad) Accept(v Visitor)                   { v.VisitBad(n) }
