// Copyright © 2024 The ELPS authors

// Package syntax defines the immutable expression trees consumed by the
// binder.
//
// Trees are produced by an external parser (see package parser for the
// tooling grammar) and are never modified after construction. Every node
// carries its source Location so that diagnostics and IDE queries can be
// attributed to a span.
package syntax

// Kind tags the shape of a syntax node.
type Kind uint

const (
	KindInvalid Kind = iota
	KindIdentifier
	KindGenericName
	KindLiteral
	KindMemberAccess
	KindInvocation
	KindObjectCreation
	KindElementAccess
	KindParenthesized
	KindCast
	KindTuple
	KindCollection
	KindInterpolatedString
	KindLambda
	KindDefault
	KindThis
	KindBinary
	KindUnary
	KindRange
)

var kindNames = [...]string{
	KindInvalid:            "invalid",
	KindIdentifier:         "identifier",
	KindGenericName:        "generic-name",
	KindLiteral:            "literal",
	KindMemberAccess:       "member-access",
	KindInvocation:         "invocation",
	KindObjectCreation:     "object-creation",
	KindElementAccess:      "element-access",
	KindParenthesized:      "parenthesized",
	KindCast:               "cast",
	KindTuple:              "tuple",
	KindCollection:         "collection",
	KindInterpolatedString: "interpolated-string",
	KindLambda:             "lambda",
	KindDefault:            "default",
	KindThis:               "this",
	KindBinary:             "binary",
	KindUnary:              "unary",
	KindRange:              "range",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// Expr is an expression syntax node. The set of implementations is closed;
// Accept dispatches to the matching Visitor method.
type Expr interface {
	Kind() Kind
	Location() *Location
	Accept(v Visitor)
}

// Visitor has one method per expression shape. Adding a shape to this
// package breaks every Visitor implementation until it handles the shape.
type Visitor interface {
	VisitIdentifier(n *Identifier)
	VisitGenericName(n *GenericName)
	VisitLiteral(n *Literal)
	VisitMemberAccess(n *MemberAccess)
	VisitInvocation(n *Invocation)
	VisitObjectCreation(n *ObjectCreation)
	VisitElementAccess(n *ElementAccess)
	VisitParenthesized(n *Parenthesized)
	VisitCast(n *Cast)
	VisitTuple(n *Tuple)
	VisitCollection(n *Collection)
	VisitInterpolatedString(n *InterpolatedString)
	VisitLambda(n *Lambda)
	VisitDefault(n *Default)
	VisitThis(n *This)
	VisitBinary(n *Binary)
	VisitUnary(n *Unary)
	VisitRange(n *Range)
}

// RefKind is the passing mode of an argument or parameter.
type RefKind uint8

const (
	RefNone RefKind = iota
	RefRef
	RefOut
	RefIn
)

func (r RefKind) String() string {
	switch r {
	case RefRef:
		return "ref"
	case RefOut:
		return "out"
	case RefIn:
		return "in"
	default:
		return ""
	}
}

// TypeRef is a type written in source: a possibly dotted name with optional
// type arguments, nullable marker and array ranks.
type TypeRef struct {
	Source   *Location
	Name     string
	TypeArgs []*TypeRef
	Nullable bool
	// ArrayRanks holds one entry per trailing [] suffix, outermost first.
	ArrayRanks []int
}

// Argument is one argument of an invocation, object creation, element
// access or tuple literal.
type Argument struct {
	Source  *Location
	Name    string
	NameLoc *Location
	RefKind RefKind
	Expr    Expr
}

// Identifier is a simple name.
type Identifier struct {
	Source *Location
	Name   string
}

// GenericName is a simple name with explicit type arguments, as in M<int>.
type GenericName struct {
	Source   *Location
	Name     string
	TypeArgs []*TypeRef
}

// LiteralKind classifies a literal token.
type LiteralKind uint8

const (
	LitInteger LiteralKind = iota
	LitReal
	LitString
	LitChar
	LitTrue
	LitFalse
	LitNull
)

// Literal is a literal token. Text is the token as written (including any
// numeric suffix); string and character literals hold the unescaped value.
type Literal struct {
	Source  *Location
	LitKind LiteralKind
	Text    string
}

// MemberAccess is receiver.Name or receiver.Name<TypeArgs>.
type MemberAccess struct {
	Source   *Location
	Receiver Expr
	Name     string
	NameLoc  *Location
	TypeArgs []*TypeRef
}

// Invocation is callee(args).
type Invocation struct {
	Source *Location
	Callee Expr
	Args   []*Argument
}

// ObjectCreation is new T(args).
type ObjectCreation struct {
	Source *Location
	Type   *TypeRef
	Args   []*Argument
}

// ElementAccess is receiver[args].
type ElementAccess struct {
	Source   *Location
	Receiver Expr
	Args     []*Argument
}

// Parenthesized is (inner).
type Parenthesized struct {
	Source *Location
	Inner  Expr
}

// Cast is (T)operand.
type Cast struct {
	Source  *Location
	Type    *TypeRef
	Operand Expr
}

// Tuple is a tuple literal (a, name: b). Element names are carried by the
// argument names.
type Tuple struct {
	Source   *Location
	Elements []*Argument
}

// CollectionElement is a collection literal element; Spread elements
// contribute every element of their operand.
type CollectionElement struct {
	Source *Location
	Expr   Expr
	Spread bool
}

// Collection is a collection literal [a, b, ..c].
type Collection struct {
	Source   *Location
	Elements []*CollectionElement
}

// InterpolationPart is either literal text or an interpolation hole.
type InterpolationPart struct {
	Text string
	Expr Expr
}

// InterpolatedString is $"text{expr}text".
type InterpolatedString struct {
	Source *Location
	Parts  []InterpolationPart
}

// LambdaParam is a lambda parameter; Type is nil when implicitly typed.
type LambdaParam struct {
	Source *Location
	Name   string
	Type   *TypeRef
}

// Lambda is (params) => body.
type Lambda struct {
	Source *Location
	Params []*LambdaParam
	Body   Expr
}

// Default is either the default literal (Type == nil) or default(T).
type Default struct {
	Source *Location
	Type   *TypeRef
}

// This is the this keyword.
type This struct {
	Source *Location
}

// BinaryOp is a binary operator token.
type BinaryOp uint8

const (
	OpAdd BinaryOp = iota
	OpSub
	OpMul
	OpDiv
	OpMod
	OpEq
	OpNe
	OpLt
	OpGt
	OpLe
	OpGe
	OpAndAlso
	OpOrElse
)

var binaryOpText = [...]string{
	OpAdd:     "+",
	OpSub:     "-",
	OpMul:     "*",
	OpDiv:     "/",
	OpMod:     "%",
	OpEq:      "==",
	OpNe:      "!=",
	OpLt:      "<",
	OpGt:      ">",
	OpLe:      "<=",
	OpGe:      ">=",
	OpAndAlso: "&&",
	OpOrElse:  "||",
}

func (op BinaryOp) String() string {
	if int(op) < len(binaryOpText) {
		return binaryOpText[op]
	}
	return "?"
}

// ParseBinaryOp returns the operator spelled by text.
func ParseBinaryOp(text string) (BinaryOp, bool) {
	for i, s := range binaryOpText {
		if s == text {
			return BinaryOp(i), true
		}
	}
	return 0, false
}

// Binary is left op right.
type Binary struct {
	Source *Location
	Op     BinaryOp
	Left   Expr
	Right  Expr
}

// UnaryOp is a prefix operator token.
type UnaryOp uint8

const (
	OpNeg UnaryOp = iota
	OpNot
	OpHat
)

func (op UnaryOp) String() string {
	switch op {
	case OpNeg:
		return "-"
	case OpNot:
		return "!"
	case OpHat:
		return "^"
	default:
		return "?"
	}
}

// Unary is op operand.
type Unary struct {
	Source  *Location
	Op      UnaryOp
	Operand Expr
}

// Range is start..end; either bound may be nil.
type Range struct {
	Source *Location
	Start  Expr
	End    Expr
}

func (n *Identifier) Kind() Kind         { return KindIdentifier }
func (n *GenericName) Kind() Kind        { return KindGenericName }
func (n *Literal) Kind() Kind            { return KindLiteral }
func (n *MemberAccess) Kind() Kind       { return KindMemberAccess }
func (n *Invocation) Kind() Kind         { return KindInvocation }
func (n *ObjectCreation) Kind() Kind     { return KindObjectCreation }
func (n *ElementAccess) Kind() Kind      { return KindElementAccess }
func (n *Parenthesized) Kind() Kind      { return KindParenthesized }
func (n *Cast) Kind() Kind               { return KindCast }
func (n *Tuple) Kind() Kind              { return KindTuple }
func (n *Collection) Kind() Kind         { return KindCollection }
func (n *InterpolatedString) Kind() Kind { return KindInterpolatedString }
func (n *Lambda) Kind() Kind             { return KindLambda }
func (n *Default) Kind() Kind            { return KindDefault }
func (n *This) Kind() Kind               { return KindThis }
func (n *Binary) Kind() Kind             { return KindBinary }
func (n *Unary) Kind() Kind              { return KindUnary }
func (n *Range) Kind() Kind              { return KindRange }

func (n *Identifier) Location() *Location         { return n.Source }
func (n *GenericName) Location() *Location        { return n.Source }
func (n *Literal) Location() *Location            { return n.Source }
func (n *MemberAccess) Location() *Location       { return n.Source }
func (n *Invocation) Location() *Location         { return n.Source }
func (n *ObjectCreation) Location() *Location     { return n.Source }
func (n *ElementAccess) Location() *Location      { return n.Source }
func (n *Parenthesized) Location() *Location      { return n.Source }
func (n *Cast) Location() *Location               { return n.Source }
func (n *Tuple) Location() *Location              { return n.Source }
func (n *Collection) Location() *Location         { return n.Source }
func (n *InterpolatedString) Location() *Location { return n.Source }
func (n *Lambda) Location() *Location             { return n.Source }
func (n *Default) Location() *Location            { return n.Source }
func (n *This) Location() *Location               { return n.Source }
func (n *Binary) Location() *Location             { return n.Source }
func (n *Unary) Location() *Location              { return n.Source }
func (n *Range) Location() *Location              { return n.Source }

func (n *Identifier) Accept(v Visitor)         { v.VisitIdentifier(n) }
func (n *GenericName) Accept(v Visitor)        { v.VisitGenericName(n) }
func (n *Literal) Accept(v Visitor)            { v.VisitLiteral(n) }
func (n *MemberAccess) Accept(v Visitor)       { v.VisitMemberAccess(n) }
func (n *Invocation) Accept(v Visitor)         { v.VisitInvocation(n) }
func (n *ObjectCreation) Accept(v Visitor)     { v.VisitObjectCreation(n) }
func (n *ElementAccess) Accept(v Visitor)      { v.VisitElementAccess(n) }
func (n *Parenthesized) Accept(v Visitor)      { v.VisitParenthesized(n) }
func (n *Cast) Accept(v Visitor)               { v.VisitCast(n) }
func (n *Tuple) Accept(v Visitor)              { v.VisitTuple(n) }
func (n *Collection) Accept(v Visitor)         { v.VisitCollection(n) }
func (n *InterpolatedString) Accept(v Visitor) { v.VisitInterpolatedString(n) }
func (n *Lambda) Accept(v Visitor)             { v.VisitLambda(n) }
func (n *Default) Accept(v Visitor)            { v.VisitDefault(n) }
func (n *This) Accept(v Visitor)               { v.VisitThis(n) }
func (n *Binary) Accept(v Visitor)             { v.VisitBinary(n) }
func (n *Unary) Accept(v Visitor)              { v.VisitUnary(n) }
func (n *Range) Accept(v Visitor)              { v.VisitRange(n) }
