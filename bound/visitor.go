// Copyright © 2024 The ELPS authors

package bound

// Visitor has one method per resolved node kind. Adding a node kind adds a
// method here, which breaks every implementation until it handles the new
// kind.
type Visitor interface {
	VisitLiteral(n *Literal)
	VisitLocal(n *Local)
	VisitParameter(n *Parameter)
	VisitFieldAccess(n *FieldAccess)
	VisitPropertyAccess(n *PropertyAccess)
	VisitCall(n *Call)
	VisitObjectCreation(n *ObjectCreation)
	VisitIndexerAccess(n *IndexerAccess)
	VisitArrayAccess(n *ArrayAccess)
	VisitImplicitIndexerAccess(n *ImplicitIndexerAccess)
	VisitConversion(n *Conversion)
	VisitTypeExpr(n *TypeExpr)
	VisitThis(n *This)
	VisitLambda(n *Lambda)
	VisitDelegateCreation(n *DelegateCreation)
	VisitTuple(n *Tuple)
	VisitCollection(n *Collection)
	VisitInterpolatedString(n *InterpolatedString)
	VisitBinary(n *Binary)
	VisitUnary(n *Unary)
	VisitDefaultValue(n *DefaultValue)
	VisitArrayCreation(n *ArrayCreation)
	VisitDefaultArgument(n *DefaultArgument)
	VisitBad(n *Bad)
}

// PendingVisitor has one method per pending node kind.
type PendingVisitor interface {
	VisitNullLiteral(n *NullLiteral)
	VisitDefaultLiteral(n *DefaultLiteral)
	VisitUnboundLambda(n *UnboundLambda)
	VisitMethodGroup(n *MethodGroup)
	VisitUnconvertedTuple(n *UnconvertedTuple)
	VisitUnconvertedCollection(n *UnconvertedCollection)
}

// Dispatch calls the matching method of v or pv. It panics with an
// internal error for nodes outside both families.
func Dispatch(n Node, v Visitor, pv PendingVisitor) {
	switch n := n.(type) {
	case Expr:
		n.Accept(v)
	case Pending:
		n.AcceptPending(pv)
	default:
		unknownNode(n)
	}
}
