// Copyright © 2024 The ELPS authors

package bound

import "github.com/luthersystems/sembind/contract"

func unknownNode(n Node) {
	contract.Failf("unknown bound node %T", n)
}

// Children returns the direct children of n in evaluation order. Nil
// children (absent receivers) are omitted.
func Children(n Node) []Node {
	c := &collector{}
	Dispatch(n, c, c)
	return c.out
}

// Walk calls fn for n and, while fn returns true, for the children of each
// visited node in depth-first order.
func Walk(n Node, fn func(Node) bool) {
	if n == nil || !fn(n) {
		return
	}
	for _, c := range Children(n) {
		Walk(c, fn)
	}
}

// Find returns the first node in depth-first order for which pred holds.
func Find(n Node, pred func(Node) bool) Node {
	var found Node
	Walk(n, func(x Node) bool {
		if found != nil {
			return false
		}
		if pred(x) {
			found = x
			return false
		}
		return true
	})
	return found
}

type collector struct {
	out []Node
}

func (c *collector) add(nodes ...Expr) {
	for _, n := range nodes {
		if n != nil {
			c.out = append(c.out, n)
		}
	}
}

func (c *collector) addNodes(nodes []Node) {
	for _, n := range nodes {
		if n != nil {
			c.out = append(c.out, n)
		}
	}
}

func (c *collector) VisitLiteral(*Literal)                 {}
func (c *collector) VisitLocal(*Local)                     {}
func (c *collector) VisitParameter(*Parameter)             {}
func (c *collector) VisitTypeExpr(*TypeExpr)               {}
func (c *collector) VisitThis(*This)                       {}
func (c *collector) VisitDefaultValue(*DefaultValue)       {}
func (c *collector) VisitDefaultArgument(*DefaultArgument) {}

func (c *collector) VisitFieldAccess(n *FieldAccess)       { c.add(n.Receiver) }
func (c *collector) VisitPropertyAccess(n *PropertyAccess) { c.add(n.Receiver) }

func (c *collector) VisitCall(n *Call) {
	c.add(n.Receiver)
	c.add(n.Args...)
}

func (c *collector) VisitObjectCreation(n *ObjectCreation) { c.add(n.Args...) }

func (c *collector) VisitIndexerAccess(n *IndexerAccess) {
	c.add(n.Receiver)
	c.add(n.Args...)
}

func (c *collector) VisitArrayAccess(n *ArrayAccess) {
	c.add(n.Array)
	c.add(n.Indices...)
}

func (c *collector) VisitImplicitIndexerAccess(n *ImplicitIndexerAccess) {
	c.add(n.Receiver, n.Argument)
}

func (c *collector) VisitConversion(n *Conversion)             { c.add(n.Operand) }
func (c *collector) VisitLambda(n *Lambda)                     { c.add(n.Body) }
func (c *collector) VisitDelegateCreation(n *DelegateCreation) { c.add(n.Receiver) }
func (c *collector) VisitTuple(n *Tuple)                       { c.add(n.Elements...) }
func (c *collector) VisitCollection(n *Collection)             { c.add(n.Elements...) }
func (c *collector) VisitInterpolatedString(n *InterpolatedString) {
	c.add(n.Holes...)
}
func (c *collector) VisitBinary(n *Binary)               { c.add(n.Left, n.Right) }
func (c *collector) VisitUnary(n *Unary)                 { c.add(n.Operand) }
func (c *collector) VisitArrayCreation(n *ArrayCreation) { c.add(n.Elements...) }
func (c *collector) VisitBad(n *Bad)                     { c.add(n.Children...) }

func (c *collector) VisitNullLiteral(*NullLiteral)       {}
func (c *collector) VisitDefaultLiteral(*DefaultLiteral) {}
func (c *collector) VisitUnboundLambda(*UnboundLambda)   {}
func (c *collector) VisitMethodGroup(n *MethodGroup)     { c.add(n.Receiver) }
func (c *collector) VisitUnconvertedTuple(n *UnconvertedTuple) {
	c.addNodes(n.Elements)
}
func (c *collector) VisitUnconvertedCollection(n *UnconvertedCollection) {
	c.addNodes(n.Elements)
}
