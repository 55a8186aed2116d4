// Copyright © 2024 The ELPS authors

package binder

import (
	"go/constant"
	"go/token"

	"github.com/luthersystems/sembind/bound"
	"github.com/luthersystems/sembind/conversions"
	"github.com/luthersystems/sembind/diagnostic"
	"github.com/luthersystems/sembind/overload"
	"github.com/luthersystems/sembind/symbols"
	"github.com/luthersystems/sembind/syntax"
)

func (c *binding) bindBinary(n *syntax.Binary) bound.Expr {
	left := c.bindNode(n.Left)
	right := c.bindNode(n.Right)
	res := c.overload.ResolveBinary(n.Op, left, right, c.within())
	c.logResolution(n.Op.String(), "binary", &res.Result)
	if !res.Succeeded() {
		if !bound.AnyErrors(left, right) {
			c.reportOperator(n.Location(), n.Op.String(), &res, left, right)
		}
		return c.badExpr(n, res.LookupKind(), res.Candidates(), []bound.Node{left, right}, nil)
	}
	best := res.Best()
	l := c.operand(left, best, 0)
	r := c.operand(right, best, 1)
	node := &bound.Binary{
		Typed:    bound.Header(n, best.Member.Type, l.HasErrors() || r.HasErrors()),
		Op:       n.Op,
		Left:     l,
		Right:    r,
		Operator: best.Member,
		Lifted:   overload.IsLifted(best.Member),
	}
	c.useSite(best.Member, n.Location())
	if !res.UserDefined && !node.Lifted && !node.HasErrors() {
		node.Const = c.foldBinary(node)
	}
	return node
}

func (c *binding) bindUnary(n *syntax.Unary) bound.Expr {
	if n.Op == syntax.OpHat {
		return c.bindIndexFromEnd(n)
	}
	operand := c.bindNode(n.Operand)
	res := c.overload.ResolveUnary(n.Op, operand, c.within())
	c.logResolution(n.Op.String(), "unary", &res.Result)
	if !res.Succeeded() {
		if !operand.HasErrors() {
			c.reportOperator(n.Location(), n.Op.String(), &res, operand)
		}
		return c.badExpr(n, res.LookupKind(), res.Candidates(), []bound.Node{operand}, nil)
	}
	best := res.Best()
	e := c.operand(operand, best, 0)
	node := &bound.Unary{
		Typed:    bound.Header(n, best.Member.Type, e.HasErrors()),
		Op:       n.Op,
		Operand:  e,
		Operator: best.Member,
		Lifted:   overload.IsLifted(best.Member),
	}
	c.useSite(best.Member, n.Location())
	if !res.UserDefined && !node.Lifted && !node.HasErrors() {
		node.Const = c.foldUnary(node)
	}
	return node
}

// operand converts operand i to the parameter type of the chosen
// operator.
func (c *binding) operand(n bound.Node, best *overload.MemberResult, i int) bound.Expr {
	target := best.ParamType(i)
	if i < len(best.Conversions) && best.Conversions[i].IsImplicit() {
		return c.createConversion(n, best.Conversions[i], target)
	}
	return c.convert(n, target, n.Syntax().Location())
}

func (c *binding) reportOperator(loc *syntax.Location, op string, res *overload.OperatorResult, operands ...bound.Node) {
	if res.Kind == overload.FailedFinalValidation {
		args := &overload.Arguments{Args: operands}
		c.overload.Report(c.sink, overload.Site{Kind: overload.SiteMethod, Name: op, Loc: loc}, args, &res.Result)
		return
	}
	if len(operands) == 1 {
		c.report(diagnostic.ErrBadUnaryOperand, loc, op, bound.Display(operands[0]))
		return
	}
	code := diagnostic.ErrBadBinaryOperands
	if res.Kind == overload.Ambiguous {
		code = diagnostic.ErrAmbiguousBinaryOperator
	}
	c.report(code, loc, op, bound.Display(operands[0]), bound.Display(operands[1]))
}

var binaryTokens = map[syntax.BinaryOp]token.Token{
	syntax.OpAdd:     token.ADD,
	syntax.OpSub:     token.SUB,
	syntax.OpMul:     token.MUL,
	syntax.OpDiv:     token.QUO,
	syntax.OpMod:     token.REM,
	syntax.OpEq:      token.EQL,
	syntax.OpNe:      token.NEQ,
	syntax.OpLt:      token.LSS,
	syntax.OpGt:      token.GTR,
	syntax.OpLe:      token.LEQ,
	syntax.OpGe:      token.GEQ,
	syntax.OpAndAlso: token.LAND,
	syntax.OpOrElse:  token.LOR,
}

// foldBinary computes the constant value of a predefined operator applied
// to constant operands. Division by a constant zero and integral overflow
// are reported and mark the node erroneous.
func (c *binding) foldBinary(n *bound.Binary) constant.Value {
	lv, rv := n.Left.ConstantValue(), n.Right.ConstantValue()
	if lv == nil || rv == nil || lv.Kind() == constant.Unknown || rv.Kind() == constant.Unknown {
		return nil
	}
	tok := binaryTokens[n.Op]
	loc := n.Syntax().Location()
	switch n.Op {
	case syntax.OpEq, syntax.OpNe, syntax.OpLt, syntax.OpGt, syntax.OpLe, syntax.OpGe:
		if lv.Kind() != rv.Kind() {
			lv, rv = constant.ToFloat(lv), constant.ToFloat(rv)
		}
		if lv.Kind() == constant.Bool && tok != token.EQL && tok != token.NEQ {
			return nil
		}
		return constant.MakeBool(constant.Compare(lv, tok, rv))
	case syntax.OpAndAlso, syntax.OpOrElse:
		if lv.Kind() != constant.Bool || rv.Kind() != constant.Bool {
			return nil
		}
		return constant.BinaryOp(lv, tok, rv)
	}

	st := constantSpecial(n.Type())
	switch {
	case st == symbols.SpecialString:
		if n.Op == syntax.OpAdd && lv.Kind() == constant.String && rv.Kind() == constant.String {
			return constant.BinaryOp(lv, token.ADD, rv)
		}
		return nil
	case st.IsIntegral():
		if lv.Kind() != constant.Int || rv.Kind() != constant.Int {
			return nil
		}
		if n.Op == syntax.OpDiv || n.Op == syntax.OpMod {
			if conversions.IsZero(rv) {
				c.report(diagnostic.ErrDivideByZero, loc)
				n.Errors = true
				return nil
			}
			if n.Op == syntax.OpDiv {
				tok = token.QUO_ASSIGN
			}
		}
		v := constant.BinaryOp(lv, tok, rv)
		if !conversions.FitsIntegral(v, st) {
			c.report(diagnostic.ErrConstantOverflow, loc, v.ExactString(), n.Type().String())
			n.Errors = true
			return nil
		}
		return v
	case st.IsNumeric():
		if n.Op == syntax.OpMod {
			return nil
		}
		if n.Op == syntax.OpDiv && conversions.IsZero(rv) {
			if st == symbols.SpecialDecimal {
				c.report(diagnostic.ErrDivideByZero, loc)
				n.Errors = true
			}
			return nil
		}
		v, ok := conversions.ConvertConstant(constant.BinaryOp(constant.ToFloat(lv), tok, constant.ToFloat(rv)), st)
		if !ok {
			return nil
		}
		return v
	}
	return nil
}

func (c *binding) foldUnary(n *bound.Unary) constant.Value {
	v := n.Operand.ConstantValue()
	if v == nil || v.Kind() == constant.Unknown {
		return nil
	}
	switch n.Op {
	case syntax.OpNot:
		if v.Kind() != constant.Bool {
			return nil
		}
		return constant.UnaryOp(token.NOT, v, 0)
	case syntax.OpNeg:
		if v.Kind() != constant.Int && v.Kind() != constant.Float {
			return nil
		}
		out := constant.UnaryOp(token.SUB, v, 0)
		st := constantSpecial(n.Type())
		if st.IsIntegral() && !conversions.FitsIntegral(out, st) {
			c.report(diagnostic.ErrConstantOverflow, n.Syntax().Location(), out.ExactString(), n.Type().String())
			n.Errors = true
			return nil
		}
		return out
	}
	return nil
}
