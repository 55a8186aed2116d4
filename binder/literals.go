// Copyright © 2024 The ELPS authors

package binder

import (
	"go/constant"
	"go/token"
	"math/big"
	"strings"

	"github.com/luthersystems/sembind/bound"
	"github.com/luthersystems/sembind/conversions"
	"github.com/luthersystems/sembind/diagnostic"
	"github.com/luthersystems/sembind/lookup"
	"github.com/luthersystems/sembind/symbols"
	"github.com/luthersystems/sembind/syntax"
)

var constantZero = constant.MakeInt64(0)

func (c *binding) bindLiteral(n *syntax.Literal) bound.Node {
	switch n.LitKind {
	case syntax.LitNull:
		return &bound.NullLiteral{PendingBase: bound.PendingBase{Base: bound.Base{Src: n}}}
	case syntax.LitTrue, syntax.LitFalse:
		return c.constant(n, symbols.SpecialBool, constant.MakeBool(n.LitKind == syntax.LitTrue))
	case syntax.LitString:
		return c.constant(n, symbols.SpecialString, constant.MakeString(n.Text))
	case syntax.LitChar:
		r := []rune(n.Text)
		if len(r) != 1 {
			c.report(diagnostic.ErrBadLiteral, n.Location(), n.Text)
			return c.badExpr(n, lookup.Empty, nil, nil, c.tab.Special(symbols.SpecialChar))
		}
		return c.constant(n, symbols.SpecialChar, constant.MakeInt64(int64(r[0])))
	case syntax.LitReal:
		return c.realLiteral(n, n.Text)
	}
	return c.integerLiteral(n)
}

func (c *binding) constant(n syntax.Expr, st symbols.SpecialType, v constant.Value) bound.Expr {
	node := &bound.Literal{Typed: bound.Header(n, c.tab.Special(st), false)}
	node.Const = v
	return node
}

// integerLiteral types an integer literal by its suffix and value: the
// first of int, uint, long and ulong that holds it, restricted to the
// unsigned types for U and to the 64-bit types for L.
func (c *binding) integerLiteral(n *syntax.Literal) bound.Expr {
	text := strings.ReplaceAll(n.Text, "_", "")
	base := 10
	switch {
	case len(text) > 2 && (text[:2] == "0x" || text[:2] == "0X"):
		base, text = 16, text[2:]
	case len(text) > 2 && (text[:2] == "0b" || text[:2] == "0B"):
		base, text = 2, text[2:]
	}
	if base == 10 && strings.ContainsAny(text, "fFdDmM") {
		return c.realLiteral(n, n.Text)
	}
	digits := strings.TrimRight(text, "uUlL")
	suffix := strings.ToLower(text[len(digits):])
	i, ok := new(big.Int).SetString(digits, base)
	if !ok || (suffix != "" && suffix != "u" && suffix != "l" && suffix != "ul" && suffix != "lu") {
		c.report(diagnostic.ErrBadLiteral, n.Location(), n.Text)
		return c.badExpr(n, lookup.Empty, nil, nil, c.tab.Special(symbols.SpecialInt32))
	}
	v := constant.Make(i)
	var candidates []symbols.SpecialType
	switch suffix {
	case "":
		candidates = []symbols.SpecialType{symbols.SpecialInt32, symbols.SpecialUInt32, symbols.SpecialInt64, symbols.SpecialUInt64}
	case "u":
		candidates = []symbols.SpecialType{symbols.SpecialUInt32, symbols.SpecialUInt64}
	case "l":
		candidates = []symbols.SpecialType{symbols.SpecialInt64, symbols.SpecialUInt64}
	default:
		candidates = []symbols.SpecialType{symbols.SpecialUInt64}
	}
	for _, st := range candidates {
		if conversions.FitsIntegral(v, st) {
			return c.constant(n, st, v)
		}
	}
	c.report(diagnostic.ErrLiteralOutOfRange, n.Location(), n.Text)
	return c.badExpr(n, lookup.Empty, nil, nil, c.tab.Special(candidates[len(candidates)-1]))
}

// realLiteral types a real literal: float for F, decimal for M and double
// otherwise.
func (c *binding) realLiteral(n *syntax.Literal, text string) bound.Expr {
	text = strings.ReplaceAll(text, "_", "")
	st := symbols.SpecialDouble
	if len(text) > 0 {
		switch text[len(text)-1] {
		case 'f', 'F':
			st, text = symbols.SpecialSingle, text[:len(text)-1]
		case 'd', 'D':
			text = text[:len(text)-1]
		case 'm', 'M':
			st, text = symbols.SpecialDecimal, text[:len(text)-1]
		}
	}
	v := constant.MakeFromLiteral(text, token.FLOAT, 0)
	if v.Kind() == constant.Unknown {
		c.report(diagnostic.ErrBadLiteral, n.Location(), n.Text)
		return c.badExpr(n, lookup.Empty, nil, nil, c.tab.Special(st))
	}
	folded, ok := conversions.ConvertConstant(v, st)
	if !ok {
		c.report(diagnostic.ErrLiteralOutOfRange, n.Location(), n.Text)
		return c.badExpr(n, lookup.Empty, nil, nil, c.tab.Special(st))
	}
	return c.constant(n, st, folded)
}

// bindInterpolatedString binds the holes as values. The string is constant
// when every hole is a constant string.
func (c *binding) bindInterpolatedString(n *syntax.InterpolatedString) bound.Expr {
	var holes []bound.Expr
	var sb strings.Builder
	constantText := true
	for _, p := range n.Parts {
		if p.Expr == nil {
			sb.WriteString(p.Text)
			continue
		}
		h := c.bindValue(p.Expr)
		holes = append(holes, h)
		if v := h.ConstantValue(); constantText && v != nil && v.Kind() == constant.String && symbols.IsString(h.Type()) {
			sb.WriteString(constant.StringVal(v))
		} else {
			constantText = false
		}
	}
	node := &bound.InterpolatedString{
		Typed: bound.Header(n, c.tab.Special(symbols.SpecialString), bound.AnyErrors(holes...)),
		Holes: holes,
	}
	if constantText {
		node.Const = constant.MakeString(sb.String())
	}
	return node
}

// bindDefault binds the default literal, which stays pending, or
// default(T).
func (c *binding) bindDefault(n *syntax.Default) bound.Node {
	if n.Type == nil {
		return &bound.DefaultLiteral{PendingBase: bound.PendingBase{Base: bound.Base{Src: n}}}
	}
	t := c.bindType(n.Type)
	node := &bound.DefaultValue{Typed: bound.Header(n, t, symbols.IsErrorType(t))}
	node.Const = zeroValue(t)
	return node
}
