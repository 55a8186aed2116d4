// Copyright © 2024 The ELPS authors

// Package formatter renders syntax trees and bound trees as indented
// S-expressions. Forms that fit within the configured width print on one
// line; wider forms are broken according to per-head indent rules.
package formatter

import (
	"go/constant"
	"strconv"
	"strings"

	"github.com/luthersystems/sembind/bound"
	"github.com/luthersystems/sembind/symbols"
	"github.com/luthersystems/sembind/syntax"
)

// Bound renders a bound tree. If cfg is nil, DefaultConfig() is used.
func Bound(n bound.Node, cfg *Config) string {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	cfg = cfg.withDefaults()
	p := &printer{cfg: cfg}
	return p.render(boundForm(cfg, n), cfg.Width)
}

// Syntax renders a syntax tree. If cfg is nil, DefaultConfig() is used.
func Syntax(e syntax.Expr, cfg *Config) string {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	cfg = cfg.withDefaults()
	p := &printer{cfg: cfg}
	return p.render(syntaxForm(e), cfg.Width)
}

// Constant renders a compile-time value the way the printers show it.
func Constant(v constant.Value) string {
	if v == nil {
		return "null"
	}
	switch v.Kind() {
	case constant.String:
		return strconv.Quote(constant.StringVal(v))
	case constant.Float:
		if f, exact := constant.Float64Val(v); exact || !isHuge(v) {
			return strconv.FormatFloat(f, 'g', -1, 64)
		}
	}
	return v.ExactString()
}

func isHuge(v constant.Value) bool {
	f, _ := constant.Float64Val(v)
	return f > 1e300 || f < -1e300
}

func symbolName(cfg *Config, sym *symbols.Symbol) string {
	if sym == nil {
		return "?"
	}
	if cfg.Table != nil {
		return cfg.Table.DisplayString(sym)
	}
	return sym.Name
}

func boundForm(cfg *Config, n bound.Node) *form {
	if n == nil {
		return &form{head: "nil"}
	}
	f := &form{head: n.Kind().String()}
	switch n := n.(type) {
	case *bound.Literal:
		f.atom(Constant(n.Const))
	case *bound.Local:
		f.atom(n.Symbol.Name)
	case *bound.Parameter:
		f.atom(n.Symbol.Name)
	case *bound.FieldAccess:
		f.atom(symbolName(cfg, n.Field))
	case *bound.PropertyAccess:
		f.atom(symbolName(cfg, n.Property))
		if n.IsExtension {
			f.atom("extension")
		}
	case *bound.Call:
		f.atom(symbolName(cfg, n.Method))
		if n.Expanded {
			f.atom("expanded")
		}
		if n.InvokedAsExtension {
			f.atom("extension")
		}
	case *bound.ObjectCreation:
		if n.Constructor != nil {
			f.atom(symbolName(cfg, n.Constructor))
		}
		if n.Expanded {
			f.atom("expanded")
		}
	case *bound.IndexerAccess:
		f.atom(symbolName(cfg, n.Indexer))
		if n.Expanded {
			f.atom("expanded")
		}
	case *bound.ImplicitIndexerAccess:
		f.atom(symbolName(cfg, n.LengthOrCount))
		f.atom(symbolName(cfg, n.Indexer))
	case *bound.Conversion:
		f.atom(n.Conversion.String())
		if n.Explicit {
			f.atom("explicit")
		}
	case *bound.TypeExpr:
		f.atom(n.Type().String())
	case *bound.This:
		if n.Implicit {
			f.atom("implicit")
		}
	case *bound.Lambda:
		for _, p := range n.Params {
			f.atom(p.Name)
		}
	case *bound.DelegateCreation:
		f.atom(symbolName(cfg, n.Method))
		if n.InvokedAsExtension {
			f.atom("extension")
		}
	case *bound.Tuple:
		f.atom(strings.Join(n.Names, ","))
	case *bound.Collection:
		if n.ElementType != nil {
			f.atom(n.ElementType.String())
		}
	case *bound.Binary:
		f.atom(n.Op.String())
		if n.Operator != nil {
			f.atom(symbolName(cfg, n.Operator))
		}
		if n.Lifted {
			f.atom("lifted")
		}
	case *bound.Unary:
		f.atom(n.Op.String())
		if n.Lifted {
			f.atom("lifted")
		}
	case *bound.DefaultArgument:
		if n.Param != nil {
			f.atom(n.Param.Name)
		}
	case *bound.Bad:
		f.atom(n.ResultKind.String())
		if len(n.Candidates) > 0 {
			names := make([]string, len(n.Candidates))
			for i, c := range n.Candidates {
				names[i] = symbolName(cfg, c)
			}
			f.note = "candidates: " + strings.Join(names, ", ")
		}
	case *bound.UnboundLambda:
		for _, name := range n.Names {
			f.atom(name)
		}
	case *bound.MethodGroup:
		f.atom(n.Name)
		f.atom(strconv.Itoa(len(n.Methods)))
	case *bound.UnconvertedTuple:
		f.atom(strings.Join(n.Names, ","))
	}
	if x, ok := n.(bound.Expr); ok && cfg.Types {
		f.atom(":" + x.Type().String())
		if _, lit := n.(*bound.Literal); !lit && x.ConstantValue() != nil {
			f.atom("=" + Constant(x.ConstantValue()))
		}
	}
	if n.HasErrors() && n.Kind() != bound.KindBad {
		f.atom("!")
	}
	for _, c := range bound.Children(n) {
		f.child(boundForm(cfg, c))
	}
	return f
}

func syntaxForm(e syntax.Expr) *form {
	if e == nil {
		return &form{head: "none"}
	}
	f := &form{head: e.Kind().String()}
	switch n := e.(type) {
	case *syntax.Identifier:
		f.atom(n.Name)
	case *syntax.GenericName:
		f.atom(n.Name + typeArgs(n.TypeArgs))
	case *syntax.Literal:
		switch n.LitKind {
		case syntax.LitString:
			f.atom(strconv.Quote(n.Text))
		case syntax.LitChar:
			f.atom("'" + strings.Trim(strconv.Quote(n.Text), `"`) + "'")
		default:
			f.atom(n.Text)
		}
	case *syntax.MemberAccess:
		f.atom(n.Name + typeArgs(n.TypeArgs))
		f.child(syntaxForm(n.Receiver))
	case *syntax.Invocation:
		f.child(syntaxForm(n.Callee))
		argForms(f, n.Args)
	case *syntax.ObjectCreation:
		f.atom(TypeRef(n.Type))
		argForms(f, n.Args)
	case *syntax.ElementAccess:
		f.child(syntaxForm(n.Receiver))
		argForms(f, n.Args)
	case *syntax.Parenthesized:
		f.child(syntaxForm(n.Inner))
	case *syntax.Cast:
		f.atom(TypeRef(n.Type))
		f.child(syntaxForm(n.Operand))
	case *syntax.Tuple:
		argForms(f, n.Elements)
	case *syntax.Collection:
		for _, el := range n.Elements {
			if el.Spread {
				f.child(&form{head: "spread", children: []*form{syntaxForm(el.Expr)}})
				continue
			}
			f.child(syntaxForm(el.Expr))
		}
	case *syntax.InterpolatedString:
		for _, part := range n.Parts {
			if part.Expr == nil {
				f.child(&form{head: "text", atoms: []string{strconv.Quote(part.Text)}})
				continue
			}
			f.child(syntaxForm(part.Expr))
		}
	case *syntax.Lambda:
		params := make([]string, len(n.Params))
		for i, p := range n.Params {
			params[i] = p.Name
			if p.Type != nil {
				params[i] = TypeRef(p.Type) + " " + p.Name
			}
		}
		f.atom("[" + strings.Join(params, ", ") + "]")
		f.child(syntaxForm(n.Body))
	case *syntax.Default:
		if n.Type != nil {
			f.atom(TypeRef(n.Type))
		}
	case *syntax.Binary:
		f.atom(n.Op.String())
		f.child(syntaxForm(n.Left))
		f.child(syntaxForm(n.Right))
	case *syntax.Unary:
		f.atom(n.Op.String())
		f.child(syntaxForm(n.Operand))
	case *syntax.Range:
		f.child(syntaxForm(n.Start))
		f.child(syntaxForm(n.End))
	}
	return f
}

func argForms(f *form, args []*syntax.Argument) {
	for _, a := range args {
		c := syntaxForm(a.Expr)
		if a.RefKind != syntax.RefNone {
			c = &form{head: a.RefKind.String(), children: []*form{c}}
		}
		if a.Name != "" {
			c = &form{head: a.Name + ":", children: []*form{c}}
		}
		f.child(c)
	}
}

// TypeRef renders a type as written in source.
func TypeRef(t *syntax.TypeRef) string {
	if t == nil {
		return "?"
	}
	var sb strings.Builder
	sb.WriteString(t.Name)
	sb.WriteString(typeArgs(t.TypeArgs))
	if t.Nullable {
		sb.WriteByte('?')
	}
	for _, rank := range t.ArrayRanks {
		sb.WriteByte('[')
		sb.WriteString(strings.Repeat(",", rank-1))
		sb.WriteByte(']')
	}
	return sb.String()
}

func typeArgs(args []*syntax.TypeRef) string {
	if len(args) == 0 {
		return ""
	}
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = TypeRef(a)
	}
	return "<" + strings.Join(parts, ",") + ">"
}
