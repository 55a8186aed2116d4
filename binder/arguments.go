// Copyright © 2024 The ELPS authors

package binder

import (
	"go/constant"

	"github.com/luthersystems/sembind/bound"
	"github.com/luthersystems/sembind/conversions"
	"github.com/luthersystems/sembind/diagnostic"
	"github.com/luthersystems/sembind/overload"
	"github.com/luthersystems/sembind/symbols"
	"github.com/luthersystems/sembind/syntax"
)

// bindArguments binds an argument list without target types. Argument
// list errors (duplicate names, a positional argument after a named one,
// a ref argument that is not a variable) are reported once per list and
// mark the list erroneous, which silences overload resolution.
func (c *binding) bindArguments(syn []*syntax.Argument) *overload.Arguments {
	args := &overload.Arguments{}
	seen := make(map[string]bool)
	var named, reportedDup, reportedOrder bool
	for _, a := range syn {
		n := c.bindNode(a.Expr)
		if a.RefKind != syntax.RefNone && !n.HasErrors() && !isVariable(n) {
			c.report(diagnostic.ErrRefArgNotVariable, a.Expr.Location())
			args.HasErrors = true
		}
		switch {
		case a.Name != "":
			if seen[a.Name] && !reportedDup {
				loc := a.NameLoc
				if loc == nil {
					loc = a.Source
				}
				c.report(diagnostic.ErrDuplicateNamedArgument, loc, a.Name)
				reportedDup = true
				args.HasErrors = true
			}
			seen[a.Name] = true
			named = true
		case named && !c.env.Features.Has(FeatureNonTrailingNamedArguments) && !reportedOrder:
			c.report(diagnostic.ErrNamedBeforePositional, a.Source)
			reportedOrder = true
			args.HasErrors = true
		}
		args.Add(n, a.Name, a.NameLoc, a.RefKind)
	}
	return args
}

// isVariable reports whether n may be passed by reference.
func isVariable(n bound.Node) bool {
	switch n := n.(type) {
	case *bound.Local:
		return n.Symbol.Constant == nil
	case *bound.Parameter, *bound.ArrayAccess:
		return true
	case *bound.FieldAccess:
		return n.Field.Constant == nil
	}
	return false
}

// buildArguments converts the arguments of a successful resolution to
// their parameter types and returns them in parameter order. Omitted
// optional parameters get DefaultArgument nodes and, in expanded form,
// the trailing arguments are gathered into an ArrayCreation.
func (c *binding) buildArguments(src syntax.Expr, best *overload.MemberResult, args *overload.Arguments) []bound.Expr {
	params := best.Member.Params
	out := make([]bound.Expr, len(params))
	last := len(params) - 1
	var elems []bound.Expr
	for i, a := range args.Args {
		p := best.ArgsToParams[i]
		target := best.ParamType(i)
		var conv conversions.Conversion
		if i < len(best.Conversions) {
			conv = best.Conversions[i]
		}
		var e bound.Expr
		if conv.IsImplicit() {
			e = c.createConversion(a, conv, target)
		} else {
			e = c.convert(a, target, a.Syntax().Location())
		}
		if best.Expanded && p == last {
			elems = append(elems, e)
			continue
		}
		out[p] = e
	}
	if best.Expanded {
		out[last] = &bound.ArrayCreation{
			Typed:    bound.Header(src, params[last].Type, bound.AnyErrors(elems...)),
			Elements: elems,
		}
	}
	for i, p := range params {
		if out[i] == nil {
			out[i] = c.defaultArgument(src, p)
		}
	}
	return out
}

// defaultArgument is the value of an omitted optional parameter. Caller
// info parameters receive the line, file or member name of the call site.
func (c *binding) defaultArgument(src syntax.Expr, p *symbols.Parameter) bound.Expr {
	node := &bound.DefaultArgument{
		Typed:      bound.Header(src, p.Type, false),
		Param:      p,
		CallerInfo: p.CallerInfo,
	}
	loc := src.Location()
	switch p.CallerInfo {
	case symbols.CallerLineNumber:
		if loc != nil && loc.Line > 0 {
			node.Const = constant.MakeInt64(int64(loc.Line))
		}
	case symbols.CallerFilePath:
		if loc != nil {
			node.Const = constant.MakeString(loc.File)
		}
	case symbols.CallerMemberName:
		if m := c.env.ContainingMember; m != nil {
			node.Const = constant.MakeString(m.Name)
		}
	}
	if node.Const != nil {
		return node
	}
	switch {
	case p.Default != nil:
		node.Const = p.Default
		if st := constantSpecial(p.Type); st != symbols.SpecialNone {
			if v, ok := conversions.ConvertConstant(p.Default, st); ok {
				node.Const = v
			}
		}
	default:
		node.Const = zeroValue(p.Type)
	}
	return node
}
