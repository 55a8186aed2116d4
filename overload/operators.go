// Copyright © 2024 The ELPS authors

package overload

import (
	"github.com/luthersystems/sembind/bound"
	"github.com/luthersystems/sembind/symbols"
	"github.com/luthersystems/sembind/syntax"
)

// predefinedOperators holds the synthesized signatures of the operators
// the language defines on predefined types. It is built once per Resolver
// and read-only afterwards.
type predefinedOperators struct {
	binary map[syntax.BinaryOp][]*symbols.Symbol
	unary  map[syntax.UnaryOp][]*symbols.Symbol
	// refEquality holds object == object and object != object, which
	// only apply to reference operands.
	refEquality map[*symbols.Symbol]bool
}

func builtinOperator(name string, ret symbols.Type, params ...symbols.Type) *symbols.Symbol {
	op := &symbols.Symbol{
		Kind:       symbols.SymMethod,
		MethodKind: symbols.MethodBuiltinOperator,
		Name:       name,
		Static:     true,
		Type:       ret,
	}
	names := []string{"left", "right"}
	if len(params) == 1 {
		names = []string{"value"}
	}
	for i, p := range params {
		op.Params = append(op.Params, &symbols.Parameter{Name: names[i], Ordinal: i, Type: p})
	}
	return op
}

// isComparison reports whether op yields bool regardless of operand type.
func isComparison(op syntax.BinaryOp) bool {
	switch op {
	case syntax.OpEq, syntax.OpNe, syntax.OpLt, syntax.OpGt, syntax.OpLe, syntax.OpGe:
		return true
	}
	return false
}

func isEquality(op syntax.BinaryOp) bool {
	return op == syntax.OpEq || op == syntax.OpNe
}

// liftOperator returns the lifted form of op, whose value type operands
// and result become nullable, or nil when op cannot be lifted.
func liftOperator(op *symbols.Symbol, comparison bool) *symbols.Symbol {
	for _, p := range op.Params {
		if !symbols.IsValueType(p.Type) || symbols.IsNullable(p.Type) {
			return nil
		}
	}
	if !comparison && (!symbols.IsValueType(op.Type) || symbols.IsNullable(op.Type)) {
		return nil
	}
	lifted := *op
	lifted.Definition = op
	lifted.Params = make([]*symbols.Parameter, len(op.Params))
	for i, p := range op.Params {
		np := *p
		np.Type = &symbols.NullableType{Underlying: p.Type}
		lifted.Params[i] = &np
	}
	if !comparison {
		lifted.Type = &symbols.NullableType{Underlying: op.Type}
	}
	return &lifted
}

// IsLifted reports whether op is the lifted form of an operator.
func IsLifted(op *symbols.Symbol) bool {
	if op == nil || op.Definition == nil || len(op.Params) == 0 || len(op.Definition.Params) == 0 {
		return false
	}
	return symbols.IsNullable(op.Params[0].Type) && !symbols.IsNullable(op.Definition.Params[0].Type)
}

func newPredefinedOperators(tab *symbols.Table) *predefinedOperators {
	ops := &predefinedOperators{
		binary:      map[syntax.BinaryOp][]*symbols.Symbol{},
		unary:       map[syntax.UnaryOp][]*symbols.Symbol{},
		refEquality: map[*symbols.Symbol]bool{},
	}
	sp := tab.Special
	boolean, str, object := sp(symbols.SpecialBool), sp(symbols.SpecialString), sp(symbols.SpecialObject)
	numeric := []symbols.SpecialType{
		symbols.SpecialInt32, symbols.SpecialUInt32, symbols.SpecialInt64, symbols.SpecialUInt64,
		symbols.SpecialSingle, symbols.SpecialDouble, symbols.SpecialDecimal,
	}

	add := func(op syntax.BinaryOp, sig *symbols.Symbol) {
		ops.binary[op] = append(ops.binary[op], sig)
	}
	addLifted := func(op syntax.BinaryOp, sig *symbols.Symbol) {
		add(op, sig)
		if l := liftOperator(sig, isComparison(op)); l != nil {
			add(op, l)
		}
	}

	for op := syntax.OpAdd; op <= syntax.OpGe; op++ {
		name, _ := symbols.OperatorMethodName(op.String())
		for _, st := range numeric {
			t := sp(st)
			ret := symbols.Type(t)
			if isComparison(op) {
				ret = boolean
			}
			addLifted(op, builtinOperator(name, ret, t, t))
		}
		switch {
		case op == syntax.OpAdd:
			add(op, builtinOperator(name, str, str, str))
			add(op, builtinOperator(name, str, str, object))
			add(op, builtinOperator(name, str, object, str))
		case isEquality(op):
			addLifted(op, builtinOperator(name, boolean, boolean, boolean))
			add(op, builtinOperator(name, boolean, str, str))
			ref := builtinOperator(name, boolean, object, object)
			ops.refEquality[ref] = true
			add(op, ref)
		}
	}
	add(syntax.OpAndAlso, builtinOperator("op_LogicalAnd", boolean, boolean, boolean))
	add(syntax.OpOrElse, builtinOperator("op_LogicalOr", boolean, boolean, boolean))

	addUnary := func(op syntax.UnaryOp, sig *symbols.Symbol) {
		ops.unary[op] = append(ops.unary[op], sig)
		if l := liftOperator(sig, false); l != nil {
			ops.unary[op] = append(ops.unary[op], l)
		}
	}
	neg, _ := symbols.OperatorMethodName("unary-")
	for _, st := range []symbols.SpecialType{symbols.SpecialInt32, symbols.SpecialInt64, symbols.SpecialSingle, symbols.SpecialDouble, symbols.SpecialDecimal} {
		addUnary(syntax.OpNeg, builtinOperator(neg, sp(st), sp(st)))
	}
	not, _ := symbols.OperatorMethodName("!")
	addUnary(syntax.OpNot, builtinOperator(not, boolean, boolean))
	return ops
}

// OperatorResult is the outcome of resolving an operator application.
type OperatorResult struct {
	Result
	// UserDefined is set when the operator is declared by an operand type.
	UserDefined bool
}

// Operator returns the chosen operator or nil.
func (o *OperatorResult) Operator() *symbols.Symbol {
	if b := o.Best(); b != nil {
		return b.Member
	}
	return nil
}

// ResolveBinary chooses the operator for left op right. User-defined
// operators of the operand types are considered first; predefined
// signatures only when none of them applies.
func (r *Resolver) ResolveBinary(op syntax.BinaryOp, left, right bound.Node, within *symbols.NamedType) OperatorResult {
	args := &Arguments{Args: []bound.Node{left, right}}
	ctx := Context{Within: within}
	if op != syntax.OpAndAlso && op != syntax.OpOrElse {
		name, _ := symbols.OperatorMethodName(op.String())
		cands := r.userOperators(name, 2, isComparison(op), bound.TypeOf(left), bound.TypeOf(right))
		if len(cands) > 0 {
			res := r.Resolve(cands, args, ctx)
			if res.HasApplicable() {
				return OperatorResult{Result: res, UserDefined: true}
			}
		}
	}

	var cands []*symbols.Symbol
	refOperands := isReferenceOperand(left) && isReferenceOperand(right)
	for _, c := range r.ops.binary[op] {
		if r.ops.refEquality[c] && !refOperands {
			continue
		}
		cands = append(cands, c)
	}
	cands = append(cands, r.enumOperators(op, bound.TypeOf(left), bound.TypeOf(right))...)
	return OperatorResult{Result: r.Resolve(cands, args, ctx)}
}

// ResolveUnary chooses the operator for op operand.
func (r *Resolver) ResolveUnary(op syntax.UnaryOp, operand bound.Node, within *symbols.NamedType) OperatorResult {
	args := &Arguments{Args: []bound.Node{operand}}
	ctx := Context{Within: within}
	var name string
	switch op {
	case syntax.OpNeg:
		name, _ = symbols.OperatorMethodName("unary-")
	case syntax.OpNot:
		name, _ = symbols.OperatorMethodName("!")
	}
	if name != "" {
		if cands := r.userOperators(name, 1, false, bound.TypeOf(operand)); len(cands) > 0 {
			res := r.Resolve(cands, args, ctx)
			if res.HasApplicable() {
				return OperatorResult{Result: res, UserDefined: true}
			}
		}
	}
	return OperatorResult{Result: r.Resolve(r.ops.unary[op], args, ctx)}
}

// userOperators collects the operators named name declared along the
// class chains of the operand types, with their lifted forms.
func (r *Resolver) userOperators(name string, arity int, comparison bool, operands ...symbols.Type) []*symbols.Symbol {
	var out []*symbols.Symbol
	seen := map[*symbols.Symbol]bool{}
	for _, t := range operands {
		if t == nil || symbols.IsErrorType(t) {
			continue
		}
		if u := symbols.NullableUnderlying(t); u != nil {
			t = u
		}
		for _, nt := range r.lookup.TypeChain(t) {
			for _, m := range r.tab.MembersOf(nt, name) {
				if m.Kind != symbols.SymMethod || m.MethodKind != symbols.MethodOperator || len(m.Params) != arity {
					continue
				}
				if seen[m.OriginalDefinition()] {
					continue
				}
				seen[m.OriginalDefinition()] = true
				out = append(out, m)
				if l := liftOperator(m, comparison); l != nil {
					out = append(out, l)
				}
			}
		}
	}
	return out
}

// enumOperators synthesizes comparison operators for enum operands.
func (r *Resolver) enumOperators(op syntax.BinaryOp, operands ...symbols.Type) []*symbols.Symbol {
	if !isComparison(op) {
		return nil
	}
	name, _ := symbols.OperatorMethodName(op.String())
	boolean := r.tab.Special(symbols.SpecialBool)
	var out []*symbols.Symbol
	var seen []symbols.Type
	for _, t := range operands {
		if u := symbols.NullableUnderlying(t); u != nil {
			t = u
		}
		if !symbols.IsEnum(t) {
			continue
		}
		dup := false
		for _, s := range seen {
			if symbols.Identical(s, t) {
				dup = true
			}
		}
		if dup {
			continue
		}
		seen = append(seen, t)
		sig := builtinOperator(name, boolean, t, t)
		out = append(out, sig, liftOperator(sig, true))
	}
	return out
}

func isReferenceOperand(n bound.Node) bool {
	switch n := n.(type) {
	case *bound.NullLiteral:
		return true
	case bound.Expr:
		t := n.Type()
		return symbols.IsReferenceType(t) || symbols.IsErrorType(t)
	}
	return false
}
