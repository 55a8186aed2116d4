// Copyright © 2024 The ELPS authors

package binder

import (
	"go/constant"

	"github.com/luthersystems/sembind/bound"
	"github.com/luthersystems/sembind/conversions"
	"github.com/luthersystems/sembind/diagnostic"
	"github.com/luthersystems/sembind/lookup"
	"github.com/luthersystems/sembind/overload"
	"github.com/luthersystems/sembind/symbols"
	"github.com/luthersystems/sembind/syntax"
)

// ClassifyArgument implements overload.ArgumentClassifier. It classifies
// the implicit conversion of a resolved or pending node to target without
// reporting anything; lambda bodies are bound into a discarding sink.
func (b *Binder) ClassifyArgument(arg bound.Node, target symbols.Type) conversions.Conversion {
	if target == nil || arg == nil {
		return conversions.None
	}
	switch a := arg.(type) {
	case *bound.Tuple:
		if conv := b.classifyExpr(a, target); conv.IsIdentity() {
			return conv
		}
		if conv := b.classifyElements(exprNodes(a.Elements...), target); conv.Exists() {
			return conv
		}
		return b.classifyExpr(a, target)
	case *bound.InterpolatedString:
		if b.isFormattableTarget(target) && symbols.IsString(a.Type()) {
			return conversions.Of(conversions.InterpolatedString)
		}
		return b.classifyExpr(a, target)
	case bound.Expr:
		return b.classifyExpr(a, target)
	case *bound.NullLiteral:
		if symbols.CanBeNull(target) {
			return conversions.Of(conversions.NullLiteral)
		}
	case *bound.DefaultLiteral:
		if !symbols.IsErrorType(target) && !symbols.IsVoid(target) {
			return conversions.Of(conversions.DefaultLiteral)
		}
	case *bound.UnboundLambda:
		invoke, reason := b.lambdaTarget(a, target)
		if reason != "" {
			return conversions.None
		}
		_, body := a.BindBody(parameterTypes(invoke), invoke.Type, diagnostic.Discard)
		if body == nil || body.HasErrors() {
			return conversions.None
		}
		return conversions.Of(conversions.AnonymousFunction)
	case *bound.MethodGroup:
		if m, _ := b.methodGroupTarget(a, target, nil); m != nil {
			return conversions.Conversion{Kind: conversions.MethodGroup, Method: m.Member}
		}
	case *bound.UnconvertedTuple:
		return b.classifyElements(a.Elements, target)
	case *bound.UnconvertedCollection:
		return b.classifyCollection(a, target)
	}
	return conversions.None
}

func (b *Binder) classifyExpr(e bound.Expr, target symbols.Type) conversions.Conversion {
	if v := e.ConstantValue(); v != nil {
		return b.conv.ClassifyConstant(v, e.Type(), target)
	}
	return b.conv.ClassifyImplicitTypes(e.Type(), target)
}

// classifyElements classifies a tuple literal component-wise.
func (b *Binder) classifyElements(elems []bound.Node, target symbols.Type) conversions.Conversion {
	tt, ok := target.(*symbols.TupleType)
	if !ok || len(tt.Elems) != len(elems) {
		return conversions.None
	}
	nested := make([]conversions.Conversion, len(elems))
	for i, e := range elems {
		nested[i] = b.ClassifyArgument(e, tt.Elems[i])
		if !nested[i].IsImplicit() {
			return conversions.None
		}
	}
	return conversions.Conversion{Kind: conversions.ImplicitTupleLiteral, Nested: nested}
}

// classifyCollection classifies a collection literal element-wise.
// Spread elements convert by their element type.
func (b *Binder) classifyCollection(n *bound.UnconvertedCollection, target symbols.Type) conversions.Conversion {
	elem := b.collectionElementType(target)
	if elem == nil {
		return conversions.None
	}
	nested := make([]conversions.Conversion, len(n.Elements))
	for i, e := range n.Elements {
		if spreadAt(n.Spread, i) {
			nested[i] = b.classifySpread(e, elem)
		} else {
			nested[i] = b.ClassifyArgument(e, elem)
		}
		if !nested[i].IsImplicit() {
			return conversions.None
		}
	}
	return conversions.Conversion{Kind: conversions.CollectionExpression, Nested: nested}
}

func (b *Binder) classifySpread(e bound.Node, elem symbols.Type) conversions.Conversion {
	src, ok := e.(bound.Expr)
	if !ok {
		return conversions.None
	}
	from := b.enumerableElementType(src.Type())
	if from == nil {
		return conversions.None
	}
	return b.conv.ClassifyImplicitTypes(from, elem)
}

func spreadAt(spread []bool, i int) bool {
	return i < len(spread) && spread[i]
}

// collectionElementType returns the element type of a collection literal
// target: single-dimensional arrays, List<T>, Span<T>, ReadOnlySpan<T>,
// IEnumerable<T> and IReadOnlyList<T>.
func (b *Binder) collectionElementType(t symbols.Type) symbols.Type {
	switch t := t.(type) {
	case *symbols.ArrayType:
		if t.Rank <= 1 {
			return t.Elem
		}
	case *symbols.NamedType:
		switch b.tab.WellKnownOf(t) {
		case symbols.WellKnownList, symbols.WellKnownSpan, symbols.WellKnownReadOnlySpan,
			symbols.WellKnownIEnumerable, symbols.WellKnownIReadOnlyList:
			if len(t.TypeArgs) == 1 {
				return t.TypeArgs[0]
			}
		}
	}
	return nil
}

// enumerableElementType returns T for arrays of T and types implementing
// IEnumerable<T>.
func (b *Binder) enumerableElementType(t symbols.Type) symbols.Type {
	if e := symbols.ElementType(t); e != nil {
		return e
	}
	nt, ok := t.(*symbols.NamedType)
	if !ok {
		return nil
	}
	ienum := b.tab.WellKnown(symbols.WellKnownIEnumerable)
	if ienum == nil {
		return nil
	}
	candidates := append([]*symbols.NamedType{nt}, nt.AllInterfaces()...)
	for _, it := range candidates {
		if it.OriginalDefinition() == ienum && len(it.TypeArgs) == 1 {
			return it.TypeArgs[0]
		}
	}
	return nil
}

func (b *Binder) isFormattableTarget(t symbols.Type) bool {
	switch b.tab.WellKnownOf(t) {
	case symbols.WellKnownIFormattable, symbols.WellKnownFormattableString:
		return true
	}
	return false
}

// lambdaTarget checks the shape of a lambda against a delegate type and
// returns the delegate's Invoke method, or the reason the lambda cannot
// convert.
func (b *Binder) lambdaTarget(n *bound.UnboundLambda, target symbols.Type) (*symbols.Symbol, string) {
	d, _ := target.(*symbols.NamedType)
	invoke := b.tab.DelegateInvoke(d)
	if invoke == nil {
		return nil, "it is not a delegate type"
	}
	if len(invoke.Params) != len(n.Names) {
		return nil, "the parameter count does not match"
	}
	if n.HasExplicitTypes() {
		for i, p := range invoke.Params {
			if !symbols.Identical(p.Type, n.ExplicitTypes[i]) {
				return nil, "the parameter types do not match"
			}
		}
	}
	return invoke, ""
}

func parameterTypes(m *symbols.Symbol) []symbols.Type {
	out := make([]symbols.Type, len(m.Params))
	for i, p := range m.Params {
		out[i] = p.Type
	}
	return out
}

// methodGroupTarget resolves a method group against the signature of a
// delegate type. The returned member is the chosen method; its Kind tells
// whether it failed final validation. The second result is set when the
// method was found as an extension method of the group's receiver.
func (b *Binder) methodGroupTarget(mg *bound.MethodGroup, target symbols.Type, res *overload.Result) (*overload.MemberResult, bool) {
	d, _ := target.(*symbols.NamedType)
	invoke := b.tab.DelegateInvoke(d)
	if invoke == nil {
		return nil, false
	}
	args := &overload.Arguments{}
	for _, p := range invoke.Params {
		placeholder := &bound.Parameter{
			Typed:  bound.Header(mg.Syntax(), p.Type, false),
			Symbol: symbols.NewParameterSymbol(p),
		}
		args.Add(placeholder, "", nil, p.RefKind)
	}
	ctx := overload.Context{
		Within:             mg.Within,
		Receiver:           receiverKind(mg.Receiver),
		TypeArgs:           mg.TypeArgs,
		DelegateConversion: true,
	}
	r := b.overload.Resolve(mg.Methods, args, ctx)
	extension := false
	if !r.HasApplicable() && mg.SearchExtensions && mg.Receiver != nil && mg.Scope != nil {
		ctx.Receiver = overload.ReceiverNone
		ctx.Extension = true
		withRecv := args.WithReceiver(mg.Receiver)
		for _, es := range b.lookup.ExtensionScopes(mg.Scope) {
			found := b.lookup.LookupExtensions(es, mg.Name, len(mg.TypeArgs), mg.Receiver.Type())
			methods, props := splitExtensions(found.Symbols)
			if len(props) > 0 {
				// A scope offering a property is not a method group.
				break
			}
			if len(methods) == 0 {
				continue
			}
			er := b.overload.Resolve(methods, withRecv, ctx)
			if er.HasApplicable() {
				r, extension = er, true
				break
			}
		}
	}
	if res != nil {
		*res = r
	}
	best := r.Best()
	if best == nil || !returnCompatible(b.conv, best.Member.Type, invoke.Type) {
		return nil, false
	}
	return best, extension
}

// returnCompatible reports whether a method returning from can stand for a
// delegate returning to.
func returnCompatible(conv *conversions.Classifier, from, to symbols.Type) bool {
	if symbols.IsVoid(to) || symbols.IsVoid(from) {
		return symbols.IsVoid(to) && symbols.IsVoid(from)
	}
	return conv.IsImplicitReferenceOrIdentity(from, to)
}

// splitExtensions separates extension methods from extension properties.
func splitExtensions(syms []*symbols.Symbol) (methods, props []*symbols.Symbol) {
	for _, s := range syms {
		switch s.Kind {
		case symbols.SymMethod:
			methods = append(methods, s)
		case symbols.SymProperty:
			props = append(props, s)
		}
	}
	return methods, props
}

// convert converts n implicitly to target, reporting when no implicit
// conversion exists. loc is the position the conversion is reported at.
func (c *binding) convert(n bound.Node, target symbols.Type, loc *syntax.Location) bound.Expr {
	if target == nil || symbols.IsErrorType(target) {
		e := c.recoverNode(n)
		if target == nil {
			return e
		}
		return &bound.Conversion{Typed: bound.Header(e.Syntax(), target, true), Operand: e, Conversion: conversions.None}
	}
	if lam, ok := n.(*bound.UnboundLambda); ok {
		if _, reason := c.lambdaTarget(lam, target); reason == "" {
			return c.createConversion(n, conversions.Of(conversions.AnonymousFunction), target)
		}
	}
	conv := c.ClassifyArgument(n, target)
	if conv.IsImplicit() {
		return c.createConversion(n, conv, target)
	}
	return c.conversionError(n, conv, target, loc)
}

// conversionError reports the missing conversion of n to target and
// returns an erroneous node of type target. Tuple and collection literals
// are converted element by element so that each bad element is reported
// at its own position.
func (c *binding) conversionError(n bound.Node, conv conversions.Conversion, target symbols.Type, loc *syntax.Location) bound.Expr {
	src := n.Syntax()
	switch n := n.(type) {
	case *bound.Tuple:
		if tt, ok := target.(*symbols.TupleType); ok && len(tt.Elems) == len(n.Elements) {
			return c.convertElements(n, exprNodes(n.Elements...), n.Names, tt)
		}
	case *bound.UnconvertedTuple:
		if tt, ok := target.(*symbols.TupleType); ok && len(tt.Elems) == len(n.Elements) {
			return c.convertElements(n, n.Elements, n.Names, tt)
		}
		if !n.HasErrors() {
			c.report(diagnostic.ErrNoImplicitConversion, loc, bound.Display(n), target.String())
		}
		return c.failedConversion(src, c.recoverNode(n), target)
	case *bound.UnconvertedCollection:
		elem := c.collectionElementType(target)
		if elem == nil {
			c.report(diagnostic.ErrCollectionTarget, loc, target.String())
			return c.badExpr(src, lookup.Empty, nil, n.Elements, target)
		}
		return c.convertCollection(n, target, elem)
	case *bound.NullLiteral:
		c.report(diagnostic.ErrNoImplicitConversion, loc, "<null>", target.String())
		return c.failedConversion(src, nil, target)
	case *bound.DefaultLiteral:
		c.report(diagnostic.ErrNoImplicitConversion, loc, "default", target.String())
		return c.failedConversion(src, nil, target)
	case *bound.UnboundLambda:
		_, reason := c.lambdaTarget(n, target)
		c.report(diagnostic.ErrLambdaConversion, loc, target.String(), reason)
		return c.badExpr(src, lookup.Empty, nil, []bound.Node{n}, target)
	case *bound.MethodGroup:
		return c.methodGroupError(n, target, loc)
	}
	e := n.(bound.Expr)
	if e.HasErrors() || symbols.IsErrorType(e.Type()) {
		return c.failedConversion(src, e, target)
	}
	from := e.Type()
	v := e.ConstantValue()
	switch {
	case len(conv.Ambiguous) >= 2:
		c.report(diagnostic.ErrAmbiguousUserConversion, loc,
			c.tab.DisplayString(conv.Ambiguous[0]), c.tab.DisplayString(conv.Ambiguous[1]), from.String(), target.String())
	case v != nil && constantSpecial(from).IsIntegral() && constantSpecial(target).IsIntegral() &&
		!conversions.FitsIntegral(v, constantSpecial(target)):
		c.report(diagnostic.ErrConstantOverflow, loc, v.ExactString(), target.String())
	case c.conv.ClassifyExplicitConstant(v, from, target).Exists():
		c.report(diagnostic.ErrNoImplicitConversionExplicitExists, loc, from.String(), target.String())
	default:
		c.report(diagnostic.ErrNoImplicitConversion, loc, from.String(), target.String())
	}
	return c.failedConversion(src, e, target)
}

// failedConversion is the erroneous conversion of operand, which may be
// nil, to target.
func (c *binding) failedConversion(src syntax.Expr, operand bound.Expr, target symbols.Type) bound.Expr {
	if operand == nil {
		return c.badExpr(src, lookup.Empty, nil, nil, target)
	}
	return &bound.Conversion{
		Typed:      bound.Header(src, target, true),
		Operand:    operand,
		Conversion: conversions.None,
	}
}

func (c *binding) methodGroupError(mg *bound.MethodGroup, target symbols.Type, loc *syntax.Location) bound.Expr {
	children := exprNodes(mg.Receiver)
	if len(mg.Methods) == 0 {
		c.reportLookup(mg.Lookup, mg.Syntax().Location())
		return c.badExpr(mg.Syntax(), mg.ResultKind, nil, children, target)
	}
	if !symbols.IsDelegate(target) {
		c.report(diagnostic.ErrNoImplicitConversion, loc, "method group '"+mg.Name+"'", target.String())
		return c.badExpr(mg.Syntax(), lookup.NotAValue, mg.Methods, children, target)
	}
	c.report(diagnostic.ErrMethodGroupConversion, loc, mg.Name, target.String())
	return c.badExpr(mg.Syntax(), lookup.OverloadResolutionFailure, mg.Methods, children, target)
}

// createConversion materializes conv, the implicit conversion of n to
// target classified earlier.
func (c *binding) createConversion(n bound.Node, conv conversions.Conversion, target symbols.Type) bound.Expr {
	src := n.Syntax()
	switch n := n.(type) {
	case *bound.NullLiteral:
		return &bound.Literal{Typed: bound.Header(src, target, false)}
	case *bound.DefaultLiteral:
		node := &bound.DefaultValue{Typed: bound.Header(src, target, false)}
		node.Const = zeroValue(target)
		return node
	case *bound.UnboundLambda:
		d, _ := target.(*symbols.NamedType)
		invoke := c.tab.DelegateInvoke(d)
		if invoke == nil {
			return c.conversionError(n, conversions.None, target, src.Location())
		}
		return n.BindTo(d, invoke, c.sink)
	case *bound.MethodGroup:
		return c.delegateCreation(n, target)
	case *bound.UnconvertedTuple:
		tt, ok := target.(*symbols.TupleType)
		if !ok || len(tt.Elems) != len(n.Elements) {
			return c.conversionError(n, conversions.None, target, src.Location())
		}
		return c.convertElements(n, n.Elements, n.Names, tt)
	case *bound.UnconvertedCollection:
		elem := c.collectionElementType(target)
		if elem == nil {
			return c.conversionError(n, conversions.None, target, src.Location())
		}
		return c.convertCollection(n, target, elem)
	case *bound.Tuple:
		if conv.Kind == conversions.ImplicitTupleLiteral {
			if tt, ok := target.(*symbols.TupleType); ok && len(tt.Elems) == len(n.Elements) {
				return c.convertElements(n, exprNodes(n.Elements...), n.Names, tt)
			}
		}
	case *bound.InterpolatedString:
		if conv.Kind == conversions.InterpolatedString {
			return &bound.InterpolatedString{Typed: bound.Header(src, target, n.HasErrors()), Holes: n.Holes}
		}
	}
	e := n.(bound.Expr)
	if conv.IsIdentity() {
		return e
	}
	node := &bound.Conversion{
		Typed:      bound.Header(src, target, e.HasErrors()),
		Operand:    e,
		Conversion: conv,
	}
	node.Const = foldConversion(e.ConstantValue(), conv, target)
	return node
}

// convertElements converts each element of a tuple literal to the
// matching element type of tt.
func (c *binding) convertElements(n bound.Node, elems []bound.Node, names []string, tt *symbols.TupleType) bound.Expr {
	out := make([]bound.Expr, len(elems))
	for i, e := range elems {
		out[i] = c.convert(e, tt.Elems[i], elementLocation(e, n))
	}
	return &bound.Tuple{
		Typed:    bound.Header(n.Syntax(), tt, bound.AnyErrors(out...)),
		Elements: out,
		Names:    names,
	}
}

func (c *binding) convertCollection(n *bound.UnconvertedCollection, target, elem symbols.Type) bound.Expr {
	out := make([]bound.Expr, len(n.Elements))
	for i, e := range n.Elements {
		if !spreadAt(n.Spread, i) {
			out[i] = c.convert(e, elem, elementLocation(e, n))
			continue
		}
		se := c.natural(e)
		out[i] = se
		if se.HasErrors() {
			continue
		}
		if !c.classifySpread(se, elem).IsImplicit() {
			c.report(diagnostic.ErrNoImplicitConversion, elementLocation(se, n), se.Type().String(), elem.String())
			out[i] = c.failedConversion(se.Syntax(), se, se.Type())
		}
	}
	return &bound.Collection{
		Typed:       bound.Header(n.Syntax(), target, bound.AnyErrors(out...)),
		ElementType: elem,
		Elements:    out,
		Spread:      n.Spread,
	}
}

func elementLocation(e, parent bound.Node) *syntax.Location {
	if src := e.Syntax(); src != nil && src.Location() != nil {
		return src.Location()
	}
	return parent.Syntax().Location()
}

// delegateCreation converts a method group to the delegate type target,
// reporting when no method matches.
func (c *binding) delegateCreation(mg *bound.MethodGroup, target symbols.Type) bound.Expr {
	var res overload.Result
	best, extension := c.methodGroupTarget(mg, target, &res)
	loc := mg.Syntax().Location()
	if best == nil {
		return c.methodGroupError(mg, target, loc)
	}
	if res.Kind != overload.Succeeded {
		args := &overload.Arguments{}
		c.overload.Report(c.sink, overload.Site{Kind: overload.SiteDelegate, Name: mg.Name, Loc: loc}, args, &res)
		return c.badExpr(mg.Syntax(), res.LookupKind(), res.Candidates(), exprNodes(mg.Receiver), target)
	}
	c.useSite(best.Member, loc)
	return &bound.DelegateCreation{
		Typed:              bound.Header(mg.Syntax(), target, bound.AnyErrors(mg.Receiver)),
		Receiver:           mg.Receiver,
		Method:             best.Member,
		InvokedAsExtension: extension,
	}
}

// bindCast binds (T)e. Casts of pending operands use the implicit
// conversion; resolved operands may use any explicit conversion, and
// constant operands are folded.
func (c *binding) bindCast(n *syntax.Cast) bound.Expr {
	target := c.bindType(n.Type)
	operand := c.bindNode(n.Operand)
	if symbols.IsErrorType(target) {
		return c.badExpr(n, lookup.Empty, nil, []bound.Node{operand}, target)
	}
	e, ok := operand.(bound.Expr)
	if !ok {
		return c.convert(operand, target, n.Location())
	}
	if e.HasErrors() || symbols.IsErrorType(e.Type()) {
		return c.failedConversion(n, e, target)
	}
	v := e.ConstantValue()
	conv := c.conv.ClassifyExplicitConstant(v, e.Type(), target)
	if !conv.Exists() {
		if len(conv.Ambiguous) >= 2 {
			c.report(diagnostic.ErrAmbiguousUserConversion, n.Location(),
				c.tab.DisplayString(conv.Ambiguous[0]), c.tab.DisplayString(conv.Ambiguous[1]), e.Type().String(), target.String())
		} else {
			c.report(diagnostic.ErrNoExplicitConversion, n.Location(), e.Type().String(), target.String())
		}
		return c.failedConversion(n, e, target)
	}
	node := &bound.Conversion{
		Typed:      bound.Header(n, target, false),
		Operand:    e,
		Conversion: conv,
		Explicit:   true,
	}
	if v != nil && foldable(conv) {
		folded, ok := conversions.ConvertConstant(v, constantSpecial(target))
		if !ok {
			c.report(diagnostic.ErrConstantOverflow, n.Location(), v.ExactString(), target.String())
			node.Errors = true
			return node
		}
		node.Const = folded
	}
	return node
}

// foldable reports whether conv preserves constant values.
func foldable(conv conversions.Conversion) bool {
	switch conv.Kind {
	case conversions.Identity, conversions.ImplicitNumeric, conversions.ImplicitConstant,
		conversions.ImplicitEnumeration, conversions.ExplicitNumeric, conversions.ExplicitEnumeration:
		return true
	}
	return false
}

func foldConversion(v constant.Value, conv conversions.Conversion, target symbols.Type) constant.Value {
	if v == nil || !foldable(conv) {
		return nil
	}
	folded, ok := conversions.ConvertConstant(v, constantSpecial(target))
	if !ok {
		return nil
	}
	return folded
}

// constantSpecial is the special type constants of t are represented in:
// the underlying type for enums.
func constantSpecial(t symbols.Type) symbols.SpecialType {
	if u := symbols.EnumUnderlyingOf(t); u != nil {
		return u.Special
	}
	return symbols.SpecialOf(t)
}

// zeroValue is the constant default of t, or nil when the default is not
// a constant of a predefined type.
func zeroValue(t symbols.Type) constant.Value {
	st := constantSpecial(t)
	switch {
	case st.IsIntegral():
		return constant.MakeInt64(0)
	case st.IsNumeric():
		return constant.MakeFloat64(0)
	case st == symbols.SpecialBool:
		return constant.MakeBool(false)
	}
	return nil
}

// receiverKind classifies the receiver of a method group for final
// validation.
func receiverKind(recv bound.Expr) overload.ReceiverKind {
	switch r := recv.(type) {
	case nil:
		return overload.ReceiverStaticContext
	case *bound.This:
		if r.Implicit {
			return overload.ReceiverImplicitThis
		}
	case *bound.TypeExpr:
		return overload.ReceiverType
	}
	return overload.ReceiverInstance
}
