// Copyright © 2024 The ELPS authors

// Package binder turns syntax expressions into bound trees.
//
// Binding is a synchronous recursive descent over the syntax tree. Names
// are resolved with package lookup, calls are resolved with package
// overload, and conversions are classified with package conversions and
// then materialized here. Every path produces a bound.Expr with a type:
// when something cannot be bound a diagnostic is reported and a bound.Bad
// node keeps whatever could be salvaged.
//
// A Binder only holds read-only collaborators. Independent binds may run
// concurrently as long as they do not share a non thread-safe sink.
package binder

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/luthersystems/sembind/bound"
	"github.com/luthersystems/sembind/conversions"
	"github.com/luthersystems/sembind/diagnostic"
	"github.com/luthersystems/sembind/lookup"
	"github.com/luthersystems/sembind/overload"
	"github.com/luthersystems/sembind/symbols"
	"github.com/luthersystems/sembind/syntax"
)

// Profiler observes top-level binds. Start returns the context the bind
// runs in; End receives that context and the result. Implementations keep
// their per-bind state in the context.
type Profiler interface {
	Start(ctx context.Context, expr syntax.Expr) context.Context
	End(ctx context.Context, result bound.Expr)
}

type nopProfiler struct{}

func (nopProfiler) Start(ctx context.Context, _ syntax.Expr) context.Context { return ctx }
func (nopProfiler) End(context.Context, bound.Expr)                          {}

// Binder binds expressions against a frozen symbol table.
type Binder struct {
	tab      *symbols.Table
	conv     *conversions.Classifier
	lookup   *lookup.Resolver
	overload *overload.Resolver
	log      logrus.FieldLogger
	prof     Profiler
}

// Option configures a Binder.
type Option func(*Binder)

// WithLogger sets the logger used for debug tracing of lookups and
// overload resolution.
func WithLogger(log logrus.FieldLogger) Option {
	return func(b *Binder) {
		b.log = log
	}
}

// WithProfiler sets the profiler notified of each top-level bind.
func WithProfiler(p Profiler) Option {
	return func(b *Binder) {
		if p != nil {
			b.prof = p
		}
	}
}

// New returns a binder over tab.
func New(tab *symbols.Table, opts ...Option) *Binder {
	conv := conversions.NewClassifier(tab)
	b := &Binder{
		tab:    tab,
		conv:   conv,
		lookup: lookup.NewResolver(tab, conv),
		log:    logrus.StandardLogger(),
		prof:   nopProfiler{},
	}
	b.overload = overload.NewResolver(tab, conv, b.lookup, b)
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Table returns the symbol table the binder reads.
func (b *Binder) Table() *symbols.Table { return b.tab }

// Conversions returns the conversion classifier.
func (b *Binder) Conversions() *conversions.Classifier { return b.conv }

// Lookup returns the name resolver.
func (b *Binder) Lookup() *lookup.Resolver { return b.lookup }

// Overloads returns the overload resolver.
func (b *Binder) Overloads() *overload.Resolver { return b.overload }

// Bind binds expr as a value. Pending shapes without a target type (null,
// lambdas, method groups, collection literals) are reported as having no
// natural type.
func (b *Binder) Bind(ctx context.Context, env Env, expr syntax.Expr, sink diagnostic.Sink) bound.Expr {
	ctx = b.prof.Start(ctx, expr)
	c := b.begin(ctx, env, sink)
	result := c.bindValue(expr)
	c.checkConstant(result)
	b.prof.End(ctx, result)
	return result
}

// BindTo binds expr and converts it implicitly to target.
func (b *Binder) BindTo(ctx context.Context, env Env, expr syntax.Expr, target symbols.Type, sink diagnostic.Sink) bound.Expr {
	ctx = b.prof.Start(ctx, expr)
	c := b.begin(ctx, env, sink)
	result := c.bindTo(expr, target)
	c.checkConstant(result)
	b.prof.End(ctx, result)
	return result
}

// BindNode binds expr without a target type. The result is pending for
// null and default literals, lambdas, method groups and literals of
// tuples or collections that have no natural type.
func (b *Binder) BindNode(ctx context.Context, env Env, expr syntax.Expr, sink diagnostic.Sink) bound.Node {
	return b.begin(ctx, env, sink).bindNode(expr)
}

// binding is the state of one bind. It lives on the call stack.
type binding struct {
	*Binder
	ctx  context.Context
	env  Env
	sink diagnostic.Sink
}

func (b *Binder) begin(ctx context.Context, env Env, sink diagnostic.Sink) *binding {
	if sink == nil {
		sink = diagnostic.Discard
	}
	return &binding{Binder: b, ctx: ctx, env: env, sink: sink}
}

// with returns a binding for env that reports to sink.
func (c *binding) with(env Env, sink diagnostic.Sink) *binding {
	return &binding{Binder: c.Binder, ctx: c.ctx, env: env, sink: sink}
}

func (c *binding) report(code diagnostic.Code, loc *syntax.Location, args ...any) {
	c.sink.Add(diagnostic.New(code, diagnostic.SpanOf(loc), args...))
}

func (c *binding) within() *symbols.NamedType { return c.env.Within() }

// mode is the syntactic position of a name.
type mode uint8

const (
	modeValue mode = iota
	// modeInvoked is the callee of an invocation: method groups stay
	// pending and extension methods are searched.
	modeInvoked
	// modeReceiver is the left side of a member access: types and
	// namespaces are allowed.
	modeReceiver
)

// bindNode binds e without a target type.
func (c *binding) bindNode(e syntax.Expr) bound.Node {
	return c.bindIn(e, modeValue)
}

func (c *binding) bindIn(e syntax.Expr, m mode) bound.Node {
	v := &exprVisitor{c: c, mode: m}
	e.Accept(v)
	if v.out == nil {
		return c.badExpr(e, lookup.Empty, nil, nil, nil)
	}
	return v.out
}

// bindValue binds e and gives pending results their natural type.
func (c *binding) bindValue(e syntax.Expr) bound.Expr {
	return c.natural(c.bindNode(e))
}

// bindTo binds e and converts it to target.
func (c *binding) bindTo(e syntax.Expr, target symbols.Type) bound.Expr {
	return c.convert(c.bindNode(e), target, e.Location())
}

func (c *binding) checkConstant(result bound.Expr) {
	name := c.env.ConstantInitializer
	if name == "" || result.HasErrors() || result.ConstantValue() != nil {
		return
	}
	switch r := result.(type) {
	case *bound.Literal:
		if r.IsNull() {
			return
		}
	case *bound.DefaultValue:
		if !symbols.IsValueType(r.Type()) {
			return
		}
	}
	c.report(diagnostic.ErrNotConstant, result.Syntax().Location(), name)
}

// exprVisitor dispatches on the syntax kind.
type exprVisitor struct {
	c    *binding
	mode mode
	out  bound.Node
}

func (v *exprVisitor) VisitIdentifier(n *syntax.Identifier) {
	v.out = v.c.bindSimpleName(n, n.Name, nil, v.mode)
}

func (v *exprVisitor) VisitGenericName(n *syntax.GenericName) {
	v.out = v.c.bindSimpleName(n, n.Name, n.TypeArgs, v.mode)
}

func (v *exprVisitor) VisitLiteral(n *syntax.Literal) { v.out = v.c.bindLiteral(n) }

func (v *exprVisitor) VisitMemberAccess(n *syntax.MemberAccess) {
	v.out = v.c.bindMemberAccess(n, v.mode)
}

func (v *exprVisitor) VisitInvocation(n *syntax.Invocation)         { v.out = v.c.bindInvocation(n) }
func (v *exprVisitor) VisitObjectCreation(n *syntax.ObjectCreation) { v.out = v.c.bindObjectCreation(n) }
func (v *exprVisitor) VisitElementAccess(n *syntax.ElementAccess)   { v.out = v.c.bindElementAccess(n) }

// VisitParenthesized binds the inner expression. A parenthesized
// receiver is a value: (T).M does not name a type.
func (v *exprVisitor) VisitParenthesized(n *syntax.Parenthesized) {
	m := v.mode
	if m == modeReceiver {
		m = modeValue
	}
	v.out = v.c.bindIn(n.Inner, m)
}

func (v *exprVisitor) VisitCast(n *syntax.Cast)             { v.out = v.c.bindCast(n) }
func (v *exprVisitor) VisitTuple(n *syntax.Tuple)           { v.out = v.c.bindTuple(n) }
func (v *exprVisitor) VisitCollection(n *syntax.Collection) { v.out = v.c.bindCollection(n) }
func (v *exprVisitor) VisitInterpolatedString(n *syntax.InterpolatedString) {
	v.out = v.c.bindInterpolatedString(n)
}
func (v *exprVisitor) VisitLambda(n *syntax.Lambda)   { v.out = v.c.bindLambda(n) }
func (v *exprVisitor) VisitDefault(n *syntax.Default) { v.out = v.c.bindDefault(n) }
func (v *exprVisitor) VisitThis(n *syntax.This)       { v.out = v.c.bindThis(n) }
func (v *exprVisitor) VisitBinary(n *syntax.Binary)   { v.out = v.c.bindBinary(n) }
func (v *exprVisitor) VisitUnary(n *syntax.Unary)     { v.out = v.c.bindUnary(n) }
func (v *exprVisitor) VisitRange(n *syntax.Range)     { v.out = v.c.bindRange(n) }
