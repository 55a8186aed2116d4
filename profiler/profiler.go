// Copyright © 2024 The ELPS authors

// Package profiler traces binds. The annotators in this package implement
// binder.Profiler and open one span per top-level bind, annotated with the
// source position of the bound expression and whether binding succeeded.
package profiler

import (
	"context"
	"regexp"

	"github.com/luthersystems/sembind/astutil"
	"github.com/luthersystems/sembind/bound"
	"github.com/luthersystems/sembind/syntax"
)

// SkipFilter reports whether a bind of expr should not be traced.
type SkipFilter func(expr syntax.Expr) bool

// Labeler provides an alternative span name for a bind of expr. An empty
// label falls back to the default.
type Labeler func(expr syntax.Expr) string

// Option configures an annotator.
type Option func(*profiler)

// WithSkipFilter sets the filter for tracing spans.
func WithSkipFilter(skipFilter SkipFilter) Option {
	return func(p *profiler) {
		p.skipFilter = skipFilter
	}
}

// WithLabeler sets the labeler for tracing spans.
func WithLabeler(labeler Labeler) Option {
	return func(p *profiler) {
		p.labeler = labeler
	}
}

// profiler holds the configuration shared by the annotators.
type profiler struct {
	skipFilter SkipFilter
	labeler    Labeler
}

func (p *profiler) applyConfigs(opts ...Option) {
	for _, opt := range opts {
		opt(p)
	}
}

func (p *profiler) skipTrace(expr syntax.Expr) bool {
	return expr == nil || (p.skipFilter != nil && p.skipFilter(expr))
}

type labelKey struct{}

// WithSpanLabel returns a context whose binds are traced under label,
// overriding the labeler. The analysis package labels each bind with the
// name of the expression.
func WithSpanLabel(ctx context.Context, label string) context.Context {
	return context.WithValue(ctx, labelKey{}, label)
}

// label returns the span name for a bind of expr in ctx.
func (p *profiler) label(ctx context.Context, expr syntax.Expr) string {
	if l, ok := ctx.Value(labelKey{}).(string); ok && l != "" {
		return "bind " + sanitizeLabel(l)
	}
	if p.labeler != nil {
		if l := sanitizeLabel(p.labeler(expr)); l != "" {
			return l
		}
	}
	if name := astutil.HeadName(expr); name != "" {
		return "bind " + name
	}
	return "bind " + expr.Kind().String()
}

var sanitizeRegExp = regexp.MustCompile(`\s+`)

func sanitizeLabel(label string) string {
	return sanitizeRegExp.ReplaceAllString(label, "_")
}

// outcome classifies the result of a bind for span attributes.
func outcome(result bound.Expr) string {
	switch {
	case result == nil:
		return "none"
	case result.HasErrors():
		return "error"
	default:
		return "ok"
	}
}

// resultType returns the display name of the bound type, or "".
func resultType(result bound.Expr) string {
	if result == nil {
		return ""
	}
	return result.Type().String()
}
