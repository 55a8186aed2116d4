// Copyright © 2024 The ELPS authors

package profiler

import (
	"context"

	"go.opencensus.io/trace"

	"github.com/luthersystems/sembind/binder"
	"github.com/luthersystems/sembind/bound"
	"github.com/luthersystems/sembind/syntax"
)

var _ binder.Profiler = &ocAnnotator{}

type ocSpanKey struct{}

type ocAnnotator struct {
	profiler
}

// NewOpenCensusAnnotator returns a profiler that records binds as
// OpenCensus spans.
func NewOpenCensusAnnotator(opts ...Option) binder.Profiler {
	p := &ocAnnotator{}
	p.profiler.applyConfigs(opts...)
	return p
}

func (p *ocAnnotator) Start(ctx context.Context, expr syntax.Expr) context.Context {
	if p.skipTrace(expr) {
		return context.WithValue(ctx, ocSpanKey{}, (*trace.Span)(nil))
	}
	ctx, span := trace.StartSpan(ctx, p.label(ctx, expr))
	if loc := expr.Location(); loc != nil {
		span.AddAttributes(
			trace.StringAttribute("code.filepath", loc.File),
			trace.Int64Attribute("code.lineno", int64(loc.Line)),
			trace.Int64Attribute("code.column", int64(loc.Col)),
		)
	}
	return context.WithValue(ctx, ocSpanKey{}, span)
}

func (p *ocAnnotator) End(ctx context.Context, result bound.Expr) {
	span, _ := ctx.Value(ocSpanKey{}).(*trace.Span)
	if span == nil {
		return
	}
	out := outcome(result)
	span.Annotate([]trace.Attribute{
		trace.StringAttribute("outcome", out),
		trace.StringAttribute("type", resultType(result)),
	}, "bound")
	if out == "error" {
		span.SetStatus(trace.Status{Code: trace.StatusCodeInvalidArgument, Message: "bind reported errors"})
	}
	span.End()
}
