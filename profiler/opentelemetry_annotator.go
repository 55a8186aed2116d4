// Copyright © 2024 The ELPS authors

package profiler

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/luthersystems/sembind/binder"
	"github.com/luthersystems/sembind/bound"
	"github.com/luthersystems/sembind/syntax"
)

const (
	// ContextOpenTelemetryTracerKey looks up a parent tracer name from a context key.
	ContextOpenTelemetryTracerKey = "otelParentTracer"
)

var _ binder.Profiler = &otelAnnotator{}

type otelSpanKey struct{}

type otelAnnotator struct {
	profiler
}

// NewOpenTelemetryAnnotator returns a profiler that records binds as
// spans of the global OpenTelemetry tracer provider. Spans are children of
// the span in the context passed to the binder, if any.
func NewOpenTelemetryAnnotator(opts ...Option) binder.Profiler {
	p := &otelAnnotator{}
	p.profiler.applyConfigs(opts...)
	return p
}

func contextTracer(ctx context.Context) trace.Tracer {
	tracerName, ok := ctx.Value(ContextOpenTelemetryTracerKey).(string)
	if !ok {
		tracerName = "sembind"
	}
	return otel.GetTracerProvider().Tracer(tracerName)
}

func (p *otelAnnotator) Start(ctx context.Context, expr syntax.Expr) context.Context {
	if p.skipTrace(expr) {
		return context.WithValue(ctx, otelSpanKey{}, nil)
	}
	ctx, span := contextTracer(ctx).Start(ctx, p.label(ctx, expr))
	p.addCodeAttributes(span, expr)
	return context.WithValue(ctx, otelSpanKey{}, span)
}

func (p *otelAnnotator) End(ctx context.Context, result bound.Expr) {
	span, ok := ctx.Value(otelSpanKey{}).(trace.Span)
	if !ok || span == nil {
		return
	}
	out := outcome(result)
	span.SetAttributes(
		attribute.String("sembind.outcome", out),
		attribute.String("sembind.type", resultType(result)),
	)
	if out == "error" {
		span.SetStatus(codes.Error, "bind reported errors")
	}
	span.End()
}

func (p *otelAnnotator) addCodeAttributes(span trace.Span, expr syntax.Expr) {
	attrs := []attribute.KeyValue{
		semconv.CodeFunction(expr.Kind().String()),
	}
	if loc := expr.Location(); loc != nil {
		attrs = append(attrs,
			semconv.CodeColumn(loc.Col),
			semconv.CodeFilepath(loc.File),
			semconv.CodeLineNumber(loc.Line),
		)
	}
	span.SetAttributes(attrs...)
}
