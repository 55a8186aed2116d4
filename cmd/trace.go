// Copyright © 2024 The ELPS authors

package cmd

import (
	"context"

	"github.com/sirupsen/logrus"
	octrace "go.opencensus.io/trace"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/luthersystems/sembind/binder"
	"github.com/luthersystems/sembind/profiler"
)

// newProfiler installs the span exporter named by trace.exporter and
// returns the profiler that feeds it. Finished spans are logged at debug
// level. It returns nil for "none" and unknown exporters.
func newProfiler(exporter string, log logrus.FieldLogger) binder.Profiler {
	switch exporter {
	case "", "none":
		return nil
	case "otel", "opentelemetry":
		otel.SetTracerProvider(sdktrace.NewTracerProvider(
			sdktrace.WithSampler(sdktrace.AlwaysSample()),
			sdktrace.WithSyncer(&otelLogExporter{log: log}),
		))
		return profiler.NewOpenTelemetryAnnotator()
	case "opencensus":
		octrace.ApplyConfig(octrace.Config{DefaultSampler: octrace.AlwaysSample()})
		octrace.RegisterExporter(&ocLogExporter{log: log})
		return profiler.NewOpenCensusAnnotator()
	}
	log.WithField("exporter", exporter).Warn("unknown trace exporter")
	return nil
}

type otelLogExporter struct {
	log logrus.FieldLogger
}

var _ sdktrace.SpanExporter = &otelLogExporter{}

func (e *otelLogExporter) ExportSpans(_ context.Context, spans []sdktrace.ReadOnlySpan) error {
	for _, s := range spans {
		fields := logrus.Fields{
			"span":     s.Name(),
			"duration": s.EndTime().Sub(s.StartTime()),
		}
		for _, kv := range s.Attributes() {
			fields[string(kv.Key)] = kv.Value.Emit()
		}
		e.log.WithFields(fields).Debug("bind span")
	}
	return nil
}

func (e *otelLogExporter) Shutdown(context.Context) error { return nil }

type ocLogExporter struct {
	log logrus.FieldLogger
}

func (e *ocLogExporter) ExportSpan(s *octrace.SpanData) {
	fields := logrus.Fields{
		"span":     s.Name,
		"duration": s.EndTime.Sub(s.StartTime),
	}
	for k, v := range s.Attributes {
		fields[k] = v
	}
	e.log.WithFields(fields).Debug("bind span")
}
