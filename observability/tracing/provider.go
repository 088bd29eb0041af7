package tracing

import (
	"context"
	"log/slog"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// LogExporter writes finished spans to a slog.Logger at debug level.
type LogExporter struct {
	logger *slog.Logger
}

// NewLogExporter creates an exporter that logs on logger.
func NewLogExporter(logger *slog.Logger) *LogExporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogExporter{logger: logger}
}

// ExportSpans implements sdktrace.SpanExporter.
func (e *LogExporter) ExportSpans(ctx context.Context, spans []sdktrace.ReadOnlySpan) error {
	for _, s := range spans {
		attrs := []slog.Attr{
			slog.String("trace_id", s.SpanContext().TraceID().String()),
			slog.String("span_id", s.SpanContext().SpanID().String()),
			slog.Duration("duration", s.EndTime().Sub(s.StartTime())),
			slog.String("status", s.Status().Code.String()),
		}
		for _, kv := range s.Attributes() {
			attrs = append(attrs, slog.String(string(kv.Key), kv.Value.Emit()))
		}
		e.logger.LogAttrs(ctx, slog.LevelDebug, "span "+s.Name(), attrs...)
	}
	return nil
}

// Shutdown implements sdktrace.SpanExporter.
func (e *LogExporter) Shutdown(context.Context) error {
	return nil
}

// NewLogProvider returns a tracer provider that exports spans synchronously
// through a LogExporter. Callers must Shutdown it.
func NewLogProvider(logger *slog.Logger) *sdktrace.TracerProvider {
	return sdktrace.NewTracerProvider(
		sdktrace.WithSyncer(NewLogExporter(logger)),
	)
}
