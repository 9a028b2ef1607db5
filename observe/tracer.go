package observe

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
)

// CallMeta identifies a guarded call for telemetry purposes.
type CallMeta struct {
	Pipeline string   // Pipeline name (required)
	Target   string   // Remote dependency the delegate calls (optional)
	Version  string   // Caller-defined version label (optional)
	Tags     []string // Free-form labels (optional)
}

// SpanName returns the deterministic span name for this call.
// Format: pipeline.exec.<pipeline>.<target> or pipeline.exec.<pipeline>
func (m CallMeta) SpanName() string {
	if m.Target != "" {
		return "pipeline.exec." + m.Pipeline + "." + m.Target
	}
	return "pipeline.exec." + m.Pipeline
}

// CallID returns the fully qualified call identifier.
func (m CallMeta) CallID() string {
	if m.Target != "" {
		return m.Pipeline + "." + m.Target
	}
	return m.Pipeline
}

// Tracer wraps OpenTelemetry tracing with pipeline-specific span management.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Errors: EndSpan must be best-effort and must not panic.
type Tracer interface {
	// StartSpan starts a new span for a guarded call.
	StartSpan(ctx context.Context, meta CallMeta) (context.Context, trace.Span)

	// EndSpan ends the span, recording any error.
	EndSpan(span trace.Span, err error)
}

// tracerImpl is the concrete implementation of Tracer.
type tracerImpl struct {
	tracer trace.Tracer
}

// newTracer creates a new Tracer wrapping the given OpenTelemetry tracer.
func newTracer(t trace.Tracer) Tracer {
	return &tracerImpl{tracer: t}
}

// StartSpan starts a new span with call metadata as attributes.
func (t *tracerImpl) StartSpan(ctx context.Context, meta CallMeta) (context.Context, trace.Span) {
	attrs := []attribute.KeyValue{
		attribute.String("pipeline.call", meta.CallID()),
		attribute.String("pipeline.name", meta.Pipeline),
		attribute.Bool("pipeline.error", false), // Updated in EndSpan if error
	}

	if meta.Target != "" {
		attrs = append(attrs, attribute.String("pipeline.target", meta.Target))
	}
	if meta.Version != "" {
		attrs = append(attrs, attribute.String("pipeline.version", meta.Version))
	}
	if len(meta.Tags) > 0 {
		attrs = append(attrs, attribute.StringSlice("pipeline.tags", meta.Tags))
	}

	ctx, span := t.tracer.Start(ctx, meta.SpanName(),
		trace.WithAttributes(attrs...),
		trace.WithSpanKind(trace.SpanKindInternal),
	)

	return ctx, span
}

// EndSpan ends the span and records the error status if present.
func (t *tracerImpl) EndSpan(span trace.Span, err error) {
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		span.SetAttributes(attribute.Bool("pipeline.error", true))
		span.RecordError(err)
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}

// noopTracer is a tracer that does nothing.
type noopTracer struct {
	noop trace.Tracer
}

// newNoopTracer creates a no-op tracer.
func newNoopTracer() Tracer {
	return &noopTracer{
		noop: tracenoop.NewTracerProvider().Tracer("noop"),
	}
}

func (t *noopTracer) StartSpan(ctx context.Context, meta CallMeta) (context.Context, trace.Span) {
	return t.noop.Start(ctx, meta.SpanName())
}

func (t *noopTracer) EndSpan(span trace.Span, err error) {
	span.End()
}
