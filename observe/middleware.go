package observe

import (
	"context"
	"time"
)

// DelegateFunc is the signature for the guarded unit of work the middleware
// wraps. It matches the shape of a pipeline delegate with the result type
// erased, so the middleware can decorate any delegate before the pipeline
// nests strategies around it.
type DelegateFunc func(ctx context.Context) error

// Middleware wraps delegate execution with observability (tracing, metrics,
// logging). It sits innermost, so a span covers exactly one delegate
// attempt; retries show up as repeated spans under the same execution.
//
// Contract:
//   - Concurrency: Wrap() returns a thread-safe DelegateFunc.
//   - Context: Propagates context through tracing spans.
//   - Errors: Errors from the wrapped function are recorded and propagated
//     unchanged.
type Middleware struct {
	tracer  Tracer
	metrics Metrics
	logger  Logger
}

// NewMiddleware creates a new Middleware with the given observability components.
func NewMiddleware(tracer Tracer, metrics Metrics, logger Logger) *Middleware {
	return &Middleware{
		tracer:  tracer,
		metrics: metrics,
		logger:  logger,
	}
}

// Wrap wraps a DelegateFunc with tracing, metrics, and logging for the
// given call.
func (m *Middleware) Wrap(meta CallMeta, fn DelegateFunc) DelegateFunc {
	return func(ctx context.Context) error {
		ctx, span := m.tracer.StartSpan(ctx, meta)

		start := time.Now()
		err := fn(ctx)
		duration := time.Since(start)

		m.tracer.EndSpan(span, err)
		m.metrics.RecordCall(ctx, meta, duration, err)

		callLogger := m.logger.WithCall(meta)
		fields := []Field{
			{Key: "duration_ms", Value: float64(duration.Milliseconds())},
		}

		if err != nil {
			fields = append(fields, Field{Key: "error", Value: err.Error()})
			callLogger.Error(ctx, "call failed", fields...)
		} else {
			callLogger.Debug(ctx, "call completed", fields...)
		}

		return err
	}
}

// MiddlewareFromObserver creates a Middleware from an Observer.
// This is a convenience function for common use cases.
func MiddlewareFromObserver(obs Observer) (*Middleware, error) {
	if obs == nil {
		return nil, ErrNilObserver
	}

	tracer := newTracer(obs.Tracer())

	metrics, err := newMetrics(obs.Meter())
	if err != nil {
		return nil, err
	}

	return NewMiddleware(tracer, metrics, obs.Logger()), nil
}

// MetricsFromObserver builds a Metrics implementation from an Observer's
// meter, for callers wiring strategy hooks directly.
func MetricsFromObserver(obs Observer) (Metrics, error) {
	if obs == nil {
		return nil, ErrNilObserver
	}
	return newMetrics(obs.Meter())
}

// NewNoopTracer returns a Tracer that records nothing.
func NewNoopTracer() Tracer {
	return newNoopTracer()
}
