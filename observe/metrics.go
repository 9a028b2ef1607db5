package observe

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics records pipeline execution metrics.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Errors: implementations must not panic.
type Metrics interface {
	// RecordCall records one pipeline execution with duration and error status.
	RecordCall(ctx context.Context, meta CallMeta, duration time.Duration, err error)

	// RecordRetry records one retry attempt.
	RecordRetry(ctx context.Context, meta CallMeta, attempt int)

	// RecordTransition records a circuit breaker state transition.
	RecordTransition(ctx context.Context, meta CallMeta, to string)

	// RecordRejection records a capacity rejection (bulkhead or rate limiter).
	RecordRejection(ctx context.Context, meta CallMeta, reason string)
}

// metricsImpl is the concrete implementation of Metrics.
type metricsImpl struct {
	meter        metric.Meter
	totalCount   metric.Int64Counter
	errorCount   metric.Int64Counter
	durationHist metric.Float64Histogram
	retryCount   metric.Int64Counter
	transitions  metric.Int64Counter
	rejections   metric.Int64Counter
}

// newMetrics creates a new Metrics instance with the given meter.
func newMetrics(meter metric.Meter) (*metricsImpl, error) {
	totalCount, err := meter.Int64Counter(
		"pipeline.exec.total",
		metric.WithDescription("Total number of pipeline executions"),
		metric.WithUnit("{call}"),
	)
	if err != nil {
		return nil, err
	}

	errorCount, err := meter.Int64Counter(
		"pipeline.exec.errors",
		metric.WithDescription("Total number of pipeline executions that surfaced a failure"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return nil, err
	}

	durationHist, err := meter.Float64Histogram(
		"pipeline.exec.duration_ms",
		metric.WithDescription("Pipeline execution duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	retryCount, err := meter.Int64Counter(
		"pipeline.retry.total",
		metric.WithDescription("Total number of retry attempts"),
		metric.WithUnit("{retry}"),
	)
	if err != nil {
		return nil, err
	}

	transitions, err := meter.Int64Counter(
		"pipeline.breaker.transitions",
		metric.WithDescription("Total number of circuit breaker state transitions"),
		metric.WithUnit("{transition}"),
	)
	if err != nil {
		return nil, err
	}

	rejections, err := meter.Int64Counter(
		"pipeline.rejections.total",
		metric.WithDescription("Total number of capacity rejections"),
		metric.WithUnit("{rejection}"),
	)
	if err != nil {
		return nil, err
	}

	return &metricsImpl{
		meter:        meter,
		totalCount:   totalCount,
		errorCount:   errorCount,
		durationHist: durationHist,
		retryCount:   retryCount,
		transitions:  transitions,
		rejections:   rejections,
	}, nil
}

func (m *metricsImpl) callAttrs(meta CallMeta) metric.MeasurementOption {
	attrs := []attribute.KeyValue{
		attribute.String("pipeline.call", meta.CallID()),
		attribute.String("pipeline.name", meta.Pipeline),
	}
	if meta.Target != "" {
		attrs = append(attrs, attribute.String("pipeline.target", meta.Target))
	}
	return metric.WithAttributes(attrs...)
}

// RecordCall records metrics for one pipeline execution.
func (m *metricsImpl) RecordCall(ctx context.Context, meta CallMeta, duration time.Duration, err error) {
	opt := m.callAttrs(meta)

	m.totalCount.Add(ctx, 1, opt)
	if err != nil {
		m.errorCount.Add(ctx, 1, opt)
	}
	m.durationHist.Record(ctx, float64(duration.Milliseconds()), opt)
}

// RecordRetry records one retry attempt.
func (m *metricsImpl) RecordRetry(ctx context.Context, meta CallMeta, attempt int) {
	m.retryCount.Add(ctx, 1, m.callAttrs(meta))
	_ = attempt // attempt number is carried in logs; the counter stays low-cardinality
}

// RecordTransition records a breaker state transition.
func (m *metricsImpl) RecordTransition(ctx context.Context, meta CallMeta, to string) {
	m.transitions.Add(ctx, 1, metric.WithAttributes(
		attribute.String("pipeline.call", meta.CallID()),
		attribute.String("breaker.state", to),
	))
}

// RecordRejection records a capacity rejection.
func (m *metricsImpl) RecordRejection(ctx context.Context, meta CallMeta, reason string) {
	m.rejections.Add(ctx, 1, metric.WithAttributes(
		attribute.String("pipeline.call", meta.CallID()),
		attribute.String("rejection.reason", reason),
	))
}

// noopMetrics is a metrics implementation that does nothing.
type noopMetrics struct{}

func (m *noopMetrics) RecordCall(ctx context.Context, meta CallMeta, duration time.Duration, err error) {
}
func (m *noopMetrics) RecordRetry(ctx context.Context, meta CallMeta, attempt int)      {}
func (m *noopMetrics) RecordTransition(ctx context.Context, meta CallMeta, to string)   {}
func (m *noopMetrics) RecordRejection(ctx context.Context, meta CallMeta, reason string) {}

// NewNoopMetrics returns a Metrics that records nothing.
func NewNoopMetrics() Metrics {
	return &noopMetrics{}
}
