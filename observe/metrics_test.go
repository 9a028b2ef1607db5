package observe

import (
	"context"
	"errors"
	"testing"
	"time"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

// newTestMetrics builds a Metrics backed by a manual reader for assertions.
func newTestMetrics(t *testing.T) (*metricsImpl, *sdkmetric.ManualReader) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))

	m, err := newMetrics(mp.Meter("test"))
	if err != nil {
		t.Fatalf("newMetrics() error = %v", err)
	}
	return m, reader
}

// collect gathers current metric data keyed by instrument name.
func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Metrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("Collect() error = %v", err)
	}

	out := make(map[string]metricdata.Metrics)
	for _, scope := range rm.ScopeMetrics {
		for _, m := range scope.Metrics {
			out[m.Name] = m
		}
	}
	return out
}

func counterValue(t *testing.T, m metricdata.Metrics) int64 {
	t.Helper()
	sum, ok := m.Data.(metricdata.Sum[int64])
	if !ok {
		t.Fatalf("metric %s is %T, want Sum[int64]", m.Name, m.Data)
	}
	var total int64
	for _, dp := range sum.DataPoints {
		total += dp.Value
	}
	return total
}

// TestMetrics_RecordCall verifies execution counters and duration histogram.
func TestMetrics_RecordCall(t *testing.T) {
	m, reader := newTestMetrics(t)
	meta := CallMeta{Pipeline: "orders", Target: "inventory"}
	ctx := context.Background()

	m.RecordCall(ctx, meta, 25*time.Millisecond, nil)
	m.RecordCall(ctx, meta, 50*time.Millisecond, errors.New("boom"))

	data := collect(t, reader)

	if got := counterValue(t, data["pipeline.exec.total"]); got != 2 {
		t.Errorf("pipeline.exec.total = %d, want 2", got)
	}
	if got := counterValue(t, data["pipeline.exec.errors"]); got != 1 {
		t.Errorf("pipeline.exec.errors = %d, want 1", got)
	}

	hist, ok := data["pipeline.exec.duration_ms"].Data.(metricdata.Histogram[float64])
	if !ok {
		t.Fatalf("duration metric is %T, want Histogram[float64]", data["pipeline.exec.duration_ms"].Data)
	}
	var count uint64
	for _, dp := range hist.DataPoints {
		count += dp.Count
	}
	if count != 2 {
		t.Errorf("duration histogram count = %d, want 2", count)
	}
}

// TestMetrics_RecordRetry verifies the retry counter.
func TestMetrics_RecordRetry(t *testing.T) {
	m, reader := newTestMetrics(t)
	meta := CallMeta{Pipeline: "orders"}
	ctx := context.Background()

	m.RecordRetry(ctx, meta, 1)
	m.RecordRetry(ctx, meta, 2)
	m.RecordRetry(ctx, meta, 3)

	data := collect(t, reader)
	if got := counterValue(t, data["pipeline.retry.total"]); got != 3 {
		t.Errorf("pipeline.retry.total = %d, want 3", got)
	}
}

// TestMetrics_RecordTransition verifies breaker transition counting by state.
func TestMetrics_RecordTransition(t *testing.T) {
	m, reader := newTestMetrics(t)
	meta := CallMeta{Pipeline: "orders"}
	ctx := context.Background()

	m.RecordTransition(ctx, meta, "open")
	m.RecordTransition(ctx, meta, "half-open")
	m.RecordTransition(ctx, meta, "closed")

	data := collect(t, reader)
	if got := counterValue(t, data["pipeline.breaker.transitions"]); got != 3 {
		t.Errorf("pipeline.breaker.transitions = %d, want 3", got)
	}
}

// TestMetrics_RecordRejection verifies rejection counting by reason.
func TestMetrics_RecordRejection(t *testing.T) {
	m, reader := newTestMetrics(t)
	meta := CallMeta{Pipeline: "orders"}
	ctx := context.Background()

	m.RecordRejection(ctx, meta, "bulkhead")
	m.RecordRejection(ctx, meta, "rate_limit")

	data := collect(t, reader)
	if got := counterValue(t, data["pipeline.rejections.total"]); got != 2 {
		t.Errorf("pipeline.rejections.total = %d, want 2", got)
	}
}

// TestNoopMetrics verifies the noop implementation is usable.
func TestNoopMetrics(t *testing.T) {
	m := NewNoopMetrics()
	ctx := context.Background()
	meta := CallMeta{Pipeline: "orders"}

	m.RecordCall(ctx, meta, time.Millisecond, nil)
	m.RecordRetry(ctx, meta, 1)
	m.RecordTransition(ctx, meta, "open")
	m.RecordRejection(ctx, meta, "bulkhead")
}
