package exporters

import (
	"context"
	"errors"
	"testing"
)

func TestNewTracingExporter(t *testing.T) {
	ctx := context.Background()

	t.Run("none", func(t *testing.T) {
		exp, err := NewTracingExporter(ctx, "none")
		if err != nil {
			t.Fatalf("NewTracingExporter() error = %v", err)
		}
		if exp == nil {
			t.Fatal("exporter is nil")
		}
		_ = exp.Shutdown(ctx)
	})

	t.Run("unknown", func(t *testing.T) {
		if _, err := NewTracingExporter(ctx, "bogus"); err == nil {
			t.Error("expected error for unknown exporter")
		}
	})

	t.Run("otlp without endpoint", func(t *testing.T) {
		t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "")
		t.Setenv("OTEL_EXPORTER_OTLP_TRACES_ENDPOINT", "")

		if _, err := NewTracingExporter(ctx, "otlp"); !errors.Is(err, ErrEndpointNotConfigured) {
			t.Errorf("expected ErrEndpointNotConfigured, got: %v", err)
		}
	})

	t.Run("jaeger without endpoint", func(t *testing.T) {
		t.Setenv("OTEL_EXPORTER_JAEGER_ENDPOINT", "")

		if _, err := NewTracingExporter(ctx, "jaeger"); !errors.Is(err, ErrEndpointNotConfigured) {
			t.Errorf("expected ErrEndpointNotConfigured, got: %v", err)
		}
	})
}

func TestNewMetricsReader(t *testing.T) {
	ctx := context.Background()

	t.Run("none", func(t *testing.T) {
		reader, err := NewMetricsReader(ctx, "none")
		if err != nil {
			t.Fatalf("NewMetricsReader() error = %v", err)
		}
		if reader == nil {
			t.Fatal("reader is nil")
		}
		_ = reader.Shutdown(ctx)
	})

	t.Run("prometheus", func(t *testing.T) {
		reader, err := NewMetricsReader(ctx, "prometheus")
		if err != nil {
			t.Fatalf("NewMetricsReader() error = %v", err)
		}
		_ = reader.Shutdown(ctx)
	})

	t.Run("unknown", func(t *testing.T) {
		if _, err := NewMetricsReader(ctx, "bogus"); err == nil {
			t.Error("expected error for unknown metrics exporter")
		}
	})

	t.Run("otlp without endpoint", func(t *testing.T) {
		t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "")
		t.Setenv("OTEL_EXPORTER_OTLP_METRICS_ENDPOINT", "")

		if _, err := NewMetricsReader(ctx, "otlp"); !errors.Is(err, ErrEndpointNotConfigured) {
			t.Errorf("expected ErrEndpointNotConfigured, got: %v", err)
		}
	})
}
