package health

import (
	"context"
	"errors"
	"testing"
)

func TestStatus_String(t *testing.T) {
	tests := []struct {
		status Status
		want   string
	}{
		{StatusHealthy, "healthy"},
		{StatusDegraded, "degraded"},
		{StatusUnhealthy, "unhealthy"},
		{Status(99), "unknown"},
	}

	for _, tt := range tests {
		if got := tt.status.String(); got != tt.want {
			t.Errorf("Status(%d).String() = %q, want %q", tt.status, got, tt.want)
		}
	}
}

func TestResultConstructors(t *testing.T) {
	t.Run("healthy", func(t *testing.T) {
		r := Healthy("all good")
		if r.Status != StatusHealthy {
			t.Errorf("Status = %v, want healthy", r.Status)
		}
		if r.Message != "all good" {
			t.Errorf("Message = %q, want %q", r.Message, "all good")
		}
		if r.Timestamp.IsZero() {
			t.Error("Timestamp not set")
		}
	})

	t.Run("degraded", func(t *testing.T) {
		r := Degraded("recovering")
		if r.Status != StatusDegraded {
			t.Errorf("Status = %v, want degraded", r.Status)
		}
	})

	t.Run("unhealthy", func(t *testing.T) {
		checkErr := errors.New("connection refused")
		r := Unhealthy("down", checkErr)
		if r.Status != StatusUnhealthy {
			t.Errorf("Status = %v, want unhealthy", r.Status)
		}
		if r.Error != checkErr {
			t.Errorf("Error = %v, want %v", r.Error, checkErr)
		}
	})

	t.Run("with details", func(t *testing.T) {
		r := Healthy("ok").WithDetails(map[string]any{"region": "us-east-1"})
		if r.Details["region"] != "us-east-1" {
			t.Errorf("Details[region] = %v, want us-east-1", r.Details["region"])
		}
	})
}

func TestCheckerFunc(t *testing.T) {
	checker := NewCheckerFunc("database", func(ctx context.Context) Result {
		return Healthy("connected")
	})

	if checker.Name() != "database" {
		t.Errorf("Name() = %q, want %q", checker.Name(), "database")
	}

	result := checker.Check(context.Background())
	if result.Status != StatusHealthy {
		t.Errorf("Status = %v, want healthy", result.Status)
	}
}
