package health

import (
	"context"
	"time"

	"github.com/jonwraymond/pipeguard/resilience"
)

// StateReporter is the slice of a circuit breaker this package needs. Every
// resilience.CircuitBreaker[R] satisfies it regardless of result type.
type StateReporter interface {
	State() resilience.State
}

// BreakerChecker maps a circuit breaker's state to a health status: closed
// is healthy, half-open is degraded (the dependency is being probed), open
// is unhealthy. It costs nothing per check beyond reading breaker state.
type BreakerChecker struct {
	name    string
	breaker StateReporter
}

// NewBreakerChecker creates a health checker backed by a circuit breaker.
func NewBreakerChecker(name string, breaker StateReporter) *BreakerChecker {
	return &BreakerChecker{name: name, breaker: breaker}
}

// Name returns the name of this checker.
func (c *BreakerChecker) Name() string {
	return c.name
}

// Check reports the breaker's current state as a health result.
func (c *BreakerChecker) Check(ctx context.Context) Result {
	state := c.breaker.State()

	result := Result{
		Timestamp: time.Now(),
		Details:   map[string]any{"breaker_state": state.String()},
	}

	switch state {
	case resilience.StateClosed:
		result.Status = StatusHealthy
		result.Message = "circuit closed"
	case resilience.StateHalfOpen:
		result.Status = StatusDegraded
		result.Message = "circuit half-open, dependency being probed"
	default:
		result.Status = StatusUnhealthy
		result.Message = "circuit open, dependency failing"
		result.Error = resilience.ErrCircuitOpen
	}

	return result
}

// ProbeChecker actively probes a dependency through a guarded pipeline, so
// probe traffic gets the same timeout/breaker protection as real calls.
type ProbeChecker struct {
	name     string
	pipeline *resilience.Pipeline[struct{}]
	probe    resilience.Operation[struct{}]
}

// NewProbeChecker creates a health checker that runs probe through pipeline.
func NewProbeChecker(name string, pipeline *resilience.Pipeline[struct{}], probe resilience.Operation[struct{}]) *ProbeChecker {
	return &ProbeChecker{name: name, pipeline: pipeline, probe: probe}
}

// Name returns the name of this checker.
func (c *ProbeChecker) Name() string {
	return c.name
}

// Check runs the guarded probe.
func (c *ProbeChecker) Check(ctx context.Context) Result {
	start := time.Now()
	_, err := c.pipeline.Execute(ctx, c.probe)
	elapsed := time.Since(start)

	if err != nil {
		r := Unhealthy("probe failed", err)
		r.Duration = elapsed
		return r
	}

	r := Healthy("probe succeeded")
	r.Duration = elapsed
	return r
}
