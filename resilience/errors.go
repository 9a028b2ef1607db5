package resilience

import "errors"

// Sentinel errors for resilience strategies.
var (
	// ErrCircuitOpen is returned when the circuit breaker is open and the
	// call is rejected without invoking the delegate. A retry strategy
	// wrapped around a breaker usually wants to exclude this error from
	// its ShouldHandle predicate so that retries do not fight the
	// breaker's fail-fast.
	ErrCircuitOpen = errors.New("resilience: circuit breaker is open")

	// ErrTimeout is returned when a timeout strategy gives up on the
	// delegate. Under forced mode the delegate may still be running
	// detached when this error surfaces.
	ErrTimeout = errors.New("resilience: operation timed out")

	// ErrBulkheadFull is returned when the bulkhead has no free permit and
	// no queue space. The delegate is never invoked.
	ErrBulkheadFull = errors.New("resilience: bulkhead at capacity")

	// ErrRateLimitExceeded is returned when the rate limiter rejects a call.
	ErrRateLimitExceeded = errors.New("resilience: rate limit exceeded")
)
