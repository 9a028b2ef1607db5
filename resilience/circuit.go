package resilience

import (
	"context"
	"sync"
	"time"
)

// State represents the circuit breaker state.
type State int

const (
	// StateClosed means calls pass through and outcomes feed the window.
	StateClosed State = iota
	// StateOpen means calls fail fast with ErrCircuitOpen.
	StateOpen
	// StateHalfOpen means a single trial call probes for recovery.
	StateHalfOpen
)

// String returns the string representation of the state.
func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// OpenedEvent is passed to the OnOpened hook when the circuit trips.
type OpenedEvent struct {
	// BreakDuration is how long the circuit stays open before probing.
	BreakDuration time.Duration
	// Cause is the most recent handled failure at the time the circuit
	// tripped.
	Cause error
}

// CircuitBreakerConfig configures a circuit breaker.
type CircuitBreakerConfig[R any] struct {
	// ShouldHandle classifies which outcomes count as failures in the
	// window. Unhandled outcomes, including unhandled errors, count as
	// successes so they push the failure ratio down rather than tripping
	// the breaker on errors it was not configured to watch.
	// Default: HandleAll.
	ShouldHandle Predicate[R]

	// FailureRatio is the handled-failure fraction at which the circuit
	// opens, once the window is full. Must be in (0, 1].
	// Default: 0.5
	FailureRatio float64

	// MinimumThroughput is the sliding-window size: the number of recorded
	// outcomes required before the ratio is ever evaluated.
	// Default: 10
	MinimumThroughput int

	// BreakDuration is how long the circuit stays open before allowing a
	// half-open trial call.
	// Default: 30s
	BreakDuration time.Duration

	// OnOpened is invoked when the circuit transitions to open.
	OnOpened func(OpenedEvent)
	// OnClosed is invoked when the circuit transitions to closed.
	OnClosed func()
	// OnHalfOpened is invoked when the circuit transitions to half-open.
	OnHalfOpened func()

	// Clock overrides time for tests.
	Clock Clock
}

// CircuitBreaker tracks a rolling failure ratio over a count-based window
// and fast-fails while open. One long-lived instance holds the shared state
// machine for all calls routed through it; all transitions happen under a
// single mutex so concurrent calls never observe a torn state.
type CircuitBreaker[R any] struct {
	config CircuitBreakerConfig[R]

	mu          sync.Mutex
	state       State
	window      *slidingWindow
	openedAt    time.Time
	lastCause   error
	probeActive bool
}

// NewCircuitBreaker creates a circuit breaker with defaults applied.
func NewCircuitBreaker[R any](config CircuitBreakerConfig[R]) *CircuitBreaker[R] {
	if config.ShouldHandle == nil {
		config.ShouldHandle = HandleAll[R]
	}
	if config.FailureRatio <= 0 || config.FailureRatio > 1 {
		config.FailureRatio = 0.5
	}
	if config.MinimumThroughput <= 0 {
		config.MinimumThroughput = 10
	}
	if config.BreakDuration <= 0 {
		config.BreakDuration = 30 * time.Second
	}
	if config.Clock == nil {
		config.Clock = SystemClock
	}

	return &CircuitBreaker[R]{
		config: config,
		state:  StateClosed,
		window: newSlidingWindow(config.MinimumThroughput),
	}
}

// Execute runs the delegate through the circuit breaker. While open it
// returns ErrCircuitOpen without invoking the delegate; while half-open only
// one concurrent trial call is let through.
func (cb *CircuitBreaker[R]) Execute(ctx context.Context, op Operation[R]) (R, error) {
	probe, err := cb.beforeCall()
	if err != nil {
		var zero R
		return zero, err
	}

	value, opErr := op(ctx)
	cb.afterCall(probe, Outcome[R]{Value: value, Err: opErr})
	return value, opErr
}

// State returns the current state, applying the open -> half-open
// transition if the break duration has elapsed.
func (cb *CircuitBreaker[R]) State() State {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.stateLocked()
}

// Reset forces the breaker closed and clears the window.
func (cb *CircuitBreaker[R]) Reset() {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.toClosedLocked()
}

// beforeCall decides whether the call may proceed. The bool reports whether
// this call is the half-open trial probe.
func (cb *CircuitBreaker[R]) beforeCall() (bool, error) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.stateLocked() {
	case StateOpen:
		return false, ErrCircuitOpen
	case StateHalfOpen:
		if cb.probeActive {
			return false, ErrCircuitOpen
		}
		cb.probeActive = true
		return true, nil
	default:
		return false, nil
	}
}

// afterCall feeds the outcome into the state machine.
func (cb *CircuitBreaker[R]) afterCall(probe bool, outcome Outcome[R]) {
	handled := cb.config.ShouldHandle(outcome)

	cb.mu.Lock()
	hooks := cb.recordLocked(probe, handled, outcome.Err)
	cb.mu.Unlock()

	// Hooks run outside the lock so they cannot deadlock the breaker.
	for _, hook := range hooks {
		hook()
	}
}

// recordLocked applies one outcome and returns the hooks to fire.
func (cb *CircuitBreaker[R]) recordLocked(probe, handled bool, cause error) []func() {
	var hooks []func()

	switch cb.state {
	case StateClosed:
		cb.window.record(handled)
		if handled {
			cb.lastCause = cause
		}
		if cb.window.full() && cb.window.failureRatio() >= cb.config.FailureRatio {
			hooks = append(hooks, cb.toOpenLocked())
		}

	case StateHalfOpen:
		if !probe {
			// A non-probe call that slipped in before the transition;
			// its outcome does not decide the probe.
			return hooks
		}
		cb.probeActive = false
		if handled {
			cb.lastCause = cause
			hooks = append(hooks, cb.toOpenLocked())
		} else {
			closed := cb.toClosedLocked()
			if cb.config.OnClosed != nil && closed {
				hooks = append(hooks, cb.config.OnClosed)
			}
		}
	}

	return hooks
}

// stateLocked resolves the effective state, moving open -> half-open once
// the break duration has elapsed.
func (cb *CircuitBreaker[R]) stateLocked() State {
	if cb.state == StateOpen && !cb.config.Clock.Now().Before(cb.openedAt.Add(cb.config.BreakDuration)) {
		cb.state = StateHalfOpen
		cb.probeActive = false
		if cb.config.OnHalfOpened != nil {
			// Transition is driven by time, not by a call outcome, so the
			// hook fires inline. It must be observe-only and fast.
			cb.config.OnHalfOpened()
		}
	}
	return cb.state
}

func (cb *CircuitBreaker[R]) toOpenLocked() func() {
	cb.state = StateOpen
	cb.openedAt = cb.config.Clock.Now()
	cb.window.reset()
	cause := cb.lastCause

	if cb.config.OnOpened == nil {
		return func() {}
	}
	breakFor := cb.config.BreakDuration
	return func() {
		cb.config.OnOpened(OpenedEvent{BreakDuration: breakFor, Cause: cause})
	}
}

// toClosedLocked returns whether a transition actually happened.
func (cb *CircuitBreaker[R]) toClosedLocked() bool {
	changed := cb.state != StateClosed
	cb.state = StateClosed
	cb.probeActive = false
	cb.window.reset()
	cb.lastCause = nil
	return changed
}
