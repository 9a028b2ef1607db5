package resilience

import (
	"context"
	"math"
	"math/rand/v2"
	"time"
)

// BackoffStrategy defines how delays grow between retry attempts.
type BackoffStrategy int

const (
	// BackoffExponential doubles the delay each attempt (base * multiplier^(n-1)).
	BackoffExponential BackoffStrategy = iota
	// BackoffLinear increases the delay linearly (base * n).
	BackoffLinear
	// BackoffConstant uses the same delay for all retries.
	BackoffConstant
)

// RetryForever disables the attempt bound: the strategy keeps retrying,
// one attempt at a time, until the call succeeds, the outcome is no longer
// handled, or the context is cancelled.
const RetryForever = -1

// RetryEvent is passed to the OnRetry hook before each retry wait.
type RetryEvent[R any] struct {
	// Attempt is the retry number about to be made, starting at 1.
	Attempt int
	// Outcome is the handled failure that triggered the retry.
	Outcome Outcome[R]
	// Delay is the wait before the next attempt.
	Delay time.Duration
}

// RetryConfig configures a retry strategy.
type RetryConfig[R any] struct {
	// ShouldHandle classifies which outcomes are retried.
	// Default: HandleAll (any error except context cancellation).
	ShouldHandle Predicate[R]

	// MaxRetryAttempts is the number of retries after the initial attempt;
	// a delegate that always fails is invoked MaxRetryAttempts+1 times.
	// RetryForever removes the bound; use NewPassthroughRetry for zero
	// retries.
	// Default: 3
	MaxRetryAttempts int

	// Delay is the base delay between attempts.
	// Default: 100ms
	Delay time.Duration

	// MaxDelay caps the computed delay.
	// Default: 30s
	MaxDelay time.Duration

	// Multiplier is the exponential backoff multiplier.
	// Default: 2.0
	Multiplier float64

	// Backoff selects the delay growth curve.
	// Default: BackoffExponential
	Backoff BackoffStrategy

	// Jitter randomizes each delay by up to 25% to avoid thundering herds.
	Jitter bool

	// DelayFunc, when set, overrides the built-in schedule entirely. It
	// receives the retry attempt number (1-based) and must be a pure
	// function of it. MaxDelay still applies.
	DelayFunc func(attempt int) time.Duration

	// OnRetry is invoked before each retry wait. Observer only: it must
	// not alter control flow.
	OnRetry func(RetryEvent[R])

	// Clock overrides time for tests.
	Clock Clock
}

// Retry re-invokes the delegate on handled failure, per a delay schedule.
// Attempt state is local to a single execution, so one instance is safe to
// share across concurrent calls.
type Retry[R any] struct {
	config RetryConfig[R]
}

// NewRetry creates a retry strategy with defaults applied.
func NewRetry[R any](config RetryConfig[R]) *Retry[R] {
	if config.ShouldHandle == nil {
		config.ShouldHandle = HandleAll[R]
	}
	if config.MaxRetryAttempts == 0 {
		config.MaxRetryAttempts = 3
	}
	if config.Delay <= 0 {
		config.Delay = 100 * time.Millisecond
	}
	if config.MaxDelay <= 0 {
		config.MaxDelay = 30 * time.Second
	}
	if config.Multiplier <= 0 {
		config.Multiplier = 2.0
	}
	if config.Clock == nil {
		config.Clock = SystemClock
	}
	return &Retry[R]{config: config}
}

// NewPassthroughRetry creates a retry strategy that never retries. Useful
// as an explicit "no retries" slot in a pipeline.
func NewPassthroughRetry[R any](config RetryConfig[R]) *Retry[R] {
	r := NewRetry(config)
	r.config.MaxRetryAttempts = 0
	return r
}

// Execute runs the delegate, retrying handled failures until the attempt
// bound is reached. The last failure surfaces unchanged; cancellation during
// an inter-attempt wait aborts immediately and does not count as an attempt.
func (r *Retry[R]) Execute(ctx context.Context, op Operation[R]) (R, error) {
	var last Outcome[R]

	for attempt := 0; ; attempt++ {
		if err := ctx.Err(); err != nil {
			var zero R
			return zero, err
		}

		value, err := op(ctx)
		last = Outcome[R]{Value: value, Err: err}

		if !r.config.ShouldHandle(last) {
			return last.Unpack()
		}
		if r.config.MaxRetryAttempts != RetryForever && attempt >= r.config.MaxRetryAttempts {
			return last.Unpack()
		}

		delay := r.delay(attempt + 1)
		if r.config.OnRetry != nil {
			r.config.OnRetry(RetryEvent[R]{
				Attempt: attempt + 1,
				Outcome: last,
				Delay:   delay,
			})
		}

		if err := r.config.Clock.Sleep(ctx, delay); err != nil {
			var zero R
			return zero, err
		}
	}
}

// delay computes the wait before the given retry attempt (1-based).
func (r *Retry[R]) delay(attempt int) time.Duration {
	var d time.Duration

	switch {
	case r.config.DelayFunc != nil:
		d = r.config.DelayFunc(attempt)

	case r.config.Backoff == BackoffConstant:
		d = r.config.Delay

	case r.config.Backoff == BackoffLinear:
		d = r.config.Delay * time.Duration(attempt)

	default: // BackoffExponential
		factor := math.Pow(r.config.Multiplier, float64(attempt-1))
		scaled := float64(r.config.Delay) * factor
		if scaled >= float64(math.MaxInt64) {
			d = r.config.MaxDelay
		} else {
			d = time.Duration(scaled)
		}
	}

	if d > r.config.MaxDelay {
		d = r.config.MaxDelay
	}
	if d < 0 {
		d = 0
	}

	if r.config.Jitter && d > 0 {
		// Up to 25% non-cryptographic timing variance.
		d += time.Duration(rand.Int64N(int64(d/4) + 1))
	}

	return d
}

// Config returns the applied configuration.
func (r *Retry[R]) Config() RetryConfig[R] {
	return r.config
}
