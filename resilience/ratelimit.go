package resilience

import (
	"context"
	"sync"
	"time"
)

// RateLimiterConfig configures a token-bucket rate limiter.
type RateLimiterConfig struct {
	// Rate is the number of calls allowed per second.
	// Default: 100
	Rate float64

	// Burst is the bucket capacity.
	// Default: 10
	Burst int

	// WaitOnLimit makes callers wait for a token instead of failing.
	WaitOnLimit bool

	// MaxWait bounds how long a caller waits for a token.
	// Default: 1s
	MaxWait time.Duration

	// OnRejected is invoked when a call is rejected. Observer only.
	OnRejected func()
}

// RateLimiter is a token-bucket rate limiter usable as a pipeline strategy.
// Like the bulkhead it holds shared state: one instance, one bucket.
type RateLimiter[R any] struct {
	config RateLimiterConfig

	mu         sync.Mutex
	tokens     float64
	lastRefill time.Time
}

// NewRateLimiter creates a rate limiter with defaults applied.
func NewRateLimiter[R any](config RateLimiterConfig) *RateLimiter[R] {
	if config.Rate <= 0 {
		config.Rate = 100
	}
	if config.Burst <= 0 {
		config.Burst = 10
	}
	if config.MaxWait <= 0 {
		config.MaxWait = time.Second
	}

	return &RateLimiter[R]{
		config:     config,
		tokens:     float64(config.Burst),
		lastRefill: time.Now(),
	}
}

// Allow reports whether one call is allowed right now, consuming a token
// when it is.
func (rl *RateLimiter[R]) Allow() bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	rl.refillLocked()
	if rl.tokens >= 1 {
		rl.tokens--
		return true
	}
	return false
}

// Execute runs the delegate if the rate limit allows it, otherwise returns
// ErrRateLimitExceeded (or waits, when WaitOnLimit is set).
func (rl *RateLimiter[R]) Execute(ctx context.Context, op Operation[R]) (R, error) {
	if rl.config.WaitOnLimit {
		if err := rl.wait(ctx); err != nil {
			var zero R
			return zero, err
		}
	} else if !rl.Allow() {
		rl.reject()
		var zero R
		return zero, ErrRateLimitExceeded
	}

	return op(ctx)
}

func (rl *RateLimiter[R]) wait(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if rl.Allow() {
		return nil
	}

	rl.mu.Lock()
	need := 1 - rl.tokens
	waitFor := time.Duration(need / rl.config.Rate * float64(time.Second))
	rl.mu.Unlock()

	if waitFor > rl.config.MaxWait {
		waitFor = rl.config.MaxWait
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(waitFor):
		if rl.Allow() {
			return nil
		}
		rl.reject()
		return ErrRateLimitExceeded
	}
}

func (rl *RateLimiter[R]) reject() {
	if rl.config.OnRejected != nil {
		rl.config.OnRejected()
	}
}

// Tokens returns the current token count after refill.
func (rl *RateLimiter[R]) Tokens() float64 {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	rl.refillLocked()
	return rl.tokens
}

func (rl *RateLimiter[R]) refillLocked() {
	now := time.Now()
	elapsed := now.Sub(rl.lastRefill)
	rl.lastRefill = now

	rl.tokens += elapsed.Seconds() * rl.config.Rate
	if rl.tokens > float64(rl.config.Burst) {
		rl.tokens = float64(rl.config.Burst)
	}
}
