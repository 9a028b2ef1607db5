package resilience

import (
	"context"

	"github.com/jonwraymond/pipeguard/observe"
)

// Instrument helpers chain observe-backed logging and metrics onto a
// strategy config's hooks. They only observe: control flow is untouched,
// and any hook already present keeps firing first.
//
// Hooks fire at decision points inside a strategy, not on a request path
// with a live span, so metric records use a background context.

// InstrumentRetry returns the config with an OnRetry hook that records each
// retry attempt.
func InstrumentRetry[R any](config RetryConfig[R], meta observe.CallMeta, metrics observe.Metrics, logger observe.Logger) RetryConfig[R] {
	prev := config.OnRetry
	callLogger := logger.WithCall(meta)

	config.OnRetry = func(ev RetryEvent[R]) {
		if prev != nil {
			prev(ev)
		}
		ctx := context.Background()
		metrics.RecordRetry(ctx, meta, ev.Attempt)
		callLogger.Warn(ctx, "retrying call",
			observe.Field{Key: "attempt", Value: ev.Attempt},
			observe.Field{Key: "delay_ms", Value: float64(ev.Delay.Milliseconds())},
			observe.Field{Key: "error", Value: errString(ev.Outcome.Err)},
		)
	}
	return config
}

// InstrumentCircuitBreaker returns the config with transition hooks that
// record breaker state changes.
func InstrumentCircuitBreaker[R any](config CircuitBreakerConfig[R], meta observe.CallMeta, metrics observe.Metrics, logger observe.Logger) CircuitBreakerConfig[R] {
	prevOpened := config.OnOpened
	prevClosed := config.OnClosed
	prevHalf := config.OnHalfOpened
	callLogger := logger.WithCall(meta)

	config.OnOpened = func(ev OpenedEvent) {
		if prevOpened != nil {
			prevOpened(ev)
		}
		ctx := context.Background()
		metrics.RecordTransition(ctx, meta, StateOpen.String())
		callLogger.Error(ctx, "circuit opened",
			observe.Field{Key: "break_ms", Value: float64(ev.BreakDuration.Milliseconds())},
			observe.Field{Key: "cause", Value: errString(ev.Cause)},
		)
	}
	config.OnClosed = func() {
		if prevClosed != nil {
			prevClosed()
		}
		ctx := context.Background()
		metrics.RecordTransition(ctx, meta, StateClosed.String())
		callLogger.Info(ctx, "circuit closed")
	}
	config.OnHalfOpened = func() {
		if prevHalf != nil {
			prevHalf()
		}
		ctx := context.Background()
		metrics.RecordTransition(ctx, meta, StateHalfOpen.String())
		callLogger.Info(ctx, "circuit half-open, probing")
	}
	return config
}

// InstrumentTimeout returns the config with an OnTimeout hook that records
// deadline overruns.
func InstrumentTimeout[R any](config TimeoutConfig[R], meta observe.CallMeta, metrics observe.Metrics, logger observe.Logger) TimeoutConfig[R] {
	prev := config.OnTimeout
	callLogger := logger.WithCall(meta)

	config.OnTimeout = func(ev TimeoutEvent) {
		if prev != nil {
			prev(ev)
		}
		ctx := context.Background()
		metrics.RecordRejection(ctx, meta, "timeout")
		callLogger.Warn(ctx, "call timed out",
			observe.Field{Key: "timeout_ms", Value: float64(ev.Timeout.Milliseconds())},
		)
	}
	return config
}

// InstrumentFallback returns the config with an OnFallback hook that logs
// substitutions.
func InstrumentFallback[R any](config FallbackConfig[R], meta observe.CallMeta, logger observe.Logger) FallbackConfig[R] {
	prev := config.OnFallback
	callLogger := logger.WithCall(meta)

	config.OnFallback = func(ev FallbackEvent[R]) {
		if prev != nil {
			prev(ev)
		}
		callLogger.Warn(context.Background(), "substituting fallback",
			observe.Field{Key: "error", Value: errString(ev.Outcome.Err)},
		)
	}
	return config
}

// InstrumentBulkhead returns the config with an OnRejected hook that records
// capacity rejections.
func InstrumentBulkhead(config BulkheadConfig, meta observe.CallMeta, metrics observe.Metrics, logger observe.Logger) BulkheadConfig {
	prev := config.OnRejected
	callLogger := logger.WithCall(meta)

	config.OnRejected = func() {
		if prev != nil {
			prev()
		}
		ctx := context.Background()
		metrics.RecordRejection(ctx, meta, "bulkhead")
		callLogger.Warn(ctx, "bulkhead rejected call")
	}
	return config
}

// InstrumentRateLimiter returns the config with an OnRejected hook that
// records rate-limit rejections.
func InstrumentRateLimiter(config RateLimiterConfig, meta observe.CallMeta, metrics observe.Metrics, logger observe.Logger) RateLimiterConfig {
	prev := config.OnRejected
	callLogger := logger.WithCall(meta)

	config.OnRejected = func() {
		if prev != nil {
			prev()
		}
		ctx := context.Background()
		metrics.RecordRejection(ctx, meta, "rate_limit")
		callLogger.Warn(ctx, "rate limiter rejected call")
	}
	return config
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
