package resilience

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestNewRetry(t *testing.T) {
	r := NewRetry(RetryConfig[int]{})

	if r.config.MaxRetryAttempts != 3 {
		t.Errorf("MaxRetryAttempts = %d, want 3", r.config.MaxRetryAttempts)
	}
	if r.config.Delay != 100*time.Millisecond {
		t.Errorf("Delay = %v, want 100ms", r.config.Delay)
	}
	if r.config.MaxDelay != 30*time.Second {
		t.Errorf("MaxDelay = %v, want 30s", r.config.MaxDelay)
	}
	if r.config.Multiplier != 2.0 {
		t.Errorf("Multiplier = %f, want 2.0", r.config.Multiplier)
	}
	if r.config.ShouldHandle == nil {
		t.Error("ShouldHandle not defaulted")
	}
}

func TestRetry_SuccessOnFirstAttempt(t *testing.T) {
	r := NewRetry(RetryConfig[string]{Clock: newFakeClock()})

	attempts := 0
	value, err := r.Execute(context.Background(), func(ctx context.Context) (string, error) {
		attempts++
		return "ok", nil
	})

	if err != nil {
		t.Errorf("Execute() error = %v", err)
	}
	if value != "ok" {
		t.Errorf("Execute() = %q, want %q", value, "ok")
	}
	if attempts != 1 {
		t.Errorf("attempts = %d, want 1", attempts)
	}
}

func TestRetry_SuccessOnRetry(t *testing.T) {
	r := NewRetry(RetryConfig[string]{
		MaxRetryAttempts: 3,
		Clock:            newFakeClock(),
	})

	attempts := 0
	testErr := errors.New("test error")

	value, err := r.Execute(context.Background(), func(ctx context.Context) (string, error) {
		attempts++
		if attempts < 3 {
			return "", testErr
		}
		return "recovered", nil
	})

	if err != nil {
		t.Errorf("Execute() error = %v", err)
	}
	if value != "recovered" {
		t.Errorf("Execute() = %q, want %q", value, "recovered")
	}
	if attempts != 3 {
		t.Errorf("attempts = %d, want 3", attempts)
	}
}

func TestRetry_AttemptBound(t *testing.T) {
	// MaxRetryAttempts counts retries after the initial attempt, so an
	// always-failing delegate runs n+1 times.
	r := NewRetry(RetryConfig[int]{
		MaxRetryAttempts: 3,
		Clock:            newFakeClock(),
	})

	attempts := 0
	testErr := errors.New("persistent error")

	_, err := r.Execute(context.Background(), func(ctx context.Context) (int, error) {
		attempts++
		return 0, testErr
	})

	if err != testErr {
		t.Errorf("Execute() error = %v, want %v", err, testErr)
	}
	if attempts != 4 {
		t.Errorf("attempts = %d, want 4", attempts)
	}
}

func TestRetry_Passthrough(t *testing.T) {
	r := NewPassthroughRetry(RetryConfig[int]{})

	attempts := 0
	testErr := errors.New("boom")

	_, err := r.Execute(context.Background(), func(ctx context.Context) (int, error) {
		attempts++
		return 0, testErr
	})

	if err != testErr {
		t.Errorf("Execute() error = %v, want %v", err, testErr)
	}
	if attempts != 1 {
		t.Errorf("attempts = %d, want 1", attempts)
	}
}

func TestRetry_Forever(t *testing.T) {
	r := NewRetry(RetryConfig[int]{
		MaxRetryAttempts: RetryForever,
		Clock:            newFakeClock(),
	})

	attempts := 0
	_, err := r.Execute(context.Background(), func(ctx context.Context) (int, error) {
		attempts++
		if attempts < 50 {
			return 0, errors.New("not yet")
		}
		return attempts, nil
	})

	if err != nil {
		t.Errorf("Execute() error = %v", err)
	}
	if attempts != 50 {
		t.Errorf("attempts = %d, want 50", attempts)
	}
}

func TestRetry_ContextCancellation(t *testing.T) {
	r := NewRetry(RetryConfig[int]{
		MaxRetryAttempts: 10,
		Delay:            50 * time.Millisecond,
		Backoff:          BackoffConstant,
	})

	ctx, cancel := context.WithCancel(context.Background())

	attempts := 0
	testErr := errors.New("test error")

	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	_, err := r.Execute(ctx, func(ctx context.Context) (int, error) {
		attempts++
		return 0, testErr
	})

	if err != context.Canceled {
		t.Errorf("Execute() error = %v, want context.Canceled", err)
	}
	// Cancellation during the inter-attempt wait must not schedule another
	// attempt.
	if attempts > 2 {
		t.Errorf("attempts = %d, want at most 2", attempts)
	}
}

func TestRetry_CancellationNotHandled(t *testing.T) {
	r := NewRetry(RetryConfig[int]{Clock: newFakeClock()})

	attempts := 0
	_, err := r.Execute(context.Background(), func(ctx context.Context) (int, error) {
		attempts++
		return 0, context.Canceled
	})

	if err != context.Canceled {
		t.Errorf("Execute() error = %v, want context.Canceled", err)
	}
	if attempts != 1 {
		t.Errorf("attempts = %d, want 1: cancellation must not be retried", attempts)
	}
}

func TestRetry_ShouldHandle(t *testing.T) {
	retryableErr := errors.New("retryable")
	permanentErr := errors.New("permanent")

	r := NewRetry(RetryConfig[int]{
		MaxRetryAttempts: 3,
		ShouldHandle:     HandleErrors[int](retryableErr),
		Clock:            newFakeClock(),
	})

	t.Run("handled error", func(t *testing.T) {
		attempts := 0
		_, err := r.Execute(context.Background(), func(ctx context.Context) (int, error) {
			attempts++
			return 0, retryableErr
		})

		if err != retryableErr {
			t.Errorf("Execute() error = %v, want %v", err, retryableErr)
		}
		if attempts != 4 {
			t.Errorf("attempts = %d, want 4", attempts)
		}
	})

	t.Run("unhandled error", func(t *testing.T) {
		attempts := 0
		_, err := r.Execute(context.Background(), func(ctx context.Context) (int, error) {
			attempts++
			return 0, permanentErr
		})

		if err != permanentErr {
			t.Errorf("Execute() error = %v, want %v", err, permanentErr)
		}
		if attempts != 1 {
			t.Errorf("attempts = %d, want 1", attempts)
		}
	})

	t.Run("handled success value", func(t *testing.T) {
		// Predicates see the whole outcome, so a retry can act on
		// result values, not only errors.
		byValue := NewRetry(RetryConfig[int]{
			MaxRetryAttempts: 5,
			ShouldHandle: func(o Outcome[int]) bool {
				return o.Err == nil && o.Value < 0
			},
			Clock: newFakeClock(),
		})

		attempts := 0
		value, err := byValue.Execute(context.Background(), func(ctx context.Context) (int, error) {
			attempts++
			if attempts < 3 {
				return -1, nil
			}
			return attempts, nil
		})

		if err != nil {
			t.Errorf("Execute() error = %v", err)
		}
		if value != 3 {
			t.Errorf("Execute() = %d, want 3", value)
		}
	})
}

func TestRetry_OnRetry(t *testing.T) {
	var events []RetryEvent[int]

	r := NewRetry(RetryConfig[int]{
		MaxRetryAttempts: 2,
		Clock:            newFakeClock(),
		OnRetry: func(e RetryEvent[int]) {
			events = append(events, e)
		},
	})

	testErr := errors.New("test error")
	_, _ = r.Execute(context.Background(), func(ctx context.Context) (int, error) {
		return 0, testErr
	})

	if len(events) != 2 {
		t.Fatalf("events = %d, want 2", len(events))
	}
	if events[0].Attempt != 1 || events[1].Attempt != 2 {
		t.Errorf("attempts = %d, %d, want 1, 2", events[0].Attempt, events[1].Attempt)
	}
	if events[0].Outcome.Err != testErr {
		t.Errorf("event outcome error = %v, want %v", events[0].Outcome.Err, testErr)
	}
}

func TestRetry_BackoffStrategies(t *testing.T) {
	t.Run("exponential", func(t *testing.T) {
		r := NewRetry(RetryConfig[int]{
			Delay:      10 * time.Millisecond,
			Multiplier: 2.0,
			Backoff:    BackoffExponential,
		})

		// Attempt 3 waits base * multiplier^2.
		if d := r.delay(3); d != 40*time.Millisecond {
			t.Errorf("delay(3) = %v, want 40ms", d)
		}
	})

	t.Run("exponential is monotonic", func(t *testing.T) {
		r := NewRetry(RetryConfig[int]{
			Delay:   time.Millisecond,
			Backoff: BackoffExponential,
		})

		prev := time.Duration(0)
		for attempt := 1; attempt <= 12; attempt++ {
			d := r.delay(attempt)
			if d < prev {
				t.Fatalf("delay(%d) = %v, less than delay(%d) = %v", attempt, d, attempt-1, prev)
			}
			prev = d
		}
	})

	t.Run("linear", func(t *testing.T) {
		r := NewRetry(RetryConfig[int]{
			Delay:   10 * time.Millisecond,
			Backoff: BackoffLinear,
		})

		if d := r.delay(3); d != 30*time.Millisecond {
			t.Errorf("delay(3) = %v, want 30ms", d)
		}
	})

	t.Run("constant", func(t *testing.T) {
		r := NewRetry(RetryConfig[int]{
			Delay:   10 * time.Millisecond,
			Backoff: BackoffConstant,
		})

		if d := r.delay(3); d != 10*time.Millisecond {
			t.Errorf("delay(3) = %v, want 10ms", d)
		}
	})

	t.Run("max delay cap", func(t *testing.T) {
		r := NewRetry(RetryConfig[int]{
			Delay:      time.Second,
			MaxDelay:   5 * time.Second,
			Multiplier: 10.0,
			Backoff:    BackoffExponential,
		})

		if d := r.delay(5); d != 5*time.Second {
			t.Errorf("delay(5) = %v, want 5s", d)
		}
	})

	t.Run("overflow saturates at max delay", func(t *testing.T) {
		r := NewRetry(RetryConfig[int]{
			Delay:    time.Hour,
			MaxDelay: 2 * time.Hour,
		})

		if d := r.delay(500); d != 2*time.Hour {
			t.Errorf("delay(500) = %v, want 2h", d)
		}
	})

	t.Run("jitter stays within 25 percent", func(t *testing.T) {
		r := NewRetry(RetryConfig[int]{
			Delay:   100 * time.Millisecond,
			Backoff: BackoffConstant,
			Jitter:  true,
		})

		for i := 0; i < 100; i++ {
			d := r.delay(1)
			if d < 100*time.Millisecond || d > 125*time.Millisecond {
				t.Fatalf("jittered delay = %v, want in [100ms, 125ms]", d)
			}
		}
	})
}

func TestRetry_DelayFunc(t *testing.T) {
	r := NewRetry(RetryConfig[int]{
		MaxDelay: time.Minute,
		DelayFunc: func(attempt int) time.Duration {
			return time.Duration(attempt) * 7 * time.Millisecond
		},
	})

	if d := r.delay(2); d != 14*time.Millisecond {
		t.Errorf("delay(2) = %v, want 14ms", d)
	}
}

func TestRetry_DelaySchedule(t *testing.T) {
	clock := newFakeClock()
	r := NewRetry(RetryConfig[int]{
		MaxRetryAttempts: 3,
		Delay:            10 * time.Millisecond,
		Clock:            clock,
	})

	_, _ = r.Execute(context.Background(), func(ctx context.Context) (int, error) {
		return 0, errors.New("always")
	})

	want := []time.Duration{10 * time.Millisecond, 20 * time.Millisecond, 40 * time.Millisecond}
	got := clock.sleepLog()
	if len(got) != len(want) {
		t.Fatalf("sleeps = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("sleep[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestRetry_Config(t *testing.T) {
	r := NewRetry(RetryConfig[int]{MaxRetryAttempts: 5})

	if got := r.Config().MaxRetryAttempts; got != 5 {
		t.Errorf("Config().MaxRetryAttempts = %d, want 5", got)
	}
}
