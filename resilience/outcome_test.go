package resilience

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestOutcome(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		o := Success(42)
		if o.IsFailure() {
			t.Error("IsFailure() = true, want false")
		}
		value, err := o.Unpack()
		if value != 42 || err != nil {
			t.Errorf("Unpack() = (%d, %v), want (42, nil)", value, err)
		}
	})

	t.Run("failure", func(t *testing.T) {
		testErr := errors.New("boom")
		o := Failure[int](testErr)
		if !o.IsFailure() {
			t.Error("IsFailure() = false, want true")
		}
		if _, err := o.Unpack(); err != testErr {
			t.Errorf("Unpack() error = %v, want %v", err, testErr)
		}
	})
}

func TestHandleAll(t *testing.T) {
	tests := []struct {
		name string
		o    Outcome[string]
		want bool
	}{
		{"success", Success("ok"), false},
		{"plain error", Failure[string](errors.New("boom")), true},
		{"wrapped error", Failure[string](fmt.Errorf("call: %w", ErrTimeout)), true},
		{"cancellation", Failure[string](context.Canceled), false},
		{"deadline", Failure[string](context.DeadlineExceeded), false},
		{"wrapped cancellation", Failure[string](fmt.Errorf("call: %w", context.Canceled)), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := HandleAll(tt.o); got != tt.want {
				t.Errorf("HandleAll() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestHandleErrors(t *testing.T) {
	errA := errors.New("a")
	errB := errors.New("b")
	p := HandleErrors[int](errA, errB)

	if !p(Failure[int](errA)) {
		t.Error("HandleErrors did not match errA")
	}
	if !p(Failure[int](fmt.Errorf("wrap: %w", errB))) {
		t.Error("HandleErrors did not match wrapped errB")
	}
	if p(Failure[int](errors.New("c"))) {
		t.Error("HandleErrors matched unrelated error")
	}
	if p(Success(1)) {
		t.Error("HandleErrors matched success")
	}
}

func TestHandleIf(t *testing.T) {
	p := HandleIf[int](func(err error) bool {
		return err.Error() == "transient"
	})

	if !p(Failure[int](errors.New("transient"))) {
		t.Error("HandleIf did not match")
	}
	if p(Failure[int](errors.New("permanent"))) {
		t.Error("HandleIf matched wrong error")
	}
	if p(Success(1)) {
		t.Error("HandleIf matched success")
	}
}

func TestPredicateCombinators(t *testing.T) {
	p := And(HandleAll[int], Not(HandleErrors[int](ErrCircuitOpen)))

	if !p(Failure[int](errors.New("boom"))) {
		t.Error("combined predicate rejected ordinary failure")
	}
	if p(Failure[int](ErrCircuitOpen)) {
		t.Error("combined predicate matched excluded breaker rejection")
	}
	if p(Success(1)) {
		t.Error("combined predicate matched success")
	}
}
