package resilience

import (
	"context"
	"time"
)

// Clock abstracts time for strategies that wait or measure elapsed time.
// The zero value of every config uses the real clock; tests inject a fake
// to drive break durations and delays deterministically.
type Clock interface {
	Now() time.Time
	Sleep(ctx context.Context, d time.Duration) error
}

type realClock struct{}

func (realClock) Now() time.Time {
	return time.Now()
}

// Sleep waits for d or until ctx is done, whichever comes first.
func (realClock) Sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		if !timer.Stop() {
			<-timer.C
		}
		return ctx.Err()
	}
}

// SystemClock is the default Clock backed by the time package.
var SystemClock Clock = realClock{}
