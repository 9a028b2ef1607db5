package resilience

import (
	"context"
	"sync"

	"golang.org/x/sync/semaphore"
)

// BulkheadConfig configures a bulkhead / concurrency limiter.
type BulkheadConfig struct {
	// PermitLimit is the maximum number of concurrent in-flight calls.
	// Default: 10
	PermitLimit int

	// QueueLimit is the number of callers allowed to wait for a permit.
	// 0 means reject immediately when all permits are held.
	QueueLimit int

	// OnRejected is invoked when a call is rejected for lack of capacity.
	// Observer only.
	OnRejected func()
}

// BulkheadMetrics is a snapshot of bulkhead accounting.
type BulkheadMetrics struct {
	Active      int
	Queued      int
	Rejected    int64
	PermitLimit int
	QueueLimit  int
}

// Bulkhead bounds the number of concurrent and queued in-flight calls. One
// long-lived instance is one failure domain: independent call streams that
// must not starve each other get separate instances, which is a topology
// decision, not a strategy behavior.
//
// Permits are handed out in FIFO order among queued waiters; the queued
// wait suspends and is cancellable.
type Bulkhead[R any] struct {
	config BulkheadConfig
	sem    *semaphore.Weighted

	mu       sync.Mutex
	active   int
	queued   int
	rejected int64
}

// NewBulkhead creates a bulkhead with defaults applied.
func NewBulkhead[R any](config BulkheadConfig) *Bulkhead[R] {
	if config.PermitLimit <= 0 {
		config.PermitLimit = 10
	}
	if config.QueueLimit < 0 {
		config.QueueLimit = 0
	}

	return &Bulkhead[R]{
		config: config,
		sem:    semaphore.NewWeighted(int64(config.PermitLimit)),
	}
}

// Execute acquires a permit, runs the delegate, and releases the permit on
// every exit path. Calls that find no permit and no queue space fail with
// ErrBulkheadFull without invoking the delegate.
func (b *Bulkhead[R]) Execute(ctx context.Context, op Operation[R]) (R, error) {
	if err := b.acquire(ctx); err != nil {
		var zero R
		return zero, err
	}
	defer b.release()

	return op(ctx)
}

func (b *Bulkhead[R]) acquire(ctx context.Context) error {
	// Fast path. TryAcquire respects FIFO: it fails while waiters queue.
	if b.sem.TryAcquire(1) {
		b.mu.Lock()
		b.active++
		b.mu.Unlock()
		return nil
	}

	b.mu.Lock()
	if b.queued >= b.config.QueueLimit {
		b.rejected++
		b.mu.Unlock()
		if b.config.OnRejected != nil {
			b.config.OnRejected()
		}
		return ErrBulkheadFull
	}
	b.queued++
	b.mu.Unlock()

	err := b.sem.Acquire(ctx, 1)

	b.mu.Lock()
	b.queued--
	if err == nil {
		b.active++
	}
	b.mu.Unlock()

	// Cancellation while queued propagates as-is; it is not a rejection.
	return err
}

func (b *Bulkhead[R]) release() {
	b.mu.Lock()
	b.active--
	b.mu.Unlock()
	b.sem.Release(1)
}

// Metrics returns a snapshot of the bulkhead's accounting.
func (b *Bulkhead[R]) Metrics() BulkheadMetrics {
	b.mu.Lock()
	defer b.mu.Unlock()

	return BulkheadMetrics{
		Active:      b.active,
		Queued:      b.queued,
		Rejected:    b.rejected,
		PermitLimit: b.config.PermitLimit,
		QueueLimit:  b.config.QueueLimit,
	}
}
