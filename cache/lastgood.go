package cache

import (
	"context"
	"time"
)

// Freshness classifies a looked-up entry against a Policy.
type Freshness int

const (
	// Fresh entries are within the policy's MaxAge.
	Fresh Freshness = iota
	// Stale entries are older than MaxAge but still within MaxStale,
	// acceptable as a degraded substitute when the live call fails.
	Stale
	// Expired entries are older than MaxStale and must not be served.
	Expired
)

// String returns the freshness name.
func (f Freshness) String() string {
	switch f {
	case Fresh:
		return "fresh"
	case Stale:
		return "stale"
	case Expired:
		return "expired"
	default:
		return "unknown"
	}
}

// Policy decides how old a recorded result may be before it is
// considered stale or unservable.
type Policy struct {
	// MaxAge is the age under which an entry counts as fresh.
	// Defaults to 1 minute.
	MaxAge time.Duration

	// MaxStale is the age past which an entry must not be served even
	// as a degraded substitute. Zero means stale entries never expire.
	MaxStale time.Duration
}

// Classify returns the freshness of an entry of the given age.
func (p Policy) Classify(age time.Duration) Freshness {
	maxAge := p.MaxAge
	if maxAge <= 0 {
		maxAge = time.Minute
	}
	switch {
	case age <= maxAge:
		return Fresh
	case p.MaxStale > 0 && age > p.MaxStale:
		return Expired
	default:
		return Stale
	}
}

// LastGood is a typed view over a Store for recording successful call
// results and replaying them when the live call cannot be made. It is
// the storage side of a stale-value fallback: record on success, look
// up inside the fallback action.
type LastGood[R any] struct {
	store  Store
	policy Policy
}

// NewLastGood creates a typed last-known-good view over a store.
func NewLastGood[R any](store Store, policy Policy) (*LastGood[R], error) {
	if store == nil {
		return nil, ErrNilStore
	}
	return &LastGood[R]{store: store, policy: policy}, nil
}

// Record stores a successful result under the key.
func (l *LastGood[R]) Record(ctx context.Context, key string, value R) error {
	return l.store.Set(ctx, key, value)
}

// Lookup retrieves the recorded result for the key along with its
// freshness. Misses, expired entries, and entries recorded under a
// different type all return ok=false.
func (l *LastGood[R]) Lookup(ctx context.Context, key string) (value R, freshness Freshness, ok bool) {
	var zero R
	entry, found := l.store.Get(ctx, key)
	if !found {
		return zero, Expired, false
	}
	typed, isType := entry.Value.(R)
	if !isType {
		return zero, Expired, false
	}
	freshness = l.policy.Classify(entry.Age())
	if freshness == Expired {
		return zero, Expired, false
	}
	return typed, freshness, true
}

// Forget removes the recorded result for the key.
func (l *LastGood[R]) Forget(ctx context.Context, key string) error {
	return l.store.Delete(ctx, key)
}
