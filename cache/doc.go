// Package cache provides a last-known-good result store for serving
// degraded substitutes when a guarded call fails.
//
// The Store interface records call results with their recording time;
// Memory is a concurrency-safe in-memory implementation with optional
// TTL and a bounded entry count. LastGood layers a typed view on top,
// classifying entries as fresh, stale, or expired against a Policy so
// a fallback action can decide whether an old result is still worth
// returning.
//
// Typical wiring records results after each successful call and reads
// them back inside a fallback action:
//
//	store := cache.NewMemory(cache.MemoryConfig{TTL: time.Hour})
//	lastGood, _ := cache.NewLastGood[Quote](store, cache.Policy{
//		MaxAge:   time.Minute,
//		MaxStale: 30 * time.Minute,
//	})
//
//	key := cache.Key("quotes", "fetch", map[string]any{"symbol": "ACME"})
//	if quote, _, ok := lastGood.Lookup(ctx, key); ok {
//		return quote, nil
//	}
package cache
