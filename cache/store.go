package cache

import (
	"context"
	"errors"
	"strings"
	"time"
)

// MaxKeyLength is the maximum allowed length for a store key.
const MaxKeyLength = 512

// Sentinel errors for store operations.
var (
	ErrNilStore   = errors.New("cache: store is nil")
	ErrInvalidKey = errors.New("cache: key is invalid")
	ErrKeyTooLong = errors.New("cache: key exceeds max length")
)

// Entry is one recorded call result with its recording time, so staleness
// is decided by the reader, not baked in at write time.
type Entry struct {
	Value    any
	StoredAt time.Time
}

// Age returns how long ago the entry was recorded.
func (e Entry) Age() time.Duration {
	return time.Since(e.StoredAt)
}

// Store holds last-known-good call results for serving as fallback
// substitutes when the live dependency is unavailable.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Errors: Get never errors; it returns (Entry{}, false) on miss.
type Store interface {
	// Get retrieves a recorded result. Returns (Entry{}, false) on miss.
	Get(ctx context.Context, key string) (Entry, bool)

	// Set records a result, overwriting any previous entry for the key.
	Set(ctx context.Context, key string, value any) error

	// Delete removes a recorded result. Idempotent - no error on miss.
	Delete(ctx context.Context, key string) error
}

// ValidateKey checks if a key is valid for storage.
func ValidateKey(key string) error {
	if key == "" || strings.TrimSpace(key) == "" {
		return ErrInvalidKey
	}
	if len(key) > MaxKeyLength {
		return ErrKeyTooLong
	}
	if strings.ContainsAny(key, "\n\r") {
		return ErrInvalidKey
	}
	return nil
}
