package cache

import (
	"context"
	"sync"
	"time"
)

// MemoryConfig configures the in-memory store.
type MemoryConfig struct {
	// MaxEntries caps the number of recorded results. When the cap is
	// reached the oldest entry is evicted. Defaults to 1024. Negative
	// means unbounded.
	MaxEntries int

	// TTL is how long an entry stays retrievable. Zero means entries
	// never expire on read; staleness is left to the caller's Policy.
	TTL time.Duration
}

// Memory is an in-memory Store with optional TTL and a bounded entry
// count. Expired entries are dropped lazily on read and on write.
type Memory struct {
	mu      sync.RWMutex
	entries map[string]Entry
	config  MemoryConfig
}

// NewMemory creates an in-memory store with defaults applied.
func NewMemory(config MemoryConfig) *Memory {
	if config.MaxEntries == 0 {
		config.MaxEntries = 1024
	}
	return &Memory{
		entries: make(map[string]Entry),
		config:  config,
	}
}

// Get retrieves a recorded result. Entries past the configured TTL are
// treated as misses and removed.
func (m *Memory) Get(ctx context.Context, key string) (Entry, bool) {
	m.mu.RLock()
	entry, ok := m.entries[key]
	m.mu.RUnlock()
	if !ok {
		return Entry{}, false
	}
	if m.expired(entry, time.Now()) {
		m.mu.Lock()
		// Re-check under the write lock; a fresher Set may have raced in.
		if cur, still := m.entries[key]; still && m.expired(cur, time.Now()) {
			delete(m.entries, key)
		}
		m.mu.Unlock()
		return Entry{}, false
	}
	return entry, true
}

// Set records a result, evicting the oldest entry if the store is full.
func (m *Memory) Set(ctx context.Context, key string, value any) error {
	if err := ValidateKey(key); err != nil {
		return err
	}
	now := time.Now()
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.entries[key]; !exists {
		m.pruneLocked(now)
		if m.config.MaxEntries > 0 && len(m.entries) >= m.config.MaxEntries {
			m.evictOldestLocked()
		}
	}
	m.entries[key] = Entry{Value: value, StoredAt: now}
	return nil
}

// Delete removes a recorded result.
func (m *Memory) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	delete(m.entries, key)
	m.mu.Unlock()
	return nil
}

// Len returns the number of live entries.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

func (m *Memory) expired(e Entry, now time.Time) bool {
	return m.config.TTL > 0 && now.Sub(e.StoredAt) > m.config.TTL
}

func (m *Memory) pruneLocked(now time.Time) {
	if m.config.TTL <= 0 {
		return
	}
	for key, entry := range m.entries {
		if m.expired(entry, now) {
			delete(m.entries, key)
		}
	}
}

func (m *Memory) evictOldestLocked() {
	var oldestKey string
	var oldestAt time.Time
	first := true
	for key, entry := range m.entries {
		if first || entry.StoredAt.Before(oldestAt) {
			oldestKey = key
			oldestAt = entry.StoredAt
			first = false
		}
	}
	if !first {
		delete(m.entries, oldestKey)
	}
}
