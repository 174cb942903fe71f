package ticketstore

import (
	"context"
	"sync"
	"time"
)

const sweepInterval = 256

type memoryEntry struct {
	value     string
	counter   int64
	expiresAt time.Time
}

func (e *memoryEntry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && !now.Before(e.expiresAt)
}

// MemoryStore is an in-process Store guarded by a single mutex. Expired entries are evicted
// lazily on access and by a periodic sweep during Put.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]*memoryEntry
	puts    int
	now     func() time.Time
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]*memoryEntry),
		now:     time.Now,
	}
}

// WithClock replaces the time source, for tests.
func (m *MemoryStore) WithClock(now func() time.Time) *MemoryStore {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = now
	return m
}

// Put implements Store.
func (m *MemoryStore) Put(ctx context.Context, key, value string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	entry := &memoryEntry{value: value}
	if ttl > 0 {
		entry.expiresAt = now.Add(ttl)
	}
	m.entries[key] = entry

	m.puts++
	if m.puts%sweepInterval == 0 {
		m.sweepLocked(now)
	}
	return nil
}

// Get implements Store.
func (m *MemoryStore) Get(ctx context.Context, key string) (*Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.liveLocked(key)
	if !ok {
		return nil, ErrNotFound
	}
	return &Entry{Value: entry.value, Counter: entry.counter}, nil
}

// Delete implements Store.
func (m *MemoryStore) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.entries, key)
	return nil
}

// CompareAndDelete implements Store.
func (m *MemoryStore) CompareAndDelete(ctx context.Context, key, expected string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.liveLocked(key)
	if !ok || entry.value != expected {
		return false, nil
	}
	delete(m.entries, key)
	return true, nil
}

// Increment implements Store.
func (m *MemoryStore) Increment(ctx context.Context, key string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.liveLocked(key)
	if !ok {
		return 0, ErrNotFound
	}
	entry.counter++
	return entry.counter, nil
}

// Len returns the number of stored entries, including expired ones not yet evicted.
func (m *MemoryStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

func (m *MemoryStore) liveLocked(key string) (*memoryEntry, bool) {
	entry, ok := m.entries[key]
	if !ok {
		return nil, false
	}
	if entry.expired(m.now()) {
		delete(m.entries, key)
		return nil, false
	}
	return entry, true
}

func (m *MemoryStore) sweepLocked(now time.Time) {
	for key, entry := range m.entries {
		if entry.expired(now) {
			delete(m.entries, key)
		}
	}
}
