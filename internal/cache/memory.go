package cache

import (
	"context"
	"sort"
	"sync"
	"time"
)

type memoryEntry struct {
	rent     float64
	storedAt time.Time
}

// Memory is a thread-safe in-process rent cache.
type Memory struct {
	entries    map[string]memoryEntry
	mu         sync.RWMutex
	ttl        time.Duration
	maxEntries int
	now        func() time.Time
}

// NewMemory creates a Memory cache. A non-positive ttl keeps entries until
// they are rotated out; a non-positive maxEntries disables rotation.
func NewMemory(ttl time.Duration, maxEntries int) *Memory {
	return &Memory{
		entries:    make(map[string]memoryEntry),
		ttl:        ttl,
		maxEntries: maxEntries,
		now:        time.Now,
	}
}

// Get returns the cached rent for key.
func (m *Memory) Get(_ context.Context, key string) (float64, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	e, ok := m.entries[key]
	if !ok || m.expired(e) {
		return 0, false, nil
	}
	return e.rent, true, nil
}

// Set stores rent under key and rotates the oldest entries out when full.
func (m *Memory) Set(_ context.Context, key string, rent float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries[key] = memoryEntry{rent: rent, storedAt: m.now()}
	m.rotate()
	return nil
}

// Len returns the number of stored entries, including expired ones not yet rotated.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

func (m *Memory) expired(e memoryEntry) bool {
	return m.ttl > 0 && m.now().Sub(e.storedAt) > m.ttl
}

// rotate must be called with mu held. Expired entries go first, then the
// oldest until the cache fits maxEntries.
func (m *Memory) rotate() {
	for key, e := range m.entries {
		if m.expired(e) {
			delete(m.entries, key)
		}
	}

	if m.maxEntries <= 0 || len(m.entries) <= m.maxEntries {
		return
	}

	type keyWithTime struct {
		key      string
		storedAt time.Time
	}

	list := make([]keyWithTime, 0, len(m.entries))
	for key, e := range m.entries {
		list = append(list, keyWithTime{key: key, storedAt: e.storedAt})
	}

	// Oldest first
	sort.Slice(list, func(i, j int) bool {
		return list[i].storedAt.Before(list[j].storedAt)
	})

	toRemove := len(m.entries) - m.maxEntries
	for i := 0; i < toRemove; i++ {
		delete(m.entries, list[i].key)
	}
}
