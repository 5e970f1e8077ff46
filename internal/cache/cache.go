package cache

import "sync"

// Cache is a process-wide memo store with explicit invalidation. Entries live
// until invalidated; backends are not expected to survive a restart.
type Cache interface {
	GetOrCompute(key string, compute func() string) string
	Invalidate(key string)
}

// Memory is the in-process Cache backed by a mutex-guarded map.
type Memory struct {
	mu      sync.RWMutex
	entries map[string]string
}

// NewMemory creates an empty in-memory cache.
func NewMemory() *Memory {
	return &Memory{
		entries: make(map[string]string),
	}
}

// GetOrCompute returns the cached value for key, computing and storing it on
// a miss. A concurrent miss may run compute more than once; the first stored
// value wins.
func (m *Memory) GetOrCompute(key string, compute func() string) string {
	m.mu.RLock()
	value, ok := m.entries[key]
	m.mu.RUnlock()
	if ok {
		return value
	}

	value = compute()

	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.entries[key]; ok {
		return existing
	}
	m.entries[key] = value
	return value
}

// Invalidate removes the entry for key, if present.
func (m *Memory) Invalidate(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, key)
}
