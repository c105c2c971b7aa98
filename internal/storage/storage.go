package storage

import "sync"

// Storage is the key-value persistence port used for tokens and cached
// profile data. Implementations must treat absent keys as a normal case:
// Get returns ok=false instead of an error so callers never have to
// distinguish "missing" from "storage unavailable".
type Storage interface {
	Get(key string) (string, bool)
	Set(key, value string) error
	Delete(key string) error
	Close() error
}

// MemoryStore is an in-memory Storage implementation, used in tests and as
// a fallback when no durable store is configured.
type MemoryStore struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: make(map[string]string)}
}

func (m *MemoryStore) Get(key string) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.values[key]
	return v, ok
}

func (m *MemoryStore) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}

func (m *MemoryStore) Delete(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, key)
	return nil
}

func (m *MemoryStore) Close() error {
	return nil
}
