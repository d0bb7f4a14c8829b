// Package kvstore provides the named-slot persistence boundary the
// registry writes through. Each slot holds one JSON document; readers
// must treat a missing slot as empty rather than as an error.
package kvstore

import "sync"

// Store is a minimal key/value slot store.
type Store interface {
	// Get returns the slot's contents, or (nil, nil) when the slot
	// has never been written.
	Get(key string) ([]byte, error)
	// Put overwrites the slot's contents.
	Put(key string, value []byte) error
}

// Memory is a map-backed Store for tests and ephemeral runs.
type Memory struct {
	mu    sync.RWMutex
	slots map[string][]byte
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{slots: make(map[string][]byte)}
}

func (m *Memory) Get(key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	value, ok := m.slots[key]
	if !ok {
		return nil, nil
	}
	out := make([]byte, len(value))
	copy(out, value)
	return out, nil
}

func (m *Memory) Put(key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored := make([]byte, len(value))
	copy(stored, value)
	m.slots[key] = stored
	return nil
}
