package store

import (
	"context"
	"sync"
)

// =============================================================================
// MEMORY GATEWAY - In-memory implementation (for testing/dev)
// =============================================================================

// Memory is a Gateway backed by a plain map. State survives only for
// the lifetime of the process.
type Memory struct {
	mu    sync.RWMutex
	blobs map[string][]byte
}

func NewMemory() *Memory {
	return &Memory{blobs: make(map[string][]byte)}
}

func (m *Memory) Load(_ context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	blob, ok := m.blobs[key]
	if !ok {
		return nil, ErrNotFound
	}
	out := make([]byte, len(blob))
	copy(out, blob)
	return out, nil
}

func (m *Memory) Save(_ context.Context, key string, blob []byte) error {
	stored := make([]byte, len(blob))
	copy(stored, blob)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.blobs[key] = stored
	return nil
}

func (m *Memory) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.blobs, key)
	return nil
}

// Keys returns the currently stored keys. Test helper.
func (m *Memory) Keys() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	keys := make([]string, 0, len(m.blobs))
	for k := range m.blobs {
		keys = append(keys, k)
	}
	return keys
}
