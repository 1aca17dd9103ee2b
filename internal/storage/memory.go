package storage

import (
	"context"
	"sync"
)

// MemoryKV keeps values in process memory. Values survive only as long as the
// instance does, which is enough for tests and throwaway sessions.
type MemoryKV struct {
	mu     sync.RWMutex
	values map[string][]byte
}

func NewMemoryKV() *MemoryKV {
	return &MemoryKV{values: make(map[string][]byte)}
}

func (m *MemoryKV) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.values[key]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), v...), nil
}

func (m *MemoryKV) Set(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = append([]byte(nil), value...)
	return nil
}

func (m *MemoryKV) Close() error {
	return nil
}

var _ KV = (*MemoryKV)(nil)
