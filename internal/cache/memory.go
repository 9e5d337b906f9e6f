package cache

import (
	"context"
	"sync"
)

// MemoryStore keeps values in process memory. It is used when Redis is not
// configured and in tests.
type MemoryStore struct {
	mu     sync.RWMutex
	data   map[string]string
	prefix string
}

func NewMemoryStore(prefix string) *MemoryStore {
	return &MemoryStore{
		data:   make(map[string]string),
		prefix: prefix,
	}
}

func (m *MemoryStore) Close() error {
	return nil
}

func (m *MemoryStore) Get(ctx context.Context, key string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	value, ok := m.data[m.prefix+key]
	return value, ok, nil
}

func (m *MemoryStore) Set(ctx context.Context, key, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[m.prefix+key] = value
	return nil
}
