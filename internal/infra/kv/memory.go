package kv

import (
	"context"
	"sync"
)

// Compile-time contract assertions.
var (
	_ Store = (*Memory)(nil)
	_ Store = (*SQLite)(nil)
)

// Memory is a thread-safe in-memory substrate for tests and ephemeral runs.
type Memory struct {
	mu    sync.RWMutex
	items map[string][]byte
}

// NewMemory creates an empty in-memory substrate.
func NewMemory() *Memory {
	return &Memory{items: make(map[string][]byte)}
}

// Get returns the payload stored under key.
func (m *Memory) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	v, ok := m.items[key]
	if !ok {
		return nil, false, nil
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out, true, nil
}

// Set stores the payload under key.
func (m *Memory) Set(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	v := make([]byte, len(value))
	copy(v, value)
	m.items[key] = v
	return nil
}
