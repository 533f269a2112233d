package store

import (
	"context"
	"sync"
)

// Memory is the default in-process backend. Last-writer-wins is
// acceptable here: staleness, not races, is the only risk.
type Memory struct {
	mu      sync.RWMutex
	entries map[string][]byte
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{entries: make(map[string][]byte)}
}

// Get returns the stored payload, or (nil, nil) when absent.
func (m *Memory) Get(_ context.Context, kind string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	payload, ok := m.entries[kind]
	if !ok {
		return nil, nil
	}
	out := make([]byte, len(payload))
	copy(out, payload)
	return out, nil
}

// Put stores a copy of the payload.
func (m *Memory) Put(_ context.Context, kind string, payload []byte) error {
	cp := make([]byte, len(payload))
	copy(cp, payload)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[kind] = cp
	return nil
}
