// Package flagstore persists per-period "submitted" flags.
package flagstore

import (
	"context"
	"sync"
)

// MemoryStore keeps flags in process memory. Flags are lost on restart.
type MemoryStore struct {
	mu    sync.RWMutex
	flags map[string]struct{}
}

// NewMemory returns an empty MemoryStore.
func NewMemory() *MemoryStore {
	return &MemoryStore{flags: make(map[string]struct{})}
}

// IsSubmitted reports whether key was marked.
func (m *MemoryStore) IsSubmitted(_ context.Context, key string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.flags[key]
	return ok, nil
}

// MarkSubmitted sets key.
func (m *MemoryStore) MarkSubmitted(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.flags[key] = struct{}{}
	return nil
}

// Ping always succeeds.
func (m *MemoryStore) Ping(context.Context) error { return nil }

// Close is a no-op.
func (m *MemoryStore) Close() error { return nil }
