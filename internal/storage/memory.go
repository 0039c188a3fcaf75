package storage

import (
	"context"
	"sync"
)

// NewMemoryBackend returns a Backend that keeps documents in process memory.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{docs: make(map[string][]byte)}
}

// MemoryBackend implements Backend for tests and local development.
type MemoryBackend struct {
	mu   sync.RWMutex
	docs map[string][]byte
}

// Load returns a copy of the stored document.
func (m *MemoryBackend) Load(_ context.Context, collection string) ([]byte, error) {
	m.mu.RLock()
	doc, ok := m.docs[collection]
	m.mu.RUnlock()
	if !ok {
		return nil, ErrNotExist
	}
	return append([]byte(nil), doc...), nil
}

// Save replaces the stored document.
func (m *MemoryBackend) Save(_ context.Context, collection string, document []byte) error {
	m.mu.Lock()
	m.docs[collection] = append([]byte(nil), document...)
	m.mu.Unlock()
	return nil
}

var _ Backend = (*MemoryBackend)(nil)
