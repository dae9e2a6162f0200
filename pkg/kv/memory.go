package kv

import (
	"context"
	"sync"
)

// MemoryStore keeps entries in-process. Contents vanish with the process.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]string
}

// NewMemoryStore initializes an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]string)}
}

// Get returns the value stored under key.
func (m *MemoryStore) Get(ctx context.Context, key string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.entries[key]
	return v, ok, nil
}

// Set stores or replaces a value.
func (m *MemoryStore) Set(ctx context.Context, key, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = value
	return nil
}

// Remove deletes a key.
func (m *MemoryStore) Remove(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, key)
	return nil
}

// Update holds the write lock for the whole callback, so updates are serialized.
func (m *MemoryStore) Update(ctx context.Context, _ []string, fn func(Txn) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	txn := newStaged(func(key string) (string, bool, error) {
		v, ok := m.entries[key]
		return v, ok, nil
	})
	if err := fn(txn); err != nil {
		return err
	}
	for _, k := range txn.keys() {
		w := txn.writes[k]
		if w.deleted {
			delete(m.entries, k)
			continue
		}
		m.entries[k] = w.value
	}
	return nil
}

// Close is a no-op.
func (m *MemoryStore) Close() error { return nil }
