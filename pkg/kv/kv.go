// Package kv is the key-value adapter the app persists everything through.
// Values are opaque UTF-8 text; callers decide the encoding.
package kv

import (
	"context"
	"errors"
	"sort"
)

// ErrConflict indicates an optimistic update kept losing to concurrent writers.
var ErrConflict = errors.New("kv: update conflict")

// Store is a string-keyed text store.
type Store interface {
	// Get returns ok=false for an absent key.
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	// Remove succeeds for absent keys.
	Remove(ctx context.Context, key string) error
	// Update runs fn against a consistent view of keys and commits the writes it
	// staged atomically. Nothing is written when fn returns an error. keys must
	// name every key fn reads or writes. fn may run more than once when a
	// backend retries after a conflict, so it must not have side effects.
	Update(ctx context.Context, keys []string, fn func(Txn) error) error
	Close() error
}

// Txn is the view handed to an Update callback. Reads see earlier staged writes.
type Txn interface {
	Get(key string) (string, bool, error)
	Set(key, value string)
	Remove(key string)
}

type write struct {
	value   string
	deleted bool
}

// staged buffers the writes of one Update attempt on top of a backend read func.
type staged struct {
	read   func(key string) (string, bool, error)
	writes map[string]write
}

func newStaged(read func(key string) (string, bool, error)) *staged {
	return &staged{read: read, writes: make(map[string]write)}
}

func (s *staged) Get(key string) (string, bool, error) {
	if w, ok := s.writes[key]; ok {
		if w.deleted {
			return "", false, nil
		}
		return w.value, true, nil
	}
	return s.read(key)
}

func (s *staged) Set(key, value string) {
	s.writes[key] = write{value: value}
}

func (s *staged) Remove(key string) {
	s.writes[key] = write{deleted: true}
}

// keys returns staged keys in a stable order so commits are deterministic.
func (s *staged) keys() []string {
	out := make([]string, 0, len(s.writes))
	for k := range s.writes {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// sortedUnique returns a sorted copy of keys without duplicates. Lock
// acquisition follows this order to avoid deadlocks between updates.
func sortedUnique(keys []string) []string {
	out := make([]string, 0, len(keys))
	seen := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
