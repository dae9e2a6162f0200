package store

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"yaps/internal/util"
	"yaps/pkg/fixtures"
	"yaps/pkg/kv"
)

var testNow = time.Date(2024, 5, 1, 12, 0, 0, 123456789, time.UTC)

func sequentialIDs() func(prefix string) string {
	var (
		mu sync.Mutex
		n  int
	)
	return func(prefix string) string {
		mu.Lock()
		defer mu.Unlock()
		n++
		return fmt.Sprintf("%s-test%d", prefix, n)
	}
}

func newTestStore(t *testing.T, backend kv.Store) *Store {
	t.Helper()
	return New(backend,
		WithLogger(util.DiscardLogger()),
		WithClock(func() time.Time { return testNow }),
		WithIDGenerator(sequentialIDs()),
	)
}

// newSeededStore returns a memory-backed store seeded with the embedded fixtures.
func newSeededStore(t *testing.T) (*Store, *kv.MemoryStore) {
	t.Helper()
	backend := kv.NewMemoryStore()
	s := newTestStore(t, backend)
	seeded, err := s.InitializeStorage(context.Background(), fixtures.Embedded())
	if err != nil {
		t.Fatalf("initialize storage: %v", err)
	}
	if !seeded {
		t.Fatal("expected fresh store to be seeded")
	}
	return s, backend
}

var errBackendDown = errors.New("backend down")

// failingKV fails every operation.
type failingKV struct{}

func (failingKV) Get(context.Context, string) (string, bool, error) {
	return "", false, errBackendDown
}
func (failingKV) Set(context.Context, string, string) error { return errBackendDown }
func (failingKV) Remove(context.Context, string) error      { return errBackendDown }
func (failingKV) Update(context.Context, []string, func(kv.Txn) error) error {
	return errBackendDown
}
func (failingKV) Close() error { return nil }

// countingSource counts loads of the embedded bundle.
type countingSource struct {
	mu    sync.Mutex
	loads int
}

func (c *countingSource) Load(ctx context.Context) (fixtures.Bundle, error) {
	c.mu.Lock()
	c.loads++
	c.mu.Unlock()
	return fixtures.Embedded().Load(ctx)
}

type bundleSource fixtures.Bundle

func (b bundleSource) Load(context.Context) (fixtures.Bundle, error) {
	return fixtures.Bundle(b), nil
}
