package kv_test

import (
	"context"
	"path/filepath"
	"testing"

	"yaps/pkg/kv"
	"yaps/pkg/kv/kvtest"
)

func newTestSQLite(t *testing.T, path string) *kv.SQLiteStore {
	t.Helper()
	s, err := kv.NewSQLiteStore(path)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSQLiteStore(t *testing.T) {
	kvtest.Run(t, newTestSQLite(t, ":memory:"))
}

func TestSQLiteStorePersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "yaps.db")
	ctx := context.Background()

	first, err := kv.NewSQLiteStore(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := first.Set(ctx, "dataInitialized", "true"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := first.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	second := newTestSQLite(t, path)
	got, ok, err := second.Get(ctx, "dataInitialized")
	if err != nil || !ok || got != "true" {
		t.Fatalf("after reopen got %q, %v, %v", got, ok, err)
	}
}
