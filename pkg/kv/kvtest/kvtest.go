// Package kvtest holds the behaviour every kv.Store backend must share.
package kvtest

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"testing"

	"yaps/pkg/kv"
)

// Run exercises s. Each subtest uses its own keys, so one store can be shared.
func Run(t *testing.T, s kv.Store) {
	t.Helper()
	t.Run("GetMissing", func(t *testing.T) { testGetMissing(t, s) })
	t.Run("SetGetRemove", func(t *testing.T) { testSetGetRemove(t, s) })
	t.Run("RemoveMissing", func(t *testing.T) { testRemoveMissing(t, s) })
	t.Run("ValuesVerbatim", func(t *testing.T) { testValuesVerbatim(t, s) })
	t.Run("UpdateCommits", func(t *testing.T) { testUpdateCommits(t, s) })
	t.Run("UpdateRollsBack", func(t *testing.T) { testUpdateRollsBack(t, s) })
	t.Run("UpdateReadsOwnWrites", func(t *testing.T) { testUpdateReadsOwnWrites(t, s) })
	t.Run("ConcurrentIncrements", func(t *testing.T) { testConcurrentIncrements(t, s) })
}

func testGetMissing(t *testing.T, s kv.Store) {
	_, ok, err := s.Get(context.Background(), "missing:key")
	if err != nil {
		t.Fatalf("get missing: %v", err)
	}
	if ok {
		t.Fatal("expected missing key to be absent")
	}
}

func testSetGetRemove(t *testing.T, s kv.Store) {
	ctx := context.Background()
	if err := s.Set(ctx, "crud", "one"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := s.Set(ctx, "crud", "two"); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	got, ok, err := s.Get(ctx, "crud")
	if err != nil || !ok || got != "two" {
		t.Fatalf("get = %q, %v, %v; want \"two\", true, nil", got, ok, err)
	}
	if err := s.Remove(ctx, "crud"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if _, ok, err := s.Get(ctx, "crud"); err != nil || ok {
		t.Fatalf("expected key removed, ok=%v err=%v", ok, err)
	}
}

func testRemoveMissing(t *testing.T, s kv.Store) {
	if err := s.Remove(context.Background(), "never:written"); err != nil {
		t.Fatalf("remove missing: %v", err)
	}
}

func testValuesVerbatim(t *testing.T, s kv.Store) {
	ctx := context.Background()
	const value = "[ {\"id\": \"c1\",  \"name\": \"Élan État\"} ]\n"
	if err := s.Set(ctx, "verbatim", value); err != nil {
		t.Fatalf("set: %v", err)
	}
	got, _, err := s.Get(ctx, "verbatim")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got != value {
		t.Fatalf("value changed in storage: got %q want %q", got, value)
	}
}

func testUpdateCommits(t *testing.T, s kv.Store) {
	ctx := context.Background()
	if err := s.Set(ctx, "tx:a", "1"); err != nil {
		t.Fatalf("seed: %v", err)
	}
	err := s.Update(ctx, []string{"tx:a", "tx:b", "tx:c"}, func(txn kv.Txn) error {
		txn.Remove("tx:a")
		txn.Set("tx:b", "2")
		txn.Set("tx:c", "3")
		return nil
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if _, ok, _ := s.Get(ctx, "tx:a"); ok {
		t.Fatal("expected tx:a removed")
	}
	for key, want := range map[string]string{"tx:b": "2", "tx:c": "3"} {
		got, ok, err := s.Get(ctx, key)
		if err != nil || !ok || got != want {
			t.Fatalf("%s = %q, %v, %v; want %q", key, got, ok, err, want)
		}
	}
}

func testUpdateRollsBack(t *testing.T, s kv.Store) {
	ctx := context.Background()
	if err := s.Set(ctx, "rb:a", "keep"); err != nil {
		t.Fatalf("seed: %v", err)
	}
	boom := errors.New("boom")
	err := s.Update(ctx, []string{"rb:a", "rb:b"}, func(txn kv.Txn) error {
		txn.Set("rb:a", "changed")
		txn.Set("rb:b", "new")
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected callback error, got %v", err)
	}
	if got, _, _ := s.Get(ctx, "rb:a"); got != "keep" {
		t.Fatalf("rb:a = %q after failed update, want %q", got, "keep")
	}
	if _, ok, _ := s.Get(ctx, "rb:b"); ok {
		t.Fatal("rb:b written by failed update")
	}
}

func testUpdateReadsOwnWrites(t *testing.T, s kv.Store) {
	ctx := context.Background()
	err := s.Update(ctx, []string{"own"}, func(txn kv.Txn) error {
		if _, ok, err := txn.Get("own"); err != nil || ok {
			t.Fatalf("expected own absent before write, ok=%v err=%v", ok, err)
		}
		txn.Set("own", "x")
		got, ok, err := txn.Get("own")
		if err != nil || !ok || got != "x" {
			t.Fatalf("txn get after set = %q, %v, %v", got, ok, err)
		}
		txn.Remove("own")
		if _, ok, _ := txn.Get("own"); ok {
			t.Fatal("txn get after remove still sees value")
		}
		txn.Set("own", "final")
		return nil
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if got, _, _ := s.Get(ctx, "own"); got != "final" {
		t.Fatalf("own = %q, want final", got)
	}
}

// testConcurrentIncrements is the lost-update check: every increment must land.
func testConcurrentIncrements(t *testing.T, s kv.Store) {
	ctx := context.Background()
	const workers = 16
	if err := s.Set(ctx, "counter", "0"); err != nil {
		t.Fatalf("seed: %v", err)
	}

	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- s.Update(ctx, []string{"counter"}, func(txn kv.Txn) error {
				raw, _, err := txn.Get("counter")
				if err != nil {
					return err
				}
				n, err := strconv.Atoi(raw)
				if err != nil {
					return err
				}
				txn.Set("counter", strconv.Itoa(n+1))
				return nil
			})
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Fatalf("concurrent update: %v", err)
		}
	}

	got, _, err := s.Get(ctx, "counter")
	if err != nil {
		t.Fatalf("get counter: %v", err)
	}
	if got != strconv.Itoa(workers) {
		t.Fatalf("counter = %s, want %d", got, workers)
	}
}
