package store

import (
	"context"
	"testing"

	"yaps/pkg/fixtures"
	"yaps/pkg/kv"
)

func TestInitializeStorageWritesFixturesVerbatim(t *testing.T) {
	_, backend := newSeededStore(t)
	ctx := context.Background()

	bundle, err := fixtures.Embedded().Load(ctx)
	if err != nil {
		t.Fatalf("load embedded: %v", err)
	}
	for _, name := range fixtures.Collections {
		got, ok, err := backend.Get(ctx, name)
		if err != nil || !ok {
			t.Fatalf("get %s: ok=%v err=%v", name, ok, err)
		}
		if got != string(bundle[name]) {
			t.Fatalf("%s not stored verbatim", name)
		}
	}
	if got, _, _ := backend.Get(ctx, KeyInitialized); got != "true" {
		t.Fatalf("sentinel = %q, want true", got)
	}
}

func TestInitializeStorageIsIdempotent(t *testing.T) {
	s, backend := newSeededStore(t)
	ctx := context.Background()

	if err := backend.Set(ctx, KeyColleges, `[{"id":"c9","name":"Edited"}]`); err != nil {
		t.Fatalf("edit colleges: %v", err)
	}
	src := &countingSource{}
	seeded, err := s.InitializeStorage(ctx, src)
	if err != nil {
		t.Fatalf("initialize again: %v", err)
	}
	if seeded {
		t.Fatal("expected second initialize to be a no-op")
	}
	if src.loads != 0 {
		t.Fatalf("source loaded %d times for a seeded store", src.loads)
	}
	colleges := s.Colleges(ctx)
	if len(colleges) != 1 || colleges[0].ID != "c9" {
		t.Fatalf("seeded data overwritten: %+v", colleges)
	}
}

func TestInitializeStorageRejectsInvalidBundle(t *testing.T) {
	backend := kv.NewMemoryStore()
	s := newTestStore(t, backend)
	ctx := context.Background()

	bad := bundleSource{
		fixtures.Users:       []byte(`[]`),
		fixtures.Colleges:    []byte(`{"id":"c1"}`),
		fixtures.Courses:     []byte(`[]`),
		fixtures.Comments:    []byte(`[]`),
		fixtures.Confessions: []byte(`[]`),
	}
	if _, err := s.InitializeStorage(ctx, bad); err == nil {
		t.Fatal("expected invalid bundle to fail")
	}
	for _, k := range allKeys {
		if _, ok, _ := backend.Get(ctx, k); ok {
			t.Fatalf("%s written by failed seed", k)
		}
	}
}

func TestInitializeStorageBackendFailure(t *testing.T) {
	s := newTestStore(t, failingKV{})
	if _, err := s.InitializeStorage(context.Background(), fixtures.Embedded()); err == nil {
		t.Fatal("expected backend failure to surface")
	}
}

func TestResetClearsEverythingAndReseeds(t *testing.T) {
	s, backend := newSeededStore(t)
	ctx := context.Background()

	if _, _, err := s.Session().Login(ctx, "demo@stanford.edu"); err != nil {
		t.Fatalf("login: %v", err)
	}
	if _, err := s.PostComment(ctx, "k1", "before reset"); err != nil {
		t.Fatalf("post: %v", err)
	}
	if err := s.Reset(ctx); err != nil {
		t.Fatalf("reset: %v", err)
	}
	for _, k := range allKeys {
		if _, ok, _ := backend.Get(ctx, k); ok {
			t.Fatalf("%s survived reset", k)
		}
	}
	seeded, err := s.InitializeStorage(ctx, fixtures.Embedded())
	if err != nil || !seeded {
		t.Fatalf("reseed: seeded=%v err=%v", seeded, err)
	}
	if got := len(s.CourseComments(ctx, "k1")); got != 2 {
		t.Fatalf("k1 comments after reseed = %d, want 2", got)
	}
}

func TestInitializeStorageRejectsBadTimestamp(t *testing.T) {
	backend := kv.NewMemoryStore()
	s := newTestStore(t, backend)
	ctx := context.Background()

	bundle, err := fixtures.Embedded().Load(ctx)
	if err != nil {
		t.Fatalf("load embedded: %v", err)
	}
	bundle[fixtures.Comments] = []byte(`[
		{"id":"a","courseId":"k1","text":"zoned","timestamp":"2024-01-15T10:30:00.000Z","upvotes":0},
		{"id":"b","courseId":"k1","text":"local","timestamp":"2024-01-16T10:30:00","upvotes":0}
	]`)
	if _, err := s.InitializeStorage(ctx, bundleSource(bundle)); err == nil {
		t.Fatal("expected comment with unzoned timestamp to fail seeding")
	}
	for _, k := range allKeys {
		if _, ok, _ := backend.Get(ctx, k); ok {
			t.Fatalf("%s written by rejected seed", k)
		}
	}
}
