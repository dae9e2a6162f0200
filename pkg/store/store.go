// Package store holds the app's repositories and session state on top of a
// kv.Store. Every collection lives under one key as a JSON array; reads load
// the whole array and filter in memory, writes go through kv.Update so each
// read-modify-write is atomic.
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"yaps/internal/util"
	"yaps/pkg/fixtures"
	"yaps/pkg/kv"
)

// Persisted keys.
const (
	KeyInitialized = "dataInitialized"
	KeyUsers       = fixtures.Users
	KeyColleges    = fixtures.Colleges
	KeyCourses     = fixtures.Courses
	KeyComments    = fixtures.Comments
	KeyConfessions = fixtures.Confessions
	KeyCurrentUser = "user"
	KeyTempUser    = "tempUser"
)

// allKeys is every key the app owns.
var allKeys = []string{
	KeyInitialized,
	KeyUsers, KeyColleges, KeyCourses, KeyComments, KeyConfessions,
	KeyCurrentUser, KeyTempUser,
}

// Store is the data layer. It keeps no state between calls; every read
// goes back to the backend.
type Store struct {
	kv    kv.Store
	log   *slog.Logger
	now   func() time.Time
	newID func(prefix string) string
}

// Option customizes a Store.
type Option func(*Store)

// WithLogger sets the logger used for degraded reads and lifecycle events.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.log = l
		}
	}
}

// WithClock overrides the time source for new posts.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// WithIDGenerator overrides id generation for new records.
func WithIDGenerator(fn func(prefix string) string) Option {
	return func(s *Store) {
		if fn != nil {
			s.newID = fn
		}
	}
}

// New wraps backend.
func New(backend kv.Store, opts ...Option) *Store {
	s := &Store{
		kv:    backend,
		log:   slog.Default(),
		now:   time.Now,
		newID: util.NewID,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// decodeList parses a stored collection one record at a time. An absent or
// empty value is an empty collection. Records that do not decode are returned
// raw in bad so a rewrite can keep them.
func decodeList[T any](raw string, ok bool) (items []T, bad []json.RawMessage, err error) {
	items = []T{}
	if !ok || raw == "" {
		return items, nil, nil
	}
	var elems []json.RawMessage
	if err := json.Unmarshal([]byte(raw), &elems); err != nil {
		return nil, nil, err
	}
	for _, e := range elems {
		var item T
		if err := json.Unmarshal(e, &item); err != nil {
			bad = append(bad, e)
			continue
		}
		items = append(items, item)
	}
	return items, bad, nil
}

// encodeList writes items followed by any undecodable records, verbatim.
func encodeList[T any](items []T, bad []json.RawMessage) (string, error) {
	if len(bad) == 0 {
		return encode(items)
	}
	elems := make([]any, 0, len(items)+len(bad))
	for _, item := range items {
		elems = append(elems, item)
	}
	for _, b := range bad {
		elems = append(elems, b)
	}
	return encode(elems)
}

func encode(v any) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (s *Store) logSkipped(key string, bad []json.RawMessage) {
	if len(bad) > 0 {
		s.log.Warn("skipped undecodable records", "key", key, "count", len(bad))
	}
}

func readList[T any](ctx context.Context, s *Store, key string) ([]T, error) {
	raw, ok, err := s.kv.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", key, err)
	}
	items, bad, err := decodeList[T](raw, ok)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", key, err)
	}
	s.logSkipped(key, bad)
	return items, nil
}

// list is readList that degrades to an empty collection on failure.
func list[T any](ctx context.Context, s *Store, key string) []T {
	items, err := readList[T](ctx, s, key)
	if err != nil {
		s.log.Error("read collection failed", "key", key, "err", err)
		return []T{}
	}
	return items
}

func readRecord[T any](ctx context.Context, s *Store, key string) (T, bool, error) {
	var rec T
	raw, ok, err := s.kv.Get(ctx, key)
	if err != nil {
		return rec, false, fmt.Errorf("read %s: %w", key, err)
	}
	if !ok || raw == "" {
		return rec, false, nil
	}
	if err := decodeRecord(raw, &rec); err != nil {
		return rec, false, fmt.Errorf("decode %s: %w", key, err)
	}
	return rec, true, nil
}

func decodeRecord(raw string, v any) error {
	return json.Unmarshal([]byte(raw), v)
}

// record is readRecord that degrades to absent on failure.
func record[T any](ctx context.Context, s *Store, key string) (T, bool) {
	rec, ok, err := readRecord[T](ctx, s, key)
	if err != nil {
		s.log.Error("read record failed", "key", key, "err", err)
		var zero T
		return zero, false
	}
	return rec, ok
}

func writeRecord(ctx context.Context, s *Store, key string, v any) error {
	raw, err := encode(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := s.kv.Set(ctx, key, raw); err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	return nil
}

// txnList and txnSetList are the in-transaction halves of a collection rewrite.
func txnList[T any](txn kv.Txn, key string) ([]T, []json.RawMessage, error) {
	raw, ok, err := txn.Get(key)
	if err != nil {
		return nil, nil, fmt.Errorf("read %s: %w", key, err)
	}
	items, bad, err := decodeList[T](raw, ok)
	if err != nil {
		return nil, nil, fmt.Errorf("decode %s: %w", key, err)
	}
	return items, bad, nil
}

func txnSetList[T any](txn kv.Txn, key string, items []T, bad []json.RawMessage) error {
	raw, err := encodeList(items, bad)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	txn.Set(key, raw)
	return nil
}

func txnSet(txn kv.Txn, key string, v any) error {
	raw, err := encode(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	txn.Set(key, raw)
	return nil
}

// updateList rewrites the collection at key with fn inside one atomic update.
// Records that do not decode are left in place.
func updateList[T any](ctx context.Context, s *Store, key string, fn func([]T) ([]T, error)) error {
	var skipped []json.RawMessage
	err := s.kv.Update(ctx, []string{key}, func(txn kv.Txn) error {
		items, bad, err := txnList[T](txn, key)
		if err != nil {
			return err
		}
		items, err = fn(items)
		if err != nil {
			return err
		}
		skipped = bad
		return txnSetList(txn, key, items, bad)
	})
	if err == nil {
		s.logSkipped(key, skipped)
	}
	return err
}

// upsert replaces the first element with item's id, or appends item.
func upsert[T any](items []T, item T, id func(T) string) []T {
	want := id(item)
	for i := range items {
		if id(items[i]) == want {
			items[i] = item
			return items
		}
	}
	return append(items, item)
}
