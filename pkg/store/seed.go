package store

import (
	"context"
	"fmt"

	"yaps/pkg/fixtures"
	"yaps/pkg/kv"
)

// InitializeStorage seeds the five collections from src unless the store is
// already initialized. The collections and the sentinel are written in one
// atomic update, so an interrupted seed leaves nothing behind and the next
// launch starts over. src is only loaded when seeding is actually needed.
func (s *Store) InitializeStorage(ctx context.Context, src fixtures.Source) (bool, error) {
	if raw, ok, err := s.kv.Get(ctx, KeyInitialized); err != nil {
		return false, fmt.Errorf("check %s: %w", KeyInitialized, err)
	} else if ok && raw != "" {
		return false, nil
	}

	bundle, err := src.Load(ctx)
	if err != nil {
		return false, fmt.Errorf("load fixtures: %w", err)
	}
	if err := bundle.Validate(); err != nil {
		return false, err
	}

	keys := append([]string{KeyInitialized}, fixtures.Collections...)
	seeded := false
	err = s.kv.Update(ctx, keys, func(txn kv.Txn) error {
		seeded = false
		raw, ok, err := txn.Get(KeyInitialized)
		if err != nil {
			return fmt.Errorf("check %s: %w", KeyInitialized, err)
		}
		if ok && raw != "" {
			return nil
		}
		for _, name := range fixtures.Collections {
			txn.Set(name, string(bundle[name]))
		}
		txn.Set(KeyInitialized, "true")
		seeded = true
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("seed storage: %w", err)
	}
	if seeded {
		s.log.Info("storage seeded", "collections", len(fixtures.Collections))
	}
	return seeded, nil
}

// Reset removes every key the app owns, including the session. The next
// InitializeStorage reseeds from fixtures.
func (s *Store) Reset(ctx context.Context) error {
	err := s.kv.Update(ctx, allKeys, func(txn kv.Txn) error {
		for _, k := range allKeys {
			txn.Remove(k)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("reset storage: %w", err)
	}
	s.log.Info("storage reset")
	return nil
}
