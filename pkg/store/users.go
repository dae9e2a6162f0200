package store

import (
	"context"
	"fmt"

	"yaps/pkg/domain"
)

func userID(u domain.User) string { return u.ID }

// Users returns every registered user.
func (s *Store) Users(ctx context.Context) []domain.User {
	return list[domain.User](ctx, s, KeyUsers)
}

// User looks up a user by id.
func (s *Store) User(ctx context.Context, id string) (domain.User, bool) {
	for _, u := range s.Users(ctx) {
		if u.ID == id {
			return u, true
		}
	}
	return domain.User{}, false
}

// SaveUser inserts u or replaces the user with the same id.
func (s *Store) SaveUser(ctx context.Context, u domain.User) error {
	err := updateList(ctx, s, KeyUsers, func(items []domain.User) ([]domain.User, error) {
		return upsert(items, u, userID), nil
	})
	if err != nil {
		return fmt.Errorf("save user %s: %w", u.ID, err)
	}
	return nil
}
