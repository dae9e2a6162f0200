package store

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"yaps/pkg/domain"
)

func confessionID(c domain.Confession) string { return c.ID }

// CollegeConfessions returns a college's confessions, newest first.
func (s *Store) CollegeConfessions(ctx context.Context, collegeID string) []domain.Confession {
	confessions := list[domain.Confession](ctx, s, KeyConfessions)
	out := make([]domain.Confession, 0, len(confessions))
	for _, c := range confessions {
		if c.CollegeID == collegeID {
			out = append(out, c)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.After(out[j].Timestamp)
	})
	return out
}

// SaveConfession stores c, replacing any confession with the same id.
func (s *Store) SaveConfession(ctx context.Context, c domain.Confession) error {
	err := updateList(ctx, s, KeyConfessions, func(items []domain.Confession) ([]domain.Confession, error) {
		return upsert(items, c, confessionID), nil
	})
	if err != nil {
		return fmt.Errorf("save confession %s: %w", c.ID, err)
	}
	return nil
}

// PostConfession creates a new confession for a college.
func (s *Store) PostConfession(ctx context.Context, collegeID, text string) (domain.Confession, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return domain.Confession{}, ErrEmptyText
	}
	c := domain.Confession{
		ID:        s.newID("confession"),
		CollegeID: collegeID,
		Text:      text,
		Timestamp: s.now().UTC().Truncate(time.Millisecond),
	}
	if err := s.SaveConfession(ctx, c); err != nil {
		return domain.Confession{}, err
	}
	return c, nil
}

// UpvoteConfession adds one upvote to the confession with id and returns it.
func (s *Store) UpvoteConfession(ctx context.Context, id string) (domain.Confession, error) {
	var updated domain.Confession
	err := updateList(ctx, s, KeyConfessions, func(items []domain.Confession) ([]domain.Confession, error) {
		for i := range items {
			if items[i].ID == id {
				items[i].Upvotes++
				updated = items[i]
				return items, nil
			}
		}
		return nil, ErrNotFound
	})
	if err != nil {
		return domain.Confession{}, fmt.Errorf("upvote confession %s: %w", id, err)
	}
	s.log.Debug("confession upvoted", "id", id, "upvotes", updated.Upvotes)
	return updated, nil
}
