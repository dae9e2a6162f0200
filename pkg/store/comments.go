package store

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"yaps/pkg/domain"
)

func commentID(c domain.Comment) string { return c.ID }

// CourseComments returns a course's comments, newest first.
func (s *Store) CourseComments(ctx context.Context, courseID string) []domain.Comment {
	comments := list[domain.Comment](ctx, s, KeyComments)
	out := make([]domain.Comment, 0, len(comments))
	for _, c := range comments {
		if c.CourseID == courseID {
			out = append(out, c)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.After(out[j].Timestamp)
	})
	return out
}

// SaveComment stores c, replacing any comment with the same id.
func (s *Store) SaveComment(ctx context.Context, c domain.Comment) error {
	err := updateList(ctx, s, KeyComments, func(items []domain.Comment) ([]domain.Comment, error) {
		return upsert(items, c, commentID), nil
	})
	if err != nil {
		return fmt.Errorf("save comment %s: %w", c.ID, err)
	}
	return nil
}

// PostComment creates a new comment on a course.
func (s *Store) PostComment(ctx context.Context, courseID, text string) (domain.Comment, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return domain.Comment{}, ErrEmptyText
	}
	c := domain.Comment{
		ID:        s.newID("comment"),
		CourseID:  courseID,
		Text:      text,
		Timestamp: s.now().UTC().Truncate(time.Millisecond),
	}
	if err := s.SaveComment(ctx, c); err != nil {
		return domain.Comment{}, err
	}
	return c, nil
}

// UpvoteComment adds one upvote to the comment with id and returns it.
func (s *Store) UpvoteComment(ctx context.Context, id string) (domain.Comment, error) {
	var updated domain.Comment
	err := updateList(ctx, s, KeyComments, func(items []domain.Comment) ([]domain.Comment, error) {
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
		return domain.Comment{}, fmt.Errorf("upvote comment %s: %w", id, err)
	}
	s.log.Debug("comment upvoted", "id", id, "upvotes", updated.Upvotes)
	return updated, nil
}
