package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"yaps/pkg/domain"
)

func TestCollegeConfessionsNewestFirst(t *testing.T) {
	s, _ := newSeededStore(t)
	ctx := context.Background()

	var ids []string
	for _, c := range s.CollegeConfessions(ctx, "c1") {
		if c.CollegeID != "c1" {
			t.Fatalf("confession %s of %s returned for c1", c.ID, c.CollegeID)
		}
		ids = append(ids, c.ID)
	}
	if diff := cmp.Diff([]string{"confession2", "confession1"}, ids); diff != "" {
		t.Fatalf("order mismatch (-want +got):\n%s", diff)
	}
}

func TestPostAndUpvoteConfession(t *testing.T) {
	s, _ := newSeededStore(t)
	ctx := context.Background()

	c, err := s.PostConfession(ctx, "c2", "I have never been to a football game.")
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	want := domain.Confession{
		ID:        "confession-test1",
		CollegeID: "c2",
		Text:      "I have never been to a football game.",
		Timestamp: testNow.Truncate(time.Millisecond),
	}
	if diff := cmp.Diff(want, c); diff != "" {
		t.Fatalf("posted confession mismatch (-want +got):\n%s", diff)
	}

	updated, err := s.UpvoteConfession(ctx, c.ID)
	if err != nil {
		t.Fatalf("upvote: %v", err)
	}
	want.Upvotes = 1
	got := s.CollegeConfessions(ctx, "c2")
	if len(got) != 2 {
		t.Fatalf("c2 confessions = %d, want 2", len(got))
	}
	if diff := cmp.Diff(want, got[0]); diff != "" {
		t.Fatalf("stored confession mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(want, updated); diff != "" {
		t.Fatalf("returned confession mismatch (-want +got):\n%s", diff)
	}

	if _, err := s.PostConfession(ctx, "c2", ""); !errors.Is(err, ErrEmptyText) {
		t.Fatalf("expected ErrEmptyText, got %v", err)
	}
	if _, err := s.UpvoteConfession(ctx, "confession-missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSaveConfessionUpserts(t *testing.T) {
	s, _ := newSeededStore(t)
	ctx := context.Background()

	c := s.CollegeConfessions(ctx, "c3")[0]
	c.Upvotes = 100
	if err := s.SaveConfession(ctx, c); err != nil {
		t.Fatalf("save: %v", err)
	}
	got := s.CollegeConfessions(ctx, "c3")
	if len(got) != 1 || got[0].Upvotes != 100 {
		t.Fatalf("c3 confessions = %+v", got)
	}
}
