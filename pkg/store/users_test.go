package store

import (
	"context"
	"testing"

	"yaps/pkg/domain"
)

func TestSaveUserUpsertsByID(t *testing.T) {
	s, _ := newSeededStore(t)
	ctx := context.Background()

	u := domain.User{ID: "user2", Email: "wolverine@umich.edu", CollegeID: "c2", Courses: []string{"k4", "k5"}}
	if err := s.SaveUser(ctx, u); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := s.SaveUser(ctx, u); err != nil {
		t.Fatalf("save again: %v", err)
	}
	if got := len(s.Users(ctx)); got != 2 {
		t.Fatalf("users = %d, want 2", got)
	}
	got, ok := s.User(ctx, "user2")
	if !ok || len(got.Courses) != 2 {
		t.Fatalf("user2 = %+v, %v", got, ok)
	}

	if err := s.SaveUser(ctx, domain.User{ID: "user3", Email: "x@gatech.edu"}); err != nil {
		t.Fatalf("save new: %v", err)
	}
	if got := len(s.Users(ctx)); got != 3 {
		t.Fatalf("users = %d, want 3", got)
	}
}
