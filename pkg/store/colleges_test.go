package store

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"

	"yaps/pkg/domain"
	"yaps/pkg/kv"
)

func TestColleges(t *testing.T) {
	s, _ := newSeededStore(t)
	ctx := context.Background()

	if got := len(s.Colleges(ctx)); got != 3 {
		t.Fatalf("colleges = %d, want 3", got)
	}
	c, ok := s.College(ctx, "c2")
	if !ok || c.ID != "c2" || c.Name == "" {
		t.Fatalf("college c2 = %+v, %v", c, ok)
	}
	if _, ok := s.College(ctx, "nope"); ok {
		t.Fatal("expected unknown college to be absent")
	}
}

func TestCollegeCoursesFiltersByCollege(t *testing.T) {
	s, _ := newSeededStore(t)
	ctx := context.Background()

	want := map[string][]string{
		"c1":      {"k1", "k2", "k3"},
		"c2":      {"k4", "k5"},
		"c3":      {"k6", "k7"},
		"unknown": {},
	}
	for college, ids := range want {
		courses := s.CollegeCourses(ctx, college)
		got := make([]string, 0, len(courses))
		for _, c := range courses {
			if c.CollegeID != college {
				t.Fatalf("course %s of %s returned for %s", c.ID, c.CollegeID, college)
			}
			got = append(got, c.ID)
		}
		if diff := cmp.Diff(ids, got); diff != "" {
			t.Fatalf("courses of %s mismatch (-want +got):\n%s", college, diff)
		}
	}
}

func TestUserCourses(t *testing.T) {
	s, _ := newSeededStore(t)
	ctx := context.Background()

	u, ok := s.User(ctx, "user1")
	if !ok {
		t.Fatal("expected fixture user1")
	}
	var got []string
	for _, c := range s.UserCourses(ctx, u) {
		got = append(got, c.ID)
	}
	if diff := cmp.Diff([]string{"k1", "k2"}, got); diff != "" {
		t.Fatalf("user courses mismatch (-want +got):\n%s", diff)
	}

	// Courses outside the user's college are ignored.
	mixed := domain.User{ID: "u", CollegeID: "c2", Courses: []string{"k1", "k5"}}
	courses := s.UserCourses(ctx, mixed)
	if len(courses) != 1 || courses[0].ID != "k5" {
		t.Fatalf("mixed user courses = %+v", courses)
	}
	if got := s.UserCourses(ctx, domain.User{ID: "pending"}); len(got) != 0 {
		t.Fatalf("pending user courses = %+v", got)
	}
}

func TestReadsOnEmptyStore(t *testing.T) {
	s := newTestStore(t, kv.NewMemoryStore())
	ctx := context.Background()

	if got := s.Colleges(ctx); got == nil || len(got) != 0 {
		t.Fatalf("colleges on empty store = %#v", got)
	}
	if got := s.CollegeCourses(ctx, "c1"); len(got) != 0 {
		t.Fatalf("courses on empty store = %+v", got)
	}
	if got := s.CourseComments(ctx, "k1"); len(got) != 0 {
		t.Fatalf("comments on empty store = %+v", got)
	}
}

func TestReadsDegradeOnBackendFailure(t *testing.T) {
	s := newTestStore(t, failingKV{})
	ctx := context.Background()

	if got := s.Colleges(ctx); len(got) != 0 {
		t.Fatalf("colleges = %+v", got)
	}
	if got := s.Users(ctx); len(got) != 0 {
		t.Fatalf("users = %+v", got)
	}
	if got := s.CollegeConfessions(ctx, "c1"); len(got) != 0 {
		t.Fatalf("confessions = %+v", got)
	}
	if s.Session().IsLoggedIn(ctx) {
		t.Fatal("expected logged out when backend fails")
	}
}

func TestReadsDegradeOnCorruptCollection(t *testing.T) {
	backend := kv.NewMemoryStore()
	s := newTestStore(t, backend)
	ctx := context.Background()

	if err := backend.Set(ctx, KeyCourses, "{not json"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if got := s.CollegeCourses(ctx, "c1"); len(got) != 0 {
		t.Fatalf("courses from corrupt value = %+v", got)
	}
}
