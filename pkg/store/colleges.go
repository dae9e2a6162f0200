package store

import (
	"context"

	"yaps/pkg/domain"
)

// Colleges returns every college.
func (s *Store) Colleges(ctx context.Context) []domain.College {
	return list[domain.College](ctx, s, KeyColleges)
}

// College looks up one college by id.
func (s *Store) College(ctx context.Context, id string) (domain.College, bool) {
	for _, c := range s.Colleges(ctx) {
		if c.ID == id {
			return c, true
		}
	}
	return domain.College{}, false
}

// CollegeCourses returns the courses offered by a college, in stored order.
func (s *Store) CollegeCourses(ctx context.Context, collegeID string) []domain.Course {
	courses := list[domain.Course](ctx, s, KeyCourses)
	out := make([]domain.Course, 0, len(courses))
	for _, c := range courses {
		if c.CollegeID == collegeID {
			out = append(out, c)
		}
	}
	return out
}

// UserCourses returns the courses of the user's college the user enrolled in.
func (s *Store) UserCourses(ctx context.Context, u domain.User) []domain.Course {
	if u.CollegeID == "" {
		return []domain.Course{}
	}
	courses := s.CollegeCourses(ctx, u.CollegeID)
	out := courses[:0]
	for _, c := range courses {
		if u.Enrolled(c.ID) {
			out = append(out, c)
		}
	}
	return out
}
