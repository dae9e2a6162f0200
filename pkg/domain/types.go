package domain

import (
	"errors"
	"strings"
	"time"
)

// User is an app account. CollegeID and Courses stay empty while the user is
// pending registration.
type User struct {
	ID        string   `json:"id"`
	Email     string   `json:"email"`
	CollegeID string   `json:"collegeId,omitempty"`
	Courses   []string `json:"courses,omitempty"`
}

// Enrolled reports whether the user selected the course during registration.
func (u User) Enrolled(courseID string) bool {
	for _, id := range u.Courses {
		if id == courseID {
			return true
		}
	}
	return false
}

type College struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type Course struct {
	ID        string `json:"id"`
	CollegeID string `json:"collegeId"`
	Code      string `json:"code"`
	Name      string `json:"name"`
}

// Comment is an anonymous post in a course discussion.
type Comment struct {
	ID        string    `json:"id"`
	CourseID  string    `json:"courseId"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
	Upvotes   int       `json:"upvotes"`
}

// Confession is an anonymous college-wide post.
type Confession struct {
	ID        string    `json:"id"`
	CollegeID string    `json:"collegeId"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
	Upvotes   int       `json:"upvotes"`
}

// ErrInvalidEmail is returned for addresses outside a college domain.
var ErrInvalidEmail = errors.New("please use a valid college email (.edu)")

// NormalizeEmail trims and lowercases an address the way accounts are stored.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidateCollegeEmail accepts only non-empty .edu addresses.
func ValidateCollegeEmail(email string) error {
	email = NormalizeEmail(email)
	if email == "" || !strings.Contains(email, "@") || !strings.HasSuffix(email, ".edu") {
		return ErrInvalidEmail
	}
	return nil
}
