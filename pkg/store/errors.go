package store

import "errors"

var (
	// ErrNotFound indicates no record has the requested id.
	ErrNotFound = errors.New("record not found")
	// ErrNoPendingUser indicates registration was completed without a pending user.
	ErrNoPendingUser = errors.New("no pending registration")
	// ErrEmptyText indicates a post with nothing but whitespace.
	ErrEmptyText = errors.New("text is required")
	// ErrNotLoggedIn indicates an operation needs a current user.
	ErrNotLoggedIn = errors.New("not logged in")
)
