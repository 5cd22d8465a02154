package storage

import "errors"

var (
	// ErrNotFound is returned when the requested record does not exist
	ErrNotFound = errors.New("not found")

	// ErrConflict is returned when a write violates a uniqueness constraint
	ErrConflict = errors.New("already exists")
)
