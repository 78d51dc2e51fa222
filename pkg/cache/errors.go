package cache

import "errors"

var (
	// ErrNotFound indicates the key is absent or expired.
	ErrNotFound = errors.New("cache key not found")
	// ErrConflict indicates an Update lost every optimistic retry to concurrent writers.
	ErrConflict = errors.New("cache key modified concurrently")
	// ErrEmptyKey indicates an empty key was provided.
	ErrEmptyKey = errors.New("cache key must not be empty")
)
