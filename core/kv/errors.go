package kv

import "errors"

var (
	// ErrNotFound is returned when a key is absent or has expired.
	ErrNotFound = errors.New("key not found")

	// ErrEmptyKey is returned for operations on an empty key.
	ErrEmptyKey = errors.New("empty key")
)
