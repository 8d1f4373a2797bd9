package repository

import "errors"

var (
	// ErrNotFound indicates the requested record does not exist.
	ErrNotFound = errors.New("repository: not found")
	// ErrDuplicate indicates a unique constraint (such as email) was violated.
	ErrDuplicate = errors.New("repository: duplicate")
)
