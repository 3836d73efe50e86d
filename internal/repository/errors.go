package repository

import "errors"

var (
	// ErrNotFound indicates the requested record does not exist.
	ErrNotFound = errors.New("repository: not found")
	// ErrDuplicateUsername indicates a username uniqueness violation.
	ErrDuplicateUsername = errors.New("repository: duplicate username")
	// ErrDuplicateEmail indicates an email uniqueness violation.
	ErrDuplicateEmail = errors.New("repository: duplicate email")
)
