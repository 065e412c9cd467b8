package persistence

import "errors"

var (
	// ErrNotFound is returned when the requested record does not exist.
	ErrNotFound = errors.New("persistence: not found")
	// ErrDuplicate is returned when a uniqueness constraint rejects a write.
	ErrDuplicate = errors.New("persistence: duplicate record")
	// ErrForeignKey is returned when a referenced record is missing or still referenced.
	ErrForeignKey = errors.New("persistence: foreign key violation")
	// ErrConstraintViolation is returned for NOT NULL and CHECK failures.
	ErrConstraintViolation = errors.New("persistence: constraint violation")
)
