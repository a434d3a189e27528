package storage

import "errors"

// Storage errors.
var (
	// ErrNotFound is returned when a requested record does not exist.
	ErrNotFound = errors.New("not found")

	// ErrDuplicateKey is returned when attempting to insert a record
	// with a key that already exists. For trades the key is the transaction signature.
	ErrDuplicateKey = errors.New("duplicate key")

	// ErrConflict is returned when a conditional launch update finds a version
	// other than the one the caller read. The caller must re-read and retry.
	ErrConflict = errors.New("concurrent update conflict")

	// ErrInvalidInput is returned when input validation fails.
	ErrInvalidInput = errors.New("invalid input")
)
