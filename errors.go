package voxlog

import (
	"errors"
	"fmt"
)

// Store errors
var (
	// ErrSessionNotFound indicates the session was never created or was deleted.
	ErrSessionNotFound = errors.New("session not found")

	// ErrEmptyTitle indicates a rename with an empty or whitespace-only title.
	ErrEmptyTitle = errors.New("session title is empty")
)

// Preflight errors
var (
	// ErrInsufficientCredit indicates the run-time balance is exhausted.
	ErrInsufficientCredit = errors.New("Hours credit is empty")

	// ErrUnsupportedLanguage indicates an unrecognized language code.
	ErrUnsupportedLanguage = errors.New("unsupported language")
)

// StorageError wraps a failure of the durable persistence medium. The
// in-memory state is rolled back before one is returned, so memory and
// disk never diverge.
type StorageError struct {
	// Op is the store operation that failed ("save", "load", "delete").
	Op string

	// Path is the durable location involved.
	Path string

	// Err is the underlying error.
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// IsNotFound checks if an error indicates a missing session.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrSessionNotFound)
}

// IsStorageError checks if an error came from the persistence medium.
func IsStorageError(err error) bool {
	var se *StorageError
	return errors.As(err, &se)
}
