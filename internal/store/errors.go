package store

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when a requested document does not exist.
	ErrNotFound = errors.New("not found")

	// ErrUnavailable wraps every failure of the underlying database so callers
	// can tell a broken store apart from a missing document.
	ErrUnavailable = errors.New("document store unavailable")
)

func unavailable(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrUnavailable, err)
}
