package db

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when a referenced entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrValidation is returned for inputs outside the allowed domain,
	// such as an unknown role or rating.
	ErrValidation = errors.New("validation failed")

	// ErrInit is returned when the schema cannot be created.
	ErrInit = errors.New("storage initialization failed")

	// ErrTimeout is returned when a caller-supplied deadline expires
	// before the operation completes.
	ErrTimeout = errors.New("storage operation timed out")

	// ErrSearchUnavailable is returned by search operations when the
	// SQLite build lacks the fts5 module.
	ErrSearchUnavailable = errors.New("full-text search unavailable")
)

// mapErr translates context deadline expiry into ErrTimeout so callers
// see one typed failure regardless of where the driver noticed it.
func mapErr(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}
	return err
}
