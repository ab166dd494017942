// Package errors provides the sentinel errors and error category helpers
// shared across the pulse store.
//
// Every public store operation reports failure through one of the sentinel
// errors below (usually wrapped with context via %w); no panics cross the
// public boundary.
package errors

import (
	"errors"
	"fmt"
)

// ============================================================================
// Sentinel errors
// ============================================================================

var (
	// Validation errors
	ErrEmptyMetric   = errors.New("metric name is empty")
	ErrInvalidConfig = errors.New("invalid configuration")

	// Durability errors
	ErrWALAppend = errors.New("wal append failed")
	ErrWALSync   = errors.New("wal sync failed")

	// Lifecycle errors
	ErrClosed  = errors.New("store is closed")
	ErrOpening = errors.New("store initialization failed")
)

// ============================================================================
// Category checks
// ============================================================================

// IsValidation reports whether err is a validation failure. Validation
// failures never mutate the store.
func IsValidation(err error) bool {
	return errors.Is(err, ErrEmptyMetric) ||
		errors.Is(err, ErrInvalidConfig)
}

// IsDurability reports whether err is a durability failure. On a durability
// failure the in-memory index has been rolled back, so the failed point is
// neither queryable nor persisted.
func IsDurability(err error) bool {
	return errors.Is(err, ErrWALAppend) || errors.Is(err, ErrWALSync)
}

// IsClosed reports whether err indicates an operation against a closed store.
func IsClosed(err error) bool {
	return errors.Is(err, ErrClosed)
}

// ============================================================================
// Wrapping utilities
// ============================================================================

// Wrap wraps an error with a message, preserving the error chain.
func Wrap(err error, msg string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", msg, err)
}

// Wrapf wraps an error with a formatted message, preserving the error chain.
func Wrapf(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}

// Is reports whether any error in err's chain matches target.
// Re-exported so callers don't need both this package and stdlib errors.
func Is(err, target error) bool {
	return errors.Is(err, target)
}
