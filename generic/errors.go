/*
errors.go - Centralized error types for the generic primitives

PURPOSE:
  Shared sentinel errors in one place for consistency and discoverability.
  Domain packages wrap these with additional context.

ERROR CATEGORIES:
  1. Value errors - Malformed periods, amounts
  2. Lookup errors - Missing records in a collaborator store

USAGE:
  Domain packages can wrap generic errors:

    if errors.Is(err, generic.ErrNotFound) {
        return &leave.LookupError{...}
    }

SEE ALSO:
  - period.go: Uses ErrInvalidPeriod
  - leave/errors.go: Adjudication error taxonomy
*/
package generic

import (
	"errors"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrInvalidPeriod is returned when a period is malformed (end before start).
	ErrInvalidPeriod = errors.New("invalid period: end before start")

	// ErrNegativeAmount is returned when an amount that must be non-negative is not.
	ErrNegativeAmount = errors.New("amount must not be negative")

	// ErrNotFound is returned by stores when a referenced record doesn't exist.
	ErrNotFound = errors.New("not found")
)

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsNotFound returns true if the error indicates a missing record.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsClientError returns true if the error is due to invalid client input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidPeriod) ||
		errors.Is(err, ErrNegativeAmount)
}
