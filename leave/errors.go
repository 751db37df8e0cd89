package leave

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS
// =============================================================================

var (
	// ErrNoDate is returned in strict mode when the text names no date.
	ErrNoDate = errors.New("no date found in request")

	// ErrInvalidDates is returned when an override range ends before it starts.
	ErrInvalidDates = errors.New("end date before start date")

	// ErrRangeTooLong is returned when the requested range exceeds Config.MaxRangeDays.
	ErrRangeTooLong = errors.New("date range too long")

	// ErrInvalidSnapshot is returned when a caller snapshot fails validation.
	ErrInvalidSnapshot = errors.New("invalid snapshot")

	// ErrInvalidConfig is returned by Config.Validate.
	ErrInvalidConfig = errors.New("invalid configuration")

	errEmptyRewrite = errors.New("rewriter returned empty text")
)

// =============================================================================
// ERROR TYPES
// =============================================================================

// ParseError means the request text could not be turned into an intent.
// Evaluate maps it to NEEDS_INFO.
type ParseError struct {
	Input  string
	Reason string
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("cannot parse leave request: %s", e.Reason)
}

func (e *ParseError) Unwrap() error { return e.Err }

// LookupError means a collaborator snapshot was missing or malformed.
// Evaluate maps it to ERROR.
type LookupError struct {
	What string // "employee", "team", ...
	ID   string
	Err  error
}

func (e *LookupError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("%s lookup failed for %s: %v", e.What, e.ID, e.Err)
	}
	return fmt.Sprintf("%s lookup failed: %v", e.What, e.Err)
}

func (e *LookupError) Unwrap() error { return e.Err }

// RuleFault records a rule that failed to evaluate. The rule is skipped,
// the evaluation continues.
type RuleFault struct {
	RuleID RuleID
	Err    error
}

func (e *RuleFault) Error() string {
	return fmt.Sprintf("rule %s skipped: %v", e.RuleID, e.Err)
}

func (e *RuleFault) Unwrap() error { return e.Err }

// IsParseError returns true if err is or wraps a ParseError.
func IsParseError(err error) bool {
	var pe *ParseError
	return errors.As(err, &pe)
}

// IsLookupError returns true if err is or wraps a LookupError.
func IsLookupError(err error) bool {
	var le *LookupError
	return errors.As(err, &le)
}
