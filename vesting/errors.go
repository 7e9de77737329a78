/*
errors.go - Error types for the vesting engine

PURPOSE:
  The engine has a single failure mode: the input cannot describe a valid
  schedule. Every validation failure wraps ErrInvalidInput so callers can
  map it with one errors.Is check. Store errors live here too so the API
  layer has one place to look.

USAGE:
  if errors.Is(err, vesting.ErrInvalidInput) {
      // client error, never retry
  }

  var inv *vesting.InvalidInputError
  if errors.As(err, &inv) {
      fmt.Println(inv.Field, inv.Reason)
  }

SEE ALSO:
  - api/handlers.go: Maps these to HTTP status codes
*/
package vesting

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrInvalidInput is returned when a request cannot produce a schedule.
	// Computation is deterministic, so retrying never helps.
	ErrInvalidInput = errors.New("invalid input")

	ErrGrantNotFound  = errors.New("grant not found")
	ErrDuplicateGrant = errors.New("grant already exists")
)

// =============================================================================
// STRUCTURED ERRORS
// =============================================================================

// InvalidInputError names the offending field.
type InvalidInputError struct {
	Field  string
	Reason string
}

func (e *InvalidInputError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("invalid input: %s", e.Reason)
	}
	return fmt.Sprintf("invalid input: %s %s", e.Field, e.Reason)
}

func (e *InvalidInputError) Unwrap() error {
	return ErrInvalidInput
}

func invalidPolicy(p RoundingPolicy) error {
	return &InvalidInputError{
		Field:  "rounding_policy",
		Reason: fmt.Sprintf("choose a valid policy (1-7), got %d", int(p)),
	}
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError returns true if the error is due to invalid client input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidInput) || errors.Is(err, ErrDuplicateGrant)
}

// IsNotFound returns true if the error indicates a missing grant.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrGrantNotFound)
}
