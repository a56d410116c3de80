/*
errors.go - Error types for loan resolution

ERROR CATEGORIES:
  1. Invalid terms - caller input that cannot produce a schedule (client error)
  2. Inconsistent rounding - broken internal contract (panic, never returned)
  3. Storage - a stored loan does not exist, or its ID is taken

USAGE:
  if errors.Is(err, loan.ErrInvalidLoanTerms) {
      var ite *loan.InvalidTermsError
      errors.As(err, &ite) // ite.Field, ite.Reason
  }

Resolution is deterministic: retrying with the same inputs never helps.
*/
package loan

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrInvalidLoanTerms is returned when terms cannot produce a schedule.
	ErrInvalidLoanTerms = errors.New("invalid loan terms")

	// ErrLoanNotFound is returned by stores for unknown loan IDs.
	ErrLoanNotFound = errors.New("loan not found")

	// ErrDuplicateLoan is returned when a loan ID is already stored.
	ErrDuplicateLoan = errors.New("loan already exists")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// InvalidTermsError names the offending field.
type InvalidTermsError struct {
	Field  string
	Reason string
}

func (e *InvalidTermsError) Error() string {
	return fmt.Sprintf("invalid loan terms: %s %s", e.Field, e.Reason)
}

func (e *InvalidTermsError) Unwrap() error {
	return ErrInvalidLoanTerms
}

// InconsistentRoundingError reports a schedule whose payments do not add up
// to the total due. It is raised with panic: it means the quote computation
// was bypassed, not that the input was bad.
type InconsistentRoundingError struct {
	TotalDue decimal.Decimal
	Sum      decimal.Decimal
	Payments int
}

func (e *InconsistentRoundingError) Error() string {
	return fmt.Sprintf("inconsistent rounding: %d payments sum %s, total due %s",
		e.Payments, e.Sum, e.TotalDue)
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError returns true if the error is due to invalid client input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidLoanTerms)
}

// IsNotFound returns true if the error indicates a missing loan.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrLoanNotFound)
}
