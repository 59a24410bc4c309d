/*
errors.go - Centralized error types for the leave engine

PURPOSE:
  All engine errors in one place. Sentinel errors support errors.Is
  classification; structured errors carry the parameters the presentation
  layer surfaces verbatim (e.g. "insufficient CL: required 5, available 3").

ERROR CATEGORIES:
  1. Validation errors  - malformed input (end before start, bad type)
  2. Balance errors     - a debit would drive remaining below zero
  3. Calendar errors    - RL dates not on the Restricted Holiday list
  4. State errors       - operation not allowed in the record's state
  5. Not-found errors   - unknown leave or employee identifiers
*/
package leave

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrValidation is returned for malformed or missing input.
	ErrValidation = errors.New("validation failed")

	// ErrInsufficientBalance is returned when a debit exceeds the remaining
	// balance of a category.
	ErrInsufficientBalance = errors.New("insufficient balance")

	// ErrInvalidRLDate is returned when a Restricted Leave span contains
	// dates that are not Restricted Holidays.
	ErrInvalidRLDate = errors.New("date is not a restricted holiday")

	// ErrLeaveNotFound is returned when a leave id is unknown.
	ErrLeaveNotFound = errors.New("leave record not found")

	// ErrEmployeeNotFound is returned when an employee id is unknown.
	ErrEmployeeNotFound = errors.New("employee not found")

	// ErrInvalidStateTransition is returned when an operation is not
	// permitted in the record's current state (e.g. extending a RETURNED
	// record, editing a record that carries a medical overlay).
	ErrInvalidStateTransition = errors.New("invalid state transition")

	// ErrSettingsNotFound is returned when no entitlements are configured
	// for the requested year.
	ErrSettingsNotFound = errors.New("leave settings not configured for year")
)

// =============================================================================
// STRUCTURED ERRORS - Carry parameters for the operator
// =============================================================================

// ValidationError reports a specific malformed input field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// InsufficientBalanceError reports the category, what the operation needed
// and what was actually available.
type InsufficientBalanceError struct {
	Category  Category
	Required  decimal.Decimal
	Available decimal.Decimal
}

func (e *InsufficientBalanceError) Error() string {
	return fmt.Sprintf("insufficient %s: required %s, available %s",
		e.Category, e.Required, e.Available)
}

func (e *InsufficientBalanceError) Unwrap() error { return ErrInsufficientBalance }

// RLDateError lists exactly the dates in an RL span that are not on the
// Restricted Holiday list.
type RLDateError struct {
	Offending []Date
}

func (e *RLDateError) Error() string {
	parts := make([]string, len(e.Offending))
	for i, d := range e.Offending {
		parts[i] = d.String()
	}
	return fmt.Sprintf("not restricted holidays: [%s]", strings.Join(parts, ", "))
}

func (e *RLDateError) Unwrap() error { return ErrInvalidRLDate }

// StateTransitionError reports which operation was refused and why.
type StateTransitionError struct {
	LeaveID   LeaveID
	Operation string
	Reason    string
}

func (e *StateTransitionError) Error() string {
	return fmt.Sprintf("%s not allowed for leave %s: %s", e.Operation, e.LeaveID, e.Reason)
}

func (e *StateTransitionError) Unwrap() error { return ErrInvalidStateTransition }

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError returns true if the error is due to operator input and a
// corrected resubmission may succeed.
func IsClientError(err error) bool {
	return errors.Is(err, ErrValidation) ||
		errors.Is(err, ErrInsufficientBalance) ||
		errors.Is(err, ErrInvalidRLDate) ||
		errors.Is(err, ErrInvalidStateTransition)
}

// IsNotFound returns true if the error indicates a missing entity.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrLeaveNotFound) ||
		errors.Is(err, ErrEmployeeNotFound) ||
		errors.Is(err, ErrSettingsNotFound)
}
