/*
errors.go - Centralized error types for the workshop engine

PURPOSE:
  All error kinds in one place. Every command validates its preconditions
  and returns one of these BEFORE touching the entity store, so a returned
  error always means "nothing changed".

ERROR KINDS:
  1. NotFound          - referenced entity id does not exist
  2. InvalidState      - command not allowed from the current status
  3. InsufficientStock - a stock-decreasing transition would go negative
  4. MissingRecipe     - assembly part has no BOM
  5. Validation        - malformed input

USAGE:
  if errors.Is(err, workshop.ErrInsufficientStock) {
      var short *workshop.InsufficientStockError
      errors.As(err, &short)
  }

SEE ALSO:
  - validate.go: Converts struct-tag failures into ValidationError
  - api/handlers.go: Maps kinds to HTTP statuses
*/
package workshop

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrNotFound is returned when a referenced entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidState is returned when a command is not allowed from the current status.
	ErrInvalidState = errors.New("invalid state")

	// ErrInsufficientStock is returned when on-hand stock cannot cover a deduction.
	ErrInsufficientStock = errors.New("insufficient stock")

	// ErrMissingRecipe is returned when an assembly part has no BOM defined.
	ErrMissingRecipe = errors.New("missing recipe")

	// ErrValidation is returned for malformed input.
	ErrValidation = errors.New("validation failed")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// NotFoundError names the missing entity.
type NotFoundError struct {
	Kind string // "part", "order", ...
	ID   int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Kind, e.ID)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// NewNotFound is shorthand for &NotFoundError{...} with any ID type.
func NewNotFound[ID ~int64](kind string, id ID) *NotFoundError {
	return &NotFoundError{Kind: kind, ID: int64(id)}
}

// InvalidStateError describes a forbidden transition.
type InvalidStateError struct {
	Kind  string
	ID    int64
	State string
	Op    string
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("cannot %s %s %d in state %s", e.Op, e.Kind, e.ID, e.State)
}

func (e *InvalidStateError) Unwrap() error { return ErrInvalidState }

// InsufficientStockError names the short part and what is on hand.
type InsufficientStockError struct {
	PartID    PartID
	PartName  string
	Available decimal.Decimal
	Required  decimal.Decimal
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %q: available %s, required %s",
		e.PartName, e.Available.String(), e.Required.String())
}

func (e *InsufficientStockError) Unwrap() error { return ErrInsufficientStock }

// MissingRecipeError is returned when completing an order for a part without a BOM.
type MissingRecipeError struct {
	PartID   PartID
	PartName string
}

func (e *MissingRecipeError) Error() string {
	return fmt.Sprintf("part %q (%d) has no bill of materials", e.PartName, e.PartID)
}

func (e *MissingRecipeError) Unwrap() error { return ErrMissingRecipe }

// ValidationError describes one malformed field.
type ValidationError struct {
	Field   string
	Rule    string // e.g. "required", "gt", "cycle"
	Message string
}

func (e *ValidationError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("invalid %s: failed %q", e.Field, e.Rule)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// Invalid is shorthand for a ValidationError with a message.
func Invalid(field, rule, message string) *ValidationError {
	return &ValidationError{Field: field, Rule: rule, Message: message}
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError returns true if the error is due to input or current state,
// i.e. the caller can recover by choosing a different command.
func IsClientError(err error) bool {
	return errors.Is(err, ErrValidation) ||
		errors.Is(err, ErrInvalidState) ||
		errors.Is(err, ErrInsufficientStock) ||
		errors.Is(err, ErrMissingRecipe) ||
		errors.Is(err, ErrNotFound)
}

// IsNotFound returns true if the error indicates a missing entity.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// Code returns a stable machine-readable code for the error kind.
func Code(err error) string {
	switch {
	case errors.Is(err, ErrValidation):
		return "validation"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrInvalidState):
		return "invalid_state"
	case errors.Is(err, ErrInsufficientStock):
		return "insufficient_stock"
	case errors.Is(err, ErrMissingRecipe):
		return "missing_recipe"
	default:
		return "internal"
	}
}
