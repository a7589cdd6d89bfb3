package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Typed errors for the booking core. The HTTP boundary maps these to
// response statuses with errors.Is/errors.As, never by message text.
var (
	// ErrNotFound covers an absent rental, customer, or a tool referenced
	// by a line item (possibly deleted concurrently).
	ErrNotFound = errors.New("not found")

	// ErrInvalidDateRange is returned when an update supplies an end date
	// that precedes the rental's start date.
	ErrInvalidDateRange = errors.New("end date precedes rental start date")

	// ErrInvalidState rejects stock-affecting transitions on a settled
	// rental, so reserved stock can never be released twice.
	ErrInvalidState = errors.New("rental already settled")

	// ErrStorageConflict marks a transaction aborted by a concurrent
	// conflict. The operation performed no partial commit and is safe to
	// retry from scratch.
	ErrStorageConflict = errors.New("storage conflict")
)

// InsufficientStockError lists every tool whose requested quantity
// exceeded availability. The booking is rejected in full.
type InsufficientStockError struct {
	ToolIDs []int32
}

func (e *InsufficientStockError) Error() string {
	ids := make([]string, len(e.ToolIDs))
	for i, id := range e.ToolIDs {
		ids[i] = fmt.Sprintf("%d", id)
	}
	return "insufficient stock for tools: " + strings.Join(ids, ", ")
}

// ValidationError carries field-keyed messages for malformed input caught
// at the boundary. Non-numeric ids and unparseable dates are rejected
// here, never silently defaulted.
type ValidationError struct {
	Fields map[string][]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	return "validation failed: " + strings.Join(keys, ", ")
}

// NewValidationError builds a single-field validation error.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Fields: map[string][]string{field: {message}}}
}
