package errs

import (
	"errors"
	"fmt"
)

var (
	// ErrOrderNotFound is returned when a status update targets an order id
	// that does not exist in the store.
	ErrOrderNotFound = errors.New("order not found")
)

// ValidationError reports a malformed client payload. The message is one of
// the canonical reason strings returned to the caller verbatim.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// NewValidationError creates a ValidationError with the given reason.
func NewValidationError(message string) *ValidationError {
	return &ValidationError{Message: message}
}

// ResolutionReason classifies how an address resolution attempt failed.
type ResolutionReason string

const (
	ResolutionUnreachable  ResolutionReason = "collaborator unreachable"
	ResolutionBadStatus    ResolutionReason = "unexpected response status"
	ResolutionMalformed    ResolutionReason = "malformed response body"
	ResolutionMissingField ResolutionReason = "missing coordinate field"
	ResolutionTimeout      ResolutionReason = "request timed out"
)

// ResolutionError reports a failed delivery-address resolution. It always
// aborts a submission before any write happens.
type ResolutionError struct {
	Reason ResolutionReason
	Cause  error
}

func (e *ResolutionError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("address resolution failed: %s: %s", e.Reason, e.Cause)
	}
	return fmt.Sprintf("address resolution failed: %s", e.Reason)
}

func (e *ResolutionError) Unwrap() error {
	return e.Cause
}

// NewResolutionError creates a ResolutionError with the given reason and cause.
func NewResolutionError(reason ResolutionReason, cause error) *ResolutionError {
	return &ResolutionError{Reason: reason, Cause: cause}
}

// StorageError reports a row-store failure after validation and resolution
// already succeeded. It is fatal for the current request.
type StorageError struct {
	Op    string
	Cause error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage error during %s: %s", e.Op, e.Cause)
}

func (e *StorageError) Unwrap() error {
	return e.Cause
}

// NewStorageError wraps a row-store failure for the given operation.
func NewStorageError(op string, cause error) *StorageError {
	return &StorageError{Op: op, Cause: cause}
}

// InvalidTransitionError reports a status change rejected by the lifecycle
// transition table.
type InvalidTransitionError struct {
	From fmt.Stringer
	To   fmt.Stringer
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid status transition from '%s' to '%s'", e.From, e.To)
}

// NewInvalidTransitionError creates an InvalidTransitionError for the given pair.
func NewInvalidTransitionError(from, to fmt.Stringer) *InvalidTransitionError {
	return &InvalidTransitionError{From: from, To: to}
}
