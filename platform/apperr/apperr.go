// Package apperr provides standardized domain error types for the application.
// Domain services return these typed errors, and the HTTP layer middleware
// automatically maps them to appropriate HTTP status codes.
package apperr

import (
	"fmt"
	"net/http"
)

// Kind represents the category of error.
type Kind int

const (
	// KindUnknown is the default error kind when none is specified.
	KindUnknown Kind = iota
	// KindNotFound indicates a referenced contact, opportunity or deal does not exist.
	KindNotFound
	// KindValidation indicates invalid input data.
	KindValidation
	// KindInvalidState indicates a transition attempted from a pipeline status
	// that does not permit it.
	KindInvalidState
	// KindGateUnsatisfied indicates a derived signal (average rating) is below
	// the threshold required by the transition.
	KindGateUnsatisfied
	// KindConflict indicates a conflicting open resource, e.g. a second OPEN
	// opportunity for a contact or a second deal for one opportunity. Callers
	// hitting this from a concurrent race should re-read and retry.
	KindConflict
	// KindBadRequest indicates a malformed or invalid request.
	KindBadRequest
	// KindInternal indicates an unexpected internal error.
	KindInternal
)

// Error is a domain error with a typed Kind for HTTP mapping.
type Error struct {
	Kind    Kind
	Message string
	Op      string      // Operation that failed (optional)
	Err     error       // Underlying error (optional)
	Details interface{} // Additional details for response (optional)
}

// InvalidStateDetails describes why a transition was refused for a contact in
// the wrong pipeline status.
type InvalidStateDetails struct {
	CurrentStatus  string `json:"currentStatus"`
	RequiredStatus string `json:"requiredStatus"`
}

// GateDetails carries the computed signal value and the threshold it missed,
// so callers can render an accurate explanation of the rejection.
type GateDetails struct {
	Value     float64 `json:"value"`
	Threshold float64 `json:"threshold"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Op != "" {
		return fmt.Sprintf("%s: %s", e.Op, e.Message)
	}
	return e.Message
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *Error) Unwrap() error {
	return e.Err
}

// HTTPStatus returns the appropriate HTTP status code for this error kind.
func (e *Error) HTTPStatus() int {
	switch e.Kind {
	case KindNotFound:
		return http.StatusNotFound
	case KindValidation, KindBadRequest:
		return http.StatusBadRequest
	case KindInvalidState, KindGateUnsatisfied:
		return http.StatusUnprocessableEntity
	case KindConflict:
		return http.StatusConflict
	case KindInternal:
		return http.StatusInternalServerError
	default:
		return http.StatusBadRequest
	}
}

// New creates a new domain error with the given kind and message.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap creates a new domain error wrapping an existing error.
func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// WithOp returns the error with the operation set.
func (e *Error) WithOp(op string) *Error {
	e.Op = op
	return e
}

// WithDetails returns the error with additional details.
func (e *Error) WithDetails(details interface{}) *Error {
	e.Details = details
	return e
}

// Convenience constructors for common error types.

// NotFound creates a not found error.
func NotFound(message string) *Error {
	return New(KindNotFound, message)
}

// Validation creates a validation error.
func Validation(message string) *Error {
	return New(KindValidation, message)
}

// InvalidState creates an invalid-state error annotated with the contact's
// current status and the status the transition requires.
func InvalidState(message, current, required string) *Error {
	return New(KindInvalidState, message).WithDetails(InvalidStateDetails{
		CurrentStatus:  current,
		RequiredStatus: required,
	})
}

// GateUnsatisfied creates a gate error annotated with the computed value and
// the threshold.
func GateUnsatisfied(message string, value, threshold float64) *Error {
	return New(KindGateUnsatisfied, message).WithDetails(GateDetails{
		Value:     value,
		Threshold: threshold,
	})
}

// Conflict creates a conflicting-open-resource error.
func Conflict(message string) *Error {
	return New(KindConflict, message)
}

// BadRequest creates a bad request error.
func BadRequest(message string) *Error {
	return New(KindBadRequest, message)
}

// Internal creates an internal server error.
func Internal(message string) *Error {
	return New(KindInternal, message)
}

// GetKind extracts the error kind from an error.
// Returns KindUnknown if the error is not an *Error.
func GetKind(err error) Kind {
	if e, ok := err.(*Error); ok {
		return e.Kind
	}
	return KindUnknown
}

// Is checks if err is an *Error with the given kind.
func Is(err error, kind Kind) bool {
	return GetKind(err) == kind
}
