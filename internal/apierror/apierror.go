// Package apierror provides the error taxonomy shared by services and the
// standardized error response structures for the API. All errors returned to
// clients go through this package to ensure consistency and to prevent leaking
// internal details (stack traces, DB errors, etc.).
package apierror

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies a domain error so handlers can map it to an HTTP status
// without string-matching messages.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindConflict
	KindPrecondition
	KindAuthorization
	KindNotFound
	KindInsufficientStock
	KindInvalidTransition
	KindSettlement
)

// Error is the structured error returned by every service operation.
// Message is safe to surface to the operator; Err (optional) carries the
// underlying cause for logs.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Is makes errors.Is match on Kind: errors.Is(err, apierror.Conflict(""))
// holds for any conflict error regardless of message.
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return e.Kind == t.Kind
	}
	return false
}

func Validation(msg string) *Error        { return &Error{Kind: KindValidation, Message: msg} }
func Conflict(msg string) *Error          { return &Error{Kind: KindConflict, Message: msg} }
func Precondition(msg string) *Error      { return &Error{Kind: KindPrecondition, Message: msg} }
func Authorization(msg string) *Error     { return &Error{Kind: KindAuthorization, Message: msg} }
func NotFound(msg string) *Error          { return &Error{Kind: KindNotFound, Message: msg} }
func InsufficientStock(msg string) *Error { return &Error{Kind: KindInsufficientStock, Message: msg} }
func InvalidTransition(msg string) *Error { return &Error{Kind: KindInvalidTransition, Message: msg} }

// Settlement wraps any failure inside the payment transaction. The caller sees
// the original cause string for operator diagnosis; the whole transaction has
// already been rolled back when this is returned.
func Settlement(err error) *Error {
	return &Error{Kind: KindSettlement, Message: "error al cobrar la orden", Err: err}
}

// KindOf extracts the Kind of err, or KindInternal for untyped errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// Status maps an error to the HTTP status code handlers should respond with.
func Status(err error) int {
	switch KindOf(err) {
	case KindValidation:
		return http.StatusUnprocessableEntity
	case KindConflict, KindInvalidTransition, KindInsufficientStock:
		return http.StatusConflict
	case KindPrecondition:
		return http.StatusPreconditionFailed
	case KindAuthorization:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindSettlement:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// ── HTTP envelopes ───────────────────────────────────────────────────────────

// APIError is the canonical error envelope for all 4xx/5xx HTTP responses.
type APIError struct {
	Detail string `json:"detail"`
}

func New(msg string) *APIError {
	return &APIError{Detail: msg}
}

// ValidationError wraps multiple field errors.
type ValidationError struct {
	Detail string            `json:"detail"`
	Fields map[string]string `json:"fields"`
}

func NewValidation(fields map[string]string) *ValidationError {
	return &ValidationError{Detail: "Error de validacion", Fields: fields}
}
