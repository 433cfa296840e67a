package errors

import (
	stderrors "errors"
	"fmt"
	"sort"
	"strings"
)

// ErrorCode represents a Folio error code.
type ErrorCode string

const (
	ErrInvalidRequest ErrorCode = "INVALID_REQUEST"   // 400
	ErrNotFound       ErrorCode = "NOT_FOUND"         // 404
	ErrValidation     ErrorCode = "VALIDATION_FAILED" // 422
	ErrUpstream       ErrorCode = "UPSTREAM"          // 502
	ErrInternal       ErrorCode = "INTERNAL"          // 500
)

// FolioError represents a structured error with code, status, and details.
type FolioError struct {
	Code    ErrorCode
	Status  int
	Message string
	Details map[string]any

	cause error
}

// Error implements the error interface.
func (e *FolioError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause, if any.
func (e *FolioError) Unwrap() error {
	return e.cause
}

// NewInvalidRequest creates a 400 error for invalid request parameters.
func NewInvalidRequest(msg string) *FolioError {
	return &FolioError{
		Code:    ErrInvalidRequest,
		Status:  400,
		Message: msg,
	}
}

// NewNotFound creates a 404 error for missing content.
func NewNotFound(kind, identifier string) *FolioError {
	return &FolioError{
		Code:    ErrNotFound,
		Status:  404,
		Message: fmt.Sprintf("%s not found: %s", kind, identifier),
		Details: map[string]any{"kind": kind, "identifier": identifier},
	}
}

// NewValidation creates a 422 error carrying per-field messages.
func NewValidation(fields map[string]string) *FolioError {
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)

	msgs := make([]string, 0, len(names))
	for _, name := range names {
		msgs = append(msgs, fmt.Sprintf("%s: %s", name, fields[name]))
	}

	details := make(map[string]any, len(fields))
	for k, v := range fields {
		details[k] = v
	}

	return &FolioError{
		Code:    ErrValidation,
		Status:  422,
		Message: "validation failed: " + strings.Join(msgs, "; "),
		Details: map[string]any{"fields": details},
	}
}

// NewUpstream creates a 502 error for a failed call to a remote service.
func NewUpstream(service string, err error) *FolioError {
	msg := service + " request failed"
	if err != nil {
		msg = fmt.Sprintf("%s request failed: %v", service, err)
	}
	return &FolioError{
		Code:    ErrUpstream,
		Status:  502,
		Message: msg,
		Details: map[string]any{"service": service},
		cause:   err,
	}
}

// NewInternal creates a 500 error for unexpected internal errors.
func NewInternal(err error) *FolioError {
	msg := "internal error"
	if err != nil {
		msg = err.Error()
	}
	return &FolioError{
		Code:    ErrInternal,
		Status:  500,
		Message: msg,
		cause:   err,
	}
}

// Is checks if an error (or anything it wraps) is a FolioError with the given code.
func Is(err error, code ErrorCode) bool {
	var fErr *FolioError
	if stderrors.As(err, &fErr) {
		return fErr.Code == code
	}
	return false
}

// Find returns the FolioError in err's chain, if any.
func Find(err error) (*FolioError, bool) {
	var fErr *FolioError
	if stderrors.As(err, &fErr) {
		return fErr, true
	}
	return nil, false
}

// StatusFor returns the HTTP status of code.
func StatusFor(code ErrorCode) int {
	switch code {
	case ErrInvalidRequest:
		return 400
	case ErrNotFound:
		return 404
	case ErrValidation:
		return 422
	case ErrUpstream:
		return 502
	default:
		return 500
	}
}

// As extracts a FolioError from err, converting unknown errors to INTERNAL.
func As(err error) *FolioError {
	var fErr *FolioError
	if stderrors.As(err, &fErr) {
		return fErr
	}
	return NewInternal(err)
}

// FieldErrors returns the per-field messages of a validation error, or nil.
func FieldErrors(err error) map[string]string {
	var fErr *FolioError
	if !stderrors.As(err, &fErr) || fErr.Code != ErrValidation {
		return nil
	}
	raw, ok := fErr.Details["fields"].(map[string]any)
	if !ok {
		return nil
	}
	out := make(map[string]string, len(raw))
	for k, v := range raw {
		if s, ok := v.(string); ok {
			out[k] = s
		}
	}
	return out
}
