package apperr

import (
	"errors"
	"net/http"
)

// Error is a domain error carrying a stable machine-readable code and the
// HTTP status it maps to at the boundary. Services return these; handlers
// never invent status codes themselves.
type Error struct {
	Code    string
	Status  int
	Message string
}

// Error implements the error interface
func (e *Error) Error() string {
	return e.Message
}

// Authentication and authorization errors.
//
// ErrInvalidToken and ErrExpiredToken are distinct values so tests and
// internal callers can tell them apart, but both carry the same code and
// status: the boundary must not reveal which check failed.
var (
	ErrInvalidCredentials = &Error{Code: "a-1", Status: http.StatusUnauthorized, Message: "invalid credentials"}
	ErrUsernameTaken      = &Error{Code: "a-2", Status: http.StatusConflict, Message: "username already exists"}
	ErrEmailTaken         = &Error{Code: "a-2", Status: http.StatusConflict, Message: "email already exists"}
	ErrInvalidToken       = &Error{Code: "a-3", Status: http.StatusForbidden, Message: "invalid or expired token"}
	ErrExpiredToken       = &Error{Code: "a-3", Status: http.StatusForbidden, Message: "invalid or expired token"}
	ErrForbidden          = &Error{Code: "a-4", Status: http.StatusForbidden, Message: "insufficient permissions"}
	ErrAuthRequired       = &Error{Code: "a-5", Status: http.StatusForbidden, Message: "authentication required"}
)

// Product errors.
var (
	ErrProductNotFound  = &Error{Code: "pdm-1", Status: http.StatusNotFound, Message: "product not found"}
	ErrProductNameTaken = &Error{Code: "pdm-2", Status: http.StatusConflict, Message: "product name already exists"}
)

// ErrInternal is returned for anything unanticipated. The message is
// deliberately generic; details stay in the logs.
var ErrInternal = &Error{Code: "g-1", Status: http.StatusInternalServerError, Message: "an internal error occurred"}

// Validation creates a 400 error with the generic v-1 code, used for
// malformed request bodies where no single field is at fault.
func Validation(message string) *Error {
	return &Error{Code: "v-1", Status: http.StatusBadRequest, Message: message}
}

// ValidationCode creates a 400 error carrying a field-level validation
// code (v-1..v-14). The code identifies the first violated rule.
func ValidationCode(code, message string) *Error {
	return &Error{Code: code, Status: http.StatusBadRequest, Message: message}
}

// From extracts an *Error from err, unwrapping as needed. Unknown errors
// collapse to ErrInternal so no internal detail leaks to clients.
func From(err error) *Error {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return ErrInternal
}

// IsConflict reports whether err maps to a 409 response
func IsConflict(err error) bool {
	return From(err).Status == http.StatusConflict
}

// IsNotFound reports whether err maps to a 404 response
func IsNotFound(err error) bool {
	return From(err).Status == http.StatusNotFound
}
