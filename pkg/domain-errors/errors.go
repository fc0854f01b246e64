// Package domainerrors is the single error taxonomy shared by services and the HTTP boundary.
//
// Every error that crosses a service boundary is an *Error carrying a Code. Stores return
// sentinel facts (see pkg/platform/sentinel); services translate those facts into coded errors;
// the HTTP layer serializes them with an exhaustive switch over Code.
package domainerrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Code identifies an error kind. The string value is the machine-readable code in the API envelope.
type Code string

const (
	CodeValidation      Code = "VALIDATION_ERROR"
	CodeUnauthorized    Code = "UNAUTHORIZED"
	CodeForbidden       Code = "FORBIDDEN"
	CodeNotFound        Code = "NOT_FOUND"
	CodeConflict        Code = "CONFLICT"
	CodeBadRequest      Code = "BAD_REQUEST"
	CodeDatabase        Code = "DATABASE_ERROR"
	CodeInternal        Code = "INTERNAL_SERVER_ERROR"
	CodeExternalService Code = "EXTERNAL_SERVICE_ERROR"

	// CodeInvariantViolation is raised by model constructors. Services convert it to
	// CodeValidation before it reaches a client.
	CodeInvariantViolation Code = "INVARIANT_VIOLATION"
)

// Error is the tagged error variant.
type Error struct {
	Code    Code
	Message string
	Details any
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is an *Error with the same code and message.
// Lets tests use errors.Is against a freshly constructed expected error.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code && e.Message == t.Message
}

// New creates a coded error.
func New(code Code, msg string) *Error {
	return &Error{Code: code, Message: msg}
}

// Newf creates a coded error with a formatted message.
func Newf(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// WithDetails creates a coded error carrying structured details (e.g. per-field validation failures).
func WithDetails(code Code, msg string, details any) *Error {
	return &Error{Code: code, Message: msg, Details: details}
}

// Wrap attaches a code and message to an underlying cause.
func Wrap(err error, code Code, msg string) *Error {
	return &Error{Code: code, Message: msg, Err: err}
}

// As returns the outermost *Error in err's chain.
func As(err error) (*Error, bool) {
	var de *Error
	if errors.As(err, &de) {
		return de, true
	}
	return nil, false
}

// InvariantAsValidation recodes a domain INVARIANT_VIOLATION as VALIDATION_ERROR,
// keeping only its message. Any other error is returned unchanged.
func InvariantAsValidation(err error) error {
	if de, ok := As(err); ok && de.Code == CodeInvariantViolation {
		return New(CodeValidation, de.Message)
	}
	return err
}

// HasCode reports whether the outermost *Error in err's chain carries code.
func HasCode(err error, code Code) bool {
	de, ok := As(err)
	return ok && de.Code == code
}

// Is is shorthand for HasCode.
func Is(err error, code Code) bool {
	return HasCode(err, code)
}

// IsTyped reports whether err is already part of the taxonomy. Services re-return typed
// errors unchanged and wrap everything else.
func IsTyped(err error) bool {
	_, ok := As(err)
	return ok
}

// Name is the error class name used in the API envelope.
func (c Code) Name() string {
	switch c {
	case CodeValidation, CodeInvariantViolation:
		return "ValidationError"
	case CodeUnauthorized:
		return "UnauthorizedError"
	case CodeForbidden:
		return "ForbiddenError"
	case CodeNotFound:
		return "NotFoundError"
	case CodeConflict:
		return "ConflictError"
	case CodeBadRequest:
		return "BadRequestError"
	case CodeDatabase:
		return "DatabaseError"
	case CodeExternalService:
		return "ExternalServiceError"
	case CodeInternal:
		return "InternalServerError"
	}
	return "InternalServerError"
}

// HTTPStatus maps a code to its response status.
func (c Code) HTTPStatus() int {
	switch c {
	case CodeValidation, CodeInvariantViolation, CodeBadRequest:
		return http.StatusBadRequest
	case CodeUnauthorized:
		return http.StatusUnauthorized
	case CodeForbidden:
		return http.StatusForbidden
	case CodeNotFound:
		return http.StatusNotFound
	case CodeConflict:
		return http.StatusConflict
	case CodeExternalService:
		return http.StatusBadGateway
	case CodeDatabase, CodeInternal:
		return http.StatusInternalServerError
	}
	return http.StatusInternalServerError
}

// ToHTTPStatus maps a code to its response status.
func ToHTTPStatus(code Code) int {
	return code.HTTPStatus()
}
