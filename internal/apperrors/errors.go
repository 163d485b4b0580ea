// Package apperrors carries the error taxonomy shared by services and
// handlers. Services return coded errors; handlers translate them to HTTP
// statuses without leaking internals to the response body.
package apperrors

import (
	"errors"
	"net/http"
)

type Code string

const (
	CodeValidation   Code = "validation"
	CodeConflict     Code = "conflict"
	CodeNotFound     Code = "not_found"
	CodePrecondition Code = "precondition"
	CodeStorage      Code = "storage"
	CodeUnauthorized Code = "unauthorized"
	CodeForbidden    Code = "forbidden"
	CodeRateLimited  Code = "rate_limited"
)

type Error struct {
	Code    Code
	Message string
	// Reason is a stable machine-readable code surfaced to clients,
	// e.g. "emailTaken" on a duplicate registration.
	Reason string
	// Fields lists offending field names for validation errors. Only
	// sanitized field names ever reach the client.
	Fields []string
	cause  error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return string(e.Code) + ": " + e.Message + ": " + e.cause.Error()
	}
	return string(e.Code) + ": " + e.Message
}

func (e *Error) Unwrap() error { return e.cause }

func New(code Code, message string, cause error) *Error {
	return &Error{Code: code, Message: message, cause: cause}
}

func Validation(message string, fields []string) *Error {
	return &Error{Code: CodeValidation, Message: message, Fields: fields}
}

func Conflict(message, reason string, cause error) *Error {
	return &Error{Code: CodeConflict, Message: message, Reason: reason, cause: cause}
}

func NotFound(message string) *Error {
	return &Error{Code: CodeNotFound, Message: message}
}

func Precondition(message string) *Error {
	return &Error{Code: CodePrecondition, Message: message}
}

func Storage(message string, cause error) *Error {
	return &Error{Code: CodeStorage, Message: message, cause: cause}
}

// Is reports whether err is an *Error carrying the given code.
func Is(err error, code Code) bool {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}

// HTTPStatus maps an error onto a response status. Anything uncoded is a
// server error.
func HTTPStatus(err error) int {
	var appErr *Error
	if !errors.As(err, &appErr) {
		return http.StatusInternalServerError
	}
	switch appErr.Code {
	case CodeValidation, CodePrecondition:
		return http.StatusBadRequest
	case CodeConflict:
		return http.StatusConflict
	case CodeNotFound:
		return http.StatusNotFound
	case CodeUnauthorized:
		return http.StatusUnauthorized
	case CodeForbidden:
		return http.StatusForbidden
	case CodeRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}
