// Package errors provides structured error types for pkgtrack.
//
// This package defines error codes and types that enable:
//   - Consistent failure reporting from every upstream data source
//   - Machine-readable error codes for programmatic handling
//   - User-friendly messages for the tracking store and the UI
//
// # Error Codes
//
//   - INVALID_ARGUMENT: caller supplied an empty or malformed package name
//   - NETWORK: the provider could not be reached
//   - NOT_FOUND: the provider answered with an error payload or non-2xx status
//   - INVALID_RESPONSE: the provider answered with a body we cannot decode
//   - UPSTREAM: any failure of the release-timeline provider
//
// # Usage
//
//	err := errors.New(errors.ErrCodeNotFound, "package %s not found", name)
//	if errors.Is(err, errors.ErrCodeNotFound) {
//	    // Handle missing package
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeNetwork, origErr, "failed to reach %s", url)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	ErrCodeInvalidArgument Code = "INVALID_ARGUMENT"
	ErrCodeNetwork         Code = "NETWORK"
	ErrCodeNotFound        Code = "NOT_FOUND"
	ErrCodeInvalidResponse Code = "INVALID_RESPONSE"
	ErrCodeUpstream        Code = "UPSTREAM"
	ErrCodeInternal        Code = "INTERNAL_ERROR"
)

// Error is a structured error with a code and optional cause.
type Error struct {
	Code    Code   // Machine-readable error code
	Message string // Human-readable message
	Package string // Canonical package name the failure concerns (optional)
	Status  int    // Transport status code, 0 when unavailable
	Cause   error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *Error) Unwrap() error {
	return e.Cause
}

// WithPackage sets the package name and returns e for chaining.
func (e *Error) WithPackage(name string) *Error {
	e.Package = name
	return e
}

// WithStatus sets the transport status code and returns e for chaining.
func (e *Error) WithStatus(status int) *Error {
	e.Status = status
	return e
}

// New creates a new Error with the given code and formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap creates a new Error wrapping an existing error.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// Is reports whether err has the given error code.
// It unwraps the error chain looking for an *Error with a matching code.
func Is(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// As returns the first *Error in err's chain.
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// GetCode extracts the error code from an error, if available.
// Returns empty string if the error is not an *Error.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// UserMessage returns a user-friendly message for the error.
// For *Error types, returns the message without the code prefix.
// For other errors, returns the error string as-is.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}
