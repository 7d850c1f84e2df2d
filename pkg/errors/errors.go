// Package errors provides structured error types for listtree.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across the tree model, layout engine and CLI
//   - Machine-readable error codes for programmatic handling
//   - User-friendly error messages
//   - Error wrapping with context preservation
//
// # Error Codes
//
// Error codes follow a hierarchical naming convention:
//   - INVALID_*: Argument and input validation failures (recoverable)
//   - INVARIANT_VIOLATION: Internal consistency failures (programmer error)
//   - REENTRANT_MUTATION, COMMAND_DISABLED: Misuse of the mutation API
//   - NOT_FOUND, INTERNAL_*: Outer layers (scripts, pipeline, server)
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvalidArgument, "vertical index %d out of range", vi)
//	if errors.Is(err, errors.ErrCodeInvalidArgument) {
//	    // Handle validation error
//	}
//
//	// Wrap a sentinel so both code and cause can be tested
//	err := errors.Wrap(errors.ErrCodeInvalidArgument, ErrCycle, "cannot reparent %d", id)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Input validation errors
	ErrCodeInvalidArgument Code = "INVALID_ARGUMENT"
	ErrCodeInvalidScript   Code = "INVALID_SCRIPT"
	ErrCodeInvalidFormat   Code = "INVALID_FORMAT"
	ErrCodeInvalidLabel    Code = "INVALID_LABEL"

	// Consistency errors
	ErrCodeInvariantViolation Code = "INVARIANT_VIOLATION"

	// API misuse
	ErrCodeReentrantMutation Code = "REENTRANT_MUTATION"
	ErrCodeCommandDisabled   Code = "COMMAND_DISABLED"

	// Resource not found errors
	ErrCodeNotFound     Code = "NOT_FOUND"
	ErrCodeFileNotFound Code = "FILE_NOT_FOUND"

	// Internal errors
	ErrCodeInternal    Code = "INTERNAL_ERROR"
	ErrCodeUnsupported Code = "UNSUPPORTED"
)

// Error is a structured error with a code and optional cause.
type Error struct {
	Code    Code   // Machine-readable error code
	Message string // Human-readable message
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

// IsFatal reports whether err signals a broken internal invariant rather
// than a rejected request. Fatal errors are not user-recoverable.
func IsFatal(err error) bool {
	return Is(err, ErrCodeInvariantViolation)
}
