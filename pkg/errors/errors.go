// Package errors provides structured error types for navgraph.
//
// Every navigation operation reports failure through an [*Error] carrying a
// machine-readable [Code]. Callers branch on codes rather than on message text:
//
//	err := nav.Push(ctx, "home", handle, "settings", screen.Stack())
//	switch {
//	case errors.Is(err, errors.ErrCodeOriginNotFound):
//	    // origin is not on screen any more
//	case errors.IsNoChange(err):
//	    // nothing to do
//	}
//
// # Error Codes
//
// Navigation codes mirror the failure modes of the graph mutator:
//   - ORIGIN_NOT_FOUND: push/rewind origin is not tracked
//   - NOT_FOUND: pop target, its parent or its transition record is missing
//   - INCONSISTENT: a slot references a screen the store no longer has
//   - NO_CHANGE: the request is already satisfied (not a real failure)
//   - NOT_TOP_OF_STACK: a stack pop of a screen that has screens stacked above it
//   - HOST_OPERATION_FAILED: the screen host reported a failure
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Navigation errors
	ErrCodeOriginNotFound      Code = "ORIGIN_NOT_FOUND"
	ErrCodeNotFound            Code = "NOT_FOUND"
	ErrCodeInconsistent        Code = "INCONSISTENT"
	ErrCodeNoChange            Code = "NO_CHANGE"
	ErrCodeNotTopOfStack       Code = "NOT_TOP_OF_STACK"
	ErrCodeHostOperationFailed Code = "HOST_OPERATION_FAILED"

	// Input validation errors
	ErrCodeInvalidInput    Code = "INVALID_INPUT"
	ErrCodeDuplicateScreen Code = "DUPLICATE_SCREEN"
	ErrCodeInvalidScript   Code = "INVALID_SCRIPT"
	ErrCodeInvalidConfig   Code = "INVALID_CONFIG"

	// Lifecycle and internal errors
	ErrCodeClosed      Code = "CLOSED"
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

// IsNoChange reports whether err only signals that the request was already satisfied.
func IsNoChange(err error) bool {
	return Is(err, ErrCodeNoChange)
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

// HostFailure wraps a failure message reported by a screen host.
// An empty message yields nil so hosts can forward optional messages directly.
func HostFailure(op, message string) error {
	if message == "" {
		return nil
	}
	return New(ErrCodeHostOperationFailed, "%s: %s", op, message)
}
