// Package errors provides structured error types for slotgraph.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across the registry, graph and CLI
//   - Machine-readable error codes for programmatic handling
//   - User-friendly error messages
//   - Error wrapping with context preservation
//
// # Error Codes
//
// The registry and topology errors are:
//   - INVALID_TYPE: a blueprint that cannot construct nodes
//   - NOT_FOUND: unknown node type or link id in a caller-facing lookup
//   - DISCONNECTED: slot operation on a node that is not attached to a graph
//   - MISSING_TYPE: a serialized graph references an unregistered type
//
// Connection attempts can additionally fail with INVALID_SLOT, TYPE_MISMATCH
// or DUPLICATE_LINK. None of these leave partial state behind.
//
// # Usage
//
//	err := errors.New(errors.ErrCodeNotFound, "node type not found: %s", key)
//	if errors.Is(err, errors.ErrCodeNotFound) {
//	    // Handle lookup error
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeInvalidFormat, origErr, "decode %s", path)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Registry errors
	ErrCodeInvalidType Code = "INVALID_TYPE"
	ErrCodeNotFound    Code = "NOT_FOUND"
	ErrCodeMissingType Code = "MISSING_TYPE"

	// Topology errors
	ErrCodeDisconnected  Code = "DISCONNECTED"
	ErrCodeInvalidSlot   Code = "INVALID_SLOT"
	ErrCodeTypeMismatch  Code = "TYPE_MISMATCH"
	ErrCodeDuplicateLink Code = "DUPLICATE_LINK"
	ErrCodeRejected      Code = "CONNECTION_REJECTED"

	// Input validation errors
	ErrCodeInvalidInput  Code = "INVALID_INPUT"
	ErrCodeInvalidFormat Code = "INVALID_FORMAT"
	ErrCodeInvalidPath   Code = "INVALID_PATH"

	// Internal errors
	ErrCodeInternal Code = "INTERNAL_ERROR"
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
