// Package errors provides structured error types for gatewalk.
//
// Every fallible operation in the netlist model and the traversal and
// abstraction engines returns an [*Error] carrying a machine-readable [Code].
// Callers may wrap these errors with additional context using fmt.Errorf and
// %w; the code stays reachable through the chain.
//
// # Error Codes
//
//   - INVALID_ARGUMENT: nil start entity, missing mandatory filter, bad pin
//   - NOT_IN_NETLIST: entity is deleted or belongs to another netlist
//   - ID_IN_USE: explicit id already taken
//   - UNSUPPORTED_DIRECTION: direction value not meaningful for the search
//   - LOOKUP_MISS: abstraction queried with an endpoint it was not built over
//   - CONCURRENT_MUTATION: netlist mutated while a traversal was in flight
//
// "No match found" is never an error.
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvalidArgument, "nil gate given as start")
//	if errors.Is(err, errors.ErrCodeInvalidArgument) {
//	    // Handle validation error
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeInvalidLibrary, origErr, "load %s", path)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Graph model and engine errors
	ErrCodeInvalidArgument      Code = "INVALID_ARGUMENT"
	ErrCodeNotInNetlist         Code = "NOT_IN_NETLIST"
	ErrCodeIDInUse              Code = "ID_IN_USE"
	ErrCodeUnsupportedDirection Code = "UNSUPPORTED_DIRECTION"
	ErrCodeLookupMiss           Code = "LOOKUP_MISS"
	ErrCodeConcurrentMutation   Code = "CONCURRENT_MUTATION"

	// Input validation errors
	ErrCodeInvalidInput      Code = "INVALID_INPUT"
	ErrCodeInvalidLibrary    Code = "INVALID_LIBRARY"
	ErrCodeInvalidExpression Code = "INVALID_EXPRESSION"
	ErrCodeInvalidPath       Code = "INVALID_PATH"

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

// Context prefixes the message of a coded error while keeping its code, so
// callers can re-propagate an engine error with their own context:
//
//	return errors.Context(err, "abstraction over %d gates", n)
//
// Non-coded errors are wrapped with fmt.Errorf.
func Context(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return &Error{
			Code:    e.Code,
			Message: fmt.Sprintf(format, args...) + ": " + e.Message,
			Cause:   e.Cause,
		}
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}
