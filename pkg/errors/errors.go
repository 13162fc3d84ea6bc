// Package errors provides structured error types for schemaflow.
//
// The schema-to-diagram engine never lets an error escape as a crash: every
// public operation returns a best-effort result. Errors produced along the
// way are still classified so that callers can log them consistently and
// the bridge server can map them to HTTP status codes.
//
// # Error Codes
//
// Codes follow the taxonomy of the engine:
//   - SCHEMA_*: the parser collaborator's output could not be read
//   - REFERENCE_*: a reference or group member points at a missing table
//   - STORAGE_*: a layout record could not be read or written
//   - COLOR_*: a color token was rejected
//   - INVALID_*, NOT_FOUND, INTERNAL_ERROR: generic request errors
//
// # Usage
//
//	err := errors.New(errors.ErrCodeColorInvalid, "invalid header color %q", token)
//	if errors.Is(err, errors.ErrCodeColorInvalid) {
//	    // fall back to the theme default
//	}
//
//	err := errors.Wrap(errors.ErrCodeStorageWrite, origErr, "save layout %s", id)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Schema errors (owned by the parser collaborator, surfaced on decode)
	ErrCodeSchemaInvalid Code = "SCHEMA_INVALID"

	// Reference integrity errors (recoverable)
	ErrCodeReferenceDangling Code = "REFERENCE_DANGLING"

	// Storage errors (recoverable)
	ErrCodeStorageRead  Code = "STORAGE_READ"
	ErrCodeStorageWrite Code = "STORAGE_WRITE"

	// Color token errors (recoverable)
	ErrCodeColorInvalid Code = "COLOR_INVALID"

	// Request errors
	ErrCodeInvalidInput Code = "INVALID_INPUT"
	ErrCodeInvalidPath  Code = "INVALID_PATH"
	ErrCodeNotFound     Code = "NOT_FOUND"

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

// Recoverable reports whether err belongs to a category the engine degrades
// around instead of failing: dangling references, storage and color errors.
func Recoverable(err error) bool {
	switch GetCode(err) {
	case ErrCodeReferenceDangling, ErrCodeStorageRead, ErrCodeStorageWrite, ErrCodeColorInvalid:
		return true
	}
	return false
}
