// Package errors provides structured error types for the stirlingforge pipeline.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across CLI and API
//   - Machine-readable error codes for programmatic handling
//   - User-friendly error messages
//   - Error wrapping with context preservation
//
// # Error Codes
//
// Each code maps to one failure class in the generation pipeline. Codes for
// stages 1-4 (registry, derived geometry, performance, layout) are fatal: the
// run is aborted and no design snapshot is produced. CATALOG_UNAVAILABLE is
// the one non-fatal code; it degrades manufacturability verdicts to "unknown"
// and is surfaced as a warning on an otherwise complete snapshot.
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvalidParameter, "stroke %v mm outside [12, 20]", v)
//	if errors.Is(err, errors.ErrCodeInvalidParameter) {
//	    // Handle validation error
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeGeometryBackend, origErr, "build %s", componentID)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for the pipeline error taxonomy.
const (
	// Registry errors (stage 1, fatal)
	ErrCodeInvalidParameter   Code = "INVALID_PARAMETER"
	ErrCodeDuplicateParameter Code = "DUPLICATE_PARAMETER"

	// Derived geometry errors (stage 2, fatal)
	ErrCodeMissingInput     Code = "MISSING_INPUT"
	ErrCodeCyclicDependency Code = "CYCLIC_DEPENDENCY"
	ErrCodeUnitMismatch     Code = "UNIT_MISMATCH"

	// Performance errors (stage 3, fatal)
	ErrCodePhysicallyInvalid Code = "PHYSICALLY_INVALID"

	// Layout errors (stage 4, fatal)
	ErrCodeLayoutOverlap Code = "LAYOUT_OVERLAP"

	// Backend errors (fatal per component, siblings still attempted)
	ErrCodeGeometryBackend Code = "GEOMETRY_BACKEND"

	// Catalog errors (stage 5, non-fatal: verdicts degrade to unknown)
	ErrCodeCatalogUnavailable Code = "CATALOG_UNAVAILABLE"

	// Surrounding infrastructure
	ErrCodeInvalidOptions   Code = "INVALID_OPTIONS"
	ErrCodeSnapshotNotFound Code = "SNAPSHOT_NOT_FOUND"
	ErrCodeStore            Code = "STORE_ERROR"
	ErrCodeInternal         Code = "INTERNAL_ERROR"
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

// Fatal reports whether err aborts the whole generation run.
// Catalog unavailability is the only non-fatal code in the taxonomy;
// unknown (non-*Error) errors are treated as fatal.
func Fatal(err error) bool {
	if err == nil {
		return false
	}
	return GetCode(err) != ErrCodeCatalogUnavailable
}
