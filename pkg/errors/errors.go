// Package errors provides structured error types for beltwright.
//
// Every failure that leaves the core carries a machine-readable [Code] and
// enough context (ids, counts, hashes) to diagnose it without re-running the
// pipeline. Codes are grouped into the categories used throughout the
// project:
//   - Validation: malformed persisted graphs, configs or blueprint headers
//   - Reference: dangling package hashes, node or slot references
//   - Capacity: a layout region cannot hold the objects assigned to it
//   - Checksum: the blueprint digest does not match its content
//
// Unknown object types are not an error category at all: the parameter codec
// falls back to a passthrough schema for them.
//
// # Usage
//
//	err := errors.New(errors.ErrCodePackageNotFound, "package %s not in registry", hash)
//	if errors.IsReference(err) {
//	    // Handle dangling reference
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeInvalidGraph, origErr, "decode envelope")
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Validation errors
	ErrCodeInvalidInput     Code = "INVALID_INPUT"
	ErrCodeInvalidGraph     Code = "INVALID_GRAPH"
	ErrCodeInvalidConfig    Code = "INVALID_CONFIG"
	ErrCodeInvalidBlueprint Code = "INVALID_BLUEPRINT"
	ErrCodeInvalidPath      Code = "INVALID_PATH"

	// Reference errors
	ErrCodePackageNotFound    Code = "PACKAGE_NOT_FOUND"
	ErrCodePackageDataCorrupt Code = "PACKAGE_DATA_CORRUPT"
	ErrCodePackageCycle       Code = "PACKAGE_CYCLE"
	ErrCodeDanglingReference  Code = "DANGLING_REFERENCE"
	ErrCodeFileNotFound       Code = "FILE_NOT_FOUND"

	// Capacity errors
	ErrCodeLayoutOverflow Code = "LAYOUT_OVERFLOW"

	// Integrity errors
	ErrCodeChecksumMismatch Code = "CHECKSUM_MISMATCH"
	ErrCodeSchemaMismatch   Code = "SCHEMA_MISMATCH"

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
// It unwraps the error chain looking for an *Error or *CapacityError with a
// matching code.
func Is(err error, code Code) bool {
	return GetCode(err) == code && code != ""
}

// GetCode extracts the error code from an error, if available.
// Returns empty string if the error carries no code.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	var ce *CapacityError
	if errors.As(err, &ce) {
		return ErrCodeLayoutOverflow
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

// CapacityError reports that a layout region cannot hold the required number
// of objects.
type CapacityError struct {
	Category  string // Region preset name (router, monitor, source, ...)
	Required  int    // Objects that had to be placed
	Available int    // Objects the region can hold
}

// Error implements the error interface.
func (e *CapacityError) Error() string {
	return fmt.Sprintf("%s: region %q holds %d objects, %d required",
		ErrCodeLayoutOverflow, e.Category, e.Available, e.Required)
}

// Code returns the error code for this error type.
func (e *CapacityError) Code() Code {
	return ErrCodeLayoutOverflow
}

// IsValidation reports whether err is a malformed-input error.
func IsValidation(err error) bool {
	switch GetCode(err) {
	case ErrCodeInvalidInput, ErrCodeInvalidGraph, ErrCodeInvalidConfig,
		ErrCodeInvalidBlueprint, ErrCodeInvalidPath:
		return true
	}
	return false
}

// IsReference reports whether err is a dangling-reference error.
func IsReference(err error) bool {
	switch GetCode(err) {
	case ErrCodePackageNotFound, ErrCodePackageDataCorrupt, ErrCodePackageCycle,
		ErrCodeDanglingReference, ErrCodeFileNotFound:
		return true
	}
	return false
}

// IsCapacity reports whether err is a layout capacity error.
func IsCapacity(err error) bool {
	return GetCode(err) == ErrCodeLayoutOverflow
}

// IsChecksum reports whether err is a blueprint digest mismatch.
func IsChecksum(err error) bool {
	return GetCode(err) == ErrCodeChecksumMismatch
}
