// Package errors provides structured error types for gdatamvn.
//
// Every pipeline stage reports failures as an [*Error] carrying a
// machine-readable [Code], a human-readable message, and an optional cause.
// Callers can branch on the stage that failed without string matching:
//
//	_, err := fetcher.Distribution(ctx, "1.41.1")
//	if errors.Is(err, errors.ErrCodeDownload) {
//	    // the archive could not be downloaded
//	}
//
// # Error Codes
//
// Codes follow a hierarchical naming convention:
//   - INVALID_*: Input validation failures
//   - NOT_*: Resources that are missing or were never produced
//   - *_FAILED: A pipeline stage failed
//   - INTERNAL_*: Unexpected internal errors
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
	ErrCodeInvalidInput    Code = "INVALID_INPUT"
	ErrCodeInvalidVersion  Code = "INVALID_VERSION"
	ErrCodeInvalidArtifact Code = "INVALID_ARTIFACT"
	ErrCodeInvalidConfig   Code = "INVALID_CONFIG"
	ErrCodeInvalidPath     Code = "INVALID_PATH"

	// Missing resources
	ErrCodeNotFound    Code = "NOT_FOUND"
	ErrCodeNotProduced Code = "NOT_PRODUCED"

	// Network errors
	ErrCodeNetwork  Code = "NETWORK_ERROR"
	ErrCodeDownload Code = "DOWNLOAD_FAILED"

	// Stage failures
	ErrCodeExtract  Code = "EXTRACT_FAILED"
	ErrCodeAnalyzer Code = "ANALYZER_FAILED"
	ErrCodeParse    Code = "PARSE_FAILED"
	ErrCodeWrite    Code = "WRITE_FAILED"
	ErrCodeRender   Code = "RENDER_FAILED"

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
