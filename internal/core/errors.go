// internal/core/errors.go
package core

import "fmt"

// Error represents a structured error with code and optional cause.
type Error struct {
	Code    string
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As support.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is implements errors.Is matching by code.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Code == t.Code
	}
	return false
}

// WrapError creates a new error with the same code but with a cause.
func WrapError(base *Error, cause error) *Error {
	return &Error{
		Code:    base.Code,
		Message: base.Message,
		Cause:   cause,
	}
}

// Predefined errors
var (
	// Input errors
	ErrIO         = &Error{Code: "IO_ERROR", Message: "input file unreadable"}
	ErrInvalidURL = &Error{Code: "INVALID_URL", Message: "url cannot be converted to a SURL"}
	ErrNoInput    = &Error{Code: "NO_INPUT", Message: "no files to aggregate"}

	// Backend errors
	ErrBackendUnavailable   = &Error{Code: "BACKEND_UNAVAILABLE", Message: "storage backend unavailable"}
	ErrAttributeLookup      = &Error{Code: "ATTRIBUTE_LOOKUP", Message: "attribute lookup failed"}
	ErrUnsupportedAttribute = &Error{Code: "UNSUPPORTED_ATTRIBUTE", Message: "attribute not supported by backend"}

	// Config errors
	ErrConfigInvalid = &Error{Code: "CONFIG_INVALID", Message: "configuration invalid"}
	ErrConfigMissing = &Error{Code: "CONFIG_MISSING", Message: "required configuration missing"}
)
