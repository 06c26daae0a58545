package errors

import (
	"errors"
	"fmt"
)

// Category groups errors by the subsystem that produced them.
type Category string

const (
	CategoryConfig     Category = "config"
	CategoryParse      Category = "parse"
	CategoryConnection Category = "connection"
	CategoryAuth       Category = "auth"
	CategoryForward    Category = "forward"
	CategoryInternal   Category = "internal"
)

// Common error codes
const (
	// Config error codes
	CodeNoCredential  = "NO_CREDENTIAL"
	CodeInvalidConfig = "INVALID_CONFIG"

	// Parse error codes
	CodeBadFieldCount = "FIELD_COUNT_OUT_OF_RANGE"
	CodeInvalidPort   = "INVALID_PORT"

	// Connection and auth error codes
	CodeConnectionFail = "CONNECTION_FAILED"
	CodeAuthFail       = "AUTHENTICATION_FAILED"

	// Forward error codes
	CodeForwardSetup   = "FORWARD_SETUP_FAILED"
	CodeForwardRuntime = "FORWARD_RUNTIME_ERROR"

	// Internal error codes
	CodeInternal = "INTERNAL_ERROR"
)

// BridgeError is a structured error carrying its category, a stable code and
// whether it should abort the session. Forward runtime errors are the only
// non-fatal kind: the session keeps running and sibling forwards are untouched.
type BridgeError struct {
	Category Category `json:"category"`
	Code     string   `json:"code"`
	Message  string   `json:"message"`
	Cause    error    `json:"cause,omitempty"`
	Fatal    bool     `json:"fatal"`
}

// Error implements the error interface
func (e *BridgeError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s:%s] %s: %v", e.Category, e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s:%s] %s", e.Category, e.Code, e.Message)
}

// Unwrap returns the underlying cause error
func (e *BridgeError) Unwrap() error {
	return e.Cause
}

// IsFatal returns whether the error should abort the session
func (e *BridgeError) IsFatal() bool {
	return e.Fatal
}

// NewError creates a new BridgeError
func NewError(category Category, code, message string, cause error, fatal bool) *BridgeError {
	return &BridgeError{
		Category: category,
		Code:     code,
		Message:  message,
		Cause:    cause,
		Fatal:    fatal,
	}
}

// Convenience constructors for the error kinds the session distinguishes.

// NewConfigError creates a configuration error (always fatal, pre-connect)
func NewConfigError(code, message string, cause error) *BridgeError {
	return NewError(CategoryConfig, code, message, cause, true)
}

// NewNoCredentialError reports that no usable credential was supplied
func NewNoCredentialError(message string) *BridgeError {
	return NewError(CategoryConfig, CodeNoCredential, message, nil, true)
}

// NewParseError creates a forwarding-token parse error. The message must
// contain the offending token verbatim; callers build it that way.
func NewParseError(code, message string) *BridgeError {
	return NewError(CategoryParse, code, message, nil, true)
}

// NewConnectionError creates a transport connection error
func NewConnectionError(message string, cause error) *BridgeError {
	return NewError(CategoryConnection, CodeConnectionFail, message, cause, true)
}

// NewAuthenticationError creates an authentication error
func NewAuthenticationError(message string, cause error) *BridgeError {
	return NewError(CategoryAuth, CodeAuthFail, message, cause, true)
}

// NewForwardSetupError reports a forward that could not start. Unlike runtime
// failures this aborts the session: a forward that cannot even start points
// at a configuration problem.
func NewForwardSetupError(message string, cause error) *BridgeError {
	return NewError(CategoryForward, CodeForwardSetup, message, cause, true)
}

// NewForwardRuntimeError reports an asynchronous failure on a running
// forward. Non-fatal: logged per occurrence, session continues.
func NewForwardRuntimeError(message string, cause error) *BridgeError {
	return NewError(CategoryForward, CodeForwardRuntime, message, cause, false)
}

// NewInternalError creates an uncategorized error (treated as fatal)
func NewInternalError(message string, cause error) *BridgeError {
	return NewError(CategoryInternal, CodeInternal, message, cause, true)
}

// Wrap wraps an error with additional context, preserving the category, code
// and fatality of a BridgeError cause.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}

	var bridgeErr *BridgeError
	if As(err, &bridgeErr) {
		return NewError(
			bridgeErr.Category,
			bridgeErr.Code,
			fmt.Sprintf("%s: %s", message, bridgeErr.Message),
			bridgeErr.Cause,
			bridgeErr.Fatal,
		)
	}

	return fmt.Errorf("%s: %w", message, err)
}

// IsFatal reports whether err should abort the session. Errors that are not
// BridgeErrors are uncategorized and therefore fatal.
func IsFatal(err error) bool {
	if err == nil {
		return false
	}
	var bridgeErr *BridgeError
	if As(err, &bridgeErr) {
		return bridgeErr.Fatal
	}
	return true
}

// Is reports whether any error in err's tree matches target.
// This is a wrapper around the standard errors.Is function.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's tree that matches target, and if one is found, sets
// target to that error value and returns true. Otherwise, it returns false.
// This is a wrapper around the standard errors.As function.
func As(err error, target any) bool {
	return errors.As(err, target)
}
