// Package errors provides structured errors for the runbook tools.
package errors

import (
	"encoding/json"
	"fmt"
)

// ErrorCode represents a specific error condition
type ErrorCode string

const (
	// Configuration errors
	ErrCodeConfigNotFound   ErrorCode = "CONFIG_NOT_FOUND"
	ErrCodeConfigInvalid    ErrorCode = "CONFIG_INVALID"
	ErrCodeConfigValidation ErrorCode = "CONFIG_VALIDATION"

	// Daemon lifecycle errors
	ErrCodeDaemonRunning    ErrorCode = "DAEMON_ALREADY_RUNNING"
	ErrCodeDaemonNotRunning ErrorCode = "DAEMON_NOT_RUNNING"
	ErrCodeDaemonListen     ErrorCode = "DAEMON_LISTEN"

	// Transport errors
	ErrCodeTransportDial   ErrorCode = "TRANSPORT_DIAL"
	ErrCodeTransportClosed ErrorCode = "TRANSPORT_CLOSED"
	ErrCodeProtocol        ErrorCode = "PROTOCOL_ERROR"

	// Hook pipeline errors
	ErrCodeHookPayload ErrorCode = "HOOK_PAYLOAD_INVALID"
	ErrCodeHookDenied  ErrorCode = "HOOK_COMMAND_DENIED"

	// Editor bridge errors
	ErrCodeBridgeAttach ErrorCode = "BRIDGE_ATTACH"

	// General errors
	ErrCodeInternal     ErrorCode = "INTERNAL_ERROR"
	ErrCodeInvalidInput ErrorCode = "INVALID_INPUT"
)

// RunbookError represents a structured error with context
type RunbookError struct {
	Code    ErrorCode              `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
	Cause   error                  `json:"-"`
}

// Error implements the error interface
func (e *RunbookError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap implements the errors.Unwrap interface
func (e *RunbookError) Unwrap() error {
	return e.Cause
}

// WithDetail adds a detail to the error
func (e *RunbookError) WithDetail(key string, value interface{}) *RunbookError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// ToJSON converts the error to JSON
func (e *RunbookError) ToJSON() string {
	data, _ := json.MarshalIndent(e, "", "  ")
	return string(data)
}

// New creates a new RunbookError
func New(code ErrorCode, message string) *RunbookError {
	return &RunbookError{
		Code:    code,
		Message: message,
	}
}

// Wrap wraps an existing error with a RunbookError
func Wrap(err error, code ErrorCode, message string) *RunbookError {
	return &RunbookError{
		Code:    code,
		Message: message,
		Cause:   err,
	}
}

// Is checks if an error is a specific RunbookError code
func Is(err error, code ErrorCode) bool {
	if err == nil {
		return false
	}

	runbookErr, ok := err.(*RunbookError)
	if !ok {
		// Try to unwrap
		if unwrapper, ok := err.(interface{ Unwrap() error }); ok {
			return Is(unwrapper.Unwrap(), code)
		}
		return false
	}

	return runbookErr.Code == code
}

// GetCode extracts the error code from an error
func GetCode(err error) ErrorCode {
	if err == nil {
		return ""
	}

	runbookErr, ok := err.(*RunbookError)
	if !ok {
		// Try to unwrap
		if unwrapper, ok := err.(interface{ Unwrap() error }); ok {
			return GetCode(unwrapper.Unwrap())
		}
		return ""
	}

	return runbookErr.Code
}
