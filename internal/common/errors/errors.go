// Package errors provides standardized error handling for the classification assistant.
package errors

import (
	"fmt"
	"strings"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	// Backend communication
	ErrCodeTransportFailure    ErrorCode = "TRANSPORT_FAILURE"
	ErrCodeBackendTimeout      ErrorCode = "BACKEND_TIMEOUT"
	ErrCodeServerReportedError ErrorCode = "SERVER_REPORTED_ERROR"

	// Concurrency guards
	ErrCodeSubmissionInFlight ErrorCode = "SUBMISSION_IN_FLIGHT"
	ErrCodeTurnInFlight       ErrorCode = "TURN_IN_FLIGHT"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// ==========================
// 2. Error Constructors
// ==========================

// NewTransportFailureError creates a retryable backend transport error.
func NewTransportFailureError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeTransportFailure,
		Message:   "Could not reach the classification backend",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewBackendTimeoutError creates a retryable backend timeout error.
func NewBackendTimeoutError(operation string) *StandardError {
	return &StandardError{
		Code:      ErrCodeBackendTimeout,
		Message:   "Backend call exceeded its timeout",
		Details:   fmt.Sprintf("operation: %s", operation),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewServerReportedError creates a non-retryable error carrying the backend's
// own message and details verbatim.
func NewServerReportedError(message, details string) *StandardError {
	if message == "" {
		message = "The backend reported an error"
	}
	return &StandardError{
		Code:      ErrCodeServerReportedError,
		Message:   message,
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewSubmissionInFlightError rejects a classification submitted while a
// previous one is still pending.
func NewSubmissionInFlightError() *StandardError {
	return &StandardError{
		Code:      ErrCodeSubmissionInFlight,
		Message:   "A classification is already in progress",
		Details:   "wait for the current submission to finish before submitting again",
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewTurnInFlightError rejects a chat message sent while a previous turn is
// still awaiting its reply.
func NewTurnInFlightError() *StandardError {
	return &StandardError{
		Code:      ErrCodeTurnInFlight,
		Message:   "The assistant is still answering the previous message",
		Details:   "wait for the current turn to finish before sending again",
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// ==========================
// 3. Utility Functions
// ==========================

// IsRetryable checks if an error is a retryable StandardError.
func IsRetryable(err error) bool {
	if stdErr, ok := err.(*StandardError); ok {
		return stdErr.Retryable
	}
	return false
}

// GetErrorCategory returns the category of the error code.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.Contains(codeStr, "TRANSPORT") || strings.Contains(codeStr, "TIMEOUT"):
		return "TRANSPORT"
	case strings.Contains(codeStr, "SERVER"):
		return "BACKEND"
	case strings.Contains(codeStr, "IN_FLIGHT"):
		return "CONCURRENCY"
	default:
		return "LOCAL"
	}
}
