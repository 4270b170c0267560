package providers

import (
	"errors"
	"fmt"
)

// ErrorCategory defines the normalized failure taxonomy
type ErrorCategory string

const (
	// ErrorTimeout indicates the upstream took too long to respond
	ErrorTimeout ErrorCategory = "timeout"

	// ErrorTransport indicates the request never produced a response
	ErrorTransport ErrorCategory = "transport"

	// ErrorBadData indicates a 200 response whose body lacks expected fields
	ErrorBadData ErrorCategory = "bad_data"

	// ErrorBadStatus indicates an unexpected non-200 status
	ErrorBadStatus ErrorCategory = "bad_status"

	// ErrorProviderOutage indicates a 5xx after transport retries
	ErrorProviderOutage ErrorCategory = "provider_outage"

	// ErrorNotFound indicates the requested record doesn't exist
	ErrorNotFound ErrorCategory = "not_found"

	// ErrorRateLimited indicates too many requests
	ErrorRateLimited ErrorCategory = "rate_limited"

	// ErrorInternal indicates an unexpected internal error
	ErrorInternal ErrorCategory = "internal"
)

// ProviderError wraps upstream failures with normalized categorization
type ProviderError struct {
	Category   ErrorCategory
	Step       string
	Message    string
	Underlying error
	Retryable  bool // Whether a later lookup is likely to succeed
}

// Error implements the error interface
func (e *ProviderError) Error() string {
	if e.Underlying != nil {
		return fmt.Sprintf("%s [%s]: %s: %v", e.Step, e.Category, e.Message, e.Underlying)
	}
	return fmt.Sprintf("%s [%s]: %s", e.Step, e.Category, e.Message)
}

// Unwrap supports error unwrapping
func (e *ProviderError) Unwrap() error {
	return e.Underlying
}

// NewProviderError creates a new normalized provider error
func NewProviderError(category ErrorCategory, step, message string, underlying error) *ProviderError {
	retryable := category == ErrorTimeout ||
		category == ErrorTransport ||
		category == ErrorProviderOutage ||
		category == ErrorRateLimited

	return &ProviderError{
		Category:   category,
		Step:       step,
		Message:    message,
		Underlying: underlying,
		Retryable:  retryable,
	}
}

// NotFound is shorthand for a not_found ProviderError.
func NotFound(step, message string) *ProviderError {
	return NewProviderError(ErrorNotFound, step, message, nil)
}

// Malformed is shorthand for a bad_data ProviderError.
func Malformed(step, message string) *ProviderError {
	return NewProviderError(ErrorBadData, step, message, nil)
}

// IsRetryable checks if an error is worth retrying
func IsRetryable(err error) bool {
	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe.Retryable
	}
	return false
}

// GetCategory extracts the error category from an error
func GetCategory(err error) ErrorCategory {
	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe.Category
	}
	return ErrorInternal
}

// ErrSubjectNotFound is returned when every resolver strategy failed.
var ErrSubjectNotFound = errors.New("subject not found")
