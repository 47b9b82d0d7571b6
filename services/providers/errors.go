package providers

import (
	"errors"
	"fmt"

	"github.com/adminhub/ai-gateway/models"
)

// CallError is the single failure kind an adapter may surface: the vendor
// endpoint returned a non-success status or the transport failed. Vendor
// exception shapes never cross the adapter boundary.
type CallError struct {
	Provider   models.ProviderType
	StatusCode int // 0 when the transport failed before a response
	Message    string
	Cause      error
}

// Error implements the error interface
func (e *CallError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("%s: %s (status %d)", e.Provider, e.Message, e.StatusCode)
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Provider, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Provider, e.Message)
}

// Unwrap implements error unwrapping
func (e *CallError) Unwrap() error {
	return e.Cause
}

// NewCallError creates a normalized adapter failure
func NewCallError(provider models.ProviderType, statusCode int, message string, cause error) *CallError {
	return &CallError{
		Provider:   provider,
		StatusCode: statusCode,
		Message:    message,
		Cause:      cause,
	}
}

// AsCallError extracts a CallError from an error chain
func AsCallError(err error) (*CallError, bool) {
	var ce *CallError
	if errors.As(err, &ce) {
		return ce, true
	}
	return nil, false
}
