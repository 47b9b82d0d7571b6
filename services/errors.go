package services

import (
	"fmt"
)

// ErrorType represents the type/category of error
type ErrorType string

const (
	ErrorTypeValidation   ErrorType = "validation"
	ErrorTypeNoProvider   ErrorType = "no_provider"
	ErrorTypeUnsupported  ErrorType = "unsupported_capability"
	ErrorTypeProviderCall ErrorType = "provider_call"
	ErrorTypeInternal     ErrorType = "internal"
)

// DomainError represents a structured error with additional context
type DomainError struct {
	Type    ErrorType
	Message string
	Err     error
	Details map[string]interface{}
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *DomainError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Type == t.Type
}

// WithDetail adds a detail to the error
func (e *DomainError) WithDetail(key string, value interface{}) *DomainError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// NewDomainError creates a new domain error
func NewDomainError(errType ErrorType, message string, err error) *DomainError {
	return &DomainError{
		Type:    errType,
		Message: message,
		Err:     err,
		Details: make(map[string]interface{}),
	}
}

var (
	// ErrNoProviderAvailable is returned when no active, capable provider
	// within its quota can service a request, or an explicit override names
	// a provider that is not configured.
	ErrNoProviderAvailable = NewDomainError(ErrorTypeNoProvider, "no AI provider available for this request", nil)

	// ErrUnsupportedCapability is returned for a capability with no dispatch
	// branch. This is a programmer error, not an operational condition.
	ErrUnsupportedCapability = NewDomainError(ErrorTypeUnsupported, "unsupported capability", nil)

	// ErrInvalidInput is returned when a request fails validation
	ErrInvalidInput = NewDomainError(ErrorTypeValidation, "invalid input", nil)
)

// NewNoProviderError creates a no-provider error carrying the capability
func NewNoProviderError(capability string) *DomainError {
	return NewDomainError(ErrorTypeNoProvider, "no AI provider available for this request", nil).
		WithDetail("capability", capability)
}

// NewProviderCallError wraps an adapter failure for callers that want the
// domain taxonomy; the original adapter error stays reachable via Unwrap.
func NewProviderCallError(provider string, err error) *DomainError {
	return NewDomainError(ErrorTypeProviderCall, "provider call failed", err).
		WithDetail("provider", provider)
}

// IsType reports whether err is a DomainError of the given type
func IsType(err error, errType ErrorType) bool {
	for err != nil {
		if de, ok := err.(*DomainError); ok {
			return de.Type == errType
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}
