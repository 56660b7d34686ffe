// Package apperrors defines application-level error types.
package apperrors

import (
	"errors"
	"fmt"

	"github.com/touchnstars/companion/internal/domain/capabilities"
)

var (
	// ErrConfirmationPending is returned when a confirmation is requested while
	// another one is still awaiting a choice.
	ErrConfirmationPending = errors.New("confirmation already pending")

	// ErrPermissionDenied indicates a capability was not granted.
	ErrPermissionDenied = errors.New("permission denied")

	// ErrIncompatibleBackend indicates the instrument API version is outside the
	// supported range.
	ErrIncompatibleBackend = errors.New("incompatible backend version")

	// ErrLocationUnavailable indicates no device position could be obtained.
	ErrLocationUnavailable = errors.New("device location unavailable")
)

// BridgeError indicates the platform permission or position bridge raised.
type BridgeError struct {
	Cause      error
	Capability capabilities.Kind
	Op         string // check, request, position, settings
}

func (e *BridgeError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("platform bridge %s failed for %s: %v", e.Op, e.Capability, e.Cause)
	}
	return fmt.Sprintf("platform bridge %s failed for %s", e.Op, e.Capability)
}

func (e *BridgeError) Unwrap() error {
	return e.Cause
}

// NewBridgeError creates a new bridge error.
func NewBridgeError(capability capabilities.Kind, op string, cause error) *BridgeError {
	return &BridgeError{
		Capability: capability,
		Op:         op,
		Cause:      cause,
	}
}

// APIError indicates the remote instrument API reported a failure.
type APIError struct {
	Endpoint   string
	Message    string
	StatusCode int
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("instrument API %s returned status %d", e.Endpoint, e.StatusCode)
	}
	return fmt.Sprintf("instrument API %s returned status %d: %s", e.Endpoint, e.StatusCode, e.Message)
}

// NewAPIError creates a new API error.
func NewAPIError(endpoint string, statusCode int, message string) *APIError {
	return &APIError{
		Endpoint:   endpoint,
		StatusCode: statusCode,
		Message:    message,
	}
}

// ConfigurationError indicates system config or setup issue.
type ConfigurationError struct {
	Cause   error
	Aspect  string
	Message string
}

func (e *ConfigurationError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("configuration error (%s): %s: %v", e.Aspect, e.Message, e.Cause)
	}
	return fmt.Sprintf("configuration error (%s): %s", e.Aspect, e.Message)
}

func (e *ConfigurationError) Unwrap() error {
	return e.Cause
}

// NewConfigurationError creates a new configuration error.
func NewConfigurationError(aspect, message string, cause error) *ConfigurationError {
	return &ConfigurationError{
		Aspect:  aspect,
		Message: message,
		Cause:   cause,
	}
}
