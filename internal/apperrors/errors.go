// Package apperrors defines the error taxonomy shared by the gateway
// adapters and the services: sentinel errors for errors.Is matching and
// typed errors carrying response details.
package apperrors

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for use with errors.Is().
var (
	// ErrValidation is matched by ValidationError (4xx with field messages).
	ErrValidation = errors.New("validation failed")

	// ErrAuthentication is matched by AuthenticationError (401 responses).
	ErrAuthentication = errors.New("authentication failed")

	// ErrAuthorization is matched by AuthorizationError (403 responses).
	ErrAuthorization = errors.New("authorization failed")

	// ErrServer is matched by ServerError (5xx responses).
	ErrServer = errors.New("server error")

	// ErrNetwork is matched by NetworkError (no response received).
	ErrNetwork = errors.New("network error")

	// ErrCartNotFound means the server has no cart for this user. Not an
	// error to the user: it is the normal empty state.
	ErrCartNotFound = errors.New("cart not found")

	// ErrNotPermitted is returned for cart operations when the session is
	// anonymous or its role is not cart-eligible.
	ErrNotPermitted = errors.New("operation not permitted for this session")

	// ErrItemNotInCart is returned when a mutation targets a line the
	// local cart does not hold.
	ErrItemNotInCart = errors.New("item not in cart")
)

// ValidationError is a 4xx response with structured field messages.
type ValidationError struct {
	// Message is the user-facing summary, already localized.
	Message string
	// Fields maps field names to their localized messages.
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return e.Message
	}
	parts := make([]string, 0, len(e.Fields))
	for field, msg := range e.Fields {
		parts = append(parts, fmt.Sprintf("%s: %s", field, msg))
	}
	return fmt.Sprintf("%s (%s)", e.Message, strings.Join(parts, "; "))
}

// Is supports errors.Is(err, ErrValidation).
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// AuthenticationError is a 401 response. Inside the exemption set it is a
// semantic result (wrong password); outside it the session is invalid.
type AuthenticationError struct {
	// Message is the user-facing text, already localized.
	Message string
}

func (e *AuthenticationError) Error() string {
	return e.Message
}

// Is supports errors.Is(err, ErrAuthentication).
func (e *AuthenticationError) Is(target error) bool {
	return target == ErrAuthentication
}

// AuthorizationError is a 403 response.
type AuthorizationError struct {
	Message string
}

func (e *AuthorizationError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return "access denied"
}

// Is supports errors.Is(err, ErrAuthorization).
func (e *AuthorizationError) Is(target error) bool {
	return target == ErrAuthorization
}

// ServerError is a 5xx response.
type ServerError struct {
	Status int
	Body   string
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("server returned %d: %s", e.Status, e.Body)
}

// Is supports errors.Is(err, ErrServer).
func (e *ServerError) Is(target error) bool {
	return target == ErrServer
}

// NetworkError means no response was received at all.
type NetworkError struct {
	Cause error
}

func (e *NetworkError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("network error: %v", e.Cause)
	}
	return "network error"
}

// Unwrap returns the underlying transport error.
func (e *NetworkError) Unwrap() error {
	return e.Cause
}

// Is supports errors.Is(err, ErrNetwork).
func (e *NetworkError) Is(target error) bool {
	return target == ErrNetwork
}
