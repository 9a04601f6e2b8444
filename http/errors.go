// Package http provides the shared HTTP client used by the Plaud API client.
package http

import (
	"errors"
	"fmt"
)

// Standard sentinel errors for API calls.
var (
	// ErrNotFound indicates the requested resource does not exist.
	ErrNotFound = errors.New("resource not found")

	// ErrUnauthorized indicates invalid or missing authentication.
	ErrUnauthorized = errors.New("authentication failed")

	// ErrForbidden indicates the user lacks permission for the operation.
	ErrForbidden = errors.New("permission denied")

	// ErrConflict indicates the operation conflicts with remote state,
	// e.g. a generation job that is already running.
	ErrConflict = errors.New("conflict with remote state")

	// ErrRateLimited indicates the API rate limit was exceeded.
	ErrRateLimited = errors.New("rate limit exceeded")

	// ErrBadRequest indicates the request was malformed.
	ErrBadRequest = errors.New("bad request")

	// ErrServerError indicates a server-side error occurred.
	ErrServerError = errors.New("server error")

	// ErrBusinessFailure indicates the provider returned HTTP success but
	// signalled failure in the response body's status field.
	ErrBusinessFailure = errors.New("provider reported failure")
)

// APIError represents an error from the remote API.
//
// The Plaud API signals failure two ways: an HTTP error status, or an
// HTTP 200 whose JSON body carries a non-zero provider status. Both
// are normalized into an APIError so callers have one type to inspect.
type APIError struct {
	// StatusCode is the HTTP status code returned.
	StatusCode int

	// ProviderStatus is the status field embedded in the JSON body.
	// Zero means success; it is only meaningful when BusinessFailure is set.
	ProviderStatus int

	// BusinessFailure is true when the HTTP exchange succeeded but the
	// body's status field signalled an error.
	BusinessFailure bool

	// Message is the error message from the API.
	Message string

	// Endpoint is the API endpoint that was called.
	Endpoint string

	// RequestID is the x-request-id sent with the request, for debugging.
	RequestID string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.BusinessFailure {
		return fmt.Sprintf("plaud API error (status %d) at %s: %s",
			e.ProviderStatus, e.Endpoint, e.Message)
	}
	if e.RequestID != "" {
		return fmt.Sprintf("plaud API error (%d) at %s [%s]: %s",
			e.StatusCode, e.Endpoint, e.RequestID, e.Message)
	}
	return fmt.Sprintf("plaud API error (%d) at %s: %s",
		e.StatusCode, e.Endpoint, e.Message)
}

// Unwrap returns the underlying sentinel error.
func (e *APIError) Unwrap() error {
	if e.BusinessFailure {
		return ErrBusinessFailure
	}
	switch e.StatusCode {
	case 400:
		return ErrBadRequest
	case 401:
		return ErrUnauthorized
	case 403:
		return ErrForbidden
	case 404:
		return ErrNotFound
	case 409:
		return ErrConflict
	case 429:
		return ErrRateLimited
	default:
		if e.StatusCode >= 500 {
			return ErrServerError
		}
		return nil
	}
}

// AuthError represents a credential rejection during login. It is kept
// distinct from APIError so callers can tell "wrong password" (abort the
// run) from a transport failure (retriable).
type AuthError struct {
	// Reason explains why authentication failed.
	Reason string
}

// Error implements the error interface.
func (e *AuthError) Error() string {
	return fmt.Sprintf("plaud authentication failed: %s", e.Reason)
}

// Unwrap returns ErrUnauthorized.
func (e *AuthError) Unwrap() error {
	return ErrUnauthorized
}

// IsNotFound reports whether the error indicates a resource was not found.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsUnauthorized reports whether the error indicates authentication failed.
func IsUnauthorized(err error) bool {
	return errors.Is(err, ErrUnauthorized)
}

// IsConflict reports whether the error indicates a remote-state conflict.
func IsConflict(err error) bool {
	return errors.Is(err, ErrConflict)
}

// IsBusinessFailure reports whether the provider signalled failure in an
// otherwise successful HTTP response.
func IsBusinessFailure(err error) bool {
	return errors.Is(err, ErrBusinessFailure)
}

// IsRetryable reports whether the error is transient and may be retried.
func IsRetryable(err error) bool {
	if errors.Is(err, ErrRateLimited) || errors.Is(err, ErrServerError) {
		return true
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return !apiErr.BusinessFailure && apiErr.StatusCode >= 500 && apiErr.StatusCode < 600
	}

	return false
}
