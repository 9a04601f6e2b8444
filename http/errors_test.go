package http

import (
	"errors"
	"fmt"
	"testing"
)

func TestAPIErrorUnwrap(t *testing.T) {
	tests := []struct {
		name string
		err  *APIError
		want error
	}{
		{"bad request", &APIError{StatusCode: 400}, ErrBadRequest},
		{"unauthorized", &APIError{StatusCode: 401}, ErrUnauthorized},
		{"forbidden", &APIError{StatusCode: 403}, ErrForbidden},
		{"not found", &APIError{StatusCode: 404}, ErrNotFound},
		{"conflict", &APIError{StatusCode: 409}, ErrConflict},
		{"rate limited", &APIError{StatusCode: 429}, ErrRateLimited},
		{"server error", &APIError{StatusCode: 500}, ErrServerError},
		{"bad gateway", &APIError{StatusCode: 502}, ErrServerError},
		{"business failure wins", &APIError{StatusCode: 200, ProviderStatus: -1, BusinessFailure: true}, ErrBusinessFailure},
		{"teapot maps to nothing", &APIError{StatusCode: 418}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.want == nil {
				if got := tt.err.Unwrap(); got != nil {
					t.Errorf("Unwrap() = %v, want nil", got)
				}
				return
			}
			if !errors.Is(tt.err, tt.want) {
				t.Errorf("errors.Is(%v, %v) = false, want true", tt.err, tt.want)
			}
		})
	}
}

func TestAuthErrorUnwrapsToUnauthorized(t *testing.T) {
	err := fmt.Errorf("login failed: %w", &AuthError{Reason: "wrong password"})
	if !IsUnauthorized(err) {
		t.Error("IsUnauthorized = false, want true")
	}
	if IsRetryable(err) {
		t.Error("IsRetryable = true for a credential rejection, want false")
	}
}

func TestPredicatesSeeThroughWrapping(t *testing.T) {
	wrapped := fmt.Errorf("list recordings: %w", &APIError{StatusCode: 404, Endpoint: "/file/x"})
	if !IsNotFound(wrapped) {
		t.Error("IsNotFound = false through fmt.Errorf wrapping, want true")
	}

	conflict := fmt.Errorf("trigger: %w", &APIError{StatusCode: 409})
	if !IsConflict(conflict) {
		t.Error("IsConflict = false through fmt.Errorf wrapping, want true")
	}
}

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"server error", &APIError{StatusCode: 503}, true},
		{"rate limited", &APIError{StatusCode: 429}, true},
		{"not found", &APIError{StatusCode: 404}, false},
		{"business failure", &APIError{StatusCode: 200, BusinessFailure: true}, false},
		{"plain error", errors.New("dial tcp: refused"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsRetryable(tt.err); got != tt.want {
				t.Errorf("IsRetryable() = %v, want %v", got, tt.want)
			}
		})
	}
}
