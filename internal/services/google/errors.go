package google

import (
	"errors"
	"fmt"
	"net/http"
)

// AuthError indicates the user's Google credentials are expired or lack the
// required scopes. Callers surface it so the UI can prompt re-authentication
// instead of showing a generic failure.
type AuthError struct {
	StatusCode int
	Message    string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("google auth error (status %d): %s", e.StatusCode, e.Message)
}

// RateLimitError indicates Google throttled the request. Callers back off
// instead of retrying immediately.
type RateLimitError struct {
	Message string
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("google rate limit exceeded: %s", e.Message)
}

// IsAuthError checks if an error is a Google auth error
func IsAuthError(err error) bool {
	var ae *AuthError
	return errors.As(err, &ae)
}

// IsRateLimitError checks if an error is a Google rate limit error
func IsRateLimitError(err error) bool {
	var re *RateLimitError
	return errors.As(err, &re)
}

// classifyStatus maps an API response status to a typed error, or nil for
// success statuses.
func classifyStatus(statusCode int, body string) error {
	switch {
	case statusCode >= 200 && statusCode < 300:
		return nil
	case statusCode == http.StatusUnauthorized || statusCode == http.StatusForbidden:
		return &AuthError{StatusCode: statusCode, Message: body}
	case statusCode == http.StatusTooManyRequests:
		return &RateLimitError{Message: body}
	default:
		return fmt.Errorf("google api request failed with status %d: %s", statusCode, body)
	}
}
