package api

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/hay-kot/bookreview/internal/core/validate"
)

var (
	// ErrAuthRequired is returned when an operation that needs a session is
	// attempted while anonymous. No request is sent.
	ErrAuthRequired = errors.New("authentication required")

	// ErrUnauthorized is wrapped by every error produced from a 401 response.
	ErrUnauthorized = errors.New("unauthorized")
)

// AuthReason classifies an authentication failure.
type AuthReason string

const (
	ReasonInvalidCredentials AuthReason = "invalid-credentials"
	ReasonNetwork            AuthReason = "network"
	ReasonServer             AuthReason = "server"
	ReasonExpired            AuthReason = "expired"
)

// AuthError reports a failed sign-in or registration, or a session the
// server no longer accepts.
type AuthError struct {
	Reason  AuthReason
	Message string // server supplied message, may be empty
	Err     error
}

func (e *AuthError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "auth: %s", e.Reason)
	if e.Message != "" {
		fmt.Fprintf(&b, ": %s", e.Message)
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

func (e *AuthError) Unwrap() error { return e.Err }

// FetchError reports a non-auth HTTP failure or a response body that could
// not be decoded.
type FetchError struct {
	Op      string
	Status  int // 0 when the response was 2xx but malformed
	Message string
	Err     error
}

func (e *FetchError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s", e.Op)
	if e.Status != 0 {
		fmt.Fprintf(&b, ": HTTP %d", e.Status)
	}
	if e.Message != "" {
		fmt.Fprintf(&b, ": %s", e.Message)
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

func (e *FetchError) Unwrap() error { return e.Err }

// NetworkError reports a transport-level failure: no HTTP response arrived.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s: network: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// IsAuthError reports whether err means the user has to sign in (again).
func IsAuthError(err error) bool {
	if errors.Is(err, ErrAuthRequired) || errors.Is(err, ErrUnauthorized) {
		return true
	}
	var authErr *AuthError
	return errors.As(err, &authErr)
}

// Describe renders err as the single line shown in the error banner.
func Describe(err error) string {
	if err == nil {
		return ""
	}

	if validate.IsValidationError(err) {
		return "Please fix the highlighted fields"
	}

	if errors.Is(err, ErrAuthRequired) {
		return "Sign in to continue"
	}

	var authErr *AuthError
	if errors.As(err, &authErr) {
		switch authErr.Reason {
		case ReasonInvalidCredentials:
			if authErr.Message != "" {
				return authErr.Message
			}
			return "Invalid email or password"
		case ReasonNetwork:
			return "Could not reach the server"
		case ReasonServer:
			return "The server could not complete the request, try again later"
		case ReasonExpired:
			return "Your session has expired, please sign in again"
		}
	}

	var netErr *NetworkError
	if errors.As(err, &netErr) {
		return "Could not reach the server"
	}

	var fetchErr *FetchError
	if errors.As(err, &fetchErr) {
		msg := fetchErr.Message
		if msg == "" {
			if fetchErr.Status != 0 {
				msg = fmt.Sprintf("HTTP %d", fetchErr.Status)
			} else {
				msg = "unexpected response"
			}
		}
		return fmt.Sprintf("Could not %s: %s", fetchErr.Op, msg)
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return "The request timed out"
	}

	return err.Error()
}
