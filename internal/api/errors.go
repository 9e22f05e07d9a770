package api

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
)

// AuthError indicates rejected credentials or an expired/invalid session (401).
type AuthError struct {
	Message string
	// Expired is true when a previously valid session token was rejected.
	Expired bool
}

func (e *AuthError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Expired {
		return "session expired, please log in again"
	}
	return "invalid username or password"
}

// ValidationError carries per-field messages, produced either locally before a
// request is sent or by the backend (400/409/422).
type ValidationError struct {
	Message string
	Fields  map[string]string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		if e.Message != "" {
			return e.Message
		}
		return "invalid input"
	}
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, e.Fields[k]))
	}
	return strings.Join(parts, "; ")
}

// Field returns the message for a single field, or "".
func (e *ValidationError) Field(name string) string {
	if e == nil {
		return ""
	}
	return e.Fields[name]
}

// NetworkError indicates the request failed or produced no usable response.
type NetworkError struct {
	Op         string
	StatusCode int
	Err        error
}

func (e *NetworkError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: server returned %d: %v", e.Op, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// NotEligibleError indicates a precondition such as an uncompleted course
// blocks the requested action.
type NotEligibleError struct {
	Reason string
}

func (e *NotEligibleError) Error() string {
	if e.Reason == "" {
		return "not eligible"
	}
	return "not eligible: " + e.Reason
}

// IsUnauthorized reports whether err is an AuthError.
func IsUnauthorized(err error) bool {
	var ae *AuthError
	return errors.As(err, &ae)
}

// Message converts err into the one-line status shown to the user.
func Message(err error) string {
	if err == nil {
		return ""
	}

	var (
		authErr  *AuthError
		valErr   *ValidationError
		netErr   *NetworkError
		eligible *NotEligibleError
	)
	switch {
	case errors.As(err, &authErr):
		return authErr.Error()
	case errors.As(err, &valErr):
		if valErr.Message != "" && len(valErr.Fields) == 0 {
			return valErr.Message
		}
		return "Please fix: " + valErr.Error()
	case errors.As(err, &eligible):
		return eligible.Error()
	case errors.Is(err, context.DeadlineExceeded):
		return "The server took too long to answer. Please try again."
	case errors.As(err, &netErr):
		if netErr.StatusCode >= 500 {
			return "The server had a problem. Please try again."
		}
		return "Could not reach the server. Please try again."
	}
	return err.Error()
}
