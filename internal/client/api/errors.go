package api

import (
	"errors"
	"fmt"
)

// Sentinel errors for transport-level failures, normalized to stable,
// user-presentable messages. Callers match them with errors.Is.
var (
	ErrSessionExpired    = errors.New("session expired, please log in again")
	ErrServerUnavailable = errors.New("server temporarily unavailable, try again in a few minutes")
	ErrTimeout           = errors.New("server is slow to respond, try again")
	ErrNetwork           = errors.New("connection error, check your internet connection")
)

// APIError is a non-transport failure reported by the backend (4xx other than
// 401, or 5xx other than 502/503). Message carries the backend-supplied text
// verbatim when the response body contained one.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("request failed with status %d", e.Status)
}

// DefaultMessage lets a domain service substitute a resource-specific message
// when the backend reported a failure without one. Errors that already carry
// a message, and all transport-level errors, pass through unchanged.
func DefaultMessage(err error, msg string) error {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message == "" {
		return &APIError{Status: apiErr.Status, Message: msg}
	}
	return err
}
