package ai

import (
	"errors"
	"fmt"
)

// ErrInvalidAction indicates the requested action is not one of qa, summarize or mindmap
var ErrInvalidAction = errors.New("invalid assistant action")

// ErrMissingQuery indicates a qa request without a question
var ErrMissingQuery = errors.New("question is required for qa")

// ErrRateLimited indicates either the local per-user limit or the service limit was hit
var ErrRateLimited = errors.New("assistant rate limit exceeded")

// ErrDisabled indicates no completion endpoint is configured
var ErrDisabled = errors.New("assistant is not configured")

// ServiceError represents an unexpected status from the completion service
type ServiceError struct {
	StatusCode int
	Message    string
}

func (e *ServiceError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("completion service error: HTTP %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("completion service error: HTTP %d", e.StatusCode)
}

// Retryable reports whether the request may succeed if sent again.
func (e *ServiceError) Retryable() bool {
	return e.StatusCode >= 500
}
