package llm

import (
	"errors"
	"fmt"
	"time"
)

// Sentinel errors for each failure class. Match with errors.Is.
var (
	ErrNetwork      = errors.New("network error")
	ErrTimeout      = errors.New("request timed out")
	ErrUnauthorized = errors.New("invalid credentials")
	ErrRateLimited  = errors.New("rate limited")
	ErrBadRequest   = errors.New("bad request")
	ErrUpstream     = errors.New("upstream error")
	ErrUnexpected   = errors.New("unexpected error")
)

// APIError is a classified failure from a chat-completions call
type APIError struct {
	Kind       error // one of the sentinel errors above
	StatusCode int
	Message    string
	RetryAfter time.Duration
	Err        error
}

func (e *APIError) Error() string {
	msg := e.Kind.Error()
	if e.StatusCode != 0 {
		msg = fmt.Sprintf("%s (status %d)", msg, e.StatusCode)
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Is reports whether target is the error's kind
func (e *APIError) Is(target error) bool {
	return e.Kind == target
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// Retryable reports whether the same request may succeed if sent again.
// Credential, rate-limit and request-shape failures are never retried.
func (e *APIError) Retryable() bool {
	return e.Kind == ErrUpstream
}

// IsRetryable reports whether err is a retryable *APIError
func IsRetryable(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Retryable()
	}
	return false
}

// ClassifyStatus maps a non-2xx HTTP status to a failure kind
func ClassifyStatus(status int) error {
	switch {
	case status == 400:
		return ErrBadRequest
	case status == 401:
		return ErrUnauthorized
	case status == 429:
		return ErrRateLimited
	case status >= 500 && status <= 504:
		return ErrUpstream
	default:
		return ErrUnexpected
	}
}
