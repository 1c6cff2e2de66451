package icloud

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidCookieHeader = errors.New("cookie header is not a valid header value")

	ErrServiceMissing       = errors.New("missing hide my email service")
	ErrServiceStatusMissing = errors.New("hide my email missing status")
	ErrServiceInactive      = errors.New("hide my email is inactive/disabled")
	ErrMissingBaseURL       = errors.New("missing base url")
)

// ParseCookieError reports the cookie header segment that has no '='.
type ParseCookieError struct {
	Segment string
}

func (e *ParseCookieError) Error() string {
	return fmt.Sprintf("invalid cookie segment %q (expected 'name=value')", e.Segment)
}

// ConfigError is returned when a Client cannot be configured.
type ConfigError struct {
	Err error
}

func (e *ConfigError) Error() string {
	return "invalid client configuration: " + e.Err.Error()
}

func (e *ConfigError) Unwrap() error { return e.Err }

// StatusError is returned for any response with a 4xx or 5xx status.
// Body holds the raw response text.
type StatusError struct {
	StatusCode int
	Status     string
	Body       string
}

func (e *StatusError) Error() string {
	status := e.Status
	if status == "" {
		status = fmt.Sprint(e.StatusCode)
	}
	return fmt.Sprintf("failed to send request | status: %s | response: %s", status, e.Body)
}

// DecodeError is returned when a response body does not have the
// expected JSON shape.
type DecodeError struct {
	Op  string
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %s response: %v", e.Op, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }
