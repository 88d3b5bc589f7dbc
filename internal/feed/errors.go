package feed

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorType classifies feed fetch failures for severity-aware logging and retry.
type ErrorType string

const (
	ErrTypeRateLimited ErrorType = "rate_limited"
	ErrTypeForbidden   ErrorType = "forbidden"
	ErrTypeNotFound    ErrorType = "not_found"
	ErrTypeGone        ErrorType = "gone"
	ErrTypeUpstream    ErrorType = "upstream_failure"
	ErrTypeNetwork     ErrorType = "network"
	ErrTypeUnexpected  ErrorType = "unexpected"
)

// LogLevel determines whether a TransportError is logged at WARN or ERROR.
type LogLevel int

const (
	LevelWarn LogLevel = iota
	LevelError
)

// TransportError is a feed that could not be reached or answered with an error status.
type TransportError struct {
	Type       ErrorType
	Level      LogLevel
	StatusCode int
	URL        string
	Cause      error
}

func (e *TransportError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("feed fetch %s: HTTP %d for %s", e.Type, e.StatusCode, e.URL)
	}

	return fmt.Sprintf("feed fetch %s: %v for %s", e.Type, e.Cause, e.URL)
}

func (e *TransportError) Unwrap() error { return e.Cause }

// Temporary reports whether another attempt may succeed.
func (e *TransportError) Temporary() bool {
	switch e.Type {
	case ErrTypeNetwork, ErrTypeUpstream, ErrTypeRateLimited:
		return true
	case ErrTypeForbidden, ErrTypeNotFound, ErrTypeGone, ErrTypeUnexpected:
		return false
	}

	return false
}

// ClassifyHTTPStatus creates a TransportError from an HTTP status code.
func ClassifyHTTPStatus(statusCode int, url string) *TransportError {
	cause := fmt.Errorf("HTTP %d", statusCode)
	errType := ErrTypeUnexpected
	level := LevelError

	switch {
	case statusCode == http.StatusTooManyRequests:
		errType, level = ErrTypeRateLimited, LevelWarn
	case statusCode == http.StatusForbidden:
		errType, level = ErrTypeForbidden, LevelWarn
	case statusCode == http.StatusNotFound:
		errType, level = ErrTypeNotFound, LevelWarn
	case statusCode == http.StatusGone:
		errType, level = ErrTypeGone, LevelWarn
	case statusCode >= http.StatusInternalServerError && statusCode <= 599:
		errType, level = ErrTypeUpstream, LevelWarn
	}

	return &TransportError{Type: errType, Level: level, StatusCode: statusCode, URL: url, Cause: cause}
}

// ClassifyNetworkError creates a TransportError for DNS, connect, and timeout failures.
func ClassifyNetworkError(cause error, url string) *TransportError {
	return &TransportError{Type: ErrTypeNetwork, Level: LevelWarn, URL: url, Cause: cause}
}

// IsTemporary reports whether err wraps a TransportError worth retrying.
func IsTemporary(err error) bool {
	var te *TransportError
	if errors.As(err, &te) {
		return te.Temporary()
	}

	return false
}

// ParseError is a feed document that could not be parsed as RSS or Atom.
type ParseError struct {
	Format string
	Cause  error
}

func (e *ParseError) Error() string {
	if e.Format == "" {
		return fmt.Sprintf("parse feed: %v", e.Cause)
	}

	return fmt.Sprintf("parse %s feed: %v", e.Format, e.Cause)
}

func (e *ParseError) Unwrap() error { return e.Cause }
