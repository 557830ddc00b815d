package models

import (
	"errors"
	"fmt"
)

var (
	ErrParse        = errors.New("parse error")
	ErrAuth         = errors.New("auth error")
	ErrFetch        = errors.New("fetch error")
	ErrUnknownLabel = errors.New("unknown label")
	ErrEmptyResult  = errors.New("empty response")
	ErrStaleData    = errors.New("stale data")
)

// ParseError reports a timestamp that is not ISO-8601 date-time syntax.
type ParseError struct {
	Input string
	Err   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse timestamp %q: %v", e.Input, e.Err)
}

func (e *ParseError) Unwrap() []error { return []error{ErrParse, e.Err} }

// AuthError reports a failed client-credentials exchange.
type AuthError struct {
	Status int // 0 when no HTTP response was received
	Err    error
}

func (e *AuthError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("auth: token endpoint returned %d: %v", e.Status, e.Err)
	}
	return fmt.Sprintf("auth: %v", e.Err)
}

func (e *AuthError) Unwrap() []error { return []error{ErrAuth, e.Err} }

// FetchError reports a data request that failed after the allowed refresh-retry.
type FetchError struct {
	URL    string
	Status int // 0 when no HTTP response was received
	Err    error
}

func (e *FetchError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("fetch %s: status %d: %v", e.URL, e.Status, e.Err)
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() []error { return []error{ErrFetch, e.Err} }

// FailureKind classifies an error into a low-cardinality label for metrics and events.
func FailureKind(err error) string {
	switch {
	case err == nil:
		return "none"
	case errors.Is(err, ErrAuth):
		return "auth"
	case errors.Is(err, ErrFetch):
		return "fetch"
	case errors.Is(err, ErrParse):
		return "parse"
	case errors.Is(err, ErrUnknownLabel):
		return "unknown_label"
	case errors.Is(err, ErrEmptyResult):
		return "empty"
	case errors.Is(err, ErrStaleData):
		return "stale"
	default:
		return "other"
	}
}
