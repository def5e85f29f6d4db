package fetch

import (
	"errors"
	"fmt"
)

// NetworkError means no HTTP response was received: DNS, connect, reset,
// or the request context ending before a response arrived.
type NetworkError struct {
	URL string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error fetching %s: %v", e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// HTTPError is a response with a non-2xx status.
type HTTPError struct {
	URL    string
	Status int
	Body   string // first bytes of the response body, for diagnostics
}

func (e *HTTPError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("API error (status %d) from %s", e.Status, e.URL)
	}
	return fmt.Sprintf("API error (status %d) from %s: %s", e.Status, e.URL, e.Body)
}

// ParseError is a 2xx response whose body is not JSON of the expected shape.
type ParseError struct {
	URL    string
	Reason string
	Err    error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("bad response from %s: %s: %v", e.URL, e.Reason, e.Err)
	}
	return fmt.Sprintf("bad response from %s: %s", e.URL, e.Reason)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Class is the coarse failure category shown to the user.
type Class int

const (
	ClassNone Class = iota
	ClassNetwork
	ClassHTTP
	ClassParse
	ClassOther
)

func (c Class) String() string {
	switch c {
	case ClassNone:
		return "ok"
	case ClassNetwork:
		return "network"
	case ClassHTTP:
		return "http"
	case ClassParse:
		return "parse"
	}
	return "other"
}

// Classify reports which failure class err belongs to, looking through
// wrapping.
func Classify(err error) Class {
	if err == nil {
		return ClassNone
	}
	var ne *NetworkError
	var he *HTTPError
	var pe *ParseError
	switch {
	case errors.As(err, &ne):
		return ClassNetwork
	case errors.As(err, &he):
		return ClassHTTP
	case errors.As(err, &pe):
		return ClassParse
	}
	return ClassOther
}

// StatusOf returns the HTTP status carried by err, or 0.
func StatusOf(err error) int {
	var he *HTTPError
	if errors.As(err, &he) {
		return he.Status
	}
	return 0
}

// Describe returns a short label for a failure, e.g. "HTTP 503" or
// "network error".
func Describe(err error) string {
	switch Classify(err) {
	case ClassNone:
		return ""
	case ClassNetwork:
		return "network error"
	case ClassHTTP:
		return fmt.Sprintf("HTTP %d", StatusOf(err))
	case ClassParse:
		return "bad response"
	}
	return err.Error()
}

// IsRetryable reports whether retrying the same request could succeed:
// network failures and 5xx or 429 responses.
func IsRetryable(err error) bool {
	switch Classify(err) {
	case ClassNetwork:
		return true
	case ClassHTTP:
		st := StatusOf(err)
		return st >= 500 || st == 429
	}
	return false
}
