// Package errors provides standardized error classification for SPARQL
// endpoint access. It maps HTTP statuses and transport failures to a closed
// error taxonomy and includes helper functions for consistent error wrapping
// across the system.
package errors

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
)

// Code identifies one member of the closed error taxonomy. Every failed
// endpoint interaction is classified to exactly one Code.
type Code string

const (
	// CodeQueryError indicates the endpoint rejected the query (HTTP 400).
	CodeQueryError Code = "QUERY_ERROR"
	// CodeAuthRequired indicates missing credentials (HTTP 401).
	CodeAuthRequired Code = "AUTH_REQUIRED"
	// CodeAuthFailed indicates rejected credentials (HTTP 403).
	CodeAuthFailed Code = "AUTH_FAILED"
	// CodeNotFound indicates the endpoint URL does not resolve (HTTP 404).
	CodeNotFound Code = "NOT_FOUND"
	// CodeServerError indicates an endpoint-side failure (HTTP 5xx).
	CodeServerError Code = "SERVER_ERROR"
	// CodeCORSBlocked indicates a cross-origin block reported by the
	// transport. The default net/http transport never produces this code;
	// see ErrCrossOrigin.
	CodeCORSBlocked Code = "CORS_BLOCKED"
	// CodeNetworkError indicates a transport-level failure (connection
	// refused, DNS, abort, timeout).
	CodeNetworkError Code = "NETWORK_ERROR"
	// CodeInvalidResponse indicates a response body unparseable as either
	// SPARQL-JSON or SPARQL-XML results.
	CodeInvalidResponse Code = "INVALID_RESPONSE"
)

// String returns the wire representation of the code.
func (c Code) String() string {
	return string(c)
}

// ErrCrossOrigin is a sentinel a custom transport may wrap into its returned
// error to signal that a request was blocked by a cross-origin policy.
// Server-side Go has no ambient CORS concept, so classification only emits
// CodeCORSBlocked when a transport opts in via this sentinel; everything else
// degrades to CodeNetworkError.
var ErrCrossOrigin = errors.New("request blocked by cross-origin policy")

// ClassifiedError is the single error type surfaced by the query executor.
// It is constructed exactly once per failed attempt and never mutated.
type ClassifiedError struct {
	Code      Code
	Message   string
	Retryable bool
	Cause     error
}

// Error implements the error interface.
func (e *ClassifiedError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Cause != nil {
		return e.Cause.Error()
	}
	return string(e.Code)
}

// Unwrap returns the underlying cause, if any.
func (e *ClassifiedError) Unwrap() error {
	return e.Cause
}

// New constructs a classified error with an explicit retryability flag.
func New(code Code, message string, retryable bool) *ClassifiedError {
	return &ClassifiedError{Code: code, Message: message, Retryable: retryable}
}

// Classify maps an HTTP status code to a classified error. It is a pure,
// total function: statuses outside the documented table map to
// CodeQueryError (other 4xx and anything non-standard) or CodeServerError
// (any 5xx, retryable).
func Classify(status int) *ClassifiedError {
	switch status {
	case http.StatusBadRequest:
		return New(CodeQueryError, "endpoint rejected the query (HTTP 400)", false)
	case http.StatusUnauthorized:
		return New(CodeAuthRequired, "endpoint requires authentication (HTTP 401)", false)
	case http.StatusForbidden:
		return New(CodeAuthFailed, "endpoint refused the supplied credentials (HTTP 403)", false)
	case http.StatusNotFound:
		return New(CodeNotFound, "endpoint not found (HTTP 404)", false)
	}
	if status >= 500 {
		return New(CodeServerError, fmt.Sprintf("endpoint returned a server error (HTTP %d)", status), true)
	}
	return New(CodeQueryError, fmt.Sprintf("endpoint returned an unexpected status (HTTP %d)", status), false)
}

// ClassifyTransport maps a transport-level failure to a classified error.
// Timeouts and aborts are retryable; a transport that wraps ErrCrossOrigin
// classifies as CodeCORSBlocked; every other transport failure is a
// non-retryable network error.
func ClassifyTransport(err error) *ClassifiedError {
	if err == nil {
		return nil
	}

	if errors.Is(err, ErrCrossOrigin) {
		return &ClassifiedError{
			Code:      CodeCORSBlocked,
			Message:   "request blocked by cross-origin policy",
			Retryable: false,
			Cause:     err,
		}
	}

	retryable := false
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		retryable = true
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		retryable = true
	}

	return &ClassifiedError{
		Code:      CodeNetworkError,
		Message:   fmt.Sprintf("network failure: %v", err),
		Retryable: retryable,
		Cause:     err,
	}
}

// InvalidResponse constructs the classified error for a response body that
// parsed as neither SPARQL-JSON nor SPARQL-XML results.
func InvalidResponse(cause error) *ClassifiedError {
	return &ClassifiedError{
		Code:      CodeInvalidResponse,
		Message:   "response is not valid SPARQL results (JSON or XML)",
		Retryable: false,
		Cause:     cause,
	}
}

// AsClassified extracts a ClassifiedError from an error chain.
func AsClassified(err error) (*ClassifiedError, bool) {
	var ce *ClassifiedError
	if errors.As(err, &ce) {
		return ce, true
	}
	return nil, false
}

// IsRetryable reports whether an error chain contains a retryable
// classified error. Unclassified errors are never retryable; classification
// happens before retry decisions.
func IsRetryable(err error) bool {
	if ce, ok := AsClassified(err); ok {
		return ce.Retryable
	}
	return false
}

// IsCode reports whether an error chain contains a classified error with
// the given code.
func IsCode(err error, code Code) bool {
	if ce, ok := AsClassified(err); ok {
		return ce.Code == code
	}
	return false
}

// Wrap creates a standardized error with context following the pattern:
// "component.method: action failed: %w"
func Wrap(err error, component, method, action string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s.%s: %s failed: %w", component, method, action, err)
}
