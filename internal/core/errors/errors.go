// Package errors provides centralized error definitions for the application.
// Errors are organized by domain to avoid duplication and provide consistent naming.
//
// Naming conventions:
//   - Exported errors (Err*): Use for errors that callers need to check with errors.Is
//   - All sentinel errors should be defined as variables, not inline errors.New calls
//   - Use fmt.Errorf with %w to wrap sentinel errors with context
package errors

import "errors"

// Client and circuit breaker errors.
var (
	// ErrCircuitBreakerOpen indicates the circuit breaker has tripped and requests are blocked.
	ErrCircuitBreakerOpen = errors.New("circuit breaker is open")

	// ErrRetriesExhausted indicates a request failed after all retry attempts.
	ErrRetriesExhausted = errors.New("retries exhausted")
)

// Response and parsing errors.
var (
	// ErrEmptyResponse indicates an empty response was received.
	ErrEmptyResponse = errors.New("empty response")

	// ErrNoResults indicates no results were found.
	ErrNoResults = errors.New("no results")

	// ErrMalformedJSON indicates a response could not be parsed as the expected JSON shape.
	ErrMalformedJSON = errors.New("malformed json payload")
)

// Validation errors.
var (
	// ErrInvalidItem indicates a retrieved item failed validation.
	ErrInvalidItem = errors.New("invalid item")

	// ErrInvalidCard indicates an extracted fact card failed schema validation.
	ErrInvalidCard = errors.New("invalid fact card")

	// ErrNotFound is a generic not found error.
	ErrNotFound = errors.New("not found")
)

// Retrieval errors.
var (
	// ErrInsufficientRetrieval indicates too few retrieval queries succeeded.
	ErrInsufficientRetrieval = errors.New("insufficient retrieval")
)

// Is is a convenience wrapper around errors.Is.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As is a convenience wrapper around errors.As.
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
