// Package dto defines API request/response types and error handling.
//
// Error handling follows a structured pattern:
//   - ErrorCode provides machine-readable error classification
//   - APIError wraps errors with HTTP status codes and a rendering flag
//   - Constructor functions (NotFound, BadRequest, etc.) create common errors
//
// Every error is rendered as {"type": "error", "message": ...} unless it is
// flagged as text, in which case the message is sent as text/plain.
package dto

import (
	"fmt"
	"net/http"
	"strconv"
)

// ErrorCode defines specific error types for the API.
type ErrorCode string

const (
	// ErrorCodeValidationFailed is returned when input data fails validation.
	ErrorCodeValidationFailed ErrorCode = "VALIDATION_FAILED"
	// ErrorCodeInvalidFormat is returned when a parameter has an invalid format.
	ErrorCodeInvalidFormat ErrorCode = "INVALID_FORMAT"
	// ErrorCodeOutOfRange is returned when a parameter exceeds what is available.
	ErrorCodeOutOfRange ErrorCode = "OUT_OF_RANGE"
	// ErrorCodeNotFound is returned when a resource is not found.
	ErrorCodeNotFound ErrorCode = "NOT_FOUND"
	// ErrorCodePayloadTooLarge is returned when the request body exceeds the limit.
	ErrorCodePayloadTooLarge ErrorCode = "PAYLOAD_TOO_LARGE"
	// ErrorCodeRateLimitExceeded is returned when a client is throttled.
	ErrorCodeRateLimitExceeded ErrorCode = "RATE_LIMIT_EXCEEDED"
	// ErrorCodeInternal is returned when an unexpected server error occurs.
	ErrorCodeInternal ErrorCode = "INTERNAL_ERROR"
)

// ErrorResponse is the standard API error response.
//
// The ErrorCode is only logged; clients get the message.
type ErrorResponse struct {
	Type    string         `json:"type"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

// NewErrorResponse returns the body for an error message.
func NewErrorResponse(message string, details map[string]any) *ErrorResponse {
	return &ErrorResponse{Type: "error", Message: message, Details: details}
}

// ErrorWithStatus is an error that includes an HTTP status code and error code.
type ErrorWithStatus interface {
	Error() string
	StatusCode() int
	Code() ErrorCode
	Details() map[string]any
	// Text reports whether the message is sent as text/plain.
	Text() bool
}

// APIError is a concrete error type with status code and optional details.
type APIError struct {
	statusCode int
	code       ErrorCode
	message    string
	details    map[string]any
	text       bool
	wrappedErr error
}

// NewAPIError creates a new APIError with the given status code and message.
func NewAPIError(statusCode int, code ErrorCode, message string) *APIError {
	return &APIError{
		statusCode: statusCode,
		code:       code,
		message:    message,
	}
}

// WithDetail adds a single detail to the error.
func (e *APIError) WithDetail(key string, value any) *APIError {
	if e.details == nil {
		e.details = make(map[string]any)
	}
	e.details[key] = value
	return e
}

// AsText renders the error as a text/plain body instead of JSON.
func (e *APIError) AsText() *APIError {
	e.text = true
	return e
}

// Wrap wraps an underlying error. The wrapped error is not part of the
// message sent to the client.
func (e *APIError) Wrap(err error) *APIError {
	e.wrappedErr = err
	return e
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return e.message
}

// StatusCode returns the HTTP status code.
func (e *APIError) StatusCode() int {
	return e.statusCode
}

// Code returns the error code.
func (e *APIError) Code() ErrorCode {
	return e.code
}

// Details returns additional error details.
func (e *APIError) Details() map[string]any {
	return e.details
}

// Text reports whether the error is rendered as text/plain.
func (e *APIError) Text() bool {
	return e.text
}

// Unwrap returns the wrapped error if any.
func (e *APIError) Unwrap() error {
	return e.wrappedErr
}

// Predefined error constructors for common cases

// NotFound creates a 404 Not Found error.
func NotFound(resource string) *APIError {
	return NewAPIError(http.StatusNotFound, ErrorCodeNotFound, resource+" not found")
}

// BadRequest creates a 400 Bad Request error.
func BadRequest(message string) *APIError {
	return NewAPIError(http.StatusBadRequest, ErrorCodeValidationFailed, message)
}

// InvalidJokeData is the 400 text answer to a create or update missing a field.
func InvalidJokeData() *APIError {
	return BadRequest("Invalid joke data").AsText()
}

// InvalidQueryParameters is the 400 text answer to a non-numeric page request.
func InvalidQueryParameters() *APIError {
	return NewAPIError(http.StatusBadRequest, ErrorCodeInvalidFormat, "Invalid query parameters").AsText()
}

// InvalidSortParameters is the 400 text answer to an unknown sort field or order.
func InvalidSortParameters() *APIError {
	return NewAPIError(http.StatusBadRequest, ErrorCodeInvalidFormat, "Invalid sort parameters").AsText()
}

// NotANumber is the 200 text answer to /jokes/random/{num} when num is not a
// positive integer.
func NotANumber() *APIError {
	return NewAPIError(http.StatusOK, ErrorCodeInvalidFormat, "The passed path is not a number.").AsText()
}

// ExceedsCount is the 200 text answer to /jokes/random/{num} when num is
// larger than the collection.
func ExceedsCount(count int) *APIError {
	return NewAPIError(http.StatusOK, ErrorCodeOutOfRange, "The passed path exceeds the number of jokes ("+strconv.Itoa(count)+").").AsText()
}

// PayloadTooLarge creates a 413 error for bodies over the limit.
func PayloadTooLarge(limit int64) *APIError {
	return NewAPIError(http.StatusRequestEntityTooLarge, ErrorCodePayloadTooLarge, fmt.Sprintf("request body exceeds %d bytes", limit)).WithDetail("limit", limit)
}

// RateLimitExceeded creates a 429 error.
func RateLimitExceeded(retryAfter int) *APIError {
	return NewAPIError(http.StatusTooManyRequests, ErrorCodeRateLimitExceeded, "Too many requests, please try again later.").WithDetail("retry_after", retryAfter)
}

// Internal returns a 500 Internal Server Error.
func Internal(message string) *APIError {
	return NewAPIError(http.StatusInternalServerError, ErrorCodeInternal, message)
}
