// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package apperr defines the centralized error handling framework for Certly.

It provides a rich error type that bridges the gap between low-level storage
errors and high-level HTTP responses.

Architecture:

  - AppError: A struct containing a machine-readable Code and a client-safe message.
  - Throttling: Rate-limit and lockout errors carry a retry-after duration and an
    absolute unblock timestamp so clients can schedule a retry without polling.
  - Mapping: Explicit mapping from AppError to standard HTTP Status Codes.

Every error that leaves the service layer should be an [AppError] to ensure
consistent API responses.
*/
package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"time"
)

// # Error Codes

const (
	CodeBadRequest        = "bad_request"
	CodePageNotFound      = "page_not_found"
	CodeResourceNotFound  = "resource_not_found"
	CodeInternalServer    = "internal_server_error"
	CodeEmailRateLimit    = "email_rate_limit"
	CodeIPRateLimit       = "ip_rate_limit"
	CodeRequestsRateLimit = "requests_rate_limit"
	CodeInvalidRoute      = "invalid_route"
	CodeInvalidCode       = "invalid_code"
	CodeInvalidToken      = "invalid_token"
	CodeAlreadyExists     = "already_exists"
	CodeTriesOut          = "tries_out"
	CodeInvalidEmail      = "invalid_email"
	CodePayloadTooLarge   = "payload_too_large"
)

// AppError is the canonical error type for the Certly API.
//
// # Security
//
// The Cause field is for server-side logging only and is never sent to clients
// to avoid leaking internal implementation details (e.g., Redis addresses).
type AppError struct {
	// Code is a machine-readable error identifier (e.g. "invalid_code").
	Code string `json:"code"`
	// Message is a human-readable description safe to return to the client.
	Message string `json:"error"`
	// HTTPStatus is the HTTP response status code.
	HTTPStatus int `json:"-"`
	// Cause is the underlying error, used for server-side logging only.
	Cause error `json:"-"`
	// Details holds per-field validation errors for bad_request responses.
	Details []FieldError `json:"details,omitempty"`
	// RetryAfter is the number of seconds until the subject is unblocked.
	RetryAfter int64 `json:"retry_after,omitempty"`
	// Timestamp is the unix time at which the subject is unblocked.
	Timestamp int64 `json:"timestamp,omitempty"`
	// Endpoints lists the known routes for page_not_found responses.
	Endpoints []string `json:"endpoints,omitempty"`
}

// FieldError represents a single field-level validation failure.
type FieldError struct {
	// Field is the JSON field name that failed validation.
	Field string `json:"field"`
	// Message is the human-readable description of the failure.
	Message string `json:"message"`
}

// Error implements the error interface. It returns the client-safe message.
func (e *AppError) Error() string { return e.Message }

// Unwrap allows [errors.Is] and [errors.As] to traverse the cause chain.
func (e *AppError) Unwrap() error { return e.Cause }

// IsThrottle reports whether the error carries retry information.
func (e *AppError) IsThrottle() bool { return e.Timestamp > 0 }

// # Client Errors (4xx)

// BadRequest creates a 400 [AppError] naming the invalid part of the request.
//
// Example:
//
//	apperr.BadRequest("body") // Returns "Bad request: invalid body"
func BadRequest(whatInvalid string, details ...FieldError) *AppError {
	return &AppError{
		Code:       CodeBadRequest,
		Message:    "Bad request: invalid " + whatInvalid,
		HTTPStatus: http.StatusBadRequest,
		Details:    details,
	}
}

// ResourceNotFound creates a 404 [AppError] for a named resource.
func ResourceNotFound(what string) *AppError {
	return &AppError{
		Code:       CodeResourceNotFound,
		Message:    "Resource not found: " + what + " not found",
		HTTPStatus: http.StatusNotFound,
	}
}

// PageNotFound creates a 404 [AppError] listing the routes that do exist.
func PageNotFound(endpoints ...string) *AppError {
	return &AppError{
		Code:       CodePageNotFound,
		Message:    "Page not found",
		HTTPStatus: http.StatusNotFound,
		Endpoints:  endpoints,
	}
}

// EmailRateLimit creates a 429 [AppError] for a throttled email address.
func EmailRateLimit(retryAfter time.Duration, unblockAt time.Time) *AppError {
	return throttle(CodeEmailRateLimit, "Email rate limit hit", retryAfter, unblockAt)
}

// IPRateLimit creates a 429 [AppError] for a throttled IP address.
func IPRateLimit(retryAfter time.Duration, unblockAt time.Time) *AppError {
	return throttle(CodeIPRateLimit, "IP rate limit hit", retryAfter, unblockAt)
}

// TriesOut creates a 429 [AppError] raised when a code was guessed wrong too often.
func TriesOut(retryAfter time.Duration, unblockAt time.Time) *AppError {
	err := throttle(CodeTriesOut, "", retryAfter, unblockAt)
	err.Message = fmt.Sprintf("The number of attempts has ended. Email blocked for %ds", err.RetryAfter)
	return err
}

// RequestsRateLimit creates a 429 [AppError] for the global request throttle.
func RequestsRateLimit() *AppError {
	return &AppError{
		Code:       CodeRequestsRateLimit,
		Message:    "Requests rate limit hit",
		HTTPStatus: http.StatusTooManyRequests,
	}
}

// InvalidRoute creates a 409 [AppError] when a code was issued for another action.
func InvalidRoute(correctRoute string) *AppError {
	return &AppError{
		Code:       CodeInvalidRoute,
		Message:    "Invalid route: the correct route is " + correctRoute,
		HTTPStatus: http.StatusConflict,
	}
}

// InvalidCode creates a 400 [AppError] for a wrong or malformed code.
func InvalidCode() *AppError {
	return &AppError{
		Code:       CodeInvalidCode,
		Message:    "Invalid code",
		HTTPStatus: http.StatusBadRequest,
	}
}

// InvalidToken creates a 400 [AppError] for a stale or foreign token.
func InvalidToken() *AppError {
	return &AppError{
		Code:       CodeInvalidToken,
		Message:    "Code is outdated or invalid token",
		HTTPStatus: http.StatusBadRequest,
	}
}

// AlreadyExists creates a 409 [AppError] for duplicate or unique-constraint violations.
func AlreadyExists(what string) *AppError {
	return &AppError{
		Code:       CodeAlreadyExists,
		Message:    "The entry for " + what + " already exists",
		HTTPStatus: http.StatusConflict,
	}
}

// InvalidEmail creates a 400 [AppError] when an email does not own the resource.
func InvalidEmail() *AppError {
	return &AppError{
		Code:       CodeInvalidEmail,
		Message:    "Invalid email",
		HTTPStatus: http.StatusBadRequest,
	}
}

// PayloadTooLarge creates a 413 [AppError].
func PayloadTooLarge(bytesLimit int64) *AppError {
	return &AppError{
		Code:       CodePayloadTooLarge,
		Message:    fmt.Sprintf("The body payload limit (%d bytes) reached", bytesLimit),
		HTTPStatus: http.StatusRequestEntityTooLarge,
	}
}

// # Server Errors (5xx)

// InternalServer creates a 500 [AppError] naming the failing subsystem
// ("cache storage", "DB", "broker", ...). The cause is stored for logging
// but is never sent to the client.
func InternalServer(subsystem string, cause error) *AppError {
	return &AppError{
		Code:       CodeInternalServer,
		Message:    "Something went wrong with " + subsystem,
		HTTPStatus: http.StatusInternalServerError,
		Cause:      cause,
	}
}

// Internal creates a 500 [AppError] wrapping an unexpected server-side error.
func Internal(cause error) *AppError {
	return InternalServer("the server", cause)
}

// # Helpers

func throttle(code, message string, retryAfter time.Duration, unblockAt time.Time) *AppError {
	seconds := int64(retryAfter / time.Second)
	if seconds < 0 {
		seconds = 0
	}
	return &AppError{
		Code:       code,
		Message:    fmt.Sprintf("%s. Retry in %ds", message, seconds),
		HTTPStatus: http.StatusTooManyRequests,
		RetryAfter: seconds,
		Timestamp:  unblockAt.Unix(),
	}
}

// IsAppError reports whether err (or any error in its chain) is an [*AppError].
func IsAppError(err error) bool {
	var ae *AppError
	return errors.As(err, &ae)
}

// As extracts the [*AppError] from err's chain. It returns nil if not found.
func As(err error) *AppError {
	var ae *AppError
	if errors.As(err, &ae) {
		return ae
	}
	return nil
}
