// Copyright (c) 2026 PhishGuard. All rights reserved.
// Author: minh.vantran.sec@gmail.com

/*
Package apperr defines the centralized error handling framework for PhishGuard.

It provides a rich error type that bridges the gap between low-level Domain/Storage
errors and high-level HTTP responses.

Architecture:

  - AppError: A struct containing machine-readable ErrorCode and user-friendly messages.
  - Domain Kinds: One constructor per store-level failure mode (duplicate
    username, invalid credentials, empty content, ...).
  - Mapping: Explicit mapping from AppError to standard HTTP Status Codes.

Every error that leaves a store or service should be wrapped as an [AppError]
to ensure consistent API responses and testable failure kinds.
*/
package apperr

import (
	"errors"
	"net/http"
)

// Machine-readable error codes. Callers branch on these, never on messages.
const (
	CodeDuplicateUsername   = "DUPLICATE_USERNAME"
	CodeDuplicateEmail      = "DUPLICATE_EMAIL"
	CodeInvalidEmailFormat  = "INVALID_EMAIL_FORMAT"
	CodeInvalidCredentials  = "INVALID_CREDENTIALS"
	CodeUnauthenticated     = "UNAUTHENTICATED"
	CodeEmptyContent        = "EMPTY_CONTENT"
	CodeNotFound            = "NOT_FOUND"
	CodeAnalysisUnavailable = "ANALYSIS_UNAVAILABLE"
	CodeValidationError     = "VALIDATION_ERROR"
	CodeInternalError       = "INTERNAL_ERROR"
)

// AppError is the canonical error type for the PhishGuard API.
//
// It carries an HTTP status code, a machine-readable code, a client-safe
// message, and an optional slice of field-level validation errors.
//
// # Security
//
// The Cause field is for server-side logging only and is never sent to clients
// to avoid leaking internal implementation details (e.g., storage keys).
type AppError struct {
	// Code is a machine-readable error identifier (e.g. "NOT_FOUND").
	Code string `json:"code"`
	// Message is a human-readable description safe to return to the client.
	Message string `json:"error"`
	// HTTPStatus is the HTTP response status code.
	HTTPStatus int `json:"-"`
	// Cause is the underlying error, used for server-side logging only.
	Cause error `json:"-"`
	// Details holds per-field validation errors for VALIDATION_ERROR responses.
	Details []FieldError `json:"details,omitempty"`
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

// # Identity Failures

// DuplicateUsername creates a 409 [AppError] for a username already held by a
// live account (case-insensitive comparison).
func DuplicateUsername() *AppError {
	return &AppError{
		Code:       CodeDuplicateUsername,
		Message:    "Username already taken",
		HTTPStatus: http.StatusConflict,
	}
}

// DuplicateEmail creates a 409 [AppError] for an email already held by a live
// account (case-insensitive comparison).
func DuplicateEmail() *AppError {
	return &AppError{
		Code:       CodeDuplicateEmail,
		Message:    "An account with this email already exists",
		HTTPStatus: http.StatusConflict,
	}
}

// InvalidEmailFormat creates a 400 [AppError] for an email failing the basic
// local@domain.tld pattern check.
func InvalidEmailFormat() *AppError {
	return &AppError{
		Code:       CodeInvalidEmailFormat,
		Message:    "Invalid email format",
		HTTPStatus: http.StatusBadRequest,
	}
}

// InvalidCredentials creates a 401 [AppError].
//
// The same error covers unknown usernames and wrong passwords to prevent
// account enumeration.
func InvalidCredentials() *AppError {
	return &AppError{
		Code:       CodeInvalidCredentials,
		Message:    "Invalid username or password",
		HTTPStatus: http.StatusUnauthorized,
	}
}

// Unauthenticated creates a 401 [AppError] for operations that require an
// acting identity (report submission, commenting).
func Unauthenticated() *AppError {
	return &AppError{
		Code:       CodeUnauthenticated,
		Message:    "Authentication required",
		HTTPStatus: http.StatusUnauthorized,
	}
}

// InvalidToken creates a 401 [AppError] for a malformed or expired bearer
// token. Shares [CodeUnauthenticated] so clients have one branch for "please
// log in again".
func InvalidToken(message string) *AppError {
	return &AppError{
		Code:       CodeUnauthenticated,
		Message:    message,
		HTTPStatus: http.StatusUnauthorized,
	}
}

// # Content Failures

// EmptyContent creates a 400 [AppError] for content that is empty after trimming.
func EmptyContent() *AppError {
	return &AppError{
		Code:       CodeEmptyContent,
		Message:    "Content must not be empty",
		HTTPStatus: http.StatusBadRequest,
	}
}

// NotFound creates a 404 [AppError] for a named resource.
//
// Example:
//
//	apperr.NotFound("Report") // Returns "Report not found"
func NotFound(resource string) *AppError {
	return &AppError{
		Code:       CodeNotFound,
		Message:    resource + " not found",
		HTTPStatus: http.StatusNotFound,
	}
}

// ValidationError creates a 400 [AppError] with optional per-field details.
func ValidationError(msg string, details ...FieldError) *AppError {
	return &AppError{
		Code:       CodeValidationError,
		Message:    msg,
		HTTPStatus: http.StatusBadRequest,
		Details:    details,
	}
}

// # External Collaborators

// AnalysisUnavailable creates a 502 [AppError] wrapping an analysis-provider
// failure. The cause is propagated unchanged for server-side logging.
func AnalysisUnavailable(cause error) *AppError {
	return &AppError{
		Code:       CodeAnalysisUnavailable,
		Message:    "Failed to analyze email. The AI service may be unavailable",
		HTTPStatus: http.StatusBadGateway,
		Cause:      cause,
	}
}

// # Server Errors (5xx)

// Internal creates a 500 [AppError] wrapping an unexpected server-side error.
// The cause is stored for logging but is never sent to the client.
func Internal(cause error) *AppError {
	return &AppError{
		Code:       CodeInternalError,
		Message:    "An unexpected error occurred",
		HTTPStatus: http.StatusInternalServerError,
		Cause:      cause,
	}
}

// # Helpers

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

// CodeOf returns the machine-readable code of err, or an empty string when
// err is nil or not an [*AppError].
func CodeOf(err error) string {
	ae := As(err)
	if ae == nil {
		return ""
	}
	return ae.Code
}
