// Copyright (c) 2026 Sentra. All rights reserved.
// Author: dev@sentra.id

/*
Package apperr defines the centralized error handling framework for Sentra.

It provides a rich error type that bridges the gap between low-level Domain/Storage
errors and high-level HTTP responses.

Architecture:

  - AppError: A struct containing machine-readable ErrorCode and user-friendly messages.
  - Taxonomy: One constructor per failure class the core can surface.
  - Mapping: Explicit mapping from AppError to standard HTTP Status Codes.

Every error that leaves the service layer should be wrapped as an [AppError] to ensure
consistent API responses.
*/
package apperr

import (
	"errors"
	"net/http"
)

// AppError is the canonical error type for the Sentra API.
//
// It carries an HTTP status code, a machine-readable code, a client-safe
// message, and an optional slice of field-level validation errors.
//
// # Security
//
// The Cause field is for server-side logging only and is never sent to clients
// to avoid leaking internal implementation details (e.g., SQL queries).
type AppError struct {
	// Code is a machine-readable error identifier (e.g. "NOT_FOUND", "FORBIDDEN").
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

// # Authentication Errors (401)

// InvalidCredentials creates a 401 [AppError] for a failed login attempt.
//
// The message deliberately does not distinguish an unknown email from a
// wrong password, to prevent account enumeration.
func InvalidCredentials() *AppError {
	return &AppError{
		Code:       "INVALID_CREDENTIALS",
		Message:    "Invalid login credentials",
		HTTPStatus: http.StatusUnauthorized,
	}
}

// InvalidRefreshToken creates a 401 [AppError] for an unknown, superseded,
// or already-consumed refresh token.
func InvalidRefreshToken() *AppError {
	return &AppError{
		Code:       "INVALID_REFRESH_TOKEN",
		Message:    "Invalid refresh token",
		HTTPStatus: http.StatusUnauthorized,
	}
}

// Unauthenticated creates a 401 [AppError] for requests lacking a resolved actor.
func Unauthenticated() *AppError {
	return &AppError{
		Code:       "UNAUTHENTICATED",
		Message:    "Authentication required",
		HTTPStatus: http.StatusUnauthorized,
	}
}

// Unauthorized creates a generic 401 [AppError].
func Unauthorized(msg string) *AppError {
	return &AppError{
		Code:       "UNAUTHORIZED",
		Message:    msg,
		HTTPStatus: http.StatusUnauthorized,
	}
}

// # Authorization Errors (403)

// Forbidden creates a 403 [AppError] carrying the denial reason.
func Forbidden(reason string) *AppError {
	return &AppError{
		Code:       "FORBIDDEN",
		Message:    reason,
		HTTPStatus: http.StatusForbidden,
	}
}

// # Resource Errors (404, 409)

// NotFound creates a 404 [AppError] for a named resource.
//
// Example:
//
//	apperr.NotFound("User") // Returns "User not found"
func NotFound(resource string) *AppError {
	return &AppError{
		Code:       "NOT_FOUND",
		Message:    resource + " not found",
		HTTPStatus: http.StatusNotFound,
	}
}

// Conflict creates a 409 [AppError] for duplicate or unique-constraint violations.
func Conflict(msg string) *AppError {
	return &AppError{
		Code:       "CONFLICT",
		Message:    msg,
		HTTPStatus: http.StatusConflict,
	}
}

// # Password Recovery Errors (400)

// InvalidResetToken creates a 400 [AppError] for a reset token that matches
// no stored credential record.
func InvalidResetToken() *AppError {
	return &AppError{
		Code:       "INVALID_RESET_TOKEN",
		Message:    "Password reset token is invalid or expired",
		HTTPStatus: http.StatusBadRequest,
	}
}

// ExpiredResetToken creates a 400 [AppError] for a reset token that matched a
// credential record but whose expiry has passed.
//
// Kept distinct from [InvalidResetToken] so the client can suggest requesting
// a fresh reset link.
func ExpiredResetToken() *AppError {
	return &AppError{
		Code:       "EXPIRED_RESET_TOKEN",
		Message:    "Password reset token has expired",
		HTTPStatus: http.StatusBadRequest,
	}
}

// ValidationError creates a 400 [AppError] with optional per-field details.
func ValidationError(msg string, details ...FieldError) *AppError {
	return &AppError{
		Code:       "VALIDATION_ERROR",
		Message:    msg,
		HTTPStatus: http.StatusBadRequest,
		Details:    details,
	}
}

// # Upstream Errors (5xx)

// EmailDeliveryFailure creates a 502 [AppError] wrapping a mail transport error.
// The caller sees that the notification was not delivered; the cause stays server-side.
func EmailDeliveryFailure(cause error) *AppError {
	return &AppError{
		Code:       "EMAIL_DELIVERY_FAILED",
		Message:    "Failed to deliver the notification email",
		HTTPStatus: http.StatusBadGateway,
		Cause:      cause,
	}
}

// Internal creates a 500 [AppError] wrapping an unexpected server-side error.
// The cause is stored for logging but is never sent to the client.
func Internal(cause error) *AppError {
	return &AppError{
		Code:       "INTERNAL_ERROR",
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

// IsNotFound reports whether err carries the NOT_FOUND code.
func IsNotFound(err error) bool {
	ae := As(err)
	return ae != nil && ae.Code == "NOT_FOUND"
}

// IsCode reports whether err carries the given machine-readable code.
func IsCode(err error, code string) bool {
	ae := As(err)
	return ae != nil && ae.Code == code
}
