// Copyright (c) 2026 Sentra. All rights reserved.
// Author: dev@sentra.id

/*
Package auth implements the user identity and session management layer.

It defines the core credential entity and the logic for login, refresh-token
rotation, logout, and password recovery.

# Architecture

This layer is the "Truth" of the system. The entity defined here has no
external dependencies and encapsulates all business rules related to user
identity and active session state.
*/
package auth

import (
	"time"

	"github.com/sentra-id/sentra/internal/platform/sec"
)

// # Domain Entities

// User represents a registered Sentra account and its credential state.
//
// The record is the single source of truth for session state: at most one
// refresh token hash and at most one pending reset token hash live here,
// so issuing a new token always supersedes the previous one.
type User struct {
	ID           string       `json:"id"`
	Name         string       `json:"name"`
	Email        string       `json:"email"`
	PasswordHash string       `json:"-"` // Explicitly omitted from JSON for security.
	Role         sec.UserRole `json:"role"`

	// RefreshTokenHash is the bcrypt hash of the single active refresh token.
	// Empty string means no active session.
	RefreshTokenHash string `json:"-"`

	// ResetTokenHash is the bcrypt hash of the pending password reset token.
	// Empty string means no reset in flight. ResetExpiresAt is only meaningful
	// while ResetTokenHash is set; both fields are always written together.
	ResetTokenHash string    `json:"-"`
	ResetExpiresAt time.Time `json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// HasActiveResetToken reports whether a password reset is currently in flight.
func (user *User) HasActiveResetToken() bool {
	return user.ResetTokenHash != ""
}

// # Field Identifiers

// Global field names for validation and identity mapping in the authentication domain.
const (
	FieldName        = "name"
	FieldEmail       = "email"
	FieldPassword    = "password"
	FieldRole        = "role"
	FieldToken       = "token"
	FieldNewPassword = "new_password"
	FieldAccessToken = "access_token"
	FieldTokenType   = "token_type"
	FieldExpiresIn   = "expires_in"
	FieldUser        = "user"
	FieldMessage     = "message"
)
