// Copyright (c) 2026 Sentra. All rights reserved.
// Author: dev@sentra.id

package auth

import "time"

// # Authentication Constraints

const (
	// AccessTokenTTL is the duration a JWT access token remains valid.
	// We keep it short (15m) to minimize the impact of a leaked token.
	AccessTokenTTL = 15 * time.Minute

	// RefreshTokenLength is the byte length of the random secure refresh token.
	RefreshTokenLength = 32

	// RefreshTokenCookieTTL bounds the refresh token cookie lifetime on the
	// client. Server-side validity ends earlier, at rotation or logout.
	RefreshTokenCookieTTL = 30 * 24 * time.Hour

	// ResetTokenTTL is the duration a password reset token remains valid.
	// Short-lived (30 minutes) for security.
	ResetTokenTTL = 30 * time.Minute

	// ResetTokenLength is the byte length of the random password reset token.
	ResetTokenLength = 32
)
