// Copyright (c) 2026 Sentra. All rights reserved.
// Author: dev@sentra.id

package auth

import (
	"context"
	"time"
)

// # Storage Contracts

// UserRepository defines persistence operations for credential records.
//
// # Token Lookups
//
// Refresh and reset tokens are stored only as bcrypt hashes, so FindByRefreshToken
// and FindByResetToken cannot use an indexed equality lookup. Implementations
// scan candidate records carrying a non-empty hash and verify each with a
// constant-time bcrypt comparison.
type UserRepository interface {
	// FindByEmail resolves a non-deleted account by its unique email address.
	FindByEmail(ctx context.Context, email string) (*User, error)

	// FindByID resolves a non-deleted account by its primary key.
	FindByID(ctx context.Context, id string) (*User, error)

	// FindByRefreshToken resolves the account whose stored refresh token hash
	// verifies against rawToken. Returns apperr.InvalidRefreshToken when no
	// record matches.
	FindByRefreshToken(ctx context.Context, rawToken string) (*User, error)

	// FindByResetToken resolves the account whose stored reset token hash
	// verifies against rawToken, regardless of expiry. The caller decides
	// between invalid and expired. Returns apperr.InvalidResetToken when no
	// record matches.
	FindByResetToken(ctx context.Context, rawToken string) (*User, error)

	// SetRefreshTokenHash unconditionally stores tokenHash as the account's
	// single active refresh token hash, superseding any previous session.
	SetRefreshTokenHash(ctx context.Context, userID, tokenHash string) error

	// ReplaceRefreshTokenHash swaps oldHash for newHash only if oldHash is
	// still the stored value. Returns apperr.InvalidRefreshToken when the
	// stored value changed underneath us, which makes rotation single-use
	// under concurrent requests.
	ReplaceRefreshTokenHash(ctx context.Context, userID, oldHash, newHash string) error

	// ClearRefreshToken removes the account's active refresh token hash.
	ClearRefreshToken(ctx context.Context, userID string) error

	// SetResetToken stores the reset token hash and its absolute expiry,
	// superseding any previous pending reset.
	SetResetToken(ctx context.Context, userID, tokenHash string, expiresAt time.Time) error

	// ConsumePasswordReset atomically sets the new password hash and clears
	// the reset token state, but only if resetHash is still the stored reset
	// token hash. Returns apperr.InvalidResetToken when the token was already
	// consumed, which makes the reset token single-use under concurrency.
	ConsumePasswordReset(ctx context.Context, userID, resetHash, newPasswordHash string) error
}
