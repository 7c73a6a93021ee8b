// Copyright (c) 2026 Sentra. All rights reserved.
// Author: dev@sentra.id

package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/sentra-id/sentra/internal/platform/apperr"
	"github.com/sentra-id/sentra/internal/platform/sec"
)

// # Contracts & Types

// TokenProvider defines the contract for generating signed access tokens.
type TokenProvider interface {
	// GenerateAccessToken creates a signed JWT string for the given user.
	//
	// # Parameters
	//   - userID: The ID of the account, carried as the subject claim.
	//   - email: The email of the account.
	//   - role: The role of the account.
	//   - timeToLive: The duration before the token expires.
	//
	// # Returns
	//   - A signed JWT string, or an err if signing fails.
	GenerateAccessToken(userID, email, role string, timeToLive time.Duration) (string, error)
}

// Mailer defines the contract for delivering password recovery email.
type Mailer interface {
	// SendPasswordResetEmail delivers the raw reset token to the account owner.
	SendPasswordResetEmail(ctx context.Context, email, rawToken string) error
}

// Service implements user authentication use cases.
//
// # Review Process
//
// This service is critical for security. Any changes to hashing, rotation,
// or login logic must be reviewed by the security team.
type Service struct {
	userRepository UserRepository
	tokenProvider  TokenProvider
	mailer         Mailer
}

// NewService constructs a new auth [Service] with necessary dependencies.
func NewService(userRepo UserRepository, tokenProv TokenProvider, mailer Mailer) *Service {
	return &Service{
		userRepository: userRepo,
		tokenProvider:  tokenProv,
		mailer:         mailer,
	}
}

// # Authentication Flow

// LoginSession represents a successfully established user session.
type LoginSession struct {
	AccessToken  string
	RefreshToken string
	User         *User
}

/*
Login validates user credentials and issues security tokens.

Description: Verifies identity, performs constant-time password comparison,
and stores the hash of a fresh refresh token on the credential record. Any
previously active session is superseded.

Parameters:
  - context: context.Context
  - email: string
  - password: string

Returns:
  - *LoginSession: Transport-ready session identifiers
  - err: apperr.InvalidCredentials or internal failures
*/
func (service *Service) Login(context context.Context, email, password string) (*LoginSession, error) {

	// If (err != nil) the user does not exist. Generic failure to prevent enumeration.
	user, err := service.userRepository.FindByEmail(context, email)
	if err != nil {
		return nil, apperr.InvalidCredentials()
	}

	// Verify password hash using constant-time comparison in bcrypt to prevent timing attacks
	if !sec.CheckPasswordHash(password, user.PasswordHash) {
		return nil, apperr.InvalidCredentials()
	}

	// Generate short-lived Access Token
	accessToken, err := service.tokenProvider.GenerateAccessToken(user.ID, user.Email, string(user.Role), AccessTokenTTL)
	if err != nil {
		return nil, fmt.Errorf("auth_service_token_generation_failed: %w", err)
	}

	// Generate long-lived opaque Refresh Token
	refreshToken, err := sec.GenerateSecureToken(RefreshTokenLength)
	if err != nil {
		return nil, fmt.Errorf("auth_service_refresh_token_failed: %w", err)
	}

	// Persist only the slow hash. The raw token travels to the client once.
	tokenHash, err := sec.HashToken(refreshToken)
	if err != nil {
		return nil, fmt.Errorf("auth_service_refresh_token_hash_failed: %w", err)
	}

	if err := service.userRepository.SetRefreshTokenHash(context, user.ID, tokenHash); err != nil {
		return nil, fmt.Errorf("auth_service_session_creation_failed: %w", err)
	}

	return &LoginSession{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		User:         user,
	}, nil
}

// # Session Management

/*
Refresh implements the refresh token rotation mechanism.

Description: Resolves the presented token to its account, then swaps the
stored hash for a fresh one with a compare-and-swap update. The swap makes
each refresh token single-use: of two concurrent presentations of the same
token exactly one succeeds, the other fails with apperr.InvalidRefreshToken.

Parameters:
  - context: context.Context
  - refreshToken: string

Returns:
  - *LoginSession: New session credentials
  - err: apperr.InvalidRefreshToken or storage failures
*/
func (service *Service) Refresh(context context.Context, refreshToken string) (*LoginSession, error) {

	// Resolve the raw token against stored hashes
	user, err := service.userRepository.FindByRefreshToken(context, refreshToken)
	if err != nil {
		if apperr.IsAppError(err) {
			return nil, err
		}
		return nil, fmt.Errorf("auth_service_refresh_lookup_failed: %w", err)
	}

	// Generate a fresh Refresh Token for the rotation
	newRefreshToken, err := sec.GenerateSecureToken(RefreshTokenLength)
	if err != nil {
		return nil, fmt.Errorf("auth_service_refresh_secure_token_failed: %w", err)
	}

	newTokenHash, err := sec.HashToken(newRefreshToken)
	if err != nil {
		return nil, fmt.Errorf("auth_service_refresh_token_hash_failed: %w", err)
	}

	// Rotation: atomically supersede the presented token. Losing a concurrent
	// race here is reported as an invalid token, same as a replayed one.
	if err := service.userRepository.ReplaceRefreshTokenHash(context, user.ID, user.RefreshTokenHash, newTokenHash); err != nil {
		if apperr.IsAppError(err) {
			return nil, err
		}
		return nil, fmt.Errorf("auth_service_refresh_rotation_failed: %w", err)
	}

	// Generate a fresh Access Token
	accessToken, err := service.tokenProvider.GenerateAccessToken(user.ID, user.Email, string(user.Role), AccessTokenTTL)
	if err != nil {
		return nil, fmt.Errorf("auth_service_refresh_access_token_failed: %w", err)
	}

	return &LoginSession{
		AccessToken:  accessToken,
		RefreshToken: newRefreshToken,
		User:         user,
	}, nil
}

/*
Logout invalidates the actor's active session.

Description: Clears the stored refresh token hash so the outstanding refresh
token can never be used again. Idempotent: logging out with no active session
succeeds.

Parameters:
  - context: context.Context
  - actorID: string

Returns:
  - err: Revocation failures
*/
func (service *Service) Logout(context context.Context, actorID string) error {
	if err := service.userRepository.ClearRefreshToken(context, actorID); err != nil {
		return fmt.Errorf("auth_service_logout_failed: %w", err)
	}
	return nil
}

// # Password Recovery

/*
ForgotPassword initiates the forgot-password flow.

Description: Generates a secure token, stores its hash with an absolute
expiry on the credential record, and dispatches the raw token by email.
A delivery failure is reported to the caller but the stored reset state is
kept: the emitted token, had it arrived, would still be honored.

Parameters:
  - context: context.Context
  - email: string

Returns:
  - err: apperr.EmailDeliveryFailure or generation errors
*/
func (service *Service) ForgotPassword(context context.Context, email string) error {
	// Look up user.
	// NOTE: Unknown emails succeed silently to prevent user enumeration.
	// The mailer is never invoked in that case.
	user, err := service.userRepository.FindByEmail(context, email)
	if err != nil {
		return nil
	}

	// Generate reset token
	token, err := sec.GenerateSecureToken(ResetTokenLength)
	if err != nil {
		return fmt.Errorf("auth_service_generate_reset_token_failed: %w", err)
	}

	tokenHash, err := sec.HashToken(token)
	if err != nil {
		return fmt.Errorf("auth_service_reset_token_hash_failed: %w", err)
	}

	// Persist the hash and absolute expiry before attempting delivery
	expiresAt := time.Now().Add(ResetTokenTTL)
	if err := service.userRepository.SetResetToken(context, user.ID, tokenHash, expiresAt); err != nil {
		return fmt.Errorf("auth_service_save_reset_token_failed: %w", err)
	}

	// Dispatch the raw token. No rollback on failure: the token remains valid
	// until its expiry and a retry simply supersedes it.
	if err := service.mailer.SendPasswordResetEmail(context, user.Email, token); err != nil {
		return apperr.EmailDeliveryFailure(err)
	}

	return nil
}

/*
ValidateResetToken checks whether a reset token is usable without consuming it.

Description: Lets a reset form pre-check the token before asking the user for
a new password. An unknown token and an expired token fail with distinct codes.

Parameters:
  - context: context.Context
  - token: string

Returns:
  - err: apperr.InvalidResetToken, apperr.ExpiredResetToken, or storage failures
*/
func (service *Service) ValidateResetToken(context context.Context, token string) error {
	user, err := service.userRepository.FindByResetToken(context, token)
	if err != nil {
		if apperr.IsAppError(err) {
			return err
		}
		return fmt.Errorf("auth_service_validate_reset_token_failed: %w", err)
	}

	if time.Now().After(user.ResetExpiresAt) {
		return apperr.ExpiredResetToken()
	}

	return nil
}

/*
ResetPassword completes the forgot-password flow.

Description: Verifies the token and its expiry, hashes the new password, and
consumes the token with a compare-and-swap update that also clears the reset
state and revokes the active session. The token is single-use.

Parameters:
  - context: context.Context
  - token: string
  - newPassword: string

Returns:
  - err: apperr.InvalidResetToken, apperr.ExpiredResetToken, or update failures
*/
func (service *Service) ResetPassword(context context.Context, token, newPassword string) error {

	// Resolve the raw token regardless of expiry so expiry gets its own code
	user, err := service.userRepository.FindByResetToken(context, token)
	if err != nil {
		if apperr.IsAppError(err) {
			return err
		}
		return fmt.Errorf("auth_service_reset_lookup_failed: %w", err)
	}

	if time.Now().After(user.ResetExpiresAt) {
		return apperr.ExpiredResetToken()
	}

	// Hash the new password securely
	hashedPassword, err := sec.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("auth_service_reset_password_hash_failed: %w", err)
	}

	// Atomically swap the password and clear the reset state
	if err := service.userRepository.ConsumePasswordReset(context, user.ID, user.ResetTokenHash, hashedPassword); err != nil {
		if apperr.IsAppError(err) {
			return err
		}
		return fmt.Errorf("auth_service_reset_password_update_failed: %w", err)
	}

	return nil
}
