// Copyright (c) 2026 Sentra. All rights reserved.
// Author: dev@sentra.id

// PostgreSQL implementation of the credential storage layer.
//
// # Architecture
//
// Repositories in this file are strictly separated from domain logic. They
// implement domain-defined interfaces (e.g., [UserRepository]) using the
// [pgxpool.Pool] connection manager.
//
// # Error Mapping
//
// Storage-specific errors (like pgx.ErrNoRows) are mapped to domain-friendly
// [apperr.AppError] types to avoid leaking storage implementation details.

package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sentra-id/sentra/internal/platform/apperr"
	"github.com/sentra-id/sentra/internal/platform/sec"
)

// # User Repository

// PostgresUserRepository implements the UserRepository interface using pgx.
type PostgresUserRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository creates a new PostgreSQL implementation of the UserRepository.
func NewUserRepository(pool *pgxpool.Pool) *PostgresUserRepository {
	return &PostgresUserRepository{pool: pool}
}

const userColumns = `
	id, name, email, passwordhash, role,
	refreshtokenhash, resettokenhash, resetexpiresat,
	createdat, updatedat`

// scanUser hydrates a single User row from the given scanner.
func scanUser(row pgx.Row) (*User, error) {
	user := &User{}
	err := row.Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.PasswordHash,
		&user.Role,
		&user.RefreshTokenHash,
		&user.ResetTokenHash,
		&user.ResetExpiresAt,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return user, nil
}

/*
FindByEmail retrieves a credential record by its unique email address.

Description: Performs a lookup on the account table, filtering out soft-deleted users.

Parameters:
  - context: context.Context
  - email: string

Returns:
  - *User: Hydrated account entity
  - error: apperr.NotFound or database errors
*/
func (repository *PostgresUserRepository) FindByEmail(context context.Context, email string) (*User, error) {
	query := `
		SELECT` + userColumns + `
		FROM users.account
		WHERE email = $1 AND deletedat IS NULL`

	user, err := scanUser(repository.pool.QueryRow(context, query, email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("User")
		}
		return nil, fmt.Errorf("postgres_user_repo_find_by_email_failed: %w", err)
	}

	return user, nil
}

/*
FindByID retrieves a credential record by its unique ID.

Description: Primary key resolution for user accounts.

Parameters:
  - context: context.Context
  - id: string (UUIDv7)

Returns:
  - *User: Hydrated account entity
  - error: apperr.NotFound or execution errors
*/
func (repository *PostgresUserRepository) FindByID(context context.Context, id string) (*User, error) {
	query := `
		SELECT` + userColumns + `
		FROM users.account
		WHERE id = $1 AND deletedat IS NULL`

	user, err := scanUser(repository.pool.QueryRow(context, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("User")
		}
		return nil, fmt.Errorf("postgres_user_repo_find_by_id_failed: %w", err)
	}

	return user, nil
}

/*
FindByRefreshToken resolves the account holding the presented refresh token.

Description: Streams every non-deleted account with an active refresh token
hash and verifies each candidate with bcrypt. The slow hash rules out an
indexed lookup; the scan is bounded by the number of concurrently active
sessions (one per account).

Parameters:
  - context: context.Context
  - rawToken: string

Returns:
  - *User: Matching account entity
  - error: apperr.InvalidRefreshToken or database errors
*/
func (repository *PostgresUserRepository) FindByRefreshToken(context context.Context, rawToken string) (*User, error) {
	query := `
		SELECT` + userColumns + `
		FROM users.account
		WHERE refreshtokenhash <> '' AND deletedat IS NULL`

	rows, err := repository.pool.Query(context, query)
	if err != nil {
		return nil, fmt.Errorf("postgres_user_repo_find_by_refresh_token_failed: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("postgres_user_repo_scan_failed: %w", err)
		}
		if sec.CheckTokenHash(rawToken, user.RefreshTokenHash) {
			return user, nil
		}
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres_user_repo_find_by_refresh_token_failed: %w", err)
	}

	return nil, apperr.InvalidRefreshToken()
}

/*
FindByResetToken resolves the account holding the presented reset token.

Description: Same scan-and-verify approach as [FindByRefreshToken]. Expiry is
deliberately NOT filtered here so the caller can distinguish an expired token
from an unknown one.

Parameters:
  - context: context.Context
  - rawToken: string

Returns:
  - *User: Matching account entity
  - error: apperr.InvalidResetToken or database errors
*/
func (repository *PostgresUserRepository) FindByResetToken(context context.Context, rawToken string) (*User, error) {
	query := `
		SELECT` + userColumns + `
		FROM users.account
		WHERE resettokenhash <> '' AND deletedat IS NULL`

	rows, err := repository.pool.Query(context, query)
	if err != nil {
		return nil, fmt.Errorf("postgres_user_repo_find_by_reset_token_failed: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("postgres_user_repo_scan_failed: %w", err)
		}
		if sec.CheckTokenHash(rawToken, user.ResetTokenHash) {
			return user, nil
		}
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres_user_repo_find_by_reset_token_failed: %w", err)
	}

	return nil, apperr.InvalidResetToken()
}

/*
SetRefreshTokenHash stores the hash of a freshly issued refresh token.

Description: Unconditional overwrite. Whatever session existed before is
superseded, enforcing at most one active refresh token per account.

Parameters:
  - context: context.Context
  - userID: string
  - tokenHash: string

Returns:
  - error: Execution errors
*/
func (repository *PostgresUserRepository) SetRefreshTokenHash(context context.Context, userID, tokenHash string) error {
	const query = `
		UPDATE users.account
		SET refreshtokenhash = $2, updatedat = $3
		WHERE id = $1 AND deletedat IS NULL`

	_, err := repository.pool.Exec(context, query, userID, tokenHash, time.Now())
	if err != nil {
		return fmt.Errorf("postgres_user_repo_set_refresh_token_failed: %w", err)
	}

	return nil
}

/*
ReplaceRefreshTokenHash rotates the stored refresh token hash atomically.

Description: Compare-and-swap on the hash column. The WHERE clause guards on
the old hash still being current, so of two concurrent rotations of the same
token exactly one wins and the loser gets apperr.InvalidRefreshToken.

Parameters:
  - context: context.Context
  - userID: string
  - oldHash: string
  - newHash: string

Returns:
  - error: apperr.InvalidRefreshToken or execution errors
*/
func (repository *PostgresUserRepository) ReplaceRefreshTokenHash(context context.Context, userID, oldHash, newHash string) error {
	const query = `
		UPDATE users.account
		SET refreshtokenhash = $3, updatedat = $4
		WHERE id = $1 AND refreshtokenhash = $2 AND deletedat IS NULL`

	tag, err := repository.pool.Exec(context, query, userID, oldHash, newHash, time.Now())
	if err != nil {
		return fmt.Errorf("postgres_user_repo_replace_refresh_token_failed: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return apperr.InvalidRefreshToken()
	}

	return nil
}

/*
ClearRefreshToken removes the account's active refresh token hash.

Description: Logout primitive. Idempotent: clearing an already-empty hash
succeeds.

Parameters:
  - context: context.Context
  - userID: string

Returns:
  - error: Execution errors
*/
func (repository *PostgresUserRepository) ClearRefreshToken(context context.Context, userID string) error {
	const query = `
		UPDATE users.account
		SET refreshtokenhash = '', updatedat = $2
		WHERE id = $1 AND deletedat IS NULL`

	_, err := repository.pool.Exec(context, query, userID, time.Now())
	if err != nil {
		return fmt.Errorf("postgres_user_repo_clear_refresh_token_failed: %w", err)
	}

	return nil
}

/*
SetResetToken stores a pending password reset token hash with its expiry.

Description: Both reset columns are written together. A newer reset request
supersedes any pending one.

Parameters:
  - context: context.Context
  - userID: string
  - tokenHash: string
  - expiresAt: time.Time

Returns:
  - error: Execution errors
*/
func (repository *PostgresUserRepository) SetResetToken(context context.Context, userID, tokenHash string, expiresAt time.Time) error {
	const query = `
		UPDATE users.account
		SET resettokenhash = $2, resetexpiresat = $3, updatedat = $4
		WHERE id = $1 AND deletedat IS NULL`

	_, err := repository.pool.Exec(context, query, userID, tokenHash, expiresAt, time.Now())
	if err != nil {
		return fmt.Errorf("postgres_user_repo_set_reset_token_failed: %w", err)
	}

	return nil
}

/*
ConsumePasswordReset finalizes a password reset in a single statement.

Description: Compare-and-swap on the reset token hash. Sets the new password
hash, clears both reset columns to their defined empty state, and invalidates
any active session in one atomic UPDATE. A concurrent consumption of the same
token loses the race and gets apperr.InvalidResetToken.

Parameters:
  - context: context.Context
  - userID: string
  - resetHash: string
  - newPasswordHash: string

Returns:
  - error: apperr.InvalidResetToken or execution errors
*/
func (repository *PostgresUserRepository) ConsumePasswordReset(context context.Context, userID, resetHash, newPasswordHash string) error {
	const query = `
		UPDATE users.account
		SET passwordhash = $3,
		    resettokenhash = '',
		    resetexpiresat = 'epoch'::timestamptz,
		    refreshtokenhash = '',
		    updatedat = $4
		WHERE id = $1 AND resettokenhash = $2 AND deletedat IS NULL`

	tag, err := repository.pool.Exec(context, query, userID, resetHash, newPasswordHash, time.Now())
	if err != nil {
		return fmt.Errorf("postgres_user_repo_consume_reset_failed: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return apperr.InvalidResetToken()
	}

	return nil
}
