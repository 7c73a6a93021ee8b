// Copyright (c) 2026 Sentra. All rights reserved.
// Author: dev@sentra.id

package account

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sentra-id/sentra/internal/platform/apperr"
	"github.com/sentra-id/sentra/internal/platform/dberr"
	"github.com/sentra-id/sentra/internal/users/auth"
	"github.com/sentra-id/sentra/pkg/pagination"
)

// # Account Repository

// PostgresAccountRepository implements the AccountRepository interface using pgx.
type PostgresAccountRepository struct {
	pool *pgxpool.Pool
}

// NewAccountRepository creates a new PostgreSQL implementation of the AccountRepository.
func NewAccountRepository(pool *pgxpool.Pool) *PostgresAccountRepository {
	return &PostgresAccountRepository{pool: pool}
}

const accountColumns = `
	id, name, email, passwordhash, role,
	refreshtokenhash, resettokenhash, resetexpiresat,
	createdat, updatedat`

func scanAccount(row pgx.Row) (*auth.User, error) {
	user := &auth.User{}
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
Create persists a new account record into the users.account table.

Description: The credential columns start in their defined empty state: no
active session, no pending reset.

Parameters:
  - context: context.Context
  - user: *auth.User (Entity to persist)

Returns:
  - error: Database constraint violations or connectivity errors
*/
func (repository *PostgresAccountRepository) Create(context context.Context, user *auth.User) error {
	const query = `
		INSERT INTO users.account (
			id, name, email, passwordhash, role,
			refreshtokenhash, resettokenhash, resetexpiresat,
			createdat, updatedat
		) VALUES ($1, $2, $3, $4, $5, '', '', 'epoch'::timestamptz, $6, $7)`

	now := time.Now()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = now

	_, err := repository.pool.Exec(context, query,
		user.ID,
		user.Name,
		user.Email,
		user.PasswordHash,
		user.Role,
		user.CreatedAt,
		user.UpdatedAt,
	)

	// Constraint violations (duplicate email, bad role) map to client-safe
	// errors; the service-level uniqueness pre-check races with concurrent
	// inserts, so the unique index is the real arbiter.
	return dberr.Wrap(err, "postgres_account_repo_create_failed")
}

/*
FindAll returns one page of non-deleted accounts, newest first.

Description: UUIDv7 primary keys are time-sortable, so ordering by id gives
creation order without an extra index.

Parameters:
  - context: context.Context
  - params: pagination.Params

Returns:
  - []*auth.User: Hydrated page of accounts
  - error: Query failures
*/
func (repository *PostgresAccountRepository) FindAll(context context.Context, params pagination.Params) ([]*auth.User, error) {
	query := `
		SELECT` + accountColumns + `
		FROM users.account
		WHERE deletedat IS NULL
		ORDER BY id DESC
		LIMIT $1 OFFSET $2`

	rows, err := repository.pool.Query(context, query, params.Limit, params.Offset())
	if err != nil {
		return nil, fmt.Errorf("postgres_account_repo_find_all_failed: %w", err)
	}
	defer rows.Close()

	var users []*auth.User
	for rows.Next() {
		user, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("postgres_account_repo_scan_failed: %w", err)
		}
		users = append(users, user)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres_account_repo_find_all_failed: %w", err)
	}

	return users, nil
}

/*
Count returns the total number of non-deleted accounts.

Parameters:
  - context: context.Context

Returns:
  - int: Total account count
  - error: Query failures
*/
func (repository *PostgresAccountRepository) Count(context context.Context) (int, error) {
	const query = "SELECT COUNT(*) FROM users.account WHERE deletedat IS NULL"

	var total int
	if err := repository.pool.QueryRow(context, query).Scan(&total); err != nil {
		return 0, fmt.Errorf("postgres_account_repo_count_failed: %w", err)
	}

	return total, nil
}

/*
FindByID retrieves an account by its unique ID.

Parameters:
  - context: context.Context
  - id: string (UUIDv7)

Returns:
  - *auth.User: Hydrated account entity
  - error: apperr.NotFound or execution errors
*/
func (repository *PostgresAccountRepository) FindByID(context context.Context, id string) (*auth.User, error) {
	query := `
		SELECT` + accountColumns + `
		FROM users.account
		WHERE id = $1 AND deletedat IS NULL`

	user, err := scanAccount(repository.pool.QueryRow(context, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("User")
		}
		return nil, fmt.Errorf("postgres_account_repo_find_by_id_failed: %w", err)
	}

	return user, nil
}

/*
FindByEmail retrieves an account by its unique email address.

Parameters:
  - context: context.Context
  - email: string

Returns:
  - *auth.User: Hydrated account entity
  - error: apperr.NotFound or database errors
*/
func (repository *PostgresAccountRepository) FindByEmail(context context.Context, email string) (*auth.User, error) {
	query := `
		SELECT` + accountColumns + `
		FROM users.account
		WHERE email = $1 AND deletedat IS NULL`

	user, err := scanAccount(repository.pool.QueryRow(context, query, email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("User")
		}
		return nil, fmt.Errorf("postgres_account_repo_find_by_email_failed: %w", err)
	}

	return user, nil
}

/*
Update persists changes to an account's mutable fields.

Description: Synchronizes name, email, password hash, and role, refreshing
the updatedat timestamp.

Parameters:
  - context: context.Context
  - user: *auth.User

Returns:
  - error: Update failures
*/
func (repository *PostgresAccountRepository) Update(context context.Context, user *auth.User) error {
	const query = `
		UPDATE users.account
		SET name = $2, email = $3, passwordhash = $4, role = $5, updatedat = $6
		WHERE id = $1 AND deletedat IS NULL`

	user.UpdatedAt = time.Now()
	_, err := repository.pool.Exec(context, query,
		user.ID,
		user.Name,
		user.Email,
		user.PasswordHash,
		user.Role,
		user.UpdatedAt,
	)

	return dberr.Wrap(err, "postgres_account_repo_update_failed")
}

/*
SoftDelete marks an account as deleted and strips its credential state.

Description: Retention-friendly deletion. Clearing the token hashes in the
same statement guarantees the account's refresh and reset tokens stop
resolving the moment the delete commits.

Parameters:
  - context: context.Context
  - id: string

Returns:
  - error: Execution failures
*/
func (repository *PostgresAccountRepository) SoftDelete(context context.Context, id string) error {
	const query = `
		UPDATE users.account
		SET deletedat = $2,
		    refreshtokenhash = '',
		    resettokenhash = '',
		    resetexpiresat = 'epoch'::timestamptz
		WHERE id = $1 AND deletedat IS NULL`

	_, err := repository.pool.Exec(context, query, id, time.Now())
	if err != nil {
		return fmt.Errorf("postgres_account_repo_soft_delete_failed: %w", err)
	}

	return nil
}
