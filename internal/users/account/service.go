// Copyright (c) 2026 Sentra. All rights reserved.
// Author: dev@sentra.id

/*
Package account implements the administrative user management layer.

It covers the CRUD surface over accounts (create, list, read, partial
update, delete) while the auth package owns the credential lifecycle of the
same records. Which actor may reach which of these operations is decided by
the access guard at the HTTP layer; this service assumes the call is already
authorized.
*/
package account

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/sentra-id/sentra/internal/platform/apperr"
	"github.com/sentra-id/sentra/internal/platform/sec"
	"github.com/sentra-id/sentra/internal/users/auth"
	"github.com/sentra-id/sentra/pkg/pagination"
	"github.com/sentra-id/sentra/pkg/uuid"
)

// # Service Layer

// Service orchestrates business logic for account administration.
type Service struct {
	accountRepository AccountRepository
	logger            *slog.Logger
}

// NewService constructs a new account [Service].
func NewService(accountRepo AccountRepository, logger *slog.Logger) *Service {
	return &Service{
		accountRepository: accountRepo,
		logger:            logger,
	}
}

// # Account Creation

// CreateInput holds the data required to provision a new account.
type CreateInput struct {
	Name     string
	Email    string
	Password string
	Role     sec.UserRole
}

/*
Create validates, hashes, and persists a new account.

Description: Enforces email uniqueness and role validity, hashes the
password, and stores the record with a time-sortable ID.

Parameters:
  - context: context.Context
  - input: CreateInput

Returns:
  - *auth.User: Created entity
  - error: Conflict (if the email exists) or storage errors
*/
func (service *Service) Create(context context.Context, input CreateInput) (*auth.User, error) {

	// Verify email uniqueness. Return a client-safe Conflict err.
	_, err := service.accountRepository.FindByEmail(context, input.Email)
	if err == nil {
		return nil, apperr.Conflict("Email is already registered")
	}

	role := input.Role
	if role == "" {
		role = sec.RoleUser
	}
	if !role.Known() {
		return nil, apperr.ValidationError("Unknown role", apperr.FieldError{
			Field:   auth.FieldRole,
			Message: "must be one of admin, manager, user, tester",
		})
	}

	// Prevent storing plain-text passwords. Default cost is used for balance
	// between security and CPU utilization during provisioning spikes.
	hashedPassword, err := sec.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("account_service_hash_failed: %w", err)
	}

	// Construct the new account. Time-sortable ID to prevent PG index fragmentation.
	now := time.Now()
	user := &auth.User{
		ID:           uuid.New(),
		Name:         input.Name,
		Email:        input.Email,
		PasswordHash: hashedPassword,
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := service.accountRepository.Create(context, user); err != nil {
		return nil, fmt.Errorf("account_service_create_failed: %w", err)
	}

	service.logger.Info("account_created",
		slog.String("user_id", user.ID),
		slog.String("role", string(user.Role)),
	)

	return user, nil
}

// # Account Retrieval

/*
List returns one page of accounts together with pagination metadata.

Parameters:
  - context: context.Context
  - params: pagination.Params

Returns:
  - []*auth.User: Page of accounts, newest first
  - pagination.Meta: Page metadata
  - error: Storage failures
*/
func (service *Service) List(context context.Context, params pagination.Params) ([]*auth.User, pagination.Meta, error) {
	users, err := service.accountRepository.FindAll(context, params)
	if err != nil {
		return nil, pagination.Meta{}, fmt.Errorf("account_service_list_failed: %w", err)
	}

	total, err := service.accountRepository.Count(context)
	if err != nil {
		return nil, pagination.Meta{}, fmt.Errorf("account_service_count_failed: %w", err)
	}

	return users, pagination.NewMeta(params.Page, params.Limit, total), nil
}

/*
Get retrieves a single account by its ID.

Parameters:
  - context: context.Context
  - userID: string

Returns:
  - *auth.User: The hydrated account
  - error: apperr.NotFound or execution failures
*/
func (service *Service) Get(context context.Context, userID string) (*auth.User, error) {
	return service.accountRepository.FindByID(context, userID)
}

// # Account Mutation

// UpdateInput defines the mutable subset of account fields.
//
// Nil pointers mean "leave unchanged". The set of non-nil fields is also
// what the access guard checked before this call.
type UpdateInput struct {
	Name     *string
	Email    *string
	Password *string
	Role     *string
}

// Fields returns the JSON names of the fields the input would change.
func (input UpdateInput) Fields() []string {
	var fields []string
	if input.Name != nil {
		fields = append(fields, auth.FieldName)
	}
	if input.Email != nil {
		fields = append(fields, auth.FieldEmail)
	}
	if input.Password != nil {
		fields = append(fields, auth.FieldPassword)
	}
	if input.Role != nil {
		fields = append(fields, auth.FieldRole)
	}
	return fields
}

/*
Update applies a partial set of changes to an account.

Description: Fetches the existing state, overrides provided fields, re-hashes
a changed password, re-checks email uniqueness on change, and synchronizes
the result to storage.

Parameters:
  - context: context.Context
  - userID: string
  - input: UpdateInput

Returns:
  - *auth.User: The updated account
  - error: NotFound, Conflict, validation, or storage failures
*/
func (service *Service) Update(context context.Context, userID string, input UpdateInput) (*auth.User, error) {

	user, err := service.accountRepository.FindByID(context, userID)
	if err != nil {
		return nil, err
	}

	// Apply delta updates
	if input.Name != nil {
		user.Name = *input.Name
	}

	// Email changes re-check uniqueness against other accounts
	if input.Email != nil && *input.Email != user.Email {
		if existing, err := service.accountRepository.FindByEmail(context, *input.Email); err == nil && existing.ID != user.ID {
			return nil, apperr.Conflict("Email is already registered")
		}
		user.Email = *input.Email
	}

	// Password changes are re-hashed, never stored raw
	if input.Password != nil {
		hashedPassword, err := sec.HashPassword(*input.Password)
		if err != nil {
			return nil, fmt.Errorf("account_service_update_hash_failed: %w", err)
		}
		user.PasswordHash = hashedPassword
	}

	if input.Role != nil {
		role := sec.UserRole(*input.Role)
		if !role.Known() {
			return nil, apperr.ValidationError("Unknown role", apperr.FieldError{
				Field:   auth.FieldRole,
				Message: "must be one of admin, manager, user, tester",
			})
		}
		user.Role = role
	}

	if err := service.accountRepository.Update(context, user); err != nil {
		return nil, fmt.Errorf("account_service_update_failed: %w", err)
	}

	service.logger.Info("account_updated", slog.String("user_id", userID))

	return user, nil
}

/*
Delete removes an account.

Description: Soft delete for retention. The stored credential state is
stripped in the same statement, so the account's outstanding refresh and
reset tokens stop resolving immediately.

Parameters:
  - context: context.Context
  - userID: string

Returns:
  - error: NotFound or storage failures
*/
func (service *Service) Delete(context context.Context, userID string) error {

	// Resolve first so a repeat delete reports NotFound
	if _, err := service.accountRepository.FindByID(context, userID); err != nil {
		return err
	}

	if err := service.accountRepository.SoftDelete(context, userID); err != nil {
		return fmt.Errorf("account_service_delete_failed: %w", err)
	}

	service.logger.Info("account_deleted", slog.String("user_id", userID))

	return nil
}
