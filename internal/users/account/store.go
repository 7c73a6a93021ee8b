// Copyright (c) 2026 Sentra. All rights reserved.
// Author: dev@sentra.id

package account

import (
	"context"

	"github.com/sentra-id/sentra/internal/users/auth"
	"github.com/sentra-id/sentra/pkg/pagination"
)

// # Storage Contracts

// AccountRepository defines persistence operations for account administration.
//
// It operates on the same users.account table as the auth domain but covers
// the CRUD surface rather than credential state.
type AccountRepository interface {
	// Create persists a new account record.
	Create(ctx context.Context, user *auth.User) error

	// FindAll returns one page of non-deleted accounts, newest first.
	FindAll(ctx context.Context, params pagination.Params) ([]*auth.User, error)

	// Count returns the total number of non-deleted accounts.
	Count(ctx context.Context) (int, error)

	// FindByID resolves a non-deleted account by its primary key.
	FindByID(ctx context.Context, id string) (*auth.User, error)

	// FindByEmail resolves a non-deleted account by its unique email address.
	FindByEmail(ctx context.Context, email string) (*auth.User, error)

	// Update persists the account's mutable fields (name, email, password
	// hash, role).
	Update(ctx context.Context, user *auth.User) error

	// SoftDelete marks the account deleted and strips its credential state,
	// so outstanding refresh and reset tokens stop resolving.
	SoftDelete(ctx context.Context, id string) error
}
