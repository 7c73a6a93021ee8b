// Copyright (c) 2026 Sentra. All rights reserved.
// Author: dev@sentra.id

package account_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sentra-id/sentra/internal/platform/apperr"
	"github.com/sentra-id/sentra/internal/platform/sec"
	"github.com/sentra-id/sentra/internal/users/account"
	"github.com/sentra-id/sentra/internal/users/auth"
	"github.com/sentra-id/sentra/pkg/pagination"
	"github.com/sentra-id/sentra/pkg/pointer"
)

// fakeAccountRepository is an in-memory AccountRepository.
type fakeAccountRepository struct {
	users   map[string]*auth.User
	deleted map[string]bool
}

func newFakeAccountRepository() *fakeAccountRepository {
	return &fakeAccountRepository{
		users:   make(map[string]*auth.User),
		deleted: make(map[string]bool),
	}
}

func (f *fakeAccountRepository) Create(_ context.Context, user *auth.User) error {
	clone := *user
	f.users[user.ID] = &clone
	return nil
}

func (f *fakeAccountRepository) FindAll(_ context.Context, _ pagination.Params) ([]*auth.User, error) {
	var users []*auth.User
	for id, user := range f.users {
		if f.deleted[id] {
			continue
		}
		clone := *user
		users = append(users, &clone)
	}
	return users, nil
}

func (f *fakeAccountRepository) Count(_ context.Context) (int, error) {
	total := 0
	for id := range f.users {
		if !f.deleted[id] {
			total++
		}
	}
	return total, nil
}

func (f *fakeAccountRepository) FindByID(_ context.Context, id string) (*auth.User, error) {
	if user, ok := f.users[id]; ok && !f.deleted[id] {
		clone := *user
		return &clone, nil
	}
	return nil, apperr.NotFound("User")
}

func (f *fakeAccountRepository) FindByEmail(_ context.Context, email string) (*auth.User, error) {
	for id, user := range f.users {
		if user.Email == email && !f.deleted[id] {
			clone := *user
			return &clone, nil
		}
	}
	return nil, apperr.NotFound("User")
}

func (f *fakeAccountRepository) Update(_ context.Context, user *auth.User) error {
	clone := *user
	f.users[user.ID] = &clone
	return nil
}

func (f *fakeAccountRepository) SoftDelete(_ context.Context, id string) error {
	if user, ok := f.users[id]; ok {
		user.RefreshTokenHash = ""
		user.ResetTokenHash = ""
		user.ResetExpiresAt = time.Time{}
	}
	f.deleted[id] = true
	return nil
}

func newAccountService(repo account.AccountRepository) *account.Service {
	return account.NewService(repo, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

// # Creation

/*
TestService_Create verifies provisioning: the password is stored as a
verifying hash, the role defaults to user, and duplicate emails conflict.
*/
func TestService_Create(t *testing.T) {
	repo := newFakeAccountRepository()
	service := newAccountService(repo)

	created, err := service.Create(context.Background(), account.CreateInput{
		Name:     "Ada Lovelace",
		Email:    "ada@example.com",
		Password: "correct horse",
	})
	require.NoError(t, err)
	assert.Equal(t, sec.RoleUser, created.Role)
	assert.NotEqual(t, "correct horse", created.PasswordHash)
	assert.True(t, sec.CheckPasswordHash("correct horse", created.PasswordHash))

	t.Run("duplicate_email", func(t *testing.T) {
		_, err := service.Create(context.Background(), account.CreateInput{
			Name:     "Imposter",
			Email:    "ada@example.com",
			Password: "battery staple",
		})
		assert.True(t, apperr.IsCode(err, "CONFLICT"))
	})

	t.Run("unknown_role", func(t *testing.T) {
		_, err := service.Create(context.Background(), account.CreateInput{
			Name:     "Eve",
			Email:    "eve@example.com",
			Password: "battery staple",
			Role:     "superuser",
		})
		assert.True(t, apperr.IsCode(err, "VALIDATION_ERROR"))
	})
}

// # Partial Update

/*
TestService_Update verifies delta semantics: untouched fields survive, a
changed password is re-hashed, and an email change re-checks uniqueness.
*/
func TestService_Update(t *testing.T) {
	repo := newFakeAccountRepository()
	service := newAccountService(repo)

	ada, err := service.Create(context.Background(), account.CreateInput{
		Name: "Ada", Email: "ada@example.com", Password: "correct horse",
	})
	require.NoError(t, err)

	_, err = service.Create(context.Background(), account.CreateInput{
		Name: "Grace", Email: "grace@example.com", Password: "battery staple",
	})
	require.NoError(t, err)

	t.Run("partial_fields", func(t *testing.T) {
		updated, err := service.Update(context.Background(), ada.ID, account.UpdateInput{
			Name: pointer.To("Ada Lovelace"),
		})
		require.NoError(t, err)
		assert.Equal(t, "Ada Lovelace", updated.Name)
		assert.Equal(t, "ada@example.com", updated.Email)
		assert.Equal(t, ada.PasswordHash, updated.PasswordHash)
	})

	t.Run("password_rehash", func(t *testing.T) {
		updated, err := service.Update(context.Background(), ada.ID, account.UpdateInput{
			Password: pointer.To("new password"),
		})
		require.NoError(t, err)
		assert.True(t, sec.CheckPasswordHash("new password", updated.PasswordHash))
	})

	t.Run("email_collision", func(t *testing.T) {
		_, err := service.Update(context.Background(), ada.ID, account.UpdateInput{
			Email: pointer.To("grace@example.com"),
		})
		assert.True(t, apperr.IsCode(err, "CONFLICT"))
	})

	t.Run("role_change", func(t *testing.T) {
		updated, err := service.Update(context.Background(), ada.ID, account.UpdateInput{
			Role: pointer.To("manager"),
		})
		require.NoError(t, err)
		assert.Equal(t, sec.RoleManager, updated.Role)

		_, err = service.Update(context.Background(), ada.ID, account.UpdateInput{
			Role: pointer.To("superuser"),
		})
		assert.True(t, apperr.IsCode(err, "VALIDATION_ERROR"))
	})

	t.Run("missing_account", func(t *testing.T) {
		_, err := service.Update(context.Background(), "missing-id", account.UpdateInput{
			Name: pointer.To("Nobody"),
		})
		assert.True(t, apperr.IsNotFound(err))
	})
}

// # Deletion

/*
TestService_Delete verifies that deletion hides the account and strips its
credential state so outstanding tokens stop resolving.
*/
func TestService_Delete(t *testing.T) {
	repo := newFakeAccountRepository()
	service := newAccountService(repo)

	ada, err := service.Create(context.Background(), account.CreateInput{
		Name: "Ada", Email: "ada@example.com", Password: "correct horse",
	})
	require.NoError(t, err)

	// Simulate an active session and a pending reset
	repo.users[ada.ID].RefreshTokenHash = "some-refresh-hash"
	repo.users[ada.ID].ResetTokenHash = "some-reset-hash"
	repo.users[ada.ID].ResetExpiresAt = time.Now().Add(30 * time.Minute)

	require.NoError(t, service.Delete(context.Background(), ada.ID))

	_, err = service.Get(context.Background(), ada.ID)
	assert.True(t, apperr.IsNotFound(err))

	assert.Empty(t, repo.users[ada.ID].RefreshTokenHash)
	assert.Empty(t, repo.users[ada.ID].ResetTokenHash)

	t.Run("repeat_delete", func(t *testing.T) {
		err := service.Delete(context.Background(), ada.ID)
		assert.True(t, apperr.IsNotFound(err))
	})
}

/*
TestService_UpdateInput_Fields verifies that the guard sees exactly the
fields a payload would change.
*/
func TestService_UpdateInput_Fields(t *testing.T) {
	input := account.UpdateInput{
		Name: pointer.To("Ada"),
		Role: pointer.To("admin"),
	}
	assert.ElementsMatch(t, []string{"name", "role"}, input.Fields())

	assert.Empty(t, account.UpdateInput{}.Fields())
}
