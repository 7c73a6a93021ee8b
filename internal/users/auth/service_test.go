// Copyright (c) 2026 Sentra. All rights reserved.
// Author: dev@sentra.id

package auth_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sentra-id/sentra/internal/platform/apperr"
	"github.com/sentra-id/sentra/internal/platform/sec"
	"github.com/sentra-id/sentra/internal/users/auth"
	"github.com/sentra-id/sentra/pkg/uuid"
)

// # Test Doubles

// fakeUserRepository is an in-memory UserRepository with the same
// compare-and-swap semantics as the PostgreSQL implementation.
type fakeUserRepository struct {
	mu    sync.Mutex
	users map[string]*auth.User
}

func newFakeUserRepository() *fakeUserRepository {
	return &fakeUserRepository{users: make(map[string]*auth.User)}
}

func (f *fakeUserRepository) add(user *auth.User) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.users[user.ID] = user
}

func (f *fakeUserRepository) get(id string) auth.User {
	f.mu.Lock()
	defer f.mu.Unlock()
	return *f.users[id]
}

func (f *fakeUserRepository) FindByEmail(_ context.Context, email string) (*auth.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, user := range f.users {
		if user.Email == email {
			clone := *user
			return &clone, nil
		}
	}
	return nil, apperr.NotFound("User")
}

func (f *fakeUserRepository) FindByID(_ context.Context, id string) (*auth.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if user, ok := f.users[id]; ok {
		clone := *user
		return &clone, nil
	}
	return nil, apperr.NotFound("User")
}

func (f *fakeUserRepository) FindByRefreshToken(_ context.Context, rawToken string) (*auth.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, user := range f.users {
		if user.RefreshTokenHash != "" && sec.CheckTokenHash(rawToken, user.RefreshTokenHash) {
			clone := *user
			return &clone, nil
		}
	}
	return nil, apperr.InvalidRefreshToken()
}

func (f *fakeUserRepository) FindByResetToken(_ context.Context, rawToken string) (*auth.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, user := range f.users {
		if user.ResetTokenHash != "" && sec.CheckTokenHash(rawToken, user.ResetTokenHash) {
			clone := *user
			return &clone, nil
		}
	}
	return nil, apperr.InvalidResetToken()
}

func (f *fakeUserRepository) SetRefreshTokenHash(_ context.Context, userID, tokenHash string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.users[userID]
	if !ok {
		return apperr.NotFound("User")
	}
	user.RefreshTokenHash = tokenHash
	return nil
}

func (f *fakeUserRepository) ReplaceRefreshTokenHash(_ context.Context, userID, oldHash, newHash string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.users[userID]
	if !ok || user.RefreshTokenHash != oldHash {
		return apperr.InvalidRefreshToken()
	}
	user.RefreshTokenHash = newHash
	return nil
}

func (f *fakeUserRepository) ClearRefreshToken(_ context.Context, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if user, ok := f.users[userID]; ok {
		user.RefreshTokenHash = ""
	}
	return nil
}

func (f *fakeUserRepository) SetResetToken(_ context.Context, userID, tokenHash string, expiresAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.users[userID]
	if !ok {
		return apperr.NotFound("User")
	}
	user.ResetTokenHash = tokenHash
	user.ResetExpiresAt = expiresAt
	return nil
}

func (f *fakeUserRepository) ConsumePasswordReset(_ context.Context, userID, resetHash, newPasswordHash string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.users[userID]
	if !ok || user.ResetTokenHash != resetHash {
		return apperr.InvalidResetToken()
	}
	user.PasswordHash = newPasswordHash
	user.ResetTokenHash = ""
	user.ResetExpiresAt = time.Time{}
	user.RefreshTokenHash = ""
	return nil
}

// stubTokenProvider records the claims it was asked to sign.
type stubTokenProvider struct {
	mu        sync.Mutex
	lastID    string
	lastEmail string
	lastRole  string
	lastTTL   time.Duration
	calls     int
}

func (s *stubTokenProvider) GenerateAccessToken(userID, email, role string, ttl time.Duration) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastID, s.lastEmail, s.lastRole, s.lastTTL = userID, email, role, ttl
	s.calls++
	return "signed-jwt-for-" + userID, nil
}

// MockMailer is a testify mock of the Mailer contract.
type MockMailer struct {
	mock.Mock
}

func (m *MockMailer) SendPasswordResetEmail(ctx context.Context, email, rawToken string) error {
	args := m.Called(ctx, email, rawToken)
	return args.Error(0)
}

// # Fixtures

func seedUser(t *testing.T, repo *fakeUserRepository, email, password string, role sec.UserRole) *auth.User {
	t.Helper()

	passwordHash, err := sec.HashPassword(password)
	require.NoError(t, err)

	user := &auth.User{
		ID:           uuid.New(),
		Name:         "Test User",
		Email:        email,
		PasswordHash: passwordHash,
		Role:         role,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
	repo.add(user)
	return user
}

func newService(repo *fakeUserRepository, tokens *stubTokenProvider, mailer auth.Mailer) *auth.Service {
	return auth.NewService(repo, tokens, mailer)
}

// # Login

/*
TestService_Login_Success verifies that a valid credential pair yields both
tokens and that the access token carries identity, email, role, and the
15-minute lifetime.
*/
func TestService_Login_Success(t *testing.T) {
	repo := newFakeUserRepository()
	tokens := &stubTokenProvider{}
	user := seedUser(t, repo, "ada@example.com", "correct horse", sec.RoleUser)

	service := newService(repo, tokens, &MockMailer{})

	session, err := service.Login(context.Background(), "ada@example.com", "correct horse")
	require.NoError(t, err)
	require.NotNil(t, session)

	assert.Equal(t, "signed-jwt-for-"+user.ID, session.AccessToken)
	assert.NotEmpty(t, session.RefreshToken)
	assert.Equal(t, user.ID, session.User.ID)

	// The signer must have been handed the subject, email, role, and TTL.
	assert.Equal(t, user.ID, tokens.lastID)
	assert.Equal(t, "ada@example.com", tokens.lastEmail)
	assert.Equal(t, string(sec.RoleUser), tokens.lastRole)
	assert.Equal(t, auth.AccessTokenTTL, tokens.lastTTL)

	// Only the slow hash of the refresh token is persisted.
	stored := repo.get(user.ID)
	assert.NotEqual(t, session.RefreshToken, stored.RefreshTokenHash)
	assert.True(t, sec.CheckTokenHash(session.RefreshToken, stored.RefreshTokenHash))
}

/*
TestService_Login_Failure verifies that unknown emails and wrong passwords
fail identically and leave no session state behind.
*/
func TestService_Login_Failure(t *testing.T) {
	repo := newFakeUserRepository()
	tokens := &stubTokenProvider{}
	user := seedUser(t, repo, "ada@example.com", "correct horse", sec.RoleUser)

	service := newService(repo, tokens, &MockMailer{})

	tests := []struct {
		name     string
		email    string
		password string
	}{
		{"unknown_email", "nobody@example.com", "correct horse"},
		{"wrong_password", "ada@example.com", "battery staple"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			session, err := service.Login(context.Background(), tt.email, tt.password)
			assert.Nil(t, session)

			ae := apperr.As(err)
			require.NotNil(t, ae)
			assert.Equal(t, "INVALID_CREDENTIALS", ae.Code)

			// No token of either kind was issued or stored.
			assert.Equal(t, 0, tokens.calls)
			assert.Empty(t, repo.get(user.ID).RefreshTokenHash)
		})
	}
}

// # Refresh Rotation

/*
TestService_Refresh_RotatesToken verifies that a refresh yields a new token
pair and that the presented token is consumed in the process.
*/
func TestService_Refresh_RotatesToken(t *testing.T) {
	repo := newFakeUserRepository()
	tokens := &stubTokenProvider{}
	seedUser(t, repo, "ada@example.com", "correct horse", sec.RoleUser)

	service := newService(repo, tokens, &MockMailer{})

	session, err := service.Login(context.Background(), "ada@example.com", "correct horse")
	require.NoError(t, err)

	rotated, err := service.Refresh(context.Background(), session.RefreshToken)
	require.NoError(t, err)
	assert.NotEmpty(t, rotated.AccessToken)
	assert.NotEqual(t, session.RefreshToken, rotated.RefreshToken)

	// Replaying the consumed token must fail.
	replayed, err := service.Refresh(context.Background(), session.RefreshToken)
	assert.Nil(t, replayed)
	assert.True(t, apperr.IsCode(err, "INVALID_REFRESH_TOKEN"))

	// The rotated token is still good.
	_, err = service.Refresh(context.Background(), rotated.RefreshToken)
	assert.NoError(t, err)
}

/*
TestService_Refresh_AfterLogout verifies that logout invalidates the
outstanding refresh token.
*/
func TestService_Refresh_AfterLogout(t *testing.T) {
	repo := newFakeUserRepository()
	tokens := &stubTokenProvider{}
	user := seedUser(t, repo, "ada@example.com", "correct horse", sec.RoleUser)

	service := newService(repo, tokens, &MockMailer{})

	session, err := service.Login(context.Background(), "ada@example.com", "correct horse")
	require.NoError(t, err)

	require.NoError(t, service.Logout(context.Background(), user.ID))

	rotated, err := service.Refresh(context.Background(), session.RefreshToken)
	assert.Nil(t, rotated)
	assert.True(t, apperr.IsCode(err, "INVALID_REFRESH_TOKEN"))

	// Logout stays idempotent.
	assert.NoError(t, service.Logout(context.Background(), user.ID))
}

/*
TestService_Login_SupersedesPreviousSession verifies the single active
session invariant: a second login invalidates the first refresh token.
*/
func TestService_Login_SupersedesPreviousSession(t *testing.T) {
	repo := newFakeUserRepository()
	tokens := &stubTokenProvider{}
	seedUser(t, repo, "ada@example.com", "correct horse", sec.RoleUser)

	service := newService(repo, tokens, &MockMailer{})

	first, err := service.Login(context.Background(), "ada@example.com", "correct horse")
	require.NoError(t, err)

	second, err := service.Login(context.Background(), "ada@example.com", "correct horse")
	require.NoError(t, err)

	_, err = service.Refresh(context.Background(), first.RefreshToken)
	assert.True(t, apperr.IsCode(err, "INVALID_REFRESH_TOKEN"))

	_, err = service.Refresh(context.Background(), second.RefreshToken)
	assert.NoError(t, err)
}

// # Password Recovery

/*
TestService_ForgotPassword_UnknownEmail verifies the anti-enumeration
behavior: the call succeeds silently and the mailer is never invoked.
*/
func TestService_ForgotPassword_UnknownEmail(t *testing.T) {
	repo := newFakeUserRepository()
	mailer := &MockMailer{}

	service := newService(repo, &stubTokenProvider{}, mailer)

	err := service.ForgotPassword(context.Background(), "nobody@example.com")
	assert.NoError(t, err)

	mailer.AssertNotCalled(t, "SendPasswordResetEmail", mock.Anything, mock.Anything, mock.Anything)
}

/*
TestService_ForgotPassword_StoresHashAndSendsToken verifies that the stored
reset state is a hash of the emitted token with a 30-minute expiry.
*/
func TestService_ForgotPassword_StoresHashAndSendsToken(t *testing.T) {
	repo := newFakeUserRepository()
	mailer := &MockMailer{}
	user := seedUser(t, repo, "ada@example.com", "correct horse", sec.RoleUser)

	var sentToken string
	mailer.On("SendPasswordResetEmail", mock.Anything, "ada@example.com", mock.Anything).
		Run(func(args mock.Arguments) { sentToken = args.String(2) }).
		Return(nil)

	service := newService(repo, &stubTokenProvider{}, mailer)

	before := time.Now()
	require.NoError(t, service.ForgotPassword(context.Background(), "ada@example.com"))
	mailer.AssertExpectations(t)

	stored := repo.get(user.ID)
	require.NotEmpty(t, sentToken)
	assert.NotEqual(t, sentToken, stored.ResetTokenHash)
	assert.True(t, sec.CheckTokenHash(sentToken, stored.ResetTokenHash))
	assert.WithinDuration(t, before.Add(auth.ResetTokenTTL), stored.ResetExpiresAt, 5*time.Second)
}

/*
TestService_ForgotPassword_MailFailureKeepsState verifies that a delivery
failure surfaces as EMAIL_DELIVERY_FAILED without rolling back the stored
reset state.
*/
func TestService_ForgotPassword_MailFailureKeepsState(t *testing.T) {
	repo := newFakeUserRepository()
	mailer := &MockMailer{}
	user := seedUser(t, repo, "ada@example.com", "correct horse", sec.RoleUser)

	mailer.On("SendPasswordResetEmail", mock.Anything, "ada@example.com", mock.Anything).
		Return(errors.New("brevo: 503"))

	service := newService(repo, &stubTokenProvider{}, mailer)

	err := service.ForgotPassword(context.Background(), "ada@example.com")
	assert.True(t, apperr.IsCode(err, "EMAIL_DELIVERY_FAILED"))

	stored := repo.get(user.ID)
	assert.NotEmpty(t, stored.ResetTokenHash)
	assert.False(t, stored.ResetExpiresAt.IsZero())
}

/*
TestService_ResetPassword_TokenStates verifies the distinction between an
unknown token and an expired one, for both validation and consumption.
*/
func TestService_ResetPassword_TokenStates(t *testing.T) {
	repo := newFakeUserRepository()
	mailer := &MockMailer{}
	user := seedUser(t, repo, "ada@example.com", "correct horse", sec.RoleUser)

	var sentToken string
	mailer.On("SendPasswordResetEmail", mock.Anything, "ada@example.com", mock.Anything).
		Run(func(args mock.Arguments) { sentToken = args.String(2) }).
		Return(nil)

	service := newService(repo, &stubTokenProvider{}, mailer)
	require.NoError(t, service.ForgotPassword(context.Background(), "ada@example.com"))

	t.Run("unknown_token", func(t *testing.T) {
		assert.True(t, apperr.IsCode(service.ValidateResetToken(context.Background(), "bogus"), "INVALID_RESET_TOKEN"))
		assert.True(t, apperr.IsCode(service.ResetPassword(context.Background(), "bogus", "new password"), "INVALID_RESET_TOKEN"))
	})

	t.Run("valid_token", func(t *testing.T) {
		assert.NoError(t, service.ValidateResetToken(context.Background(), sentToken))
	})

	t.Run("expired_token", func(t *testing.T) {
		require.NoError(t, repo.SetResetToken(context.Background(), user.ID,
			repo.get(user.ID).ResetTokenHash, time.Now().Add(-time.Minute)))

		assert.True(t, apperr.IsCode(service.ValidateResetToken(context.Background(), sentToken), "EXPIRED_RESET_TOKEN"))
		assert.True(t, apperr.IsCode(service.ResetPassword(context.Background(), sentToken, "new password"), "EXPIRED_RESET_TOKEN"))
	})
}

/*
TestService_ResetPassword_Success verifies that consuming a valid token swaps
the verifying password, clears the reset state, and is single-use.
*/
func TestService_ResetPassword_Success(t *testing.T) {
	repo := newFakeUserRepository()
	mailer := &MockMailer{}
	user := seedUser(t, repo, "ada@example.com", "correct horse", sec.RoleUser)

	var sentToken string
	mailer.On("SendPasswordResetEmail", mock.Anything, "ada@example.com", mock.Anything).
		Run(func(args mock.Arguments) { sentToken = args.String(2) }).
		Return(nil)

	service := newService(repo, &stubTokenProvider{}, mailer)
	require.NoError(t, service.ForgotPassword(context.Background(), "ada@example.com"))

	require.NoError(t, service.ResetPassword(context.Background(), sentToken, "battery staple"))

	stored := repo.get(user.ID)
	assert.Empty(t, stored.ResetTokenHash)
	assert.True(t, stored.ResetExpiresAt.IsZero())

	// Old password no longer verifies, the new one does.
	_, err := service.Login(context.Background(), "ada@example.com", "correct horse")
	assert.True(t, apperr.IsCode(err, "INVALID_CREDENTIALS"))

	_, err = service.Login(context.Background(), "ada@example.com", "battery staple")
	assert.NoError(t, err)

	// The consumed token cannot be used again.
	err = service.ResetPassword(context.Background(), sentToken, "third password")
	assert.True(t, apperr.IsCode(err, "INVALID_RESET_TOKEN"))
}
