// Copyright (c) 2026 Sentra. All rights reserved.
// Author: dev@sentra.id

package sec_test

import (
	"crypto/rand"
	"crypto/rsa"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sentra-id/sentra/internal/platform/sec"
)

func newTestTokenService(t *testing.T) *sec.TokenService {
	t.Helper()

	privateKey, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	return sec.NewTokenServiceFromKeys(privateKey, &privateKey.PublicKey, "sentra.id")
}

/*
TestTokenService_RoundTrip verifies that a signed access token carries the
subject, email, role, issuer, and the requested lifetime.
*/
func TestTokenService_RoundTrip(t *testing.T) {
	service := newTestTokenService(t)

	before := time.Now()
	tokenString, err := service.GenerateAccessToken("user-123", "ada@example.com", "manager", 15*time.Minute)
	require.NoError(t, err)
	require.NotEmpty(t, tokenString)

	claims, err := service.VerifyToken(tokenString)
	require.NoError(t, err)

	assert.Equal(t, "user-123", claims.UserID())
	assert.Equal(t, "ada@example.com", claims.Email)
	assert.Equal(t, "manager", claims.Role)
	assert.Equal(t, "sentra.id", claims.Issuer)

	require.NotNil(t, claims.ExpiresAt)
	assert.WithinDuration(t, before.Add(15*time.Minute), claims.ExpiresAt.Time, 5*time.Second)
}

/*
TestTokenService_RejectsExpired verifies that a token past its lifetime no
longer verifies.
*/
func TestTokenService_RejectsExpired(t *testing.T) {
	service := newTestTokenService(t)

	tokenString, err := service.GenerateAccessToken("user-123", "ada@example.com", "user", -time.Minute)
	require.NoError(t, err)

	_, err = service.VerifyToken(tokenString)
	assert.Error(t, err)
}

/*
TestTokenService_RejectsForeignSignature verifies that a token signed by a
different key pair is rejected.
*/
func TestTokenService_RejectsForeignSignature(t *testing.T) {
	signer := newTestTokenService(t)
	verifier := newTestTokenService(t)

	tokenString, err := signer.GenerateAccessToken("user-123", "ada@example.com", "user", time.Minute)
	require.NoError(t, err)

	_, err = verifier.VerifyToken(tokenString)
	assert.Error(t, err)
}

/*
TestTokenService_RejectsGarbage verifies that malformed input fails cleanly.
*/
func TestTokenService_RejectsGarbage(t *testing.T) {
	service := newTestTokenService(t)

	_, err := service.VerifyToken("not.a.jwt")
	assert.Error(t, err)
}
