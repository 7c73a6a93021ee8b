// Copyright (c) 2026 Sentra. All rights reserved.
// Author: dev@sentra.id

package sec

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// HashPassword hashes a plain-text password using the bcrypt algorithm.
func HashPassword(plainTextPassword string) (string, error) {
	hashedBytes, err := bcrypt.GenerateFromPassword([]byte(plainTextPassword), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("sec: failed to hash password: %w", err)
	}
	return string(hashedBytes), nil
}

// CheckPasswordHash compares a plain-text password with its hashed version.
func CheckPasswordHash(plainTextPassword, existingHash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(existingHash), []byte(plainTextPassword))
	return err == nil
}

// HashToken hashes an opaque token (refresh or reset) with bcrypt.
//
// Tokens are deliberately slow-hashed like passwords: a leaked database dump
// must not let an attacker reconstruct a usable credential. The cost also
// means token lookup requires verifying candidates rather than indexing.
func HashToken(rawToken string) (string, error) {
	hashedBytes, err := bcrypt.GenerateFromPassword([]byte(rawToken), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("sec: failed to hash token: %w", err)
	}
	return string(hashedBytes), nil
}

// CheckTokenHash compares a raw opaque token with its stored bcrypt hash.
func CheckTokenHash(rawToken, existingHash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(existingHash), []byte(rawToken))
	return err == nil
}

// GenerateSecureToken returns a hex-encoded, cryptographically random value
// of byteLength random bytes.
func GenerateSecureToken(byteLength int) (string, error) {
	buffer := make([]byte, byteLength)
	if _, err := rand.Read(buffer); err != nil {
		return "", fmt.Errorf("sec: failed to generate secure token: %w", err)
	}
	return hex.EncodeToString(buffer), nil
}
