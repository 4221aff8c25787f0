// Copyright (c) 2025 The Campusvote Authors.
// Licensed under the MIT License; see LICENSE.

package auth

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// NewID returns a fresh record identifier.
func NewID() string {
	return uuid.NewString()
}

// GenerateAccessToken creates a random opaque token for an account.
// The token is the account's sole credential and is stored alongside it.
func GenerateAccessToken() (string, error) {
	b := make([]byte, 24) // 192 bits of entropy
	_, err := rand.Read(b)
	if err != nil {
		return "", fmt.Errorf("failed to generate access token: %w", err)
	}
	// URL-safe base64 without padding
	return strings.TrimRight(base64.URLEncoding.EncodeToString(b), "="), nil
}

// HashIP creates a one-way salted hash of a client IP address.
// Audit entries store the hash, never the raw address.
func HashIP(ip, salt string) string {
	h := hmac.New(sha256.New, []byte(salt))
	h.Write([]byte(ip))
	sum := h.Sum(nil)
	// First 16 hex chars (64 bits) is enough for correlation
	return hex.EncodeToString(sum[:8])
}
