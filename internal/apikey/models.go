// Package apikey provides the API key credential store: key generation,
// bearer token validation, and best-effort usage tracking.
package apikey

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"
)

// TokenLength is the byte length of generated secrets. 32 bytes of entropy,
// hex-encoded to a 64-character token.
const TokenLength = 32

// Errors.
var (
	ErrKeyNotFound = errors.New("api key not found")

	// ErrUnauthenticated is returned for every failed validation. Revoked
	// keys and unknown tokens are deliberately indistinguishable so the
	// endpoint cannot be used as a key-enumeration oracle.
	ErrUnauthenticated = errors.New("invalid api key")
)

// Key is a bearer credential for programmatic access. Only LastUsedAt and
// Revoked are ever updated after creation.
type Key struct {
	ID         string
	Label      string
	Token      string
	Revoked    bool
	CreatedAt  time.Time
	LastUsedAt *time.Time
}

// GenerateToken creates a new opaque secret token.
func GenerateToken() (string, error) {
	bytes := make([]byte, TokenLength)
	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf("generating api key token: %w", err)
	}
	return hex.EncodeToString(bytes), nil
}
