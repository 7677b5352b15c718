package cryptox

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
)

const (
	stateBytes  = 16 // 22 chars
	secretBytes = 32 // 43 chars
)

// RandomString reads n bytes from crypto/rand and encodes them as unpadded
// base64url.
func RandomString(n int) (string, error) {
	if n <= 0 {
		return "", fmt.Errorf("random string length must be positive, got %d", n)
	}

	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to read random bytes: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// NewState mints the opaque state echoed back by an ID Site callback.
func NewState() (string, error) { return RandomString(stateBytes) }

// NewSecret mints API key secrets, session ids and password reset tokens.
func NewSecret() (string, error) { return RandomString(secretBytes) }

// Fingerprint is the SHA-256 of token as base64url. Reset tokens are
// stored by fingerprint only.
func Fingerprint(token string) string {
	sum := sha256.Sum256([]byte(token))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}
