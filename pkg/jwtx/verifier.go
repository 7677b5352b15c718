package jwtx

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// Verifier checks a JWT signature and decodes its claims into dst. Claim
// semantics (exp, aud, ...) are left to the caller, who knows which failures
// are distinct errors in its protocol.
type Verifier interface {
	Verify(token string, dst jwt.Claims) error
}

var (
	ErrMalformed    = errors.New("jwtx: malformed token")
	ErrInvalidSig   = errors.New("jwtx: invalid signature")
	ErrMissingClaim = errors.New("jwtx: missing required claim")

	ErrAudience = errors.New("jwtx: audience mismatch")
	ErrExpired  = errors.New("jwtx: token expired")
)

// HS256Verifier validates JWTs signed with a shared HMAC secret.
type HS256Verifier struct {
	key []byte
}

// NewVerifierHS256 creates a verifier for tokens signed with secret.
func NewVerifierHS256(secret []byte) *HS256Verifier {
	return &HS256Verifier{key: secret}
}

// Verify parses tokenStr into dst. Only HS256 is accepted, which rules out
// "none" and algorithm confusion with public keys.
func (v *HS256Verifier) Verify(tokenStr string, dst jwt.Claims) error {
	if len(v.key) == 0 {
		return errors.New("jwtx: empty HMAC secret")
	}

	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithoutClaimsValidation(),
	)

	_, err := parser.ParseWithClaims(tokenStr, dst, func(t *jwt.Token) (any, error) {
		return v.key, nil
	})
	switch {
	case err == nil:
		return nil
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
		return fmt.Errorf("%w: %v", ErrInvalidSig, err)
	default:
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	}
}
