package jwtx_test

import (
	"encoding/base64"
	"strings"
	"testing"
	"time"

	"github.com/aussiebroadwan/idkit/pkg/jwtx"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

func TestHS256SignAndVerify(t *testing.T) {
	t.Parallel()

	secret := []byte("tenant-api-key-secret")
	signer, err := jwtx.NewSignerHS256("KEYID", secret)
	require.NoError(t, err)
	require.Equal(t, "HS256", signer.Alg())
	require.Equal(t, "KEYID", signer.KID())

	claims := jwtx.NewAccessClaims("KEYID", "app", []string{"a"}, time.Hour, time.Now())
	tok, err := signer.Sign(claims)
	require.NoError(t, err)

	t.Run("round trip", func(t *testing.T) {
		var got jwtx.AccessClaims
		require.NoError(t, jwtx.NewVerifierHS256(secret).Verify(tok, &got))
		require.Equal(t, "KEYID", got.Subject)
		require.Equal(t, "a", got.Scope)
	})

	t.Run("wrong secret", func(t *testing.T) {
		var got jwtx.AccessClaims
		err := jwtx.NewVerifierHS256([]byte("other")).Verify(tok, &got)
		require.ErrorIs(t, err, jwtx.ErrInvalidSig)
	})

	t.Run("tampered payload", func(t *testing.T) {
		parts := strings.Split(tok, ".")
		parts[1] = base64.RawURLEncoding.EncodeToString([]byte(`{"sub":"EVIL","exp":9999999999}`))

		var got jwtx.AccessClaims
		err := jwtx.NewVerifierHS256(secret).Verify(strings.Join(parts, "."), &got)
		require.ErrorIs(t, err, jwtx.ErrInvalidSig)
	})

	t.Run("garbage", func(t *testing.T) {
		var got jwtx.AccessClaims
		err := jwtx.NewVerifierHS256(secret).Verify("not-a-jwt", &got)
		require.ErrorIs(t, err, jwtx.ErrMalformed)
	})

	t.Run("expired token still verifies", func(t *testing.T) {
		old := jwtx.NewAccessClaims("KEYID", "app", nil, time.Minute, time.Now().Add(-time.Hour))
		oldTok, err := signer.Sign(old)
		require.NoError(t, err)

		var got jwtx.AccessClaims
		require.NoError(t, jwtx.NewVerifierHS256(secret).Verify(oldTok, &got))
		require.ErrorIs(t, got.ValidateExpiry(time.Now()), jwtx.ErrExpired)
	})
}

func TestHS256RejectsOtherAlgorithms(t *testing.T) {
	t.Parallel()

	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"sub": "KEYID"}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	var got jwtx.AccessClaims
	err = jwtx.NewVerifierHS256([]byte("secret")).Verify(unsigned, &got)
	require.ErrorIs(t, err, jwtx.ErrInvalidSig)

	hs512, err := jwt.NewWithClaims(jwt.SigningMethodHS512, jwt.MapClaims{"sub": "KEYID"}).
		SignedString([]byte("secret"))
	require.NoError(t, err)

	err = jwtx.NewVerifierHS256([]byte("secret")).Verify(hs512, &got)
	require.ErrorIs(t, err, jwtx.ErrInvalidSig)
}

func TestNewSignerHS256RejectsEmptySecret(t *testing.T) {
	_, err := jwtx.NewSignerHS256("KEYID", nil)
	require.Error(t, err)
}
