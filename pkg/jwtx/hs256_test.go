package jwtx

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var testSecret = []byte("0123456789abcdef0123456789abcdef")

func TestHS256SignAndVerify(t *testing.T) {
	t.Parallel()

	signer, err := NewSignerHS256(testSecret)
	require.NoError(t, err)
	require.Equal(t, "HS256", signer.Alg())

	claims := NewSessionClaims("user-1", "a@x.com", "couplet-api", time.Hour, time.Now().UTC())
	token, err := signer.Sign(claims)
	require.NoError(t, err)

	verifier := NewVerifierHS256(testSecret, "couplet-api")
	got, err := verifier.Verify(token)
	require.NoError(t, err)
	require.Equal(t, "user-1", got.Subject)
	require.Equal(t, "a@x.com", got.Email)
	require.NotEmpty(t, got.ID) // jti
}

func TestHS256RejectsShortSecret(t *testing.T) {
	t.Parallel()

	_, err := NewSignerHS256([]byte("too short"))
	require.Error(t, err)
}

func TestHS256VerifyFailures(t *testing.T) {
	t.Parallel()

	signer, err := NewSignerHS256(testSecret)
	require.NoError(t, err)
	verifier := NewVerifierHS256(testSecret, "couplet-api")

	t.Run("malformed token", func(t *testing.T) {
		_, err := verifier.Verify("definitely.not.a-jwt")
		require.ErrorIs(t, err, ErrMalformed)
	})

	t.Run("expired token", func(t *testing.T) {
		claims := NewSessionClaims("user-1", "a@x.com", "couplet-api", time.Minute, time.Now().UTC().Add(-time.Hour))
		token, err := signer.Sign(claims)
		require.NoError(t, err)

		_, err = verifier.Verify(token)
		require.ErrorIs(t, err, ErrExpired)
	})

	t.Run("wrong secret", func(t *testing.T) {
		other := NewVerifierHS256([]byte("ffffffffffffffffffffffffffffffff"), "couplet-api")
		claims := NewSessionClaims("user-1", "a@x.com", "couplet-api", time.Hour, time.Now().UTC())
		token, err := signer.Sign(claims)
		require.NoError(t, err)

		_, err = other.Verify(token)
		require.ErrorIs(t, err, ErrInvalidSig)
	})

	t.Run("tampered payload", func(t *testing.T) {
		claims := NewSessionClaims("user-1", "a@x.com", "couplet-api", time.Hour, time.Now().UTC())
		token, err := signer.Sign(claims)
		require.NoError(t, err)

		parts := strings.Split(token, ".")
		require.Len(t, parts, 3)
		tampered := parts[0] + "." + parts[1] + "x." + parts[2]

		_, err = verifier.Verify(tampered)
		require.Error(t, err)
	})

	t.Run("issuer mismatch", func(t *testing.T) {
		strict := NewVerifierHS256(testSecret, "someone-else")
		claims := NewSessionClaims("user-1", "a@x.com", "couplet-api", time.Hour, time.Now().UTC())
		token, err := signer.Sign(claims)
		require.NoError(t, err)

		_, err = strict.Verify(token)
		require.ErrorIs(t, err, ErrIssuer)
	})
}

func TestClaimsValidateExpiry(t *testing.T) {
	t.Parallel()

	now := time.Now().UTC()

	fresh := NewSessionClaims("u", "e", "iss", time.Hour, now)
	require.NoError(t, fresh.ValidateExpiry())

	stale := NewSessionClaims("u", "e", "iss", time.Minute, now.Add(-time.Hour))
	require.ErrorIs(t, stale.ValidateExpiry(), ErrExpired)

	future := NewSessionClaims("u", "e", "iss", time.Hour, now.Add(time.Hour))
	require.ErrorIs(t, future.ValidateExpiry(), ErrNotYetValid)
}
