package jwtx

import (
	"errors"

	"github.com/golang-jwt/jwt/v5"
)

// MinSecretLength rejects secrets short enough to brute force. 32 bytes
// matches the HS256 block recommendation from RFC 7518.
const MinSecretLength = 32

// HS256Signer implements the Signer interface using HMAC-SHA256 with a
// shared secret. Verification happens in-process with the same secret, so
// there is no key distribution concern for a single service.
type HS256Signer struct {
	secret []byte
	alg    string
}

func newHS256Signer(secret []byte) (*HS256Signer, error) {
	s := &HS256Signer{
		secret: secret,
		alg:    jwt.SigningMethodHS256.Alg(),
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *HS256Signer) Alg() string { return s.alg }

// Sign takes your claims and turns them into a signed JWT string.
func (s *HS256Signer) Sign(claims Claims) (string, error) {
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(s.secret)
}

// Validate does a quick sanity check on the configured secret.
func (s *HS256Signer) Validate() error {
	if len(s.secret) < MinSecretLength {
		return errors.New("jwtx: HS256 secret shorter than 32 bytes")
	}
	return nil
}

// HS256Verifier validates HS256 tokens minted by HS256Signer.
type HS256Verifier struct {
	secret []byte
	issuer string
}

func (v *HS256Verifier) Verify(token string) (Claims, error) {
	var claims Claims

	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		// Pin the algorithm so an attacker can't downgrade to "none" or
		// swap in an asymmetric method.
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrAlgMismatch
		}
		return v.secret, nil
	})
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenMalformed):
			return Claims{}, ErrMalformed
		case errors.Is(err, jwt.ErrTokenExpired):
			return Claims{}, ErrExpired
		case errors.Is(err, jwt.ErrTokenNotValidYet):
			return Claims{}, ErrNotYetValid
		case errors.Is(err, ErrAlgMismatch):
			return Claims{}, ErrAlgMismatch
		default:
			return Claims{}, ErrInvalidSig
		}
	}
	if !parsed.Valid {
		return Claims{}, ErrInvalidSig
	}

	if err := claims.ValidateIssuer(v.issuer); err != nil {
		return Claims{}, err
	}

	return claims, nil
}
