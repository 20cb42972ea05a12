package service

import (
	"time"

	"github.com/afterlove/couplet/pkg/cryptox"
	"github.com/afterlove/couplet/pkg/jwtx"
)

// HashVerifier abstracts the slow password hashing so tests can substitute
// a fast deterministic fake.
type HashVerifier interface {
	Hash(password string) (string, error)
	Verify(password, hash string) error
}

// TokenIssuer abstracts session-token minting for the same reason.
type TokenIssuer interface {
	Issue(userID, email string) (string, error)
}

// Argon2Hasher is the production HashVerifier backed by pkg/cryptox.
type Argon2Hasher struct{}

func (Argon2Hasher) Hash(password string) (string, error) { return cryptox.HashPassword(password) }
func (Argon2Hasher) Verify(password, hash string) error {
	return cryptox.VerifyPassword(password, hash)
}

// JWTIssuer is the production TokenIssuer backed by pkg/jwtx.
type JWTIssuer struct {
	Signer jwtx.Signer
	Issuer string
	TTL    time.Duration
}

func (i JWTIssuer) Issue(userID, email string) (string, error) {
	ttl := i.TTL
	if ttl <= 0 {
		ttl = jwtx.DefaultSessionTTL
	}
	claims := jwtx.NewSessionClaims(userID, email, i.Issuer, ttl, time.Now().UTC())
	return i.Signer.Sign(claims)
}
