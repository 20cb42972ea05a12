package jwtx

// Signer is our interface for anything that can sign JWTs.
type Signer interface {
	Alg() string
	Sign(Claims) (string, error)
	Validate() error
}

// NewSignerHS256 creates an HS256 signer from a shared secret.
func NewSignerHS256(secret []byte) (Signer, error) {
	return newHS256Signer(secret)
}

// NewVerifierHS256 creates an HS256 verifier from the same shared secret.
// Issuer is enforced when non-empty.
func NewVerifierHS256(secret []byte, issuer string) Verifier {
	return &HS256Verifier{secret: secret, issuer: issuer}
}
