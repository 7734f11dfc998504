package library

import "golang.org/x/crypto/bcrypt"

// CredentialCodec controls how passwords are stored and checked. The
// codec is fixed at construction time; switching codecs on an existing
// store invalidates every stored credential.
type CredentialCodec interface {
	// Encode converts a plaintext credential into its stored form.
	Encode(password string) (string, error)
	// Verify reports whether plaintext matches the stored form.
	Verify(password, stored string) bool
}

// PlainCodec stores and compares credentials verbatim. This preserves
// the historical login contract and is a known weakness: anyone who can
// read the database file can read every password.
type PlainCodec struct{}

func (PlainCodec) Encode(password string) (string, error) { return password, nil }

func (PlainCodec) Verify(password, stored string) bool { return password == stored }

// BcryptCodec hashes credentials with bcrypt. Only suitable for fresh
// stores or stores seeded with it.
type BcryptCodec struct {
	// Cost overrides bcrypt.DefaultCost when positive.
	Cost int
}

func (c BcryptCodec) Encode(password string) (string, error) {
	cost := c.Cost
	if cost <= 0 {
		cost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func (c BcryptCodec) Verify(password, stored string) bool {
	return bcrypt.CompareHashAndPassword([]byte(stored), []byte(password)) == nil
}
