package auth

import "golang.org/x/crypto/bcrypt"

// Hasher is the credential-verification capability: a slow, salted, one-way
// digest. The plaintext is never recoverable from what Verify consumes.
type Hasher interface {
	Hash(plaintext string) (string, error)
	Verify(plaintext, digest string) bool
}

// ParityDigest is a well-formed digest compared against when no record
// matches a login, keeping the verify cost uniform so response timing does
// not reveal whether a username exists.
const ParityDigest = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

// BcryptHasher derives a fresh random salt per hash; the salt is embedded
// in the digest string, so only the digest is persisted.
type BcryptHasher struct {
	Cost int
}

func NewBcryptHasher() BcryptHasher {
	return BcryptHasher{Cost: bcrypt.DefaultCost}
}

func (h BcryptHasher) Hash(plaintext string) (string, error) {
	digest, err := bcrypt.GenerateFromPassword([]byte(plaintext), h.Cost)
	if err != nil {
		return "", err
	}
	return string(digest), nil
}

func (h BcryptHasher) Verify(plaintext, digest string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(plaintext)) == nil
}
