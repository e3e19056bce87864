// Package password hashes and verifies account passwords.
package password

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

var (
	// ErrMalformedDigest is returned when a stored digest cannot be parsed.
	ErrMalformedDigest = errors.New("malformed password digest")
	// ErrTooLong is returned by Hash for plaintexts bcrypt cannot hash.
	ErrTooLong = errors.New("password exceeds 72 bytes")
)

// Hasher produces salted one-way digests and checks plaintexts against them.
type Hasher interface {
	// Hash returns a freshly salted digest for plaintext.
	Hash(plaintext string) (string, error)

	// Verify reports whether plaintext matches digest. A mismatch is (false, nil).
	Verify(plaintext, digest string) (bool, error)
}

// Bcrypt is a Hasher backed by bcrypt. The salt is embedded in the digest.
type Bcrypt struct {
	Cost int
}

// NewBcrypt returns a bcrypt hasher. A cost outside bcrypt's range falls back to bcrypt.DefaultCost.
func NewBcrypt(cost int) *Bcrypt {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &Bcrypt{Cost: cost}
}

// Hash implements Hasher.
func (b *Bcrypt) Hash(plaintext string) (string, error) {
	digest, err := bcrypt.GenerateFromPassword([]byte(plaintext), b.Cost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return "", errors.Join(ErrTooLong, err)
		}
		return "", err
	}
	return string(digest), nil
}

// Verify implements Hasher.
func (b *Bcrypt) Verify(plaintext, digest string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(digest), []byte(plaintext))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return false, nil
	}
	// ErrHashTooShort, InvalidHashPrefixError, InvalidCostError and friends.
	return false, errors.Join(ErrMalformedDigest, err)
}
