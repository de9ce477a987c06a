// Package password hashes and verifies account credentials with bcrypt.
package password

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// Cost is the bcrypt work factor used for every new digest.
const Cost = 10

// MaxBytes is the longest input bcrypt accepts, counted in bytes.
const MaxBytes = 72

var ErrTooLong = errors.New("password exceeds 72 bytes")

// FitsBcrypt reports whether plaintext is short enough to hash.
func FitsBcrypt(plaintext string) bool {
	return len(plaintext) <= MaxBytes
}

// Hash returns a salted bcrypt digest of plaintext. Two calls with the same
// input produce different digests.
func Hash(plaintext string) (string, error) {
	if !FitsBcrypt(plaintext) {
		return "", ErrTooLong
	}
	digest, err := bcrypt.GenerateFromPassword([]byte(plaintext), Cost)
	if err != nil {
		return "", err
	}
	return string(digest), nil
}

// Verify reports whether plaintext matches digest. A malformed digest never
// matches.
func Verify(plaintext, digest string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(plaintext)) == nil
}
