package crypto

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// hashCost is deliberately modest; profile updates rehash on every password
// change and registration sits behind a rate limiter.
const hashCost = 10

var ErrHashFailed = errors.New("password hashing failed")

// HashPassword hashes a plaintext password with bcrypt. The plaintext is never
// stored; callers keep only the returned hash.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), hashCost)
	if err != nil {
		return "", ErrHashFailed
	}
	return string(hash), nil
}

// VerifyPassword reports whether a plaintext password matches the stored
// bcrypt hash.
func VerifyPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
