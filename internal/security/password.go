// Package security provides password hashing for credential storage.
package security

import "golang.org/x/crypto/bcrypt"

// MaxPasswordBytes is bcrypt's input ceiling. Bytes beyond it never reach
// the hash, so both hashing and verification truncate to the same prefix.
const MaxPasswordBytes = 72

// HashPassword hashes a plaintext password with a fresh random salt.
// The output differs across calls for the same input.
func HashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword(truncate(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// VerifyPassword reports whether password matches the stored bcrypt hash.
// The underlying comparison is timing-safe.
func VerifyPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), truncate(password)) == nil
}

func truncate(password string) []byte {
	b := []byte(password)
	if len(b) > MaxPasswordBytes {
		b = b[:MaxPasswordBytes]
	}
	return b
}
