package auth

import "golang.org/x/crypto/bcrypt"

// DefaultBcryptCost matches the work factor the service has always used.
// Raising it only affects newly stored hashes.
const DefaultBcryptCost = 10

// HashPassword derives a salted adaptive hash of the plaintext. The salt is
// generated per call and embedded in the returned digest.
func HashPassword(password []byte, cost int) (string, error) {
	if cost == 0 {
		cost = DefaultBcryptCost
	}
	hash, err := bcrypt.GenerateFromPassword(password, cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPassword reports whether the plaintext matches the stored digest.
// bcrypt's comparison does not leak the mismatch position.
func CheckPassword(password []byte, digest string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), password) == nil
}
