package user

import (
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// bcryptPrefixes are the recognised bcrypt version prefixes. A stored hash
// must begin with one of them; anything else is treated as corrupt rather
// than compared.
var bcryptPrefixes = []string{"$2a$", "$2b$", "$2y$"}

// HashPassword hashes a raw password with bcrypt at the default cost.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// VerifyPassword reports whether the password matches the stored hash.
func VerifyPassword(hash, password string) bool {
	if !IsBcryptHash(hash) {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// IsBcryptHash reports whether the value carries a recognised bcrypt prefix.
func IsBcryptHash(hash string) bool {
	for _, prefix := range bcryptPrefixes {
		if strings.HasPrefix(hash, prefix) {
			return true
		}
	}
	return false
}
