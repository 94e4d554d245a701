// Package user holds the identity model and the directory used by
// authentication to resolve principals.
package user

import (
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"
)

// Username and email bounds enforced on registration.
const (
	MaxUsernameLength = 50
	MaxEmailLength    = 100
)

// Roles granted to identities.
const (
	RoleUser  = "USER"
	RoleAdmin = "ADMIN"
)

// Validation failures are user-safe; their messages may be returned verbatim
// in 400 responses.
var (
	ErrInvalidUsername = errors.New("username must be between 1 and 50 characters")
	ErrInvalidEmail    = errors.New("email must be a valid address of at most 100 characters")
	ErrInvalidRole     = errors.New("role must be USER or ADMIN")
	ErrInvalidHash     = errors.New("password hash is not a bcrypt hash")
)

// User is a stable identity record. The hash field never contains a raw
// password, and CreatedAt is immutable after first persistence.
type User struct {
	ID           int64
	Username     string
	Email        string
	PasswordHash string
	Role         string
	Enabled      bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// New creates an enabled USER-role identity from registration input.
// Username and email are trimmed before validation.
func New(username, email, passwordHash string) (User, error) {
	u := User{
		Username:     strings.TrimSpace(username),
		Email:        strings.TrimSpace(email),
		PasswordHash: passwordHash,
		Role:         RoleUser,
		Enabled:      true,
	}
	if err := u.Validate(); err != nil {
		return User{}, err
	}
	return u, nil
}

// Validate checks the identity invariants.
func (u User) Validate() error {
	if u.Username == "" || len(u.Username) > MaxUsernameLength {
		return ErrInvalidUsername
	}
	if u.Email == "" || len(u.Email) > MaxEmailLength {
		return ErrInvalidEmail
	}
	if addr, err := mail.ParseAddress(u.Email); err != nil || addr.Address != u.Email {
		return ErrInvalidEmail
	}
	if u.Role != RoleUser && u.Role != RoleAdmin {
		return ErrInvalidRole
	}
	if !IsBcryptHash(u.PasswordHash) {
		return fmt.Errorf("%w", ErrInvalidHash)
	}
	return nil
}
