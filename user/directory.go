package user

import (
	"context"
	"errors"
)

// Directory failures. Callers map these to 401 (lookup during
// authentication) or 409 (registration conflicts).
var (
	ErrNotFound      = errors.New("user not found")
	ErrUsernameTaken = errors.New("username is already taken")
	ErrEmailTaken    = errors.New("email is already registered")
)

// Directory looks up and persists identities. Implementations must be safe
// for concurrent use.
type Directory interface {
	// GetByUsername returns the identity for the exact username.
	// Lookup is case-sensitive.
	GetByUsername(ctx context.Context, username string) (User, error)
	// Create persists a new identity and returns it with the assigned id
	// and timestamps.
	Create(ctx context.Context, u User) (User, error)
}
