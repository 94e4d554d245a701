package user_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plannerhq/planner/user"
)

const testHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

func TestNewTrimsAndValidates(t *testing.T) {
	t.Parallel()

	u, err := user.New("  alice  ", " alice@example.com ", testHash)
	require.NoError(t, err)
	assert.Equal(t, "alice", u.Username)
	assert.Equal(t, "alice@example.com", u.Email)
	assert.Equal(t, user.RoleUser, u.Role)
	assert.True(t, u.Enabled)
}

func TestNewRejectsInvalidInput(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name     string
		username string
		email    string
		hash     string
		want     error
	}{
		{"empty username", "", "a@example.com", testHash, user.ErrInvalidUsername},
		{"whitespace username", "   ", "a@example.com", testHash, user.ErrInvalidUsername},
		{"username too long", strings.Repeat("a", 51), "a@example.com", testHash, user.ErrInvalidUsername},
		{"empty email", "alice", "", testHash, user.ErrInvalidEmail},
		{"malformed email", "alice", "not-an-email", testHash, user.ErrInvalidEmail},
		{"email too long", "alice", strings.Repeat("a", 95) + "@example.com", testHash, user.ErrInvalidEmail},
		{"raw password instead of hash", "alice", "a@example.com", "Str0ngP@ss", user.ErrInvalidHash},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			_, err := user.New(tc.username, tc.email, tc.hash)
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestUsernameBoundaryLength(t *testing.T) {
	t.Parallel()

	_, err := user.New(strings.Repeat("a", 50), "a@example.com", testHash)
	assert.NoError(t, err, "50 characters is within bounds")
}

func TestPasswordHashing(t *testing.T) {
	t.Parallel()

	hash, err := user.HashPassword("Str0ngP@ss")
	require.NoError(t, err)

	assert.True(t, user.IsBcryptHash(hash))
	assert.True(t, user.VerifyPassword(hash, "Str0ngP@ss"))
	assert.False(t, user.VerifyPassword(hash, "wrong"))
	assert.False(t, user.VerifyPassword("plaintext", "plaintext"), "non-bcrypt stored value never matches")
}

func TestMemoryDirectory(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	dir := user.NewMemoryDirectory()

	created, err := dir.Create(ctx, mustUser(t, "alice", "alice@example.com"))
	require.NoError(t, err)
	assert.NotZero(t, created.ID)
	assert.False(t, created.CreatedAt.IsZero())

	found, err := dir.GetByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, created.ID, found.ID)

	_, err = dir.GetByUsername(ctx, "Alice")
	assert.ErrorIs(t, err, user.ErrNotFound, "lookup is case-sensitive")

	_, err = dir.Create(ctx, mustUser(t, "alice", "other@example.com"))
	assert.ErrorIs(t, err, user.ErrUsernameTaken)

	_, err = dir.Create(ctx, mustUser(t, "bob", "alice@example.com"))
	assert.ErrorIs(t, err, user.ErrEmailTaken)
}

func mustUser(t *testing.T, username, email string) user.User {
	t.Helper()
	u, err := user.New(username, email, testHash)
	require.NoError(t, err)
	return u
}
