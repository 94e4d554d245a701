package user

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/plannerhq/planner/integration/database/pg"
)

// PostgresDirectory is the production Directory backed by the users table.
type PostgresDirectory struct {
	pool *pgxpool.Pool
}

// NewPostgresDirectory creates a directory over the given pool.
func NewPostgresDirectory(pool *pgxpool.Pool) *PostgresDirectory {
	return &PostgresDirectory{pool: pool}
}

// GetByUsername implements Directory.
func (d *PostgresDirectory) GetByUsername(ctx context.Context, username string) (User, error) {
	const query = `
		SELECT id, username, email, password_hash, role, enabled, created_at, updated_at
		FROM users
		WHERE username = $1`

	var u User
	err := d.pool.QueryRow(ctx, query, username).Scan(
		&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.Role, &u.Enabled,
		&u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		if pg.IsNotFoundError(err) {
			return User{}, ErrNotFound
		}
		return User{}, fmt.Errorf("get user by username: %w", err)
	}
	return u, nil
}

// Create implements Directory. Uniqueness is enforced by the database;
// constraint violations map to the conflicting field.
func (d *PostgresDirectory) Create(ctx context.Context, u User) (User, error) {
	if err := u.Validate(); err != nil {
		return User{}, err
	}

	const query = `
		INSERT INTO users (username, email, password_hash, role, enabled)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at`

	err := d.pool.QueryRow(ctx, query,
		u.Username, u.Email, u.PasswordHash, u.Role, u.Enabled,
	).Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if pg.IsDuplicateKeyError(err) {
			if strings.Contains(pg.ConstraintName(err), "email") {
				return User{}, ErrEmailTaken
			}
			return User{}, ErrUsernameTaken
		}
		return User{}, fmt.Errorf("create user: %w", err)
	}
	return u, nil
}
