package user

import (
	"context"
	"sync"
	"time"
)

// MemoryDirectory is an in-memory Directory used by tests and local
// development runs without a database.
type MemoryDirectory struct {
	mu     sync.RWMutex
	byName map[string]User
	byMail map[string]User
	nextID int64
	now    func() time.Time
}

// MemoryDirectoryOption configures a MemoryDirectory.
type MemoryDirectoryOption func(*MemoryDirectory)

// WithMemoryClock injects the time source used for record timestamps.
func WithMemoryClock(now func() time.Time) MemoryDirectoryOption {
	return func(d *MemoryDirectory) {
		if now != nil {
			d.now = now
		}
	}
}

// NewMemoryDirectory creates an empty in-memory directory.
func NewMemoryDirectory(opts ...MemoryDirectoryOption) *MemoryDirectory {
	d := &MemoryDirectory{
		byName: make(map[string]User),
		byMail: make(map[string]User),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// GetByUsername implements Directory.
func (d *MemoryDirectory) GetByUsername(ctx context.Context, username string) (User, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	u, ok := d.byName[username]
	if !ok {
		return User{}, ErrNotFound
	}
	return u, nil
}

// Create implements Directory.
func (d *MemoryDirectory) Create(ctx context.Context, u User) (User, error) {
	if err := u.Validate(); err != nil {
		return User{}, err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if _, exists := d.byName[u.Username]; exists {
		return User{}, ErrUsernameTaken
	}
	if _, exists := d.byMail[u.Email]; exists {
		return User{}, ErrEmailTaken
	}

	d.nextID++
	u.ID = d.nextID
	now := d.now()
	u.CreatedAt = now
	u.UpdatedAt = now

	d.byName[u.Username] = u
	d.byMail[u.Email] = u
	return u, nil
}
