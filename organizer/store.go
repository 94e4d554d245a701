package organizer

import (
	"context"
	"fmt"
)

// NotFoundError reports a lookup miss. Rows owned by another user are
// indistinguishable from rows that do not exist.
type NotFoundError struct {
	Kind string
	ID   int64
}

func (e NotFoundError) Error() string {
	return fmt.Sprintf("%s not found with id: %d", e.Kind, e.ID)
}

// Store is the persistence contract shared by every organizer entity. All
// operations are scoped to the owning user; ids from other tenants behave as
// if they do not exist.
type Store[T any] interface {
	Create(ctx context.Context, userID int64, item T) (T, error)
	List(ctx context.Context, userID int64) ([]T, error)
	Get(ctx context.Context, userID, id int64) (T, error)
	Update(ctx context.Context, userID, id int64, item T) (T, error)
	Delete(ctx context.Context, userID, id int64) error
}

// Stores bundles the per-entity stores for wiring and handlers.
type Stores struct {
	Contacts     Store[Contact]
	Tasks        Store[Task]
	Appointments Store[Appointment]
	Projects     Store[Project]
}
