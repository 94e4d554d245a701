package organizer

import (
	"context"
	"sort"
	"sync"
	"time"
)

// recorder constrains a memory store to entity types embedding Record.
type recorder[T any] interface {
	*T
	record() *Record
}

// MemoryStore is an in-memory Store implementation used by tests and local
// development. Safe for concurrent use.
type MemoryStore[T any, PT recorder[T]] struct {
	kind string
	now  func() time.Time

	mu     sync.RWMutex
	rows   map[int64]T
	nextID int64
}

// NewMemoryStore creates an empty in-memory store. The kind names the entity
// in not-found errors.
func NewMemoryStore[T any, PT recorder[T]](kind string) *MemoryStore[T, PT] {
	return &MemoryStore[T, PT]{
		kind: kind,
		now:  time.Now,
		rows: make(map[int64]T),
	}
}

// NewMemoryStores creates a full in-memory store set.
func NewMemoryStores() Stores {
	return Stores{
		Contacts:     NewMemoryStore[Contact]("Contact"),
		Tasks:        NewMemoryStore[Task]("Task"),
		Appointments: NewMemoryStore[Appointment]("Appointment"),
		Projects:     NewMemoryStore[Project]("Project"),
	}
}

// WithClock replaces the store's time source. Test hook.
func (s *MemoryStore[T, PT]) WithClock(now func() time.Time) *MemoryStore[T, PT] {
	s.now = now
	return s
}

func (s *MemoryStore[T, PT]) Create(_ context.Context, userID int64, item T) (T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	ts := s.now().UTC()
	rec := PT(&item).record()
	rec.ID = s.nextID
	rec.UserID = userID
	rec.CreatedAt = ts
	rec.UpdatedAt = ts

	s.rows[rec.ID] = item
	return item, nil
}

func (s *MemoryStore[T, PT]) List(_ context.Context, userID int64) ([]T, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]T, 0)
	for _, row := range s.rows {
		row := row
		if PT(&row).record().UserID == userID {
			out = append(out, row)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return PT(&out[i]).record().ID < PT(&out[j]).record().ID
	})
	return out, nil
}

func (s *MemoryStore[T, PT]) Get(_ context.Context, userID, id int64) (T, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row, ok := s.rows[id]
	if !ok || PT(&row).record().UserID != userID {
		var zero T
		return zero, NotFoundError{Kind: s.kind, ID: id}
	}
	return row, nil
}

func (s *MemoryStore[T, PT]) Update(_ context.Context, userID, id int64, item T) (T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.rows[id]
	if !ok || PT(&existing).record().UserID != userID {
		var zero T
		return zero, NotFoundError{Kind: s.kind, ID: id}
	}

	prev := PT(&existing).record()
	rec := PT(&item).record()
	rec.ID = prev.ID
	rec.UserID = prev.UserID
	rec.CreatedAt = prev.CreatedAt
	rec.UpdatedAt = s.now().UTC()

	s.rows[id] = item
	return item, nil
}

func (s *MemoryStore[T, PT]) Delete(_ context.Context, userID, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.rows[id]
	if !ok || PT(&existing).record().UserID != userID {
		return NotFoundError{Kind: s.kind, ID: id}
	}
	delete(s.rows, id)
	return nil
}
