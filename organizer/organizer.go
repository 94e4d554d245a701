// Package organizer holds the per-user planning entities behind /api/v1:
// contacts, tasks, appointments and projects. Every row is owned by exactly
// one user; stores scope every operation by the owner's id so one tenant can
// never observe another's rows.
package organizer

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Field length limits shared by all entities.
const (
	MaxTitleLength = 100
	MaxNotesLength = 2000
)

// Record carries the columns common to every organizer entity. The owner is
// never serialized; clients only ever see their own rows.
type Record struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"-"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (r *Record) record() *Record { return r }

// Contact is an address-book entry.
type Contact struct {
	Record

	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
	Notes string `json:"notes"`
}

// Validate normalizes and checks the user-supplied fields.
func (c *Contact) Validate() error {
	c.Name = strings.TrimSpace(c.Name)
	c.Email = strings.TrimSpace(c.Email)
	if c.Name == "" {
		return errors.New("contact name is required")
	}
	if len(c.Name) > MaxTitleLength {
		return fmt.Errorf("contact name must be at most %d characters", MaxTitleLength)
	}
	if len(c.Notes) > MaxNotesLength {
		return fmt.Errorf("contact notes must be at most %d characters", MaxNotesLength)
	}
	return nil
}

// Task is a to-do item, optionally with a due date.
type Task struct {
	Record

	Title       string     `json:"title"`
	Description string     `json:"description"`
	DueDate     *time.Time `json:"dueDate,omitempty"`
	Completed   bool       `json:"completed"`
}

// Validate normalizes and checks the user-supplied fields.
func (t *Task) Validate() error {
	t.Title = strings.TrimSpace(t.Title)
	if t.Title == "" {
		return errors.New("task title is required")
	}
	if len(t.Title) > MaxTitleLength {
		return fmt.Errorf("task title must be at most %d characters", MaxTitleLength)
	}
	if len(t.Description) > MaxNotesLength {
		return fmt.Errorf("task description must be at most %d characters", MaxNotesLength)
	}
	return nil
}

// Appointment is a calendar entry with a mandatory start time.
type Appointment struct {
	Record

	Title    string     `json:"title"`
	Location string     `json:"location"`
	Notes    string     `json:"notes"`
	StartsAt time.Time  `json:"startsAt"`
	EndsAt   *time.Time `json:"endsAt,omitempty"`
}

// Validate normalizes and checks the user-supplied fields.
func (a *Appointment) Validate() error {
	a.Title = strings.TrimSpace(a.Title)
	if a.Title == "" {
		return errors.New("appointment title is required")
	}
	if len(a.Title) > MaxTitleLength {
		return fmt.Errorf("appointment title must be at most %d characters", MaxTitleLength)
	}
	if a.StartsAt.IsZero() {
		return errors.New("appointment start time is required")
	}
	if a.EndsAt != nil && !a.EndsAt.After(a.StartsAt) {
		return errors.New("appointment end time must be after start time")
	}
	return nil
}

// Project lifecycle states.
const (
	ProjectActive    = "ACTIVE"
	ProjectOnHold    = "ON_HOLD"
	ProjectCompleted = "COMPLETED"
)

// Project groups tasks and appointments under a named effort.
type Project struct {
	Record

	Name        string `json:"name"`
	Description string `json:"description"`
	Status      string `json:"status"`
}

// Validate normalizes and checks the user-supplied fields. An empty status
// defaults to ACTIVE.
func (p *Project) Validate() error {
	p.Name = strings.TrimSpace(p.Name)
	if p.Name == "" {
		return errors.New("project name is required")
	}
	if len(p.Name) > MaxTitleLength {
		return fmt.Errorf("project name must be at most %d characters", MaxTitleLength)
	}
	if p.Status == "" {
		p.Status = ProjectActive
	}
	switch p.Status {
	case ProjectActive, ProjectOnHold, ProjectCompleted:
	default:
		return fmt.Errorf("invalid project status: %s", p.Status)
	}
	if len(p.Description) > MaxNotesLength {
		return fmt.Errorf("project description must be at most %d characters", MaxNotesLength)
	}
	return nil
}
