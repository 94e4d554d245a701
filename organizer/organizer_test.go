package organizer_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plannerhq/planner/organizer"
)

func TestContactValidate(t *testing.T) {
	t.Parallel()

	c := organizer.Contact{Name: "  Ada Lovelace  ", Email: " ada@example.com "}
	require.NoError(t, c.Validate())
	assert.Equal(t, "Ada Lovelace", c.Name)
	assert.Equal(t, "ada@example.com", c.Email)

	empty := organizer.Contact{Name: "   "}
	err := empty.Validate()
	require.Error(t, err)
	assert.Equal(t, "contact name is required", err.Error())
}

func TestTaskValidate(t *testing.T) {
	t.Parallel()

	task := organizer.Task{Title: "ship it"}
	require.NoError(t, task.Validate())

	err := (&organizer.Task{}).Validate()
	require.Error(t, err)
	assert.Equal(t, "task title is required", err.Error())
}

func TestAppointmentValidate(t *testing.T) {
	t.Parallel()

	start := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	end := start.Add(time.Hour)

	ok := organizer.Appointment{Title: "standup", StartsAt: start, EndsAt: &end}
	require.NoError(t, ok.Validate())

	missing := organizer.Appointment{Title: "standup"}
	err := missing.Validate()
	require.Error(t, err)
	assert.Equal(t, "appointment start time is required", err.Error())

	backwards := organizer.Appointment{Title: "standup", StartsAt: end, EndsAt: &start}
	err = backwards.Validate()
	require.Error(t, err)
	assert.Equal(t, "appointment end time must be after start time", err.Error())
}

func TestProjectValidate(t *testing.T) {
	t.Parallel()

	p := organizer.Project{Name: "apollo"}
	require.NoError(t, p.Validate())
	assert.Equal(t, organizer.ProjectActive, p.Status, "status defaults to ACTIVE")

	bad := organizer.Project{Name: "apollo", Status: "PAUSED"}
	assert.Error(t, bad.Validate())
}

func TestMemoryStoreCRUD(t *testing.T) {
	t.Parallel()

	store := organizer.NewMemoryStore[organizer.Contact]("Contact")
	ctx := context.Background()

	created, err := store.Create(ctx, 1, organizer.Contact{Name: "Ada"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), created.ID)
	assert.Equal(t, int64(1), created.UserID)
	assert.False(t, created.CreatedAt.IsZero())

	got, err := store.Get(ctx, 1, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ada", got.Name)

	updated, err := store.Update(ctx, 1, created.ID, organizer.Contact{Name: "Ada L"})
	require.NoError(t, err)
	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, "Ada L", updated.Name)
	assert.Equal(t, created.CreatedAt, updated.CreatedAt, "creation time survives updates")

	require.NoError(t, store.Delete(ctx, 1, created.ID))

	_, err = store.Get(ctx, 1, created.ID)
	var nf organizer.NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "Contact not found with id: 1", nf.Error())
}

func TestMemoryStoreTenantIsolation(t *testing.T) {
	t.Parallel()

	store := organizer.NewMemoryStore[organizer.Task]("Task")
	ctx := context.Background()

	mine, err := store.Create(ctx, 1, organizer.Task{Title: "mine"})
	require.NoError(t, err)
	_, err = store.Create(ctx, 2, organizer.Task{Title: "theirs"})
	require.NoError(t, err)

	// Another tenant's id behaves exactly like a missing row.
	_, err = store.Get(ctx, 2, mine.ID)
	assert.ErrorAs(t, err, &organizer.NotFoundError{})

	_, err = store.Update(ctx, 2, mine.ID, organizer.Task{Title: "hijack"})
	assert.ErrorAs(t, err, &organizer.NotFoundError{})

	err = store.Delete(ctx, 2, mine.ID)
	assert.ErrorAs(t, err, &organizer.NotFoundError{})

	list, err := store.List(ctx, 1)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "mine", list[0].Title)
}

func TestMemoryStoreListOrdering(t *testing.T) {
	t.Parallel()

	store := organizer.NewMemoryStore[organizer.Project]("Project")
	ctx := context.Background()

	for _, name := range []string{"alpha", "beta", "gamma"} {
		_, err := store.Create(ctx, 7, organizer.Project{Name: name, Status: organizer.ProjectActive})
		require.NoError(t, err)
	}

	list, err := store.List(ctx, 7)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "alpha", list[0].Name)
	assert.Equal(t, "gamma", list[2].Name)
}
