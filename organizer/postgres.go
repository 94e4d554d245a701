package organizer

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/plannerhq/planner/integration/database/pg"
)

// NewPostgresStores creates the full Postgres-backed store set.
func NewPostgresStores(pool *pgxpool.Pool) Stores {
	return Stores{
		Contacts:     &PostgresContactStore{pool: pool},
		Tasks:        &PostgresTaskStore{pool: pool},
		Appointments: &PostgresAppointmentStore{pool: pool},
		Projects:     &PostgresProjectStore{pool: pool},
	}
}

// PostgresContactStore persists contacts in the contacts table.
type PostgresContactStore struct {
	pool *pgxpool.Pool
}

func (s *PostgresContactStore) Create(ctx context.Context, userID int64, c Contact) (Contact, error) {
	err := s.pool.QueryRow(ctx, `
		INSERT INTO contacts (user_id, name, email, phone, notes)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at`,
		userID, c.Name, c.Email, c.Phone, c.Notes,
	).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return Contact{}, fmt.Errorf("organizer: create contact: %w", err)
	}
	c.UserID = userID
	return c, nil
}

func (s *PostgresContactStore) List(ctx context.Context, userID int64) ([]Contact, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, user_id, name, email, phone, notes, created_at, updated_at
		FROM contacts WHERE user_id = $1 ORDER BY id`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("organizer: list contacts: %w", err)
	}
	defer rows.Close()

	out := make([]Contact, 0)
	for rows.Next() {
		var c Contact
		if err := rows.Scan(&c.ID, &c.UserID, &c.Name, &c.Email, &c.Phone, &c.Notes, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("organizer: scan contact: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *PostgresContactStore) Get(ctx context.Context, userID, id int64) (Contact, error) {
	var c Contact
	err := s.pool.QueryRow(ctx, `
		SELECT id, user_id, name, email, phone, notes, created_at, updated_at
		FROM contacts WHERE user_id = $1 AND id = $2`,
		userID, id,
	).Scan(&c.ID, &c.UserID, &c.Name, &c.Email, &c.Phone, &c.Notes, &c.CreatedAt, &c.UpdatedAt)
	if pg.IsNotFoundError(err) {
		return Contact{}, NotFoundError{Kind: "Contact", ID: id}
	}
	if err != nil {
		return Contact{}, fmt.Errorf("organizer: get contact: %w", err)
	}
	return c, nil
}

func (s *PostgresContactStore) Update(ctx context.Context, userID, id int64, c Contact) (Contact, error) {
	err := s.pool.QueryRow(ctx, `
		UPDATE contacts
		SET name = $3, email = $4, phone = $5, notes = $6, updated_at = now()
		WHERE user_id = $1 AND id = $2
		RETURNING id, user_id, created_at, updated_at`,
		userID, id, c.Name, c.Email, c.Phone, c.Notes,
	).Scan(&c.ID, &c.UserID, &c.CreatedAt, &c.UpdatedAt)
	if pg.IsNotFoundError(err) {
		return Contact{}, NotFoundError{Kind: "Contact", ID: id}
	}
	if err != nil {
		return Contact{}, fmt.Errorf("organizer: update contact: %w", err)
	}
	return c, nil
}

func (s *PostgresContactStore) Delete(ctx context.Context, userID, id int64) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM contacts WHERE user_id = $1 AND id = $2`, userID, id)
	if err != nil {
		return fmt.Errorf("organizer: delete contact: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return NotFoundError{Kind: "Contact", ID: id}
	}
	return nil
}

// PostgresTaskStore persists tasks in the tasks table.
type PostgresTaskStore struct {
	pool *pgxpool.Pool
}

func (s *PostgresTaskStore) Create(ctx context.Context, userID int64, t Task) (Task, error) {
	err := s.pool.QueryRow(ctx, `
		INSERT INTO tasks (user_id, title, description, due_date, completed)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at`,
		userID, t.Title, t.Description, t.DueDate, t.Completed,
	).Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return Task{}, fmt.Errorf("organizer: create task: %w", err)
	}
	t.UserID = userID
	return t, nil
}

func (s *PostgresTaskStore) List(ctx context.Context, userID int64) ([]Task, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, user_id, title, description, due_date, completed, created_at, updated_at
		FROM tasks WHERE user_id = $1 ORDER BY id`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("organizer: list tasks: %w", err)
	}
	defer rows.Close()

	out := make([]Task, 0)
	for rows.Next() {
		var t Task
		if err := rows.Scan(&t.ID, &t.UserID, &t.Title, &t.Description, &t.DueDate, &t.Completed, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, fmt.Errorf("organizer: scan task: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (s *PostgresTaskStore) Get(ctx context.Context, userID, id int64) (Task, error) {
	var t Task
	err := s.pool.QueryRow(ctx, `
		SELECT id, user_id, title, description, due_date, completed, created_at, updated_at
		FROM tasks WHERE user_id = $1 AND id = $2`,
		userID, id,
	).Scan(&t.ID, &t.UserID, &t.Title, &t.Description, &t.DueDate, &t.Completed, &t.CreatedAt, &t.UpdatedAt)
	if pg.IsNotFoundError(err) {
		return Task{}, NotFoundError{Kind: "Task", ID: id}
	}
	if err != nil {
		return Task{}, fmt.Errorf("organizer: get task: %w", err)
	}
	return t, nil
}

func (s *PostgresTaskStore) Update(ctx context.Context, userID, id int64, t Task) (Task, error) {
	err := s.pool.QueryRow(ctx, `
		UPDATE tasks
		SET title = $3, description = $4, due_date = $5, completed = $6, updated_at = now()
		WHERE user_id = $1 AND id = $2
		RETURNING id, user_id, created_at, updated_at`,
		userID, id, t.Title, t.Description, t.DueDate, t.Completed,
	).Scan(&t.ID, &t.UserID, &t.CreatedAt, &t.UpdatedAt)
	if pg.IsNotFoundError(err) {
		return Task{}, NotFoundError{Kind: "Task", ID: id}
	}
	if err != nil {
		return Task{}, fmt.Errorf("organizer: update task: %w", err)
	}
	return t, nil
}

func (s *PostgresTaskStore) Delete(ctx context.Context, userID, id int64) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM tasks WHERE user_id = $1 AND id = $2`, userID, id)
	if err != nil {
		return fmt.Errorf("organizer: delete task: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return NotFoundError{Kind: "Task", ID: id}
	}
	return nil
}

// PostgresAppointmentStore persists appointments in the appointments table.
type PostgresAppointmentStore struct {
	pool *pgxpool.Pool
}

func (s *PostgresAppointmentStore) Create(ctx context.Context, userID int64, a Appointment) (Appointment, error) {
	err := s.pool.QueryRow(ctx, `
		INSERT INTO appointments (user_id, title, location, notes, starts_at, ends_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at`,
		userID, a.Title, a.Location, a.Notes, a.StartsAt, a.EndsAt,
	).Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return Appointment{}, fmt.Errorf("organizer: create appointment: %w", err)
	}
	a.UserID = userID
	return a, nil
}

func (s *PostgresAppointmentStore) List(ctx context.Context, userID int64) ([]Appointment, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, user_id, title, location, notes, starts_at, ends_at, created_at, updated_at
		FROM appointments WHERE user_id = $1 ORDER BY starts_at, id`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("organizer: list appointments: %w", err)
	}
	defer rows.Close()

	out := make([]Appointment, 0)
	for rows.Next() {
		var a Appointment
		if err := rows.Scan(&a.ID, &a.UserID, &a.Title, &a.Location, &a.Notes, &a.StartsAt, &a.EndsAt, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, fmt.Errorf("organizer: scan appointment: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (s *PostgresAppointmentStore) Get(ctx context.Context, userID, id int64) (Appointment, error) {
	var a Appointment
	err := s.pool.QueryRow(ctx, `
		SELECT id, user_id, title, location, notes, starts_at, ends_at, created_at, updated_at
		FROM appointments WHERE user_id = $1 AND id = $2`,
		userID, id,
	).Scan(&a.ID, &a.UserID, &a.Title, &a.Location, &a.Notes, &a.StartsAt, &a.EndsAt, &a.CreatedAt, &a.UpdatedAt)
	if pg.IsNotFoundError(err) {
		return Appointment{}, NotFoundError{Kind: "Appointment", ID: id}
	}
	if err != nil {
		return Appointment{}, fmt.Errorf("organizer: get appointment: %w", err)
	}
	return a, nil
}

func (s *PostgresAppointmentStore) Update(ctx context.Context, userID, id int64, a Appointment) (Appointment, error) {
	err := s.pool.QueryRow(ctx, `
		UPDATE appointments
		SET title = $3, location = $4, notes = $5, starts_at = $6, ends_at = $7, updated_at = now()
		WHERE user_id = $1 AND id = $2
		RETURNING id, user_id, created_at, updated_at`,
		userID, id, a.Title, a.Location, a.Notes, a.StartsAt, a.EndsAt,
	).Scan(&a.ID, &a.UserID, &a.CreatedAt, &a.UpdatedAt)
	if pg.IsNotFoundError(err) {
		return Appointment{}, NotFoundError{Kind: "Appointment", ID: id}
	}
	if err != nil {
		return Appointment{}, fmt.Errorf("organizer: update appointment: %w", err)
	}
	return a, nil
}

func (s *PostgresAppointmentStore) Delete(ctx context.Context, userID, id int64) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM appointments WHERE user_id = $1 AND id = $2`, userID, id)
	if err != nil {
		return fmt.Errorf("organizer: delete appointment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return NotFoundError{Kind: "Appointment", ID: id}
	}
	return nil
}

// PostgresProjectStore persists projects in the projects table.
type PostgresProjectStore struct {
	pool *pgxpool.Pool
}

func (s *PostgresProjectStore) Create(ctx context.Context, userID int64, p Project) (Project, error) {
	err := s.pool.QueryRow(ctx, `
		INSERT INTO projects (user_id, name, description, status)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at`,
		userID, p.Name, p.Description, p.Status,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return Project{}, fmt.Errorf("organizer: create project: %w", err)
	}
	p.UserID = userID
	return p, nil
}

func (s *PostgresProjectStore) List(ctx context.Context, userID int64) ([]Project, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, user_id, name, description, status, created_at, updated_at
		FROM projects WHERE user_id = $1 ORDER BY id`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("organizer: list projects: %w", err)
	}
	defer rows.Close()

	out := make([]Project, 0)
	for rows.Next() {
		var p Project
		if err := rows.Scan(&p.ID, &p.UserID, &p.Name, &p.Description, &p.Status, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("organizer: scan project: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *PostgresProjectStore) Get(ctx context.Context, userID, id int64) (Project, error) {
	var p Project
	err := s.pool.QueryRow(ctx, `
		SELECT id, user_id, name, description, status, created_at, updated_at
		FROM projects WHERE user_id = $1 AND id = $2`,
		userID, id,
	).Scan(&p.ID, &p.UserID, &p.Name, &p.Description, &p.Status, &p.CreatedAt, &p.UpdatedAt)
	if pg.IsNotFoundError(err) {
		return Project{}, NotFoundError{Kind: "Project", ID: id}
	}
	if err != nil {
		return Project{}, fmt.Errorf("organizer: get project: %w", err)
	}
	return p, nil
}

func (s *PostgresProjectStore) Update(ctx context.Context, userID, id int64, p Project) (Project, error) {
	err := s.pool.QueryRow(ctx, `
		UPDATE projects
		SET name = $3, description = $4, status = $5, updated_at = now()
		WHERE user_id = $1 AND id = $2
		RETURNING id, user_id, created_at, updated_at`,
		userID, id, p.Name, p.Description, p.Status,
	).Scan(&p.ID, &p.UserID, &p.CreatedAt, &p.UpdatedAt)
	if pg.IsNotFoundError(err) {
		return Project{}, NotFoundError{Kind: "Project", ID: id}
	}
	if err != nil {
		return Project{}, fmt.Errorf("organizer: update project: %w", err)
	}
	return p, nil
}

func (s *PostgresProjectStore) Delete(ctx context.Context, userID, id int64) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM projects WHERE user_id = $1 AND id = $2`, userID, id)
	if err != nil {
		return fmt.Errorf("organizer: delete project: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return NotFoundError{Kind: "Project", ID: id}
	}
	return nil
}
