package course

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrNotFound is returned when no course matches the given id.
	ErrNotFound = errors.New("course not found")
	// ErrNotOwned is returned when the course belongs to a different user.
	ErrNotOwned = errors.New("course not owned by user")
)

// Course belongs to exactly one user and carries denormalized attendance
// counters kept in sync by the attendance ledger.
type Course struct {
	ID              string    `json:"id"`
	UserID          string    `json:"userId"`
	Name            string    `json:"name"`
	TotalAttendance int       `json:"totalAttendance"`
	Presents        int       `json:"presents"`
	Absents         int       `json:"absents"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// Repository persists courses in Postgres.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a repo.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Insert writes a new course with zeroed counters.
func (r *Repository) Insert(ctx context.Context, userID, name string) (Course, error) {
	c := Course{ID: uuid.NewString(), UserID: userID, Name: name}
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO courses (id, user_id, name)
		VALUES ($1, $2, $3)
		RETURNING created_at, updated_at
	`, c.ID, c.UserID, c.Name)
	if err := row.Scan(&c.CreatedAt, &c.UpdatedAt); err != nil {
		return Course{}, err
	}
	return c, nil
}

// Get returns a single course by id.
func (r *Repository) Get(ctx context.Context, id string) (Course, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, user_id, name, total_attendance, presents, absents, created_at, updated_at
		FROM courses WHERE id = $1
	`, id)
	var c Course
	if err := row.Scan(&c.ID, &c.UserID, &c.Name, &c.TotalAttendance, &c.Presents, &c.Absents, &c.CreatedAt, &c.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Course{}, ErrNotFound
		}
		return Course{}, err
	}
	return c, nil
}

// ListByUser returns the user's courses, newest first.
func (r *Repository) ListByUser(ctx context.Context, userID string) ([]Course, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, name, total_attendance, presents, absents, created_at, updated_at
		FROM courses WHERE user_id = $1
		ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var courses []Course
	for rows.Next() {
		var c Course
		if err := rows.Scan(&c.ID, &c.UserID, &c.Name, &c.TotalAttendance, &c.Presents, &c.Absents, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		courses = append(courses, c)
	}
	return courses, rows.Err()
}

// Delete removes a course. Attendance and reminders cascade at the store level.
func (r *Repository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM courses WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}
