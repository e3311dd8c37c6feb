package user

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// ErrNotFound is returned when no user matches the given id.
var ErrNotFound = errors.New("user not found")

// User is an account that owns courses, attendance and reminders.
type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Timezone  string    `json:"timezone"`
	CreatedAt time.Time `json:"createdAt"`
}

// Repository persists users in Postgres.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a repo.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Get returns a user by id.
func (r *Repository) Get(ctx context.Context, id string) (User, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, name, email, timezone, created_at
		FROM users WHERE id = $1
	`, id)
	var u User
	if err := row.Scan(&u.ID, &u.Name, &u.Email, &u.Timezone, &u.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return User{}, ErrNotFound
		}
		return User{}, err
	}
	return u, nil
}

// UpdateTimezone sets the user's stored timezone.
func (r *Repository) UpdateTimezone(ctx context.Context, id, timezone string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE users SET timezone = $2, updated_at = NOW() WHERE id = $1
	`, id, timezone)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

// ListByTimezone returns all users whose stored timezone exactly equals zone.
func (r *Repository) ListByTimezone(ctx context.Context, zone string) ([]User, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, email, timezone, created_at
		FROM users WHERE timezone = $1
	`, zone)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var users []User
	for rows.Next() {
		var u User
		if err := rows.Scan(&u.ID, &u.Name, &u.Email, &u.Timezone, &u.CreatedAt); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}
