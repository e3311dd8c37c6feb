package reminder

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// Reminder is a dated note attached to a course, consumed by the scheduler.
type Reminder struct {
	ID           string    `json:"id"`
	UserID       string    `json:"userId"`
	CourseID     string    `json:"courseId"`
	ReminderDate time.Time `json:"reminderDate"`
	Message      string    `json:"message,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Due is a reminder joined with its course name, ready for dispatch.
type Due struct {
	ID           string
	UserID       string
	CourseName   string
	Message      string
	ReminderDate time.Time
}

// Repository persists reminders in Postgres.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a repo.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Upsert creates the reminder for (user, course, date) or updates its message.
// The unique index on the triple makes concurrent identical submissions safe.
func (r *Repository) Upsert(ctx context.Context, userID, courseID string, date time.Time, message string) (Reminder, error) {
	rem := Reminder{ID: uuid.NewString(), UserID: userID, CourseID: courseID, ReminderDate: date, Message: message}
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO reminders (id, user_id, course_id, reminder_date, message)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_id, course_id, reminder_date)
		DO UPDATE SET message = EXCLUDED.message
		RETURNING id, created_at
	`, rem.ID, rem.UserID, rem.CourseID, rem.ReminderDate, nullable(message))
	if err := row.Scan(&rem.ID, &rem.CreatedAt); err != nil {
		return Reminder{}, err
	}
	return rem, nil
}

// ListByCourse returns the user's reminders for a course, date ascending.
func (r *Repository) ListByCourse(ctx context.Context, userID, courseID string) ([]Reminder, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, course_id, reminder_date, COALESCE(message, ''), created_at
		FROM reminders
		WHERE user_id = $1 AND course_id = $2
		ORDER BY reminder_date ASC
	`, userID, courseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var rems []Reminder
	for rows.Next() {
		var rem Reminder
		if err := rows.Scan(&rem.ID, &rem.UserID, &rem.CourseID, &rem.ReminderDate, &rem.Message, &rem.CreatedAt); err != nil {
			return nil, err
		}
		rems = append(rems, rem)
	}
	return rems, rows.Err()
}

// DueForUsers returns reminders for any of the given users with
// reminder_date in [start, end), joined with the course name.
func (r *Repository) DueForUsers(ctx context.Context, userIDs []string, start, end time.Time) ([]Due, error) {
	if len(userIDs) == 0 {
		return nil, nil
	}
	rows, err := r.db.QueryContext(ctx, `
		SELECT r.id, r.user_id, c.name, COALESCE(r.message, ''), r.reminder_date
		FROM reminders r
		JOIN courses c ON c.id = r.course_id
		WHERE r.user_id = ANY($1) AND r.reminder_date >= $2 AND r.reminder_date < $3
		ORDER BY r.reminder_date ASC
	`, userIDs, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var due []Due
	for rows.Next() {
		var d Due
		if err := rows.Scan(&d.ID, &d.UserID, &d.CourseName, &d.Message, &d.ReminderDate); err != nil {
			return nil, err
		}
		due = append(due, d)
	}
	return due, rows.Err()
}

// DeleteByIDs removes the given reminders and returns how many went away.
func (r *Repository) DeleteByIDs(ctx context.Context, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res, err := r.db.ExecContext(ctx, `DELETE FROM reminders WHERE id = ANY($1)`, ids)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
