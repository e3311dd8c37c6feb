package attendance

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned when no attendance record matches the given key.
var ErrNotFound = errors.New("attendance record not found")

// Status is the per-date attendance state.
type Status string

const (
	Present Status = "Present"
	Absent  Status = "Absent"
)

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool { return s == Present || s == Absent }

// Action describes what an upsert did.
type Action string

const (
	ActionCreated   Action = "created"
	ActionUpdated   Action = "updated"
	ActionUnchanged Action = "unchanged"
)

// Record is one attendance mark for a (user, course, date) key.
type Record struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	CourseID  string    `json:"courseId"`
	Date      time.Time `json:"date"`
	Status    Status    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Repository persists attendance records in Postgres. Every mutation keeps the
// owning course's counters in step inside the same transaction, using in-place
// SQL arithmetic so concurrent marks cannot lose counter updates.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a repo.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Upsert creates or updates the record for (userID, courseID, date) and
// adjusts the course counters accordingly, all in one transaction.
func (r *Repository) Upsert(ctx context.Context, userID, courseID string, date time.Time, status Status) (Record, Action, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return Record{}, "", err
	}
	defer func() { _ = tx.Rollback() }()

	var existing Record
	row := tx.QueryRowContext(ctx, `
		SELECT id, status FROM attendance
		WHERE user_id = $1 AND course_id = $2 AND date = $3
		FOR UPDATE
	`, userID, courseID, date)
	err = row.Scan(&existing.ID, &existing.Status)

	var rec Record
	var action Action
	switch {
	case errors.Is(err, sql.ErrNoRows):
		rec = Record{ID: uuid.NewString(), UserID: userID, CourseID: courseID, Date: date, Status: status}
		irow := tx.QueryRowContext(ctx, `
			INSERT INTO attendance (id, user_id, course_id, date, status)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING created_at, updated_at
		`, rec.ID, rec.UserID, rec.CourseID, rec.Date, rec.Status)
		if err := irow.Scan(&rec.CreatedAt, &rec.UpdatedAt); err != nil {
			return Record{}, "", err
		}
		if _, err := tx.ExecContext(ctx, `
			UPDATE courses SET
				total_attendance = total_attendance + 1,
				presents = presents + CASE WHEN $2 = 'Present' THEN 1 ELSE 0 END,
				absents  = absents  + CASE WHEN $2 = 'Absent'  THEN 1 ELSE 0 END,
				updated_at = NOW()
			WHERE id = $1
		`, courseID, string(status)); err != nil {
			return Record{}, "", err
		}
		action = ActionCreated

	case err != nil:
		return Record{}, "", err

	case existing.Status == status:
		urow := tx.QueryRowContext(ctx, `
			UPDATE attendance SET updated_at = NOW()
			WHERE id = $1
			RETURNING id, user_id, course_id, date, status, created_at, updated_at
		`, existing.ID)
		if err := urow.Scan(&rec.ID, &rec.UserID, &rec.CourseID, &rec.Date, &rec.Status, &rec.CreatedAt, &rec.UpdatedAt); err != nil {
			return Record{}, "", err
		}
		action = ActionUnchanged

	default:
		urow := tx.QueryRowContext(ctx, `
			UPDATE attendance SET status = $2, updated_at = NOW()
			WHERE id = $1
			RETURNING id, user_id, course_id, date, status, created_at, updated_at
		`, existing.ID, status)
		if err := urow.Scan(&rec.ID, &rec.UserID, &rec.CourseID, &rec.Date, &rec.Status, &rec.CreatedAt, &rec.UpdatedAt); err != nil {
			return Record{}, "", err
		}
		// move one unit from the old status counter to the new one; total unchanged
		if _, err := tx.ExecContext(ctx, `
			UPDATE courses SET
				presents = presents + CASE WHEN $2 = 'Present' THEN 1 WHEN $3 = 'Present' THEN -1 ELSE 0 END,
				absents  = absents  + CASE WHEN $2 = 'Absent'  THEN 1 WHEN $3 = 'Absent'  THEN -1 ELSE 0 END,
				updated_at = NOW()
			WHERE id = $1
		`, courseID, string(status), string(existing.Status)); err != nil {
			return Record{}, "", err
		}
		action = ActionUpdated
	}

	if err := tx.Commit(); err != nil {
		return Record{}, "", err
	}
	return rec, action, nil
}

// List returns all records for the (user, course) pair ordered by date ascending.
func (r *Repository) List(ctx context.Context, userID, courseID string) ([]Record, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, course_id, date, status, created_at, updated_at
		FROM attendance
		WHERE user_id = $1 AND course_id = $2
		ORDER BY date ASC
	`, userID, courseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var recs []Record
	for rows.Next() {
		var rec Record
		if err := rows.Scan(&rec.ID, &rec.UserID, &rec.CourseID, &rec.Date, &rec.Status, &rec.CreatedAt, &rec.UpdatedAt); err != nil {
			return nil, err
		}
		recs = append(recs, rec)
	}
	return recs, rows.Err()
}

// Delete removes the record for (userID, courseID, date) and reverses its
// contribution to the course counters, based on the status persisted at the
// time of deletion. Returns the number of deleted rows.
func (r *Repository) Delete(ctx context.Context, userID, courseID string, date time.Time) (int64, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback() }()

	var status Status
	row := tx.QueryRowContext(ctx, `
		DELETE FROM attendance
		WHERE user_id = $1 AND course_id = $2 AND date = $3
		RETURNING status
	`, userID, courseID, date)
	if err := row.Scan(&status); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, ErrNotFound
		}
		return 0, err
	}

	if _, err := tx.ExecContext(ctx, `
		UPDATE courses SET
			total_attendance = total_attendance - 1,
			presents = presents - CASE WHEN $2 = 'Present' THEN 1 ELSE 0 END,
			absents  = absents  - CASE WHEN $2 = 'Absent'  THEN 1 ELSE 0 END,
			updated_at = NOW()
		WHERE id = $1
	`, courseID, string(status)); err != nil {
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return 1, nil
}
