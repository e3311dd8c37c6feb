package attendance

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrInvalidStatus is returned for a status outside {Present, Absent}.
	ErrInvalidStatus = errors.New("status must be Present or Absent")
	// ErrInvalidDate is returned for a zero or unparseable date.
	ErrInvalidDate = errors.New("invalid date")
)

// Store is the persistence surface the service needs.
type Store interface {
	Upsert(ctx context.Context, userID, courseID string, date time.Time, status Status) (Record, Action, error)
	List(ctx context.Context, userID, courseID string) ([]Record, error)
	Delete(ctx context.Context, userID, courseID string, date time.Time) (int64, error)
}

// Courses verifies course ownership for the calling user.
type Courses interface {
	Owned(ctx context.Context, userID, courseID string) error
}

// BatchResult is the per-course outcome of a quick-attendance pass.
type BatchResult struct {
	CourseID string `json:"courseId"`
	Status   Status `json:"status"`
	Action   Action `json:"action"`
	Error    string `json:"error,omitempty"`
}

// Service is the attendance ledger: it keeps per-date records and the owning
// course's aggregate counters consistent.
type Service struct {
	store   Store
	courses Courses
	now     func() time.Time
}

// NewService creates a service backed by a store.
func NewService(store Store, courses Courses) *Service {
	return &Service{store: store, courses: courses, now: time.Now}
}

// NormalizeDate truncates t to its UTC calendar day.
func NormalizeDate(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Upsert creates or updates the mark for (user, course, date). The date is
// normalized to a calendar day before lookup.
func (s *Service) Upsert(ctx context.Context, userID, courseID string, date time.Time, status Status) (Record, Action, error) {
	if !status.Valid() {
		return Record{}, "", ErrInvalidStatus
	}
	if date.IsZero() {
		return Record{}, "", ErrInvalidDate
	}
	if err := s.courses.Owned(ctx, userID, courseID); err != nil {
		return Record{}, "", err
	}
	return s.store.Upsert(ctx, userID, courseID, NormalizeDate(date), status)
}

// List returns the user's records for a course, date ascending.
func (s *Service) List(ctx context.Context, userID, courseID string) ([]Record, error) {
	if err := s.courses.Owned(ctx, userID, courseID); err != nil {
		return nil, err
	}
	return s.store.List(ctx, userID, courseID)
}

// Delete removes the mark for (user, course, date) and undoes its counter
// contribution. Returns the number of deleted rows.
func (s *Service) Delete(ctx context.Context, userID, courseID string, date time.Time) (int64, error) {
	if date.IsZero() {
		return 0, ErrInvalidDate
	}
	if err := s.courses.Owned(ctx, userID, courseID); err != nil {
		return 0, err
	}
	return s.store.Delete(ctx, userID, courseID, NormalizeDate(date))
}

// BatchMark applies today's marks across two course lists. Courses are
// processed independently: a failure on one is recorded in its result and the
// loop moves on.
func (s *Service) BatchMark(ctx context.Context, userID string, presentIDs, absentIDs []string) []BatchResult {
	today := NormalizeDate(s.now())
	results := make([]BatchResult, 0, len(presentIDs)+len(absentIDs))

	mark := func(courseID string, status Status) {
		res := BatchResult{CourseID: courseID, Status: status}
		if err := s.courses.Owned(ctx, userID, courseID); err != nil {
			res.Error = err.Error()
			results = append(results, res)
			return
		}
		_, action, err := s.store.Upsert(ctx, userID, courseID, today, status)
		if err != nil {
			res.Error = err.Error()
		} else {
			res.Action = action
		}
		results = append(results, res)
	}

	for _, id := range presentIDs {
		mark(id, Present)
	}
	for _, id := range absentIDs {
		mark(id, Absent)
	}
	return results
}
