package reminder

import (
	"context"
	"errors"
	"time"
)

// ErrMessageTooLong is returned when a reminder message exceeds the limit.
var ErrMessageTooLong = errors.New("message must be 100 characters or fewer")

const maxMessageLen = 100

// Store is the persistence surface the service needs.
type Store interface {
	Upsert(ctx context.Context, userID, courseID string, date time.Time, message string) (Reminder, error)
	ListByCourse(ctx context.Context, userID, courseID string) ([]Reminder, error)
}

// Courses verifies course ownership for the calling user.
type Courses interface {
	Owned(ctx context.Context, userID, courseID string) error
}

// Service exposes reminder set/list for course owners.
type Service struct {
	store   Store
	courses Courses
}

// NewService creates a service backed by a store.
func NewService(store Store, courses Courses) *Service {
	return &Service{store: store, courses: courses}
}

// Set creates or updates the reminder for (user, course, date).
func (s *Service) Set(ctx context.Context, userID, courseID string, date time.Time, message string) (Reminder, error) {
	if len([]rune(message)) > maxMessageLen {
		return Reminder{}, ErrMessageTooLong
	}
	if err := s.courses.Owned(ctx, userID, courseID); err != nil {
		return Reminder{}, err
	}
	return s.store.Upsert(ctx, userID, courseID, date, message)
}

// List returns the user's reminders for a course, date ascending.
func (s *Service) List(ctx context.Context, userID, courseID string) ([]Reminder, error) {
	if err := s.courses.Owned(ctx, userID, courseID); err != nil {
		return nil, err
	}
	return s.store.ListByCourse(ctx, userID, courseID)
}
