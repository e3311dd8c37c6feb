package course

import (
	"context"
	"errors"
)

// ErrNameRequired is returned when a course is created without a name.
var ErrNameRequired = errors.New("course name required")

// Store is the persistence surface the service needs.
type Store interface {
	Insert(ctx context.Context, userID, name string) (Course, error)
	Get(ctx context.Context, id string) (Course, error)
	ListByUser(ctx context.Context, userID string) ([]Course, error)
	Delete(ctx context.Context, id string) error
}

// Service exposes course CRUD scoped to the owning user.
type Service struct {
	store Store
}

// NewService creates a service backed by a store.
func NewService(store Store) *Service {
	return &Service{store: store}
}

// Create adds a course for the user.
func (s *Service) Create(ctx context.Context, userID, name string) (Course, error) {
	if name == "" {
		return Course{}, ErrNameRequired
	}
	return s.store.Insert(ctx, userID, name)
}

// List returns the user's courses, newest first.
func (s *Service) List(ctx context.Context, userID string) ([]Course, error) {
	return s.store.ListByUser(ctx, userID)
}

// Delete removes a course after verifying ownership.
func (s *Service) Delete(ctx context.Context, userID, courseID string) error {
	c, err := s.store.Get(ctx, courseID)
	if err != nil {
		return err
	}
	if c.UserID != userID {
		return ErrNotOwned
	}
	return s.store.Delete(ctx, courseID)
}

// Owned verifies the course exists and belongs to the user.
func (s *Service) Owned(ctx context.Context, userID, courseID string) error {
	c, err := s.store.Get(ctx, courseID)
	if err != nil {
		return err
	}
	if c.UserID != userID {
		return ErrNotOwned
	}
	return nil
}
