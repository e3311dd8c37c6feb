package user

import (
	"context"
	"errors"
	"time"
)

// ErrInvalidTimezone is returned when a timezone string fails validation.
var ErrInvalidTimezone = errors.New("invalid timezone")

// Store is the persistence surface the service needs.
type Store interface {
	Get(ctx context.Context, id string) (User, error)
	UpdateTimezone(ctx context.Context, id, timezone string) error
}

// Service exposes profile and timezone settings.
type Service struct {
	store Store
}

// NewService creates a service backed by a store.
func NewService(store Store) *Service {
	return &Service{store: store}
}

// Profile returns the user's profile.
func (s *Service) Profile(ctx context.Context, userID string) (User, error) {
	return s.store.Get(ctx, userID)
}

// Timezone returns the user's stored timezone.
func (s *Service) Timezone(ctx context.Context, userID string) (string, error) {
	u, err := s.store.Get(ctx, userID)
	if err != nil {
		return "", err
	}
	return u.Timezone, nil
}

// SetTimezone validates zone against the tz database and persists it.
func (s *Service) SetTimezone(ctx context.Context, userID, zone string) error {
	if zone == "" {
		return ErrInvalidTimezone
	}
	if _, err := time.LoadLocation(zone); err != nil {
		return ErrInvalidTimezone
	}
	return s.store.UpdateTimezone(ctx, userID, zone)
}
