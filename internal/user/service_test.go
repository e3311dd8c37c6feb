package user

import (
	"context"
	"errors"
	"testing"
)

type fakeStore struct {
	users map[string]User
}

func (f *fakeStore) Get(_ context.Context, id string) (User, error) {
	u, ok := f.users[id]
	if !ok {
		return User{}, ErrNotFound
	}
	return u, nil
}

func (f *fakeStore) UpdateTimezone(_ context.Context, id, timezone string) error {
	u, ok := f.users[id]
	if !ok {
		return ErrNotFound
	}
	u.Timezone = timezone
	f.users[id] = u
	return nil
}

func TestSetTimezone(t *testing.T) {
	store := &fakeStore{users: map[string]User{
		"u1": {ID: "u1", Timezone: "Asia/Kolkata"},
	}}
	svc := NewService(store)
	ctx := context.Background()

	if err := svc.SetTimezone(ctx, "u1", "America/New_York"); err != nil {
		t.Fatal(err)
	}
	zone, err := svc.Timezone(ctx, "u1")
	if err != nil {
		t.Fatal(err)
	}
	if zone != "America/New_York" {
		t.Fatalf("timezone = %q", zone)
	}
}

func TestSetTimezoneRejectsInvalid(t *testing.T) {
	svc := NewService(&fakeStore{users: map[string]User{"u1": {ID: "u1"}}})
	ctx := context.Background()

	for _, zone := range []string{"", "Not/AZone", "EST5EDTXX"} {
		if err := svc.SetTimezone(ctx, "u1", zone); !errors.Is(err, ErrInvalidTimezone) {
			t.Errorf("SetTimezone(%q) = %v, want ErrInvalidTimezone", zone, err)
		}
	}
}

func TestSetTimezoneUnknownUser(t *testing.T) {
	svc := NewService(&fakeStore{users: map[string]User{}})
	if err := svc.SetTimezone(context.Background(), "ghost", "Europe/Berlin"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}
