package model

import (
	"time"

	"github.com/google/uuid"

	pkgerrors "blogstore/pkg/errors"
)

// User is the canonical user entity stored in the users view.
type User struct {
	ID        string
	Name      string
	Email     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// UserByEmail is the reverse-lookup view keyed by email. It carries a
// denormalized copy of the user's id and name so email lookups never have
// to touch the users view.
type UserByEmail struct {
	Email     string
	UserID    string
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewUser creates a user with a fresh identity.
func NewUser(name, email string) (*User, error) {
	if name == "" {
		return nil, pkgerrors.NewValidationError("name cannot be empty")
	}
	if email == "" {
		return nil, pkgerrors.NewValidationError("email cannot be empty")
	}

	now := time.Now().UTC()
	return &User{
		ID:        uuid.New().String(),
		Name:      name,
		Email:     email,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// ApplyUpdate merges the non-nil fields and bumps UpdatedAt.
func (u *User) ApplyUpdate(name, email *string) {
	if name != nil {
		u.Name = *name
	}
	if email != nil {
		u.Email = *email
	}
	u.UpdatedAt = time.Now().UTC()
}

// EmailRow derives the users_by_email row for the user's current state.
func (u *User) EmailRow() *UserByEmail {
	return &UserByEmail{
		Email:     u.Email,
		UserID:    u.ID,
		Name:      u.Name,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}
