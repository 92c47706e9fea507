// Package user defines the account principal and its persistence contract.
package user

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when no user matches the lookup.
var ErrNotFound = errors.New("user: not found")

// ErrUsernameTaken is returned when a username is already registered.
var ErrUsernameTaken = errors.New("user: username taken")

// User is an account principal. Identity is immutable after registration;
// the password hash is never serialized.
type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Username     string    `gorm:"size:150;uniqueIndex;not null" json:"username"`
	Email        string    `gorm:"size:254" json:"email"`
	PasswordHash string    `gorm:"not null" json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// Repository is the persistence contract the auth core depends on.
type Repository interface {
	// Create inserts a new user. Returns ErrUsernameTaken when the
	// username is already registered.
	Create(ctx context.Context, u *User) error

	// ByID returns the user with the given ID or ErrNotFound.
	ByID(ctx context.Context, id uint) (*User, error)

	// ByUsername returns the user with the given username or ErrNotFound.
	ByUsername(ctx context.Context, username string) (*User, error)
}
