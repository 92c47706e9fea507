// Package note provides the note resource: model, persistence, and the
// owner-scoped HTTP handlers.
package note

import (
	"context"

	"github.com/kbukum/notekeeper/internal/user"
)

// Note is a text note owned by exactly one user for its entire life.
// Only id and description are exposed on the wire.
type Note struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Description string    `gorm:"size:225;not null" json:"description"`
	OwnerID     uint      `gorm:"not null;index" json:"-"`
	Owner       user.User `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}

// Repository is the persistence contract for notes.
type Repository interface {
	// Create inserts a new note.
	Create(ctx context.Context, n *Note) error

	// ListByOwner returns all notes owned by the given user, in storage
	// order. No cross-owner note is ever returned.
	ListByOwner(ctx context.Context, ownerID uint) ([]Note, error)
}
