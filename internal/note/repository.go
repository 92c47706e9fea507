package note

import (
	"context"

	"gorm.io/gorm"
)

// GormRepository implements Repository on a GORM database.
type GormRepository struct {
	db *gorm.DB
}

// NewGormRepository creates a GORM-backed note repository.
func NewGormRepository(db *gorm.DB) *GormRepository {
	return &GormRepository{db: db}
}

func (r *GormRepository) Create(ctx context.Context, n *Note) error {
	return r.db.WithContext(ctx).Create(n).Error
}

func (r *GormRepository) ListByOwner(ctx context.Context, ownerID uint) ([]Note, error) {
	notes := make([]Note, 0)
	err := r.db.WithContext(ctx).Where("owner_id = ?", ownerID).Find(&notes).Error
	if err != nil {
		return nil, err
	}
	return notes, nil
}
