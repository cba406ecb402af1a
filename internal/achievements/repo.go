package achievements

import (
	"context"

	"github.com/questlyapp/questly-backend/pkg/db/models"
	"gorm.io/gorm"
)

// Repository exposes achievement persistence operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs an achievements repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a new achievement row.
func (r *Repository) Create(ctx context.Context, achievement *models.Achievement) error {
	return r.db.WithContext(ctx).Create(achievement).Error
}

// FindByID loads an achievement by its id.
func (r *Repository) FindByID(ctx context.Context, id int64) (*models.Achievement, error) {
	var achievement models.Achievement
	if err := r.db.WithContext(ctx).First(&achievement, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &achievement, nil
}

// ListAfter returns achievements with ids greater than afterID, ordered by
// id, up to limit rows. A zero afterID starts from the beginning.
func (r *Repository) ListAfter(ctx context.Context, afterID int64, limit int) ([]models.Achievement, error) {
	var rows []models.Achievement
	q := r.db.WithContext(ctx).Order("id ASC").Limit(limit)
	if afterID > 0 {
		q = q.Where("id > ?", afterID)
	}
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// Update persists the full achievement record.
func (r *Repository) Update(ctx context.Context, achievement *models.Achievement) error {
	return r.db.WithContext(ctx).Save(achievement).Error
}

// Delete removes the achievement row with the given id.
func (r *Repository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Delete(&models.Achievement{}, "id = ?", id).Error
}
