package bookings

import (
	"context"

	"github.com/questlyapp/questly-backend/pkg/db/models"
	"gorm.io/gorm"
)

// Repository exposes achievement booking persistence operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a bookings repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a new booking row.
func (r *Repository) Create(ctx context.Context, booking *models.AchievementBooking) error {
	return r.db.WithContext(ctx).Create(booking).Error
}

// FindByID loads a booking by its id.
func (r *Repository) FindByID(ctx context.Context, id int64) (*models.AchievementBooking, error) {
	var booking models.AchievementBooking
	if err := r.db.WithContext(ctx).First(&booking, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &booking, nil
}

// FindByUserAndAchievement retrieves the booking a user holds on an achievement.
func (r *Repository) FindByUserAndAchievement(ctx context.Context, userID, achievementID int64) (*models.AchievementBooking, error) {
	var booking models.AchievementBooking
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND achievement_id = ?", userID, achievementID).
		First(&booking).Error
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

// ListForUser returns every booking held by the user.
func (r *Repository) ListForUser(ctx context.Context, userID int64) ([]models.AchievementBooking, error) {
	var rows []models.AchievementBooking
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// Update persists the full booking record.
func (r *Repository) Update(ctx context.Context, booking *models.AchievementBooking) error {
	return r.db.WithContext(ctx).Save(booking).Error
}
