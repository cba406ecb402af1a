package friendships

import (
	"context"

	"github.com/questlyapp/questly-backend/pkg/db/models"
	"github.com/questlyapp/questly-backend/pkg/enums"
	"gorm.io/gorm"
)

// Repository exposes friendship persistence operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a friendships repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a new friendship row.
func (r *Repository) Create(ctx context.Context, friendship *models.Friendship) error {
	return r.db.WithContext(ctx).Create(friendship).Error
}

// FindByID loads a friendship by its id.
func (r *Repository) FindByID(ctx context.Context, id int64) (*models.Friendship, error) {
	var friendship models.Friendship
	if err := r.db.WithContext(ctx).First(&friendship, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &friendship, nil
}

// FindByPair retrieves the friendship between two users regardless of which
// side sent the request.
func (r *Repository) FindByPair(ctx context.Context, userA, userB int64) (*models.Friendship, error) {
	var friendship models.Friendship
	err := r.db.WithContext(ctx).
		Where("(sender_id = ? AND recipient_id = ?) OR (sender_id = ? AND recipient_id = ?)",
			userA, userB, userB, userA).
		First(&friendship).Error
	if err != nil {
		return nil, err
	}
	return &friendship, nil
}

// ListForUser returns every friendship the user participates in.
func (r *Repository) ListForUser(ctx context.Context, userID int64) ([]models.Friendship, error) {
	var rows []models.Friendship
	err := r.db.WithContext(ctx).
		Where("sender_id = ? OR recipient_id = ?", userID, userID).
		Order("id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// Update persists the full friendship record.
func (r *Repository) Update(ctx context.Context, friendship *models.Friendship) error {
	return r.db.WithContext(ctx).Save(friendship).Error
}

// CountForUsers returns the number of accepted friendships per user id.
// Users with no friendships are absent from the result map.
func (r *Repository) CountForUsers(ctx context.Context, userIDs ...int64) (map[int64]int64, error) {
	counts := make(map[int64]int64, len(userIDs))
	if len(userIDs) == 0 {
		return counts, nil
	}

	var rows []models.Friendship
	err := r.db.WithContext(ctx).
		Where("status = ?", enums.FriendshipStatusAccepted).
		Where("sender_id IN ? OR recipient_id IN ?", userIDs, userIDs).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	wanted := make(map[int64]struct{}, len(userIDs))
	for _, id := range userIDs {
		wanted[id] = struct{}{}
	}
	for _, row := range rows {
		if _, ok := wanted[row.SenderID]; ok {
			counts[row.SenderID]++
		}
		if _, ok := wanted[row.RecipientID]; ok {
			counts[row.RecipientID]++
		}
	}
	return counts, nil
}
