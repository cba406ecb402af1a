package bookings

import (
	"time"

	"github.com/questlyapp/questly-backend/pkg/db/models"
)

// BookingDTO is the transport shape for an achievement booking.
type BookingDTO struct {
	ID            int64     `json:"id"`
	AchievementID int64     `json:"achievement_id"`
	UserID        int64     `json:"user_id"`
	Completed     bool      `json:"completed"`
	CreatedAt     time.Time `json:"created_at"`
}

func FromModel(b *models.AchievementBooking) *BookingDTO {
	if b == nil {
		return nil
	}
	return &BookingDTO{
		ID:            b.ID,
		AchievementID: b.AchievementID,
		UserID:        b.UserID,
		Completed:     b.Completed,
		CreatedAt:     b.CreatedAt,
	}
}
