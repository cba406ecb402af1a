package friendships

import (
	"time"

	"github.com/questlyapp/questly-backend/pkg/db/models"
)

// FriendshipDTO is the transport shape for a friendship record.
type FriendshipDTO struct {
	ID          int64     `json:"id"`
	Status      string    `json:"status"`
	SenderID    int64     `json:"sender_id"`
	RecipientID int64     `json:"recipient_id"`
	CreatedAt   time.Time `json:"created_at"`
}

func FromModel(f *models.Friendship) *FriendshipDTO {
	if f == nil {
		return nil
	}
	return &FriendshipDTO{
		ID:          f.ID,
		Status:      f.Status.String(),
		SenderID:    f.SenderID,
		RecipientID: f.RecipientID,
		CreatedAt:   f.CreatedAt,
	}
}
