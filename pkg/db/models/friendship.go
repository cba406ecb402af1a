package models

import (
	"time"

	"github.com/questlyapp/questly-backend/pkg/enums"
)

// Friendship links a sender and a recipient with a request status.
type Friendship struct {
	ID          int64                  `gorm:"primaryKey;autoIncrement"`
	Status      enums.FriendshipStatus `gorm:"column:status;type:text;not null"`
	SenderID    int64                  `gorm:"column:sender_id;not null"`
	RecipientID int64                  `gorm:"column:recipient_id;not null"`
	CreatedAt   time.Time              `gorm:"column:created_at;autoCreateTime"`
}
