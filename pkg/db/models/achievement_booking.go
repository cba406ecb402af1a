package models

import "time"

// AchievementBooking marks a user's commitment to an achievement.
type AchievementBooking struct {
	ID            int64     `gorm:"primaryKey;autoIncrement"`
	AchievementID int64     `gorm:"column:achievement_id;not null;uniqueIndex:idx_booking_once"`
	UserID        int64     `gorm:"column:user_id;not null;uniqueIndex:idx_booking_once"`
	Completed     bool      `gorm:"column:completed;not null;default:false"`
	CreatedAt     time.Time `gorm:"column:created_at;autoCreateTime"`
}
