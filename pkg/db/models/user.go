package models

import (
	"time"

	"github.com/questlyapp/questly-backend/pkg/enums"
)

// User represents one registered account.
type User struct {
	ID               int64      `gorm:"primaryKey;autoIncrement"`
	Username         string     `gorm:"type:text;not null;uniqueIndex"`
	PasswordHash     string     `gorm:"column:password_hash;not null"`
	FirstName        *string    `gorm:"column:first_name"`
	LastName         *string    `gorm:"column:last_name"`
	Bio              *string    `gorm:"column:bio"`
	Email            *string    `gorm:"column:email"`
	Role             enums.Role `gorm:"column:role;type:text;not null;default:'user'"`
	BirthDate        time.Time  `gorm:"column:birth_date;type:date;not null"`
	RegistrationDate time.Time  `gorm:"column:registration_date;type:date;not null"`
}
