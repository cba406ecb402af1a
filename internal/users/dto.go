package users

import (
	"time"

	"github.com/questlyapp/questly-backend/pkg/db/models"
)

// BirthDateLayout is the only accepted textual format for birth dates.
const BirthDateLayout = "2006-01-02"

// UserDTO is the transport shape that omits the password hash.
type UserDTO struct {
	ID               int64   `json:"id"`
	Username         string  `json:"username"`
	FirstName        *string `json:"first_name,omitempty"`
	LastName         *string `json:"last_name,omitempty"`
	Email            *string `json:"email,omitempty"`
	Bio              *string `json:"bio,omitempty"`
	Role             string  `json:"role"`
	BirthDate        string  `json:"birth_date"`
	RegistrationDate string  `json:"registration_date"`
	Age              int     `json:"age"`
	FriendsCount     int64   `json:"friends_count"`
}

// CreateUserInput carries the client-supplied user fields. It serves both
// creation and profile updates; optional fields stay nil when omitted.
type CreateUserInput struct {
	ID        *int64
	Username  string
	Password  string
	FirstName *string
	LastName  *string
	Email     *string
	Bio       *string
	Role      *string
	BirthDate string
}

// FromModel maps a persisted user onto the transport DTO.
func FromModel(u *models.User, friendsCount int64, now time.Time) *UserDTO {
	if u == nil {
		return nil
	}

	return &UserDTO{
		ID:               u.ID,
		Username:         u.Username,
		FirstName:        cloneStringPtr(u.FirstName),
		LastName:         cloneStringPtr(u.LastName),
		Email:            cloneStringPtr(u.Email),
		Bio:              cloneStringPtr(u.Bio),
		Role:             u.Role.String(),
		BirthDate:        u.BirthDate.Format(BirthDateLayout),
		RegistrationDate: u.RegistrationDate.Format(BirthDateLayout),
		Age:              CalculateAge(u.BirthDate, now),
		FriendsCount:     friendsCount,
	}
}

// CalculateAge returns full years elapsed between birth date and now.
func CalculateAge(birthDate, now time.Time) int {
	years := now.Year() - birthDate.Year()
	anniversary := birthDate.AddDate(years, 0, 0)
	if anniversary.After(now) {
		years--
	}
	if years < 0 {
		return 0
	}
	return years
}

func cloneStringPtr(value *string) *string {
	if value == nil {
		return nil
	}
	cpy := *value
	return &cpy
}
