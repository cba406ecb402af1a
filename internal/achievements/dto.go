package achievements

import (
	"github.com/questlyapp/questly-backend/pkg/db/models"
)

// AchievementDTO is the transport shape for an achievement.
type AchievementDTO struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Description *string `json:"description,omitempty"`
	Image       []byte  `json:"image,omitempty"`
	AuthorID    int64   `json:"author_id"`
}

// AchievementPage is one cursor page of achievements.
type AchievementPage struct {
	Items      []AchievementDTO `json:"items"`
	NextCursor string           `json:"next_cursor,omitempty"`
}

// CreateAchievementInput carries the client-supplied achievement fields.
type CreateAchievementInput struct {
	Name        string
	Description *string
	Image       []byte
}

// UpdateAchievementInput captures the allowed mutation fields.
type UpdateAchievementInput struct {
	Name        *string
	Description *string
	Image       *[]byte
}

func FromModel(a *models.Achievement) *AchievementDTO {
	if a == nil {
		return nil
	}
	return &AchievementDTO{
		ID:          a.ID,
		Name:        a.Name,
		Description: cloneStringPtr(a.Description),
		Image:       append([]byte(nil), a.Image...),
		AuthorID:    a.AuthorID,
	}
}

func cloneStringPtr(value *string) *string {
	if value == nil {
		return nil
	}
	cpy := *value
	return &cpy
}
