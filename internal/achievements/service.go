package achievements

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/questlyapp/questly-backend/pkg/db/models"
	"github.com/questlyapp/questly-backend/pkg/enums"
	pkgerrors "github.com/questlyapp/questly-backend/pkg/errors"
	"github.com/questlyapp/questly-backend/pkg/logger"
	"github.com/questlyapp/questly-backend/pkg/pagination"
	"gorm.io/gorm"
)

type achievementRepository interface {
	Create(ctx context.Context, achievement *models.Achievement) error
	FindByID(ctx context.Context, id int64) (*models.Achievement, error)
	ListAfter(ctx context.Context, afterID int64, limit int) ([]models.Achievement, error)
	Update(ctx context.Context, achievement *models.Achievement) error
	Delete(ctx context.Context, id int64) error
}

// Service exposes achievement catalogue operations.
type Service interface {
	Create(ctx context.Context, authorID int64, input CreateAchievementInput) (*AchievementDTO, error)
	GetByID(ctx context.Context, id int64) (*AchievementDTO, error)
	List(ctx context.Context, params pagination.Params) (*AchievementPage, error)
	Update(ctx context.Context, id, actingUserID int64, actingRole enums.Role, input UpdateAchievementInput) (*AchievementDTO, error)
	Delete(ctx context.Context, id, actingUserID int64, actingRole enums.Role) error
}

type service struct {
	repo achievementRepository
	logg *logger.Logger
}

// NewService builds an achievement service with the provided repository.
func NewService(repo achievementRepository, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("achievement repository required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{repo: repo, logg: logg}, nil
}

func (s *service) Create(ctx context.Context, authorID int64, input CreateAchievementInput) (*AchievementDTO, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "achievement name is required")
	}

	achievement := &models.Achievement{
		Name:        name,
		Description: cloneStringPtr(input.Description),
		Image:       append([]byte(nil), input.Image...),
		AuthorID:    authorID,
	}
	if err := s.repo.Create(ctx, achievement); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create achievement")
	}

	s.logg.Info(s.logg.WithUserID(ctx, authorID), "achievement created")
	return FromModel(achievement), nil
}

func (s *service) GetByID(ctx context.Context, id int64) (*AchievementDTO, error) {
	achievement, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.Newf(pkgerrors.CodeNotFound, "achievement %d not found", id)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load achievement")
	}
	return FromModel(achievement), nil
}

func (s *service) List(ctx context.Context, params pagination.Params) (*AchievementPage, error) {
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "parse cursor")
	}

	var afterID int64
	if cursor != nil {
		afterID = cursor.ID
	}
	limit := pagination.NormalizeLimit(params.Limit)

	rows, err := s.repo.ListAfter(ctx, afterID, pagination.LimitWithBuffer(params.Limit))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list achievements")
	}

	page := &AchievementPage{Items: make([]AchievementDTO, 0, len(rows))}
	if len(rows) > limit {
		rows = rows[:limit]
		page.NextCursor = pagination.EncodeCursor(pagination.Cursor{ID: rows[len(rows)-1].ID})
	}
	for i := range rows {
		page.Items = append(page.Items, *FromModel(&rows[i]))
	}
	return page, nil
}

func (s *service) Update(ctx context.Context, id, actingUserID int64, actingRole enums.Role, input UpdateAchievementInput) (*AchievementDTO, error) {
	achievement, err := s.loadOwned(ctx, id, actingUserID, actingRole)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "achievement name is required")
		}
		achievement.Name = name
	}
	if input.Description != nil {
		achievement.Description = cloneStringPtr(input.Description)
	}
	if input.Image != nil {
		achievement.Image = append([]byte(nil), *input.Image...)
	}

	if err := s.repo.Update(ctx, achievement); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update achievement")
	}

	s.logg.Info(s.logg.WithUserID(ctx, actingUserID), "achievement updated")
	return FromModel(achievement), nil
}

func (s *service) Delete(ctx context.Context, id, actingUserID int64, actingRole enums.Role) error {
	achievement, err := s.loadOwned(ctx, id, actingUserID, actingRole)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, achievement.ID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete achievement")
	}

	s.logg.Info(s.logg.WithUserID(ctx, actingUserID), "achievement deleted")
	return nil
}

func (s *service) loadOwned(ctx context.Context, id, actingUserID int64, actingRole enums.Role) (*models.Achievement, error) {
	achievement, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.Newf(pkgerrors.CodeNotFound, "achievement %d not found", id)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load achievement")
	}
	if achievement.AuthorID != actingUserID && actingRole != enums.RoleAdmin {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only the author or an admin can modify this achievement")
	}
	return achievement, nil
}
