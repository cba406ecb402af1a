package bookings

import (
	"context"
	"errors"
	"fmt"

	"github.com/questlyapp/questly-backend/pkg/db"
	"github.com/questlyapp/questly-backend/pkg/db/models"
	pkgerrors "github.com/questlyapp/questly-backend/pkg/errors"
	"github.com/questlyapp/questly-backend/pkg/logger"
	"gorm.io/gorm"
)

const bookingUniqueConstraint = "idx_booking_once"

type bookingRepository interface {
	Create(ctx context.Context, booking *models.AchievementBooking) error
	FindByID(ctx context.Context, id int64) (*models.AchievementBooking, error)
	FindByUserAndAchievement(ctx context.Context, userID, achievementID int64) (*models.AchievementBooking, error)
	ListForUser(ctx context.Context, userID int64) ([]models.AchievementBooking, error)
	Update(ctx context.Context, booking *models.AchievementBooking) error
}

type achievementsRepository interface {
	FindByID(ctx context.Context, id int64) (*models.Achievement, error)
}

// Service exposes achievement booking operations.
type Service interface {
	Book(ctx context.Context, userID, achievementID int64) (*BookingDTO, error)
	Complete(ctx context.Context, bookingID, actingUserID int64) (*BookingDTO, error)
	ListForUser(ctx context.Context, userID int64) ([]BookingDTO, error)
}

type service struct {
	repo         bookingRepository
	achievements achievementsRepository
	logg         *logger.Logger
}

// NewService builds a booking service with the provided repositories.
func NewService(repo bookingRepository, achievements achievementsRepository, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("booking repository required")
	}
	if achievements == nil {
		return nil, fmt.Errorf("achievements repository required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{repo: repo, achievements: achievements, logg: logg}, nil
}

func (s *service) Book(ctx context.Context, userID, achievementID int64) (*BookingDTO, error) {
	if _, err := s.achievements.FindByID(ctx, achievementID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.Newf(pkgerrors.CodeNotFound, "achievement %d not found", achievementID)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load achievement")
	}

	if _, err := s.repo.FindByUserAndAchievement(ctx, userID, achievementID); err == nil {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "achievement already booked")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup booking")
	}

	booking := &models.AchievementBooking{
		AchievementID: achievementID,
		UserID:        userID,
	}
	if err := s.repo.Create(ctx, booking); err != nil {
		if db.IsUniqueViolation(err, bookingUniqueConstraint) {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "achievement already booked")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create booking")
	}

	s.logg.Info(s.logg.WithUserID(ctx, userID), "achievement booked")
	return FromModel(booking), nil
}

func (s *service) Complete(ctx context.Context, bookingID, actingUserID int64) (*BookingDTO, error) {
	booking, err := s.repo.FindByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.Newf(pkgerrors.CodeNotFound, "booking %d not found", bookingID)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load booking")
	}

	if booking.UserID != actingUserID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only the booking owner can complete it")
	}
	if booking.Completed {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "booking already completed")
	}

	booking.Completed = true
	if err := s.repo.Update(ctx, booking); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update booking")
	}

	s.logg.Info(s.logg.WithUserID(ctx, actingUserID), "achievement completed")
	return FromModel(booking), nil
}

func (s *service) ListForUser(ctx context.Context, userID int64) ([]BookingDTO, error) {
	rows, err := s.repo.ListForUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list bookings")
	}
	dtos := make([]BookingDTO, 0, len(rows))
	for i := range rows {
		dtos = append(dtos, *FromModel(&rows[i]))
	}
	return dtos, nil
}
