package friendships

import (
	"context"
	"errors"
	"fmt"

	"github.com/questlyapp/questly-backend/pkg/db"
	"github.com/questlyapp/questly-backend/pkg/db/models"
	"github.com/questlyapp/questly-backend/pkg/enums"
	pkgerrors "github.com/questlyapp/questly-backend/pkg/errors"
	"github.com/questlyapp/questly-backend/pkg/logger"
	"gorm.io/gorm"
)

const pairUniqueConstraint = "friendships_pair_key"

type friendshipRepository interface {
	Create(ctx context.Context, friendship *models.Friendship) error
	FindByID(ctx context.Context, id int64) (*models.Friendship, error)
	FindByPair(ctx context.Context, userA, userB int64) (*models.Friendship, error)
	ListForUser(ctx context.Context, userID int64) ([]models.Friendship, error)
	Update(ctx context.Context, friendship *models.Friendship) error
}

type usersRepository interface {
	FindByID(ctx context.Context, id int64) (*models.User, error)
}

// Service exposes friendship operations.
type Service interface {
	SendRequest(ctx context.Context, senderID, recipientID int64) (*FriendshipDTO, error)
	Respond(ctx context.Context, friendshipID, actingUserID int64, accept bool) (*FriendshipDTO, error)
	ListForUser(ctx context.Context, userID int64) ([]FriendshipDTO, error)
}

type service struct {
	repo  friendshipRepository
	users usersRepository
	logg  *logger.Logger
}

// NewService builds a friendship service with the provided repositories.
func NewService(repo friendshipRepository, users usersRepository, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("friendship repository required")
	}
	if users == nil {
		return nil, fmt.Errorf("users repository required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{repo: repo, users: users, logg: logg}, nil
}

func (s *service) SendRequest(ctx context.Context, senderID, recipientID int64) (*FriendshipDTO, error) {
	if senderID == recipientID {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cannot send a friend request to yourself")
	}

	if _, err := s.users.FindByID(ctx, recipientID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.Newf(pkgerrors.CodeNotFound, "user %d not found", recipientID)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load recipient")
	}

	if _, err := s.repo.FindByPair(ctx, senderID, recipientID); err == nil {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "friendship already exists for this pair")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup friendship pair")
	}

	friendship := &models.Friendship{
		Status:      enums.FriendshipStatusPending,
		SenderID:    senderID,
		RecipientID: recipientID,
	}
	if err := s.repo.Create(ctx, friendship); err != nil {
		if db.IsUniqueViolation(err, pairUniqueConstraint) {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "friendship already exists for this pair")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create friendship")
	}

	s.logg.Info(s.logg.WithUserID(ctx, senderID), "friend request sent")
	return FromModel(friendship), nil
}

func (s *service) Respond(ctx context.Context, friendshipID, actingUserID int64, accept bool) (*FriendshipDTO, error) {
	friendship, err := s.repo.FindByID(ctx, friendshipID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.Newf(pkgerrors.CodeNotFound, "friendship %d not found", friendshipID)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load friendship")
	}

	if friendship.RecipientID != actingUserID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only the recipient can respond to a friend request")
	}
	if friendship.Status != enums.FriendshipStatusPending {
		return nil, pkgerrors.Newf(pkgerrors.CodeConflict, "friend request already %s", friendship.Status)
	}

	if accept {
		friendship.Status = enums.FriendshipStatusAccepted
	} else {
		friendship.Status = enums.FriendshipStatusDeclined
	}
	if err := s.repo.Update(ctx, friendship); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update friendship")
	}

	s.logg.Info(s.logg.WithUserID(ctx, actingUserID), "friend request "+friendship.Status.String())
	return FromModel(friendship), nil
}

func (s *service) ListForUser(ctx context.Context, userID int64) ([]FriendshipDTO, error) {
	rows, err := s.repo.ListForUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list friendships")
	}
	dtos := make([]FriendshipDTO, 0, len(rows))
	for i := range rows {
		dtos = append(dtos, *FromModel(&rows[i]))
	}
	return dtos, nil
}
