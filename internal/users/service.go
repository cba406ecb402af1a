package users

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/questlyapp/questly-backend/pkg/config"
	"github.com/questlyapp/questly-backend/pkg/db"
	"github.com/questlyapp/questly-backend/pkg/db/models"
	"github.com/questlyapp/questly-backend/pkg/enums"
	pkgerrors "github.com/questlyapp/questly-backend/pkg/errors"
	"github.com/questlyapp/questly-backend/pkg/logger"
	"github.com/questlyapp/questly-backend/pkg/security"
	"gorm.io/gorm"
)

const usernameUniqueConstraint = "users_username_key"

type userRepository interface {
	Create(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, id int64) (*models.User, error)
	FindByUsername(ctx context.Context, username string) (*models.User, error)
	ExistsByID(ctx context.Context, id int64) (bool, error)
	List(ctx context.Context) ([]models.User, error)
	Update(ctx context.Context, user *models.User) error
	Delete(ctx context.Context, id int64) error
}

type friendCounter interface {
	CountForUsers(ctx context.Context, userIDs ...int64) (map[int64]int64, error)
}

// Service exposes the user lifecycle operations.
type Service interface {
	AddUser(ctx context.Context, input CreateUserInput) (*UserDTO, error)
	GetUserByID(ctx context.Context, id int64) (*UserDTO, error)
	GetAllUsers(ctx context.Context) ([]UserDTO, error)
	UpdateUser(ctx context.Context, input CreateUserInput, actingUsername string) (*UserDTO, error)
	DeleteUserByID(ctx context.Context, id int64, actingUsername string) error
}

type service struct {
	repo        userRepository
	friends     friendCounter
	passwordCfg config.PasswordConfig
	logg        *logger.Logger
	now         func() time.Time
}

// NewService builds a user service with the provided repositories.
func NewService(repo userRepository, friends friendCounter, passwordCfg config.PasswordConfig, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("user repository required")
	}
	if friends == nil {
		return nil, fmt.Errorf("friend counter required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		repo:        repo,
		friends:     friends,
		passwordCfg: passwordCfg,
		logg:        logg,
		now:         time.Now,
	}, nil
}

func (s *service) AddUser(ctx context.Context, input CreateUserInput) (*UserDTO, error) {
	username := strings.TrimSpace(input.Username)
	if username == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "username is required")
	}
	if input.Password == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "password is required")
	}

	role := enums.RoleUser
	if input.Role != nil {
		parsed, err := enums.ParseRole(*input.Role)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "parse role")
		}
		role = parsed
	}

	if _, err := s.repo.FindByUsername(ctx, username); err == nil {
		return nil, pkgerrors.Newf(pkgerrors.CodeConflict, "user with username %q already exists", username)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup user by username")
	}

	if input.ID != nil && *input.ID != 0 {
		exists, err := s.repo.ExistsByID(ctx, *input.ID)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup user by id")
		}
		if exists {
			return nil, pkgerrors.Newf(pkgerrors.CodeConflict, "user with id %d already exists", *input.ID)
		}
	}

	birthDate, err := time.Parse(BirthDateLayout, input.BirthDate)
	if err != nil {
		return nil, pkgerrors.Newf(pkgerrors.CodeValidation, "birth date must match %s", BirthDateLayout)
	}

	hash, err := security.HashPassword(input.Password, s.passwordCfg)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}

	now := s.now()
	user := &models.User{
		Username:         username,
		PasswordHash:     hash,
		FirstName:        cloneStringPtr(input.FirstName),
		LastName:         cloneStringPtr(input.LastName),
		Email:            cloneStringPtr(input.Email),
		Bio:              cloneStringPtr(input.Bio),
		Role:             role,
		BirthDate:        birthDate,
		RegistrationDate: time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC),
	}
	if input.ID != nil {
		user.ID = *input.ID
	}

	if err := s.repo.Create(ctx, user); err != nil {
		// The pre-check races with concurrent inserts; the unique
		// constraint is the authority.
		if db.IsUniqueViolation(err, usernameUniqueConstraint) {
			return nil, pkgerrors.Newf(pkgerrors.CodeConflict, "user with username %q already exists", username)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create user")
	}

	logCtx := s.logg.WithUsername(s.logg.WithUserID(ctx, user.ID), user.Username)
	s.logg.Info(logCtx, "user created")

	return s.toDTO(ctx, user)
}

func (s *service) GetUserByID(ctx context.Context, id int64) (*UserDTO, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.Newf(pkgerrors.CodeNotFound, "user %d not found", id)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user")
	}
	return s.toDTO(ctx, user)
}

// GetAllUsers returns every account in store iteration order; callers must
// not rely on any particular ordering.
func (s *service) GetAllUsers(ctx context.Context) ([]UserDTO, error) {
	rows, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list users")
	}

	ids := make([]int64, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.ID)
	}
	counts, err := s.friends.CountForUsers(ctx, ids...)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count friends")
	}

	now := s.now()
	dtos := make([]UserDTO, 0, len(rows))
	for i := range rows {
		dtos = append(dtos, *FromModel(&rows[i], counts[rows[i].ID], now))
	}
	return dtos, nil
}

func (s *service) UpdateUser(ctx context.Context, input CreateUserInput, actingUsername string) (*UserDTO, error) {
	user, err := s.repo.FindByUsername(ctx, actingUsername)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.Newf(pkgerrors.CodeNotFound, "user %q not found", actingUsername)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user")
	}

	if requested := strings.TrimSpace(input.Username); requested != "" && requested != user.Username {
		if _, err := s.repo.FindByUsername(ctx, requested); err == nil {
			return nil, pkgerrors.Newf(pkgerrors.CodeConflict, "user with username %q already exists", requested)
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup user by username")
		}
		user.Username = requested
	}

	if input.Password != "" {
		hash, err := security.HashPassword(input.Password, s.passwordCfg)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
		}
		user.PasswordHash = hash
	}
	if input.FirstName != nil {
		user.FirstName = cloneStringPtr(input.FirstName)
	}
	if input.LastName != nil {
		user.LastName = cloneStringPtr(input.LastName)
	}
	if input.Email != nil {
		user.Email = cloneStringPtr(input.Email)
	}
	if input.Bio != nil {
		user.Bio = cloneStringPtr(input.Bio)
	}

	if err := s.repo.Update(ctx, user); err != nil {
		if db.IsUniqueViolation(err, usernameUniqueConstraint) {
			return nil, pkgerrors.Newf(pkgerrors.CodeConflict, "user with username %q already exists", user.Username)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update user")
	}

	logCtx := s.logg.WithUsername(s.logg.WithUserID(ctx, user.ID), user.Username)
	s.logg.Info(logCtx, "user updated")

	return s.toDTO(ctx, user)
}

func (s *service) DeleteUserByID(ctx context.Context, id int64, actingUsername string) error {
	target, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.Newf(pkgerrors.CodeNotFound, "user %d not found", id)
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user")
	}

	principal, err := s.repo.FindByUsername(ctx, actingUsername)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.Newf(pkgerrors.CodeNotFound, "user %q not found", actingUsername)
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load acting user")
	}

	if principal.ID != target.ID && principal.Role != enums.RoleAdmin {
		return pkgerrors.New(pkgerrors.CodeForbidden, "not allowed to delete this user")
	}

	if err := s.repo.Delete(ctx, target.ID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete user")
	}

	logCtx := s.logg.WithUsername(s.logg.WithUserID(ctx, target.ID), target.Username)
	s.logg.Info(logCtx, "user deleted")

	return nil
}

func (s *service) toDTO(ctx context.Context, user *models.User) (*UserDTO, error) {
	counts, err := s.friends.CountForUsers(ctx, user.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count friends")
	}
	return FromModel(user, counts[user.ID], s.now()), nil
}
