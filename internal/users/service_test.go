package users

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/questlyapp/questly-backend/pkg/config"
	"github.com/questlyapp/questly-backend/pkg/db/models"
	"github.com/questlyapp/questly-backend/pkg/enums"
	pkgerrors "github.com/questlyapp/questly-backend/pkg/errors"
	"github.com/questlyapp/questly-backend/pkg/logger"
	"github.com/questlyapp/questly-backend/pkg/security"
	"gorm.io/gorm"
)

type stubUserRepo struct {
	users  []*models.User
	nextID int64
	err    error
}

func (s *stubUserRepo) Create(_ context.Context, user *models.User) error {
	if s.err != nil {
		return s.err
	}
	if user.ID == 0 {
		s.nextID++
		user.ID = s.nextID
	}
	cpy := *user
	s.users = append(s.users, &cpy)
	return nil
}

func (s *stubUserRepo) FindByID(_ context.Context, id int64) (*models.User, error) {
	if s.err != nil {
		return nil, s.err
	}
	for _, u := range s.users {
		if u.ID == id {
			cpy := *u
			return &cpy, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubUserRepo) FindByUsername(_ context.Context, username string) (*models.User, error) {
	if s.err != nil {
		return nil, s.err
	}
	for _, u := range s.users {
		if u.Username == username {
			cpy := *u
			return &cpy, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubUserRepo) ExistsByID(ctx context.Context, id int64) (bool, error) {
	if s.err != nil {
		return false, s.err
	}
	_, err := s.FindByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	return err == nil, err
}

func (s *stubUserRepo) List(_ context.Context) ([]models.User, error) {
	if s.err != nil {
		return nil, s.err
	}
	rows := make([]models.User, 0, len(s.users))
	for _, u := range s.users {
		rows = append(rows, *u)
	}
	return rows, nil
}

func (s *stubUserRepo) Update(_ context.Context, user *models.User) error {
	if s.err != nil {
		return s.err
	}
	for i, u := range s.users {
		if u.ID == user.ID {
			cpy := *user
			s.users[i] = &cpy
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (s *stubUserRepo) Delete(_ context.Context, id int64) error {
	if s.err != nil {
		return s.err
	}
	for i, u := range s.users {
		if u.ID == id {
			s.users = append(s.users[:i], s.users[i+1:]...)
			return nil
		}
	}
	return nil
}

type stubFriendCounter struct {
	counts map[int64]int64
	err    error
}

func (s stubFriendCounter) CountForUsers(_ context.Context, userIDs ...int64) (map[int64]int64, error) {
	if s.err != nil {
		return nil, s.err
	}
	res := make(map[int64]int64, len(userIDs))
	for _, id := range userIDs {
		res[id] = s.counts[id]
	}
	return res, nil
}

var testNow = time.Date(2025, time.June, 15, 12, 0, 0, 0, time.UTC)

func testPasswordCfg() config.PasswordConfig {
	return config.PasswordConfig{
		ArgonMemoryKB:    8 * 1024,
		ArgonTime:        1,
		ArgonParallelism: 1,
		ArgonSaltLen:     16,
		ArgonKeyLen:      32,
	}
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
}

func newTestService(t *testing.T, repo *stubUserRepo, friends friendCounter) *service {
	t.Helper()
	svc, err := NewService(repo, friends, testPasswordCfg(), testLogger())
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	impl := svc.(*service)
	impl.now = func() time.Time { return testNow }
	return impl
}

func seedUser(t *testing.T, repo *stubUserRepo, username string, role enums.Role) *models.User {
	t.Helper()
	user := &models.User{
		Username:         username,
		PasswordHash:     "hash",
		Role:             role,
		BirthDate:        time.Date(1990, time.March, 20, 0, 0, 0, 0, time.UTC),
		RegistrationDate: time.Date(2024, time.January, 2, 0, 0, 0, 0, time.UTC),
	}
	if err := repo.Create(context.Background(), user); err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return user
}

func TestNewServiceRequiresRepo(t *testing.T) {
	_, err := NewService(nil, stubFriendCounter{}, testPasswordCfg(), testLogger())
	if err == nil {
		t.Fatal("expected error creating service without repo")
	}
}

func TestAddUserSuccess(t *testing.T) {
	repo := &stubUserRepo{}
	svc := newTestService(t, repo, stubFriendCounter{})

	first := "Ada"
	dto, err := svc.AddUser(context.Background(), CreateUserInput{
		Username:  "ada",
		Password:  "s3cret",
		FirstName: &first,
		BirthDate: "1990-03-20",
	})
	if err != nil {
		t.Fatalf("add user: %v", err)
	}
	if dto.ID == 0 {
		t.Fatal("expected assigned id")
	}
	if dto.Username != "ada" {
		t.Fatalf("expected username ada got %s", dto.Username)
	}
	if dto.Role != enums.RoleUser.String() {
		t.Fatalf("expected default role user got %s", dto.Role)
	}
	if dto.RegistrationDate != "2025-06-15" {
		t.Fatalf("expected registration date of today, got %s", dto.RegistrationDate)
	}
	if dto.Age != 35 {
		t.Fatalf("expected age 35 got %d", dto.Age)
	}

	stored, err := repo.FindByUsername(context.Background(), "ada")
	if err != nil {
		t.Fatalf("find stored user: %v", err)
	}
	if stored.PasswordHash == "s3cret" || stored.PasswordHash == "" {
		t.Fatal("expected password to be hashed")
	}
	ok, err := security.VerifyPassword("s3cret", stored.PasswordHash)
	if err != nil || !ok {
		t.Fatalf("expected stored hash to verify, ok=%v err=%v", ok, err)
	}
}

func TestAddUserUsernameConflict(t *testing.T) {
	repo := &stubUserRepo{}
	seedUser(t, repo, "ada", enums.RoleUser)
	svc := newTestService(t, repo, stubFriendCounter{})

	_, err := svc.AddUser(context.Background(), CreateUserInput{
		Username:  "ada",
		Password:  "pw",
		BirthDate: "1990-03-20",
	})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestAddUserExplicitIDConflict(t *testing.T) {
	repo := &stubUserRepo{}
	existing := seedUser(t, repo, "ada", enums.RoleUser)
	svc := newTestService(t, repo, stubFriendCounter{})

	_, err := svc.AddUser(context.Background(), CreateUserInput{
		ID:        &existing.ID,
		Username:  "grace",
		Password:  "pw",
		BirthDate: "1990-03-20",
	})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestAddUserUsernameConflictCheckedBeforeBirthDate(t *testing.T) {
	repo := &stubUserRepo{}
	seedUser(t, repo, "ada", enums.RoleUser)
	svc := newTestService(t, repo, stubFriendCounter{})

	// Both problems present; the username conflict must win.
	_, err := svc.AddUser(context.Background(), CreateUserInput{
		Username:  "ada",
		Password:  "pw",
		BirthDate: "20-03-1990",
	})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestAddUserRejectsMalformedBirthDate(t *testing.T) {
	repo := &stubUserRepo{}
	svc := newTestService(t, repo, stubFriendCounter{})

	for _, raw := range []string{"", "20-03-1990", "1990/03/20", "not-a-date"} {
		_, err := svc.AddUser(context.Background(), CreateUserInput{
			Username:  "ada",
			Password:  "pw",
			BirthDate: raw,
		})
		if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
			t.Fatalf("birth date %q: expected validation error, got %v", raw, err)
		}
	}
	if len(repo.users) != 0 {
		t.Fatalf("expected no user persisted, got %d", len(repo.users))
	}
}

func TestAddUserRejectsUnknownRole(t *testing.T) {
	repo := &stubUserRepo{}
	svc := newTestService(t, repo, stubFriendCounter{})

	role := "superuser"
	_, err := svc.AddUser(context.Background(), CreateUserInput{
		Username:  "ada",
		Password:  "pw",
		Role:      &role,
		BirthDate: "1990-03-20",
	})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestGetUserByIDSuccess(t *testing.T) {
	repo := &stubUserRepo{}
	user := seedUser(t, repo, "ada", enums.RoleUser)
	svc := newTestService(t, repo, stubFriendCounter{counts: map[int64]int64{user.ID: 3}})

	dto, err := svc.GetUserByID(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("get user: %v", err)
	}
	if dto.Username != "ada" {
		t.Fatalf("expected username ada got %s", dto.Username)
	}
	if dto.FriendsCount != 3 {
		t.Fatalf("expected 3 friends got %d", dto.FriendsCount)
	}
	if dto.Age != 35 {
		t.Fatalf("expected age 35 got %d", dto.Age)
	}
}

func TestGetUserByIDNotFound(t *testing.T) {
	repo := &stubUserRepo{}
	svc := newTestService(t, repo, stubFriendCounter{})

	_, err := svc.GetUserByID(context.Background(), 42)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestGetUserByIDDependencyError(t *testing.T) {
	repo := &stubUserRepo{err: errors.New("boom")}
	svc := newTestService(t, repo, stubFriendCounter{})

	_, err := svc.GetUserByID(context.Background(), 42)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeDependency {
		t.Fatalf("expected dependency error, got %v", err)
	}
}

func TestGetAllUsers(t *testing.T) {
	repo := &stubUserRepo{}
	a := seedUser(t, repo, "ada", enums.RoleUser)
	b := seedUser(t, repo, "grace", enums.RoleAdmin)
	svc := newTestService(t, repo, stubFriendCounter{counts: map[int64]int64{a.ID: 1, b.ID: 0}})

	dtos, err := svc.GetAllUsers(context.Background())
	if err != nil {
		t.Fatalf("get all users: %v", err)
	}
	if len(dtos) != 2 {
		t.Fatalf("expected 2 users got %d", len(dtos))
	}
	byName := make(map[string]UserDTO, len(dtos))
	for _, dto := range dtos {
		byName[dto.Username] = dto
	}
	if byName["ada"].FriendsCount != 1 {
		t.Fatalf("expected ada to have 1 friend, got %d", byName["ada"].FriendsCount)
	}
	if byName["grace"].Role != enums.RoleAdmin.String() {
		t.Fatalf("expected grace to be admin, got %s", byName["grace"].Role)
	}
}

func TestGetAllUsersEmpty(t *testing.T) {
	repo := &stubUserRepo{}
	svc := newTestService(t, repo, stubFriendCounter{})

	dtos, err := svc.GetAllUsers(context.Background())
	if err != nil {
		t.Fatalf("get all users: %v", err)
	}
	if len(dtos) != 0 {
		t.Fatalf("expected empty slice got %d", len(dtos))
	}
}

func TestUpdateUserAppliesFields(t *testing.T) {
	repo := &stubUserRepo{}
	user := seedUser(t, repo, "ada", enums.RoleUser)
	svc := newTestService(t, repo, stubFriendCounter{})

	bio := "mathematician"
	email := "ada@example.com"
	dto, err := svc.UpdateUser(context.Background(), CreateUserInput{
		Username: "countess",
		Password: "newpw",
		Bio:      &bio,
		Email:    &email,
	}, "ada")
	if err != nil {
		t.Fatalf("update user: %v", err)
	}
	if dto.Username != "countess" {
		t.Fatalf("expected renamed user, got %s", dto.Username)
	}
	if dto.Bio == nil || *dto.Bio != bio {
		t.Fatalf("expected bio %q got %v", bio, dto.Bio)
	}

	stored, err := repo.FindByID(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("find stored user: %v", err)
	}
	if ok, err := security.VerifyPassword("newpw", stored.PasswordHash); err != nil || !ok {
		t.Fatalf("expected password re-hashed, ok=%v err=%v", ok, err)
	}
	if !stored.BirthDate.Equal(user.BirthDate) {
		t.Fatal("birth date must be immutable on update")
	}
	if !stored.RegistrationDate.Equal(user.RegistrationDate) {
		t.Fatal("registration date must be immutable on update")
	}
	if stored.Role != user.Role {
		t.Fatal("role must be immutable on update")
	}
}

func TestUpdateUserKeepingOwnUsername(t *testing.T) {
	repo := &stubUserRepo{}
	seedUser(t, repo, "ada", enums.RoleUser)
	svc := newTestService(t, repo, stubFriendCounter{})

	// Re-submitting the current username is not a conflict.
	dto, err := svc.UpdateUser(context.Background(), CreateUserInput{Username: "ada"}, "ada")
	if err != nil {
		t.Fatalf("update user: %v", err)
	}
	if dto.Username != "ada" {
		t.Fatalf("expected username unchanged, got %s", dto.Username)
	}
}

func TestUpdateUserUsernameConflict(t *testing.T) {
	repo := &stubUserRepo{}
	seedUser(t, repo, "ada", enums.RoleUser)
	seedUser(t, repo, "grace", enums.RoleUser)
	svc := newTestService(t, repo, stubFriendCounter{})

	_, err := svc.UpdateUser(context.Background(), CreateUserInput{Username: "grace"}, "ada")
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestUpdateUserActingUsernameNotFound(t *testing.T) {
	repo := &stubUserRepo{}
	svc := newTestService(t, repo, stubFriendCounter{})

	_, err := svc.UpdateUser(context.Background(), CreateUserInput{Username: "x"}, "ghost")
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestDeleteUserByIDAsOwner(t *testing.T) {
	repo := &stubUserRepo{}
	user := seedUser(t, repo, "ada", enums.RoleUser)
	svc := newTestService(t, repo, stubFriendCounter{})

	if err := svc.DeleteUserByID(context.Background(), user.ID, "ada"); err != nil {
		t.Fatalf("delete user: %v", err)
	}
	if _, err := repo.FindByID(context.Background(), user.ID); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("expected user removed, got %v", err)
	}
}

func TestDeleteUserByIDAsAdmin(t *testing.T) {
	repo := &stubUserRepo{}
	target := seedUser(t, repo, "ada", enums.RoleUser)
	seedUser(t, repo, "root", enums.RoleAdmin)
	svc := newTestService(t, repo, stubFriendCounter{})

	if err := svc.DeleteUserByID(context.Background(), target.ID, "root"); err != nil {
		t.Fatalf("delete user: %v", err)
	}
}

func TestDeleteUserByIDForbiddenForOtherUser(t *testing.T) {
	repo := &stubUserRepo{}
	target := seedUser(t, repo, "ada", enums.RoleUser)
	seedUser(t, repo, "grace", enums.RoleUser)
	svc := newTestService(t, repo, stubFriendCounter{})

	err := svc.DeleteUserByID(context.Background(), target.ID, "grace")
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden, got %v", err)
	}
	if _, findErr := repo.FindByID(context.Background(), target.ID); findErr != nil {
		t.Fatalf("expected target untouched, got %v", findErr)
	}
}

func TestDeleteUserByIDTargetNotFound(t *testing.T) {
	repo := &stubUserRepo{}
	seedUser(t, repo, "ada", enums.RoleUser)
	svc := newTestService(t, repo, stubFriendCounter{})

	err := svc.DeleteUserByID(context.Background(), 99, "ada")
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestCalculateAge(t *testing.T) {
	birth := time.Date(1990, time.March, 20, 0, 0, 0, 0, time.UTC)
	cases := []struct {
		now  time.Time
		want int
	}{
		{time.Date(2025, time.March, 19, 0, 0, 0, 0, time.UTC), 34},
		{time.Date(2025, time.March, 20, 0, 0, 0, 0, time.UTC), 35},
		{time.Date(2025, time.June, 15, 0, 0, 0, 0, time.UTC), 35},
		{time.Date(1989, time.January, 1, 0, 0, 0, 0, time.UTC), 0},
	}
	for _, tc := range cases {
		if got := CalculateAge(birth, tc.now); got != tc.want {
			t.Fatalf("age at %s: expected %d got %d", tc.now.Format(BirthDateLayout), tc.want, got)
		}
	}
}
