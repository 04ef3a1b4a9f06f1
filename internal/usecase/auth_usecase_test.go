package usecase_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"app/internal/domain/model"
	repo "app/internal/repository"
	"app/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"golang.org/x/crypto/bcrypt"
)

type UserRepoMock struct{ mock.Mock }

func (m *UserRepoMock) FindByID(ctx context.Context, id int64) (model.User, error) {
	args := m.Called(ctx, id)
	u, _ := args.Get(0).(model.User)
	return u, args.Error(1)
}

func (m *UserRepoMock) FindByEmail(ctx context.Context, email string) (model.User, error) {
	args := m.Called(ctx, email)
	u, _ := args.Get(0).(model.User)
	return u, args.Error(1)
}

func (m *UserRepoMock) Create(ctx context.Context, u model.User) (model.User, error) {
	args := m.Called(ctx, u)
	created, _ := args.Get(0).(model.User)
	return created, args.Error(1)
}

func (m *UserRepoMock) UpdateLastLogin(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *UserRepoMock) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type stubIssuer struct{}

func (stubIssuer) Issue(userID int64, role model.Role, now time.Time) (string, time.Time, error) {
	return "test-token", now.Add(15 * time.Minute), nil
}

// テストではbcryptを最弱コストで回す
func hashPassword(t *testing.T, password string) string {
	t.Helper()
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	assert.NoError(t, err)
	return string(h)
}

func TestAuthUsecase_Register_Success(t *testing.T) {
	ctx := context.Background()
	users := new(UserRepoMock)
	uc := usecase.NewAuthUsecase(users, stubIssuer{}, bcrypt.MinCost, testLog())

	users.On("FindByEmail", mock.Anything, "taro@example.com").Return(model.User{}, repo.ErrNotFound)
	users.On("Create", mock.Anything, mock.MatchedBy(func(u model.User) bool {
		// ハッシュのみ保存。平文が入っていたら失敗させる
		return u.Email == "taro@example.com" &&
			u.PasswordHash != "password123" &&
			u.Role == model.RoleUser && u.IsActive
	})).Return(model.User{ID: 1, Email: "taro@example.com", Role: model.RoleUser}, nil)

	out, err := uc.Register(ctx, " Taro@Example.com ", "password123")
	assert.NoError(t, err)
	assert.Equal(t, int64(1), out.ID)
	assert.Equal(t, "taro@example.com", out.Email)
	users.AssertExpectations(t)
}

func TestAuthUsecase_Register_DuplicateEmail(t *testing.T) {
	ctx := context.Background()
	users := new(UserRepoMock)
	uc := usecase.NewAuthUsecase(users, stubIssuer{}, bcrypt.MinCost, testLog())

	users.On("FindByEmail", mock.Anything, "taro@example.com").Return(model.User{ID: 1}, nil)

	_, err := uc.Register(ctx, "taro@example.com", "password123")

	he, ok := usecase.AsHTTPError(err)
	assert.True(t, ok)
	assert.Equal(t, http.StatusConflict, he.Status)
	users.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestAuthUsecase_Register_Validation(t *testing.T) {
	ctx := context.Background()
	uc := usecase.NewAuthUsecase(new(UserRepoMock), stubIssuer{}, bcrypt.MinCost, testLog())

	_, err := uc.Register(ctx, "not-an-email", "password123")
	he, ok := usecase.AsHTTPError(err)
	assert.True(t, ok)
	assert.Equal(t, http.StatusBadRequest, he.Status)

	_, err = uc.Register(ctx, "taro@example.com", "short")
	he, ok = usecase.AsHTTPError(err)
	assert.True(t, ok)
	assert.Equal(t, http.StatusBadRequest, he.Status)
}

func TestAuthUsecase_Login_Success(t *testing.T) {
	ctx := context.Background()
	users := new(UserRepoMock)
	uc := usecase.NewAuthUsecase(users, stubIssuer{}, bcrypt.MinCost, testLog())

	users.On("FindByEmail", mock.Anything, "taro@example.com").Return(model.User{
		ID:           1,
		Email:        "taro@example.com",
		PasswordHash: hashPassword(t, "password123"),
		Role:         model.RoleUser,
		IsActive:     true,
	}, nil)
	users.On("UpdateLastLogin", mock.Anything, int64(1)).Return(nil)

	out, err := uc.Login(ctx, "taro@example.com", "password123")
	assert.NoError(t, err)
	assert.Equal(t, "test-token", out.AccessToken)
	assert.Equal(t, int(15*time.Minute/time.Second), out.ExpiresIn)
	assert.Equal(t, int64(1), out.User.ID)
}

// 居ないユーザーとパスワード違いは同じ401（存在の露出を防ぐ）
func TestAuthUsecase_Login_InvalidCredentials(t *testing.T) {
	ctx := context.Background()
	users := new(UserRepoMock)
	uc := usecase.NewAuthUsecase(users, stubIssuer{}, bcrypt.MinCost, testLog())

	users.On("FindByEmail", mock.Anything, "nobody@example.com").Return(model.User{}, repo.ErrNotFound)
	users.On("FindByEmail", mock.Anything, "taro@example.com").Return(model.User{
		ID:           1,
		Email:        "taro@example.com",
		PasswordHash: hashPassword(t, "password123"),
		IsActive:     true,
	}, nil)

	_, err := uc.Login(ctx, "nobody@example.com", "password123")
	he, ok := usecase.AsHTTPError(err)
	assert.True(t, ok)
	assert.Equal(t, http.StatusUnauthorized, he.Status)

	_, err = uc.Login(ctx, "taro@example.com", "wrong-password")
	he, ok = usecase.AsHTTPError(err)
	assert.True(t, ok)
	assert.Equal(t, http.StatusUnauthorized, he.Status)
}

func TestAuthUsecase_Login_InactiveUser(t *testing.T) {
	ctx := context.Background()
	users := new(UserRepoMock)
	uc := usecase.NewAuthUsecase(users, stubIssuer{}, bcrypt.MinCost, testLog())

	users.On("FindByEmail", mock.Anything, "taro@example.com").Return(model.User{
		ID:           1,
		Email:        "taro@example.com",
		PasswordHash: hashPassword(t, "password123"),
		IsActive:     false,
	}, nil)

	_, err := uc.Login(ctx, "taro@example.com", "password123")

	he, ok := usecase.AsHTTPError(err)
	assert.True(t, ok)
	assert.Equal(t, http.StatusUnauthorized, he.Status)
}
