package service_test

import (
	"context"
	"testing"
	"time"

	"taskBoard/internal/models/user"
	"taskBoard/internal/repository"
	"taskBoard/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// MockUserRepository - мок репозитория пользователей
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, u *user.User) error {
	args := m.Called(ctx, u)
	return args.Error(0)
}

func (m *MockUserRepository) GetByUsername(ctx context.Context, username string) (*user.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*user.User), args.Error(1)
}

func (m *MockUserRepository) HasAdmin(ctx context.Context) (bool, error) {
	args := m.Called(ctx)
	return args.Bool(0), args.Error(1)
}

var _ service.UserRepository = (*MockUserRepository)(nil)

func testUser(t *testing.T, username, password string) *user.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return &user.User{
		ID:           1,
		Username:     username,
		PasswordHash: string(hash),
		IsAdmin:      true,
	}
}

// TestAuthService_Login тестирует выдачу токенов
func TestAuthService_Login(t *testing.T) {
	ctx := context.Background()

	t.Run("success - returns both tokens", func(t *testing.T) {
		mockUsers := new(MockUserRepository)
		mockUsers.On("GetByUsername", mock.Anything, "admin").
			Return(testUser(t, "admin", "admin123"), nil)

		svc := service.NewAuthService(mockUsers, "test-secret", time.Hour, 24*time.Hour)
		pair, err := svc.Login(ctx, "admin", "admin123")

		require.NoError(t, err)
		assert.NotEmpty(t, pair.Access)
		assert.NotEmpty(t, pair.Refresh)
		assert.NotEqual(t, pair.Access, pair.Refresh)
	})

	t.Run("error - wrong password", func(t *testing.T) {
		mockUsers := new(MockUserRepository)
		mockUsers.On("GetByUsername", mock.Anything, "admin").
			Return(testUser(t, "admin", "admin123"), nil)

		svc := service.NewAuthService(mockUsers, "test-secret", time.Hour, 24*time.Hour)
		_, err := svc.Login(ctx, "admin", "wrong")

		busErr := asBusinessError(t, err)
		assert.Equal(t, service.CodeUnauthorized, busErr.Code)
	})

	t.Run("error - unknown user", func(t *testing.T) {
		mockUsers := new(MockUserRepository)
		mockUsers.On("GetByUsername", mock.Anything, "ghost").Return(nil, repository.ErrNotFound)

		svc := service.NewAuthService(mockUsers, "test-secret", time.Hour, 24*time.Hour)
		_, err := svc.Login(ctx, "ghost", "whatever")

		busErr := asBusinessError(t, err)
		assert.Equal(t, service.CodeUnauthorized, busErr.Code)
	})
}

// TestAuthService_Validate тестирует проверку access токена
func TestAuthService_Validate(t *testing.T) {
	ctx := context.Background()
	mockUsers := new(MockUserRepository)
	mockUsers.On("GetByUsername", mock.Anything, "admin").
		Return(testUser(t, "admin", "admin123"), nil)

	svc := service.NewAuthService(mockUsers, "test-secret", time.Hour, 24*time.Hour)
	pair, err := svc.Login(ctx, "admin", "admin123")
	require.NoError(t, err)

	t.Run("success - access token round trip", func(t *testing.T) {
		principal, err := svc.Validate(ctx, pair.Access)

		require.NoError(t, err)
		assert.Equal(t, int64(1), principal.UserID)
		assert.Equal(t, "admin", principal.Username)
	})

	t.Run("error - refresh token is not an access token", func(t *testing.T) {
		_, err := svc.Validate(ctx, pair.Refresh)

		busErr := asBusinessError(t, err)
		assert.Equal(t, service.CodeUnauthorized, busErr.Code)
	})

	t.Run("error - garbage token", func(t *testing.T) {
		_, err := svc.Validate(ctx, "not.a.token")

		busErr := asBusinessError(t, err)
		assert.Equal(t, service.CodeUnauthorized, busErr.Code)
	})

	t.Run("error - token signed with another secret", func(t *testing.T) {
		other := service.NewAuthService(mockUsers, "other-secret", time.Hour, 24*time.Hour)
		otherPair, err := other.Login(ctx, "admin", "admin123")
		require.NoError(t, err)

		_, err = svc.Validate(ctx, otherPair.Access)

		busErr := asBusinessError(t, err)
		assert.Equal(t, service.CodeUnauthorized, busErr.Code)
	})

	t.Run("error - expired token", func(t *testing.T) {
		expired := service.NewAuthService(mockUsers, "test-secret", -time.Minute, 24*time.Hour)
		expiredPair, err := expired.Login(ctx, "admin", "admin123")
		require.NoError(t, err)

		_, err = svc.Validate(ctx, expiredPair.Access)

		busErr := asBusinessError(t, err)
		assert.Equal(t, service.CodeUnauthorized, busErr.Code)
	})
}

// TestAuthService_Refresh тестирует обновление пары токенов
func TestAuthService_Refresh(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		mockUsers := new(MockUserRepository)
		mockUsers.On("GetByUsername", mock.Anything, "admin").
			Return(testUser(t, "admin", "admin123"), nil)

		svc := service.NewAuthService(mockUsers, "test-secret", time.Hour, 24*time.Hour)
		pair, err := svc.Login(ctx, "admin", "admin123")
		require.NoError(t, err)

		fresh, err := svc.Refresh(ctx, pair.Refresh)

		require.NoError(t, err)
		assert.NotEmpty(t, fresh.Access)
		assert.NotEmpty(t, fresh.Refresh)
	})

	t.Run("error - access token rejected", func(t *testing.T) {
		mockUsers := new(MockUserRepository)
		mockUsers.On("GetByUsername", mock.Anything, "admin").
			Return(testUser(t, "admin", "admin123"), nil)

		svc := service.NewAuthService(mockUsers, "test-secret", time.Hour, 24*time.Hour)
		pair, err := svc.Login(ctx, "admin", "admin123")
		require.NoError(t, err)

		_, err = svc.Refresh(ctx, pair.Access)

		busErr := asBusinessError(t, err)
		assert.Equal(t, service.CodeUnauthorized, busErr.Code)
	})

	t.Run("error - user deleted after token issued", func(t *testing.T) {
		mockUsers := new(MockUserRepository)
		mockUsers.On("GetByUsername", mock.Anything, "admin").
			Return(testUser(t, "admin", "admin123"), nil).Once()
		mockUsers.On("GetByUsername", mock.Anything, "admin").
			Return(nil, repository.ErrNotFound)

		svc := service.NewAuthService(mockUsers, "test-secret", time.Hour, 24*time.Hour)
		pair, err := svc.Login(ctx, "admin", "admin123")
		require.NoError(t, err)

		_, err = svc.Refresh(ctx, pair.Refresh)

		busErr := asBusinessError(t, err)
		assert.Equal(t, service.CodeUnauthorized, busErr.Code)
	})
}

// TestAuthService_EnsureAdmin тестирует начальное создание администратора
func TestAuthService_EnsureAdmin(t *testing.T) {
	ctx := context.Background()

	t.Run("creates admin when none exists", func(t *testing.T) {
		mockUsers := new(MockUserRepository)
		mockUsers.On("HasAdmin", mock.Anything).Return(false, nil)
		mockUsers.On("Create", mock.Anything, mock.MatchedBy(func(u *user.User) bool {
			if u.Username != "admin" || !u.IsAdmin {
				return false
			}
			return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("admin123")) == nil
		})).Return(nil)

		svc := service.NewAuthService(mockUsers, "test-secret", time.Hour, 24*time.Hour)
		err := svc.EnsureAdmin(ctx, "admin", "admin123")

		assert.NoError(t, err)
		mockUsers.AssertExpectations(t)
	})

	t.Run("skips creation when admin exists", func(t *testing.T) {
		mockUsers := new(MockUserRepository)
		mockUsers.On("HasAdmin", mock.Anything).Return(true, nil)

		svc := service.NewAuthService(mockUsers, "test-secret", time.Hour, 24*time.Hour)
		err := svc.EnsureAdmin(ctx, "admin", "admin123")

		assert.NoError(t, err)
		mockUsers.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("tolerates concurrent creation", func(t *testing.T) {
		mockUsers := new(MockUserRepository)
		mockUsers.On("HasAdmin", mock.Anything).Return(false, nil)
		mockUsers.On("Create", mock.Anything, mock.Anything).Return(repository.ErrUniqueViolation)

		svc := service.NewAuthService(mockUsers, "test-secret", time.Hour, 24*time.Hour)
		err := svc.EnsureAdmin(ctx, "admin", "admin123")

		assert.NoError(t, err)
	})
}
