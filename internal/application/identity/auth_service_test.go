package identity

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstock/backend/internal/domain/identity"
	"github.com/labstock/backend/internal/domain/shared"
	"github.com/labstock/backend/internal/infrastructure/auth"
	"github.com/labstock/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// MockUserRepository is a mock implementation of identity.UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.User), args.Error(1)
}

func (m *MockUserRepository) FindByUsername(ctx context.Context, username string) (*identity.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.User), args.Error(1)
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*identity.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.User), args.Error(1)
}

func (m *MockUserRepository) FindAll(ctx context.Context, filter shared.Filter) ([]identity.User, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]identity.User), args.Error(1)
}

func (m *MockUserRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockUserRepository) Save(ctx context.Context, u *identity.User) error {
	args := m.Called(ctx, u)
	return args.Error(0)
}

func newJWTService() *auth.JWTService {
	return auth.NewJWTService(config.JWTConfig{
		Secret:                "test-secret-key-for-jwt-signing-abc",
		AccessTokenExpiration: time.Hour,
		Issuer:                "labstock-test",
	})
}

func newTestUser(t *testing.T, role identity.Role) *identity.User {
	t.Helper()
	u, err := identity.NewUser("alice.w", "Alice Wong", "alice@lab.example", role, "hunter2hunter2")
	require.NoError(t, err)
	u.ClearDomainEvents()
	return u
}

func TestAuthService_Login(t *testing.T) {
	ctx := context.Background()

	t.Run("returns token and profile on success", func(t *testing.T) {
		userRepo := new(MockUserRepository)
		service := NewAuthService(userRepo, newJWTService(), zap.NewNop())

		user := newTestUser(t, identity.RoleEngineer)
		userRepo.On("FindByUsername", ctx, "alice.w").Return(user, nil)
		userRepo.On("Save", ctx, user).Return(nil)

		result, err := service.Login(ctx, LoginRequest{Username: "Alice.W", Password: "hunter2hunter2"})

		require.NoError(t, err)
		assert.NotEmpty(t, result.Token.AccessToken)
		assert.Equal(t, "alice.w", result.User.Username)
		assert.Equal(t, "engineer", result.User.Role)
		assert.ElementsMatch(t, []string{"view", "outward", "reports"}, result.User.Capabilities)
		require.NotNil(t, user.LastLoginAt)

		claims, err := newJWTService().Validate(result.Token.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, user.ID.String(), claims.UserID)
		assert.Equal(t, "engineer", claims.Role)
	})

	t.Run("wrong password and unknown user yield the same error", func(t *testing.T) {
		userRepo := new(MockUserRepository)
		service := NewAuthService(userRepo, newJWTService(), zap.NewNop())

		user := newTestUser(t, identity.RoleUser)
		userRepo.On("FindByUsername", ctx, "alice.w").Return(user, nil)
		userRepo.On("FindByUsername", ctx, "nobody").Return(nil, shared.ErrNotFound)

		_, wrongPassword := service.Login(ctx, LoginRequest{Username: "alice.w", Password: "wrong"})
		_, unknownUser := service.Login(ctx, LoginRequest{Username: "nobody", Password: "whatever"})

		var e1, e2 *shared.DomainError
		require.ErrorAs(t, wrongPassword, &e1)
		require.ErrorAs(t, unknownUser, &e2)
		assert.Equal(t, e1.Code, e2.Code)
		assert.Equal(t, "INVALID_CREDENTIALS", e1.Code)
	})

	t.Run("deactivated account cannot log in", func(t *testing.T) {
		userRepo := new(MockUserRepository)
		service := NewAuthService(userRepo, newJWTService(), zap.NewNop())

		user := newTestUser(t, identity.RoleUser)
		require.NoError(t, user.Deactivate())
		userRepo.On("FindByUsername", ctx, "alice.w").Return(user, nil)

		_, err := service.Login(ctx, LoginRequest{Username: "alice.w", Password: "hunter2hunter2"})

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "ACCOUNT_DEACTIVATED", domainErr.Code)
	})

	t.Run("explicit permissions override role capabilities in the token", func(t *testing.T) {
		userRepo := new(MockUserRepository)
		service := NewAuthService(userRepo, newJWTService(), zap.NewNop())

		user := newTestUser(t, identity.RoleResearcher)
		require.NoError(t, user.SetPermissions([]identity.Capability{identity.CapabilityView, identity.CapabilityOutward}))
		userRepo.On("FindByUsername", ctx, "alice.w").Return(user, nil)
		userRepo.On("Save", ctx, user).Return(nil)

		result, err := service.Login(ctx, LoginRequest{Username: "alice.w", Password: "hunter2hunter2"})

		require.NoError(t, err)
		assert.ElementsMatch(t, []string{"view", "outward"}, result.User.Capabilities)
	})
}

func TestAuthService_Me(t *testing.T) {
	ctx := context.Background()

	userRepo := new(MockUserRepository)
	service := NewAuthService(userRepo, newJWTService(), zap.NewNop())

	user := newTestUser(t, identity.RoleAdmin)
	userRepo.On("FindByID", ctx, user.ID).Return(user, nil)

	profile, err := service.Me(ctx, user.ID)

	require.NoError(t, err)
	assert.Equal(t, user.ID, profile.ID)
	assert.Equal(t, []string{"all"}, profile.Capabilities)
}
