package notification

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstock/backend/internal/domain/identity"
	"github.com/labstock/backend/internal/domain/notification"
	"github.com/labstock/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// MockNotificationRepository is a mock implementation of notification.NotificationRepository
type MockNotificationRepository struct {
	mock.Mock
}

func (m *MockNotificationRepository) FindByID(ctx context.Context, id uuid.UUID) (*notification.Notification, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*notification.Notification), args.Error(1)
}

func (m *MockNotificationRepository) FindVisible(ctx context.Context, userID uuid.UUID, role identity.Role, filter notification.ListFilter) ([]notification.Notification, int64, error) {
	args := m.Called(ctx, userID, role, filter)
	return args.Get(0).([]notification.Notification), args.Get(1).(int64), args.Error(2)
}

func (m *MockNotificationRepository) CountUnread(ctx context.Context, userID uuid.UUID, role identity.Role) (int64, error) {
	args := m.Called(ctx, userID, role)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockNotificationRepository) ExistsRecentForComponent(ctx context.Context, category notification.Category, componentID uuid.UUID, since time.Time) (bool, error) {
	args := m.Called(ctx, category, componentID, since)
	return args.Bool(0), args.Error(1)
}

func (m *MockNotificationRepository) Save(ctx context.Context, n *notification.Notification) error {
	args := m.Called(ctx, n)
	return args.Error(0)
}

func (m *MockNotificationRepository) DeleteExpiredBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	args := m.Called(ctx, cutoff)
	return args.Get(0).(int64), args.Error(1)
}

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

// fakeUnreadCache is an in-memory UnreadCountCache for tests
type fakeUnreadCache struct {
	mu      sync.Mutex
	counts  map[uuid.UUID]int64
	flushes int
}

func newFakeUnreadCache() *fakeUnreadCache {
	return &fakeUnreadCache{counts: make(map[uuid.UUID]int64)}
}

func (c *fakeUnreadCache) Get(_ context.Context, userID uuid.UUID) (int64, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	count, ok := c.counts[userID]
	return count, ok, nil
}

func (c *fakeUnreadCache) Set(_ context.Context, userID uuid.UUID, count int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.counts[userID] = count
	return nil
}

func (c *fakeUnreadCache) Invalidate(_ context.Context, userID uuid.UUID) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.counts, userID)
	return nil
}

func (c *fakeUnreadCache) InvalidateAll(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.counts = make(map[uuid.UUID]int64)
	c.flushes++
	return nil
}

func newTestUser(t *testing.T, role identity.Role) *identity.User {
	t.Helper()
	u, err := identity.NewUser("inbox.user", "Inbox User", "inbox@lab.example", role, "hunter2hunter2")
	require.NoError(t, err)
	u.ClearDomainEvents()
	return u
}

func newTestNotification(t *testing.T) *notification.Notification {
	t.Helper()
	n, err := notification.New(notification.TypeWarning, "Low stock: RES-0603-10K", "Only 3 left", notification.CategoryLowStock)
	require.NoError(t, err)
	return n
}

func newService(notificationRepo *MockNotificationRepository, userRepo *MockUserRepository) (*NotificationService, *fakeUnreadCache) {
	service := NewNotificationService(notificationRepo, userRepo, zap.NewNop())
	cache := newFakeUnreadCache()
	service.SetUnreadCountCache(cache)
	return service, cache
}

func TestNotificationService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("admin creates targeted notification", func(t *testing.T) {
		notificationRepo := new(MockNotificationRepository)
		userRepo := new(MockUserRepository)
		service, cache := newService(notificationRepo, userRepo)

		admin := newTestUser(t, identity.RoleAdmin)
		userRepo.On("FindByID", ctx, admin.ID).Return(admin, nil)

		var saved *notification.Notification
		notificationRepo.On("Save", ctx, mock.AnythingOfType("*notification.Notification")).
			Run(func(args mock.Arguments) { saved = args.Get(1).(*notification.Notification) }).
			Return(nil)

		resp, err := service.Create(ctx, admin.ID, CreateNotificationRequest{
			Type:        "info",
			Title:       "Lab closed Friday",
			Message:     "No stock handling during the audit",
			Category:    "system",
			TargetRoles: []string{"admin", "user"},
		})

		require.NoError(t, err)
		assert.Equal(t, "Lab closed Friday", resp.Title)
		require.NotNil(t, saved)
		assert.ElementsMatch(t, []identity.Role{identity.RoleAdmin, identity.RoleUser}, saved.TargetRoles)
		assert.Equal(t, 1, cache.flushes)
	})

	t.Run("non-admin is forbidden", func(t *testing.T) {
		notificationRepo := new(MockNotificationRepository)
		userRepo := new(MockUserRepository)
		service, _ := newService(notificationRepo, userRepo)

		user := newTestUser(t, identity.RoleUser)
		userRepo.On("FindByID", ctx, user.ID).Return(user, nil)

		_, err := service.Create(ctx, user.ID, CreateNotificationRequest{
			Type: "info", Title: "t", Message: "m", Category: "system",
			TargetRoles: []string{"user"},
		})

		assert.ErrorIs(t, err, shared.ErrForbidden)
	})

	t.Run("requires at least one target", func(t *testing.T) {
		notificationRepo := new(MockNotificationRepository)
		userRepo := new(MockUserRepository)
		service, _ := newService(notificationRepo, userRepo)

		admin := newTestUser(t, identity.RoleAdmin)
		userRepo.On("FindByID", ctx, admin.ID).Return(admin, nil)

		_, err := service.Create(ctx, admin.ID, CreateNotificationRequest{
			Type: "info", Title: "t", Message: "m", Category: "system",
		})

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVALID_INPUT", domainErr.Code)
	})
}

func TestNotificationService_UnreadCount(t *testing.T) {
	ctx := context.Background()

	t.Run("cold cache falls back to repository and warms", func(t *testing.T) {
		notificationRepo := new(MockNotificationRepository)
		userRepo := new(MockUserRepository)
		service, cache := newService(notificationRepo, userRepo)

		user := newTestUser(t, identity.RoleUser)
		userRepo.On("FindByID", ctx, user.ID).Return(user, nil)
		notificationRepo.On("CountUnread", ctx, user.ID, user.Role).Return(int64(4), nil)

		count, err := service.UnreadCount(ctx, user.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(4), count)

		// Second call is served from cache
		count, err = service.UnreadCount(ctx, user.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(4), count)
		notificationRepo.AssertNumberOfCalls(t, "CountUnread", 1)

		cached, ok, _ := cache.Get(ctx, user.ID)
		assert.True(t, ok)
		assert.Equal(t, int64(4), cached)
	})
}

func TestNotificationService_MarkRead(t *testing.T) {
	ctx := context.Background()
	now := time.Now()

	t.Run("records receipt and drops the cached counter", func(t *testing.T) {
		notificationRepo := new(MockNotificationRepository)
		userRepo := new(MockUserRepository)
		service, cache := newService(notificationRepo, userRepo)
		service.SetClock(func() time.Time { return now })

		user := newTestUser(t, identity.RoleUser)
		n := newTestNotification(t)
		n.TargetUser(user.ID)

		userRepo.On("FindByID", ctx, user.ID).Return(user, nil)
		notificationRepo.On("FindByID", ctx, n.ID).Return(n, nil)
		notificationRepo.On("Save", ctx, n).Return(nil)
		require.NoError(t, cache.Set(ctx, user.ID, 4))

		require.NoError(t, service.MarkRead(ctx, user.ID, n.ID))

		assert.True(t, n.IsReadBy(user.ID))
		_, ok, _ := cache.Get(ctx, user.ID)
		assert.False(t, ok)
	})

	t.Run("second mark is a no-op", func(t *testing.T) {
		notificationRepo := new(MockNotificationRepository)
		userRepo := new(MockUserRepository)
		service, _ := newService(notificationRepo, userRepo)
		service.SetClock(func() time.Time { return now })

		user := newTestUser(t, identity.RoleUser)
		n := newTestNotification(t)
		n.TargetUser(user.ID)
		n.MarkRead(user.ID, now)

		userRepo.On("FindByID", ctx, user.ID).Return(user, nil)
		notificationRepo.On("FindByID", ctx, n.ID).Return(n, nil)

		require.NoError(t, service.MarkRead(ctx, user.ID, n.ID))
		notificationRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("invisible notification reads as not found", func(t *testing.T) {
		notificationRepo := new(MockNotificationRepository)
		userRepo := new(MockUserRepository)
		service, _ := newService(notificationRepo, userRepo)
		service.SetClock(func() time.Time { return now })

		user := newTestUser(t, identity.RoleUser)
		n := newTestNotification(t)
		n.TargetRole(identity.RoleAdmin)

		userRepo.On("FindByID", ctx, user.ID).Return(user, nil)
		notificationRepo.On("FindByID", ctx, n.ID).Return(n, nil)

		err := service.MarkRead(ctx, user.ID, n.ID)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestNotificationService_MarkAllRead(t *testing.T) {
	ctx := context.Background()
	now := time.Now()

	notificationRepo := new(MockNotificationRepository)
	userRepo := new(MockUserRepository)
	service, cache := newService(notificationRepo, userRepo)
	service.SetClock(func() time.Time { return now })

	user := newTestUser(t, identity.RoleUser)
	first := newTestNotification(t)
	first.TargetUser(user.ID)
	second := newTestNotification(t)
	second.TargetUser(user.ID)

	userRepo.On("FindByID", ctx, user.ID).Return(user, nil)
	notificationRepo.On("FindVisible", ctx, user.ID, user.Role, mock.AnythingOfType("notification.ListFilter")).
		Return([]notification.Notification{*first, *second}, int64(2), nil).Once()
	notificationRepo.On("Save", ctx, mock.AnythingOfType("*notification.Notification")).Return(nil)
	require.NoError(t, cache.Set(ctx, user.ID, 2))

	marked, err := service.MarkAllRead(ctx, user.ID)

	require.NoError(t, err)
	assert.Equal(t, 2, marked)
	notificationRepo.AssertNumberOfCalls(t, "Save", 2)
	_, ok, _ := cache.Get(ctx, user.ID)
	assert.False(t, ok)
}

func TestNotificationService_Delete(t *testing.T) {
	ctx := context.Background()

	t.Run("targeted user can delete", func(t *testing.T) {
		notificationRepo := new(MockNotificationRepository)
		userRepo := new(MockUserRepository)
		service, _ := newService(notificationRepo, userRepo)

		user := newTestUser(t, identity.RoleUser)
		n := newTestNotification(t)
		n.TargetUser(user.ID)

		userRepo.On("FindByID", ctx, user.ID).Return(user, nil)
		notificationRepo.On("FindByID", ctx, n.ID).Return(n, nil)
		notificationRepo.On("Save", ctx, n).Return(nil)

		require.NoError(t, service.Delete(ctx, user.ID, n.ID))
		assert.False(t, n.IsActive)
	})

	t.Run("untargeted non-admin is forbidden", func(t *testing.T) {
		notificationRepo := new(MockNotificationRepository)
		userRepo := new(MockUserRepository)
		service, _ := newService(notificationRepo, userRepo)

		user := newTestUser(t, identity.RoleEngineer)
		n := newTestNotification(t)
		n.TargetRole(identity.RoleAdmin)

		userRepo.On("FindByID", ctx, user.ID).Return(user, nil)
		notificationRepo.On("FindByID", ctx, n.ID).Return(n, nil)

		err := service.Delete(ctx, user.ID, n.ID)
		assert.ErrorIs(t, err, shared.ErrForbidden)
	})

	t.Run("admin can delete anything visible or not", func(t *testing.T) {
		notificationRepo := new(MockNotificationRepository)
		userRepo := new(MockUserRepository)
		service, _ := newService(notificationRepo, userRepo)

		admin := newTestUser(t, identity.RoleAdmin)
		n := newTestNotification(t)
		n.TargetRole(identity.RoleEngineer)

		userRepo.On("FindByID", ctx, admin.ID).Return(admin, nil)
		notificationRepo.On("FindByID", ctx, n.ID).Return(n, nil)
		notificationRepo.On("Save", ctx, n).Return(nil)

		require.NoError(t, service.Delete(ctx, admin.ID, n.ID))
	})
}

func TestNotificationService_CleanupExpired(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 7, 1, 3, 0, 0, 0, time.UTC)

	notificationRepo := new(MockNotificationRepository)
	userRepo := new(MockUserRepository)
	service, _ := newService(notificationRepo, userRepo)
	service.SetClock(func() time.Time { return now })

	retention := 14 * 24 * time.Hour
	notificationRepo.On("DeleteExpiredBefore", ctx, now.Add(-retention)).Return(int64(7), nil)

	removed, err := service.CleanupExpired(ctx, retention)

	require.NoError(t, err)
	assert.Equal(t, int64(7), removed)
}
