package alert

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/labstock/backend/internal/domain/component"
	"github.com/labstock/backend/internal/domain/identity"
	"github.com/labstock/backend/internal/domain/notification"
	"github.com/labstock/backend/internal/domain/shared"
	"github.com/stretchr/testify/mock"
)

// MockComponentRepository is a mock implementation of component.ComponentRepository
type MockComponentRepository struct {
	mock.Mock
}

func (m *MockComponentRepository) FindByID(ctx context.Context, id uuid.UUID) (*component.Component, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*component.Component), args.Error(1)
}

func (m *MockComponentRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*component.Component, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*component.Component), args.Error(1)
}

func (m *MockComponentRepository) FindByIDWithMovements(ctx context.Context, id uuid.UUID) (*component.Component, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*component.Component), args.Error(1)
}

func (m *MockComponentRepository) FindActiveByPartNumber(ctx context.Context, partNumber string) (*component.Component, error) {
	args := m.Called(ctx, partNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*component.Component), args.Error(1)
}

func (m *MockComponentRepository) FindAll(ctx context.Context, filter shared.Filter) ([]component.Component, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]component.Component), args.Error(1)
}

func (m *MockComponentRepository) FindAllActive(ctx context.Context) ([]component.Component, error) {
	args := m.Called(ctx)
	return args.Get(0).([]component.Component), args.Error(1)
}

func (m *MockComponentRepository) FindLowStock(ctx context.Context) ([]component.Component, error) {
	args := m.Called(ctx)
	return args.Get(0).([]component.Component), args.Error(1)
}

func (m *MockComponentRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockComponentRepository) Save(ctx context.Context, c *component.Component) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

// MockMovementRepository is a mock implementation of component.MovementRepository
type MockMovementRepository struct {
	mock.Mock
}

func (m *MockMovementRepository) Append(ctx context.Context, movement *component.Movement) error {
	args := m.Called(ctx, movement)
	return args.Error(0)
}

func (m *MockMovementRepository) FindByComponent(ctx context.Context, componentID uuid.UUID, filter shared.Filter) ([]component.Movement, error) {
	args := m.Called(ctx, componentID, filter)
	return args.Get(0).([]component.Movement), args.Error(1)
}

func (m *MockMovementRepository) FindLastOutward(ctx context.Context, componentID uuid.UUID) (*component.Movement, error) {
	args := m.Called(ctx, componentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*component.Movement), args.Error(1)
}

func (m *MockMovementRepository) CountByComponent(ctx context.Context, componentID uuid.UUID) (int64, error) {
	args := m.Called(ctx, componentID)
	return args.Get(0).(int64), args.Error(1)
}

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
