package component

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/labstock/backend/internal/domain/component"
	"github.com/labstock/backend/internal/domain/identity"
	"github.com/labstock/backend/internal/domain/shared"
	"github.com/stretchr/testify/mock"
)

// MockEventPublisher is a mock implementation of shared.EventPublisher
type MockEventPublisher struct {
	mu     sync.Mutex
	events []shared.DomainEvent
}

func NewMockEventPublisher() *MockEventPublisher {
	return &MockEventPublisher{
		events: make([]shared.DomainEvent, 0),
	}
}

func (m *MockEventPublisher) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, events...)
	return nil
}

func (m *MockEventPublisher) GetEvents() []shared.DomainEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]shared.DomainEvent, len(m.events))
	copy(result, m.events)
	return result
}

func (m *MockEventPublisher) GetEventsByType(eventType string) []shared.DomainEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]shared.DomainEvent, 0)
	for _, e := range m.events {
		if e.EventType() == eventType {
			result = append(result, e)
		}
	}
	return result
}

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
