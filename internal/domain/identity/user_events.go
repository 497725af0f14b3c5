package identity

import (
	"github.com/google/uuid"
	"github.com/labstock/backend/internal/domain/shared"
)

// Aggregate type constant
const AggregateTypeUser = "User"

// Event type constants
const (
	EventTypeUserCreated     = "UserCreated"
	EventTypeUserLoggedIn    = "UserLoggedIn"
	EventTypeUserDeactivated = "UserDeactivated"
)

// UserCreatedEvent is raised when a new user is registered
type UserCreatedEvent struct {
	shared.BaseDomainEvent
	UserID   uuid.UUID `json:"user_id"`
	Username string    `json:"username"`
	Role     Role      `json:"role"`
}

// NewUserCreatedEvent creates a new UserCreatedEvent
func NewUserCreatedEvent(u *User) *UserCreatedEvent {
	return &UserCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeUserCreated, AggregateTypeUser, u.ID),
		UserID:          u.ID,
		Username:        u.Username,
		Role:            u.Role,
	}
}

// EventType returns the event type name
func (e *UserCreatedEvent) EventType() string {
	return EventTypeUserCreated
}

// UserLoggedInEvent is raised on successful login
type UserLoggedInEvent struct {
	shared.BaseDomainEvent
	UserID   uuid.UUID `json:"user_id"`
	Username string    `json:"username"`
}

// NewUserLoggedInEvent creates a new UserLoggedInEvent
func NewUserLoggedInEvent(u *User) *UserLoggedInEvent {
	return &UserLoggedInEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeUserLoggedIn, AggregateTypeUser, u.ID),
		UserID:          u.ID,
		Username:        u.Username,
	}
}

// EventType returns the event type name
func (e *UserLoggedInEvent) EventType() string {
	return EventTypeUserLoggedIn
}

// UserDeactivatedEvent is raised when a user is soft-deleted
type UserDeactivatedEvent struct {
	shared.BaseDomainEvent
	UserID   uuid.UUID `json:"user_id"`
	Username string    `json:"username"`
}

// NewUserDeactivatedEvent creates a new UserDeactivatedEvent
func NewUserDeactivatedEvent(u *User) *UserDeactivatedEvent {
	return &UserDeactivatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeUserDeactivated, AggregateTypeUser, u.ID),
		UserID:          u.ID,
		Username:        u.Username,
	}
}

// EventType returns the event type name
func (e *UserDeactivatedEvent) EventType() string {
	return EventTypeUserDeactivated
}
