package component

import (
	"github.com/google/uuid"
	"github.com/labstock/backend/internal/domain/shared"
)

// Aggregate type constant
const AggregateTypeComponent = "Component"

// Event type constants
const (
	EventTypeComponentCreated     = "ComponentCreated"
	EventTypeComponentDeactivated = "ComponentDeactivated"
	EventTypeMovementApplied      = "MovementApplied"
	EventTypeStockBelowThreshold  = "StockBelowThreshold"
)

// ComponentCreatedEvent is raised when a new component is registered
type ComponentCreatedEvent struct {
	shared.BaseDomainEvent
	ComponentID uuid.UUID `json:"component_id"`
	Name        string    `json:"name"`
	PartNumber  string    `json:"part_number"`
	Category    Category  `json:"category"`
	Quantity    int64     `json:"quantity"`
}

// NewComponentCreatedEvent creates a new ComponentCreatedEvent
func NewComponentCreatedEvent(c *Component) *ComponentCreatedEvent {
	return &ComponentCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeComponentCreated, AggregateTypeComponent, c.ID),
		ComponentID:     c.ID,
		Name:            c.Name,
		PartNumber:      c.PartNumber,
		Category:        c.Category,
		Quantity:        c.Quantity,
	}
}

// EventType returns the event type name
func (e *ComponentCreatedEvent) EventType() string {
	return EventTypeComponentCreated
}

// ComponentDeactivatedEvent is raised when a component is soft-deleted
type ComponentDeactivatedEvent struct {
	shared.BaseDomainEvent
	ComponentID uuid.UUID `json:"component_id"`
	Name        string    `json:"name"`
	PartNumber  string    `json:"part_number"`
}

// NewComponentDeactivatedEvent creates a new ComponentDeactivatedEvent
func NewComponentDeactivatedEvent(c *Component) *ComponentDeactivatedEvent {
	return &ComponentDeactivatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeComponentDeactivated, AggregateTypeComponent, c.ID),
		ComponentID:     c.ID,
		Name:            c.Name,
		PartNumber:      c.PartNumber,
	}
}

// EventType returns the event type name
func (e *ComponentDeactivatedEvent) EventType() string {
	return EventTypeComponentDeactivated
}

// MovementAppliedEvent is raised for every successful inward or outward movement
type MovementAppliedEvent struct {
	shared.BaseDomainEvent
	ComponentID       uuid.UUID    `json:"component_id"`
	ComponentName     string       `json:"component_name"`
	PartNumber        string       `json:"part_number"`
	MovementID        uuid.UUID    `json:"movement_id"`
	MovementType      MovementType `json:"movement_type"`
	Quantity          int64        `json:"quantity"`
	ResultingQuantity int64        `json:"resulting_quantity"`
	ActorID           uuid.UUID    `json:"actor_id"`
	ActorName         string       `json:"actor_name"`
	Reason            string       `json:"reason"`
	Project           string       `json:"project"`
}

// NewMovementAppliedEvent creates a new MovementAppliedEvent
func NewMovementAppliedEvent(c *Component, m *Movement) *MovementAppliedEvent {
	return &MovementAppliedEvent{
		BaseDomainEvent:   shared.NewBaseDomainEvent(EventTypeMovementApplied, AggregateTypeComponent, c.ID),
		ComponentID:       c.ID,
		ComponentName:     c.Name,
		PartNumber:        c.PartNumber,
		MovementID:        m.ID,
		MovementType:      m.Type,
		Quantity:          m.Quantity,
		ResultingQuantity: c.Quantity,
		ActorID:           m.ActorID,
		ActorName:         m.ActorName,
		Reason:            m.Reason,
		Project:           m.Project,
	}
}

// EventType returns the event type name
func (e *MovementAppliedEvent) EventType() string {
	return EventTypeMovementApplied
}

// StockBelowThresholdEvent is raised when an outward movement leaves the
// quantity at or below the critical low threshold
type StockBelowThresholdEvent struct {
	shared.BaseDomainEvent
	ComponentID          uuid.UUID `json:"component_id"`
	ComponentName        string    `json:"component_name"`
	PartNumber           string    `json:"part_number"`
	Quantity             int64     `json:"quantity"`
	CriticalLowThreshold int64     `json:"critical_low_threshold"`
}

// NewStockBelowThresholdEvent creates a new StockBelowThresholdEvent
func NewStockBelowThresholdEvent(c *Component) *StockBelowThresholdEvent {
	return &StockBelowThresholdEvent{
		BaseDomainEvent:      shared.NewBaseDomainEvent(EventTypeStockBelowThreshold, AggregateTypeComponent, c.ID),
		ComponentID:          c.ID,
		ComponentName:        c.Name,
		PartNumber:           c.PartNumber,
		Quantity:             c.Quantity,
		CriticalLowThreshold: c.CriticalLowThreshold,
	}
}

// EventType returns the event type name
func (e *StockBelowThresholdEvent) EventType() string {
	return EventTypeStockBelowThreshold
}
