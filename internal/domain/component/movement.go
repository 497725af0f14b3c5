package component

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstock/backend/internal/domain/shared"
)

// MovementType represents the direction of a stock movement
type MovementType string

const (
	// MovementTypeInward represents stock added to a component
	MovementTypeInward MovementType = "inward"
	// MovementTypeOutward represents stock taken from a component
	MovementTypeOutward MovementType = "outward"
)

// String returns the string representation of MovementType
func (t MovementType) String() string {
	return string(t)
}

// IsValid returns true if the movement type is valid
func (t MovementType) IsValid() bool {
	switch t {
	case MovementTypeInward, MovementTypeOutward:
		return true
	}
	return false
}

// Field length bounds for movement metadata
const (
	maxReasonLength  = 200
	maxProjectLength = 200
	maxNotesLength   = 1000
)

// Movement is an immutable stock movement record owned by its parent Component.
// Movements are only ever appended, never edited or deleted.
type Movement struct {
	ID          uuid.UUID    `gorm:"type:uuid;primaryKey"`
	ComponentID uuid.UUID    `gorm:"type:uuid;not null;index"`
	Type        MovementType `gorm:"type:varchar(10);not null"`
	Quantity    int64        `gorm:"not null"`
	ActorID     uuid.UUID    `gorm:"type:uuid;not null"`
	ActorName   string       `gorm:"type:varchar(200);not null"` // cached display name at time of movement
	Reason      string       `gorm:"type:varchar(200);not null"`
	Project     string       `gorm:"type:varchar(200);not null"`
	Notes       string       `gorm:"type:varchar(1000)"`
	CreatedAt   time.Time    `gorm:"not null;index"`
}

// TableName returns the table name for GORM
func (Movement) TableName() string {
	return "movements"
}

// NewMovement creates a validated movement record for a component
func NewMovement(componentID uuid.UUID, movementType MovementType, quantity int64, actorID uuid.UUID, actorName, reason, project, notes string) (*Movement, error) {
	if componentID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_COMPONENT", "Component ID cannot be empty")
	}
	if !movementType.IsValid() {
		return nil, shared.NewDomainError("INVALID_MOVEMENT_TYPE", "Movement type must be inward or outward")
	}
	if quantity < 1 {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Movement quantity must be a positive integer")
	}
	if actorID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_ACTOR", "Movement actor is required")
	}
	if err := validateMovementField("reason", reason, maxReasonLength, true); err != nil {
		return nil, err
	}
	if err := validateMovementField("project", project, maxProjectLength, true); err != nil {
		return nil, err
	}
	if err := validateMovementField("notes", notes, maxNotesLength, false); err != nil {
		return nil, err
	}

	return &Movement{
		ID:          uuid.New(),
		ComponentID: componentID,
		Type:        movementType,
		Quantity:    quantity,
		ActorID:     actorID,
		ActorName:   strings.TrimSpace(actorName),
		Reason:      strings.TrimSpace(reason),
		Project:     strings.TrimSpace(project),
		Notes:       strings.TrimSpace(notes),
		CreatedAt:   time.Now(),
	}, nil
}

// SignedQuantity returns the quantity with direction applied (negative for outward)
func (m *Movement) SignedQuantity() int64 {
	if m.Type == MovementTypeOutward {
		return -m.Quantity
	}
	return m.Quantity
}

func validateMovementField(name, value string, maxLen int, required bool) error {
	value = strings.TrimSpace(value)
	if required && value == "" {
		return shared.NewDomainError("INVALID_"+strings.ToUpper(name), "Movement "+name+" is required")
	}
	if len(value) > maxLen {
		return shared.NewDomainError("INVALID_"+strings.ToUpper(name), "Movement "+name+" is too long")
	}
	return nil
}
