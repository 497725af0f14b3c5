package component

import (
	"context"

	"github.com/google/uuid"
	"github.com/labstock/backend/internal/domain/shared"
)

// ComponentRepository defines the persistence interface for the Component aggregate
type ComponentRepository interface {
	// FindByID finds a component by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Component, error)

	// FindByIDForUpdate finds a component by ID with a row-level write lock.
	// Must be called inside a transaction; it serializes concurrent movement
	// application against the same component.
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*Component, error)

	// FindByIDWithMovements finds a component with its full movement history loaded
	FindByIDWithMovements(ctx context.Context, id uuid.UUID) (*Component, error)

	// FindActiveByPartNumber finds an active component by part number
	FindActiveByPartNumber(ctx context.Context, partNumber string) (*Component, error)

	// FindAll finds components matching the filter
	FindAll(ctx context.Context, filter shared.Filter) ([]Component, error)

	// FindAllActive finds all active components (no pagination, for alert scans and export)
	FindAllActive(ctx context.Context) ([]Component, error)

	// FindLowStock finds active components at or below their critical threshold
	FindLowStock(ctx context.Context) ([]Component, error)

	// Count counts components matching the filter
	Count(ctx context.Context, filter shared.Filter) (int64, error)

	// Save creates or updates a component
	Save(ctx context.Context, c *Component) error
}

// MovementRepository provides append-only access to movement records.
// Movements are child entities of Component; this repository exists for
// history queries and for appending within the movement transaction.
type MovementRepository interface {
	// Append persists a new movement record
	Append(ctx context.Context, m *Movement) error

	// FindByComponent returns movements for a component, oldest first
	FindByComponent(ctx context.Context, componentID uuid.UUID, filter shared.Filter) ([]Movement, error)

	// FindLastOutward returns the most recent outward movement for a component,
	// or shared.ErrNotFound if none exists
	FindLastOutward(ctx context.Context, componentID uuid.UUID) (*Movement, error)

	// CountByComponent counts movements for a component
	CountByComponent(ctx context.Context, componentID uuid.UUID) (int64, error)
}
