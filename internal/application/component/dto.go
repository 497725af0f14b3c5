package component

import (
	"time"

	"github.com/google/uuid"
	"github.com/labstock/backend/internal/domain/component"
	"github.com/shopspring/decimal"
)

// CreateComponentRequest carries the fields for registering a component
type CreateComponentRequest struct {
	Name                 string          `json:"name"`
	PartNumber           string          `json:"part_number"`
	Manufacturer         string          `json:"manufacturer"`
	Category             string          `json:"category"`
	Description          string          `json:"description"`
	Quantity             int64           `json:"quantity"`
	UnitPrice            decimal.Decimal `json:"unit_price"`
	CriticalLowThreshold int64           `json:"critical_low_threshold"`
	Location             string          `json:"location"`
}

// UpdateComponentRequest carries a partial update of non-ledger fields.
// Quantity is deliberately absent; it changes only through movements.
type UpdateComponentRequest struct {
	Name                 *string          `json:"name"`
	PartNumber           *string          `json:"part_number"`
	Manufacturer         *string          `json:"manufacturer"`
	Category             *string          `json:"category"`
	Description          *string          `json:"description"`
	UnitPrice            *decimal.Decimal `json:"unit_price"`
	CriticalLowThreshold *int64           `json:"critical_low_threshold"`
	Location             *string          `json:"location"`
}

// ComponentListFilter narrows a component listing
type ComponentListFilter struct {
	Category    string
	Location    string
	StockStatus string
	MinQuantity *int64
	MaxQuantity *int64
	Search      string
	Page        int
	PageSize    int
	OrderBy     string
	OrderDir    string
}

// ComponentResponse is the read model for a component
type ComponentResponse struct {
	ID                   uuid.UUID       `json:"id"`
	Name                 string          `json:"name"`
	PartNumber           string          `json:"part_number"`
	Manufacturer         string          `json:"manufacturer"`
	Category             string          `json:"category"`
	Description          string          `json:"description,omitempty"`
	Quantity             int64           `json:"quantity"`
	UnitPrice            decimal.Decimal `json:"unit_price"`
	CriticalLowThreshold int64           `json:"critical_low_threshold"`
	Location             string          `json:"location,omitempty"`
	StockStatus          string          `json:"stock_status"`
	TotalValue           decimal.Decimal `json:"total_value"`
	IsActive             bool            `json:"is_active"`
	CreatedAt            time.Time       `json:"created_at"`
	UpdatedAt            time.Time       `json:"updated_at"`
}

// ApplyMovementRequest records one stock movement against a component
type ApplyMovementRequest struct {
	Type     string `json:"type"`
	Quantity int64  `json:"quantity"`
	Reason   string `json:"reason"`
	Project  string `json:"project"`
	Notes    string `json:"notes"`
}

// MovementListFilter narrows a movement history listing
type MovementListFilter struct {
	Type     string
	Page     int
	PageSize int
}

// MovementResponse is the read model for a movement record
type MovementResponse struct {
	ID          uuid.UUID `json:"id"`
	ComponentID uuid.UUID `json:"component_id"`
	Type        string    `json:"type"`
	Quantity    int64     `json:"quantity"`
	ActorID     uuid.UUID `json:"actor_id"`
	ActorName   string    `json:"actor_name"`
	Reason      string    `json:"reason"`
	Project     string    `json:"project"`
	Notes       string    `json:"notes,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// ApplyMovementResult bundles the updated component and the created movement
type ApplyMovementResult struct {
	Component ComponentResponse `json:"component"`
	Movement  MovementResponse  `json:"movement"`
}

// BulkMovementItem is one entry of a bulk movement request
type BulkMovementItem struct {
	ComponentID uuid.UUID `json:"component_id"`
	Type        string    `json:"type"`
	Quantity    int64     `json:"quantity"`
	Notes       string    `json:"notes"`
}

// BulkMovementRequest applies several movements in one call. Reason and
// project are shared across all items; each item succeeds or fails on its own.
type BulkMovementRequest struct {
	Reason  string             `json:"reason"`
	Project string             `json:"project"`
	Items   []BulkMovementItem `json:"items"`
}

// BulkMovementFailure reports one failed bulk item with its error
type BulkMovementFailure struct {
	Item  BulkMovementItem `json:"item"`
	Error string           `json:"error"`
}

// BulkMovementResult separates succeeded updates from failed ones
type BulkMovementResult struct {
	Succeeded []ApplyMovementResult `json:"succeeded"`
	Failed    []BulkMovementFailure `json:"failed"`
}

// ToComponentResponse maps a domain component to its read model
func ToComponentResponse(c *component.Component) ComponentResponse {
	return ComponentResponse{
		ID:                   c.ID,
		Name:                 c.Name,
		PartNumber:           c.PartNumber,
		Manufacturer:         c.Manufacturer,
		Category:             c.Category.String(),
		Description:          c.Description,
		Quantity:             c.Quantity,
		UnitPrice:            c.UnitPrice,
		CriticalLowThreshold: c.CriticalLowThreshold,
		Location:             c.Location,
		StockStatus:          c.StockStatus().String(),
		TotalValue:           c.TotalValue(),
		IsActive:             c.IsActive,
		CreatedAt:            c.CreatedAt,
		UpdatedAt:            c.UpdatedAt,
	}
}

// ToMovementResponse maps a domain movement to its read model
func ToMovementResponse(m *component.Movement) MovementResponse {
	return MovementResponse{
		ID:          m.ID,
		ComponentID: m.ComponentID,
		Type:        m.Type.String(),
		Quantity:    m.Quantity,
		ActorID:     m.ActorID,
		ActorName:   m.ActorName,
		Reason:      m.Reason,
		Project:     m.Project,
		Notes:       m.Notes,
		CreatedAt:   m.CreatedAt,
	}
}
