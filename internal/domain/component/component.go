package component

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstock/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Category classifies a component. The set is closed; unknown categories are rejected.
type Category string

const (
	CategoryResistor   Category = "resistor"
	CategoryCapacitor  Category = "capacitor"
	CategoryInductor   Category = "inductor"
	CategoryDiode      Category = "diode"
	CategoryTransistor Category = "transistor"
	CategoryIC         Category = "ic"
	CategoryConnector  Category = "connector"
	CategorySensor     Category = "sensor"
	CategoryModule     Category = "module"
	CategoryMechanical Category = "mechanical"
	CategoryOther      Category = "other"
)

// String returns the string representation of Category
func (c Category) String() string {
	return string(c)
}

// IsValid returns true if the category is part of the closed set
func (c Category) IsValid() bool {
	switch c {
	case CategoryResistor, CategoryCapacitor, CategoryInductor, CategoryDiode,
		CategoryTransistor, CategoryIC, CategoryConnector, CategorySensor,
		CategoryModule, CategoryMechanical, CategoryOther:
		return true
	}
	return false
}

// AllCategories returns every valid category
func AllCategories() []Category {
	return []Category{
		CategoryResistor, CategoryCapacitor, CategoryInductor, CategoryDiode,
		CategoryTransistor, CategoryIC, CategoryConnector, CategorySensor,
		CategoryModule, CategoryMechanical, CategoryOther,
	}
}

// DefaultOldStockThresholdDays is the staleness window for old-stock detection
const DefaultOldStockThresholdDays = 90

// Component is the aggregate root of the inventory ledger.
// Its quantity is only ever changed by applying movements; the movement
// history replayed from the initial quantity always equals the current quantity.
type Component struct {
	shared.BaseAggregateRoot
	Name                 string          `gorm:"type:varchar(200);not null"`
	PartNumber           string          `gorm:"type:varchar(100);not null;uniqueIndex:idx_components_active_part_number,where:is_active = true"`
	Manufacturer         string          `gorm:"type:varchar(200);not null"`
	Category             Category        `gorm:"type:varchar(50);not null"`
	Description          string          `gorm:"type:varchar(2000)"`
	Quantity             int64           `gorm:"not null;default:0"`
	InitialQuantity      int64           `gorm:"not null;default:0"` // ledger baseline, fixed at creation
	UnitPrice            decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	CriticalLowThreshold int64           `gorm:"not null;default:0"`
	Location             string          `gorm:"type:varchar(200)"`
	IsActive             bool            `gorm:"not null;default:true;index"`

	// Movements are owned exclusively by the component, in chronological order
	Movements []Movement `gorm:"foreignKey:ComponentID;references:ID;constraint:OnDelete:CASCADE"`
}

// TableName returns the table name for GORM
func (Component) TableName() string {
	return "components"
}

// NewComponent creates a new component establishing the ledger baseline.
// The initial quantity is taken at face value; subsequent changes go through movements.
func NewComponent(name, partNumber, manufacturer string, category Category, description string, quantity int64, unitPrice decimal.Decimal, criticalLowThreshold int64, location string) (*Component, error) {
	if err := validateRequiredString("name", name, 200); err != nil {
		return nil, err
	}
	if err := validateRequiredString("part_number", partNumber, 100); err != nil {
		return nil, err
	}
	if err := validateRequiredString("manufacturer", manufacturer, 200); err != nil {
		return nil, err
	}
	if !category.IsValid() {
		return nil, shared.NewDomainError("INVALID_CATEGORY", "Unknown component category")
	}
	if quantity < 0 {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Quantity cannot be negative")
	}
	if unitPrice.IsNegative() {
		return nil, shared.NewDomainError("INVALID_UNIT_PRICE", "Unit price cannot be negative")
	}
	if criticalLowThreshold < 0 {
		return nil, shared.NewDomainError("INVALID_THRESHOLD", "Critical low threshold cannot be negative")
	}

	c := &Component{
		BaseAggregateRoot:    shared.NewBaseAggregateRoot(),
		Name:                 strings.TrimSpace(name),
		PartNumber:           strings.TrimSpace(partNumber),
		Manufacturer:         strings.TrimSpace(manufacturer),
		Category:             category,
		Description:          strings.TrimSpace(description),
		Quantity:             quantity,
		InitialQuantity:      quantity,
		UnitPrice:            unitPrice,
		CriticalLowThreshold: criticalLowThreshold,
		Location:             strings.TrimSpace(location),
		IsActive:             true,
		Movements:            make([]Movement, 0),
	}

	c.AddDomainEvent(NewComponentCreatedEvent(c))

	return c, nil
}

// SetName sets the component name
func (c *Component) SetName(name string) error {
	if err := validateRequiredString("name", name, 200); err != nil {
		return err
	}
	c.Name = strings.TrimSpace(name)
	c.touch()
	return nil
}

// SetPartNumber sets the part number; uniqueness among active components
// is enforced by the application service
func (c *Component) SetPartNumber(partNumber string) error {
	if err := validateRequiredString("part_number", partNumber, 100); err != nil {
		return err
	}
	c.PartNumber = strings.TrimSpace(partNumber)
	c.touch()
	return nil
}

// SetManufacturer sets the manufacturer
func (c *Component) SetManufacturer(manufacturer string) error {
	if err := validateRequiredString("manufacturer", manufacturer, 200); err != nil {
		return err
	}
	c.Manufacturer = strings.TrimSpace(manufacturer)
	c.touch()
	return nil
}

// SetCategory sets the category
func (c *Component) SetCategory(category Category) error {
	if !category.IsValid() {
		return shared.NewDomainError("INVALID_CATEGORY", "Unknown component category")
	}
	c.Category = category
	c.touch()
	return nil
}

// SetDescription sets the optional description
func (c *Component) SetDescription(description string) error {
	if len(description) > 2000 {
		return shared.NewDomainError("INVALID_DESCRIPTION", "Description cannot exceed 2000 characters")
	}
	c.Description = strings.TrimSpace(description)
	c.touch()
	return nil
}

// SetUnitPrice sets the unit price
func (c *Component) SetUnitPrice(price decimal.Decimal) error {
	if price.IsNegative() {
		return shared.NewDomainError("INVALID_UNIT_PRICE", "Unit price cannot be negative")
	}
	c.UnitPrice = price
	c.touch()
	return nil
}

// SetCriticalLowThreshold sets the low-stock alert threshold
func (c *Component) SetCriticalLowThreshold(threshold int64) error {
	if threshold < 0 {
		return shared.NewDomainError("INVALID_THRESHOLD", "Critical low threshold cannot be negative")
	}
	c.CriticalLowThreshold = threshold
	c.touch()
	return nil
}

// SetLocation sets the storage location
func (c *Component) SetLocation(location string) error {
	if len(location) > 200 {
		return shared.NewDomainError("INVALID_LOCATION", "Location cannot exceed 200 characters")
	}
	c.Location = strings.TrimSpace(location)
	c.touch()
	return nil
}

// ApplyMovement appends a movement and updates the quantity in one logical step.
// An outward movement exceeding the current quantity is rejected, never clamped.
func (c *Component) ApplyMovement(movementType MovementType, quantity int64, actorID uuid.UUID, actorName, reason, project, notes string) (*Movement, error) {
	if !c.IsActive {
		return nil, shared.NewDomainError("NOT_FOUND", "Component is inactive")
	}

	movement, err := NewMovement(c.ID, movementType, quantity, actorID, actorName, reason, project, notes)
	if err != nil {
		return nil, err
	}

	if movementType == MovementTypeOutward && quantity > c.Quantity {
		return nil, shared.ErrInsufficientStock
	}

	c.Quantity += movement.SignedQuantity()
	c.Movements = append(c.Movements, *movement)
	c.touch()

	c.AddDomainEvent(NewMovementAppliedEvent(c, movement))

	if movementType == MovementTypeOutward && c.Quantity <= c.CriticalLowThreshold {
		c.AddDomainEvent(NewStockBelowThresholdEvent(c))
	}

	return movement, nil
}

// Deactivate soft-deletes the component
func (c *Component) Deactivate() error {
	if !c.IsActive {
		return shared.NewDomainError("NOT_FOUND", "Component is already inactive")
	}
	c.IsActive = false
	c.touch()
	c.AddDomainEvent(NewComponentDeactivatedEvent(c))
	return nil
}

// StockStatus derives the stock state from quantity and threshold.
// Quantity exactly at the threshold counts as low stock.
func (c *Component) StockStatus() StockStatus {
	switch {
	case c.Quantity <= 0:
		return StockStatusOutOfStock
	case c.Quantity <= c.CriticalLowThreshold:
		return StockStatusLowStock
	default:
		return StockStatusInStock
	}
}

// IsLowStock returns true if quantity is at or below the critical threshold
func (c *Component) IsLowStock() bool {
	return c.Quantity <= c.CriticalLowThreshold
}

// LastOutwardAt returns the timestamp of the most recent outward movement,
// or nil if the component has never had one
func (c *Component) LastOutwardAt() *time.Time {
	for i := len(c.Movements) - 1; i >= 0; i-- {
		if c.Movements[i].Type == MovementTypeOutward {
			t := c.Movements[i].CreatedAt
			return &t
		}
	}
	return nil
}

// IsOldStock returns true if no outward movement happened within the staleness
// window. A component without any movements is judged by age since creation.
func (c *Component) IsOldStock(now time.Time, thresholdDays int) bool {
	if thresholdDays <= 0 {
		thresholdDays = DefaultOldStockThresholdDays
	}
	cutoff := now.AddDate(0, 0, -thresholdDays)

	if last := c.LastOutwardAt(); last != nil {
		return last.Before(cutoff)
	}
	return c.CreatedAt.Before(cutoff)
}

// ReplayQuantity recomputes the quantity from the ledger baseline plus all movements
func (c *Component) ReplayQuantity() int64 {
	quantity := c.InitialQuantity
	for i := range c.Movements {
		quantity += c.Movements[i].SignedQuantity()
	}
	return quantity
}

// TotalValue returns quantity * unit price
func (c *Component) TotalValue() decimal.Decimal {
	return c.UnitPrice.Mul(decimal.NewFromInt(c.Quantity))
}

func (c *Component) touch() {
	c.UpdatedAt = time.Now()
	c.IncrementVersion()
}

func validateRequiredString(field, value string, maxLen int) error {
	value = strings.TrimSpace(value)
	code := "INVALID_" + strings.ToUpper(field)
	if value == "" {
		return shared.NewDomainError(code, "Component "+field+" cannot be empty")
	}
	if len(value) > maxLen {
		return shared.NewDomainError(code, "Component "+field+" is too long")
	}
	return nil
}
