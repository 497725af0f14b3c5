package component

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/labstock/backend/internal/domain/component"
	"github.com/labstock/backend/internal/domain/identity"
	"github.com/labstock/backend/internal/domain/shared"
)

// ComponentService handles component catalog operations.
// Quantity never changes here; that is the movement service's job.
type ComponentService struct {
	componentRepo  component.ComponentRepository
	userRepo       identity.UserRepository
	eventPublisher shared.EventPublisher
}

// NewComponentService creates a new ComponentService
func NewComponentService(componentRepo component.ComponentRepository, userRepo identity.UserRepository) *ComponentService {
	return &ComponentService{
		componentRepo: componentRepo,
		userRepo:      userRepo,
	}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *ComponentService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// publishDomainEvents publishes all domain events from the component
func (s *ComponentService) publishDomainEvents(ctx context.Context, c *component.Component) {
	if s.eventPublisher == nil {
		c.ClearDomainEvents()
		return
	}
	events := c.GetDomainEvents()
	if len(events) == 0 {
		return
	}
	// Publish events (errors are logged by the event bus, not propagated)
	_ = s.eventPublisher.Publish(ctx, events...)
	c.ClearDomainEvents()
}

// requireActor loads the acting user and checks the required capability
func (s *ComponentService) requireActor(ctx context.Context, actorID uuid.UUID, capability identity.Capability) (*identity.User, error) {
	actor, err := s.userRepo.FindByID(ctx, actorID)
	if err != nil {
		return nil, shared.ErrUnauthorized
	}
	if !actor.IsActive {
		return nil, shared.ErrUnauthorized
	}
	if !identity.Can(actor, capability) {
		return nil, shared.ErrForbidden
	}
	return actor, nil
}

// Create registers a new component. The part number must not collide with
// an active component; inactive components do not block reuse.
func (s *ComponentService) Create(ctx context.Context, actorID uuid.UUID, req CreateComponentRequest) (*ComponentResponse, error) {
	if _, err := s.requireActor(ctx, actorID, identity.CapabilityEdit); err != nil {
		return nil, err
	}

	existing, err := s.componentRepo.FindActiveByPartNumber(ctx, req.PartNumber)
	if err != nil && !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}
	if existing != nil {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "A component with this part number already exists")
	}

	c, err := component.NewComponent(
		req.Name,
		req.PartNumber,
		req.Manufacturer,
		component.Category(req.Category),
		req.Description,
		req.Quantity,
		req.UnitPrice,
		req.CriticalLowThreshold,
		req.Location,
	)
	if err != nil {
		return nil, err
	}

	if err := s.componentRepo.Save(ctx, c); err != nil {
		return nil, err
	}

	s.publishDomainEvents(ctx, c)

	response := ToComponentResponse(c)
	return &response, nil
}

// Update applies a partial update to a component's descriptive fields
func (s *ComponentService) Update(ctx context.Context, actorID, componentID uuid.UUID, req UpdateComponentRequest) (*ComponentResponse, error) {
	if _, err := s.requireActor(ctx, actorID, identity.CapabilityEdit); err != nil {
		return nil, err
	}

	c, err := s.componentRepo.FindByID(ctx, componentID)
	if err != nil {
		return nil, err
	}
	if !c.IsActive {
		return nil, shared.ErrNotFound
	}

	if req.PartNumber != nil && *req.PartNumber != c.PartNumber {
		existing, err := s.componentRepo.FindActiveByPartNumber(ctx, *req.PartNumber)
		if err != nil && !errors.Is(err, shared.ErrNotFound) {
			return nil, err
		}
		if existing != nil && existing.ID != c.ID {
			return nil, shared.NewDomainError("ALREADY_EXISTS", "A component with this part number already exists")
		}
		if err := c.SetPartNumber(*req.PartNumber); err != nil {
			return nil, err
		}
	}
	if req.Name != nil {
		if err := c.SetName(*req.Name); err != nil {
			return nil, err
		}
	}
	if req.Manufacturer != nil {
		if err := c.SetManufacturer(*req.Manufacturer); err != nil {
			return nil, err
		}
	}
	if req.Category != nil {
		if err := c.SetCategory(component.Category(*req.Category)); err != nil {
			return nil, err
		}
	}
	if req.Description != nil {
		if err := c.SetDescription(*req.Description); err != nil {
			return nil, err
		}
	}
	if req.UnitPrice != nil {
		if err := c.SetUnitPrice(*req.UnitPrice); err != nil {
			return nil, err
		}
	}
	if req.CriticalLowThreshold != nil {
		if err := c.SetCriticalLowThreshold(*req.CriticalLowThreshold); err != nil {
			return nil, err
		}
	}
	if req.Location != nil {
		if err := c.SetLocation(*req.Location); err != nil {
			return nil, err
		}
	}

	if err := s.componentRepo.Save(ctx, c); err != nil {
		return nil, err
	}

	response := ToComponentResponse(c)
	return &response, nil
}

// Deactivate soft-deletes a component. Its movement history stays queryable.
func (s *ComponentService) Deactivate(ctx context.Context, actorID, componentID uuid.UUID) error {
	if _, err := s.requireActor(ctx, actorID, identity.CapabilityEdit); err != nil {
		return err
	}

	c, err := s.componentRepo.FindByID(ctx, componentID)
	if err != nil {
		return err
	}

	if err := c.Deactivate(); err != nil {
		return err
	}

	if err := s.componentRepo.Save(ctx, c); err != nil {
		return err
	}

	s.publishDomainEvents(ctx, c)
	return nil
}

// GetByID retrieves a single component
func (s *ComponentService) GetByID(ctx context.Context, actorID, componentID uuid.UUID) (*ComponentResponse, error) {
	if _, err := s.requireActor(ctx, actorID, identity.CapabilityView); err != nil {
		return nil, err
	}

	c, err := s.componentRepo.FindByID(ctx, componentID)
	if err != nil {
		return nil, err
	}
	if !c.IsActive {
		return nil, shared.ErrNotFound
	}

	response := ToComponentResponse(c)
	return &response, nil
}

// List retrieves active components with filtering and pagination
func (s *ComponentService) List(ctx context.Context, actorID uuid.UUID, filter ComponentListFilter) (*shared.Paginated[ComponentResponse], error) {
	if _, err := s.requireActor(ctx, actorID, identity.CapabilityView); err != nil {
		return nil, err
	}

	// Set defaults
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}
	if filter.OrderBy == "" {
		filter.OrderBy = "name"
	}
	if filter.OrderDir == "" {
		filter.OrderDir = "asc"
	}

	// Build domain filter
	domainFilter := shared.Filter{
		Page:     filter.Page,
		PageSize: filter.PageSize,
		OrderBy:  filter.OrderBy,
		OrderDir: filter.OrderDir,
		Search:   filter.Search,
		Filters:  make(map[string]interface{}),
	}
	if filter.Category != "" {
		category := component.Category(filter.Category)
		if !category.IsValid() {
			return nil, shared.NewDomainError("INVALID_CATEGORY", "Unknown component category")
		}
		domainFilter.Filters["category"] = filter.Category
	}
	if filter.Location != "" {
		domainFilter.Filters["location"] = filter.Location
	}
	if filter.StockStatus != "" {
		status := component.StockStatus(filter.StockStatus)
		if !status.IsValid() {
			return nil, shared.NewDomainError("INVALID_STOCK_STATUS", "Unknown stock status")
		}
		domainFilter.Filters["stock_status"] = filter.StockStatus
	}
	if filter.MinQuantity != nil {
		domainFilter.Filters["min_quantity"] = *filter.MinQuantity
	}
	if filter.MaxQuantity != nil {
		domainFilter.Filters["max_quantity"] = *filter.MaxQuantity
	}

	components, err := s.componentRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, err
	}
	total, err := s.componentRepo.Count(ctx, domainFilter)
	if err != nil {
		return nil, err
	}

	responses := make([]ComponentResponse, len(components))
	for i := range components {
		responses[i] = ToComponentResponse(&components[i])
	}
	result := shared.NewPaginated(responses, total, filter.Page, filter.PageSize)
	return &result, nil
}

// ListLowStock retrieves active components at or below their critical threshold
func (s *ComponentService) ListLowStock(ctx context.Context, actorID uuid.UUID) ([]ComponentResponse, error) {
	if _, err := s.requireActor(ctx, actorID, identity.CapabilityView); err != nil {
		return nil, err
	}

	components, err := s.componentRepo.FindLowStock(ctx)
	if err != nil {
		return nil, err
	}

	responses := make([]ComponentResponse, len(components))
	for i := range components {
		responses[i] = ToComponentResponse(&components[i])
	}
	return responses, nil
}
