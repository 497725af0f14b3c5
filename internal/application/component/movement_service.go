package component

import (
	"context"

	"github.com/google/uuid"
	"github.com/labstock/backend/internal/domain/component"
	"github.com/labstock/backend/internal/domain/identity"
	"github.com/labstock/backend/internal/domain/shared"
)

// MovementService is the only write path for component quantities.
// Each movement runs in its own transaction with a row lock on the
// component, so concurrent movements against the same component serialize
// and the ledger stays consistent.
type MovementService struct {
	scope          TransactionScope
	componentRepo  component.ComponentRepository
	movementRepo   component.MovementRepository
	userRepo       identity.UserRepository
	eventPublisher shared.EventPublisher
}

// NewMovementService creates a new MovementService
func NewMovementService(
	scope TransactionScope,
	componentRepo component.ComponentRepository,
	movementRepo component.MovementRepository,
	userRepo identity.UserRepository,
) *MovementService {
	return &MovementService{
		scope:         scope,
		componentRepo: componentRepo,
		movementRepo:  movementRepo,
		userRepo:      userRepo,
	}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *MovementService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// publishDomainEvents publishes all domain events from the component.
// Called after the transaction commits so handlers observe persisted state.
func (s *MovementService) publishDomainEvents(ctx context.Context, c *component.Component) {
	if s.eventPublisher == nil {
		c.ClearDomainEvents()
		return
	}
	events := c.GetDomainEvents()
	if len(events) == 0 {
		return
	}
	_ = s.eventPublisher.Publish(ctx, events...)
	c.ClearDomainEvents()
}

// capabilityForMovement maps a movement direction to the capability gating it
func capabilityForMovement(t component.MovementType) identity.Capability {
	if t == component.MovementTypeInward {
		return identity.CapabilityInward
	}
	return identity.CapabilityOutward
}

func (s *MovementService) loadActor(ctx context.Context, actorID uuid.UUID) (*identity.User, error) {
	actor, err := s.userRepo.FindByID(ctx, actorID)
	if err != nil {
		return nil, shared.ErrUnauthorized
	}
	if !actor.IsActive {
		return nil, shared.ErrUnauthorized
	}
	return actor, nil
}

// Apply records one stock movement. The movement append and the quantity
// update commit together; on any error nothing is persisted.
func (s *MovementService) Apply(ctx context.Context, actorID, componentID uuid.UUID, req ApplyMovementRequest) (*ApplyMovementResult, error) {
	movementType := component.MovementType(req.Type)
	if !movementType.IsValid() {
		return nil, shared.NewDomainError("INVALID_MOVEMENT_TYPE", "Movement type must be inward or outward")
	}

	actor, err := s.loadActor(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if !identity.Can(actor, capabilityForMovement(movementType)) {
		return nil, shared.ErrForbidden
	}

	var updated *component.Component
	var movement *component.Movement

	err = s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		c, err := repos.Components().FindByIDForUpdate(ctx, componentID)
		if err != nil {
			return err
		}

		m, err := c.ApplyMovement(movementType, req.Quantity, actor.ID, actor.Name, req.Reason, req.Project, req.Notes)
		if err != nil {
			return err
		}

		if err := repos.Movements().Append(ctx, m); err != nil {
			return err
		}
		if err := repos.Components().Save(ctx, c); err != nil {
			return err
		}

		updated = c
		movement = m
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publishDomainEvents(ctx, updated)

	return &ApplyMovementResult{
		Component: ToComponentResponse(updated),
		Movement:  ToMovementResponse(movement),
	}, nil
}

// BulkApply records several movements in one call. Items are independent:
// each runs in its own transaction, and a failed item never rolls back a
// succeeded one. The result lists both outcomes.
func (s *MovementService) BulkApply(ctx context.Context, actorID uuid.UUID, req BulkMovementRequest) (*BulkMovementResult, error) {
	if len(req.Items) == 0 {
		return nil, shared.NewDomainError("INVALID_INPUT", "Bulk movement requires at least one item")
	}

	result := &BulkMovementResult{
		Succeeded: make([]ApplyMovementResult, 0, len(req.Items)),
		Failed:    make([]BulkMovementFailure, 0),
	}

	for _, item := range req.Items {
		applied, err := s.Apply(ctx, actorID, item.ComponentID, ApplyMovementRequest{
			Type:     item.Type,
			Quantity: item.Quantity,
			Reason:   req.Reason,
			Project:  req.Project,
			Notes:    item.Notes,
		})
		if err != nil {
			result.Failed = append(result.Failed, BulkMovementFailure{
				Item:  item,
				Error: err.Error(),
			})
			continue
		}
		result.Succeeded = append(result.Succeeded, *applied)
	}

	return result, nil
}

// ListByComponent retrieves the movement history of a component, oldest first
func (s *MovementService) ListByComponent(ctx context.Context, actorID, componentID uuid.UUID, filter MovementListFilter) (*shared.Paginated[MovementResponse], error) {
	actor, err := s.loadActor(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if !identity.Can(actor, identity.CapabilityView) {
		return nil, shared.ErrForbidden
	}

	// The component must exist, even if inactive; history stays queryable
	if _, err := s.componentRepo.FindByID(ctx, componentID); err != nil {
		return nil, err
	}

	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 50
	}

	domainFilter := shared.Filter{
		Page:     filter.Page,
		PageSize: filter.PageSize,
		OrderBy:  "created_at",
		OrderDir: "asc",
		Filters:  make(map[string]interface{}),
	}
	if filter.Type != "" {
		movementType := component.MovementType(filter.Type)
		if !movementType.IsValid() {
			return nil, shared.NewDomainError("INVALID_MOVEMENT_TYPE", "Movement type must be inward or outward")
		}
		domainFilter.Filters["type"] = filter.Type
	}

	movements, err := s.movementRepo.FindByComponent(ctx, componentID, domainFilter)
	if err != nil {
		return nil, err
	}
	total, err := s.movementRepo.CountByComponent(ctx, componentID)
	if err != nil {
		return nil, err
	}

	responses := make([]MovementResponse, len(movements))
	for i := range movements {
		responses[i] = ToMovementResponse(&movements[i])
	}
	result := shared.NewPaginated(responses, total, filter.Page, filter.PageSize)
	return &result, nil
}
