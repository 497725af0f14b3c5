package alert

import (
	"context"
	"fmt"

	"github.com/labstock/backend/internal/domain/component"
	"github.com/labstock/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// MovementAppliedHandler records an informational notification for every
// stock movement so administrators have an activity trail in the inbox.
type MovementAppliedHandler struct {
	engine *AlertEngine
	logger *zap.Logger
}

// NewMovementAppliedHandler creates a new MovementAppliedHandler
func NewMovementAppliedHandler(engine *AlertEngine, logger *zap.Logger) *MovementAppliedHandler {
	return &MovementAppliedHandler{
		engine: engine,
		logger: logger,
	}
}

// EventTypes returns the event types this handler is interested in
func (h *MovementAppliedHandler) EventTypes() []string {
	return []string{component.EventTypeMovementApplied}
}

// Handle processes a MovementAppliedEvent
func (h *MovementAppliedHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	movementEvent, ok := event.(*component.MovementAppliedEvent)
	if !ok {
		return fmt.Errorf("unexpected event type: expected %s, got %s",
			component.EventTypeMovementApplied, event.EventType())
	}

	if err := h.engine.NotifyMovement(ctx, movementEvent); err != nil {
		h.logger.Error("recording movement notification failed",
			zap.String("component_id", movementEvent.ComponentID.String()),
			zap.String("movement_id", movementEvent.MovementID.String()),
			zap.Error(err),
		)
		return err
	}
	return nil
}
