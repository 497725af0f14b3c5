package alert

import (
	"context"
	"fmt"

	"github.com/labstock/backend/internal/domain/component"
	"github.com/labstock/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// StockBelowThresholdHandler reacts to StockBelowThreshold events raised by
// outward movements. The event bus is synchronous, so the low-stock alert
// exists before the movement call returns to the caller.
type StockBelowThresholdHandler struct {
	engine *AlertEngine
	logger *zap.Logger
}

// NewStockBelowThresholdHandler creates a new StockBelowThresholdHandler
func NewStockBelowThresholdHandler(engine *AlertEngine, logger *zap.Logger) *StockBelowThresholdHandler {
	return &StockBelowThresholdHandler{
		engine: engine,
		logger: logger,
	}
}

// EventTypes returns the event types this handler is interested in
func (h *StockBelowThresholdHandler) EventTypes() []string {
	return []string{component.EventTypeStockBelowThreshold}
}

// Handle processes a StockBelowThresholdEvent
func (h *StockBelowThresholdHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	thresholdEvent, ok := event.(*component.StockBelowThresholdEvent)
	if !ok {
		return fmt.Errorf("unexpected event type: expected %s, got %s",
			component.EventTypeStockBelowThreshold, event.EventType())
	}

	h.logger.Warn("stock below threshold",
		zap.String("component_id", thresholdEvent.ComponentID.String()),
		zap.String("part_number", thresholdEvent.PartNumber),
		zap.Int64("quantity", thresholdEvent.Quantity),
		zap.Int64("threshold", thresholdEvent.CriticalLowThreshold),
	)

	c, err := h.engine.componentRepo.FindByID(ctx, thresholdEvent.ComponentID)
	if err != nil {
		return err
	}

	_, err = h.engine.CheckComponent(ctx, c)
	return err
}
