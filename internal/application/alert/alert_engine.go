package alert

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/labstock/backend/internal/domain/component"
	"github.com/labstock/backend/internal/domain/identity"
	"github.com/labstock/backend/internal/domain/notification"
	"github.com/labstock/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// AlertEngine turns stock conditions into notifications. It is invoked
// synchronously from the movement path through event handlers and
// periodically by the scheduler for full scans. Duplicate alerts for an
// unchanged condition are suppressed per category window.
type AlertEngine struct {
	componentRepo     component.ComponentRepository
	movementRepo      component.MovementRepository
	notificationRepo  notification.NotificationRepository
	policy            *notification.SuppressionPolicy
	logger            *zap.Logger
	oldStockThreshold int
	now               func() time.Time
}

// NewAlertEngine creates a new AlertEngine with the default suppression policy
func NewAlertEngine(
	componentRepo component.ComponentRepository,
	movementRepo component.MovementRepository,
	notificationRepo notification.NotificationRepository,
	logger *zap.Logger,
) *AlertEngine {
	return &AlertEngine{
		componentRepo:     componentRepo,
		movementRepo:      movementRepo,
		notificationRepo:  notificationRepo,
		policy:            notification.NewSuppressionPolicy(),
		logger:            logger,
		oldStockThreshold: component.DefaultOldStockThresholdDays,
		now:               time.Now,
	}
}

// SetSuppressionPolicy overrides the default suppression windows
func (e *AlertEngine) SetSuppressionPolicy(policy *notification.SuppressionPolicy) {
	e.policy = policy
}

// SetOldStockThresholdDays overrides the default staleness window
func (e *AlertEngine) SetOldStockThresholdDays(days int) {
	if days > 0 {
		e.oldStockThreshold = days
	}
}

// SetClock overrides the time source, for tests
func (e *AlertEngine) SetClock(now func() time.Time) {
	e.now = now
}

// CheckComponent evaluates the low-stock condition for one component and
// creates a notification when it holds and is not suppressed. Returns true
// if a notification was created.
func (e *AlertEngine) CheckComponent(ctx context.Context, c *component.Component) (bool, error) {
	if !c.IsActive || !c.IsLowStock() {
		return false, nil
	}

	now := e.now()
	since := e.policy.Since(notification.CategoryLowStock, now)
	exists, err := e.notificationRepo.ExistsRecentForComponent(ctx, notification.CategoryLowStock, c.ID, since)
	if err != nil {
		return false, err
	}
	if exists {
		return false, nil
	}

	notificationType := notification.TypeWarning
	priority := notification.PriorityMedium
	title := fmt.Sprintf("Low stock: %s", c.Name)
	if c.Quantity <= 0 {
		notificationType = notification.TypeError
		priority = notification.PriorityHigh
		title = fmt.Sprintf("Out of stock: %s", c.Name)
	}
	message := fmt.Sprintf("%s (%s) is down to %d, at or below the critical threshold of %d",
		c.Name, c.PartNumber, c.Quantity, c.CriticalLowThreshold)

	n, err := notification.New(notificationType, title, message, notification.CategoryLowStock)
	if err != nil {
		return false, err
	}
	if err := n.SetPriority(priority); err != nil {
		return false, err
	}
	n.RelateComponent(c.ID)
	n.TargetRole(identity.RoleAdmin)
	n.TargetRole(identity.RoleUser)
	n.Metadata = notification.Metadata{
		LowStock: &notification.LowStockMetadata{
			ComponentName:        c.Name,
			PartNumber:           c.PartNumber,
			Quantity:             c.Quantity,
			CriticalLowThreshold: c.CriticalLowThreshold,
			Location:             c.Location,
		},
	}

	if err := e.notificationRepo.Save(ctx, n); err != nil {
		return false, err
	}

	e.logger.Info("low stock alert created",
		zap.String("component_id", c.ID.String()),
		zap.String("part_number", c.PartNumber),
		zap.Int64("quantity", c.Quantity),
		zap.Int64("threshold", c.CriticalLowThreshold),
	)
	return true, nil
}

// ScanLowStock evaluates every active component at or below its threshold.
// Returns the number of notifications created; suppressed conditions count as zero.
func (e *AlertEngine) ScanLowStock(ctx context.Context) (int, error) {
	components, err := e.componentRepo.FindLowStock(ctx)
	if err != nil {
		return 0, err
	}

	created := 0
	for i := range components {
		ok, err := e.CheckComponent(ctx, &components[i])
		if err != nil {
			e.logger.Error("low stock check failed",
				zap.String("component_id", components[i].ID.String()),
				zap.Error(err),
			)
			continue
		}
		if ok {
			created++
		}
	}
	return created, nil
}

// ScanOldStock flags active components with no outward movement within the
// staleness window. Components without any outward movement are judged by
// age since creation. Returns the number of notifications created.
func (e *AlertEngine) ScanOldStock(ctx context.Context) (int, error) {
	components, err := e.componentRepo.FindAllActive(ctx)
	if err != nil {
		return 0, err
	}

	now := e.now()
	cutoff := now.AddDate(0, 0, -e.oldStockThreshold)
	created := 0

	for i := range components {
		c := &components[i]

		reference := c.CreatedAt
		var lastOutwardAt *time.Time
		last, err := e.movementRepo.FindLastOutward(ctx, c.ID)
		if err != nil {
			var domainErr *shared.DomainError
			if !errors.As(err, &domainErr) || domainErr.Code != shared.ErrNotFound.Code {
				e.logger.Error("old stock check failed",
					zap.String("component_id", c.ID.String()),
					zap.Error(err),
				)
				continue
			}
		} else {
			reference = last.CreatedAt
			lastOutwardAt = &last.CreatedAt
		}

		if !reference.Before(cutoff) {
			continue
		}

		since := e.policy.Since(notification.CategoryOldStock, now)
		exists, err := e.notificationRepo.ExistsRecentForComponent(ctx, notification.CategoryOldStock, c.ID, since)
		if err != nil || exists {
			continue
		}

		ageDays := int(now.Sub(reference).Hours() / 24)
		title := fmt.Sprintf("Stale stock: %s", c.Name)
		message := fmt.Sprintf("%s (%s) has had no outward movement for %d days (%d in stock)",
			c.Name, c.PartNumber, ageDays, c.Quantity)

		n, err := notification.New(notification.TypeInfo, title, message, notification.CategoryOldStock)
		if err != nil {
			continue
		}
		_ = n.SetPriority(notification.PriorityLow)
		n.RelateComponent(c.ID)
		n.TargetRole(identity.RoleAdmin)
		n.Metadata = notification.Metadata{
			OldStock: &notification.OldStockMetadata{
				ComponentName: c.Name,
				PartNumber:    c.PartNumber,
				Quantity:      c.Quantity,
				AgeDays:       ageDays,
				LastOutwardAt: lastOutwardAt,
			},
		}

		if err := e.notificationRepo.Save(ctx, n); err != nil {
			e.logger.Error("saving old stock alert failed",
				zap.String("component_id", c.ID.String()),
				zap.Error(err),
			)
			continue
		}
		created++
	}
	return created, nil
}

// NotifyMovement records a stock-movement notification for administrators.
// Movement notifications are informational and never suppressed.
func (e *AlertEngine) NotifyMovement(ctx context.Context, ev *component.MovementAppliedEvent) error {
	direction := "received"
	if ev.MovementType == component.MovementTypeOutward {
		direction = "issued"
	}
	title := fmt.Sprintf("Stock %s: %s", direction, ev.ComponentName)
	message := fmt.Sprintf("%s %s %d x %s (%s), %d remaining",
		ev.ActorName, direction, ev.Quantity, ev.ComponentName, ev.PartNumber, ev.ResultingQuantity)

	n, err := notification.New(notification.TypeInfo, title, message, notification.CategoryStockMovement)
	if err != nil {
		return err
	}
	_ = n.SetPriority(notification.PriorityLow)
	n.RelateComponent(ev.ComponentID)
	n.TargetRole(identity.RoleAdmin)
	n.Metadata = notification.Metadata{
		StockMovement: &notification.StockMovementMetadata{
			ComponentName:     ev.ComponentName,
			PartNumber:        ev.PartNumber,
			MovementType:      ev.MovementType.String(),
			Quantity:          ev.Quantity,
			ResultingQuantity: ev.ResultingQuantity,
			ActorName:         ev.ActorName,
			Reason:            ev.Reason,
			Project:           ev.Project,
		},
	}

	return e.notificationRepo.Save(ctx, n)
}
