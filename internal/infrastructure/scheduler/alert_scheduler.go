package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/labstock/backend/internal/application/alert"
	appnotification "github.com/labstock/backend/internal/application/notification"
	"github.com/labstock/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// AlertScheduler runs the periodic background jobs: the low-stock scan, the
// old-stock scan and the purge of long-expired notifications. Each job runs
// on its own ticker so a slow scan never delays the others.
type AlertScheduler struct {
	engine        *alert.AlertEngine
	notifications *appnotification.NotificationService
	config        config.SchedulerConfig
	logger        *zap.Logger

	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.Mutex
	isRunning bool
}

// NewAlertScheduler creates a new alert scheduler
func NewAlertScheduler(
	engine *alert.AlertEngine,
	notifications *appnotification.NotificationService,
	cfg config.SchedulerConfig,
	logger *zap.Logger,
) *AlertScheduler {
	return &AlertScheduler{
		engine:        engine,
		notifications: notifications,
		config:        cfg,
		logger:        logger,
	}
}

// Start starts the scheduler goroutines
func (s *AlertScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return nil
	}
	if !s.config.Enabled {
		s.mu.Unlock()
		s.logger.Info("Alert scheduler is disabled")
		return nil
	}
	s.isRunning = true
	s.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	s.runPeriodic(ctx, "low_stock_scan", s.config.LowStockInterval, s.runLowStockScan)
	s.runPeriodic(ctx, "old_stock_scan", s.config.OldStockInterval, s.runOldStockScan)
	s.runPeriodic(ctx, "notification_cleanup", s.config.CleanupInterval, s.runCleanup)

	s.logger.Info("Alert scheduler started",
		zap.Duration("low_stock_interval", s.config.LowStockInterval),
		zap.Duration("old_stock_interval", s.config.OldStockInterval),
		zap.Duration("cleanup_interval", s.config.CleanupInterval),
	)
	return nil
}

// Stop gracefully stops the scheduler, waiting for running jobs up to the
// shutdown grace period
func (s *AlertScheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = false
	s.mu.Unlock()

	if s.cancel != nil {
		s.cancel()
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("Alert scheduler stopped gracefully")
		return nil
	case <-ctx.Done():
		s.logger.Warn("Alert scheduler stop timed out")
		return ctx.Err()
	}
}

// runPeriodic starts one job loop. Intervals of zero or less disable the job.
func (s *AlertScheduler) runPeriodic(ctx context.Context, name string, interval time.Duration, job func(context.Context)) {
	if interval <= 0 {
		s.logger.Info("Scheduled job disabled", zap.String("job", name))
		return
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				job(ctx)
			}
		}
	}()
}

func (s *AlertScheduler) runLowStockScan(ctx context.Context) {
	created, err := s.engine.ScanLowStock(ctx)
	if err != nil {
		s.logger.Error("Low stock scan failed", zap.Error(err))
		return
	}
	if created > 0 {
		s.logger.Info("Low stock scan finished", zap.Int("alerts_created", created))
	}
}

func (s *AlertScheduler) runOldStockScan(ctx context.Context) {
	created, err := s.engine.ScanOldStock(ctx)
	if err != nil {
		s.logger.Error("Old stock scan failed", zap.Error(err))
		return
	}
	if created > 0 {
		s.logger.Info("Old stock scan finished", zap.Int("alerts_created", created))
	}
}

func (s *AlertScheduler) runCleanup(ctx context.Context) {
	removed, err := s.notifications.CleanupExpired(ctx, s.config.CleanupRetention)
	if err != nil {
		s.logger.Error("Notification cleanup failed", zap.Error(err))
		return
	}
	if removed > 0 {
		s.logger.Info("Notification cleanup finished", zap.Int64("removed", removed))
	}
}
