package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	alertapp "github.com/labstock/backend/internal/application/alert"
	componentapp "github.com/labstock/backend/internal/application/component"
	identityapp "github.com/labstock/backend/internal/application/identity"
	importexportapp "github.com/labstock/backend/internal/application/importexport"
	notificationapp "github.com/labstock/backend/internal/application/notification"
	"github.com/labstock/backend/internal/domain/notification"
	"github.com/labstock/backend/internal/infrastructure/auth"
	"github.com/labstock/backend/internal/infrastructure/cache"
	"github.com/labstock/backend/internal/infrastructure/config"
	"github.com/labstock/backend/internal/infrastructure/event"
	"github.com/labstock/backend/internal/infrastructure/logger"
	"github.com/labstock/backend/internal/infrastructure/persistence"
	"github.com/labstock/backend/internal/infrastructure/scheduler"
	"github.com/labstock/backend/internal/interfaces/http/handler"
	"github.com/labstock/backend/internal/interfaces/http/middleware"
	"github.com/labstock/backend/internal/interfaces/http/router"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(cfg.Log)
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting labstock backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Database connection with a GORM logger backed by zap
	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level))
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()

	if err := db.Migrate(); err != nil {
		log.Fatal("Failed to run migrations", zap.Error(err))
	}
	log.Info("Database connected and migrated")

	// Repositories
	componentRepo := persistence.NewGormComponentRepository(db.DB)
	movementRepo := persistence.NewGormMovementRepository(db.DB)
	notificationRepo := persistence.NewGormNotificationRepository(db.DB)
	userRepo := persistence.NewGormUserRepository(db.DB)
	txScope := persistence.NewGormTransactionScope(db.DB)

	// Unread counter cache: Redis when configured, in-memory otherwise
	unreadCache := cache.NewUnreadCountCache(cfg.Redis, cfg.Cache, log)

	// Application services
	jwtService := auth.NewJWTService(cfg.JWT)
	authService := identityapp.NewAuthService(userRepo, jwtService, log)
	userService := identityapp.NewUserService(userRepo, log)
	componentService := componentapp.NewComponentService(componentRepo, userRepo)
	movementService := componentapp.NewMovementService(txScope, componentRepo, movementRepo, userRepo)
	notificationService := notificationapp.NewNotificationService(notificationRepo, userRepo, log)
	notificationService.SetUnreadCountCache(unreadCache)
	csvService := importexportapp.NewComponentCSVService(componentRepo, userRepo, log)

	// Alert engine, tuned from config
	alertEngine := alertapp.NewAlertEngine(componentRepo, movementRepo, notificationRepo, log)
	alertEngine.SetSuppressionPolicy(notification.NewSuppressionPolicyWithWindows(map[notification.Category]time.Duration{
		notification.CategoryLowStock: cfg.Alert.LowStockSuppression,
		notification.CategoryOldStock: cfg.Alert.OldStockSuppression,
	}))
	alertEngine.SetOldStockThresholdDays(cfg.Alert.OldStockThresholdDays)

	// Event bus: movement events feed the alert engine synchronously so
	// alerts exist before the movement request returns
	eventBus := event.NewInMemoryEventBus(log)
	stockBelowHandler := alertapp.NewStockBelowThresholdHandler(alertEngine, log)
	movementAppliedHandler := alertapp.NewMovementAppliedHandler(alertEngine, log)
	eventBus.Subscribe(stockBelowHandler)
	eventBus.Subscribe(movementAppliedHandler)
	log.Info("Event handlers registered",
		zap.Strings("stock_below_threshold_events", stockBelowHandler.EventTypes()),
		zap.Strings("movement_applied_events", movementAppliedHandler.EventTypes()),
	)

	if err := eventBus.Start(context.Background()); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}
	defer func() {
		if err := eventBus.Stop(context.Background()); err != nil {
			log.Error("Error stopping event bus", zap.Error(err))
		}
	}()

	componentService.SetEventPublisher(eventBus)
	movementService.SetEventPublisher(eventBus)
	userService.SetEventPublisher(eventBus)
	authService.SetEventPublisher(eventBus)
	csvService.SetEventPublisher(eventBus)

	// Background scans and cleanup
	alertScheduler := scheduler.NewAlertScheduler(alertEngine, notificationService, cfg.Scheduler, log)
	if err := alertScheduler.Start(context.Background()); err != nil {
		log.Fatal("Failed to start alert scheduler", zap.Error(err))
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Scheduler.ShutdownGrace)
		defer cancel()
		if err := alertScheduler.Stop(ctx); err != nil {
			log.Error("Error stopping alert scheduler", zap.Error(err))
		}
	}()

	// HTTP handlers
	systemHandler := handler.NewSystemHandler(db, cfg.App.Name, cfg.App.Env)
	authHandler := handler.NewAuthHandler(authService)
	componentHandler := handler.NewComponentHandler(componentService)
	movementHandler := handler.NewMovementHandler(movementService)
	notificationHandler := handler.NewNotificationHandler(notificationService, alertEngine)
	userHandler := handler.NewUserHandler(userService)
	importExportHandler := handler.NewImportExportHandler(csvService)

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	middleware.SetupValidator()

	engine := gin.New()
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.CORS(cfg.HTTP))
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	// Liveness probe outside API versioning and authentication
	engine.GET("/health", systemHandler.Health)

	r := router.NewRouter(engine, router.WithAPIVersion("v1"))
	r.Use(middleware.JWTAuthMiddlewareWithConfig(middleware.JWTMiddlewareConfig{
		JWTService: jwtService,
		SkipPaths: []string{
			"/api/v1/health",
			"/api/v1/auth/login",
		},
		Logger: log,
	}))
	r.Register(systemHandler).
		Register(authHandler).
		Register(componentHandler).
		Register(movementHandler).
		Register(notificationHandler).
		Register(userHandler).
		Register(importExportHandler)
	r.Setup()

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}
