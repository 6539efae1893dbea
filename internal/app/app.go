package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"rentproof_backend/database"
	"rentproof_backend/internal/auth"
	"rentproof_backend/internal/config"
	"rentproof_backend/internal/handlers"
	"rentproof_backend/internal/logger"
	"rentproof_backend/internal/middleware"
	"rentproof_backend/internal/pending"
	"rentproof_backend/internal/repositories"
	"rentproof_backend/internal/routes"
	"rentproof_backend/internal/services"
	"rentproof_backend/internal/storage"
	"rentproof_backend/internal/validator"
	"rentproof_backend/internal/workers"
	"rentproof_backend/pkg/apperrors"
	"rentproof_backend/ws"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// App - собранное приложение: роутер и фоновые процессы.
type App struct {
	Router   *gin.Engine
	Services *services.ServiceContainer

	cfg         *config.Config
	wsManager   *ws.WebSocketManager
	returnWatch *workers.ReturnWatchWorker
}

func Run() {
	config.LoadConfig()
	cfg := config.AppConfig
	logger.Init(cfg.Server.Env)
	apperrors.SetDebug(cfg.Server.Env == "development")
	logger.Info("Logger initialized", "env", cfg.Server.Env)

	logger.Info("Connecting to database...")
	gormDB, err := database.Connect(cfg.Database.DSN, cfg.Database.MaxOpenConns, cfg.Server.Env == "development")
	if err != nil {
		logger.Fatal("Database unavailable", "error", err)
	}
	logger.Info("Database connected")

	if cfg.Database.AutoMigrate {
		if err := database.AutoMigrate(gormDB); err != nil {
			logger.Fatal("Migration failed", "error", err)
		}
	}

	application, err := New(cfg, gormDB)
	if err != nil {
		logger.Fatal("Failed to build application", "error", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	application.Start(ctx)

	address := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:              address,
		Handler:           application.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("Server starting", "address", address)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server startup error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Graceful shutdown failed", "error", err)
	}
	if sqlDB, err := gormDB.DB(); err == nil {
		_ = sqlDB.Close()
	}
	logger.Info("Server stopped")
}

// New собирает зависимости. Nothing runs until Start.
func New(cfg *config.Config, gormDB *gorm.DB) (*App, error) {
	storageInstance, err := storage.NewStorage(storage.Config{
		Type:       cfg.Storage.Type,
		BasePath:   cfg.Storage.BasePath,
		BaseURL:    cfg.Storage.BaseURL,
		Bucket:     cfg.Storage.Bucket,
		Region:     cfg.Storage.Region,
		AccessKey:  cfg.Storage.AccessKey,
		SecretKey:  cfg.Storage.SecretKey,
		Endpoint:   cfg.Storage.Endpoint,
		UseSSL:     cfg.Storage.UseSSL,
		PublicRead: cfg.Storage.PublicRead,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}
	logger.Info("Storage initialized", "type", cfg.Storage.Type)

	wsManager := ws.NewWebSocketManager()

	// 1. Сервисы
	serviceContainer := initializeServices(cfg, storageInstance, wsManager)

	// 2. Хэндлеры
	appHandlers := initializeHandlers(cfg, serviceContainer, wsManager)

	// 3. Gin + маршруты
	ginRouter := initializeGinRouter(cfg, gormDB)
	routes.RegisterRoutes(ginRouter, appHandlers, auth.NewVerifier(cfg.JWT.Secret, cfg.JWT.Issuer))

	returnWatch := workers.NewReturnWatchWorker(
		gormDB,
		repositories.NewRentalRepository(),
		cfg.Rental.ReturnEscalationAfter,
		cfg.Rental.EscalationCheckInterval,
	)

	return &App{
		Router:      ginRouter,
		Services:    serviceContainer,
		cfg:         cfg,
		wsManager:   wsManager,
		returnWatch: returnWatch,
	}, nil
}

// Start запускает websocket-хаб, janitor ожиданий и воркер возвратов до отмены ctx.
func (a *App) Start(ctx context.Context) {
	go a.wsManager.Run(ctx)
	go a.Services.StatusWaiters.Run(ctx, a.cfg.Realtime.JanitorInterval)
	a.returnWatch.Start(ctx)
}

func initializeServices(cfg *config.Config, storageInstance storage.Storage, wsManager *ws.WebSocketManager) *services.ServiceContainer {
	// --- Репозитории ---
	rentalRepo := repositories.NewRentalRepository()
	evidenceRepo := repositories.NewEvidenceRepository()
	reviewRepo := repositories.NewReviewRepository()

	// --- Сервисы ---
	waiters := pending.New[services.StatusEvent]()
	notifier := services.Notifiers{
		services.NewStatusWaiters(waiters),
		wsManager,
	}

	evaluator := services.NewEvidenceEvaluator(evidenceRepo)
	statusEngine := services.NewRentalStatusService(rentalRepo, evaluator, notifier, cfg.Rental.StatusWriteAttempts)
	evidenceService := services.NewEvidenceService(rentalRepo, evidenceRepo, statusEngine, storageInstance, services.UploadLimits{
		MaxSize:      cfg.Upload.MaxSize,
		AllowedTypes: cfg.Upload.AllowedTypes,
	})
	rentalService := services.NewRentalService(rentalRepo, evaluator, statusEngine, waiters, cfg.Realtime.MaxWait)
	reviewGate := services.NewReviewGate(rentalRepo, reviewRepo, evaluator, services.NewReviewValidator(rentalRepo))
	reviewService := services.NewReviewService(rentalRepo, reviewRepo, reviewGate)

	return &services.ServiceContainer{
		RentalService:       rentalService,
		RentalStatusService: statusEngine,
		EvidenceService:     evidenceService,
		EvidenceEvaluator:   evaluator,
		ReviewService:       reviewService,
		ReviewGate:          reviewGate,
		StatusWaiters:       waiters,
		Storage:             storageInstance,
	}
}

func initializeHandlers(cfg *config.Config, services *services.ServiceContainer, wsManager *ws.WebSocketManager) *handlers.AppHandlers {
	baseHandler := handlers.NewBaseHandler(validator.New())

	return &handlers.AppHandlers{
		RentalHandler:   handlers.NewRentalHandler(baseHandler, services.RentalService),
		EvidenceHandler: handlers.NewEvidenceHandler(baseHandler, services.EvidenceService),
		ReviewHandler:   handlers.NewReviewHandler(baseHandler, services.ReviewService),
		WSHandler:       handlers.NewWSHandler(baseHandler, wsManager, services.RentalService, cfg.Server.AllowedOrigins),
	}
}

func initializeGinRouter(cfg *config.Config, db *gorm.DB) *gin.Engine {
	if cfg.Server.Env != "development" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggingMiddleware())
	router.Use(middleware.CORSMiddleware(cfg.Server.AllowedOrigins))
	router.Use(middleware.DBMiddleware(db))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	return router
}
