package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/evanoh/storepulse-backend/config"
	"github.com/evanoh/storepulse-backend/internal/app/controller"
	"github.com/evanoh/storepulse-backend/internal/app/repository"
	"github.com/evanoh/storepulse-backend/internal/app/service"
	"github.com/evanoh/storepulse-backend/internal/db"
	"github.com/evanoh/storepulse-backend/internal/middleware"
	"github.com/evanoh/storepulse-backend/internal/router"
	"github.com/evanoh/storepulse-backend/internal/scheduler"
	"github.com/evanoh/storepulse-backend/internal/storage"
	ws "github.com/evanoh/storepulse-backend/internal/websocket"
	"github.com/evanoh/storepulse-backend/pkg/logger"
	"github.com/evanoh/storepulse-backend/pkg/redis"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", err)
	}

	// Initialize logger
	logLevel := "info"
	if cfg.Server.Environment == "development" {
		logLevel = "debug"
	}
	logger.Initialize(logger.Config{
		Level:       logLevel,
		Format:      "console", // Use "json" for production
		EnableColor: true,
	})

	logger.Info("Starting StorePulse Backend Server", map[string]interface{}{
		"environment": cfg.Server.Environment,
		"port":        cfg.Server.Port,
		"log_level":   logLevel,
	})

	// Initialize database
	if err := db.Initialize(&cfg.Database); err != nil {
		logger.Fatal("Failed to initialize database", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error("Failed to close database connection", err)
		}
	}()

	// Run migrations and seed the bootstrap admin account
	if err := db.Migrate(&cfg.Admin); err != nil {
		logger.Fatal("Failed to run migrations", err)
	}

	// Redis is optional; without it dashboard counts hit the database.
	if err := redis.Init(&cfg.Redis); err != nil {
		logger.Warn("Redis unavailable, dashboard caching disabled", map[string]interface{}{
			"error": err.Error(),
		})
	} else {
		defer redis.Close()
	}

	// Live rating feed
	hub := ws.NewHub()
	go hub.Run()

	// Initialize repositories
	userRepo := repository.NewUserRepository(db.GetDB())
	storeRepo := repository.NewStoreRepository(db.GetDB())
	ratingRepo := repository.NewRatingRepository(db.GetDB())

	// Initialize services
	authService := service.NewAuthService(
		userRepo,
		cfg.JWT.Secret,
		cfg.JWT.AccessTokenExpiry,
		cfg.JWT.RefreshTokenExpiry,
	)
	adminService := service.NewAdminService(userRepo, storeRepo, ratingRepo)
	storeService := service.NewStoreService(storeRepo, ratingRepo)
	ratingService := service.NewRatingService(ratingRepo, storeRepo, hub)
	ownerService := service.NewOwnerService(storeRepo, ratingRepo)

	// Initialize storage
	s3Storage := storage.NewS3Storage(
		cfg.S3.Region,
		cfg.S3.Bucket,
		cfg.S3.AccessKeyID,
		cfg.S3.SecretAccessKey,
		cfg.S3.BaseURL,
	)

	// Initialize controllers
	authController := controller.NewAuthController(authService)
	adminController := controller.NewAdminController(adminService)
	storeController := controller.NewStoreController(storeService)
	ratingController := controller.NewRatingController(ratingService)
	ownerController := controller.NewOwnerController(ownerService, hub, cfg.CORS.AllowedOrigins)
	uploadController := controller.NewUploadController(s3Storage)

	// Initialize middleware
	authMiddleware := middleware.NewAuthMiddleware(cfg.JWT.Secret)

	// Setup router
	r := router.NewRouter(
		authController,
		adminController,
		storeController,
		ratingController,
		ownerController,
		uploadController,
		authMiddleware,
		cfg,
	)
	engine := r.Setup()

	// Nightly average reconciliation
	ratingScheduler := scheduler.NewRatingScheduler(ratingService)
	if err := ratingScheduler.Start(); err != nil {
		logger.Error("Failed to start rating scheduler", err)
	}
	defer ratingScheduler.Stop()

	// Start server in a goroutine
	go func() {
		addr := fmt.Sprintf(":%s", cfg.Server.Port)
		logger.Info("Server started successfully", map[string]interface{}{
			"address": addr,
			"pid":     os.Getpid(),
		})
		if err := engine.Run(addr); err != nil {
			logger.Fatal("Failed to start server", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server gracefully...")
	logger.Info("Server stopped successfully")
}
