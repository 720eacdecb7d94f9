package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/haritsetu/backend/internal/config"
	"github.com/haritsetu/backend/internal/controllers"
	"github.com/haritsetu/backend/internal/db"
	"github.com/haritsetu/backend/internal/events"
	"github.com/haritsetu/backend/internal/logger"
	"github.com/haritsetu/backend/internal/middleware"
	"github.com/haritsetu/backend/internal/routes"
	"github.com/haritsetu/backend/internal/seed"
	"github.com/haritsetu/backend/internal/services"
)

func main() {
	cfg, err := config.Load("config")
	if err != nil {
		logger.Fatal("Failed to load configuration", map[string]interface{}{"error": err.Error()})
	}

	// Initialize logger first
	logger.Initialize(cfg.Log.Level, cfg.Log.File)

	if err := cfg.Validate(); err != nil {
		logger.Fatal("Invalid configuration", map[string]interface{}{"error": err.Error()})
	}

	// Connect to database
	st, err := db.Open(cfg.Database)
	if err != nil {
		logger.Fatal("Failed to open store", map[string]interface{}{"error": err.Error()})
	}
	defer st.Close()

	connectCtx, cancelConnect := context.WithTimeout(context.Background(), 10*time.Second)
	publisher, err := events.Connect(connectCtx, cfg.Redis)
	cancelConnect()
	if err != nil {
		// Events are best effort; keep serving without them.
		logger.WithError(err, "events").Warn("Redis unavailable, complaint events disabled")
		publisher = events.NopPublisher{}
	}
	defer publisher.Close()

	// Seed database with initial data if in development
	if cfg.IsDevelopment() {
		logger.Info("Seeding database with initial data...", nil)
		if data, err := seed.LoadUsers(""); err != nil {
			logger.Warn("Failed to load seed users", map[string]interface{}{"error": err.Error()})
		} else if _, err := seed.Users(context.Background(), st, data); err != nil {
			logger.Warn("Failed to seed database", map[string]interface{}{"error": err.Error()})
		}
	}

	// Set Gin mode
	if cfg.Server.GinMode == gin.ReleaseMode {
		gin.SetMode(gin.ReleaseMode)
	}

	// Create router without default middleware
	r := gin.New()

	r.RedirectTrailingSlash = false
	r.RedirectFixedPath = false

	r.Use(middleware.RequestID())
	r.Use(middleware.CustomLoggerMiddleware())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.Server.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", middleware.RequestIDHeader},
		ExposeHeaders:    []string{middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           24 * time.Hour,
	}))
	r.Use(gin.Recovery())

	var redisPinger controllers.Pinger
	if p, ok := publisher.(controllers.Pinger); ok {
		redisPinger = p
	}

	grievances := services.NewGrievanceService(st, publisher, services.WithLockClosed(cfg.Workflow.LockClosed))
	routes.SetupRoutes(r, routes.Dependencies{
		Users:      st,
		Grievances: grievances,
		Health:     controllers.NewHealthController(st, redisPinger),
		JWTSecret:  cfg.JWT.Secret,
	})

	// Create HTTP server
	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: r,
	}

	logger.Info("Starting HaritSetu grievance server", map[string]interface{}{
		"port":        cfg.Server.Port,
		"gin_mode":    gin.Mode(),
		"db_driver":   cfg.Database.Driver,
		"lock_closed": cfg.Workflow.LockClosed,
	})

	// Start server in a goroutine
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}()

	// Wait for shutdown signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)
	<-sigChan
	logger.Info("Shutting down server gracefully...", nil)

	// Create a context with timeout for graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", map[string]interface{}{
			"error": err.Error(),
		})
	} else {
		logger.Info("Server exited gracefully", nil)
	}
}
