package main

import (
	"log"

	"github.com/haritsetu/backend/internal/config"
	"github.com/haritsetu/backend/internal/db"
	"github.com/haritsetu/backend/internal/logger"
)

func main() {
	cfg, err := config.Load("config")
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	logger.Initialize(cfg.Log.Level, cfg.Log.File)

	if cfg.Database.Driver == config.DriverMemory {
		log.Fatal("DB_DRIVER=memory has no schema to migrate")
	}

	// Connect to database
	gormDB, err := db.Connect(cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Run migrations
	log.Println("Running database migrations...")
	if err := db.AutoMigrate(gormDB); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}

	log.Println("✅ Database migrations completed successfully!")
}
