package db

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/haritsetu/backend/internal/config"
	applog "github.com/haritsetu/backend/internal/logger"
	"github.com/haritsetu/backend/internal/models"
	"github.com/haritsetu/backend/internal/store"
)

// Connect opens the Postgres pool described by cfg.
func Connect(cfg config.DatabaseConfig) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Error), // Reduce logging to avoid issues
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	applog.Info("Database connected successfully", map[string]interface{}{
		"host": cfg.Host,
		"name": cfg.Name,
	})
	return db, nil
}

// AutoMigrate creates or updates the tables, parents first.
func AutoMigrate(db *gorm.DB) error {
	for _, model := range []interface{}{
		&models.User{},
		&models.Complaint{},
		&models.ComplaintUpdate{},
	} {
		if err := db.AutoMigrate(model); err != nil {
			return fmt.Errorf("migration of %T failed: %w", model, err)
		}
		applog.Debug("Table migrated", map[string]interface{}{"model": fmt.Sprintf("%T", model)})
	}

	applog.Info("All database migrations completed successfully", nil)
	return nil
}

// Open returns the Store selected by cfg.Driver. Postgres connections are
// migrated before they are handed out.
func Open(cfg config.DatabaseConfig) (store.Store, error) {
	switch cfg.Driver {
	case config.DriverMemory:
		applog.Warn("Using in-memory store; data is lost on restart", nil)
		return store.NewMemoryStore(), nil
	case config.DriverPostgres, "":
		db, err := Connect(cfg)
		if err != nil {
			return nil, err
		}
		if err := AutoMigrate(db); err != nil {
			return nil, err
		}
		return store.NewGormStore(db), nil
	default:
		return nil, fmt.Errorf("unknown database driver %q", cfg.Driver)
	}
}
