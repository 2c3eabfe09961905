package config

import (
	"context"
	"fmt"
	"time"

	"customer-feedback-hub/backend/pkg/logger"
	"customer-feedback-hub/backend/pkg/secrets"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// NewDB creates a new database connection using configuration settings
func NewDB(ctx context.Context, cfg *Config) (*gorm.DB, error) {
	dialector, err := dialectorFor(ctx, cfg)
	if err != nil {
		return nil, err
	}

	// Configure GORM
	gormConfig := &gorm.Config{}

	// Set logging level based on application environment
	if cfg.Server.Env == "development" {
		gormConfig.Logger = gormlogger.Default.LogMode(gormlogger.Info)
	} else {
		gormConfig.Logger = gormlogger.Default.LogMode(gormlogger.Error)
	}

	// Add retry mechanism
	var db *gorm.DB
	retries := cfg.Database.Retries
	if retries < 1 {
		retries = 1
	}

	for i := 0; i < retries; i++ {
		db, err = gorm.Open(dialector, gormConfig)
		if err == nil {
			break
		}
		if i == retries-1 {
			break
		}

		logger.GetGlobal().Warn("Failed to connect to database, retrying",
			"attempt", i+1,
			"retry_in", cfg.Database.RetryDelay.String(),
			"error", err.Error(),
		)
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(cfg.Database.RetryDelay):
		}
	}

	if err != nil {
		return nil, fmt.Errorf("failed to connect to database after %d retries: %w", retries, err)
	}

	// Configure connection pool
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database connection: %w", err)
	}

	if cfg.Database.Driver == DriverSQLite {
		// sqlite serialises writers; a single connection avoids SQLITE_BUSY
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxIdleConns(10)
		sqlDB.SetMaxOpenConns(cfg.Database.MaxConns)
		sqlDB.SetConnMaxLifetime(time.Hour)
		sqlDB.SetConnMaxIdleTime(10 * time.Minute)
	}

	return db, nil
}

func dialectorFor(ctx context.Context, cfg *Config) (gorm.Dialector, error) {
	switch cfg.Database.Driver {
	case DriverSQLite, "":
		return sqlite.Open(cfg.Database.SQLitePath), nil
	case DriverPostgres:
		password := secrets.GetSecretWithDefault(ctx, secrets.KeyDBPassword, cfg.Database.Password)
		dsn := fmt.Sprintf(
			"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
			cfg.Database.Host,
			cfg.Database.Port,
			cfg.Database.User,
			password,
			cfg.Database.Name,
			cfg.Database.SSLMode,
		)
		return postgres.Open(dsn), nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Database.Driver)
	}
}

// CloseDB releases the underlying connection pool
func CloseDB(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database connection: %w", err)
	}
	return sqlDB.Close()
}
