package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/erp/returns/internal/infrastructure/config"
	"github.com/erp/returns/internal/infrastructure/logger"
	"github.com/erp/returns/internal/infrastructure/telemetry"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Database holds the GORM handle and the pooled *sql.DB beneath it
type Database struct {
	DB    *gorm.DB
	sqlDB *sql.DB
}

// Options controls logging and tracing of the database connection
type Options struct {
	Logger        *zap.Logger
	LogLevel      gormlogger.LogLevel
	SlowThreshold time.Duration
	// Tracing registers otelgorm and query timing callbacks when non-nil
	Tracing *telemetry.DBTracingPlugin
}

// NewDatabase opens a postgres connection with the pool settings of cfg
func NewDatabase(cfg *config.DatabaseConfig, opts Options) (*Database, error) {
	return OpenDatabase(postgres.Open(cfg.DSN()), cfg, opts)
}

// OpenDatabase opens a connection through dialector. Tests pass sqlmock or sqlite dialectors.
func OpenDatabase(dialector gorm.Dialector, cfg *config.DatabaseConfig, opts Options) (*Database, error) {
	zapLogger := opts.Logger
	if zapLogger == nil {
		zapLogger = zap.NewNop()
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:                 logger.NewGormLogger(zapLogger, opts.LogLevel, opts.SlowThreshold),
		SkipDefaultTransaction: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if opts.Tracing != nil {
		if err := opts.Tracing.RegisterOtelGorm(db); err != nil {
			return nil, fmt.Errorf("failed to register database tracing: %w", err)
		}
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	if cfg != nil {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
		sqlDB.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetime) * time.Minute)
		sqlDB.SetConnMaxIdleTime(time.Duration(cfg.ConnMaxIdleTime) * time.Minute)
	}

	return &Database{DB: db, sqlDB: sqlDB}, nil
}

// SQL returns the pooled connection shared with the sqlx read side
func (d *Database) SQL() *sql.DB {
	return d.sqlDB
}

// Ping checks if the database connection is alive
func (d *Database) Ping(ctx context.Context) error {
	return d.sqlDB.PingContext(ctx)
}

// Close closes the database connection
func (d *Database) Close() error {
	return d.sqlDB.Close()
}
