package persistence

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/erp/returns/internal/infrastructure/config"
	"github.com/erp/returns/internal/infrastructure/telemetry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	gormlogger "gorm.io/gorm/logger"
)

func TestOpenDatabase(t *testing.T) {
	t.Run("applies pool settings and pings", func(t *testing.T) {
		mockDB, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer mockDB.Close()

		cfg := &config.DatabaseConfig{MaxOpenConns: 7, MaxIdleConns: 3, ConnMaxLifetime: 5, ConnMaxIdleTime: 1}
		db, err := OpenDatabase(postgres.New(postgres.Config{Conn: mockDB, DriverName: "postgres"}), cfg, Options{
			Logger:   zap.NewNop(),
			LogLevel: gormlogger.Silent,
		})
		require.NoError(t, err)

		assert.Equal(t, 7, db.SQL().Stats().MaxOpenConnections)

		assert.NoError(t, db.Ping(context.Background()))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("registers tracing callbacks", func(t *testing.T) {
		cfg := telemetry.DefaultDBTracingConfig()
		cfg.Enabled = true
		plugin := telemetry.NewDBTracingPlugin(cfg, zap.NewNop())
		db, err := OpenDatabase(sqlite.Open(":memory:"), nil, Options{Tracing: plugin})
		require.NoError(t, err)
		defer db.Close()

		assert.NotNil(t, db.DB.Callback().Query().Get("otel_timing:after_query"))
	})
}
