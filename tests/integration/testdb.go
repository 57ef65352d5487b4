// Package integration runs the return workflow against a real PostgreSQL
// database started with testcontainers.
package integration

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/erp/returns/internal/domain/inventory"
	"github.com/erp/returns/internal/domain/partner"
	"github.com/erp/returns/internal/domain/trade"
	"github.com/erp/returns/internal/infrastructure/migration"
	"github.com/erp/returns/internal/infrastructure/persistence"
	"github.com/google/uuid"
	_ "github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
	gormpostgres "gorm.io/driver/postgres"
	gormlogger "gorm.io/gorm/logger"
)

// TestDB is a migrated PostgreSQL database in its own container
type TestDB struct {
	*persistence.Database
	Container testcontainers.Container
	DSN       string
	t         *testing.T
}

// NewTestDB starts a fresh PostgreSQL container and applies every migration
func NewTestDB(t *testing.T) *TestDB {
	t.Helper()

	ctx := context.Background()

	container, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("erp_returns_test"),
		tcpostgres.WithUsername("postgres"),
		tcpostgres.WithPassword("admin123"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err, "Failed to start PostgreSQL container")

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err, "Failed to get connection string")

	runMigrations(t, dsn)

	logLevel := gormlogger.Silent
	if os.Getenv("TEST_DB_DEBUG") != "" {
		logLevel = gormlogger.Info
	}
	db, err := persistence.OpenDatabase(gormpostgres.Open(dsn), nil, persistence.Options{LogLevel: logLevel})
	require.NoError(t, err, "Failed to connect to database")

	testDB := &TestDB{Database: db, Container: container, DSN: dsn, t: t}
	t.Cleanup(testDB.Close)
	return testDB
}

// Close closes the connection pool and terminates the container
func (tdb *TestDB) Close() {
	if tdb.Database != nil {
		_ = tdb.Database.Close()
	}
	if tdb.Container != nil {
		if err := tdb.Container.Terminate(context.Background()); err != nil {
			tdb.t.Logf("Warning: Failed to terminate container: %v", err)
		}
	}
}

// runMigrations applies migrations over a dedicated connection; closing the
// migrator closes it.
func runMigrations(t *testing.T, dsn string) {
	t.Helper()

	migrationsPath := findMigrationsPath()
	require.NotEmpty(t, migrationsPath, "Could not find migrations directory")

	sqlDB, err := sql.Open("postgres", dsn)
	require.NoError(t, err)

	m, err := migration.New(sqlDB, migrationsPath, zap.NewNop())
	require.NoError(t, err, "Failed to create migrator")
	defer m.Close()

	require.NoError(t, m.Up(), "Failed to run migrations")
}

func findMigrationsPath() string {
	_, filename, _, ok := runtime.Caller(0)
	if ok {
		path := filepath.Join(filepath.Dir(filename), "..", "..", "migrations")
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	if wd, err := os.Getwd(); err == nil {
		for _, candidate := range []string{
			filepath.Join(wd, "migrations"),
			filepath.Join(wd, "..", "..", "migrations"),
		} {
			if _, err := os.Stat(candidate); err == nil {
				return candidate
			}
		}
	}
	return ""
}

// deliveredOrder is a shipped sales order with its completed delivery
type deliveredOrder struct {
	Customer   *partner.Customer
	SalesOrder *trade.SalesOrder
	Delivery   *inventory.Transfer
	ProductID  uuid.UUID
}

// CreateDeliveredOrder seeds a customer, a sales order for quantity units of
// one product and a validated delivery shipping all of them.
func (tdb *TestDB) CreateDeliveredOrder(tenantID uuid.UUID, quantity int64) deliveredOrder {
	tdb.t.Helper()
	ctx := context.Background()

	suffix := uuid.NewString()[:8]
	customer, err := partner.NewCustomer(tenantID, "C-"+suffix, "Azure Interior")
	require.NoError(tdb.t, err)
	require.NoError(tdb.t, persistence.NewGormCustomerRepository(tdb.DB).Save(ctx, customer))

	productID := uuid.New()
	qty := decimal.NewFromInt(quantity)

	so, err := trade.NewSalesOrder(tenantID, "SO-"+suffix, customer.ID, customer.Name)
	require.NoError(tdb.t, err)
	_, err = so.AddItem(productID, "Desk Lamp", "LAMP-01", qty)
	require.NoError(tdb.t, err)
	require.NoError(tdb.t, so.RecordDelivery(productID, qty))
	require.NoError(tdb.t, persistence.NewGormSalesOrderRepository(tdb.DB).Save(ctx, so))

	delivery, err := inventory.NewDelivery(tenantID, so.ID, customer.ID, "WH/OUT/"+suffix, so.OrderNumber)
	require.NoError(tdb.t, err)
	_, err = delivery.AddMove(productID, "Desk Lamp", qty)
	require.NoError(tdb.t, err)
	require.NoError(tdb.t, delivery.Validate())
	require.NoError(tdb.t, persistence.NewGormTransferRepository(tdb.DB).Save(ctx, delivery))

	return deliveredOrder{Customer: customer, SalesOrder: so, Delivery: delivery, ProductID: productID}
}
