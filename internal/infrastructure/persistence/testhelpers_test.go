package persistence

import (
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/erp/returns/internal/domain/inventory"
	"github.com/erp/returns/internal/domain/trade"
	"github.com/erp/returns/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupTestDB opens an in-memory SQLite database with the return workflow schema
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)

	// every connection of a :memory: database is a separate database
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(
		&models.CustomerModel{},
		&models.SalesOrderModel{},
		&models.SalesOrderItemModel{},
		&models.ReturnOrderModel{},
		&models.ReturnLineModel{},
		&models.TransferModel{},
		&models.StockMoveModel{},
	))
	return db
}

// newMockGormDB opens GORM over sqlmock with the postgres dialect
func newMockGormDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()

	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	}), &gorm.Config{SkipDefaultTransaction: true})
	require.NoError(t, err)

	return gormDB, mock, mockDB
}

// deliveredOrder is a sales order with one product fully shipped by one delivery
type deliveredOrder struct {
	order     *trade.SalesOrder
	delivery  *inventory.Transfer
	productID uuid.UUID
}

func newDeliveredOrder(t *testing.T, tenantID uuid.UUID, number string, qty int64) deliveredOrder {
	t.Helper()

	productID := uuid.New()
	order, err := trade.NewSalesOrder(tenantID, number, uuid.New(), "Azure Interior")
	require.NoError(t, err)
	_, err = order.AddItem(productID, "Large Desk", "DESK-L", decimal.NewFromInt(qty))
	require.NoError(t, err)
	require.NoError(t, order.RecordDelivery(productID, decimal.NewFromInt(qty)))

	delivery, err := inventory.NewDelivery(tenantID, order.ID, order.CustomerID, "WH/OUT/"+number, number)
	require.NoError(t, err)
	_, err = delivery.AddMove(productID, "Large Desk", decimal.NewFromInt(qty))
	require.NoError(t, err)
	require.NoError(t, delivery.Validate())
	delivery.ClearDomainEvents()

	return deliveredOrder{order: order, delivery: delivery, productID: productID}
}

func newDraftReturn(t *testing.T, order *trade.SalesOrder, name string, productID uuid.UUID, qty int64) *trade.ReturnOrder {
	t.Helper()

	ro, err := trade.NewReturnOrder(order.TenantID, name, order, uuid.New(), "Damaged in transit")
	require.NoError(t, err)
	_, err = ro.AddLine(productID, "Large Desk", decimal.NewFromInt(qty), "")
	require.NoError(t, err)
	return ro
}

// confirmWithFakeTransfers confirms ro with a fresh transfer ID per positive line
func confirmWithFakeTransfers(t *testing.T, ro *trade.ReturnOrder) {
	t.Helper()

	transfers := make(map[uuid.UUID]uuid.UUID)
	for _, line := range ro.PositiveLines() {
		transfers[line.ID] = uuid.New()
	}
	require.NoError(t, ro.Confirm(transfers))
}
