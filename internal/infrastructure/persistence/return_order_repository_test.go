package persistence

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/erp/returns/internal/domain/shared"
	"github.com/erp/returns/internal/domain/trade"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGormReturnOrderRepository_SaveAndFind(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormReturnOrderRepository(db)
	ctx := context.Background()
	tenantID := uuid.New()

	fixture := newDeliveredOrder(t, tenantID, "SO-2026-00001", 5)
	ro := newDraftReturn(t, fixture.order, "RET/2026/00001", fixture.productID, 2)
	require.NoError(t, repo.Save(ctx, ro))

	t.Run("loads order with lines", func(t *testing.T) {
		found, err := repo.FindByIDForTenant(ctx, tenantID, ro.ID)
		require.NoError(t, err)
		assert.Equal(t, "RET/2026/00001", found.Name)
		assert.Equal(t, trade.ReturnStatusDraft, found.Status)
		assert.Equal(t, fixture.order.ID, found.SalesOrderID)
		require.Len(t, found.Lines, 1)
		assert.True(t, found.Lines[0].Quantity.Equal(decimal.NewFromInt(2)))
		assert.Empty(t, found.GetDomainEvents())
	})

	t.Run("other tenant sees nothing", func(t *testing.T) {
		_, err := repo.FindByIDForTenant(ctx, uuid.New(), ro.ID)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("persists confirmation with transfer references", func(t *testing.T) {
		confirmWithFakeTransfers(t, ro)
		require.NoError(t, repo.Save(ctx, ro))

		found, err := repo.FindByIDForUpdate(ctx, tenantID, ro.ID)
		require.NoError(t, err)
		assert.Equal(t, trade.ReturnStatusConfirm, found.Status)
		assert.NotNil(t, found.ConfirmedAt)
		require.NotNil(t, found.Lines[0].TransferID)
		assert.Equal(t, ro.Version, found.Version)
	})
}

func TestGormReturnOrderRepository_GenerateReturnName(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormReturnOrderRepository(db)
	ctx := context.Background()
	tenantID := uuid.New()
	year := time.Now().Year()

	name, err := repo.GenerateReturnName(ctx, tenantID)
	require.NoError(t, err)
	assert.Equal(t, fmt.Sprintf("RET/%d/00001", year), name)

	fixture := newDeliveredOrder(t, tenantID, "SO-2026-00001", 5)
	require.NoError(t, repo.Save(ctx, newDraftReturn(t, fixture.order, fmt.Sprintf("RET/%d/00009", year), fixture.productID, 1)))

	name, err = repo.GenerateReturnName(ctx, tenantID)
	require.NoError(t, err)
	assert.Equal(t, fmt.Sprintf("RET/%d/00010", year), name)

	name, err = repo.GenerateReturnName(ctx, uuid.New())
	require.NoError(t, err)
	assert.Equal(t, fmt.Sprintf("RET/%d/00001", year), name, "sequence is per tenant")
}

func TestGormReturnOrderRepository_SumClaimedQuantityByProduct(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormReturnOrderRepository(db)
	ctx := context.Background()
	tenantID := uuid.New()

	fixture := newDeliveredOrder(t, tenantID, "SO-2026-00001", 10)
	order, productID := fixture.order, fixture.productID

	draft := newDraftReturn(t, order, "RET/2026/00001", productID, 2)
	require.NoError(t, repo.Save(ctx, draft))

	cancelled := newDraftReturn(t, order, "RET/2026/00002", productID, 5)
	require.NoError(t, cancelled.Cancel("customer changed mind"))
	require.NoError(t, repo.Save(ctx, cancelled))

	refunded := newDraftReturn(t, order, "RET/2026/00003", productID, 1)
	require.NoError(t, refunded.SetToRefund(true))
	confirmWithFakeTransfers(t, refunded)
	require.NoError(t, repo.Save(ctx, refunded))

	confirmed := newDraftReturn(t, order, "RET/2026/00004", productID, 1)
	confirmWithFakeTransfers(t, confirmed)
	require.NoError(t, repo.Save(ctx, confirmed))

	other := newDeliveredOrder(t, tenantID, "SO-2026-00002", 4)
	require.NoError(t, repo.Save(ctx, newDraftReturn(t, other.order, "RET/2026/00005", productID, 4)))

	claimed, err := repo.SumClaimedQuantityByProduct(ctx, tenantID, order.ID)
	require.NoError(t, err)
	require.Len(t, claimed, 1)
	assert.True(t, claimed[productID].Equal(decimal.NewFromInt(3)),
		"draft 2 + confirmed 1; cancelled and refunded orders hold no claim, got %s", claimed[productID])
}

func TestGormReturnOrderRepository_SumClaimedQuantityByProduct_CancelledAfterReceipt(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormReturnOrderRepository(db)
	transfers := NewGormTransferRepository(db)
	ctx := context.Background()
	tenantID := uuid.New()

	// cancelReceived confirms a 3+1 unit return, receives the 3-unit transfer,
	// cancels the other one, then cancels the order
	cancelReceived := func(t *testing.T, fixture deliveredOrder, toRefund bool) {
		t.Helper()
		require.NoError(t, transfers.Save(ctx, fixture.delivery))

		ro := newDraftReturn(t, fixture.order, "RET/2026/"+fixture.order.OrderNumber, fixture.productID, 3)
		_, err := ro.AddLine(fixture.productID, "Large Desk", decimal.NewFromInt(1), "")
		require.NoError(t, err)
		require.NoError(t, ro.SetToRefund(toRefund))

		received := newReverse(t, fixture, ro.ID, "WH/RET/"+fixture.order.OrderNumber+"/1", 3)
		dropped := newReverse(t, fixture, ro.ID, "WH/RET/"+fixture.order.OrderNumber+"/2", 1)
		require.NoError(t, ro.Confirm(map[uuid.UUID]uuid.UUID{
			ro.Lines[0].ID: received.ID,
			ro.Lines[1].ID: dropped.ID,
		}))
		require.NoError(t, received.Validate())
		require.NoError(t, dropped.Cancel())
		require.NoError(t, transfers.Save(ctx, received))
		require.NoError(t, transfers.Save(ctx, dropped))

		require.NoError(t, ro.Cancel("warehouse closed the case"))
		require.NoError(t, repo.Save(ctx, ro))
	}

	t.Run("received units stay claimed", func(t *testing.T) {
		fixture := newDeliveredOrder(t, tenantID, "SO-2026-00011", 10)
		cancelReceived(t, fixture, false)

		claimed, err := repo.SumClaimedQuantityByProduct(ctx, tenantID, fixture.order.ID)
		require.NoError(t, err)
		assert.True(t, claimed[fixture.productID].Equal(decimal.NewFromInt(3)),
			"the received line keeps its claim, got %s", claimed[fixture.productID])

		rejection := trade.ValidateReturnQuantity(fixture.order, fixture.productID, decimal.NewFromInt(10), claimed[fixture.productID])
		require.NotNil(t, rejection)
		assert.Equal(t, trade.ReasonExceedsDeliveredQuantity, rejection.Reason)
	})

	t.Run("refunded lines are not counted twice", func(t *testing.T) {
		fixture := newDeliveredOrder(t, tenantID, "SO-2026-00012", 10)
		cancelReceived(t, fixture, true)

		claimed, err := repo.SumClaimedQuantityByProduct(ctx, tenantID, fixture.order.ID)
		require.NoError(t, err)
		assert.Empty(t, claimed, "delivered quantity already carries the received units")
	})
}

func TestGormReturnOrderRepository_Listing(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormReturnOrderRepository(db)
	ctx := context.Background()
	tenantID := uuid.New()

	fixture := newDeliveredOrder(t, tenantID, "SO-2026-00001", 10)
	first := newDraftReturn(t, fixture.order, "RET/2026/00001", fixture.productID, 1)
	second := newDraftReturn(t, fixture.order, "RET/2026/00002", fixture.productID, 1)
	require.NoError(t, second.Cancel(""))
	archived := newDraftReturn(t, fixture.order, "RET/2026/00003", fixture.productID, 1)
	require.NoError(t, archived.Cancel(""))
	require.NoError(t, archived.Archive())
	for _, ro := range []*trade.ReturnOrder{first, second, archived} {
		require.NoError(t, repo.Save(ctx, ro))
	}

	t.Run("filters by status", func(t *testing.T) {
		filter := shared.DefaultFilter()
		filter.Filters["status"] = string(trade.ReturnStatusCancelled)

		orders, err := repo.FindAllForTenant(ctx, tenantID, filter)
		require.NoError(t, err)
		require.Len(t, orders, 1)
		assert.Equal(t, second.ID, orders[0].ID)

		total, err := repo.CountForTenant(ctx, tenantID, filter)
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
	})

	t.Run("searches by name and sorts", func(t *testing.T) {
		filter := shared.DefaultFilter()
		filter.Search = "ret/2026"
		filter.OrderBy = "name"
		filter.OrderDir = "asc"

		orders, err := repo.FindAllForTenant(ctx, tenantID, filter)
		require.NoError(t, err)
		require.Len(t, orders, 2)
		assert.Equal(t, "RET/2026/00001", orders[0].Name)
		assert.Len(t, orders[0].Lines, 1)
	})

	t.Run("counts active orders of a sales order", func(t *testing.T) {
		count, err := repo.CountBySalesOrder(ctx, tenantID, fixture.order.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(2), count)
	})
}

func TestGormReturnOrderRepository_FindByIDForUpdate_LocksRow(t *testing.T) {
	gormDB, mock, mockDB := newMockGormDB(t)
	defer mockDB.Close()
	repo := NewGormReturnOrderRepository(gormDB)

	tenantID, id := uuid.New(), uuid.New()
	mock.ExpectQuery(`SELECT \* FROM "return_orders" WHERE tenant_id = \$1 AND id = \$2 .* FOR UPDATE`).
		WithArgs(tenantID, id, 1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "tenant_id", "name", "status", "active"}).
			AddRow(id, tenantID, "RET/2026/00001", "draft", true))
	mock.ExpectQuery(`SELECT \* FROM "return_lines" WHERE "return_lines"."return_order_id" = \$1`).
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows([]string{"id", "return_order_id"}))

	found, err := repo.FindByIDForUpdate(context.Background(), tenantID, id)
	require.NoError(t, err)
	assert.Equal(t, "RET/2026/00001", found.Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}
