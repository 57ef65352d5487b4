package persistence

import (
	"context"
	"testing"

	"github.com/erp/returns/internal/domain/inventory"
	"github.com/erp/returns/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newReverse(t *testing.T, fixture deliveredOrder, returnOrderID uuid.UUID, name string, qty int64) *inventory.Transfer {
	t.Helper()

	reverse, err := inventory.NewReverseTransfer(fixture.delivery, &fixture.delivery.Moves[0], inventory.ReverseTransferParams{
		Name:            name,
		ReturnOrderID:   returnOrderID,
		ReturnOrderName: "RET/2026/00001",
		Quantity:        decimal.NewFromInt(qty),
	})
	require.NoError(t, err)
	return reverse
}

func TestGormTransferRepository_RoundTrip(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormTransferRepository(db)
	ctx := context.Background()
	tenantID := uuid.New()

	fixture := newDeliveredOrder(t, tenantID, "SO-2026-00001", 3)
	require.NoError(t, repo.Save(ctx, fixture.delivery))

	returnOrderID := uuid.New()
	reverse := newReverse(t, fixture, returnOrderID, "WH/RET/00001", 2)
	require.NoError(t, repo.Save(ctx, reverse))

	t.Run("delivery keeps its role and moves", func(t *testing.T) {
		found, err := repo.FindByIDForTenant(ctx, tenantID, fixture.delivery.ID)
		require.NoError(t, err)
		assert.True(t, found.Role.IsDelivery())
		assert.Equal(t, inventory.TransferStatusDone, found.Status)
		require.Len(t, found.Moves, 1)
		assert.True(t, found.Moves[0].QuantityDone.Equal(decimal.NewFromInt(3)))
	})

	t.Run("reverse transfer points at its return order", func(t *testing.T) {
		found, err := repo.FindByIDForUpdate(ctx, tenantID, reverse.ID)
		require.NoError(t, err)
		require.True(t, found.Role.IsReturn())
		ref, ok := found.Role.ReturnOrderID()
		require.True(t, ok)
		assert.Equal(t, returnOrderID, ref)
		require.Len(t, found.Moves, 1)
		require.NotNil(t, found.Moves[0].OriginMoveID)
		assert.Equal(t, fixture.delivery.Moves[0].ID, *found.Moves[0].OriginMoveID)
	})

	t.Run("not found in another tenant", func(t *testing.T) {
		_, err := repo.FindByIDForTenant(ctx, uuid.New(), reverse.ID)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestGormTransferRepository_Queries(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormTransferRepository(db)
	ctx := context.Background()
	tenantID := uuid.New()

	fixture := newDeliveredOrder(t, tenantID, "SO-2026-00001", 5)
	returnOrderID := uuid.New()
	require.NoError(t, fixture.delivery.MarkReturnSource(returnOrderID))
	require.NoError(t, repo.Save(ctx, fixture.delivery))

	open, err := inventory.NewDelivery(tenantID, fixture.order.ID, fixture.order.CustomerID, "WH/OUT/00002", "SO-2026-00001")
	require.NoError(t, err)
	_, err = open.AddMove(fixture.productID, "Large Desk", decimal.NewFromInt(1))
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, open))

	first := newReverse(t, fixture, returnOrderID, "WH/RET/00001", 2)
	require.NoError(t, repo.Save(ctx, first))
	second := newReverse(t, fixture, returnOrderID, "WH/RET/00002", 1)
	require.NoError(t, repo.Save(ctx, second))
	cancelled := newReverse(t, fixture, uuid.New(), "WH/RET/00003", 2)
	require.NoError(t, cancelled.Cancel())
	require.NoError(t, repo.Save(ctx, cancelled))

	t.Run("done deliveries of a sales order", func(t *testing.T) {
		deliveries, err := repo.FindDoneDeliveriesBySalesOrder(ctx, tenantID, fixture.order.ID)
		require.NoError(t, err)
		require.Len(t, deliveries, 1)
		assert.Equal(t, fixture.delivery.ID, deliveries[0].ID)
	})

	t.Run("reverse transfers of a return order", func(t *testing.T) {
		transfers, err := repo.FindByReturnOrder(ctx, tenantID, returnOrderID)
		require.NoError(t, err)
		assert.Len(t, transfers, 2)
		for _, tr := range transfers {
			assert.True(t, tr.Role.IsReturn())
		}
	})

	t.Run("deliveries feeding a return order", func(t *testing.T) {
		sources, err := repo.FindByReturnSource(ctx, tenantID, returnOrderID)
		require.NoError(t, err)
		require.Len(t, sources, 1)
		assert.Equal(t, fixture.delivery.ID, sources[0].ID)
	})

	t.Run("reversed quantity ignores cancelled transfers", func(t *testing.T) {
		moveID := fixture.delivery.Moves[0].ID
		reversed, err := repo.SumReversedQuantityByOriginMoves(ctx, tenantID, []uuid.UUID{moveID, uuid.New()})
		require.NoError(t, err)
		assert.Len(t, reversed, 1)
		assert.True(t, reversed[moveID].Equal(decimal.NewFromInt(3)), "got %s", reversed[moveID])
	})

	t.Run("reversed quantity of no moves", func(t *testing.T) {
		reversed, err := repo.SumReversedQuantityByOriginMoves(ctx, tenantID, nil)
		require.NoError(t, err)
		assert.Empty(t, reversed)
	})

	t.Run("next return name", func(t *testing.T) {
		name, err := repo.GenerateName(ctx, tenantID, "WH/RET")
		require.NoError(t, err)
		assert.Equal(t, "WH/RET/00004", name)

		name, err = repo.GenerateName(ctx, uuid.New(), "WH/RET")
		require.NoError(t, err)
		assert.Equal(t, "WH/RET/00001", name)
	})
}

func TestGormTransferRepository_Save_RejectsMissingRole(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormTransferRepository(db)

	transfer := &inventory.Transfer{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(uuid.New()),
		Name:                "WH/OUT/00001",
		Status:              inventory.TransferStatusReady,
	}
	err := repo.Save(context.Background(), transfer)
	require.Error(t, err)

	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "INVALID_TRANSFER_ROLE", domainErr.Code)
}
