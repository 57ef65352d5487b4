package models

import (
	"testing"

	"github.com/erp/returns/internal/domain/inventory"
	"github.com/erp/returns/internal/domain/trade"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransferModel_RoleRoundTrip(t *testing.T) {
	tenantID := uuid.New()
	delivery, err := inventory.NewDelivery(tenantID, uuid.New(), uuid.New(), "WH/OUT/00001", "SO-2026-00001")
	require.NoError(t, err)
	_, err = delivery.AddMove(uuid.New(), "Desk", decimal.NewFromInt(3))
	require.NoError(t, err)

	t.Run("delivery keeps no return order reference", func(t *testing.T) {
		m := TransferModelFromDomain(delivery)
		assert.Equal(t, "delivery", m.RoleKind)
		assert.Nil(t, m.ReturnOrderID)
		require.Len(t, m.Moves, 1)
		assert.Equal(t, delivery.ID, m.Moves[0].TransferID)

		back, err := m.ToDomain()
		require.NoError(t, err)
		assert.True(t, back.Role.IsDelivery())
		assert.Equal(t, tenantID, back.TenantID)
	})

	t.Run("return role carries its return order", func(t *testing.T) {
		returnOrderID := uuid.New()
		m := TransferModelFromDomain(delivery)
		m.RoleKind = "return"
		m.ReturnOrderID = &returnOrderID

		back, err := m.ToDomain()
		require.NoError(t, err)
		got, ok := back.Role.ReturnOrderID()
		assert.True(t, ok)
		assert.Equal(t, returnOrderID, got)
	})

	t.Run("inconsistent stored role is rejected", func(t *testing.T) {
		m := TransferModelFromDomain(delivery)
		m.RoleKind = "return"
		m.ReturnOrderID = nil

		_, err := m.ToDomain()
		assert.Error(t, err)
	})
}

func TestReturnOrderModel_FromDomain(t *testing.T) {
	tenantID := uuid.New()
	so, err := trade.NewSalesOrder(tenantID, "SO-2026-00001", uuid.New(), "Azure Interior")
	require.NoError(t, err)
	ro, err := trade.NewReturnOrder(tenantID, "RET/2026/00001", so, uuid.New(), "Damaged")
	require.NoError(t, err)
	_, err = ro.AddLine(uuid.New(), "Desk", decimal.NewFromInt(2), "")
	require.NoError(t, err)

	m := ReturnOrderModelFromDomain(ro)
	assert.Equal(t, ro.ID, m.ID)
	assert.Equal(t, trade.ReturnStatusDraft, m.Status)
	assert.True(t, m.Active)
	require.Len(t, m.Lines, 1)
	assert.Equal(t, ro.ID, m.Lines[0].ReturnOrderID)

	back := m.ToDomain()
	assert.Equal(t, ro.Name, back.Name)
	assert.Equal(t, so.OrderNumber, back.SalesOrderNumber)
	assert.True(t, back.TotalQuantity().Equal(decimal.NewFromInt(2)))
	assert.Equal(t, 1, back.Version)
}
