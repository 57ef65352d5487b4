package trade

import (
	"context"
	"testing"

	"github.com/erp/returns/internal/domain/inventory"
	"github.com/erp/returns/internal/domain/shared"
	"github.com/erp/returns/internal/domain/trade"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func completedEventFor(t *testing.T, transfer *inventory.Transfer) *inventory.TransferCompletedEvent {
	t.Helper()
	require.NoError(t, transfer.Validate())
	events := transfer.GetDomainEvents()
	completed, ok := events[len(events)-1].(*inventory.TransferCompletedEvent)
	require.True(t, ok)
	return completed
}

func TestStatusReconciler_Handle(t *testing.T) {
	ctx := context.Background()

	t.Run("completes the order when every reverse transfer is done", func(t *testing.T) {
		so := newTestSalesOrder(t, testProductID, 10, 10)
		ro, transfer := confirmedReturn(t, so, 3)
		event := completedEventFor(t, transfer)

		returnRepo := new(MockReturnOrderRepository)
		gateway := new(MockReverseLogistics)
		publisher := new(MockEventPublisher)
		returnRepo.On("FindByIDForUpdate", ctx, testTenantID, ro.ID).Return(ro, nil)
		gateway.On("ListReturnTransfers", ctx, testTenantID, ro.ID).Return([]inventory.Transfer{*transfer}, nil)
		returnRepo.On("Save", ctx, ro).Return(nil)
		publisher.On("Publish", ctx, mock.MatchedBy(func(events []shared.DomainEvent) bool {
			return len(events) == 1 && events[0].EventType() == trade.EventTypeReturnOrderCompleted
		})).Return(nil)

		h := NewStatusReconciler(NewNoOpTransactionScope(returnRepo, nil, nil, gateway), nil)
		h.SetEventPublisher(publisher)

		require.NoError(t, h.Handle(ctx, event))
		assert.Equal(t, trade.ReturnStatusDone, ro.Status)
		assert.NotNil(t, ro.DoneAt)
		publisher.AssertExpectations(t)
	})

	t.Run("waits while a reverse transfer is open", func(t *testing.T) {
		so := newTestSalesOrder(t, testProductID, 10, 10)
		ro, first := confirmedReturn(t, so, 3)
		second := newReverseTransferFor(t, ro.ID, testProductID, 1)
		event := completedEventFor(t, first)

		returnRepo := new(MockReturnOrderRepository)
		gateway := new(MockReverseLogistics)
		returnRepo.On("FindByIDForUpdate", ctx, testTenantID, ro.ID).Return(ro, nil)
		gateway.On("ListReturnTransfers", ctx, testTenantID, ro.ID).
			Return([]inventory.Transfer{*first, *second}, nil)

		h := NewStatusReconciler(NewNoOpTransactionScope(returnRepo, nil, nil, gateway), nil)

		require.NoError(t, h.Handle(ctx, event))
		assert.Equal(t, trade.ReturnStatusConfirm, ro.Status)
		returnRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("redelivery after completion is a no-op", func(t *testing.T) {
		so := newTestSalesOrder(t, testProductID, 10, 10)
		ro, transfer := confirmedReturn(t, so, 3)
		event := completedEventFor(t, transfer)
		require.NoError(t, ro.Complete())

		returnRepo := new(MockReturnOrderRepository)
		gateway := new(MockReverseLogistics)
		returnRepo.On("FindByIDForUpdate", ctx, testTenantID, ro.ID).Return(ro, nil)

		h := NewStatusReconciler(NewNoOpTransactionScope(returnRepo, nil, nil, gateway), nil)

		require.NoError(t, h.Handle(ctx, event))
		gateway.AssertNotCalled(t, "ListReturnTransfers", mock.Anything, mock.Anything, mock.Anything)
		returnRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("ignores deliveries", func(t *testing.T) {
		delivery, err := inventory.NewDelivery(testTenantID, uuid.New(), testCustomerID, "WH/OUT/00009", "SO-9")
		require.NoError(t, err)
		_, err = delivery.AddMove(testProductID, "Desk Lamp", decimalOf(2))
		require.NoError(t, err)
		event := completedEventFor(t, delivery)

		returnRepo := new(MockReturnOrderRepository)
		h := NewStatusReconciler(NewNoOpTransactionScope(returnRepo, nil, nil, nil), nil)

		require.NoError(t, h.Handle(ctx, event))
		returnRepo.AssertNotCalled(t, "FindByIDForUpdate", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("rejects other event types", func(t *testing.T) {
		so := newTestSalesOrder(t, testProductID, 10, 10)
		ro := newDraftReturn(t, so, testProductID, 1)
		h := NewStatusReconciler(NewNoOpTransactionScope(nil, nil, nil, nil), nil)

		err := h.Handle(ctx, trade.NewReturnOrderCreatedEvent(ro))

		assert.Error(t, err)
	})

	t.Run("subscribes to TransferCompleted", func(t *testing.T) {
		h := NewStatusReconciler(nil, nil)
		assert.Equal(t, []string{inventory.EventTypeTransferCompleted}, h.EventTypes())
	})
}
