package trade

import (
	"context"
	"testing"

	inventoryapp "github.com/erp/returns/internal/application/inventory"
	"github.com/erp/returns/internal/domain/partner"
	"github.com/erp/returns/internal/domain/shared"
	"github.com/erp/returns/internal/domain/trade"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func returnableMove(productID uuid.UUID, returnable int64) inventoryapp.ReturnableMove {
	return inventoryapp.ReturnableMove{
		TransferID:   uuid.New(),
		TransferName: "WH/OUT/00001",
		MoveID:       uuid.New(),
		ProductID:    productID,
		ProductName:  "Desk Lamp",
		QuantityDone: decimal.NewFromInt(returnable),
		Returnable:   decimal.NewFromInt(returnable),
	}
}

func TestPlanAllOrNothing(t *testing.T) {
	ctx := context.Background()

	t.Run("moves chosen for earlier lines count against later ones", func(t *testing.T) {
		so := newTestSalesOrder(t, testProductID, 10, 8)
		ro := newDraftReturn(t, so, testProductID, 4)
		_, err := ro.AddLine(testProductID, "Desk Lamp", decimal.NewFromInt(3), "")
		require.NoError(t, err)

		big := returnableMove(testProductID, 5)
		small := returnableMove(testProductID, 3)
		gateway := new(MockReverseLogistics)
		gateway.On("FindReturnableMoves", ctx, testTenantID, so.ID, testProductID).
			Return([]inventoryapp.ReturnableMove{big, small}, nil).Once()

		plan, err := PlanAllOrNothing(ctx, gateway, ro)

		require.NoError(t, err)
		require.Len(t, plan, 2)
		assert.Equal(t, big.MoveID, plan[0].Move.MoveID)
		assert.Equal(t, small.MoveID, plan[1].Move.MoveID)
		gateway.AssertExpectations(t)
	})

	t.Run("fails naming the product when no single move covers a line", func(t *testing.T) {
		so := newTestSalesOrder(t, testProductID, 10, 8)
		ro := newDraftReturn(t, so, testProductID, 6)
		gateway := new(MockReverseLogistics)
		gateway.On("FindReturnableMoves", ctx, testTenantID, so.ID, testProductID).
			Return([]inventoryapp.ReturnableMove{returnableMove(testProductID, 5), returnableMove(testProductID, 3)}, nil)

		plan, err := PlanAllOrNothing(ctx, gateway, ro)

		assert.Nil(t, plan)
		require.Error(t, err)
		de, ok := shared.AsDomainError(err)
		require.True(t, ok)
		assert.Equal(t, trade.CodeInsufficientDeliveredQuantity, de.Code)
		assert.Contains(t, de.Message, "'Desk Lamp'")
		assert.Contains(t, de.Message, "6 units")
	})
}

func TestReverseLogisticsDispatcher_Dispatch(t *testing.T) {
	ctx := context.Background()
	so := newTestSalesOrder(t, testProductID, 10, 10)
	ro := newDraftReturn(t, so, testProductID, 2)
	ro.ToRefund = true
	move := returnableMove(testProductID, 10)
	locationID := uuid.New()
	customer, err := partner.NewCustomer(testTenantID, "C001", "Acme Retail")
	require.NoError(t, err)
	customer.SetReturnLocation(locationID)
	reverse := newReverseTransferFor(t, ro.ID, testProductID, 2)

	gateway := new(MockReverseLogistics)
	gateway.On("FindReturnableMoves", ctx, testTenantID, so.ID, testProductID).
		Return([]inventoryapp.ReturnableMove{move}, nil)
	gateway.On("CreateReverseTransfer", ctx, testTenantID, inventoryapp.CreateReverseTransferRequest{
		SourceTransferID:      move.TransferID,
		SourceMoveID:          move.MoveID,
		Quantity:              decimal.NewFromInt(2),
		Note:                  "Damaged",
		ToRefund:              true,
		ReturnOrderID:         ro.ID,
		ReturnOrderName:       ro.Name,
		DestinationLocationID: &locationID,
	}).Return(reverse, nil)
	customers := new(MockCustomerRepository)
	customers.On("FindByIDForTenant", ctx, testTenantID, testCustomerID).Return(customer, nil)

	repos := NewNoOpTransactionScope(nil, nil, customers, gateway)
	result, err := NewReverseLogisticsDispatcher(nil).Dispatch(ctx, repos, ro)

	require.NoError(t, err)
	assert.Equal(t, map[uuid.UUID]uuid.UUID{ro.Lines[0].ID: reverse.ID}, result.LineTransfers)
	assert.Len(t, result.Transfers, 1)
	gateway.AssertExpectations(t)
}

func TestReverseLogisticsDispatcher_UnknownCustomerUsesDefaultLocation(t *testing.T) {
	ctx := context.Background()
	so := newTestSalesOrder(t, testProductID, 10, 10)
	ro := newDraftReturn(t, so, testProductID, 1)
	move := returnableMove(testProductID, 10)
	reverse := newReverseTransferFor(t, ro.ID, testProductID, 1)

	gateway := new(MockReverseLogistics)
	gateway.On("FindReturnableMoves", ctx, testTenantID, so.ID, testProductID).
		Return([]inventoryapp.ReturnableMove{move}, nil)
	gateway.On("CreateReverseTransfer", ctx, testTenantID, mock.MatchedBy(func(req inventoryapp.CreateReverseTransferRequest) bool {
		return req.DestinationLocationID == nil
	})).Return(reverse, nil)
	customers := new(MockCustomerRepository)
	customers.On("FindByIDForTenant", ctx, testTenantID, testCustomerID).Return(nil, shared.ErrNotFound)

	_, err := NewReverseLogisticsDispatcher(nil).Dispatch(ctx, NewNoOpTransactionScope(nil, nil, customers, gateway), ro)

	require.NoError(t, err)
	gateway.AssertExpectations(t)
}
