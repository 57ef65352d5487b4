package inventory

import (
	"context"
	"testing"

	"github.com/erp/returns/internal/domain/inventory"
	"github.com/erp/returns/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockTransferRepository is a mock implementation of TransferRepository
type MockTransferRepository struct {
	mock.Mock
}

func (m *MockTransferRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*inventory.Transfer, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*inventory.Transfer), args.Error(1)
}

func (m *MockTransferRepository) FindByIDForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*inventory.Transfer, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*inventory.Transfer), args.Error(1)
}

func (m *MockTransferRepository) FindDoneDeliveriesBySalesOrder(ctx context.Context, tenantID, salesOrderID uuid.UUID) ([]inventory.Transfer, error) {
	args := m.Called(ctx, tenantID, salesOrderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]inventory.Transfer), args.Error(1)
}

func (m *MockTransferRepository) FindByReturnOrder(ctx context.Context, tenantID, returnOrderID uuid.UUID) ([]inventory.Transfer, error) {
	args := m.Called(ctx, tenantID, returnOrderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]inventory.Transfer), args.Error(1)
}

func (m *MockTransferRepository) FindByReturnSource(ctx context.Context, tenantID, returnOrderID uuid.UUID) ([]inventory.Transfer, error) {
	args := m.Called(ctx, tenantID, returnOrderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]inventory.Transfer), args.Error(1)
}

func (m *MockTransferRepository) SumReversedQuantityByOriginMoves(ctx context.Context, tenantID uuid.UUID, moveIDs []uuid.UUID) (map[uuid.UUID]decimal.Decimal, error) {
	args := m.Called(ctx, tenantID, moveIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[uuid.UUID]decimal.Decimal), args.Error(1)
}

func (m *MockTransferRepository) Save(ctx context.Context, transfer *inventory.Transfer) error {
	args := m.Called(ctx, transfer)
	return args.Error(0)
}

func (m *MockTransferRepository) GenerateName(ctx context.Context, tenantID uuid.UUID, prefix string) (string, error) {
	args := m.Called(ctx, tenantID, prefix)
	return args.String(0), args.Error(1)
}

// MockEventPublisher is a mock implementation of EventPublisher
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	args := m.Called(ctx, events)
	return args.Error(0)
}

// newDoneDelivery builds a validated delivery of one product
func newDoneDelivery(t *testing.T, tenantID, salesOrderID, productID uuid.UUID, qty int64) *inventory.Transfer {
	t.Helper()
	d, err := inventory.NewDelivery(tenantID, salesOrderID, uuid.New(), "WH/OUT/00001", "SO-001")
	require.NoError(t, err)
	_, err = d.AddMove(productID, "Desk Lamp", decimal.NewFromInt(qty))
	require.NoError(t, err)
	require.NoError(t, d.Validate())
	d.ClearDomainEvents()
	return d
}
