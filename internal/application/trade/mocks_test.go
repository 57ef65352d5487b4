package trade

import (
	"context"
	"testing"

	inventoryapp "github.com/erp/returns/internal/application/inventory"
	"github.com/erp/returns/internal/domain/inventory"
	"github.com/erp/returns/internal/domain/partner"
	"github.com/erp/returns/internal/domain/shared"
	"github.com/erp/returns/internal/domain/trade"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockReturnOrderRepository is a mock implementation of ReturnOrderRepository
type MockReturnOrderRepository struct {
	mock.Mock
}

func (m *MockReturnOrderRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*trade.ReturnOrder, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*trade.ReturnOrder), args.Error(1)
}

func (m *MockReturnOrderRepository) FindByIDForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*trade.ReturnOrder, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*trade.ReturnOrder), args.Error(1)
}

func (m *MockReturnOrderRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]trade.ReturnOrder, error) {
	args := m.Called(ctx, tenantID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]trade.ReturnOrder), args.Error(1)
}

func (m *MockReturnOrderRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockReturnOrderRepository) CountBySalesOrder(ctx context.Context, tenantID, salesOrderID uuid.UUID) (int64, error) {
	args := m.Called(ctx, tenantID, salesOrderID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockReturnOrderRepository) SumClaimedQuantityByProduct(ctx context.Context, tenantID, salesOrderID uuid.UUID) (map[uuid.UUID]decimal.Decimal, error) {
	args := m.Called(ctx, tenantID, salesOrderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[uuid.UUID]decimal.Decimal), args.Error(1)
}

func (m *MockReturnOrderRepository) Save(ctx context.Context, order *trade.ReturnOrder) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

func (m *MockReturnOrderRepository) GenerateReturnName(ctx context.Context, tenantID uuid.UUID) (string, error) {
	args := m.Called(ctx, tenantID)
	return args.String(0), args.Error(1)
}

// MockSalesOrderRepository is a mock implementation of SalesOrderRepository
type MockSalesOrderRepository struct {
	mock.Mock
}

func (m *MockSalesOrderRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*trade.SalesOrder, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*trade.SalesOrder), args.Error(1)
}

func (m *MockSalesOrderRepository) FindByIDForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*trade.SalesOrder, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*trade.SalesOrder), args.Error(1)
}

func (m *MockSalesOrderRepository) Save(ctx context.Context, order *trade.SalesOrder) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

// MockCustomerRepository is a mock implementation of CustomerRepository
type MockCustomerRepository struct {
	mock.Mock
}

func (m *MockCustomerRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*partner.Customer, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*partner.Customer), args.Error(1)
}

func (m *MockCustomerRepository) Save(ctx context.Context, customer *partner.Customer) error {
	args := m.Called(ctx, customer)
	return args.Error(0)
}

// MockReverseLogistics is a mock implementation of ReverseLogisticsGateway
type MockReverseLogistics struct {
	mock.Mock
}

func (m *MockReverseLogistics) FindReturnableMoves(ctx context.Context, tenantID, salesOrderID, productID uuid.UUID) ([]inventoryapp.ReturnableMove, error) {
	args := m.Called(ctx, tenantID, salesOrderID, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]inventoryapp.ReturnableMove), args.Error(1)
}

func (m *MockReverseLogistics) CreateReverseTransfer(ctx context.Context, tenantID uuid.UUID, req inventoryapp.CreateReverseTransferRequest) (*inventory.Transfer, error) {
	args := m.Called(ctx, tenantID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*inventory.Transfer), args.Error(1)
}

func (m *MockReverseLogistics) CancelTransfer(ctx context.Context, tenantID, transferID uuid.UUID) (*inventory.Transfer, error) {
	args := m.Called(ctx, tenantID, transferID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*inventory.Transfer), args.Error(1)
}

func (m *MockReverseLogistics) ListReturnTransfers(ctx context.Context, tenantID, returnOrderID uuid.UUID) ([]inventory.Transfer, error) {
	args := m.Called(ctx, tenantID, returnOrderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]inventory.Transfer), args.Error(1)
}

// MockEventPublisher is a mock implementation of EventPublisher
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	args := m.Called(ctx, events)
	return args.Error(0)
}

// MockPortalReadRepository is a mock implementation of PortalReadRepository
type MockPortalReadRepository struct {
	mock.Mock
}

func (m *MockPortalReadRepository) ListForPartner(ctx context.Context, tenantID, partnerID uuid.UUID, query PortalListQuery) ([]ReturnOrderSummary, error) {
	args := m.Called(ctx, tenantID, partnerID, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]ReturnOrderSummary), args.Error(1)
}

func (m *MockPortalReadRepository) CountForPartner(ctx context.Context, tenantID, partnerID uuid.UUID, query PortalListQuery) (int64, error) {
	args := m.Called(ctx, tenantID, partnerID, query)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockPortalReadRepository) FindForPartner(ctx context.Context, tenantID, partnerID, id uuid.UUID) (*PortalReturnDetail, error) {
	args := m.Called(ctx, tenantID, partnerID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*PortalReturnDetail), args.Error(1)
}

// MockReturnCountCache is a mock implementation of ReturnCountCache
type MockReturnCountCache struct {
	mock.Mock
}

func (m *MockReturnCountCache) Get(ctx context.Context, tenantID, partnerID uuid.UUID) (int64, bool, error) {
	args := m.Called(ctx, tenantID, partnerID)
	return args.Get(0).(int64), args.Bool(1), args.Error(2)
}

func (m *MockReturnCountCache) Set(ctx context.Context, tenantID, partnerID uuid.UUID, count int64) error {
	args := m.Called(ctx, tenantID, partnerID, count)
	return args.Error(0)
}

func (m *MockReturnCountCache) Invalidate(ctx context.Context, tenantID, partnerID uuid.UUID) error {
	args := m.Called(ctx, tenantID, partnerID)
	return args.Error(0)
}

// Test fixtures shared by the service tests
var (
	testTenantID   = uuid.New()
	testActorID    = uuid.New()
	testCustomerID = uuid.New()
	testProductID  = uuid.New()
)

func testPortalContext() shared.RequestContext {
	return shared.NewRequestContext(testTenantID, testActorID, testCustomerID)
}

func testStaffContext() shared.RequestContext {
	return shared.NewRequestContext(testTenantID, testActorID, uuid.Nil)
}

// newTestSalesOrder builds an order of testCustomerID with one delivered product
func newTestSalesOrder(t *testing.T, productID uuid.UUID, ordered, delivered int64) *trade.SalesOrder {
	t.Helper()
	so, err := trade.NewSalesOrder(testTenantID, "SO-2026-00001", testCustomerID, "Acme Retail")
	require.NoError(t, err)
	_, err = so.AddItem(productID, "Desk Lamp", "LAMP-01", decimal.NewFromInt(ordered))
	require.NoError(t, err)
	if delivered > 0 {
		require.NoError(t, so.RecordDelivery(productID, decimal.NewFromInt(delivered)))
	}
	return so
}

// newDraftReturn builds a draft return order of qty units of productID
func newDraftReturn(t *testing.T, so *trade.SalesOrder, productID uuid.UUID, qty int64) *trade.ReturnOrder {
	t.Helper()
	ro, err := trade.NewReturnOrder(testTenantID, "RET/2026/00001", so, testActorID, "Damaged")
	require.NoError(t, err)
	_, err = ro.AddLine(productID, "Desk Lamp", decimal.NewFromInt(qty), "")
	require.NoError(t, err)
	return ro
}

// newReverseTransferFor builds a ready reverse transfer for a return order
func newReverseTransferFor(t *testing.T, returnOrderID, productID uuid.UUID, qty int64) *inventory.Transfer {
	t.Helper()
	delivery, err := inventory.NewDelivery(testTenantID, uuid.New(), testCustomerID, "WH/OUT/00001", "SO-2026-00001")
	require.NoError(t, err)
	_, err = delivery.AddMove(productID, "Desk Lamp", decimal.NewFromInt(qty))
	require.NoError(t, err)
	require.NoError(t, delivery.Validate())
	reverse, err := inventory.NewReverseTransfer(delivery, &delivery.Moves[0], inventory.ReverseTransferParams{
		Name:          "WH/RET/00001",
		ReturnOrderID: returnOrderID,
		Quantity:      decimal.NewFromInt(qty),
	})
	require.NoError(t, err)
	return reverse
}
