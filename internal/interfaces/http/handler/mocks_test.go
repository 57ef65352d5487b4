package handler

import (
	"context"
	"testing"

	tradeapp "github.com/erp/returns/internal/application/trade"
	"github.com/erp/returns/internal/domain/inventory"
	"github.com/erp/returns/internal/domain/shared"
	"github.com/erp/returns/internal/domain/trade"
	"github.com/erp/returns/internal/infrastructure/auth"
	"github.com/erp/returns/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// MockReturnOrderRepository implements trade.ReturnOrderRepository for testing
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

// MockSalesOrderRepository implements trade.SalesOrderRepository for testing
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

// MockTransferRepository implements inventory.TransferRepository for testing
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

// MockPortalReadRepository implements tradeapp.PortalReadRepository for testing
type MockPortalReadRepository struct {
	mock.Mock
}

func (m *MockPortalReadRepository) ListForPartner(ctx context.Context, tenantID, partnerID uuid.UUID, query tradeapp.PortalListQuery) ([]tradeapp.ReturnOrderSummary, error) {
	args := m.Called(ctx, tenantID, partnerID, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]tradeapp.ReturnOrderSummary), args.Error(1)
}

func (m *MockPortalReadRepository) CountForPartner(ctx context.Context, tenantID, partnerID uuid.UUID, query tradeapp.PortalListQuery) (int64, error) {
	args := m.Called(ctx, tenantID, partnerID, query)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockPortalReadRepository) FindForPartner(ctx context.Context, tenantID, partnerID, id uuid.UUID) (*tradeapp.PortalReturnDetail, error) {
	args := m.Called(ctx, tenantID, partnerID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*tradeapp.PortalReturnDetail), args.Error(1)
}

// testSession describes the caller a test router authenticates as
type testSession struct {
	TenantID  uuid.UUID
	UserID    uuid.UUID
	PartnerID uuid.UUID
}

func newStaffSession() testSession {
	return testSession{TenantID: uuid.New(), UserID: uuid.New()}
}

func newPortalSession() testSession {
	return testSession{TenantID: uuid.New(), UserID: uuid.New(), PartnerID: uuid.New()}
}

// withSession stores JWT claims the way the auth middleware does
func withSession(s *testSession) gin.HandlerFunc {
	return func(c *gin.Context) {
		if s != nil {
			claims := &auth.Claims{
				TenantID: s.TenantID.String(),
				UserID:   s.UserID.String(),
			}
			if s.PartnerID != uuid.Nil {
				claims.PartnerID = s.PartnerID.String()
			}
			c.Set(middleware.JWTClaimsKey, claims)
			c.Set(middleware.JWTTenantIDKey, claims.TenantID)
			c.Set(middleware.JWTUserIDKey, claims.UserID)
			c.Set(middleware.JWTPartnerIDKey, claims.PartnerID)
		}
		c.Next()
	}
}

// newDeliveredSalesOrder creates an order of customerID with one product
// ordered 5 and delivered `delivered` units
func newDeliveredSalesOrder(t *testing.T, tenantID, customerID, productID uuid.UUID, delivered int64) *trade.SalesOrder {
	t.Helper()
	order, err := trade.NewSalesOrder(tenantID, "SO-2026-00042", customerID, "Azure Interior")
	require.NoError(t, err)
	_, err = order.AddItem(productID, "Desk Lamp", "LAMP-01", decimal.NewFromInt(5))
	require.NoError(t, err)
	require.NoError(t, order.RecordDelivery(productID, decimal.NewFromInt(delivered)))
	return order
}

func newDraftReturnOrder(t *testing.T, so *trade.SalesOrder, qty int64) *trade.ReturnOrder {
	t.Helper()
	order, err := trade.NewReturnOrder(so.TenantID, "RET/2026/00001", so, uuid.New(), "Damaged in transit")
	require.NoError(t, err)
	_, err = order.AddLine(so.Items[0].ProductID, so.Items[0].ProductName, decimal.NewFromInt(qty), "")
	require.NoError(t, err)
	return order
}
