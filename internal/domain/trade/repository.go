package trade

import (
	"context"

	"github.com/erp/returns/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SalesOrderRepository reads sales orders and writes back delivered quantities
type SalesOrderRepository interface {
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*SalesOrder, error)

	// FindByIDForUpdate loads the order and holds a row lock on it until the
	// enclosing transaction ends. Concurrent return submissions against the
	// same order are serialised here.
	FindByIDForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*SalesOrder, error)

	Save(ctx context.Context, order *SalesOrder) error
}

// ReturnOrderRepository persists ReturnOrder aggregates with their lines
type ReturnOrderRepository interface {
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*ReturnOrder, error)

	// FindByIDForUpdate loads the order and locks its row
	FindByIDForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*ReturnOrder, error)

	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]ReturnOrder, error)
	CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error)

	// CountBySalesOrder counts active return orders raised against a sales order
	CountBySalesOrder(ctx context.Context, tenantID, salesOrderID uuid.UUID) (int64, error)

	// SumClaimedQuantityByProduct returns, per product, the quantity still
	// claimed against a sales order by non-cancelled return orders. Lines of
	// refunded orders that already lowered delivered quantity are excluded.
	SumClaimedQuantityByProduct(ctx context.Context, tenantID, salesOrderID uuid.UUID) (map[uuid.UUID]decimal.Decimal, error)

	Save(ctx context.Context, order *ReturnOrder) error


	// GenerateReturnName returns the next name, e.g. RET/2026/00001
	GenerateReturnName(ctx context.Context, tenantID uuid.UUID) (string, error)
}
