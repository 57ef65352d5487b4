package inventory

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransferRepository persists Transfer aggregates with their moves
type TransferRepository interface {
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Transfer, error)

	// FindByIDForUpdate loads a transfer and locks its row until the transaction ends
	FindByIDForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*Transfer, error)

	// FindDoneDeliveriesBySalesOrder returns completed deliveries of a sales order, oldest first
	FindDoneDeliveriesBySalesOrder(ctx context.Context, tenantID, salesOrderID uuid.UUID) ([]Transfer, error)

	// FindByReturnOrder returns the reverse transfers created for a return order
	FindByReturnOrder(ctx context.Context, tenantID, returnOrderID uuid.UUID) ([]Transfer, error)

	// FindByReturnSource returns the deliveries marked as donors of a return order
	FindByReturnSource(ctx context.Context, tenantID, returnOrderID uuid.UUID) ([]Transfer, error)

	// SumReversedQuantityByOriginMoves sums quantities of non-cancelled return
	// moves per delivered move they reverse
	SumReversedQuantityByOriginMoves(ctx context.Context, tenantID uuid.UUID, moveIDs []uuid.UUID) (map[uuid.UUID]decimal.Decimal, error)

	Save(ctx context.Context, transfer *Transfer) error


	// GenerateName returns the next transfer name for the prefix, e.g. WH/RET/00001
	GenerateName(ctx context.Context, tenantID uuid.UUID, prefix string) (string, error)
}
