package trade

import (
	"context"
	"errors"

	inventoryapp "github.com/erp/returns/internal/application/inventory"
	"github.com/erp/returns/internal/domain/inventory"
	"github.com/erp/returns/internal/domain/shared"
	"github.com/erp/returns/internal/domain/trade"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// DispatchPlanItem pairs a return line with the delivered move it reverses
type DispatchPlanItem struct {
	Line *trade.ReturnLine
	Move inventoryapp.ReturnableMove
}

// PlanAllOrNothing picks, for every positive line, one completed delivery move
// with enough quantity left to reverse the whole line. Moves already chosen
// for earlier lines of the same order count against later ones. If any line
// cannot be covered the plan fails naming that product, and nothing is
// returned.
func PlanAllOrNothing(ctx context.Context, gateway ReverseLogisticsGateway, order *trade.ReturnOrder) ([]DispatchPlanItem, error) {
	lines := order.PositiveLines()
	plan := make([]DispatchPlanItem, 0, len(lines))
	consumed := make(map[uuid.UUID]decimal.Decimal)
	movesByProduct := make(map[uuid.UUID][]inventoryapp.ReturnableMove)

	for _, line := range lines {
		moves, ok := movesByProduct[line.ProductID]
		if !ok {
			var err error
			moves, err = gateway.FindReturnableMoves(ctx, order.TenantID, order.SalesOrderID, line.ProductID)
			if err != nil {
				return nil, err
			}
			movesByProduct[line.ProductID] = moves
		}

		var chosen *inventoryapp.ReturnableMove
		for i := range moves {
			left := moves[i].Returnable.Sub(consumed[moves[i].MoveID])
			if left.GreaterThanOrEqual(line.Quantity) {
				chosen = &moves[i]
				break
			}
		}
		if chosen == nil {
			return nil, trade.NewInsufficientDeliveredQuantityError(line.ProductName, line.Quantity.String())
		}
		consumed[chosen.MoveID] = consumed[chosen.MoveID].Add(line.Quantity)
		plan = append(plan, DispatchPlanItem{Line: line, Move: *chosen})
	}
	return plan, nil
}

// DispatchResult holds the reverse transfers created for a return order
type DispatchResult struct {
	// LineTransfers maps return line ID to the reverse transfer created for it
	LineTransfers map[uuid.UUID]uuid.UUID
	Transfers     []*inventory.Transfer
}

// ReverseLogisticsDispatcher creates one reverse transfer per positive line of
// a return order inside the caller's transaction
type ReverseLogisticsDispatcher struct {
	logger *zap.Logger
}

// NewReverseLogisticsDispatcher creates a new ReverseLogisticsDispatcher
func NewReverseLogisticsDispatcher(logger *zap.Logger) *ReverseLogisticsDispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReverseLogisticsDispatcher{logger: logger}
}

// Dispatch plans the order all-or-nothing and then creates the reverse
// transfers. Any error leaves the caller to roll back the transaction.
func (d *ReverseLogisticsDispatcher) Dispatch(ctx context.Context, repos TransactionalRepositories, order *trade.ReturnOrder) (*DispatchResult, error) {
	gateway := repos.ReverseLogistics()
	plan, err := PlanAllOrNothing(ctx, gateway, order)
	if err != nil {
		return nil, err
	}

	destination, err := d.returnLocation(ctx, repos, order)
	if err != nil {
		return nil, err
	}

	result := &DispatchResult{
		LineTransfers: make(map[uuid.UUID]uuid.UUID, len(plan)),
		Transfers:     make([]*inventory.Transfer, 0, len(plan)),
	}
	for _, item := range plan {
		transfer, err := gateway.CreateReverseTransfer(ctx, order.TenantID, inventoryapp.CreateReverseTransferRequest{
			SourceTransferID:      item.Move.TransferID,
			SourceMoveID:          item.Move.MoveID,
			Quantity:              item.Line.Quantity,
			Note:                  order.Reason,
			ToRefund:              order.ToRefund,
			ReturnOrderID:         order.ID,
			ReturnOrderName:       order.Name,
			DestinationLocationID: destination,
		})
		if err != nil {
			return nil, err
		}
		result.LineTransfers[item.Line.ID] = transfer.ID
		result.Transfers = append(result.Transfers, transfer)
	}

	d.logger.Info("reverse transfers dispatched",
		zap.String("return_order", order.Name),
		zap.Int("transfers", len(result.Transfers)),
	)
	return result, nil
}

// returnLocation resolves the customer's return location; nil when unknown
func (d *ReverseLogisticsDispatcher) returnLocation(ctx context.Context, repos TransactionalRepositories, order *trade.ReturnOrder) (*uuid.UUID, error) {
	customer, err := repos.CustomerRepo().FindByIDForTenant(ctx, order.TenantID, order.CustomerID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			d.logger.Warn("customer not found, using default return location",
				zap.String("customer_id", order.CustomerID.String()),
			)
			return nil, nil
		}
		return nil, err
	}
	return customer.ReturnLocation(), nil
}
