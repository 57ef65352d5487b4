package inventory

import (
	"context"
	"fmt"

	"github.com/erp/returns/internal/domain/inventory"
	"github.com/erp/returns/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ReturnTransferPrefix names reverse transfers, e.g. WH/RET/00001
const ReturnTransferPrefix = "WH/RET"

// ReverseLogistics creates and cancels return traffic against completed
// deliveries. It is bound to the caller's transaction and never publishes
// events itself; queued events stay on the returned transfers.
type ReverseLogistics struct {
	transferRepo inventory.TransferRepository
	logger       *zap.Logger
}

// NewReverseLogistics creates a ReverseLogistics bound to transferRepo
func NewReverseLogistics(transferRepo inventory.TransferRepository, logger *zap.Logger) *ReverseLogistics {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReverseLogistics{
		transferRepo: transferRepo,
		logger:       logger,
	}
}

// FindReturnableMoves lists completed delivery moves of productID on a sales
// order that still have quantity left to reverse, oldest delivery first
func (s *ReverseLogistics) FindReturnableMoves(ctx context.Context, tenantID, salesOrderID, productID uuid.UUID) ([]ReturnableMove, error) {
	deliveries, err := s.transferRepo.FindDoneDeliveriesBySalesOrder(ctx, tenantID, salesOrderID)
	if err != nil {
		return nil, err
	}

	type candidate struct {
		transfer *inventory.Transfer
		move     *inventory.StockMove
	}
	candidates := make([]candidate, 0)
	moveIDs := make([]uuid.UUID, 0)
	for i := range deliveries {
		for _, move := range deliveries[i].DoneMovesFor(productID) {
			candidates = append(candidates, candidate{transfer: &deliveries[i], move: move})
			moveIDs = append(moveIDs, move.ID)
		}
	}
	if len(candidates) == 0 {
		return []ReturnableMove{}, nil
	}

	reversed, err := s.transferRepo.SumReversedQuantityByOriginMoves(ctx, tenantID, moveIDs)
	if err != nil {
		return nil, err
	}

	moves := make([]ReturnableMove, 0, len(candidates))
	for _, c := range candidates {
		returnable := c.move.QuantityDone.Sub(reversed[c.move.ID])
		if !returnable.IsPositive() {
			continue
		}
		moves = append(moves, ReturnableMove{
			TransferID:   c.transfer.ID,
			TransferName: c.transfer.Name,
			MoveID:       c.move.ID,
			ProductID:    c.move.ProductID,
			ProductName:  c.move.ProductName,
			QuantityDone: c.move.QuantityDone,
			Returnable:   returnable,
			DoneAt:       c.transfer.DoneAt,
		})
	}
	return moves, nil
}

// CreateReverseTransfer creates a transfer returning req.Quantity of one
// delivered move and marks the source delivery as feeding the return order.
// The source delivery row stays locked until the transaction ends.
func (s *ReverseLogistics) CreateReverseTransfer(ctx context.Context, tenantID uuid.UUID, req CreateReverseTransferRequest) (*inventory.Transfer, error) {
	source, err := s.transferRepo.FindByIDForUpdate(ctx, tenantID, req.SourceTransferID)
	if err != nil {
		return nil, err
	}
	move := source.FindMove(req.SourceMoveID)
	if move == nil {
		return nil, shared.NewDomainError("MOVE_NOT_FOUND",
			fmt.Sprintf("Move %s not found on transfer %s", req.SourceMoveID, source.Name))
	}

	reversed, err := s.transferRepo.SumReversedQuantityByOriginMoves(ctx, tenantID, []uuid.UUID{move.ID})
	if err != nil {
		return nil, err
	}
	available := move.QuantityDone.Sub(reversed[move.ID])
	if available.LessThan(req.Quantity) {
		return nil, shared.NewDomainError("INSUFFICIENT_RETURNABLE_QUANTITY",
			fmt.Sprintf("Only %s units of %s on %s can still be returned",
				decimal.Max(available, decimal.Zero).String(), move.ProductName, source.Name))
	}

	name, err := s.transferRepo.GenerateName(ctx, tenantID, ReturnTransferPrefix)
	if err != nil {
		return nil, err
	}

	reverse, err := inventory.NewReverseTransfer(source, move, inventory.ReverseTransferParams{
		Name:                  name,
		ReturnOrderID:         req.ReturnOrderID,
		ReturnOrderName:       req.ReturnOrderName,
		Quantity:              req.Quantity,
		Note:                  req.Note,
		ToRefund:              req.ToRefund,
		DestinationLocationID: req.DestinationLocationID,
	})
	if err != nil {
		return nil, err
	}
	if err := s.transferRepo.Save(ctx, reverse); err != nil {
		return nil, err
	}

	if err := source.MarkReturnSource(req.ReturnOrderID); err != nil {
		return nil, err
	}
	if err := s.transferRepo.Save(ctx, source); err != nil {
		return nil, err
	}

	s.logger.Info("reverse transfer created",
		zap.String("transfer", reverse.Name),
		zap.String("source", source.Name),
		zap.String("product_id", move.ProductID.String()),
		zap.String("quantity", req.Quantity.String()),
		zap.String("return_order_id", req.ReturnOrderID.String()),
	)
	return reverse, nil
}

// CancelTransfer force-cancels an open transfer. Terminal transfers are
// returned unchanged.
func (s *ReverseLogistics) CancelTransfer(ctx context.Context, tenantID, transferID uuid.UUID) (*inventory.Transfer, error) {
	t, err := s.transferRepo.FindByIDForUpdate(ctx, tenantID, transferID)
	if err != nil {
		return nil, err
	}
	if t.Status.IsTerminal() {
		return t, nil
	}
	if err := t.Cancel(); err != nil {
		return nil, err
	}
	if err := s.transferRepo.Save(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

// ListReturnTransfers returns the reverse transfers of a return order
func (s *ReverseLogistics) ListReturnTransfers(ctx context.Context, tenantID, returnOrderID uuid.UUID) ([]inventory.Transfer, error) {
	return s.transferRepo.FindByReturnOrder(ctx, tenantID, returnOrderID)
}
