package trade

import (
	"context"
	"fmt"

	"github.com/erp/returns/internal/domain/inventory"
	"github.com/erp/returns/internal/domain/shared"
	"github.com/erp/returns/internal/domain/trade"
	"github.com/erp/returns/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// StatusReconciler handles TransferCompletedEvent and moves a confirmed return
// order to done once every one of its reverse transfers is done
type StatusReconciler struct {
	txScope        TransactionScope
	eventPublisher shared.EventPublisher
	returnMetrics  *telemetry.ReturnMetrics
	logger         *zap.Logger
}

// NewStatusReconciler creates a new StatusReconciler
func NewStatusReconciler(txScope TransactionScope, logger *zap.Logger) *StatusReconciler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StatusReconciler{
		txScope: txScope,
		logger:  logger,
	}
}

// SetEventPublisher sets the event publisher for cross-context integration
func (h *StatusReconciler) SetEventPublisher(publisher shared.EventPublisher) {
	h.eventPublisher = publisher
}

// SetReturnMetrics sets the return metrics collector
func (h *StatusReconciler) SetReturnMetrics(m *telemetry.ReturnMetrics) {
	h.returnMetrics = m
}

// EventTypes returns the event types this handler is interested in
func (h *StatusReconciler) EventTypes() []string {
	return []string{inventory.EventTypeTransferCompleted}
}

// Handle processes a TransferCompletedEvent. Deliveries, orders not in
// confirm and orders with an open reverse transfer are left unchanged, so
// redelivery of the same event is harmless.
func (h *StatusReconciler) Handle(ctx context.Context, event shared.DomainEvent) error {
	completed, ok := event.(*inventory.TransferCompletedEvent)
	if !ok {
		h.logger.Error("unexpected event type",
			zap.String("expected", inventory.EventTypeTransferCompleted),
			zap.String("actual", event.EventType()),
		)
		return fmt.Errorf("unexpected event type: expected %s, got %s",
			inventory.EventTypeTransferCompleted, event.EventType())
	}
	if !completed.IsReturnTraffic() {
		return nil
	}

	returnOrderID := *completed.ReturnOrderID
	var order *trade.ReturnOrder
	err := h.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		found, err := repos.ReturnOrderRepo().FindByIDForUpdate(ctx, event.TenantID(), returnOrderID)
		if err != nil {
			return err
		}
		if found.Status != trade.ReturnStatusConfirm {
			h.logger.Debug("return order not awaiting transfers",
				zap.String("return_order", found.Name),
				zap.String("status", string(found.Status)),
			)
			return nil
		}

		transfers, err := repos.ReverseLogistics().ListReturnTransfers(ctx, event.TenantID(), returnOrderID)
		if err != nil {
			return err
		}
		if len(transfers) == 0 {
			return nil
		}
		for i := range transfers {
			if !transfers[i].IsDone() {
				h.logger.Debug("return order still has open transfers",
					zap.String("return_order", found.Name),
					zap.String("open_transfer", transfers[i].Name),
				)
				return nil
			}
		}

		if err := found.Complete(); err != nil {
			return err
		}
		if err := repos.ReturnOrderRepo().Save(ctx, found); err != nil {
			return err
		}
		order = found
		return nil
	})
	if err != nil {
		h.logger.Error("failed to reconcile return order",
			zap.String("return_order_id", returnOrderID.String()),
			zap.String("transfer", completed.Name),
			zap.Error(err),
		)
		return err
	}
	if order == nil {
		return nil
	}

	h.logger.Info("return order completed",
		zap.String("return_order", order.Name),
		zap.String("last_transfer", completed.Name),
	)
	if h.returnMetrics != nil {
		h.returnMetrics.RecordReturnCompleted(ctx, order.TenantID)
	}
	publishEvents(ctx, h.eventPublisher, h.logger, order)
	return nil
}

var _ shared.EventHandler = (*StatusReconciler)(nil)
