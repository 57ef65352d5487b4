package trade

import (
	"context"

	"github.com/erp/returns/internal/domain/shared"
	"github.com/erp/returns/internal/domain/trade"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ReturnCountInvalidator drops the cached portal counter of a partner whenever
// one of its return orders changes
type ReturnCountInvalidator struct {
	cache  ReturnCountCache
	logger *zap.Logger
}

// NewReturnCountInvalidator creates a new ReturnCountInvalidator
func NewReturnCountInvalidator(cache ReturnCountCache, logger *zap.Logger) *ReturnCountInvalidator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReturnCountInvalidator{cache: cache, logger: logger}
}

// EventTypes returns the event types this handler is interested in
func (h *ReturnCountInvalidator) EventTypes() []string {
	return []string{
		trade.EventTypeReturnOrderCreated,
		trade.EventTypeReturnOrderConfirmed,
		trade.EventTypeReturnOrderCompleted,
		trade.EventTypeReturnOrderCancelled,
	}
}

// Handle invalidates the counter of the event's customer
func (h *ReturnCountInvalidator) Handle(ctx context.Context, event shared.DomainEvent) error {
	var customerID uuid.UUID
	switch e := event.(type) {
	case *trade.ReturnOrderCreatedEvent:
		customerID = e.CustomerID
	case *trade.ReturnOrderConfirmedEvent:
		customerID = e.CustomerID
	case *trade.ReturnOrderCompletedEvent:
		customerID = e.CustomerID
	case *trade.ReturnOrderCancelledEvent:
		customerID = e.CustomerID
	default:
		return nil
	}

	if err := h.cache.Invalidate(ctx, event.TenantID(), customerID); err != nil {
		h.logger.Warn("failed to invalidate return count",
			zap.String("customer_id", customerID.String()),
			zap.Error(err),
		)
		return err
	}
	return nil
}

var _ shared.EventHandler = (*ReturnCountInvalidator)(nil)
