package trade

import (
	"context"
	"errors"
	"strings"

	"github.com/erp/returns/internal/domain/shared"
	"github.com/erp/returns/internal/domain/trade"
	"github.com/erp/returns/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// ReturnRequestService turns a customer's return request into a draft ReturnOrder
type ReturnRequestService struct {
	txScope        TransactionScope
	eventPublisher shared.EventPublisher
	returnMetrics  *telemetry.ReturnMetrics
	logger         *zap.Logger
}

// NewReturnRequestService creates a new ReturnRequestService
func NewReturnRequestService(txScope TransactionScope, logger *zap.Logger) *ReturnRequestService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReturnRequestService{
		txScope: txScope,
		logger:  logger,
	}
}

// SetEventPublisher sets the event publisher for cross-context integration
func (s *ReturnRequestService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetReturnMetrics sets the return metrics collector
func (s *ReturnRequestService) SetReturnMetrics(m *telemetry.ReturnMetrics) {
	s.returnMetrics = m
}

// Submit validates and persists a return request. The sales order row stays
// locked from ownership check until commit, so two overlapping requests
// against the same order cannot both claim the same delivered quantity.
//
// Lines that fail validation are dropped and reported in the result. When no
// line survives, Submit returns trade.ErrNoValidLines together with a result
// carrying the rejections.
func (s *ReturnRequestService) Submit(ctx context.Context, rc shared.RequestContext, req SubmitReturnRequest) (*SubmitReturnResult, error) {
	if !rc.IsAuthenticated() {
		return nil, shared.ErrUnauthorized
	}

	ctx, span := telemetry.StartServiceSpan(ctx, "return_request", "submit",
		telemetry.SpanAttrSalesOrderID, req.SalesOrderID.String(),
		telemetry.SpanAttrPartnerID, rc.PartnerID.String(),
		telemetry.SpanAttrLineCount, len(req.Lines),
	)
	defer span.End()

	var (
		order    *trade.ReturnOrder
		rejected []trade.LineRejection
	)
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		salesOrder, err := repos.SalesOrderRepo().FindByIDForUpdate(ctx, rc.TenantID, req.SalesOrderID)
		if err != nil {
			return err
		}
		if !rc.OwnsPartner(salesOrder.CustomerID) {
			return trade.ErrNotOwner
		}
		if strings.TrimSpace(req.Reason) == "" {
			return trade.ErrMissingReason
		}

		claimed, err := repos.ReturnOrderRepo().SumClaimedQuantityByProduct(ctx, rc.TenantID, salesOrder.ID)
		if err != nil {
			return err
		}
		name, err := repos.ReturnOrderRepo().GenerateReturnName(ctx, rc.TenantID)
		if err != nil {
			return err
		}

		var buildErr error
		order, rejected, buildErr = trade.BuildReturnRequest(trade.ReturnRequestInput{
			TenantID:        rc.TenantID,
			RequesterID:     rc.ActorID,
			Name:            name,
			Order:           salesOrder,
			Reason:          req.Reason,
			Lines:           ToReturnLineRequests(req.Lines),
			AlreadyReturned: claimed,
		})
		s.logRejections(ctx, rc, salesOrder, rejected)
		if buildErr != nil {
			return buildErr
		}
		return repos.ReturnOrderRepo().Save(ctx, order)
	})
	if err != nil {
		telemetry.RecordError(span, err)
		if errors.Is(err, trade.ErrNoValidLines) {
			return &SubmitReturnResult{Rejected: ToLineRejectionResponses(rejected)}, err
		}
		return nil, err
	}

	telemetry.SetAttributes(span, telemetry.SpanAttrReturnOrderName, order.Name)
	s.logger.Info("return request submitted",
		zap.String("return_order", order.Name),
		zap.String("sales_order_id", order.SalesOrderID.String()),
		zap.String("customer_id", order.CustomerID.String()),
		zap.Int("lines", len(order.Lines)),
		zap.Int("rejected", len(rejected)),
	)

	if s.returnMetrics != nil {
		s.returnMetrics.RecordReturnSubmitted(ctx, rc.TenantID, len(order.Lines))
	}
	publishEvents(ctx, s.eventPublisher, s.logger, order)

	response := ToReturnOrderResponse(order)
	return &SubmitReturnResult{
		ReturnOrder: &response,
		Rejected:    ToLineRejectionResponses(rejected),
	}, nil
}

func (s *ReturnRequestService) logRejections(ctx context.Context, rc shared.RequestContext, salesOrder *trade.SalesOrder, rejected []trade.LineRejection) {
	for _, r := range rejected {
		s.logger.Warn("return line rejected",
			zap.String("sales_order", salesOrder.OrderNumber),
			zap.String("product_id", r.ProductID.String()),
			zap.String("quantity", r.Quantity.String()),
			zap.String("reason", string(r.Reason)),
			zap.String("detail", r.Detail),
		)
		if s.returnMetrics != nil {
			s.returnMetrics.RecordLineRejected(ctx, rc.TenantID, string(r.Reason))
		}
	}
}

// aggregateWithEvents is satisfied by every aggregate root that queues events
type aggregateWithEvents interface {
	GetDomainEvents() []shared.DomainEvent
	ClearDomainEvents()
}

// publishEvents publishes and clears queued events after commit. Publish
// failures are logged; the committed change stands.
func publishEvents(ctx context.Context, publisher shared.EventPublisher, logger *zap.Logger, aggregates ...aggregateWithEvents) {
	var events []shared.DomainEvent
	for _, agg := range aggregates {
		events = append(events, agg.GetDomainEvents()...)
		agg.ClearDomainEvents()
	}
	if publisher == nil || len(events) == 0 {
		return
	}
	if err := publisher.Publish(ctx, events...); err != nil {
		logger.Error("failed to publish domain events",
			zap.Int("count", len(events)),
			zap.Error(err),
		)
	}
}
