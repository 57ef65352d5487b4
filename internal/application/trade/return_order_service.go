package trade

import (
	"context"

	"github.com/erp/returns/internal/domain/inventory"
	"github.com/erp/returns/internal/domain/shared"
	"github.com/erp/returns/internal/domain/trade"
	"github.com/erp/returns/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ReturnOrderService handles back-office return order operations
type ReturnOrderService struct {
	returnRepo     trade.ReturnOrderRepository
	txScope        TransactionScope
	dispatcher     *ReverseLogisticsDispatcher
	eventPublisher shared.EventPublisher
	returnMetrics  *telemetry.ReturnMetrics
	logger         *zap.Logger
}

// NewReturnOrderService creates a new ReturnOrderService
func NewReturnOrderService(returnRepo trade.ReturnOrderRepository, txScope TransactionScope, logger *zap.Logger) *ReturnOrderService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReturnOrderService{
		returnRepo: returnRepo,
		txScope:    txScope,
		dispatcher: NewReverseLogisticsDispatcher(logger),
		logger:     logger,
	}
}

// SetEventPublisher sets the event publisher for cross-context integration
func (s *ReturnOrderService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetReturnMetrics sets the return metrics collector
func (s *ReturnOrderService) SetReturnMetrics(m *telemetry.ReturnMetrics) {
	s.returnMetrics = m
}

// GetByID retrieves a return order by ID
func (s *ReturnOrderService) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*ReturnOrderResponse, error) {
	order, err := s.returnRepo.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	response := ToReturnOrderResponse(order)
	return &response, nil
}

// List retrieves return orders with filtering and pagination
func (s *ReturnOrderService) List(ctx context.Context, tenantID uuid.UUID, filter ReturnOrderListFilter) ([]ReturnOrderListItemResponse, int64, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}
	if filter.PageSize > 100 {
		filter.PageSize = 100
	}
	if filter.OrderBy == "" {
		filter.OrderBy = "created_at"
	}
	if filter.OrderDir == "" {
		filter.OrderDir = "desc"
	}

	domainFilter := shared.Filter{
		Page:     filter.Page,
		PageSize: filter.PageSize,
		OrderBy:  filter.OrderBy,
		OrderDir: filter.OrderDir,
		Search:   filter.Search,
		Filters:  make(map[string]interface{}),
	}
	if filter.Status != "" {
		domainFilter.Filters["status"] = filter.Status
	}
	if filter.CustomerID != nil {
		domainFilter.Filters["customer_id"] = *filter.CustomerID
	}
	if filter.SalesOrderID != nil {
		domainFilter.Filters["sales_order_id"] = *filter.SalesOrderID
	}

	orders, err := s.returnRepo.FindAllForTenant(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.returnRepo.CountForTenant(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	return ToReturnOrderListItemResponses(orders), total, nil
}

// CountBySalesOrder counts return orders raised against a sales order
func (s *ReturnOrderService) CountBySalesOrder(ctx context.Context, tenantID, salesOrderID uuid.UUID) (int64, error) {
	return s.returnRepo.CountBySalesOrder(ctx, tenantID, salesOrderID)
}

// Confirm creates the reverse transfers of a draft return order and moves it
// to confirm. Either every positive line gets its transfer or nothing is
// written. With the refund flag set, the sales order's delivered quantities
// are lowered in the same transaction.
func (s *ReturnOrderService) Confirm(ctx context.Context, rc shared.RequestContext, id uuid.UUID, req ConfirmReturnOrderRequest) (*ReturnOrderResponse, error) {
	if !rc.IsAuthenticated() {
		return nil, shared.ErrUnauthorized
	}

	ctx, span := telemetry.StartServiceSpan(ctx, "return_order", "confirm",
		telemetry.SpanAttrReturnOrderID, id.String(),
	)
	defer span.End()

	var (
		order     *trade.ReturnOrder
		transfers []*inventory.Transfer
	)
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		order, err = repos.ReturnOrderRepo().FindByIDForUpdate(ctx, rc.TenantID, id)
		if err != nil {
			return err
		}
		if req.ToRefund != nil && *req.ToRefund != order.ToRefund {
			if err := order.SetToRefund(*req.ToRefund); err != nil {
				return err
			}
		}
		if err := order.EnsureConfirmable(); err != nil {
			return err
		}

		dispatched, err := s.dispatcher.Dispatch(ctx, repos, order)
		if err != nil {
			return err
		}
		transfers = dispatched.Transfers
		if err := order.Confirm(dispatched.LineTransfers); err != nil {
			return err
		}

		if order.ToRefund {
			if err := s.decrementDelivered(ctx, repos, order); err != nil {
				return err
			}
		}
		return repos.ReturnOrderRepo().Save(ctx, order)
	})
	if err != nil {
		telemetry.RecordError(span, err)
		s.logger.Warn("return order confirmation failed",
			zap.String("return_order_id", id.String()),
			zap.Error(err),
		)
		return nil, err
	}

	telemetry.SetAttributes(span,
		telemetry.SpanAttrReturnOrderName, order.Name,
		telemetry.SpanAttrToRefund, order.ToRefund,
	)
	s.logger.Info("return order confirmed",
		zap.String("return_order", order.Name),
		zap.Int("transfers", len(transfers)),
		zap.Bool("to_refund", order.ToRefund),
	)
	if s.returnMetrics != nil {
		s.returnMetrics.RecordReturnConfirmed(ctx, rc.TenantID, len(transfers))
	}

	aggregates := []aggregateWithEvents{order}
	for _, t := range transfers {
		aggregates = append(aggregates, t)
	}
	publishEvents(ctx, s.eventPublisher, s.logger, aggregates...)

	response := ToReturnOrderResponse(order)
	return &response, nil
}

// Cancel cancels a draft or confirmed return order and force-cancels its
// reverse transfers that are still open. With the refund flag set, delivered
// quantities of the lines whose transfer was cancelled are restored.
func (s *ReturnOrderService) Cancel(ctx context.Context, rc shared.RequestContext, id uuid.UUID, req CancelReturnOrderRequest) (*ReturnOrderResponse, error) {
	if !rc.IsAuthenticated() {
		return nil, shared.ErrUnauthorized
	}

	var (
		order     *trade.ReturnOrder
		cancelled []*inventory.Transfer
	)
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		order, err = repos.ReturnOrderRepo().FindByIDForUpdate(ctx, rc.TenantID, id)
		if err != nil {
			return err
		}
		wasConfirmed := order.Status == trade.ReturnStatusConfirm
		if err := order.Cancel(req.Reason); err != nil {
			return err
		}

		if wasConfirmed {
			cancelled, err = s.cancelOpenTransfers(ctx, repos, order)
			if err != nil {
				return err
			}
			if order.ToRefund && len(cancelled) > 0 {
				if err := s.restoreDelivered(ctx, repos, order, cancelled); err != nil {
					return err
				}
			}
		}
		return repos.ReturnOrderRepo().Save(ctx, order)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("return order cancelled",
		zap.String("return_order", order.Name),
		zap.Int("transfers_cancelled", len(cancelled)),
	)
	if s.returnMetrics != nil {
		s.returnMetrics.RecordReturnCancelled(ctx, rc.TenantID)
	}

	aggregates := []aggregateWithEvents{order}
	for _, t := range cancelled {
		aggregates = append(aggregates, t)
	}
	publishEvents(ctx, s.eventPublisher, s.logger, aggregates...)

	response := ToReturnOrderResponse(order)
	return &response, nil
}

func (s *ReturnOrderService) cancelOpenTransfers(ctx context.Context, repos TransactionalRepositories, order *trade.ReturnOrder) ([]*inventory.Transfer, error) {
	gateway := repos.ReverseLogistics()
	transfers, err := gateway.ListReturnTransfers(ctx, order.TenantID, order.ID)
	if err != nil {
		return nil, err
	}
	cancelled := make([]*inventory.Transfer, 0, len(transfers))
	for i := range transfers {
		if transfers[i].Status.IsTerminal() {
			continue
		}
		t, err := gateway.CancelTransfer(ctx, order.TenantID, transfers[i].ID)
		if err != nil {
			return nil, err
		}
		cancelled = append(cancelled, t)
	}
	return cancelled, nil
}

func (s *ReturnOrderService) decrementDelivered(ctx context.Context, repos TransactionalRepositories, order *trade.ReturnOrder) error {
	salesOrder, err := repos.SalesOrderRepo().FindByIDForUpdate(ctx, order.TenantID, order.SalesOrderID)
	if err != nil {
		return err
	}
	for _, line := range order.PositiveLines() {
		if err := salesOrder.DecrementDelivered(line.ProductID, line.Quantity); err != nil {
			return err
		}
	}
	return repos.SalesOrderRepo().Save(ctx, salesOrder)
}

func (s *ReturnOrderService) restoreDelivered(ctx context.Context, repos TransactionalRepositories, order *trade.ReturnOrder, cancelled []*inventory.Transfer) error {
	salesOrder, err := repos.SalesOrderRepo().FindByIDForUpdate(ctx, order.TenantID, order.SalesOrderID)
	if err != nil {
		return err
	}
	for _, t := range cancelled {
		line := order.LineByTransfer(t.ID)
		if line == nil {
			continue
		}
		salesOrder.RestoreDelivered(line.ProductID, line.Quantity)
	}
	return repos.SalesOrderRepo().Save(ctx, salesOrder)
}
