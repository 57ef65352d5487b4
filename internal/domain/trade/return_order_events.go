package trade

import (
	"github.com/erp/returns/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AggregateTypeReturnOrder names the aggregate in events
const AggregateTypeReturnOrder = "ReturnOrder"

// Event types raised by ReturnOrder
const (
	EventTypeReturnOrderCreated   = "ReturnOrderCreated"
	EventTypeReturnOrderConfirmed = "ReturnOrderConfirmed"
	EventTypeReturnOrderCompleted = "ReturnOrderCompleted"
	EventTypeReturnOrderCancelled = "ReturnOrderCancelled"
)

// ReturnLineInfo carries line data in events
type ReturnLineInfo struct {
	LineID     uuid.UUID       `json:"line_id"`
	ProductID  uuid.UUID       `json:"product_id"`
	Quantity   decimal.Decimal `json:"quantity"`
	TransferID *uuid.UUID      `json:"transfer_id,omitempty"`
}

func lineInfos(r *ReturnOrder) []ReturnLineInfo {
	infos := make([]ReturnLineInfo, len(r.Lines))
	for i, l := range r.Lines {
		infos[i] = ReturnLineInfo{
			LineID:     l.ID,
			ProductID:  l.ProductID,
			Quantity:   l.Quantity,
			TransferID: l.TransferID,
		}
	}
	return infos
}

// ReturnOrderCreatedEvent is raised when a customer submits a return request
type ReturnOrderCreatedEvent struct {
	shared.BaseDomainEvent
	ReturnOrderID uuid.UUID        `json:"return_order_id"`
	Name          string           `json:"name"`
	SalesOrderID  uuid.UUID        `json:"sales_order_id"`
	CustomerID    uuid.UUID        `json:"customer_id"`
	Lines         []ReturnLineInfo `json:"lines"`
}

// NewReturnOrderCreatedEvent creates a ReturnOrderCreatedEvent
func NewReturnOrderCreatedEvent(r *ReturnOrder) *ReturnOrderCreatedEvent {
	return &ReturnOrderCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeReturnOrderCreated, AggregateTypeReturnOrder, r.ID, r.TenantID),
		ReturnOrderID:   r.ID,
		Name:            r.Name,
		SalesOrderID:    r.SalesOrderID,
		CustomerID:      r.CustomerID,
		Lines:           lineInfos(r),
	}
}

// EventType returns the event type name
func (e *ReturnOrderCreatedEvent) EventType() string {
	return EventTypeReturnOrderCreated
}

// ReturnOrderConfirmedEvent is raised once every reverse transfer was created
type ReturnOrderConfirmedEvent struct {
	shared.BaseDomainEvent
	ReturnOrderID uuid.UUID        `json:"return_order_id"`
	Name          string           `json:"name"`
	SalesOrderID  uuid.UUID        `json:"sales_order_id"`
	CustomerID    uuid.UUID        `json:"customer_id"`
	ToRefund      bool             `json:"to_refund"`
	Lines         []ReturnLineInfo `json:"lines"`
}

// NewReturnOrderConfirmedEvent creates a ReturnOrderConfirmedEvent
func NewReturnOrderConfirmedEvent(r *ReturnOrder) *ReturnOrderConfirmedEvent {
	return &ReturnOrderConfirmedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeReturnOrderConfirmed, AggregateTypeReturnOrder, r.ID, r.TenantID),
		ReturnOrderID:   r.ID,
		Name:            r.Name,
		SalesOrderID:    r.SalesOrderID,
		CustomerID:      r.CustomerID,
		ToRefund:        r.ToRefund,
		Lines:           lineInfos(r),
	}
}

// EventType returns the event type name
func (e *ReturnOrderConfirmedEvent) EventType() string {
	return EventTypeReturnOrderConfirmed
}

// ReturnOrderCompletedEvent is raised when the last reverse transfer completes
type ReturnOrderCompletedEvent struct {
	shared.BaseDomainEvent
	ReturnOrderID uuid.UUID `json:"return_order_id"`
	Name          string    `json:"name"`
	CustomerID    uuid.UUID `json:"customer_id"`
}

// NewReturnOrderCompletedEvent creates a ReturnOrderCompletedEvent
func NewReturnOrderCompletedEvent(r *ReturnOrder) *ReturnOrderCompletedEvent {
	return &ReturnOrderCompletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeReturnOrderCompleted, AggregateTypeReturnOrder, r.ID, r.TenantID),
		ReturnOrderID:   r.ID,
		Name:            r.Name,
		CustomerID:      r.CustomerID,
	}
}

// EventType returns the event type name
func (e *ReturnOrderCompletedEvent) EventType() string {
	return EventTypeReturnOrderCompleted
}

// ReturnOrderCancelledEvent is raised when a return order is cancelled
type ReturnOrderCancelledEvent struct {
	shared.BaseDomainEvent
	ReturnOrderID uuid.UUID `json:"return_order_id"`
	Name          string    `json:"name"`
	CustomerID    uuid.UUID `json:"customer_id"`
	Reason        string    `json:"reason"`
}

// NewReturnOrderCancelledEvent creates a ReturnOrderCancelledEvent
func NewReturnOrderCancelledEvent(r *ReturnOrder) *ReturnOrderCancelledEvent {
	return &ReturnOrderCancelledEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeReturnOrderCancelled, AggregateTypeReturnOrder, r.ID, r.TenantID),
		ReturnOrderID:   r.ID,
		Name:            r.Name,
		CustomerID:      r.CustomerID,
		Reason:          r.CancelReason,
	}
}

// EventType returns the event type name
func (e *ReturnOrderCancelledEvent) EventType() string {
	return EventTypeReturnOrderCancelled
}
