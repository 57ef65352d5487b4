package inventory

import (
	"github.com/erp/returns/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	EventTypeTransferCreated   = "TransferCreated"
	EventTypeTransferCompleted = "TransferCompleted"
	EventTypeTransferCancelled = "TransferCancelled"

	AggregateTypeTransfer = "Transfer"
)

// TransferCreatedEvent is raised when a reverse transfer is generated
type TransferCreatedEvent struct {
	shared.BaseDomainEvent
	TransferID    uuid.UUID       `json:"transfer_id"`
	Name          string          `json:"name"`
	RoleKind      TransferKind    `json:"role_kind"`
	ReturnOrderID *uuid.UUID      `json:"return_order_id,omitempty"`
	Quantity      decimal.Decimal `json:"quantity"`
}

// NewTransferCreatedEvent creates a TransferCreatedEvent
func NewTransferCreatedEvent(t *Transfer) *TransferCreatedEvent {
	return &TransferCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeTransferCreated, AggregateTypeTransfer, t.ID, t.TenantID),
		TransferID:      t.ID,
		Name:            t.Name,
		RoleKind:        t.Role.Kind(),
		ReturnOrderID:   t.Role.ReturnOrderRef(),
		Quantity:        t.TotalQuantity(),
	}
}

// EventType returns the event type name
func (e *TransferCreatedEvent) EventType() string {
	return EventTypeTransferCreated
}

// TransferCompletedEvent is raised when a transfer is validated
type TransferCompletedEvent struct {
	shared.BaseDomainEvent
	TransferID    uuid.UUID    `json:"transfer_id"`
	Name          string       `json:"name"`
	RoleKind      TransferKind `json:"role_kind"`
	ReturnOrderID *uuid.UUID   `json:"return_order_id,omitempty"`
	SalesOrderID  *uuid.UUID   `json:"sales_order_id,omitempty"`
}

// NewTransferCompletedEvent creates a TransferCompletedEvent
func NewTransferCompletedEvent(t *Transfer) *TransferCompletedEvent {
	return &TransferCompletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeTransferCompleted, AggregateTypeTransfer, t.ID, t.TenantID),
		TransferID:      t.ID,
		Name:            t.Name,
		RoleKind:        t.Role.Kind(),
		ReturnOrderID:   t.Role.ReturnOrderRef(),
		SalesOrderID:    t.SalesOrderID,
	}
}

// EventType returns the event type name
func (e *TransferCompletedEvent) EventType() string {
	return EventTypeTransferCompleted
}

// IsReturnTraffic reports whether the completed transfer executes a return order
func (e *TransferCompletedEvent) IsReturnTraffic() bool {
	return e.RoleKind == TransferKindReturn && e.ReturnOrderID != nil
}

// TransferCancelledEvent is raised when a transfer is cancelled
type TransferCancelledEvent struct {
	shared.BaseDomainEvent
	TransferID    uuid.UUID    `json:"transfer_id"`
	Name          string       `json:"name"`
	RoleKind      TransferKind `json:"role_kind"`
	ReturnOrderID *uuid.UUID   `json:"return_order_id,omitempty"`
}

// NewTransferCancelledEvent creates a TransferCancelledEvent
func NewTransferCancelledEvent(t *Transfer) *TransferCancelledEvent {
	return &TransferCancelledEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeTransferCancelled, AggregateTypeTransfer, t.ID, t.TenantID),
		TransferID:      t.ID,
		Name:            t.Name,
		RoleKind:        t.Role.Kind(),
		ReturnOrderID:   t.Role.ReturnOrderRef(),
	}
}

// EventType returns the event type name
func (e *TransferCancelledEvent) EventType() string {
	return EventTypeTransferCancelled
}
