package trade

import (
	"fmt"
	"strings"
	"time"

	"github.com/erp/returns/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ReturnStatus represents the lifecycle state of a return order
type ReturnStatus string

const (
	ReturnStatusDraft     ReturnStatus = "draft"
	ReturnStatusConfirm   ReturnStatus = "confirm" // reverse transfers created, not yet completed
	ReturnStatusDone      ReturnStatus = "done"    // every reverse transfer completed
	ReturnStatusCancelled ReturnStatus = "cancel"
)

// IsValid checks if the status is a valid ReturnStatus
func (s ReturnStatus) IsValid() bool {
	switch s {
	case ReturnStatusDraft, ReturnStatusConfirm, ReturnStatusDone, ReturnStatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of ReturnStatus
func (s ReturnStatus) String() string {
	return string(s)
}

// IsTerminal reports whether no further transition is possible
func (s ReturnStatus) IsTerminal() bool {
	return s == ReturnStatusDone || s == ReturnStatusCancelled
}

// CanTransitionTo checks if the status can transition to the target status
func (s ReturnStatus) CanTransitionTo(target ReturnStatus) bool {
	switch s {
	case ReturnStatusDraft:
		return target == ReturnStatusConfirm || target == ReturnStatusCancelled
	case ReturnStatusConfirm:
		return target == ReturnStatusDone || target == ReturnStatusCancelled
	case ReturnStatusDone, ReturnStatusCancelled:
		return false
	}
	return false
}

// ReturnLine is one product/quantity entry of a return order
type ReturnLine struct {
	ID            uuid.UUID
	ReturnOrderID uuid.UUID
	ProductID     uuid.UUID
	ProductName   string
	Quantity      decimal.Decimal
	Reason        string
	// TransferID is the reverse transfer created for this line on confirmation
	TransferID *uuid.UUID
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// EffectiveReason returns the line reason, falling back to the order reason
func (l *ReturnLine) EffectiveReason(orderReason string) string {
	if strings.TrimSpace(l.Reason) != "" {
		return l.Reason
	}
	return orderReason
}

// ReturnOrder is a customer's request to send products back against a sales order
type ReturnOrder struct {
	shared.TenantAggregateRoot
	Name             string
	SalesOrderID     uuid.UUID
	SalesOrderNumber string
	CustomerID       uuid.UUID
	CustomerName     string
	RequesterID      uuid.UUID
	Reason           string
	Note             string
	Status           ReturnStatus
	Active           bool
	ToRefund         bool
	Lines            []ReturnLine
	ConfirmedAt      *time.Time
	DoneAt           *time.Time
	CancelledAt      *time.Time
	CancelReason     string
}

// NewReturnOrder creates a draft return order for a sales order
func NewReturnOrder(tenantID uuid.UUID, name string, order *SalesOrder, requesterID uuid.UUID, reason string) (*ReturnOrder, error) {
	if name == "" {
		return nil, shared.NewDomainError("INVALID_RETURN_NAME", "Return order name cannot be empty")
	}
	if order == nil || order.ID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_SALES_ORDER", "Sales order is required")
	}
	if strings.TrimSpace(reason) == "" {
		return nil, ErrMissingReason
	}

	ro := &ReturnOrder{
		TenantAggregateRoot: shared.NewTenantAggregateRootWithCreator(tenantID, requesterID),
		Name:                name,
		SalesOrderID:        order.ID,
		SalesOrderNumber:    order.OrderNumber,
		CustomerID:          order.CustomerID,
		CustomerName:        order.CustomerName,
		RequesterID:         requesterID,
		Reason:              strings.TrimSpace(reason),
		Status:              ReturnStatusDraft,
		Active:              true,
		Lines:               make([]ReturnLine, 0),
	}
	return ro, nil
}

// AddLine appends a product line; only drafts accept new lines
func (r *ReturnOrder) AddLine(productID uuid.UUID, productName string, quantity decimal.Decimal, reason string) (*ReturnLine, error) {
	if r.Status != ReturnStatusDraft {
		return nil, shared.NewDomainError("INVALID_STATE", "Lines can only be added to a draft return order")
	}
	if productID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "Product ID cannot be empty")
	}
	if !quantity.IsPositive() {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Return quantity must be positive")
	}
	now := time.Now()
	r.Lines = append(r.Lines, ReturnLine{
		ID:            uuid.New(),
		ReturnOrderID: r.ID,
		ProductID:     productID,
		ProductName:   productName,
		Quantity:      quantity,
		Reason:        reason,
		CreatedAt:     now,
		UpdatedAt:     now,
	})
	r.Touch()
	return &r.Lines[len(r.Lines)-1], nil
}

// PositiveLines returns the lines that require a reverse transfer
func (r *ReturnOrder) PositiveLines() []*ReturnLine {
	lines := make([]*ReturnLine, 0, len(r.Lines))
	for i := range r.Lines {
		if r.Lines[i].Quantity.IsPositive() {
			lines = append(lines, &r.Lines[i])
		}
	}
	return lines
}

// EnsureConfirmable checks confirmation preconditions before any transfer is created
func (r *ReturnOrder) EnsureConfirmable() error {
	if !r.Status.CanTransitionTo(ReturnStatusConfirm) {
		return shared.NewDomainError("INVALID_STATE",
			fmt.Sprintf("Cannot confirm return order in %s status", r.Status))
	}
	if len(r.PositiveLines()) == 0 {
		return ErrEmptyReturn
	}
	return nil
}

// Confirm records the reverse transfer created for each positive line and
// moves the order to confirm. transfers maps line ID to transfer ID and must
// cover every positive line exactly once.
func (r *ReturnOrder) Confirm(transfers map[uuid.UUID]uuid.UUID) error {
	if err := r.EnsureConfirmable(); err != nil {
		return err
	}
	positive := r.PositiveLines()
	if len(transfers) != len(positive) {
		return shared.NewDomainError("INCOMPLETE_DISPATCH",
			fmt.Sprintf("Expected %d reverse transfers, got %d", len(positive), len(transfers)))
	}
	for _, line := range positive {
		if _, ok := transfers[line.ID]; !ok {
			return shared.NewDomainError("INCOMPLETE_DISPATCH",
				fmt.Sprintf("No reverse transfer for %s", line.ProductName))
		}
	}

	now := time.Now()
	for _, line := range positive {
		transferID := transfers[line.ID]
		line.TransferID = &transferID
		line.UpdatedAt = now
	}
	r.Status = ReturnStatusConfirm
	r.ConfirmedAt = &now
	r.UpdatedAt = now
	r.IncrementVersion()

	r.AddDomainEvent(NewReturnOrderConfirmedEvent(r))
	return nil
}

// Complete marks the order done once all reverse transfers completed
func (r *ReturnOrder) Complete() error {
	if !r.Status.CanTransitionTo(ReturnStatusDone) {
		return shared.NewDomainError("INVALID_STATE",
			fmt.Sprintf("Cannot complete return order in %s status", r.Status))
	}
	now := time.Now()
	r.Status = ReturnStatusDone
	r.DoneAt = &now
	r.UpdatedAt = now
	r.IncrementVersion()

	r.AddDomainEvent(NewReturnOrderCompletedEvent(r))
	return nil
}

// Cancel moves a draft or confirmed order to cancel. Reverse transfers still
// open must be cancelled by the caller through the inventory service.
func (r *ReturnOrder) Cancel(reason string) error {
	if !r.Status.CanTransitionTo(ReturnStatusCancelled) {
		return shared.NewDomainError("INVALID_STATE",
			fmt.Sprintf("Cannot cancel return order in %s status", r.Status))
	}
	now := time.Now()
	r.Status = ReturnStatusCancelled
	r.CancelReason = reason
	r.CancelledAt = &now
	r.UpdatedAt = now
	r.IncrementVersion()

	r.AddDomainEvent(NewReturnOrderCancelledEvent(r))
	return nil
}

// Archive soft-deletes a terminal order
func (r *ReturnOrder) Archive() error {
	if !r.Status.IsTerminal() {
		return shared.NewDomainError("INVALID_STATE", "Only done or cancelled return orders can be archived")
	}
	r.Active = false
	r.Touch()
	return nil
}

// SetToRefund sets whether confirmation also lowers the order's delivered quantity
func (r *ReturnOrder) SetToRefund(toRefund bool) error {
	if r.Status != ReturnStatusDraft {
		return shared.NewDomainError("INVALID_STATE", "Refund flag can only change on a draft return order")
	}
	r.ToRefund = toRefund
	r.Touch()
	return nil
}

// ReturnTransferIDs returns the reverse transfers recorded on the lines
func (r *ReturnOrder) ReturnTransferIDs() []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(r.Lines))
	for _, l := range r.Lines {
		if l.TransferID != nil {
			ids = append(ids, *l.TransferID)
		}
	}
	return ids
}

// LineByTransfer returns the line a reverse transfer was created for
func (r *ReturnOrder) LineByTransfer(transferID uuid.UUID) *ReturnLine {
	for i := range r.Lines {
		if r.Lines[i].TransferID != nil && *r.Lines[i].TransferID == transferID {
			return &r.Lines[i]
		}
	}
	return nil
}

// TotalQuantity sums every line quantity
func (r *ReturnOrder) TotalQuantity() decimal.Decimal {
	total := decimal.Zero
	for _, l := range r.Lines {
		total = total.Add(l.Quantity)
	}
	return total
}

// IsOwnedBy reports whether the order belongs to customerID
func (r *ReturnOrder) IsOwnedBy(customerID uuid.UUID) bool {
	return r.CustomerID == customerID
}

// AccessURL is the portal path of the order
func (r *ReturnOrder) AccessURL() string {
	return ReturnOrderAccessURL(r.ID)
}

// ReturnOrderAccessURL is the portal path of the return order with id
func ReturnOrderAccessURL(id uuid.UUID) string {
	return fmt.Sprintf("/my/return_orders/%s", id)
}
