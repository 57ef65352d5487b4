package inventory

import (
	"fmt"
	"time"

	"github.com/erp/returns/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransferStatus represents the lifecycle of a goods movement document
type TransferStatus string

const (
	TransferStatusDraft     TransferStatus = "draft"
	TransferStatusReady     TransferStatus = "ready"
	TransferStatusDone      TransferStatus = "done"
	TransferStatusCancelled TransferStatus = "cancel"
)

// IsValid checks if the status is a valid TransferStatus
func (s TransferStatus) IsValid() bool {
	switch s {
	case TransferStatusDraft, TransferStatusReady, TransferStatusDone, TransferStatusCancelled:
		return true
	}
	return false
}

// IsTerminal reports whether no further transition is possible
func (s TransferStatus) IsTerminal() bool {
	return s == TransferStatusDone || s == TransferStatusCancelled
}

// String returns the string representation of TransferStatus
func (s TransferStatus) String() string {
	return string(s)
}

// StockMove is one product line of a transfer
type StockMove struct {
	ID           uuid.UUID
	TransferID   uuid.UUID
	ProductID    uuid.UUID
	ProductName  string
	Quantity     decimal.Decimal
	QuantityDone decimal.Decimal
	Status       TransferStatus
	// OriginMoveID is the delivered move a return move reverses
	OriginMoveID *uuid.UUID
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// IsDone reports whether the move has been physically executed
func (m *StockMove) IsDone() bool {
	return m.Status == TransferStatusDone
}

// Transfer is a goods movement document owned by the inventory subsystem.
// It covers outbound deliveries and reverse (return) movements alike.
type Transfer struct {
	shared.TenantAggregateRoot
	Name         string
	Origin       string
	SalesOrderID *uuid.UUID
	CustomerID   uuid.UUID
	Role         TransferRole
	// ReturnSourceID marks a delivery as the donor of a return order
	ReturnSourceID        *uuid.UUID
	DestinationLocationID *uuid.UUID
	Note                  string
	ToRefund              bool
	Status                TransferStatus
	DoneAt                *time.Time
	Moves                 []StockMove
}

// NewDelivery creates an outbound delivery for a sales order
func NewDelivery(tenantID, salesOrderID, customerID uuid.UUID, name, origin string) (*Transfer, error) {
	if name == "" {
		return nil, shared.NewDomainError("INVALID_TRANSFER_NAME", "Transfer name cannot be empty")
	}
	if salesOrderID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_SALES_ORDER", "Sales order ID cannot be empty")
	}
	t := &Transfer{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Name:                name,
		Origin:              origin,
		SalesOrderID:        &salesOrderID,
		CustomerID:          customerID,
		Role:                OriginalDelivery(),
		Status:              TransferStatusReady,
		Moves:               make([]StockMove, 0),
	}
	return t, nil
}

// AddMove appends a product line while the transfer is still open
func (t *Transfer) AddMove(productID uuid.UUID, productName string, quantity decimal.Decimal) (*StockMove, error) {
	if t.Status.IsTerminal() {
		return nil, shared.NewDomainError("INVALID_STATE", "Cannot add moves to a closed transfer")
	}
	if productID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "Product ID cannot be empty")
	}
	if quantity.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Move quantity must be positive")
	}
	now := time.Now()
	t.Moves = append(t.Moves, StockMove{
		ID:           uuid.New(),
		TransferID:   t.ID,
		ProductID:    productID,
		ProductName:  productName,
		Quantity:     quantity,
		QuantityDone: decimal.Zero,
		Status:       t.Status,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	return &t.Moves[len(t.Moves)-1], nil
}

// ReverseTransferParams describes a reverse transfer scoped to one delivered move
type ReverseTransferParams struct {
	Name                  string
	ReturnOrderID         uuid.UUID
	ReturnOrderName       string
	Quantity              decimal.Decimal
	Note                  string
	ToRefund              bool
	DestinationLocationID *uuid.UUID
}

// NewReverseTransfer creates return traffic for exactly one product and quantity
// of a completed delivery move. Other products of the source delivery are not
// carried over.
func NewReverseTransfer(source *Transfer, sourceMove *StockMove, params ReverseTransferParams) (*Transfer, error) {
	if source == nil || sourceMove == nil {
		return nil, shared.NewDomainError("INVALID_SOURCE_MOVE", "Source move is required")
	}
	if !source.Role.IsDelivery() {
		return nil, shared.NewDomainError("INVALID_SOURCE_MOVE", "Only deliveries can be reversed")
	}
	if !sourceMove.IsDone() {
		return nil, shared.NewDomainError("INVALID_SOURCE_MOVE",
			fmt.Sprintf("Move for %s has not been delivered", sourceMove.ProductName))
	}
	if params.ReturnOrderID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_RETURN_ORDER", "Return order ID cannot be empty")
	}
	if params.Quantity.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Return quantity must be positive")
	}
	if params.Quantity.GreaterThan(sourceMove.QuantityDone) {
		return nil, shared.NewDomainError("INVALID_QUANTITY",
			fmt.Sprintf("Cannot return %s units of %s, only %s delivered",
				params.Quantity.String(), sourceMove.ProductName, sourceMove.QuantityDone.String()))
	}
	if params.Name == "" {
		return nil, shared.NewDomainError("INVALID_TRANSFER_NAME", "Transfer name cannot be empty")
	}

	t := &Transfer{
		TenantAggregateRoot:   shared.NewTenantAggregateRoot(source.TenantID),
		Name:                  params.Name,
		Origin:                params.ReturnOrderName,
		SalesOrderID:          source.SalesOrderID,
		CustomerID:            source.CustomerID,
		Role:                  ReturnOf(params.ReturnOrderID),
		DestinationLocationID: params.DestinationLocationID,
		Note:                  params.Note,
		ToRefund:              params.ToRefund,
		Status:                TransferStatusReady,
		Moves:                 make([]StockMove, 0, 1),
	}
	move, err := t.AddMove(sourceMove.ProductID, sourceMove.ProductName, params.Quantity)
	if err != nil {
		return nil, err
	}
	originID := sourceMove.ID
	move.OriginMoveID = &originID

	t.AddDomainEvent(NewTransferCreatedEvent(t))
	return t, nil
}

// MarkReturnSource records that this delivery feeds returnOrderID
func (t *Transfer) MarkReturnSource(returnOrderID uuid.UUID) error {
	if !t.Role.IsDelivery() {
		return shared.NewDomainError("INVALID_TRANSFER_ROLE", "Only deliveries can be return sources")
	}
	t.ReturnSourceID = &returnOrderID
	t.Touch()
	return nil
}

// Validate executes the transfer: every move is done for its full quantity
func (t *Transfer) Validate() error {
	if t.Status != TransferStatusReady && t.Status != TransferStatusDraft {
		return shared.NewDomainError("INVALID_STATE",
			fmt.Sprintf("Cannot validate transfer in %s status", t.Status))
	}
	if len(t.Moves) == 0 {
		return shared.NewDomainError("EMPTY_TRANSFER", "Transfer has no moves")
	}
	now := time.Now()
	for i := range t.Moves {
		t.Moves[i].QuantityDone = t.Moves[i].Quantity
		t.Moves[i].Status = TransferStatusDone
		t.Moves[i].UpdatedAt = now
	}
	t.Status = TransferStatusDone
	t.DoneAt = &now
	t.UpdatedAt = now
	t.IncrementVersion()

	t.AddDomainEvent(NewTransferCompletedEvent(t))
	return nil
}

// Cancel force-cancels an open transfer
func (t *Transfer) Cancel() error {
	if t.Status.IsTerminal() {
		return shared.NewDomainError("INVALID_STATE",
			fmt.Sprintf("Cannot cancel transfer in %s status", t.Status))
	}
	now := time.Now()
	for i := range t.Moves {
		t.Moves[i].Status = TransferStatusCancelled
		t.Moves[i].UpdatedAt = now
	}
	t.Status = TransferStatusCancelled
	t.UpdatedAt = now
	t.IncrementVersion()

	t.AddDomainEvent(NewTransferCancelledEvent(t))
	return nil
}

// IsDone reports whether the transfer completed
func (t *Transfer) IsDone() bool {
	return t.Status == TransferStatusDone
}

// FindMove returns the move with the given ID
func (t *Transfer) FindMove(moveID uuid.UUID) *StockMove {
	for i := range t.Moves {
		if t.Moves[i].ID == moveID {
			return &t.Moves[i]
		}
	}
	return nil
}

// DoneMovesFor returns the completed moves for productID
func (t *Transfer) DoneMovesFor(productID uuid.UUID) []*StockMove {
	var moves []*StockMove
	for i := range t.Moves {
		if t.Moves[i].ProductID == productID && t.Moves[i].IsDone() {
			moves = append(moves, &t.Moves[i])
		}
	}
	return moves
}

// TotalQuantity sums the quantity of all moves
func (t *Transfer) TotalQuantity() decimal.Decimal {
	total := decimal.Zero
	for _, m := range t.Moves {
		total = total.Add(m.Quantity)
	}
	return total
}
