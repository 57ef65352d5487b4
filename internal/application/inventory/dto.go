package inventory

import (
	"time"

	"github.com/erp/returns/internal/domain/inventory"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransferResponse represents a transfer in API responses
type TransferResponse struct {
	ID                    uuid.UUID           `json:"id"`
	TenantID              uuid.UUID           `json:"tenant_id"`
	Name                  string              `json:"name"`
	Origin                string              `json:"origin"`
	SalesOrderID          *uuid.UUID          `json:"sales_order_id,omitempty"`
	CustomerID            uuid.UUID           `json:"customer_id"`
	Role                  string              `json:"role"`
	ReturnOrderID         *uuid.UUID          `json:"return_order_id,omitempty"`
	ReturnSourceID        *uuid.UUID          `json:"return_source_id,omitempty"`
	DestinationLocationID *uuid.UUID          `json:"destination_location_id,omitempty"`
	Note                  string              `json:"note"`
	ToRefund              bool                `json:"to_refund"`
	Status                string              `json:"status"`
	DoneAt                *time.Time          `json:"done_at,omitempty"`
	Moves                 []StockMoveResponse `json:"moves"`
	CreatedAt             time.Time           `json:"created_at"`
	UpdatedAt             time.Time           `json:"updated_at"`
	Version               int                 `json:"version"`
}

// StockMoveResponse represents a stock move in API responses
type StockMoveResponse struct {
	ID           uuid.UUID       `json:"id"`
	ProductID    uuid.UUID       `json:"product_id"`
	ProductName  string          `json:"product_name"`
	Quantity     decimal.Decimal `json:"quantity"`
	QuantityDone decimal.Decimal `json:"quantity_done"`
	Status       string          `json:"status"`
	OriginMoveID *uuid.UUID      `json:"origin_move_id,omitempty"`
}

// ToTransferResponse converts a domain Transfer to TransferResponse
func ToTransferResponse(t *inventory.Transfer) TransferResponse {
	moves := make([]StockMoveResponse, len(t.Moves))
	for i, m := range t.Moves {
		moves[i] = StockMoveResponse{
			ID:           m.ID,
			ProductID:    m.ProductID,
			ProductName:  m.ProductName,
			Quantity:     m.Quantity,
			QuantityDone: m.QuantityDone,
			Status:       string(m.Status),
			OriginMoveID: m.OriginMoveID,
		}
	}
	return TransferResponse{
		ID:                    t.ID,
		TenantID:              t.TenantID,
		Name:                  t.Name,
		Origin:                t.Origin,
		SalesOrderID:          t.SalesOrderID,
		CustomerID:            t.CustomerID,
		Role:                  string(t.Role.Kind()),
		ReturnOrderID:         t.Role.ReturnOrderRef(),
		ReturnSourceID:        t.ReturnSourceID,
		DestinationLocationID: t.DestinationLocationID,
		Note:                  t.Note,
		ToRefund:              t.ToRefund,
		Status:                string(t.Status),
		DoneAt:                t.DoneAt,
		Moves:                 moves,
		CreatedAt:             t.CreatedAt,
		UpdatedAt:             t.UpdatedAt,
		Version:               t.Version,
	}
}

// ReturnableMove is a completed delivery move with quantity left to reverse
type ReturnableMove struct {
	TransferID   uuid.UUID
	TransferName string
	MoveID       uuid.UUID
	ProductID    uuid.UUID
	ProductName  string
	QuantityDone decimal.Decimal
	// Returnable is QuantityDone minus quantity already on non-cancelled return moves
	Returnable decimal.Decimal
	DoneAt     *time.Time
}

// CreateReverseTransferRequest asks for return traffic against one delivered move
type CreateReverseTransferRequest struct {
	SourceTransferID      uuid.UUID
	SourceMoveID          uuid.UUID
	Quantity              decimal.Decimal
	Note                  string
	ToRefund              bool
	ReturnOrderID         uuid.UUID
	ReturnOrderName       string
	DestinationLocationID *uuid.UUID
}
