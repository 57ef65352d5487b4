package models

import (
	"fmt"
	"time"

	"github.com/erp/returns/internal/domain/inventory"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransferModel is the persistence model for the Transfer aggregate root.
// The TransferRole variant is flattened into role_kind and return_order_id.
type TransferModel struct {
	TenantAggregateModel
	Name                  string                   `gorm:"type:varchar(50);not null"`
	Origin                string                   `gorm:"type:varchar(100)"`
	SalesOrderID          *uuid.UUID               `gorm:"type:uuid;index"`
	CustomerID            uuid.UUID                `gorm:"type:uuid;not null"`
	RoleKind              string                   `gorm:"type:varchar(20);not null"`
	ReturnOrderID         *uuid.UUID               `gorm:"type:uuid;index"`
	ReturnSourceID        *uuid.UUID               `gorm:"type:uuid;index"`
	DestinationLocationID *uuid.UUID               `gorm:"type:uuid"`
	Note                  string                   `gorm:"type:text"`
	ToRefund              bool                     `gorm:"not null;default:false"`
	Status                inventory.TransferStatus `gorm:"type:varchar(20);not null;index"`
	DoneAt                *time.Time
	Moves                 []StockMoveModel `gorm:"foreignKey:TransferID;references:ID;constraint:OnDelete:CASCADE"`
}

// TableName returns the table name for GORM
func (TransferModel) TableName() string {
	return "transfers"
}

// ToDomain converts the persistence model to a domain Transfer. A stored role
// that violates the variant's rules is reported as an error.
func (m *TransferModel) ToDomain() (*inventory.Transfer, error) {
	role, err := inventory.RestoreTransferRole(m.RoleKind, m.ReturnOrderID)
	if err != nil {
		return nil, fmt.Errorf("transfer %s: %w", m.ID, err)
	}
	t := &inventory.Transfer{
		TenantAggregateRoot:   m.ToTenantAggregateRoot(),
		Name:                  m.Name,
		Origin:                m.Origin,
		SalesOrderID:          m.SalesOrderID,
		CustomerID:            m.CustomerID,
		Role:                  role,
		ReturnSourceID:        m.ReturnSourceID,
		DestinationLocationID: m.DestinationLocationID,
		Note:                  m.Note,
		ToRefund:              m.ToRefund,
		Status:                m.Status,
		DoneAt:                m.DoneAt,
		Moves:                 make([]inventory.StockMove, len(m.Moves)),
	}
	for i := range m.Moves {
		t.Moves[i] = m.Moves[i].ToDomain()
	}
	return t, nil
}

// TransferModelFromDomain creates a persistence model from a domain Transfer
func TransferModelFromDomain(t *inventory.Transfer) *TransferModel {
	m := &TransferModel{
		Name:                  t.Name,
		Origin:                t.Origin,
		SalesOrderID:          t.SalesOrderID,
		CustomerID:            t.CustomerID,
		RoleKind:              string(t.Role.Kind()),
		ReturnOrderID:         t.Role.ReturnOrderRef(),
		ReturnSourceID:        t.ReturnSourceID,
		DestinationLocationID: t.DestinationLocationID,
		Note:                  t.Note,
		ToRefund:              t.ToRefund,
		Status:                t.Status,
		DoneAt:                t.DoneAt,
		Moves:                 make([]StockMoveModel, len(t.Moves)),
	}
	m.FromDomainTenantAggregateRoot(t.TenantAggregateRoot)
	for i := range t.Moves {
		m.Moves[i] = StockMoveModelFromDomain(&t.Moves[i], t.ID)
	}
	return m
}

// StockMoveModel is the persistence model for a transfer line.
type StockMoveModel struct {
	ID           uuid.UUID                `gorm:"type:uuid;primary_key"`
	TransferID   uuid.UUID                `gorm:"type:uuid;not null;index"`
	ProductID    uuid.UUID                `gorm:"type:uuid;not null;index"`
	ProductName  string                   `gorm:"type:varchar(200);not null"`
	Quantity     decimal.Decimal          `gorm:"type:decimal(18,4);not null"`
	QuantityDone decimal.Decimal          `gorm:"type:decimal(18,4);not null;default:0"`
	Status       inventory.TransferStatus `gorm:"type:varchar(20);not null"`
	OriginMoveID *uuid.UUID               `gorm:"type:uuid;index"`
	CreatedAt    time.Time                `gorm:"not null"`
	UpdatedAt    time.Time                `gorm:"not null"`
}

// TableName returns the table name for GORM
func (StockMoveModel) TableName() string {
	return "stock_moves"
}

// ToDomain converts the persistence model to a domain StockMove
func (m *StockMoveModel) ToDomain() inventory.StockMove {
	return inventory.StockMove{
		ID:           m.ID,
		TransferID:   m.TransferID,
		ProductID:    m.ProductID,
		ProductName:  m.ProductName,
		Quantity:     m.Quantity,
		QuantityDone: m.QuantityDone,
		Status:       m.Status,
		OriginMoveID: m.OriginMoveID,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}

// StockMoveModelFromDomain creates a persistence model for a move of transferID
func StockMoveModelFromDomain(mv *inventory.StockMove, transferID uuid.UUID) StockMoveModel {
	return StockMoveModel{
		ID:           mv.ID,
		TransferID:   transferID,
		ProductID:    mv.ProductID,
		ProductName:  mv.ProductName,
		Quantity:     mv.Quantity,
		QuantityDone: mv.QuantityDone,
		Status:       mv.Status,
		OriginMoveID: mv.OriginMoveID,
		CreatedAt:    mv.CreatedAt,
		UpdatedAt:    mv.UpdatedAt,
	}
}
