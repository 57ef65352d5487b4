package models

import (
	"time"

	"github.com/erp/returns/internal/domain/trade"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SalesOrderModel is the persistence model for the SalesOrder aggregate root.
type SalesOrderModel struct {
	TenantAggregateModel
	OrderNumber  string                `gorm:"type:varchar(50);not null"`
	CustomerID   uuid.UUID             `gorm:"type:uuid;not null;index"`
	CustomerName string                `gorm:"type:varchar(200);not null"`
	Status       trade.OrderStatus     `gorm:"type:varchar(20);not null;default:'DRAFT'"`
	Items        []SalesOrderItemModel `gorm:"foreignKey:OrderID;references:ID"`
}

// TableName returns the table name for GORM
func (SalesOrderModel) TableName() string {
	return "sales_orders"
}

// ToDomain converts the persistence model to a domain SalesOrder
func (m *SalesOrderModel) ToDomain() *trade.SalesOrder {
	order := &trade.SalesOrder{
		TenantAggregateRoot: m.ToTenantAggregateRoot(),
		OrderNumber:         m.OrderNumber,
		CustomerID:          m.CustomerID,
		CustomerName:        m.CustomerName,
		Status:              m.Status,
		Items:               make([]trade.SalesOrderItem, len(m.Items)),
	}
	for i := range m.Items {
		order.Items[i] = m.Items[i].ToDomain()
	}
	return order
}

// SalesOrderModelFromDomain creates a persistence model from a domain SalesOrder
func SalesOrderModelFromDomain(o *trade.SalesOrder) *SalesOrderModel {
	m := &SalesOrderModel{
		OrderNumber:  o.OrderNumber,
		CustomerID:   o.CustomerID,
		CustomerName: o.CustomerName,
		Status:       o.Status,
		Items:        make([]SalesOrderItemModel, len(o.Items)),
	}
	m.FromDomainTenantAggregateRoot(o.TenantAggregateRoot)
	for i := range o.Items {
		m.Items[i] = SalesOrderItemModelFromDomain(&o.Items[i], o.ID)
	}
	return m
}

// SalesOrderItemModel is the persistence model for a sales order line.
type SalesOrderItemModel struct {
	ID                uuid.UUID       `gorm:"type:uuid;primary_key"`
	OrderID           uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID         uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductName       string          `gorm:"type:varchar(200);not null"`
	ProductCode       string          `gorm:"type:varchar(50);not null"`
	Quantity          decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	DeliveredQuantity decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	CreatedAt         time.Time       `gorm:"not null"`
	UpdatedAt         time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (SalesOrderItemModel) TableName() string {
	return "sales_order_items"
}

// ToDomain converts the persistence model to a domain SalesOrderItem
func (m *SalesOrderItemModel) ToDomain() trade.SalesOrderItem {
	return trade.SalesOrderItem{
		ID:                m.ID,
		OrderID:           m.OrderID,
		ProductID:         m.ProductID,
		ProductName:       m.ProductName,
		ProductCode:       m.ProductCode,
		Quantity:          m.Quantity,
		DeliveredQuantity: m.DeliveredQuantity,
		CreatedAt:         m.CreatedAt,
		UpdatedAt:         m.UpdatedAt,
	}
}

// SalesOrderItemModelFromDomain creates a persistence model for a line of orderID
func SalesOrderItemModelFromDomain(i *trade.SalesOrderItem, orderID uuid.UUID) SalesOrderItemModel {
	return SalesOrderItemModel{
		ID:                i.ID,
		OrderID:           orderID,
		ProductID:         i.ProductID,
		ProductName:       i.ProductName,
		ProductCode:       i.ProductCode,
		Quantity:          i.Quantity,
		DeliveredQuantity: i.DeliveredQuantity,
		CreatedAt:         i.CreatedAt,
		UpdatedAt:         i.UpdatedAt,
	}
}

// ReturnOrderModel is the persistence model for the ReturnOrder aggregate root.
type ReturnOrderModel struct {
	TenantAggregateModel
	Name             string             `gorm:"type:varchar(50);not null"`
	SalesOrderID     uuid.UUID          `gorm:"type:uuid;not null;index"`
	SalesOrderNumber string             `gorm:"type:varchar(50);not null"`
	CustomerID       uuid.UUID          `gorm:"type:uuid;not null;index"`
	CustomerName     string             `gorm:"type:varchar(200);not null"`
	RequesterID      uuid.UUID          `gorm:"type:uuid;not null"`
	Reason           string             `gorm:"type:text;not null"`
	Note             string             `gorm:"type:text"`
	Status           trade.ReturnStatus `gorm:"type:varchar(20);not null;default:'draft';index"`
	Active           bool               `gorm:"not null;default:true"`
	ToRefund         bool               `gorm:"not null;default:false"`
	ConfirmedAt      *time.Time
	DoneAt           *time.Time
	CancelledAt      *time.Time
	CancelReason     string            `gorm:"type:varchar(500)"`
	Lines            []ReturnLineModel `gorm:"foreignKey:ReturnOrderID;references:ID;constraint:OnDelete:CASCADE"`
}

// TableName returns the table name for GORM
func (ReturnOrderModel) TableName() string {
	return "return_orders"
}

// ToDomain converts the persistence model to a domain ReturnOrder
func (m *ReturnOrderModel) ToDomain() *trade.ReturnOrder {
	order := &trade.ReturnOrder{
		TenantAggregateRoot: m.ToTenantAggregateRoot(),
		Name:                m.Name,
		SalesOrderID:        m.SalesOrderID,
		SalesOrderNumber:    m.SalesOrderNumber,
		CustomerID:          m.CustomerID,
		CustomerName:        m.CustomerName,
		RequesterID:         m.RequesterID,
		Reason:              m.Reason,
		Note:                m.Note,
		Status:              m.Status,
		Active:              m.Active,
		ToRefund:            m.ToRefund,
		ConfirmedAt:         m.ConfirmedAt,
		DoneAt:              m.DoneAt,
		CancelledAt:         m.CancelledAt,
		CancelReason:        m.CancelReason,
		Lines:               make([]trade.ReturnLine, len(m.Lines)),
	}
	for i := range m.Lines {
		order.Lines[i] = m.Lines[i].ToDomain()
	}
	return order
}

// ReturnOrderModelFromDomain creates a persistence model from a domain ReturnOrder
func ReturnOrderModelFromDomain(r *trade.ReturnOrder) *ReturnOrderModel {
	m := &ReturnOrderModel{
		Name:             r.Name,
		SalesOrderID:     r.SalesOrderID,
		SalesOrderNumber: r.SalesOrderNumber,
		CustomerID:       r.CustomerID,
		CustomerName:     r.CustomerName,
		RequesterID:      r.RequesterID,
		Reason:           r.Reason,
		Note:             r.Note,
		Status:           r.Status,
		Active:           r.Active,
		ToRefund:         r.ToRefund,
		ConfirmedAt:      r.ConfirmedAt,
		DoneAt:           r.DoneAt,
		CancelledAt:      r.CancelledAt,
		CancelReason:     r.CancelReason,
		Lines:            make([]ReturnLineModel, len(r.Lines)),
	}
	m.FromDomainTenantAggregateRoot(r.TenantAggregateRoot)
	for i := range r.Lines {
		m.Lines[i] = ReturnLineModelFromDomain(&r.Lines[i], r.ID)
	}
	return m
}

// ReturnLineModel is the persistence model for a return line.
type ReturnLineModel struct {
	ID            uuid.UUID       `gorm:"type:uuid;primary_key"`
	ReturnOrderID uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductName   string          `gorm:"type:varchar(200);not null"`
	Quantity      decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Reason        string          `gorm:"type:varchar(500)"`
	TransferID    *uuid.UUID      `gorm:"type:uuid"`
	CreatedAt     time.Time       `gorm:"not null"`
	UpdatedAt     time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (ReturnLineModel) TableName() string {
	return "return_lines"
}

// ToDomain converts the persistence model to a domain ReturnLine
func (m *ReturnLineModel) ToDomain() trade.ReturnLine {
	return trade.ReturnLine{
		ID:            m.ID,
		ReturnOrderID: m.ReturnOrderID,
		ProductID:     m.ProductID,
		ProductName:   m.ProductName,
		Quantity:      m.Quantity,
		Reason:        m.Reason,
		TransferID:    m.TransferID,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
}

// ReturnLineModelFromDomain creates a persistence model for a line of returnOrderID
func ReturnLineModelFromDomain(l *trade.ReturnLine, returnOrderID uuid.UUID) ReturnLineModel {
	return ReturnLineModel{
		ID:            l.ID,
		ReturnOrderID: returnOrderID,
		ProductID:     l.ProductID,
		ProductName:   l.ProductName,
		Quantity:      l.Quantity,
		Reason:        l.Reason,
		TransferID:    l.TransferID,
		CreatedAt:     l.CreatedAt,
		UpdatedAt:     l.UpdatedAt,
	}
}
