package trade

import (
	"fmt"
	"time"

	"github.com/erp/returns/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderStatus represents the status of a sales order
type OrderStatus string

const (
	OrderStatusDraft     OrderStatus = "DRAFT"
	OrderStatusConfirmed OrderStatus = "CONFIRMED"
	OrderStatusShipped   OrderStatus = "SHIPPED"
	OrderStatusCompleted OrderStatus = "COMPLETED"
	OrderStatusCancelled OrderStatus = "CANCELLED"
)

// IsValid checks if the status is a valid OrderStatus
func (s OrderStatus) IsValid() bool {
	switch s {
	case OrderStatusDraft, OrderStatusConfirmed, OrderStatusShipped, OrderStatusCompleted, OrderStatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of OrderStatus
func (s OrderStatus) String() string {
	return string(s)
}

// SalesOrderItem is a sales order line with the quantity shipped so far
type SalesOrderItem struct {
	ID                uuid.UUID
	OrderID           uuid.UUID
	ProductID         uuid.UUID
	ProductName       string
	ProductCode       string
	Quantity          decimal.Decimal
	DeliveredQuantity decimal.Decimal
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// SalesOrder is the read side of the order-management platform this module
// returns against. Only delivered quantities are mutated here.
type SalesOrder struct {
	shared.TenantAggregateRoot
	OrderNumber  string
	CustomerID   uuid.UUID
	CustomerName string
	Status       OrderStatus
	Items        []SalesOrderItem
}

// NewSalesOrder creates a confirmed sales order
func NewSalesOrder(tenantID uuid.UUID, orderNumber string, customerID uuid.UUID, customerName string) (*SalesOrder, error) {
	if orderNumber == "" {
		return nil, shared.NewDomainError("INVALID_ORDER_NUMBER", "Order number cannot be empty")
	}
	if customerID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CUSTOMER", "Customer ID cannot be empty")
	}
	return &SalesOrder{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		OrderNumber:         orderNumber,
		CustomerID:          customerID,
		CustomerName:        customerName,
		Status:              OrderStatusConfirmed,
		Items:               make([]SalesOrderItem, 0),
	}, nil
}

// AddItem adds an order line
func (o *SalesOrder) AddItem(productID uuid.UUID, productName, productCode string, quantity decimal.Decimal) (*SalesOrderItem, error) {
	if productID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "Product ID cannot be empty")
	}
	if quantity.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}
	now := time.Now()
	o.Items = append(o.Items, SalesOrderItem{
		ID:                uuid.New(),
		OrderID:           o.ID,
		ProductID:         productID,
		ProductName:       productName,
		ProductCode:       productCode,
		Quantity:          quantity,
		DeliveredQuantity: decimal.Zero,
		CreatedAt:         now,
		UpdatedAt:         now,
	})
	return &o.Items[len(o.Items)-1], nil
}

// RecordDelivery adds shipped quantity to the line of productID
func (o *SalesOrder) RecordDelivery(productID uuid.UUID, quantity decimal.Decimal) error {
	item := o.GetItemByProduct(productID)
	if item == nil {
		return shared.NewDomainError("ITEM_NOT_FOUND", "Product is not on this order")
	}
	delivered := item.DeliveredQuantity.Add(quantity)
	if delivered.GreaterThan(item.Quantity) {
		return shared.NewDomainError("INVALID_QUANTITY",
			fmt.Sprintf("Cannot deliver more than the ordered %s units of %s", item.Quantity.String(), item.ProductName))
	}
	item.DeliveredQuantity = delivered
	item.UpdatedAt = time.Now()
	if o.Status == OrderStatusConfirmed {
		o.Status = OrderStatusShipped
	}
	o.Touch()
	return nil
}

// GetItemByProduct returns the first line for productID or nil
func (o *SalesOrder) GetItemByProduct(productID uuid.UUID) *SalesOrderItem {
	for i := range o.Items {
		if o.Items[i].ProductID == productID {
			return &o.Items[i]
		}
	}
	return nil
}

// HasProduct reports whether the order sells productID
func (o *SalesOrder) HasProduct(productID uuid.UUID) bool {
	return o.GetItemByProduct(productID) != nil
}

// DeliveredQuantity sums the delivered quantity of every line for productID
func (o *SalesOrder) DeliveredQuantity(productID uuid.UUID) decimal.Decimal {
	total := decimal.Zero
	for _, item := range o.Items {
		if item.ProductID == productID {
			total = total.Add(item.DeliveredQuantity)
		}
	}
	return total
}

// AcceptsReturns reports whether goods may have left the warehouse
func (o *SalesOrder) AcceptsReturns() bool {
	switch o.Status {
	case OrderStatusConfirmed, OrderStatusShipped, OrderStatusCompleted:
		return true
	}
	return false
}

// BelongsTo reports whether customerID is the order's customer
func (o *SalesOrder) BelongsTo(customerID uuid.UUID) bool {
	return o.CustomerID == customerID
}

// DecrementDelivered lowers delivered quantity for productID, spreading over
// lines in order. Used when a refunded return is confirmed.
func (o *SalesOrder) DecrementDelivered(productID uuid.UUID, quantity decimal.Decimal) error {
	if quantity.GreaterThan(o.DeliveredQuantity(productID)) {
		return shared.NewDomainError("INVALID_QUANTITY", "Cannot decrement below zero delivered quantity")
	}
	remaining := quantity
	now := time.Now()
	for i := range o.Items {
		if remaining.IsZero() {
			break
		}
		item := &o.Items[i]
		if item.ProductID != productID || item.DeliveredQuantity.IsZero() {
			continue
		}
		take := decimal.Min(item.DeliveredQuantity, remaining)
		item.DeliveredQuantity = item.DeliveredQuantity.Sub(take)
		item.UpdatedAt = now
		remaining = remaining.Sub(take)
	}
	o.Touch()
	return nil
}

// RestoreDelivered puts quantity back on the lines of productID, up to each
// line's ordered quantity
func (o *SalesOrder) RestoreDelivered(productID uuid.UUID, quantity decimal.Decimal) {
	remaining := quantity
	now := time.Now()
	for i := range o.Items {
		if !remaining.IsPositive() {
			break
		}
		item := &o.Items[i]
		if item.ProductID != productID {
			continue
		}
		room := item.Quantity.Sub(item.DeliveredQuantity)
		if !room.IsPositive() {
			continue
		}
		put := decimal.Min(room, remaining)
		item.DeliveredQuantity = item.DeliveredQuantity.Add(put)
		item.UpdatedAt = now
		remaining = remaining.Sub(put)
	}
	o.Touch()
}
