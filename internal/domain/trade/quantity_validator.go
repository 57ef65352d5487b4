package trade

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RejectionReason classifies why a requested return line was refused
type RejectionReason string

const (
	ReasonNonPositiveQuantity      RejectionReason = "non_positive_quantity"
	ReasonProductNotOnOrder        RejectionReason = "product_not_on_order"
	ReasonExceedsDeliveredQuantity RejectionReason = "exceeds_delivered_quantity"
	ReasonOrderNotDelivered        RejectionReason = "order_not_delivered"
	ReasonMalformedLine            RejectionReason = "malformed_line"
)

// LineRejection describes a refused return line
type LineRejection struct {
	ProductID uuid.UUID
	Quantity  decimal.Decimal
	Reason    RejectionReason
	Detail    string
}

// Error implements error so a rejection can be logged or wrapped directly
func (r *LineRejection) Error() string {
	return r.Detail
}

// ValidateReturnQuantity checks a requested (product, quantity) pair against
// what the order delivered minus what earlier returns already claim. It returns
// nil when the line is acceptable.
func ValidateReturnQuantity(order *SalesOrder, productID uuid.UUID, requested, alreadyReturned decimal.Decimal) *LineRejection {
	if !requested.IsPositive() {
		return &LineRejection{
			ProductID: productID,
			Quantity:  requested,
			Reason:    ReasonNonPositiveQuantity,
			Detail:    "Return quantity must be positive",
		}
	}
	if !order.AcceptsReturns() {
		return &LineRejection{
			ProductID: productID,
			Quantity:  requested,
			Reason:    ReasonOrderNotDelivered,
			Detail:    fmt.Sprintf("Order %s is in %s status", order.OrderNumber, order.Status),
		}
	}
	item := order.GetItemByProduct(productID)
	if item == nil {
		return &LineRejection{
			ProductID: productID,
			Quantity:  requested,
			Reason:    ReasonProductNotOnOrder,
			Detail:    fmt.Sprintf("Product %s is not on order %s", productID, order.OrderNumber),
		}
	}
	available := order.DeliveredQuantity(productID).Sub(alreadyReturned)
	if available.LessThan(requested) {
		return &LineRejection{
			ProductID: productID,
			Quantity:  requested,
			Reason:    ReasonExceedsDeliveredQuantity,
			Detail: fmt.Sprintf("Only %s units of %s can still be returned, %s requested",
				decimal.Max(available, decimal.Zero).String(), item.ProductName, requested.String()),
		}
	}
	return nil
}
