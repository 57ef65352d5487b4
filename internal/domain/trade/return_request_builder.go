package trade

import (
	"strings"

	"github.com/erp/returns/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ReturnLineRequest is one typed (product, quantity) pair of a return request
type ReturnLineRequest struct {
	ProductID uuid.UUID
	Quantity  decimal.Decimal
	Reason    string
}

// AdmittedLine is a request line that passed validation
type AdmittedLine struct {
	ReturnLineRequest
	ProductName string
}

// AdmitLinesBestEffort validates each requested line on its own. Lines that fail
// are dropped and reported; they never fail the whole request. alreadyReturned
// holds, per product, quantity claimed by earlier non-cancelled returns.
// Quantity admitted earlier in the same request counts against later lines.
func AdmitLinesBestEffort(order *SalesOrder, lines []ReturnLineRequest, alreadyReturned map[uuid.UUID]decimal.Decimal) ([]AdmittedLine, []LineRejection) {
	admitted := make([]AdmittedLine, 0, len(lines))
	rejected := make([]LineRejection, 0)
	claimed := make(map[uuid.UUID]decimal.Decimal, len(alreadyReturned))
	for productID, qty := range alreadyReturned {
		claimed[productID] = qty
	}

	for _, line := range lines {
		if rejection := ValidateReturnQuantity(order, line.ProductID, line.Quantity, claimed[line.ProductID]); rejection != nil {
			rejected = append(rejected, *rejection)
			continue
		}
		claimed[line.ProductID] = claimed[line.ProductID].Add(line.Quantity)
		admitted = append(admitted, AdmittedLine{
			ReturnLineRequest: line,
			ProductName:       order.GetItemByProduct(line.ProductID).ProductName,
		})
	}
	return admitted, rejected
}

// ReturnRequestInput is everything needed to build a draft return order
type ReturnRequestInput struct {
	TenantID        uuid.UUID
	RequesterID     uuid.UUID
	Name            string
	Order           *SalesOrder
	Reason          string
	ToRefund        bool
	Lines           []ReturnLineRequest
	AlreadyReturned map[uuid.UUID]decimal.Decimal
}

// BuildReturnRequest assembles a draft ReturnOrder from the lines that survive
// best-effort admission. It fails with ErrMissingReason on a blank reason and
// with ErrNoValidLines when no line survives. Rejected lines are returned in
// both cases where admission ran.
func BuildReturnRequest(input ReturnRequestInput) (*ReturnOrder, []LineRejection, error) {
	if strings.TrimSpace(input.Reason) == "" {
		return nil, nil, ErrMissingReason
	}
	if input.Order == nil {
		return nil, nil, shared.NewDomainError("INVALID_SALES_ORDER", "Sales order is required")
	}

	admitted, rejected := AdmitLinesBestEffort(input.Order, input.Lines, input.AlreadyReturned)
	if len(admitted) == 0 {
		return nil, rejected, ErrNoValidLines
	}

	order, err := NewReturnOrder(input.TenantID, input.Name, input.Order, input.RequesterID, input.Reason)
	if err != nil {
		return nil, rejected, err
	}
	order.ToRefund = input.ToRefund
	for _, line := range admitted {
		if _, err := order.AddLine(line.ProductID, line.ProductName, line.Quantity, line.Reason); err != nil {
			return nil, rejected, err
		}
	}
	order.AddDomainEvent(NewReturnOrderCreatedEvent(order))
	return order, rejected, nil
}
