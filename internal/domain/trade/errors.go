package trade

import (
	"fmt"

	"github.com/erp/returns/internal/domain/shared"
)

// Error codes of the return workflow
const (
	CodeMissingReason                 = "MISSING_REASON"
	CodeNoValidLines                  = "NO_VALID_LINES"
	CodeEmptyReturn                   = "EMPTY_RETURN"
	CodeInsufficientDeliveredQuantity = "INSUFFICIENT_DELIVERED_QUANTITY"
	CodeNotOwner                      = "NOT_OWNER"
)

var (
	ErrMissingReason = shared.NewDomainError(CodeMissingReason, "A reason is required to request a return")
	ErrNoValidLines  = shared.NewDomainError(CodeNoValidLines, "None of the requested products can be returned")
	ErrEmptyReturn   = shared.NewDomainError(CodeEmptyReturn, "Return order has no line with a positive quantity")
	ErrNotOwner      = shared.NewDomainError(CodeNotOwner, "Sales order does not belong to the caller")
)

// NewInsufficientDeliveredQuantityError names the product that blocks confirmation
func NewInsufficientDeliveredQuantityError(productName, quantity string) *shared.DomainError {
	return shared.NewDomainError(CodeInsufficientDeliveredQuantity,
		fmt.Sprintf("No sufficient delivered quantity found for product '%s' to return %s units", productName, quantity))
}
