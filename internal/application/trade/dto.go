package trade

import (
	"time"

	"github.com/erp/returns/internal/domain/trade"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ==================== Return Request DTOs ====================

// SubmitReturnRequest is a customer's return request against one sales order
type SubmitReturnRequest struct {
	SalesOrderID uuid.UUID         `json:"sales_order_id" binding:"required"`
	Reason       string            `json:"reason" binding:"max=1000"`
	Lines        []ReturnLineInput `json:"lines" binding:"dive"`
}

// ReturnLineInput is one typed product/quantity pair of a return request
type ReturnLineInput struct {
	ProductID uuid.UUID       `json:"product_id" binding:"required"`
	Quantity  decimal.Decimal `json:"quantity"`
	Reason    string          `json:"reason" binding:"max=500"`
}

// LineRejectionResponse reports a request line that was not admitted
type LineRejectionResponse struct {
	ProductID uuid.UUID       `json:"product_id"`
	Quantity  decimal.Decimal `json:"quantity"`
	Reason    string          `json:"reason"`
	Detail    string          `json:"detail"`
}

// SubmitReturnResult is the outcome of a return request
type SubmitReturnResult struct {
	ReturnOrder *ReturnOrderResponse    `json:"return_order,omitempty"`
	Rejected    []LineRejectionResponse `json:"rejected"`
}

// ==================== Return Order DTOs ====================

// ConfirmReturnOrderRequest represents a request to confirm a return order
type ConfirmReturnOrderRequest struct {
	// ToRefund overrides the order's refund flag before confirmation
	ToRefund *bool `json:"to_refund"`
}

// CancelReturnOrderRequest represents a request to cancel a return order
type CancelReturnOrderRequest struct {
	Reason string `json:"reason" binding:"max=500"`
}

// ReturnOrderListFilter represents filter options for the staff listing
type ReturnOrderListFilter struct {
	Search       string     `form:"search"`
	Status       string     `form:"status" binding:"omitempty,oneof=draft confirm done cancel"`
	CustomerID   *uuid.UUID `form:"customer_id"`
	SalesOrderID *uuid.UUID `form:"sales_order_id"`
	Page         int        `form:"page" binding:"min=0"`
	PageSize     int        `form:"page_size" binding:"min=0,max=100"`
	OrderBy      string     `form:"order_by"`
	OrderDir     string     `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// ReturnOrderResponse represents a return order in API responses
type ReturnOrderResponse struct {
	ID               uuid.UUID            `json:"id"`
	TenantID         uuid.UUID            `json:"tenant_id"`
	Name             string               `json:"name"`
	SalesOrderID     uuid.UUID            `json:"sales_order_id"`
	SalesOrderNumber string               `json:"sales_order_number"`
	CustomerID       uuid.UUID            `json:"customer_id"`
	CustomerName     string               `json:"customer_name"`
	RequesterID      uuid.UUID            `json:"requester_id"`
	Reason           string               `json:"reason"`
	Note             string               `json:"note"`
	Status           string               `json:"status"`
	ToRefund         bool                 `json:"to_refund"`
	Lines            []ReturnLineResponse `json:"lines"`
	TotalQuantity    decimal.Decimal      `json:"total_quantity"`
	AccessURL        string               `json:"access_url"`
	ConfirmedAt      *time.Time           `json:"confirmed_at,omitempty"`
	DoneAt           *time.Time           `json:"done_at,omitempty"`
	CancelledAt      *time.Time           `json:"cancelled_at,omitempty"`
	CancelReason     string               `json:"cancel_reason,omitempty"`
	CreatedAt        time.Time            `json:"created_at"`
	UpdatedAt        time.Time            `json:"updated_at"`
	Version          int                  `json:"version"`
}

// ReturnLineResponse represents a return line in API responses
type ReturnLineResponse struct {
	ID          uuid.UUID       `json:"id"`
	ProductID   uuid.UUID       `json:"product_id"`
	ProductName string          `json:"product_name"`
	Quantity    decimal.Decimal `json:"quantity"`
	Reason      string          `json:"reason"`
	TransferID  *uuid.UUID      `json:"transfer_id,omitempty"`
}

// ReturnOrderListItemResponse represents a return order in list responses
type ReturnOrderListItemResponse struct {
	ID               uuid.UUID       `json:"id"`
	Name             string          `json:"name"`
	SalesOrderID     uuid.UUID       `json:"sales_order_id"`
	SalesOrderNumber string          `json:"sales_order_number"`
	CustomerID       uuid.UUID       `json:"customer_id"`
	CustomerName     string          `json:"customer_name"`
	Status           string          `json:"status"`
	ToRefund         bool            `json:"to_refund"`
	LineCount        int             `json:"line_count"`
	TotalQuantity    decimal.Decimal `json:"total_quantity"`
	CreatedAt        time.Time       `json:"created_at"`
}

// ToReturnOrderResponse converts a domain ReturnOrder to ReturnOrderResponse
func ToReturnOrderResponse(r *trade.ReturnOrder) ReturnOrderResponse {
	lines := make([]ReturnLineResponse, len(r.Lines))
	for i := range r.Lines {
		lines[i] = ToReturnLineResponse(&r.Lines[i], r.Reason)
	}
	return ReturnOrderResponse{
		ID:               r.ID,
		TenantID:         r.TenantID,
		Name:             r.Name,
		SalesOrderID:     r.SalesOrderID,
		SalesOrderNumber: r.SalesOrderNumber,
		CustomerID:       r.CustomerID,
		CustomerName:     r.CustomerName,
		RequesterID:      r.RequesterID,
		Reason:           r.Reason,
		Note:             r.Note,
		Status:           string(r.Status),
		ToRefund:         r.ToRefund,
		Lines:            lines,
		TotalQuantity:    r.TotalQuantity(),
		AccessURL:        r.AccessURL(),
		ConfirmedAt:      r.ConfirmedAt,
		DoneAt:           r.DoneAt,
		CancelledAt:      r.CancelledAt,
		CancelReason:     r.CancelReason,
		CreatedAt:        r.CreatedAt,
		UpdatedAt:        r.UpdatedAt,
		Version:          r.Version,
	}
}

// ToReturnLineResponse converts a domain ReturnLine to ReturnLineResponse
func ToReturnLineResponse(l *trade.ReturnLine, orderReason string) ReturnLineResponse {
	return ReturnLineResponse{
		ID:          l.ID,
		ProductID:   l.ProductID,
		ProductName: l.ProductName,
		Quantity:    l.Quantity,
		Reason:      l.EffectiveReason(orderReason),
		TransferID:  l.TransferID,
	}
}

// ToReturnOrderListItemResponses converts return orders to list items
func ToReturnOrderListItemResponses(orders []trade.ReturnOrder) []ReturnOrderListItemResponse {
	items := make([]ReturnOrderListItemResponse, len(orders))
	for i := range orders {
		r := &orders[i]
		items[i] = ReturnOrderListItemResponse{
			ID:               r.ID,
			Name:             r.Name,
			SalesOrderID:     r.SalesOrderID,
			SalesOrderNumber: r.SalesOrderNumber,
			CustomerID:       r.CustomerID,
			CustomerName:     r.CustomerName,
			Status:           string(r.Status),
			ToRefund:         r.ToRefund,
			LineCount:        len(r.Lines),
			TotalQuantity:    r.TotalQuantity(),
			CreatedAt:        r.CreatedAt,
		}
	}
	return items
}

// ToLineRejectionResponses converts rejections for API responses
func ToLineRejectionResponses(rejections []trade.LineRejection) []LineRejectionResponse {
	out := make([]LineRejectionResponse, len(rejections))
	for i, r := range rejections {
		out[i] = LineRejectionResponse{
			ProductID: r.ProductID,
			Quantity:  r.Quantity,
			Reason:    string(r.Reason),
			Detail:    r.Detail,
		}
	}
	return out
}

// ToReturnLineRequests converts the typed ingress list to domain line requests
func ToReturnLineRequests(lines []ReturnLineInput) []trade.ReturnLineRequest {
	out := make([]trade.ReturnLineRequest, len(lines))
	for i, l := range lines {
		out[i] = trade.ReturnLineRequest{
			ProductID: l.ProductID,
			Quantity:  l.Quantity,
			Reason:    l.Reason,
		}
	}
	return out
}

// ==================== Portal DTOs ====================

// Portal sort keys
const (
	PortalSortByDate = "date"
	PortalSortByName = "name"
	PortalSortBySale = "sale"
)

// PortalFilterAll disables the status filter
const PortalFilterAll = "all"

// PortalListQuery is the customer portal listing query
type PortalListQuery struct {
	Status    string     `form:"filterby"`
	DateBegin *time.Time `form:"date_begin" time_format:"2006-01-02"`
	DateEnd   *time.Time `form:"date_end" time_format:"2006-01-02"`
	SortBy    string     `form:"sortby" binding:"omitempty,oneof=date name sale"`
	Page      int        `form:"page" binding:"min=0"`
	PageSize  int        `form:"page_size" binding:"min=0,max=100"`
}

// ReturnOrderSummary is the portal read model of a return order
type ReturnOrderSummary struct {
	ID               uuid.UUID       `json:"id" db:"id"`
	Name             string          `json:"name" db:"name"`
	SalesOrderID     uuid.UUID       `json:"sales_order_id" db:"sales_order_id"`
	SalesOrderNumber string          `json:"sales_order_number" db:"sales_order_number"`
	Status           string          `json:"status" db:"status"`
	Reason           string          `json:"reason" db:"reason"`
	TotalQuantity    decimal.Decimal `json:"total_quantity" db:"total_quantity"`
	LineCount        int             `json:"line_count" db:"line_count"`
	CreatedAt        time.Time       `json:"created_at" db:"created_at"`
	AccessURL        string          `json:"access_url" db:"-"`
}

// PortalReturnLine is a line of the portal detail view
type PortalReturnLine struct {
	ProductID   uuid.UUID       `json:"product_id" db:"product_id"`
	ProductName string          `json:"product_name" db:"product_name"`
	Quantity    decimal.Decimal `json:"quantity" db:"quantity"`
	Reason      string          `json:"reason" db:"reason"`
}

// PortalReturnDetail is the portal detail view of a return order
type PortalReturnDetail struct {
	ReturnOrderSummary
	Lines []PortalReturnLine `json:"lines"`
	// DeliveryCount is the number of deliveries the return draws from
	DeliveryCount int `json:"delivery_count"`
	// ReturnCount is the number of reverse transfers of the return
	ReturnCount int `json:"return_count"`
}
