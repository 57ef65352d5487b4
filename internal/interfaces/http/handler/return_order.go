package handler

import (
	tradeapp "github.com/erp/returns/internal/application/trade"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ReturnOrderHandler handles back office return order endpoints
type ReturnOrderHandler struct {
	BaseHandler
	returnService *tradeapp.ReturnOrderService
}

// NewReturnOrderHandler creates a new ReturnOrderHandler
func NewReturnOrderHandler(returnService *tradeapp.ReturnOrderService) *ReturnOrderHandler {
	return &ReturnOrderHandler{
		returnService: returnService,
	}
}

// ConfirmReturnOrderBody is the optional body of a confirmation
//
//	@Description	Request body for confirming a return order
type ConfirmReturnOrderBody struct {
	ToRefund *bool `json:"to_refund" example:"true"`
}

// CancelReturnOrderBody is the optional body of a cancellation
//
//	@Description	Request body for cancelling a return order
type CancelReturnOrderBody struct {
	Reason string `json:"reason" binding:"max=500" example:"Customer changed their mind"`
}

// GetByID godoc
//
//	@ID				getReturnOrderById
//	@Summary		Get return order by ID
//	@Description	Retrieve a return order with its lines
//	@Tags			return-orders
//	@Produce		json
//	@Param			id	path		string	true	"Return Order ID"	format(uuid)
//	@Success		200	{object}	APIResponse[tradeapp.ReturnOrderResponse]
//	@Failure		400	{object}	dto.ErrorResponse
//	@Failure		401	{object}	dto.ErrorResponse
//	@Failure		404	{object}	dto.ErrorResponse
//	@Failure		500	{object}	dto.ErrorResponse
//	@Security		BearerAuth
//	@Router			/trade/return-orders/{id} [get]
func (h *ReturnOrderHandler) GetByID(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Invalid tenant ID")
		return
	}

	returnID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid return order ID format")
		return
	}

	order, err := h.returnService.GetByID(c.Request.Context(), tenantID, returnID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, order)
}

// List godoc
//
//	@ID				listReturnOrders
//	@Summary		List return orders
//	@Description	Paginated list of return orders, archived ones excluded
//	@Tags			return-orders
//	@Produce		json
//	@Param			search			query		string	false	"Search on the return name"
//	@Param			status			query		string	false	"Return status"		Enums(draft, confirm, done, cancel)
//	@Param			customer_id		query		string	false	"Customer ID"		format(uuid)
//	@Param			sales_order_id	query		string	false	"Sales Order ID"	format(uuid)
//	@Param			page			query		int		false	"Page number"		default(1)
//	@Param			page_size		query		int		false	"Page size"			default(20)	maximum(100)
//	@Param			order_by		query		string	false	"Order by field"	default(created_at)
//	@Param			order_dir		query		string	false	"Order direction"	Enums(asc, desc)	default(desc)
//	@Success		200				{object}	APIResponse[[]tradeapp.ReturnOrderListItemResponse]
//	@Failure		400				{object}	dto.ErrorResponse
//	@Failure		401				{object}	dto.ErrorResponse
//	@Failure		500				{object}	dto.ErrorResponse
//	@Security		BearerAuth
//	@Router			/trade/return-orders [get]
func (h *ReturnOrderHandler) List(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Invalid tenant ID")
		return
	}

	var filter tradeapp.ReturnOrderListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.ValidationError(c, err)
		return
	}

	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}

	items, total, err := h.returnService.List(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.SuccessWithMeta(c, items, total, filter.Page, filter.PageSize)
}

// Confirm godoc
//
//	@ID				confirmReturnOrder
//	@Summary		Confirm a return order
//	@Description	Creates one reverse transfer per positive line and moves the order to confirm. Nothing is created when any line cannot be dispatched.
//	@Tags			return-orders
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string					true	"Return Order ID"	format(uuid)
//	@Param			request	body		ConfirmReturnOrderBody	false	"Confirmation options"
//	@Success		200		{object}	APIResponse[tradeapp.ReturnOrderResponse]
//	@Failure		400		{object}	dto.ErrorResponse
//	@Failure		401		{object}	dto.ErrorResponse
//	@Failure		403		{object}	dto.ErrorResponse
//	@Failure		404		{object}	dto.ErrorResponse
//	@Failure		422		{object}	dto.ErrorResponse
//	@Failure		500		{object}	dto.ErrorResponse
//	@Security		BearerAuth
//	@Router			/trade/return-orders/{id}/confirm [post]
func (h *ReturnOrderHandler) Confirm(c *gin.Context) {
	rc, err := requestContext(c)
	if err != nil || !rc.IsAuthenticated() {
		h.Unauthorized(c, "User not authenticated")
		return
	}

	returnID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid return order ID format")
		return
	}

	var body ConfirmReturnOrderBody
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&body); err != nil {
			h.ValidationError(c, err)
			return
		}
	}

	order, err := h.returnService.Confirm(c.Request.Context(), rc, returnID, tradeapp.ConfirmReturnOrderRequest{
		ToRefund: body.ToRefund,
	})
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, order)
}

// Cancel godoc
//
//	@ID				cancelReturnOrder
//	@Summary		Cancel a return order
//	@Description	Cancels a draft or confirmed return order together with its open reverse transfers
//	@Tags			return-orders
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string					true	"Return Order ID"	format(uuid)
//	@Param			request	body		CancelReturnOrderBody	false	"Cancellation reason"
//	@Success		200		{object}	APIResponse[tradeapp.ReturnOrderResponse]
//	@Failure		400		{object}	dto.ErrorResponse
//	@Failure		401		{object}	dto.ErrorResponse
//	@Failure		404		{object}	dto.ErrorResponse
//	@Failure		422		{object}	dto.ErrorResponse
//	@Failure		500		{object}	dto.ErrorResponse
//	@Security		BearerAuth
//	@Router			/trade/return-orders/{id}/cancel [post]
func (h *ReturnOrderHandler) Cancel(c *gin.Context) {
	rc, err := requestContext(c)
	if err != nil || !rc.IsAuthenticated() {
		h.Unauthorized(c, "User not authenticated")
		return
	}

	returnID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid return order ID format")
		return
	}

	var body CancelReturnOrderBody
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&body); err != nil {
			h.ValidationError(c, err)
			return
		}
	}

	order, err := h.returnService.Cancel(c.Request.Context(), rc, returnID, tradeapp.CancelReturnOrderRequest{
		Reason: body.Reason,
	})
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, order)
}

// CountBySalesOrder godoc
//
//	@ID				countSalesOrderReturns
//	@Summary		Count return orders of a sales order
//	@Description	Number of active return orders raised against the sales order
//	@Tags			return-orders
//	@Produce		json
//	@Param			id	path		string	true	"Sales Order ID"	format(uuid)
//	@Success		200	{object}	APIResponse[CountData]
//	@Failure		400	{object}	dto.ErrorResponse
//	@Failure		401	{object}	dto.ErrorResponse
//	@Failure		500	{object}	dto.ErrorResponse
//	@Security		BearerAuth
//	@Router			/trade/sales-orders/{id}/return-count [get]
func (h *ReturnOrderHandler) CountBySalesOrder(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Invalid tenant ID")
		return
	}

	salesOrderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid sales order ID format")
		return
	}

	count, err := h.returnService.CountBySalesOrder(c.Request.Context(), tenantID, salesOrderID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, CountData{Count: count})
}
