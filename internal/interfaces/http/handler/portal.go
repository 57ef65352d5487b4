package handler

import (
	"encoding/json"
	"net/http"
	"net/url"
	"slices"
	"strings"

	tradeapp "github.com/erp/returns/internal/application/trade"
	"github.com/erp/returns/internal/domain/shared"
	"github.com/erp/returns/internal/domain/trade"
	"github.com/erp/returns/internal/infrastructure/logger"
	"github.com/erp/returns/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Portal navigation targets
const (
	PortalLoginPath      = "/web/login"
	PortalHomePath       = "/my"
	PortalThankYouPath   = "/my/request-thank-you"
	PortalReturnFormPath = "/sale_return_form/"
)

// Legacy form field prefixes: product_<n>=<product id>, qty_<product id>=<quantity>
const (
	legacyProductPrefix  = "product_"
	legacyQuantityPrefix = "qty_"
)

// submissionPayload is the JSON body of a return request. Lines stay raw so
// a malformed line can be dropped without failing the others.
type submissionPayload struct {
	SalesOrderID string            `json:"sales_order_id"`
	Reason       string            `json:"reason"`
	Lines        []json.RawMessage `json:"lines"`
}

// PortalReturnHandler serves the customer portal: return requests and the
// customer's own return orders.
type PortalReturnHandler struct {
	BaseHandler
	requestService *tradeapp.ReturnRequestService
	queryService   *tradeapp.PortalQueryService
	pageSize       int
	logger         *zap.Logger
}

// NewPortalReturnHandler creates a new PortalReturnHandler
func NewPortalReturnHandler(
	requestService *tradeapp.ReturnRequestService,
	queryService *tradeapp.PortalQueryService,
	pageSize int,
	logger *zap.Logger,
) *PortalReturnHandler {
	if pageSize <= 0 {
		pageSize = tradeapp.DefaultPortalPageSize
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PortalReturnHandler{
		requestService: requestService,
		queryService:   queryService,
		pageSize:       pageSize,
		logger:         logger,
	}
}

// Submit godoc
//
//	@ID				submitReturnRequest
//	@Summary		Request a return
//	@Description	Creates a draft return order against one of the customer's sales orders. Lines that cannot be returned are skipped and reported.
//	@Description	The legacy form encoding (order_id, reason, product_<n>, qty_<product id>) is accepted as well.
//	@Tags			portal
//	@Accept			json
//	@Accept			x-www-form-urlencoded
//	@Produce		json
//	@Param			request	body		tradeapp.SubmitReturnRequest	true	"Return request"
//	@Success		303		{object}	APIResponse[tradeapp.SubmitReturnResult]	"Location: /my/request-thank-you"
//	@Header			303		{string}	Location	"Next page: thank-you page, login, the return form with ?error=, or /my"
//	@Failure		400		{object}	dto.ErrorResponse
//	@Security		BearerAuth
//	@Router			/portal/returns [post]
func (h *PortalReturnHandler) Submit(c *gin.Context) {
	req, bindErr := h.bindSubmission(c)
	if req.SalesOrderID == uuid.Nil {
		h.BadRequest(c, "sales_order_id is required")
		return
	}
	formPath := PortalReturnFormPath + req.SalesOrderID.String()

	rc, err := requestContext(c)
	if err != nil || !rc.IsAuthenticated() {
		h.seeOther(c, loginRedirect(formPath),
			dto.NewErrorResponseWithRequestID(dto.ErrCodeUnauthorized, "Login required", getRequestID(c)))
		return
	}
	if bindErr != nil {
		h.redirectToForm(c, formPath, shared.NewDomainError("INVALID_INPUT", bindErr.Error()), nil)
		return
	}

	result, err := h.requestService.Submit(c.Request.Context(), rc, req)
	if err != nil {
		h.redirectToForm(c, formPath, err, result)
		return
	}

	h.seeOther(c, PortalThankYouPath, dto.NewSuccessResponse(result))
}

// redirectToForm sends the customer back to the return form with an error
// parameter. Ownership failures go to the portal home instead.
func (h *PortalReturnHandler) redirectToForm(c *gin.Context, formPath string, err error, result *tradeapp.SubmitReturnResult) {
	requestID := getRequestID(c)
	domainErr, ok := shared.AsDomainError(err)
	if !ok {
		logger.FromContext(c.Request.Context()).Error("return request failed", zap.Error(err))
		domainErr = shared.NewDomainError(dto.ErrCodeInternal, "An unexpected error occurred")
	}
	code := dto.NormalizeErrorCode(domainErr.Code)
	body := dto.NewErrorResponseWithRequestID(code, domainErr.Message, requestID)
	if result != nil {
		body.Data = result
	}

	if isAccessError(code) {
		h.seeOther(c, PortalHomePath, body)
		return
	}
	query := url.Values{}
	query.Set("error", dto.PortalErrorParam(code))
	query.Set("message", domainErr.Message)
	h.seeOther(c, formPath+"?"+query.Encode(), body)
}

// bindSubmission decodes a JSON body or the legacy form encoding. The sales
// order ID is filled in whenever it could be read, even when an error is
// returned, so the caller can send the customer back to the right form.
// Malformed lines are skipped in both encodings.
func (h *PortalReturnHandler) bindSubmission(c *gin.Context) (tradeapp.SubmitReturnRequest, error) {
	var req tradeapp.SubmitReturnRequest
	log := logger.FromContext(c.Request.Context())
	if c.ContentType() == binding.MIMEJSON {
		var payload submissionPayload
		if err := c.ShouldBindJSON(&payload); err != nil {
			return req, err
		}
		req.SalesOrderID = parseOrderID(payload.SalesOrderID)
		req.Reason = payload.Reason
		req.Lines = DecodeReturnLines(payload.Lines, log)
		return req, binding.Validator.ValidateStruct(&req)
	}

	if err := c.Request.ParseForm(); err != nil {
		return req, err
	}
	form := c.Request.PostForm
	orderID := form.Get("sales_order_id")
	if orderID == "" {
		orderID = form.Get("order_id")
	}
	req.SalesOrderID = parseOrderID(orderID)
	req.Reason = form.Get("reason")
	req.Lines = ParseLegacyReturnLines(form, log)
	return req, nil
}

// parseOrderID returns uuid.Nil for a blank or malformed ID
func parseOrderID(raw string) uuid.UUID {
	id, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil {
		return uuid.Nil
	}
	return id
}

// DecodeReturnLines decodes the JSON lines of a return request one by one.
// A line that does not decode or fails validation is skipped and logged.
func DecodeReturnLines(raw []json.RawMessage, log *zap.Logger) []tradeapp.ReturnLineInput {
	lines := make([]tradeapp.ReturnLineInput, 0, len(raw))
	for i, item := range raw {
		var line tradeapp.ReturnLineInput
		err := json.Unmarshal(item, &line)
		if err == nil {
			err = binding.Validator.ValidateStruct(&line)
		}
		if err != nil {
			log.Warn("skipping malformed return line",
				zap.Int("index", i),
				zap.String("value", string(item)),
				zap.Error(err),
			)
			continue
		}
		lines = append(lines, line)
	}
	return lines
}

// ParseLegacyReturnLines converts product_<n>/qty_<product id> form pairs to
// typed return lines. Pairs with an unparsable product ID or quantity are
// skipped and logged; pairs without a quantity are skipped silently.
func ParseLegacyReturnLines(form url.Values, log *zap.Logger) []tradeapp.ReturnLineInput {
	keys := make([]string, 0, len(form))
	for key := range form {
		if strings.HasPrefix(key, legacyProductPrefix) {
			keys = append(keys, key)
		}
	}
	slices.Sort(keys)

	lines := make([]tradeapp.ReturnLineInput, 0, len(keys))
	for _, key := range keys {
		raw := strings.TrimSpace(form.Get(key))
		productID, err := uuid.Parse(raw)
		if err != nil {
			log.Warn("skipping return form field with invalid product",
				zap.String("field", key),
				zap.String("value", raw),
			)
			continue
		}
		qtyStr := strings.TrimSpace(form.Get(legacyQuantityPrefix + raw))
		if qtyStr == "" {
			continue
		}
		qty, err := decimal.NewFromString(qtyStr)
		if err != nil {
			log.Warn("skipping return form field with invalid quantity",
				zap.String("product_id", productID.String()),
				zap.String("value", qtyStr),
			)
			continue
		}
		lines = append(lines, tradeapp.ReturnLineInput{ProductID: productID, Quantity: qty})
	}
	return lines
}

// List godoc
//
//	@ID				listPortalReturns
//	@Summary		List my return orders
//	@Description	The caller's return orders, newest first by default
//	@Tags			portal
//	@Produce		json
//	@Param			page		query		int		false	"Page number"	default(1)
//	@Param			date_begin	query		string	false	"Created after"	format(date)
//	@Param			date_end	query		string	false	"Created at or before"	format(date)
//	@Param			sortby		query		string	false	"Sort key"		Enums(date, name, sale)	default(date)
//	@Param			filterby	query		string	false	"Status filter"	Enums(all, draft, confirm, done, cancel)	default(all)
//	@Success		200			{object}	APIResponse[[]tradeapp.ReturnOrderSummary]
//	@Failure		400			{object}	dto.ErrorResponse
//	@Failure		401			{object}	dto.ErrorResponse
//	@Failure		403			{object}	dto.ErrorResponse
//	@Failure		500			{object}	dto.ErrorResponse
//	@Security		BearerAuth
//	@Router			/portal/returns [get]
func (h *PortalReturnHandler) List(c *gin.Context) {
	rc, err := requestContext(c)
	if err != nil {
		h.Unauthorized(c, "Invalid session")
		return
	}

	var query tradeapp.PortalListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		h.ValidationError(c, err)
		return
	}
	if query.Page <= 0 {
		query.Page = 1
	}
	if query.PageSize <= 0 {
		query.PageSize = h.pageSize
	}

	items, total, err := h.queryService.List(c.Request.Context(), rc, query)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.SuccessWithMeta(c, items, total, query.Page, query.PageSize)
}

// Get godoc
//
//	@ID				getPortalReturn
//	@Summary		Get one of my return orders
//	@Description	Detail view with lines and transfer counts. Orders of other customers redirect to /my.
//	@Tags			portal
//	@Produce		json
//	@Param			id	path		string	true	"Return Order ID"	format(uuid)
//	@Success		200	{object}	APIResponse[tradeapp.PortalReturnDetail]
//	@Header			303	{string}	Location	"/my on access error, or the login page"
//	@Failure		500	{object}	dto.ErrorResponse
//	@Security		BearerAuth
//	@Router			/portal/returns/{id} [get]
func (h *PortalReturnHandler) Get(c *gin.Context) {
	returnID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.Redirect(http.StatusSeeOther, PortalHomePath)
		return
	}

	rc, err := requestContext(c)
	if err != nil || !rc.IsAuthenticated() {
		c.Redirect(http.StatusSeeOther, loginRedirect(trade.ReturnOrderAccessURL(returnID)))
		return
	}

	detail, err := h.queryService.Get(c.Request.Context(), rc, returnID)
	if err != nil {
		if domainErr, ok := shared.AsDomainError(err); ok && isAccessError(dto.NormalizeErrorCode(domainErr.Code)) {
			c.Redirect(http.StatusSeeOther, PortalHomePath)
			return
		}
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, detail)
}

// Count godoc
//
//	@ID				countPortalReturns
//	@Summary		Count my return orders
//	@Description	Counter shown on the portal home page
//	@Tags			portal
//	@Produce		json
//	@Success		200	{object}	APIResponse[CountData]
//	@Failure		401	{object}	dto.ErrorResponse
//	@Failure		403	{object}	dto.ErrorResponse
//	@Failure		500	{object}	dto.ErrorResponse
//	@Security		BearerAuth
//	@Router			/portal/returns/count [get]
func (h *PortalReturnHandler) Count(c *gin.Context) {
	rc, err := requestContext(c)
	if err != nil {
		h.Unauthorized(c, "Invalid session")
		return
	}

	count, err := h.queryService.Count(c.Request.Context(), rc)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, CountData{Count: count})
}

// seeOther answers 303 with a Location header and a JSON body, so browser
// forms follow the redirect and API clients still get the outcome.
func (h *PortalReturnHandler) seeOther(c *gin.Context, location string, body any) {
	c.Header("Location", location)
	c.JSON(http.StatusSeeOther, body)
}

// loginRedirect keeps next readable; portal paths need no escaping
func loginRedirect(next string) string {
	return PortalLoginPath + "?redirect=" + next
}

func isAccessError(code string) bool {
	switch code {
	case dto.ErrCodeNotOwner, dto.ErrCodeNotFound, dto.ErrCodeForbidden, dto.ErrCodeUnauthorized:
		return true
	}
	return false
}
