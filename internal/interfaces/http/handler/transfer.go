package handler

import (
	inventoryapp "github.com/erp/returns/internal/application/inventory"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// TransferHandler exposes warehouse transfer operations to staff
type TransferHandler struct {
	BaseHandler
	transferService *inventoryapp.TransferService
}

// NewTransferHandler creates a new TransferHandler
func NewTransferHandler(transferService *inventoryapp.TransferService) *TransferHandler {
	return &TransferHandler{
		transferService: transferService,
	}
}

// transferAction runs one of the transfer service operations on the :id path parameter
func (h *TransferHandler) transferAction(c *gin.Context, action func(*gin.Context, uuid.UUID, uuid.UUID) (*inventoryapp.TransferResponse, error)) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Invalid tenant ID")
		return
	}

	transferID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid transfer ID format")
		return
	}

	transfer, err := action(c, tenantID, transferID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, transfer)
}

// GetByID godoc
//
//	@ID				getTransferById
//	@Summary		Get transfer by ID
//	@Description	Retrieve a delivery or reverse transfer with its moves
//	@Tags			transfers
//	@Produce		json
//	@Param			id	path		string	true	"Transfer ID"	format(uuid)
//	@Success		200	{object}	APIResponse[inventoryapp.TransferResponse]
//	@Failure		400	{object}	dto.ErrorResponse
//	@Failure		401	{object}	dto.ErrorResponse
//	@Failure		404	{object}	dto.ErrorResponse
//	@Failure		500	{object}	dto.ErrorResponse
//	@Security		BearerAuth
//	@Router			/inventory/transfers/{id} [get]
func (h *TransferHandler) GetByID(c *gin.Context) {
	h.transferAction(c, func(c *gin.Context, tenantID, transferID uuid.UUID) (*inventoryapp.TransferResponse, error) {
		return h.transferService.GetByID(c.Request.Context(), tenantID, transferID)
	})
}

// Validate godoc
//
//	@ID				validateTransfer
//	@Summary		Validate a transfer
//	@Description	Marks a ready transfer done and publishes TransferCompleted
//	@Tags			transfers
//	@Produce		json
//	@Param			id	path		string	true	"Transfer ID"	format(uuid)
//	@Success		200	{object}	APIResponse[inventoryapp.TransferResponse]
//	@Failure		400	{object}	dto.ErrorResponse
//	@Failure		401	{object}	dto.ErrorResponse
//	@Failure		404	{object}	dto.ErrorResponse
//	@Failure		422	{object}	dto.ErrorResponse
//	@Failure		500	{object}	dto.ErrorResponse
//	@Security		BearerAuth
//	@Router			/inventory/transfers/{id}/validate [post]
func (h *TransferHandler) Validate(c *gin.Context) {
	h.transferAction(c, func(c *gin.Context, tenantID, transferID uuid.UUID) (*inventoryapp.TransferResponse, error) {
		return h.transferService.ValidateTransfer(c.Request.Context(), tenantID, transferID)
	})
}

// Cancel godoc
//
//	@ID				cancelTransfer
//	@Summary		Cancel a transfer
//	@Description	Cancels an open delivery. Open reverse transfers are refused with 422; cancel their return order instead.
//	@Tags			transfers
//	@Produce		json
//	@Param			id	path		string	true	"Transfer ID"	format(uuid)
//	@Success		200	{object}	APIResponse[inventoryapp.TransferResponse]
//	@Failure		400	{object}	dto.ErrorResponse
//	@Failure		401	{object}	dto.ErrorResponse
//	@Failure		404	{object}	dto.ErrorResponse
//	@Failure		422	{object}	dto.ErrorResponse
//	@Failure		500	{object}	dto.ErrorResponse
//	@Security		BearerAuth
//	@Router			/inventory/transfers/{id}/cancel [post]
func (h *TransferHandler) Cancel(c *gin.Context) {
	h.transferAction(c, func(c *gin.Context, tenantID, transferID uuid.UUID) (*inventoryapp.TransferResponse, error) {
		return h.transferService.CancelTransfer(c.Request.Context(), tenantID, transferID)
	})
}
