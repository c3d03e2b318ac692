package handler

import (
	"github.com/gin-gonic/gin"
	inventoryapp "github.com/pharmacare/backend/internal/application/inventory"
	"github.com/pharmacare/backend/internal/domain/inventory"
)

// LedgerHandler answers read queries over the append-only ledger
type LedgerHandler struct {
	BaseHandler
	ledgerService *inventoryapp.LedgerService
}

// NewLedgerHandler creates a new ledger handler
func NewLedgerHandler(ledgerService *inventoryapp.LedgerService) *LedgerHandler {
	return &LedgerHandler{ledgerService: ledgerService}
}

// List returns a page of ledger entries, newest first. Supports filtering by
// ?action.
func (h *LedgerHandler) List(c *gin.Context) {
	req, err := bindListRequest(c)
	if err != nil {
		h.BadRequest(c, "Invalid query parameters")
		return
	}

	if action := c.Query("action"); action != "" {
		logs, err := h.ledgerService.ByAction(c.Request.Context(), inventory.LogAction(action), toFilter(req))
		if err != nil {
			h.HandleError(c, err)
			return
		}
		h.Success(c, toLedgerEntryResponses(logs))
		return
	}

	page, err := h.ledgerService.List(c.Request.Context(), toFilter(req))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, toLedgerEntryResponses(page.Items), page.Total, page.Page, page.PageSize)
}

// ForMedicine returns ledger entries for one medicine, newest first
func (h *LedgerHandler) ForMedicine(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid medicine ID")
		return
	}
	req, err := bindListRequest(c)
	if err != nil {
		h.BadRequest(c, "Invalid query parameters")
		return
	}

	logs, err := h.ledgerService.ForMedicine(c.Request.Context(), id, toFilter(req))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toLedgerEntryResponses(logs))
}

// ForBatch returns ledger entries for one batch, newest first
func (h *LedgerHandler) ForBatch(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid batch ID")
		return
	}
	req, err := bindListRequest(c)
	if err != nil {
		h.BadRequest(c, "Invalid query parameters")
		return
	}

	logs, err := h.ledgerService.ForBatch(c.Request.Context(), id, toFilter(req))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toLedgerEntryResponses(logs))
}
