package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	inventoryapp "github.com/pharmacare/backend/internal/application/inventory"
	"github.com/shopspring/decimal"
)

// ReceiveRequest carries a stock receipt
type ReceiveRequest struct {
	MedicineID  uuid.UUID        `json:"medicine_id" binding:"required"`
	Quantity    int64            `json:"quantity" binding:"required,gt=0"`
	BatchNumber string           `json:"batch_number"`
	ExpiryDate  *time.Time       `json:"expiry_date"`
	UnitCost    *decimal.Decimal `json:"unit_cost"`
	Note        string           `json:"note"`
}

// DispenseRequest carries a FIFO dispense for a medicine
type DispenseRequest struct {
	MedicineID uuid.UUID `json:"medicine_id" binding:"required"`
	Quantity   int64     `json:"quantity" binding:"required,gt=0"`
	Note       string    `json:"note"`
}

// DispenseExactRequest carries a dispense pinned to one batch
type DispenseExactRequest struct {
	BatchID  uuid.UUID `json:"batch_id" binding:"required"`
	Quantity int64     `json:"quantity" binding:"required,gt=0"`
	Note     string    `json:"note"`
}

// AdjustRequest sets a batch to a new absolute quantity
type AdjustRequest struct {
	Quantity int64  `json:"quantity" binding:"min=0"`
	Note     string `json:"note"`
}

// EventLineItemRequest is one medicine line within an event
type EventLineItemRequest struct {
	MedicineID uuid.UUID        `json:"medicine_id" binding:"required"`
	BatchID    *uuid.UUID       `json:"batch_id"`
	Quantity   int64            `json:"quantity" binding:"required,gt=0"`
	ExpiryDate *time.Time       `json:"expiry_date"`
	UnitCost   *decimal.Decimal `json:"unit_cost"`
}

// ApplyEventRequest carries a business event to reconcile against the ledger
type ApplyEventRequest struct {
	Type     string                 `json:"type" binding:"required"`
	SourceID string                 `json:"source_id" binding:"required"`
	Items    []EventLineItemRequest `json:"items" binding:"required,min=1,dive"`
}

// AppliedItemResponse records the stock effect of one applied line
type AppliedItemResponse struct {
	MedicineID uuid.UUID           `json:"medicine_id"`
	Quantity   int64               `json:"quantity"`
	Batch      *BatchResponse      `json:"batch,omitempty"`
	Deductions []DeductionResponse `json:"deductions,omitempty"`
}

// EventResultResponse reports how far an event got
type EventResultResponse struct {
	EventType  string                `json:"event_type"`
	SourceID   string                `json:"source_id"`
	Applied    []AppliedItemResponse `json:"applied"`
	Failed     bool                  `json:"failed"`
	FailedItem *EventLineItemRequest `json:"failed_item,omitempty"`
	Reason     string                `json:"reason,omitempty"`
}

// InventoryHandler handles stock accounting and reconciliation HTTP requests
type InventoryHandler struct {
	BaseHandler
	stockService          *inventoryapp.StockService
	reconciliationService *inventoryapp.ReconciliationService
}

// NewInventoryHandler creates a new inventory handler
func NewInventoryHandler(stockService *inventoryapp.StockService, reconciliationService *inventoryapp.ReconciliationService) *InventoryHandler {
	return &InventoryHandler{
		stockService:          stockService,
		reconciliationService: reconciliationService,
	}
}

// Receive adds stock for a medicine, topping up an existing lot or creating
// a new batch
func (h *InventoryHandler) Receive(c *gin.Context) {
	var req ReceiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body")
		return
	}

	batch, err := h.stockService.Receive(c.Request.Context(), inventoryapp.ReceiveInput{
		MedicineID:  req.MedicineID,
		Quantity:    req.Quantity,
		BatchNumber: req.BatchNumber,
		ExpiryDate:  req.ExpiryDate,
		UnitCost:    req.UnitCost,
		Actor:       getActor(c),
		Note:        req.Note,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, toBatchResponse(batch))
}

// Dispense removes stock for a medicine, draining batches earliest expiry
// first
func (h *InventoryHandler) Dispense(c *gin.Context) {
	var req DispenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body")
		return
	}

	deductions, err := h.stockService.DispenseFIFO(c.Request.Context(), req.MedicineID, req.Quantity, getActor(c), req.Note)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, gin.H{
		"medicine_id": req.MedicineID,
		"quantity":    req.Quantity,
		"deductions":  toDeductionResponses(deductions),
	})
}

// DispenseExact removes stock from one named batch, all or nothing
func (h *InventoryHandler) DispenseExact(c *gin.Context) {
	var req DispenseExactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body")
		return
	}

	batch, err := h.stockService.DispenseExact(c.Request.Context(), req.BatchID, req.Quantity, getActor(c), req.Note)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toBatchResponse(batch))
}

// Adjust sets a batch to a counted quantity, logging the signed delta
func (h *InventoryHandler) Adjust(c *gin.Context) {
	batchID, ok := parseUUIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid batch ID")
		return
	}

	var req AdjustRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body")
		return
	}

	batch, err := h.stockService.Adjust(c.Request.Context(), batchID, req.Quantity, getActor(c), req.Note)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toBatchResponse(batch))
}

// ExpireBatch writes off the remaining quantity of an expired batch
func (h *InventoryHandler) ExpireBatch(c *gin.Context) {
	batchID, ok := parseUUIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid batch ID")
		return
	}

	batch, err := h.stockService.ExpireBatch(c.Request.Context(), batchID, getActor(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toBatchResponse(batch))
}

// ExpiringBatches lists batches with stock that expire within ?days
// (default 30)
func (h *InventoryHandler) ExpiringBatches(c *gin.Context) {
	days := 30
	if raw := c.Query("days"); raw != "" {
		parsed, ok := parsePositiveInt(raw)
		if !ok {
			h.BadRequest(c, "Invalid days parameter")
			return
		}
		days = parsed
	}

	batches, err := h.stockService.ExpiringBatches(c.Request.Context(), days)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toBatchResponses(batches))
}

// ApplyEvent reconciles an order or prescription event against the ledger.
// A failed event still returns the lines applied before the failure; their
// stock effects are already persisted unless strict atomicity is enabled.
func (h *InventoryHandler) ApplyEvent(c *gin.Context) {
	var req ApplyEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body")
		return
	}

	items := make([]inventoryapp.LineItem, len(req.Items))
	for i, item := range req.Items {
		items[i] = inventoryapp.LineItem{
			MedicineID: item.MedicineID,
			BatchID:    item.BatchID,
			Quantity:   item.Quantity,
			ExpiryDate: item.ExpiryDate,
			UnitCost:   item.UnitCost,
		}
	}

	result, err := h.reconciliationService.ApplyEvent(c.Request.Context(), inventoryapp.Event{
		Type:     inventoryapp.EventType(req.Type),
		SourceID: req.SourceID,
		Actor:    getActor(c),
		Items:    items,
	})
	if err != nil {
		// The partial result matters to the caller: report it alongside the
		// failure status instead of a bare error envelope
		h.respondEventResult(c, result, err)
		return
	}

	h.Success(c, toEventResultResponse(result))
}

func (h *InventoryHandler) respondEventResult(c *gin.Context, result *inventoryapp.EventResult, err error) {
	if result == nil {
		h.HandleError(c, err)
		return
	}
	status := statusForError(err)
	c.JSON(status, gin.H{
		"success": false,
		"data":    toEventResultResponse(result),
	})
}

func toEventResultResponse(result *inventoryapp.EventResult) EventResultResponse {
	applied := make([]AppliedItemResponse, len(result.Applied))
	for i, item := range result.Applied {
		out := AppliedItemResponse{
			MedicineID: item.MedicineID,
			Quantity:   item.Quantity,
			Deductions: toDeductionResponses(item.Deductions),
		}
		if item.Batch != nil {
			b := toBatchResponse(item.Batch)
			out.Batch = &b
		}
		applied[i] = out
	}

	resp := EventResultResponse{
		EventType: string(result.EventType),
		SourceID:  result.SourceID,
		Applied:   applied,
		Failed:    result.Failed,
		Reason:    result.Reason,
	}
	if result.FailedItem != nil {
		resp.FailedItem = &EventLineItemRequest{
			MedicineID: result.FailedItem.MedicineID,
			BatchID:    result.FailedItem.BatchID,
			Quantity:   result.FailedItem.Quantity,
			ExpiryDate: result.FailedItem.ExpiryDate,
			UnitCost:   result.FailedItem.UnitCost,
		}
	}
	return resp
}
