package handler

import (
	"github.com/gin-gonic/gin"
	inventoryapp "github.com/pharmacare/backend/internal/application/inventory"
	"github.com/shopspring/decimal"
)

// CreateMedicineRequest carries the fields for a new catalog entry
type CreateMedicineRequest struct {
	Name        string          `json:"name" binding:"required"`
	Barcode     string          `json:"barcode"`
	MinQuantity int64           `json:"min_quantity" binding:"omitempty,min=0"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Description string          `json:"description"`
}

// UpdateMedicineRequest carries partial catalog updates. Omitted fields keep
// their current value.
type UpdateMedicineRequest struct {
	Name        *string          `json:"name"`
	MinQuantity *int64           `json:"min_quantity"`
	UnitPrice   *decimal.Decimal `json:"unit_price"`
	Description *string          `json:"description"`
}

// MedicineHandler handles medicine catalog HTTP requests
type MedicineHandler struct {
	BaseHandler
	medicineService *inventoryapp.MedicineService
	stockService    *inventoryapp.StockService
}

// NewMedicineHandler creates a new medicine handler
func NewMedicineHandler(medicineService *inventoryapp.MedicineService, stockService *inventoryapp.StockService) *MedicineHandler {
	return &MedicineHandler{
		medicineService: medicineService,
		stockService:    stockService,
	}
}

// Create adds a medicine to the catalog
func (h *MedicineHandler) Create(c *gin.Context) {
	var req CreateMedicineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body")
		return
	}

	medicine, err := h.medicineService.Create(c.Request.Context(), inventoryapp.CreateMedicineInput{
		Name:        req.Name,
		Barcode:     req.Barcode,
		MinQuantity: req.MinQuantity,
		UnitPrice:   req.UnitPrice,
		Description: req.Description,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, toMedicineResponse(medicine))
}

// List returns a page of the catalog
func (h *MedicineHandler) List(c *gin.Context) {
	req, err := bindListRequest(c)
	if err != nil {
		h.BadRequest(c, "Invalid query parameters")
		return
	}

	page, err := h.medicineService.List(c.Request.Context(), toFilter(req))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, toMedicineResponses(page.Items), page.Total, page.Page, page.PageSize)
}

// GetByID fetches one medicine
func (h *MedicineHandler) GetByID(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid medicine ID")
		return
	}

	medicine, err := h.medicineService.Get(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toMedicineResponse(medicine))
}

// GetByBarcode fetches one medicine by its barcode
func (h *MedicineHandler) GetByBarcode(c *gin.Context) {
	medicine, err := h.medicineService.GetByBarcode(c.Request.Context(), c.Param("barcode"))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toMedicineResponse(medicine))
}

// Update applies partial changes to a medicine
func (h *MedicineHandler) Update(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid medicine ID")
		return
	}

	var req UpdateMedicineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body")
		return
	}

	medicine, err := h.medicineService.Update(c.Request.Context(), id, inventoryapp.UpdateMedicineInput{
		Name:        req.Name,
		MinQuantity: req.MinQuantity,
		UnitPrice:   req.UnitPrice,
		Description: req.Description,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toMedicineResponse(medicine))
}

// Delete soft-deletes a medicine; its ledger history survives
func (h *MedicineHandler) Delete(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid medicine ID")
		return
	}

	if err := h.medicineService.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

// Batches returns all batches for one medicine
func (h *MedicineHandler) Batches(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid medicine ID")
		return
	}

	batches, err := h.medicineService.Batches(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toBatchResponses(batches))
}

// Stock reports a medicine's total on-hand quantity and low stock status
func (h *MedicineHandler) Stock(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid medicine ID")
		return
	}

	total, err := h.stockService.TotalQuantity(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	low, err := h.stockService.IsLowStock(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, gin.H{
		"medicine_id":    id,
		"total_quantity": total,
		"low_stock":      low,
	})
}

// LowStock lists medicines at or below their reorder threshold
func (h *MedicineHandler) LowStock(c *gin.Context) {
	medicines, err := h.stockService.LowStockMedicines(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toMedicineResponses(medicines))
}
