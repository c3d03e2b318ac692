package handler

import (
	"time"

	"github.com/google/uuid"
	inventoryapp "github.com/pharmacare/backend/internal/application/inventory"
	"github.com/pharmacare/backend/internal/domain/identity"
	"github.com/pharmacare/backend/internal/domain/inventory"
	"github.com/shopspring/decimal"
)

// MedicineResponse is the wire representation of a catalog entry
type MedicineResponse struct {
	ID          uuid.UUID       `json:"id"`
	Name        string          `json:"name"`
	Barcode     string          `json:"barcode,omitempty"`
	MinQuantity int64           `json:"min_quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Description string          `json:"description,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

func toMedicineResponse(m *inventory.Medicine) MedicineResponse {
	return MedicineResponse{
		ID:          m.ID,
		Name:        m.Name,
		Barcode:     m.Barcode,
		MinQuantity: m.MinQuantity,
		UnitPrice:   m.UnitPrice,
		Description: m.Description,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

func toMedicineResponses(medicines []inventory.Medicine) []MedicineResponse {
	out := make([]MedicineResponse, len(medicines))
	for i := range medicines {
		out[i] = toMedicineResponse(&medicines[i])
	}
	return out
}

// BatchResponse is the wire representation of a stock batch
type BatchResponse struct {
	ID          uuid.UUID       `json:"id"`
	MedicineID  uuid.UUID       `json:"medicine_id"`
	BatchNumber string          `json:"batch_number"`
	Quantity    int64           `json:"quantity"`
	ExpiryDate  time.Time       `json:"expiry_date"`
	UnitCost    decimal.Decimal `json:"unit_cost"`
	Expired     bool            `json:"expired"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

func toBatchResponse(b *inventory.Batch) BatchResponse {
	return BatchResponse{
		ID:          b.ID,
		MedicineID:  b.MedicineID,
		BatchNumber: b.BatchNumber,
		Quantity:    b.Quantity,
		ExpiryDate:  b.ExpiryDate,
		UnitCost:    b.UnitCost,
		Expired:     b.IsExpired(),
		CreatedAt:   b.CreatedAt,
		UpdatedAt:   b.UpdatedAt,
	}
}

func toBatchResponses(batches []inventory.Batch) []BatchResponse {
	out := make([]BatchResponse, len(batches))
	for i := range batches {
		out[i] = toBatchResponse(&batches[i])
	}
	return out
}

// LedgerEntryResponse is the wire representation of one ledger entry
type LedgerEntryResponse struct {
	ID          uuid.UUID  `json:"id"`
	MedicineID  uuid.UUID  `json:"medicine_id"`
	BatchID     *uuid.UUID `json:"batch_id,omitempty"`
	Action      string     `json:"action"`
	Quantity    int64      `json:"quantity"`
	PerformedBy string     `json:"performed_by"`
	Note        string     `json:"note,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

func toLedgerEntryResponse(l *inventory.InventoryLog) LedgerEntryResponse {
	return LedgerEntryResponse{
		ID:          l.ID,
		MedicineID:  l.MedicineID,
		BatchID:     l.BatchID,
		Action:      string(l.Action),
		Quantity:    l.Quantity,
		PerformedBy: l.PerformedBy,
		Note:        l.Note,
		CreatedAt:   l.CreatedAt,
	}
}

func toLedgerEntryResponses(logs []inventory.InventoryLog) []LedgerEntryResponse {
	out := make([]LedgerEntryResponse, len(logs))
	for i := range logs {
		out[i] = toLedgerEntryResponse(&logs[i])
	}
	return out
}

// DeductionResponse reports the amount taken from one batch
type DeductionResponse struct {
	Batch    BatchResponse `json:"batch"`
	Quantity int64         `json:"quantity"`
}

func toDeductionResponses(deductions []inventoryapp.BatchDeduction) []DeductionResponse {
	out := make([]DeductionResponse, len(deductions))
	for i := range deductions {
		out[i] = DeductionResponse{
			Batch:    toBatchResponse(&deductions[i].Batch),
			Quantity: deductions[i].Quantity,
		}
	}
	return out
}

// UserResponse is the wire representation of a staff account
type UserResponse struct {
	ID          uuid.UUID `json:"id"`
	Username    string    `json:"username"`
	DisplayName string    `json:"display_name,omitempty"`
	Role        string    `json:"role"`
	Active      bool      `json:"active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func toUserResponse(u *identity.User) UserResponse {
	return UserResponse{
		ID:          u.ID,
		Username:    u.Username,
		DisplayName: u.DisplayName,
		Role:        u.Role.String(),
		Active:      u.Active,
		CreatedAt:   u.CreatedAt,
		UpdatedAt:   u.UpdatedAt,
	}
}
