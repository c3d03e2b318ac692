package inventory

import (
	"strings"

	"github.com/pharmacare/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Medicine represents a medicine in the pharmacy catalog.
// It is the aggregate root owning its stock batches; batch quantities are
// mutated only through the stock accounting engine.
type Medicine struct {
	shared.BaseEntity
	Name        string
	Barcode     string // Unique across the catalog
	MinQuantity int64  // Reorder threshold
	UnitPrice   decimal.Decimal
	Description string
}

// NewMedicine creates a new medicine
func NewMedicine(name, barcode string, minQuantity int64, unitPrice decimal.Decimal, description string) (*Medicine, error) {
	name = strings.TrimSpace(name)
	barcode = strings.TrimSpace(barcode)
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Medicine name cannot be empty")
	}
	if barcode == "" {
		return nil, shared.NewDomainError("INVALID_BARCODE", "Medicine barcode cannot be empty")
	}
	if minQuantity < 0 {
		return nil, shared.NewDomainError("INVALID_MIN_QUANTITY", "Minimum quantity cannot be negative")
	}
	if unitPrice.IsNegative() {
		return nil, shared.NewDomainError("INVALID_PRICE", "Unit price cannot be negative")
	}

	return &Medicine{
		BaseEntity:  shared.NewBaseEntity(),
		Name:        name,
		Barcode:     barcode,
		MinQuantity: minQuantity,
		UnitPrice:   unitPrice,
		Description: description,
	}, nil
}

// IsLowStockAt reports whether the given total on-hand quantity is at or
// below the reorder threshold. The boundary case total == MinQuantity counts
// as low stock.
func (m *Medicine) IsLowStockAt(total int64) bool {
	return total <= m.MinQuantity
}
