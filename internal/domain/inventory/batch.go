package inventory

import (
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pharmacare/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// DefaultShelfLife is the expiry assigned to batches received without an
// explicit expiration date (365 days from receipt).
const DefaultShelfLife = 365 * 24 * time.Hour

// Batch represents a received lot of a medicine with its own quantity,
// expiration date and cost. (medicine, batch number) is unique.
type Batch struct {
	shared.BaseEntity
	MedicineID  uuid.UUID
	BatchNumber string
	Quantity    int64 // Never negative
	ExpiryDate  time.Time
	UnitCost    decimal.Decimal
}

// NewBatch creates a new batch for a medicine
func NewBatch(medicineID uuid.UUID, batchNumber string, quantity int64, expiryDate time.Time, unitCost decimal.Decimal) (*Batch, error) {
	batchNumber = strings.TrimSpace(batchNumber)
	if medicineID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_MEDICINE", "Medicine ID cannot be empty")
	}
	if batchNumber == "" {
		return nil, shared.NewDomainError("INVALID_BATCH_NUMBER", "Batch number cannot be empty")
	}
	if quantity < 0 {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Batch quantity cannot be negative")
	}
	if unitCost.IsNegative() {
		return nil, shared.NewDomainError("INVALID_COST", "Unit cost cannot be negative")
	}

	return &Batch{
		BaseEntity:  shared.NewBaseEntity(),
		MedicineID:  medicineID,
		BatchNumber: batchNumber,
		Quantity:    quantity,
		ExpiryDate:  expiryDate,
		UnitCost:    unitCost,
	}, nil
}

// IsExpired returns true if the batch has expired
func (b *Batch) IsExpired() bool {
	return b.ExpiryDate.Before(time.Now())
}

// WillExpireWithin returns true if the batch expires within the given duration
func (b *Batch) WillExpireWithin(d time.Duration) bool {
	return b.ExpiryDate.Before(time.Now().Add(d))
}

// HasStock returns true if the batch has remaining quantity
func (b *Batch) HasStock() bool {
	return b.Quantity > 0
}

// Add increases the batch quantity (stock receipt against an existing lot)
func (b *Batch) Add(quantity int64) error {
	if quantity <= 0 {
		return shared.NewDomainError("INVALID_QUANTITY", "Quantity to add must be positive")
	}
	b.Quantity += quantity
	b.Touch()
	return nil
}

// Deduct reduces the batch quantity, taking at most what the batch holds.
// Returns the amount actually deducted.
func (b *Batch) Deduct(quantity int64) int64 {
	if quantity <= 0 {
		return 0
	}
	taken := quantity
	if taken > b.Quantity {
		taken = b.Quantity
	}
	b.Quantity -= taken
	b.Touch()
	return taken
}

// DeductExact reduces the batch quantity by exactly the requested amount.
// The batch is left untouched when it holds less than requested.
func (b *Batch) DeductExact(quantity int64) error {
	if quantity <= 0 {
		return shared.NewDomainError("INVALID_QUANTITY", "Quantity to deduct must be positive")
	}
	if b.Quantity < quantity {
		return &InsufficientStockError{
			MedicineID: b.MedicineID,
			BatchID:    &b.ID,
			Required:   quantity,
			Available:  b.Quantity,
		}
	}
	b.Quantity -= quantity
	b.Touch()
	return nil
}

// TotalQuantity sums the on-hand quantity across batches
func TotalQuantity(batches []Batch) int64 {
	var total int64
	for i := range batches {
		total += batches[i].Quantity
	}
	return total
}

// SortByExpiry orders batches earliest-expiring first (FIFO-by-expiry).
// Ties are broken by creation time so receipt order decides between lots
// expiring the same day.
func SortByExpiry(batches []Batch) []Batch {
	sorted := make([]Batch, len(batches))
	copy(sorted, batches)
	sort.Slice(sorted, func(i, j int) bool {
		if !sorted[i].ExpiryDate.Equal(sorted[j].ExpiryDate) {
			return sorted[i].ExpiryDate.Before(sorted[j].ExpiryDate)
		}
		return sorted[i].CreatedAt.Before(sorted[j].CreatedAt)
	})
	return sorted
}

// BatchesExpiringWithin returns batches that still hold stock and expire
// within the given window
func BatchesExpiringWithin(batches []Batch, window time.Duration) []Batch {
	deadline := time.Now().Add(window)
	expiring := make([]Batch, 0)
	for _, b := range batches {
		if b.HasStock() && b.ExpiryDate.Before(deadline) {
			expiring = append(expiring, b)
		}
	}
	return expiring
}
