package inventory

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pharmacare/backend/internal/domain/shared"
)

// MedicineRepository defines the interface for medicine persistence
type MedicineRepository interface {
	// FindByID finds a medicine by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*Medicine, error)

	// FindByBarcode finds a medicine by its unique barcode
	FindByBarcode(ctx context.Context, barcode string) (*Medicine, error)

	// FindAll finds medicines matching the filter
	FindAll(ctx context.Context, filter shared.Filter) ([]Medicine, error)

	// Save creates or updates a medicine
	Save(ctx context.Context, medicine *Medicine) error

	// Delete soft-deletes a medicine. Its batches go with it; ledger entries
	// referencing the medicine are preserved.
	Delete(ctx context.Context, id uuid.UUID) error

	// Count counts medicines matching the filter
	Count(ctx context.Context, filter shared.Filter) (int64, error)
}

// BatchRepository defines the interface for batch persistence.
// Batch quantities are mutated only by the stock accounting engine; every
// mutation saved here is paired with an inventory log entry appended by the
// engine.
type BatchRepository interface {
	// FindByID finds a batch by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*Batch, error)

	// FindByMedicine finds all batches for a medicine
	FindByMedicine(ctx context.Context, medicineID uuid.UUID) ([]Batch, error)

	// FindWithStock finds batches for a medicine with quantity > 0,
	// ordered ascending by expiration date
	FindWithStock(ctx context.Context, medicineID uuid.UUID) ([]Batch, error)

	// FindByBatchNumber finds the batch with the given number for a medicine
	FindByBatchNumber(ctx context.Context, medicineID uuid.UUID, batchNumber string) (*Batch, error)

	// FindBySourcePrefix finds the first batch for a medicine whose batch
	// number starts with the given prefix, used for order-derived lots
	FindBySourcePrefix(ctx context.Context, medicineID uuid.UUID, prefix string) (*Batch, error)

	// FindExpiringBefore finds batches with stock expiring before the deadline
	FindExpiringBefore(ctx context.Context, deadline time.Time) ([]Batch, error)

	// Save creates or updates a batch
	Save(ctx context.Context, batch *Batch) error

	// SumQuantityByMedicine sums the on-hand quantity across a medicine's batches
	SumQuantityByMedicine(ctx context.Context, medicineID uuid.UUID) (int64, error)
}

// InventoryLogRepository defines the interface for ledger persistence.
// The ledger is append-only: there is no update or delete.
type InventoryLogRepository interface {
	// Create appends a new ledger entry
	Create(ctx context.Context, log *InventoryLog) error

	// FindByMedicine finds entries for a medicine, newest first
	FindByMedicine(ctx context.Context, medicineID uuid.UUID, filter shared.Filter) ([]InventoryLog, error)

	// FindByBatch finds entries for a batch, newest first
	FindByBatch(ctx context.Context, batchID uuid.UUID, filter shared.Filter) ([]InventoryLog, error)

	// FindByAction finds entries with the given action, newest first
	FindByAction(ctx context.Context, action LogAction, filter shared.Filter) ([]InventoryLog, error)

	// FindAll finds entries matching the filter, newest first
	FindAll(ctx context.Context, filter shared.Filter) ([]InventoryLog, error)

	// Count counts entries matching the filter
	Count(ctx context.Context, filter shared.Filter) (int64, error)
}
