package handler

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	inventoryapp "github.com/pharmacare/backend/internal/application/inventory"
	"github.com/pharmacare/backend/internal/domain/inventory"
	"github.com/pharmacare/backend/internal/domain/shared"
)

// In-memory repositories backing handler tests. Handlers are exercised
// through real services wired against these fakes.

type memMedicineRepo struct {
	medicines map[uuid.UUID]inventory.Medicine
}

func newMemMedicineRepo() *memMedicineRepo {
	return &memMedicineRepo{medicines: make(map[uuid.UUID]inventory.Medicine)}
}

func (r *memMedicineRepo) FindByID(_ context.Context, id uuid.UUID) (*inventory.Medicine, error) {
	m, ok := r.medicines[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	out := m
	return &out, nil
}

func (r *memMedicineRepo) FindByBarcode(_ context.Context, barcode string) (*inventory.Medicine, error) {
	for _, m := range r.medicines {
		if m.Barcode == barcode {
			out := m
			return &out, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *memMedicineRepo) FindAll(_ context.Context, _ shared.Filter) ([]inventory.Medicine, error) {
	out := make([]inventory.Medicine, 0, len(r.medicines))
	for _, m := range r.medicines {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *memMedicineRepo) Save(_ context.Context, medicine *inventory.Medicine) error {
	r.medicines[medicine.ID] = *medicine
	return nil
}

func (r *memMedicineRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := r.medicines[id]; !ok {
		return shared.ErrNotFound
	}
	delete(r.medicines, id)
	return nil
}

func (r *memMedicineRepo) Count(_ context.Context, _ shared.Filter) (int64, error) {
	return int64(len(r.medicines)), nil
}

type memBatchRepo struct {
	batches map[uuid.UUID]inventory.Batch
}

func newMemBatchRepo() *memBatchRepo {
	return &memBatchRepo{batches: make(map[uuid.UUID]inventory.Batch)}
}

func (r *memBatchRepo) FindByID(_ context.Context, id uuid.UUID) (*inventory.Batch, error) {
	b, ok := r.batches[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	out := b
	return &out, nil
}

func (r *memBatchRepo) FindByMedicine(_ context.Context, medicineID uuid.UUID) ([]inventory.Batch, error) {
	out := make([]inventory.Batch, 0)
	for _, b := range r.batches {
		if b.MedicineID == medicineID {
			out = append(out, b)
		}
	}
	return inventory.SortByExpiry(out), nil
}

func (r *memBatchRepo) FindWithStock(ctx context.Context, medicineID uuid.UUID) ([]inventory.Batch, error) {
	all, _ := r.FindByMedicine(ctx, medicineID)
	out := make([]inventory.Batch, 0)
	for _, b := range all {
		if b.Quantity > 0 {
			out = append(out, b)
		}
	}
	return out, nil
}

func (r *memBatchRepo) FindByBatchNumber(_ context.Context, medicineID uuid.UUID, batchNumber string) (*inventory.Batch, error) {
	for _, b := range r.batches {
		if b.MedicineID == medicineID && b.BatchNumber == batchNumber {
			out := b
			return &out, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *memBatchRepo) FindBySourcePrefix(_ context.Context, medicineID uuid.UUID, prefix string) (*inventory.Batch, error) {
	var found *inventory.Batch
	for _, b := range r.batches {
		if b.MedicineID != medicineID || !strings.HasPrefix(b.BatchNumber, prefix) {
			continue
		}
		b := b
		if found == nil || b.CreatedAt.Before(found.CreatedAt) {
			found = &b
		}
	}
	if found == nil {
		return nil, shared.ErrNotFound
	}
	return found, nil
}

func (r *memBatchRepo) FindExpiringBefore(_ context.Context, deadline time.Time) ([]inventory.Batch, error) {
	out := make([]inventory.Batch, 0)
	for _, b := range r.batches {
		if b.Quantity > 0 && b.ExpiryDate.Before(deadline) {
			out = append(out, b)
		}
	}
	return inventory.SortByExpiry(out), nil
}

func (r *memBatchRepo) Save(_ context.Context, batch *inventory.Batch) error {
	r.batches[batch.ID] = *batch
	return nil
}

func (r *memBatchRepo) SumQuantityByMedicine(_ context.Context, medicineID uuid.UUID) (int64, error) {
	var total int64
	for _, b := range r.batches {
		if b.MedicineID == medicineID {
			total += b.Quantity
		}
	}
	return total, nil
}

type memLogRepo struct {
	entries []inventory.InventoryLog
}

func newMemLogRepo() *memLogRepo {
	return &memLogRepo{entries: make([]inventory.InventoryLog, 0)}
}

func (r *memLogRepo) Create(_ context.Context, log *inventory.InventoryLog) error {
	r.entries = append(r.entries, *log)
	return nil
}

func (r *memLogRepo) FindByMedicine(_ context.Context, medicineID uuid.UUID, _ shared.Filter) ([]inventory.InventoryLog, error) {
	out := make([]inventory.InventoryLog, 0)
	for _, e := range r.entries {
		if e.MedicineID == medicineID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r *memLogRepo) FindByBatch(_ context.Context, batchID uuid.UUID, _ shared.Filter) ([]inventory.InventoryLog, error) {
	out := make([]inventory.InventoryLog, 0)
	for _, e := range r.entries {
		if e.BatchID != nil && *e.BatchID == batchID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r *memLogRepo) FindByAction(_ context.Context, action inventory.LogAction, _ shared.Filter) ([]inventory.InventoryLog, error) {
	out := make([]inventory.InventoryLog, 0)
	for _, e := range r.entries {
		if e.Action == action {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r *memLogRepo) FindAll(_ context.Context, _ shared.Filter) ([]inventory.InventoryLog, error) {
	out := make([]inventory.InventoryLog, len(r.entries))
	copy(out, r.entries)
	return out, nil
}

func (r *memLogRepo) Count(_ context.Context, _ shared.Filter) (int64, error) {
	return int64(len(r.entries)), nil
}

// handlerEnv wires real services over the in-memory repositories
type handlerEnv struct {
	medicineRepo *memMedicineRepo
	batchRepo    *memBatchRepo
	logRepo      *memLogRepo

	stockService          *inventoryapp.StockService
	reconciliationService *inventoryapp.ReconciliationService
	medicineService       *inventoryapp.MedicineService
	ledgerService         *inventoryapp.LedgerService
}

func newHandlerEnv() *handlerEnv {
	medicineRepo := newMemMedicineRepo()
	batchRepo := newMemBatchRepo()
	logRepo := newMemLogRepo()

	return &handlerEnv{
		medicineRepo:          medicineRepo,
		batchRepo:             batchRepo,
		logRepo:               logRepo,
		stockService:          inventoryapp.NewStockService(medicineRepo, batchRepo, logRepo),
		reconciliationService: inventoryapp.NewReconciliationService(medicineRepo, batchRepo, logRepo),
		medicineService:       inventoryapp.NewMedicineService(medicineRepo, batchRepo),
		ledgerService:         inventoryapp.NewLedgerService(logRepo, medicineRepo, batchRepo),
	}
}
