package inventory

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/pharmacare/backend/internal/domain/inventory"
	"github.com/pharmacare/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ReceiveInput describes a stock receipt for a medicine. BatchNumber,
// ExpiryDate and UnitCost are optional; receipts without a batch number get a
// generated lot, receipts without an expiry default to 365 days out, and
// receipts without a cost inherit the medicine's unit price.
type ReceiveInput struct {
	MedicineID  uuid.UUID
	Quantity    int64
	BatchNumber string
	ExpiryDate  *time.Time
	UnitCost    *decimal.Decimal
	Actor       string
	Note        string
}

// BatchDeduction reports the amount taken from one batch during a dispense
type BatchDeduction struct {
	Batch    inventory.Batch
	Quantity int64
}

// StockService is the stock accounting engine. Every quantity change flows
// through it: it mutates batches, enforces the non-negative and
// FIFO-by-expiry invariants, and appends exactly one ledger entry per batch
// mutation.
//
// Concurrency: the engine performs read-modify-write on batch quantities and
// relies on its transaction scope (strict mode) or the database for
// serialization. Callers needing exactly-once decrements under concurrent
// demand must enable strict atomicity so each operation runs in one
// transaction.
type StockService struct {
	repos           TransactionalRepositories
	txScope         TransactionScope
	strictAtomicity bool
	logger          *zap.Logger
}

// NewStockService creates a new StockService over the given repositories
func NewStockService(
	medicineRepo inventory.MedicineRepository,
	batchRepo inventory.BatchRepository,
	logRepo inventory.InventoryLogRepository,
) *StockService {
	return &StockService{
		repos:  NewNoOpTransactionScope(medicineRepo, batchRepo, logRepo),
		logger: zap.NewNop(),
	}
}

// SetTransactionScope sets the scope used when strict atomicity is enabled
func (s *StockService) SetTransactionScope(scope TransactionScope) {
	s.txScope = scope
}

// SetStrictAtomicity toggles all-or-nothing semantics for multi-batch
// dispenses. Off by default to preserve the legacy partial-mutation
// behavior.
func (s *StockService) SetStrictAtomicity(strict bool) {
	s.strictAtomicity = strict
}

// SetLogger sets the logger
func (s *StockService) SetLogger(logger *zap.Logger) {
	if logger != nil {
		s.logger = logger
	}
}

// inScope runs fn against transactional repositories when strict atomicity
// is on, and against the plain repositories otherwise.
func (s *StockService) inScope(ctx context.Context, fn func(r TransactionalRepositories) error) error {
	if s.strictAtomicity && s.txScope != nil {
		return s.txScope.Execute(ctx, fn)
	}
	return fn(s.repos)
}

// Receive adds stock for a medicine. An existing (medicine, batch number)
// lot is incremented; otherwise a new batch is created. One ADD ledger entry
// is appended.
func (s *StockService) Receive(ctx context.Context, in ReceiveInput) (*inventory.Batch, error) {
	var batch *inventory.Batch
	err := s.inScope(ctx, func(r TransactionalRepositories) error {
		var err error
		batch, err = receive(ctx, r, in)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("stock received",
		zap.String("medicine_id", in.MedicineID.String()),
		zap.String("batch_number", batch.BatchNumber),
		zap.Int64("quantity", in.Quantity),
	)
	return batch, nil
}

// DispenseFIFO removes stock for a medicine, draining batches
// earliest-expiring first. Each batch touched is persisted and logged as the
// walk proceeds; when demand cannot be met the walk fails with
// InsufficientStock and, unless strict atomicity is enabled, the batches
// already drained stay drained.
func (s *StockService) DispenseFIFO(ctx context.Context, medicineID uuid.UUID, quantity int64, actor, note string) ([]BatchDeduction, error) {
	var deductions []BatchDeduction
	err := s.inScope(ctx, func(r TransactionalRepositories) error {
		var err error
		deductions, err = dispenseFIFO(ctx, r, medicineID, quantity, actor, note)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("stock dispensed",
		zap.String("medicine_id", medicineID.String()),
		zap.Int64("quantity", quantity),
		zap.Int("batches_touched", len(deductions)),
	)
	return deductions, nil
}

// DispenseExact removes stock from one named batch. The batch is left
// untouched when it holds less than requested; this path is atomic because
// only one batch is involved.
func (s *StockService) DispenseExact(ctx context.Context, batchID uuid.UUID, quantity int64, actor, note string) (*inventory.Batch, error) {
	var batch *inventory.Batch
	err := s.inScope(ctx, func(r TransactionalRepositories) error {
		var err error
		batch, err = dispenseExact(ctx, r, batchID, quantity, actor, note)
		return err
	})
	if err != nil {
		return nil, err
	}
	return batch, nil
}

// Adjust sets a batch to a new quantity, recording the signed delta as an
// ADJUST ledger entry. Used for manual corrections after stock counts.
func (s *StockService) Adjust(ctx context.Context, batchID uuid.UUID, newQuantity int64, actor, note string) (*inventory.Batch, error) {
	if newQuantity < 0 {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Adjusted quantity cannot be negative")
	}
	var batch *inventory.Batch
	err := s.inScope(ctx, func(r TransactionalRepositories) error {
		var err error
		batch, err = r.Batches().FindByID(ctx, batchID)
		if err != nil {
			return err
		}
		delta := newQuantity - batch.Quantity
		if delta == 0 {
			return nil
		}
		batch.Quantity = newQuantity
		batch.Touch()
		if err := r.Batches().Save(ctx, batch); err != nil {
			return err
		}
		return appendLog(ctx, r, batch, inventory.LogActionAdjust, delta, actor, note)
	})
	if err != nil {
		return nil, err
	}
	return batch, nil
}

// ExpireBatch writes off the remaining quantity of an expired batch with an
// EXPIRE ledger entry
func (s *StockService) ExpireBatch(ctx context.Context, batchID uuid.UUID, actor string) (*inventory.Batch, error) {
	var batch *inventory.Batch
	err := s.inScope(ctx, func(r TransactionalRepositories) error {
		var err error
		batch, err = r.Batches().FindByID(ctx, batchID)
		if err != nil {
			return err
		}
		if !batch.IsExpired() {
			return shared.NewDomainError("INVALID_STATE", "Batch has not expired")
		}
		if !batch.HasStock() {
			return nil
		}
		written := batch.Quantity
		batch.Quantity = 0
		batch.Touch()
		if err := r.Batches().Save(ctx, batch); err != nil {
			return err
		}
		note := fmt.Sprintf("Expired batch %s written off", batch.BatchNumber)
		return appendLog(ctx, r, batch, inventory.LogActionExpire, -written, actor, note)
	})
	if err != nil {
		return nil, err
	}
	return batch, nil
}

// TotalQuantity returns the on-hand quantity for a medicine, summed across
// its batches
func (s *StockService) TotalQuantity(ctx context.Context, medicineID uuid.UUID) (int64, error) {
	if _, err := s.repos.Medicines().FindByID(ctx, medicineID); err != nil {
		return 0, err
	}
	return s.repos.Batches().SumQuantityByMedicine(ctx, medicineID)
}

// IsLowStock reports whether a medicine's total quantity is at or below its
// reorder threshold
func (s *StockService) IsLowStock(ctx context.Context, medicineID uuid.UUID) (bool, error) {
	medicine, err := s.repos.Medicines().FindByID(ctx, medicineID)
	if err != nil {
		return false, err
	}
	total, err := s.repos.Batches().SumQuantityByMedicine(ctx, medicineID)
	if err != nil {
		return false, err
	}
	return medicine.IsLowStockAt(total), nil
}

// LowStockMedicines returns the medicines whose total quantity is at or
// below their reorder threshold
func (s *StockService) LowStockMedicines(ctx context.Context) ([]inventory.Medicine, error) {
	medicines, err := s.repos.Medicines().FindAll(ctx, shared.DefaultFilter())
	if err != nil {
		return nil, err
	}
	low := make([]inventory.Medicine, 0)
	for _, m := range medicines {
		total, err := s.repos.Batches().SumQuantityByMedicine(ctx, m.ID)
		if err != nil {
			return nil, err
		}
		if m.IsLowStockAt(total) {
			low = append(low, m)
		}
	}
	return low, nil
}

// ExpiringBatches returns batches with stock that expire within the given
// number of days
func (s *StockService) ExpiringBatches(ctx context.Context, days int) ([]inventory.Batch, error) {
	if days <= 0 {
		days = 30
	}
	deadline := time.Now().AddDate(0, 0, days)
	return s.repos.Batches().FindExpiringBefore(ctx, deadline)
}

// receive is the engine core for stock receipts, shared with the
// reconciliation dispatcher so order events run against the same rules.
func receive(ctx context.Context, r TransactionalRepositories, in ReceiveInput) (*inventory.Batch, error) {
	if in.Quantity <= 0 {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Receive quantity must be positive")
	}
	medicine, err := r.Medicines().FindByID(ctx, in.MedicineID)
	if err != nil {
		return nil, err
	}

	actor := in.Actor
	if actor == "" {
		actor = "system"
	}

	// Existing lot: top it up
	if in.BatchNumber != "" {
		batch, err := r.Batches().FindByBatchNumber(ctx, medicine.ID, in.BatchNumber)
		if err == nil {
			if err := batch.Add(in.Quantity); err != nil {
				return nil, err
			}
			if err := r.Batches().Save(ctx, batch); err != nil {
				return nil, err
			}
			if err := appendLog(ctx, r, batch, inventory.LogActionAdd, in.Quantity, actor, in.Note); err != nil {
				return nil, err
			}
			return batch, nil
		}
		if !isNotFound(err) {
			return nil, err
		}
	}

	batchNumber := in.BatchNumber
	if batchNumber == "" {
		batchNumber = fmt.Sprintf("RCV-%s", uuid.New().String()[:8])
	}
	expiry := time.Now().Add(inventory.DefaultShelfLife)
	if in.ExpiryDate != nil {
		expiry = *in.ExpiryDate
	}
	cost := medicine.UnitPrice
	if in.UnitCost != nil {
		cost = *in.UnitCost
	}

	batch, err := inventory.NewBatch(medicine.ID, batchNumber, in.Quantity, expiry, cost)
	if err != nil {
		return nil, err
	}
	if err := r.Batches().Save(ctx, batch); err != nil {
		return nil, err
	}
	if err := appendLog(ctx, r, batch, inventory.LogActionAdd, in.Quantity, actor, in.Note); err != nil {
		return nil, err
	}
	return batch, nil
}

// dispenseFIFO walks the medicine's batches earliest-expiring first, greedily
// draining each and logging every decrement as it happens. Ledger entries
// are created incrementally, not retroactively, so a failed walk leaves the
// entries for the batches it already drained.
func dispenseFIFO(ctx context.Context, r TransactionalRepositories, medicineID uuid.UUID, quantity int64, actor, note string) ([]BatchDeduction, error) {
	if quantity <= 0 {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Dispense quantity must be positive")
	}
	medicine, err := r.Medicines().FindByID(ctx, medicineID)
	if err != nil {
		return nil, err
	}

	batches, err := r.Batches().FindWithStock(ctx, medicine.ID)
	if err != nil {
		return nil, err
	}
	sorted := inventory.SortByExpiry(batches)

	deductions := make([]BatchDeduction, 0)
	remaining := quantity
	for i := range sorted {
		if remaining == 0 {
			break
		}
		batch := sorted[i]
		taken := batch.Deduct(remaining)
		if taken == 0 {
			continue
		}
		if err := r.Batches().Save(ctx, &batch); err != nil {
			return nil, err
		}
		if err := appendLog(ctx, r, &batch, inventory.LogActionDispense, -taken, actor, note); err != nil {
			return nil, err
		}
		remaining -= taken
		deductions = append(deductions, BatchDeduction{Batch: batch, Quantity: taken})
	}

	if remaining > 0 {
		return nil, &inventory.InsufficientStockError{
			MedicineID: medicine.ID,
			Required:   quantity,
			Available:  quantity - remaining,
		}
	}
	return deductions, nil
}

// dispenseExact drains exactly the requested amount from one batch, or
// nothing at all
func dispenseExact(ctx context.Context, r TransactionalRepositories, batchID uuid.UUID, quantity int64, actor, note string) (*inventory.Batch, error) {
	if quantity <= 0 {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Dispense quantity must be positive")
	}
	batch, err := r.Batches().FindByID(ctx, batchID)
	if err != nil {
		return nil, err
	}
	if err := batch.DeductExact(quantity); err != nil {
		return nil, err
	}
	if err := r.Batches().Save(ctx, batch); err != nil {
		return nil, err
	}
	if err := appendLog(ctx, r, batch, inventory.LogActionDispense, -quantity, actor, note); err != nil {
		return nil, err
	}
	return batch, nil
}

// appendLog appends one ledger entry for a single batch mutation
func appendLog(ctx context.Context, r TransactionalRepositories, batch *inventory.Batch, action inventory.LogAction, delta int64, actor, note string) error {
	entry, err := inventory.NewInventoryLog(batch.MedicineID, &batch.ID, action, delta, actor, note)
	if err != nil {
		return err
	}
	return r.Logs().Create(ctx, entry)
}

func isNotFound(err error) bool {
	return errors.Is(err, shared.ErrNotFound)
}
