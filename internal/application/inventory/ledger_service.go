package inventory

import (
	"context"

	"github.com/google/uuid"
	"github.com/pharmacare/backend/internal/domain/inventory"
	"github.com/pharmacare/backend/internal/domain/shared"
)

// LedgerService answers read queries over the append-only inventory ledger
type LedgerService struct {
	logRepo      inventory.InventoryLogRepository
	medicineRepo inventory.MedicineRepository
	batchRepo    inventory.BatchRepository
}

// NewLedgerService creates a new LedgerService
func NewLedgerService(
	logRepo inventory.InventoryLogRepository,
	medicineRepo inventory.MedicineRepository,
	batchRepo inventory.BatchRepository,
) *LedgerService {
	return &LedgerService{
		logRepo:      logRepo,
		medicineRepo: medicineRepo,
		batchRepo:    batchRepo,
	}
}

// List returns a page of ledger entries with the total count
func (s *LedgerService) List(ctx context.Context, filter shared.Filter) (*shared.Paginated[inventory.InventoryLog], error) {
	logs, err := s.logRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}
	total, err := s.logRepo.Count(ctx, filter)
	if err != nil {
		return nil, err
	}
	return shared.NewPaginated(logs, total, filter.Page, filter.PageSize), nil
}

// ForMedicine returns ledger entries for one medicine, newest first
func (s *LedgerService) ForMedicine(ctx context.Context, medicineID uuid.UUID, filter shared.Filter) ([]inventory.InventoryLog, error) {
	if _, err := s.medicineRepo.FindByID(ctx, medicineID); err != nil {
		return nil, err
	}
	return s.logRepo.FindByMedicine(ctx, medicineID, filter)
}

// ForBatch returns ledger entries for one batch, newest first
func (s *LedgerService) ForBatch(ctx context.Context, batchID uuid.UUID, filter shared.Filter) ([]inventory.InventoryLog, error) {
	if _, err := s.batchRepo.FindByID(ctx, batchID); err != nil {
		return nil, err
	}
	return s.logRepo.FindByBatch(ctx, batchID, filter)
}

// ByAction returns ledger entries with the given action, newest first
func (s *LedgerService) ByAction(ctx context.Context, action inventory.LogAction, filter shared.Filter) ([]inventory.InventoryLog, error) {
	if !action.IsValid() {
		return nil, shared.NewDomainError("INVALID_INPUT", "Unknown ledger action")
	}
	return s.logRepo.FindByAction(ctx, action, filter)
}
