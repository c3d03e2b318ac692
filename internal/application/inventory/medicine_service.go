package inventory

import (
	"context"

	"github.com/google/uuid"
	"github.com/pharmacare/backend/internal/domain/inventory"
	"github.com/pharmacare/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// CreateMedicineInput carries the fields for a new catalog entry
type CreateMedicineInput struct {
	Name        string
	Barcode     string
	MinQuantity int64
	UnitPrice   decimal.Decimal
	Description string
}

// UpdateMedicineInput carries the updatable catalog fields. Nil pointers
// leave the current value as is.
type UpdateMedicineInput struct {
	Name        *string
	MinQuantity *int64
	UnitPrice   *decimal.Decimal
	Description *string
}

// MedicineService manages the medicine catalog
type MedicineService struct {
	medicineRepo inventory.MedicineRepository
	batchRepo    inventory.BatchRepository
	logger       *zap.Logger
}

// NewMedicineService creates a new MedicineService
func NewMedicineService(medicineRepo inventory.MedicineRepository, batchRepo inventory.BatchRepository) *MedicineService {
	return &MedicineService{
		medicineRepo: medicineRepo,
		batchRepo:    batchRepo,
		logger:       zap.NewNop(),
	}
}

// SetLogger sets the logger
func (s *MedicineService) SetLogger(logger *zap.Logger) {
	if logger != nil {
		s.logger = logger
	}
}

// Create adds a medicine to the catalog. Barcodes are unique across the
// catalog.
func (s *MedicineService) Create(ctx context.Context, in CreateMedicineInput) (*inventory.Medicine, error) {
	if in.Barcode != "" {
		if _, err := s.medicineRepo.FindByBarcode(ctx, in.Barcode); err == nil {
			return nil, shared.NewDomainError("ALREADY_EXISTS", "A medicine with this barcode already exists")
		} else if !isNotFound(err) {
			return nil, err
		}
	}

	medicine, err := inventory.NewMedicine(in.Name, in.Barcode, in.MinQuantity, in.UnitPrice, in.Description)
	if err != nil {
		return nil, err
	}
	if err := s.medicineRepo.Save(ctx, medicine); err != nil {
		return nil, err
	}
	s.logger.Info("medicine created",
		zap.String("medicine_id", medicine.ID.String()),
		zap.String("name", medicine.Name),
	)
	return medicine, nil
}

// Update applies partial changes to a medicine
func (s *MedicineService) Update(ctx context.Context, id uuid.UUID, in UpdateMedicineInput) (*inventory.Medicine, error) {
	medicine, err := s.medicineRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.Name != nil {
		if *in.Name == "" {
			return nil, shared.NewDomainError("INVALID_INPUT", "Medicine name cannot be empty")
		}
		medicine.Name = *in.Name
	}
	if in.MinQuantity != nil {
		if *in.MinQuantity < 0 {
			return nil, shared.NewDomainError("INVALID_INPUT", "Minimum quantity cannot be negative")
		}
		medicine.MinQuantity = *in.MinQuantity
	}
	if in.UnitPrice != nil {
		if in.UnitPrice.IsNegative() {
			return nil, shared.NewDomainError("INVALID_INPUT", "Unit price cannot be negative")
		}
		medicine.UnitPrice = *in.UnitPrice
	}
	if in.Description != nil {
		medicine.Description = *in.Description
	}
	medicine.Touch()

	if err := s.medicineRepo.Save(ctx, medicine); err != nil {
		return nil, err
	}
	return medicine, nil
}

// Delete soft-deletes a medicine. Ledger entries for it survive so the
// audit history stays complete.
func (s *MedicineService) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.medicineRepo.FindByID(ctx, id); err != nil {
		return err
	}
	if err := s.medicineRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("medicine deleted", zap.String("medicine_id", id.String()))
	return nil
}

// Get fetches a medicine by ID
func (s *MedicineService) Get(ctx context.Context, id uuid.UUID) (*inventory.Medicine, error) {
	return s.medicineRepo.FindByID(ctx, id)
}

// GetByBarcode fetches a medicine by its barcode
func (s *MedicineService) GetByBarcode(ctx context.Context, barcode string) (*inventory.Medicine, error) {
	if barcode == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "Barcode is required")
	}
	return s.medicineRepo.FindByBarcode(ctx, barcode)
}

// List returns a page of the catalog with the total count
func (s *MedicineService) List(ctx context.Context, filter shared.Filter) (*shared.Paginated[inventory.Medicine], error) {
	medicines, err := s.medicineRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}
	total, err := s.medicineRepo.Count(ctx, filter)
	if err != nil {
		return nil, err
	}
	return shared.NewPaginated(medicines, total, filter.Page, filter.PageSize), nil
}

// Batches returns all batches for a medicine
func (s *MedicineService) Batches(ctx context.Context, medicineID uuid.UUID) ([]inventory.Batch, error) {
	if _, err := s.medicineRepo.FindByID(ctx, medicineID); err != nil {
		return nil, err
	}
	return s.batchRepo.FindByMedicine(ctx, medicineID)
}
