package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/pharmacare/backend/internal/domain/inventory"
	"github.com/pharmacare/backend/internal/domain/shared"
	"github.com/pharmacare/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormMedicineRepository implements MedicineRepository using GORM
type GormMedicineRepository struct {
	db *gorm.DB
}

// NewGormMedicineRepository creates a new GormMedicineRepository
func NewGormMedicineRepository(db *gorm.DB) *GormMedicineRepository {
	return &GormMedicineRepository{db: db}
}

// FindByID finds a medicine by its ID
func (r *GormMedicineRepository) FindByID(ctx context.Context, id uuid.UUID) (*inventory.Medicine, error) {
	var model models.MedicineModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByBarcode finds a medicine by its unique barcode
func (r *GormMedicineRepository) FindByBarcode(ctx context.Context, barcode string) (*inventory.Medicine, error) {
	var model models.MedicineModel
	if err := r.db.WithContext(ctx).Where("barcode = ?", barcode).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll finds medicines matching the filter
func (r *GormMedicineRepository) FindAll(ctx context.Context, filter shared.Filter) ([]inventory.Medicine, error) {
	var rows []models.MedicineModel
	query := applyPagination(
		r.applySearch(r.db.WithContext(ctx).Model(&models.MedicineModel{}), filter),
		filter, MedicineSortFields, "name",
	)
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	medicines := make([]inventory.Medicine, len(rows))
	for i := range rows {
		medicines[i] = *rows[i].ToDomain()
	}
	return medicines, nil
}

// Save creates or updates a medicine
func (r *GormMedicineRepository) Save(ctx context.Context, medicine *inventory.Medicine) error {
	model := models.MedicineModelFromDomain(medicine)
	return r.db.WithContext(ctx).Save(model).Error
}

// Delete soft-deletes a medicine and its batches. Ledger entries survive.
func (r *GormMedicineRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Delete(&models.MedicineModel{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}
		return tx.Delete(&models.BatchModel{}, "medicine_id = ?", id).Error
	})
}

// Count counts medicines matching the filter
func (r *GormMedicineRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applySearch(r.db.WithContext(ctx).Model(&models.MedicineModel{}), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *GormMedicineRepository) applySearch(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where("name LIKE ? OR barcode LIKE ?", pattern, pattern)
	}
	return query
}
