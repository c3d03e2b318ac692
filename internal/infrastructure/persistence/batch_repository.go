package persistence

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pharmacare/backend/internal/domain/inventory"
	"github.com/pharmacare/backend/internal/domain/shared"
	"github.com/pharmacare/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormBatchRepository implements BatchRepository using GORM
type GormBatchRepository struct {
	db *gorm.DB
}

// NewGormBatchRepository creates a new GormBatchRepository
func NewGormBatchRepository(db *gorm.DB) *GormBatchRepository {
	return &GormBatchRepository{db: db}
}

// FindByID finds a batch by its ID
func (r *GormBatchRepository) FindByID(ctx context.Context, id uuid.UUID) (*inventory.Batch, error) {
	var model models.BatchModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByMedicine finds all batches for a medicine
func (r *GormBatchRepository) FindByMedicine(ctx context.Context, medicineID uuid.UUID) ([]inventory.Batch, error) {
	var rows []models.BatchModel
	if err := r.db.WithContext(ctx).
		Where("medicine_id = ?", medicineID).
		Order("expiry_date ASC, created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return toDomainBatches(rows), nil
}

// FindWithStock finds batches for a medicine with quantity > 0, ordered by
// expiry date ascending with creation time breaking ties. This ordering is
// what makes the dispense walk first-expiring-first.
func (r *GormBatchRepository) FindWithStock(ctx context.Context, medicineID uuid.UUID) ([]inventory.Batch, error) {
	var rows []models.BatchModel
	if err := r.db.WithContext(ctx).
		Where("medicine_id = ? AND quantity > 0", medicineID).
		Order("expiry_date ASC, created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return toDomainBatches(rows), nil
}

// FindByBatchNumber finds the batch with the given number for a medicine
func (r *GormBatchRepository) FindByBatchNumber(ctx context.Context, medicineID uuid.UUID, batchNumber string) (*inventory.Batch, error) {
	var model models.BatchModel
	if err := r.db.WithContext(ctx).
		Where("medicine_id = ? AND batch_number = ?", medicineID, batchNumber).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// likeReplacer escapes LIKE metacharacters so caller-supplied source IDs
// match literally
var likeReplacer = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// FindBySourcePrefix finds the oldest batch for a medicine whose batch
// number starts with the given prefix
func (r *GormBatchRepository) FindBySourcePrefix(ctx context.Context, medicineID uuid.UUID, prefix string) (*inventory.Batch, error) {
	var model models.BatchModel
	if err := r.db.WithContext(ctx).
		Where(`medicine_id = ? AND batch_number LIKE ? ESCAPE '\'`, medicineID, likeReplacer.Replace(prefix)+"%").
		Order("created_at ASC").
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindExpiringBefore finds batches with stock expiring before the deadline
func (r *GormBatchRepository) FindExpiringBefore(ctx context.Context, deadline time.Time) ([]inventory.Batch, error) {
	var rows []models.BatchModel
	if err := r.db.WithContext(ctx).
		Where("quantity > 0 AND expiry_date < ?", deadline).
		Order("expiry_date ASC, created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return toDomainBatches(rows), nil
}

// Save creates or updates a batch
func (r *GormBatchRepository) Save(ctx context.Context, batch *inventory.Batch) error {
	model := models.BatchModelFromDomain(batch)
	return r.db.WithContext(ctx).Save(model).Error
}

// SumQuantityByMedicine sums the on-hand quantity across a medicine's batches
func (r *GormBatchRepository) SumQuantityByMedicine(ctx context.Context, medicineID uuid.UUID) (int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).
		Model(&models.BatchModel{}).
		Where("medicine_id = ?", medicineID).
		Select("COALESCE(SUM(quantity), 0)").
		Scan(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}

func toDomainBatches(rows []models.BatchModel) []inventory.Batch {
	batches := make([]inventory.Batch, len(rows))
	for i := range rows {
		batches[i] = *rows[i].ToDomain()
	}
	return batches
}
