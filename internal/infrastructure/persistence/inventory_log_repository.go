package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/pharmacare/backend/internal/domain/inventory"
	"github.com/pharmacare/backend/internal/domain/shared"
	"github.com/pharmacare/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormInventoryLogRepository implements InventoryLogRepository using GORM.
// The table is append-only: this repository exposes no update or delete.
type GormInventoryLogRepository struct {
	db *gorm.DB
}

// NewGormInventoryLogRepository creates a new GormInventoryLogRepository
func NewGormInventoryLogRepository(db *gorm.DB) *GormInventoryLogRepository {
	return &GormInventoryLogRepository{db: db}
}

// Create appends a new ledger entry
func (r *GormInventoryLogRepository) Create(ctx context.Context, log *inventory.InventoryLog) error {
	model := models.InventoryLogModelFromDomain(log)
	return r.db.WithContext(ctx).Create(model).Error
}

// FindByMedicine finds entries for a medicine, newest first
func (r *GormInventoryLogRepository) FindByMedicine(ctx context.Context, medicineID uuid.UUID, filter shared.Filter) ([]inventory.InventoryLog, error) {
	return r.find(ctx, filter, "medicine_id = ?", medicineID)
}

// FindByBatch finds entries for a batch, newest first
func (r *GormInventoryLogRepository) FindByBatch(ctx context.Context, batchID uuid.UUID, filter shared.Filter) ([]inventory.InventoryLog, error) {
	return r.find(ctx, filter, "batch_id = ?", batchID)
}

// FindByAction finds entries with the given action, newest first
func (r *GormInventoryLogRepository) FindByAction(ctx context.Context, action inventory.LogAction, filter shared.Filter) ([]inventory.InventoryLog, error) {
	return r.find(ctx, filter, "action = ?", action.String())
}

// FindAll finds entries matching the filter, newest first
func (r *GormInventoryLogRepository) FindAll(ctx context.Context, filter shared.Filter) ([]inventory.InventoryLog, error) {
	return r.find(ctx, filter, "")
}

// Count counts entries matching the filter
func (r *GormInventoryLogRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applyFilters(r.db.WithContext(ctx).Model(&models.InventoryLogModel{}), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *GormInventoryLogRepository) find(ctx context.Context, filter shared.Filter, cond string, args ...interface{}) ([]inventory.InventoryLog, error) {
	query := r.applyFilters(r.db.WithContext(ctx).Model(&models.InventoryLogModel{}), filter)
	if cond != "" {
		query = query.Where(cond, args...)
	}
	if filter.Page > 0 && filter.PageSize > 0 {
		query = query.Offset((filter.Page - 1) * filter.PageSize).Limit(filter.PageSize)
	}

	var rows []models.InventoryLogModel
	if err := query.Order("created_at DESC").Find(&rows).Error; err != nil {
		return nil, err
	}
	logs := make([]inventory.InventoryLog, len(rows))
	for i := range rows {
		logs[i] = *rows[i].ToDomain()
	}
	return logs, nil
}

func (r *GormInventoryLogRepository) applyFilters(query *gorm.DB, filter shared.Filter) *gorm.DB {
	for key, value := range filter.Filters {
		switch key {
		case "medicine_id":
			query = query.Where("medicine_id = ?", value)
		case "batch_id":
			query = query.Where("batch_id = ?", value)
		case "action":
			query = query.Where("action = ?", value)
		case "performed_by":
			query = query.Where("performed_by = ?", value)
		}
	}
	return query
}
