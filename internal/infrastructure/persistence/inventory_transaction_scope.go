package persistence

import (
	"context"

	appinv "github.com/pharmacare/backend/internal/application/inventory"
	"github.com/pharmacare/backend/internal/domain/inventory"
	"gorm.io/gorm"
)

// GormTransactionScope implements TransactionScope using GORM transactions.
// The stock accounting engine runs its batch walks inside this scope when
// strict atomicity is enabled.
type GormTransactionScope struct {
	db *gorm.DB
}

// NewGormTransactionScope creates a new GormTransactionScope
func NewGormTransactionScope(db *gorm.DB) *GormTransactionScope {
	return &GormTransactionScope{db: db}
}

// Execute runs the given function within a database transaction. A returned
// error rolls the transaction back; success commits it.
func (s *GormTransactionScope) Execute(ctx context.Context, fn func(repos appinv.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormTransactionalRepositories{tx: tx})
	})
}

// gormTransactionalRepositories provides repositories scoped to one transaction
type gormTransactionalRepositories struct {
	tx *gorm.DB
}

// Medicines returns the medicine repository scoped to the current transaction
func (r *gormTransactionalRepositories) Medicines() inventory.MedicineRepository {
	return NewGormMedicineRepository(r.tx)
}

// Batches returns the batch repository scoped to the current transaction
func (r *gormTransactionalRepositories) Batches() inventory.BatchRepository {
	return NewGormBatchRepository(r.tx)
}

// Logs returns the ledger repository scoped to the current transaction
func (r *gormTransactionalRepositories) Logs() inventory.InventoryLogRepository {
	return NewGormInventoryLogRepository(r.tx)
}

var _ appinv.TransactionScope = (*GormTransactionScope)(nil)
var _ appinv.TransactionalRepositories = (*gormTransactionalRepositories)(nil)
