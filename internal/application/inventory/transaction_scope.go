package inventory

import (
	"context"

	"github.com/pharmacare/backend/internal/domain/inventory"
)

// TransactionScope provides transactional access to the ledger repositories.
// When a function is executed within a scope, all repository operations are
// part of one database transaction and commit or roll back atomically.
//
// The stock accounting engine only uses a scope when strict atomicity is
// enabled; the legacy mode persists each batch mutation as it happens, which
// leaves earlier mutations in place when a multi-batch walk fails midway.
type TransactionScope interface {
	// Execute runs the given function within a database transaction.
	// If the function returns an error, the transaction is rolled back.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides access to the ledger repositories.
// All repositories returned share the same underlying
// transaction when obtained from a real TransactionScope.
type TransactionalRepositories interface {
	// Medicines returns the medicine repository scoped to the current transaction
	Medicines() inventory.MedicineRepository
	// Batches returns the batch repository scoped to the current transaction
	Batches() inventory.BatchRepository
	// Logs returns the inventory log repository scoped to the current transaction
	Logs() inventory.InventoryLogRepository
}

// NoOpTransactionScope runs functions without a real transaction. It backs
// the legacy non-atomic mode and keeps tests free of database plumbing.
type NoOpTransactionScope struct {
	medicineRepo inventory.MedicineRepository
	batchRepo    inventory.BatchRepository
	logRepo      inventory.InventoryLogRepository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope over the given repositories.
func NewNoOpTransactionScope(
	medicineRepo inventory.MedicineRepository,
	batchRepo inventory.BatchRepository,
	logRepo inventory.InventoryLogRepository,
) *NoOpTransactionScope {
	return &NoOpTransactionScope{
		medicineRepo: medicineRepo,
		batchRepo:    batchRepo,
		logRepo:      logRepo,
	}
}

// Execute runs the function without transaction boundaries.
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// Medicines returns the medicine repository.
func (s *NoOpTransactionScope) Medicines() inventory.MedicineRepository {
	return s.medicineRepo
}

// Batches returns the batch repository.
func (s *NoOpTransactionScope) Batches() inventory.BatchRepository {
	return s.batchRepo
}

// Logs returns the inventory log repository.
func (s *NoOpTransactionScope) Logs() inventory.InventoryLogRepository {
	return s.logRepo
}

var _ TransactionScope = (*NoOpTransactionScope)(nil)
var _ TransactionalRepositories = (*NoOpTransactionScope)(nil)
