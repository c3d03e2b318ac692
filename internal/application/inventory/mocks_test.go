package inventory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pharmacare/backend/internal/domain/inventory"
	"github.com/pharmacare/backend/internal/domain/shared"
)

// fakeStore is an in-memory stand-in for the persistence layer, shared by
// the fake repositories so flow tests observe real read-your-writes
// behavior across batches and ledger entries.
type fakeStore struct {
	mu        sync.Mutex
	medicines map[uuid.UUID]inventory.Medicine
	batches   map[uuid.UUID]inventory.Batch
	logs      []inventory.InventoryLog
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		medicines: make(map[uuid.UUID]inventory.Medicine),
		batches:   make(map[uuid.UUID]inventory.Batch),
		logs:      make([]inventory.InventoryLog, 0),
	}
}

func (s *fakeStore) putMedicine(m *inventory.Medicine) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.medicines[m.ID] = *m
}

func (s *fakeStore) putBatch(b *inventory.Batch) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.batches[b.ID] = *b
}

func (s *fakeStore) batchQuantity(id uuid.UUID) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.batches[id].Quantity
}

func (s *fakeStore) logEntries() []inventory.InventoryLog {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]inventory.InventoryLog, len(s.logs))
	copy(out, s.logs)
	return out
}

// snapshot and restore give the fake transaction scope rollback semantics
func (s *fakeStore) snapshot() *fakeStore {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := newFakeStore()
	for k, v := range s.medicines {
		snap.medicines[k] = v
	}
	for k, v := range s.batches {
		snap.batches[k] = v
	}
	snap.logs = append(snap.logs, s.logs...)
	return snap
}

func (s *fakeStore) restore(snap *fakeStore) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.medicines = snap.medicines
	s.batches = snap.batches
	s.logs = snap.logs
}

type fakeMedicineRepo struct{ store *fakeStore }

func (r *fakeMedicineRepo) FindByID(_ context.Context, id uuid.UUID) (*inventory.Medicine, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	m, ok := r.store.medicines[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return &m, nil
}

func (r *fakeMedicineRepo) FindByBarcode(_ context.Context, barcode string) (*inventory.Medicine, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, m := range r.store.medicines {
		if m.Barcode == barcode {
			found := m
			return &found, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *fakeMedicineRepo) FindAll(_ context.Context, _ shared.Filter) ([]inventory.Medicine, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	out := make([]inventory.Medicine, 0, len(r.store.medicines))
	for _, m := range r.store.medicines {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *fakeMedicineRepo) Save(_ context.Context, medicine *inventory.Medicine) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.medicines[medicine.ID] = *medicine
	return nil
}

func (r *fakeMedicineRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if _, ok := r.store.medicines[id]; !ok {
		return shared.ErrNotFound
	}
	delete(r.store.medicines, id)
	return nil
}

func (r *fakeMedicineRepo) Count(_ context.Context, _ shared.Filter) (int64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	return int64(len(r.store.medicines)), nil
}

type fakeBatchRepo struct {
	store *fakeStore
	// saveErrAfter fails the nth Save call (1-based) to exercise partial
	// failure paths; zero disables it
	saveErrAfter int
	saveErr      error
	saveCalls    int
}

func (r *fakeBatchRepo) FindByID(_ context.Context, id uuid.UUID) (*inventory.Batch, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	b, ok := r.store.batches[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return &b, nil
}

func (r *fakeBatchRepo) FindByMedicine(_ context.Context, medicineID uuid.UUID) ([]inventory.Batch, error) {
	return r.collect(func(b inventory.Batch) bool { return b.MedicineID == medicineID }), nil
}

func (r *fakeBatchRepo) FindWithStock(_ context.Context, medicineID uuid.UUID) ([]inventory.Batch, error) {
	out := r.collect(func(b inventory.Batch) bool { return b.MedicineID == medicineID && b.Quantity > 0 })
	return inventory.SortByExpiry(out), nil
}

func (r *fakeBatchRepo) FindByBatchNumber(_ context.Context, medicineID uuid.UUID, batchNumber string) (*inventory.Batch, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, b := range r.store.batches {
		if b.MedicineID == medicineID && b.BatchNumber == batchNumber {
			found := b
			return &found, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *fakeBatchRepo) FindBySourcePrefix(_ context.Context, medicineID uuid.UUID, prefix string) (*inventory.Batch, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var found *inventory.Batch
	for _, b := range r.store.batches {
		if b.MedicineID == medicineID && strings.HasPrefix(b.BatchNumber, prefix) {
			candidate := b
			if found == nil || candidate.CreatedAt.Before(found.CreatedAt) {
				found = &candidate
			}
		}
	}
	if found == nil {
		return nil, shared.ErrNotFound
	}
	return found, nil
}

func (r *fakeBatchRepo) FindExpiringBefore(_ context.Context, deadline time.Time) ([]inventory.Batch, error) {
	out := r.collect(func(b inventory.Batch) bool { return b.Quantity > 0 && b.ExpiryDate.Before(deadline) })
	return inventory.SortByExpiry(out), nil
}

func (r *fakeBatchRepo) Save(_ context.Context, batch *inventory.Batch) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.saveCalls++
	if r.saveErrAfter > 0 && r.saveCalls >= r.saveErrAfter {
		return r.saveErr
	}
	r.store.batches[batch.ID] = *batch
	return nil
}

func (r *fakeBatchRepo) SumQuantityByMedicine(_ context.Context, medicineID uuid.UUID) (int64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var total int64
	for _, b := range r.store.batches {
		if b.MedicineID == medicineID {
			total += b.Quantity
		}
	}
	return total, nil
}

func (r *fakeBatchRepo) collect(keep func(inventory.Batch) bool) []inventory.Batch {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	out := make([]inventory.Batch, 0)
	for _, b := range r.store.batches {
		if keep(b) {
			out = append(out, b)
		}
	}
	return out
}

type fakeLogRepo struct{ store *fakeStore }

func (r *fakeLogRepo) Create(_ context.Context, log *inventory.InventoryLog) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.logs = append(r.store.logs, *log)
	return nil
}

func (r *fakeLogRepo) FindByMedicine(_ context.Context, medicineID uuid.UUID, _ shared.Filter) ([]inventory.InventoryLog, error) {
	return r.collect(func(l inventory.InventoryLog) bool { return l.MedicineID == medicineID }), nil
}

func (r *fakeLogRepo) FindByBatch(_ context.Context, batchID uuid.UUID, _ shared.Filter) ([]inventory.InventoryLog, error) {
	return r.collect(func(l inventory.InventoryLog) bool { return l.BatchID != nil && *l.BatchID == batchID }), nil
}

func (r *fakeLogRepo) FindByAction(_ context.Context, action inventory.LogAction, _ shared.Filter) ([]inventory.InventoryLog, error) {
	return r.collect(func(l inventory.InventoryLog) bool { return l.Action == action }), nil
}

func (r *fakeLogRepo) FindAll(_ context.Context, _ shared.Filter) ([]inventory.InventoryLog, error) {
	return r.collect(func(inventory.InventoryLog) bool { return true }), nil
}

func (r *fakeLogRepo) Count(_ context.Context, _ shared.Filter) (int64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	return int64(len(r.store.logs)), nil
}

func (r *fakeLogRepo) collect(keep func(inventory.InventoryLog) bool) []inventory.InventoryLog {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	out := make([]inventory.InventoryLog, 0)
	for _, l := range r.store.logs {
		if keep(l) {
			out = append(out, l)
		}
	}
	return out
}

// fakeTransactionScope mimics a database transaction over the fake store:
// the store is snapshotted before the callback and restored when it fails
type fakeTransactionScope struct {
	store *fakeStore
	repos TransactionalRepositories
}

func newFakeTransactionScope(store *fakeStore, repos TransactionalRepositories) *fakeTransactionScope {
	return &fakeTransactionScope{store: store, repos: repos}
}

func (s *fakeTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	snap := s.store.snapshot()
	if err := fn(s.repos); err != nil {
		s.store.restore(snap)
		return err
	}
	return nil
}

// testEnv bundles a fake store with services wired over it
type testEnv struct {
	store        *fakeStore
	medicineRepo *fakeMedicineRepo
	batchRepo    *fakeBatchRepo
	logRepo      *fakeLogRepo
	stock        *StockService
	recon        *ReconciliationService
}

func newTestEnv() *testEnv {
	store := newFakeStore()
	env := &testEnv{
		store:        store,
		medicineRepo: &fakeMedicineRepo{store: store},
		batchRepo:    &fakeBatchRepo{store: store},
		logRepo:      &fakeLogRepo{store: store},
	}
	env.stock = NewStockService(env.medicineRepo, env.batchRepo, env.logRepo)
	env.recon = NewReconciliationService(env.medicineRepo, env.batchRepo, env.logRepo)

	scope := newFakeTransactionScope(store, NewNoOpTransactionScope(env.medicineRepo, env.batchRepo, env.logRepo))
	env.stock.SetTransactionScope(scope)
	env.recon.SetTransactionScope(scope)
	return env
}
