package inventory

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pharmacare/backend/internal/domain/inventory"
	"github.com/pharmacare/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReconciliation_Order_CreatesLotThenIncrements(t *testing.T) {
	env := newTestEnv()
	m := seedMedicine(t, env, "Amoxicillin 500mg", "8901234567890", 20)

	first := Event{
		Type:     EventTypeOrder,
		SourceID: "PO-1042",
		Actor:    "alice",
		Items:    []LineItem{{MedicineID: m.ID, Quantity: 50}},
	}
	result, err := env.recon.ApplyEvent(context.Background(), first)
	require.NoError(t, err)
	require.Len(t, result.Applied, 1)

	lot := result.Applied[0].Batch
	require.NotNil(t, lot)
	assert.Equal(t, fmt.Sprintf("ORD-PO-1042-%s", m.ID), lot.BatchNumber)
	assert.Equal(t, int64(50), env.store.batchQuantity(lot.ID))

	// A repeat delivery for the same order lands in the same lot
	second := Event{
		Type:     EventTypeOrder,
		SourceID: "PO-1042",
		Actor:    "alice",
		Items:    []LineItem{{MedicineID: m.ID, Quantity: 30}},
	}
	result, err = env.recon.ApplyEvent(context.Background(), second)
	require.NoError(t, err)
	require.Len(t, result.Applied, 1)
	assert.Equal(t, lot.ID, result.Applied[0].Batch.ID)
	assert.Equal(t, int64(80), env.store.batchQuantity(lot.ID))

	logs := env.store.logEntries()
	require.Len(t, logs, 2)
	assert.Equal(t, inventory.LogActionAdd, logs[0].Action)
	assert.Equal(t, int64(50), logs[0].Quantity)
	assert.Equal(t, int64(30), logs[1].Quantity)
}

func TestReconciliation_Order_PinnedBatch(t *testing.T) {
	env := newTestEnv()
	m := seedMedicine(t, env, "Ibuprofen 200mg", "111", 10)
	b := seedBatch(t, env, m, "LOT-3", 10, 90*24*time.Hour)

	event := Event{
		Type:     EventTypeOrder,
		SourceID: "PO-7",
		Actor:    "alice",
		Items:    []LineItem{{MedicineID: m.ID, BatchID: &b.ID, Quantity: 25}},
	}
	result, err := env.recon.ApplyEvent(context.Background(), event)
	require.NoError(t, err)
	require.Len(t, result.Applied, 1)
	assert.Equal(t, int64(35), env.store.batchQuantity(b.ID))
}

func TestReconciliation_Order_PinnedBatchWrongMedicine(t *testing.T) {
	env := newTestEnv()
	m1 := seedMedicine(t, env, "Ibuprofen 200mg", "111", 10)
	m2 := seedMedicine(t, env, "Paracetamol 500mg", "222", 10)
	b := seedBatch(t, env, m1, "LOT-3", 10, 90*24*time.Hour)

	event := Event{
		Type:     EventTypeOrder,
		SourceID: "PO-8",
		Actor:    "alice",
		Items:    []LineItem{{MedicineID: m2.ID, BatchID: &b.ID, Quantity: 5}},
	}
	result, err := env.recon.ApplyEvent(context.Background(), event)
	require.Error(t, err)
	assert.True(t, result.Failed)
	assert.Equal(t, int64(10), env.store.batchQuantity(b.ID))
}

func TestReconciliation_Prescription_FIFOAndPinned(t *testing.T) {
	env := newTestEnv()
	m := seedMedicine(t, env, "Paracetamol 500mg", "222", 5)
	b1 := seedBatch(t, env, m, "B1", 10, 30*24*time.Hour)
	b2 := seedBatch(t, env, m, "B2", 10, 60*24*time.Hour)

	event := Event{
		Type:     EventTypePrescription,
		SourceID: "RX-501",
		Actor:    "bob",
		Items: []LineItem{
			{MedicineID: m.ID, Quantity: 12},
			{MedicineID: m.ID, BatchID: &b2.ID, Quantity: 3},
		},
	}
	result, err := env.recon.ApplyEvent(context.Background(), event)
	require.NoError(t, err)
	require.Len(t, result.Applied, 2)

	// FIFO line drained B1 first, then spilled into B2; pinned line took
	// another 3 from B2
	require.Len(t, result.Applied[0].Deductions, 2)
	assert.Equal(t, b1.ID, result.Applied[0].Deductions[0].Batch.ID)
	assert.Equal(t, int64(0), env.store.batchQuantity(b1.ID))
	assert.Equal(t, int64(5), env.store.batchQuantity(b2.ID))
}

func TestReconciliation_StopsAtFirstFailureWithoutRollback(t *testing.T) {
	env := newTestEnv()
	m1 := seedMedicine(t, env, "Metformin 850mg", "333", 5)
	m2 := seedMedicine(t, env, "Insulin 100IU", "444", 3)
	b1 := seedBatch(t, env, m1, "B1", 30, 30*24*time.Hour)
	b2 := seedBatch(t, env, m2, "COLD-1", 2, 20*24*time.Hour)

	event := Event{
		Type:     EventTypePrescription,
		SourceID: "RX-600",
		Actor:    "bob",
		Items: []LineItem{
			{MedicineID: m1.ID, Quantity: 10},
			{MedicineID: m2.ID, Quantity: 5}, // only 2 on hand
			{MedicineID: m1.ID, Quantity: 5}, // never reached
		},
	}
	result, err := env.recon.ApplyEvent(context.Background(), event)
	require.Error(t, err)
	assert.ErrorIs(t, err, shared.ErrInsufficientStock)

	assert.True(t, result.Failed)
	require.NotNil(t, result.FailedItem)
	assert.Equal(t, m2.ID, result.FailedItem.MedicineID)
	require.Len(t, result.Applied, 1, "lines before the failure stay applied")

	// First line's effect persisted, third line never ran. The failing
	// walk drained COLD-1 and logged its partial take before erroring.
	assert.Equal(t, int64(20), env.store.batchQuantity(b1.ID))
	assert.Equal(t, int64(0), env.store.batchQuantity(b2.ID))
	logs := env.store.logEntries()
	require.Len(t, logs, 2)
	assert.Equal(t, inventory.LogActionDispense, logs[1].Action)
	assert.Equal(t, int64(-2), logs[1].Quantity)
	assert.Equal(t, m2.ID, logs[1].MedicineID)
}

func TestReconciliation_StrictAtomicityRollsBackWholeEvent(t *testing.T) {
	env := newTestEnv()
	env.recon.SetStrictAtomicity(true)
	m1 := seedMedicine(t, env, "Metformin 850mg", "333", 5)
	m2 := seedMedicine(t, env, "Insulin 100IU", "444", 3)
	b1 := seedBatch(t, env, m1, "B1", 30, 30*24*time.Hour)
	seedBatch(t, env, m2, "COLD-1", 2, 20*24*time.Hour)

	event := Event{
		Type:     EventTypePrescription,
		SourceID: "RX-601",
		Actor:    "bob",
		Items: []LineItem{
			{MedicineID: m1.ID, Quantity: 10},
			{MedicineID: m2.ID, Quantity: 5},
		},
	}
	result, err := env.recon.ApplyEvent(context.Background(), event)
	require.Error(t, err)

	assert.True(t, result.Failed)
	assert.Empty(t, result.Applied, "nothing from a rolled-back event counts as applied")
	assert.Equal(t, int64(30), env.store.batchQuantity(b1.ID))
	assert.Empty(t, env.store.logEntries())
}

func TestReconciliation_RejectsMalformedEvents(t *testing.T) {
	env := newTestEnv()
	m := seedMedicine(t, env, "Aspirin 100mg", "555", 5)

	result, err := env.recon.ApplyEvent(context.Background(), Event{
		Type:     "transfer",
		SourceID: "X-1",
		Actor:    "bob",
		Items:    []LineItem{{MedicineID: m.ID, Quantity: 1}},
	})
	require.Error(t, err)
	assert.True(t, result.Failed)

	result, err = env.recon.ApplyEvent(context.Background(), Event{
		Type:  EventTypeOrder,
		Actor: "bob",
		Items: []LineItem{{MedicineID: m.ID, Quantity: 1}},
	})
	require.Error(t, err)
	assert.True(t, result.Failed)
	assert.Empty(t, env.store.logEntries())
}

func TestReconciliation_UnknownMedicineFailsLine(t *testing.T) {
	env := newTestEnv()
	seedMedicine(t, env, "Aspirin 100mg", "555", 5)

	event := Event{
		Type:     EventTypePrescription,
		SourceID: "RX-700",
		Actor:    "bob",
		Items:    []LineItem{{MedicineID: uuid.New(), Quantity: 1}},
	}
	result, err := env.recon.ApplyEvent(context.Background(), event)
	require.Error(t, err)
	assert.ErrorIs(t, err, shared.ErrNotFound)
	assert.True(t, result.Failed)
}
