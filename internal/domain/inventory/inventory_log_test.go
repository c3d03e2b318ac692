package inventory

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogAction_IsValid(t *testing.T) {
	for _, action := range []LogAction{LogActionAdd, LogActionRemove, LogActionDispense, LogActionExpire, LogActionAdjust} {
		assert.True(t, action.IsValid(), action.String())
	}
	assert.False(t, LogAction("TRANSFER").IsValid())
	assert.False(t, LogAction("").IsValid())
}

func TestNewInventoryLog(t *testing.T) {
	medicineID := uuid.New()
	batchID := uuid.New()

	log, err := NewInventoryLog(medicineID, &batchID, LogActionDispense, -7, "alice", "Dispensed for prescription #42")
	require.NoError(t, err)
	assert.Equal(t, medicineID, log.MedicineID)
	require.NotNil(t, log.BatchID)
	assert.Equal(t, batchID, *log.BatchID)
	assert.Equal(t, int64(-7), log.Quantity)
	assert.False(t, log.IsIncrease())
	assert.False(t, log.Timestamp().IsZero())
}

func TestNewInventoryLog_Validation(t *testing.T) {
	medicineID := uuid.New()

	_, err := NewInventoryLog(uuid.Nil, nil, LogActionAdd, 5, "alice", "")
	assert.Error(t, err)

	_, err = NewInventoryLog(medicineID, nil, LogAction("BOGUS"), 5, "alice", "")
	assert.Error(t, err)

	_, err = NewInventoryLog(medicineID, nil, LogActionAdd, 0, "alice", "")
	assert.Error(t, err)

	_, err = NewInventoryLog(medicineID, nil, LogActionAdd, 5, "", "")
	assert.Error(t, err)

	// Batch reference is optional: entries outlive their batch
	log, err := NewInventoryLog(medicineID, nil, LogActionAdd, 5, "alice", "")
	require.NoError(t, err)
	assert.Nil(t, log.BatchID)
	assert.True(t, log.IsIncrease())
}

func TestMedicine_IsLowStockAt(t *testing.T) {
	m, err := NewMedicine("Amoxicillin 500mg", "8901234567890", 20, decimal.NewFromFloat(1.25), "")
	require.NoError(t, err)

	assert.True(t, m.IsLowStockAt(0))
	assert.True(t, m.IsLowStockAt(19))
	assert.True(t, m.IsLowStockAt(20), "boundary total == min_quantity counts as low stock")
	assert.False(t, m.IsLowStockAt(21))
}

func TestNewMedicine_Validation(t *testing.T) {
	_, err := NewMedicine("", "123", 0, decimal.Zero, "")
	assert.Error(t, err)

	_, err = NewMedicine("Ibuprofen", "", 0, decimal.Zero, "")
	assert.Error(t, err)

	_, err = NewMedicine("Ibuprofen", "123", -1, decimal.Zero, "")
	assert.Error(t, err)

	_, err = NewMedicine("Ibuprofen", "123", 0, decimal.NewFromInt(-2), "")
	assert.Error(t, err)
}
