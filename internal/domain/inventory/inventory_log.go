package inventory

import (
	"time"

	"github.com/google/uuid"
	"github.com/pharmacare/backend/internal/domain/shared"
)

// LogAction represents the kind of quantity change recorded in the ledger
type LogAction string

const (
	// LogActionAdd records stock received into a batch
	LogActionAdd LogAction = "ADD"
	// LogActionRemove records stock removed outside of dispensing
	LogActionRemove LogAction = "REMOVE"
	// LogActionDispense records stock dispensed against a prescription
	LogActionDispense LogAction = "DISPENSE"
	// LogActionExpire records stock written off as expired
	LogActionExpire LogAction = "EXPIRE"
	// LogActionAdjust records a manual correction
	LogActionAdjust LogAction = "ADJUST"
)

// String returns the string representation of LogAction
func (a LogAction) String() string {
	return string(a)
}

// IsValid returns true if the action is one of the known kinds
func (a LogAction) IsValid() bool {
	switch a {
	case LogActionAdd, LogActionRemove, LogActionDispense, LogActionExpire, LogActionAdjust:
		return true
	}
	return false
}

// InventoryLog is an immutable record of a single batch mutation.
// Once created, entries are never updated or deleted - corrections are made
// with new entries. A multi-batch dispense produces one entry per batch
// touched.
type InventoryLog struct {
	shared.BaseEntity
	MedicineID  uuid.UUID
	BatchID     *uuid.UUID // Nil once the batch has been deleted
	Action      LogAction
	Quantity    int64 // Signed delta: positive for receipts, negative for removals
	PerformedBy string
	Note        string
}

// NewInventoryLog creates a new ledger entry. The timestamp is assigned at
// creation via the base entity.
func NewInventoryLog(medicineID uuid.UUID, batchID *uuid.UUID, action LogAction, quantity int64, performedBy, note string) (*InventoryLog, error) {
	if medicineID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_MEDICINE", "Medicine ID cannot be empty")
	}
	if !action.IsValid() {
		return nil, shared.NewDomainError("INVALID_ACTION", "Invalid inventory log action")
	}
	if quantity == 0 {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Log quantity cannot be zero")
	}
	if performedBy == "" {
		return nil, shared.NewDomainError("INVALID_ACTOR", "Performed-by cannot be empty")
	}

	return &InventoryLog{
		BaseEntity:  shared.NewBaseEntity(),
		MedicineID:  medicineID,
		BatchID:     batchID,
		Action:      action,
		Quantity:    quantity,
		PerformedBy: performedBy,
		Note:        note,
	}, nil
}

// Timestamp returns when the entry was recorded
func (l *InventoryLog) Timestamp() time.Time {
	return l.CreatedAt
}

// IsIncrease returns true if the entry records a quantity increase
func (l *InventoryLog) IsIncrease() bool {
	return l.Quantity > 0
}
