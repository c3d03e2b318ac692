package inventory

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/pharmacare/backend/internal/domain/shared"
)

// InsufficientStockError reports a demand that exceeds available quantity.
// It carries the true shortfall so callers can surface required vs. available.
type InsufficientStockError struct {
	MedicineID uuid.UUID
	BatchID    *uuid.UUID // Set when a specific batch was insufficient
	Required   int64
	Available  int64
}

// Error implements the error interface
func (e *InsufficientStockError) Error() string {
	if e.BatchID != nil {
		return fmt.Sprintf("insufficient stock in batch %s: required %d, available %d", e.BatchID, e.Required, e.Available)
	}
	return fmt.Sprintf("insufficient stock for medicine %s: required %d, available %d", e.MedicineID, e.Required, e.Available)
}

// Is makes errors.Is(err, shared.ErrInsufficientStock) match
func (e *InsufficientStockError) Is(target error) bool {
	return target == shared.ErrInsufficientStock
}
