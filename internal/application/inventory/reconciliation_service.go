package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/pharmacare/backend/internal/domain/inventory"
	"github.com/pharmacare/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// EventType identifies the kind of business event being reconciled against
// the stock ledger
type EventType string

const (
	// EventTypeOrder is an incoming purchase order: its items add stock
	EventTypeOrder EventType = "order"

	// EventTypePrescription is a dispensing prescription: its items remove stock
	EventTypePrescription EventType = "prescription"
)

// IsValid checks if the event type is recognized
func (t EventType) IsValid() bool {
	return t == EventTypeOrder || t == EventTypePrescription
}

// LineItem is one medicine line within an event. BatchID pins the line to a
// specific batch; when nil, order lines fall back to the order's derived lot
// and prescription lines fall back to the FIFO walk.
type LineItem struct {
	MedicineID uuid.UUID
	BatchID    *uuid.UUID
	Quantity   int64
	ExpiryDate *time.Time
	UnitCost   *decimal.Decimal
}

// Event is a business document whose stock effects must be reconciled into
// the ledger
type Event struct {
	Type     EventType
	SourceID string
	Actor    string
	Items    []LineItem
}

// AppliedItem records the stock effect of one successfully applied line
type AppliedItem struct {
	MedicineID uuid.UUID
	Quantity   int64
	Deductions []BatchDeduction
	Batch      *inventory.Batch
}

// EventResult reports how far an event got. When Failed is true, Applied
// holds the lines reconciled before the failure; in legacy mode their stock
// effects are already persisted.
type EventResult struct {
	EventType  EventType
	SourceID   string
	Applied    []AppliedItem
	Failed     bool
	FailedItem *LineItem
	Reason     string
}

// ReconciliationService is the reconciliation dispatcher. It translates
// business events into stock accounting operations, applying an event's
// lines in order and stopping at the first line that cannot be reconciled.
//
// Legacy behavior, kept for parity with the bookkeeping this system
// replaces: a failed event is NOT rolled back, so the lines applied before
// the failure keep their stock effects and their ledger entries. Enabling
// strict atomicity runs the whole event in one transaction instead.
type ReconciliationService struct {
	repos           TransactionalRepositories
	txScope         TransactionScope
	strictAtomicity bool
	logger          *zap.Logger
}

// NewReconciliationService creates a new ReconciliationService
func NewReconciliationService(
	medicineRepo inventory.MedicineRepository,
	batchRepo inventory.BatchRepository,
	logRepo inventory.InventoryLogRepository,
) *ReconciliationService {
	return &ReconciliationService{
		repos:  NewNoOpTransactionScope(medicineRepo, batchRepo, logRepo),
		logger: zap.NewNop(),
	}
}

// SetTransactionScope sets the scope used when strict atomicity is enabled
func (s *ReconciliationService) SetTransactionScope(scope TransactionScope) {
	s.txScope = scope
}

// SetStrictAtomicity toggles all-or-nothing semantics for whole events
func (s *ReconciliationService) SetStrictAtomicity(strict bool) {
	s.strictAtomicity = strict
}

// SetLogger sets the logger
func (s *ReconciliationService) SetLogger(logger *zap.Logger) {
	if logger != nil {
		s.logger = logger
	}
}

// ApplyEvent reconciles a business event against the stock ledger. Lines
// are applied sequentially in document order; the first failing line stops
// the event and is reported in the result. The returned error is the cause
// of the failed line, or nil when every line applied.
func (s *ReconciliationService) ApplyEvent(ctx context.Context, event Event) (*EventResult, error) {
	result := &EventResult{
		EventType: event.Type,
		SourceID:  event.SourceID,
		Applied:   make([]AppliedItem, 0, len(event.Items)),
	}

	if !event.Type.IsValid() {
		result.Failed = true
		result.Reason = fmt.Sprintf("unknown event type %q", event.Type)
		return result, shared.NewDomainError("INVALID_EVENT_TYPE", result.Reason)
	}
	if event.SourceID == "" {
		result.Failed = true
		result.Reason = "event source id is required"
		return result, shared.NewDomainError("INVALID_INPUT", result.Reason)
	}

	applyErr := s.inScope(ctx, func(r TransactionalRepositories) error {
		for i := range event.Items {
			item := event.Items[i]
			applied, err := s.applyItem(ctx, r, event, item)
			if err != nil {
				result.Failed = true
				result.FailedItem = &event.Items[i]
				result.Reason = err.Error()
				return err
			}
			result.Applied = append(result.Applied, *applied)
		}
		return nil
	})

	if applyErr != nil {
		if s.strictAtomicity {
			// Rolled back: nothing from this event reached the ledger
			result.Applied = result.Applied[:0]
		}
		s.logger.Warn("event reconciliation failed",
			zap.String("event_type", string(event.Type)),
			zap.String("source_id", event.SourceID),
			zap.Int("applied_items", len(result.Applied)),
			zap.String("reason", result.Reason),
		)
		return result, applyErr
	}

	s.logger.Info("event reconciled",
		zap.String("event_type", string(event.Type)),
		zap.String("source_id", event.SourceID),
		zap.Int("items", len(result.Applied)),
	)
	return result, nil
}

func (s *ReconciliationService) inScope(ctx context.Context, fn func(r TransactionalRepositories) error) error {
	if s.strictAtomicity && s.txScope != nil {
		return s.txScope.Execute(ctx, fn)
	}
	return fn(s.repos)
}

func (s *ReconciliationService) applyItem(ctx context.Context, r TransactionalRepositories, event Event, item LineItem) (*AppliedItem, error) {
	switch event.Type {
	case EventTypeOrder:
		return s.applyOrderItem(ctx, r, event, item)
	case EventTypePrescription:
		return s.applyPrescriptionItem(ctx, r, event, item)
	default:
		return nil, shared.NewDomainError("INVALID_EVENT_TYPE", fmt.Sprintf("unknown event type %q", event.Type))
	}
}

// applyOrderItem adds an order line's quantity to stock. A pinned batch is
// incremented directly; otherwise the line lands in the order's derived lot,
// created on first use and topped up on repeat deliveries.
func (s *ReconciliationService) applyOrderItem(ctx context.Context, r TransactionalRepositories, event Event, item LineItem) (*AppliedItem, error) {
	note := fmt.Sprintf("Order %s received", event.SourceID)

	if item.BatchID != nil {
		batch, err := r.Batches().FindByID(ctx, *item.BatchID)
		if err != nil {
			return nil, err
		}
		if batch.MedicineID != item.MedicineID {
			return nil, shared.NewDomainError("INVALID_INPUT", "Batch does not belong to the line's medicine")
		}
		if err := batch.Add(item.Quantity); err != nil {
			return nil, err
		}
		if err := r.Batches().Save(ctx, batch); err != nil {
			return nil, err
		}
		if err := appendLog(ctx, r, batch, inventory.LogActionAdd, item.Quantity, event.Actor, note); err != nil {
			return nil, err
		}
		return &AppliedItem{MedicineID: item.MedicineID, Quantity: item.Quantity, Batch: batch}, nil
	}

	batch, err := s.receiveIntoOrderLot(ctx, r, event, item, note)
	if err != nil {
		return nil, err
	}
	return &AppliedItem{MedicineID: item.MedicineID, Quantity: item.Quantity, Batch: batch}, nil
}

// receiveIntoOrderLot finds or creates the lot for (order, medicine). Lot
// numbers are ORD-{source}-{medicine} and a repeat delivery for the same
// order matches on the ORD-{source}- prefix.
func (s *ReconciliationService) receiveIntoOrderLot(ctx context.Context, r TransactionalRepositories, event Event, item LineItem, note string) (*inventory.Batch, error) {
	if item.Quantity <= 0 {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Receive quantity must be positive")
	}
	prefix := fmt.Sprintf("ORD-%s-", event.SourceID)
	existing, err := r.Batches().FindBySourcePrefix(ctx, item.MedicineID, prefix)
	if err == nil {
		if err := existing.Add(item.Quantity); err != nil {
			return nil, err
		}
		if err := r.Batches().Save(ctx, existing); err != nil {
			return nil, err
		}
		if err := appendLog(ctx, r, existing, inventory.LogActionAdd, item.Quantity, event.Actor, note); err != nil {
			return nil, err
		}
		return existing, nil
	}
	if !isNotFound(err) {
		return nil, err
	}

	return receive(ctx, r, ReceiveInput{
		MedicineID:  item.MedicineID,
		Quantity:    item.Quantity,
		BatchNumber: fmt.Sprintf("ORD-%s-%s", event.SourceID, item.MedicineID),
		ExpiryDate:  item.ExpiryDate,
		UnitCost:    item.UnitCost,
		Actor:       event.Actor,
		Note:        note,
	})
}

// applyPrescriptionItem removes a prescription line's quantity from stock,
// either from the pinned batch or by the FIFO walk
func (s *ReconciliationService) applyPrescriptionItem(ctx context.Context, r TransactionalRepositories, event Event, item LineItem) (*AppliedItem, error) {
	note := fmt.Sprintf("Prescription %s dispensed", event.SourceID)

	if item.BatchID != nil {
		pinned, err := r.Batches().FindByID(ctx, *item.BatchID)
		if err != nil {
			return nil, err
		}
		if pinned.MedicineID != item.MedicineID {
			return nil, shared.NewDomainError("INVALID_INPUT", "Batch does not belong to the line's medicine")
		}
		batch, err := dispenseExact(ctx, r, *item.BatchID, item.Quantity, event.Actor, note)
		if err != nil {
			return nil, err
		}
		return &AppliedItem{
			MedicineID: item.MedicineID,
			Quantity:   item.Quantity,
			Batch:      batch,
			Deductions: []BatchDeduction{{Batch: *batch, Quantity: item.Quantity}},
		}, nil
	}

	deductions, err := dispenseFIFO(ctx, r, item.MedicineID, item.Quantity, event.Actor, note)
	if err != nil {
		return nil, err
	}
	return &AppliedItem{MedicineID: item.MedicineID, Quantity: item.Quantity, Deductions: deductions}, nil
}
