package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/pharmacare/backend/internal/domain/inventory"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// MedicineModel is the persistence model for the Medicine aggregate root.
// Medicines are soft-deleted so ledger entries referencing them keep a
// resolvable history.
type MedicineModel struct {
	BaseModel
	Name        string          `gorm:"type:varchar(200);not null;index"`
	Barcode     string          `gorm:"type:varchar(64);not null;uniqueIndex"`
	MinQuantity int64           `gorm:"not null;default:0"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Description string          `gorm:"type:text"`
	DeletedAt   gorm.DeletedAt  `gorm:"index"`
}

// TableName returns the table name for GORM
func (MedicineModel) TableName() string {
	return "medicines"
}

// ToDomain converts the persistence model to a domain Medicine entity
func (m *MedicineModel) ToDomain() *inventory.Medicine {
	return &inventory.Medicine{
		BaseEntity:  m.BaseModel.ToDomain(),
		Name:        m.Name,
		Barcode:     m.Barcode,
		MinQuantity: m.MinQuantity,
		UnitPrice:   m.UnitPrice,
		Description: m.Description,
	}
}

// FromDomain populates the persistence model from a domain Medicine entity
func (m *MedicineModel) FromDomain(medicine *inventory.Medicine) {
	m.FromDomainBaseEntity(medicine.BaseEntity)
	m.Name = medicine.Name
	m.Barcode = medicine.Barcode
	m.MinQuantity = medicine.MinQuantity
	m.UnitPrice = medicine.UnitPrice
	m.Description = medicine.Description
}

// MedicineModelFromDomain creates a persistence model from a domain Medicine
func MedicineModelFromDomain(medicine *inventory.Medicine) *MedicineModel {
	m := &MedicineModel{}
	m.FromDomain(medicine)
	return m
}

// BatchModel is the persistence model for the Batch entity.
// (medicine_id, batch_number) is unique.
type BatchModel struct {
	BaseModel
	MedicineID  uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_batch_medicine_number,priority:1;index"`
	BatchNumber string          `gorm:"type:varchar(100);not null;uniqueIndex:idx_batch_medicine_number,priority:2"`
	Quantity    int64           `gorm:"not null;default:0"`
	ExpiryDate  time.Time       `gorm:"type:date;not null;index"`
	UnitCost    decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	DeletedAt   gorm.DeletedAt  `gorm:"index"`
}

// TableName returns the table name for GORM
func (BatchModel) TableName() string {
	return "batches"
}

// ToDomain converts the persistence model to a domain Batch entity
func (m *BatchModel) ToDomain() *inventory.Batch {
	return &inventory.Batch{
		BaseEntity:  m.BaseModel.ToDomain(),
		MedicineID:  m.MedicineID,
		BatchNumber: m.BatchNumber,
		Quantity:    m.Quantity,
		ExpiryDate:  m.ExpiryDate,
		UnitCost:    m.UnitCost,
	}
}

// FromDomain populates the persistence model from a domain Batch entity
func (m *BatchModel) FromDomain(batch *inventory.Batch) {
	m.FromDomainBaseEntity(batch.BaseEntity)
	m.MedicineID = batch.MedicineID
	m.BatchNumber = batch.BatchNumber
	m.Quantity = batch.Quantity
	m.ExpiryDate = batch.ExpiryDate
	m.UnitCost = batch.UnitCost
}

// BatchModelFromDomain creates a persistence model from a domain Batch
func BatchModelFromDomain(batch *inventory.Batch) *BatchModel {
	m := &BatchModel{}
	m.FromDomain(batch)
	return m
}

// InventoryLogModel is the persistence model for ledger entries. The table
// is append-only; rows are never updated or deleted.
type InventoryLogModel struct {
	BaseModel
	MedicineID  uuid.UUID  `gorm:"type:uuid;not null;index"`
	BatchID     *uuid.UUID `gorm:"type:uuid;index"`
	Action      string     `gorm:"type:varchar(16);not null;index"`
	Quantity    int64      `gorm:"not null"`
	PerformedBy string     `gorm:"type:varchar(100);not null"`
	Note        string     `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (InventoryLogModel) TableName() string {
	return "inventory_logs"
}

// ToDomain converts the persistence model to a domain InventoryLog entity
func (m *InventoryLogModel) ToDomain() *inventory.InventoryLog {
	return &inventory.InventoryLog{
		BaseEntity:  m.BaseModel.ToDomain(),
		MedicineID:  m.MedicineID,
		BatchID:     m.BatchID,
		Action:      inventory.LogAction(m.Action),
		Quantity:    m.Quantity,
		PerformedBy: m.PerformedBy,
		Note:        m.Note,
	}
}

// FromDomain populates the persistence model from a domain InventoryLog entity
func (m *InventoryLogModel) FromDomain(log *inventory.InventoryLog) {
	m.FromDomainBaseEntity(log.BaseEntity)
	m.MedicineID = log.MedicineID
	m.BatchID = log.BatchID
	m.Action = log.Action.String()
	m.Quantity = log.Quantity
	m.PerformedBy = log.PerformedBy
	m.Note = log.Note
}

// InventoryLogModelFromDomain creates a persistence model from a domain InventoryLog
func InventoryLogModelFromDomain(log *inventory.InventoryLog) *InventoryLogModel {
	m := &InventoryLogModel{}
	m.FromDomain(log)
	return m
}
