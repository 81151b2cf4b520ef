package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/hotelops/backend/internal/domain/ledger"
	"github.com/hotelops/backend/internal/domain/party"
	"github.com/hotelops/backend/internal/domain/shared"
)

// BillModel is the persistence model for the Bill aggregate root.
type BillModel struct {
	AggregateModel
	BillNumber    int64             `gorm:"not null;uniqueIndex"`
	PartyID       uuid.UUID         `gorm:"type:uuid;not null;index"`
	PartyType     party.Type        `gorm:"type:varchar(20);not null;index"`
	PartyName     string            `gorm:"type:varchar(200);not null"`
	BillDate      time.Time         `gorm:"not null;index"`
	NetAmount     decimal.Decimal   `gorm:"type:decimal(18,2);not null"`
	PaidAmount    decimal.Decimal   `gorm:"type:decimal(18,2);not null"`
	BalanceAmount decimal.Decimal   `gorm:"type:decimal(18,2);not null;index"`
	Status        ledger.BillStatus `gorm:"type:varchar(20);not null;default:'PENDING';index"`
	Remarks       string            `gorm:"type:text"`
	PaidAt        *time.Time
}

// TableName returns the table name for GORM
func (BillModel) TableName() string {
	return "bills"
}

// ToDomain converts the persistence model to a domain Bill entity.
func (m *BillModel) ToDomain() *ledger.Bill {
	bill := &ledger.Bill{
		BillNumber:    m.BillNumber,
		PartyID:       m.PartyID,
		PartyType:     m.PartyType,
		PartyName:     m.PartyName,
		BillDate:      m.BillDate,
		NetAmount:     m.NetAmount,
		PaidAmount:    m.PaidAmount,
		BalanceAmount: m.BalanceAmount,
		Status:        m.Status,
		Remarks:       m.Remarks,
		PaidAt:        m.PaidAt,
	}
	bill.BaseAggregateRoot = shared.BaseAggregateRoot{
		BaseEntity: shared.BaseEntity{
			ID:        m.ID,
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.UpdatedAt,
		},
		Version: m.Version,
	}
	return bill
}

// FromDomain populates the persistence model from a domain Bill entity.
func (m *BillModel) FromDomain(b *ledger.Bill) {
	m.FromDomainAggregateRoot(b.BaseAggregateRoot)
	m.BillNumber = b.BillNumber
	m.PartyID = b.PartyID
	m.PartyType = b.PartyType
	m.PartyName = b.PartyName
	m.BillDate = b.BillDate
	m.NetAmount = b.NetAmount
	m.PaidAmount = b.PaidAmount
	m.BalanceAmount = b.BalanceAmount
	m.Status = b.Status
	m.Remarks = b.Remarks
	m.PaidAt = b.PaidAt
}

// BillModelFromDomain creates a new persistence model from a domain Bill.
func BillModelFromDomain(b *ledger.Bill) *BillModel {
	m := &BillModel{}
	m.FromDomain(b)
	return m
}

// PaymentReceiptModel is the persistence model for the PaymentReceipt aggregate root.
type PaymentReceiptModel struct {
	AggregateModel
	ReceiptNumber  int64                    `gorm:"not null;uniqueIndex"`
	PartyID        uuid.UUID                `gorm:"type:uuid;not null;index"`
	PartyName      string                   `gorm:"type:varchar(200);not null"`
	Direction      ledger.ReceiptDirection  `gorm:"type:varchar(10);not null;index"`
	TotalAmount    decimal.Decimal          `gorm:"type:decimal(18,2);not null"`
	PaymentMode    ledger.PaymentMode       `gorm:"type:varchar(20);not null"`
	BankReference  string                   `gorm:"type:varchar(100)"`
	Remarks        string                   `gorm:"type:text"`
	IdempotencyKey *string                  `gorm:"type:varchar(100)"` // NULL when absent; the partial unique index only covers set tokens
	PaidAt         time.Time                `gorm:"not null;index"`
	Allocations    []PaymentAllocationModel `gorm:"foreignKey:ReceiptID;references:ID"`
}

// TableName returns the table name for GORM
func (PaymentReceiptModel) TableName() string {
	return "payment_receipts"
}

// ToDomain converts the persistence model to a domain PaymentReceipt entity.
func (m *PaymentReceiptModel) ToDomain() *ledger.PaymentReceipt {
	allocations := make([]ledger.PaymentAllocation, len(m.Allocations))
	for i := range m.Allocations {
		allocations[i] = *m.Allocations[i].ToDomain()
	}

	receipt := &ledger.PaymentReceipt{
		ReceiptNumber: m.ReceiptNumber,
		PartyID:       m.PartyID,
		PartyName:     m.PartyName,
		Direction:     m.Direction,
		TotalAmount:   m.TotalAmount,
		PaymentMode:   m.PaymentMode,
		BankReference: m.BankReference,
		Remarks:       m.Remarks,
		PaidAt:        m.PaidAt,
		Allocations:   allocations,
	}
	if m.IdempotencyKey != nil {
		receipt.IdempotencyKey = *m.IdempotencyKey
	}
	receipt.BaseAggregateRoot = shared.BaseAggregateRoot{
		BaseEntity: shared.BaseEntity{
			ID:        m.ID,
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.UpdatedAt,
		},
		Version: m.Version,
	}
	return receipt
}

// FromDomain populates the persistence model from a domain PaymentReceipt entity.
func (m *PaymentReceiptModel) FromDomain(r *ledger.PaymentReceipt) {
	m.FromDomainAggregateRoot(r.BaseAggregateRoot)
	m.ReceiptNumber = r.ReceiptNumber
	m.PartyID = r.PartyID
	m.PartyName = r.PartyName
	m.Direction = r.Direction
	m.TotalAmount = r.TotalAmount
	m.PaymentMode = r.PaymentMode
	m.BankReference = r.BankReference
	m.Remarks = r.Remarks
	if r.IdempotencyKey != "" {
		key := r.IdempotencyKey
		m.IdempotencyKey = &key
	} else {
		m.IdempotencyKey = nil
	}
	m.PaidAt = r.PaidAt

	m.Allocations = make([]PaymentAllocationModel, len(r.Allocations))
	for i := range r.Allocations {
		m.Allocations[i].FromDomain(&r.Allocations[i])
	}
}

// PaymentReceiptModelFromDomain creates a new persistence model from a domain PaymentReceipt.
func PaymentReceiptModelFromDomain(r *ledger.PaymentReceipt) *PaymentReceiptModel {
	m := &PaymentReceiptModel{}
	m.FromDomain(r)
	return m
}

// PaymentAllocationModel is the persistence model for one allocation row.
// Rows are append-only: they are inserted with their receipt and never
// updated afterwards.
type PaymentAllocationModel struct {
	ID            uuid.UUID          `gorm:"type:uuid;primary_key"`
	ReceiptID     uuid.UUID          `gorm:"type:uuid;not null;index"`
	BillNumber    int64              `gorm:"not null;index"`
	Amount        decimal.Decimal    `gorm:"type:decimal(18,2);not null"`
	PaymentMode   ledger.PaymentMode `gorm:"type:varchar(20);not null"`
	BankReference string             `gorm:"type:varchar(100)"`
	Remarks       string             `gorm:"type:text"`
	AllocatedAt   time.Time          `gorm:"not null;index"`
}

// TableName returns the table name for GORM
func (PaymentAllocationModel) TableName() string {
	return "payment_allocations"
}

// ToDomain converts the persistence model to a domain PaymentAllocation.
func (m *PaymentAllocationModel) ToDomain() *ledger.PaymentAllocation {
	return &ledger.PaymentAllocation{
		ID:            m.ID,
		ReceiptID:     m.ReceiptID,
		BillNumber:    m.BillNumber,
		Amount:        m.Amount,
		PaymentMode:   m.PaymentMode,
		BankReference: m.BankReference,
		Remarks:       m.Remarks,
		AllocatedAt:   m.AllocatedAt,
	}
}

// FromDomain populates the persistence model from a domain PaymentAllocation.
func (m *PaymentAllocationModel) FromDomain(a *ledger.PaymentAllocation) {
	m.ID = a.ID
	m.ReceiptID = a.ReceiptID
	m.BillNumber = a.BillNumber
	m.Amount = a.Amount
	m.PaymentMode = a.PaymentMode
	m.BankReference = a.BankReference
	m.Remarks = a.Remarks
	m.AllocatedAt = a.AllocatedAt
}
