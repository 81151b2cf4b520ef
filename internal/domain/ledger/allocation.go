package ledger

import (
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/hotelops/backend/internal/domain/shared"
	"github.com/hotelops/backend/internal/domain/shared/valueobject"
)

// PaymentMode represents how a payment was made
type PaymentMode string

const (
	PaymentModeCash         PaymentMode = "CASH"
	PaymentModeCheque       PaymentMode = "CHEQUE"
	PaymentModeBankTransfer PaymentMode = "BANK_TRANSFER"
	PaymentModeUPI          PaymentMode = "UPI"
	PaymentModeCard         PaymentMode = "CARD"
)

// IsValid checks if the payment mode is valid
func (m PaymentMode) IsValid() bool {
	switch m {
	case PaymentModeCash, PaymentModeCheque, PaymentModeBankTransfer, PaymentModeUPI, PaymentModeCard:
		return true
	}
	return false
}

// String returns the string representation
func (m PaymentMode) String() string {
	return string(m)
}

// PaymentAllocation is the portion of one payment applied to one bill.
// Rows are append-only: once committed they are never mutated, which is
// what makes the payment history reproducible.
type PaymentAllocation struct {
	ID            uuid.UUID       `json:"id"`
	ReceiptID     uuid.UUID       `json:"receipt_id"`
	BillNumber    int64           `json:"bill_number"`
	Amount        decimal.Decimal `json:"amount"`
	PaymentMode   PaymentMode     `json:"payment_mode"`
	BankReference string          `json:"bank_reference"` // Cheque or transaction reference
	Remarks       string          `json:"remarks"`
	AllocatedAt   time.Time       `json:"allocated_at"`
}

// NewPaymentAllocation creates an allocation row bound to its receipt
func NewPaymentAllocation(receiptID uuid.UUID, billNumber int64, amount valueobject.Money, mode PaymentMode, bankReference, remarks string) *PaymentAllocation {
	return &PaymentAllocation{
		ID:            uuid.New(),
		ReceiptID:     receiptID,
		BillNumber:    billNumber,
		Amount:        amount.Amount(),
		PaymentMode:   mode,
		BankReference: bankReference,
		Remarks:       remarks,
		AllocatedAt:   time.Now(),
	}
}

// GetAmountMoney returns the amount as Money
func (a *PaymentAllocation) GetAmountMoney() valueobject.Money {
	return valueobject.NewMoneyINR(a.Amount)
}

// BillAllocation is one computed split of a payment before it is
// committed: how much of the payment lands on which bill.
type BillAllocation struct {
	BillNumber int64           `json:"bill_number"`
	Amount     decimal.Decimal `json:"amount"`
}

// AllocatePayment distributes paymentAmount across the target bills,
// oldest debt first. Bill numbers are assigned sequentially at creation,
// so ascending bill number is creation order; the function re-sorts
// internally, making the split deterministic regardless of how the
// caller ordered the selection.
//
// The whole amount must fit in the selected bills - partial application
// is not a thing. Bills already at zero balance receive no split.
// On success the splits sum to paymentAmount exactly.
func AllocatePayment(paymentAmount valueobject.Money, targetBills []Bill) ([]BillAllocation, error) {
	if paymentAmount.Amount().LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Payment amount must be positive")
	}
	if len(targetBills) == 0 {
		return nil, shared.NewDomainError("EMPTY_SELECTION", "At least one bill must be selected")
	}

	totalBalance := decimal.Zero
	for i := range targetBills {
		totalBalance = totalBalance.Add(targetBills[i].BalanceAmount)
	}
	if paymentAmount.Amount().GreaterThan(totalBalance) {
		return nil, shared.NewDomainError("INSUFFICIENT_BALANCE", fmt.Sprintf(
			"Payment amount %s exceeds total outstanding balance %s of the selected bills",
			paymentAmount.Amount().StringFixed(2), totalBalance.StringFixed(2)))
	}

	sorted := make([]Bill, len(targetBills))
	copy(sorted, targetBills)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].BillNumber < sorted[j].BillNumber
	})

	allocations := make([]BillAllocation, 0, len(sorted))
	remaining := paymentAmount.Amount()
	for i := range sorted {
		if remaining.IsZero() {
			break
		}
		if sorted[i].BalanceAmount.LessThanOrEqual(decimal.Zero) {
			continue
		}
		allocAmount := decimal.Min(remaining, sorted[i].BalanceAmount)
		allocations = append(allocations, BillAllocation{
			BillNumber: sorted[i].BillNumber,
			Amount:     allocAmount,
		})
		remaining = remaining.Sub(allocAmount)
	}

	// The precondition above guarantees the bills can absorb the full
	// amount; a residue here means the inputs were inconsistent.
	if !remaining.IsZero() {
		return nil, shared.NewDomainError("INVARIANT_VIOLATION", fmt.Sprintf(
			"Allocation left %s of the payment unapplied", remaining.StringFixed(2)))
	}

	return allocations, nil
}
