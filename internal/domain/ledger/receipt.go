package ledger

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/hotelops/backend/internal/domain/party"
	"github.com/hotelops/backend/internal/domain/shared"
	"github.com/hotelops/backend/internal/domain/shared/valueobject"
)

// ReceiptDirection records which way the money moved
type ReceiptDirection string

const (
	DirectionPayment ReceiptDirection = "PAYMENT" // paid out to a supplier
	DirectionReceipt ReceiptDirection = "RECEIPT" // received from a customer
)

// IsValid checks if the direction is valid
func (d ReceiptDirection) IsValid() bool {
	return d == DirectionPayment || d == DirectionReceipt
}

// String returns the string representation
func (d ReceiptDirection) String() string {
	return string(d)
}

// DirectionForParty maps the party type to the money direction
func DirectionForParty(t party.Type) ReceiptDirection {
	if t == party.TypeSupplier {
		return DirectionPayment
	}
	return DirectionReceipt
}

// PaymentReceipt groups the allocations of one payment event. It is used
// for both directions: the supplier-paying flow, which the original desk
// software recorded as loose per-bill rows, gets the same header as the
// customer-receipt flow, with the header simply holding one or more rows.
//
// The receipt owns its allocations; their lifetime is bound to it, and
// neither is ever mutated after commit.
type PaymentReceipt struct {
	shared.BaseAggregateRoot
	ReceiptNumber  int64               `json:"receipt_number"`
	PartyID        uuid.UUID           `json:"party_id"`
	PartyName      string              `json:"party_name"`
	Direction      ReceiptDirection    `json:"direction"`
	TotalAmount    decimal.Decimal     `json:"total_amount"`
	PaymentMode    PaymentMode         `json:"payment_mode"`
	BankReference  string              `json:"bank_reference"`
	Remarks        string              `json:"remarks"`
	IdempotencyKey string              `json:"idempotency_key,omitempty"` // Client request token, when supplied
	PaidAt         time.Time           `json:"paid_at"`
	Allocations    []PaymentAllocation `json:"allocations"`
}

// NewPaymentReceipt creates a receipt header for one payment event
func NewPaymentReceipt(
	receiptNumber int64,
	partyID uuid.UUID,
	partyName string,
	direction ReceiptDirection,
	totalAmount valueobject.Money,
	mode PaymentMode,
	bankReference string,
	remarks string,
	paidAt time.Time,
) (*PaymentReceipt, error) {
	if receiptNumber <= 0 {
		return nil, shared.NewDomainError("INVALID_RECEIPT_NUMBER", "Receipt number must be positive")
	}
	if partyID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PARTY", "Party ID cannot be empty")
	}
	if partyName == "" {
		return nil, shared.NewDomainError("INVALID_PARTY_NAME", "Party name cannot be empty")
	}
	if !direction.IsValid() {
		return nil, shared.NewDomainError("INVALID_DIRECTION", "Receipt direction is not valid")
	}
	if totalAmount.Amount().LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Total amount must be positive")
	}
	if !mode.IsValid() {
		return nil, shared.NewDomainError("INVALID_PAYMENT_MODE", "Payment mode is not valid")
	}
	if paidAt.IsZero() {
		return nil, shared.NewDomainError("INVALID_PAYMENT_DATE", "Payment date is required")
	}

	return &PaymentReceipt{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		ReceiptNumber:     receiptNumber,
		PartyID:           partyID,
		PartyName:         partyName,
		Direction:         direction,
		TotalAmount:       totalAmount.Amount(),
		PaymentMode:       mode,
		BankReference:     bankReference,
		Remarks:           remarks,
		PaidAt:            paidAt,
		Allocations:       make([]PaymentAllocation, 0),
	}, nil
}

// SetIdempotencyKey attaches the client-supplied request token
func (r *PaymentReceipt) SetIdempotencyKey(key string) {
	r.IdempotencyKey = key
}

// AddAllocation appends one allocation row. The cumulative allocated
// amount may never exceed the receipt total.
func (r *PaymentReceipt) AddAllocation(billNumber int64, amount valueobject.Money, remarks string) (*PaymentAllocation, error) {
	if billNumber <= 0 {
		return nil, shared.NewDomainError("INVALID_BILL_NUMBER", "Bill number must be positive")
	}
	if amount.Amount().LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Allocation amount must be positive")
	}
	if r.AllocatedAmount().Add(amount.Amount()).GreaterThan(r.TotalAmount) {
		return nil, shared.NewDomainError("EXCEEDS_TOTAL", fmt.Sprintf(
			"Allocation of %s would exceed receipt total %s",
			amount.Amount().StringFixed(2), r.TotalAmount.StringFixed(2)))
	}
	for i := range r.Allocations {
		if r.Allocations[i].BillNumber == billNumber {
			return nil, shared.NewDomainError("ALREADY_ALLOCATED", fmt.Sprintf("Bill %d already allocated on this receipt", billNumber))
		}
	}

	allocation := NewPaymentAllocation(r.ID, billNumber, amount, r.PaymentMode, r.BankReference, remarks)
	r.Allocations = append(r.Allocations, *allocation)
	r.UpdatedAt = time.Now()

	return allocation, nil
}

// Finalize verifies the receipt is internally consistent before it is
// persisted: at least one allocation, and the rows summing to the header
// total exactly. A mismatch is a data-integrity failure, not user error.
func (r *PaymentReceipt) Finalize() error {
	if len(r.Allocations) == 0 {
		return shared.NewDomainError("INVARIANT_VIOLATION", "Receipt has no allocations")
	}
	if !r.AllocatedAmount().Equal(r.TotalAmount) {
		return shared.NewDomainError("INVARIANT_VIOLATION", fmt.Sprintf(
			"Allocations sum to %s but receipt total is %s",
			r.AllocatedAmount().StringFixed(2), r.TotalAmount.StringFixed(2)))
	}
	return nil
}

// AllocatedAmount returns the sum of all allocation rows
func (r *PaymentReceipt) AllocatedAmount() decimal.Decimal {
	sum := decimal.Zero
	for i := range r.Allocations {
		sum = sum.Add(r.Allocations[i].Amount)
	}
	return sum
}

// AllocationCount returns the number of allocation rows
func (r *PaymentReceipt) AllocationCount() int {
	return len(r.Allocations)
}

// GetTotalAmountMoney returns the receipt total as Money
func (r *PaymentReceipt) GetTotalAmountMoney() valueobject.Money {
	return valueobject.NewMoneyINR(r.TotalAmount)
}
