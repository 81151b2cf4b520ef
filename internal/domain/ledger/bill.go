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

// BillStatus represents the settlement state of a bill
type BillStatus string

const (
	BillStatusPending       BillStatus = "PENDING"        // No payment applied yet
	BillStatusPartiallyPaid BillStatus = "PARTIALLY_PAID" // 0 < paid < net
	BillStatusPaid          BillStatus = "PAID"           // Fully settled
	BillStatusCredit        BillStatus = "CREDIT"         // Sales bill not yet due for cash settlement
)

// IsValid checks if the status is a valid BillStatus
func (s BillStatus) IsValid() bool {
	switch s {
	case BillStatusPending, BillStatusPartiallyPaid, BillStatusPaid, BillStatusCredit:
		return true
	}
	return false
}

// String returns the string representation of BillStatus
func (s BillStatus) String() string {
	return string(s)
}

// CanApplyPayment returns true if payments can be applied in this status.
// A CREDIT bill becomes settleable the moment it is selected for payment.
func (s BillStatus) CanApplyPayment() bool {
	return s == BillStatusPending || s == BillStatusPartiallyPaid || s == BillStatusCredit
}

// Bill represents a bill aggregate root: a purchase bill owed to a
// supplier or a sales bill owed by a customer. The two directions are
// structurally identical; PartyType carries the distinction.
//
// PaidAmount only ever grows, and only through ApplyAllocation. The
// balance is derived and must never go negative.
type Bill struct {
	shared.BaseAggregateRoot
	BillNumber    int64           `json:"bill_number"`
	PartyID       uuid.UUID       `json:"party_id"`
	PartyType     party.Type      `json:"party_type"`
	PartyName     string          `json:"party_name"` // Denormalized for display and history search
	BillDate      time.Time       `json:"bill_date"`
	NetAmount     decimal.Decimal `json:"net_amount"`
	PaidAmount    decimal.Decimal `json:"paid_amount"`
	BalanceAmount decimal.Decimal `json:"balance_amount"`
	Status        BillStatus      `json:"status"`
	Remarks       string          `json:"remarks"`
	PaidAt        *time.Time      `json:"paid_at,omitempty"` // When fully settled
}

// NewBill creates a new bill. markCredit flags a sales bill that is not
// yet due for cash settlement; it is rejected for purchase bills.
func NewBill(
	billNumber int64,
	partyID uuid.UUID,
	partyType party.Type,
	partyName string,
	netAmount valueobject.Money,
	billDate time.Time,
	markCredit bool,
) (*Bill, error) {
	if billNumber <= 0 {
		return nil, shared.NewDomainError("INVALID_BILL_NUMBER", "Bill number must be positive")
	}
	if partyID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PARTY", "Party ID cannot be empty")
	}
	if !partyType.IsValid() {
		return nil, shared.NewDomainError("INVALID_PARTY_TYPE", "Party type is not valid")
	}
	if partyName == "" {
		return nil, shared.NewDomainError("INVALID_PARTY_NAME", "Party name cannot be empty")
	}
	if netAmount.Amount().LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Net amount must be positive")
	}
	if billDate.IsZero() {
		return nil, shared.NewDomainError("INVALID_BILL_DATE", "Bill date is required")
	}
	if markCredit && partyType != party.TypeCustomer {
		return nil, shared.NewDomainError("INVALID_STATUS", "Only sales bills can be marked as credit")
	}

	status := BillStatusPending
	if markCredit {
		status = BillStatusCredit
	}

	return &Bill{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		BillNumber:        billNumber,
		PartyID:           partyID,
		PartyType:         partyType,
		PartyName:         partyName,
		BillDate:          billDate,
		NetAmount:         netAmount.Amount(),
		PaidAmount:        decimal.Zero,
		BalanceAmount:     netAmount.Amount(),
		Status:            status,
	}, nil
}

// ApplyAllocation applies one allocation amount to the bill, recomputing
// balance and status. The amount must not exceed the outstanding balance;
// a violation here means the caller worked from stale state and the whole
// commit has to be retried or aborted.
func (b *Bill) ApplyAllocation(amount valueobject.Money) error {
	if !b.Status.CanApplyPayment() {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot apply payment to bill %d in %s status", b.BillNumber, b.Status))
	}
	if amount.Amount().LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_AMOUNT", "Allocation amount must be positive")
	}
	if amount.Amount().GreaterThan(b.BalanceAmount) {
		return shared.NewDomainError("EXCEEDS_BALANCE", fmt.Sprintf(
			"Allocation of %s to bill %d exceeds outstanding balance %s",
			amount.Amount().StringFixed(2), b.BillNumber, b.BalanceAmount.StringFixed(2)))
	}

	paid := b.PaidAmount.Add(amount.Amount())
	balance, status, err := CalculateBalance(b.NetAmount, paid)
	if err != nil {
		return err
	}

	b.PaidAmount = paid
	b.BalanceAmount = balance
	b.Status = status
	if status == BillStatusPaid {
		now := time.Now()
		b.PaidAt = &now
	}
	b.UpdatedAt = time.Now()
	b.IncrementVersion()

	return nil
}

// IsOutstanding returns true if the bill still carries a balance
func (b *Bill) IsOutstanding() bool {
	return b.BalanceAmount.GreaterThan(decimal.Zero) && b.Status != BillStatusPaid
}

// IsPaid returns true if the bill is fully settled
func (b *Bill) IsPaid() bool {
	return b.Status == BillStatusPaid
}

// GetNetAmountMoney returns the net amount as Money
func (b *Bill) GetNetAmountMoney() valueobject.Money {
	return valueobject.NewMoneyINR(b.NetAmount)
}

// GetPaidAmountMoney returns the paid amount as Money
func (b *Bill) GetPaidAmountMoney() valueobject.Money {
	return valueobject.NewMoneyINR(b.PaidAmount)
}

// GetBalanceAmountMoney returns the outstanding balance as Money
func (b *Bill) GetBalanceAmountMoney() valueobject.Money {
	return valueobject.NewMoneyINR(b.BalanceAmount)
}
