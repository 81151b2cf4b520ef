package ledger

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/hotelops/backend/internal/domain/shared"
	"github.com/hotelops/backend/internal/domain/shared/valueobject"
)

// CalculateBalance computes the outstanding balance and settlement status
// from a bill's net and paid amounts. It is pure: same inputs, same
// outputs, no hidden state.
//
// A residue below the smallest currency unit is treated as settled, so
// repeated partial payments cannot strand a bill one rounding step short
// of PAID. paidAmount > netAmount is not clamped: the recorder guarantees
// it never happens, so seeing it means the ledger itself is corrupt.
func CalculateBalance(netAmount, paidAmount decimal.Decimal) (decimal.Decimal, BillStatus, error) {
	if netAmount.IsNegative() {
		return decimal.Zero, "", shared.NewDomainError("INVALID_AMOUNT", "Net amount cannot be negative")
	}
	if paidAmount.IsNegative() {
		return decimal.Zero, "", shared.NewDomainError("INVALID_AMOUNT", "Paid amount cannot be negative")
	}

	balance := netAmount.Sub(paidAmount)
	if balance.IsNegative() && balance.Abs().GreaterThanOrEqual(valueobject.SmallestUnit) {
		return decimal.Zero, "", shared.NewDomainError("INVARIANT_VIOLATION", fmt.Sprintf(
			"Paid amount %s exceeds net amount %s", paidAmount.StringFixed(2), netAmount.StringFixed(2)))
	}

	if balance.Abs().LessThan(valueobject.SmallestUnit) {
		return decimal.Zero, BillStatusPaid, nil
	}
	if paidAmount.IsZero() {
		return balance, BillStatusPending, nil
	}
	return balance, BillStatusPartiallyPaid, nil
}
