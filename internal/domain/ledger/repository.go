package ledger

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/hotelops/backend/internal/domain/party"
	"github.com/hotelops/backend/internal/domain/shared"
)

// BillFilter defines filtering options for bill queries
type BillFilter struct {
	shared.Filter
	PartyID         *uuid.UUID  // Filter by party
	PartyType       *party.Type // Filter by direction (supplier/customer)
	Status          *BillStatus // Filter by status
	FromDate        *time.Time  // Bill date range start
	ToDate          *time.Time  // Bill date range end
	OutstandingOnly bool        // Only bills with balance > 0
}

// ReceiptFilter defines filtering options for receipt history queries.
// The embedded free-text search matches party names and is applied in
// the database together with pagination, so page totals stay consistent.
type ReceiptFilter struct {
	shared.Filter
	PartyID   *uuid.UUID        // Filter by party
	Direction *ReceiptDirection // Filter by money direction
	FromDate  *time.Time        // Payment date range start
	ToDate    *time.Time        // Payment date range end
}

// BillRepository defines the interface for bill persistence
type BillRepository interface {
	// FindByNumber finds a bill by its bill number
	FindByNumber(ctx context.Context, billNumber int64) (*Bill, error)

	// FindByNumbers finds bills for a set of bill numbers
	FindByNumbers(ctx context.Context, billNumbers []int64) ([]Bill, error)

	// FindOutstandingByParty finds all bills with balance > 0 for a party,
	// ordered by bill number ascending
	FindOutstandingByParty(ctx context.Context, partyID uuid.UUID) ([]Bill, error)

	// FindAll finds bills with filtering
	FindAll(ctx context.Context, filter BillFilter) ([]Bill, error)

	// Count counts bills matching the filter
	Count(ctx context.Context, filter BillFilter) (int64, error)

	// Save inserts a new bill. Returns shared.ErrConcurrencyConflict
	// when the bill number was taken by a concurrent commit.
	Save(ctx context.Context, bill *Bill) error

	// SaveWithLock updates a bill with optimistic locking (version check).
	// Returns shared.ErrConcurrencyConflict-coded error when the stored
	// version no longer matches.
	SaveWithLock(ctx context.Context, bill *Bill) error

	// NextBillNumber returns the next bill number in the sequence
	NextBillNumber(ctx context.Context) (int64, error)

	// SumOutstandingByParty returns the total outstanding balance for a party
	SumOutstandingByParty(ctx context.Context, partyID uuid.UUID) (decimal.Decimal, error)

	// SumPaidByParty returns the total paid amount across a party's bills
	SumPaidByParty(ctx context.Context, partyID uuid.UUID) (decimal.Decimal, error)
}

// ReceiptRepository defines the interface for receipt persistence
type ReceiptRepository interface {
	// FindByID finds a receipt with its allocations
	FindByID(ctx context.Context, id uuid.UUID) (*PaymentReceipt, error)

	// FindByIdempotencyKey finds the receipt created under a client
	// request token. Returns nil without error when no receipt exists,
	// since absence is the common case.
	FindByIdempotencyKey(ctx context.Context, key string) (*PaymentReceipt, error)

	// FindAll finds receipts with their allocations, filtered by date
	// range and direction, ordered by payment date descending
	FindAll(ctx context.Context, filter ReceiptFilter) ([]PaymentReceipt, error)

	// Count counts receipts matching the filter
	Count(ctx context.Context, filter ReceiptFilter) (int64, error)

	// Save persists a receipt together with its allocation rows.
	// Returns shared.ErrDuplicateIdempotencyKey when another receipt
	// already carries the same idempotency token, and
	// shared.ErrConcurrencyConflict when the receipt number was taken
	// by a concurrent commit.
	Save(ctx context.Context, receipt *PaymentReceipt) error

	// NextReceiptNumber returns the next receipt number in the sequence
	NextReceiptNumber(ctx context.Context) (int64, error)

	// SumInRange sums receipt amounts for one money direction whose
	// payment date falls in [from, to]
	SumInRange(ctx context.Context, direction ReceiptDirection, from, to time.Time) (decimal.Decimal, error)
}

// Repositories bundles the repositories participating in one unit of work
type Repositories struct {
	Bills    BillRepository
	Receipts ReceiptRepository
}

// UnitOfWork runs a function with transaction-scoped repositories. All
// writes made through the passed repositories commit or roll back as one
// atomic unit.
type UnitOfWork interface {
	Execute(ctx context.Context, fn func(ctx context.Context, repos Repositories) error) error
}
