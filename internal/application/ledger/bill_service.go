package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/hotelops/backend/internal/domain/ledger"
	"github.com/hotelops/backend/internal/domain/party"
	"github.com/hotelops/backend/internal/domain/shared"
	"github.com/hotelops/backend/internal/domain/shared/valueobject"
	"github.com/hotelops/backend/internal/infrastructure/logger"
)

// BillService handles bill entry and lookup
type BillService struct {
	uow       ledger.UnitOfWork
	partyRepo party.Repository
}

// NewBillService creates a new BillService
func NewBillService(uow ledger.UnitOfWork, partyRepo party.Repository) *BillService {
	return &BillService{
		uow:       uow,
		partyRepo: partyRepo,
	}
}

// CreateBillRequest represents a request to enter a new bill
type CreateBillRequest struct {
	PartyID    uuid.UUID
	NetAmount  decimal.Decimal
	BillDate   time.Time
	MarkCredit bool // Record a sales bill as credit instead of pending
	Remarks    string
}

// CreateBill assigns the next bill number and stores the bill with a full
// outstanding balance.
func (s *BillService) CreateBill(ctx context.Context, req CreateBillRequest) (*ledger.Bill, error) {
	amount := valueobject.NewMoneyINR(req.NetAmount)
	if !amount.IsPositive() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Bill amount must be positive")
	}

	p, err := s.partyRepo.FindByID(ctx, req.PartyID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("PARTY_NOT_FOUND", "Party not found")
		}
		return nil, fmt.Errorf("failed to get party: %w", err)
	}

	billDate := req.BillDate
	if billDate.IsZero() {
		billDate = time.Now()
	}

	// Bill numbers are drawn as max+1, so two concurrent entries can
	// collide on the unique constraint. Redraw and retry like the
	// payment flow does for version conflicts.
	var bill *ledger.Bill
	for attempt := 1; attempt <= maxCommitAttempts; attempt++ {
		err = s.uow.Execute(ctx, func(ctx context.Context, repos ledger.Repositories) error {
			billNumber, err := repos.Bills.NextBillNumber(ctx)
			if err != nil {
				return fmt.Errorf("failed to assign bill number: %w", err)
			}

			bill, err = ledger.NewBill(billNumber, p.ID, p.Type, p.DisplayName, amount, billDate, req.MarkCredit)
			if err != nil {
				return err
			}
			bill.Remarks = req.Remarks

			return repos.Bills.Save(ctx, bill)
		})
		if err == nil {
			break
		}
		if !errors.Is(err, shared.ErrConcurrencyConflict) {
			return nil, err
		}
		logger.L(ctx).Warn("bill number collided with a concurrent entry, retrying",
			zap.String("party_id", p.ID.String()),
			zap.Int("attempt", attempt))
	}
	if err != nil {
		return nil, shared.NewDomainError("CONCURRENCY_CONFLICT",
			"Bill entry collided with concurrent entries, please retry")
	}

	logger.L(ctx).Info("bill created",
		zap.Int64("bill_number", bill.BillNumber),
		zap.String("party_id", p.ID.String()),
		zap.String("status", bill.Status.String()),
		zap.String("amount", bill.NetAmount.StringFixed(2)))

	return bill, nil
}

// GetBill returns one bill by its number
func (s *BillService) GetBill(ctx context.Context, billNumber int64) (*ledger.Bill, error) {
	var bill *ledger.Bill
	err := s.uow.Execute(ctx, func(ctx context.Context, repos ledger.Repositories) error {
		var err error
		bill, err = repos.Bills.FindByNumber(ctx, billNumber)
		return err
	})
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("BILL_NOT_FOUND", fmt.Sprintf("Bill %d not found", billNumber))
		}
		return nil, err
	}
	return bill, nil
}

// ListBills returns bills matching the filter, newest first by default
func (s *BillService) ListBills(ctx context.Context, filter ledger.BillFilter) (*shared.Paginated[ledger.Bill], error) {
	var page *shared.Paginated[ledger.Bill]
	err := s.uow.Execute(ctx, func(ctx context.Context, repos ledger.Repositories) error {
		bills, err := repos.Bills.FindAll(ctx, filter)
		if err != nil {
			return err
		}
		total, err := repos.Bills.Count(ctx, filter)
		if err != nil {
			return err
		}
		result := shared.NewPaginated(bills, total, filter.Page, filter.Limit())
		page = &result
		return nil
	})
	if err != nil {
		return nil, err
	}
	return page, nil
}
