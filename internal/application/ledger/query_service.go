package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/hotelops/backend/internal/domain/ledger"
	"github.com/hotelops/backend/internal/domain/party"
	"github.com/hotelops/backend/internal/domain/shared"
)

// QueryService answers reconciliation questions: what a party still owes,
// what has been paid, and where each past payment went.
type QueryService struct {
	uow       ledger.UnitOfWork
	partyRepo party.Repository
}

// NewQueryService creates a new QueryService
func NewQueryService(uow ledger.UnitOfWork, partyRepo party.Repository) *QueryService {
	return &QueryService{
		uow:       uow,
		partyRepo: partyRepo,
	}
}

// OutstandingStatement lists a party's open bills alongside the running totals
type OutstandingStatement struct {
	PartyID          uuid.UUID       `json:"party_id"`
	PartyName        string          `json:"party_name"`
	PartyType        party.Type      `json:"party_type"`
	Bills            []ledger.Bill   `json:"bills"`
	TotalOutstanding decimal.Decimal `json:"total_outstanding"`
	TotalPaid        decimal.Decimal `json:"total_paid"`
}

// GetOutstanding returns the party's open bills in bill-number order,
// the order a payment would settle them in.
func (s *QueryService) GetOutstanding(ctx context.Context, partyID uuid.UUID) (*OutstandingStatement, error) {
	p, err := s.partyRepo.FindByID(ctx, partyID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("PARTY_NOT_FOUND", "Party not found")
		}
		return nil, fmt.Errorf("failed to get party: %w", err)
	}

	statement := &OutstandingStatement{
		PartyID:   p.ID,
		PartyName: p.DisplayName,
		PartyType: p.Type,
	}

	err = s.uow.Execute(ctx, func(ctx context.Context, repos ledger.Repositories) error {
		bills, err := repos.Bills.FindOutstandingByParty(ctx, partyID)
		if err != nil {
			return err
		}
		outstanding, err := repos.Bills.SumOutstandingByParty(ctx, partyID)
		if err != nil {
			return err
		}
		paid, err := repos.Bills.SumPaidByParty(ctx, partyID)
		if err != nil {
			return err
		}
		statement.Bills = bills
		statement.TotalOutstanding = outstanding
		statement.TotalPaid = paid
		return nil
	})
	if err != nil {
		return nil, err
	}
	return statement, nil
}

// PaymentHistoryRequest filters the receipt history
type PaymentHistoryRequest struct {
	shared.Filter
	PartyID   *uuid.UUID
	Direction *ledger.ReceiptDirection
	FromDate  *time.Time
	ToDate    *time.Time
}

// GetPaymentHistory returns recorded receipts with their allocation rows.
// The free-text party search runs in the database alongside the other
// filters, so the page and its total count describe the same result set.
func (s *QueryService) GetPaymentHistory(ctx context.Context, req PaymentHistoryRequest) (*shared.Paginated[ledger.PaymentReceipt], error) {
	filter := ledger.ReceiptFilter{
		Filter:    req.Filter,
		PartyID:   req.PartyID,
		Direction: req.Direction,
		FromDate:  req.FromDate,
		ToDate:    req.ToDate,
	}

	var page *shared.Paginated[ledger.PaymentReceipt]
	err := s.uow.Execute(ctx, func(ctx context.Context, repos ledger.Repositories) error {
		receipts, err := repos.Receipts.FindAll(ctx, filter)
		if err != nil {
			return err
		}
		total, err := repos.Receipts.Count(ctx, filter)
		if err != nil {
			return err
		}
		result := shared.NewPaginated(receipts, total, req.Page, req.Limit())
		page = &result
		return nil
	})
	if err != nil {
		return nil, err
	}
	return page, nil
}

// PaymentTotals aggregates recorded payments over a date range
type PaymentTotals struct {
	From          time.Time       `json:"from"`
	To            time.Time       `json:"to"`
	TotalPaid     decimal.Decimal `json:"total_paid"`     // Paid out to suppliers
	TotalReceived decimal.Decimal `json:"total_received"` // Received from customers
	NetFlow       decimal.Decimal `json:"net_flow"`       // Received minus paid
	ReceiptCount  int             `json:"receipt_count"`
}

// GetPaymentTotals sums the receipts recorded in [from, to] per direction
func (s *QueryService) GetPaymentTotals(ctx context.Context, from, to time.Time) (*PaymentTotals, error) {
	if to.Before(from) {
		return nil, shared.NewDomainError("INVALID_RANGE", "Range end must not precede range start")
	}

	totals := &PaymentTotals{
		From:          from,
		To:            to,
		TotalPaid:     decimal.Zero,
		TotalReceived: decimal.Zero,
	}

	err := s.uow.Execute(ctx, func(ctx context.Context, repos ledger.Repositories) error {
		paid, err := repos.Receipts.SumInRange(ctx, ledger.DirectionPayment, from, to)
		if err != nil {
			return err
		}
		received, err := repos.Receipts.SumInRange(ctx, ledger.DirectionReceipt, from, to)
		if err != nil {
			return err
		}
		count, err := repos.Receipts.Count(ctx, ledger.ReceiptFilter{FromDate: &from, ToDate: &to})
		if err != nil {
			return err
		}
		totals.TotalPaid = paid
		totals.TotalReceived = received
		totals.ReceiptCount = int(count)
		return nil
	})
	if err != nil {
		return nil, err
	}

	totals.NetFlow = totals.TotalReceived.Sub(totals.TotalPaid)
	return totals, nil
}

// PartySummary is the reconciliation snapshot for one party
type PartySummary struct {
	PartyID          uuid.UUID       `json:"party_id"`
	PartyName        string          `json:"party_name"`
	PartyType        party.Type      `json:"party_type"`
	OutstandingBills int             `json:"outstanding_bills"`
	TotalOutstanding decimal.Decimal `json:"total_outstanding"`
	TotalPaid        decimal.Decimal `json:"total_paid"`
}

// GetPartySummary returns the party's totals without the bill detail
func (s *QueryService) GetPartySummary(ctx context.Context, partyID uuid.UUID) (*PartySummary, error) {
	p, err := s.partyRepo.FindByID(ctx, partyID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("PARTY_NOT_FOUND", "Party not found")
		}
		return nil, fmt.Errorf("failed to get party: %w", err)
	}

	summary := &PartySummary{
		PartyID:   p.ID,
		PartyName: p.DisplayName,
		PartyType: p.Type,
	}

	err = s.uow.Execute(ctx, func(ctx context.Context, repos ledger.Repositories) error {
		bills, err := repos.Bills.FindOutstandingByParty(ctx, partyID)
		if err != nil {
			return err
		}
		outstanding, err := repos.Bills.SumOutstandingByParty(ctx, partyID)
		if err != nil {
			return err
		}
		paid, err := repos.Bills.SumPaidByParty(ctx, partyID)
		if err != nil {
			return err
		}
		summary.OutstandingBills = len(bills)
		summary.TotalOutstanding = outstanding
		summary.TotalPaid = paid
		return nil
	})
	if err != nil {
		return nil, err
	}
	return summary, nil
}
