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
	"github.com/hotelops/backend/internal/infrastructure/telemetry"
)

// maxCommitAttempts bounds the optimistic-lock retry loop. Each retry
// re-reads the bills and recomputes the split from fresh balances.
const maxCommitAttempts = 3

// PaymentService records payments and receipts against outstanding bills.
// A single request produces one receipt plus one allocation row per bill
// it touched, committed atomically.
type PaymentService struct {
	uow         ledger.UnitOfWork
	partyRepo   party.Repository
	idempotency shared.IdempotencyStore
	idemConfig  shared.IdempotencyConfig
}

// NewPaymentService creates a new PaymentService
func NewPaymentService(
	uow ledger.UnitOfWork,
	partyRepo party.Repository,
	idempotency shared.IdempotencyStore,
	idemConfig shared.IdempotencyConfig,
) *PaymentService {
	return &PaymentService{
		uow:         uow,
		partyRepo:   partyRepo,
		idempotency: idempotency,
		idemConfig:  idemConfig,
	}
}

// RecordPaymentRequest represents a request to record a payment against a party's bills
type RecordPaymentRequest struct {
	PartyID        uuid.UUID
	Amount         decimal.Decimal
	PaymentMode    ledger.PaymentMode
	BillNumbers    []int64 // Explicit bill selection; empty means all outstanding bills
	BankReference  string
	Remarks        string
	PaidAt         *time.Time
	IdempotencyKey string // Optional client token for safe retries
}

// AllocationLine reports how one bill was affected by a recorded payment
type AllocationLine struct {
	BillNumber    int64             `json:"bill_number"`
	Amount        decimal.Decimal   `json:"amount"`
	BillStatus    ledger.BillStatus `json:"bill_status"`
	BillBalance   decimal.Decimal   `json:"bill_balance"`
	BillPaidTotal decimal.Decimal   `json:"bill_paid_total"`
}

// RecordPaymentResult represents the outcome of a recorded payment
type RecordPaymentResult struct {
	ReceiptID     uuid.UUID               `json:"receipt_id"`
	ReceiptNumber int64                   `json:"receipt_number"`
	PartyID       uuid.UUID               `json:"party_id"`
	PartyName     string                  `json:"party_name"`
	Direction     ledger.ReceiptDirection `json:"direction"`
	TotalAmount   decimal.Decimal         `json:"total_amount"`
	PaymentMode   ledger.PaymentMode      `json:"payment_mode"`
	PaidAt        time.Time               `json:"paid_at"`
	Allocations   []AllocationLine        `json:"allocations"`
	Replayed      bool                    `json:"replayed"` // True when an idempotency token matched an earlier commit
}

// RecordPayment distributes the payment amount across the party's bills,
// oldest first, and commits the receipt, its allocation rows, and every
// touched bill in one transaction.
//
// Bill versions are checked on write. When another writer got there
// first the whole attempt is rolled back and redone from fresh balances,
// up to maxCommitAttempts times.
func (s *PaymentService) RecordPayment(ctx context.Context, req RecordPaymentRequest) (*RecordPaymentResult, error) {
	amount := valueobject.NewMoneyINR(req.Amount)
	if !amount.IsPositive() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Payment amount must be positive")
	}
	if !req.PaymentMode.IsValid() {
		return nil, shared.NewDomainError("INVALID_PAYMENT_MODE",
			fmt.Sprintf("Unknown payment mode %q", req.PaymentMode))
	}

	if req.IdempotencyKey != "" {
		replayed, found, err := s.replayFromToken(ctx, req.IdempotencyKey)
		if err != nil {
			return nil, err
		}
		if found {
			return replayed, nil
		}
	}

	p, err := s.partyRepo.FindByID(ctx, req.PartyID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("PARTY_NOT_FOUND", "Party not found")
		}
		return nil, fmt.Errorf("failed to get party: %w", err)
	}

	paidAt := time.Now()
	if req.PaidAt != nil {
		paidAt = *req.PaidAt
	}

	var result *RecordPaymentResult
	for attempt := 1; attempt <= maxCommitAttempts; attempt++ {
		result, err = s.commitPayment(ctx, p, amount, paidAt, req)
		if err == nil {
			break
		}
		if errors.Is(err, shared.ErrDuplicateIdempotencyKey) {
			// A concurrent request carrying the same token won the
			// commit; its receipt is the outcome to return.
			return s.replayAfterDuplicate(ctx, req.IdempotencyKey)
		}
		if !errors.Is(err, shared.ErrConcurrencyConflict) {
			return nil, err
		}
		telemetry.RecordPaymentConflict()
		logger.L(ctx).Warn("payment commit hit concurrent bill update, retrying",
			zap.String("party_id", p.ID.String()),
			zap.Int("attempt", attempt))
	}
	if err != nil {
		return nil, shared.NewDomainError("CONCURRENCY_CONFLICT",
			"Bills were modified concurrently, please retry the payment")
	}

	if req.IdempotencyKey != "" {
		// Best effort: the receipt row already carries the token, so a
		// store failure here only costs the fast lookup path.
		if _, _, err := s.idempotency.Claim(ctx, req.IdempotencyKey, result.ReceiptID.String(), s.idemConfig.TTL); err != nil {
			logger.L(ctx).Warn("failed to store idempotency token",
				zap.String("receipt_id", result.ReceiptID.String()),
				zap.Error(err))
		}
	}

	telemetry.RecordPayment(result.Direction.String(), result.TotalAmount.InexactFloat64())
	logger.L(ctx).Info("payment recorded",
		zap.String("receipt_id", result.ReceiptID.String()),
		zap.Int64("receipt_number", result.ReceiptNumber),
		zap.String("party_id", result.PartyID.String()),
		zap.String("direction", result.Direction.String()),
		zap.String("amount", result.TotalAmount.StringFixed(2)),
		zap.Int("bills", len(result.Allocations)))

	return result, nil
}

// commitPayment performs one transactional attempt: read bills, split the
// amount, write everything back under version checks.
func (s *PaymentService) commitPayment(
	ctx context.Context,
	p *party.Party,
	amount valueobject.Money,
	paidAt time.Time,
	req RecordPaymentRequest,
) (*RecordPaymentResult, error) {
	var result *RecordPaymentResult

	err := s.uow.Execute(ctx, func(ctx context.Context, repos ledger.Repositories) error {
		bills, err := s.loadTargetBills(ctx, repos.Bills, p, req.BillNumbers)
		if err != nil {
			return err
		}

		splits, err := ledger.AllocatePayment(amount, bills)
		if err != nil {
			return err
		}

		receiptNumber, err := repos.Receipts.NextReceiptNumber(ctx)
		if err != nil {
			return fmt.Errorf("failed to assign receipt number: %w", err)
		}

		receipt, err := ledger.NewPaymentReceipt(
			receiptNumber,
			p.ID,
			p.DisplayName,
			ledger.DirectionForParty(p.Type),
			amount,
			req.PaymentMode,
			req.BankReference,
			req.Remarks,
			paidAt,
		)
		if err != nil {
			return err
		}
		if req.IdempotencyKey != "" {
			receipt.SetIdempotencyKey(req.IdempotencyKey)
		}

		byNumber := make(map[int64]*ledger.Bill, len(bills))
		for i := range bills {
			byNumber[bills[i].BillNumber] = &bills[i]
		}

		lines := make([]AllocationLine, 0, len(splits))
		for _, split := range splits {
			bill := byNumber[split.BillNumber]
			splitMoney := valueobject.NewMoneyINR(split.Amount)

			if _, err := receipt.AddAllocation(bill.BillNumber, splitMoney, req.Remarks); err != nil {
				return err
			}
			if err := bill.ApplyAllocation(splitMoney); err != nil {
				return err
			}
			if err := repos.Bills.SaveWithLock(ctx, bill); err != nil {
				return err
			}

			lines = append(lines, AllocationLine{
				BillNumber:    bill.BillNumber,
				Amount:        split.Amount,
				BillStatus:    bill.Status,
				BillBalance:   bill.BalanceAmount,
				BillPaidTotal: bill.PaidAmount,
			})
		}

		if err := receipt.Finalize(); err != nil {
			return err
		}
		if err := repos.Receipts.Save(ctx, receipt); err != nil {
			return fmt.Errorf("failed to save receipt: %w", err)
		}

		result = &RecordPaymentResult{
			ReceiptID:     receipt.ID,
			ReceiptNumber: receipt.ReceiptNumber,
			PartyID:       receipt.PartyID,
			PartyName:     receipt.PartyName,
			Direction:     receipt.Direction,
			TotalAmount:   receipt.TotalAmount,
			PaymentMode:   receipt.PaymentMode,
			PaidAt:        receipt.PaidAt,
			Allocations:   lines,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// loadTargetBills resolves the bill selection for a payment. An explicit
// selection must exist in full and belong to the paying party; an empty
// selection means every outstanding bill of the party.
func (s *PaymentService) loadTargetBills(
	ctx context.Context,
	billRepo ledger.BillRepository,
	p *party.Party,
	billNumbers []int64,
) ([]ledger.Bill, error) {
	if len(billNumbers) == 0 {
		bills, err := billRepo.FindOutstandingByParty(ctx, p.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to load outstanding bills: %w", err)
		}
		if len(bills) == 0 {
			return nil, shared.NewDomainError("EMPTY_SELECTION", "Party has no outstanding bills")
		}
		return bills, nil
	}

	bills, err := billRepo.FindByNumbers(ctx, billNumbers)
	if err != nil {
		return nil, fmt.Errorf("failed to load bills: %w", err)
	}
	if len(bills) != len(billNumbers) {
		return nil, shared.NewDomainError("BILL_NOT_FOUND",
			fmt.Sprintf("Selection named %d bills but only %d exist", len(billNumbers), len(bills)))
	}
	for i := range bills {
		if bills[i].PartyID != p.ID {
			return nil, shared.NewDomainError("INVALID_SELECTION",
				fmt.Sprintf("Bill %d does not belong to the paying party", bills[i].BillNumber))
		}
		if !bills[i].Status.CanApplyPayment() {
			return nil, shared.NewDomainError("INVALID_STATE",
				fmt.Sprintf("Bill %d is already settled", bills[i].BillNumber))
		}
	}
	return bills, nil
}

// replayAfterDuplicate resolves a commit rejected by the unique token
// index. The winning receipt is committed by the time the unique
// violation surfaces, so the lookup is expected to find it.
func (s *PaymentService) replayAfterDuplicate(ctx context.Context, token string) (*RecordPaymentResult, error) {
	replayed, found, err := s.replayFromToken(ctx, token)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, shared.NewDomainError("CONCURRENCY_CONFLICT",
			"A concurrent request used the same idempotency key, please retry")
	}
	return replayed, nil
}

// replayFromToken returns the stored outcome for an idempotency token.
// The fast path is the token store; the durable fallback is the token
// column on the receipt itself, which survives store restarts.
func (s *PaymentService) replayFromToken(ctx context.Context, token string) (*RecordPaymentResult, bool, error) {
	receiptID, err := s.idempotency.Lookup(ctx, token)
	if err != nil {
		logger.L(ctx).Warn("idempotency lookup failed, falling back to receipt store", zap.Error(err))
	}

	var receipt *ledger.PaymentReceipt
	lookupErr := s.uow.Execute(ctx, func(ctx context.Context, repos ledger.Repositories) error {
		if receiptID != "" {
			id, parseErr := uuid.Parse(receiptID)
			if parseErr != nil {
				return nil
			}
			var findErr error
			receipt, findErr = repos.Receipts.FindByID(ctx, id)
			return findErr
		}
		var findErr error
		receipt, findErr = repos.Receipts.FindByIdempotencyKey(ctx, token)
		return findErr
	})
	if lookupErr != nil && !errors.Is(lookupErr, shared.ErrNotFound) {
		return nil, false, fmt.Errorf("failed to check idempotency token: %w", lookupErr)
	}
	if receipt == nil {
		return nil, false, nil
	}

	lines := make([]AllocationLine, 0, len(receipt.Allocations))
	for _, alloc := range receipt.Allocations {
		lines = append(lines, AllocationLine{
			BillNumber: alloc.BillNumber,
			Amount:     alloc.Amount,
		})
	}

	logger.L(ctx).Info("payment replayed from idempotency token",
		zap.String("receipt_id", receipt.ID.String()),
		zap.Int64("receipt_number", receipt.ReceiptNumber))

	return &RecordPaymentResult{
		ReceiptID:     receipt.ID,
		ReceiptNumber: receipt.ReceiptNumber,
		PartyID:       receipt.PartyID,
		PartyName:     receipt.PartyName,
		Direction:     receipt.Direction,
		TotalAmount:   receipt.TotalAmount,
		PaymentMode:   receipt.PaymentMode,
		PaidAt:        receipt.PaidAt,
		Allocations:   lines,
		Replayed:      true,
	}, true, nil
}
