package persistence

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/hotelops/backend/internal/domain/ledger"
	"github.com/hotelops/backend/internal/domain/shared"
	"github.com/hotelops/backend/internal/infrastructure/persistence/models"
)

// GormReceiptRepository implements ledger.ReceiptRepository using GORM
type GormReceiptRepository struct {
	db *gorm.DB
}

// NewGormReceiptRepository creates a new GormReceiptRepository
func NewGormReceiptRepository(db *gorm.DB) *GormReceiptRepository {
	return &GormReceiptRepository{db: db}
}

// FindByID finds a receipt with its allocation rows
func (r *GormReceiptRepository) FindByID(ctx context.Context, id uuid.UUID) (*ledger.PaymentReceipt, error) {
	var model models.PaymentReceiptModel
	if err := r.db.WithContext(ctx).
		Preload("Allocations").
		First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByIdempotencyKey finds the receipt committed under a client token.
// Returns nil without error when no receipt carries the token, which is
// the common case.
func (r *GormReceiptRepository) FindByIdempotencyKey(ctx context.Context, key string) (*ledger.PaymentReceipt, error) {
	var model models.PaymentReceiptModel
	if err := r.db.WithContext(ctx).
		Preload("Allocations").
		First(&model, "idempotency_key = ?", key).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll finds receipts matching the filter
func (r *GormReceiptRepository) FindAll(ctx context.Context, filter ledger.ReceiptFilter) ([]ledger.PaymentReceipt, error) {
	var receiptModels []models.PaymentReceiptModel
	query := r.db.WithContext(ctx).Model(&models.PaymentReceiptModel{}).
		Preload("Allocations")
	query = applyReceiptFilter(query, filter)

	if filter.Page > 0 && filter.PageSize > 0 {
		query = query.Offset(filter.Offset()).Limit(filter.Limit())
	}
	if filter.OrderBy != "" {
		orderDir := "ASC"
		if strings.ToLower(filter.OrderDir) == "desc" {
			orderDir = "DESC"
		}
		query = query.Order(filter.OrderBy + " " + orderDir)
	} else {
		query = query.Order("receipt_number DESC")
	}

	if err := query.Find(&receiptModels).Error; err != nil {
		return nil, err
	}

	receipts := make([]ledger.PaymentReceipt, len(receiptModels))
	for i := range receiptModels {
		receipts[i] = *receiptModels[i].ToDomain()
	}
	return receipts, nil
}

// Save inserts a receipt together with its allocation rows. Receipts are
// immutable once committed, so this is insert-only. Unique collisions on
// the idempotency token or the receipt number come back as domain
// sentinels so the payment flow can replay or retry.
func (r *GormReceiptRepository) Save(ctx context.Context, receipt *ledger.PaymentReceipt) error {
	model := models.PaymentReceiptModelFromDomain(receipt)
	return translateSaveError(r.db.WithContext(ctx).Create(model).Error)
}

// Count counts receipts matching the filter
func (r *GormReceiptRepository) Count(ctx context.Context, filter ledger.ReceiptFilter) (int64, error) {
	var count int64
	query := applyReceiptFilter(r.db.WithContext(ctx).Model(&models.PaymentReceiptModel{}), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// NextReceiptNumber returns the next sequential receipt number
func (r *GormReceiptRepository) NextReceiptNumber(ctx context.Context) (int64, error) {
	var max int64
	if err := r.db.WithContext(ctx).
		Model(&models.PaymentReceiptModel{}).
		Select("COALESCE(MAX(receipt_number), 0)").
		Scan(&max).Error; err != nil {
		return 0, err
	}
	return max + 1, nil
}

// SumInRange sums receipt amounts for one money direction in [from, to]
func (r *GormReceiptRepository) SumInRange(ctx context.Context, direction ledger.ReceiptDirection, from, to time.Time) (decimal.Decimal, error) {
	var result struct {
		Total decimal.Decimal
	}
	if err := r.db.WithContext(ctx).
		Model(&models.PaymentReceiptModel{}).
		Select("COALESCE(SUM(total_amount), 0) as total").
		Where("direction = ? AND paid_at >= ? AND paid_at <= ?", direction, from, to).
		Scan(&result).Error; err != nil {
		return decimal.Zero, err
	}
	return result.Total, nil
}

func applyReceiptFilter(query *gorm.DB, filter ledger.ReceiptFilter) *gorm.DB {
	if filter.Search != "" {
		query = query.Where("party_name ILIKE ?", "%"+filter.Search+"%")
	}
	if filter.PartyID != nil {
		query = query.Where("party_id = ?", *filter.PartyID)
	}
	if filter.Direction != nil {
		query = query.Where("direction = ?", *filter.Direction)
	}
	if filter.FromDate != nil {
		query = query.Where("paid_at >= ?", *filter.FromDate)
	}
	if filter.ToDate != nil {
		query = query.Where("paid_at <= ?", *filter.ToDate)
	}
	return query
}

// Ensure GormReceiptRepository implements ReceiptRepository
var _ ledger.ReceiptRepository = (*GormReceiptRepository)(nil)
