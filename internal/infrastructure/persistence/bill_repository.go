package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/hotelops/backend/internal/domain/ledger"
	"github.com/hotelops/backend/internal/domain/shared"
	"github.com/hotelops/backend/internal/infrastructure/persistence/models"
)

// GormBillRepository implements ledger.BillRepository using GORM
type GormBillRepository struct {
	db *gorm.DB
}

// NewGormBillRepository creates a new GormBillRepository
func NewGormBillRepository(db *gorm.DB) *GormBillRepository {
	return &GormBillRepository{db: db}
}

// FindByNumber finds a bill by its bill number
func (r *GormBillRepository) FindByNumber(ctx context.Context, billNumber int64) (*ledger.Bill, error) {
	var model models.BillModel
	if err := r.db.WithContext(ctx).
		First(&model, "bill_number = ?", billNumber).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByNumbers finds the bills matching the given numbers, in ascending
// bill-number order. Missing numbers are simply absent from the result.
func (r *GormBillRepository) FindByNumbers(ctx context.Context, billNumbers []int64) ([]ledger.Bill, error) {
	var billModels []models.BillModel
	if err := r.db.WithContext(ctx).
		Where("bill_number IN ?", billNumbers).
		Order("bill_number ASC").
		Find(&billModels).Error; err != nil {
		return nil, err
	}
	return toDomainBills(billModels), nil
}

// FindOutstandingByParty finds the party's unsettled bills in
// bill-number order
func (r *GormBillRepository) FindOutstandingByParty(ctx context.Context, partyID uuid.UUID) ([]ledger.Bill, error) {
	var billModels []models.BillModel
	if err := r.db.WithContext(ctx).
		Where("party_id = ? AND status IN ?", partyID, settleableStatuses()).
		Order("bill_number ASC").
		Find(&billModels).Error; err != nil {
		return nil, err
	}
	return toDomainBills(billModels), nil
}

// FindAll finds bills matching the filter
func (r *GormBillRepository) FindAll(ctx context.Context, filter ledger.BillFilter) ([]ledger.Bill, error) {
	var billModels []models.BillModel
	query := r.applyBillFilter(r.db.WithContext(ctx).Model(&models.BillModel{}), filter)

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
		query = query.Order("bill_number DESC")
	}

	if err := query.Find(&billModels).Error; err != nil {
		return nil, err
	}
	return toDomainBills(billModels), nil
}

// Count counts bills matching the filter
func (r *GormBillRepository) Count(ctx context.Context, filter ledger.BillFilter) (int64, error) {
	var count int64
	query := r.applyBillFilter(r.db.WithContext(ctx).Model(&models.BillModel{}), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Save inserts a new bill. Bill mutations go through SaveWithLock, so
// this is insert-only. A unique collision on the bill number means a
// concurrent commit drew the same number; it comes back as a conflict
// sentinel so the caller can redraw and retry.
func (r *GormBillRepository) Save(ctx context.Context, bill *ledger.Bill) error {
	model := models.BillModelFromDomain(bill)
	return translateSaveError(r.db.WithContext(ctx).Create(model).Error)
}

// SaveWithLock saves a bill only if its stored version still matches the
// version it was read at. Zero affected rows means another writer
// committed in between.
func (r *GormBillRepository) SaveWithLock(ctx context.Context, bill *ledger.Bill) error {
	model := models.BillModelFromDomain(bill)
	result := r.db.WithContext(ctx).
		Model(model).
		Where("id = ? AND version = ?", bill.ID, bill.Version-1).
		Updates(model)

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	return nil
}

// NextBillNumber returns the next sequential bill number
func (r *GormBillRepository) NextBillNumber(ctx context.Context) (int64, error) {
	var max int64
	if err := r.db.WithContext(ctx).
		Model(&models.BillModel{}).
		Select("COALESCE(MAX(bill_number), 0)").
		Scan(&max).Error; err != nil {
		return 0, err
	}
	return max + 1, nil
}

// SumOutstandingByParty calculates the party's total unsettled balance
func (r *GormBillRepository) SumOutstandingByParty(ctx context.Context, partyID uuid.UUID) (decimal.Decimal, error) {
	return r.sumByParty(ctx, partyID, "balance_amount")
}

// SumPaidByParty calculates the total already paid against the party's bills
func (r *GormBillRepository) SumPaidByParty(ctx context.Context, partyID uuid.UUID) (decimal.Decimal, error) {
	return r.sumByParty(ctx, partyID, "paid_amount")
}

func (r *GormBillRepository) sumByParty(ctx context.Context, partyID uuid.UUID, column string) (decimal.Decimal, error) {
	var result struct {
		Total decimal.Decimal
	}
	if err := r.db.WithContext(ctx).
		Model(&models.BillModel{}).
		Select("COALESCE(SUM("+column+"), 0) as total").
		Where("party_id = ?", partyID).
		Scan(&result).Error; err != nil {
		return decimal.Zero, err
	}
	return result.Total, nil
}

func (r *GormBillRepository) applyBillFilter(query *gorm.DB, filter ledger.BillFilter) *gorm.DB {
	if filter.Search != "" {
		query = query.Where("party_name ILIKE ?", "%"+filter.Search+"%")
	}
	if filter.PartyID != nil {
		query = query.Where("party_id = ?", *filter.PartyID)
	}
	if filter.PartyType != nil {
		query = query.Where("party_type = ?", *filter.PartyType)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.FromDate != nil {
		query = query.Where("bill_date >= ?", *filter.FromDate)
	}
	if filter.ToDate != nil {
		query = query.Where("bill_date <= ?", *filter.ToDate)
	}
	if filter.OutstandingOnly {
		query = query.Where("status IN ?", settleableStatuses())
	}
	return query
}

func toDomainBills(billModels []models.BillModel) []ledger.Bill {
	bills := make([]ledger.Bill, len(billModels))
	for i := range billModels {
		bills[i] = *billModels[i].ToDomain()
	}
	return bills
}

func settleableStatuses() []ledger.BillStatus {
	return []ledger.BillStatus{
		ledger.BillStatusPending,
		ledger.BillStatusPartiallyPaid,
		ledger.BillStatusCredit,
	}
}

// Ensure GormBillRepository implements BillRepository
var _ ledger.BillRepository = (*GormBillRepository)(nil)
