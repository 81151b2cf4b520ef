package persistence

import (
	"context"

	"gorm.io/gorm"

	"github.com/hotelops/backend/internal/domain/ledger"
)

// GormUnitOfWork implements ledger.UnitOfWork on a gorm transaction.
// Repositories handed to the callback are scoped to the transaction, so
// everything the callback writes commits or rolls back together.
type GormUnitOfWork struct {
	db *gorm.DB
}

// NewGormUnitOfWork creates a new GormUnitOfWork
func NewGormUnitOfWork(db *gorm.DB) *GormUnitOfWork {
	return &GormUnitOfWork{db: db}
}

// Execute runs fn within a database transaction
func (u *GormUnitOfWork) Execute(ctx context.Context, fn func(ctx context.Context, repos ledger.Repositories) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repos := ledger.Repositories{
			Bills:    NewGormBillRepository(tx),
			Receipts: NewGormReceiptRepository(tx),
		}
		return fn(ctx, repos)
	})
}

// Ensure GormUnitOfWork implements UnitOfWork
var _ ledger.UnitOfWork = (*GormUnitOfWork)(nil)
