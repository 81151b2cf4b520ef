package ledger

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hotelops/backend/internal/domain/ledger"
	"github.com/hotelops/backend/internal/domain/shared"
)

func TestBillService_CreateBill(t *testing.T) {
	ctx := context.Background()
	uow := newFakeUnitOfWork()
	partyRepo := new(MockPartyRepository)
	service := NewBillService(uow, partyRepo)

	p := testSupplier()
	partyRepo.On("FindByID", ctx, p.ID).Return(p, nil)

	bill, err := service.CreateBill(ctx, CreateBillRequest{
		PartyID:   p.ID,
		NetAmount: decimal.NewFromFloat(1250.50),
		BillDate:  time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC),
		Remarks:   "vegetables march week 2",
	})

	require.NoError(t, err)
	assert.Equal(t, int64(1), bill.BillNumber)
	assert.Equal(t, ledger.BillStatusPending, bill.Status)
	assert.Equal(t, "1250.5", bill.NetAmount.String())
	assert.Equal(t, bill.NetAmount.String(), bill.BalanceAmount.String())
	assert.True(t, bill.PaidAmount.IsZero())
	assert.Equal(t, "vegetables march week 2", bill.Remarks)

	// Numbers are sequential
	second, err := service.CreateBill(ctx, CreateBillRequest{
		PartyID:   p.ID,
		NetAmount: decimal.NewFromInt(800),
	})
	require.NoError(t, err)
	assert.Equal(t, int64(2), second.BillNumber)

	partyRepo.AssertExpectations(t)
}

func TestBillService_CreateBill_CreditSalesBill(t *testing.T) {
	ctx := context.Background()
	uow := newFakeUnitOfWork()
	partyRepo := new(MockPartyRepository)
	service := NewBillService(uow, partyRepo)

	customer := testCustomer()
	partyRepo.On("FindByID", ctx, customer.ID).Return(customer, nil)

	bill, err := service.CreateBill(ctx, CreateBillRequest{
		PartyID:    customer.ID,
		NetAmount:  decimal.NewFromInt(4500),
		MarkCredit: true,
	})

	require.NoError(t, err)
	assert.Equal(t, ledger.BillStatusCredit, bill.Status)
	assert.True(t, bill.Status.CanApplyPayment())
}

func TestBillService_CreateBill_CreditRejectedForSupplier(t *testing.T) {
	ctx := context.Background()
	partyRepo := new(MockPartyRepository)
	service := NewBillService(newFakeUnitOfWork(), partyRepo)

	supplier := testSupplier()
	partyRepo.On("FindByID", ctx, supplier.ID).Return(supplier, nil)

	_, err := service.CreateBill(ctx, CreateBillRequest{
		PartyID:    supplier.ID,
		NetAmount:  decimal.NewFromInt(100),
		MarkCredit: true,
	})
	assert.Equal(t, "INVALID_STATUS", domainErrCode(t, err))
}

func TestBillService_CreateBill_Validation(t *testing.T) {
	ctx := context.Background()
	partyRepo := new(MockPartyRepository)
	service := NewBillService(newFakeUnitOfWork(), partyRepo)

	_, err := service.CreateBill(ctx, CreateBillRequest{
		PartyID:   uuid.New(),
		NetAmount: decimal.NewFromInt(-5),
	})
	assert.Equal(t, "INVALID_AMOUNT", domainErrCode(t, err))

	unknownID := uuid.New()
	partyRepo.On("FindByID", ctx, unknownID).Return(nil, shared.ErrNotFound)
	_, err = service.CreateBill(ctx, CreateBillRequest{
		PartyID:   unknownID,
		NetAmount: decimal.NewFromInt(100),
	})
	assert.Equal(t, "PARTY_NOT_FOUND", domainErrCode(t, err))
}

func TestBillService_GetBill(t *testing.T) {
	ctx := context.Background()
	uow := newFakeUnitOfWork()
	service := NewBillService(uow, new(MockPartyRepository))

	p := testSupplier()
	addBill(t, uow.bills, 42, p, 999)

	bill, err := service.GetBill(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, int64(42), bill.BillNumber)
	assert.Equal(t, p.DisplayName, bill.PartyName)

	_, err = service.GetBill(ctx, 43)
	assert.Equal(t, "BILL_NOT_FOUND", domainErrCode(t, err))
}

func TestBillService_ListBills(t *testing.T) {
	ctx := context.Background()
	uow := newFakeUnitOfWork()
	service := NewBillService(uow, new(MockPartyRepository))

	p := testSupplier()
	addBill(t, uow.bills, 1, p, 100)
	addBill(t, uow.bills, 2, p, 200)
	addBill(t, uow.bills, 3, p, 300)

	page, err := service.ListBills(ctx, ledger.BillFilter{
		Filter: shared.Filter{Page: 1, PageSize: 10},
	})

	require.NoError(t, err)
	assert.Equal(t, int64(3), page.Total)
	assert.Len(t, page.Items, 3)
	assert.Equal(t, 1, page.Page)
}
