package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	appledger "github.com/hotelops/backend/internal/application/ledger"
	"github.com/hotelops/backend/internal/domain/ledger"
	"github.com/hotelops/backend/internal/domain/party"
	"github.com/hotelops/backend/internal/domain/shared"
	"github.com/hotelops/backend/internal/domain/shared/valueobject"
	"github.com/hotelops/backend/internal/interfaces/http/dto"
)

// MockBillRepository implements ledger.BillRepository for testing
type MockBillRepository struct {
	mock.Mock
}

func (m *MockBillRepository) FindByNumber(ctx context.Context, billNumber int64) (*ledger.Bill, error) {
	args := m.Called(ctx, billNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledger.Bill), args.Error(1)
}

func (m *MockBillRepository) FindByNumbers(ctx context.Context, billNumbers []int64) ([]ledger.Bill, error) {
	args := m.Called(ctx, billNumbers)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]ledger.Bill), args.Error(1)
}

func (m *MockBillRepository) FindOutstandingByParty(ctx context.Context, partyID uuid.UUID) ([]ledger.Bill, error) {
	args := m.Called(ctx, partyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]ledger.Bill), args.Error(1)
}

func (m *MockBillRepository) FindAll(ctx context.Context, filter ledger.BillFilter) ([]ledger.Bill, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]ledger.Bill), args.Error(1)
}

func (m *MockBillRepository) Count(ctx context.Context, filter ledger.BillFilter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockBillRepository) Save(ctx context.Context, bill *ledger.Bill) error {
	args := m.Called(ctx, bill)
	return args.Error(0)
}

func (m *MockBillRepository) SaveWithLock(ctx context.Context, bill *ledger.Bill) error {
	args := m.Called(ctx, bill)
	return args.Error(0)
}

func (m *MockBillRepository) NextBillNumber(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockBillRepository) SumOutstandingByParty(ctx context.Context, partyID uuid.UUID) (decimal.Decimal, error) {
	args := m.Called(ctx, partyID)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockBillRepository) SumPaidByParty(ctx context.Context, partyID uuid.UUID) (decimal.Decimal, error) {
	args := m.Called(ctx, partyID)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

// MockReceiptRepository implements ledger.ReceiptRepository for testing
type MockReceiptRepository struct {
	mock.Mock
}

func (m *MockReceiptRepository) FindByID(ctx context.Context, id uuid.UUID) (*ledger.PaymentReceipt, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledger.PaymentReceipt), args.Error(1)
}

func (m *MockReceiptRepository) FindByIdempotencyKey(ctx context.Context, key string) (*ledger.PaymentReceipt, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledger.PaymentReceipt), args.Error(1)
}

func (m *MockReceiptRepository) FindAll(ctx context.Context, filter ledger.ReceiptFilter) ([]ledger.PaymentReceipt, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]ledger.PaymentReceipt), args.Error(1)
}

func (m *MockReceiptRepository) Save(ctx context.Context, receipt *ledger.PaymentReceipt) error {
	args := m.Called(ctx, receipt)
	return args.Error(0)
}

func (m *MockReceiptRepository) NextReceiptNumber(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockReceiptRepository) Count(ctx context.Context, filter ledger.ReceiptFilter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockReceiptRepository) SumInRange(ctx context.Context, direction ledger.ReceiptDirection, from, to time.Time) (decimal.Decimal, error) {
	args := m.Called(ctx, direction, from, to)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

// MockPartyRepository implements party.Repository for testing
type MockPartyRepository struct {
	mock.Mock
}

func (m *MockPartyRepository) FindByID(ctx context.Context, id uuid.UUID) (*party.Party, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*party.Party), args.Error(1)
}

// stubUnitOfWork runs the function directly against the given repositories
type stubUnitOfWork struct {
	repos ledger.Repositories
}

func (u *stubUnitOfWork) Execute(ctx context.Context, fn func(ctx context.Context, repos ledger.Repositories) error) error {
	return fn(ctx, u.repos)
}

type billHandlerFixture struct {
	handler  *BillHandler
	bills    *MockBillRepository
	receipts *MockReceiptRepository
	parties  *MockPartyRepository
}

func newBillHandlerFixture() *billHandlerFixture {
	bills := new(MockBillRepository)
	receipts := new(MockReceiptRepository)
	parties := new(MockPartyRepository)
	uow := &stubUnitOfWork{repos: ledger.Repositories{Bills: bills, Receipts: receipts}}

	billService := appledger.NewBillService(uow, parties)
	queryService := appledger.NewQueryService(uow, parties)

	return &billHandlerFixture{
		handler:  NewBillHandler(billService, queryService),
		bills:    bills,
		receipts: receipts,
		parties:  parties,
	}
}

func performJSON(t *testing.T, handlerFn gin.HandlerFunc, method, path string, body any, params gin.Params) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(method, path, reader)
	c.Request.Header.Set("Content-Type", "application/json")
	c.Params = params

	handlerFn(c)
	return w
}

func TestBillHandler_CreateBill(t *testing.T) {
	t.Run("creates bill and returns 201", func(t *testing.T) {
		f := newBillHandlerFixture()
		supplierID := uuid.New()

		f.parties.On("FindByID", mock.Anything, supplierID).
			Return(&party.Party{ID: supplierID, DisplayName: "Shree Traders", Type: party.TypeSupplier}, nil)
		f.bills.On("NextBillNumber", mock.Anything).Return(int64(7), nil)
		f.bills.On("Save", mock.Anything, mock.AnythingOfType("*ledger.Bill")).Return(nil)

		w := performJSON(t, f.handler.CreateBill, http.MethodPost, "/api/v1/bills", CreateBillRequest{
			PartyID:   supplierID.String(),
			NetAmount: "1250.50",
			Remarks:   "vegetable supply",
		}, nil)

		assert.Equal(t, http.StatusCreated, w.Code)

		var resp dto.Response
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.True(t, resp.Success)

		data := resp.Data.(map[string]interface{})
		assert.Equal(t, float64(7), data["bill_number"])
		assert.Equal(t, "PENDING", data["status"])

		f.bills.AssertExpectations(t)
		f.parties.AssertExpectations(t)
	})

	t.Run("redraws bill number taken by a concurrent entry", func(t *testing.T) {
		f := newBillHandlerFixture()
		supplierID := uuid.New()

		f.parties.On("FindByID", mock.Anything, supplierID).
			Return(&party.Party{ID: supplierID, DisplayName: "Shree Traders", Type: party.TypeSupplier}, nil)
		f.bills.On("NextBillNumber", mock.Anything).Return(int64(7), nil).Once()
		f.bills.On("NextBillNumber", mock.Anything).Return(int64(8), nil).Once()
		f.bills.On("Save", mock.Anything, mock.AnythingOfType("*ledger.Bill")).
			Return(shared.ErrConcurrencyConflict).Once()
		f.bills.On("Save", mock.Anything, mock.AnythingOfType("*ledger.Bill")).
			Return(nil).Once()

		w := performJSON(t, f.handler.CreateBill, http.MethodPost, "/api/v1/bills", CreateBillRequest{
			PartyID:   supplierID.String(),
			NetAmount: "300",
		}, nil)

		assert.Equal(t, http.StatusCreated, w.Code)

		var resp dto.Response
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		data := resp.Data.(map[string]interface{})
		assert.Equal(t, float64(8), data["bill_number"])

		f.bills.AssertExpectations(t)
	})

	t.Run("rejects malformed body", func(t *testing.T) {
		f := newBillHandlerFixture()

		w := performJSON(t, f.handler.CreateBill, http.MethodPost, "/api/v1/bills", map[string]any{
			"party_id": "not-a-uuid",
		}, nil)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("rejects non-numeric amount", func(t *testing.T) {
		f := newBillHandlerFixture()

		w := performJSON(t, f.handler.CreateBill, http.MethodPost, "/api/v1/bills", CreateBillRequest{
			PartyID:   uuid.NewString(),
			NetAmount: "abc",
		}, nil)

		assert.Equal(t, http.StatusBadRequest, w.Code)

		var resp dto.Response
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, dto.ErrCodeInvalidAmount, resp.Error.Code)
	})

	t.Run("maps unknown party to 404", func(t *testing.T) {
		f := newBillHandlerFixture()
		partyID := uuid.New()

		f.parties.On("FindByID", mock.Anything, partyID).Return(nil, shared.ErrNotFound)

		w := performJSON(t, f.handler.CreateBill, http.MethodPost, "/api/v1/bills", CreateBillRequest{
			PartyID:   partyID.String(),
			NetAmount: "100",
		}, nil)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestBillHandler_GetBill(t *testing.T) {
	t.Run("returns bill by number", func(t *testing.T) {
		f := newBillHandlerFixture()

		bill, err := ledger.NewBill(42, uuid.New(), party.TypeSupplier, "Shree Traders",
			valueobject.NewMoneyINR(decimal.NewFromInt(500)), time.Now(), false)
		require.NoError(t, err)

		f.bills.On("FindByNumber", mock.Anything, int64(42)).Return(bill, nil)

		w := performJSON(t, f.handler.GetBill, http.MethodGet, "/api/v1/bills/42", nil,
			gin.Params{{Key: "number", Value: "42"}})

		assert.Equal(t, http.StatusOK, w.Code)

		var resp dto.Response
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		data := resp.Data.(map[string]interface{})
		assert.Equal(t, float64(42), data["bill_number"])
	})

	t.Run("rejects non-numeric bill number", func(t *testing.T) {
		f := newBillHandlerFixture()

		w := performJSON(t, f.handler.GetBill, http.MethodGet, "/api/v1/bills/abc", nil,
			gin.Params{{Key: "number", Value: "abc"}})

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("maps missing bill to 404", func(t *testing.T) {
		f := newBillHandlerFixture()

		f.bills.On("FindByNumber", mock.Anything, int64(99)).Return(nil, shared.ErrNotFound)

		w := performJSON(t, f.handler.GetBill, http.MethodGet, "/api/v1/bills/99", nil,
			gin.Params{{Key: "number", Value: "99"}})

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestBillHandler_ListBills(t *testing.T) {
	t.Run("returns page with meta", func(t *testing.T) {
		f := newBillHandlerFixture()

		bill, err := ledger.NewBill(1, uuid.New(), party.TypeCustomer, "Hotel Annapurna",
			valueobject.NewMoneyINR(decimal.NewFromInt(300)), time.Now(), false)
		require.NoError(t, err)

		f.bills.On("FindAll", mock.Anything, mock.AnythingOfType("ledger.BillFilter")).
			Return([]ledger.Bill{*bill}, nil)
		f.bills.On("Count", mock.Anything, mock.AnythingOfType("ledger.BillFilter")).
			Return(int64(1), nil)

		w := performJSON(t, f.handler.ListBills, http.MethodGet, "/api/v1/bills?page=1&page_size=20", nil, nil)

		assert.Equal(t, http.StatusOK, w.Code)

		var resp dto.Response
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.True(t, resp.Success)
		require.NotNil(t, resp.Meta)
		assert.Equal(t, int64(1), resp.Meta.Total)
	})

	t.Run("bare date range covers the whole end day", func(t *testing.T) {
		f := newBillHandlerFixture()

		dayStart := time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC)
		dayEnd := time.Date(2026, 8, 30, 23, 59, 59, 999999999, time.UTC)
		matchRange := mock.MatchedBy(func(filter ledger.BillFilter) bool {
			return filter.FromDate != nil && filter.FromDate.Equal(dayStart) &&
				filter.ToDate != nil && filter.ToDate.Equal(dayEnd)
		})
		f.bills.On("FindAll", mock.Anything, matchRange).Return([]ledger.Bill{}, nil)
		f.bills.On("Count", mock.Anything, matchRange).Return(int64(0), nil)

		w := performJSON(t, f.handler.ListBills, http.MethodGet,
			"/api/v1/bills?from=2026-08-30&to=2026-08-30", nil, nil)

		assert.Equal(t, http.StatusOK, w.Code)
		f.bills.AssertExpectations(t)
	})

	t.Run("rejects invalid status filter", func(t *testing.T) {
		f := newBillHandlerFixture()

		w := performJSON(t, f.handler.ListBills, http.MethodGet, "/api/v1/bills?status=SHIPPED", nil, nil)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("rejects malformed date filter", func(t *testing.T) {
		f := newBillHandlerFixture()

		w := performJSON(t, f.handler.ListBills, http.MethodGet, "/api/v1/bills?from=yesterday", nil, nil)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestBillHandler_GetOutstanding(t *testing.T) {
	t.Run("returns outstanding statement", func(t *testing.T) {
		f := newBillHandlerFixture()
		supplierID := uuid.New()

		bill, err := ledger.NewBill(3, supplierID, party.TypeSupplier, "Shree Traders",
			valueobject.NewMoneyINR(decimal.NewFromInt(200)), time.Now(), false)
		require.NoError(t, err)

		f.parties.On("FindByID", mock.Anything, supplierID).
			Return(&party.Party{ID: supplierID, DisplayName: "Shree Traders", Type: party.TypeSupplier}, nil)
		f.bills.On("FindOutstandingByParty", mock.Anything, supplierID).
			Return([]ledger.Bill{*bill}, nil)
		f.bills.On("SumOutstandingByParty", mock.Anything, supplierID).
			Return(decimal.NewFromInt(200), nil)
		f.bills.On("SumPaidByParty", mock.Anything, supplierID).
			Return(decimal.Zero, nil)

		w := performJSON(t, f.handler.GetOutstanding, http.MethodGet, "/api/v1/parties/x/outstanding", nil,
			gin.Params{{Key: "id", Value: supplierID.String()}})

		assert.Equal(t, http.StatusOK, w.Code)

		var resp dto.Response
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		data := resp.Data.(map[string]interface{})
		assert.Equal(t, "200", data["total_outstanding"])
	})

	t.Run("rejects invalid party id", func(t *testing.T) {
		f := newBillHandlerFixture()

		w := performJSON(t, f.handler.GetOutstanding, http.MethodGet, "/api/v1/parties/x/outstanding", nil,
			gin.Params{{Key: "id", Value: "nope"}})

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
