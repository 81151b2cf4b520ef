package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	appledger "github.com/hotelops/backend/internal/application/ledger"
	"github.com/hotelops/backend/internal/domain/ledger"
	"github.com/hotelops/backend/internal/interfaces/http/dto"
)

// IdempotencyKeyHeader carries the client's replay token for payment requests
const IdempotencyKeyHeader = "Idempotency-Key"

// PaymentHandler handles payment recording and history endpoints
type PaymentHandler struct {
	BaseHandler
	paymentService *appledger.PaymentService
	queryService   *appledger.QueryService
}

// NewPaymentHandler creates a new PaymentHandler
func NewPaymentHandler(paymentService *appledger.PaymentService, queryService *appledger.QueryService) *PaymentHandler {
	return &PaymentHandler{
		paymentService: paymentService,
		queryService:   queryService,
	}
}

// RecordPaymentRequest is the payload for recording a payment
type RecordPaymentRequest struct {
	PartyID       string  `json:"party_id" binding:"required,uuid"`
	Amount        string  `json:"amount" binding:"required"`
	PaymentMode   string  `json:"payment_mode" binding:"required"`
	BillNumbers   []int64 `json:"bill_numbers"`
	BankReference string  `json:"bank_reference"`
	Remarks       string  `json:"remarks"`
	PaidAt        string  `json:"paid_at"` // RFC 3339; empty means now
}

// RecordPayment handles POST /api/v1/payments
func (h *PaymentHandler) RecordPayment(c *gin.Context) {
	var req RecordPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Error(c, 400, dto.ErrCodeInvalidJSON, "Invalid request body: "+err.Error())
		return
	}

	partyID, err := uuid.Parse(req.PartyID)
	if err != nil {
		h.Error(c, 400, dto.ErrCodeInvalidInput, "Invalid party_id")
		return
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		h.Error(c, 400, dto.ErrCodeInvalidAmount, "Invalid amount: "+req.Amount)
		return
	}

	var paidAt *time.Time
	if req.PaidAt != "" {
		t, err := time.Parse(time.RFC3339, req.PaidAt)
		if err != nil {
			h.Error(c, 400, dto.ErrCodeInvalidInput, "Invalid paid_at, expected RFC 3339")
			return
		}
		paidAt = &t
	}

	result, err := h.paymentService.RecordPayment(c.Request.Context(), appledger.RecordPaymentRequest{
		PartyID:        partyID,
		Amount:         amount,
		PaymentMode:    ledger.PaymentMode(req.PaymentMode),
		BillNumbers:    req.BillNumbers,
		BankReference:  req.BankReference,
		Remarks:        req.Remarks,
		PaidAt:         paidAt,
		IdempotencyKey: c.GetHeader(IdempotencyKeyHeader),
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	if result.Replayed {
		h.Success(c, result)
		return
	}
	h.Created(c, result)
}

// PaymentHistoryQuery is the query string for listing payments
type PaymentHistoryQuery struct {
	dto.ListRequest
	PartyID   string `form:"party_id" binding:"omitempty,uuid"`
	Direction string `form:"direction" binding:"omitempty,oneof=PAYMENT RECEIPT"`
	From      string `form:"from"` // RFC 3339
	To        string `form:"to"`   // RFC 3339
}

// ListPayments handles GET /api/v1/payments
func (h *PaymentHandler) ListPayments(c *gin.Context) {
	query := PaymentHistoryQuery{ListRequest: dto.DefaultListRequest()}
	if err := c.ShouldBindQuery(&query); err != nil {
		h.Error(c, 400, dto.ErrCodeInvalidInput, "Invalid query parameters: "+err.Error())
		return
	}

	req := appledger.PaymentHistoryRequest{}
	req.Page = query.Page
	req.PageSize = query.PageSize
	req.OrderBy = query.OrderBy
	req.OrderDir = query.OrderDir
	req.Search = query.Search

	if query.PartyID != "" {
		id, err := uuid.Parse(query.PartyID)
		if err != nil {
			h.Error(c, 400, dto.ErrCodeInvalidInput, "Invalid party_id")
			return
		}
		req.PartyID = &id
	}
	if query.Direction != "" {
		direction := ledger.ReceiptDirection(query.Direction)
		req.Direction = &direction
	}
	var ok bool
	if req.FromDate, ok = h.parseTimeParam(c, query.From, "from", false); !ok {
		return
	}
	if req.ToDate, ok = h.parseTimeParam(c, query.To, "to", true); !ok {
		return
	}

	page, err := h.queryService.GetPaymentHistory(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, page.Items, page.Total, page.Page, page.PageSize)
}

// PaymentTotalsQuery is the query string for range totals
type PaymentTotalsQuery struct {
	From string `form:"from" binding:"required"`
	To   string `form:"to" binding:"required"`
}

// GetPaymentTotals handles GET /api/v1/payments/totals
func (h *PaymentHandler) GetPaymentTotals(c *gin.Context) {
	var query PaymentTotalsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		h.Error(c, 400, dto.ErrCodeInvalidInput, "Both from and to are required")
		return
	}

	from, ok := h.parseTimeParam(c, query.From, "from", false)
	if !ok {
		return
	}
	to, ok := h.parseTimeParam(c, query.To, "to", true)
	if !ok {
		return
	}

	totals, err := h.queryService.GetPaymentTotals(c.Request.Context(), *from, *to)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, totals)
}

// parseTimeParam accepts RFC 3339 timestamps or bare dates. Bare dates on
// a range end are moved to the last instant of that day so inclusive
// filters cover the whole day and from=to=<today> still matches today.
func (h *PaymentHandler) parseTimeParam(c *gin.Context, value, name string, rangeEnd bool) (*time.Time, bool) {
	if value == "" {
		return nil, true
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		t, err = time.Parse("2006-01-02", value)
		if err != nil {
			h.Error(c, 400, dto.ErrCodeInvalidInput, "Invalid "+name+", expected RFC 3339 or YYYY-MM-DD")
			return nil, false
		}
		if rangeEnd {
			t = t.AddDate(0, 0, 1).Add(-time.Nanosecond)
		}
	}
	return &t, true
}
