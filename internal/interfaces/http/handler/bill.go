package handler

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	appledger "github.com/hotelops/backend/internal/application/ledger"
	"github.com/hotelops/backend/internal/domain/ledger"
	"github.com/hotelops/backend/internal/domain/party"
	"github.com/hotelops/backend/internal/interfaces/http/dto"
)

// BillHandler handles bill and party reconciliation endpoints
type BillHandler struct {
	BaseHandler
	billService  *appledger.BillService
	queryService *appledger.QueryService
}

// NewBillHandler creates a new BillHandler
func NewBillHandler(billService *appledger.BillService, queryService *appledger.QueryService) *BillHandler {
	return &BillHandler{
		billService:  billService,
		queryService: queryService,
	}
}

// CreateBillRequest is the payload for registering a bill
type CreateBillRequest struct {
	PartyID    string `json:"party_id" binding:"required,uuid"`
	NetAmount  string `json:"net_amount" binding:"required"`
	BillDate   string `json:"bill_date"` // RFC 3339 or YYYY-MM-DD; empty means now
	MarkCredit bool   `json:"mark_credit"`
	Remarks    string `json:"remarks"`
}

// CreateBill handles POST /api/v1/bills
func (h *BillHandler) CreateBill(c *gin.Context) {
	var req CreateBillRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Error(c, 400, dto.ErrCodeInvalidJSON, "Invalid request body: "+err.Error())
		return
	}

	partyID, err := uuid.Parse(req.PartyID)
	if err != nil {
		h.Error(c, 400, dto.ErrCodeInvalidInput, "Invalid party_id")
		return
	}

	netAmount, err := decimal.NewFromString(req.NetAmount)
	if err != nil {
		h.Error(c, 400, dto.ErrCodeInvalidAmount, "Invalid net_amount: "+req.NetAmount)
		return
	}

	var billDate time.Time
	if req.BillDate != "" {
		parsed, ok := h.parseDateParam(c, req.BillDate, "bill_date", false)
		if !ok {
			return
		}
		billDate = *parsed
	}

	bill, err := h.billService.CreateBill(c.Request.Context(), appledger.CreateBillRequest{
		PartyID:    partyID,
		NetAmount:  netAmount,
		BillDate:   billDate,
		MarkCredit: req.MarkCredit,
		Remarks:    req.Remarks,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, bill)
}

// GetBill handles GET /api/v1/bills/:number
func (h *BillHandler) GetBill(c *gin.Context) {
	billNumber, err := strconv.ParseInt(c.Param("number"), 10, 64)
	if err != nil {
		h.Error(c, 400, dto.ErrCodeInvalidInput, "Invalid bill number")
		return
	}

	bill, err := h.billService.GetBill(c.Request.Context(), billNumber)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, bill)
}

// BillListQuery is the query string for listing bills
type BillListQuery struct {
	dto.ListRequest
	PartyID         string `form:"party_id" binding:"omitempty,uuid"`
	PartyType       string `form:"party_type" binding:"omitempty,oneof=SUPPLIER CUSTOMER"`
	Status          string `form:"status" binding:"omitempty,oneof=PENDING PARTIALLY_PAID PAID CREDIT"`
	From            string `form:"from"`
	To              string `form:"to"`
	OutstandingOnly bool   `form:"outstanding_only"`
}

// ListBills handles GET /api/v1/bills
func (h *BillHandler) ListBills(c *gin.Context) {
	query := BillListQuery{ListRequest: dto.DefaultListRequest()}
	if err := c.ShouldBindQuery(&query); err != nil {
		h.Error(c, 400, dto.ErrCodeInvalidInput, "Invalid query parameters: "+err.Error())
		return
	}

	filter := ledger.BillFilter{OutstandingOnly: query.OutstandingOnly}
	filter.Page = query.Page
	filter.PageSize = query.PageSize
	filter.OrderBy = query.OrderBy
	filter.OrderDir = query.OrderDir
	filter.Search = query.Search

	if query.PartyID != "" {
		id, err := uuid.Parse(query.PartyID)
		if err != nil {
			h.Error(c, 400, dto.ErrCodeInvalidInput, "Invalid party_id")
			return
		}
		filter.PartyID = &id
	}
	if query.PartyType != "" {
		partyType := party.Type(query.PartyType)
		filter.PartyType = &partyType
	}
	if query.Status != "" {
		status := ledger.BillStatus(query.Status)
		filter.Status = &status
	}
	var ok bool
	if filter.FromDate, ok = h.parseDateParam(c, query.From, "from", false); !ok {
		return
	}
	if filter.ToDate, ok = h.parseDateParam(c, query.To, "to", true); !ok {
		return
	}

	page, err := h.billService.ListBills(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, page.Items, page.Total, page.Page, page.PageSize)
}

// GetOutstanding handles GET /api/v1/parties/:id/outstanding
func (h *BillHandler) GetOutstanding(c *gin.Context) {
	partyID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, 400, dto.ErrCodeInvalidInput, "Invalid party id")
		return
	}

	statement, err := h.queryService.GetOutstanding(c.Request.Context(), partyID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, statement)
}

// GetPartySummary handles GET /api/v1/parties/:id/summary
func (h *BillHandler) GetPartySummary(c *gin.Context) {
	partyID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, 400, dto.ErrCodeInvalidInput, "Invalid party id")
		return
	}

	summary, err := h.queryService.GetPartySummary(c.Request.Context(), partyID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, summary)
}

// parseDateParam accepts RFC 3339 timestamps or bare dates. Bare dates on a
// range end are moved to the last instant of that day so inclusive filters
// cover the whole day.
func (h *BillHandler) parseDateParam(c *gin.Context, value, name string, rangeEnd bool) (*time.Time, bool) {
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
