package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/twinside/backend/internal/dto"
	"github.com/twinside/backend/internal/repository"
	"github.com/twinside/backend/internal/service"
)

// FinanceHandler handles balances, withdraws and the ledger
type FinanceHandler struct {
	financeService service.FinanceService
	logger         *zap.Logger
}

// NewFinanceHandler creates a new finance handler
func NewFinanceHandler(financeService service.FinanceService, logger *zap.Logger) *FinanceHandler {
	return &FinanceHandler{financeService: financeService, logger: logger}
}

// RequestWithdraw handles POST /billing/withdraw (user session)
func (h *FinanceHandler) RequestWithdraw(c *gin.Context) {
	var req dto.WithdrawRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.Error(codeMissingFields))
		return
	}

	id, err := h.financeService.RequestWithdraw(c.Request.Context(), accountID(c), req.Amount, req.Wallet)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, dto.WithdrawResponse{OK: true, ID: id})
}

// Withdraws handles GET /api/admin/withdraws
func (h *FinanceHandler) Withdraws(c *gin.Context) {
	withdraws, err := h.financeService.ListWithdraws(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true, "withdraws": withdraws})
}

// SettleOrRejectWithdraw handles PATCH /api/admin/withdraw/:id. A tx_hash
// settles the request, a reject flag with a reason declines it.
func (h *FinanceHandler) SettleOrRejectWithdraw(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.Error(codeMissingFields))
		return
	}

	var req struct {
		TxHash string `json:"tx_hash"`
		Reject bool   `json:"reject"`
		Reason string `json:"reason"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.Error(codeMissingFields))
		return
	}

	if req.Reject {
		err = h.financeService.RejectWithdraw(c.Request.Context(), id, req.Reason)
	} else {
		err = h.financeService.SettleWithdraw(c.Request.Context(), id, req.TxHash)
	}
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, dto.OKResponse{OK: true})
}

// ManualCredit handles POST /api/admin/manual-credit
func (h *FinanceHandler) ManualCredit(c *gin.Context) {
	var req dto.ManualCreditRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Email == "" {
		c.JSON(http.StatusBadRequest, dto.Error(codeMissingFields))
		return
	}

	if err := h.financeService.ManualCredit(c.Request.Context(), req.Email, req.Amount, req.Description); err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, dto.OKResponse{OK: true})
}

// GrantPremium handles POST /api/admin/premium
func (h *FinanceHandler) GrantPremium(c *gin.Context) {
	var req dto.GrantPremiumRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.UserID == "" {
		c.JSON(http.StatusBadRequest, dto.Error(codeMissingFields))
		return
	}

	if err := h.financeService.GrantPremium(c.Request.Context(), req.UserID, req.Days); err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, dto.OKResponse{OK: true})
}

// Transactions handles GET /api/admin/transactions
func (h *FinanceHandler) Transactions(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	filter := repository.TransactionFilter{
		Type:  c.DefaultQuery("type", "all"),
		Email: c.Query("email"),
		Page:  page,
		Limit: limit,
	}

	transactions, total, err := h.financeService.Transactions(c.Request.Context(), filter)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true, "transactions": transactions, "total": total, "page": page})
}

// FinanceStats handles GET /api/admin/stats/finance
func (h *FinanceHandler) FinanceStats(c *gin.Context) {
	stats, err := h.financeService.Stats(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true, "stats": stats})
}
