package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/vyaparbooks/ledger_core_app/internal/apperrors"
	portssvc "github.com/vyaparbooks/ledger_core_app/internal/core/ports/services"
	"github.com/vyaparbooks/ledger_core_app/internal/dto"
	"github.com/vyaparbooks/ledger_core_app/internal/middleware"
)

// ledgerHandler serves balance and posting history reads.
type ledgerHandler struct {
	ledgerService portssvc.LedgerReaderSvc
}

func newLedgerHandler(ledgerService portssvc.LedgerReaderSvc) *ledgerHandler {
	return &ledgerHandler{ledgerService: ledgerService}
}

// getBalance godoc
// @Summary Get account balance
// @Description Returns the account's current balance, or the balance as of a date when asOf is given
// @Tags ledger
// @Produce  json
// @Param   accountID path string true "Account ID"
// @Param   asOf query string false "Balance as of this date (YYYY-MM-DD)"
// @Success 200 {object} dto.BalanceResponse
// @Failure 404 {object} map[string]string "Account not found"
// @Router /accounts/{accountID}/balance [get]
func (h *ledgerHandler) getBalance(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	accountID := c.Param("accountID")

	var asOf *time.Time
	if raw := c.Query("asOf"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid asOf date, expected YYYY-MM-DD"})
			return
		}
		asOf = &parsed
	}

	balance, err := h.ledgerService.GetBalance(c.Request.Context(), accountID, asOf)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Account not found"})
			return
		}
		logger.Error("Failed to get balance", slog.String("error", err.Error()), slog.String("account_id", accountID))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve balance"})
		return
	}

	resp := dto.BalanceResponse{AccountID: accountID, Balance: balance}
	if asOf != nil {
		resp.AsOf = asOf
	}
	c.JSON(http.StatusOK, resp)
}

// getAccountHistory godoc
// @Summary Get account posting history
// @Description Returns one page of the account's posting sequence within a date range
// @Tags ledger
// @Produce  json
// @Param   accountID path string true "Account ID"
// @Param   from query string false "Range start (YYYY-MM-DD)"
// @Param   to query string false "Range end (YYYY-MM-DD)"
// @Param   limit query int false "Page size" default(50)
// @Param   nextToken query string false "Continuation token"
// @Success 200 {object} dto.AccountHistoryResponse
// @Failure 404 {object} map[string]string "Account not found"
// @Router /accounts/{accountID}/history [get]
func (h *ledgerHandler) getAccountHistory(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	accountID := c.Param("accountID")

	var params dto.AccountHistoryParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters"})
		return
	}

	page, err := h.ledgerService.GetAccountHistory(c.Request.Context(), accountID, params)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Account not found"})
		case errors.Is(err, apperrors.ErrValidation):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			logger.Error("Failed to get account history", slog.String("error", err.Error()), slog.String("account_id", accountID))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve account history"})
		}
		return
	}
	c.JSON(http.StatusOK, page)
}

// registerLedgerRoutes registers balance and history routes under accounts
func registerLedgerRoutes(group *gin.RouterGroup, ledgerService portssvc.LedgerReaderSvc) {
	h := newLedgerHandler(ledgerService)

	accounts := group.Group("/accounts")
	{
		accounts.GET("/:accountID/balance", h.getBalance)
		accounts.GET("/:accountID/history", h.getAccountHistory)
	}
}
