package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vyaparbooks/ledger_core_app/internal/apperrors"
	portssvc "github.com/vyaparbooks/ledger_core_app/internal/core/ports/services"
	"github.com/vyaparbooks/ledger_core_app/internal/dto"
	"github.com/vyaparbooks/ledger_core_app/internal/middleware"
)

// creditHandler handles HTTP requests for credit policies and checks.
type creditHandler struct {
	creditService portssvc.CreditSvcFacade
}

func newCreditHandler(creditService portssvc.CreditSvcFacade) *creditHandler {
	return &creditHandler{creditService: creditService}
}

// checkCredit godoc
// @Summary Check customer credit
// @Description Evaluates a proposed amount against the customer's credit limit without mutating state
// @Tags credit
// @Accept  json
// @Produce  json
// @Param   request body dto.CheckCreditRequest true "Customer and proposed amount"
// @Success 200 {object} domain.CreditCheckResult
// @Failure 422 {object} map[string]string "Credit limit exceeded"
// @Router /credit/check [post]
func (h *creditHandler) checkCredit(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.CheckCreditRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": bindingErrorMessage(err)})
		return
	}

	result, err := h.creditService.CheckCredit(c.Request.Context(), req.CustomerID, req.Amount)
	if err != nil {
		var creditErr *apperrors.CreditLimitExceededError
		switch {
		case errors.As(err, &creditErr):
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": creditErr.Error(), "result": result})
		case errors.Is(err, apperrors.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Customer not found"})
		case errors.Is(err, apperrors.ErrValidation):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			logger.Error("Failed to check credit", slog.String("error", err.Error()),
				slog.String("customer_id", req.CustomerID))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check credit"})
		}
		return
	}
	c.JSON(http.StatusOK, result)
}

// getPolicy godoc
// @Summary Get a credit policy
// @Description Retrieves a customer's credit policy
// @Tags credit
// @Produce  json
// @Param   customerID path string true "Customer account ID"
// @Success 200 {object} domain.CreditPolicy
// @Failure 404 {object} map[string]string "Policy not found"
// @Router /credit/policies/{customerID} [get]
func (h *creditHandler) getPolicy(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	customerID := c.Param("customerID")

	policy, err := h.creditService.GetPolicy(c.Request.Context(), customerID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Credit policy not found"})
			return
		}
		logger.Error("Failed to get credit policy", slog.String("error", err.Error()),
			slog.String("customer_id", customerID))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve policy"})
		return
	}
	c.JSON(http.StatusOK, policy)
}

// upsertPolicy godoc
// @Summary Create or replace a credit policy
// @Description Sets a customer's credit limit and enabled flag
// @Tags credit
// @Accept  json
// @Produce  json
// @Param   customerID path string true "Customer account ID"
// @Param   policy body dto.UpsertCreditPolicyRequest true "Policy details"
// @Success 200 {object} domain.CreditPolicy
// @Router /credit/policies/{customerID} [put]
func (h *creditHandler) upsertPolicy(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	customerID := c.Param("customerID")

	var req dto.UpsertCreditPolicyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": bindingErrorMessage(err)})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	policy, err := h.creditService.UpsertPolicy(c.Request.Context(), customerID, req, userID)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrValidation):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, apperrors.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Customer not found"})
		default:
			logger.Error("Failed to upsert credit policy", slog.String("error", err.Error()),
				slog.String("customer_id", customerID))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save policy"})
		}
		return
	}
	c.JSON(http.StatusOK, policy)
}

// registerCreditRoutes registers credit policy specific routes
func registerCreditRoutes(group *gin.RouterGroup, creditService portssvc.CreditSvcFacade) {
	h := newCreditHandler(creditService)

	credit := group.Group("/credit")
	{
		credit.POST("/check", h.checkCredit)
		credit.GET("/policies/:customerID", h.getPolicy)
		credit.PUT("/policies/:customerID", h.upsertPolicy)
	}
}
