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

// voucherHandler handles HTTP requests for vouchers and their lifecycle.
type voucherHandler struct {
	voucherService portssvc.VoucherSvcFacade
}

// newVoucherHandler creates a new voucherHandler.
func newVoucherHandler(voucherService portssvc.VoucherSvcFacade) *voucherHandler {
	return &voucherHandler{voucherService: voucherService}
}

// respondVoucherError maps service errors to HTTP responses. Lifecycle
// violations surface as 409 so clients can distinguish them from bad input.
func respondVoucherError(c *gin.Context, logger *slog.Logger, err error, action string) {
	var creditErr *apperrors.CreditLimitExceededError
	switch {
	case errors.As(err, &creditErr):
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":       creditErr.Error(),
			"creditLimit": creditErr.CreditLimit,
			"outstanding": creditErr.Outstanding,
			"proposed":    creditErr.Proposed,
			"excess":      creditErr.Excess,
		})
	case errors.Is(err, apperrors.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Voucher not found"})
	case errors.Is(err, apperrors.ErrInvalidState):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrConcurrencyConflict):
		c.JSON(http.StatusConflict, gin.H{"error": "Conflicting concurrent update, retry the request"})
	default:
		logger.Error("Voucher operation failed",
			slog.String("action", action), slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to " + action})
	}
}

// createVoucher godoc
// @Summary Create a voucher
// @Description Validates and persists a new draft voucher
// @Tags vouchers
// @Accept  json
// @Produce  json
// @Param   voucher body dto.CreateVoucherRequest true "Voucher details"
// @Success 201 {object} dto.VoucherResponse
// @Failure 400 {object} map[string]string "Invalid request format"
// @Failure 422 {object} map[string]string "Credit limit exceeded"
// @Router /vouchers [post]
func (h *voucherHandler) createVoucher(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.CreateVoucherRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Error("Failed to bind JSON for createVoucher", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": bindingErrorMessage(err)})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	voucher, err := h.voucherService.CreateVoucher(c.Request.Context(), req, userID)
	if err != nil {
		respondVoucherError(c, logger, err, "create voucher")
		return
	}
	c.JSON(http.StatusCreated, dto.ToVoucherResponse(voucher))
}

// getVoucher godoc
// @Summary Get a voucher
// @Description Retrieves a voucher with its line entries
// @Tags vouchers
// @Produce  json
// @Param   voucherID path string true "Voucher ID"
// @Success 200 {object} dto.VoucherResponse
// @Failure 404 {object} map[string]string "Voucher not found"
// @Router /vouchers/{voucherID} [get]
func (h *voucherHandler) getVoucher(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	voucher, err := h.voucherService.GetVoucherByID(c.Request.Context(), c.Param("voucherID"))
	if err != nil {
		respondVoucherError(c, logger, err, "get voucher")
		return
	}
	c.JSON(http.StatusOK, dto.ToVoucherResponse(voucher))
}

// listVouchers godoc
// @Summary List vouchers
// @Description Retrieves a filtered, token-paginated list of vouchers
// @Tags vouchers
// @Produce  json
// @Param   status query string false "Filter by status"
// @Param   type query string false "Filter by voucher type"
// @Param   limit query int false "Page size" default(20)
// @Param   nextToken query string false "Continuation token"
// @Success 200 {object} dto.ListVouchersResponse
// @Router /vouchers [get]
func (h *voucherHandler) listVouchers(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var params dto.ListVouchersParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters"})
		return
	}

	page, err := h.voucherService.ListVouchers(c.Request.Context(), params)
	if err != nil {
		respondVoucherError(c, logger, err, "list vouchers")
		return
	}
	c.JSON(http.StatusOK, page)
}

// updateVoucher godoc
// @Summary Update a draft voucher
// @Description Updates mutable header fields while the voucher is a draft
// @Tags vouchers
// @Accept  json
// @Produce  json
// @Param   voucherID path string true "Voucher ID"
// @Param   voucher body dto.UpdateVoucherRequest true "Fields to update"
// @Success 200 {object} dto.VoucherResponse
// @Failure 409 {object} map[string]string "Voucher is not a draft"
// @Router /vouchers/{voucherID} [put]
func (h *voucherHandler) updateVoucher(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.UpdateVoucherRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": bindingErrorMessage(err)})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	voucher, err := h.voucherService.UpdateVoucher(c.Request.Context(), c.Param("voucherID"), req, userID)
	if err != nil {
		respondVoucherError(c, logger, err, "update voucher")
		return
	}
	c.JSON(http.StatusOK, dto.ToVoucherResponse(voucher))
}

// deleteVoucher godoc
// @Summary Delete a draft voucher
// @Description Removes a voucher; permitted only while it is a draft
// @Tags vouchers
// @Produce  json
// @Param   voucherID path string true "Voucher ID"
// @Success 204 "Deleted"
// @Failure 409 {object} map[string]string "Voucher is not a draft"
// @Router /vouchers/{voucherID} [delete]
func (h *voucherHandler) deleteVoucher(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	if err := h.voucherService.DeleteVoucher(c.Request.Context(), c.Param("voucherID"), userID); err != nil {
		respondVoucherError(c, logger, err, "delete voucher")
		return
	}
	c.Status(http.StatusNoContent)
}

// postVoucher godoc
// @Summary Post a voucher
// @Description Applies the voucher's ledger effect atomically; safe to retry
// @Tags vouchers
// @Accept  json
// @Produce  json
// @Param   voucherID path string true "Voucher ID"
// @Param   request body dto.PostVoucherRequest false "Posting options"
// @Success 200 {object} dto.VoucherResponse
// @Failure 409 {object} map[string]string "Invalid state transition"
// @Router /vouchers/{voucherID}/post [post]
func (h *voucherHandler) postVoucher(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.PostVoucherRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": bindingErrorMessage(err)})
			return
		}
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	voucher, err := h.voucherService.PostVoucher(c.Request.Context(), c.Param("voucherID"), req.AllowFuture, userID)
	if err != nil {
		respondVoucherError(c, logger, err, "post voucher")
		return
	}
	c.JSON(http.StatusOK, dto.ToVoucherResponse(voucher))
}

// cancelVoucher godoc
// @Summary Cancel a posted voucher
// @Description Appends the exact negation of the voucher's postings; safe to retry
// @Tags vouchers
// @Accept  json
// @Produce  json
// @Param   voucherID path string true "Voucher ID"
// @Param   request body dto.CancelVoucherRequest true "Cancellation reason"
// @Success 200 {object} dto.VoucherResponse
// @Failure 409 {object} map[string]string "Invalid state transition"
// @Router /vouchers/{voucherID}/cancel [post]
func (h *voucherHandler) cancelVoucher(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.CancelVoucherRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": bindingErrorMessage(err)})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	voucher, err := h.voucherService.CancelVoucher(c.Request.Context(), c.Param("voucherID"), req.Reason, userID)
	if err != nil {
		respondVoucherError(c, logger, err, "cancel voucher")
		return
	}
	c.JSON(http.StatusOK, dto.ToVoucherResponse(voucher))
}

// schedulePostdated godoc
// @Summary Schedule a post-dated voucher
// @Description Defers a draft voucher's ledger effect to a future effective date
// @Tags vouchers
// @Accept  json
// @Produce  json
// @Param   voucherID path string true "Voucher ID"
// @Param   request body dto.SchedulePostdatedRequest true "Schedule details"
// @Success 200 {object} dto.VoucherResponse
// @Router /vouchers/{voucherID}/schedule [post]
func (h *voucherHandler) schedulePostdated(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.SchedulePostdatedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": bindingErrorMessage(err)})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	voucher, err := h.voucherService.SchedulePostdated(c.Request.Context(), c.Param("voucherID"), req, userID)
	if err != nil {
		respondVoucherError(c, logger, err, "schedule voucher")
		return
	}
	c.JSON(http.StatusOK, dto.ToVoucherResponse(voucher))
}

// markProvisional godoc
// @Summary Mark a voucher provisional
// @Description Excludes a draft voucher from the ledger until confirmed
// @Tags vouchers
// @Accept  json
// @Produce  json
// @Param   voucherID path string true "Voucher ID"
// @Param   request body dto.MarkProvisionalRequest true "Provisional reason"
// @Success 200 {object} dto.VoucherResponse
// @Router /vouchers/{voucherID}/provisional [post]
func (h *voucherHandler) markProvisional(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.MarkProvisionalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": bindingErrorMessage(err)})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	voucher, err := h.voucherService.MarkProvisional(c.Request.Context(), c.Param("voucherID"), req.Reason, userID)
	if err != nil {
		respondVoucherError(c, logger, err, "mark voucher provisional")
		return
	}
	c.JSON(http.StatusOK, dto.ToVoucherResponse(voucher))
}

// confirmProvisional godoc
// @Summary Confirm a provisional voucher
// @Description Posts a provisional voucher through the normal posting path
// @Tags vouchers
// @Produce  json
// @Param   voucherID path string true "Voucher ID"
// @Success 200 {object} dto.VoucherResponse
// @Router /vouchers/{voucherID}/confirm [post]
func (h *voucherHandler) confirmProvisional(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	voucher, err := h.voucherService.ConfirmProvisional(c.Request.Context(), c.Param("voucherID"), userID)
	if err != nil {
		respondVoucherError(c, logger, err, "confirm voucher")
		return
	}
	c.JSON(http.StatusOK, dto.ToVoucherResponse(voucher))
}

// rejectProvisional godoc
// @Summary Reject a provisional voucher
// @Description Returns a provisional voucher to draft
// @Tags vouchers
// @Produce  json
// @Param   voucherID path string true "Voucher ID"
// @Success 200 {object} dto.VoucherResponse
// @Router /vouchers/{voucherID}/reject [post]
func (h *voucherHandler) rejectProvisional(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	voucher, err := h.voucherService.RejectProvisional(c.Request.Context(), c.Param("voucherID"), userID)
	if err != nil {
		respondVoucherError(c, logger, err, "reject voucher")
		return
	}
	c.JSON(http.StatusOK, dto.ToVoucherResponse(voucher))
}

// RegisterVoucherRoutes wires the voucher endpoints onto the given group.
// Exported so tests can mount the routes behind their own middleware.
func RegisterVoucherRoutes(group *gin.RouterGroup, voucherService portssvc.VoucherSvcFacade) {
	h := newVoucherHandler(voucherService)

	vouchers := group.Group("/vouchers")
	{
		vouchers.POST("", h.createVoucher)
		vouchers.GET("", h.listVouchers)
		vouchers.GET("/:voucherID", h.getVoucher)
		vouchers.PUT("/:voucherID", h.updateVoucher)
		vouchers.DELETE("/:voucherID", h.deleteVoucher)
		vouchers.POST("/:voucherID/post", h.postVoucher)
		vouchers.POST("/:voucherID/cancel", h.cancelVoucher)
		vouchers.POST("/:voucherID/schedule", h.schedulePostdated)
		vouchers.POST("/:voucherID/provisional", h.markProvisional)
		vouchers.POST("/:voucherID/confirm", h.confirmProvisional)
		vouchers.POST("/:voucherID/reject", h.rejectProvisional)
	}
}
