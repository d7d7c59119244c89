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

// reconHandler handles HTTP requests for bank reconciliation sessions.
type reconHandler struct {
	reconService portssvc.ReconSvcFacade
}

func newReconHandler(reconService portssvc.ReconSvcFacade) *reconHandler {
	return &reconHandler{reconService: reconService}
}

func respondReconError(c *gin.Context, logger *slog.Logger, err error, action string) {
	switch {
	case errors.Is(err, apperrors.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrDuplicate):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrInvalidState):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		logger.Error("Reconciliation operation failed",
			slog.String("action", action), slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to " + action})
	}
}

// createSession godoc
// @Summary Create a reconciliation session
// @Description Starts a reconciliation exercise for one bank account and statement period
// @Tags reconciliation
// @Accept  json
// @Produce  json
// @Param   session body dto.CreateSessionRequest true "Session details"
// @Success 201 {object} domain.ReconSession
// @Failure 400 {object} map[string]string "Invalid request format"
// @Router /recon/sessions [post]
func (h *reconHandler) createSession(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.CreateSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Error("Failed to bind JSON for createSession", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": bindingErrorMessage(err)})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	session, err := h.reconService.CreateSession(c.Request.Context(), req, userID)
	if err != nil {
		respondReconError(c, logger, err, "create session")
		return
	}
	c.JSON(http.StatusCreated, session)
}

// importEntries godoc
// @Summary Import statement entries
// @Description Attaches parsed bank statement rows to an open session
// @Tags reconciliation
// @Accept  json
// @Produce  json
// @Param   sessionID path string true "Session ID"
// @Param   entries body dto.ImportExternalEntriesRequest true "Statement rows"
// @Success 200 {object} map[string]int "Count of imported entries"
// @Failure 409 {object} map[string]string "Session is not open"
// @Router /recon/sessions/{sessionID}/entries [post]
func (h *reconHandler) importEntries(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.ImportExternalEntriesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": bindingErrorMessage(err)})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	count, err := h.reconService.ImportExternalEntries(c.Request.Context(), c.Param("sessionID"), req, userID)
	if err != nil {
		respondReconError(c, logger, err, "import entries")
		return
	}
	c.JSON(http.StatusOK, gin.H{"imported": count})
}

// autoMatch godoc
// @Summary Run auto-matching
// @Description Runs the matching engine over unresolved entries; re-running never disturbs confirmed links
// @Tags reconciliation
// @Produce  json
// @Param   sessionID path string true "Session ID"
// @Success 200 {object} dto.AutoMatchReport
// @Failure 409 {object} map[string]string "Session is not open"
// @Router /recon/sessions/{sessionID}/automatch [post]
func (h *reconHandler) autoMatch(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	report, err := h.reconService.AutoMatch(c.Request.Context(), c.Param("sessionID"), userID)
	if err != nil {
		respondReconError(c, logger, err, "auto-match session")
		return
	}
	c.JSON(http.StatusOK, report)
}

// manualMatch godoc
// @Summary Manually match an entry
// @Description Links a statement entry to one or more postings, replacing any existing auto-match
// @Tags reconciliation
// @Accept  json
// @Produce  json
// @Param   sessionID path string true "Session ID"
// @Param   match body dto.ManualMatchRequest true "Entry and posting IDs"
// @Success 204 "Matched"
// @Router /recon/sessions/{sessionID}/match [post]
func (h *reconHandler) manualMatch(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.ManualMatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": bindingErrorMessage(err)})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	if err := h.reconService.ManualMatch(c.Request.Context(), c.Param("sessionID"), req, userID); err != nil {
		respondReconError(c, logger, err, "match entry")
		return
	}
	c.Status(http.StatusNoContent)
}

// unmatchEntry godoc
// @Summary Unmatch an entry
// @Description Clears an entry's links and returns it to pending
// @Tags reconciliation
// @Produce  json
// @Param   sessionID path string true "Session ID"
// @Param   entryID path string true "Entry ID"
// @Success 204 "Unmatched"
// @Router /recon/sessions/{sessionID}/entries/{entryID}/unmatch [post]
func (h *reconHandler) unmatchEntry(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	if err := h.reconService.UnmatchEntry(c.Request.Context(), c.Param("sessionID"), c.Param("entryID"), userID); err != nil {
		respondReconError(c, logger, err, "unmatch entry")
		return
	}
	c.Status(http.StatusNoContent)
}

// getSession godoc
// @Summary Get session state
// @Description Returns the session's match state and summary, including the reconciliation difference
// @Tags reconciliation
// @Produce  json
// @Param   sessionID path string true "Session ID"
// @Success 200 {object} dto.SessionResponse
// @Failure 404 {object} map[string]string "Session not found"
// @Router /recon/sessions/{sessionID} [get]
func (h *reconHandler) getSession(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	session, err := h.reconService.GetSession(c.Request.Context(), c.Param("sessionID"))
	if err != nil {
		respondReconError(c, logger, err, "get session")
		return
	}
	c.JSON(http.StatusOK, session)
}

// approveSession godoc
// @Summary Approve a session
// @Description Archives the session; any remaining difference is recorded, not forced to zero
// @Tags reconciliation
// @Accept  json
// @Produce  json
// @Param   sessionID path string true "Session ID"
// @Param   request body dto.ApproveSessionRequest false "Approval note"
// @Success 204 "Approved"
// @Failure 409 {object} map[string]string "Session is not open"
// @Router /recon/sessions/{sessionID}/approve [post]
func (h *reconHandler) approveSession(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.ApproveSessionRequest
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

	if err := h.reconService.ApproveSession(c.Request.Context(), c.Param("sessionID"), req, userID); err != nil {
		respondReconError(c, logger, err, "approve session")
		return
	}
	c.Status(http.StatusNoContent)
}

// registerReconRoutes registers reconciliation specific routes
func registerReconRoutes(group *gin.RouterGroup, reconService portssvc.ReconSvcFacade) {
	h := newReconHandler(reconService)

	sessions := group.Group("/recon/sessions")
	{
		sessions.POST("", h.createSession)
		sessions.GET("/:sessionID", h.getSession)
		sessions.POST("/:sessionID/entries", h.importEntries)
		sessions.POST("/:sessionID/automatch", h.autoMatch)
		sessions.POST("/:sessionID/match", h.manualMatch)
		sessions.POST("/:sessionID/entries/:entryID/unmatch", h.unmatchEntry)
		sessions.POST("/:sessionID/approve", h.approveSession)
	}
}
