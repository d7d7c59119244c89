package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/vyaparbooks/ledger_core_app/internal/apperrors"
	"github.com/vyaparbooks/ledger_core_app/internal/core/domain"
	portssvc "github.com/vyaparbooks/ledger_core_app/internal/core/ports/services"
	"github.com/vyaparbooks/ledger_core_app/internal/dto"
	"github.com/vyaparbooks/ledger_core_app/internal/middleware"
)

// gstHandler handles HTTP requests for GST feed reconciliation.
type gstHandler struct {
	gstService portssvc.GSTReconSvcFacade
}

func newGSTHandler(gstService portssvc.GSTReconSvcFacade) *gstHandler {
	return &gstHandler{gstService: gstService}
}

// importFeed godoc
// @Summary Import an authority feed
// @Description Bulk-creates GST feed entries in pending status
// @Tags gst
// @Accept  json
// @Produce  json
// @Param   feed body dto.ImportGSTFeedRequest true "Parsed feed rows"
// @Success 200 {object} map[string]int "Count of imported entries"
// @Failure 400 {object} map[string]string "Invalid request format"
// @Router /gst/feed [post]
func (h *gstHandler) importFeed(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.ImportGSTFeedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Error("Failed to bind JSON for importFeed", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": bindingErrorMessage(err)})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	count, err := h.gstService.ImportFeed(c.Request.Context(), req, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrValidation) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		logger.Error("Failed to import GST feed", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to import feed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"imported": count})
}

// runMatch godoc
// @Summary Run GST matching
// @Description Matches unresolved feed entries against posted purchase bills in the window
// @Tags gst
// @Accept  json
// @Produce  json
// @Param   request body dto.RunGSTMatchRequest true "Purchase-bill date window"
// @Success 200 {object} dto.GSTMatchReport
// @Router /gst/match [post]
func (h *gstHandler) runMatch(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.RunGSTMatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": bindingErrorMessage(err)})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	report, err := h.gstService.RunMatch(c.Request.Context(), req, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrValidation) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		logger.Error("Failed to run GST match", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to run match"})
		return
	}
	c.JSON(http.StatusOK, report)
}

// getSummary godoc
// @Summary Get GST reconciliation summary
// @Description Aggregates feed entries per status bucket with ITC totals
// @Tags gst
// @Produce  json
// @Success 200 {object} domain.GSTReconSummary
// @Router /gst/summary [get]
func (h *gstHandler) getSummary(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	summary, err := h.gstService.GetSummary(c.Request.Context())
	if err != nil {
		logger.Error("Failed to get GST summary", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve summary"})
		return
	}
	c.JSON(http.StatusOK, summary)
}

// listEntries godoc
// @Summary List GST feed entries
// @Description Returns feed entries, optionally filtered by comma-separated statuses
// @Tags gst
// @Produce  json
// @Param   status query string false "Comma-separated statuses (PENDING,MATCHED,MISMATCHED,MISSING_IN_BOOKS)"
// @Success 200 {array} domain.GSTReconEntry
// @Router /gst/entries [get]
func (h *gstHandler) listEntries(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var statuses []domain.GSTMatchStatus
	if raw := c.Query("status"); raw != "" {
		for _, s := range strings.Split(raw, ",") {
			statuses = append(statuses, domain.GSTMatchStatus(strings.TrimSpace(s)))
		}
	}

	entries, err := h.gstService.ListEntries(c.Request.Context(), statuses)
	if err != nil {
		if errors.Is(err, apperrors.ErrValidation) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		logger.Error("Failed to list GST entries", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list entries"})
		return
	}
	c.JSON(http.StatusOK, entries)
}

// registerGSTRoutes registers GST reconciliation specific routes
func registerGSTRoutes(group *gin.RouterGroup, gstService portssvc.GSTReconSvcFacade) {
	h := newGSTHandler(gstService)

	gst := group.Group("/gst")
	{
		gst.POST("/feed", h.importFeed)
		gst.POST("/match", h.runMatch)
		gst.GET("/summary", h.getSummary)
		gst.GET("/entries", h.listEntries)
	}
}
