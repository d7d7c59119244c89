package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	portssvc "github.com/vyaparbooks/ledger_core_app/internal/core/ports/services"
	"github.com/vyaparbooks/ledger_core_app/internal/middleware"
)

// postingRunHandler exposes a manual trigger for the scheduled posting batch.
// The worker runs the same batch on a cron; this endpoint exists for
// operators who need to run it on demand.
type postingRunHandler struct {
	postingRunService portssvc.PostingRunSvc
}

func newPostingRunHandler(postingRunService portssvc.PostingRunSvc) *postingRunHandler {
	return &postingRunHandler{postingRunService: postingRunService}
}

// triggerPostingRun godoc
// @Summary Trigger the posting run
// @Description Posts every due auto-post voucher; per-voucher failures are reported, not fatal
// @Tags posting-run
// @Produce  json
// @Param   asOf query string false "Process vouchers due on or before this date (YYYY-MM-DD), defaults to now"
// @Success 200 {object} domain.PostingRunReport
// @Router /posting-run [post]
func (h *postingRunHandler) triggerPostingRun(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	asOf := time.Now().UTC()
	if raw := c.Query("asOf"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid asOf date, expected YYYY-MM-DD"})
			return
		}
		asOf = parsed
	}

	report, err := h.postingRunService.ProcessDuePostdated(c.Request.Context(), asOf)
	if err != nil {
		logger.Error("Posting run failed", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Posting run failed"})
		return
	}
	c.JSON(http.StatusOK, report)
}

// registerPostingRunRoutes registers the posting run trigger route
func registerPostingRunRoutes(group *gin.RouterGroup, postingRunService portssvc.PostingRunSvc) {
	h := newPostingRunHandler(postingRunService)
	group.POST("/posting-run", h.triggerPostingRun)
}
