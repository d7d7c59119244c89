package jobs

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	portssvc "github.com/vyaparbooks/ledger_core_app/internal/core/ports/services"
	"github.com/vyaparbooks/ledger_core_app/internal/dto"
	"github.com/vyaparbooks/ledger_core_app/internal/middleware"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskTypePostingRun posts due post-dated vouchers.
	TaskTypePostingRun = "voucher:posting_run"
	// TaskTypeAutoMatch runs one auto-match pass over a reconciliation session.
	TaskTypeAutoMatch = "recon:auto_match"
)

// SystemUserID marks ledger mutations performed by the scheduler rather than
// a human operator.
const SystemUserID = "system"

// PostingRunPayload bounds one scheduled posting run. A zero AsOf means "now
// at execution time".
type PostingRunPayload struct {
	AsOf time.Time `json:"asOf,omitempty"`
}

// NewPostingRunTask constructs an Asynq task for a posting run.
func NewPostingRunTask(payload PostingRunPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypePostingRun, data), nil
}

// NewPostingRunHandler processes TaskTypePostingRun tasks. Each run is
// idempotent: a voucher posted by an earlier attempt is skipped by the
// lifecycle service, so crashed runs are safely retried.
func NewPostingRunHandler(postingRunSvc portssvc.PostingRunSvc, logger *slog.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		var payload PostingRunPayload
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return asynq.SkipRetry
		}
		asOf := payload.AsOf
		if asOf.IsZero() {
			asOf = time.Now().UTC()
		}

		taskLogger := logger.With(slog.String("task", TaskTypePostingRun))
		ctx = middleware.WithLogger(ctx, taskLogger)

		report, err := postingRunSvc.ProcessDuePostdated(ctx, asOf)
		if err != nil {
			return err
		}
		taskLogger.Info("Posting run finished",
			slog.Int("processed", report.ProcessedCount),
			slog.Int("failed", report.ErrorCount))
		return nil
	}
}

// AutoMatchPayload identifies the session for an auto-match pass.
type AutoMatchPayload struct {
	SessionID string `json:"sessionID"`
	UserID    string `json:"userID"`
}

// NewAutoMatchTask constructs an Asynq task for an auto-match pass.
func NewAutoMatchTask(payload AutoMatchPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeAutoMatch, data), nil
}

// NewAutoMatchHandler processes TaskTypeAutoMatch tasks.
func NewAutoMatchHandler(reconSvc portssvc.ReconSvcFacade, logger *slog.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		var payload AutoMatchPayload
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return asynq.SkipRetry
		}
		userID := payload.UserID
		if userID == "" {
			userID = SystemUserID
		}

		taskLogger := logger.With(slog.String("task", TaskTypeAutoMatch), slog.String("session_id", payload.SessionID))
		ctx = middleware.WithLogger(ctx, taskLogger)

		report, err := reconSvc.AutoMatch(ctx, payload.SessionID, userID)
		if err != nil {
			return err
		}
		logAutoMatchReport(taskLogger, report)
		return nil
	}
}

func logAutoMatchReport(logger *slog.Logger, report *dto.AutoMatchReport) {
	logger.Info("Auto-match task finished",
		slog.Int("evaluated", report.Evaluated),
		slog.Int("auto_matched", report.AutoMatched),
		slog.Int("unmatched", report.Unmatched),
		slog.Int("ambiguous", report.Ambiguous),
		slog.Int("skipped", report.Skipped))
}
