package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/vyaparbooks/ledger_core_app/internal/core/domain"
	portsrepo "github.com/vyaparbooks/ledger_core_app/internal/core/ports/repositories"
	portssvc "github.com/vyaparbooks/ledger_core_app/internal/core/ports/services"
	"github.com/vyaparbooks/ledger_core_app/internal/middleware"
)

// postingRunService is the scheduled posting runner: it scans for due
// post-dated vouchers flagged for automatic posting and posts each one
// independently. Each post is its own transaction, so an interrupted run
// leaves no partial state and a re-invocation simply re-scans for the
// vouchers still due.
type postingRunService struct {
	voucherRepo portsrepo.VoucherReader
	voucherSvc  portssvc.VoucherLifecycleSvc
}

// NewPostingRunService creates a new PostingRunService.
func NewPostingRunService(voucherRepo portsrepo.VoucherReader, voucherSvc portssvc.VoucherLifecycleSvc) portssvc.PostingRunSvc {
	return &postingRunService{voucherRepo: voucherRepo, voucherSvc: voucherSvc}
}

var _ portssvc.PostingRunSvc = (*postingRunService)(nil)

// ProcessDuePostdated posts every auto-post draft voucher whose effective
// date is on or before asOf. One voucher's failure never aborts the batch;
// every failure is recorded with its cause. The context is checked between
// vouchers so a long run can be cancelled cleanly.
func (s *postingRunService) ProcessDuePostdated(ctx context.Context, asOf time.Time) (*domain.PostingRunReport, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	due, err := s.voucherRepo.ListDueAutoPostVouchers(ctx, asOf)
	if err != nil {
		return nil, err
	}

	report := &domain.PostingRunReport{AsOf: asOf}
	for _, voucher := range due {
		if err := ctx.Err(); err != nil {
			logger.Warn("Scheduled posting run cancelled",
				slog.Int("processed", report.ProcessedCount),
				slog.Int("remaining", len(due)-report.ProcessedCount-report.ErrorCount))
			return report, err
		}

		// AllowFuture covers the day-boundary case where asOf is the
		// effective date but the voucher carries a later time of day.
		if _, err := s.voucherSvc.PostVoucher(ctx, voucher.VoucherID, true, voucher.CreatedBy); err != nil {
			report.ErrorCount++
			report.Errors = append(report.Errors, domain.PostingRunError{
				VoucherID: voucher.VoucherID,
				Reason:    err.Error(),
			})
			logger.Warn("Scheduled posting failed for voucher",
				slog.String("voucher_id", voucher.VoucherID),
				slog.String("error", err.Error()))
			continue
		}
		report.ProcessedCount++
	}

	logger.Info("Scheduled posting run complete",
		slog.Time("as_of", asOf),
		slog.Int("processed", report.ProcessedCount),
		slog.Int("errors", report.ErrorCount))
	return report, nil
}
