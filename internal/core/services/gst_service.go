package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/vyaparbooks/ledger_core_app/internal/apperrors"
	"github.com/vyaparbooks/ledger_core_app/internal/core/domain"
	"github.com/vyaparbooks/ledger_core_app/internal/core/matching"
	portsrepo "github.com/vyaparbooks/ledger_core_app/internal/core/ports/repositories"
	portssvc "github.com/vyaparbooks/ledger_core_app/internal/core/ports/services"
	"github.com/vyaparbooks/ledger_core_app/internal/dto"
	"github.com/vyaparbooks/ledger_core_app/internal/middleware"
)

// gstService reconciles the tax-authority invoice feed against posted
// purchase bills. Unlike bank matching, the pairing key is exact
// (GSTIN + invoice number); a key hit with a value outside tolerance is a
// MISMATCH, not a miss.
type gstService struct {
	gstRepo portsrepo.GSTReconRepositoryFacade

	amountTolerance decimal.Decimal
	now             func() time.Time
}

// NewGSTService creates a new GSTReconService.
func NewGSTService(gstRepo portsrepo.GSTReconRepositoryFacade) portssvc.GSTReconSvcFacade {
	return &gstService{
		gstRepo:         gstRepo,
		amountTolerance: decimal.NewFromFloat(0.01),
		now:             time.Now,
	}
}

var _ portssvc.GSTReconSvcFacade = (*gstService)(nil)

// billKey identifies an invoice across both sides of the reconciliation.
// GSTINs are case-insensitive; invoice numbers are compared verbatim after
// trimming because suppliers reuse numbers across a GSTIN but not within.
func billKey(gstin, invoiceNo string) string {
	return strings.ToUpper(strings.TrimSpace(gstin)) + "|" + strings.TrimSpace(invoiceNo)
}

// ImportFeed bulk-creates feed entries in PENDING status.
func (s *gstService) ImportFeed(ctx context.Context, req dto.ImportGSTFeedRequest, userID string) (int, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	now := s.now().UTC()
	entries := make([]domain.GSTReconEntry, 0, len(req.Rows))
	for _, row := range req.Rows {
		if row.InvoiceValue.IsNegative() {
			return 0, fmt.Errorf("%w: invoice %s has negative value", apperrors.ErrValidation, row.InvoiceNo)
		}
		entries = append(entries, domain.GSTReconEntry{
			EntryID:       uuid.NewString(),
			SupplierGSTIN: strings.ToUpper(strings.TrimSpace(row.SupplierGSTIN)),
			InvoiceNo:     strings.TrimSpace(row.InvoiceNo),
			InvoiceDate:   row.InvoiceDate,
			InvoiceValue:  row.InvoiceValue,
			ITCAmount:     row.ITCAmount,
			Status:        domain.GSTPending,
			ImportedAt:    now,
		})
	}
	if err := s.gstRepo.SaveEntries(ctx, entries); err != nil {
		return 0, fmt.Errorf("failed to import feed entries: %w", err)
	}
	logger.Info("GST feed imported", slog.Int("rows", len(entries)), slog.String("user_id", userID))
	return len(entries), nil
}

// RunMatch executes a matching pass over unresolved entries against posted
// purchase bills in the window. Rows already MATCHED are skipped and their
// bills stay consumed, so re-running over unchanged data yields the same
// buckets. Each outcome is committed individually; an interrupted pass
// resumes from where it stopped.
func (s *gstService) RunMatch(ctx context.Context, req dto.RunGSTMatchRequest, userID string) (*dto.GSTMatchReport, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if req.To.Before(req.From) {
		return nil, fmt.Errorf("%w: window end precedes window start", apperrors.ErrValidation)
	}

	unresolved, err := s.gstRepo.FindEntriesByStatus(ctx, []domain.GSTMatchStatus{
		domain.GSTPending, domain.GSTMismatched, domain.GSTMissingInBooks,
	})
	if err != nil {
		return nil, err
	}
	matched, err := s.gstRepo.FindEntriesByStatus(ctx, []domain.GSTMatchStatus{domain.GSTMatched})
	if err != nil {
		return nil, err
	}
	bills, err := s.gstRepo.FindPurchaseBills(ctx, req.From, req.To)
	if err != nil {
		return nil, err
	}

	consumed := make(map[string]bool, len(matched))
	for _, entry := range matched {
		if entry.MatchedVoucherID != "" {
			consumed[entry.MatchedVoucherID] = true
		}
	}
	available := make([]domain.PurchaseBillRef, 0, len(bills))
	for _, bill := range bills {
		if !consumed[bill.VoucherID] {
			available = append(available, bill)
		}
	}

	params := matching.Params[domain.GSTReconEntry, domain.PurchaseBillRef]{
		ExternalKey: func(e domain.GSTReconEntry) string { return billKey(e.SupplierGSTIN, e.InvoiceNo) },
		InternalKey: func(b domain.PurchaseBillRef) string { return billKey(b.SupplierGSTIN, b.InvoiceNo) },
		ExternalAmount: func(e domain.GSTReconEntry) decimal.Decimal { return e.InvoiceValue },
		InternalAmount: func(b domain.PurchaseBillRef) decimal.Decimal { return b.InvoiceValue },
		ExternalDate:   func(e domain.GSTReconEntry) time.Time { return e.InvoiceDate },
		InternalDate:   func(b domain.PurchaseBillRef) time.Time { return b.InvoiceDate },

		AmountTolerance: s.amountTolerance,
		// The key is exact, so no date slack: a key hit with a value outside
		// tolerance surfaces as MISMATCHED instead of drifting to another
		// invoice.
		DateWindowDays: 0,
	}
	results := matching.Run(params, unresolved, available)

	report := &dto.GSTMatchReport{Evaluated: len(results)}
	for _, res := range results {
		if err := ctx.Err(); err != nil {
			logger.Warn("GST matching pass cancelled mid-run", slog.Int("evaluated", report.Matched+report.Mismatched+report.MissingInBooks))
			return report, err
		}
		var status domain.GSTMatchStatus
		var voucherID string
		switch res.Outcome {
		case matching.OutcomeMatched:
			status = domain.GSTMatched
			voucherID = available[res.InternalIndex].VoucherID
			report.Matched++
		case matching.OutcomeMismatched:
			status = domain.GSTMismatched
			voucherID = available[res.InternalIndex].VoucherID
			report.Mismatched++
		case matching.OutcomeAmbiguous:
			// Two or more booked bills carry the same GSTIN and invoice
			// number with equal values. No single voucher can be pinned,
			// so the entry is flagged for manual review unattributed.
			status = domain.GSTMismatched
			report.Mismatched++
		default:
			// A feed row with no booked bill under its key.
			status = domain.GSTMissingInBooks
			report.MissingInBooks++
		}
		if status == res.External.Status && voucherID == res.External.MatchedVoucherID {
			continue
		}
		if err := s.gstRepo.UpdateEntryMatch(ctx, res.External.EntryID, status, voucherID); err != nil {
			return report, fmt.Errorf("failed to record match outcome for entry %s: %w", res.External.EntryID, err)
		}
	}

	summary, err := s.gstRepo.Summarize(ctx)
	if err != nil {
		return report, err
	}
	report.Summary = summary

	logger.Info("GST matching pass complete",
		slog.Int("evaluated", report.Evaluated),
		slog.Int("matched", report.Matched),
		slog.Int("mismatched", report.Mismatched),
		slog.Int("missing_in_books", report.MissingInBooks))
	return report, nil
}

// GetSummary aggregates entries per status bucket with ITC totals.
func (s *gstService) GetSummary(ctx context.Context) (*domain.GSTReconSummary, error) {
	return s.gstRepo.Summarize(ctx)
}

// ListEntries returns feed entries filtered by status.
func (s *gstService) ListEntries(ctx context.Context, statuses []domain.GSTMatchStatus) ([]domain.GSTReconEntry, error) {
	return s.gstRepo.FindEntriesByStatus(ctx, statuses)
}
