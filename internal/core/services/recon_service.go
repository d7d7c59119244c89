package services

import (
	"context"
	"fmt"
	"log/slog"
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

const bookPostingPageSize = 500

// ReconOption configures the reconciliation service.
type ReconOption func(*reconService)

// WithReconTolerances overrides the auto-match amount tolerance and date
// window. Defaults: 0.01 currency units and 2 days.
func WithReconTolerances(amountTolerance decimal.Decimal, dateWindowDays int) ReconOption {
	return func(s *reconService) {
		s.amountTolerance = amountTolerance
		s.dateWindowDays = dateWindowDays
	}
}

// reconService drives bank-statement reconciliation sessions. Matching runs
// over a snapshot of committed postings; each matched unit of work is
// committed independently so a run can be interrupted and re-invoked.
type reconService struct {
	reconRepo   portsrepo.ReconRepositoryFacade
	accountRepo portsrepo.AccountReader
	postingRepo portsrepo.PostingReader

	amountTolerance decimal.Decimal
	dateWindowDays  int
	now             func() time.Time
}

// NewReconService creates a new ReconService.
func NewReconService(reconRepo portsrepo.ReconRepositoryFacade, accountRepo portsrepo.AccountReader, postingRepo portsrepo.PostingReader, opts ...ReconOption) portssvc.ReconSvcFacade {
	s := &reconService{
		reconRepo:       reconRepo,
		accountRepo:     accountRepo,
		postingRepo:     postingRepo,
		amountTolerance: decimal.NewFromFloat(0.01),
		dateWindowDays:  2,
		now:             time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

var _ portssvc.ReconSvcFacade = (*reconService)(nil)

// CreateSession starts a reconciliation exercise for one bank account and
// statement period.
func (s *reconService) CreateSession(ctx context.Context, req dto.CreateSessionRequest, userID string) (*domain.ReconSession, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if req.PeriodEnd.Before(req.PeriodStart) {
		return nil, fmt.Errorf("%w: period end precedes period start", apperrors.ErrValidation)
	}
	if _, err := s.accountRepo.FindAccountByID(ctx, req.BankAccountID); err != nil {
		return nil, fmt.Errorf("failed to find bank account %s: %w", req.BankAccountID, err)
	}

	now := s.now().UTC()
	session := domain.ReconSession{
		SessionID:        uuid.NewString(),
		BankAccountID:    req.BankAccountID,
		PeriodStart:      req.PeriodStart,
		PeriodEnd:        req.PeriodEnd,
		StatementOpening: req.StatementOpening,
		StatementClosing: req.StatementClosing,
		Status:           domain.ReconSessionOpen,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     userID,
			LastUpdatedAt: now,
			LastUpdatedBy: userID,
		},
	}
	if err := s.reconRepo.SaveSession(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to save reconciliation session: %w", err)
	}
	logger.Info("Reconciliation session created", slog.String("session_id", session.SessionID), slog.String("bank_account_id", req.BankAccountID))
	return &session, nil
}

// ImportExternalEntries attaches parsed statement rows to a session in
// import order. The ordinal records that order for deterministic tie-breaks.
func (s *reconService) ImportExternalEntries(ctx context.Context, sessionID string, req dto.ImportExternalEntriesRequest, userID string) (int, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	session, err := s.reconRepo.FindSessionByID(ctx, sessionID)
	if err != nil {
		return 0, err
	}
	if session.Status != domain.ReconSessionOpen {
		return 0, fmt.Errorf("%w: session is %s", apperrors.ErrInvalidState, session.Status)
	}

	existing, err := s.reconRepo.FindExternalEntries(ctx, sessionID)
	if err != nil {
		return 0, err
	}
	nextOrdinal := len(existing) + 1

	entries := make([]domain.ExternalEntry, len(req.Entries))
	for i, in := range req.Entries {
		entries[i] = domain.ExternalEntry{
			EntryID:   uuid.NewString(),
			SessionID: sessionID,
			EntryDate: in.EntryDate,
			Amount:    in.Amount,
			Direction: in.Direction,
			Reference: in.Reference,
			Status:    domain.MatchPending,
			Ordinal:   nextOrdinal + i,
		}
	}
	if err := s.reconRepo.SaveExternalEntries(ctx, entries); err != nil {
		return 0, fmt.Errorf("failed to import external entries: %w", err)
	}
	logger.Info("External entries imported", slog.String("session_id", sessionID), slog.Int("count", len(entries)))
	return len(entries), nil
}

// signedExternal expresses a statement entry on the book bank account's
// normal (debit) side: a CREDIT on the bank statement is money into the
// account, which the books record as a positive (debit) movement.
func signedExternal(entry domain.ExternalEntry) decimal.Decimal {
	if entry.Direction == domain.Credit {
		return entry.Amount
	}
	return entry.Amount.Neg()
}

// loadBookPostings pages through the session's book postings. The page loop
// keeps memory bounded on large statements.
func (s *reconService) loadBookPostings(ctx context.Context, session *domain.ReconSession) ([]domain.LedgerPosting, error) {
	var all []domain.LedgerPosting
	var token *string
	for {
		page, next, err := s.postingRepo.ListPostingsByAccount(ctx, session.BankAccountID, session.PeriodStart, session.PeriodEnd, bookPostingPageSize, token)
		if err != nil {
			return nil, err
		}
		all = append(all, page...)
		if next == nil {
			return all, nil
		}
		token = next
	}
}

// AutoMatch runs the matching engine over the session's unresolved entries.
// Entries already matched (auto or manual) are skipped, and postings bound
// by an existing link are unavailable, so re-running on an unchanged session
// produces identical links and never overwrites a manual match.
func (s *reconService) AutoMatch(ctx context.Context, sessionID string, userID string) (*dto.AutoMatchReport, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	session, err := s.reconRepo.FindSessionByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.Status != domain.ReconSessionOpen {
		return nil, fmt.Errorf("%w: session is %s", apperrors.ErrInvalidState, session.Status)
	}

	entries, err := s.reconRepo.FindExternalEntries(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	links, err := s.reconRepo.FindMatchLinks(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	postings, err := s.loadBookPostings(ctx, session)
	if err != nil {
		return nil, err
	}

	linkedPostings := make(map[string]bool, len(links))
	for _, link := range links {
		linkedPostings[link.PostingID] = true
	}

	report := &dto.AutoMatchReport{}
	var unresolved []domain.ExternalEntry
	for _, entry := range entries {
		if entry.Status == domain.MatchAuto || entry.Status == domain.MatchManual {
			report.Skipped++
			continue
		}
		unresolved = append(unresolved, entry)
	}
	var available []domain.LedgerPosting
	for _, posting := range postings {
		if !linkedPostings[posting.PostingID] {
			available = append(available, posting)
		}
	}

	params := matching.Params[domain.ExternalEntry, domain.LedgerPosting]{
		ExternalKey:    func(e domain.ExternalEntry) string { return signedExternal(e).Round(0).String() },
		InternalKey:    func(p domain.LedgerPosting) string { return p.Amount.Round(0).String() },
		ExternalAmount: signedExternal,
		InternalAmount: func(p domain.LedgerPosting) decimal.Decimal { return p.Amount },
		ExternalDate:   func(e domain.ExternalEntry) time.Time { return e.EntryDate },
		InternalDate:   func(p domain.LedgerPosting) time.Time { return p.PostedAt },

		AmountTolerance: s.amountTolerance,
		DateWindowDays:  s.dateWindowDays,
	}
	results := matching.Run(params, unresolved, available)

	now := s.now().UTC()
	for _, res := range results {
		if err := ctx.Err(); err != nil {
			logger.Warn("Auto-match cancelled mid-run", slog.String("session_id", sessionID), slog.Int("evaluated", report.Evaluated))
			return report, err
		}
		report.Evaluated++
		switch res.Outcome {
		case matching.OutcomeMatched:
			link := domain.MatchLink{
				LinkID:    uuid.NewString(),
				SessionID: sessionID,
				EntryID:   res.External.EntryID,
				PostingID: available[res.InternalIndex].PostingID,
				IsManual:  false,
				CreatedAt: now,
				CreatedBy: userID,
			}
			if err := s.reconRepo.SaveMatchLink(ctx, link, domain.MatchAuto); err != nil {
				return report, fmt.Errorf("failed to save match link: %w", err)
			}
			report.AutoMatched++
		case matching.OutcomeAmbiguous:
			// Ambiguity is left for manual resolution, never guessed.
			report.Ambiguous++
		default:
			if res.External.Status != domain.MatchUnfound {
				if err := s.reconRepo.UpdateEntryStatus(ctx, res.External.EntryID, domain.MatchUnfound); err != nil {
					return report, fmt.Errorf("failed to update entry status: %w", err)
				}
			}
			report.Unmatched++
		}
	}

	logger.Info("Auto-match pass complete",
		slog.String("session_id", sessionID),
		slog.Int("evaluated", report.Evaluated),
		slog.Int("auto_matched", report.AutoMatched),
		slog.Int("unmatched", report.Unmatched),
		slog.Int("ambiguous", report.Ambiguous))
	return report, nil
}

// ManualMatch links an entry to one or more postings, replacing any existing
// auto-match for the entry. Manual links always take precedence and are
// never disturbed by later auto-match passes.
func (s *reconService) ManualMatch(ctx context.Context, sessionID string, req dto.ManualMatchRequest, userID string) error {
	logger := middleware.GetLoggerFromCtx(ctx)

	session, err := s.reconRepo.FindSessionByID(ctx, sessionID)
	if err != nil {
		return err
	}
	if session.Status != domain.ReconSessionOpen {
		return fmt.Errorf("%w: session is %s", apperrors.ErrInvalidState, session.Status)
	}

	entries, err := s.reconRepo.FindExternalEntries(ctx, sessionID)
	if err != nil {
		return err
	}
	found := false
	for _, entry := range entries {
		if entry.EntryID == req.EntryID {
			found = true
			break
		}
	}
	if !found {
		return fmt.Errorf("%w: entry %s not in session %s", apperrors.ErrNotFound, req.EntryID, sessionID)
	}

	now := s.now().UTC()
	links := make([]domain.MatchLink, len(req.PostingIDs))
	for i, postingID := range req.PostingIDs {
		links[i] = domain.MatchLink{
			LinkID:    uuid.NewString(),
			SessionID: sessionID,
			EntryID:   req.EntryID,
			PostingID: postingID,
			IsManual:  true,
			CreatedAt: now,
			CreatedBy: userID,
		}
	}
	if err := s.reconRepo.ReplaceManualLinks(ctx, req.EntryID, links); err != nil {
		return fmt.Errorf("failed to save manual match: %w", err)
	}
	if err := s.reconRepo.UpdateEntryStatus(ctx, req.EntryID, domain.MatchManual); err != nil {
		return fmt.Errorf("failed to update entry status: %w", err)
	}
	logger.Info("Manual match recorded", slog.String("session_id", sessionID), slog.String("entry_id", req.EntryID), slog.Int("postings", len(req.PostingIDs)))
	return nil
}

// UnmatchEntry clears an entry's links and returns it to pending.
func (s *reconService) UnmatchEntry(ctx context.Context, sessionID string, entryID string, userID string) error {
	session, err := s.reconRepo.FindSessionByID(ctx, sessionID)
	if err != nil {
		return err
	}
	if session.Status != domain.ReconSessionOpen {
		return fmt.Errorf("%w: session is %s", apperrors.ErrInvalidState, session.Status)
	}
	if err := s.reconRepo.ReplaceManualLinks(ctx, entryID, nil); err != nil {
		return fmt.Errorf("failed to clear links: %w", err)
	}
	return s.reconRepo.UpdateEntryStatus(ctx, entryID, domain.MatchPending)
}

// GetSession returns the session's match state with the summary, including
// the reconciliation difference:
//
//	statementClosing - (bookClosing + sum(unmatched book) - sum(unmatched external))
//
// The difference is surfaced for a human to explain or accept, never forced
// to zero.
func (s *reconService) GetSession(ctx context.Context, sessionID string) (*dto.SessionResponse, error) {
	session, err := s.reconRepo.FindSessionByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	entries, err := s.reconRepo.FindExternalEntries(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	links, err := s.reconRepo.FindMatchLinks(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	postings, err := s.loadBookPostings(ctx, session)
	if err != nil {
		return nil, err
	}
	bookClosing, err := s.postingRepo.SumPostingsForAccount(ctx, session.BankAccountID, session.PeriodEnd)
	if err != nil {
		return nil, err
	}

	linkedPostings := make(map[string]bool, len(links))
	for _, link := range links {
		linkedPostings[link.PostingID] = true
	}

	summary := domain.ReconSummary{
		Session:          *session,
		TotalExternal:    len(entries),
		BookClosing:      bookClosing,
		UnmatchedBookSum: decimal.Zero,
		UnmatchedExtSum:  decimal.Zero,
	}
	for _, posting := range postings {
		if !linkedPostings[posting.PostingID] {
			summary.UnmatchedBookSum = summary.UnmatchedBookSum.Add(posting.Amount)
		}
	}

	entryResponses := make([]dto.ExternalEntryResponse, len(entries))
	for i, entry := range entries {
		entryResponses[i] = dto.ExternalEntryResponse{
			EntryID:   entry.EntryID,
			EntryDate: entry.EntryDate,
			Amount:    entry.Amount,
			Direction: entry.Direction,
			Reference: entry.Reference,
			Status:    entry.Status,
		}
		switch entry.Status {
		case domain.MatchAuto:
			summary.AutoMatched++
		case domain.MatchManual:
			summary.ManuallyMatched++
		case domain.MatchUnfound:
			summary.Unmatched++
			summary.UnmatchedExtSum = summary.UnmatchedExtSum.Add(signedExternal(entry))
		default:
			summary.Pending++
			summary.UnmatchedExtSum = summary.UnmatchedExtSum.Add(signedExternal(entry))
		}
	}
	summary.Difference = session.StatementClosing.Sub(bookClosing.Add(summary.UnmatchedBookSum).Sub(summary.UnmatchedExtSum))

	return &dto.SessionResponse{Summary: summary, Entries: entryResponses, Links: links}, nil
}

// ApproveSession archives the session with the approval note. Approved
// sessions are never deleted and no longer accept matching changes.
func (s *reconService) ApproveSession(ctx context.Context, sessionID string, req dto.ApproveSessionRequest, userID string) error {
	logger := middleware.GetLoggerFromCtx(ctx)

	session, err := s.reconRepo.FindSessionByID(ctx, sessionID)
	if err != nil {
		return err
	}
	if session.Status == domain.ReconSessionApproved {
		return nil // Idempotent
	}
	if err := s.reconRepo.ApproveSession(ctx, sessionID, req.Note, userID, s.now().UTC()); err != nil {
		return fmt.Errorf("failed to approve session: %w", err)
	}
	logger.Info("Reconciliation session approved", slog.String("session_id", sessionID))
	return nil
}
