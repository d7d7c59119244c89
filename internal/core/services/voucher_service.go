package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/vyaparbooks/ledger_core_app/internal/apperrors"
	"github.com/vyaparbooks/ledger_core_app/internal/core/domain"
	portsrepo "github.com/vyaparbooks/ledger_core_app/internal/core/ports/repositories"
	portssvc "github.com/vyaparbooks/ledger_core_app/internal/core/ports/services"
	"github.com/vyaparbooks/ledger_core_app/internal/dto"
	"github.com/vyaparbooks/ledger_core_app/internal/middleware"
	"github.com/vyaparbooks/ledger_core_app/internal/utils/accounting"
)

var (
	ErrVoucherNotDraft = errors.New("voucher must be in draft to be modified")
	// ErrScheduleNeedsFuture is bad input on the schedule request itself.
	ErrScheduleNeedsFuture = fmt.Errorf("%w: post-dated voucher requires a future effective date", apperrors.ErrValidation)
	// ErrEffectiveInFuture is a lifecycle refusal: the voucher is valid but
	// its effective date has not arrived.
	ErrEffectiveInFuture = fmt.Errorf("%w: voucher effective date has not arrived yet", apperrors.ErrInvalidState)
)

// voucherService owns the voucher entity, its balance validation, and its
// state machine. Posting is the single serialization point of the core: the
// voucher row and every touched account row are locked inside one database
// transaction, so two postings against the same account never interleave
// their balance reads and writes.
type voucherService struct {
	voucherRepo portsrepo.VoucherRepositoryWithTx
	accountRepo portsrepo.AccountRepositoryFacade
	creditSvc   portssvc.CreditSvcFacade
	now         func() time.Time
}

// NewVoucherService creates a new VoucherService.
func NewVoucherService(voucherRepo portsrepo.VoucherRepositoryWithTx, accountRepo portsrepo.AccountRepositoryFacade, creditSvc portssvc.CreditSvcFacade) portssvc.VoucherSvcFacade {
	return &voucherService{
		voucherRepo: voucherRepo,
		accountRepo: accountRepo,
		creditSvc:   creditSvc,
		now:         time.Now,
	}
}

var _ portssvc.VoucherSvcFacade = (*voucherService)(nil)

// validateLines collects every violated line, not just the first.
func (s *voucherService) validateLines(req dto.CreateVoucherRequest, accounts map[string]domain.Account) []apperrors.LineViolation {
	var violations []apperrors.LineViolation
	if len(req.Lines) == 0 {
		violations = append(violations, apperrors.LineViolation{Ordinal: 0, Field: "lines", Reason: "voucher must have at least one line entry"})
		return violations
	}
	for i, line := range req.Lines {
		ordinal := i + 1
		hasDebit := line.Debit.IsPositive()
		hasCredit := line.Credit.IsPositive()
		switch {
		case line.Debit.IsNegative() || line.Credit.IsNegative():
			violations = append(violations, apperrors.LineViolation{Ordinal: ordinal, Field: "amount", Reason: "amounts must be non-negative"})
		case hasDebit && hasCredit:
			violations = append(violations, apperrors.LineViolation{Ordinal: ordinal, Field: "amount", Reason: "exactly one of debit or credit may be set"})
		case !hasDebit && !hasCredit:
			violations = append(violations, apperrors.LineViolation{Ordinal: ordinal, Field: "amount", Reason: "either debit or credit must be positive"})
		}
		acc, found := accounts[line.AccountID]
		if !found {
			violations = append(violations, apperrors.LineViolation{Ordinal: ordinal, Field: "accountID", Reason: fmt.Sprintf("account %s does not exist", line.AccountID)})
			continue
		}
		if !acc.IsActive {
			violations = append(violations, apperrors.LineViolation{Ordinal: ordinal, Field: "accountID", Reason: fmt.Sprintf("account %s is inactive", line.AccountID)})
		}
	}
	return violations
}

// CreateVoucher validates and persists a new draft voucher.
func (s *voucherService) CreateVoucher(ctx context.Context, req dto.CreateVoucherRequest, creatorUserID string) (*domain.Voucher, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if !domain.IsValidVoucherType(req.VoucherType) {
		return nil, fmt.Errorf("%w: unknown voucher type %q", apperrors.ErrValidation, req.VoucherType)
	}

	accountIDs := make([]string, 0, len(req.Lines))
	for _, line := range req.Lines {
		accountIDs = append(accountIDs, line.AccountID)
	}
	accounts, err := s.accountRepo.FindAccountsByIDs(ctx, uniqueStrings(accountIDs))
	if err != nil {
		logger.Error("Failed to fetch accounts for voucher creation", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to fetch accounts: %w", err)
	}

	if violations := s.validateLines(req, accounts); len(violations) > 0 {
		return nil, &apperrors.VoucherValidationError{Violations: violations}
	}

	now := s.now().UTC()
	voucherID := uuid.NewString()
	effectiveDate := req.VoucherDate
	if req.EffectiveDate != nil {
		effectiveDate = *req.EffectiveDate
	}

	lines := make([]domain.LineEntry, len(req.Lines))
	for i, lineReq := range req.Lines {
		lines[i] = domain.LineEntry{
			LineID:    uuid.NewString(),
			VoucherID: voucherID,
			AccountID: lineReq.AccountID,
			Debit:     lineReq.Debit,
			Credit:    lineReq.Credit,
			Narration: lineReq.Narration,
			Ordinal:   i + 1,
		}
	}

	// Advisory credit gate for sales: evaluated against committed ledger
	// state before the voucher is accepted. It never mutates the ledger.
	if req.VoucherType == domain.VoucherTypeSales && req.PartyID != "" && s.creditSvc != nil {
		debits, _ := accounting.Totals(lines)
		if _, err := s.creditSvc.CheckCredit(ctx, req.PartyID, debits); err != nil {
			return nil, err
		}
	}

	voucher := domain.Voucher{
		VoucherID:     voucherID,
		VoucherType:   req.VoucherType,
		VoucherDate:   req.VoucherDate,
		EffectiveDate: effectiveDate,
		Narration:     req.Narration,
		ReferenceNo:   req.ReferenceNo,
		Status:        domain.VoucherDraft,
		PartyID:       req.PartyID,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     creatorUserID,
			LastUpdatedAt: now,
			LastUpdatedBy: creatorUserID,
		},
	}
	if req.BankRef != nil {
		voucher.BankRef = &domain.BankReference{
			BankName:       req.BankRef.BankName,
			InstrumentNo:   req.BankRef.InstrumentNo,
			InstrumentDate: req.BankRef.InstrumentDate,
		}
	}

	if err := s.voucherRepo.SaveVoucher(ctx, voucher, lines); err != nil {
		logger.Error("Failed to save voucher", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to save voucher: %w", err)
	}

	logger.Info("Voucher created", slog.String("voucher_id", voucherID), slog.String("type", string(req.VoucherType)))
	voucher.Lines = lines
	return &voucher, nil
}

// PostVoucher transitions a voucher to POSTED and applies its ledger effect.
// The whole operation is one database transaction: voucher row lock, balance
// check, account row locks in sorted ID order, posting inserts, balance
// updates, status change. A retry that finds the voucher already POSTED
// returns it without double-applying.
func (s *voucherService) PostVoucher(ctx context.Context, voucherID string, allowFuture bool, userID string) (*domain.Voucher, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	tx, err := s.voucherRepo.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer s.voucherRepo.Rollback(ctx, tx)

	voucher, err := s.voucherRepo.FindVoucherByIDForUpdate(ctx, tx, voucherID)
	if err != nil {
		return nil, err
	}

	if voucher.Status == domain.VoucherPosted {
		// Idempotent retry: the apply already succeeded.
		logger.Info("Voucher already posted, returning without re-applying", slog.String("voucher_id", voucherID))
		return voucher, nil
	}
	if !domain.CanTransition(voucher.Status, domain.VoucherPosted) {
		return nil, fmt.Errorf("%w: cannot post voucher in status %s", apperrors.ErrInvalidState, voucher.Status)
	}

	now := s.now().UTC()
	if !allowFuture && voucher.EffectiveDate.After(now) {
		return nil, fmt.Errorf("%w: effective date %s", ErrEffectiveInFuture, voucher.EffectiveDate.Format("2006-01-02"))
	}

	lines, err := s.voucherRepo.FindLinesByVoucherID(ctx, voucherID)
	if err != nil {
		return nil, err
	}
	if err := accounting.ValidateBalanced(lines); err != nil {
		return nil, err
	}

	accountIDs := make([]string, 0, len(lines))
	for _, line := range lines {
		accountIDs = append(accountIDs, line.AccountID)
	}
	accountIDs = uniqueStrings(accountIDs)
	sort.Strings(accountIDs) // Lock order: sorted IDs, avoids deadlocks

	lockedAccounts, err := s.accountRepo.FindAccountsByIDsForUpdate(ctx, tx, accountIDs)
	if err != nil {
		return nil, err
	}

	normalSides := make(map[string]domain.EntrySide, len(lockedAccounts))
	for id, acc := range lockedAccounts {
		normalSides[id] = acc.NormalSide
	}
	deltas := accounting.BalanceChanges(lines, normalSides)

	postings := s.buildPostings(voucher, lines, lockedAccounts, normalSides, false, now, userID)

	if err := s.accountRepo.ApplyMovementsInTx(ctx, tx, deltas, userID, now); err != nil {
		return nil, err
	}
	if err := s.voucherRepo.InsertPostingsInTx(ctx, tx, postings); err != nil {
		return nil, err
	}
	if err := s.voucherRepo.UpdateVoucherStatusInTx(ctx, tx, voucherID, domain.VoucherPosted, "", userID, now); err != nil {
		return nil, err
	}

	if err := s.voucherRepo.Commit(ctx, tx); err != nil {
		return nil, err
	}

	logger.Info("Voucher posted", slog.String("voucher_id", voucherID), slog.Int("postings", len(postings)))
	voucher.Status = domain.VoucherPosted
	voucher.ProvisionalReason = ""
	voucher.Lines = lines
	voucher.LastUpdatedAt = now
	voucher.LastUpdatedBy = userID
	return voucher, nil
}

// buildPostings materializes one signed ledger posting per line entry along
// with running balances computed from the locked account balances.
func (s *voucherService) buildPostings(voucher *domain.Voucher, lines []domain.LineEntry, lockedAccounts map[string]domain.Account, normalSides map[string]domain.EntrySide, reversal bool, now time.Time, userID string) []domain.LedgerPosting {
	running := make(map[string]decimal.Decimal, len(lockedAccounts))
	for id, acc := range lockedAccounts {
		running[id] = acc.Balance
	}

	ordered := make([]domain.LineEntry, len(lines))
	copy(ordered, lines)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].Ordinal < ordered[j].Ordinal })

	postings := make([]domain.LedgerPosting, 0, len(ordered))
	for _, line := range ordered {
		signed := accounting.SignedAmount(line, normalSides[line.AccountID])
		if reversal {
			signed = signed.Neg()
		}
		running[line.AccountID] = running[line.AccountID].Add(signed)
		postings = append(postings, domain.LedgerPosting{
			PostingID:      uuid.NewString(),
			VoucherID:      voucher.VoucherID,
			LineID:         line.LineID,
			AccountID:      line.AccountID,
			Amount:         signed,
			Narration:      line.Narration,
			IsReversal:     reversal,
			PostedAt:       now,
			PostedBy:       userID,
			RunningBalance: running[line.AccountID],
		})
	}
	return postings
}

// CancelVoucher appends the exact negation of the voucher's postings and
// moves it to CANCELLED. Cancellation is the only correction mechanism;
// postings are never edited in place.
func (s *voucherService) CancelVoucher(ctx context.Context, voucherID string, reason string, userID string) (*domain.Voucher, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if reason == "" {
		return nil, fmt.Errorf("%w: cancellation reason is required", apperrors.ErrValidation)
	}

	tx, err := s.voucherRepo.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer s.voucherRepo.Rollback(ctx, tx)

	voucher, err := s.voucherRepo.FindVoucherByIDForUpdate(ctx, tx, voucherID)
	if err != nil {
		return nil, err
	}

	if voucher.Status == domain.VoucherCancelled {
		logger.Info("Voucher already cancelled, returning without re-applying", slog.String("voucher_id", voucherID))
		return voucher, nil
	}
	if !domain.CanTransition(voucher.Status, domain.VoucherCancelled) {
		return nil, fmt.Errorf("%w: cannot cancel voucher in status %s", apperrors.ErrInvalidState, voucher.Status)
	}

	now := s.now().UTC()
	lines, err := s.voucherRepo.FindLinesByVoucherID(ctx, voucherID)
	if err != nil {
		return nil, err
	}

	accountIDs := make([]string, 0, len(lines))
	for _, line := range lines {
		accountIDs = append(accountIDs, line.AccountID)
	}
	accountIDs = uniqueStrings(accountIDs)
	sort.Strings(accountIDs)

	lockedAccounts, err := s.accountRepo.FindAccountsByIDsForUpdate(ctx, tx, accountIDs)
	if err != nil {
		return nil, err
	}

	normalSides := make(map[string]domain.EntrySide, len(lockedAccounts))
	for id, acc := range lockedAccounts {
		normalSides[id] = acc.NormalSide
	}

	deltas := accounting.BalanceChanges(lines, normalSides)
	for id, delta := range deltas {
		deltas[id] = delta.Neg()
	}

	postings := s.buildPostings(voucher, lines, lockedAccounts, normalSides, true, now, userID)

	if err := s.accountRepo.ApplyMovementsInTx(ctx, tx, deltas, userID, now); err != nil {
		return nil, err
	}
	if err := s.voucherRepo.InsertPostingsInTx(ctx, tx, postings); err != nil {
		return nil, err
	}
	if err := s.voucherRepo.UpdateVoucherStatusInTx(ctx, tx, voucherID, domain.VoucherCancelled, reason, userID, now); err != nil {
		return nil, err
	}

	if err := s.voucherRepo.Commit(ctx, tx); err != nil {
		return nil, err
	}

	logger.Info("Voucher cancelled", slog.String("voucher_id", voucherID), slog.String("reason", reason))
	voucher.Status = domain.VoucherCancelled
	voucher.CancellationReason = reason
	voucher.Lines = lines
	voucher.LastUpdatedAt = now
	voucher.LastUpdatedBy = userID
	return voucher, nil
}

// SchedulePostdated defers a draft voucher's ledger effect to a future date.
// The voucher stays DRAFT and is displayed as "scheduled" until due.
func (s *voucherService) SchedulePostdated(ctx context.Context, voucherID string, req dto.SchedulePostdatedRequest, userID string) (*domain.Voucher, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	voucher, err := s.voucherRepo.FindVoucherByID(ctx, voucherID)
	if err != nil {
		return nil, err
	}
	if voucher.Status != domain.VoucherDraft {
		return nil, fmt.Errorf("%w: only draft vouchers can be scheduled", apperrors.ErrInvalidState)
	}
	now := s.now().UTC()
	if !req.EffectiveDate.After(now) {
		return nil, ErrScheduleNeedsFuture
	}
	if req.Reason == "" {
		return nil, fmt.Errorf("%w: schedule reason is required", apperrors.ErrValidation)
	}

	voucher.EffectiveDate = req.EffectiveDate
	voucher.AutoPost = req.AutoPost
	voucher.ScheduleReason = req.Reason
	voucher.LastUpdatedAt = now
	voucher.LastUpdatedBy = userID

	if err := s.voucherRepo.UpdateVoucher(ctx, *voucher); err != nil {
		return nil, fmt.Errorf("failed to schedule voucher: %w", err)
	}
	logger.Info("Voucher scheduled", slog.String("voucher_id", voucherID), slog.Time("effective_date", req.EffectiveDate), slog.Bool("auto_post", req.AutoPost))
	return voucher, nil
}

// MarkProvisional excludes a draft voucher from the ledger until confirmed.
func (s *voucherService) MarkProvisional(ctx context.Context, voucherID string, reason string, userID string) (*domain.Voucher, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if reason == "" {
		return nil, fmt.Errorf("%w: provisional reason is required", apperrors.ErrValidation)
	}

	tx, err := s.voucherRepo.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer s.voucherRepo.Rollback(ctx, tx)

	voucher, err := s.voucherRepo.FindVoucherByIDForUpdate(ctx, tx, voucherID)
	if err != nil {
		return nil, err
	}
	if !domain.CanTransition(voucher.Status, domain.VoucherProvisional) {
		return nil, fmt.Errorf("%w: cannot mark voucher in status %s as provisional", apperrors.ErrInvalidState, voucher.Status)
	}

	now := s.now().UTC()
	if err := s.voucherRepo.UpdateVoucherStatusInTx(ctx, tx, voucherID, domain.VoucherProvisional, reason, userID, now); err != nil {
		return nil, err
	}
	if err := s.voucherRepo.Commit(ctx, tx); err != nil {
		return nil, err
	}

	logger.Info("Voucher marked provisional", slog.String("voucher_id", voucherID))
	voucher.Status = domain.VoucherProvisional
	voucher.ProvisionalReason = reason
	voucher.LastUpdatedAt = now
	voucher.LastUpdatedBy = userID
	return voucher, nil
}

// ConfirmProvisional posts a provisional voucher through the normal posting
// path, which re-checks the balance invariant and clears the flag.
func (s *voucherService) ConfirmProvisional(ctx context.Context, voucherID string, userID string) (*domain.Voucher, error) {
	voucher, err := s.voucherRepo.FindVoucherByID(ctx, voucherID)
	if err != nil {
		return nil, err
	}
	if voucher.Status != domain.VoucherProvisional {
		return nil, fmt.Errorf("%w: voucher is not provisional", apperrors.ErrInvalidState)
	}
	return s.PostVoucher(ctx, voucherID, false, userID)
}

// RejectProvisional returns a provisional voucher to draft. It never
// silently expires.
func (s *voucherService) RejectProvisional(ctx context.Context, voucherID string, userID string) (*domain.Voucher, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	tx, err := s.voucherRepo.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer s.voucherRepo.Rollback(ctx, tx)

	voucher, err := s.voucherRepo.FindVoucherByIDForUpdate(ctx, tx, voucherID)
	if err != nil {
		return nil, err
	}
	if voucher.Status != domain.VoucherProvisional {
		return nil, fmt.Errorf("%w: voucher is not provisional", apperrors.ErrInvalidState)
	}

	now := s.now().UTC()
	if err := s.voucherRepo.UpdateVoucherStatusInTx(ctx, tx, voucherID, domain.VoucherDraft, "", userID, now); err != nil {
		return nil, err
	}
	if err := s.voucherRepo.Commit(ctx, tx); err != nil {
		return nil, err
	}

	logger.Info("Provisional voucher rejected", slog.String("voucher_id", voucherID))
	voucher.Status = domain.VoucherDraft
	voucher.ProvisionalReason = ""
	voucher.LastUpdatedAt = now
	voucher.LastUpdatedBy = userID
	return voucher, nil
}

// GetVoucherByID retrieves a voucher with its line entries.
func (s *voucherService) GetVoucherByID(ctx context.Context, voucherID string) (*domain.Voucher, error) {
	voucher, err := s.voucherRepo.FindVoucherByID(ctx, voucherID)
	if err != nil {
		return nil, fmt.Errorf("failed to find voucher %s: %w", voucherID, err)
	}
	lines, err := s.voucherRepo.FindLinesByVoucherID(ctx, voucherID)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve lines for voucher %s: %w", voucherID, err)
	}
	voucher.Lines = lines
	return voucher, nil
}

// ListVouchers retrieves a filtered, token-paginated list of vouchers.
func (s *voucherService) ListVouchers(ctx context.Context, params dto.ListVouchersParams) (*dto.ListVouchersResponse, error) {
	limit := params.Limit
	if limit <= 0 {
		limit = 20
	}
	vouchers, nextToken, err := s.voucherRepo.ListVouchers(ctx, params.Status, params.VoucherType, limit, params.NextToken)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve vouchers: %w", err)
	}
	responses := make([]dto.VoucherResponse, len(vouchers))
	for i := range vouchers {
		responses[i] = dto.ToVoucherResponse(&vouchers[i])
	}
	return &dto.ListVouchersResponse{Vouchers: responses, NextToken: nextToken}, nil
}

// UpdateVoucher updates mutable header fields while the voucher is a draft.
func (s *voucherService) UpdateVoucher(ctx context.Context, voucherID string, req dto.UpdateVoucherRequest, userID string) (*domain.Voucher, error) {
	voucher, err := s.voucherRepo.FindVoucherByID(ctx, voucherID)
	if err != nil {
		return nil, err
	}
	if voucher.Status != domain.VoucherDraft {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrInvalidState, ErrVoucherNotDraft)
	}

	updated := false
	if req.VoucherDate != nil {
		voucher.VoucherDate = *req.VoucherDate
		updated = true
	}
	if req.Narration != nil {
		voucher.Narration = *req.Narration
		updated = true
	}
	if req.ReferenceNo != nil {
		voucher.ReferenceNo = *req.ReferenceNo
		updated = true
	}
	if !updated {
		return voucher, nil
	}

	now := s.now().UTC()
	voucher.LastUpdatedAt = now
	voucher.LastUpdatedBy = userID
	if err := s.voucherRepo.UpdateVoucher(ctx, *voucher); err != nil {
		return nil, fmt.Errorf("failed to save voucher update: %w", err)
	}
	return voucher, nil
}

// DeleteVoucher removes a voucher; permitted only in draft. Posted vouchers
// are reversed via CancelVoucher, never deleted.
func (s *voucherService) DeleteVoucher(ctx context.Context, voucherID string, userID string) error {
	logger := middleware.GetLoggerFromCtx(ctx)

	voucher, err := s.voucherRepo.FindVoucherByID(ctx, voucherID)
	if err != nil {
		return err
	}
	if voucher.Status != domain.VoucherDraft {
		return fmt.Errorf("%w: only draft vouchers can be deleted", apperrors.ErrInvalidState)
	}
	if err := s.voucherRepo.DeleteVoucher(ctx, voucherID); err != nil {
		return fmt.Errorf("failed to delete voucher: %w", err)
	}
	logger.Info("Voucher deleted", slog.String("voucher_id", voucherID), slog.String("user_id", userID))
	return nil
}

// uniqueStrings returns a slice containing only the unique strings from the input.
func uniqueStrings(input []string) []string {
	seen := make(map[string]struct{}, len(input))
	result := make([]string, 0, len(input))
	for _, str := range input {
		if _, ok := seen[str]; !ok {
			seen[str] = struct{}{}
			result = append(result, str)
		}
	}
	return result
}
