package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/vyaparbooks/ledger_core_app/internal/apperrors"
	"github.com/vyaparbooks/ledger_core_app/internal/core/domain"
	portsrepo "github.com/vyaparbooks/ledger_core_app/internal/core/ports/repositories"
	portssvc "github.com/vyaparbooks/ledger_core_app/internal/core/ports/services"
	"github.com/vyaparbooks/ledger_core_app/internal/dto"
	"github.com/vyaparbooks/ledger_core_app/internal/middleware"
)

// creditService evaluates proposed sales against per-customer credit limits.
// It reads committed ledger state only and never mutates it.
type creditService struct {
	creditRepo  portsrepo.CreditRepositoryFacade
	accountRepo portsrepo.AccountReader
	now         func() time.Time
}

// NewCreditService creates a new CreditService.
func NewCreditService(creditRepo portsrepo.CreditRepositoryFacade, accountRepo portsrepo.AccountReader) portssvc.CreditSvcFacade {
	return &creditService{creditRepo: creditRepo, accountRepo: accountRepo, now: time.Now}
}

var _ portssvc.CreditSvcFacade = (*creditService)(nil)

// CheckCredit computes the customer's outstanding balance and compares the
// projected total against the credit limit. The result carries the full
// breakdown either way; a failing check returns CreditLimitExceededError so
// the triggering operation (a new sales voucher) is refused with an
// actionable payload.
func (s *creditService) CheckCredit(ctx context.Context, customerID string, proposed decimal.Decimal) (*domain.CreditCheckResult, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	policy, err := s.creditRepo.FindPolicyByCustomerID(ctx, customerID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			// No policy configured: the customer is not credit-limited.
			return &domain.CreditCheckResult{
				CustomerID: customerID,
				Proposed:   proposed,
				Projected:  proposed,
			}, nil
		}
		return nil, fmt.Errorf("failed to load credit policy for %s: %w", customerID, err)
	}
	if !policy.Enabled {
		return &domain.CreditCheckResult{
			CustomerID:  customerID,
			CreditLimit: policy.CreditLimit,
			Proposed:    proposed,
			Projected:   proposed,
		}, nil
	}

	outstanding, err := s.creditRepo.SumOutstandingForCustomer(ctx, customerID)
	if err != nil {
		return nil, fmt.Errorf("failed to compute outstanding for %s: %w", customerID, err)
	}

	projected := outstanding.Add(proposed)
	result := &domain.CreditCheckResult{
		CustomerID:  customerID,
		CreditLimit: policy.CreditLimit,
		Outstanding: outstanding,
		Proposed:    proposed,
		Projected:   projected,
	}

	if projected.GreaterThan(policy.CreditLimit) {
		result.Exceeded = true
		result.Excess = projected.Sub(policy.CreditLimit)
		logger.Warn("Credit limit exceeded",
			slog.String("customer_id", customerID),
			slog.String("limit", policy.CreditLimit.String()),
			slog.String("outstanding", outstanding.String()),
			slog.String("excess", result.Excess.String()))
		return result, &apperrors.CreditLimitExceededError{
			CustomerID:  customerID,
			CreditLimit: policy.CreditLimit,
			Outstanding: outstanding,
			Proposed:    proposed,
			Excess:      result.Excess,
		}
	}
	return result, nil
}

// GetPolicy retrieves a customer's credit policy.
func (s *creditService) GetPolicy(ctx context.Context, customerID string) (*domain.CreditPolicy, error) {
	return s.creditRepo.FindPolicyByCustomerID(ctx, customerID)
}

// UpsertPolicy creates or replaces a customer's credit policy. The customer
// must be a known party ledger account.
func (s *creditService) UpsertPolicy(ctx context.Context, customerID string, req dto.UpsertCreditPolicyRequest, userID string) (*domain.CreditPolicy, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if req.CreditLimit.IsNegative() {
		return nil, fmt.Errorf("%w: credit limit must not be negative", apperrors.ErrValidation)
	}
	if _, err := s.accountRepo.FindAccountByID(ctx, customerID); err != nil {
		return nil, fmt.Errorf("failed to find customer account %s: %w", customerID, err)
	}

	now := s.now().UTC()
	policy := domain.CreditPolicy{
		CustomerID:  customerID,
		CreditLimit: req.CreditLimit,
		Enabled:     req.Enabled,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     userID,
			LastUpdatedAt: now,
			LastUpdatedBy: userID,
		},
	}
	if err := s.creditRepo.SavePolicy(ctx, policy); err != nil {
		return nil, fmt.Errorf("failed to save credit policy: %w", err)
	}
	logger.Info("Credit policy saved", slog.String("customer_id", customerID), slog.String("limit", req.CreditLimit.String()), slog.Bool("enabled", req.Enabled))
	return &policy, nil
}
