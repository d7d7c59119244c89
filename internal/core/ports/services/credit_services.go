package services

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/vyaparbooks/ledger_core_app/internal/core/domain"
	"github.com/vyaparbooks/ledger_core_app/internal/dto"
)

// CreditSvcFacade evaluates and administers customer credit policies.
type CreditSvcFacade interface {
	// CheckCredit evaluates a proposed amount against the customer's limit.
	// The result is returned for passing checks; failing checks return a
	// CreditLimitExceededError carrying the same breakdown. Never mutates
	// ledger state.
	CheckCredit(ctx context.Context, customerID string, proposed decimal.Decimal) (*domain.CreditCheckResult, error)

	// GetPolicy retrieves a customer's credit policy.
	GetPolicy(ctx context.Context, customerID string) (*domain.CreditPolicy, error)

	// UpsertPolicy creates or replaces a customer's credit policy.
	UpsertPolicy(ctx context.Context, customerID string, req dto.UpsertCreditPolicyRequest, userID string) (*domain.CreditPolicy, error)
}
