package repositories

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/vyaparbooks/ledger_core_app/internal/core/domain"
)

// CreditPolicyReader defines read operations for credit policies
type CreditPolicyReader interface {
	// FindPolicyByCustomerID retrieves the credit policy for a customer.
	FindPolicyByCustomerID(ctx context.Context, customerID string) (*domain.CreditPolicy, error)

	// SumOutstandingForCustomer computes the customer's outstanding balance
	// from posted vouchers: sales-side amounts less receipts/credit notes.
	// Reads only committed ledger state.
	SumOutstandingForCustomer(ctx context.Context, customerID string) (decimal.Decimal, error)
}

// CreditPolicyWriter defines write operations for credit policies
type CreditPolicyWriter interface {
	// SavePolicy creates or replaces a customer's credit policy.
	SavePolicy(ctx context.Context, policy domain.CreditPolicy) error
}

// CreditRepositoryFacade combines the credit policy repository interfaces
type CreditRepositoryFacade interface {
	CreditPolicyReader
	CreditPolicyWriter
}
