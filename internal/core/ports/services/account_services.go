package services

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/vyaparbooks/ledger_core_app/internal/core/domain"
	"github.com/vyaparbooks/ledger_core_app/internal/dto"
)

// AccountReaderSvc defines read operations for account data
type AccountReaderSvc interface {
	// GetAccountByID retrieves a specific account by its unique identifier.
	GetAccountByID(ctx context.Context, accountID string) (*domain.Account, error)

	// GetAccountsByIDs retrieves multiple accounts by their IDs.
	GetAccountsByIDs(ctx context.Context, accountIDs []string) (map[string]domain.Account, error)

	// ListAccounts retrieves a paginated list of accounts.
	ListAccounts(ctx context.Context, limit int, offset int) ([]domain.Account, error)
}

// AccountWriterSvc defines write operations for account data
type AccountWriterSvc interface {
	// CreateAccount persists a new account during chart-of-accounts setup.
	CreateAccount(ctx context.Context, req dto.CreateAccountRequest, userID string) (*domain.Account, error)

	// UpdateAccount updates an existing account's details.
	UpdateAccount(ctx context.Context, accountID string, req dto.UpdateAccountRequest, userID string) (*domain.Account, error)

	// DeactivateAccount marks an account as inactive. Accounts referenced by
	// postings are never physically deleted.
	DeactivateAccount(ctx context.Context, accountID string, userID string) error
}

// AccountSvcFacade combines all account-related service interfaces
type AccountSvcFacade interface {
	AccountReaderSvc
	AccountWriterSvc
}

// LedgerReaderSvc exposes balance and history reads over posted ledger state.
type LedgerReaderSvc interface {
	// GetBalance returns the account's current balance, or the balance
	// reconstructed from postings when asOf is given.
	GetBalance(ctx context.Context, accountID string, asOf *time.Time) (decimal.Decimal, error)

	// GetAccountHistory returns one page of the account's posting sequence.
	GetAccountHistory(ctx context.Context, accountID string, params dto.AccountHistoryParams) (*dto.AccountHistoryResponse, error)
}
