package services

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	portsrepo "github.com/vyaparbooks/ledger_core_app/internal/core/ports/repositories"
	portssvc "github.com/vyaparbooks/ledger_core_app/internal/core/ports/services"
	"github.com/vyaparbooks/ledger_core_app/internal/dto"
)

// ledgerService exposes balance and history reads over posted ledger state.
// Balances read here are always committed: a reconciliation or batch run in
// progress is never observable through this service.
type ledgerService struct {
	accountRepo portsrepo.AccountReader
	postingRepo portsrepo.PostingReader
}

// NewLedgerService creates a new LedgerService.
func NewLedgerService(accountRepo portsrepo.AccountReader, postingRepo portsrepo.PostingReader) portssvc.LedgerReaderSvc {
	return &ledgerService{accountRepo: accountRepo, postingRepo: postingRepo}
}

var _ portssvc.LedgerReaderSvc = (*ledgerService)(nil)

// GetBalance returns the account's current balance. When asOf is given it
// instead reconstructs the balance by summing postings up to that timestamp. The
// reconstruction path is for historical reports, not the posting hot path.
func (s *ledgerService) GetBalance(ctx context.Context, accountID string, asOf *time.Time) (decimal.Decimal, error) {
	if asOf == nil {
		account, err := s.accountRepo.FindAccountByID(ctx, accountID)
		if err != nil {
			return decimal.Zero, fmt.Errorf("failed to find account %s: %w", accountID, err)
		}
		return account.Balance, nil
	}

	// Verify the account exists before replaying.
	if _, err := s.accountRepo.FindAccountByID(ctx, accountID); err != nil {
		return decimal.Zero, fmt.Errorf("failed to find account %s: %w", accountID, err)
	}
	sum, err := s.postingRepo.SumPostingsForAccount(ctx, accountID, *asOf)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to reconstruct balance for account %s: %w", accountID, err)
	}
	return sum, nil
}

// GetAccountHistory returns one page of the account's posting sequence for
// statement generation. The token makes the sequence restartable.
func (s *ledgerService) GetAccountHistory(ctx context.Context, accountID string, params dto.AccountHistoryParams) (*dto.AccountHistoryResponse, error) {
	if _, err := s.accountRepo.FindAccountByID(ctx, accountID); err != nil {
		return nil, fmt.Errorf("failed to find account %s: %w", accountID, err)
	}

	limit := params.Limit
	if limit <= 0 {
		limit = 100
	}
	postings, nextToken, err := s.postingRepo.ListPostingsByAccount(ctx, accountID, params.From, params.To, limit, params.NextToken)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve postings: %w", err)
	}
	return &dto.AccountHistoryResponse{
		AccountID: accountID,
		Postings:  postings,
		NextToken: nextToken,
	}, nil
}
