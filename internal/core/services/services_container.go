package services

import (
	"github.com/shopspring/decimal"

	portsrepo "github.com/vyaparbooks/ledger_core_app/internal/core/ports/repositories"
	portssvc "github.com/vyaparbooks/ledger_core_app/internal/core/ports/services"
	"github.com/vyaparbooks/ledger_core_app/internal/platform/config"
)

// NewServiceContainer creates a new service container with properly initialized dependencies
func NewServiceContainer(cfg *config.Config, repos portsrepo.RepositoryProvider) *portssvc.ServiceContainer {
	container := &portssvc.ServiceContainer{}

	container.Account = NewAccountService(repos.AccountRepo)
	container.Ledger = NewLedgerService(repos.AccountRepo, repos.VoucherRepo)

	// Credit gating runs inside voucher creation, so it is wired first.
	container.Credit = NewCreditService(repos.CreditRepo, repos.AccountRepo)
	container.Voucher = NewVoucherService(repos.VoucherRepo, repos.AccountRepo, container.Credit)
	container.PostingRun = NewPostingRunService(repos.VoucherRepo, container.Voucher)

	container.Recon = NewReconService(
		repos.ReconRepo,
		repos.AccountRepo,
		repos.VoucherRepo,
		WithReconTolerances(decimal.NewFromFloat(cfg.ReconAmountTolerance), cfg.ReconDateWindowDays),
	)
	container.GSTRecon = NewGSTService(repos.GSTRepo)

	return container
}
