package pgsql

import (
	"github.com/jackc/pgx/v5/pgxpool"

	portsrepo "github.com/vyaparbooks/ledger_core_app/internal/core/ports/repositories"
)

func NewRepositoryProvider(dbPool *pgxpool.Pool) portsrepo.RepositoryProvider {
	accountRepo := newPgxAccountRepository(dbPool)
	voucherRepo := newPgxVoucherRepository(dbPool)
	reconRepo := newPgxReconRepository(dbPool)
	gstRepo := newPgxGSTRepository(dbPool)
	creditRepo := newPgxCreditRepository(dbPool)

	return portsrepo.RepositoryProvider{
		AccountRepo: accountRepo,
		VoucherRepo: voucherRepo,
		ReconRepo:   reconRepo,
		GSTRepo:     gstRepo,
		CreditRepo:  creditRepo,
	}
}
