package pgsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/vyaparbooks/ledger_core_app/internal/apperrors"
	"github.com/vyaparbooks/ledger_core_app/internal/core/domain"
	portsrepo "github.com/vyaparbooks/ledger_core_app/internal/core/ports/repositories"
	"github.com/vyaparbooks/ledger_core_app/internal/models"
	"github.com/vyaparbooks/ledger_core_app/internal/utils/mapping"
)

type PgxCreditRepository struct {
	BaseRepository
}

// newPgxCreditRepository creates a new repository for credit policies.
func newPgxCreditRepository(pool *pgxpool.Pool) portsrepo.CreditRepositoryFacade {
	return &PgxCreditRepository{BaseRepository: BaseRepository{Pool: pool}}
}

// Ensure PgxCreditRepository implements portsrepo.CreditRepositoryFacade
var _ portsrepo.CreditRepositoryFacade = (*PgxCreditRepository)(nil)

// FindPolicyByCustomerID retrieves the credit policy for a customer.
func (r *PgxCreditRepository) FindPolicyByCustomerID(ctx context.Context, customerID string) (*domain.CreditPolicy, error) {
	query := `
		SELECT customer_id, credit_limit, enabled, created_at, created_by, last_updated_at, last_updated_by
		FROM credit_policies
		WHERE customer_id = $1;
	`
	var m models.CreditPolicy
	err := r.Pool.QueryRow(ctx, query, customerID).Scan(
		&m.CustomerID,
		&m.CreditLimit,
		&m.Enabled,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: credit policy for customer %s", apperrors.ErrNotFound, customerID)
		}
		return nil, apperrors.NewAppError(500, "failed to query credit policy for "+customerID, err)
	}
	policy := mapping.ToDomainCreditPolicy(m)
	return &policy, nil
}

// SumOutstandingForCustomer computes the customer's outstanding balance from
// posted vouchers: sales-side totals less receipts and credit notes. Only
// committed ledger state is read, so an in-flight voucher never affects the
// result.
func (r *PgxCreditRepository) SumOutstandingForCustomer(ctx context.Context, customerID string) (decimal.Decimal, error) {
	query := `
		SELECT COALESCE(SUM(
			CASE
				WHEN v.voucher_type IN ('SALES', 'DEBIT_NOTE') THEN t.total
				ELSE -t.total
			END
		), 0)
		FROM vouchers v
		JOIN LATERAL (
			SELECT SUM(GREATEST(l.debit, l.credit)) AS total
			FROM voucher_lines l
			WHERE l.voucher_id = v.voucher_id AND l.account_id = v.party_id
		) t ON TRUE
		WHERE v.party_id = $1
			AND v.status = 'POSTED'
			AND v.voucher_type IN ('SALES', 'DEBIT_NOTE', 'RECEIPT', 'CREDIT_NOTE');
	`
	var sum decimal.Decimal
	if err := r.Pool.QueryRow(ctx, query, customerID).Scan(&sum); err != nil {
		return decimal.Zero, apperrors.NewAppError(500, "failed to sum outstanding for customer "+customerID, err)
	}
	return sum, nil
}

// SavePolicy creates or replaces a customer's credit policy.
func (r *PgxCreditRepository) SavePolicy(ctx context.Context, policy domain.CreditPolicy) error {
	m := mapping.ToModelCreditPolicy(policy)
	query := `
		INSERT INTO credit_policies (customer_id, credit_limit, enabled, created_at, created_by, last_updated_at, last_updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (customer_id) DO UPDATE
		SET credit_limit = EXCLUDED.credit_limit,
			enabled = EXCLUDED.enabled,
			last_updated_at = EXCLUDED.last_updated_at,
			last_updated_by = EXCLUDED.last_updated_by;
	`
	_, err := r.Pool.Exec(ctx, query,
		m.CustomerID, m.CreditLimit, m.Enabled,
		m.CreatedAt, m.CreatedBy, m.LastUpdatedAt, m.LastUpdatedBy,
	)
	if err != nil {
		return apperrors.NewAppError(500, "failed to save credit policy for "+policy.CustomerID, err)
	}
	return nil
}
