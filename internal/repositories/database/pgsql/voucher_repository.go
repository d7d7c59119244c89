package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/vyaparbooks/ledger_core_app/internal/apperrors"
	"github.com/vyaparbooks/ledger_core_app/internal/core/domain"
	portsrepo "github.com/vyaparbooks/ledger_core_app/internal/core/ports/repositories"
	"github.com/vyaparbooks/ledger_core_app/internal/models"
	"github.com/vyaparbooks/ledger_core_app/internal/utils/mapping"
	"github.com/vyaparbooks/ledger_core_app/internal/utils/pagination"
)

const voucherColumns = `voucher_id, voucher_type, voucher_date, effective_date, narration, reference_no, status, party_id,
	bank_name, bank_instrument_no, bank_instrument_date,
	auto_post, schedule_reason, provisional_reason, cancellation_reason,
	created_at, created_by, last_updated_at, last_updated_by`

const postingColumns = `posting_id, voucher_id, line_id, account_id, amount, narration, is_reversal, posted_at, posted_by, running_balance`

type PgxVoucherRepository struct {
	BaseRepository
}

// newPgxVoucherRepository creates a new repository for voucher, line and posting data.
func newPgxVoucherRepository(pool *pgxpool.Pool) portsrepo.VoucherRepositoryWithTx {
	return &PgxVoucherRepository{BaseRepository: BaseRepository{Pool: pool}}
}

// Ensure PgxVoucherRepository implements portsrepo.VoucherRepositoryWithTx
var _ portsrepo.VoucherRepositoryWithTx = (*PgxVoucherRepository)(nil)

func scanVoucher(row pgx.Row) (models.Voucher, error) {
	var m models.Voucher
	err := row.Scan(
		&m.VoucherID,
		&m.VoucherType,
		&m.VoucherDate,
		&m.EffectiveDate,
		&m.Narration,
		&m.ReferenceNo,
		&m.Status,
		&m.PartyID,
		&m.BankName,
		&m.BankInstrumentNo,
		&m.BankInstrumentDate,
		&m.AutoPost,
		&m.ScheduleReason,
		&m.ProvisionalReason,
		&m.CancellationReason,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	return m, err
}

func scanPosting(row pgx.Row) (models.LedgerPosting, error) {
	var m models.LedgerPosting
	err := row.Scan(
		&m.PostingID,
		&m.VoucherID,
		&m.LineID,
		&m.AccountID,
		&m.Amount,
		&m.Narration,
		&m.IsReversal,
		&m.PostedAt,
		&m.PostedBy,
		&m.RunningBalance,
	)
	return m, err
}

// SaveVoucher persists a new draft voucher with its line entries in one
// transaction.
func (r *PgxVoucherRepository) SaveVoucher(ctx context.Context, voucher domain.Voucher, lines []domain.LineEntry) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	m := mapping.ToModelVoucher(voucher)
	voucherQuery := `
		INSERT INTO vouchers (` + voucherColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19);
	`
	_, err = tx.Exec(ctx, voucherQuery,
		m.VoucherID, m.VoucherType, m.VoucherDate, m.EffectiveDate, m.Narration, m.ReferenceNo, m.Status, m.PartyID,
		m.BankName, m.BankInstrumentNo, m.BankInstrumentDate,
		m.AutoPost, m.ScheduleReason, m.ProvisionalReason, m.CancellationReason,
		m.CreatedAt, m.CreatedBy, m.LastUpdatedAt, m.LastUpdatedBy,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: voucher %s", apperrors.ErrDuplicate, voucher.VoucherID)
		}
		return apperrors.NewAppError(500, "failed to insert voucher "+voucher.VoucherID, err)
	}

	lineQuery := `
		INSERT INTO voucher_lines (line_id, voucher_id, account_id, debit, credit, narration, ordinal)
		VALUES ($1, $2, $3, $4, $5, $6, $7);
	`
	batch := &pgx.Batch{}
	for _, line := range lines {
		lm := mapping.ToModelLineEntry(line)
		batch.Queue(lineQuery, lm.LineID, lm.VoucherID, lm.AccountID, lm.Debit, lm.Credit, lm.Narration, lm.Ordinal)
	}
	results := tx.SendBatch(ctx, batch)
	for range lines {
		if _, err := results.Exec(); err != nil {
			results.Close()
			return apperrors.NewAppError(500, "failed to insert voucher lines for "+voucher.VoucherID, err)
		}
	}
	if err := results.Close(); err != nil {
		return apperrors.NewAppError(500, "failed to close line batch for "+voucher.VoucherID, err)
	}

	return r.Commit(ctx, tx)
}

// FindVoucherByID retrieves a voucher header by its unique identifier.
func (r *PgxVoucherRepository) FindVoucherByID(ctx context.Context, voucherID string) (*domain.Voucher, error) {
	query := `SELECT ` + voucherColumns + ` FROM vouchers WHERE voucher_id = $1;`
	m, err := scanVoucher(r.Pool.QueryRow(ctx, query, voucherID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: voucher %s", apperrors.ErrNotFound, voucherID)
		}
		return nil, apperrors.NewAppError(500, "failed to query voucher "+voucherID, err)
	}
	voucher := mapping.ToDomainVoucher(m)
	return &voucher, nil
}

// FindVoucherByIDForUpdate retrieves a voucher and locks its row within a
// transaction. Serializes lifecycle transitions on the same voucher.
func (r *PgxVoucherRepository) FindVoucherByIDForUpdate(ctx context.Context, tx pgx.Tx, voucherID string) (*domain.Voucher, error) {
	query := `SELECT ` + voucherColumns + ` FROM vouchers WHERE voucher_id = $1 FOR UPDATE;`
	m, err := scanVoucher(tx.QueryRow(ctx, query, voucherID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: voucher %s", apperrors.ErrNotFound, voucherID)
		}
		return nil, apperrors.NewAppError(500, "failed to lock voucher "+voucherID, translateConcurrency(err))
	}
	voucher := mapping.ToDomainVoucher(m)
	return &voucher, nil
}

// FindLinesByVoucherID retrieves the ordered line entries of a voucher.
func (r *PgxVoucherRepository) FindLinesByVoucherID(ctx context.Context, voucherID string) ([]domain.LineEntry, error) {
	query := `
		SELECT line_id, voucher_id, account_id, debit, credit, narration, ordinal
		FROM voucher_lines
		WHERE voucher_id = $1
		ORDER BY ordinal;
	`
	rows, err := r.Pool.Query(ctx, query, voucherID)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query lines for voucher "+voucherID, err)
	}
	defer rows.Close()

	var lines []domain.LineEntry
	for rows.Next() {
		var m models.LineEntry
		if err := rows.Scan(&m.LineID, &m.VoucherID, &m.AccountID, &m.Debit, &m.Credit, &m.Narration, &m.Ordinal); err != nil {
			return nil, fmt.Errorf("failed to scan voucher line: %w", err)
		}
		lines = append(lines, mapping.ToDomainLineEntry(m))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating voucher lines: %w", err)
	}
	return lines, nil
}

// ListVouchers retrieves a token-paginated list of vouchers, newest first,
// optionally filtered by status and type.
func (r *PgxVoucherRepository) ListVouchers(ctx context.Context, status *domain.VoucherStatus, voucherType *domain.VoucherType, limit int, nextToken *string) ([]domain.Voucher, *string, error) {
	query := `SELECT ` + voucherColumns + ` FROM vouchers WHERE 1=1`
	args := []any{}
	argPos := 1

	if status != nil {
		query += fmt.Sprintf(" AND status = $%d", argPos)
		args = append(args, *status)
		argPos++
	}
	if voucherType != nil {
		query += fmt.Sprintf(" AND voucher_type = $%d", argPos)
		args = append(args, *voucherType)
		argPos++
	}
	if nextToken != nil && *nextToken != "" {
		tokenDate, tokenCreated, err := pagination.DecodeToken(*nextToken)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
		}
		query += fmt.Sprintf(" AND (voucher_date, created_at) < ($%d, $%d)", argPos, argPos+1)
		args = append(args, tokenDate, tokenCreated)
		argPos += 2
	}
	// Fetch one extra row to detect whether another page exists.
	query += fmt.Sprintf(" ORDER BY voucher_date DESC, created_at DESC LIMIT $%d;", argPos)
	args = append(args, limit+1)

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, nil, apperrors.NewAppError(500, "failed to list vouchers", err)
	}
	defer rows.Close()

	var vouchers []domain.Voucher
	for rows.Next() {
		m, err := scanVoucher(rows)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to scan voucher row: %w", err)
		}
		vouchers = append(vouchers, mapping.ToDomainVoucher(m))
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("error iterating voucher rows: %w", err)
	}

	var token *string
	if len(vouchers) > limit {
		vouchers = vouchers[:limit]
		last := vouchers[len(vouchers)-1]
		t := pagination.EncodeToken(last.VoucherDate, last.CreatedAt)
		token = &t
	}
	return vouchers, token, nil
}

// ListDueAutoPostVouchers retrieves DRAFT vouchers flagged for automatic
// posting whose effective date is on or before asOf, oldest first.
func (r *PgxVoucherRepository) ListDueAutoPostVouchers(ctx context.Context, asOf time.Time) ([]domain.Voucher, error) {
	query := `
		SELECT ` + voucherColumns + `
		FROM vouchers
		WHERE status = $1 AND auto_post = TRUE AND effective_date <= $2
		ORDER BY effective_date, created_at;
	`
	rows, err := r.Pool.Query(ctx, query, domain.VoucherDraft, asOf)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to list due auto-post vouchers", err)
	}
	defer rows.Close()

	var vouchers []domain.Voucher
	for rows.Next() {
		m, err := scanVoucher(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan voucher row: %w", err)
		}
		vouchers = append(vouchers, mapping.ToDomainVoucher(m))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating voucher rows: %w", err)
	}
	return vouchers, nil
}

// UpdateVoucher updates mutable header fields of a draft voucher.
func (r *PgxVoucherRepository) UpdateVoucher(ctx context.Context, voucher domain.Voucher) error {
	m := mapping.ToModelVoucher(voucher)
	query := `
		UPDATE vouchers
		SET voucher_date = $2, effective_date = $3, narration = $4, reference_no = $5, party_id = $6,
			bank_name = $7, bank_instrument_no = $8, bank_instrument_date = $9,
			auto_post = $10, schedule_reason = $11,
			last_updated_at = $12, last_updated_by = $13
		WHERE voucher_id = $1;
	`
	tag, err := r.Pool.Exec(ctx, query,
		m.VoucherID, m.VoucherDate, m.EffectiveDate, m.Narration, m.ReferenceNo, m.PartyID,
		m.BankName, m.BankInstrumentNo, m.BankInstrumentDate,
		m.AutoPost, m.ScheduleReason,
		m.LastUpdatedAt, m.LastUpdatedBy,
	)
	if err != nil {
		return apperrors.NewAppError(500, "failed to update voucher "+voucher.VoucherID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: voucher %s", apperrors.ErrNotFound, voucher.VoucherID)
	}
	return nil
}

// UpdateVoucherStatusInTx moves a voucher to a new status within the given
// transaction. The reason lands in the column matching the target status;
// posting clears any provisional reason left from an earlier hold.
func (r *PgxVoucherRepository) UpdateVoucherStatusInTx(ctx context.Context, tx pgx.Tx, voucherID string, status domain.VoucherStatus, reason string, userID string, now time.Time) error {
	var query string
	args := []any{voucherID, status, now, userID}

	switch status {
	case domain.VoucherCancelled:
		query = `
			UPDATE vouchers
			SET status = $2, last_updated_at = $3, last_updated_by = $4, cancellation_reason = $5
			WHERE voucher_id = $1;
		`
		args = append(args, reason)
	case domain.VoucherProvisional:
		query = `
			UPDATE vouchers
			SET status = $2, last_updated_at = $3, last_updated_by = $4, provisional_reason = $5
			WHERE voucher_id = $1;
		`
		args = append(args, reason)
	case domain.VoucherPosted, domain.VoucherDraft:
		query = `
			UPDATE vouchers
			SET status = $2, last_updated_at = $3, last_updated_by = $4, provisional_reason = NULL
			WHERE voucher_id = $1;
		`
	default:
		return fmt.Errorf("%w: unknown voucher status %s", apperrors.ErrValidation, status)
	}

	tag, err := tx.Exec(ctx, query, args...)
	if err != nil {
		return apperrors.NewAppError(500, "failed to update status of voucher "+voucherID, translateConcurrency(err))
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: voucher %s", apperrors.ErrNotFound, voucherID)
	}
	return nil
}

// DeleteVoucher removes a draft voucher and its lines.
func (r *PgxVoucherRepository) DeleteVoucher(ctx context.Context, voucherID string) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	if _, err := tx.Exec(ctx, `DELETE FROM voucher_lines WHERE voucher_id = $1;`, voucherID); err != nil {
		return apperrors.NewAppError(500, "failed to delete lines of voucher "+voucherID, err)
	}
	tag, err := tx.Exec(ctx, `DELETE FROM vouchers WHERE voucher_id = $1;`, voucherID)
	if err != nil {
		return apperrors.NewAppError(500, "failed to delete voucher "+voucherID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: voucher %s", apperrors.ErrNotFound, voucherID)
	}
	return r.Commit(ctx, tx)
}

// InsertPostingsInTx appends immutable postings within the given transaction.
func (r *PgxVoucherRepository) InsertPostingsInTx(ctx context.Context, tx pgx.Tx, postings []domain.LedgerPosting) error {
	query := `
		INSERT INTO ledger_postings (` + postingColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10);
	`
	batch := &pgx.Batch{}
	for _, posting := range postings {
		m := mapping.ToModelPosting(posting)
		batch.Queue(query, m.PostingID, m.VoucherID, m.LineID, m.AccountID, m.Amount, m.Narration, m.IsReversal, m.PostedAt, m.PostedBy, m.RunningBalance)
	}
	results := tx.SendBatch(ctx, batch)
	for range postings {
		if _, err := results.Exec(); err != nil {
			results.Close()
			return apperrors.NewAppError(500, "failed to insert ledger posting", translateConcurrency(err))
		}
	}
	return results.Close()
}

// FindPostingsByVoucherID retrieves the postings created by a voucher.
func (r *PgxVoucherRepository) FindPostingsByVoucherID(ctx context.Context, voucherID string, includeReversals bool) ([]domain.LedgerPosting, error) {
	query := `SELECT ` + postingColumns + ` FROM ledger_postings WHERE voucher_id = $1`
	if !includeReversals {
		query += ` AND is_reversal = FALSE`
	}
	query += ` ORDER BY posted_at, posting_id;`

	rows, err := r.Pool.Query(ctx, query, voucherID)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query postings for voucher "+voucherID, err)
	}
	defer rows.Close()

	var postings []domain.LedgerPosting
	for rows.Next() {
		m, err := scanPosting(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan posting row: %w", err)
		}
		postings = append(postings, mapping.ToDomainPosting(m))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating posting rows: %w", err)
	}
	return postings, nil
}

// ListPostingsByAccount retrieves a token-paginated posting sequence for an
// account within a date range, in posting order.
func (r *PgxVoucherRepository) ListPostingsByAccount(ctx context.Context, accountID string, from, to time.Time, limit int, nextToken *string) ([]domain.LedgerPosting, *string, error) {
	query := `
		SELECT ` + postingColumns + `
		FROM ledger_postings
		WHERE account_id = $1 AND posted_at >= $2 AND posted_at <= $3
	`
	args := []any{accountID, from, to}
	argPos := 4

	if nextToken != nil && *nextToken != "" {
		fields, err := pagination.DecodeMultiFieldToken(*nextToken)
		if err != nil || len(fields) != 2 {
			return nil, nil, fmt.Errorf("%w: invalid pagination token", apperrors.ErrValidation)
		}
		tokenPostedAt, err := time.Parse(time.RFC3339Nano, fields[0])
		if err != nil {
			return nil, nil, fmt.Errorf("%w: invalid pagination token: %v", apperrors.ErrValidation, err)
		}
		query += fmt.Sprintf(" AND (posted_at, posting_id) > ($%d, $%d)", argPos, argPos+1)
		args = append(args, tokenPostedAt, fields[1])
		argPos += 2
	}
	query += fmt.Sprintf(" ORDER BY posted_at, posting_id LIMIT $%d;", argPos)
	args = append(args, limit+1)

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, nil, apperrors.NewAppError(500, "failed to list postings for account "+accountID, err)
	}
	defer rows.Close()

	var postings []domain.LedgerPosting
	for rows.Next() {
		m, err := scanPosting(rows)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to scan posting row: %w", err)
		}
		postings = append(postings, mapping.ToDomainPosting(m))
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("error iterating posting rows: %w", err)
	}

	var token *string
	if len(postings) > limit {
		postings = postings[:limit]
		last := postings[len(postings)-1]
		t := pagination.EncodeMultiFieldToken(last.PostedAt.Format(time.RFC3339Nano), last.PostingID)
		token = &t
	}
	return postings, token, nil
}

// SumPostingsForAccount sums the signed posting amounts for an account up to
// the given timestamp. COALESCE keeps an account with no postings at zero.
func (r *PgxVoucherRepository) SumPostingsForAccount(ctx context.Context, accountID string, asOf time.Time) (decimal.Decimal, error) {
	query := `
		SELECT COALESCE(SUM(amount), 0)
		FROM ledger_postings
		WHERE account_id = $1 AND posted_at <= $2;
	`
	var sum decimal.Decimal
	if err := r.Pool.QueryRow(ctx, query, accountID, asOf).Scan(&sum); err != nil {
		return decimal.Zero, apperrors.NewAppError(500, "failed to sum postings for account "+accountID, err)
	}
	return sum, nil
}
