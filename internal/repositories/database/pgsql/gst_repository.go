package pgsql

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vyaparbooks/ledger_core_app/internal/apperrors"
	"github.com/vyaparbooks/ledger_core_app/internal/core/domain"
	portsrepo "github.com/vyaparbooks/ledger_core_app/internal/core/ports/repositories"
	"github.com/vyaparbooks/ledger_core_app/internal/models"
	"github.com/vyaparbooks/ledger_core_app/internal/utils/mapping"
)

const gstEntryColumns = `entry_id, supplier_gstin, invoice_no, invoice_date, invoice_value, itc_amount, status, matched_voucher_id, imported_at`

type PgxGSTRepository struct {
	BaseRepository
}

// newPgxGSTRepository creates a new repository for GST reconciliation entries.
func newPgxGSTRepository(pool *pgxpool.Pool) portsrepo.GSTReconRepositoryFacade {
	return &PgxGSTRepository{BaseRepository: BaseRepository{Pool: pool}}
}

// Ensure PgxGSTRepository implements portsrepo.GSTReconRepositoryFacade
var _ portsrepo.GSTReconRepositoryFacade = (*PgxGSTRepository)(nil)

func scanGSTEntry(row pgx.Row) (models.GSTReconEntry, error) {
	var m models.GSTReconEntry
	err := row.Scan(
		&m.EntryID,
		&m.SupplierGSTIN,
		&m.InvoiceNo,
		&m.InvoiceDate,
		&m.InvoiceValue,
		&m.ITCAmount,
		&m.Status,
		&m.MatchedVoucherID,
		&m.ImportedAt,
	)
	return m, err
}

// SaveEntries bulk-inserts imported feed rows.
func (r *PgxGSTRepository) SaveEntries(ctx context.Context, entries []domain.GSTReconEntry) error {
	if len(entries) == 0 {
		return nil
	}
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	query := `
		INSERT INTO gst_recon_entries (` + gstEntryColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9);
	`
	batch := &pgx.Batch{}
	for _, entry := range entries {
		m := mapping.ToModelGSTReconEntry(entry)
		batch.Queue(query, m.EntryID, m.SupplierGSTIN, m.InvoiceNo, m.InvoiceDate, m.InvoiceValue, m.ITCAmount, m.Status, m.MatchedVoucherID, m.ImportedAt)
	}
	results := tx.SendBatch(ctx, batch)
	for range entries {
		if _, err := results.Exec(); err != nil {
			results.Close()
			return apperrors.NewAppError(500, "failed to insert GST feed entry", err)
		}
	}
	if err := results.Close(); err != nil {
		return apperrors.NewAppError(500, "failed to close GST entry batch", err)
	}
	return r.Commit(ctx, tx)
}

// FindEntriesByStatus retrieves feed entries in the given statuses, in import
// order. An empty filter returns every entry.
func (r *PgxGSTRepository) FindEntriesByStatus(ctx context.Context, statuses []domain.GSTMatchStatus) ([]domain.GSTReconEntry, error) {
	query := `SELECT ` + gstEntryColumns + ` FROM gst_recon_entries`
	args := []any{}
	if len(statuses) > 0 {
		query += ` WHERE status = ANY($1)`
		args = append(args, statuses)
	}
	query += ` ORDER BY imported_at, entry_id;`

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query GST entries", err)
	}
	defer rows.Close()

	var entries []domain.GSTReconEntry
	for rows.Next() {
		m, err := scanGSTEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan GST entry: %w", err)
		}
		entries = append(entries, mapping.ToDomainGSTReconEntry(m))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating GST entries: %w", err)
	}
	return entries, nil
}

// Summarize aggregates entry counts and ITC totals per status bucket in a
// single pass over the table.
func (r *PgxGSTRepository) Summarize(ctx context.Context) (*domain.GSTReconSummary, error) {
	query := `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE status = 'MATCHED'),
			COUNT(*) FILTER (WHERE status = 'MISMATCHED'),
			COUNT(*) FILTER (WHERE status = 'MISSING_IN_BOOKS'),
			COUNT(*) FILTER (WHERE status = 'PENDING'),
			COALESCE(SUM(itc_amount) FILTER (WHERE status = 'MATCHED'), 0),
			COALESCE(SUM(itc_amount) FILTER (WHERE status <> 'MATCHED'), 0)
		FROM gst_recon_entries;
	`
	var summary domain.GSTReconSummary
	err := r.Pool.QueryRow(ctx, query).Scan(
		&summary.Total,
		&summary.Matched,
		&summary.Mismatched,
		&summary.MissingInBooks,
		&summary.Pending,
		&summary.MatchedITC,
		&summary.PendingITC,
	)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to summarize GST entries", err)
	}
	return &summary, nil
}

// FindPurchaseBills retrieves the posted purchase-type vouchers joined with
// their party GSTIN. The invoice value is the voucher's debit total.
func (r *PgxGSTRepository) FindPurchaseBills(ctx context.Context, from, to time.Time) ([]domain.PurchaseBillRef, error) {
	query := `
		SELECT v.voucher_id, COALESCE(a.gstin, ''), COALESCE(v.reference_no, ''), v.effective_date,
			COALESCE((SELECT SUM(l.debit) FROM voucher_lines l WHERE l.voucher_id = v.voucher_id), 0)
		FROM vouchers v
		JOIN accounts a ON a.account_id = v.party_id
		WHERE v.voucher_type = $1
			AND v.status = $2
			AND v.effective_date >= $3 AND v.effective_date <= $4
			AND v.reference_no IS NOT NULL
			AND a.gstin IS NOT NULL
		ORDER BY v.effective_date, v.voucher_id;
	`
	rows, err := r.Pool.Query(ctx, query, domain.VoucherTypePurchase, domain.VoucherPosted, from, to)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query purchase bills", err)
	}
	defer rows.Close()

	var bills []domain.PurchaseBillRef
	for rows.Next() {
		var bill domain.PurchaseBillRef
		if err := rows.Scan(&bill.VoucherID, &bill.SupplierGSTIN, &bill.InvoiceNo, &bill.InvoiceDate, &bill.InvoiceValue); err != nil {
			return nil, fmt.Errorf("failed to scan purchase bill: %w", err)
		}
		bills = append(bills, bill)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating purchase bills: %w", err)
	}
	return bills, nil
}

// UpdateEntryMatch records the outcome of the matching pass for one entry.
func (r *PgxGSTRepository) UpdateEntryMatch(ctx context.Context, entryID string, status domain.GSTMatchStatus, matchedVoucherID string) error {
	var voucherID *string
	if matchedVoucherID != "" {
		voucherID = &matchedVoucherID
	}
	query := `UPDATE gst_recon_entries SET status = $2, matched_voucher_id = $3 WHERE entry_id = $1;`
	tag, err := r.Pool.Exec(ctx, query, entryID, status, voucherID)
	if err != nil {
		return apperrors.NewAppError(500, "failed to update GST entry "+entryID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: GST entry %s", apperrors.ErrNotFound, entryID)
	}
	return nil
}
