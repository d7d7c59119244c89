package pgsql

import (
	"context"
	"errors"
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

const sessionColumns = `session_id, bank_account_id, period_start, period_end, statement_opening, statement_closing, status, approval_note,
	created_at, created_by, last_updated_at, last_updated_by`

const entryColumns = `entry_id, session_id, entry_date, amount, direction, reference, status, ordinal`

type PgxReconRepository struct {
	BaseRepository
}

// newPgxReconRepository creates a new repository for reconciliation sessions.
func newPgxReconRepository(pool *pgxpool.Pool) portsrepo.ReconRepositoryFacade {
	return &PgxReconRepository{BaseRepository: BaseRepository{Pool: pool}}
}

// Ensure PgxReconRepository implements portsrepo.ReconRepositoryFacade
var _ portsrepo.ReconRepositoryFacade = (*PgxReconRepository)(nil)

func scanSession(row pgx.Row) (models.ReconSession, error) {
	var m models.ReconSession
	err := row.Scan(
		&m.SessionID,
		&m.BankAccountID,
		&m.PeriodStart,
		&m.PeriodEnd,
		&m.StatementOpening,
		&m.StatementClosing,
		&m.Status,
		&m.ApprovalNote,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	return m, err
}

// SaveSession persists a new reconciliation session.
func (r *PgxReconRepository) SaveSession(ctx context.Context, session domain.ReconSession) error {
	m := mapping.ToModelReconSession(session)
	query := `
		INSERT INTO recon_sessions (` + sessionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12);
	`
	_, err := r.Pool.Exec(ctx, query,
		m.SessionID, m.BankAccountID, m.PeriodStart, m.PeriodEnd, m.StatementOpening, m.StatementClosing, m.Status, m.ApprovalNote,
		m.CreatedAt, m.CreatedBy, m.LastUpdatedAt, m.LastUpdatedBy,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: session %s", apperrors.ErrDuplicate, session.SessionID)
		}
		return apperrors.NewAppError(500, "failed to insert reconciliation session "+session.SessionID, err)
	}
	return nil
}

// FindSessionByID retrieves a reconciliation session header.
func (r *PgxReconRepository) FindSessionByID(ctx context.Context, sessionID string) (*domain.ReconSession, error) {
	query := `SELECT ` + sessionColumns + ` FROM recon_sessions WHERE session_id = $1;`
	m, err := scanSession(r.Pool.QueryRow(ctx, query, sessionID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: session %s", apperrors.ErrNotFound, sessionID)
		}
		return nil, apperrors.NewAppError(500, "failed to query session "+sessionID, err)
	}
	session := mapping.ToDomainReconSession(m)
	return &session, nil
}

// ListSessions retrieves sessions for a bank account, newest first.
func (r *PgxReconRepository) ListSessions(ctx context.Context, bankAccountID string, limit int, offset int) ([]domain.ReconSession, error) {
	query := `
		SELECT ` + sessionColumns + `
		FROM recon_sessions
		WHERE bank_account_id = $1
		ORDER BY period_start DESC, created_at DESC
		LIMIT $2 OFFSET $3;
	`
	rows, err := r.Pool.Query(ctx, query, bankAccountID, limit, offset)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to list sessions", err)
	}
	defer rows.Close()

	var sessions []domain.ReconSession
	for rows.Next() {
		m, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan session row: %w", err)
		}
		sessions = append(sessions, mapping.ToDomainReconSession(m))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating session rows: %w", err)
	}
	return sessions, nil
}

// SaveExternalEntries bulk-inserts imported statement rows.
func (r *PgxReconRepository) SaveExternalEntries(ctx context.Context, entries []domain.ExternalEntry) error {
	if len(entries) == 0 {
		return nil
	}
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	query := `
		INSERT INTO recon_external_entries (` + entryColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8);
	`
	batch := &pgx.Batch{}
	for _, entry := range entries {
		m := mapping.ToModelExternalEntry(entry)
		batch.Queue(query, m.EntryID, m.SessionID, m.EntryDate, m.Amount, m.Direction, m.Reference, m.Status, m.Ordinal)
	}
	results := tx.SendBatch(ctx, batch)
	for range entries {
		if _, err := results.Exec(); err != nil {
			results.Close()
			return apperrors.NewAppError(500, "failed to insert external entry", err)
		}
	}
	if err := results.Close(); err != nil {
		return apperrors.NewAppError(500, "failed to close external entry batch", err)
	}
	return r.Commit(ctx, tx)
}

// FindExternalEntries retrieves a session's external entries in import order.
func (r *PgxReconRepository) FindExternalEntries(ctx context.Context, sessionID string) ([]domain.ExternalEntry, error) {
	query := `SELECT ` + entryColumns + ` FROM recon_external_entries WHERE session_id = $1 ORDER BY ordinal;`
	rows, err := r.Pool.Query(ctx, query, sessionID)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query external entries for session "+sessionID, err)
	}
	defer rows.Close()

	var entries []domain.ExternalEntry
	for rows.Next() {
		var m models.ExternalEntry
		if err := rows.Scan(&m.EntryID, &m.SessionID, &m.EntryDate, &m.Amount, &m.Direction, &m.Reference, &m.Status, &m.Ordinal); err != nil {
			return nil, fmt.Errorf("failed to scan external entry: %w", err)
		}
		entries = append(entries, mapping.ToDomainExternalEntry(m))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating external entries: %w", err)
	}
	return entries, nil
}

// FindMatchLinks retrieves all match links of a session.
func (r *PgxReconRepository) FindMatchLinks(ctx context.Context, sessionID string) ([]domain.MatchLink, error) {
	query := `
		SELECT link_id, session_id, entry_id, posting_id, is_manual, created_at, created_by
		FROM recon_match_links
		WHERE session_id = $1
		ORDER BY created_at, link_id;
	`
	rows, err := r.Pool.Query(ctx, query, sessionID)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query match links for session "+sessionID, err)
	}
	defer rows.Close()

	var links []domain.MatchLink
	for rows.Next() {
		var m models.MatchLink
		if err := rows.Scan(&m.LinkID, &m.SessionID, &m.EntryID, &m.PostingID, &m.IsManual, &m.CreatedAt, &m.CreatedBy); err != nil {
			return nil, fmt.Errorf("failed to scan match link: %w", err)
		}
		links = append(links, mapping.ToDomainMatchLink(m))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating match links: %w", err)
	}
	return links, nil
}

// SaveMatchLink persists one match link and moves the external entry to the
// given status, atomically.
func (r *PgxReconRepository) SaveMatchLink(ctx context.Context, link domain.MatchLink, entryStatus domain.MatchStatus) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	m := mapping.ToModelMatchLink(link)
	linkQuery := `
		INSERT INTO recon_match_links (link_id, session_id, entry_id, posting_id, is_manual, created_at, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7);
	`
	if _, err := tx.Exec(ctx, linkQuery, m.LinkID, m.SessionID, m.EntryID, m.PostingID, m.IsManual, m.CreatedAt, m.CreatedBy); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: posting %s already linked", apperrors.ErrDuplicate, link.PostingID)
		}
		return apperrors.NewAppError(500, "failed to insert match link", err)
	}

	statusQuery := `UPDATE recon_external_entries SET status = $2 WHERE entry_id = $1;`
	tag, err := tx.Exec(ctx, statusQuery, link.EntryID, entryStatus)
	if err != nil {
		return apperrors.NewAppError(500, "failed to update entry status for "+link.EntryID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: external entry %s", apperrors.ErrNotFound, link.EntryID)
	}
	return r.Commit(ctx, tx)
}

// UpdateEntryStatus sets an external entry's match status.
func (r *PgxReconRepository) UpdateEntryStatus(ctx context.Context, entryID string, status domain.MatchStatus) error {
	query := `UPDATE recon_external_entries SET status = $2 WHERE entry_id = $1;`
	tag, err := r.Pool.Exec(ctx, query, entryID, status)
	if err != nil {
		return apperrors.NewAppError(500, "failed to update status of entry "+entryID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: external entry %s", apperrors.ErrNotFound, entryID)
	}
	return nil
}

// ReplaceManualLinks removes any existing links for the entry and inserts the
// manual links in one transaction.
func (r *PgxReconRepository) ReplaceManualLinks(ctx context.Context, entryID string, links []domain.MatchLink) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	if _, err := tx.Exec(ctx, `DELETE FROM recon_match_links WHERE entry_id = $1;`, entryID); err != nil {
		return apperrors.NewAppError(500, "failed to clear links of entry "+entryID, err)
	}

	query := `
		INSERT INTO recon_match_links (link_id, session_id, entry_id, posting_id, is_manual, created_at, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7);
	`
	for _, link := range links {
		m := mapping.ToModelMatchLink(link)
		if _, err := tx.Exec(ctx, query, m.LinkID, m.SessionID, m.EntryID, m.PostingID, m.IsManual, m.CreatedAt, m.CreatedBy); err != nil {
			if isUniqueViolation(err) {
				return fmt.Errorf("%w: posting %s already linked", apperrors.ErrDuplicate, link.PostingID)
			}
			return apperrors.NewAppError(500, "failed to insert manual link", err)
		}
	}
	return r.Commit(ctx, tx)
}

// ApproveSession archives a session with its approval note.
func (r *PgxReconRepository) ApproveSession(ctx context.Context, sessionID string, note string, userID string, now time.Time) error {
	query := `
		UPDATE recon_sessions
		SET status = $2, approval_note = $3, last_updated_at = $4, last_updated_by = $5
		WHERE session_id = $1 AND status = $6;
	`
	tag, err := r.Pool.Exec(ctx, query, sessionID, domain.ReconSessionApproved, note, now, userID, domain.ReconSessionOpen)
	if err != nil {
		return apperrors.NewAppError(500, "failed to approve session "+sessionID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: session %s is not open", apperrors.ErrInvalidState, sessionID)
	}
	return nil
}
