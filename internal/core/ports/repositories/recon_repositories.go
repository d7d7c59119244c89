package repositories

import (
	"context"
	"time"

	"github.com/vyaparbooks/ledger_core_app/internal/core/domain"
)

// ReconSessionReader defines read operations for reconciliation sessions
type ReconSessionReader interface {
	// FindSessionByID retrieves a reconciliation session header.
	FindSessionByID(ctx context.Context, sessionID string) (*domain.ReconSession, error)

	// FindExternalEntries retrieves a session's external entries in import order.
	FindExternalEntries(ctx context.Context, sessionID string) ([]domain.ExternalEntry, error)

	// FindMatchLinks retrieves all match links of a session.
	FindMatchLinks(ctx context.Context, sessionID string) ([]domain.MatchLink, error)

	// ListSessions retrieves sessions for a bank account, newest first.
	ListSessions(ctx context.Context, bankAccountID string, limit int, offset int) ([]domain.ReconSession, error)
}

// ReconSessionWriter defines write operations for reconciliation sessions
type ReconSessionWriter interface {
	// SaveSession persists a new reconciliation session.
	SaveSession(ctx context.Context, session domain.ReconSession) error

	// SaveExternalEntries bulk-inserts imported statement rows.
	SaveExternalEntries(ctx context.Context, entries []domain.ExternalEntry) error

	// SaveMatchLink persists one match link and moves the external entry to
	// the given status, atomically. Used per matched unit of work so an
	// interrupted run leaves no partial link.
	SaveMatchLink(ctx context.Context, link domain.MatchLink, entryStatus domain.MatchStatus) error

	// UpdateEntryStatus sets an external entry's match status.
	UpdateEntryStatus(ctx context.Context, entryID string, status domain.MatchStatus) error

	// ReplaceManualLinks removes any existing links for the entry and
	// inserts the manual links in one transaction.
	ReplaceManualLinks(ctx context.Context, entryID string, links []domain.MatchLink) error

	// ApproveSession archives a session with its approval note.
	ApproveSession(ctx context.Context, sessionID string, note string, userID string, now time.Time) error
}

// ReconRepositoryFacade combines the reconciliation repository interfaces
type ReconRepositoryFacade interface {
	ReconSessionReader
	ReconSessionWriter
}
