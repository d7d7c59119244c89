package repositories

import (
	"context"
	"time"

	"github.com/vyaparbooks/ledger_core_app/internal/core/domain"
)

// GSTReconReader defines read operations for GST reconciliation entries
type GSTReconReader interface {
	// FindEntriesByStatus retrieves feed entries in the given statuses, in
	// import order. An empty filter returns every entry.
	FindEntriesByStatus(ctx context.Context, statuses []domain.GSTMatchStatus) ([]domain.GSTReconEntry, error)

	// Summarize aggregates entry counts and ITC totals per status bucket.
	Summarize(ctx context.Context) (*domain.GSTReconSummary, error)

	// FindPurchaseBills retrieves the posted purchase-type vouchers joined
	// with their party GSTIN, for the matching pass.
	FindPurchaseBills(ctx context.Context, from, to time.Time) ([]domain.PurchaseBillRef, error)
}

// GSTReconWriter defines write operations for GST reconciliation entries
type GSTReconWriter interface {
	// SaveEntries bulk-inserts imported feed rows as PENDING.
	SaveEntries(ctx context.Context, entries []domain.GSTReconEntry) error

	// UpdateEntryMatch records the outcome of the matching pass for one
	// entry. Committed per entry so an interrupted pass can resume.
	UpdateEntryMatch(ctx context.Context, entryID string, status domain.GSTMatchStatus, matchedVoucherID string) error
}

// GSTReconRepositoryFacade combines the GST reconciliation repository interfaces
type GSTReconRepositoryFacade interface {
	GSTReconReader
	GSTReconWriter
}
