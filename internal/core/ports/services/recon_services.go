package services

import (
	"context"

	"github.com/vyaparbooks/ledger_core_app/internal/core/domain"
	"github.com/vyaparbooks/ledger_core_app/internal/dto"
)

// ReconSvcFacade drives bank-statement reconciliation sessions.
type ReconSvcFacade interface {
	// CreateSession starts a reconciliation exercise for one bank account
	// and statement period.
	CreateSession(ctx context.Context, req dto.CreateSessionRequest, userID string) (*domain.ReconSession, error)

	// ImportExternalEntries attaches parsed statement rows to a session.
	ImportExternalEntries(ctx context.Context, sessionID string, req dto.ImportExternalEntriesRequest, userID string) (int, error)

	// AutoMatch runs the matching engine over unresolved entries. Re-running
	// is idempotent: confirmed links are never duplicated or overwritten.
	AutoMatch(ctx context.Context, sessionID string, userID string) (*dto.AutoMatchReport, error)

	// ManualMatch links an entry to one or more postings, replacing any
	// existing auto-match for that entry.
	ManualMatch(ctx context.Context, sessionID string, req dto.ManualMatchRequest, userID string) error

	// UnmatchEntry clears an entry's links and returns it to pending.
	UnmatchEntry(ctx context.Context, sessionID string, entryID string, userID string) error

	// GetSession returns the session's current match state and summary,
	// including the reconciliation difference.
	GetSession(ctx context.Context, sessionID string) (*dto.SessionResponse, error)

	// ApproveSession archives the session. The difference is surfaced, not
	// forced to zero; the note records how it was explained.
	ApproveSession(ctx context.Context, sessionID string, req dto.ApproveSessionRequest, userID string) error
}

// GSTReconSvcFacade drives authority-feed vs purchase-bill reconciliation.
type GSTReconSvcFacade interface {
	// ImportFeed bulk-creates feed entries in PENDING status.
	ImportFeed(ctx context.Context, req dto.ImportGSTFeedRequest, userID string) (int, error)

	// RunMatch executes a matching pass over pending/unresolved entries
	// against posted purchase bills in the window.
	RunMatch(ctx context.Context, req dto.RunGSTMatchRequest, userID string) (*dto.GSTMatchReport, error)

	// GetSummary aggregates entries per status bucket with ITC totals.
	GetSummary(ctx context.Context) (*domain.GSTReconSummary, error)

	// ListEntries returns feed entries filtered by status.
	ListEntries(ctx context.Context, statuses []domain.GSTMatchStatus) ([]domain.GSTReconEntry, error)
}
