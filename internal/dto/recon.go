package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/vyaparbooks/ledger_core_app/internal/core/domain"
)

// CreateSessionRequest starts a bank reconciliation session.
type CreateSessionRequest struct {
	BankAccountID    string          `json:"bankAccountID" binding:"required"`
	PeriodStart      time.Time       `json:"periodStart" binding:"required"`
	PeriodEnd        time.Time       `json:"periodEnd" binding:"required"`
	StatementOpening decimal.Decimal `json:"statementOpening"`
	StatementClosing decimal.Decimal `json:"statementClosing"`
}

// ExternalEntryInput is one parsed bank statement row. Parsing happens in an
// external component; rows arrive here already structured.
type ExternalEntryInput struct {
	EntryDate time.Time        `json:"entryDate" binding:"required"`
	Amount    decimal.Decimal  `json:"amount" binding:"required"`
	Direction domain.EntrySide `json:"direction" binding:"required,oneof=DEBIT CREDIT"`
	Reference string           `json:"reference"`
}

// ImportExternalEntriesRequest bulk-imports statement rows into a session.
type ImportExternalEntriesRequest struct {
	Entries []ExternalEntryInput `json:"entries" binding:"required,min=1,dive"`
}

// ManualMatchRequest links one external entry to one or more postings,
// overriding any existing auto-match.
type ManualMatchRequest struct {
	EntryID    string   `json:"entryID" binding:"required"`
	PostingIDs []string `json:"postingIDs" binding:"required,min=1"`
}

// ApproveSessionRequest archives a session. The note records how any
// remaining reconciliation difference was explained or accepted.
type ApproveSessionRequest struct {
	Note string `json:"note"`
}

// AutoMatchReport summarizes one auto-match pass over a session.
type AutoMatchReport struct {
	Evaluated   int `json:"evaluated"`
	AutoMatched int `json:"autoMatched"`
	Unmatched   int `json:"unmatched"`
	Ambiguous   int `json:"ambiguous"`
	Skipped     int `json:"skipped"` // Already resolved entries left untouched
}

// ExternalEntryResponse is the API representation of a statement entry.
type ExternalEntryResponse struct {
	EntryID   string             `json:"entryID"`
	EntryDate time.Time          `json:"entryDate"`
	Amount    decimal.Decimal    `json:"amount"`
	Direction domain.EntrySide   `json:"direction"`
	Reference string             `json:"reference,omitempty"`
	Status    domain.MatchStatus `json:"status"`
}

// SessionResponse is the full API view of a session: summary, entries and links.
type SessionResponse struct {
	Summary domain.ReconSummary     `json:"summary"`
	Entries []ExternalEntryResponse `json:"entries"`
	Links   []domain.MatchLink      `json:"links"`
}
