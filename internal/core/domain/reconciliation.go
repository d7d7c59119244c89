package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ReconSessionStatus indicates the lifecycle state of a reconciliation session.
type ReconSessionStatus string

const (
	ReconSessionOpen     ReconSessionStatus = "OPEN"
	ReconSessionApproved ReconSessionStatus = "APPROVED"
)

// MatchStatus tracks how an external statement entry was resolved.
type MatchStatus string

const (
	MatchPending MatchStatus = "PENDING"
	MatchAuto    MatchStatus = "AUTO_MATCHED"
	MatchManual  MatchStatus = "MANUALLY_MATCHED"
	MatchUnfound MatchStatus = "UNMATCHED"
)

// ReconSession is one bank-statement-vs-book reconciliation exercise for a
// single bank account and statement period. Approved sessions are archived,
// never deleted.
type ReconSession struct {
	SessionID        string             `json:"sessionID"`
	BankAccountID    string             `json:"bankAccountID"`
	PeriodStart      time.Time          `json:"periodStart"`
	PeriodEnd        time.Time          `json:"periodEnd"`
	StatementOpening decimal.Decimal    `json:"statementOpening"`
	StatementClosing decimal.Decimal    `json:"statementClosing"`
	Status           ReconSessionStatus `json:"status"`
	ApprovalNote     string             `json:"approvalNote,omitempty"`
	AuditFields
}

// ExternalEntry is one parsed bank statement row attached to a session.
// Direction is from the bank's perspective on the book account: a DEBIT
// external entry decreases the book bank balance.
type ExternalEntry struct {
	EntryID   string          `json:"entryID"`
	SessionID string          `json:"sessionID"`
	EntryDate time.Time       `json:"entryDate"`
	Amount    decimal.Decimal `json:"amount"`
	Direction EntrySide       `json:"direction"`
	Reference string          `json:"reference"`
	Status    MatchStatus     `json:"status"`
	Ordinal   int             `json:"ordinal"` // Import order, used as the final tie-break
}

// MatchLink pairs one external entry with one ledger posting. Auto-matching
// creates at most one link per external entry; manual matches may fan out to
// several postings and always take precedence over auto-matches.
type MatchLink struct {
	LinkID    string    `json:"linkID"`
	SessionID string    `json:"sessionID"`
	EntryID   string    `json:"entryID"`
	PostingID string    `json:"postingID"`
	IsManual  bool      `json:"isManual"`
	CreatedAt time.Time `json:"createdAt"`
	CreatedBy string    `json:"createdBy"`
}

// ReconSummary is the computed state of a session returned to callers.
type ReconSummary struct {
	Session          ReconSession    `json:"session"`
	TotalExternal    int             `json:"totalExternal"`
	AutoMatched      int             `json:"autoMatched"`
	ManuallyMatched  int             `json:"manuallyMatched"`
	Unmatched        int             `json:"unmatched"`
	Pending          int             `json:"pending"`
	UnmatchedBookSum decimal.Decimal `json:"unmatchedBookSum"`
	UnmatchedExtSum  decimal.Decimal `json:"unmatchedExtSum"`
	BookClosing      decimal.Decimal `json:"bookClosing"`
	// Difference = statementClosing - (bookClosing + unmatchedBookSum - unmatchedExtSum).
	Difference decimal.Decimal `json:"difference"`
}
