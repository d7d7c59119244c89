package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ReconSessionStatus mirrors the domain session lifecycle at the storage layer.
type ReconSessionStatus string

// MatchStatus mirrors the domain external entry match status at the storage layer.
type MatchStatus string

// ReconSession is the storage representation of a reconciliation session.
type ReconSession struct {
	SessionID        string             `json:"sessionID"` // Primary Key (UUID)
	BankAccountID    string             `json:"bankAccountID"`
	PeriodStart      time.Time          `json:"periodStart"`
	PeriodEnd        time.Time          `json:"periodEnd"`
	StatementOpening decimal.Decimal    `json:"statementOpening"`
	StatementClosing decimal.Decimal    `json:"statementClosing"`
	Status           ReconSessionStatus `json:"status"`
	ApprovalNote     *string            `json:"approvalNote"` // Nullable
	AuditFields
}

// ExternalEntry is the storage representation of one imported statement row.
type ExternalEntry struct {
	EntryID   string          `json:"entryID"` // Primary Key (UUID)
	SessionID string          `json:"sessionID"`
	EntryDate time.Time       `json:"entryDate"`
	Amount    decimal.Decimal `json:"amount"`
	Direction EntrySide       `json:"direction"`
	Reference string          `json:"reference"` // Nullable
	Status    MatchStatus     `json:"status"`
	Ordinal   int             `json:"ordinal"`
}

// MatchLink is the storage representation of one entry-posting pairing.
type MatchLink struct {
	LinkID    string    `json:"linkID"` // Primary Key (UUID)
	SessionID string    `json:"sessionID"`
	EntryID   string    `json:"entryID"`
	PostingID string    `json:"postingID"`
	IsManual  bool      `json:"isManual"`
	CreatedAt time.Time `json:"createdAt"`
	CreatedBy string    `json:"createdBy"`
}
