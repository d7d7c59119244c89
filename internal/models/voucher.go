package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// VoucherType mirrors the domain voucher type at the storage layer.
type VoucherType string

// VoucherStatus mirrors the domain voucher lifecycle state at the storage layer.
type VoucherStatus string

// Voucher is the storage representation of a voucher header. The bank
// reference is flattened into nullable columns.
type Voucher struct {
	VoucherID     string        `json:"voucherID"` // Primary Key (UUID)
	VoucherType   VoucherType   `json:"voucherType"`
	VoucherDate   time.Time     `json:"voucherDate"`
	EffectiveDate time.Time     `json:"effectiveDate"`
	Narration     string        `json:"narration"`
	ReferenceNo   *string       `json:"referenceNo"` // Nullable external document number
	Status        VoucherStatus `json:"status"`
	PartyID       *string       `json:"partyID"` // Nullable FK to accounts

	BankName           *string    `json:"bankName"`
	BankInstrumentNo   *string    `json:"bankInstrumentNo"`
	BankInstrumentDate *time.Time `json:"bankInstrumentDate"`

	AutoPost           bool    `json:"autoPost"`
	ScheduleReason     *string `json:"scheduleReason"`
	ProvisionalReason  *string `json:"provisionalReason"`
	CancellationReason *string `json:"cancellationReason"`
	AuditFields
}

// LineEntry is the storage representation of one voucher line. Exactly one of
// Debit/Credit is positive; the check constraint enforces it.
type LineEntry struct {
	LineID    string          `json:"lineID"` // Primary Key (UUID)
	VoucherID string          `json:"voucherID"`
	AccountID string          `json:"accountID"`
	Debit     decimal.Decimal `json:"debit"`
	Credit    decimal.Decimal `json:"credit"`
	Narration string          `json:"narration"` // Nullable
	Ordinal   int             `json:"ordinal"`
}

// LedgerPosting is the storage representation of one immutable posting row.
// The table is append-only.
type LedgerPosting struct {
	PostingID      string          `json:"postingID"` // Primary Key (UUID)
	VoucherID      string          `json:"voucherID"`
	LineID         string          `json:"lineID"`
	AccountID      string          `json:"accountID"`
	Amount         decimal.Decimal `json:"amount"`
	Narration      string          `json:"narration"`
	IsReversal     bool            `json:"isReversal"`
	PostedAt       time.Time       `json:"postedAt"`
	PostedBy       string          `json:"postedBy"`
	RunningBalance decimal.Decimal `json:"runningBalance"`
}
