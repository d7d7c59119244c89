package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// LedgerPosting is the immutable ledger effect of one voucher line. The
// amount is signed on the account's normal side, so an account's balance is
// always the sum of its postings' amounts in PostedAt order. Cancellations
// append the exact negation of the original postings; postings are never
// edited or deleted.
type LedgerPosting struct {
	PostingID  string          `json:"postingID"`
	VoucherID  string          `json:"voucherID"`
	LineID     string          `json:"lineID"`
	AccountID  string          `json:"accountID"`
	Amount     decimal.Decimal `json:"amount"` // Signed on the account's normal side
	Narration  string          `json:"narration"`
	IsReversal bool            `json:"isReversal"`
	PostedAt   time.Time       `json:"postedAt"`
	PostedBy   string          `json:"postedBy"`
	// RunningBalance is the account balance immediately after this posting.
	RunningBalance decimal.Decimal `json:"runningBalance"`
}
