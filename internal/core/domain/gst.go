package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// GSTMatchStatus buckets an authority feed row after a matching pass.
type GSTMatchStatus string

const (
	GSTPending        GSTMatchStatus = "PENDING"
	GSTMatched        GSTMatchStatus = "MATCHED"
	GSTMismatched     GSTMatchStatus = "MISMATCHED"
	GSTMissingInBooks GSTMatchStatus = "MISSING_IN_BOOKS"
)

// GSTReconEntry is one row from the tax-authority invoice feed (GSTR-2A/2B
// style). Rows are created in bulk on feed import and mutated only by the
// matching pass.
type GSTReconEntry struct {
	EntryID       string          `json:"entryID"`
	SupplierGSTIN string          `json:"supplierGSTIN"`
	InvoiceNo     string          `json:"invoiceNo"`
	InvoiceDate   time.Time       `json:"invoiceDate"`
	InvoiceValue  decimal.Decimal `json:"invoiceValue"`
	ITCAmount     decimal.Decimal `json:"itcAmount"`
	Status        GSTMatchStatus  `json:"status"`
	// MatchedVoucherID is set when a purchase voucher counterpart was found,
	// for both MATCHED and MISMATCHED rows.
	MatchedVoucherID string    `json:"matchedVoucherID,omitempty"`
	ImportedAt       time.Time `json:"importedAt"`
}

// GSTReconSummary aggregates feed rows per bucket after a matching pass.
type GSTReconSummary struct {
	Total          int             `json:"total"`
	Matched        int             `json:"matched"`
	Mismatched     int             `json:"mismatched"`
	MissingInBooks int             `json:"missingInBooks"`
	Pending        int             `json:"pending"`
	MatchedITC     decimal.Decimal `json:"matchedITC"`
	PendingITC     decimal.Decimal `json:"pendingITC"`
}

// PurchaseBillRef is the internal counterpart a feed row is matched against:
// a posted purchase-type voucher with its party's GSTIN and invoice number.
type PurchaseBillRef struct {
	VoucherID     string          `json:"voucherID"`
	SupplierGSTIN string          `json:"supplierGSTIN"`
	InvoiceNo     string          `json:"invoiceNo"`
	InvoiceDate   time.Time       `json:"invoiceDate"`
	InvoiceValue  decimal.Decimal `json:"invoiceValue"`
}
