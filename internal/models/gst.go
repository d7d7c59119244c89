package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// GSTMatchStatus mirrors the domain GST feed bucket at the storage layer.
type GSTMatchStatus string

// GSTReconEntry is the storage representation of one authority feed row.
type GSTReconEntry struct {
	EntryID          string          `json:"entryID"` // Primary Key (UUID)
	SupplierGSTIN    string          `json:"supplierGSTIN"`
	InvoiceNo        string          `json:"invoiceNo"`
	InvoiceDate      time.Time       `json:"invoiceDate"`
	InvoiceValue     decimal.Decimal `json:"invoiceValue"`
	ITCAmount        decimal.Decimal `json:"itcAmount"`
	Status           GSTMatchStatus  `json:"status"`
	MatchedVoucherID *string         `json:"matchedVoucherID"` // Nullable FK to vouchers
	ImportedAt       time.Time       `json:"importedAt"`
}
