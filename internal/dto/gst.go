package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/vyaparbooks/ledger_core_app/internal/core/domain"
)

// GSTFeedRow is one parsed authority feed row (supplier invoice as reported
// to the tax authority). JSON parsing of the raw feed is external.
type GSTFeedRow struct {
	SupplierGSTIN string          `json:"supplierGSTIN" binding:"required"`
	InvoiceNo     string          `json:"invoiceNo" binding:"required"`
	InvoiceDate   time.Time       `json:"invoiceDate" binding:"required"`
	InvoiceValue  decimal.Decimal `json:"invoiceValue" binding:"required"`
	ITCAmount     decimal.Decimal `json:"itcAmount"`
}

// ImportGSTFeedRequest bulk-imports authority feed rows.
type ImportGSTFeedRequest struct {
	Rows []GSTFeedRow `json:"rows" binding:"required,min=1,dive"`
}

// RunGSTMatchRequest bounds the purchase-bill window for a matching pass.
type RunGSTMatchRequest struct {
	From time.Time `json:"from" binding:"required"`
	To   time.Time `json:"to" binding:"required"`
}

// GSTMatchReport summarizes one GST matching pass.
type GSTMatchReport struct {
	Evaluated      int                     `json:"evaluated"`
	Matched        int                     `json:"matched"`
	Mismatched     int                     `json:"mismatched"`
	MissingInBooks int                     `json:"missingInBooks"`
	Summary        *domain.GSTReconSummary `json:"summary"`
}
