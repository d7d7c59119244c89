package domain

import "time"

// PostingRunError records one voucher that failed during a scheduled posting
// run, with its cause. One voucher's failure never aborts the batch.
type PostingRunError struct {
	VoucherID string `json:"voucherID"`
	Reason    string `json:"reason"`
}

// PostingRunReport summarizes one scheduled posting run over due post-dated
// vouchers.
type PostingRunReport struct {
	AsOf           time.Time         `json:"asOf"`
	ProcessedCount int               `json:"processedCount"`
	ErrorCount     int               `json:"errorCount"`
	Errors         []PostingRunError `json:"errors"`
}
