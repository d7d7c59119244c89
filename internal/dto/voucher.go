package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/vyaparbooks/ledger_core_app/internal/core/domain"
)

// CreateLineRequest is one debit-or-credit line of a voucher being created.
// Exactly one of Debit/Credit must be positive; the service reports every
// violated line, not just the first.
type CreateLineRequest struct {
	AccountID string          `json:"accountID" binding:"required"`
	Debit     decimal.Decimal `json:"debit"`
	Credit    decimal.Decimal `json:"credit"`
	Narration string          `json:"narration"`
}

// BankReferenceRequest carries optional bank/cheque details.
type BankReferenceRequest struct {
	BankName       string     `json:"bankName" binding:"required"`
	InstrumentNo   string     `json:"instrumentNo" binding:"required"`
	InstrumentDate *time.Time `json:"instrumentDate,omitempty"`
}

// CreateVoucherRequest defines the payload for creating a draft voucher.
type CreateVoucherRequest struct {
	VoucherType   domain.VoucherType    `json:"voucherType" binding:"required"`
	VoucherDate   time.Time             `json:"voucherDate" binding:"required"`
	EffectiveDate *time.Time            `json:"effectiveDate,omitempty"` // Defaults to VoucherDate
	Narration     string                `json:"narration"`
	ReferenceNo   string                `json:"referenceNo,omitempty"`
	PartyID       string                `json:"partyID,omitempty"`
	BankRef       *BankReferenceRequest `json:"bankRef,omitempty"`
	Lines         []CreateLineRequest   `json:"lines" binding:"required,min=1,dive"`
}

// UpdateVoucherRequest updates mutable header fields of a draft voucher.
type UpdateVoucherRequest struct {
	VoucherDate *time.Time `json:"voucherDate,omitempty"`
	Narration   *string    `json:"narration,omitempty"`
	ReferenceNo *string    `json:"referenceNo,omitempty"`
}

// PostVoucherRequest defines the payload for posting a voucher.
type PostVoucherRequest struct {
	// AllowFuture permits posting a voucher whose effective date has not
	// arrived yet. Without it a future-dated voucher is rejected.
	AllowFuture bool `json:"allowFuture"`
}

// CancelVoucherRequest defines the payload for cancelling a posted voucher.
type CancelVoucherRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// SchedulePostdatedRequest marks a draft voucher as post-dated.
type SchedulePostdatedRequest struct {
	EffectiveDate time.Time `json:"effectiveDate" binding:"required"`
	Reason        string    `json:"reason" binding:"required"`
	AutoPost      bool      `json:"autoPost"`
}

// MarkProvisionalRequest marks a draft voucher as provisional.
type MarkProvisionalRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// LineResponse is the API representation of a voucher line.
type LineResponse struct {
	LineID    string          `json:"lineID"`
	AccountID string          `json:"accountID"`
	Debit     decimal.Decimal `json:"debit"`
	Credit    decimal.Decimal `json:"credit"`
	Narration string          `json:"narration,omitempty"`
	Ordinal   int             `json:"ordinal"`
}

// VoucherResponse is the API representation of a voucher.
type VoucherResponse struct {
	VoucherID          string                `json:"voucherID"`
	VoucherType        domain.VoucherType    `json:"voucherType"`
	VoucherDate        time.Time             `json:"voucherDate"`
	EffectiveDate      time.Time             `json:"effectiveDate"`
	Narration          string                `json:"narration,omitempty"`
	ReferenceNo        string                `json:"referenceNo,omitempty"`
	Status             domain.VoucherStatus  `json:"status"`
	PartyID            string                `json:"partyID,omitempty"`
	BankRef            *BankReferenceRequest `json:"bankRef,omitempty"`
	AutoPost           bool                  `json:"autoPost"`
	ScheduleReason     string                `json:"scheduleReason,omitempty"`
	ProvisionalReason  string                `json:"provisionalReason,omitempty"`
	CancellationReason string                `json:"cancellationReason,omitempty"`
	Lines              []LineResponse        `json:"lines,omitempty"`
	CreatedAt          time.Time             `json:"createdAt"`
}

// ToVoucherResponse converts a domain voucher to its API representation.
func ToVoucherResponse(v *domain.Voucher) VoucherResponse {
	resp := VoucherResponse{
		VoucherID:          v.VoucherID,
		VoucherType:        v.VoucherType,
		VoucherDate:        v.VoucherDate,
		EffectiveDate:      v.EffectiveDate,
		Narration:          v.Narration,
		ReferenceNo:        v.ReferenceNo,
		Status:             v.Status,
		PartyID:            v.PartyID,
		AutoPost:           v.AutoPost,
		ScheduleReason:     v.ScheduleReason,
		ProvisionalReason:  v.ProvisionalReason,
		CancellationReason: v.CancellationReason,
		CreatedAt:          v.CreatedAt,
	}
	if v.BankRef != nil {
		resp.BankRef = &BankReferenceRequest{
			BankName:       v.BankRef.BankName,
			InstrumentNo:   v.BankRef.InstrumentNo,
			InstrumentDate: v.BankRef.InstrumentDate,
		}
	}
	for _, line := range v.Lines {
		resp.Lines = append(resp.Lines, LineResponse{
			LineID:    line.LineID,
			AccountID: line.AccountID,
			Debit:     line.Debit,
			Credit:    line.Credit,
			Narration: line.Narration,
			Ordinal:   line.Ordinal,
		})
	}
	return resp
}

// ListVouchersParams holds filters for listing vouchers.
type ListVouchersParams struct {
	Status      *domain.VoucherStatus `form:"status"`
	VoucherType *domain.VoucherType   `form:"type"`
	Limit       int                   `form:"limit"`
	NextToken   *string               `form:"nextToken"`
}

// ListVouchersResponse is a page of vouchers with a continuation token.
type ListVouchersResponse struct {
	Vouchers  []VoucherResponse `json:"vouchers"`
	NextToken *string           `json:"nextToken,omitempty"`
}
