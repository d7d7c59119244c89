package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// VoucherType enumerates the closed set of supported voucher types.
type VoucherType string

const (
	VoucherTypeSales      VoucherType = "SALES"
	VoucherTypePurchase   VoucherType = "PURCHASE"
	VoucherTypeReceipt    VoucherType = "RECEIPT"
	VoucherTypePayment    VoucherType = "PAYMENT"
	VoucherTypeJournal    VoucherType = "JOURNAL"
	VoucherTypeContra     VoucherType = "CONTRA"
	VoucherTypeDebitNote  VoucherType = "DEBIT_NOTE"
	VoucherTypeCreditNote VoucherType = "CREDIT_NOTE"
)

// ValidVoucherTypes lists every accepted voucher type for input validation.
var ValidVoucherTypes = []VoucherType{
	VoucherTypeSales, VoucherTypePurchase, VoucherTypeReceipt, VoucherTypePayment,
	VoucherTypeJournal, VoucherTypeContra, VoucherTypeDebitNote, VoucherTypeCreditNote,
}

// IsValidVoucherType reports whether t is one of the known voucher types.
func IsValidVoucherType(t VoucherType) bool {
	for _, vt := range ValidVoucherTypes {
		if vt == t {
			return true
		}
	}
	return false
}

// VoucherStatus indicates the lifecycle state of a voucher.
type VoucherStatus string

const (
	VoucherDraft       VoucherStatus = "DRAFT"
	VoucherProvisional VoucherStatus = "PROVISIONAL"
	VoucherPosted      VoucherStatus = "POSTED"
	VoucherCancelled   VoucherStatus = "CANCELLED"
)

// voucherTransitions is the closed transition table for the voucher state
// machine. Any transition not listed here is rejected.
var voucherTransitions = map[VoucherStatus][]VoucherStatus{
	VoucherDraft:       {VoucherPosted, VoucherProvisional},
	VoucherProvisional: {VoucherPosted, VoucherDraft},
	VoucherPosted:      {VoucherCancelled},
	VoucherCancelled:   {},
}

// CanTransition reports whether moving a voucher from one status to another
// is permitted by the transition table.
func CanTransition(from, to VoucherStatus) bool {
	for _, allowed := range voucherTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// BankReference carries the optional bank/cheque details of a voucher.
type BankReference struct {
	BankName       string     `json:"bankName"`
	InstrumentNo   string     `json:"instrumentNo"`
	InstrumentDate *time.Time `json:"instrumentDate,omitempty"`
}

// Voucher represents a proposed accounting transaction composed of balanced
// debit/credit line entries. EffectiveDate defaults to VoucherDate and is
// later than it only for post-dated vouchers.
type Voucher struct {
	VoucherID     string        `json:"voucherID"`
	VoucherType   VoucherType   `json:"voucherType"`
	VoucherDate   time.Time     `json:"voucherDate"`
	EffectiveDate time.Time     `json:"effectiveDate"`
	Narration     string        `json:"narration"`
	// ReferenceNo is the external document number, e.g. the supplier's
	// invoice number on a PURCHASE voucher. GST matching keys on it.
	ReferenceNo string        `json:"referenceNo,omitempty"`
	Status      VoucherStatus `json:"status"`

	// PartyID references the party ledger account (customer/supplier) the
	// voucher belongs to; required for SALES and PURCHASE vouchers.
	PartyID string         `json:"partyID,omitempty"`
	BankRef *BankReference `json:"bankRef,omitempty"`

	// Post-dated sub-workflow fields.
	AutoPost       bool   `json:"autoPost"`
	ScheduleReason string `json:"scheduleReason,omitempty"`

	// Provisional sub-workflow field.
	ProvisionalReason string `json:"provisionalReason,omitempty"`

	CancellationReason string `json:"cancellationReason,omitempty"`

	Lines []LineEntry `json:"lines,omitempty"` // Often loaded separately
	AuditFields
}

// IsScheduled reports whether the voucher is a pending post-dated voucher.
func (v *Voucher) IsScheduled(now time.Time) bool {
	return v.Status == VoucherDraft && v.EffectiveDate.After(now)
}

// LineEntry is a single debit-or-credit line within a voucher. Exactly one
// of Debit/Credit is set and positive.
type LineEntry struct {
	LineID    string          `json:"lineID"`
	VoucherID string          `json:"voucherID"`
	AccountID string          `json:"accountID"`
	Debit     decimal.Decimal `json:"debit"`
	Credit    decimal.Decimal `json:"credit"`
	Narration string          `json:"narration"` // Nullable
	Ordinal   int             `json:"ordinal"`
}

// Side returns which side of the ledger this line entry hits.
func (l LineEntry) Side() EntrySide {
	if l.Debit.IsPositive() {
		return Debit
	}
	return Credit
}

// Amount returns the positive amount of the line regardless of side.
func (l LineEntry) Amount() decimal.Decimal {
	if l.Debit.IsPositive() {
		return l.Debit
	}
	return l.Credit
}
