package apperrors

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// LineViolation describes one invalid voucher line. A validation pass
// collects every violation, not just the first.
type LineViolation struct {
	Ordinal int    `json:"ordinal"`
	Field   string `json:"field"`
	Reason  string `json:"reason"`
}

// VoucherValidationError reports all line-level and header-level violations
// of a voucher in one error.
type VoucherValidationError struct {
	Violations []LineViolation
}

func (e *VoucherValidationError) Error() string {
	parts := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		parts = append(parts, fmt.Sprintf("line %d %s: %s", v.Ordinal, v.Field, v.Reason))
	}
	return fmt.Sprintf("voucher validation failed: %s", strings.Join(parts, "; "))
}

func (e *VoucherValidationError) Unwrap() error {
	return ErrValidation
}

// UnbalancedVoucherError reports the debit/credit difference of a voucher
// that failed the balance invariant.
type UnbalancedVoucherError struct {
	DebitTotal  decimal.Decimal
	CreditTotal decimal.Decimal
}

// Difference returns debit total minus credit total.
func (e *UnbalancedVoucherError) Difference() decimal.Decimal {
	return e.DebitTotal.Sub(e.CreditTotal)
}

func (e *UnbalancedVoucherError) Error() string {
	return fmt.Sprintf("voucher is unbalanced: debits %s, credits %s, difference %s",
		e.DebitTotal.String(), e.CreditTotal.String(), e.Difference().String())
}

func (e *UnbalancedVoucherError) Unwrap() error {
	return ErrValidation
}

// CreditLimitExceededError carries the full credit breakdown so the caller
// can render an actionable message. It is a business rule outcome, not a
// system fault.
type CreditLimitExceededError struct {
	CustomerID  string
	CreditLimit decimal.Decimal
	Outstanding decimal.Decimal
	Proposed    decimal.Decimal
	Excess      decimal.Decimal
}

func (e *CreditLimitExceededError) Error() string {
	return fmt.Sprintf("credit limit exceeded for customer %s: limit %s, outstanding %s, proposed %s, excess %s",
		e.CustomerID, e.CreditLimit.String(), e.Outstanding.String(), e.Proposed.String(), e.Excess.String())
}
