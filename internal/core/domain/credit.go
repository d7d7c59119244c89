package domain

import (
	"github.com/shopspring/decimal"
)

// CreditPolicy is the per-customer credit rule: new sales are blocked once
// the customer's projected outstanding would exceed the limit.
type CreditPolicy struct {
	CustomerID  string          `json:"customerID"` // Party ledger account ID
	CreditLimit decimal.Decimal `json:"creditLimit"`
	Enabled     bool            `json:"enabled"`
	AuditFields
}

// CreditCheckResult is the structured outcome of a credit evaluation. It is
// returned for both passing and failing checks so callers can render an
// actionable message rather than a bare yes/no.
type CreditCheckResult struct {
	CustomerID  string          `json:"customerID"`
	CreditLimit decimal.Decimal `json:"creditLimit"`
	Outstanding decimal.Decimal `json:"outstanding"`
	Proposed    decimal.Decimal `json:"proposed"`
	Projected   decimal.Decimal `json:"projected"`
	Exceeded    bool            `json:"exceeded"`
	Excess      decimal.Decimal `json:"excess"` // Zero when not exceeded
}
