package models

import "github.com/shopspring/decimal"

// CreditPolicy is the storage representation of a customer credit rule. One
// row per customer account.
type CreditPolicy struct {
	CustomerID  string          `json:"customerID"` // Primary Key, FK to accounts
	CreditLimit decimal.Decimal `json:"creditLimit"`
	Enabled     bool            `json:"enabled"`
	AuditFields
}
