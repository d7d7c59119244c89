package models

import "github.com/shopspring/decimal"

// AccountType mirrors the domain account classification at the storage layer.
type AccountType string

// EntrySide mirrors the domain debit/credit indicator at the storage layer.
type EntrySide string

// Account is the storage representation of a ledger account. Balance is a
// NUMERIC(20,4) column and is mutated only inside posting transactions.
type Account struct {
	AccountID   string          `json:"accountID"` // Primary Key (UUID)
	Name        string          `json:"name"`
	AccountType AccountType     `json:"accountType"`
	NormalSide  EntrySide       `json:"normalSide"`
	Description string          `json:"description"` // Nullable
	GSTIN       *string         `json:"gstin"`       // Nullable, party accounts only
	IsActive    bool            `json:"isActive"`
	Balance     decimal.Decimal `json:"balance"`
	AuditFields
}
