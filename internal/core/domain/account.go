package domain

import (
	"github.com/shopspring/decimal"
)

// AccountType defines the fundamental accounting classification of an account.
type AccountType string

const (
	Asset     AccountType = "ASSET"
	Liability AccountType = "LIABILITY"
	Equity    AccountType = "EQUITY"
	Revenue   AccountType = "REVENUE"
	Expense   AccountType = "EXPENSE"
)

// EntrySide indicates whether a movement is a debit or a credit.
type EntrySide string

const (
	Debit  EntrySide = "DEBIT"
	Credit EntrySide = "CREDIT"
)

// NormalSideFor returns the side on which an account of the given type
// normally carries its balance.
func NormalSideFor(accountType AccountType) EntrySide {
	switch accountType {
	case Asset, Expense:
		return Debit
	default:
		return Credit
	}
}

// Account represents a ledger account in the chart of accounts.
// The balance is expressed on the account's normal side: a positive balance
// on an ASSET account is a debit balance, a positive balance on a REVENUE
// account is a credit balance. Balance is mutated only through postings.
type Account struct {
	AccountID   string          `json:"accountID"`
	Name        string          `json:"name"`
	AccountType AccountType     `json:"accountType"`
	NormalSide  EntrySide       `json:"normalSide"`
	Description string          `json:"description"` // Nullable
	// GSTIN is the tax registration of the party this account represents.
	// Set only on customer/supplier ledger accounts.
	GSTIN    string          `json:"gstin,omitempty"`
	IsActive bool            `json:"isActive"`
	Balance  decimal.Decimal `json:"balance"`
	AuditFields
}
