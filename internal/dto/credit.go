package dto

import (
	"github.com/shopspring/decimal"
)

// CheckCreditRequest evaluates a proposed sale against a customer's credit limit.
type CheckCreditRequest struct {
	CustomerID string          `json:"customerID" binding:"required"`
	Amount     decimal.Decimal `json:"amount" binding:"required"`
}

// UpsertCreditPolicyRequest creates or replaces a customer's credit policy.
type UpsertCreditPolicyRequest struct {
	CreditLimit decimal.Decimal `json:"creditLimit" binding:"required"`
	Enabled     bool            `json:"enabled"`
}
