package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/vyaparbooks/ledger_core_app/internal/core/domain"
)

// CreateAccountRequest defines the payload for creating a ledger account.
type CreateAccountRequest struct {
	Name        string             `json:"name" binding:"required"`
	AccountType domain.AccountType `json:"accountType" binding:"required,oneof=ASSET LIABILITY EQUITY REVENUE EXPENSE"`
	Description string             `json:"description"`
	// GSTIN registers the party's tax identity on customer/supplier accounts.
	GSTIN string `json:"gstin,omitempty"`
}

// UpdateAccountRequest defines the payload for updating account details.
// Only non-nil fields are applied.
type UpdateAccountRequest struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
	GSTIN       *string `json:"gstin,omitempty"`
}

// AccountResponse is the API representation of an account.
type AccountResponse struct {
	AccountID   string             `json:"accountID"`
	Name        string             `json:"name"`
	AccountType domain.AccountType `json:"accountType"`
	NormalSide  domain.EntrySide   `json:"normalSide"`
	Description string             `json:"description,omitempty"`
	GSTIN       string             `json:"gstin,omitempty"`
	IsActive    bool               `json:"isActive"`
	Balance     decimal.Decimal    `json:"balance"`
	CreatedAt   time.Time          `json:"createdAt"`
}

// ToAccountResponse converts a domain account to its API representation.
func ToAccountResponse(a *domain.Account) AccountResponse {
	return AccountResponse{
		AccountID:   a.AccountID,
		Name:        a.Name,
		AccountType: a.AccountType,
		NormalSide:  a.NormalSide,
		Description: a.Description,
		GSTIN:       a.GSTIN,
		IsActive:    a.IsActive,
		Balance:     a.Balance,
		CreatedAt:   a.CreatedAt,
	}
}

// BalanceResponse reports an account balance, optionally as of a timestamp.
type BalanceResponse struct {
	AccountID string          `json:"accountID"`
	Balance   decimal.Decimal `json:"balance"`
	AsOf      *time.Time      `json:"asOf,omitempty"`
}
