package accounting_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vyaparbooks/ledger_core_app/internal/apperrors"
	"github.com/vyaparbooks/ledger_core_app/internal/core/domain"
	"github.com/vyaparbooks/ledger_core_app/internal/utils/accounting"
)

func debitLine(accountID string, amount int64) domain.LineEntry {
	return domain.LineEntry{AccountID: accountID, Debit: decimal.NewFromInt(amount)}
}

func creditLine(accountID string, amount int64) domain.LineEntry {
	return domain.LineEntry{AccountID: accountID, Credit: decimal.NewFromInt(amount)}
}

func TestSignedAmount_NormalSideConvention(t *testing.T) {
	testCases := []struct {
		name       string
		line       domain.LineEntry
		normalSide domain.EntrySide
		expected   int64
	}{
		{"debit line to debit-normal account", debitLine("a", 100), domain.Debit, 100},
		{"credit line to debit-normal account", creditLine("a", 100), domain.Debit, -100},
		{"credit line to credit-normal account", creditLine("a", 100), domain.Credit, 100},
		{"debit line to credit-normal account", debitLine("a", 100), domain.Credit, -100},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			signed := accounting.SignedAmount(tc.line, tc.normalSide)
			assert.True(t, signed.Equal(decimal.NewFromInt(tc.expected)),
				"expected %d, got %s", tc.expected, signed)
		})
	}
}

func TestValidateBalanced_SalesVoucher(t *testing.T) {
	// Customer 1180 Dr, revenue 1000 Cr, tax payable 180 Cr.
	lines := []domain.LineEntry{
		debitLine("customer", 1180),
		creditLine("sales_revenue", 1000),
		creditLine("gst_output", 180),
	}
	assert.NoError(t, accounting.ValidateBalanced(lines))
}

func TestValidateBalanced_UnbalancedReportsDifference(t *testing.T) {
	lines := []domain.LineEntry{
		debitLine("customer", 1180),
		creditLine("sales_revenue", 1000),
	}

	err := accounting.ValidateBalanced(lines)
	require.Error(t, err)

	var unbalanced *apperrors.UnbalancedVoucherError
	require.ErrorAs(t, err, &unbalanced)
	assert.True(t, unbalanced.Difference().Equal(decimal.NewFromInt(180)))
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestValidateBalanced_WithinTolerance(t *testing.T) {
	lines := []domain.LineEntry{
		{AccountID: "a", Debit: decimal.NewFromFloat(100.00)},
		{AccountID: "b", Credit: decimal.NewFromFloat(99.99)},
	}
	assert.NoError(t, accounting.ValidateBalanced(lines))
}

func TestTotals(t *testing.T) {
	lines := []domain.LineEntry{
		debitLine("a", 700),
		debitLine("b", 480),
		creditLine("c", 1180),
	}
	debits, credits := accounting.Totals(lines)
	assert.True(t, debits.Equal(decimal.NewFromInt(1180)))
	assert.True(t, credits.Equal(decimal.NewFromInt(1180)))
}

func TestBalanceChanges_AggregatesPerAccount(t *testing.T) {
	lines := []domain.LineEntry{
		debitLine("cash", 500),
		debitLine("cash", 200),
		creditLine("sales", 700),
	}
	normalSides := map[string]domain.EntrySide{
		"cash":  domain.Debit,
		"sales": domain.Credit,
	}

	changes := accounting.BalanceChanges(lines, normalSides)

	assert.True(t, changes["cash"].Equal(decimal.NewFromInt(700)))
	assert.True(t, changes["sales"].Equal(decimal.NewFromInt(700)))
}

func TestBalanceChanges_ContraMovesAgainstNormalSide(t *testing.T) {
	// Contra: cash deposited into bank. Both debit-normal.
	lines := []domain.LineEntry{
		debitLine("bank", 300),
		creditLine("cash", 300),
	}
	normalSides := map[string]domain.EntrySide{
		"bank": domain.Debit,
		"cash": domain.Debit,
	}

	changes := accounting.BalanceChanges(lines, normalSides)

	assert.True(t, changes["bank"].Equal(decimal.NewFromInt(300)))
	assert.True(t, changes["cash"].Equal(decimal.NewFromInt(-300)))
}
