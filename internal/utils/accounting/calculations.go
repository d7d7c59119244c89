package accounting

import (
	"github.com/shopspring/decimal"

	"github.com/vyaparbooks/ledger_core_app/internal/apperrors"
	"github.com/vyaparbooks/ledger_core_app/internal/core/domain"
)

// BalanceTolerance is the maximum permitted absolute difference between a
// voucher's debit and credit totals, in currency units.
var BalanceTolerance = decimal.NewFromFloat(0.01)

// SignedAmount converts a voucher line into the signed movement applied to
// the referenced account's balance. The sign convention keeps every balance
// on the account's normal side:
//
//	DEBIT line to a debit-normal account   -> +amount
//	CREDIT line to a debit-normal account  -> -amount
//	CREDIT line to a credit-normal account -> +amount
//	DEBIT line to a credit-normal account  -> -amount
func SignedAmount(line domain.LineEntry, normalSide domain.EntrySide) decimal.Decimal {
	amount := line.Amount()
	if line.Side() != normalSide {
		return amount.Neg()
	}
	return amount
}

// Totals returns the debit and credit sums of the given lines.
func Totals(lines []domain.LineEntry) (debits, credits decimal.Decimal) {
	debits = decimal.Zero
	credits = decimal.Zero
	for _, line := range lines {
		debits = debits.Add(line.Debit)
		credits = credits.Add(line.Credit)
	}
	return debits, credits
}

// ValidateBalanced checks the double-entry invariant: the sum of line debit
// amounts must equal the sum of line credit amounts within BalanceTolerance.
func ValidateBalanced(lines []domain.LineEntry) error {
	debits, credits := Totals(lines)
	if debits.Sub(credits).Abs().GreaterThan(BalanceTolerance) {
		return &apperrors.UnbalancedVoucherError{DebitTotal: debits, CreditTotal: credits}
	}
	return nil
}

// BalanceChanges aggregates the net signed movement per account for a set of
// lines, given each account's normal side.
func BalanceChanges(lines []domain.LineEntry, normalSides map[string]domain.EntrySide) map[string]decimal.Decimal {
	changes := make(map[string]decimal.Decimal, len(normalSides))
	for _, line := range lines {
		signed := SignedAmount(line, normalSides[line.AccountID])
		changes[line.AccountID] = changes[line.AccountID].Add(signed)
	}
	return changes
}
