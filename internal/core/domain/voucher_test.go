package domain_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/vyaparbooks/ledger_core_app/internal/core/domain"
)

func TestCanTransition(t *testing.T) {
	tests := []struct {
		name string
		from domain.VoucherStatus
		to   domain.VoucherStatus
		want bool
	}{
		{"draft to posted", domain.VoucherDraft, domain.VoucherPosted, true},
		{"draft to provisional", domain.VoucherDraft, domain.VoucherProvisional, true},
		{"provisional to posted", domain.VoucherProvisional, domain.VoucherPosted, true},
		{"provisional back to draft", domain.VoucherProvisional, domain.VoucherDraft, true},
		{"posted to cancelled", domain.VoucherPosted, domain.VoucherCancelled, true},
		{"draft to cancelled", domain.VoucherDraft, domain.VoucherCancelled, false},
		{"posted to draft", domain.VoucherPosted, domain.VoucherDraft, false},
		{"cancelled is terminal", domain.VoucherCancelled, domain.VoucherDraft, false},
		{"cancelled to posted", domain.VoucherCancelled, domain.VoucherPosted, false},
		{"provisional to cancelled", domain.VoucherProvisional, domain.VoucherCancelled, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, domain.CanTransition(tt.from, tt.to))
		})
	}
}

func TestIsValidVoucherType(t *testing.T) {
	for _, vt := range domain.ValidVoucherTypes {
		assert.True(t, domain.IsValidVoucherType(vt))
	}
	assert.False(t, domain.IsValidVoucherType("INVOICE"))
	assert.False(t, domain.IsValidVoucherType(""))
}

func TestVoucher_IsScheduled(t *testing.T) {
	now := time.Date(2025, time.June, 15, 12, 0, 0, 0, time.UTC)

	scheduled := domain.Voucher{Status: domain.VoucherDraft, EffectiveDate: now.AddDate(0, 0, 10)}
	assert.True(t, scheduled.IsScheduled(now))

	due := domain.Voucher{Status: domain.VoucherDraft, EffectiveDate: now.AddDate(0, 0, -1)}
	assert.False(t, due.IsScheduled(now))

	posted := domain.Voucher{Status: domain.VoucherPosted, EffectiveDate: now.AddDate(0, 0, 10)}
	assert.False(t, posted.IsScheduled(now))
}

func TestLineEntry_SideAndAmount(t *testing.T) {
	debit := domain.LineEntry{Debit: mustDecimal("250.50")}
	assert.Equal(t, domain.Debit, debit.Side())
	assert.Equal(t, "250.5", debit.Amount().String())

	credit := domain.LineEntry{Credit: mustDecimal("99")}
	assert.Equal(t, domain.Credit, credit.Side())
	assert.Equal(t, "99", credit.Amount().String())
}

func TestNormalSideFor(t *testing.T) {
	assert.Equal(t, domain.Debit, domain.NormalSideFor(domain.Asset))
	assert.Equal(t, domain.Debit, domain.NormalSideFor(domain.Expense))
	assert.Equal(t, domain.Credit, domain.NormalSideFor(domain.Liability))
	assert.Equal(t, domain.Credit, domain.NormalSideFor(domain.Equity))
	assert.Equal(t, domain.Credit, domain.NormalSideFor(domain.Revenue))
}

func mustDecimal(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}
