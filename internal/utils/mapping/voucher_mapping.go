package mapping

import (
	"github.com/vyaparbooks/ledger_core_app/internal/core/domain"
	"github.com/vyaparbooks/ledger_core_app/internal/models"
)

// ToModelVoucher converts a domain Voucher to a model Voucher
func ToModelVoucher(d domain.Voucher) models.Voucher {
	m := models.Voucher{
		VoucherID:          d.VoucherID,
		VoucherType:        models.VoucherType(d.VoucherType),
		VoucherDate:        d.VoucherDate,
		EffectiveDate:      d.EffectiveDate,
		Narration:          d.Narration,
		ReferenceNo:        strOrNil(d.ReferenceNo),
		Status:             models.VoucherStatus(d.Status),
		PartyID:            strOrNil(d.PartyID),
		AutoPost:           d.AutoPost,
		ScheduleReason:     strOrNil(d.ScheduleReason),
		ProvisionalReason:  strOrNil(d.ProvisionalReason),
		CancellationReason: strOrNil(d.CancellationReason),
		AuditFields:        ToModelAuditFields(d.AuditFields),
	}
	if d.BankRef != nil {
		m.BankName = strOrNil(d.BankRef.BankName)
		m.BankInstrumentNo = strOrNil(d.BankRef.InstrumentNo)
		m.BankInstrumentDate = d.BankRef.InstrumentDate
	}
	return m
}

// ToDomainVoucher converts a model Voucher to a domain Voucher
func ToDomainVoucher(m models.Voucher) domain.Voucher {
	d := domain.Voucher{
		VoucherID:          m.VoucherID,
		VoucherType:        domain.VoucherType(m.VoucherType),
		VoucherDate:        m.VoucherDate,
		EffectiveDate:      m.EffectiveDate,
		Narration:          m.Narration,
		ReferenceNo:        strOrEmpty(m.ReferenceNo),
		Status:             domain.VoucherStatus(m.Status),
		PartyID:            strOrEmpty(m.PartyID),
		AutoPost:           m.AutoPost,
		ScheduleReason:     strOrEmpty(m.ScheduleReason),
		ProvisionalReason:  strOrEmpty(m.ProvisionalReason),
		CancellationReason: strOrEmpty(m.CancellationReason),
		AuditFields:        ToDomainAuditFields(m.AuditFields),
	}
	if m.BankName != nil || m.BankInstrumentNo != nil || m.BankInstrumentDate != nil {
		d.BankRef = &domain.BankReference{
			BankName:       strOrEmpty(m.BankName),
			InstrumentNo:   strOrEmpty(m.BankInstrumentNo),
			InstrumentDate: m.BankInstrumentDate,
		}
	}
	return d
}

// ToModelLineEntry converts a domain LineEntry to a model LineEntry
func ToModelLineEntry(d domain.LineEntry) models.LineEntry {
	return models.LineEntry{
		LineID:    d.LineID,
		VoucherID: d.VoucherID,
		AccountID: d.AccountID,
		Debit:     d.Debit,
		Credit:    d.Credit,
		Narration: d.Narration,
		Ordinal:   d.Ordinal,
	}
}

// ToDomainLineEntry converts a model LineEntry to a domain LineEntry
func ToDomainLineEntry(m models.LineEntry) domain.LineEntry {
	return domain.LineEntry{
		LineID:    m.LineID,
		VoucherID: m.VoucherID,
		AccountID: m.AccountID,
		Debit:     m.Debit,
		Credit:    m.Credit,
		Narration: m.Narration,
		Ordinal:   m.Ordinal,
	}
}

// ToModelPosting converts a domain LedgerPosting to a model LedgerPosting
func ToModelPosting(d domain.LedgerPosting) models.LedgerPosting {
	return models.LedgerPosting{
		PostingID:      d.PostingID,
		VoucherID:      d.VoucherID,
		LineID:         d.LineID,
		AccountID:      d.AccountID,
		Amount:         d.Amount,
		Narration:      d.Narration,
		IsReversal:     d.IsReversal,
		PostedAt:       d.PostedAt,
		PostedBy:       d.PostedBy,
		RunningBalance: d.RunningBalance,
	}
}

// ToDomainPosting converts a model LedgerPosting to a domain LedgerPosting
func ToDomainPosting(m models.LedgerPosting) domain.LedgerPosting {
	return domain.LedgerPosting{
		PostingID:      m.PostingID,
		VoucherID:      m.VoucherID,
		LineID:         m.LineID,
		AccountID:      m.AccountID,
		Amount:         m.Amount,
		Narration:      m.Narration,
		IsReversal:     m.IsReversal,
		PostedAt:       m.PostedAt,
		PostedBy:       m.PostedBy,
		RunningBalance: m.RunningBalance,
	}
}
