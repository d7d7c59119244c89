package mapping

import (
	"github.com/vyaparbooks/ledger_core_app/internal/core/domain"
	"github.com/vyaparbooks/ledger_core_app/internal/models"
)

// ToModelGSTReconEntry converts a domain GSTReconEntry to a model GSTReconEntry
func ToModelGSTReconEntry(d domain.GSTReconEntry) models.GSTReconEntry {
	return models.GSTReconEntry{
		EntryID:          d.EntryID,
		SupplierGSTIN:    d.SupplierGSTIN,
		InvoiceNo:        d.InvoiceNo,
		InvoiceDate:      d.InvoiceDate,
		InvoiceValue:     d.InvoiceValue,
		ITCAmount:        d.ITCAmount,
		Status:           models.GSTMatchStatus(d.Status),
		MatchedVoucherID: strOrNil(d.MatchedVoucherID),
		ImportedAt:       d.ImportedAt,
	}
}

// ToDomainGSTReconEntry converts a model GSTReconEntry to a domain GSTReconEntry
func ToDomainGSTReconEntry(m models.GSTReconEntry) domain.GSTReconEntry {
	return domain.GSTReconEntry{
		EntryID:          m.EntryID,
		SupplierGSTIN:    m.SupplierGSTIN,
		InvoiceNo:        m.InvoiceNo,
		InvoiceDate:      m.InvoiceDate,
		InvoiceValue:     m.InvoiceValue,
		ITCAmount:        m.ITCAmount,
		Status:           domain.GSTMatchStatus(m.Status),
		MatchedVoucherID: strOrEmpty(m.MatchedVoucherID),
		ImportedAt:       m.ImportedAt,
	}
}
