package mapping

import (
	"github.com/vyaparbooks/ledger_core_app/internal/core/domain"
	"github.com/vyaparbooks/ledger_core_app/internal/models"
)

// ToModelReconSession converts a domain ReconSession to a model ReconSession
func ToModelReconSession(d domain.ReconSession) models.ReconSession {
	return models.ReconSession{
		SessionID:        d.SessionID,
		BankAccountID:    d.BankAccountID,
		PeriodStart:      d.PeriodStart,
		PeriodEnd:        d.PeriodEnd,
		StatementOpening: d.StatementOpening,
		StatementClosing: d.StatementClosing,
		Status:           models.ReconSessionStatus(d.Status),
		ApprovalNote:     strOrNil(d.ApprovalNote),
		AuditFields:      ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainReconSession converts a model ReconSession to a domain ReconSession
func ToDomainReconSession(m models.ReconSession) domain.ReconSession {
	return domain.ReconSession{
		SessionID:        m.SessionID,
		BankAccountID:    m.BankAccountID,
		PeriodStart:      m.PeriodStart,
		PeriodEnd:        m.PeriodEnd,
		StatementOpening: m.StatementOpening,
		StatementClosing: m.StatementClosing,
		Status:           domain.ReconSessionStatus(m.Status),
		ApprovalNote:     strOrEmpty(m.ApprovalNote),
		AuditFields:      ToDomainAuditFields(m.AuditFields),
	}
}

// ToModelExternalEntry converts a domain ExternalEntry to a model ExternalEntry
func ToModelExternalEntry(d domain.ExternalEntry) models.ExternalEntry {
	return models.ExternalEntry{
		EntryID:   d.EntryID,
		SessionID: d.SessionID,
		EntryDate: d.EntryDate,
		Amount:    d.Amount,
		Direction: models.EntrySide(d.Direction),
		Reference: d.Reference,
		Status:    models.MatchStatus(d.Status),
		Ordinal:   d.Ordinal,
	}
}

// ToDomainExternalEntry converts a model ExternalEntry to a domain ExternalEntry
func ToDomainExternalEntry(m models.ExternalEntry) domain.ExternalEntry {
	return domain.ExternalEntry{
		EntryID:   m.EntryID,
		SessionID: m.SessionID,
		EntryDate: m.EntryDate,
		Amount:    m.Amount,
		Direction: domain.EntrySide(m.Direction),
		Reference: m.Reference,
		Status:    domain.MatchStatus(m.Status),
		Ordinal:   m.Ordinal,
	}
}

// ToModelMatchLink converts a domain MatchLink to a model MatchLink
func ToModelMatchLink(d domain.MatchLink) models.MatchLink {
	return models.MatchLink(d)
}

// ToDomainMatchLink converts a model MatchLink to a domain MatchLink
func ToDomainMatchLink(m models.MatchLink) domain.MatchLink {
	return domain.MatchLink(m)
}
