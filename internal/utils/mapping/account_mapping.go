package mapping

import (
	"github.com/vyaparbooks/ledger_core_app/internal/core/domain"
	"github.com/vyaparbooks/ledger_core_app/internal/models"
)

// ToModelAccount converts a domain Account to a model Account
func ToModelAccount(d domain.Account) models.Account {
	return models.Account{
		AccountID:   d.AccountID,
		Name:        d.Name,
		AccountType: models.AccountType(d.AccountType),
		NormalSide:  models.EntrySide(d.NormalSide),
		Description: d.Description,
		GSTIN:       strOrNil(d.GSTIN),
		IsActive:    d.IsActive,
		Balance:     d.Balance,
		AuditFields: ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainAccount converts a model Account to a domain Account
func ToDomainAccount(m models.Account) domain.Account {
	return domain.Account{
		AccountID:   m.AccountID,
		Name:        m.Name,
		AccountType: domain.AccountType(m.AccountType),
		NormalSide:  domain.EntrySide(m.NormalSide),
		Description: m.Description,
		GSTIN:       strOrEmpty(m.GSTIN),
		IsActive:    m.IsActive,
		Balance:     m.Balance,
		AuditFields: ToDomainAuditFields(m.AuditFields),
	}
}
