package mapping

import (
	"github.com/vyaparbooks/ledger_core_app/internal/core/domain"
	"github.com/vyaparbooks/ledger_core_app/internal/models"
)

// ToModelCreditPolicy converts a domain CreditPolicy to a model CreditPolicy
func ToModelCreditPolicy(d domain.CreditPolicy) models.CreditPolicy {
	return models.CreditPolicy{
		CustomerID:  d.CustomerID,
		CreditLimit: d.CreditLimit,
		Enabled:     d.Enabled,
		AuditFields: ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainCreditPolicy converts a model CreditPolicy to a domain CreditPolicy
func ToDomainCreditPolicy(m models.CreditPolicy) domain.CreditPolicy {
	return domain.CreditPolicy{
		CustomerID:  m.CustomerID,
		CreditLimit: m.CreditLimit,
		Enabled:     m.Enabled,
		AuditFields: ToDomainAuditFields(m.AuditFields),
	}
}
