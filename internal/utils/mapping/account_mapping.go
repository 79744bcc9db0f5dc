package mapping

import (
	"github.com/SscSPs/mbg_dapur_ledger/internal/core/domain"
	"github.com/SscSPs/mbg_dapur_ledger/internal/models"
)

// ToModelAccount converts a domain Account to a model Account
func ToModelAccount(d domain.Account) models.Account {
	return models.Account{
		AccountID:     d.AccountID,
		Code:          d.Code,
		Name:          d.Name,
		AccountType:   string(d.Type),
		Category:      string(d.Category),
		NormalBalance: string(d.NormalBalance),
		Description:   d.Description,
		Balance:       d.Balance,
		IsActive:      d.IsActive,
		IsSystem:      d.IsSystem,
		AuditFields:   ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainAccount converts a model Account to a domain Account
func ToDomainAccount(m models.Account) domain.Account {
	return domain.Account{
		AccountID:     m.AccountID,
		Code:          m.Code,
		Name:          m.Name,
		Type:          domain.AccountType(m.AccountType),
		Category:      domain.AccountCategory(m.Category),
		NormalBalance: domain.NormalBalance(m.NormalBalance),
		Description:   m.Description,
		Balance:       m.Balance,
		IsActive:      m.IsActive,
		IsSystem:      m.IsSystem,
		AuditFields:   ToDomainAuditFields(m.AuditFields),
	}
}

// ToDomainAccountSlice converts a slice of model Accounts to a slice of domain Accounts
func ToDomainAccountSlice(ms []models.Account) []domain.Account {
	ds := make([]domain.Account, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainAccount(m)
	}
	return ds
}
