package memory

import (
	"time"

	"github.com/SscSPs/mbg_dapur_ledger/internal/core/domain"
	"github.com/shopspring/decimal"
)

// SystemUserID is the creator recorded on seeded rows.
const SystemUserID = "system"

type systemAccount struct {
	id       string
	code     string
	name     string
	typ      domain.AccountType
	category domain.AccountCategory
}

// systemAccounts mirrors migrations/000002_seed_system_accounts.up.sql.
var systemAccounts = []systemAccount{
	{"00000000-0000-4000-8000-000000011000", "1-1000", "Kas", domain.Asset, domain.CurrentAsset},
	{"00000000-0000-4000-8000-000000011100", "1-1100", "Bank", domain.Asset, domain.CurrentAsset},
	{"00000000-0000-4000-8000-000000011200", "1-1200", "Piutang Usaha", domain.Asset, domain.Receivable},
	{"00000000-0000-4000-8000-000000011300", "1-1300", "Persediaan Bahan Baku", domain.Asset, domain.Inventory},
	{"00000000-0000-4000-8000-000000021000", "2-1000", "Utang Usaha", domain.Liability, domain.Payable},
	{"00000000-0000-4000-8000-000000031000", "3-1000", "Modal", domain.Equity, domain.Capital},
	{"00000000-0000-4000-8000-000000032000", "3-2000", "Laba Ditahan", domain.Equity, domain.RetainedEarnings},
	{"00000000-0000-4000-8000-000000041000", "4-1000", "Pendapatan Jasa Katering", domain.Revenue, domain.OperatingRevenue},
	{"00000000-0000-4000-8000-000000051000", "5-1000", "Harga Pokok Bahan Makanan", domain.COGS, domain.FoodCost},
	{"00000000-0000-4000-8000-000000061000", "6-1000", "Beban Gaji", domain.Expense, domain.OperatingExpense},
	{"00000000-0000-4000-8000-000000062000", "6-2000", "Beban Operasional Dapur", domain.Expense, domain.OperatingExpense},
}

// SeedSystemAccounts inserts the system chart of accounts, skipping codes that
// already exist.
func (s *Store) SeedSystemAccounts(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, sa := range systemAccounts {
		if _, exists := s.accountCodes[sa.code]; exists {
			continue
		}
		s.accounts[sa.id] = domain.Account{
			AccountID:     sa.id,
			Code:          sa.code,
			Name:          sa.name,
			Type:          sa.typ,
			Category:      sa.category,
			NormalBalance: sa.typ.NormalBalance(),
			Balance:       decimal.Zero,
			IsActive:      true,
			IsSystem:      true,
			AuditFields: domain.AuditFields{
				CreatedAt:     now,
				CreatedBy:     SystemUserID,
				LastUpdatedAt: now,
				LastUpdatedBy: SystemUserID,
			},
		}
		s.accountCodes[sa.code] = sa.id
	}
}
