package models

import (
	"github.com/shopspring/decimal"
)

// Account is a row of the accounts table.
type Account struct {
	AccountID     string          `db:"account_id"`
	Code          string          `db:"code"`
	Name          string          `db:"name"`
	AccountType   string          `db:"account_type"`
	Category      string          `db:"category"`
	NormalBalance string          `db:"normal_balance"`
	Description   string          `db:"description"`
	Balance       decimal.Decimal `db:"balance"`
	IsActive      bool            `db:"is_active"`
	IsSystem      bool            `db:"is_system"`
	AuditFields
}
