package domain

import (
	"github.com/shopspring/decimal"
)

// AccountType defines the fundamental accounting type of an account.
type AccountType string

const (
	Asset     AccountType = "asset"
	Liability AccountType = "liability"
	Equity    AccountType = "equity"
	Revenue   AccountType = "revenue"
	Expense   AccountType = "expense"
	COGS      AccountType = "cogs"
)

// AccountTypes lists every account type in chart order.
var AccountTypes = []AccountType{Asset, Liability, Equity, Revenue, COGS, Expense}

// NormalBalance is the side on which an account accumulates value.
type NormalBalance string

const (
	DebitNormal  NormalBalance = "debit"
	CreditNormal NormalBalance = "credit"
)

// AccountCategory is a sub-classification which is only legal for one type.
type AccountCategory string

const (
	CurrentAsset AccountCategory = "current_asset"
	FixedAsset   AccountCategory = "fixed_asset"
	Inventory    AccountCategory = "inventory"
	Receivable   AccountCategory = "receivable"

	CurrentLiability  AccountCategory = "current_liability"
	LongTermLiability AccountCategory = "long_term_liability"
	Payable           AccountCategory = "payable"

	Capital          AccountCategory = "capital"
	RetainedEarnings AccountCategory = "retained_earnings"
	Drawing          AccountCategory = "drawing"

	OperatingRevenue AccountCategory = "operating_revenue"
	OtherRevenue     AccountCategory = "other_revenue"

	OperatingExpense      AccountCategory = "operating_expense"
	AdministrativeExpense AccountCategory = "administrative_expense"
	OtherExpense          AccountCategory = "other_expense"

	FoodCost           AccountCategory = "food_cost"
	DirectLabor        AccountCategory = "direct_labor"
	ProductionOverhead AccountCategory = "production_overhead"
)

var categoriesByType = map[AccountType][]AccountCategory{
	Asset:     {CurrentAsset, FixedAsset, Inventory, Receivable},
	Liability: {CurrentLiability, LongTermLiability, Payable},
	Equity:    {Capital, RetainedEarnings, Drawing},
	Revenue:   {OperatingRevenue, OtherRevenue},
	Expense:   {OperatingExpense, AdministrativeExpense, OtherExpense},
	COGS:      {FoodCost, DirectLabor, ProductionOverhead},
}

// IsValid reports whether t is a known account type.
func (t AccountType) IsValid() bool {
	_, ok := categoriesByType[t]
	return ok
}

// NormalBalance returns the side implied by the type.
func (t AccountType) NormalBalance() NormalBalance {
	switch t {
	case Asset, Expense, COGS:
		return DebitNormal
	default:
		return CreditNormal
	}
}

// Categories returns the categories permitted for t.
func (t AccountType) Categories() []AccountCategory {
	cats := categoriesByType[t]
	out := make([]AccountCategory, len(cats))
	copy(out, cats)
	return out
}

// Allows reports whether c is a legal category for t.
func (t AccountType) Allows(c AccountCategory) bool {
	for _, allowed := range categoriesByType[t] {
		if allowed == c {
			return true
		}
	}
	return false
}

// IsValid reports whether n is debit or credit.
func (n NormalBalance) IsValid() bool {
	return n == DebitNormal || n == CreditNormal
}

// Account represents a ledger account in the chart of accounts.
type Account struct {
	AccountID     string          `json:"accountID"`
	Code          string          `json:"code"`
	Name          string          `json:"name"`
	Type          AccountType     `json:"type"`
	Category      AccountCategory `json:"category"`
	NormalBalance NormalBalance   `json:"normalBalance"`
	Description   string          `json:"description"`
	Balance       decimal.Decimal `json:"balance"`
	IsActive      bool            `json:"isActive"`
	IsSystem      bool            `json:"isSystem"`
	AuditFields
}

// SignedDelta is the change in balance caused by a posting of debit and credit
// to the account.
func (a Account) SignedDelta(debit, credit decimal.Decimal) decimal.Decimal {
	if a.NormalBalance == DebitNormal {
		return debit.Sub(credit)
	}
	return credit.Sub(debit)
}

// AccountFilter narrows ListAccounts. Zero values match everything.
type AccountFilter struct {
	Type            AccountType
	Search          string
	IncludeInactive bool
}
