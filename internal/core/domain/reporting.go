package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Posting is a posted journal line joined with its entry header, as read by
// the ledger projector.
type Posting struct {
	EntryID     string
	EntryNumber string
	EntryDate   time.Time
	LineNo      int
	Description string
	Reference   string
	Debit       decimal.Decimal
	Credit      decimal.Decimal
}

// LedgerRow is one row of an account ledger.
type LedgerRow struct {
	EntryID        string          `json:"entryID"`
	EntryNumber    string          `json:"entryNumber"`
	EntryDate      time.Time       `json:"entryDate"`
	LineNo         int             `json:"lineNo"`
	Description    string          `json:"description"`
	Reference      string          `json:"reference,omitempty"`
	Debit          decimal.Decimal `json:"debit"`
	Credit         decimal.Decimal `json:"credit"`
	RunningBalance decimal.Decimal `json:"runningBalance"`
}

// AccountLedger is the projected ledger of a single account.
type AccountLedger struct {
	Account        Account         `json:"account"`
	From           *time.Time      `json:"from,omitempty"`
	To             *time.Time      `json:"to,omitempty"`
	OpeningBalance decimal.Decimal `json:"openingBalance"`
	ClosingBalance decimal.Decimal `json:"closingBalance"`
	Rows           []LedgerRow     `json:"rows"`
}

// AccountActivity is the posted debit and credit volume of an account within a
// window, alongside the account itself.
type AccountActivity struct {
	Account     Account
	TotalDebit  decimal.Decimal
	TotalCredit decimal.Decimal
}

// HasActivity reports whether any posting touched the account.
func (a AccountActivity) HasActivity() bool {
	return !a.TotalDebit.IsZero() || !a.TotalCredit.IsZero()
}

// NetBalance is the activity folded on the account's normal side.
func (a AccountActivity) NetBalance() decimal.Decimal {
	return a.Account.SignedDelta(a.TotalDebit, a.TotalCredit)
}

// TrialBalanceLine is one account row of a trial balance.
type TrialBalanceLine struct {
	AccountID   string          `json:"accountID"`
	AccountCode string          `json:"accountCode"`
	AccountName string          `json:"accountName"`
	AccountType AccountType     `json:"accountType"`
	Debit       decimal.Decimal `json:"debit"`
	Credit      decimal.Decimal `json:"credit"`
}

// TrialBalance is a point-in-time snapshot of debit and credit totals.
type TrialBalance struct {
	AsOf        time.Time          `json:"asOf"`
	Lines       []TrialBalanceLine `json:"lines"`
	TotalDebit  decimal.Decimal    `json:"totalDebit"`
	TotalCredit decimal.Decimal    `json:"totalCredit"`
	IsBalanced  bool               `json:"isBalanced"`
	Warning     string             `json:"warning,omitempty"`
}

// Difference is TotalDebit minus TotalCredit.
func (tb TrialBalance) Difference() decimal.Decimal {
	return tb.TotalDebit.Sub(tb.TotalCredit)
}

// AccountAmount is an account with its net amount in a financial report.
type AccountAmount struct {
	AccountID string          `json:"accountID"`
	Code      string          `json:"code"`
	Name      string          `json:"name"`
	Amount    decimal.Decimal `json:"amount"`
}

// ProfitAndLossReport covers revenue, cost of goods sold and expenses for a period.
type ProfitAndLossReport struct {
	From          time.Time       `json:"from"`
	To            time.Time       `json:"to"`
	Revenue       []AccountAmount `json:"revenue"`
	COGS          []AccountAmount `json:"cogs"`
	Expenses      []AccountAmount `json:"expenses"`
	TotalRevenue  decimal.Decimal `json:"totalRevenue"`
	TotalCOGS     decimal.Decimal `json:"totalCogs"`
	TotalExpenses decimal.Decimal `json:"totalExpenses"`
	GrossProfit   decimal.Decimal `json:"grossProfit"`
	NetIncome     decimal.Decimal `json:"netIncome"`
}

// BalanceSheetReport summarizes the financial position as of a date.
type BalanceSheetReport struct {
	AsOf             time.Time       `json:"asOf"`
	Assets           []AccountAmount `json:"assets"`
	Liabilities      []AccountAmount `json:"liabilities"`
	Equity           []AccountAmount `json:"equity"`
	TotalAssets      decimal.Decimal `json:"totalAssets"`
	TotalLiabilities decimal.Decimal `json:"totalLiabilities"`
	TotalEquity      decimal.Decimal `json:"totalEquity"`
	CurrentEarnings  decimal.Decimal `json:"currentEarnings"`
	IsBalanced       bool            `json:"isBalanced"`
}

// BalanceDiscrepancy reports an account whose stored balance disagrees with
// the replay of its posted lines.
type BalanceDiscrepancy struct {
	AccountID       string          `json:"accountID"`
	AccountCode     string          `json:"accountCode"`
	StoredBalance   decimal.Decimal `json:"storedBalance"`
	ReplayedBalance decimal.Decimal `json:"replayedBalance"`
}
