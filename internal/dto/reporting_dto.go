package dto

import (
	"github.com/SscSPs/mbg_dapur_ledger/internal/core/domain"
	"github.com/shopspring/decimal"
)

// TrialBalanceRowResponse represents a row in the trial balance report response
type TrialBalanceRowResponse struct {
	AccountID   string          `json:"accountID"`
	AccountCode string          `json:"accountCode"`
	AccountName string          `json:"accountName"`
	AccountType string          `json:"accountType"`
	Debit       decimal.Decimal `json:"debit"`
	Credit      decimal.Decimal `json:"credit"`
}

// TrialBalanceResponse represents the trial balance report response
type TrialBalanceResponse struct {
	AsOf   string                    `json:"asOf"`
	Rows   []TrialBalanceRowResponse `json:"rows"`
	Totals struct {
		Debit  decimal.Decimal `json:"debit"`
		Credit decimal.Decimal `json:"credit"`
	} `json:"totals"`
	IsBalanced bool   `json:"isBalanced"`
	Warning    string `json:"warning,omitempty"`
}

// AccountAmountResponse represents an account with its amount in a financial report
type AccountAmountResponse struct {
	AccountID string          `json:"accountID"`
	Code      string          `json:"code"`
	Name      string          `json:"name"`
	Amount    decimal.Decimal `json:"amount"`
}

// ProfitAndLossResponse represents the profit and loss report response
type ProfitAndLossResponse struct {
	FromDate string                  `json:"fromDate"`
	ToDate   string                  `json:"toDate"`
	Revenue  []AccountAmountResponse `json:"revenue"`
	COGS     []AccountAmountResponse `json:"cogs"`
	Expenses []AccountAmountResponse `json:"expenses"`
	Summary  struct {
		TotalRevenue  decimal.Decimal `json:"totalRevenue"`
		TotalCOGS     decimal.Decimal `json:"totalCogs"`
		GrossProfit   decimal.Decimal `json:"grossProfit"`
		TotalExpenses decimal.Decimal `json:"totalExpenses"`
		NetIncome     decimal.Decimal `json:"netIncome"`
	} `json:"summary"`
}

// BalanceSheetResponse represents the balance sheet report response
type BalanceSheetResponse struct {
	AsOf        string                  `json:"asOf"`
	Assets      []AccountAmountResponse `json:"assets"`
	Liabilities []AccountAmountResponse `json:"liabilities"`
	Equity      []AccountAmountResponse `json:"equity"`
	Summary     struct {
		TotalAssets      decimal.Decimal `json:"totalAssets"`
		TotalLiabilities decimal.Decimal `json:"totalLiabilities"`
		TotalEquity      decimal.Decimal `json:"totalEquity"`
		CurrentEarnings  decimal.Decimal `json:"currentEarnings"`
		IsBalanced       bool            `json:"isBalanced"`
	} `json:"summary"`
}

// LedgerRowResponse is one row of an account ledger.
type LedgerRowResponse struct {
	EntryID        string          `json:"entryID"`
	EntryNumber    string          `json:"entryNumber"`
	EntryDate      string          `json:"entryDate"`
	Description    string          `json:"description"`
	Reference      string          `json:"reference,omitempty"`
	Debit          decimal.Decimal `json:"debit"`
	Credit         decimal.Decimal `json:"credit"`
	RunningBalance decimal.Decimal `json:"runningBalance"`
}

// AccountLedgerResponse is the ledger of a single account.
type AccountLedgerResponse struct {
	Account        AccountResponse     `json:"account"`
	From           string              `json:"from,omitempty"`
	To             string              `json:"to,omitempty"`
	OpeningBalance decimal.Decimal     `json:"openingBalance"`
	ClosingBalance decimal.Decimal     `json:"closingBalance"`
	Rows           []LedgerRowResponse `json:"rows"`
}

// ReconcileResponse lists accounts whose stored balance drifted from their postings.
type ReconcileResponse struct {
	Consistent    bool                        `json:"consistent"`
	Discrepancies []domain.BalanceDiscrepancy `json:"discrepancies"`
}

// ToTrialBalanceResponse converts a domain trial balance to a DTO response
func ToTrialBalanceResponse(tb *domain.TrialBalance) TrialBalanceResponse {
	response := TrialBalanceResponse{
		AsOf:       tb.AsOf.Format(DateLayout),
		Rows:       make([]TrialBalanceRowResponse, len(tb.Lines)),
		IsBalanced: tb.IsBalanced,
		Warning:    tb.Warning,
	}
	for i, row := range tb.Lines {
		response.Rows[i] = TrialBalanceRowResponse{
			AccountID:   row.AccountID,
			AccountCode: row.AccountCode,
			AccountName: row.AccountName,
			AccountType: string(row.AccountType),
			Debit:       row.Debit,
			Credit:      row.Credit,
		}
	}
	response.Totals.Debit = tb.TotalDebit
	response.Totals.Credit = tb.TotalCredit
	return response
}

func toAccountAmountResponses(amounts []domain.AccountAmount) []AccountAmountResponse {
	res := make([]AccountAmountResponse, len(amounts))
	for i, a := range amounts {
		res[i] = AccountAmountResponse{AccountID: a.AccountID, Code: a.Code, Name: a.Name, Amount: a.Amount}
	}
	return res
}

// ToProfitAndLossResponse converts a domain P&L report to a DTO response
func ToProfitAndLossResponse(r *domain.ProfitAndLossReport) ProfitAndLossResponse {
	response := ProfitAndLossResponse{
		FromDate: r.From.Format(DateLayout),
		ToDate:   r.To.Format(DateLayout),
		Revenue:  toAccountAmountResponses(r.Revenue),
		COGS:     toAccountAmountResponses(r.COGS),
		Expenses: toAccountAmountResponses(r.Expenses),
	}
	response.Summary.TotalRevenue = r.TotalRevenue
	response.Summary.TotalCOGS = r.TotalCOGS
	response.Summary.GrossProfit = r.GrossProfit
	response.Summary.TotalExpenses = r.TotalExpenses
	response.Summary.NetIncome = r.NetIncome
	return response
}

// ToBalanceSheetResponse converts a domain balance sheet to a DTO response
func ToBalanceSheetResponse(r *domain.BalanceSheetReport) BalanceSheetResponse {
	response := BalanceSheetResponse{
		AsOf:        r.AsOf.Format(DateLayout),
		Assets:      toAccountAmountResponses(r.Assets),
		Liabilities: toAccountAmountResponses(r.Liabilities),
		Equity:      toAccountAmountResponses(r.Equity),
	}
	response.Summary.TotalAssets = r.TotalAssets
	response.Summary.TotalLiabilities = r.TotalLiabilities
	response.Summary.TotalEquity = r.TotalEquity
	response.Summary.CurrentEarnings = r.CurrentEarnings
	response.Summary.IsBalanced = r.IsBalanced
	return response
}

// ToAccountLedgerResponse converts a projected ledger to a DTO response
func ToAccountLedgerResponse(l *domain.AccountLedger) AccountLedgerResponse {
	response := AccountLedgerResponse{
		Account:        ToAccountResponse(&l.Account),
		OpeningBalance: l.OpeningBalance,
		ClosingBalance: l.ClosingBalance,
		Rows:           make([]LedgerRowResponse, len(l.Rows)),
	}
	if l.From != nil {
		response.From = l.From.Format(DateLayout)
	}
	if l.To != nil {
		response.To = l.To.Format(DateLayout)
	}
	for i, r := range l.Rows {
		response.Rows[i] = LedgerRowResponse{
			EntryID:        r.EntryID,
			EntryNumber:    r.EntryNumber,
			EntryDate:      r.EntryDate.Format(DateLayout),
			Description:    r.Description,
			Reference:      r.Reference,
			Debit:          r.Debit,
			Credit:         r.Credit,
			RunningBalance: r.RunningBalance,
		}
	}
	return response
}
