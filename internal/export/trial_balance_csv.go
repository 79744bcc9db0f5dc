package export

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/SscSPs/mbg_dapur_ledger/internal/core/domain"
	"github.com/shopspring/decimal"
)

// TrialBalanceHeader is the header row of the trial balance CSV.
var TrialBalanceHeader = []string{"Kode Akun", "Nama Akun", "Tipe", "Debit", "Kredit"}

// TrialBalanceFilename is the suggested download name for a trial balance as of a date.
func TrialBalanceFilename(tb *domain.TrialBalance) string {
	return fmt.Sprintf("neraca-saldo-%s.csv", tb.AsOf.Format("2006-01-02"))
}

// WriteTrialBalanceCSV writes one row per account followed by a TOTAL row.
// Amounts are whole rupiah, rounded half away from zero per row; TOTAL is the
// sum of the rounded rows so the file adds up.
func WriteTrialBalanceCSV(w io.Writer, tb *domain.TrialBalance) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write(TrialBalanceHeader); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	totalDebit, totalCredit := decimal.Zero, decimal.Zero
	for i, line := range tb.Lines {
		if err := cw.Write(MarshalTrialBalanceLine(line)); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
		totalDebit = totalDebit.Add(roundAmount(line.Debit))
		totalCredit = totalCredit.Add(roundAmount(line.Credit))
	}
	if err := cw.Write([]string{"TOTAL", "", "", formatAmount(totalDebit), formatAmount(totalCredit)}); err != nil {
		return fmt.Errorf("writing total row: %w", err)
	}
	cw.Flush()
	return cw.Error()
}

// MarshalTrialBalanceLine converts a trial balance line to a CSV row.
func MarshalTrialBalanceLine(line domain.TrialBalanceLine) []string {
	return []string{
		line.AccountCode,
		line.AccountName,
		string(line.AccountType),
		formatAmount(line.Debit),
		formatAmount(line.Credit),
	}
}

func roundAmount(d decimal.Decimal) decimal.Decimal {
	return d.Round(0)
}

func formatAmount(d decimal.Decimal) string {
	return roundAmount(d).StringFixed(0)
}
