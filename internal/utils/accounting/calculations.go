package accounting

import (
	"fmt"
	"iter"

	"github.com/SscSPs/mbg_dapur_ledger/internal/apperrors"
	"github.com/SscSPs/mbg_dapur_ledger/internal/core/domain"
	"github.com/shopspring/decimal"
)

// MinLines is the minimum number of lines in a journal entry.
const MinLines = 2

// AmountScale is the number of decimal places stored for line amounts
// (NUMERIC(20, 4) columns).
const AmountScale = 4

// fitsScale reports whether amount is representable with AmountScale places.
func fitsScale(amount decimal.Decimal) bool {
	return amount.Equal(amount.Truncate(AmountScale))
}

// ValidateLine checks a single line: both sides non-negative and exactly one
// side non-zero.
func ValidateLine(line domain.JournalLine) error {
	if line.AccountID == "" {
		return apperrors.Newf(apperrors.ErrValidation, apperrors.CodeInvalidLine, "line %d has no account", line.LineNo).
			WithDetail("lineNo", line.LineNo)
	}
	if line.Debit.IsNegative() || line.Credit.IsNegative() {
		return apperrors.Newf(apperrors.ErrValidation, apperrors.CodeInvalidLine, "line %d has a negative amount", line.LineNo).
			WithDetail("lineNo", line.LineNo)
	}
	if !fitsScale(line.Debit) || !fitsScale(line.Credit) {
		return apperrors.Newf(apperrors.ErrValidation, apperrors.CodeInvalidLine,
			"line %d has more than %d decimal places", line.LineNo, AmountScale).
			WithDetail("lineNo", line.LineNo).
			WithDetail("maxScale", AmountScale)
	}
	if line.Debit.IsZero() == line.Credit.IsZero() {
		return apperrors.Newf(apperrors.ErrValidation, apperrors.CodeInvalidLine, "line %d must have exactly one of debit or credit", line.LineNo).
			WithDetail("lineNo", line.LineNo)
	}
	return nil
}

// ValidateEntryLines checks the line count, every line, and that debits equal
// credits with a positive total. It returns the totals on success.
func ValidateEntryLines(lines []domain.JournalLine) (decimal.Decimal, decimal.Decimal, error) {
	if len(lines) < MinLines {
		return decimal.Zero, decimal.Zero, apperrors.Newf(apperrors.ErrValidation, apperrors.CodeTooFewLines,
			"journal entry must have at least %d lines, got %d", MinLines, len(lines))
	}
	for _, line := range lines {
		if err := ValidateLine(line); err != nil {
			return decimal.Zero, decimal.Zero, err
		}
	}
	debit, credit := domain.Totals(lines)
	if err := ValidateBalance(debit, credit); err != nil {
		return debit, credit, err
	}
	return debit, credit, nil
}

// ValidateBalance returns UNBALANCED_ENTRY unless debit == credit > 0.
func ValidateBalance(debit, credit decimal.Decimal) error {
	if debit.Equal(credit) && debit.IsPositive() {
		return nil
	}
	msg := fmt.Sprintf("debits sum is %s and credits sum is %s", debit.String(), credit.String())
	if debit.Equal(credit) {
		msg = "journal entry total must be greater than zero"
	}
	return apperrors.New(apperrors.ErrValidation, apperrors.CodeUnbalancedEntry, msg).
		WithDetail("totalDebit", debit).
		WithDetail("totalCredit", credit).
		WithDetail("difference", debit.Sub(credit).Abs())
}

// BalanceChanges computes the per-account balance delta of posting lines. Every
// referenced account must be present in accounts.
func BalanceChanges(lines []domain.JournalLine, accounts map[string]domain.Account) (map[string]decimal.Decimal, error) {
	changes := make(map[string]decimal.Decimal, len(accounts))
	for _, line := range lines {
		acc, ok := accounts[line.AccountID]
		if !ok {
			return nil, apperrors.Newf(apperrors.ErrNotFound, apperrors.CodeAccountNotFound, "account %s not found", line.AccountID).
				WithDetail("accountID", line.AccountID)
		}
		changes[line.AccountID] = changes[line.AccountID].Add(acc.SignedDelta(line.Debit, line.Credit))
	}
	return changes, nil
}

// ReverseLines swaps the debit and credit of every line, keeping accounts and order.
func ReverseLines(lines []domain.JournalLine) []domain.JournalLine {
	out := make([]domain.JournalLine, len(lines))
	for i, l := range lines {
		out[i] = domain.JournalLine{
			LineNo:      l.LineNo,
			AccountID:   l.AccountID,
			AccountCode: l.AccountCode,
			AccountName: l.AccountName,
			Debit:       l.Credit,
			Credit:      l.Debit,
			Description: l.Description,
		}
	}
	return out
}

// Fold sums postings on the normal side, starting from opening.
func Fold(normal domain.NormalBalance, opening decimal.Decimal, postings []domain.Posting) decimal.Decimal {
	acc := domain.Account{NormalBalance: normal}
	balance := opening
	for _, p := range postings {
		balance = balance.Add(acc.SignedDelta(p.Debit, p.Credit))
	}
	return balance
}

// Project yields ledger rows for postings, which must already be in
// chronological order. The sequence can be ranged over any number of times and
// recomputes the running balance from opening on each pass.
func Project(normal domain.NormalBalance, opening decimal.Decimal, postings []domain.Posting) iter.Seq[domain.LedgerRow] {
	acc := domain.Account{NormalBalance: normal}
	return func(yield func(domain.LedgerRow) bool) {
		balance := opening
		for _, p := range postings {
			balance = balance.Add(acc.SignedDelta(p.Debit, p.Credit))
			row := domain.LedgerRow{
				EntryID:        p.EntryID,
				EntryNumber:    p.EntryNumber,
				EntryDate:      p.EntryDate,
				LineNo:         p.LineNo,
				Description:    p.Description,
				Reference:      p.Reference,
				Debit:          p.Debit,
				Credit:         p.Credit,
				RunningBalance: balance,
			}
			if !yield(row) {
				return
			}
		}
	}
}
