package memory

import (
	"context"
	"slices"
	"strings"
	"time"

	"github.com/SscSPs/mbg_dapur_ledger/internal/core/domain"
	"github.com/shopspring/decimal"
)

func (s *Store) ListAccountActivity(_ context.Context, from *time.Time, to time.Time) ([]domain.AccountActivity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	byAccount := make(map[string]*domain.AccountActivity, len(s.accounts))
	out := make([]domain.AccountActivity, 0, len(s.accounts))
	for _, acc := range s.accounts {
		out = append(out, domain.AccountActivity{Account: acc, TotalDebit: decimal.Zero, TotalCredit: decimal.Zero})
	}
	slices.SortFunc(out, func(a, b domain.AccountActivity) int { return strings.Compare(a.Account.Code, b.Account.Code) })
	for i := range out {
		byAccount[out[i].Account.AccountID] = &out[i]
	}

	for _, e := range s.entries {
		if !e.Status.IsPosted() || e.EntryDate.After(to) || (from != nil && e.EntryDate.Before(*from)) {
			continue
		}
		for _, l := range e.Lines {
			if a, ok := byAccount[l.AccountID]; ok {
				a.TotalDebit = a.TotalDebit.Add(l.Debit)
				a.TotalCredit = a.TotalCredit.Add(l.Credit)
			}
		}
	}
	return out, nil
}
