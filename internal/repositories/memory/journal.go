package memory

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/SscSPs/mbg_dapur_ledger/internal/apperrors"
	"github.com/SscSPs/mbg_dapur_ledger/internal/core/domain"
	"github.com/SscSPs/mbg_dapur_ledger/internal/utils/accounting"
	"github.com/SscSPs/mbg_dapur_ledger/internal/utils/pagination"
	"github.com/SscSPs/mbg_dapur_ledger/internal/utils/sequence"
	"github.com/shopspring/decimal"
)

// nextEntryNumber must be called with s.mu held and only once the write is
// certain to succeed, so sequences stay gapless.
func (s *Store) nextEntryNumber(prefix string, date time.Time) string {
	key := sequence.PeriodKey(prefix, date)
	s.sequences[key]++
	return sequence.FormatEntryNumber(prefix, date, s.sequences[key])
}

// balanceChanges validates an entry about to affect balances and returns the
// per-account deltas. Must be called with s.mu held.
func (s *Store) balanceChanges(lines []domain.JournalLine) (map[string]decimal.Decimal, error) {
	debit, credit := domain.Totals(lines)
	if err := accounting.ValidateBalance(debit, credit); err != nil {
		return nil, err
	}
	accounts := make(map[string]domain.Account, len(lines))
	for _, id := range domain.AccountIDs(lines) {
		acc, ok := s.accounts[id]
		if !ok {
			return nil, apperrors.Newf(apperrors.ErrValidation, apperrors.CodeAccountNotFound, "account %s not found", id).
				WithDetail("accountID", id)
		}
		if !acc.IsActive {
			return nil, apperrors.Newf(apperrors.ErrValidation, apperrors.CodeAccountInactive, "account %s is inactive", acc.Code).
				WithDetail("accountID", id)
		}
		accounts[id] = acc
	}
	return accounting.BalanceChanges(lines, accounts)
}

// applyChanges must be called with s.mu held.
func (s *Store) applyChanges(changes map[string]decimal.Decimal, userID string, now time.Time) {
	for id, delta := range changes {
		if delta.IsZero() {
			continue
		}
		acc := s.accounts[id]
		acc.Balance = acc.Balance.Add(delta)
		acc.LastUpdatedAt = now
		acc.LastUpdatedBy = userID
		s.accounts[id] = acc
	}
}

func (s *Store) checkLineAccounts(lines []domain.JournalLine) error {
	for _, l := range lines {
		if _, ok := s.accounts[l.AccountID]; !ok {
			return apperrors.Newf(apperrors.ErrValidation, apperrors.CodeAccountNotFound, "account %s not found", l.AccountID).
				WithDetail("accountID", l.AccountID)
		}
	}
	return nil
}

// snapshot returns a copy of e with lines joined to the current account code
// and name. Must be called with s.mu held.
func (s *Store) snapshot(e domain.JournalEntry) domain.JournalEntry {
	lines := make([]domain.JournalLine, len(e.Lines))
	for i, l := range e.Lines {
		if acc, ok := s.accounts[l.AccountID]; ok {
			l.AccountCode = acc.Code
			l.AccountName = acc.Name
		}
		lines[i] = l
	}
	e.Lines = lines
	return e
}

func (s *Store) SaveEntry(_ context.Context, entry domain.JournalEntry, numberPrefix string) (*domain.JournalEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.entries[entry.EntryID]; exists {
		return nil, fmt.Errorf("%w: journal entry %s already exists", apperrors.ErrDuplicate, entry.EntryID)
	}
	if err := s.checkLineAccounts(entry.Lines); err != nil {
		return nil, err
	}

	var changes map[string]decimal.Decimal
	if entry.Status.IsPosted() {
		var err error
		if changes, err = s.balanceChanges(entry.Lines); err != nil {
			return nil, err
		}
	}

	entry.EntryNumber = s.nextEntryNumber(numberPrefix, entry.EntryDate)
	entry.Lines = slices.Clone(entry.Lines)
	s.entries[entry.EntryID] = entry
	s.applyChanges(changes, entry.CreatedBy, entry.CreatedAt)

	out := s.snapshot(entry)
	return &out, nil
}

func (s *Store) PostEntry(_ context.Context, entryID string, postedBy string, postedAt time.Time) (*domain.JournalEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[entryID]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	if entry.Status != domain.EntryDraft {
		return nil, apperrors.Newf(apperrors.ErrConflict, apperrors.CodeEntryAlreadyPosted,
			"journal entry %s is already %s", entry.EntryNumber, entry.Status).
			WithDetail("status", entry.Status)
	}
	changes, err := s.balanceChanges(entry.Lines)
	if err != nil {
		return nil, err
	}

	s.applyChanges(changes, postedBy, postedAt)
	entry.Status = domain.EntryPosted
	entry.PostedAt = &postedAt
	entry.PostedBy = &postedBy
	entry.LastUpdatedAt = postedAt
	entry.LastUpdatedBy = postedBy
	s.entries[entryID] = entry

	out := s.snapshot(entry)
	return &out, nil
}

func (s *Store) SaveReversal(_ context.Context, originalID string, reversal domain.JournalEntry, numberPrefix string) (*domain.JournalEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	original, ok := s.entries[originalID]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	switch original.Status {
	case domain.EntryPosted:
	case domain.EntryReversed:
		return nil, apperrors.Newf(apperrors.ErrConflict, apperrors.CodeEntryAlreadyReversed,
			"journal entry %s is already reversed", original.EntryNumber)
	default:
		return nil, apperrors.Newf(apperrors.ErrConflict, apperrors.CodeEntryNotPosted,
			"journal entry %s is %s and cannot be reversed", original.EntryNumber, original.Status)
	}

	changes, err := s.balanceChanges(reversal.Lines)
	if err != nil {
		return nil, err
	}

	reversal.EntryNumber = s.nextEntryNumber(numberPrefix, reversal.EntryDate)
	reversal.Lines = slices.Clone(reversal.Lines)
	s.entries[reversal.EntryID] = reversal
	s.applyChanges(changes, reversal.CreatedBy, reversal.CreatedAt)

	reversalID := reversal.EntryID
	original.Status = domain.EntryReversed
	original.ReversedByID = &reversalID
	original.LastUpdatedAt = reversal.CreatedAt
	original.LastUpdatedBy = reversal.CreatedBy
	s.entries[originalID] = original

	out := s.snapshot(reversal)
	return &out, nil
}

func (s *Store) DeleteEntry(_ context.Context, entryID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[entryID]
	if !ok {
		return apperrors.ErrNotFound
	}
	if entry.Type == domain.EntryAuto {
		return apperrors.Newf(apperrors.ErrProtected, apperrors.CodeAutoEntryImmutable,
			"auto journal entry %s cannot be deleted", entry.EntryNumber)
	}
	if entry.Status != domain.EntryDraft {
		return apperrors.Newf(apperrors.ErrConflict, apperrors.CodePostedEntryImmutable,
			"journal entry %s is %s, reverse it instead", entry.EntryNumber, entry.Status)
	}
	delete(s.entries, entryID)
	return nil
}

func (s *Store) FindEntryByID(_ context.Context, entryID string) (*domain.JournalEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[entryID]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	out := s.snapshot(entry)
	return &out, nil
}

// compareEntryKey orders by (entry_date, entry_number) ascending.
func compareEntryKey(aDate time.Time, aNumber string, bDate time.Time, bNumber string) int {
	if c := aDate.Compare(bDate); c != 0 {
		return c
	}
	return sequence.CompareEntryNumbers(aNumber, bNumber)
}

func (s *Store) ListEntries(_ context.Context, filter domain.JournalFilter, limit int, nextToken *string) ([]domain.JournalEntry, *string, error) {
	limit = pagination.ClampLimit(limit)

	var (
		hasCursor  bool
		lastDate   time.Time
		lastNumber string
	)
	if nextToken != nil && *nextToken != "" {
		var err error
		lastDate, lastNumber, err = pagination.DecodeEntryToken(*nextToken)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: invalid nextToken: %v", apperrors.ErrValidation, err)
		}
		hasCursor = true
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var matched []domain.JournalEntry
	for _, e := range s.entries {
		switch {
		case filter.Status != "" && e.Status != filter.Status,
			filter.Type != "" && e.Type != filter.Type,
			filter.From != nil && e.EntryDate.Before(*filter.From),
			filter.To != nil && e.EntryDate.After(*filter.To),
			hasCursor && compareEntryKey(e.EntryDate, e.EntryNumber, lastDate, lastNumber) >= 0:
			continue
		}
		matched = append(matched, e)
	}
	// Newest first.
	slices.SortFunc(matched, func(a, b domain.JournalEntry) int {
		return compareEntryKey(b.EntryDate, b.EntryNumber, a.EntryDate, a.EntryNumber)
	})

	var token *string
	if len(matched) > limit {
		matched = matched[:limit]
		last := matched[limit-1]
		t := pagination.EncodeEntryToken(last.EntryDate, last.EntryNumber)
		token = &t
	}

	out := make([]domain.JournalEntry, len(matched))
	for i, e := range matched {
		out[i] = s.snapshot(e)
	}
	return out, token, nil
}

func (s *Store) ListPostingsByAccount(_ context.Context, accountID string, from, to *time.Time) ([]domain.Posting, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	postings := []domain.Posting{}
	for _, e := range s.entries {
		if !e.Status.IsPosted() ||
			(from != nil && e.EntryDate.Before(*from)) ||
			(to != nil && e.EntryDate.After(*to)) {
			continue
		}
		for _, l := range e.Lines {
			if l.AccountID != accountID {
				continue
			}
			desc := l.Description
			if desc == "" {
				desc = e.Description
			}
			postings = append(postings, domain.Posting{
				EntryID:     e.EntryID,
				EntryNumber: e.EntryNumber,
				EntryDate:   e.EntryDate,
				LineNo:      l.LineNo,
				Description: desc,
				Reference:   e.Reference,
				Debit:       l.Debit,
				Credit:      l.Credit,
			})
		}
	}
	slices.SortFunc(postings, func(a, b domain.Posting) int {
		if c := compareEntryKey(a.EntryDate, a.EntryNumber, b.EntryDate, b.EntryNumber); c != 0 {
			return c
		}
		return cmp.Compare(a.LineNo, b.LineNo)
	})
	return postings, nil
}

func (s *Store) SumPostingsBefore(_ context.Context, accountID string, before time.Time) (decimal.Decimal, decimal.Decimal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	debit, credit := decimal.Zero, decimal.Zero
	for _, e := range s.entries {
		if !e.Status.IsPosted() || !e.EntryDate.Before(before) {
			continue
		}
		for _, l := range e.Lines {
			if l.AccountID == accountID {
				debit = debit.Add(l.Debit)
				credit = credit.Add(l.Credit)
			}
		}
	}
	return debit, credit, nil
}
