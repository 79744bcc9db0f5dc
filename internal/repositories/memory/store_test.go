package memory

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/SscSPs/mbg_dapur_ledger/internal/apperrors"
	"github.com/SscSPs/mbg_dapur_ledger/internal/core/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

const (
	cashID    = "00000000-0000-4000-8000-000000011000"
	bankID    = "00000000-0000-4000-8000-000000011100"
	revenueID = "00000000-0000-4000-8000-000000041000"
	capitalID = "00000000-0000-4000-8000-000000031000"
)

type StoreTestSuite struct {
	suite.Suite
	ctx   context.Context
	store *Store
	now   time.Time
	seq   int
}

func (s *StoreTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.now = time.Date(2025, 3, 15, 9, 30, 0, 0, time.UTC)
	s.store = NewStore()
	s.store.SeedSystemAccounts(s.now)
	s.seq = 0
}

func amount(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func (s *StoreTestSuite) entry(date time.Time, status domain.EntryStatus, debitID, creditID string, value int64) domain.JournalEntry {
	s.seq++
	id := fmt.Sprintf("entry-%d", s.seq)
	return domain.JournalEntry{
		EntryID:     id,
		EntryDate:   domain.DateOnly(date),
		Type:        domain.EntryManual,
		Status:      status,
		Description: "test entry",
		Lines: []domain.JournalLine{
			{LineID: id + "-1", EntryID: id, LineNo: 1, AccountID: debitID, Debit: amount(value), Credit: decimal.Zero},
			{LineID: id + "-2", EntryID: id, LineNo: 2, AccountID: creditID, Debit: decimal.Zero, Credit: amount(value)},
		},
		TotalDebit:  amount(value),
		TotalCredit: amount(value),
		AuditFields: domain.AuditFields{CreatedAt: s.now, CreatedBy: "u1", LastUpdatedAt: s.now, LastUpdatedBy: "u1"},
	}
}

func (s *StoreTestSuite) balance(id string) decimal.Decimal {
	acc, err := s.store.FindAccountByID(s.ctx, id)
	s.Require().NoError(err)
	return acc.Balance
}

func (s *StoreTestSuite) TestSeedSystemAccounts_Idempotent() {
	s.store.SeedSystemAccounts(s.now.Add(time.Hour))

	accounts, err := s.store.ListAccounts(s.ctx, domain.AccountFilter{})
	s.Require().NoError(err)
	s.Len(accounts, len(systemAccounts))
	s.Equal("1-1000", accounts[0].Code)
	for _, a := range accounts {
		s.True(a.IsSystem)
		s.Equal(a.Type.NormalBalance(), a.NormalBalance)
		s.Equal(s.now, a.CreatedAt)
	}
}

func (s *StoreTestSuite) TestSaveEntry_PostedUpdatesBalancesAndNumbers() {
	saved, err := s.store.SaveEntry(s.ctx, s.entry(s.now, domain.EntryPosted, cashID, revenueID, 150000), "JE")
	s.Require().NoError(err)
	s.Equal("JE-202503-0001", saved.EntryNumber)
	s.Equal("1-1000", saved.Lines[0].AccountCode)
	s.Equal("Kas", saved.Lines[0].AccountName)

	second, err := s.store.SaveEntry(s.ctx, s.entry(s.now, domain.EntryPosted, cashID, revenueID, 50000), "JE")
	s.Require().NoError(err)
	s.Equal("JE-202503-0002", second.EntryNumber)

	s.True(amount(200000).Equal(s.balance(cashID)))
	s.True(amount(200000).Equal(s.balance(revenueID)))
}

func (s *StoreTestSuite) TestSaveEntry_DraftLeavesBalances() {
	_, err := s.store.SaveEntry(s.ctx, s.entry(s.now, domain.EntryDraft, cashID, revenueID, 1000), "JE")
	s.Require().NoError(err)
	s.True(s.balance(cashID).IsZero())
}

func (s *StoreTestSuite) TestSaveEntry_FailureDoesNotConsumeNumber() {
	bad := s.entry(s.now, domain.EntryPosted, cashID, revenueID, 1000)
	bad.Lines[1].Credit = amount(900)
	_, err := s.store.SaveEntry(s.ctx, bad, "JE")
	s.Equal(apperrors.CodeUnbalancedEntry, apperrors.CodeOf(err))

	saved, err := s.store.SaveEntry(s.ctx, s.entry(s.now, domain.EntryPosted, cashID, revenueID, 1000), "JE")
	s.Require().NoError(err)
	s.Equal("JE-202503-0001", saved.EntryNumber)
	s.True(amount(1000).Equal(s.balance(cashID)))
}

func (s *StoreTestSuite) TestSaveEntry_SequencesArePerPrefixAndMonth() {
	_, err := s.store.SaveEntry(s.ctx, s.entry(s.now, domain.EntryDraft, cashID, revenueID, 1), "JE")
	s.Require().NoError(err)
	auto, err := s.store.SaveEntry(s.ctx, s.entry(s.now, domain.EntryPosted, cashID, revenueID, 1), "AJ")
	s.Require().NoError(err)
	april, err := s.store.SaveEntry(s.ctx, s.entry(s.now.AddDate(0, 1, 0), domain.EntryDraft, cashID, revenueID, 1), "JE")
	s.Require().NoError(err)

	s.Equal("AJ-202503-0001", auto.EntryNumber)
	s.Equal("JE-202504-0001", april.EntryNumber)
}

func (s *StoreTestSuite) TestSaveEntry_UnknownAccount() {
	_, err := s.store.SaveEntry(s.ctx, s.entry(s.now, domain.EntryDraft, "missing", revenueID, 1), "JE")
	s.True(errors.Is(err, apperrors.ErrValidation))
	s.Equal(apperrors.CodeAccountNotFound, apperrors.CodeOf(err))
}

func (s *StoreTestSuite) TestPostEntry_InactiveAccountRejected() {
	draft, err := s.store.SaveEntry(s.ctx, s.entry(s.now, domain.EntryDraft, cashID, revenueID, 1000), "JE")
	s.Require().NoError(err)

	cash, _ := s.store.FindAccountByID(s.ctx, cashID)
	cash.IsActive = false
	s.Require().NoError(s.store.UpdateAccount(s.ctx, *cash))

	_, err = s.store.PostEntry(s.ctx, draft.EntryID, "u2", s.now)
	s.Equal(apperrors.CodeAccountInactive, apperrors.CodeOf(err))
	s.True(s.balance(revenueID).IsZero())
}

func (s *StoreTestSuite) TestPostEntry_Twice() {
	draft, err := s.store.SaveEntry(s.ctx, s.entry(s.now, domain.EntryDraft, cashID, revenueID, 1000), "JE")
	s.Require().NoError(err)

	posted, err := s.store.PostEntry(s.ctx, draft.EntryID, "u2", s.now)
	s.Require().NoError(err)
	s.Equal(domain.EntryPosted, posted.Status)
	s.Equal("u2", *posted.PostedBy)

	_, err = s.store.PostEntry(s.ctx, draft.EntryID, "u2", s.now)
	s.Equal(apperrors.CodeEntryAlreadyPosted, apperrors.CodeOf(err))
	s.True(amount(1000).Equal(s.balance(cashID)))
}

func (s *StoreTestSuite) TestSaveReversal() {
	original, err := s.store.SaveEntry(s.ctx, s.entry(s.now, domain.EntryPosted, cashID, revenueID, 700), "JE")
	s.Require().NoError(err)

	reversal := s.entry(s.now, domain.EntryPosted, revenueID, cashID, 700)
	reversal.Type = domain.EntryAuto
	reversal.SourceModule = domain.ReversalSource
	saved, err := s.store.SaveReversal(s.ctx, original.EntryID, reversal, "AJ")
	s.Require().NoError(err)
	s.Equal("AJ-202503-0001", saved.EntryNumber)

	s.True(s.balance(cashID).IsZero())
	s.True(s.balance(revenueID).IsZero())

	reloaded, err := s.store.FindEntryByID(s.ctx, original.EntryID)
	s.Require().NoError(err)
	s.Equal(domain.EntryReversed, reloaded.Status)
	s.Equal(saved.EntryID, *reloaded.ReversedByID)

	_, err = s.store.SaveReversal(s.ctx, original.EntryID, s.entry(s.now, domain.EntryPosted, revenueID, cashID, 700), "AJ")
	s.Equal(apperrors.CodeEntryAlreadyReversed, apperrors.CodeOf(err))
}

func (s *StoreTestSuite) TestSaveReversal_DraftRejected() {
	draft, err := s.store.SaveEntry(s.ctx, s.entry(s.now, domain.EntryDraft, cashID, revenueID, 1), "JE")
	s.Require().NoError(err)
	_, err = s.store.SaveReversal(s.ctx, draft.EntryID, s.entry(s.now, domain.EntryPosted, revenueID, cashID, 1), "AJ")
	s.Equal(apperrors.CodeEntryNotPosted, apperrors.CodeOf(err))
}

func (s *StoreTestSuite) TestDeleteEntry_Guards() {
	draft, err := s.store.SaveEntry(s.ctx, s.entry(s.now, domain.EntryDraft, cashID, revenueID, 1), "JE")
	s.Require().NoError(err)
	posted, err := s.store.SaveEntry(s.ctx, s.entry(s.now, domain.EntryPosted, cashID, revenueID, 1), "JE")
	s.Require().NoError(err)
	auto := s.entry(s.now, domain.EntryPosted, cashID, revenueID, 1)
	auto.Type = domain.EntryAuto
	savedAuto, err := s.store.SaveEntry(s.ctx, auto, "AJ")
	s.Require().NoError(err)

	s.Equal(apperrors.CodePostedEntryImmutable, apperrors.CodeOf(s.store.DeleteEntry(s.ctx, posted.EntryID)))
	s.Equal(apperrors.CodeAutoEntryImmutable, apperrors.CodeOf(s.store.DeleteEntry(s.ctx, savedAuto.EntryID)))
	s.NoError(s.store.DeleteEntry(s.ctx, draft.EntryID))
	s.ErrorIs(s.store.DeleteEntry(s.ctx, draft.EntryID), apperrors.ErrNotFound)
}

func (s *StoreTestSuite) TestListEntries_PaginatesNewestFirst() {
	for i := range 5 {
		_, err := s.store.SaveEntry(s.ctx, s.entry(s.now.AddDate(0, 0, i), domain.EntryDraft, cashID, revenueID, 1), "JE")
		s.Require().NoError(err)
	}

	page, token, err := s.store.ListEntries(s.ctx, domain.JournalFilter{}, 2, nil)
	s.Require().NoError(err)
	s.Require().Len(page, 2)
	s.Require().NotNil(token)
	s.Equal("JE-202503-0005", page[0].EntryNumber)
	s.Equal("JE-202503-0004", page[1].EntryNumber)

	rest, token, err := s.store.ListEntries(s.ctx, domain.JournalFilter{}, 10, token)
	s.Require().NoError(err)
	s.Nil(token)
	s.Len(rest, 3)
	s.Equal("JE-202503-0003", rest[0].EntryNumber)
}

func (s *StoreTestSuite) TestEntriesOrderPastFourDigitSequence() {
	s.store.sequences["JE-202503"] = 9998
	for range 2 {
		_, err := s.store.SaveEntry(s.ctx, s.entry(s.now, domain.EntryPosted, cashID, revenueID, 1), "JE")
		s.Require().NoError(err)
	}

	page, _, err := s.store.ListEntries(s.ctx, domain.JournalFilter{}, 10, nil)
	s.Require().NoError(err)
	s.Require().Len(page, 2)
	s.Equal("JE-202503-10000", page[0].EntryNumber)
	s.Equal("JE-202503-9999", page[1].EntryNumber)

	first, token, err := s.store.ListEntries(s.ctx, domain.JournalFilter{}, 1, nil)
	s.Require().NoError(err)
	s.Require().NotNil(token)
	s.Equal("JE-202503-10000", first[0].EntryNumber)
	next, _, err := s.store.ListEntries(s.ctx, domain.JournalFilter{}, 1, token)
	s.Require().NoError(err)
	s.Require().Len(next, 1)
	s.Equal("JE-202503-9999", next[0].EntryNumber)

	postings, err := s.store.ListPostingsByAccount(s.ctx, cashID, nil, nil)
	s.Require().NoError(err)
	s.Require().Len(postings, 2)
	s.Equal("JE-202503-9999", postings[0].EntryNumber)
	s.Equal("JE-202503-10000", postings[1].EntryNumber)
}

func (s *StoreTestSuite) TestListEntries_Filters() {
	_, err := s.store.SaveEntry(s.ctx, s.entry(s.now, domain.EntryDraft, cashID, revenueID, 1), "JE")
	s.Require().NoError(err)
	_, err = s.store.SaveEntry(s.ctx, s.entry(s.now.AddDate(0, 0, 3), domain.EntryPosted, cashID, revenueID, 1), "JE")
	s.Require().NoError(err)

	posted, _, err := s.store.ListEntries(s.ctx, domain.JournalFilter{Status: domain.EntryPosted}, 10, nil)
	s.Require().NoError(err)
	s.Len(posted, 1)

	to := domain.DateOnly(s.now)
	early, _, err := s.store.ListEntries(s.ctx, domain.JournalFilter{To: &to}, 10, nil)
	s.Require().NoError(err)
	s.Len(early, 1)
	s.Equal(domain.EntryDraft, early[0].Status)

	bad := "not-a-token"
	_, _, err = s.store.ListEntries(s.ctx, domain.JournalFilter{}, 10, &bad)
	s.ErrorIs(err, apperrors.ErrValidation)
}

func (s *StoreTestSuite) TestPostingsAndActivity() {
	march := domain.DateOnly(s.now)
	april := march.AddDate(0, 1, 0)
	_, err := s.store.SaveEntry(s.ctx, s.entry(march, domain.EntryPosted, cashID, capitalID, 1000), "JE")
	s.Require().NoError(err)
	_, err = s.store.SaveEntry(s.ctx, s.entry(april, domain.EntryPosted, bankID, cashID, 400), "JE")
	s.Require().NoError(err)
	_, err = s.store.SaveEntry(s.ctx, s.entry(april, domain.EntryDraft, cashID, capitalID, 99), "JE")
	s.Require().NoError(err)

	postings, err := s.store.ListPostingsByAccount(s.ctx, cashID, nil, nil)
	s.Require().NoError(err)
	s.Require().Len(postings, 2)
	s.Equal(march, postings[0].EntryDate)
	s.Equal("test entry", postings[0].Description)

	debit, credit, err := s.store.SumPostingsBefore(s.ctx, cashID, april)
	s.Require().NoError(err)
	s.True(amount(1000).Equal(debit))
	s.True(credit.IsZero())

	activity, err := s.store.ListAccountActivity(s.ctx, &april, april)
	s.Require().NoError(err)
	s.Len(activity, len(systemAccounts))
	for _, a := range activity {
		switch a.Account.AccountID {
		case cashID:
			s.True(amount(400).Equal(a.TotalCredit))
			s.True(a.TotalDebit.IsZero())
		case bankID:
			s.True(amount(400).Equal(a.TotalDebit))
		case capitalID:
			s.False(a.HasActivity())
		}
	}
}

func (s *StoreTestSuite) TestDeleteAccount_Guards() {
	s.Equal(apperrors.CodeSystemAccountProtected, apperrors.CodeOf(s.store.DeleteAccount(s.ctx, cashID)))

	_, err := s.store.SaveEntry(s.ctx, s.entry(s.now, domain.EntryPosted, cashID, revenueID, 500000), "JE")
	s.Require().NoError(err)
	s.Equal(apperrors.CodeAccountHasBalance, apperrors.CodeOf(s.store.DeleteAccount(s.ctx, cashID)))

	custom := domain.Account{
		AccountID: "acc-custom", Code: "1-1900", Name: "Kas Kecil",
		Type: domain.Asset, Category: domain.CurrentAsset, NormalBalance: domain.DebitNormal,
		Balance: decimal.Zero, IsActive: true,
	}
	s.Require().NoError(s.store.SaveAccount(s.ctx, custom))
	s.ErrorIs(s.store.SaveAccount(s.ctx, custom), apperrors.ErrDuplicate)

	draft, err := s.store.SaveEntry(s.ctx, s.entry(s.now, domain.EntryDraft, custom.AccountID, revenueID, 5), "JE")
	s.Require().NoError(err)
	s.Equal(apperrors.CodeAccountInUse, apperrors.CodeOf(s.store.DeleteAccount(s.ctx, custom.AccountID)))

	s.Require().NoError(s.store.DeleteEntry(s.ctx, draft.EntryID))
	s.NoError(s.store.DeleteAccount(s.ctx, custom.AccountID))
	_, err = s.store.FindAccountByCode(s.ctx, custom.Code)
	s.ErrorIs(err, apperrors.ErrNotFound)
}

func (s *StoreTestSuite) TestUpdateAccount_TypeChangeNeedsZeroBalance() {
	_, err := s.store.SaveEntry(s.ctx, s.entry(s.now, domain.EntryPosted, cashID, revenueID, 1000), "JE")
	s.Require().NoError(err)

	acc, err := s.store.FindAccountByID(s.ctx, revenueID)
	s.Require().NoError(err)
	changed := *acc
	changed.Type = domain.Liability
	changed.Category = domain.Payable
	changed.NormalBalance = domain.CreditNormal

	err = s.store.UpdateAccount(s.ctx, changed)
	s.ErrorIs(err, apperrors.ErrConflict)
	s.Equal(apperrors.CodeAccountHasBalance, apperrors.CodeOf(err))

	reloaded, err := s.store.FindAccountByID(s.ctx, revenueID)
	s.Require().NoError(err)
	s.Equal(domain.Revenue, reloaded.Type)

	renamed := *acc
	renamed.Name = "Pendapatan Katering"
	s.NoError(s.store.UpdateAccount(s.ctx, renamed))
}

func (s *StoreTestSuite) TestUsers() {
	user := domain.User{UserID: "u1", Username: "siti", Name: "Siti"}
	s.Require().NoError(s.store.SaveUser(s.ctx, user))
	s.ErrorIs(s.store.SaveUser(s.ctx, domain.User{UserID: "u2", Username: "siti"}), apperrors.ErrDuplicate)

	found, err := s.store.FindUserByUsername(s.ctx, "siti")
	s.Require().NoError(err)
	s.Equal("u1", found.UserID)

	_, err = s.store.FindUserByID(s.ctx, "nobody")
	s.ErrorIs(err, apperrors.ErrNotFound)
}

func TestStoreTestSuite(t *testing.T) {
	suite.Run(t, new(StoreTestSuite))
}
