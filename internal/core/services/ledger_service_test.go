package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/SscSPs/mbg_dapur_ledger/internal/apperrors"
	"github.com/SscSPs/mbg_dapur_ledger/internal/core/domain"
	portssvc "github.com/SscSPs/mbg_dapur_ledger/internal/core/ports/services"
	"github.com/SscSPs/mbg_dapur_ledger/internal/core/services"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newLedgerUnderTest() (*MockAccountRepository, *MockJournalRepository, portssvc.LedgerSvcFacade) {
	accountRepo := new(MockAccountRepository)
	journalRepo := new(MockJournalRepository)
	svc := services.NewLedgerService(services.NewAccountService(accountRepo), journalRepo, new(MockReportingRepository))
	return accountRepo, journalRepo, svc
}

func TestLedger_GetByDateRange_CarriesOpeningBalance(t *testing.T) {
	accountRepo, journalRepo, svc := newLedgerUnderTest()
	ctx := context.Background()
	start := time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 4, 30, 0, 0, 0, 0, time.UTC)
	cash := &domain.Account{AccountID: testCashID, Code: "1-1000", Type: domain.Asset, NormalBalance: domain.DebitNormal}

	accountRepo.On("FindAccountByID", ctx, testCashID).Return(cash, nil).Once()
	journalRepo.On("SumPostingsBefore", ctx, testCashID, start).Return(amount(10000), amount(2000), nil).Once()
	journalRepo.On("ListPostingsByAccount", ctx, testCashID, &start, &end).Return([]domain.Posting{
		{EntryNumber: "JE-202504-0001", EntryDate: start, LineNo: 2, Credit: amount(1000), Debit: decimal.Zero},
		{EntryNumber: "JE-202504-0002", EntryDate: end, LineNo: 1, Debit: amount(500), Credit: decimal.Zero},
	}, nil).Once()

	ledger, err := svc.GetByDateRange(ctx, testCashID, start, end)

	require.NoError(t, err)
	assert.True(t, amount(8000).Equal(ledger.OpeningBalance))
	require.Len(t, ledger.Rows, 2)
	assert.True(t, amount(7000).Equal(ledger.Rows[0].RunningBalance))
	assert.True(t, amount(7500).Equal(ledger.ClosingBalance))
	assert.Equal(t, start, *ledger.From)
}

func TestLedger_GetByDateRange_InvalidRange(t *testing.T) {
	accountRepo, _, svc := newLedgerUnderTest()

	_, err := svc.GetByDateRange(context.Background(), testCashID, fixedNow, fixedNow.AddDate(0, 0, -1))

	assert.Equal(t, apperrors.CodeInvalidDateRange, apperrors.CodeOf(err))
	accountRepo.AssertNotCalled(t, "FindAccountByID", mock.Anything, mock.Anything)
}

func TestLedger_GetByAccount_EmptyHistory(t *testing.T) {
	accountRepo, journalRepo, svc := newLedgerUnderTest()
	ctx := context.Background()
	accountRepo.On("FindAccountByID", ctx, testCashID).Return(&domain.Account{AccountID: testCashID, NormalBalance: domain.DebitNormal}, nil).Once()
	journalRepo.On("ListPostingsByAccount", ctx, testCashID, (*time.Time)(nil), (*time.Time)(nil)).Return([]domain.Posting{}, nil).Once()

	ledger, err := svc.GetByAccount(ctx, testCashID)

	require.NoError(t, err)
	assert.NotNil(t, ledger.Rows)
	assert.Empty(t, ledger.Rows)
	assert.True(t, ledger.ClosingBalance.IsZero())
	assert.Nil(t, ledger.From)
}

func TestLedger_GetByAccount_UnknownAccount(t *testing.T) {
	accountRepo, _, svc := newLedgerUnderTest()
	accountRepo.On("FindAccountByID", mock.Anything, "nope").Return(nil, apperrors.ErrNotFound).Once()

	_, err := svc.GetByAccount(context.Background(), "nope")

	assert.Equal(t, apperrors.CodeAccountNotFound, apperrors.CodeOf(err))
}

func TestLedger_ReconcileBalances_ReportsDrift(t *testing.T) {
	reportingRepo := new(MockReportingRepository)
	svc := services.NewLedgerService(services.NewAccountService(new(MockAccountRepository)), new(MockJournalRepository), reportingRepo)
	healthy := activity("1-1000", domain.Asset, 1000, 400)
	healthy.Account.Balance = amount(600)
	drifted := activity("4-1000", domain.Revenue, 0, 600)
	drifted.Account.Balance = amount(650)
	reportingRepo.On("ListAccountActivity", mock.Anything, (*time.Time)(nil), mock.Anything).
		Return([]domain.AccountActivity{healthy, drifted}, nil).Once()

	discrepancies, err := svc.ReconcileBalances(context.Background())

	require.NoError(t, err)
	require.Len(t, discrepancies, 1)
	assert.Equal(t, "4-1000", discrepancies[0].AccountCode)
	assert.True(t, amount(600).Equal(discrepancies[0].ReplayedBalance))
	assert.True(t, amount(650).Equal(discrepancies[0].StoredBalance))
}
