package services

import (
	"context"
	"log/slog"
	"slices"
	"time"

	"github.com/SscSPs/mbg_dapur_ledger/internal/apperrors"
	"github.com/SscSPs/mbg_dapur_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/mbg_dapur_ledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/mbg_dapur_ledger/internal/core/ports/services"
	"github.com/SscSPs/mbg_dapur_ledger/internal/utils/accounting"
	"github.com/shopspring/decimal"
)

// endOfTime bounds "all posted history" queries.
var endOfTime = time.Date(9999, 12, 31, 0, 0, 0, 0, time.UTC)

// ledgerService projects posted lines into account ledgers.
type ledgerService struct {
	BaseService
	accountSvc    portssvc.AccountReaderSvc
	ledgerRepo    portsrepo.LedgerReader
	reportingRepo portsrepo.ReportingRepository
}

// NewLedgerService creates a new LedgerService.
func NewLedgerService(accountSvc portssvc.AccountReaderSvc, ledgerRepo portsrepo.LedgerReader, reportingRepo portsrepo.ReportingRepository) portssvc.LedgerSvcFacade {
	return &ledgerService{
		accountSvc:    accountSvc,
		ledgerRepo:    ledgerRepo,
		reportingRepo: reportingRepo,
	}
}

var _ portssvc.LedgerSvcFacade = (*ledgerService)(nil)

func (s *ledgerService) GetByAccount(ctx context.Context, accountID string) (*domain.AccountLedger, error) {
	account, err := s.accountSvc.GetAccountByID(ctx, accountID)
	if err != nil {
		return nil, err
	}
	postings, err := s.ledgerRepo.ListPostingsByAccount(ctx, accountID, nil, nil)
	if err != nil {
		s.LogError(ctx, err, "Failed to list postings", slog.String("account_id", accountID))
		return nil, err
	}
	return s.project(*account, nil, nil, decimal.Zero, postings), nil
}

func (s *ledgerService) GetByDateRange(ctx context.Context, accountID string, start, end time.Time) (*domain.AccountLedger, error) {
	start, end = domain.DateOnly(start), domain.DateOnly(end)
	if start.After(end) {
		return nil, apperrors.Newf(apperrors.ErrValidation, apperrors.CodeInvalidDateRange,
			"start %s is after end %s", start.Format(time.DateOnly), end.Format(time.DateOnly))
	}
	account, err := s.accountSvc.GetAccountByID(ctx, accountID)
	if err != nil {
		return nil, err
	}

	debit, credit, err := s.ledgerRepo.SumPostingsBefore(ctx, accountID, start)
	if err != nil {
		s.LogError(ctx, err, "Failed to sum postings before range", slog.String("account_id", accountID))
		return nil, err
	}
	opening := account.SignedDelta(debit, credit)

	postings, err := s.ledgerRepo.ListPostingsByAccount(ctx, accountID, &start, &end)
	if err != nil {
		s.LogError(ctx, err, "Failed to list postings", slog.String("account_id", accountID))
		return nil, err
	}
	return s.project(*account, &start, &end, opening, postings), nil
}

func (s *ledgerService) project(account domain.Account, from, to *time.Time, opening decimal.Decimal, postings []domain.Posting) *domain.AccountLedger {
	rows := slices.Collect(accounting.Project(account.NormalBalance, opening, postings))
	if rows == nil {
		rows = []domain.LedgerRow{}
	}
	closing := opening
	if len(rows) > 0 {
		closing = rows[len(rows)-1].RunningBalance
	}
	return &domain.AccountLedger{
		Account:        account,
		From:           from,
		To:             to,
		OpeningBalance: opening,
		ClosingBalance: closing,
		Rows:           rows,
	}
}

func (s *ledgerService) ReconcileBalances(ctx context.Context) ([]domain.BalanceDiscrepancy, error) {
	activity, err := s.reportingRepo.ListAccountActivity(ctx, nil, endOfTime)
	if err != nil {
		s.LogError(ctx, err, "Failed to load account activity for reconciliation")
		return nil, err
	}

	discrepancies := []domain.BalanceDiscrepancy{}
	for _, a := range activity {
		replayed := a.NetBalance()
		if replayed.Equal(a.Account.Balance) {
			continue
		}
		d := domain.BalanceDiscrepancy{
			AccountID:       a.Account.AccountID,
			AccountCode:     a.Account.Code,
			StoredBalance:   a.Account.Balance,
			ReplayedBalance: replayed,
		}
		s.GetLogger(ctx).Error("Stored account balance differs from posted history",
			slog.String("account_id", d.AccountID),
			slog.String("account_code", d.AccountCode),
			slog.String("stored_balance", d.StoredBalance.String()),
			slog.String("replayed_balance", d.ReplayedBalance.String()))
		discrepancies = append(discrepancies, d)
	}

	s.LogInfo(ctx, "Balance reconciliation finished",
		slog.Int("accounts", len(activity)),
		slog.Int("discrepancies", len(discrepancies)))
	return discrepancies, nil
}
