package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/SscSPs/mbg_dapur_ledger/internal/apperrors"
	"github.com/SscSPs/mbg_dapur_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/mbg_dapur_ledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/mbg_dapur_ledger/internal/core/ports/services"
	"github.com/shopspring/decimal"
)

// reportingService implements the ReportingService interface
type reportingService struct {
	BaseService
	reportingRepo portsrepo.ReportingRepository
}

// ReportingServiceOption is a functional option for configuring the reporting service
type ReportingServiceOption func(*reportingService)

// NewReportingService creates a new reporting service with the provided options
func NewReportingService(repo portsrepo.ReportingRepository, options ...ReportingServiceOption) portssvc.ReportingService {
	svc := &reportingService{
		reportingRepo: repo,
	}

	// Apply all options
	for _, option := range options {
		option(svc)
	}

	return svc
}

// Ensure reportingService implements the ReportingService interface
var _ portssvc.ReportingService = (*reportingService)(nil)

// TrialBalance generates a trial balance report as of a specific date
func (s *reportingService) TrialBalance(ctx context.Context, asOf time.Time) (*domain.TrialBalance, error) {
	asOf = domain.DateOnly(asOf)
	activity, err := s.reportingRepo.ListAccountActivity(ctx, nil, asOf)
	if err != nil {
		s.LogError(ctx, err, "Failed to retrieve trial balance data", slog.String("asOf", asOf.Format(time.DateOnly)))
		return nil, fmt.Errorf("failed to retrieve trial balance data: %w", err)
	}

	tb := &domain.TrialBalance{
		AsOf:        asOf,
		Lines:       []domain.TrialBalanceLine{},
		TotalDebit:  decimal.Zero,
		TotalCredit: decimal.Zero,
	}
	for _, a := range activity {
		if !a.HasActivity() {
			continue
		}
		tb.Lines = append(tb.Lines, domain.TrialBalanceLine{
			AccountID:   a.Account.AccountID,
			AccountCode: a.Account.Code,
			AccountName: a.Account.Name,
			AccountType: a.Account.Type,
			Debit:       a.TotalDebit,
			Credit:      a.TotalCredit,
		})
		tb.TotalDebit = tb.TotalDebit.Add(a.TotalDebit)
		tb.TotalCredit = tb.TotalCredit.Add(a.TotalCredit)
	}
	tb.IsBalanced = tb.TotalDebit.Equal(tb.TotalCredit)

	if !tb.IsBalanced {
		tb.Warning = fmt.Sprintf("%s: total debit %s does not equal total credit %s",
			apperrors.CodeTrialBalanceImbalanced, tb.TotalDebit.String(), tb.TotalCredit.String())
		s.GetLogger(ctx).Error("Trial balance is not balanced",
			slog.String("asOf", asOf.Format(time.DateOnly)),
			slog.String("total_debit", tb.TotalDebit.String()),
			slog.String("total_credit", tb.TotalCredit.String()),
			slog.String("difference", tb.Difference().String()))
	}

	s.LogInfo(ctx, "Trial balance report generated successfully",
		slog.String("asOf", asOf.Format(time.DateOnly)),
		slog.Int("row_count", len(tb.Lines)))
	return tb, nil
}

func toAccountAmount(a domain.AccountActivity) domain.AccountAmount {
	return domain.AccountAmount{
		AccountID: a.Account.AccountID,
		Code:      a.Account.Code,
		Name:      a.Account.Name,
		Amount:    a.NetBalance(),
	}
}

// ProfitAndLoss generates a profit and loss report for a specific period
func (s *reportingService) ProfitAndLoss(ctx context.Context, from, to time.Time) (*domain.ProfitAndLossReport, error) {
	from, to = domain.DateOnly(from), domain.DateOnly(to)
	if from.After(to) {
		return nil, apperrors.Newf(apperrors.ErrValidation, apperrors.CodeInvalidDateRange,
			"from %s is after to %s", from.Format(time.DateOnly), to.Format(time.DateOnly))
	}

	activity, err := s.reportingRepo.ListAccountActivity(ctx, &from, to)
	if err != nil {
		s.LogError(ctx, err, "Failed to retrieve profit and loss data",
			slog.String("from", from.Format(time.DateOnly)),
			slog.String("to", to.Format(time.DateOnly)))
		return nil, fmt.Errorf("failed to retrieve profit and loss data: %w", err)
	}

	report := &domain.ProfitAndLossReport{
		From:          from,
		To:            to,
		Revenue:       []domain.AccountAmount{},
		COGS:          []domain.AccountAmount{},
		Expenses:      []domain.AccountAmount{},
		TotalRevenue:  decimal.Zero,
		TotalCOGS:     decimal.Zero,
		TotalExpenses: decimal.Zero,
	}
	for _, a := range activity {
		if !a.HasActivity() {
			continue
		}
		amount := toAccountAmount(a)
		switch a.Account.Type {
		case domain.Revenue:
			report.Revenue = append(report.Revenue, amount)
			report.TotalRevenue = report.TotalRevenue.Add(amount.Amount)
		case domain.COGS:
			report.COGS = append(report.COGS, amount)
			report.TotalCOGS = report.TotalCOGS.Add(amount.Amount)
		case domain.Expense:
			report.Expenses = append(report.Expenses, amount)
			report.TotalExpenses = report.TotalExpenses.Add(amount.Amount)
		}
	}
	report.GrossProfit = report.TotalRevenue.Sub(report.TotalCOGS)
	report.NetIncome = report.GrossProfit.Sub(report.TotalExpenses)

	s.LogInfo(ctx, "Profit and loss report generated successfully",
		slog.String("from", from.Format(time.DateOnly)),
		slog.String("to", to.Format(time.DateOnly)),
		slog.String("net_income", report.NetIncome.String()))
	return report, nil
}

// BalanceSheet generates a balance sheet report as of a specific date
func (s *reportingService) BalanceSheet(ctx context.Context, asOf time.Time) (*domain.BalanceSheetReport, error) {
	asOf = domain.DateOnly(asOf)
	activity, err := s.reportingRepo.ListAccountActivity(ctx, nil, asOf)
	if err != nil {
		s.LogError(ctx, err, "Failed to retrieve balance sheet data", slog.String("asOf", asOf.Format(time.DateOnly)))
		return nil, fmt.Errorf("failed to retrieve balance sheet data: %w", err)
	}

	report := &domain.BalanceSheetReport{
		AsOf:             asOf,
		Assets:           []domain.AccountAmount{},
		Liabilities:      []domain.AccountAmount{},
		Equity:           []domain.AccountAmount{},
		TotalAssets:      decimal.Zero,
		TotalLiabilities: decimal.Zero,
		TotalEquity:      decimal.Zero,
		CurrentEarnings:  decimal.Zero,
	}
	for _, a := range activity {
		if !a.HasActivity() {
			continue
		}
		amount := toAccountAmount(a)
		switch a.Account.Type {
		case domain.Asset:
			report.Assets = append(report.Assets, amount)
			report.TotalAssets = report.TotalAssets.Add(amount.Amount)
		case domain.Liability:
			report.Liabilities = append(report.Liabilities, amount)
			report.TotalLiabilities = report.TotalLiabilities.Add(amount.Amount)
		case domain.Equity:
			report.Equity = append(report.Equity, amount)
			report.TotalEquity = report.TotalEquity.Add(amount.Amount)
		case domain.Revenue:
			report.CurrentEarnings = report.CurrentEarnings.Add(amount.Amount)
		case domain.COGS, domain.Expense:
			report.CurrentEarnings = report.CurrentEarnings.Sub(amount.Amount)
		}
	}
	claims := report.TotalLiabilities.Add(report.TotalEquity).Add(report.CurrentEarnings)
	report.IsBalanced = report.TotalAssets.Equal(claims)
	if !report.IsBalanced {
		s.GetLogger(ctx).Error("Balance sheet does not balance",
			slog.String("asOf", asOf.Format(time.DateOnly)),
			slog.String("total_assets", report.TotalAssets.String()),
			slog.String("liabilities_and_equity", claims.String()))
	}

	s.LogInfo(ctx, "Balance sheet report generated successfully",
		slog.String("asOf", asOf.Format(time.DateOnly)),
		slog.Bool("is_balanced", report.IsBalanced))
	return report, nil
}
