package services

import (
	portsrepo "github.com/SscSPs/mbg_dapur_ledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/mbg_dapur_ledger/internal/core/ports/services"
	"github.com/SscSPs/mbg_dapur_ledger/internal/platform/config"
)

// NewServiceContainer creates a new service container with properly initialized
// dependencies. events may be nil, in which case no analytics are sent.
func NewServiceContainer(cfg *config.Config, repos portsrepo.RepositoryProvider, events EventEnqueuer) *portssvc.ServiceContainer {
	container := &portssvc.ServiceContainer{}

	container.Account = NewAccountService(repos.AccountRepo)

	journalOpts := []JournalServiceOption{
		WithEntryNumberPrefixes(cfg.EntryNumberPrefix, cfg.AutoEntryNumberPrefix),
		WithJournalLocation(cfg.ReportLocation),
	}
	if events != nil {
		journalOpts = append(journalOpts, WithJournalEvents(events))
	}
	container.Journal = NewJournalService(repos.JournalRepo, repos.AccountRepo, journalOpts...)

	container.Ledger = NewLedgerService(container.Account, repos.JournalRepo, repos.ReportingRepo)
	container.Reporting = NewReportingService(repos.ReportingRepo)
	container.User = NewUserService(repos.UserRepo)
	container.Token = NewTokenService(cfg)

	return container
}
