package services

import (
	"context"
	"time"

	"github.com/SscSPs/mbg_dapur_ledger/internal/core/domain"
)

// LedgerReaderSvc projects posted journal lines into per-account ledgers.
type LedgerReaderSvc interface {
	// GetByAccount returns the full ledger of an account from inception.
	GetByAccount(ctx context.Context, accountID string) (*domain.AccountLedger, error)

	// GetByDateRange returns the rows dated within [start, end]; the running
	// balance carries the history before start.
	GetByDateRange(ctx context.Context, accountID string, start, end time.Time) (*domain.AccountLedger, error)
}

// LedgerAuditSvc verifies stored balances against the posted history.
type LedgerAuditSvc interface {
	// ReconcileBalances replays all posted lines and reports accounts whose
	// stored balance differs.
	ReconcileBalances(ctx context.Context) ([]domain.BalanceDiscrepancy, error)
}

// LedgerSvcFacade combines all ledger-related service interfaces
type LedgerSvcFacade interface {
	LedgerReaderSvc
	LedgerAuditSvc
}
