package repositories

import (
	"context"
	"time"

	"github.com/SscSPs/mbg_dapur_ledger/internal/core/domain"
)

// ReportingRepository defines operations for retrieving financial report data
type ReportingRepository interface {
	// ListAccountActivity returns every account, ordered by code, with the
	// debit and credit totals of its posted lines dated within [from, to].
	// A nil from means from inception.
	ListAccountActivity(ctx context.Context, from *time.Time, to time.Time) ([]domain.AccountActivity, error)
}
