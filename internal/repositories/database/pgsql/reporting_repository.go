package pgsql

import (
	"context"
	"fmt"
	"time"

	"github.com/SscSPs/mbg_dapur_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/mbg_dapur_ledger/internal/core/ports/repositories"
	"github.com/SscSPs/mbg_dapur_ledger/internal/models"
	"github.com/SscSPs/mbg_dapur_ledger/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// reportingRepository implements the ReportingRepository interface
type reportingRepository struct {
	BaseRepository
}

// newReportingRepository creates a new reporting repository
func newReportingRepository(db *pgxpool.Pool) *reportingRepository {
	return &reportingRepository{
		BaseRepository: BaseRepository{Pool: db},
	}
}

var _ portsrepo.ReportingRepository = (*reportingRepository)(nil)

// activityRow is an account row plus its aggregated posted activity.
type activityRow struct {
	models.Account
	TotalDebit  decimal.Decimal `db:"total_debit"`
	TotalCredit decimal.Decimal `db:"total_credit"`
}

// ListAccountActivity returns every account with its posted debit and credit
// totals dated within [from, to]. Accounts without activity get zero totals.
func (r *reportingRepository) ListAccountActivity(ctx context.Context, from *time.Time, to time.Time) ([]domain.AccountActivity, error) {
	query := `
		SELECT
			a.account_id, a.code, a.name, a.account_type, a.category, a.normal_balance, a.description,
			a.balance, a.is_active, a.is_system, a.created_at, a.created_by, a.last_updated_at, a.last_updated_by,
			COALESCE(act.total_debit, 0) AS total_debit,
			COALESCE(act.total_credit, 0) AS total_credit
		FROM accounts a
		LEFT JOIN (
			SELECT l.account_id, SUM(l.debit) AS total_debit, SUM(l.credit) AS total_credit
			FROM journal_lines l
			JOIN journal_entries e ON e.entry_id = l.entry_id
			WHERE e.status = ANY($1)
			  AND ($2::date IS NULL OR e.entry_date >= $2)
			  AND e.entry_date <= $3
			GROUP BY l.account_id
		) act ON act.account_id = a.account_id
		ORDER BY a.code;
	`
	rows, err := r.Pool.Query(ctx, query, postedStatuses, from, to)
	if err != nil {
		return nil, fmt.Errorf("error querying account activity: %w", err)
	}
	ms, err := pgx.CollectRows(rows, pgx.RowToStructByName[activityRow])
	if err != nil {
		return nil, fmt.Errorf("error scanning account activity: %w", err)
	}

	result := make([]domain.AccountActivity, len(ms))
	for i, m := range ms {
		result[i] = domain.AccountActivity{
			Account:     mapping.ToDomainAccount(m.Account),
			TotalDebit:  m.TotalDebit,
			TotalCredit: m.TotalCredit,
		}
	}
	return result, nil
}
