package pgsql

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/SscSPs/mbg_dapur_ledger/internal/apperrors"
	"github.com/SscSPs/mbg_dapur_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/mbg_dapur_ledger/internal/core/ports/repositories"
	"github.com/SscSPs/mbg_dapur_ledger/internal/models"
	"github.com/SscSPs/mbg_dapur_ledger/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

const accountColumns = `account_id, code, name, account_type, category, normal_balance, description,
	balance, is_active, is_system, created_at, created_by, last_updated_at, last_updated_by`

type PgxAccountRepository struct {
	BaseRepository
}

// newPgxAccountRepository creates a new repository for account data.
func newPgxAccountRepository(pool *pgxpool.Pool) *PgxAccountRepository {
	return &PgxAccountRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.AccountRepositoryWithTx = (*PgxAccountRepository)(nil)

func scanAccounts(rows pgx.Rows) ([]domain.Account, error) {
	ms, err := pgx.CollectRows(rows, pgx.RowToStructByName[models.Account])
	if err != nil {
		return nil, err
	}
	return mapping.ToDomainAccountSlice(ms), nil
}

func accountsByID(accounts []domain.Account) map[string]domain.Account {
	out := make(map[string]domain.Account, len(accounts))
	for _, a := range accounts {
		out[a.AccountID] = a
	}
	return out
}

// SaveAccount inserts a new account with a zero balance.
func (r *PgxAccountRepository) SaveAccount(ctx context.Context, account domain.Account) error {
	m := mapping.ToModelAccount(account)
	query := `
		INSERT INTO accounts (` + accountColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, 0, $8, $9, $10, $11, $12, $13);
	`
	_, err := r.Pool.Exec(ctx, query,
		m.AccountID, m.Code, m.Name, m.AccountType, m.Category, m.NormalBalance, m.Description,
		m.IsActive, m.IsSystem, m.CreatedAt, m.CreatedBy, m.LastUpdatedAt, m.LastUpdatedBy,
	)
	if err != nil {
		if hasPgCode(err, pgUniqueViolation) {
			return fmt.Errorf("%w: account code %s already exists", apperrors.ErrDuplicate, m.Code)
		}
		return fmt.Errorf("failed to save account %s: %w", m.AccountID, err)
	}
	return nil
}

// FindAccountByID retrieves an account by its ID.
func (r *PgxAccountRepository) FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error) {
	return r.findOne(ctx, "account_id", accountID)
}

// FindAccountByCode retrieves an account by its code.
func (r *PgxAccountRepository) FindAccountByCode(ctx context.Context, code string) (*domain.Account, error) {
	return r.findOne(ctx, "code", code)
}

func (r *PgxAccountRepository) findOne(ctx context.Context, column, value string) (*domain.Account, error) {
	rows, err := r.Pool.Query(ctx, `SELECT `+accountColumns+` FROM accounts WHERE `+column+` = $1;`, value)
	if err != nil {
		return nil, fmt.Errorf("failed to find account by %s %s: %w", column, value, err)
	}
	m, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[models.Account])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan account by %s %s: %w", column, value, err)
	}
	acc := mapping.ToDomainAccount(m)
	return &acc, nil
}

// FindAccountsByIDs retrieves multiple accounts by their IDs.
func (r *PgxAccountRepository) FindAccountsByIDs(ctx context.Context, accountIDs []string) (map[string]domain.Account, error) {
	if len(accountIDs) == 0 {
		return map[string]domain.Account{}, nil
	}
	rows, err := r.Pool.Query(ctx, `SELECT `+accountColumns+` FROM accounts WHERE account_id = ANY($1);`, accountIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to query accounts by IDs: %w", err)
	}
	accounts, err := scanAccounts(rows)
	if err != nil {
		return nil, fmt.Errorf("failed to scan account rows during batch fetch: %w", err)
	}
	// Missing ids are simply absent; the caller decides.
	return accountsByID(accounts), nil
}

// ListAccounts retrieves the chart of accounts ordered by code.
func (r *PgxAccountRepository) ListAccounts(ctx context.Context, filter domain.AccountFilter) ([]domain.Account, error) {
	var where []string
	var args []any
	if !filter.IncludeInactive {
		where = append(where, "is_active = TRUE")
	}
	if filter.Type != "" {
		args = append(args, string(filter.Type))
		where = append(where, "account_type = $"+strconv.Itoa(len(args)))
	}
	if s := strings.TrimSpace(filter.Search); s != "" {
		args = append(args, "%"+s+"%")
		n := strconv.Itoa(len(args))
		where = append(where, "(code ILIKE $"+n+" OR name ILIKE $"+n+")")
	}

	query := `SELECT ` + accountColumns + ` FROM accounts`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY code;"

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query accounts: %w", err)
	}
	accounts, err := scanAccounts(rows)
	if err != nil {
		return nil, fmt.Errorf("failed to scan account rows: %w", err)
	}
	return accounts, nil
}

// UpdateAccount updates an existing account's descriptive fields. The balance
// column is only written by journal postings. A type change only applies while
// the stored balance is zero, checked in the same statement as the write.
func (r *PgxAccountRepository) UpdateAccount(ctx context.Context, account domain.Account) error {
	m := mapping.ToModelAccount(account)
	query := `
		UPDATE accounts
		SET code = $2, name = $3, account_type = $4, category = $5, normal_balance = $6,
		    description = $7, is_active = $8, last_updated_at = $9, last_updated_by = $10
		WHERE account_id = $1
		  AND (account_type = $4 OR balance = 0);
	`
	cmdTag, err := r.Pool.Exec(ctx, query,
		m.AccountID, m.Code, m.Name, m.AccountType, m.Category, m.NormalBalance,
		m.Description, m.IsActive, m.LastUpdatedAt, m.LastUpdatedBy,
	)
	if err != nil {
		if hasPgCode(err, pgUniqueViolation) {
			return fmt.Errorf("%w: account code %s already exists", apperrors.ErrDuplicate, m.Code)
		}
		return fmt.Errorf("failed to execute update account %s: %w", m.AccountID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return r.updateRejection(ctx, m.AccountID)
	}
	return nil
}

// updateRejection tells a missing account apart from a type change blocked by
// a balance posted after the caller read the account.
func (r *PgxAccountRepository) updateRejection(ctx context.Context, accountID string) error {
	var balance decimal.Decimal
	err := r.Pool.QueryRow(ctx, `SELECT balance FROM accounts WHERE account_id = $1;`, accountID).Scan(&balance)
	if errors.Is(err, pgx.ErrNoRows) {
		return apperrors.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to re-read account %s: %w", accountID, err)
	}
	return apperrors.Newf(apperrors.ErrConflict, apperrors.CodeAccountHasBalance,
		"account %s has balance %s, its type cannot change", accountID, balance.String()).
		WithDetail("balance", balance)
}

// DeleteAccount removes an unused, non-system account with zero balance.
func (r *PgxAccountRepository) DeleteAccount(ctx context.Context, accountID string) error {
	query := `
		DELETE FROM accounts a
		WHERE a.account_id = $1
		  AND a.is_system = FALSE
		  AND a.balance = 0
		  AND NOT EXISTS (SELECT 1 FROM journal_lines l WHERE l.account_id = a.account_id);
	`
	cmdTag, err := r.Pool.Exec(ctx, query, accountID)
	if err != nil {
		if hasPgCode(err, pgForeignKeyViolation) {
			return accountInUse(accountID)
		}
		return fmt.Errorf("failed to delete account %s: %w", accountID, err)
	}
	if cmdTag.RowsAffected() > 0 {
		return nil
	}

	// Nothing deleted: find out which guard held.
	acc, err := r.FindAccountByID(ctx, accountID)
	if err != nil {
		return err
	}
	switch {
	case !acc.Balance.IsZero():
		return apperrors.Newf(apperrors.ErrConflict, apperrors.CodeAccountHasBalance,
			"account %s has balance %s and cannot be deleted", acc.Code, acc.Balance.String())
	case acc.IsSystem:
		return apperrors.Newf(apperrors.ErrProtected, apperrors.CodeSystemAccountProtected,
			"system account %s cannot be deleted", acc.Code)
	default:
		return accountInUse(accountID)
	}
}

func accountInUse(accountID string) error {
	return apperrors.Newf(apperrors.ErrConflict, apperrors.CodeAccountInUse,
		"account %s is referenced by journal lines", accountID).
		WithDetail("accountID", accountID)
}

// FindAccountsByIDsForUpdate retrieves multiple accounts by IDs and locks the
// rows for update. Rows are locked in account_id order so concurrent postings
// touching the same accounts cannot deadlock. Must be called within a transaction.
func (r *PgxAccountRepository) FindAccountsByIDsForUpdate(ctx context.Context, tx pgx.Tx, accountIDs []string) (map[string]domain.Account, error) {
	if len(accountIDs) == 0 {
		return map[string]domain.Account{}, nil
	}
	ids := slices.Clone(accountIDs)
	slices.Sort(ids)
	ids = slices.Compact(ids)

	query := `SELECT ` + accountColumns + ` FROM accounts WHERE account_id = ANY($1) ORDER BY account_id FOR UPDATE;`
	rows, err := tx.Query(ctx, query, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to query accounts by IDs for update: %w", err)
	}
	accounts, err := scanAccounts(rows)
	if err != nil {
		return nil, fmt.Errorf("failed to scan locked account rows: %w", err)
	}

	locked := accountsByID(accounts)
	for _, id := range ids {
		if _, ok := locked[id]; !ok {
			return nil, apperrors.Newf(apperrors.ErrValidation, apperrors.CodeAccountNotFound, "account %s not found", id).
				WithDetail("accountID", id)
		}
	}
	return locked, nil
}

// UpdateAccountBalancesInTx applies balance deltas for multiple accounts within a transaction.
func (r *PgxAccountRepository) UpdateAccountBalancesInTx(ctx context.Context, tx pgx.Tx, balanceChanges map[string]decimal.Decimal, userID string, now time.Time) error {
	query := `
		UPDATE accounts
		SET balance = balance + $2, last_updated_at = $3, last_updated_by = $4
		WHERE account_id = $1;
	`

	ids := make([]string, 0, len(balanceChanges))
	for id, delta := range balanceChanges {
		if !delta.IsZero() {
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		return nil
	}
	slices.Sort(ids)

	batch := &pgx.Batch{}
	for _, id := range ids {
		batch.Queue(query, id, balanceChanges[id], now, userID)
	}

	br := tx.SendBatch(ctx, batch)
	var batchErr error
	for _, id := range ids {
		ct, err := br.Exec()
		if err != nil {
			if batchErr == nil {
				batchErr = fmt.Errorf("failed to update balance for account %s: %w", id, err)
			}
		} else if ct.RowsAffected() == 0 && batchErr == nil {
			batchErr = fmt.Errorf("%w: account %s not found during balance update", apperrors.ErrNotFound, id)
		}
	}
	if err := br.Close(); err != nil && batchErr == nil {
		batchErr = fmt.Errorf("failed to close balance update batch: %w", err)
	}
	return batchErr
}
