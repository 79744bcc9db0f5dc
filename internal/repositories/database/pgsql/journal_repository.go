package pgsql

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/SscSPs/mbg_dapur_ledger/internal/apperrors"
	"github.com/SscSPs/mbg_dapur_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/mbg_dapur_ledger/internal/core/ports/repositories"
	"github.com/SscSPs/mbg_dapur_ledger/internal/models"
	"github.com/SscSPs/mbg_dapur_ledger/internal/utils/accounting"
	"github.com/SscSPs/mbg_dapur_ledger/internal/utils/mapping"
	"github.com/SscSPs/mbg_dapur_ledger/internal/utils/pagination"
	"github.com/SscSPs/mbg_dapur_ledger/internal/utils/sequence"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

const entryColumns = `entry_id, entry_number, entry_date, entry_type, status, description, reference,
	source_module, source_id, total_debit, total_credit, posted_at, posted_by, reversal_of_id, reversed_by_id,
	created_at, created_by, last_updated_at, last_updated_by`

const lineSelect = `
	SELECT l.line_id, l.entry_id, l.line_no, l.account_id, a.code AS account_code, a.name AS account_name,
	       l.debit, l.credit, l.description
	FROM journal_lines l
	JOIN accounts a ON a.account_id = l.account_id`

// postedStatuses are the statuses whose lines count towards balances.
var postedStatuses = []string{string(domain.EntryPosted), string(domain.EntryReversed)}

type PgxJournalRepository struct {
	BaseRepository
	accountRepo portsrepo.AccountTransactionSupport
}

// newPgxJournalRepository creates a new repository for journal entries and lines.
func newPgxJournalRepository(pool *pgxpool.Pool, accountRepo portsrepo.AccountTransactionSupport) *PgxJournalRepository {
	return &PgxJournalRepository{
		BaseRepository: BaseRepository{Pool: pool},
		accountRepo:    accountRepo,
	}
}

var _ portsrepo.JournalRepositoryFacade = (*PgxJournalRepository)(nil)

// nextEntryNumber bumps the counter of prefix's period inside tx. The row lock
// taken by the upsert serializes concurrent writers, and a rollback returns
// the number, so sequences stay gapless.
func (r *PgxJournalRepository) nextEntryNumber(ctx context.Context, tx pgx.Tx, prefix string, date time.Time) (string, error) {
	query := `
		INSERT INTO entry_sequences (period_key, last_value)
		VALUES ($1, 1)
		ON CONFLICT (period_key) DO UPDATE SET last_value = entry_sequences.last_value + 1
		RETURNING last_value;
	`
	var seq int64
	if err := tx.QueryRow(ctx, query, sequence.PeriodKey(prefix, date)).Scan(&seq); err != nil {
		return "", fmt.Errorf("failed to allocate entry number for %s: %w", prefix, err)
	}
	return sequence.FormatEntryNumber(prefix, date, seq), nil
}

func (r *PgxJournalRepository) insertEntry(ctx context.Context, tx pgx.Tx, entry domain.JournalEntry) error {
	m := mapping.ToModelJournalEntry(entry)
	_, err := tx.Exec(ctx, `
		INSERT INTO journal_entries (`+entryColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19);`,
		m.EntryID, m.EntryNumber, m.EntryDate, m.EntryType, m.Status, m.Description, m.Reference,
		m.SourceModule, m.SourceID, m.TotalDebit, m.TotalCredit, m.PostedAt, m.PostedBy, m.ReversalOfID, m.ReversedByID,
		m.CreatedAt, m.CreatedBy, m.LastUpdatedAt, m.LastUpdatedBy,
	)
	if err != nil {
		if hasPgCode(err, pgUniqueViolation) {
			return fmt.Errorf("%w: journal entry %s already exists", apperrors.ErrDuplicate, m.EntryNumber)
		}
		return fmt.Errorf("failed to insert journal entry %s: %w", m.EntryID, err)
	}

	batch := &pgx.Batch{}
	for _, line := range entry.Lines {
		ml := mapping.ToModelJournalLine(line)
		batch.Queue(`
			INSERT INTO journal_lines (line_id, entry_id, line_no, account_id, debit, credit, description)
			VALUES ($1, $2, $3, $4, $5, $6, $7);`,
			ml.LineID, m.EntryID, ml.LineNo, ml.AccountID, ml.Debit, ml.Credit, ml.Description,
		)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		if hasPgCode(err, pgForeignKeyViolation) {
			return apperrors.New(apperrors.ErrValidation, apperrors.CodeAccountNotFound, "journal line references an unknown account")
		}
		return fmt.Errorf("failed to insert lines of journal entry %s: %w", m.EntryID, err)
	}
	return nil
}

// applyBalances locks the accounts of lines, re-checks they are active and
// applies the posting deltas.
func (r *PgxJournalRepository) applyBalances(ctx context.Context, tx pgx.Tx, lines []domain.JournalLine, userID string, now time.Time) error {
	debit, credit := domain.Totals(lines)
	if err := accounting.ValidateBalance(debit, credit); err != nil {
		return err
	}

	locked, err := r.accountRepo.FindAccountsByIDsForUpdate(ctx, tx, domain.AccountIDs(lines))
	if err != nil {
		return err
	}
	for _, line := range lines {
		if acc := locked[line.AccountID]; !acc.IsActive {
			return apperrors.Newf(apperrors.ErrValidation, apperrors.CodeAccountInactive, "account %s is inactive", acc.Code).
				WithDetail("accountID", acc.AccountID)
		}
	}

	changes, err := accounting.BalanceChanges(lines, locked)
	if err != nil {
		return err
	}
	return r.accountRepo.UpdateAccountBalancesInTx(ctx, tx, changes, userID, now)
}

// SaveEntry numbers and stores the entry, applying balances when it is posted.
func (r *PgxJournalRepository) SaveEntry(ctx context.Context, entry domain.JournalEntry, numberPrefix string) (*domain.JournalEntry, error) {
	err := r.inTx(ctx, func(tx pgx.Tx) error {
		number, err := r.nextEntryNumber(ctx, tx, numberPrefix, entry.EntryDate)
		if err != nil {
			return err
		}
		entry.EntryNumber = number

		if err := r.insertEntry(ctx, tx, entry); err != nil {
			return err
		}
		if entry.Status.IsPosted() {
			return r.applyBalances(ctx, tx, entry.Lines, entry.CreatedBy, entry.CreatedAt)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// lockEntry selects the entry header FOR UPDATE.
func (r *PgxJournalRepository) lockEntry(ctx context.Context, tx pgx.Tx, entryID string) (models.JournalEntry, error) {
	rows, err := tx.Query(ctx, `SELECT `+entryColumns+` FROM journal_entries WHERE entry_id = $1 FOR UPDATE;`, entryID)
	if err != nil {
		return models.JournalEntry{}, fmt.Errorf("failed to lock journal entry %s: %w", entryID, err)
	}
	m, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[models.JournalEntry])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.JournalEntry{}, apperrors.ErrNotFound
		}
		return models.JournalEntry{}, fmt.Errorf("failed to scan locked journal entry %s: %w", entryID, err)
	}
	return m, nil
}

func (r *PgxJournalRepository) listLines(ctx context.Context, q pgx.Tx, entryIDs []string) (map[string][]models.JournalLine, error) {
	query := lineSelect + ` WHERE l.entry_id = ANY($1) ORDER BY l.entry_id, l.line_no;`
	var (
		rows pgx.Rows
		err  error
	)
	if q != nil {
		rows, err = q.Query(ctx, query, entryIDs)
	} else {
		rows, err = r.Pool.Query(ctx, query, entryIDs)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query journal lines: %w", err)
	}
	lines, err := pgx.CollectRows(rows, pgx.RowToStructByName[models.JournalLine])
	if err != nil {
		return nil, fmt.Errorf("failed to scan journal lines: %w", err)
	}

	byEntry := make(map[string][]models.JournalLine, len(entryIDs))
	for _, l := range lines {
		byEntry[l.EntryID] = append(byEntry[l.EntryID], l)
	}
	return byEntry, nil
}

// PostEntry moves a draft entry to posted and applies its balance effects.
func (r *PgxJournalRepository) PostEntry(ctx context.Context, entryID string, postedBy string, postedAt time.Time) (*domain.JournalEntry, error) {
	var posted domain.JournalEntry
	err := r.inTx(ctx, func(tx pgx.Tx) error {
		m, err := r.lockEntry(ctx, tx, entryID)
		if err != nil {
			return err
		}
		if domain.EntryStatus(m.Status) != domain.EntryDraft {
			return apperrors.Newf(apperrors.ErrConflict, apperrors.CodeEntryAlreadyPosted,
				"journal entry %s is already %s", m.EntryNumber, m.Status).
				WithDetail("status", m.Status)
		}

		lines, err := r.listLines(ctx, tx, []string{entryID})
		if err != nil {
			return err
		}
		entry := mapping.ToDomainJournalEntry(m, lines[entryID])
		if err := r.applyBalances(ctx, tx, entry.Lines, postedBy, postedAt); err != nil {
			return err
		}

		_, err = tx.Exec(ctx, `
			UPDATE journal_entries
			SET status = $2, posted_at = $3, posted_by = $4, last_updated_at = $3, last_updated_by = $4
			WHERE entry_id = $1;`,
			entryID, string(domain.EntryPosted), postedAt, postedBy,
		)
		if err != nil {
			return fmt.Errorf("failed to mark journal entry %s posted: %w", entryID, err)
		}

		entry.Status = domain.EntryPosted
		entry.PostedAt = &postedAt
		entry.PostedBy = &postedBy
		entry.LastUpdatedAt = postedAt
		entry.LastUpdatedBy = postedBy
		posted = entry
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &posted, nil
}

// SaveReversal stores reversal as a posted entry and marks the original reversed.
func (r *PgxJournalRepository) SaveReversal(ctx context.Context, originalID string, reversal domain.JournalEntry, numberPrefix string) (*domain.JournalEntry, error) {
	err := r.inTx(ctx, func(tx pgx.Tx) error {
		original, err := r.lockEntry(ctx, tx, originalID)
		if err != nil {
			return err
		}
		switch domain.EntryStatus(original.Status) {
		case domain.EntryPosted:
		case domain.EntryReversed:
			return apperrors.Newf(apperrors.ErrConflict, apperrors.CodeEntryAlreadyReversed,
				"journal entry %s is already reversed", original.EntryNumber)
		default:
			return apperrors.Newf(apperrors.ErrConflict, apperrors.CodeEntryNotPosted,
				"journal entry %s is %s and cannot be reversed", original.EntryNumber, original.Status)
		}

		number, err := r.nextEntryNumber(ctx, tx, numberPrefix, reversal.EntryDate)
		if err != nil {
			return err
		}
		reversal.EntryNumber = number

		if err := r.insertEntry(ctx, tx, reversal); err != nil {
			return err
		}
		if err := r.applyBalances(ctx, tx, reversal.Lines, reversal.CreatedBy, reversal.CreatedAt); err != nil {
			return err
		}

		_, err = tx.Exec(ctx, `
			UPDATE journal_entries
			SET status = $2, reversed_by_id = $3, last_updated_at = $4, last_updated_by = $5
			WHERE entry_id = $1;`,
			originalID, string(domain.EntryReversed), reversal.EntryID, reversal.CreatedAt, reversal.CreatedBy,
		)
		if err != nil {
			return fmt.Errorf("failed to mark journal entry %s reversed: %w", originalID, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &reversal, nil
}

// DeleteEntry removes a manual draft entry and its lines.
func (r *PgxJournalRepository) DeleteEntry(ctx context.Context, entryID string) error {
	return r.inTx(ctx, func(tx pgx.Tx) error {
		m, err := r.lockEntry(ctx, tx, entryID)
		if err != nil {
			return err
		}
		if domain.EntryType(m.EntryType) == domain.EntryAuto {
			return apperrors.Newf(apperrors.ErrProtected, apperrors.CodeAutoEntryImmutable,
				"auto journal entry %s cannot be deleted", m.EntryNumber)
		}
		if domain.EntryStatus(m.Status) != domain.EntryDraft {
			return apperrors.Newf(apperrors.ErrConflict, apperrors.CodePostedEntryImmutable,
				"journal entry %s is %s, reverse it instead", m.EntryNumber, m.Status)
		}

		if _, err := tx.Exec(ctx, `DELETE FROM journal_lines WHERE entry_id = $1;`, entryID); err != nil {
			return fmt.Errorf("failed to delete lines of journal entry %s: %w", entryID, err)
		}
		if _, err := tx.Exec(ctx, `DELETE FROM journal_entries WHERE entry_id = $1;`, entryID); err != nil {
			return fmt.Errorf("failed to delete journal entry %s: %w", entryID, err)
		}
		return nil
	})
}

// FindEntryByID retrieves an entry with its lines.
func (r *PgxJournalRepository) FindEntryByID(ctx context.Context, entryID string) (*domain.JournalEntry, error) {
	rows, err := r.Pool.Query(ctx, `SELECT `+entryColumns+` FROM journal_entries WHERE entry_id = $1;`, entryID)
	if err != nil {
		return nil, fmt.Errorf("failed to find journal entry %s: %w", entryID, err)
	}
	m, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[models.JournalEntry])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan journal entry %s: %w", entryID, err)
	}

	lines, err := r.listLines(ctx, nil, []string{entryID})
	if err != nil {
		return nil, err
	}
	entry := mapping.ToDomainJournalEntry(m, lines[entryID])
	return &entry, nil
}

// ListEntries retrieves entries newest first using token-based pagination.
func (r *PgxJournalRepository) ListEntries(ctx context.Context, filter domain.JournalFilter, limit int, nextToken *string) ([]domain.JournalEntry, *string, error) {
	limit = pagination.ClampLimit(limit)

	var where []string
	var args []any
	arg := func(v any) string {
		args = append(args, v)
		return "$" + strconv.Itoa(len(args))
	}
	if filter.Status != "" {
		where = append(where, "status = "+arg(string(filter.Status)))
	}
	if filter.Type != "" {
		where = append(where, "entry_type = "+arg(string(filter.Type)))
	}
	if filter.From != nil {
		where = append(where, "entry_date >= "+arg(*filter.From))
	}
	if filter.To != nil {
		where = append(where, "entry_date <= "+arg(*filter.To))
	}
	if nextToken != nil && *nextToken != "" {
		lastDate, lastNumber, err := pagination.DecodeEntryToken(*nextToken)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: invalid nextToken: %v", apperrors.ErrValidation, err)
		}
		// Tuple comparison matches the ORDER BY below.
		n := arg(lastNumber)
		where = append(where, "(entry_date, length(entry_number), entry_number) < ("+arg(lastDate)+", length("+n+"::text), "+n+"::text)")
	}

	query := `SELECT ` + entryColumns + ` FROM journal_entries`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	// Fetch one extra row to learn whether another page exists.
	query += " ORDER BY entry_date DESC, length(entry_number) DESC, entry_number DESC LIMIT " + arg(limit+1) + ";"

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to query journal entries: %w", err)
	}
	ms, err := pgx.CollectRows(rows, pgx.RowToStructByName[models.JournalEntry])
	if err != nil {
		return nil, nil, fmt.Errorf("failed to scan journal entries: %w", err)
	}

	var token *string
	if len(ms) > limit {
		ms = ms[:limit]
		last := ms[limit-1]
		t := pagination.EncodeEntryToken(last.EntryDate, last.EntryNumber)
		token = &t
	}
	if len(ms) == 0 {
		return []domain.JournalEntry{}, nil, nil
	}

	ids := make([]string, len(ms))
	for i, m := range ms {
		ids[i] = m.EntryID
	}
	lines, err := r.listLines(ctx, nil, ids)
	if err != nil {
		return nil, nil, err
	}

	entries := make([]domain.JournalEntry, len(ms))
	for i, m := range ms {
		entries[i] = mapping.ToDomainJournalEntry(m, lines[m.EntryID])
	}
	return entries, token, nil
}

// ListPostingsByAccount returns posted lines touching the account in ledger order.
func (r *PgxJournalRepository) ListPostingsByAccount(ctx context.Context, accountID string, from, to *time.Time) ([]domain.Posting, error) {
	query := `
		SELECT e.entry_id, e.entry_number, e.entry_date, l.line_no,
		       COALESCE(NULLIF(l.description, ''), e.description), COALESCE(e.reference, ''),
		       l.debit, l.credit
		FROM journal_lines l
		JOIN journal_entries e ON e.entry_id = l.entry_id
		WHERE l.account_id = $1
		  AND e.status = ANY($2)
		  AND ($3::date IS NULL OR e.entry_date >= $3)
		  AND ($4::date IS NULL OR e.entry_date <= $4)
		ORDER BY e.entry_date, length(e.entry_number), e.entry_number, l.line_no;
	`
	rows, err := r.Pool.Query(ctx, query, accountID, postedStatuses, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to query postings for account %s: %w", accountID, err)
	}
	postings, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Posting, error) {
		var p domain.Posting
		err := row.Scan(&p.EntryID, &p.EntryNumber, &p.EntryDate, &p.LineNo, &p.Description, &p.Reference, &p.Debit, &p.Credit)
		p.EntryDate = domain.DateOnly(p.EntryDate)
		return p, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan postings for account %s: %w", accountID, err)
	}
	return postings, nil
}

// SumPostingsBefore totals posted activity of the account dated before the given date.
func (r *PgxJournalRepository) SumPostingsBefore(ctx context.Context, accountID string, before time.Time) (decimal.Decimal, decimal.Decimal, error) {
	query := `
		SELECT COALESCE(SUM(l.debit), 0), COALESCE(SUM(l.credit), 0)
		FROM journal_lines l
		JOIN journal_entries e ON e.entry_id = l.entry_id
		WHERE l.account_id = $1 AND e.status = ANY($2) AND e.entry_date < $3;
	`
	var debit, credit decimal.Decimal
	if err := r.Pool.QueryRow(ctx, query, accountID, postedStatuses, before).Scan(&debit, &credit); err != nil {
		return decimal.Zero, decimal.Zero, fmt.Errorf("failed to sum postings for account %s: %w", accountID, err)
	}
	return debit, credit, nil
}
