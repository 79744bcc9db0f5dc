package repositories

import (
	"context"
	"time"

	"github.com/SscSPs/mbg_dapur_ledger/internal/core/domain"
	"github.com/shopspring/decimal"
)

// JournalReader defines read operations for journal data
type JournalReader interface {
	// FindEntryByID retrieves an entry with its lines ordered by line number.
	FindEntryByID(ctx context.Context, entryID string) (*domain.JournalEntry, error)

	// ListEntries retrieves entries newest first using token-based pagination.
	// It returns the entries (with lines), a token for the next page, and an error.
	ListEntries(ctx context.Context, filter domain.JournalFilter, limit int, nextToken *string) ([]domain.JournalEntry, *string, error)
}

// JournalWriter defines write operations for journal data.
// Implementations run each method atomically and re-check the entry state
// under lock, so concurrent callers cannot double-apply balance effects.
type JournalWriter interface {
	// SaveEntry assigns the next entry number for prefix and the entry's month,
	// then persists the entry and its lines. When entry.Status is posted, the
	// balance effects are applied in the same transaction.
	SaveEntry(ctx context.Context, entry domain.JournalEntry, numberPrefix string) (*domain.JournalEntry, error)

	// PostEntry moves a draft entry to posted and applies its balance effects.
	PostEntry(ctx context.Context, entryID string, postedBy string, postedAt time.Time) (*domain.JournalEntry, error)

	// SaveReversal persists reversal as a posted entry, applies its effects and
	// marks the original entry reversed.
	SaveReversal(ctx context.Context, originalID string, reversal domain.JournalEntry, numberPrefix string) (*domain.JournalEntry, error)

	// DeleteEntry removes a manual draft entry and its lines.
	DeleteEntry(ctx context.Context, entryID string) error
}

// LedgerReader defines read operations over posted lines of one account.
type LedgerReader interface {
	// ListPostingsByAccount returns posted lines touching the account in
	// (entry_date, entry_number, line_no) order. Nil bounds are open; set
	// bounds are inclusive.
	ListPostingsByAccount(ctx context.Context, accountID string, from, to *time.Time) ([]domain.Posting, error)

	// SumPostingsBefore totals the posted debit and credit of the account on
	// entries dated strictly before the given date.
	SumPostingsBefore(ctx context.Context, accountID string, before time.Time) (decimal.Decimal, decimal.Decimal, error)
}

// JournalRepositoryFacade combines all journal-related repository interfaces
// This is a facade for clients that need access to all operations
type JournalRepositoryFacade interface {
	JournalReader
	JournalWriter
	LedgerReader
}
