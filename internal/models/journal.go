package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// JournalEntry is a row of the journal_entries table.
type JournalEntry struct {
	EntryID      string          `db:"entry_id"`
	EntryNumber  string          `db:"entry_number"`
	EntryDate    time.Time       `db:"entry_date"`
	EntryType    string          `db:"entry_type"`
	Status       string          `db:"status"`
	Description  string          `db:"description"`
	Reference    *string         `db:"reference"`
	SourceModule *string         `db:"source_module"`
	SourceID     *string         `db:"source_id"`
	TotalDebit   decimal.Decimal `db:"total_debit"`
	TotalCredit  decimal.Decimal `db:"total_credit"`
	PostedAt     *time.Time      `db:"posted_at"`
	PostedBy     *string         `db:"posted_by"`
	ReversalOfID *string         `db:"reversal_of_id"`
	ReversedByID *string         `db:"reversed_by_id"`
	AuditFields
}

// JournalLine is a row of the journal_lines table joined with its account.
type JournalLine struct {
	LineID      string          `db:"line_id"`
	EntryID     string          `db:"entry_id"`
	LineNo      int             `db:"line_no"`
	AccountID   string          `db:"account_id"`
	AccountCode string          `db:"account_code"`
	AccountName string          `db:"account_name"`
	Debit       decimal.Decimal `db:"debit"`
	Credit      decimal.Decimal `db:"credit"`
	Description *string         `db:"description"`
}
