package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// EntryType distinguishes user-entered entries from ones generated by other modules.
type EntryType string

const (
	EntryManual EntryType = "manual"
	EntryAuto   EntryType = "auto"
)

// EntryStatus is the lifecycle state of a journal entry.
type EntryStatus string

const (
	EntryDraft    EntryStatus = "draft"
	EntryPosted   EntryStatus = "posted"
	EntryReversed EntryStatus = "reversed"
)

// ReversalSource is the source module recorded on generated reversal entries.
const ReversalSource = "reversal"

// IsPosted reports whether the entry's lines count towards balances.
func (s EntryStatus) IsPosted() bool {
	return s == EntryPosted || s == EntryReversed
}

// JournalEntry is a double-entry transaction composed of two or more lines.
type JournalEntry struct {
	EntryID      string          `json:"entryID"`
	EntryNumber  string          `json:"entryNumber"`
	EntryDate    time.Time       `json:"entryDate"`
	Type         EntryType       `json:"type"`
	Status       EntryStatus     `json:"status"`
	Description  string          `json:"description"`
	Reference    string          `json:"reference,omitempty"`
	SourceModule string          `json:"sourceModule,omitempty"`
	SourceID     string          `json:"sourceID,omitempty"`
	Lines        []JournalLine   `json:"lines"`
	TotalDebit   decimal.Decimal `json:"totalDebit"`
	TotalCredit  decimal.Decimal `json:"totalCredit"`
	PostedAt     *time.Time      `json:"postedAt,omitempty"`
	PostedBy     *string         `json:"postedBy,omitempty"`
	ReversalOfID *string         `json:"reversalOfID,omitempty"`
	ReversedByID *string         `json:"reversedByID,omitempty"`
	AuditFields
}

// JournalLine is one debit or credit leg of an entry.
type JournalLine struct {
	LineID      string          `json:"lineID"`
	EntryID     string          `json:"entryID"`
	LineNo      int             `json:"lineNo"`
	AccountID   string          `json:"accountID"`
	AccountCode string          `json:"accountCode"`
	AccountName string          `json:"accountName"`
	Debit       decimal.Decimal `json:"debit"`
	Credit      decimal.Decimal `json:"credit"`
	Description string          `json:"description,omitempty"`
}

// Totals sums the debit and credit sides of lines.
func Totals(lines []JournalLine) (debit, credit decimal.Decimal) {
	debit, credit = decimal.Zero, decimal.Zero
	for _, l := range lines {
		debit = debit.Add(l.Debit)
		credit = credit.Add(l.Credit)
	}
	return debit, credit
}

// AccountIDs returns the distinct account ids referenced by lines, in line order.
func AccountIDs(lines []JournalLine) []string {
	seen := make(map[string]struct{}, len(lines))
	ids := make([]string, 0, len(lines))
	for _, l := range lines {
		if _, ok := seen[l.AccountID]; ok {
			continue
		}
		seen[l.AccountID] = struct{}{}
		ids = append(ids, l.AccountID)
	}
	return ids
}

// JournalFilter narrows ListEntries. Zero values match everything.
type JournalFilter struct {
	Status EntryStatus
	Type   EntryType
	From   *time.Time
	To     *time.Time
}
