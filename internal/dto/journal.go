package dto

import (
	"fmt"
	"time"

	"github.com/SscSPs/mbg_dapur_ledger/internal/core/domain"
	"github.com/shopspring/decimal"
)

// DateLayout is the wire format of calendar dates.
const DateLayout = "2006-01-02"

// ParseDate parses a YYYY-MM-DD date into midnight UTC.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD: %w", s, err)
	}
	return t, nil
}

// JournalLineRequest is one line of a create request. Exactly one of debit or
// credit must be non-zero.
type JournalLineRequest struct {
	AccountID   string          `json:"accountID" binding:"required"`
	Debit       decimal.Decimal `json:"debit"`
	Credit      decimal.Decimal `json:"credit"`
	Description string          `json:"description"`
}

// CreateJournalEntryRequest defines the data needed to create a manual entry.
type CreateJournalEntryRequest struct {
	EntryDate   string               `json:"entryDate" binding:"required,datetime=2006-01-02"`
	Description string               `json:"description" binding:"required,max=500"`
	Reference   string               `json:"reference" binding:"max=120"`
	Lines       []JournalLineRequest `json:"lines" binding:"required,dive"`
	Post        bool                 `json:"post"` // Post immediately in the same transaction
}

// CreateAutoEntryRequest defines an entry generated by another workflow module.
// Auto entries are posted on creation and cannot be deleted.
type CreateAutoEntryRequest struct {
	SourceModule string               `json:"sourceModule" binding:"required,max=60"`
	SourceID     string               `json:"sourceID" binding:"required,max=120"`
	EntryDate    string               `json:"entryDate" binding:"required,datetime=2006-01-02"`
	Description  string               `json:"description" binding:"required,max=500"`
	Reference    string               `json:"reference" binding:"max=120"`
	Lines        []JournalLineRequest `json:"lines" binding:"required,dive"`
}

// ReverseJournalEntryRequest optionally overrides the reversal's date and description.
type ReverseJournalEntryRequest struct {
	EntryDate   string `json:"entryDate" binding:"omitempty,datetime=2006-01-02"`
	Description string `json:"description" binding:"max=500"`
}

// ListJournalEntriesParams defines query parameters for listing entries.
type ListJournalEntriesParams struct {
	Status    domain.EntryStatus `form:"status" binding:"omitempty,oneof=draft posted reversed"`
	Type      domain.EntryType   `form:"type" binding:"omitempty,oneof=manual auto"`
	From      string             `form:"from" binding:"omitempty,datetime=2006-01-02"`
	To        string             `form:"to" binding:"omitempty,datetime=2006-01-02"`
	Limit     int                `form:"limit,default=20"`
	NextToken *string            `form:"nextToken"`
}

// JournalLineResponse defines the data returned for a journal line.
type JournalLineResponse struct {
	LineID      string          `json:"lineID"`
	LineNo      int             `json:"lineNo"`
	AccountID   string          `json:"accountID"`
	AccountCode string          `json:"accountCode"`
	AccountName string          `json:"accountName"`
	Debit       decimal.Decimal `json:"debit"`
	Credit      decimal.Decimal `json:"credit"`
	Description string          `json:"description,omitempty"`
}

// JournalEntryResponse defines the data returned for a journal entry.
type JournalEntryResponse struct {
	EntryID      string                `json:"entryID"`
	EntryNumber  string                `json:"entryNumber"`
	EntryDate    string                `json:"entryDate"`
	Type         domain.EntryType      `json:"type"`
	Status       domain.EntryStatus    `json:"status"`
	Description  string                `json:"description"`
	Reference    string                `json:"reference,omitempty"`
	SourceModule string                `json:"sourceModule,omitempty"`
	SourceID     string                `json:"sourceID,omitempty"`
	TotalDebit   decimal.Decimal       `json:"totalDebit"`
	TotalCredit  decimal.Decimal       `json:"totalCredit"`
	Lines        []JournalLineResponse `json:"lines"`
	PostedAt     *time.Time            `json:"postedAt,omitempty"`
	PostedBy     *string               `json:"postedBy,omitempty"`
	ReversalOfID *string               `json:"reversalOfID,omitempty"`
	ReversedByID *string               `json:"reversedByID,omitempty"`
	CreatedAt    time.Time             `json:"createdAt"`
	CreatedBy    string                `json:"createdBy"`
}

// ListJournalEntriesResponse wraps a page of entries.
type ListJournalEntriesResponse struct {
	Entries   []JournalEntryResponse `json:"entries"`
	NextToken *string                `json:"nextToken,omitempty"`
}

// ToJournalEntryResponse converts a domain.JournalEntry to its DTO.
func ToJournalEntryResponse(e *domain.JournalEntry) JournalEntryResponse {
	lines := make([]JournalLineResponse, len(e.Lines))
	for i, l := range e.Lines {
		lines[i] = JournalLineResponse{
			LineID:      l.LineID,
			LineNo:      l.LineNo,
			AccountID:   l.AccountID,
			AccountCode: l.AccountCode,
			AccountName: l.AccountName,
			Debit:       l.Debit,
			Credit:      l.Credit,
			Description: l.Description,
		}
	}
	return JournalEntryResponse{
		EntryID:      e.EntryID,
		EntryNumber:  e.EntryNumber,
		EntryDate:    e.EntryDate.Format(DateLayout),
		Type:         e.Type,
		Status:       e.Status,
		Description:  e.Description,
		Reference:    e.Reference,
		SourceModule: e.SourceModule,
		SourceID:     e.SourceID,
		TotalDebit:   e.TotalDebit,
		TotalCredit:  e.TotalCredit,
		Lines:        lines,
		PostedAt:     e.PostedAt,
		PostedBy:     e.PostedBy,
		ReversalOfID: e.ReversalOfID,
		ReversedByID: e.ReversedByID,
		CreatedAt:    e.CreatedAt,
		CreatedBy:    e.CreatedBy,
	}
}

// ToListJournalEntriesResponse converts a page of entries.
func ToListJournalEntriesResponse(entries []domain.JournalEntry, nextToken *string) ListJournalEntriesResponse {
	res := make([]JournalEntryResponse, len(entries))
	for i := range entries {
		res[i] = ToJournalEntryResponse(&entries[i])
	}
	return ListJournalEntriesResponse{Entries: res, NextToken: nextToken}
}
