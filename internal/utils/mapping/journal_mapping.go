package mapping

import (
	"github.com/SscSPs/mbg_dapur_ledger/internal/core/domain"
	"github.com/SscSPs/mbg_dapur_ledger/internal/models"
)

// ToModelJournalEntry converts a domain JournalEntry header to a model JournalEntry
func ToModelJournalEntry(d domain.JournalEntry) models.JournalEntry {
	return models.JournalEntry{
		EntryID:      d.EntryID,
		EntryNumber:  d.EntryNumber,
		EntryDate:    d.EntryDate,
		EntryType:    string(d.Type),
		Status:       string(d.Status),
		Description:  d.Description,
		Reference:    NullableString(d.Reference),
		SourceModule: NullableString(d.SourceModule),
		SourceID:     NullableString(d.SourceID),
		TotalDebit:   d.TotalDebit,
		TotalCredit:  d.TotalCredit,
		PostedAt:     d.PostedAt,
		PostedBy:     d.PostedBy,
		ReversalOfID: d.ReversalOfID,
		ReversedByID: d.ReversedByID,
		AuditFields:  ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainJournalEntry converts a model JournalEntry and its lines to a domain JournalEntry
func ToDomainJournalEntry(m models.JournalEntry, lines []models.JournalLine) domain.JournalEntry {
	return domain.JournalEntry{
		EntryID:      m.EntryID,
		EntryNumber:  m.EntryNumber,
		EntryDate:    domain.DateOnly(m.EntryDate),
		Type:         domain.EntryType(m.EntryType),
		Status:       domain.EntryStatus(m.Status),
		Description:  m.Description,
		Reference:    StringValue(m.Reference),
		SourceModule: StringValue(m.SourceModule),
		SourceID:     StringValue(m.SourceID),
		Lines:        ToDomainJournalLineSlice(lines),
		TotalDebit:   m.TotalDebit,
		TotalCredit:  m.TotalCredit,
		PostedAt:     m.PostedAt,
		PostedBy:     m.PostedBy,
		ReversalOfID: m.ReversalOfID,
		ReversedByID: m.ReversedByID,
		AuditFields:  ToDomainAuditFields(m.AuditFields),
	}
}

// ToModelJournalLine converts a domain JournalLine to a model JournalLine
func ToModelJournalLine(d domain.JournalLine) models.JournalLine {
	return models.JournalLine{
		LineID:      d.LineID,
		EntryID:     d.EntryID,
		LineNo:      d.LineNo,
		AccountID:   d.AccountID,
		AccountCode: d.AccountCode,
		AccountName: d.AccountName,
		Debit:       d.Debit,
		Credit:      d.Credit,
		Description: NullableString(d.Description),
	}
}

// ToDomainJournalLine converts a model JournalLine to a domain JournalLine
func ToDomainJournalLine(m models.JournalLine) domain.JournalLine {
	return domain.JournalLine{
		LineID:      m.LineID,
		EntryID:     m.EntryID,
		LineNo:      m.LineNo,
		AccountID:   m.AccountID,
		AccountCode: m.AccountCode,
		AccountName: m.AccountName,
		Debit:       m.Debit,
		Credit:      m.Credit,
		Description: StringValue(m.Description),
	}
}

// ToDomainJournalLineSlice converts a slice of model JournalLines to domain JournalLines
func ToDomainJournalLineSlice(ms []models.JournalLine) []domain.JournalLine {
	ds := make([]domain.JournalLine, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainJournalLine(m)
	}
	return ds
}
