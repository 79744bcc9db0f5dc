package services

import (
	"context"

	"github.com/SscSPs/mbg_dapur_ledger/internal/core/domain"
	"github.com/SscSPs/mbg_dapur_ledger/internal/dto"
)

// JournalReaderSvc defines read operations for journal data
type JournalReaderSvc interface {
	// GetEntryByID retrieves an entry with its lines.
	GetEntryByID(ctx context.Context, entryID string) (*domain.JournalEntry, error)

	// ListEntries retrieves a page of entries, newest first.
	ListEntries(ctx context.Context, params dto.ListJournalEntriesParams) (*dto.ListJournalEntriesResponse, error)
}

// JournalWriterSvc defines write operations for journal data
type JournalWriterSvc interface {
	// CreateEntry validates and stores a manual entry as draft, or posted when requested.
	CreateEntry(ctx context.Context, req dto.CreateJournalEntryRequest, userID string) (*domain.JournalEntry, error)

	// RecordAutoEntry stores and posts an entry generated by another module.
	RecordAutoEntry(ctx context.Context, req dto.CreateAutoEntryRequest, userID string) (*domain.JournalEntry, error)

	// PostEntry applies a draft entry to account balances.
	PostEntry(ctx context.Context, entryID string, userID string) (*domain.JournalEntry, error)

	// DeleteEntry removes a manual draft entry.
	DeleteEntry(ctx context.Context, entryID string, userID string) error

	// ReverseEntry posts an offsetting entry and marks the original reversed.
	ReverseEntry(ctx context.Context, entryID string, req dto.ReverseJournalEntryRequest, userID string) (*domain.JournalEntry, error)
}

// JournalSvcFacade combines all journal-related service interfaces
type JournalSvcFacade interface {
	JournalReaderSvc
	JournalWriterSvc
}
