package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/SscSPs/mbg_dapur_ledger/internal/apperrors"
	"github.com/SscSPs/mbg_dapur_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/mbg_dapur_ledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/mbg_dapur_ledger/internal/core/ports/services"
	"github.com/SscSPs/mbg_dapur_ledger/internal/dto"
	"github.com/SscSPs/mbg_dapur_ledger/internal/utils/accounting"
	"github.com/SscSPs/mbg_dapur_ledger/internal/utils/pagination"
	"github.com/SscSPs/mbg_dapur_ledger/internal/utils/sequence"
	"github.com/google/uuid"
)

// Analytics event names emitted by the journal service.
const (
	EventEntryPosted   = "journal_entry_posted"
	EventEntryReversed = "journal_entry_reversed"
)

// EventEnqueuer accepts product analytics events. PosthogClientWrapper
// satisfies it.
type EventEnqueuer interface {
	Enqueue(distinctID string, event string, properties map[string]any)
}

// journalService creates, posts, reverses and deletes journal entries.
type journalService struct {
	BaseService
	journalRepo  portsrepo.JournalRepositoryFacade
	accountRepo  portsrepo.AccountReader
	events       EventEnqueuer
	manualPrefix string
	autoPrefix   string
	location     *time.Location
}

// JournalServiceOption configures a journalService.
type JournalServiceOption func(*journalService)

// WithEntryNumberPrefixes sets the number prefixes of manual and auto entries.
// Empty values keep the defaults.
func WithEntryNumberPrefixes(manual, auto string) JournalServiceOption {
	return func(s *journalService) {
		if manual != "" {
			s.manualPrefix = manual
		}
		if auto != "" {
			s.autoPrefix = auto
		}
	}
}

// WithJournalEvents enables analytics events for posted and reversed entries.
func WithJournalEvents(events EventEnqueuer) JournalServiceOption {
	return func(s *journalService) {
		s.events = events
	}
}

// WithJournalLocation sets the zone whose calendar day a reversal is dated on
// when no date is given.
func WithJournalLocation(loc *time.Location) JournalServiceOption {
	return func(s *journalService) {
		if loc != nil {
			s.location = loc
		}
	}
}

// WithJournalClock overrides the clock used for audit fields and posting times.
func WithJournalClock(clock ClockFunc) JournalServiceOption {
	return func(s *journalService) {
		s.now = clock
	}
}

// NewJournalService creates a new JournalService.
func NewJournalService(journalRepo portsrepo.JournalRepositoryFacade, accountRepo portsrepo.AccountReader, options ...JournalServiceOption) portssvc.JournalSvcFacade {
	svc := &journalService{
		journalRepo:  journalRepo,
		accountRepo:  accountRepo,
		manualPrefix: sequence.DefaultManualPrefix,
		autoPrefix:   sequence.DefaultAutoPrefix,
		location:     time.UTC,
	}
	for _, opt := range options {
		opt(svc)
	}
	return svc
}

var _ portssvc.JournalSvcFacade = (*journalService)(nil)

func entryNotFound(entryID string) error {
	return apperrors.Newf(apperrors.ErrNotFound, apperrors.CodeEntryNotFound, "journal entry %s not found", entryID).
		WithDetail("entryID", entryID)
}

func parseEntryDate(value string) (time.Time, error) {
	date, err := dto.ParseDate(value)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
	}
	return date, nil
}

func toDomainLines(reqLines []dto.JournalLineRequest) []domain.JournalLine {
	lines := make([]domain.JournalLine, len(reqLines))
	for i, l := range reqLines {
		lines[i] = domain.JournalLine{
			LineNo:      i + 1,
			AccountID:   strings.TrimSpace(l.AccountID),
			Debit:       l.Debit,
			Credit:      l.Credit,
			Description: l.Description,
		}
	}
	return lines
}

// prepareLines validates lines in order: count, each line, referenced
// accounts, then the balance. It fills the denormalized account fields and
// returns the totals.
func (s *journalService) prepareLines(ctx context.Context, lines []domain.JournalLine) (*domain.JournalEntry, error) {
	if len(lines) < accounting.MinLines {
		return nil, apperrors.Newf(apperrors.ErrValidation, apperrors.CodeTooFewLines,
			"journal entry must have at least %d lines, got %d", accounting.MinLines, len(lines))
	}
	for _, line := range lines {
		if err := accounting.ValidateLine(line); err != nil {
			return nil, err
		}
	}
	if err := s.checkAccounts(ctx, lines); err != nil {
		return nil, err
	}
	debit, credit := domain.Totals(lines)
	if err := accounting.ValidateBalance(debit, credit); err != nil {
		return nil, err
	}
	return &domain.JournalEntry{Lines: lines, TotalDebit: debit, TotalCredit: credit}, nil
}

// checkAccounts requires every referenced account to exist and be active, and
// copies its code and name onto the lines.
func (s *journalService) checkAccounts(ctx context.Context, lines []domain.JournalLine) error {
	accounts, err := s.accountRepo.FindAccountsByIDs(ctx, domain.AccountIDs(lines))
	if err != nil {
		s.LogError(ctx, err, "Failed to fetch accounts for journal lines")
		return err
	}
	for i := range lines {
		acc, ok := accounts[lines[i].AccountID]
		if !ok {
			return apperrors.Newf(apperrors.ErrValidation, apperrors.CodeAccountNotFound,
				"line %d references unknown account %s", lines[i].LineNo, lines[i].AccountID).
				WithDetail("lineNo", lines[i].LineNo).
				WithDetail("accountID", lines[i].AccountID)
		}
		if !acc.IsActive {
			return apperrors.Newf(apperrors.ErrValidation, apperrors.CodeAccountInactive,
				"line %d references inactive account %s", lines[i].LineNo, acc.Code).
				WithDetail("lineNo", lines[i].LineNo).
				WithDetail("accountID", acc.AccountID)
		}
		lines[i].AccountCode = acc.Code
		lines[i].AccountName = acc.Name
	}
	return nil
}

func (s *journalService) newEntry(entryType domain.EntryType, status domain.EntryStatus, date time.Time, userID string, prepared *domain.JournalEntry) domain.JournalEntry {
	now := s.Now()
	entry := *prepared
	entry.EntryID = uuid.NewString()
	entry.EntryDate = domain.DateOnly(date)
	entry.Type = entryType
	entry.Status = status
	entry.AuditFields = domain.AuditFields{
		CreatedAt:     now,
		CreatedBy:     userID,
		LastUpdatedAt: now,
		LastUpdatedBy: userID,
	}
	if status.IsPosted() {
		postedBy := userID
		entry.PostedAt = &now
		entry.PostedBy = &postedBy
	}
	for i := range entry.Lines {
		entry.Lines[i].LineID = uuid.NewString()
		entry.Lines[i].EntryID = entry.EntryID
	}
	return entry
}

func (s *journalService) CreateEntry(ctx context.Context, req dto.CreateJournalEntryRequest, userID string) (*domain.JournalEntry, error) {
	date, err := parseEntryDate(req.EntryDate)
	if err != nil {
		return nil, err
	}
	prepared, err := s.prepareLines(ctx, toDomainLines(req.Lines))
	if err != nil {
		return nil, err
	}

	status := domain.EntryDraft
	if req.Post {
		status = domain.EntryPosted
	}
	entry := s.newEntry(domain.EntryManual, status, date, userID, prepared)
	entry.Description = strings.TrimSpace(req.Description)
	entry.Reference = strings.TrimSpace(req.Reference)

	saved, err := s.journalRepo.SaveEntry(ctx, entry, s.manualPrefix)
	if err != nil {
		s.LogError(ctx, err, "Failed to save journal entry", slog.String("entry_id", entry.EntryID))
		return nil, err
	}

	s.LogInfo(ctx, "Journal entry created",
		slog.String("entry_id", saved.EntryID),
		slog.String("entry_number", saved.EntryNumber),
		slog.String("status", string(saved.Status)))
	if saved.Status == domain.EntryPosted {
		s.emit(userID, EventEntryPosted, saved)
	}
	return saved, nil
}

func (s *journalService) RecordAutoEntry(ctx context.Context, req dto.CreateAutoEntryRequest, userID string) (*domain.JournalEntry, error) {
	sourceModule := strings.TrimSpace(req.SourceModule)
	if sourceModule == "" {
		return nil, fmt.Errorf("%w: sourceModule is required for auto entries", apperrors.ErrValidation)
	}
	date, err := parseEntryDate(req.EntryDate)
	if err != nil {
		return nil, err
	}
	prepared, err := s.prepareLines(ctx, toDomainLines(req.Lines))
	if err != nil {
		return nil, err
	}

	entry := s.newEntry(domain.EntryAuto, domain.EntryPosted, date, userID, prepared)
	entry.Description = strings.TrimSpace(req.Description)
	entry.Reference = strings.TrimSpace(req.Reference)
	entry.SourceModule = sourceModule
	entry.SourceID = strings.TrimSpace(req.SourceID)

	saved, err := s.journalRepo.SaveEntry(ctx, entry, s.autoPrefix)
	if err != nil {
		s.LogError(ctx, err, "Failed to save auto journal entry",
			slog.String("source_module", sourceModule), slog.String("source_id", entry.SourceID))
		return nil, err
	}

	s.LogInfo(ctx, "Auto journal entry recorded",
		slog.String("entry_id", saved.EntryID),
		slog.String("entry_number", saved.EntryNumber),
		slog.String("source_module", sourceModule))
	s.emit(userID, EventEntryPosted, saved)
	return saved, nil
}

func (s *journalService) GetEntryByID(ctx context.Context, entryID string) (*domain.JournalEntry, error) {
	entry, err := s.journalRepo.FindEntryByID(ctx, entryID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, entryNotFound(entryID)
		}
		s.LogError(ctx, err, "Failed to find journal entry", slog.String("entry_id", entryID))
		return nil, err
	}
	return entry, nil
}

func (s *journalService) ListEntries(ctx context.Context, params dto.ListJournalEntriesParams) (*dto.ListJournalEntriesResponse, error) {
	filter := domain.JournalFilter{Status: params.Status, Type: params.Type}
	if params.From != "" {
		from, err := parseEntryDate(params.From)
		if err != nil {
			return nil, err
		}
		filter.From = &from
	}
	if params.To != "" {
		to, err := parseEntryDate(params.To)
		if err != nil {
			return nil, err
		}
		filter.To = &to
	}
	if filter.From != nil && filter.To != nil && filter.From.After(*filter.To) {
		return nil, apperrors.New(apperrors.ErrValidation, apperrors.CodeInvalidDateRange, "from must not be after to")
	}

	nextToken := params.NextToken
	if nextToken != nil && *nextToken == "" {
		nextToken = nil
	}
	if nextToken != nil {
		if _, _, err := pagination.DecodeEntryToken(*nextToken); err != nil {
			return nil, fmt.Errorf("%w: invalid nextToken: %v", apperrors.ErrValidation, err)
		}
	}

	limit := pagination.ClampLimit(params.Limit)
	entries, token, err := s.journalRepo.ListEntries(ctx, filter, limit, nextToken)
	if err != nil {
		s.LogError(ctx, err, "Failed to list journal entries")
		return nil, err
	}
	resp := dto.ToListJournalEntriesResponse(entries, token)
	return &resp, nil
}

func (s *journalService) PostEntry(ctx context.Context, entryID string, userID string) (*domain.JournalEntry, error) {
	entry, err := s.GetEntryByID(ctx, entryID)
	if err != nil {
		return nil, err
	}
	if entry.Status != domain.EntryDraft {
		return nil, apperrors.Newf(apperrors.ErrConflict, apperrors.CodeEntryAlreadyPosted,
			"journal entry %s is already %s", entry.EntryNumber, entry.Status).
			WithDetail("status", entry.Status)
	}
	if err := s.checkAccounts(ctx, entry.Lines); err != nil {
		return nil, err
	}

	posted, err := s.journalRepo.PostEntry(ctx, entryID, userID, s.Now())
	if err != nil {
		if apperrors.CodeOf(err) == "" {
			s.LogError(ctx, err, "Failed to post journal entry", slog.String("entry_id", entryID))
		}
		return nil, err
	}

	s.LogInfo(ctx, "Journal entry posted",
		slog.String("entry_id", posted.EntryID),
		slog.String("entry_number", posted.EntryNumber))
	s.emit(userID, EventEntryPosted, posted)
	return posted, nil
}

func (s *journalService) DeleteEntry(ctx context.Context, entryID string, userID string) error {
	entry, err := s.GetEntryByID(ctx, entryID)
	if err != nil {
		return err
	}
	if entry.Type == domain.EntryAuto {
		return apperrors.Newf(apperrors.ErrProtected, apperrors.CodeAutoEntryImmutable,
			"auto journal entry %s cannot be deleted", entry.EntryNumber).
			WithDetail("sourceModule", entry.SourceModule)
	}
	if entry.Status != domain.EntryDraft {
		return apperrors.Newf(apperrors.ErrConflict, apperrors.CodePostedEntryImmutable,
			"journal entry %s is %s, reverse it instead", entry.EntryNumber, entry.Status).
			WithDetail("status", entry.Status)
	}

	if err := s.journalRepo.DeleteEntry(ctx, entryID); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return entryNotFound(entryID)
		}
		if apperrors.CodeOf(err) == "" {
			s.LogError(ctx, err, "Failed to delete journal entry", slog.String("entry_id", entryID))
		}
		return err
	}

	s.LogInfo(ctx, "Journal entry deleted",
		slog.String("entry_id", entryID),
		slog.String("entry_number", entry.EntryNumber),
		slog.String("deleted_by", userID))
	return nil
}

func (s *journalService) ReverseEntry(ctx context.Context, entryID string, req dto.ReverseJournalEntryRequest, userID string) (*domain.JournalEntry, error) {
	original, err := s.GetEntryByID(ctx, entryID)
	if err != nil {
		return nil, err
	}
	switch original.Status {
	case domain.EntryReversed:
		return nil, apperrors.Newf(apperrors.ErrConflict, apperrors.CodeEntryAlreadyReversed,
			"journal entry %s is already reversed", original.EntryNumber).
			WithDetail("reversedByID", original.ReversedByID)
	case domain.EntryDraft:
		return nil, apperrors.Newf(apperrors.ErrConflict, apperrors.CodeEntryNotPosted,
			"journal entry %s is a draft and cannot be reversed", original.EntryNumber)
	}

	date := domain.LocalDate(s.Now(), s.location)
	if req.EntryDate != "" {
		if date, err = parseEntryDate(req.EntryDate); err != nil {
			return nil, err
		}
	}
	description := strings.TrimSpace(req.Description)
	if description == "" {
		description = "Reversal of " + original.EntryNumber
	}

	lines := accounting.ReverseLines(original.Lines)
	debit, credit := domain.Totals(lines)
	reversal := s.newEntry(domain.EntryAuto, domain.EntryPosted, date, userID,
		&domain.JournalEntry{Lines: lines, TotalDebit: debit, TotalCredit: credit})
	originalID := original.EntryID
	reversal.Description = description
	reversal.Reference = original.EntryNumber
	reversal.SourceModule = domain.ReversalSource
	reversal.SourceID = originalID
	reversal.ReversalOfID = &originalID

	saved, err := s.journalRepo.SaveReversal(ctx, originalID, reversal, s.autoPrefix)
	if err != nil {
		if apperrors.CodeOf(err) == "" {
			s.LogError(ctx, err, "Failed to save reversal entry", slog.String("entry_id", originalID))
		}
		return nil, err
	}

	s.LogInfo(ctx, "Journal entry reversed",
		slog.String("entry_id", originalID),
		slog.String("reversal_entry_id", saved.EntryID),
		slog.String("reversal_entry_number", saved.EntryNumber))
	s.emit(userID, EventEntryReversed, saved)
	return saved, nil
}

func (s *journalService) emit(userID, event string, entry *domain.JournalEntry) {
	if s.events == nil {
		return
	}
	s.events.Enqueue(userID, event, map[string]any{
		"entry_id":      entry.EntryID,
		"entry_number":  entry.EntryNumber,
		"entry_type":    string(entry.Type),
		"source_module": entry.SourceModule,
		"total":         entry.TotalDebit.String(),
	})
}
