package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/SscSPs/mbg_dapur_ledger/internal/apperrors"
	"github.com/SscSPs/mbg_dapur_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/mbg_dapur_ledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/mbg_dapur_ledger/internal/core/ports/services"
	"github.com/SscSPs/mbg_dapur_ledger/internal/dto"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// accountService implements the chart of accounts registry.
type accountService struct {
	BaseService
	accountRepo portsrepo.AccountRepositoryFacade
}

// AccountServiceOption configures an accountService.
type AccountServiceOption func(*accountService)

// WithAccountClock overrides the clock used for audit fields.
func WithAccountClock(clock ClockFunc) AccountServiceOption {
	return func(s *accountService) {
		s.now = clock
	}
}

// NewAccountService creates a new account service.
func NewAccountService(repo portsrepo.AccountRepositoryFacade, options ...AccountServiceOption) portssvc.AccountSvcFacade {
	svc := &accountService{accountRepo: repo}
	for _, opt := range options {
		opt(svc)
	}
	return svc
}

var _ portssvc.AccountSvcFacade = (*accountService)(nil)

// resolveNormalBalance derives the normal side from accType, rejecting a
// requested side that contradicts it.
func resolveNormalBalance(accType domain.AccountType, requested domain.NormalBalance) (domain.NormalBalance, error) {
	derived := accType.NormalBalance()
	if requested != "" && requested != derived {
		return "", apperrors.Newf(apperrors.ErrValidation, apperrors.CodeNormalBalanceMismatch,
			"account type %s has normal balance %s, got %s", accType, derived, requested).
			WithDetail("expected", derived)
	}
	return derived, nil
}

func validateTypeAndCategory(accType domain.AccountType, category domain.AccountCategory) error {
	if !accType.IsValid() {
		return apperrors.Newf(apperrors.ErrValidation, apperrors.CodeInvalidAccountType, "unknown account type %q", accType)
	}
	if !accType.Allows(category) {
		return apperrors.Newf(apperrors.ErrValidation, apperrors.CodeInvalidCategoryForType,
			"category %q is not allowed for account type %s", category, accType).
			WithDetail("allowed", accType.Categories())
	}
	return nil
}

func duplicateCode(code string) error {
	return apperrors.Newf(apperrors.ErrConflict, apperrors.CodeDuplicateCode, "account code %s is already in use", code).
		WithDetail("code", code)
}

func accountNotFound(accountID string) error {
	return apperrors.Newf(apperrors.ErrNotFound, apperrors.CodeAccountNotFound, "account %s not found", accountID).
		WithDetail("accountID", accountID)
}

// ensureCodeAvailable fails with DUPLICATE_CODE when code belongs to an account
// other than selfID.
func (s *accountService) ensureCodeAvailable(ctx context.Context, code, selfID string) error {
	existing, err := s.accountRepo.FindAccountByCode(ctx, code)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil
		}
		return err
	}
	if existing.AccountID != selfID {
		return duplicateCode(code)
	}
	return nil
}

func (s *accountService) CreateAccount(ctx context.Context, req dto.CreateAccountRequest, userID string) (*domain.Account, error) {
	code := strings.TrimSpace(req.Code)
	if err := validateTypeAndCategory(req.Type, req.Category); err != nil {
		return nil, err
	}
	normal, err := resolveNormalBalance(req.Type, req.NormalBalance)
	if err != nil {
		return nil, err
	}
	if err := s.ensureCodeAvailable(ctx, code, ""); err != nil {
		return nil, err
	}

	now := s.Now()
	account := domain.Account{
		AccountID:     uuid.NewString(),
		Code:          code,
		Name:          strings.TrimSpace(req.Name),
		Type:          req.Type,
		Category:      req.Category,
		NormalBalance: normal,
		Description:   req.Description,
		Balance:       decimal.Zero,
		IsActive:      true,
		IsSystem:      false,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     userID,
			LastUpdatedAt: now,
			LastUpdatedBy: userID,
		},
	}

	if err := s.accountRepo.SaveAccount(ctx, account); err != nil {
		if errors.Is(err, apperrors.ErrDuplicate) {
			return nil, duplicateCode(code)
		}
		s.LogError(ctx, err, "Failed to save account in repository", slog.String("account_code", code))
		return nil, err
	}

	s.LogInfo(ctx, "Account created", slog.String("account_id", account.AccountID), slog.String("account_code", code))
	return &account, nil
}

func (s *accountService) GetAccountByID(ctx context.Context, accountID string) (*domain.Account, error) {
	account, err := s.accountRepo.FindAccountByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, accountNotFound(accountID)
		}
		s.LogError(ctx, err, "Failed to find account by ID in repository", slog.String("account_id", accountID))
		return nil, err
	}
	return account, nil
}

func (s *accountService) ListAccounts(ctx context.Context, params dto.ListAccountsParams) ([]domain.Account, error) {
	if params.Type != "" && !params.Type.IsValid() {
		return nil, apperrors.Newf(apperrors.ErrValidation, apperrors.CodeInvalidAccountType, "unknown account type %q", params.Type)
	}
	accounts, err := s.accountRepo.ListAccounts(ctx, domain.AccountFilter{
		Type:            params.Type,
		Search:          strings.TrimSpace(params.Search),
		IncludeInactive: params.IncludeInactive,
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to list accounts from repository")
		return nil, err
	}
	if accounts == nil {
		return []domain.Account{}, nil
	}
	s.LogDebug(ctx, "Accounts listed", slog.Int("count", len(accounts)))
	return accounts, nil
}

func (s *accountService) UpdateAccount(ctx context.Context, accountID string, req dto.UpdateAccountRequest, userID string) (*domain.Account, error) {
	account, err := s.GetAccountByID(ctx, accountID)
	if err != nil {
		return nil, err
	}
	updated := *account

	if req.Code != nil {
		updated.Code = strings.TrimSpace(*req.Code)
	}
	if req.Name != nil {
		updated.Name = strings.TrimSpace(*req.Name)
	}
	if req.Type != nil {
		updated.Type = *req.Type
	}
	if req.Category != nil {
		updated.Category = *req.Category
	}
	if req.Description != nil {
		updated.Description = *req.Description
	}
	if req.IsActive != nil {
		updated.IsActive = *req.IsActive
	}

	if account.IsSystem {
		codeChanged := updated.Code != account.Code
		typeChanged := updated.Type != account.Type
		normalChanged := req.NormalBalance != nil && *req.NormalBalance != account.NormalBalance
		if codeChanged || typeChanged || normalChanged {
			return nil, apperrors.Newf(apperrors.ErrProtected, apperrors.CodeSystemAccountLocked,
				"code, type and normal balance of system account %s cannot change", account.Code).
				WithDetail("accountID", accountID)
		}
	}

	if err := validateTypeAndCategory(updated.Type, updated.Category); err != nil {
		return nil, err
	}
	var requestedNormal domain.NormalBalance
	if req.NormalBalance != nil {
		requestedNormal = *req.NormalBalance
	}
	if updated.NormalBalance, err = resolveNormalBalance(updated.Type, requestedNormal); err != nil {
		return nil, err
	}

	if updated.Type != account.Type && !account.Balance.IsZero() {
		return nil, apperrors.Newf(apperrors.ErrConflict, apperrors.CodeAccountHasBalance,
			"account %s has balance %s, its type cannot change", account.Code, account.Balance.String()).
			WithDetail("balance", account.Balance)
	}

	if updated.Code != account.Code {
		if err := s.ensureCodeAvailable(ctx, updated.Code, accountID); err != nil {
			return nil, err
		}
	}

	updated.LastUpdatedAt = s.Now()
	updated.LastUpdatedBy = userID
	if err := s.accountRepo.UpdateAccount(ctx, updated); err != nil {
		if errors.Is(err, apperrors.ErrDuplicate) {
			return nil, duplicateCode(updated.Code)
		}
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, accountNotFound(accountID)
		}
		if apperrors.CodeOf(err) == apperrors.CodeAccountHasBalance {
			// A posting landed between the read above and the write.
			return nil, err
		}
		s.LogError(ctx, err, "Failed to update account in repository", slog.String("account_id", accountID))
		return nil, err
	}

	s.LogInfo(ctx, "Account updated", slog.String("account_id", accountID))
	return &updated, nil
}

func (s *accountService) DeleteAccount(ctx context.Context, accountID string, userID string) error {
	account, err := s.GetAccountByID(ctx, accountID)
	if err != nil {
		return err
	}
	if !account.Balance.IsZero() {
		return apperrors.Newf(apperrors.ErrConflict, apperrors.CodeAccountHasBalance,
			"account %s has balance %s and cannot be deleted", account.Code, account.Balance.String()).
			WithDetail("balance", account.Balance)
	}
	if account.IsSystem {
		return apperrors.Newf(apperrors.ErrProtected, apperrors.CodeSystemAccountProtected,
			"system account %s cannot be deleted", account.Code).
			WithDetail("accountID", accountID)
	}

	if err := s.accountRepo.DeleteAccount(ctx, accountID); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return accountNotFound(accountID)
		}
		if apperrors.CodeOf(err) == "" {
			s.LogError(ctx, err, "Failed to delete account in repository", slog.String("account_id", accountID))
		}
		return err
	}

	s.LogInfo(ctx, "Account deleted", slog.String("account_id", accountID), slog.String("deleted_by", userID))
	return nil
}
