package memory

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/SscSPs/mbg_dapur_ledger/internal/apperrors"
	"github.com/SscSPs/mbg_dapur_ledger/internal/core/domain"
)

func (s *Store) SaveAccount(_ context.Context, account domain.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.accountCodes[account.Code]; exists {
		return fmt.Errorf("%w: account code %s already exists", apperrors.ErrDuplicate, account.Code)
	}
	if _, exists := s.accounts[account.AccountID]; exists {
		return fmt.Errorf("%w: account %s already exists", apperrors.ErrDuplicate, account.AccountID)
	}
	s.accounts[account.AccountID] = account
	s.accountCodes[account.Code] = account.AccountID
	return nil
}

func (s *Store) FindAccountByID(_ context.Context, accountID string) (*domain.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	acc, ok := s.accounts[accountID]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return &acc, nil
}

func (s *Store) FindAccountByCode(_ context.Context, code string) (*domain.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.accountCodes[code]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	acc := s.accounts[id]
	return &acc, nil
}

func (s *Store) FindAccountsByIDs(_ context.Context, accountIDs []string) (map[string]domain.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(map[string]domain.Account, len(accountIDs))
	for _, id := range accountIDs {
		if acc, ok := s.accounts[id]; ok {
			out[id] = acc
		}
	}
	return out, nil
}

func (s *Store) ListAccounts(_ context.Context, filter domain.AccountFilter) ([]domain.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	search := strings.ToLower(strings.TrimSpace(filter.Search))
	out := []domain.Account{}
	for _, acc := range s.accounts {
		if !filter.IncludeInactive && !acc.IsActive {
			continue
		}
		if filter.Type != "" && acc.Type != filter.Type {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(acc.Code), search) &&
			!strings.Contains(strings.ToLower(acc.Name), search) {
			continue
		}
		out = append(out, acc)
	}
	slices.SortFunc(out, func(a, b domain.Account) int { return strings.Compare(a.Code, b.Code) })
	return out, nil
}

// UpdateAccount replaces descriptive fields. The stored balance is kept.
func (s *Store) UpdateAccount(_ context.Context, account domain.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.accounts[account.AccountID]
	if !ok {
		return apperrors.ErrNotFound
	}
	if account.Type != existing.Type && !existing.Balance.IsZero() {
		return apperrors.Newf(apperrors.ErrConflict, apperrors.CodeAccountHasBalance,
			"account %s has balance %s, its type cannot change", existing.Code, existing.Balance.String()).
			WithDetail("balance", existing.Balance)
	}
	if account.Code != existing.Code {
		if _, taken := s.accountCodes[account.Code]; taken {
			return fmt.Errorf("%w: account code %s already exists", apperrors.ErrDuplicate, account.Code)
		}
		delete(s.accountCodes, existing.Code)
		s.accountCodes[account.Code] = account.AccountID
	}

	account.Balance = existing.Balance
	account.IsSystem = existing.IsSystem
	account.CreatedAt = existing.CreatedAt
	account.CreatedBy = existing.CreatedBy
	s.accounts[account.AccountID] = account
	return nil
}

func (s *Store) DeleteAccount(_ context.Context, accountID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	acc, ok := s.accounts[accountID]
	if !ok {
		return apperrors.ErrNotFound
	}
	if !acc.Balance.IsZero() {
		return apperrors.Newf(apperrors.ErrConflict, apperrors.CodeAccountHasBalance,
			"account %s has balance %s and cannot be deleted", acc.Code, acc.Balance.String())
	}
	if acc.IsSystem {
		return apperrors.Newf(apperrors.ErrProtected, apperrors.CodeSystemAccountProtected,
			"system account %s cannot be deleted", acc.Code)
	}
	for _, e := range s.entries {
		for _, l := range e.Lines {
			if l.AccountID == accountID {
				return apperrors.Newf(apperrors.ErrConflict, apperrors.CodeAccountInUse,
					"account %s is referenced by journal lines", accountID).
					WithDetail("accountID", accountID)
			}
		}
	}

	delete(s.accounts, accountID)
	delete(s.accountCodes, acc.Code)
	return nil
}
