package dto

import (
	"time"

	"github.com/SscSPs/mbg_dapur_ledger/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreateAccountRequest defines the data needed to create a new account.
type CreateAccountRequest struct {
	Code          string                 `json:"code" binding:"required,account_code"`
	Name          string                 `json:"name" binding:"required,max=120"`
	Type          domain.AccountType     `json:"type" binding:"required,oneof=asset liability equity revenue expense cogs"`
	Category      domain.AccountCategory `json:"category" binding:"required"`
	NormalBalance domain.NormalBalance   `json:"normalBalance" binding:"omitempty,oneof=debit credit"` // Optional, derived from type when empty
	Description   string                 `json:"description"`
}

// UpdateAccountRequest defines the data allowed for updating an account.
// Use pointers to distinguish between zero-value updates and fields not provided.
type UpdateAccountRequest struct {
	Code          *string                 `json:"code" binding:"omitempty,account_code"`
	Name          *string                 `json:"name" binding:"omitempty,max=120"`
	Type          *domain.AccountType     `json:"type" binding:"omitempty,oneof=asset liability equity revenue expense cogs"`
	Category      *domain.AccountCategory `json:"category"`
	NormalBalance *domain.NormalBalance   `json:"normalBalance" binding:"omitempty,oneof=debit credit"`
	Description   *string                 `json:"description"`
	IsActive      *bool                   `json:"isActive"`
}

// ListAccountsParams defines query parameters for listing accounts.
type ListAccountsParams struct {
	Type            domain.AccountType `form:"type" binding:"omitempty,oneof=asset liability equity revenue expense cogs"`
	Search          string             `form:"q"`
	IncludeInactive bool               `form:"includeInactive"`
}

// AccountResponse defines the data returned for an account.
type AccountResponse struct {
	AccountID     string                 `json:"accountID"`
	Code          string                 `json:"code"`
	Name          string                 `json:"name"`
	Type          domain.AccountType     `json:"type"`
	Category      domain.AccountCategory `json:"category"`
	NormalBalance domain.NormalBalance   `json:"normalBalance"`
	Description   string                 `json:"description"`
	Balance       decimal.Decimal        `json:"balance"`
	IsActive      bool                   `json:"isActive"`
	IsSystem      bool                   `json:"isSystem"`
	CreatedAt     time.Time              `json:"createdAt"`
	CreatedBy     string                 `json:"createdBy"`
	LastUpdatedAt time.Time              `json:"lastUpdatedAt"`
	LastUpdatedBy string                 `json:"lastUpdatedBy"`
}

// ListAccountsResponse wraps the list of accounts.
type ListAccountsResponse struct {
	Accounts []AccountResponse `json:"accounts"`
}

// ToAccountResponse converts a domain.Account to AccountResponse DTO
func ToAccountResponse(acc *domain.Account) AccountResponse {
	return AccountResponse{
		AccountID:     acc.AccountID,
		Code:          acc.Code,
		Name:          acc.Name,
		Type:          acc.Type,
		Category:      acc.Category,
		NormalBalance: acc.NormalBalance,
		Description:   acc.Description,
		Balance:       acc.Balance,
		IsActive:      acc.IsActive,
		IsSystem:      acc.IsSystem,
		CreatedAt:     acc.CreatedAt,
		CreatedBy:     acc.CreatedBy,
		LastUpdatedAt: acc.LastUpdatedAt,
		LastUpdatedBy: acc.LastUpdatedBy,
	}
}

// ToListAccountResponse converts a slice of domain.Account to ListAccountsResponse
func ToListAccountResponse(accounts []domain.Account) ListAccountsResponse {
	res := make([]AccountResponse, len(accounts))
	for i := range accounts {
		res[i] = ToAccountResponse(&accounts[i])
	}
	return ListAccountsResponse{Accounts: res}
}
