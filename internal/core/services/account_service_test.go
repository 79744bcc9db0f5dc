package services_test

import (
	"context"
	"testing"

	"github.com/SscSPs/mbg_dapur_ledger/internal/apperrors"
	"github.com/SscSPs/mbg_dapur_ledger/internal/core/domain"
	portssvc "github.com/SscSPs/mbg_dapur_ledger/internal/core/ports/services"
	"github.com/SscSPs/mbg_dapur_ledger/internal/core/services"
	"github.com/SscSPs/mbg_dapur_ledger/internal/dto"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type AccountServiceTestSuite struct {
	suite.Suite
	ctx      context.Context
	mockRepo *MockAccountRepository
	service  portssvc.AccountSvcFacade
}

func (suite *AccountServiceTestSuite) SetupTest() {
	suite.ctx = context.Background()
	suite.mockRepo = new(MockAccountRepository)
	suite.service = services.NewAccountService(suite.mockRepo, services.WithAccountClock(fixedClock))
}

func ptr[T any](v T) *T { return &v }

func existingAccount(id string) *domain.Account {
	return &domain.Account{
		AccountID:     id,
		Code:          "1-1900",
		Name:          "Kas Kecil",
		Type:          domain.Asset,
		Category:      domain.CurrentAsset,
		NormalBalance: domain.DebitNormal,
		Balance:       decimal.Zero,
		IsActive:      true,
	}
}

// --- CreateAccount ---

func (suite *AccountServiceTestSuite) TestCreateAccount_Success() {
	userID := uuid.NewString()
	req := dto.CreateAccountRequest{
		Code:     " 2-1100 ",
		Name:     "Utang Gaji",
		Type:     domain.Liability,
		Category: domain.CurrentLiability,
	}

	suite.mockRepo.On("FindAccountByCode", suite.ctx, "2-1100").Return(nil, apperrors.ErrNotFound).Once()
	suite.mockRepo.On("SaveAccount", suite.ctx, mock.MatchedBy(func(a domain.Account) bool {
		return a.Code == "2-1100" && a.NormalBalance == domain.CreditNormal && a.Balance.IsZero() && !a.IsSystem
	})).Return(nil).Once()

	account, err := suite.service.CreateAccount(suite.ctx, req, userID)

	suite.Require().NoError(err)
	suite.NotEmpty(account.AccountID)
	suite.Equal(domain.CreditNormal, account.NormalBalance)
	suite.True(account.IsActive)
	suite.Equal(userID, account.CreatedBy)
	suite.Equal(fixedNow, account.CreatedAt)
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *AccountServiceTestSuite) TestCreateAccount_CategoryNotAllowedForType() {
	req := dto.CreateAccountRequest{Code: "6-3000", Name: "Beban Listrik", Type: domain.Expense, Category: domain.FoodCost}

	account, err := suite.service.CreateAccount(suite.ctx, req, "u1")

	suite.Nil(account)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.Equal(apperrors.CodeInvalidCategoryForType, apperrors.CodeOf(err))
	suite.mockRepo.AssertNotCalled(suite.T(), "SaveAccount", mock.Anything, mock.Anything)
}

func (suite *AccountServiceTestSuite) TestCreateAccount_NormalBalanceMismatch() {
	req := dto.CreateAccountRequest{
		Code: "1-1500", Name: "Deposit", Type: domain.Asset, Category: domain.CurrentAsset,
		NormalBalance: domain.CreditNormal,
	}

	_, err := suite.service.CreateAccount(suite.ctx, req, "u1")

	suite.Equal(apperrors.CodeNormalBalanceMismatch, apperrors.CodeOf(err))
}

func (suite *AccountServiceTestSuite) TestCreateAccount_InvalidType() {
	req := dto.CreateAccountRequest{Code: "7-1000", Name: "Lain", Type: "other", Category: domain.OtherRevenue}

	_, err := suite.service.CreateAccount(suite.ctx, req, "u1")

	suite.Equal(apperrors.CodeInvalidAccountType, apperrors.CodeOf(err))
}

func (suite *AccountServiceTestSuite) TestCreateAccount_DuplicateCode() {
	req := dto.CreateAccountRequest{Code: "1-1000", Name: "Kas 2", Type: domain.Asset, Category: domain.CurrentAsset}
	suite.mockRepo.On("FindAccountByCode", suite.ctx, "1-1000").Return(existingAccount("other"), nil).Once()

	_, err := suite.service.CreateAccount(suite.ctx, req, "u1")

	suite.ErrorIs(err, apperrors.ErrConflict)
	suite.Equal(apperrors.CodeDuplicateCode, apperrors.CodeOf(err))
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *AccountServiceTestSuite) TestCreateAccount_DuplicateRaceOnSave() {
	req := dto.CreateAccountRequest{Code: "1-1600", Name: "Kas 3", Type: domain.Asset, Category: domain.CurrentAsset}
	suite.mockRepo.On("FindAccountByCode", suite.ctx, "1-1600").Return(nil, apperrors.ErrNotFound).Once()
	suite.mockRepo.On("SaveAccount", suite.ctx, mock.AnythingOfType("domain.Account")).Return(apperrors.ErrDuplicate).Once()

	_, err := suite.service.CreateAccount(suite.ctx, req, "u1")

	suite.Equal(apperrors.CodeDuplicateCode, apperrors.CodeOf(err))
}

func (suite *AccountServiceTestSuite) TestCreateAccount_SaveError() {
	req := dto.CreateAccountRequest{Code: "1-1700", Name: "Kas 4", Type: domain.Asset, Category: domain.CurrentAsset}
	suite.mockRepo.On("FindAccountByCode", suite.ctx, "1-1700").Return(nil, apperrors.ErrNotFound).Once()
	suite.mockRepo.On("SaveAccount", suite.ctx, mock.AnythingOfType("domain.Account")).Return(assert.AnError).Once()

	account, err := suite.service.CreateAccount(suite.ctx, req, "u1")

	suite.Nil(account)
	suite.ErrorIs(err, assert.AnError)
}

// --- GetAccountByID / ListAccounts ---

func (suite *AccountServiceTestSuite) TestGetAccountByID_NotFound() {
	testID := uuid.NewString()
	suite.mockRepo.On("FindAccountByID", suite.ctx, testID).Return(nil, apperrors.ErrNotFound).Once()

	account, err := suite.service.GetAccountByID(suite.ctx, testID)

	suite.Nil(account)
	suite.ErrorIs(err, apperrors.ErrNotFound)
	suite.Equal(apperrors.CodeAccountNotFound, apperrors.CodeOf(err))
}

func (suite *AccountServiceTestSuite) TestGetAccountByID_RepoError() {
	testID := uuid.NewString()
	suite.mockRepo.On("FindAccountByID", suite.ctx, testID).Return(nil, assert.AnError).Once()

	_, err := suite.service.GetAccountByID(suite.ctx, testID)

	suite.ErrorIs(err, assert.AnError)
}

func (suite *AccountServiceTestSuite) TestListAccounts_PassesFilter() {
	filter := domain.AccountFilter{Type: domain.Revenue, Search: "katering"}
	suite.mockRepo.On("ListAccounts", suite.ctx, filter).Return(nil, nil).Once()

	accounts, err := suite.service.ListAccounts(suite.ctx, dto.ListAccountsParams{Type: domain.Revenue, Search: " katering "})

	suite.Require().NoError(err)
	suite.NotNil(accounts)
	suite.Empty(accounts)
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *AccountServiceTestSuite) TestListAccounts_InvalidType() {
	_, err := suite.service.ListAccounts(suite.ctx, dto.ListAccountsParams{Type: "other"})

	suite.Equal(apperrors.CodeInvalidAccountType, apperrors.CodeOf(err))
}

// --- UpdateAccount ---

func (suite *AccountServiceTestSuite) TestUpdateAccount_ChangesDescriptiveFields() {
	id := uuid.NewString()
	suite.mockRepo.On("FindAccountByID", suite.ctx, id).Return(existingAccount(id), nil).Once()
	suite.mockRepo.On("UpdateAccount", suite.ctx, mock.MatchedBy(func(a domain.Account) bool {
		return a.Name == "Kas Dapur" && !a.IsActive && a.LastUpdatedBy == "u2"
	})).Return(nil).Once()

	updated, err := suite.service.UpdateAccount(suite.ctx, id, dto.UpdateAccountRequest{
		Name:     ptr("Kas Dapur"),
		IsActive: ptr(false),
	}, "u2")

	suite.Require().NoError(err)
	suite.Equal("Kas Dapur", updated.Name)
	suite.Equal(fixedNow, updated.LastUpdatedAt)
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *AccountServiceTestSuite) TestUpdateAccount_SystemAccountLocked() {
	id := uuid.NewString()
	system := existingAccount(id)
	system.IsSystem = true
	suite.mockRepo.On("FindAccountByID", suite.ctx, id).Return(system, nil)

	for name, req := range map[string]dto.UpdateAccountRequest{
		"code":          {Code: ptr("1-1999")},
		"type":          {Type: ptr(domain.Expense), Category: ptr(domain.OtherExpense)},
		"normalBalance": {NormalBalance: ptr(domain.CreditNormal)},
	} {
		_, err := suite.service.UpdateAccount(suite.ctx, id, req, "u1")
		suite.ErrorIs(err, apperrors.ErrProtected, name)
		suite.Equal(apperrors.CodeSystemAccountLocked, apperrors.CodeOf(err), name)
	}
	suite.mockRepo.AssertNotCalled(suite.T(), "UpdateAccount", mock.Anything, mock.Anything)
}

func (suite *AccountServiceTestSuite) TestUpdateAccount_SystemAccountRename() {
	id := uuid.NewString()
	system := existingAccount(id)
	system.IsSystem = true
	suite.mockRepo.On("FindAccountByID", suite.ctx, id).Return(system, nil).Once()
	suite.mockRepo.On("UpdateAccount", suite.ctx, mock.AnythingOfType("domain.Account")).Return(nil).Once()

	updated, err := suite.service.UpdateAccount(suite.ctx, id, dto.UpdateAccountRequest{Name: ptr("Kas Besar")}, "u1")

	suite.Require().NoError(err)
	suite.Equal("Kas Besar", updated.Name)
	suite.True(updated.IsSystem)
}

func (suite *AccountServiceTestSuite) TestUpdateAccount_TypeChangeWithBalance() {
	id := uuid.NewString()
	acc := existingAccount(id)
	acc.Balance = amount(5000)
	suite.mockRepo.On("FindAccountByID", suite.ctx, id).Return(acc, nil).Once()

	_, err := suite.service.UpdateAccount(suite.ctx, id, dto.UpdateAccountRequest{
		Type: ptr(domain.Expense), Category: ptr(domain.OperatingExpense),
	}, "u1")

	suite.ErrorIs(err, apperrors.ErrConflict)
	suite.Equal(apperrors.CodeAccountHasBalance, apperrors.CodeOf(err))
}

func (suite *AccountServiceTestSuite) TestUpdateAccount_TypeChangeLosesRaceWithPosting() {
	id := uuid.NewString()
	suite.mockRepo.On("FindAccountByID", suite.ctx, id).Return(existingAccount(id), nil).Once()
	suite.mockRepo.On("UpdateAccount", suite.ctx, mock.AnythingOfType("domain.Account")).
		Return(apperrors.New(apperrors.ErrConflict, apperrors.CodeAccountHasBalance, "account has balance 5000")).Once()

	_, err := suite.service.UpdateAccount(suite.ctx, id, dto.UpdateAccountRequest{
		Type: ptr(domain.Expense), Category: ptr(domain.OperatingExpense),
	}, "u1")

	suite.ErrorIs(err, apperrors.ErrConflict)
	suite.Equal(apperrors.CodeAccountHasBalance, apperrors.CodeOf(err))
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *AccountServiceTestSuite) TestUpdateAccount_TypeChangeRederivesNormalBalance() {
	id := uuid.NewString()
	suite.mockRepo.On("FindAccountByID", suite.ctx, id).Return(existingAccount(id), nil).Once()
	suite.mockRepo.On("UpdateAccount", suite.ctx, mock.AnythingOfType("domain.Account")).Return(nil).Once()

	updated, err := suite.service.UpdateAccount(suite.ctx, id, dto.UpdateAccountRequest{
		Type: ptr(domain.Revenue), Category: ptr(domain.OtherRevenue),
	}, "u1")

	suite.Require().NoError(err)
	suite.Equal(domain.CreditNormal, updated.NormalBalance)
}

func (suite *AccountServiceTestSuite) TestUpdateAccount_CategoryMustMatchType() {
	id := uuid.NewString()
	suite.mockRepo.On("FindAccountByID", suite.ctx, id).Return(existingAccount(id), nil).Once()

	_, err := suite.service.UpdateAccount(suite.ctx, id, dto.UpdateAccountRequest{Category: ptr(domain.Payable)}, "u1")

	suite.Equal(apperrors.CodeInvalidCategoryForType, apperrors.CodeOf(err))
}

func (suite *AccountServiceTestSuite) TestUpdateAccount_CodeTaken() {
	id := uuid.NewString()
	suite.mockRepo.On("FindAccountByID", suite.ctx, id).Return(existingAccount(id), nil).Once()
	suite.mockRepo.On("FindAccountByCode", suite.ctx, "1-1000").Return(existingAccount("someone-else"), nil).Once()

	_, err := suite.service.UpdateAccount(suite.ctx, id, dto.UpdateAccountRequest{Code: ptr("1-1000")}, "u1")

	suite.Equal(apperrors.CodeDuplicateCode, apperrors.CodeOf(err))
}

// --- DeleteAccount ---

func (suite *AccountServiceTestSuite) TestDeleteAccount_Success() {
	id := uuid.NewString()
	suite.mockRepo.On("FindAccountByID", suite.ctx, id).Return(existingAccount(id), nil).Once()
	suite.mockRepo.On("DeleteAccount", suite.ctx, id).Return(nil).Once()

	suite.NoError(suite.service.DeleteAccount(suite.ctx, id, "u1"))
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *AccountServiceTestSuite) TestDeleteAccount_SystemProtected() {
	id := uuid.NewString()
	acc := existingAccount(id)
	acc.IsSystem = true
	suite.mockRepo.On("FindAccountByID", suite.ctx, id).Return(acc, nil).Once()

	err := suite.service.DeleteAccount(suite.ctx, id, "u1")

	suite.ErrorIs(err, apperrors.ErrProtected)
	suite.Equal(apperrors.CodeSystemAccountProtected, apperrors.CodeOf(err))
}

func (suite *AccountServiceTestSuite) TestDeleteAccount_HasBalance() {
	id := uuid.NewString()
	acc := existingAccount(id)
	acc.Balance = amount(1)
	suite.mockRepo.On("FindAccountByID", suite.ctx, id).Return(acc, nil).Once()

	err := suite.service.DeleteAccount(suite.ctx, id, "u1")

	suite.Equal(apperrors.CodeAccountHasBalance, apperrors.CodeOf(err))
	suite.mockRepo.AssertNotCalled(suite.T(), "DeleteAccount", mock.Anything, mock.Anything)
}

func (suite *AccountServiceTestSuite) TestDeleteAccount_SystemWithBalanceReportsBalance() {
	id := uuid.NewString()
	acc := existingAccount(id)
	acc.IsSystem = true
	acc.Balance = amount(500000)
	suite.mockRepo.On("FindAccountByID", suite.ctx, id).Return(acc, nil).Once()

	err := suite.service.DeleteAccount(suite.ctx, id, "u1")

	suite.ErrorIs(err, apperrors.ErrConflict)
	suite.Equal(apperrors.CodeAccountHasBalance, apperrors.CodeOf(err))
	suite.mockRepo.AssertNotCalled(suite.T(), "DeleteAccount", mock.Anything, mock.Anything)
}

func (suite *AccountServiceTestSuite) TestDeleteAccount_InUse() {
	id := uuid.NewString()
	inUse := apperrors.New(apperrors.ErrConflict, apperrors.CodeAccountInUse, "referenced")
	suite.mockRepo.On("FindAccountByID", suite.ctx, id).Return(existingAccount(id), nil).Once()
	suite.mockRepo.On("DeleteAccount", suite.ctx, id).Return(inUse).Once()

	err := suite.service.DeleteAccount(suite.ctx, id, "u1")

	suite.Equal(apperrors.CodeAccountInUse, apperrors.CodeOf(err))
}

func TestAccountServiceTestSuite(t *testing.T) {
	suite.Run(t, new(AccountServiceTestSuite))
}
