package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/finacct/ledger_posting_app/internal/apperrors"
	"github.com/finacct/ledger_posting_app/internal/core/domain"
	portsrepo "github.com/finacct/ledger_posting_app/internal/core/ports/repositories"
	portssvc "github.com/finacct/ledger_posting_app/internal/core/ports/services"
	"github.com/finacct/ledger_posting_app/internal/core/services"
	"github.com/finacct/ledger_posting_app/internal/dto"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

// --- Mock AccountRepository ---
type MockAccountRepository struct {
	mock.Mock
}

// Ensure MockAccountRepository implements portsrepo.AccountRepositoryFacade
var _ portsrepo.AccountRepositoryFacade = (*MockAccountRepository)(nil)

func (m *MockAccountRepository) FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountRepository) FindAccountByCode(ctx context.Context, entityID string, code string) (*domain.Account, error) {
	args := m.Called(ctx, entityID, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountRepository) FindAccountsByIDs(ctx context.Context, accountIDs []string) (map[string]domain.Account, error) {
	args := m.Called(ctx, accountIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]domain.Account), args.Error(1)
}

func (m *MockAccountRepository) ListAccounts(ctx context.Context, entityID string, filters portsrepo.AccountListFilters, limit int, offset int) ([]domain.Account, error) {
	args := m.Called(ctx, entityID, filters, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Account), args.Error(1)
}

func (m *MockAccountRepository) SaveAccount(ctx context.Context, account domain.Account) error {
	args := m.Called(ctx, account)
	return args.Error(0)
}

func (m *MockAccountRepository) UpdateAccount(ctx context.Context, account domain.Account) error {
	args := m.Called(ctx, account)
	return args.Error(0)
}

func (m *MockAccountRepository) DeactivateAccount(ctx context.Context, accountID string, actor string, now time.Time) error {
	args := m.Called(ctx, accountID, actor, now)
	return args.Error(0)
}

func (m *MockAccountRepository) FindAccountsByIDsForUpdate(ctx context.Context, tx pgx.Tx, accountIDs []string) (map[string]domain.Account, error) {
	args := m.Called(ctx, tx, accountIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]domain.Account), args.Error(1)
}

func (m *MockAccountRepository) ApplyPostingEffectsInTx(ctx context.Context, tx pgx.Tx, effects map[string]domain.PostingEffect, actor string, now time.Time) error {
	args := m.Called(ctx, tx, effects, actor, now)
	return args.Error(0)
}

// --- Test Suite ---

type AccountServiceTestSuite struct {
	suite.Suite
	mockAccountRepo *MockAccountRepository
	service         portssvc.AccountSvcFacade
	entityID        string
	actor           string
}

func (suite *AccountServiceTestSuite) SetupTest() {
	suite.mockAccountRepo = new(MockAccountRepository)
	suite.service = services.NewAccountService(suite.mockAccountRepo)
	suite.entityID = uuid.NewString()
	suite.actor = uuid.NewString()
}

func (suite *AccountServiceTestSuite) TestCreateAccount_Success() {
	ctx := context.Background()
	req := dto.CreateAccountRequest{
		Code:        "1000",
		Name:        "Cash",
		AccountType: domain.Asset,
	}

	suite.mockAccountRepo.On("FindAccountByCode", ctx, suite.entityID, "1000").Return(nil, apperrors.ErrNotFound).Once()
	suite.mockAccountRepo.On("SaveAccount", ctx, mock.AnythingOfType("domain.Account")).Return(nil).Once()

	account, err := suite.service.CreateAccount(ctx, suite.entityID, req, suite.actor)

	suite.Require().NoError(err)
	suite.Require().NotNil(account)
	suite.NotEmpty(account.AccountID)
	suite.Equal(suite.entityID, account.EntityID)
	suite.Equal(domain.DebitNormal, account.NormalBalance)
	suite.True(account.AllowPosting)
	suite.True(account.IsActive)
	suite.True(account.CurrentBalance.IsZero())
	suite.Equal(suite.actor, account.CreatedBy)
	suite.mockAccountRepo.AssertExpectations(suite.T())
}

func (suite *AccountServiceTestSuite) TestCreateAccount_DerivesCreditNormal() {
	ctx := context.Background()
	req := dto.CreateAccountRequest{
		Code:        "4000",
		Name:        "Sales",
		AccountType: domain.Revenue,
	}

	suite.mockAccountRepo.On("FindAccountByCode", ctx, suite.entityID, "4000").Return(nil, apperrors.ErrNotFound).Once()
	suite.mockAccountRepo.On("SaveAccount", ctx, mock.AnythingOfType("domain.Account")).Return(nil).Once()

	account, err := suite.service.CreateAccount(ctx, suite.entityID, req, suite.actor)

	suite.Require().NoError(err)
	suite.Equal(domain.CreditNormal, account.NormalBalance)
}

func (suite *AccountServiceTestSuite) TestCreateAccount_InvalidType() {
	ctx := context.Background()
	req := dto.CreateAccountRequest{
		Code:        "9999",
		Name:        "Mystery",
		AccountType: domain.AccountType("CONTRA"),
	}

	_, err := suite.service.CreateAccount(ctx, suite.entityID, req, suite.actor)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.mockAccountRepo.AssertNotCalled(suite.T(), "SaveAccount", mock.Anything, mock.Anything)
}

func (suite *AccountServiceTestSuite) TestCreateAccount_CodeTaken() {
	ctx := context.Background()
	req := dto.CreateAccountRequest{
		Code:        "1000",
		Name:        "Cash again",
		AccountType: domain.Asset,
	}
	existing := &domain.Account{AccountID: uuid.NewString(), EntityID: suite.entityID, Code: "1000"}

	suite.mockAccountRepo.On("FindAccountByCode", ctx, suite.entityID, "1000").Return(existing, nil).Once()

	_, err := suite.service.CreateAccount(ctx, suite.entityID, req, suite.actor)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.mockAccountRepo.AssertNotCalled(suite.T(), "SaveAccount", mock.Anything, mock.Anything)
}

func (suite *AccountServiceTestSuite) TestCreateAccount_CodeRaceLost() {
	ctx := context.Background()
	req := dto.CreateAccountRequest{
		Code:        "1000",
		Name:        "Cash",
		AccountType: domain.Asset,
	}

	suite.mockAccountRepo.On("FindAccountByCode", ctx, suite.entityID, "1000").Return(nil, apperrors.ErrNotFound).Once()
	suite.mockAccountRepo.On("SaveAccount", ctx, mock.AnythingOfType("domain.Account")).Return(apperrors.ErrDuplicate).Once()

	_, err := suite.service.CreateAccount(ctx, suite.entityID, req, suite.actor)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.mockAccountRepo.AssertExpectations(suite.T())
}

func (suite *AccountServiceTestSuite) TestCreateAccount_ParentNotFound() {
	ctx := context.Background()
	parentID := uuid.NewString()
	req := dto.CreateAccountRequest{
		Code:            "1100",
		Name:            "Petty cash",
		AccountType:     domain.Asset,
		ParentAccountID: &parentID,
	}

	suite.mockAccountRepo.On("FindAccountByCode", ctx, suite.entityID, "1100").Return(nil, apperrors.ErrNotFound).Once()
	suite.mockAccountRepo.On("FindAccountByID", ctx, parentID).Return(nil, apperrors.ErrNotFound).Once()

	_, err := suite.service.CreateAccount(ctx, suite.entityID, req, suite.actor)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.ErrorIs(err, services.ErrParentNotFound)
}

func (suite *AccountServiceTestSuite) TestCreateAccount_ParentInOtherEntity() {
	ctx := context.Background()
	parentID := uuid.NewString()
	req := dto.CreateAccountRequest{
		Code:            "1100",
		Name:            "Petty cash",
		AccountType:     domain.Asset,
		ParentAccountID: &parentID,
	}
	foreignParent := &domain.Account{AccountID: parentID, EntityID: uuid.NewString()}

	suite.mockAccountRepo.On("FindAccountByCode", ctx, suite.entityID, "1100").Return(nil, apperrors.ErrNotFound).Once()
	suite.mockAccountRepo.On("FindAccountByID", ctx, parentID).Return(foreignParent, nil).Once()

	_, err := suite.service.CreateAccount(ctx, suite.entityID, req, suite.actor)

	suite.Require().Error(err)
	suite.ErrorIs(err, services.ErrParentNotFound)
}

func (suite *AccountServiceTestSuite) TestGetAccountByID_WrongEntity() {
	ctx := context.Background()
	accountID := uuid.NewString()
	account := &domain.Account{AccountID: accountID, EntityID: uuid.NewString()}

	suite.mockAccountRepo.On("FindAccountByID", ctx, accountID).Return(account, nil).Once()

	_, err := suite.service.GetAccountByID(ctx, suite.entityID, accountID)

	// Cross-entity reads must look identical to a missing account
	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrNotFound)
}

func (suite *AccountServiceTestSuite) TestUpdateAccount_ParentCycleRejected() {
	ctx := context.Background()
	accountID := uuid.NewString()
	childID := uuid.NewString()

	account := &domain.Account{AccountID: accountID, EntityID: suite.entityID, Code: "1000", IsActive: true}
	// child's parent chain leads back to accountID
	child := &domain.Account{AccountID: childID, EntityID: suite.entityID, Code: "1100", ParentAccountID: accountID, IsActive: true}

	req := dto.UpdateAccountRequest{ParentAccountID: &childID}

	suite.mockAccountRepo.On("FindAccountByID", ctx, accountID).Return(account, nil).Once()
	suite.mockAccountRepo.On("FindAccountByID", ctx, childID).Return(child, nil)

	_, err := suite.service.UpdateAccount(ctx, suite.entityID, accountID, req, suite.actor)

	suite.Require().Error(err)
	suite.ErrorIs(err, services.ErrParentCycle)
	suite.mockAccountRepo.AssertNotCalled(suite.T(), "UpdateAccount", mock.Anything, mock.Anything)
}

func (suite *AccountServiceTestSuite) TestDeactivateAccount_Success() {
	ctx := context.Background()
	accountID := uuid.NewString()
	account := &domain.Account{AccountID: accountID, EntityID: suite.entityID, IsActive: true}

	suite.mockAccountRepo.On("FindAccountByID", ctx, accountID).Return(account, nil).Once()
	suite.mockAccountRepo.On("DeactivateAccount", ctx, accountID, suite.actor, mock.AnythingOfType("time.Time")).Return(nil).Once()

	err := suite.service.DeactivateAccount(ctx, suite.entityID, accountID, suite.actor)

	suite.Require().NoError(err)
	suite.mockAccountRepo.AssertExpectations(suite.T())
}

// --- Run Test Suite ---
func TestAccountService(t *testing.T) {
	suite.Run(t, new(AccountServiceTestSuite))
}
