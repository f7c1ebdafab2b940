package services_test

import (
	"context"
	"strings"
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
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

// --- Mock EntryRepository ---
type MockEntryRepository struct {
	mock.Mock
}

// Ensure MockEntryRepository implements portsrepo.EntryRepositoryFacade
var _ portsrepo.EntryRepositoryFacade = (*MockEntryRepository)(nil)

func (m *MockEntryRepository) FindEntryByID(ctx context.Context, entryID string) (*domain.JournalEntry, error) {
	args := m.Called(ctx, entryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.JournalEntry), args.Error(1)
}

func (m *MockEntryRepository) FindLinesByEntryID(ctx context.Context, entryID string) ([]domain.JournalEntryLine, error) {
	args := m.Called(ctx, entryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.JournalEntryLine), args.Error(1)
}

func (m *MockEntryRepository) FindLinesByEntryIDs(ctx context.Context, entryIDs []string) (map[string][]domain.JournalEntryLine, error) {
	args := m.Called(ctx, entryIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string][]domain.JournalEntryLine), args.Error(1)
}

func (m *MockEntryRepository) ListEntriesByEntity(ctx context.Context, entityID string, filters portsrepo.EntryListFilters, limit int, nextToken *string) ([]domain.JournalEntry, *string, error) {
	args := m.Called(ctx, entityID, filters, limit, nextToken)
	var entries []domain.JournalEntry
	if args.Get(0) != nil {
		entries = args.Get(0).([]domain.JournalEntry)
	}
	var token *string
	if args.Get(1) != nil {
		token = args.Get(1).(*string)
	}
	return entries, token, args.Error(2)
}

func (m *MockEntryRepository) SaveEntry(ctx context.Context, entry domain.JournalEntry, lines []domain.JournalEntryLine, prefix string, audit domain.AuditLogEntry) (string, error) {
	args := m.Called(ctx, entry, lines, prefix, audit)
	return args.String(0), args.Error(1)
}

func (m *MockEntryRepository) ReplaceEntryLines(ctx context.Context, entry domain.JournalEntry, lines []domain.JournalEntryLine, audit domain.AuditLogEntry) error {
	args := m.Called(ctx, entry, lines, audit)
	return args.Error(0)
}

func (m *MockEntryRepository) TransitionEntryStatus(ctx context.Context, params portsrepo.EntryTransition) error {
	args := m.Called(ctx, params)
	return args.Error(0)
}

func (m *MockEntryRepository) PostEntry(ctx context.Context, entryID string, effects map[string]domain.PostingEffect, actor string, now time.Time, audits []domain.AuditLogEntry) error {
	args := m.Called(ctx, entryID, effects, actor, now, audits)
	return args.Error(0)
}

// --- Mock AuditRepository ---
type MockAuditRepository struct {
	mock.Mock
}

// Ensure MockAuditRepository implements portsrepo.AuditRepositoryFacade
var _ portsrepo.AuditRepositoryFacade = (*MockAuditRepository)(nil)

func (m *MockAuditRepository) Record(ctx context.Context, record domain.AuditLogEntry) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *MockAuditRepository) RecordInTx(ctx context.Context, tx pgx.Tx, record domain.AuditLogEntry) error {
	args := m.Called(ctx, tx, record)
	return args.Error(0)
}

func (m *MockAuditRepository) ListByEntryID(ctx context.Context, entryID string) ([]domain.AuditLogEntry, error) {
	args := m.Called(ctx, entryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.AuditLogEntry), args.Error(1)
}

// --- Mock AccountService ---
type MockAccountService struct {
	mock.Mock
}

// Ensure MockAccountService implements portssvc.AccountSvcFacade
var _ portssvc.AccountSvcFacade = (*MockAccountService)(nil)

func (m *MockAccountService) GetAccountByID(ctx context.Context, entityID string, accountID string) (*domain.Account, error) {
	args := m.Called(ctx, entityID, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountService) GetAccountsByIDs(ctx context.Context, entityID string, accountIDs []string) (map[string]domain.Account, error) {
	args := m.Called(ctx, entityID, accountIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]domain.Account), args.Error(1)
}

func (m *MockAccountService) ListAccounts(ctx context.Context, entityID string, params dto.ListAccountsParams) ([]domain.Account, error) {
	args := m.Called(ctx, entityID, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Account), args.Error(1)
}

func (m *MockAccountService) CreateAccount(ctx context.Context, entityID string, req dto.CreateAccountRequest, actor string) (*domain.Account, error) {
	args := m.Called(ctx, entityID, req, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountService) UpdateAccount(ctx context.Context, entityID string, accountID string, req dto.UpdateAccountRequest, actor string) (*domain.Account, error) {
	args := m.Called(ctx, entityID, accountID, req, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountService) DeactivateAccount(ctx context.Context, entityID string, accountID string, actor string) error {
	args := m.Called(ctx, entityID, accountID, actor)
	return args.Error(0)
}

// --- Test Suite ---

type WorkflowServiceTestSuite struct {
	suite.Suite
	mockEntryRepo  *MockEntryRepository
	mockAccountSvc *MockAccountService
	mockAuditRepo  *MockAuditRepository
	service        portssvc.WorkflowSvcFacade

	entityID  string
	creator   string
	approver1 string
	approver2 string

	cashAccount    domain.Account
	revenueAccount domain.Account
}

func (suite *WorkflowServiceTestSuite) SetupTest() {
	suite.mockEntryRepo = new(MockEntryRepository)
	suite.mockAccountSvc = new(MockAccountService)
	suite.mockAuditRepo = new(MockAuditRepository)

	suite.entityID = uuid.NewString()
	suite.creator = uuid.NewString()
	suite.approver1 = uuid.NewString()
	suite.approver2 = uuid.NewString()

	approverPolicy := services.NewConfigApproverPolicy([]string{suite.approver1, suite.approver2})
	periodGuard := services.NewConfigPeriodGuard(nil, []string{"CONTROLLER"})

	suite.service = services.NewWorkflowService(
		suite.mockEntryRepo,
		suite.mockAccountSvc,
		suite.mockAuditRepo,
		approverPolicy,
		periodGuard,
		false,
	)

	suite.cashAccount = domain.Account{
		AccountID:     uuid.NewString(),
		EntityID:      suite.entityID,
		Code:          "1000",
		Name:          "Cash",
		AccountType:   domain.Asset,
		NormalBalance: domain.DebitNormal,
		AllowPosting:  true,
		IsActive:      true,
	}
	suite.revenueAccount = domain.Account{
		AccountID:     uuid.NewString(),
		EntityID:      suite.entityID,
		Code:          "4000",
		Name:          "Sales",
		AccountType:   domain.Revenue,
		NormalBalance: domain.CreditNormal,
		AllowPosting:  true,
		IsActive:      true,
	}
}

func (suite *WorkflowServiceTestSuite) entryInStatus(status domain.EntryStatus) *domain.JournalEntry {
	entry := &domain.JournalEntry{
		EntryID:      uuid.NewString(),
		EntityID:     suite.entityID,
		EntryNumber:  "JE-2026-000042",
		EntryDate:    time.Date(2026, 8, 15, 0, 0, 0, 0, time.UTC),
		FiscalYear:   2026,
		FiscalPeriod: 8,
		Status:       status,
	}
	entry.CreatedBy = suite.creator
	return entry
}

func (suite *WorkflowServiceTestSuite) balancedLines(entryID string) []domain.JournalEntryLine {
	return []domain.JournalEntryLine{
		{
			LineID:      uuid.NewString(),
			EntryID:     entryID,
			LineNumber:  1,
			AccountID:   suite.cashAccount.AccountID,
			DebitAmount: decimal.NewFromInt(100),
		},
		{
			LineID:       uuid.NewString(),
			EntryID:      entryID,
			LineNumber:   2,
			AccountID:    suite.revenueAccount.AccountID,
			CreditAmount: decimal.NewFromInt(100),
		},
	}
}

// --- Submit ---

func (suite *WorkflowServiceTestSuite) TestSubmit_Success() {
	ctx := context.Background()
	entry := suite.entryInStatus(domain.StatusDraft)

	suite.mockEntryRepo.On("FindEntryByID", ctx, entry.EntryID).Return(entry, nil).Once()
	suite.mockEntryRepo.On("FindLinesByEntryID", ctx, entry.EntryID).Return(suite.balancedLines(entry.EntryID), nil).Once()
	suite.mockEntryRepo.On("TransitionEntryStatus", ctx, mock.MatchedBy(func(t portsrepo.EntryTransition) bool {
		return t.EntryID == entry.EntryID &&
			t.FromStatus == domain.StatusDraft &&
			t.ToStatus == domain.StatusPendingFirstApproval &&
			t.Actor == suite.creator &&
			t.Audit.Action == domain.ActionSubmitted
	})).Return(nil).Once()

	resp, err := suite.service.SubmitForApproval(ctx, suite.entityID, entry.EntryID, suite.creator)

	suite.Require().NoError(err)
	suite.Equal(domain.StatusPendingFirstApproval, resp.Status)
	suite.Equal(1, resp.Stage)
	suite.mockEntryRepo.AssertExpectations(suite.T())
}

func (suite *WorkflowServiceTestSuite) TestSubmit_NotDraft() {
	ctx := context.Background()
	entry := suite.entryInStatus(domain.StatusPendingFinalApproval)

	suite.mockEntryRepo.On("FindEntryByID", ctx, entry.EntryID).Return(entry, nil).Once()

	_, err := suite.service.SubmitForApproval(ctx, suite.entityID, entry.EntryID, suite.creator)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrStateConflict)
	suite.mockEntryRepo.AssertNotCalled(suite.T(), "TransitionEntryStatus", mock.Anything, mock.Anything)
}

func (suite *WorkflowServiceTestSuite) TestSubmit_Unbalanced() {
	ctx := context.Background()
	entry := suite.entryInStatus(domain.StatusDraft)
	lines := suite.balancedLines(entry.EntryID)
	lines[1].CreditAmount = decimal.NewFromInt(90)

	suite.mockEntryRepo.On("FindEntryByID", ctx, entry.EntryID).Return(entry, nil).Once()
	suite.mockEntryRepo.On("FindLinesByEntryID", ctx, entry.EntryID).Return(lines, nil).Once()

	_, err := suite.service.SubmitForApproval(ctx, suite.entityID, entry.EntryID, suite.creator)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrStateConflict)
	suite.ErrorIs(err, services.ErrEntryUnbalanced)
	suite.mockEntryRepo.AssertNotCalled(suite.T(), "TransitionEntryStatus", mock.Anything, mock.Anything)
}

func (suite *WorkflowServiceTestSuite) TestSubmit_WrongEntity() {
	ctx := context.Background()
	entry := suite.entryInStatus(domain.StatusDraft)

	suite.mockEntryRepo.On("FindEntryByID", ctx, entry.EntryID).Return(entry, nil).Once()

	_, err := suite.service.SubmitForApproval(ctx, uuid.NewString(), entry.EntryID, suite.creator)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrNotFound)
}

// --- Approve ---

func (suite *WorkflowServiceTestSuite) TestApprove_FirstApproval() {
	ctx := context.Background()
	entry := suite.entryInStatus(domain.StatusPendingFirstApproval)

	suite.mockEntryRepo.On("FindEntryByID", ctx, entry.EntryID).Return(entry, nil).Once()
	suite.mockEntryRepo.On("TransitionEntryStatus", ctx, mock.MatchedBy(func(t portsrepo.EntryTransition) bool {
		return t.FromStatus == domain.StatusPendingFirstApproval &&
			t.ToStatus == domain.StatusPendingFinalApproval &&
			t.SetFirstApprover && !t.SetFinalApprover &&
			t.Audit.Action == domain.ActionFirstApproved
	})).Return(nil).Once()

	resp, err := suite.service.Approve(ctx, suite.entityID, entry.EntryID, suite.approver1)

	suite.Require().NoError(err)
	suite.Equal(domain.StatusPendingFinalApproval, resp.Status)
	suite.Equal(2, resp.Stage)
	suite.mockEntryRepo.AssertExpectations(suite.T())
}

func (suite *WorkflowServiceTestSuite) TestApprove_FinalApproval() {
	ctx := context.Background()
	entry := suite.entryInStatus(domain.StatusPendingFinalApproval)
	entry.FirstApprovedBy = suite.approver1

	suite.mockEntryRepo.On("FindEntryByID", ctx, entry.EntryID).Return(entry, nil).Once()
	suite.mockEntryRepo.On("TransitionEntryStatus", ctx, mock.MatchedBy(func(t portsrepo.EntryTransition) bool {
		return t.FromStatus == domain.StatusPendingFinalApproval &&
			t.ToStatus == domain.StatusApproved &&
			t.SetFinalApprover && !t.SetFirstApprover &&
			t.Audit.Action == domain.ActionFinalApproved
	})).Return(nil).Once()

	resp, err := suite.service.Approve(ctx, suite.entityID, entry.EntryID, suite.approver2)

	suite.Require().NoError(err)
	suite.Equal(domain.StatusApproved, resp.Status)
	suite.mockEntryRepo.AssertExpectations(suite.T())
}

func (suite *WorkflowServiceTestSuite) TestApprove_NotAuthorized() {
	ctx := context.Background()
	entry := suite.entryInStatus(domain.StatusPendingFirstApproval)
	outsider := uuid.NewString()

	suite.mockEntryRepo.On("FindEntryByID", ctx, entry.EntryID).Return(entry, nil).Once()

	_, err := suite.service.Approve(ctx, suite.entityID, entry.EntryID, outsider)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrForbidden)
	suite.ErrorIs(err, services.ErrNotAuthorizedApprover)
	suite.mockEntryRepo.AssertNotCalled(suite.T(), "TransitionEntryStatus", mock.Anything, mock.Anything)
}

func (suite *WorkflowServiceTestSuite) TestApprove_SelfApproval() {
	ctx := context.Background()
	entry := suite.entryInStatus(domain.StatusPendingFirstApproval)
	entry.CreatedBy = suite.approver1 // creator is also an authorized approver

	suite.mockEntryRepo.On("FindEntryByID", ctx, entry.EntryID).Return(entry, nil).Once()

	_, err := suite.service.Approve(ctx, suite.entityID, entry.EntryID, suite.approver1)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrForbidden)
	suite.ErrorIs(err, services.ErrSelfApproval)
	suite.mockEntryRepo.AssertNotCalled(suite.T(), "TransitionEntryStatus", mock.Anything, mock.Anything)
}

func (suite *WorkflowServiceTestSuite) TestApprove_SameApproverTwice() {
	ctx := context.Background()
	entry := suite.entryInStatus(domain.StatusPendingFinalApproval)
	entry.FirstApprovedBy = suite.approver1

	suite.mockEntryRepo.On("FindEntryByID", ctx, entry.EntryID).Return(entry, nil).Once()

	_, err := suite.service.Approve(ctx, suite.entityID, entry.EntryID, suite.approver1)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrForbidden)
	suite.ErrorIs(err, services.ErrDuplicateApprover)
	suite.mockEntryRepo.AssertNotCalled(suite.T(), "TransitionEntryStatus", mock.Anything, mock.Anything)
}

func (suite *WorkflowServiceTestSuite) TestApprove_AlreadyApproved() {
	ctx := context.Background()
	entry := suite.entryInStatus(domain.StatusApproved)

	suite.mockEntryRepo.On("FindEntryByID", ctx, entry.EntryID).Return(entry, nil).Once()

	_, err := suite.service.Approve(ctx, suite.entityID, entry.EntryID, suite.approver1)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrStateConflict)
}

// --- Reject ---

func (suite *WorkflowServiceTestSuite) TestReject_FromFinalPending() {
	ctx := context.Background()
	entry := suite.entryInStatus(domain.StatusPendingFinalApproval)
	entry.FirstApprovedBy = suite.approver1
	reason := "amounts do not match the invoice"

	suite.mockEntryRepo.On("FindEntryByID", ctx, entry.EntryID).Return(entry, nil).Once()
	suite.mockEntryRepo.On("TransitionEntryStatus", ctx, mock.MatchedBy(func(t portsrepo.EntryTransition) bool {
		return t.FromStatus == domain.StatusPendingFinalApproval &&
			t.ToStatus == domain.StatusDraft &&
			t.ClearApprovals &&
			t.RejectionReason != nil && *t.RejectionReason == reason &&
			t.Audit.Action == domain.ActionRejected &&
			t.Audit.Detail == reason
	})).Return(nil).Once()

	resp, err := suite.service.Reject(ctx, suite.entityID, entry.EntryID, suite.approver2, reason)

	suite.Require().NoError(err)
	suite.Equal(domain.StatusDraft, resp.Status)
	suite.Equal(0, resp.Stage)
	suite.mockEntryRepo.AssertExpectations(suite.T())
}

func (suite *WorkflowServiceTestSuite) TestReject_NotAuthorized() {
	ctx := context.Background()
	entry := suite.entryInStatus(domain.StatusPendingFirstApproval)

	suite.mockEntryRepo.On("FindEntryByID", ctx, entry.EntryID).Return(entry, nil).Once()

	_, err := suite.service.Reject(ctx, suite.entityID, entry.EntryID, suite.creator, "not mine to approve")

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrForbidden)
	suite.mockEntryRepo.AssertNotCalled(suite.T(), "TransitionEntryStatus", mock.Anything, mock.Anything)
}

func (suite *WorkflowServiceTestSuite) TestReject_DraftEntry() {
	ctx := context.Background()
	entry := suite.entryInStatus(domain.StatusDraft)

	suite.mockEntryRepo.On("FindEntryByID", ctx, entry.EntryID).Return(entry, nil).Once()

	_, err := suite.service.Reject(ctx, suite.entityID, entry.EntryID, suite.approver1, "nothing to reject")

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrStateConflict)
}

// --- Post ---

func (suite *WorkflowServiceTestSuite) TestPost_Success() {
	ctx := context.Background()
	entry := suite.entryInStatus(domain.StatusApproved)
	lines := suite.balancedLines(entry.EntryID)
	accounts := map[string]domain.Account{
		suite.cashAccount.AccountID:    suite.cashAccount,
		suite.revenueAccount.AccountID: suite.revenueAccount,
	}

	suite.mockEntryRepo.On("FindEntryByID", ctx, entry.EntryID).Return(entry, nil).Once()
	suite.mockEntryRepo.On("FindLinesByEntryID", ctx, entry.EntryID).Return(lines, nil).Once()
	suite.mockAccountSvc.On("GetAccountsByIDs", ctx, suite.entityID, mock.AnythingOfType("[]string")).Return(accounts, nil).Once()
	suite.mockEntryRepo.On("PostEntry", ctx, entry.EntryID, mock.MatchedBy(func(effects map[string]domain.PostingEffect) bool {
		// Debit 100 to a debit-normal account and credit 100 to a
		// credit-normal account both raise the running balance by 100.
		cash, cashOK := effects[suite.cashAccount.AccountID]
		rev, revOK := effects[suite.revenueAccount.AccountID]
		return cashOK && revOK &&
			cash.BalanceDelta.Equal(decimal.NewFromInt(100)) &&
			cash.Activity.Equal(decimal.NewFromInt(100)) &&
			rev.BalanceDelta.Equal(decimal.NewFromInt(100)) &&
			rev.Activity.Equal(decimal.NewFromInt(100))
	}), suite.approver2, mock.AnythingOfType("time.Time"), mock.MatchedBy(func(audits []domain.AuditLogEntry) bool {
		// One balance-change row per account plus the posted row, in order.
		// The posted row's detail must state the real entry total.
		return len(audits) == 3 &&
			audits[0].Action == domain.ActionBalanceChange &&
			audits[1].Action == domain.ActionBalanceChange &&
			audits[2].Action == domain.ActionPosted &&
			strings.Contains(audits[2].Detail, "total 100.00")
	})).Return(nil).Once()

	resp, err := suite.service.Post(ctx, suite.entityID, entry.EntryID, suite.approver2)

	suite.Require().NoError(err)
	suite.Equal(domain.StatusPosted, resp.Status)
	suite.Equal(4, resp.Stage)
	suite.mockEntryRepo.AssertExpectations(suite.T())
	suite.mockAccountSvc.AssertExpectations(suite.T())
}

func (suite *WorkflowServiceTestSuite) TestPost_AggregatesRepeatedAccount() {
	ctx := context.Background()
	entry := suite.entryInStatus(domain.StatusApproved)
	expenseAccount := domain.Account{
		AccountID:     uuid.NewString(),
		EntityID:      suite.entityID,
		Code:          "5000",
		AccountType:   domain.Expense,
		NormalBalance: domain.DebitNormal,
	}
	// Two debit lines against the same cash account, one credit offset.
	lines := []domain.JournalEntryLine{
		{EntryID: entry.EntryID, LineNumber: 1, AccountID: expenseAccount.AccountID, DebitAmount: decimal.NewFromInt(30)},
		{EntryID: entry.EntryID, LineNumber: 2, AccountID: expenseAccount.AccountID, DebitAmount: decimal.NewFromInt(45)},
		{EntryID: entry.EntryID, LineNumber: 3, AccountID: suite.cashAccount.AccountID, CreditAmount: decimal.NewFromInt(75)},
	}
	accounts := map[string]domain.Account{
		expenseAccount.AccountID:    expenseAccount,
		suite.cashAccount.AccountID: suite.cashAccount,
	}

	suite.mockEntryRepo.On("FindEntryByID", ctx, entry.EntryID).Return(entry, nil).Once()
	suite.mockEntryRepo.On("FindLinesByEntryID", ctx, entry.EntryID).Return(lines, nil).Once()
	suite.mockAccountSvc.On("GetAccountsByIDs", ctx, suite.entityID, mock.AnythingOfType("[]string")).Return(accounts, nil).Once()
	suite.mockEntryRepo.On("PostEntry", ctx, entry.EntryID, mock.MatchedBy(func(effects map[string]domain.PostingEffect) bool {
		expense := effects[expenseAccount.AccountID]
		cash := effects[suite.cashAccount.AccountID]
		return len(effects) == 2 &&
			expense.BalanceDelta.Equal(decimal.NewFromInt(75)) &&
			expense.Activity.Equal(decimal.NewFromInt(75)) &&
			cash.BalanceDelta.Equal(decimal.NewFromInt(-75)) &&
			cash.Activity.Equal(decimal.NewFromInt(75))
	}), suite.approver1, mock.AnythingOfType("time.Time"), mock.Anything).Return(nil).Once()

	_, err := suite.service.Post(ctx, suite.entityID, entry.EntryID, suite.approver1)

	suite.Require().NoError(err)
	suite.mockEntryRepo.AssertExpectations(suite.T())
}

func (suite *WorkflowServiceTestSuite) TestPost_NotApproved() {
	ctx := context.Background()
	entry := suite.entryInStatus(domain.StatusPendingFinalApproval)

	suite.mockEntryRepo.On("FindEntryByID", ctx, entry.EntryID).Return(entry, nil).Once()

	_, err := suite.service.Post(ctx, suite.entityID, entry.EntryID, suite.approver1)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrStateConflict)
	suite.ErrorIs(err, services.ErrEntryNotApproved)
	suite.mockEntryRepo.AssertNotCalled(suite.T(), "PostEntry", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *WorkflowServiceTestSuite) TestPost_PeriodLocked() {
	ctx := context.Background()
	periodGuard := services.NewConfigPeriodGuard([]string{"2026-08"}, []string{"CONTROLLER"})
	lockedService := services.NewWorkflowService(
		suite.mockEntryRepo, suite.mockAccountSvc, suite.mockAuditRepo,
		services.NewConfigApproverPolicy([]string{suite.approver1}),
		periodGuard, false,
	)
	entry := suite.entryInStatus(domain.StatusApproved) // entry date 2026-08-15

	suite.mockEntryRepo.On("FindEntryByID", ctx, entry.EntryID).Return(entry, nil).Once()

	_, err := lockedService.Post(ctx, suite.entityID, entry.EntryID, suite.approver1)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrStateConflict)
	suite.ErrorIs(err, services.ErrPeriodLocked)
	suite.mockEntryRepo.AssertNotCalled(suite.T(), "PostEntry", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *WorkflowServiceTestSuite) TestPost_RepoStateConflictRecordsAttempt() {
	ctx := context.Background()
	auditingService := services.NewWorkflowService(
		suite.mockEntryRepo, suite.mockAccountSvc, suite.mockAuditRepo,
		services.NewConfigApproverPolicy([]string{suite.approver1, suite.approver2}),
		services.NewConfigPeriodGuard(nil, nil),
		true,
	)
	entry := suite.entryInStatus(domain.StatusApproved)
	lines := suite.balancedLines(entry.EntryID)
	accounts := map[string]domain.Account{
		suite.cashAccount.AccountID:    suite.cashAccount,
		suite.revenueAccount.AccountID: suite.revenueAccount,
	}

	suite.mockEntryRepo.On("FindEntryByID", ctx, entry.EntryID).Return(entry, nil).Once()
	suite.mockEntryRepo.On("FindLinesByEntryID", ctx, entry.EntryID).Return(lines, nil).Once()
	suite.mockAccountSvc.On("GetAccountsByIDs", ctx, suite.entityID, mock.AnythingOfType("[]string")).Return(accounts, nil).Once()
	suite.mockEntryRepo.On("PostEntry", ctx, entry.EntryID, mock.Anything, suite.approver1, mock.AnythingOfType("time.Time"), mock.Anything).
		Return(apperrors.ErrStateConflict).Once()
	suite.mockAuditRepo.On("Record", ctx, mock.MatchedBy(func(r domain.AuditLogEntry) bool {
		return r.Action == domain.ActionAttemptFailed && r.EntryID == entry.EntryID && r.Actor == suite.approver1
	})).Return(nil).Once()

	_, err := auditingService.Post(ctx, suite.entityID, entry.EntryID, suite.approver1)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrStateConflict)
	suite.mockAuditRepo.AssertExpectations(suite.T())
}

func (suite *WorkflowServiceTestSuite) TestPost_LockTimeoutSurfacesConcurrency() {
	ctx := context.Background()
	entry := suite.entryInStatus(domain.StatusApproved)
	lines := suite.balancedLines(entry.EntryID)
	accounts := map[string]domain.Account{
		suite.cashAccount.AccountID:    suite.cashAccount,
		suite.revenueAccount.AccountID: suite.revenueAccount,
	}

	suite.mockEntryRepo.On("FindEntryByID", ctx, entry.EntryID).Return(entry, nil).Once()
	suite.mockEntryRepo.On("FindLinesByEntryID", ctx, entry.EntryID).Return(lines, nil).Once()
	suite.mockAccountSvc.On("GetAccountsByIDs", ctx, suite.entityID, mock.AnythingOfType("[]string")).Return(accounts, nil).Once()
	suite.mockEntryRepo.On("PostEntry", ctx, entry.EntryID, mock.Anything, suite.approver1, mock.AnythingOfType("time.Time"), mock.Anything).
		Return(apperrors.ErrConcurrency).Once()

	_, err := suite.service.Post(ctx, suite.entityID, entry.EntryID, suite.approver1)

	// The loser of a lock race gets the retryable error, untranslated.
	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrConcurrency)
}

// --- Run Test Suite ---
func TestWorkflowService(t *testing.T) {
	suite.Run(t, new(WorkflowServiceTestSuite))
}
