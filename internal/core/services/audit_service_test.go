package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/finacct/ledger_posting_app/internal/apperrors"
	"github.com/finacct/ledger_posting_app/internal/core/domain"
	portssvc "github.com/finacct/ledger_posting_app/internal/core/ports/services"
	"github.com/finacct/ledger_posting_app/internal/core/services"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type AuditServiceTestSuite struct {
	suite.Suite
	mockAuditRepo *MockAuditRepository
	mockEntryRepo *MockEntryRepository
	service       portssvc.AuditSvcFacade
	entityID      string
}

func (suite *AuditServiceTestSuite) SetupTest() {
	suite.mockAuditRepo = new(MockAuditRepository)
	suite.mockEntryRepo = new(MockEntryRepository)
	suite.service = services.NewAuditService(suite.mockAuditRepo, suite.mockEntryRepo)
	suite.entityID = uuid.NewString()
}

func (suite *AuditServiceTestSuite) TestGetHistory_Success() {
	ctx := context.Background()
	entryID := uuid.NewString()
	entry := &domain.JournalEntry{EntryID: entryID, EntityID: suite.entityID}
	records := []domain.AuditLogEntry{
		{AuditID: 1, EntryID: entryID, Action: domain.ActionCreated, OccurredAt: time.Now().UTC()},
		{AuditID: 2, EntryID: entryID, Action: domain.ActionSubmitted, OccurredAt: time.Now().UTC()},
	}

	suite.mockEntryRepo.On("FindEntryByID", ctx, entryID).Return(entry, nil).Once()
	suite.mockAuditRepo.On("ListByEntryID", ctx, entryID).Return(records, nil).Once()

	history, err := suite.service.GetHistory(ctx, suite.entityID, entryID)

	suite.Require().NoError(err)
	suite.Len(history, 2)
	suite.Equal(int64(1), history[0].AuditID)
	suite.Equal(string(domain.ActionSubmitted), string(history[1].Action))
	suite.mockAuditRepo.AssertExpectations(suite.T())
}

func (suite *AuditServiceTestSuite) TestGetHistory_WrongEntity() {
	ctx := context.Background()
	entryID := uuid.NewString()
	entry := &domain.JournalEntry{EntryID: entryID, EntityID: uuid.NewString()}

	suite.mockEntryRepo.On("FindEntryByID", ctx, entryID).Return(entry, nil).Once()

	_, err := suite.service.GetHistory(ctx, suite.entityID, entryID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrNotFound)
	suite.mockAuditRepo.AssertNotCalled(suite.T(), "ListByEntryID", mock.Anything, mock.Anything)
}

func (suite *AuditServiceTestSuite) TestGetHistory_EntryMissing() {
	ctx := context.Background()
	entryID := uuid.NewString()

	suite.mockEntryRepo.On("FindEntryByID", ctx, entryID).Return(nil, apperrors.ErrNotFound).Once()

	_, err := suite.service.GetHistory(ctx, suite.entityID, entryID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrNotFound)
}

// --- Run Test Suite ---
func TestAuditService(t *testing.T) {
	suite.Run(t, new(AuditServiceTestSuite))
}
