package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/OpenGescom/compta_ledger/internal/apperrors"
	"github.com/OpenGescom/compta_ledger/internal/core/domain"
	"github.com/OpenGescom/compta_ledger/internal/core/services"
	"github.com/OpenGescom/compta_ledger/internal/dto"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type JournalServiceTestSuite struct {
	suite.Suite
	mockJournalRepo *MockJournalRepository
	userID          string
}

func (suite *JournalServiceTestSuite) SetupTest() {
	suite.mockJournalRepo = new(MockJournalRepository)
	suite.userID = uuid.NewString()
}

func (suite *JournalServiceTestSuite) TestRegisterJournal_NormalizesCode() {
	ctx := context.Background()
	service := services.NewJournalService(suite.mockJournalRepo, false)

	suite.mockJournalRepo.On("SaveJournal", ctx, mock.AnythingOfType("domain.Journal")).
		Run(func(args mock.Arguments) {
			journal := args.Get(1).(domain.Journal)
			suite.Equal("VTE", journal.Code)
			suite.True(journal.SequenceControl)
			suite.Equal(int64(0), journal.LastSequence)
		}).Return(nil).Once()

	created, err := service.RegisterJournal(ctx, dto.CreateJournalRequest{
		Code:  "vte",
		Label: "Ventes",
		Type:  "SALES",
	}, suite.userID)

	suite.Require().NoError(err)
	suite.Equal("VTE", created.Code)
	suite.mockJournalRepo.AssertExpectations(suite.T())
}

func (suite *JournalServiceTestSuite) TestRegisterJournal_BadCode() {
	ctx := context.Background()
	service := services.NewJournalService(suite.mockJournalRepo, false)

	_, err := service.RegisterJournal(ctx, dto.CreateJournalRequest{
		Code:  "VENTES",
		Label: "Ventes",
		Type:  "SALES",
	}, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.mockJournalRepo.AssertNotCalled(suite.T(), "SaveJournal", mock.Anything, mock.Anything)
}

func (suite *JournalServiceTestSuite) TestNextEntryNumber_FormatsDefault() {
	ctx := context.Background()
	service := services.NewJournalService(suite.mockJournalRepo, false)
	journal := &domain.Journal{Code: "VTE", Type: domain.Sales, SequenceControl: true}

	suite.mockJournalRepo.On("FindJournalByCode", ctx, "VTE").Return(journal, nil).Once()
	suite.mockJournalRepo.On("NextSequenceNumber", ctx, "VTE", suite.userID, mock.AnythingOfType("time.Time")).
		Return(int64(42), nil).Once()

	resp, err := service.NextEntryNumber(ctx, "vte", time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC), suite.userID)

	suite.Require().NoError(err)
	suite.Equal("VTE20250042", resp.EntryNumber)
	suite.Equal(int64(42), resp.Sequence)
	suite.mockJournalRepo.AssertExpectations(suite.T())
}

func (suite *JournalServiceTestSuite) TestNextEntryNumber_StrictModeRefusal() {
	ctx := context.Background()
	service := services.NewJournalService(suite.mockJournalRepo, true)
	journal := &domain.Journal{Code: "ODX", Type: domain.Misc, SequenceControl: false}

	suite.mockJournalRepo.On("FindJournalByCode", ctx, "ODX").Return(journal, nil).Once()

	_, err := service.NextEntryNumber(ctx, "ODX", time.Now(), suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, services.ErrSequenceControlDisabled)
	suite.mockJournalRepo.AssertNotCalled(suite.T(), "NextSequenceNumber", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *JournalServiceTestSuite) TestNextEntryNumber_LaxModeAllows() {
	ctx := context.Background()
	service := services.NewJournalService(suite.mockJournalRepo, false)
	journal := &domain.Journal{Code: "ODX", Type: domain.Misc, SequenceControl: false}

	suite.mockJournalRepo.On("FindJournalByCode", ctx, "ODX").Return(journal, nil).Once()
	suite.mockJournalRepo.On("NextSequenceNumber", ctx, "ODX", suite.userID, mock.AnythingOfType("time.Time")).
		Return(int64(7), nil).Once()

	resp, err := service.NextEntryNumber(ctx, "ODX", time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC), suite.userID)

	suite.Require().NoError(err)
	suite.Equal("ODX20250007", resp.EntryNumber)
}

func TestJournalServiceTestSuite(t *testing.T) {
	suite.Run(t, new(JournalServiceTestSuite))
}
