package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/OpenGescom/compta_ledger/internal/apperrors"
	"github.com/OpenGescom/compta_ledger/internal/core/domain"
	portsrepo "github.com/OpenGescom/compta_ledger/internal/core/ports/repositories"
	portssvc "github.com/OpenGescom/compta_ledger/internal/core/ports/services"
	"github.com/OpenGescom/compta_ledger/internal/core/services"
	"github.com/OpenGescom/compta_ledger/internal/dto"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type ExerciseServiceTestSuite struct {
	suite.Suite
	mockExerciseRepo *MockExerciseRepository
	mockAudit        *MockAuditService
	service          portssvc.ExerciseSvcFacade
	userID           string
}

func (suite *ExerciseServiceTestSuite) SetupTest() {
	suite.mockExerciseRepo = new(MockExerciseRepository)
	suite.mockAudit = new(MockAuditService)
	suite.service = services.NewExerciseService(suite.mockExerciseRepo, suite.mockAudit)
	suite.userID = uuid.NewString()
}

func (suite *ExerciseServiceTestSuite) TestCreateExercise_Success() {
	ctx := context.Background()
	req := dto.CreateExerciseRequest{
		Year:      2025,
		StartDate: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC),
	}

	suite.mockExerciseRepo.On("SaveExercise", ctx, mock.AnythingOfType("domain.FiscalExercise")).
		Run(func(args mock.Arguments) {
			exercise := args.Get(1).(domain.FiscalExercise)
			suite.Equal(domain.Open, exercise.Status)
			suite.Equal(2025, exercise.Year)
			suite.NotEmpty(exercise.ExerciseID)
		}).Return(nil).Once()

	created, err := suite.service.CreateExercise(ctx, req, suite.userID)

	suite.Require().NoError(err)
	suite.Equal(domain.Open, created.Status)
	suite.mockExerciseRepo.AssertExpectations(suite.T())
}

func (suite *ExerciseServiceTestSuite) TestCreateExercise_InvertedDates() {
	ctx := context.Background()
	req := dto.CreateExerciseRequest{
		Year:      2025,
		StartDate: time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	}

	_, err := suite.service.CreateExercise(ctx, req, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.mockExerciseRepo.AssertNotCalled(suite.T(), "SaveExercise", mock.Anything, mock.Anything)
}

func (suite *ExerciseServiceTestSuite) TestCreateExercise_Overlap() {
	ctx := context.Background()
	req := dto.CreateExerciseRequest{
		Year:      2025,
		StartDate: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC),
	}

	suite.mockExerciseRepo.On("SaveExercise", ctx, mock.AnythingOfType("domain.FiscalExercise")).
		Return(portsrepo.ErrExerciseOverlap).Once()

	_, err := suite.service.CreateExercise(ctx, req, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
}

func (suite *ExerciseServiceTestSuite) TestCloseExercise_Success() {
	ctx := context.Background()
	exerciseID := uuid.NewString()
	closedAt := time.Now().UTC()
	closed := &domain.FiscalExercise{
		ExerciseID: exerciseID,
		Year:       2025,
		Status:     domain.Closed,
		ExerciseTotals: domain.ExerciseTotals{
			TotalDebit:  decimal.NewFromInt(1200),
			TotalCredit: decimal.NewFromInt(1200),
			EntryCount:  4,
			LineCount:   11,
		},
		ClosedBy: suite.userID,
		ClosedAt: &closedAt,
	}

	suite.mockExerciseRepo.On("CloseExercise", ctx, exerciseID, suite.userID, mock.AnythingOfType("time.Time")).
		Return(closed, nil).Once()
	suite.mockAudit.On("RecordAction", ctx, mock.AnythingOfType("dto.RecordAuditRequest"), suite.userID, "", "").
		Return(&domain.AuditRecord{RecordID: uuid.NewString()}, nil).Once()

	result, err := suite.service.CloseExercise(ctx, exerciseID, suite.userID)

	suite.Require().NoError(err)
	suite.Equal(domain.Closed, result.Status)
	suite.True(result.TotalDebit.Equal(result.TotalCredit))
	suite.mockExerciseRepo.AssertExpectations(suite.T())
	suite.mockAudit.AssertExpectations(suite.T())
}

func (suite *ExerciseServiceTestSuite) TestCloseExercise_Unbalanced() {
	ctx := context.Background()
	exerciseID := uuid.NewString()

	suite.mockExerciseRepo.On("CloseExercise", ctx, exerciseID, suite.userID, mock.AnythingOfType("time.Time")).
		Return(nil, portsrepo.ErrExerciseUnbalanced).Once()

	_, err := suite.service.CloseExercise(ctx, exerciseID, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, services.ErrUnbalancedExercise)
	suite.mockAudit.AssertNotCalled(suite.T(), "RecordAction", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *ExerciseServiceTestSuite) TestCloseExercise_AlreadyClosed() {
	ctx := context.Background()
	exerciseID := uuid.NewString()

	suite.mockExerciseRepo.On("CloseExercise", ctx, exerciseID, suite.userID, mock.AnythingOfType("time.Time")).
		Return(nil, portsrepo.ErrExerciseNotOpen).Once()

	_, err := suite.service.CloseExercise(ctx, exerciseID, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, services.ErrExerciseAlreadyClosed)
}

func (suite *ExerciseServiceTestSuite) TestArchiveExercise_NotClosed() {
	ctx := context.Background()
	exerciseID := uuid.NewString()

	suite.mockExerciseRepo.On("ArchiveExercise", ctx, exerciseID, suite.userID, mock.AnythingOfType("time.Time")).
		Return(portsrepo.ErrExerciseNotClosed).Once()

	err := suite.service.ArchiveExercise(ctx, exerciseID, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, services.ErrExerciseNotClosed)
}

func (suite *ExerciseServiceTestSuite) TestRecomputeTotals_OpenPersists() {
	ctx := context.Background()
	exerciseID := uuid.NewString()
	open := &domain.FiscalExercise{ExerciseID: exerciseID, Status: domain.Open}
	totals := domain.ExerciseTotals{
		TotalDebit:  decimal.NewFromInt(500),
		TotalCredit: decimal.NewFromInt(500),
		EntryCount:  2,
		LineCount:   4,
	}

	suite.mockExerciseRepo.On("FindExerciseByID", ctx, exerciseID).Return(open, nil).Once()
	suite.mockExerciseRepo.On("ComputeTotals", ctx, exerciseID).Return(totals, nil).Once()
	suite.mockExerciseRepo.On("UpdateTotals", ctx, exerciseID, totals, suite.userID, mock.AnythingOfType("time.Time")).Return(nil).Once()

	result, err := suite.service.RecomputeTotals(ctx, exerciseID, suite.userID)

	suite.Require().NoError(err)
	suite.Equal(int64(2), result.EntryCount)
	suite.mockExerciseRepo.AssertExpectations(suite.T())
}

func (suite *ExerciseServiceTestSuite) TestRecomputeTotals_ClosedIsReadOnly() {
	ctx := context.Background()
	exerciseID := uuid.NewString()
	closed := &domain.FiscalExercise{ExerciseID: exerciseID, Status: domain.Closed}
	totals := domain.ExerciseTotals{TotalDebit: decimal.NewFromInt(500), TotalCredit: decimal.NewFromInt(500)}

	suite.mockExerciseRepo.On("FindExerciseByID", ctx, exerciseID).Return(closed, nil).Once()
	suite.mockExerciseRepo.On("ComputeTotals", ctx, exerciseID).Return(totals, nil).Once()

	_, err := suite.service.RecomputeTotals(ctx, exerciseID, suite.userID)

	suite.Require().NoError(err)
	suite.mockExerciseRepo.AssertNotCalled(suite.T(), "UpdateTotals", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestExerciseServiceTestSuite(t *testing.T) {
	suite.Run(t, new(ExerciseServiceTestSuite))
}
