package services_test

import (
	"context"
	"testing"

	"github.com/OpenGescom/compta_ledger/internal/apperrors"
	"github.com/OpenGescom/compta_ledger/internal/core/domain"
	portssvc "github.com/OpenGescom/compta_ledger/internal/core/ports/services"
	"github.com/OpenGescom/compta_ledger/internal/core/services"
	"github.com/OpenGescom/compta_ledger/internal/dto"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type ChartServiceTestSuite struct {
	suite.Suite
	mockAccountRepo *MockAccountRepository
	service         portssvc.ChartSvcFacade
	userID          string
}

func (suite *ChartServiceTestSuite) SetupTest() {
	suite.mockAccountRepo = new(MockAccountRepository)
	suite.service = services.NewChartService(suite.mockAccountRepo)
	suite.userID = uuid.NewString()
}

func (suite *ChartServiceTestSuite) TestRegisterAccount_DerivesClass() {
	ctx := context.Background()
	req := dto.CreateAccountRequest{
		Number: "411000",
		Label:  "Clients",
		Nature: "ASSET",
		Type:   "THIRD_PARTY",
	}

	suite.mockAccountRepo.On("SaveAccount", ctx, mock.AnythingOfType("domain.Account")).
		Run(func(args mock.Arguments) {
			account := args.Get(1).(domain.Account)
			suite.Equal(4, account.Class)
			suite.True(account.IsActive)
			suite.True(account.TotalDebit.IsZero())
		}).Return(nil).Once()

	created, err := suite.service.RegisterAccount(ctx, req, suite.userID)

	suite.Require().NoError(err)
	suite.Equal(4, created.Class)
	suite.mockAccountRepo.AssertExpectations(suite.T())
}

func (suite *ChartServiceTestSuite) TestRegisterAccount_BadClassDigit() {
	ctx := context.Background()
	req := dto.CreateAccountRequest{
		Number: "911000",
		Label:  "Hors plan",
		Nature: "ASSET",
		Type:   "GENERAL",
	}

	_, err := suite.service.RegisterAccount(ctx, req, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.mockAccountRepo.AssertNotCalled(suite.T(), "SaveAccount", mock.Anything, mock.Anything)
}

func (suite *ChartServiceTestSuite) TestRegisterAccount_MissingParent() {
	ctx := context.Background()
	req := dto.CreateAccountRequest{
		Number:       "411100",
		Label:        "Clients France",
		Nature:       "ASSET",
		Type:         "THIRD_PARTY",
		ParentNumber: "411000",
	}

	suite.mockAccountRepo.On("FindAccountByNumber", ctx, "411000").Return(nil, apperrors.ErrNotFound).Once()

	_, err := suite.service.RegisterAccount(ctx, req, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrNotFound)
}

func (suite *ChartServiceTestSuite) TestGetBalance_SignedByNature() {
	ctx := context.Background()
	revenue := &domain.Account{
		Number:      "706000",
		Nature:      domain.Revenue,
		IsActive:    true,
		TotalDebit:  decimal.NewFromInt(10),
		TotalCredit: decimal.NewFromInt(110),
	}

	suite.mockAccountRepo.On("FindAccountByNumber", ctx, "706000").Return(revenue, nil).Once()

	balance, err := suite.service.GetBalance(ctx, "706000")

	suite.Require().NoError(err)
	suite.True(balance.Equal(decimal.NewFromInt(100)), "credit-positive for revenue, got %s", balance)
}

func (suite *ChartServiceTestSuite) TestDebitAccount_InactiveRefused() {
	ctx := context.Background()
	inactive := &domain.Account{Number: "601000", Nature: domain.Expense, IsActive: false}

	suite.mockAccountRepo.On("FindAccountByNumber", ctx, "601000").Return(inactive, nil).Once()

	err := suite.service.DebitAccount(ctx, "601000", decimal.NewFromInt(50), suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, services.ErrAccountInactive)
	suite.mockAccountRepo.AssertNotCalled(suite.T(), "ApplyBalanceChange", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *ChartServiceTestSuite) TestCreditAccount_NonPositiveAmount() {
	ctx := context.Background()

	err := suite.service.CreditAccount(ctx, "411000", decimal.Zero, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, services.ErrAmountNotPositive)
	suite.mockAccountRepo.AssertNotCalled(suite.T(), "FindAccountByNumber", mock.Anything, mock.Anything)
}

func TestChartServiceTestSuite(t *testing.T) {
	suite.Run(t, new(ChartServiceTestSuite))
}
