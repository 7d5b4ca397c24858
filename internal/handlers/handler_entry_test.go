package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/OpenGescom/compta_ledger/internal/apperrors"
	"github.com/OpenGescom/compta_ledger/internal/core/domain"
	portssvc "github.com/OpenGescom/compta_ledger/internal/core/ports/services"
	"github.com/OpenGescom/compta_ledger/internal/core/services"
	"github.com/OpenGescom/compta_ledger/internal/dto"
	"github.com/OpenGescom/compta_ledger/internal/handlers"
	"github.com/OpenGescom/compta_ledger/pkg/config"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"
)

// --- Mock ChartService ---
type MockChartService struct {
	mock.Mock
}

func (m *MockChartService) RegisterAccount(ctx context.Context, req dto.CreateAccountRequest, creatorUserID string) (*domain.Account, error) {
	args := m.Called(ctx, req, creatorUserID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}
func (m *MockChartService) GetAccount(ctx context.Context, number string) (*domain.Account, error) {
	args := m.Called(ctx, number)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}
func (m *MockChartService) GetAccountsByNumbers(ctx context.Context, numbers []string) (map[string]domain.Account, error) {
	args := m.Called(ctx, numbers)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]domain.Account), args.Error(1)
}
func (m *MockChartService) ListAccounts(ctx context.Context) ([]domain.Account, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Account), args.Error(1)
}
func (m *MockChartService) GetBalance(ctx context.Context, number string) (decimal.Decimal, error) {
	args := m.Called(ctx, number)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}
func (m *MockChartService) DebitAccount(ctx context.Context, number string, amount decimal.Decimal, userID string) error {
	args := m.Called(ctx, number, amount, userID)
	return args.Error(0)
}
func (m *MockChartService) CreditAccount(ctx context.Context, number string, amount decimal.Decimal, userID string) error {
	args := m.Called(ctx, number, amount, userID)
	return args.Error(0)
}
func (m *MockChartService) DeactivateAccount(ctx context.Context, number string, userID string) error {
	args := m.Called(ctx, number, userID)
	return args.Error(0)
}

var _ portssvc.ChartSvcFacade = (*MockChartService)(nil)

// --- Mock EntryService ---
type MockEntryService struct {
	mock.Mock
}

func (m *MockEntryService) PostEntry(ctx context.Context, req dto.PostEntryRequest, userID, ip string) (*domain.Entry, error) {
	args := m.Called(ctx, req, userID, ip)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Entry), args.Error(1)
}
func (m *MockEntryService) GetEntry(ctx context.Context, entryID string) (*domain.Entry, error) {
	args := m.Called(ctx, entryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Entry), args.Error(1)
}
func (m *MockEntryService) AddLine(ctx context.Context, entryID string, req dto.EntryLineRequest, userID string) (*domain.Entry, error) {
	args := m.Called(ctx, entryID, req, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Entry), args.Error(1)
}
func (m *MockEntryService) ValidateEntry(ctx context.Context, entryID string, userID string) (*domain.Entry, error) {
	args := m.Called(ctx, entryID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Entry), args.Error(1)
}
func (m *MockEntryService) ReconcileLines(ctx context.Context, req dto.ReconcileRequest, userID string) error {
	args := m.Called(ctx, req, userID)
	return args.Error(0)
}
func (m *MockEntryService) UnreconcileLines(ctx context.Context, lineIDs []string, userID string) error {
	args := m.Called(ctx, lineIDs, userID)
	return args.Error(0)
}
func (m *MockEntryService) ExportFEC(ctx context.Context, exerciseID string) (*dto.FECExportResponse, error) {
	args := m.Called(ctx, exerciseID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.FECExportResponse), args.Error(1)
}

var _ portssvc.EntrySvcFacade = (*MockEntryService)(nil)

// --- Test Suite ---

type EntryHandlerTestSuite struct {
	suite.Suite
	router           *gin.Engine
	jwtSecret        string
	mockChartService *MockChartService
	mockEntryService *MockEntryService
}

func (suite *EntryHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	suite.Require().NoError(handlers.RegisterCustomValidators())
	suite.router = gin.New()
	suite.jwtSecret = "test-secret-key-that-is-long-enough"

	suite.mockChartService = new(MockChartService)
	suite.mockEntryService = new(MockEntryService)

	cfg := &config.Config{
		JWTSecret:         suite.jwtSecret,
		JWTIssuer:         "compta-ledger-test",
		JWTExpiryDuration: time.Hour,
		IsProduction:      true, // Skip the dev token route in tests
	}

	rate := limiter.Rate{Period: time.Minute, Limit: 1000}
	limiterInstance := limiter.New(memory.NewStore(), rate)

	container := &portssvc.ServiceContainer{
		Chart: suite.mockChartService,
		Entry: suite.mockEntryService,
	}
	handlers.RegisterRoutes(suite.router, cfg, container, limiterInstance)
}

func (suite *EntryHandlerTestSuite) generateTestToken(userID string) string {
	claims := jwt.RegisteredClaims{
		Subject:   userID,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(suite.jwtSecret))
	suite.Require().NoError(err)
	return signed
}

func (suite *EntryHandlerTestSuite) doRequest(method, url string, body any, userID string) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		suite.Require().NoError(json.NewEncoder(&buf).Encode(body))
	}
	req, _ := http.NewRequest(method, url, &buf)
	req.Header.Set("Content-Type", "application/json")
	if userID != "" {
		req.Header.Set("Authorization", "Bearer "+suite.generateTestToken(userID))
	}
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	return w
}

// --- Test Cases ---

func (suite *EntryHandlerTestSuite) TestPostEntry_Success() {
	userID := uuid.NewString()
	entryID := uuid.NewString()

	req := dto.PostEntryRequest{
		JournalCode: "VTE",
		Date:        time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC),
		Label:       "Invoice F2025-101",
		Lines: []dto.EntryLineRequest{
			{AccountNumber: "411000", Debit: decimal.NewFromInt(120)},
			{AccountNumber: "706000", Credit: decimal.NewFromInt(120)},
		},
	}
	posted := &domain.Entry{
		EntryID:     entryID,
		JournalCode: "VTE",
		EntryNumber: "VTE20250001",
		EntryDate:   req.Date,
		Label:       req.Label,
		TotalDebit:  decimal.NewFromInt(120),
		TotalCredit: decimal.NewFromInt(120),
		Balanced:    true,
	}

	suite.mockEntryService.On("PostEntry",
		mock.Anything,
		mock.MatchedBy(func(r dto.PostEntryRequest) bool {
			return r.JournalCode == "VTE" && len(r.Lines) == 2
		}),
		userID,
		mock.AnythingOfType("string"),
	).Return(posted, nil).Once()

	w := suite.doRequest(http.MethodPost, "/api/v1/entries", req, userID)

	suite.Equal(http.StatusCreated, w.Code)
	var resp dto.EntryResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Equal("VTE20250001", resp.EntryNumber)
	suite.True(resp.IsBalanced)
	suite.mockEntryService.AssertExpectations(suite.T())
}

func (suite *EntryHandlerTestSuite) TestPostEntry_Unauthorized() {
	req := dto.PostEntryRequest{
		JournalCode: "VTE",
		Date:        time.Now(),
		Label:       "no token",
		Lines: []dto.EntryLineRequest{
			{AccountNumber: "411000", Debit: decimal.NewFromInt(10)},
			{AccountNumber: "706000", Credit: decimal.NewFromInt(10)},
		},
	}
	w := suite.doRequest(http.MethodPost, "/api/v1/entries", req, "")

	suite.Equal(http.StatusUnauthorized, w.Code)
	suite.mockEntryService.AssertNotCalled(suite.T(), "PostEntry")
}

func (suite *EntryHandlerTestSuite) TestPostEntry_ClosedExerciseConflict() {
	userID := uuid.NewString()
	req := dto.PostEntryRequest{
		JournalCode: "VTE",
		Date:        time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		Label:       "late posting",
		Lines: []dto.EntryLineRequest{
			{AccountNumber: "411000", Debit: decimal.NewFromInt(10)},
			{AccountNumber: "706000", Credit: decimal.NewFromInt(10)},
		},
	}

	suite.mockEntryService.On("PostEntry", mock.Anything, mock.Anything, userID, mock.Anything).
		Return(nil, fmt.Errorf("%w: exercise 2024", services.ErrExerciseClosed)).Once()

	w := suite.doRequest(http.MethodPost, "/api/v1/entries", req, userID)

	suite.Equal(http.StatusConflict, w.Code)
	suite.mockEntryService.AssertExpectations(suite.T())
}

func (suite *EntryHandlerTestSuite) TestValidateEntry_Unbalanced() {
	userID := uuid.NewString()
	entryID := uuid.NewString()

	suite.mockEntryService.On("ValidateEntry", mock.Anything, entryID, userID).
		Return(nil, fmt.Errorf("%w: entry %s", services.ErrEntryUnbalanced, entryID)).Once()

	w := suite.doRequest(http.MethodPost, "/api/v1/entries/"+entryID+"/validate", nil, userID)

	suite.Equal(http.StatusBadRequest, w.Code)
	suite.mockEntryService.AssertExpectations(suite.T())
}

func (suite *EntryHandlerTestSuite) TestGetAccount_NotFound() {
	userID := uuid.NewString()

	suite.mockChartService.On("GetAccount", mock.Anything, "999999").
		Return(nil, fmt.Errorf("%w: account 999999", apperrors.ErrNotFound)).Once()

	w := suite.doRequest(http.MethodGet, "/api/v1/accounts/999999", nil, userID)

	suite.Equal(http.StatusNotFound, w.Code)
	suite.mockChartService.AssertExpectations(suite.T())
}

func (suite *EntryHandlerTestSuite) TestGetAccountBalance_SignedByNature() {
	userID := uuid.NewString()
	account := &domain.Account{
		Number:      "706000",
		Label:       "Prestations de services",
		Class:       7,
		Nature:      domain.Revenue,
		IsActive:    true,
		TotalDebit:  decimal.NewFromInt(20),
		TotalCredit: decimal.NewFromInt(120),
	}

	suite.mockChartService.On("GetAccount", mock.Anything, "706000").
		Return(account, nil).Once()

	w := suite.doRequest(http.MethodGet, "/api/v1/accounts/706000/balance", nil, userID)

	suite.Equal(http.StatusOK, w.Code)
	var resp dto.AccountBalanceResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Equal("706000", resp.Number)
	suite.True(resp.Balance.Equal(decimal.NewFromInt(100)))
	suite.mockChartService.AssertExpectations(suite.T())
}

func (suite *EntryHandlerTestSuite) TestReconcileLines_NetNotZero() {
	userID := uuid.NewString()
	req := dto.ReconcileRequest{
		LineIDs: []string{uuid.NewString(), uuid.NewString()},
		Code:    "AA",
	}

	suite.mockEntryService.On("ReconcileLines", mock.Anything, mock.Anything, userID).
		Return(fmt.Errorf("%w: net is 20", services.ErrLettrageUnbalanced)).Once()

	w := suite.doRequest(http.MethodPost, "/api/v1/entries/lines/reconcile", req, userID)

	suite.Equal(http.StatusBadRequest, w.Code)
	suite.mockEntryService.AssertExpectations(suite.T())
}

func TestEntryHandler(t *testing.T) {
	suite.Run(t, new(EntryHandlerTestSuite))
}
