package handlers

import (
	"log/slog"
	"net/http"

	portssvc "github.com/OpenGescom/compta_ledger/internal/core/ports/services"
	"github.com/OpenGescom/compta_ledger/internal/dto"
	"github.com/OpenGescom/compta_ledger/internal/middleware"
	"github.com/gin-gonic/gin"
)

// accountHandler handles HTTP requests related to the chart of accounts.
type accountHandler struct {
	chartService portssvc.ChartSvcFacade
}

func newAccountHandler(cs portssvc.ChartSvcFacade) *accountHandler {
	return &accountHandler{chartService: cs}
}

// registerAccountRoutes registers routes related to accounts.
func registerAccountRoutes(rg *gin.RouterGroup, chartService portssvc.ChartSvcFacade) {
	h := newAccountHandler(chartService)

	accounts := rg.Group("/accounts")
	{
		accounts.POST("", h.createAccount)
		accounts.GET("", h.listAccounts)
		accounts.GET("/:number", h.getAccount)
		accounts.GET("/:number/balance", h.getAccountBalance)
		accounts.DELETE("/:number", h.deactivateAccount)
	}
}

// createAccount godoc
// @Summary Register a new account
// @Description Registers a new account node in the chart of accounts
// @Tags accounts
// @Accept  json
// @Produce  json
// @Param   account body dto.CreateAccountRequest true "Account details"
// @Success 201 {object} dto.AccountResponse
// @Failure 400 {object} map[string]string "Invalid input format or validation error"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 409 {object} map[string]string "Account number already registered"
// @Security BearerAuth
// @Router /accounts [post]
func (h *accountHandler) createAccount(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.CreateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for createAccount", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	creatorUserID, ok := middleware.GetUserIDFromCtx(c.Request.Context())
	if !ok {
		logger.Error("Creator user ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	logger = logger.With(slog.String("account_number", req.Number))
	account, err := h.chartService.RegisterAccount(c.Request.Context(), req, creatorUserID)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to register account")
		return
	}

	logger.Info("Account registered")
	c.JSON(http.StatusCreated, dto.ToAccountResponse(account))
}

// getAccount godoc
// @Summary Get an account by number
// @Tags accounts
// @Produce  json
// @Param   number path string true "Account number"
// @Success 200 {object} dto.AccountResponse
// @Failure 404 {object} map[string]string "Account not found"
// @Security BearerAuth
// @Router /accounts/{number} [get]
func (h *accountHandler) getAccount(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	number := c.Param("number")

	account, err := h.chartService.GetAccount(c.Request.Context(), number)
	if err != nil {
		respondServiceError(c, logger.With(slog.String("account_number", number)), err, "Failed to retrieve account")
		return
	}
	c.JSON(http.StatusOK, dto.ToAccountResponse(account))
}

// listAccounts godoc
// @Summary List all accounts in the chart
// @Tags accounts
// @Produce  json
// @Success 200 {array} dto.AccountResponse
// @Security BearerAuth
// @Router /accounts [get]
func (h *accountHandler) listAccounts(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	accounts, err := h.chartService.ListAccounts(c.Request.Context())
	if err != nil {
		respondServiceError(c, logger, err, "Failed to list accounts")
		return
	}

	responses := make([]dto.AccountResponse, len(accounts))
	for i := range accounts {
		responses[i] = dto.ToAccountResponse(&accounts[i])
	}
	c.JSON(http.StatusOK, responses)
}

// getAccountBalance godoc
// @Summary Get the signed balance of an account
// @Description Returns the running balance signed by account nature
// @Tags accounts
// @Produce  json
// @Param   number path string true "Account number"
// @Success 200 {object} dto.AccountBalanceResponse
// @Failure 404 {object} map[string]string "Account not found"
// @Security BearerAuth
// @Router /accounts/{number}/balance [get]
func (h *accountHandler) getAccountBalance(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	number := c.Param("number")

	account, err := h.chartService.GetAccount(c.Request.Context(), number)
	if err != nil {
		respondServiceError(c, logger.With(slog.String("account_number", number)), err, "Failed to retrieve account")
		return
	}

	c.JSON(http.StatusOK, dto.AccountBalanceResponse{
		Number:  account.Number,
		Nature:  string(account.Nature),
		Balance: account.Balance(),
	})
}

// deactivateAccount godoc
// @Summary Deactivate an account
// @Description Marks the account inactive; history is preserved, accounts are never deleted
// @Tags accounts
// @Produce  json
// @Param   number path string true "Account number"
// @Success 204 "Account deactivated"
// @Failure 404 {object} map[string]string "Account not found"
// @Security BearerAuth
// @Router /accounts/{number} [delete]
func (h *accountHandler) deactivateAccount(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	number := c.Param("number")

	userID, ok := middleware.GetUserIDFromCtx(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	if err := h.chartService.DeactivateAccount(c.Request.Context(), number, userID); err != nil {
		respondServiceError(c, logger.With(slog.String("account_number", number)), err, "Failed to deactivate account")
		return
	}

	logger.Info("Account deactivated", slog.String("account_number", number))
	c.Status(http.StatusNoContent)
}
