package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/OpenGescom/compta_ledger/internal/apperrors"
	"github.com/OpenGescom/compta_ledger/internal/core/domain"
	portsrepo "github.com/OpenGescom/compta_ledger/internal/core/ports/repositories"
	portssvc "github.com/OpenGescom/compta_ledger/internal/core/ports/services"
	"github.com/OpenGescom/compta_ledger/internal/dto"
	"github.com/OpenGescom/compta_ledger/internal/middleware"
	"github.com/shopspring/decimal"
)

var (
	// ErrAccountInactive is returned when a deactivated account is debited,
	// credited or targeted by an entry line.
	ErrAccountInactive = errors.New("account is deactivated")
	// ErrAmountNotPositive is returned for zero or negative amounts.
	ErrAmountNotPositive = errors.New("amount must be strictly positive")
)

// chartService provides chart-of-accounts operations.
type chartService struct {
	accountRepo portsrepo.AccountRepository
}

// NewChartService creates a new chart-of-accounts service.
func NewChartService(accountRepo portsrepo.AccountRepository) portssvc.ChartSvcFacade {
	return &chartService{accountRepo: accountRepo}
}

var _ portssvc.ChartSvcFacade = (*chartService)(nil)

// RegisterAccount adds a new account node to the chart. The class digit is
// derived from the number; registration fails on a duplicate number.
func (s *chartService) RegisterAccount(ctx context.Context, req dto.CreateAccountRequest, creatorUserID string) (*domain.Account, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	account, err := domain.NewAccount(req.Number, req.Label, domain.AccountNature(req.Nature), domain.AccountType(req.Type))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
	}
	account.Reconcilable = req.Reconcilable

	if req.ParentNumber != "" {
		if _, err := s.accountRepo.FindAccountByNumber(ctx, req.ParentNumber); err != nil {
			return nil, fmt.Errorf("parent account %s: %w", req.ParentNumber, err)
		}
		account.ParentNumber = req.ParentNumber
	}

	now := time.Now().UTC()
	account.AuditFields = domain.AuditFields{
		CreatedAt:     now,
		CreatedBy:     creatorUserID,
		LastUpdatedAt: now,
		LastUpdatedBy: creatorUserID,
	}

	if err := s.accountRepo.SaveAccount(ctx, account); err != nil {
		if !errors.Is(err, apperrors.ErrDuplicate) {
			logger.Error("Failed to save account", slog.String("number", account.Number), slog.String("error", err.Error()))
		}
		return nil, err
	}

	logger.Info("Account registered", slog.String("number", account.Number), slog.Int("class", account.Class))
	return &account, nil
}

// GetAccount retrieves an account by its number.
func (s *chartService) GetAccount(ctx context.Context, number string) (*domain.Account, error) {
	return s.accountRepo.FindAccountByNumber(ctx, number)
}

// GetAccountsByNumbers retrieves a batch of accounts keyed by number.
func (s *chartService) GetAccountsByNumbers(ctx context.Context, numbers []string) (map[string]domain.Account, error) {
	return s.accountRepo.FindAccountsByNumbers(ctx, numbers)
}

// ListAccounts lists all chart accounts.
func (s *chartService) ListAccounts(ctx context.Context) ([]domain.Account, error) {
	return s.accountRepo.ListAccounts(ctx)
}

// GetBalance returns the running balance signed by the account's nature.
func (s *chartService) GetBalance(ctx context.Context, number string) (decimal.Decimal, error) {
	account, err := s.accountRepo.FindAccountByNumber(ctx, number)
	if err != nil {
		return decimal.Zero, err
	}
	return account.Balance(), nil
}

// DebitAccount adds to the account's running debit total. Called exactly once
// per posted entry line by the posting service, never directly by UI code.
func (s *chartService) DebitAccount(ctx context.Context, number string, amount decimal.Decimal, userID string) error {
	return s.applyBalance(ctx, number, domain.BalanceChange{Debit: amount, Credit: decimal.Zero}, amount, userID)
}

// CreditAccount adds to the account's running credit total.
func (s *chartService) CreditAccount(ctx context.Context, number string, amount decimal.Decimal, userID string) error {
	return s.applyBalance(ctx, number, domain.BalanceChange{Debit: decimal.Zero, Credit: amount}, amount, userID)
}

func (s *chartService) applyBalance(ctx context.Context, number string, change domain.BalanceChange, amount decimal.Decimal, userID string) error {
	if !amount.IsPositive() {
		return fmt.Errorf("%w: got %s", ErrAmountNotPositive, amount.String())
	}
	account, err := s.accountRepo.FindAccountByNumber(ctx, number)
	if err != nil {
		return err
	}
	if !account.IsActive {
		return fmt.Errorf("%w: account %s", ErrAccountInactive, number)
	}
	return s.accountRepo.ApplyBalanceChange(ctx, number, change, userID, time.Now().UTC())
}

// DeactivateAccount flags an account inactive. Accounts referenced by entries
// are never hard-deleted.
func (s *chartService) DeactivateAccount(ctx context.Context, number string, userID string) error {
	logger := middleware.GetLoggerFromCtx(ctx)
	if err := s.accountRepo.DeactivateAccount(ctx, number, userID, time.Now().UTC()); err != nil {
		return err
	}
	logger.Info("Account deactivated", slog.String("number", number))
	return nil
}
