package services

import (
	"context"

	"github.com/OpenGescom/compta_ledger/internal/core/domain"
	"github.com/OpenGescom/compta_ledger/internal/dto"
	"github.com/shopspring/decimal"
)

// ChartSvcFacade exposes chart-of-accounts operations. Balance mutation is
// reserved to the posting service; handlers only read.
type ChartSvcFacade interface {
	RegisterAccount(ctx context.Context, req dto.CreateAccountRequest, creatorUserID string) (*domain.Account, error)
	GetAccount(ctx context.Context, number string) (*domain.Account, error)
	GetAccountsByNumbers(ctx context.Context, numbers []string) (map[string]domain.Account, error)
	ListAccounts(ctx context.Context) ([]domain.Account, error)
	GetBalance(ctx context.Context, number string) (decimal.Decimal, error)
	DebitAccount(ctx context.Context, number string, amount decimal.Decimal, userID string) error
	CreditAccount(ctx context.Context, number string, amount decimal.Decimal, userID string) error
	DeactivateAccount(ctx context.Context, number string, userID string) error
}
