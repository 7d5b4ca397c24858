package dto

import (
	"github.com/OpenGescom/compta_ledger/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreateAccountRequest registers a new account node in the chart.
type CreateAccountRequest struct {
	Number       string `json:"number" binding:"required,numeric,min=3,max=12"`
	Label        string `json:"label" binding:"required"`
	Nature       string `json:"nature" binding:"required,oneof=ASSET LIABILITY EXPENSE REVENUE"`
	Type         string `json:"type" binding:"required,oneof=GENERAL THIRD_PARTY ANALYTIC"`
	ParentNumber string `json:"parentNumber"`
	Reconcilable bool   `json:"reconcilable"`
}

// AccountResponse is the public shape of an account.
type AccountResponse struct {
	Number       string          `json:"number"`
	Label        string          `json:"label"`
	Class        int             `json:"class"`
	Nature       string          `json:"nature"`
	Type         string          `json:"type"`
	IsActive     bool            `json:"isActive"`
	Reconcilable bool            `json:"reconcilable"`
	ParentNumber string          `json:"parentNumber,omitempty"`
	TotalDebit   decimal.Decimal `json:"totalDebit"`
	TotalCredit  decimal.Decimal `json:"totalCredit"`
	Balance      decimal.Decimal `json:"balance"`
}

// ToAccountResponse converts a domain.Account to its response DTO.
func ToAccountResponse(a *domain.Account) AccountResponse {
	return AccountResponse{
		Number:       a.Number,
		Label:        a.Label,
		Class:        a.Class,
		Nature:       string(a.Nature),
		Type:         string(a.Type),
		IsActive:     a.IsActive,
		Reconcilable: a.Reconcilable,
		ParentNumber: a.ParentNumber,
		TotalDebit:   a.TotalDebit,
		TotalCredit:  a.TotalCredit,
		Balance:      a.Balance(),
	}
}

// AccountBalanceResponse is the signed running balance of one account.
type AccountBalanceResponse struct {
	Number  string          `json:"number"`
	Nature  string          `json:"nature"`
	Balance decimal.Decimal `json:"balance"`
}
