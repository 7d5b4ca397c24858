package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// AccountNature defines the fundamental accounting nature of an account.
type AccountNature string

const (
	Asset     AccountNature = "ASSET"
	Liability AccountNature = "LIABILITY"
	Expense   AccountNature = "EXPENSE"
	Revenue   AccountNature = "REVENUE"
)

// AccountType distinguishes general ledger accounts from third-party
// sub-ledgers (clients, suppliers) and analytic accounts.
type AccountType string

const (
	General    AccountType = "GENERAL"
	ThirdParty AccountType = "THIRD_PARTY"
	Analytic   AccountType = "ANALYTIC"
)

// Account is a node of the chart of accounts, identified by its PCG number
// (e.g. "411000"). The class digit is always derived from the first character
// of the number, never stored independently.
type Account struct {
	Number       string          `json:"number"` // Natural key
	Label        string          `json:"label"`
	Class        int             `json:"class"` // number[0], 1..8
	Nature       AccountNature   `json:"nature"`
	Type         AccountType     `json:"type"`
	IsActive     bool            `json:"isActive"`
	Reconcilable bool            `json:"reconcilable"`
	ParentNumber string          `json:"parentNumber"` // Nullable, parent node in the chart tree
	TotalDebit   decimal.Decimal `json:"totalDebit"`
	TotalCredit  decimal.Decimal `json:"totalCredit"`
	AuditFields
}

// AccountClass derives the class digit from an account number.
func AccountClass(number string) (int, error) {
	if number == "" {
		return 0, fmt.Errorf("account number is empty")
	}
	c := number[0]
	if c < '1' || c > '8' {
		return 0, fmt.Errorf("account number %q must start with a class digit 1-8", number)
	}
	return int(c - '0'), nil
}

// NewAccount builds an account with its class derived from the number.
func NewAccount(number, label string, nature AccountNature, accType AccountType) (Account, error) {
	class, err := AccountClass(number)
	if err != nil {
		return Account{}, err
	}
	return Account{
		Number:      number,
		Label:       label,
		Class:       class,
		Nature:      nature,
		Type:        accType,
		IsActive:    true,
		TotalDebit:  decimal.Zero,
		TotalCredit: decimal.Zero,
	}, nil
}

// Balance returns the running balance signed by nature: debit-positive for
// ASSET/EXPENSE accounts, credit-positive for LIABILITY/REVENUE accounts.
func (a *Account) Balance() decimal.Decimal {
	switch a.Nature {
	case Liability, Revenue:
		return a.TotalCredit.Sub(a.TotalDebit)
	default:
		return a.TotalDebit.Sub(a.TotalCredit)
	}
}

// BalanceChange is the net debit/credit to apply to one account when an
// entry is posted. Applied as atomic SQL increments, never read-modify-write.
type BalanceChange struct {
	Debit  decimal.Decimal
	Credit decimal.Decimal
}
