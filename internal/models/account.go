package models

import "github.com/shopspring/decimal"

// Account is the accounts table row.
type Account struct {
	Number       string          `db:"number"`
	Label        string          `db:"label"`
	Class        int             `db:"class"`
	Nature       string          `db:"nature"`
	Type         string          `db:"account_type"`
	IsActive     bool            `db:"is_active"`
	Reconcilable bool            `db:"reconcilable"`
	ParentNumber string          `db:"parent_number"` // Nullable
	TotalDebit   decimal.Decimal `db:"total_debit"`
	TotalCredit  decimal.Decimal `db:"total_credit"`
	AuditFields
}
