package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Entry is the entries table row.
type Entry struct {
	EntryID      string          `db:"entry_id"`
	JournalCode  string          `db:"journal_code"`
	ExerciseID   string          `db:"exercise_id"`
	EntryNumber  string          `db:"entry_number"`
	EntryDate    time.Time       `db:"entry_date"`
	Label        string          `db:"label"`
	SourceType   string          `db:"source_type"` // Nullable
	SourceNumber string          `db:"source_number"`
	SourceDate   *time.Time      `db:"source_date"`
	Validated    bool            `db:"validated"`
	ValidatedBy  string          `db:"validated_by"` // Nullable
	ValidatedAt  *time.Time      `db:"validated_at"`
	TotalDebit   decimal.Decimal `db:"total_debit"`
	TotalCredit  decimal.Decimal `db:"total_credit"`
	Balanced     bool            `db:"is_balanced"`
	AuditFields
}

// EntryLine is the entry_lines table row.
type EntryLine struct {
	LineID          string          `db:"line_id"`
	EntryID         string          `db:"entry_id"`
	AccountNumber   string          `db:"account_number"`
	AuxNumber       string          `db:"aux_number"` // Nullable
	AuxLabel        string          `db:"aux_label"`
	Label           string          `db:"label"`
	Debit           decimal.Decimal `db:"debit"`
	Credit          decimal.Decimal `db:"credit"`
	Lettrage        string          `db:"lettrage"` // Nullable
	LettrageDate    *time.Time      `db:"lettrage_date"`
	CurrencyAmount  decimal.Decimal `db:"currency_amount"`
	CurrencyCode    string          `db:"currency_code"` // Nullable
	CurrencyRate    decimal.Decimal `db:"currency_rate"`
	AnalyticCode    string          `db:"analytic_code"` // Nullable
	AnalyticPercent decimal.Decimal `db:"analytic_percent"`
	LineOrder       int             `db:"line_order"`
	AuditFields
}
