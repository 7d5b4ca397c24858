package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// FiscalExercise is the fiscal_exercises table row.
type FiscalExercise struct {
	ExerciseID  string          `db:"exercise_id"`
	Year        int             `db:"year"`
	StartDate   time.Time       `db:"start_date"`
	EndDate     time.Time       `db:"end_date"`
	Status      string          `db:"status"`
	TotalDebit  decimal.Decimal `db:"total_debit"`
	TotalCredit decimal.Decimal `db:"total_credit"`
	EntryCount  int64           `db:"entry_count"`
	LineCount   int64           `db:"line_count"`
	ClosedBy    string          `db:"closed_by"` // Nullable
	ClosedAt    *time.Time      `db:"closed_at"`
	ValidatedBy string          `db:"validated_by"` // Nullable
	AuditFields
}
