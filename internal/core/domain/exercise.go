package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ExerciseStatus is the lifecycle state of a fiscal exercise.
// Transitions are monotonic: OPEN -> CLOSED -> ARCHIVED, no reopening.
type ExerciseStatus string

const (
	Open     ExerciseStatus = "OPEN"
	Closed   ExerciseStatus = "CLOSED"
	Archived ExerciseStatus = "ARCHIVED"
)

// CanTransitionTo reports whether the lifecycle allows moving to next.
func (s ExerciseStatus) CanTransitionTo(next ExerciseStatus) bool {
	switch s {
	case Open:
		return next == Closed
	case Closed:
		return next == Archived
	default:
		return false
	}
}

// ExerciseTotals are the aggregates frozen at closing time.
type ExerciseTotals struct {
	TotalDebit  decimal.Decimal `json:"totalDebit"`
	TotalCredit decimal.Decimal `json:"totalCredit"`
	EntryCount  int64           `json:"entryCount"`
	LineCount   int64           `json:"lineCount"`
}

// FiscalExercise is a time-boxed accounting period. A date belongs to at
// most one exercise; entries may be created or modified only while their
// exercise is OPEN.
type FiscalExercise struct {
	ExerciseID string         `json:"exerciseID"`
	Year       int            `json:"year"`
	StartDate  time.Time      `json:"startDate"`
	EndDate    time.Time      `json:"endDate"`
	Status     ExerciseStatus `json:"status"`
	ExerciseTotals
	ClosedBy    string     `json:"closedBy"`
	ClosedAt    *time.Time `json:"closedAt"`
	ValidatedBy string     `json:"validatedBy"`
	AuditFields
}

// Contains is an inclusive range test against the exercise bounds.
// Only the calendar date matters, not the time of day.
func (e *FiscalExercise) Contains(date time.Time) bool {
	d := truncateToDay(date)
	return !d.Before(truncateToDay(e.StartDate)) && !d.After(truncateToDay(e.EndDate))
}

// IsOpen reports whether entries in this exercise may still be mutated.
func (e *FiscalExercise) IsOpen() bool {
	return e.Status == Open
}

func truncateToDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
