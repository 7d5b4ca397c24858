package dto

import (
	"time"

	"github.com/OpenGescom/compta_ledger/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreateExerciseRequest opens a new fiscal exercise.
type CreateExerciseRequest struct {
	Year      int       `json:"year" binding:"required,min=1900,max=2200"`
	StartDate time.Time `json:"startDate" binding:"required"`
	EndDate   time.Time `json:"endDate" binding:"required"`
}

// ExerciseResponse is the public shape of a fiscal exercise.
type ExerciseResponse struct {
	ExerciseID  string          `json:"exerciseID"`
	Year        int             `json:"year"`
	StartDate   time.Time       `json:"startDate"`
	EndDate     time.Time       `json:"endDate"`
	Status      string          `json:"status"`
	TotalDebit  decimal.Decimal `json:"totalDebit"`
	TotalCredit decimal.Decimal `json:"totalCredit"`
	EntryCount  int64           `json:"entryCount"`
	LineCount   int64           `json:"lineCount"`
	ClosedBy    string          `json:"closedBy,omitempty"`
	ClosedAt    *time.Time      `json:"closedAt,omitempty"`
}

// ToExerciseResponse converts a domain.FiscalExercise to its response DTO.
func ToExerciseResponse(e *domain.FiscalExercise) ExerciseResponse {
	return ExerciseResponse{
		ExerciseID:  e.ExerciseID,
		Year:        e.Year,
		StartDate:   e.StartDate,
		EndDate:     e.EndDate,
		Status:      string(e.Status),
		TotalDebit:  e.TotalDebit,
		TotalCredit: e.TotalCredit,
		EntryCount:  e.EntryCount,
		LineCount:   e.LineCount,
		ClosedBy:    e.ClosedBy,
		ClosedAt:    e.ClosedAt,
	}
}

// FECExportResponse is the statutory flat export of an exercise.
type FECExportResponse struct {
	ExerciseID string          `json:"exerciseID"`
	Year       int             `json:"year"`
	Rows       []domain.FECRow `json:"rows"`
}
