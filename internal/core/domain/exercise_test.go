package domain_test

import (
	"testing"
	"time"

	"github.com/OpenGescom/compta_ledger/internal/core/domain"
	"github.com/stretchr/testify/assert"
)

func TestExerciseStatus_CanTransitionTo(t *testing.T) {
	tests := []struct {
		from domain.ExerciseStatus
		to   domain.ExerciseStatus
		want bool
	}{
		{domain.Open, domain.Closed, true},
		{domain.Closed, domain.Archived, true},
		{domain.Open, domain.Archived, false},
		{domain.Closed, domain.Open, false},
		{domain.Archived, domain.Open, false},
		{domain.Archived, domain.Closed, false},
		{domain.Open, domain.Open, false},
	}
	for _, tt := range tests {
		assert.Equalf(t, tt.want, tt.from.CanTransitionTo(tt.to), "%s -> %s", tt.from, tt.to)
	}
}

func TestFiscalExercise_Contains(t *testing.T) {
	ex := domain.FiscalExercise{
		Year:      2025,
		StartDate: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC),
	}

	assert.True(t, ex.Contains(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)), "start date is inclusive")
	assert.True(t, ex.Contains(time.Date(2025, 12, 31, 23, 59, 0, 0, time.UTC)), "end date is inclusive regardless of time of day")
	assert.True(t, ex.Contains(time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)))
	assert.False(t, ex.Contains(time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC)))
	assert.False(t, ex.Contains(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)))
}

func TestFiscalExercise_IsOpen(t *testing.T) {
	ex := domain.FiscalExercise{Status: domain.Open}
	assert.True(t, ex.IsOpen())
	ex.Status = domain.Closed
	assert.False(t, ex.IsOpen())
	ex.Status = domain.Archived
	assert.False(t, ex.IsOpen())
}
