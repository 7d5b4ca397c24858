package services

import (
	"context"
	"time"

	"github.com/OpenGescom/compta_ledger/internal/core/domain"
	"github.com/OpenGescom/compta_ledger/internal/dto"
)

// ExerciseSvcFacade exposes fiscal exercise lifecycle operations.
type ExerciseSvcFacade interface {
	CreateExercise(ctx context.Context, req dto.CreateExerciseRequest, creatorUserID string) (*domain.FiscalExercise, error)
	GetExercise(ctx context.Context, exerciseID string) (*domain.FiscalExercise, error)
	FindExerciseForDate(ctx context.Context, date time.Time) (*domain.FiscalExercise, error)
	ListExercises(ctx context.Context) ([]domain.FiscalExercise, error)
	CloseExercise(ctx context.Context, exerciseID string, userID string) (*domain.FiscalExercise, error)
	ArchiveExercise(ctx context.Context, exerciseID string, userID string) error
	RecomputeTotals(ctx context.Context, exerciseID string, userID string) (domain.ExerciseTotals, error)
}
