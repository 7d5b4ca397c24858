package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/OpenGescom/compta_ledger/internal/apperrors"
	"github.com/OpenGescom/compta_ledger/internal/core/domain"
	portsrepo "github.com/OpenGescom/compta_ledger/internal/core/ports/repositories"
	portssvc "github.com/OpenGescom/compta_ledger/internal/core/ports/services"
	"github.com/OpenGescom/compta_ledger/internal/dto"
	"github.com/OpenGescom/compta_ledger/internal/middleware"
	"github.com/google/uuid"
)

var (
	// ErrExerciseAlreadyClosed is returned when closing an exercise that is
	// no longer OPEN. Lifecycle transitions are monotonic: no reopening.
	ErrExerciseAlreadyClosed = errors.New("exercise is already closed or archived")
	// ErrUnbalancedExercise is returned when closing is refused because the
	// exercise still contains unbalanced entries. Closing never forces
	// balance; it refuses.
	ErrUnbalancedExercise = errors.New("exercise contains unbalanced entries")
	// ErrExerciseNotClosed is returned when archiving an exercise that has
	// not been closed first.
	ErrExerciseNotClosed = errors.New("exercise must be closed before archiving")
)

// exerciseService provides fiscal exercise lifecycle operations.
type exerciseService struct {
	exerciseRepo portsrepo.ExerciseRepository
	auditSvc     portssvc.AuditSvcFacade
}

// NewExerciseService creates a new exercise service. The audit facade may be
// nil in tests; lifecycle transitions are then not audited.
func NewExerciseService(exerciseRepo portsrepo.ExerciseRepository, auditSvc portssvc.AuditSvcFacade) portssvc.ExerciseSvcFacade {
	return &exerciseService{exerciseRepo: exerciseRepo, auditSvc: auditSvc}
}

var _ portssvc.ExerciseSvcFacade = (*exerciseService)(nil)

// CreateExercise opens a new fiscal exercise. Its date range must not
// overlap a sibling exercise: a date belongs to at most one exercise.
func (s *exerciseService) CreateExercise(ctx context.Context, req dto.CreateExerciseRequest, creatorUserID string) (*domain.FiscalExercise, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if !req.StartDate.Before(req.EndDate) {
		return nil, fmt.Errorf("%w: start date must precede end date", apperrors.ErrValidation)
	}

	now := time.Now().UTC()
	exercise := domain.FiscalExercise{
		ExerciseID: uuid.NewString(),
		Year:       req.Year,
		StartDate:  req.StartDate,
		EndDate:    req.EndDate,
		Status:     domain.Open,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     creatorUserID,
			LastUpdatedAt: now,
			LastUpdatedBy: creatorUserID,
		},
	}

	if err := s.exerciseRepo.SaveExercise(ctx, exercise); err != nil {
		if errors.Is(err, portsrepo.ErrExerciseOverlap) {
			return nil, fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
		}
		logger.Error("Failed to save exercise", slog.Int("year", req.Year), slog.String("error", err.Error()))
		return nil, err
	}

	logger.Info("Exercise created", slog.String("exercise_id", exercise.ExerciseID), slog.Int("year", exercise.Year))
	return &exercise, nil
}

// GetExercise retrieves an exercise by ID.
func (s *exerciseService) GetExercise(ctx context.Context, exerciseID string) (*domain.FiscalExercise, error) {
	return s.exerciseRepo.FindExerciseByID(ctx, exerciseID)
}

// FindExerciseForDate resolves the single exercise containing the date.
func (s *exerciseService) FindExerciseForDate(ctx context.Context, date time.Time) (*domain.FiscalExercise, error) {
	return s.exerciseRepo.FindExerciseForDate(ctx, date)
}

// ListExercises lists all exercises.
func (s *exerciseService) ListExercises(ctx context.Context) ([]domain.FiscalExercise, error) {
	return s.exerciseRepo.ListExercises(ctx)
}

// CloseExercise transitions OPEN -> CLOSED after recomputing and freezing
// totals. Closing is refused while any contained entry is unbalanced; the
// exercise then remains OPEN. The repository serializes closure against
// concurrent entry posting on the exercise row.
func (s *exerciseService) CloseExercise(ctx context.Context, exerciseID string, userID string) (*domain.FiscalExercise, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	closed, err := s.exerciseRepo.CloseExercise(ctx, exerciseID, userID, time.Now().UTC())
	if err != nil {
		switch {
		case errors.Is(err, portsrepo.ErrExerciseNotOpen):
			return nil, fmt.Errorf("%w: exercise %s", ErrExerciseAlreadyClosed, exerciseID)
		case errors.Is(err, portsrepo.ErrExerciseUnbalanced):
			return nil, fmt.Errorf("%w: %v", ErrUnbalancedExercise, err)
		}
		logger.Error("Failed to close exercise", slog.String("exercise_id", exerciseID), slog.String("error", err.Error()))
		return nil, err
	}

	s.audit(ctx, exerciseID, domain.ActionClose, userID, map[string]any{"status": string(domain.Open)}, map[string]any{
		"status":      string(domain.Closed),
		"totalDebit":  closed.TotalDebit.StringFixed(2),
		"totalCredit": closed.TotalCredit.StringFixed(2),
		"entryCount":  closed.EntryCount,
	})

	logger.Info("Exercise closed",
		slog.String("exercise_id", exerciseID),
		slog.String("total_debit", closed.TotalDebit.StringFixed(2)),
		slog.String("total_credit", closed.TotalCredit.StringFixed(2)),
		slog.Int64("entry_count", closed.EntryCount),
	)
	return closed, nil
}

// ArchiveExercise transitions CLOSED -> ARCHIVED. Archived is terminal.
func (s *exerciseService) ArchiveExercise(ctx context.Context, exerciseID string, userID string) error {
	logger := middleware.GetLoggerFromCtx(ctx)

	if err := s.exerciseRepo.ArchiveExercise(ctx, exerciseID, userID, time.Now().UTC()); err != nil {
		if errors.Is(err, portsrepo.ErrExerciseNotClosed) {
			return fmt.Errorf("%w: exercise %s", ErrExerciseNotClosed, exerciseID)
		}
		return err
	}

	s.audit(ctx, exerciseID, domain.ActionUpdate, userID,
		map[string]any{"status": string(domain.Closed)},
		map[string]any{"status": string(domain.Archived)})

	logger.Info("Exercise archived", slog.String("exercise_id", exerciseID))
	return nil
}

// RecomputeTotals recomputes running totals from all contained entries.
// Deterministic and idempotent; safe to call repeatedly. Totals are only
// persisted while the exercise is still OPEN (closed totals are frozen).
func (s *exerciseService) RecomputeTotals(ctx context.Context, exerciseID string, userID string) (domain.ExerciseTotals, error) {
	exercise, err := s.exerciseRepo.FindExerciseByID(ctx, exerciseID)
	if err != nil {
		return domain.ExerciseTotals{}, err
	}

	totals, err := s.exerciseRepo.ComputeTotals(ctx, exerciseID)
	if err != nil {
		return domain.ExerciseTotals{}, err
	}

	if exercise.IsOpen() {
		if err := s.exerciseRepo.UpdateTotals(ctx, exerciseID, totals, userID, time.Now().UTC()); err != nil {
			return domain.ExerciseTotals{}, err
		}
	}
	return totals, nil
}

// audit records a lifecycle action; failures are logged, never fatal.
func (s *exerciseService) audit(ctx context.Context, exerciseID string, action domain.AuditAction, userID string, oldValues, newValues map[string]any) {
	if s.auditSvc == nil {
		return
	}
	_, err := s.auditSvc.RecordAction(ctx, dto.RecordAuditRequest{
		EntityType: "fiscal_exercise",
		EntityID:   exerciseID,
		Action:     string(action),
		OldValues:  oldValues,
		NewValues:  newValues,
	}, userID, "", "")
	if err != nil {
		middleware.GetLoggerFromCtx(ctx).Warn("Failed to audit exercise action",
			slog.String("exercise_id", exerciseID), slog.String("action", string(action)), slog.String("error", err.Error()))
	}
}
