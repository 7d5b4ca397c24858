package pgsql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/OpenGescom/compta_ledger/internal/apperrors"
	"github.com/OpenGescom/compta_ledger/internal/core/domain"
	portsrepo "github.com/OpenGescom/compta_ledger/internal/core/ports/repositories"
	"github.com/OpenGescom/compta_ledger/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgxExerciseRepository struct {
	BaseRepository
}

func newPgxExerciseRepository(pool *pgxpool.Pool) *PgxExerciseRepository {
	return &PgxExerciseRepository{BaseRepository{Pool: pool}}
}

var _ portsrepo.ExerciseRepository = (*PgxExerciseRepository)(nil)

func toDomainExercise(m models.FiscalExercise) domain.FiscalExercise {
	return domain.FiscalExercise{
		ExerciseID: m.ExerciseID,
		Year:       m.Year,
		StartDate:  m.StartDate,
		EndDate:    m.EndDate,
		Status:     domain.ExerciseStatus(m.Status),
		ExerciseTotals: domain.ExerciseTotals{
			TotalDebit:  m.TotalDebit,
			TotalCredit: m.TotalCredit,
			EntryCount:  m.EntryCount,
			LineCount:   m.LineCount,
		},
		ClosedBy:    m.ClosedBy,
		ClosedAt:    m.ClosedAt,
		ValidatedBy: m.ValidatedBy,
		AuditFields: domain.AuditFields{
			CreatedAt:     m.CreatedAt,
			CreatedBy:     m.CreatedBy,
			LastUpdatedAt: m.LastUpdatedAt,
			LastUpdatedBy: m.LastUpdatedBy,
		},
	}
}

const exerciseColumns = `exercise_id, year, start_date, end_date, status, total_debit, total_credit, entry_count, line_count, closed_by, closed_at, validated_by, created_at, created_by, last_updated_at, last_updated_by`

func scanExercise(row pgx.Row) (*models.FiscalExercise, error) {
	var m models.FiscalExercise
	var closedBy, validatedBy sql.NullString
	err := row.Scan(
		&m.ExerciseID, &m.Year, &m.StartDate, &m.EndDate, &m.Status,
		&m.TotalDebit, &m.TotalCredit, &m.EntryCount, &m.LineCount,
		&closedBy, &m.ClosedAt, &validatedBy,
		&m.CreatedAt, &m.CreatedBy, &m.LastUpdatedAt, &m.LastUpdatedBy,
	)
	if err != nil {
		return nil, err
	}
	m.ClosedBy = closedBy.String
	m.ValidatedBy = validatedBy.String
	return &m, nil
}

// SaveExercise inserts a new exercise after verifying its date range does
// not overlap a sibling. Check and insert share one transaction so two
// concurrent creations cannot both pass the check.
func (r *PgxExerciseRepository) SaveExercise(ctx context.Context, exercise domain.FiscalExercise) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	// Serialize overlap checks across concurrent exercise creations.
	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext('fiscal_exercises'));`); err != nil {
		return fmt.Errorf("failed to lock exercise creation: %w", err)
	}

	var overlaps bool
	overlapQuery := `
		SELECT EXISTS (
			SELECT 1 FROM fiscal_exercises
			WHERE start_date <= $2 AND end_date >= $1
		);
	`
	if err := tx.QueryRow(ctx, overlapQuery, exercise.StartDate, exercise.EndDate).Scan(&overlaps); err != nil {
		return fmt.Errorf("failed to check exercise overlap: %w", err)
	}
	if overlaps {
		return fmt.Errorf("%w: [%s, %s]", portsrepo.ErrExerciseOverlap,
			exercise.StartDate.Format(time.DateOnly), exercise.EndDate.Format(time.DateOnly))
	}

	insertQuery := `
		INSERT INTO fiscal_exercises (` + exerciseColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NULL, NULL, NULL, $10, $11, $12, $13);
	`
	_, err = tx.Exec(ctx, insertQuery,
		exercise.ExerciseID, exercise.Year, exercise.StartDate, exercise.EndDate, string(exercise.Status),
		exercise.TotalDebit, exercise.TotalCredit, exercise.EntryCount, exercise.LineCount,
		exercise.CreatedAt, exercise.CreatedBy, exercise.LastUpdatedAt, exercise.LastUpdatedBy,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: exercise %s already exists", apperrors.ErrDuplicate, exercise.ExerciseID)
		}
		return fmt.Errorf("failed to save exercise %s: %w", exercise.ExerciseID, err)
	}

	return r.Commit(ctx, tx)
}

// FindExerciseByID fetches one exercise by ID.
func (r *PgxExerciseRepository) FindExerciseByID(ctx context.Context, exerciseID string) (*domain.FiscalExercise, error) {
	query := `SELECT ` + exerciseColumns + ` FROM fiscal_exercises WHERE exercise_id = $1;`

	m, err := scanExercise(r.Pool.QueryRow(ctx, query, exerciseID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: exercise %s", apperrors.ErrNotFound, exerciseID)
		}
		return nil, fmt.Errorf("failed to find exercise %s: %w", exerciseID, err)
	}
	exercise := toDomainExercise(*m)
	return &exercise, nil
}

// FindExerciseForDate resolves the single exercise whose range contains the
// date. Ranges never overlap, so at most one row matches.
func (r *PgxExerciseRepository) FindExerciseForDate(ctx context.Context, date time.Time) (*domain.FiscalExercise, error) {
	query := `SELECT ` + exerciseColumns + ` FROM fiscal_exercises WHERE start_date <= $1 AND end_date >= $1;`

	m, err := scanExercise(r.Pool.QueryRow(ctx, query, date))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: no exercise contains %s", apperrors.ErrNotFound, date.Format(time.DateOnly))
		}
		return nil, fmt.Errorf("failed to find exercise for date: %w", err)
	}
	exercise := toDomainExercise(*m)
	return &exercise, nil
}

// ListExercises returns all exercises in chronological order.
func (r *PgxExerciseRepository) ListExercises(ctx context.Context) ([]domain.FiscalExercise, error) {
	query := `SELECT ` + exerciseColumns + ` FROM fiscal_exercises ORDER BY start_date;`

	rows, err := r.Pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list exercises: %w", err)
	}
	defer rows.Close()

	var exercises []domain.FiscalExercise
	for rows.Next() {
		m, err := scanExercise(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan exercise: %w", err)
		}
		exercises = append(exercises, toDomainExercise(*m))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read exercises: %w", err)
	}
	return exercises, nil
}

const computeTotalsQuery = `
	SELECT COALESCE(SUM(l.debit), 0), COALESCE(SUM(l.credit), 0),
	       COUNT(DISTINCT e.entry_id), COUNT(l.line_id)
	FROM entries e
	LEFT JOIN entry_lines l ON l.entry_id = e.entry_id
	WHERE e.exercise_id = $1;
`

// CloseExercise transitions OPEN -> CLOSED with totals frozen from the
// entries as they stand. The FOR UPDATE lock on the exercise row excludes
// concurrent posting, which takes FOR SHARE on the same row.
func (r *PgxExerciseRepository) CloseExercise(ctx context.Context, exerciseID string, closedBy string, closedAt time.Time) (*domain.FiscalExercise, error) {
	tx, err := r.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer r.Rollback(ctx, tx)

	var status string
	lockQuery := `SELECT status FROM fiscal_exercises WHERE exercise_id = $1 FOR UPDATE;`
	if err := tx.QueryRow(ctx, lockQuery, exerciseID).Scan(&status); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: exercise %s", apperrors.ErrNotFound, exerciseID)
		}
		return nil, fmt.Errorf("failed to lock exercise %s: %w", exerciseID, err)
	}
	if domain.ExerciseStatus(status) != domain.Open {
		return nil, fmt.Errorf("%w: exercise %s is %s", portsrepo.ErrExerciseNotOpen, exerciseID, status)
	}

	var unbalancedCount int64
	unbalancedQuery := `SELECT COUNT(*) FROM entries WHERE exercise_id = $1 AND NOT is_balanced;`
	if err := tx.QueryRow(ctx, unbalancedQuery, exerciseID).Scan(&unbalancedCount); err != nil {
		return nil, fmt.Errorf("failed to count unbalanced entries: %w", err)
	}
	if unbalancedCount > 0 {
		return nil, fmt.Errorf("%w: %d unbalanced entries in exercise %s", portsrepo.ErrExerciseUnbalanced, unbalancedCount, exerciseID)
	}

	var totals domain.ExerciseTotals
	if err := tx.QueryRow(ctx, computeTotalsQuery, exerciseID).Scan(
		&totals.TotalDebit, &totals.TotalCredit, &totals.EntryCount, &totals.LineCount,
	); err != nil {
		return nil, fmt.Errorf("failed to compute exercise totals: %w", err)
	}

	updateQuery := `
		UPDATE fiscal_exercises
		SET status = $2, total_debit = $3, total_credit = $4, entry_count = $5, line_count = $6,
		    closed_by = $7, closed_at = $8, last_updated_at = $8, last_updated_by = $7
		WHERE exercise_id = $1;
	`
	if _, err := tx.Exec(ctx, updateQuery, exerciseID, string(domain.Closed),
		totals.TotalDebit, totals.TotalCredit, totals.EntryCount, totals.LineCount,
		closedBy, closedAt,
	); err != nil {
		return nil, fmt.Errorf("failed to close exercise %s: %w", exerciseID, err)
	}

	selectQuery := `SELECT ` + exerciseColumns + ` FROM fiscal_exercises WHERE exercise_id = $1;`
	m, err := scanExercise(tx.QueryRow(ctx, selectQuery, exerciseID))
	if err != nil {
		return nil, fmt.Errorf("failed to reload exercise %s: %w", exerciseID, err)
	}

	if err := r.Commit(ctx, tx); err != nil {
		return nil, err
	}
	closed := toDomainExercise(*m)
	return &closed, nil
}

// ArchiveExercise transitions CLOSED -> ARCHIVED.
func (r *PgxExerciseRepository) ArchiveExercise(ctx context.Context, exerciseID string, updatedBy string, updatedAt time.Time) error {
	query := `
		UPDATE fiscal_exercises
		SET status = $2, last_updated_at = $3, last_updated_by = $4
		WHERE exercise_id = $1 AND status = $5;
	`
	tag, err := r.Pool.Exec(ctx, query, exerciseID, string(domain.Archived), updatedAt, updatedBy, string(domain.Closed))
	if err != nil {
		return fmt.Errorf("failed to archive exercise %s: %w", exerciseID, err)
	}
	if tag.RowsAffected() == 0 {
		// Distinguish a missing exercise from one in the wrong state.
		var status string
		err := r.Pool.QueryRow(ctx, `SELECT status FROM fiscal_exercises WHERE exercise_id = $1;`, exerciseID).Scan(&status)
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("%w: exercise %s", apperrors.ErrNotFound, exerciseID)
		}
		if err != nil {
			return fmt.Errorf("failed to check exercise %s: %w", exerciseID, err)
		}
		return fmt.Errorf("%w: exercise %s is %s", portsrepo.ErrExerciseNotClosed, exerciseID, status)
	}
	return nil
}

// ComputeTotals aggregates the totals of all entries in the exercise.
func (r *PgxExerciseRepository) ComputeTotals(ctx context.Context, exerciseID string) (domain.ExerciseTotals, error) {
	var totals domain.ExerciseTotals
	err := r.Pool.QueryRow(ctx, computeTotalsQuery, exerciseID).Scan(
		&totals.TotalDebit, &totals.TotalCredit, &totals.EntryCount, &totals.LineCount,
	)
	if err != nil {
		return domain.ExerciseTotals{}, fmt.Errorf("failed to compute totals for exercise %s: %w", exerciseID, err)
	}
	return totals, nil
}

// UpdateTotals persists recomputed running totals on an OPEN exercise only.
func (r *PgxExerciseRepository) UpdateTotals(ctx context.Context, exerciseID string, totals domain.ExerciseTotals, updatedBy string, updatedAt time.Time) error {
	query := `
		UPDATE fiscal_exercises
		SET total_debit = $2, total_credit = $3, entry_count = $4, line_count = $5,
		    last_updated_at = $6, last_updated_by = $7
		WHERE exercise_id = $1 AND status = $8;
	`
	tag, err := r.Pool.Exec(ctx, query, exerciseID,
		totals.TotalDebit, totals.TotalCredit, totals.EntryCount, totals.LineCount,
		updatedAt, updatedBy, string(domain.Open),
	)
	if err != nil {
		return fmt.Errorf("failed to update totals for exercise %s: %w", exerciseID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: exercise %s", portsrepo.ErrExerciseNotOpen, exerciseID)
	}
	return nil
}
