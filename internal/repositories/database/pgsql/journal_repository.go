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

type PgxJournalRepository struct {
	BaseRepository
}

func newPgxJournalRepository(pool *pgxpool.Pool) *PgxJournalRepository {
	return &PgxJournalRepository{BaseRepository{Pool: pool}}
}

var _ portsrepo.JournalRepository = (*PgxJournalRepository)(nil)

func toDomainJournal(m models.Journal) domain.Journal {
	return domain.Journal{
		Code:                 m.Code,
		Label:                m.Label,
		Type:                 domain.JournalType(m.Type),
		LastSequence:         m.LastSequence,
		NumberFormat:         m.NumberFormat,
		DefaultContraAccount: m.DefaultContraAccount,
		SequenceControl:      m.SequenceControl,
		AuditFields: domain.AuditFields{
			CreatedAt:     m.CreatedAt,
			CreatedBy:     m.CreatedBy,
			LastUpdatedAt: m.LastUpdatedAt,
			LastUpdatedBy: m.LastUpdatedBy,
		},
	}
}

const journalColumns = `code, label, journal_type, last_sequence, number_format, default_contra_account, sequence_control, created_at, created_by, last_updated_at, last_updated_by`

func scanJournal(row pgx.Row) (*models.Journal, error) {
	var m models.Journal
	var numberFormat, contraAccount sql.NullString
	err := row.Scan(
		&m.Code, &m.Label, &m.Type, &m.LastSequence, &numberFormat, &contraAccount, &m.SequenceControl,
		&m.CreatedAt, &m.CreatedBy, &m.LastUpdatedAt, &m.LastUpdatedBy,
	)
	if err != nil {
		return nil, err
	}
	m.NumberFormat = numberFormat.String
	m.DefaultContraAccount = contraAccount.String
	return &m, nil
}

// SaveJournal inserts a new journal with its sequence at zero.
func (r *PgxJournalRepository) SaveJournal(ctx context.Context, journal domain.Journal) error {
	query := `
		INSERT INTO journals (` + journalColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11);
	`
	var numberFormat, contraAccount sql.NullString
	if journal.NumberFormat != "" {
		numberFormat = sql.NullString{String: journal.NumberFormat, Valid: true}
	}
	if journal.DefaultContraAccount != "" {
		contraAccount = sql.NullString{String: journal.DefaultContraAccount, Valid: true}
	}

	_, err := r.Pool.Exec(ctx, query,
		journal.Code, journal.Label, string(journal.Type), journal.LastSequence,
		numberFormat, contraAccount, journal.SequenceControl,
		journal.CreatedAt, journal.CreatedBy, journal.LastUpdatedAt, journal.LastUpdatedBy,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: journal %s already exists", apperrors.ErrDuplicate, journal.Code)
		}
		return fmt.Errorf("failed to save journal %s: %w", journal.Code, err)
	}
	return nil
}

// FindJournalByCode fetches one journal by its code.
func (r *PgxJournalRepository) FindJournalByCode(ctx context.Context, code string) (*domain.Journal, error) {
	query := `SELECT ` + journalColumns + ` FROM journals WHERE code = $1;`

	m, err := scanJournal(r.Pool.QueryRow(ctx, query, code))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: journal %s", apperrors.ErrNotFound, code)
		}
		return nil, fmt.Errorf("failed to find journal %s: %w", code, err)
	}
	journal := toDomainJournal(*m)
	return &journal, nil
}

// ListJournals returns all journals ordered by code.
func (r *PgxJournalRepository) ListJournals(ctx context.Context) ([]domain.Journal, error) {
	query := `SELECT ` + journalColumns + ` FROM journals ORDER BY code;`

	rows, err := r.Pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list journals: %w", err)
	}
	defer rows.Close()

	var journals []domain.Journal
	for rows.Next() {
		m, err := scanJournal(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan journal: %w", err)
		}
		journals = append(journals, toDomainJournal(*m))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read journals: %w", err)
	}
	return journals, nil
}

const nextSequenceQuery = `
	UPDATE journals
	SET last_sequence = last_sequence + 1, last_updated_at = $2, last_updated_by = $3
	WHERE code = $1
	RETURNING last_sequence;
`

// NextSequenceNumber atomically increments and returns the journal sequence.
// The UPDATE .. RETURNING form makes two concurrent callers serialize on the
// row lock and observe distinct values.
func (r *PgxJournalRepository) NextSequenceNumber(ctx context.Context, code string, updatedBy string, updatedAt time.Time) (int64, error) {
	var seq int64
	err := r.Pool.QueryRow(ctx, nextSequenceQuery, code, updatedAt, updatedBy).Scan(&seq)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, fmt.Errorf("%w: journal %s", apperrors.ErrNotFound, code)
		}
		return 0, fmt.Errorf("failed to issue sequence for journal %s: %w", code, err)
	}
	return seq, nil
}

// NextSequenceNumberInTx issues the next number inside an ambient posting
// transaction, holding the journal row lock until that transaction ends.
func (r *PgxJournalRepository) NextSequenceNumberInTx(ctx context.Context, tx pgx.Tx, code string, updatedBy string, updatedAt time.Time) (int64, error) {
	var seq int64
	err := tx.QueryRow(ctx, nextSequenceQuery, code, updatedAt, updatedBy).Scan(&seq)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, fmt.Errorf("%w: journal %s", apperrors.ErrNotFound, code)
		}
		return 0, fmt.Errorf("failed to issue sequence for journal %s: %w", code, err)
	}
	return seq, nil
}
