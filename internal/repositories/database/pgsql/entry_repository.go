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

type PgxEntryRepository struct {
	BaseRepository
	accountRepo *PgxAccountRepository
	journalRepo *PgxJournalRepository
}

func newPgxEntryRepository(pool *pgxpool.Pool, accountRepo *PgxAccountRepository, journalRepo *PgxJournalRepository) *PgxEntryRepository {
	return &PgxEntryRepository{
		BaseRepository: BaseRepository{Pool: pool},
		accountRepo:    accountRepo,
		journalRepo:    journalRepo,
	}
}

var _ portsrepo.EntryRepository = (*PgxEntryRepository)(nil)

func toDomainEntry(m models.Entry) domain.Entry {
	return domain.Entry{
		EntryID:      m.EntryID,
		JournalCode:  m.JournalCode,
		ExerciseID:   m.ExerciseID,
		EntryNumber:  m.EntryNumber,
		EntryDate:    m.EntryDate,
		Label:        m.Label,
		SourceType:   m.SourceType,
		SourceNumber: m.SourceNumber,
		SourceDate:   m.SourceDate,
		Validated:    m.Validated,
		ValidatedBy:  m.ValidatedBy,
		ValidatedAt:  m.ValidatedAt,
		TotalDebit:   m.TotalDebit,
		TotalCredit:  m.TotalCredit,
		Balanced:     m.Balanced,
		AuditFields: domain.AuditFields{
			CreatedAt:     m.CreatedAt,
			CreatedBy:     m.CreatedBy,
			LastUpdatedAt: m.LastUpdatedAt,
			LastUpdatedBy: m.LastUpdatedBy,
		},
	}
}

func toDomainEntryLine(m models.EntryLine) domain.EntryLine {
	return domain.EntryLine{
		LineID:          m.LineID,
		EntryID:         m.EntryID,
		AccountNumber:   m.AccountNumber,
		AuxNumber:       m.AuxNumber,
		AuxLabel:        m.AuxLabel,
		Label:           m.Label,
		Debit:           m.Debit,
		Credit:          m.Credit,
		Lettrage:        m.Lettrage,
		LettrageDate:    m.LettrageDate,
		CurrencyAmount:  m.CurrencyAmount,
		CurrencyCode:    m.CurrencyCode,
		CurrencyRate:    m.CurrencyRate,
		AnalyticCode:    m.AnalyticCode,
		AnalyticPercent: m.AnalyticPercent,
		LineOrder:       m.LineOrder,
		AuditFields: domain.AuditFields{
			CreatedAt:     m.CreatedAt,
			CreatedBy:     m.CreatedBy,
			LastUpdatedAt: m.LastUpdatedAt,
			LastUpdatedBy: m.LastUpdatedBy,
		},
	}
}

const entryColumns = `entry_id, journal_code, exercise_id, entry_number, entry_date, label, source_type, source_number, source_date, validated, validated_by, validated_at, total_debit, total_credit, is_balanced, created_at, created_by, last_updated_at, last_updated_by`

func scanEntry(row pgx.Row) (*models.Entry, error) {
	var m models.Entry
	var sourceType, sourceNumber, validatedBy sql.NullString
	err := row.Scan(
		&m.EntryID, &m.JournalCode, &m.ExerciseID, &m.EntryNumber, &m.EntryDate, &m.Label,
		&sourceType, &sourceNumber, &m.SourceDate,
		&m.Validated, &validatedBy, &m.ValidatedAt,
		&m.TotalDebit, &m.TotalCredit, &m.Balanced,
		&m.CreatedAt, &m.CreatedBy, &m.LastUpdatedAt, &m.LastUpdatedBy,
	)
	if err != nil {
		return nil, err
	}
	m.SourceType = sourceType.String
	m.SourceNumber = sourceNumber.String
	m.ValidatedBy = validatedBy.String
	return &m, nil
}

const lineColumns = `line_id, entry_id, account_number, aux_number, aux_label, label, debit, credit, lettrage, lettrage_date, currency_amount, currency_code, currency_rate, analytic_code, analytic_percent, line_order, created_at, created_by, last_updated_at, last_updated_by`

func scanEntryLine(row pgx.Row) (*models.EntryLine, error) {
	var m models.EntryLine
	var auxNumber, auxLabel, label, lettrage, currencyCode, analyticCode sql.NullString
	err := row.Scan(
		&m.LineID, &m.EntryID, &m.AccountNumber, &auxNumber, &auxLabel, &label,
		&m.Debit, &m.Credit, &lettrage, &m.LettrageDate,
		&m.CurrencyAmount, &currencyCode, &m.CurrencyRate,
		&analyticCode, &m.AnalyticPercent, &m.LineOrder,
		&m.CreatedAt, &m.CreatedBy, &m.LastUpdatedAt, &m.LastUpdatedBy,
	)
	if err != nil {
		return nil, err
	}
	m.AuxNumber = auxNumber.String
	m.AuxLabel = auxLabel.String
	m.Label = label.String
	m.Lettrage = lettrage.String
	m.CurrencyCode = currencyCode.String
	m.AnalyticCode = analyticCode.String
	return &m, nil
}

const insertLineQuery = `
	INSERT INTO entry_lines (` + lineColumns + `)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20);
`

func nullIfEmpty(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func queueInsertLine(batch *pgx.Batch, line domain.EntryLine) {
	batch.Queue(insertLineQuery,
		line.LineID, line.EntryID, line.AccountNumber,
		nullIfEmpty(line.AuxNumber), nullIfEmpty(line.AuxLabel), nullIfEmpty(line.Label),
		line.Debit, line.Credit, nullIfEmpty(line.Lettrage), line.LettrageDate,
		line.CurrencyAmount, nullIfEmpty(line.CurrencyCode), line.CurrencyRate,
		nullIfEmpty(line.AnalyticCode), line.AnalyticPercent, line.LineOrder,
		line.CreatedAt, line.CreatedBy, line.LastUpdatedAt, line.LastUpdatedBy,
	)
}

// lockExerciseForPosting takes a FOR SHARE lock on the exercise row and
// checks it is OPEN. Posting transactions share the lock among themselves
// but exclude the FOR UPDATE taken by closure.
func lockExerciseForPosting(ctx context.Context, tx pgx.Tx, exerciseID string) error {
	var status string
	query := `SELECT status FROM fiscal_exercises WHERE exercise_id = $1 FOR SHARE;`
	if err := tx.QueryRow(ctx, query, exerciseID).Scan(&status); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("%w: exercise %s", apperrors.ErrNotFound, exerciseID)
		}
		return fmt.Errorf("failed to lock exercise %s: %w", exerciseID, err)
	}
	if domain.ExerciseStatus(status) != domain.Open {
		return fmt.Errorf("%w: exercise %s is %s", portsrepo.ErrExerciseNotOpen, exerciseID, status)
	}
	return nil
}

// SaveEntry runs the whole posting transaction: exercise lock, journal
// numbering, entry and line inserts, account balance increments. Everything
// lands or nothing does; the issued number is only consumed on commit.
func (r *PgxEntryRepository) SaveEntry(ctx context.Context, journal domain.Journal, entry domain.Entry, changes map[string]domain.BalanceChange) (*domain.Entry, error) {
	tx, err := r.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer r.Rollback(ctx, tx)

	if err := lockExerciseForPosting(ctx, tx, entry.ExerciseID); err != nil {
		return nil, err
	}

	seq, err := r.journalRepo.NextSequenceNumberInTx(ctx, tx, journal.Code, entry.CreatedBy, entry.CreatedAt)
	if err != nil {
		return nil, err
	}
	entry.EntryNumber = journal.FormatEntryNumber(entry.EntryDate.Year(), seq)

	entryQuery := `
		INSERT INTO entries (` + entryColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19);
	`
	_, err = tx.Exec(ctx, entryQuery,
		entry.EntryID, entry.JournalCode, entry.ExerciseID, entry.EntryNumber, entry.EntryDate, entry.Label,
		nullIfEmpty(entry.SourceType), nullIfEmpty(entry.SourceNumber), entry.SourceDate,
		entry.Validated, nullIfEmpty(entry.ValidatedBy), entry.ValidatedAt,
		entry.TotalDebit, entry.TotalCredit, entry.Balanced,
		entry.CreatedAt, entry.CreatedBy, entry.LastUpdatedAt, entry.LastUpdatedBy,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("%w: entry number %s already exists in journal %s", apperrors.ErrDuplicate, entry.EntryNumber, journal.Code)
		}
		return nil, fmt.Errorf("failed to insert entry %s: %w", entry.EntryID, err)
	}

	batch := &pgx.Batch{}
	for i := range entry.Lines {
		entry.Lines[i].EntryID = entry.EntryID
		queueInsertLine(batch, entry.Lines[i])
	}
	br := tx.SendBatch(ctx, batch)
	if err := br.Close(); err != nil {
		return nil, fmt.Errorf("failed to insert lines for entry %s: %w", entry.EntryID, err)
	}

	if err := r.accountRepo.ApplyBalanceChangesInTx(ctx, tx, changes, entry.CreatedBy, entry.CreatedAt); err != nil {
		return nil, err
	}

	if err := r.Commit(ctx, tx); err != nil {
		return nil, err
	}
	return &entry, nil
}

// FindEntryByID fetches an entry with its lines.
func (r *PgxEntryRepository) FindEntryByID(ctx context.Context, entryID string) (*domain.Entry, error) {
	query := `SELECT ` + entryColumns + ` FROM entries WHERE entry_id = $1;`

	m, err := scanEntry(r.Pool.QueryRow(ctx, query, entryID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: entry %s", apperrors.ErrNotFound, entryID)
		}
		return nil, fmt.Errorf("failed to find entry %s: %w", entryID, err)
	}

	entry := toDomainEntry(*m)
	entry.Lines, err = r.FindLinesByEntryID(ctx, entryID)
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// FindLinesByEntryID lists the lines of one entry in line order.
func (r *PgxEntryRepository) FindLinesByEntryID(ctx context.Context, entryID string) ([]domain.EntryLine, error) {
	query := `SELECT ` + lineColumns + ` FROM entry_lines WHERE entry_id = $1 ORDER BY line_order;`
	return r.queryLines(ctx, query, entryID)
}

// FindLinesByExerciseID lists all lines of an exercise ordered by entry
// number then line order, the order the FEC export mandates.
func (r *PgxEntryRepository) FindLinesByExerciseID(ctx context.Context, exerciseID string) ([]domain.EntryLine, error) {
	query := `
		SELECT ` + qualifiedLineColumns + `
		FROM entry_lines l
		JOIN entries e ON e.entry_id = l.entry_id
		WHERE e.exercise_id = $1
		ORDER BY e.entry_number, l.line_order;
	`
	return r.queryLines(ctx, query, exerciseID)
}

const qualifiedLineColumns = `l.line_id, l.entry_id, l.account_number, l.aux_number, l.aux_label, l.label, l.debit, l.credit, l.lettrage, l.lettrage_date, l.currency_amount, l.currency_code, l.currency_rate, l.analytic_code, l.analytic_percent, l.line_order, l.created_at, l.created_by, l.last_updated_at, l.last_updated_by`

// FindLinesByIDs fetches a batch of lines by their IDs.
func (r *PgxEntryRepository) FindLinesByIDs(ctx context.Context, lineIDs []string) ([]domain.EntryLine, error) {
	if len(lineIDs) == 0 {
		return nil, nil
	}
	query := `SELECT ` + lineColumns + ` FROM entry_lines WHERE line_id = ANY($1) ORDER BY line_id;`
	return r.queryLines(ctx, query, lineIDs)
}

func (r *PgxEntryRepository) queryLines(ctx context.Context, query string, arg any) ([]domain.EntryLine, error) {
	rows, err := r.Pool.Query(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("failed to query entry lines: %w", err)
	}
	defer rows.Close()

	var lines []domain.EntryLine
	for rows.Next() {
		m, err := scanEntryLine(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan entry line: %w", err)
		}
		lines = append(lines, toDomainEntryLine(*m))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read entry lines: %w", err)
	}
	return lines, nil
}

// AddLine appends a line to an unvalidated entry, refreshing the entry
// totals and the account balance in the same transaction.
func (r *PgxEntryRepository) AddLine(ctx context.Context, entry domain.Entry, line domain.EntryLine, change domain.BalanceChange) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	if err := lockExerciseForPosting(ctx, tx, entry.ExerciseID); err != nil {
		return err
	}

	var validated bool
	lockQuery := `SELECT validated FROM entries WHERE entry_id = $1 FOR UPDATE;`
	if err := tx.QueryRow(ctx, lockQuery, entry.EntryID).Scan(&validated); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("%w: entry %s", apperrors.ErrNotFound, entry.EntryID)
		}
		return fmt.Errorf("failed to lock entry %s: %w", entry.EntryID, err)
	}
	if validated {
		return fmt.Errorf("%w: entry %s", portsrepo.ErrEntryValidated, entry.EntryID)
	}

	batch := &pgx.Batch{}
	queueInsertLine(batch, line)
	br := tx.SendBatch(ctx, batch)
	if err := br.Close(); err != nil {
		return fmt.Errorf("failed to insert line for entry %s: %w", entry.EntryID, err)
	}

	totalsQuery := `
		UPDATE entries
		SET total_debit = total_debit + $2,
		    total_credit = total_credit + $3,
		    is_balanced = (total_debit + $2 = total_credit + $3),
		    last_updated_at = $4,
		    last_updated_by = $5
		WHERE entry_id = $1;
	`
	if _, err := tx.Exec(ctx, totalsQuery, entry.EntryID, line.Debit, line.Credit, line.LastUpdatedAt, line.LastUpdatedBy); err != nil {
		return fmt.Errorf("failed to update totals for entry %s: %w", entry.EntryID, err)
	}

	changes := map[string]domain.BalanceChange{line.AccountNumber: change}
	if err := r.accountRepo.ApplyBalanceChangesInTx(ctx, tx, changes, line.LastUpdatedBy, line.LastUpdatedAt); err != nil {
		return err
	}

	return r.Commit(ctx, tx)
}

// MarkEntryValidated flips the validated flag exactly once.
func (r *PgxEntryRepository) MarkEntryValidated(ctx context.Context, entryID string, validatedBy string, validatedAt time.Time) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	var exerciseID string
	var validated bool
	lockQuery := `SELECT exercise_id, validated FROM entries WHERE entry_id = $1 FOR UPDATE;`
	if err := tx.QueryRow(ctx, lockQuery, entryID).Scan(&exerciseID, &validated); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("%w: entry %s", apperrors.ErrNotFound, entryID)
		}
		return fmt.Errorf("failed to lock entry %s: %w", entryID, err)
	}
	if validated {
		return fmt.Errorf("%w: entry %s", portsrepo.ErrEntryValidated, entryID)
	}
	if err := lockExerciseForPosting(ctx, tx, exerciseID); err != nil {
		return err
	}

	updateQuery := `
		UPDATE entries
		SET validated = TRUE, validated_by = $2, validated_at = $3, last_updated_at = $3, last_updated_by = $2
		WHERE entry_id = $1;
	`
	if _, err := tx.Exec(ctx, updateQuery, entryID, validatedBy, validatedAt); err != nil {
		return fmt.Errorf("failed to validate entry %s: %w", entryID, err)
	}

	return r.Commit(ctx, tx)
}

// SetLettrage marks a set of lines with a shared reconciliation code.
func (r *PgxEntryRepository) SetLettrage(ctx context.Context, lineIDs []string, code string, lettrageDate time.Time, updatedBy string) error {
	query := `
		UPDATE entry_lines
		SET lettrage = $2, lettrage_date = $3, last_updated_at = $3, last_updated_by = $4
		WHERE line_id = ANY($1);
	`
	tag, err := r.Pool.Exec(ctx, query, lineIDs, code, lettrageDate, updatedBy)
	if err != nil {
		return fmt.Errorf("failed to set lettrage %s: %w", code, err)
	}
	if tag.RowsAffected() != int64(len(lineIDs)) {
		return fmt.Errorf("%w: %d of %d lines updated", apperrors.ErrNotFound, tag.RowsAffected(), len(lineIDs))
	}
	return nil
}

// ClearLettrage removes the reconciliation marker from a set of lines.
func (r *PgxEntryRepository) ClearLettrage(ctx context.Context, lineIDs []string, updatedBy string, updatedAt time.Time) error {
	query := `
		UPDATE entry_lines
		SET lettrage = NULL, lettrage_date = NULL, last_updated_at = $2, last_updated_by = $3
		WHERE line_id = ANY($1);
	`
	tag, err := r.Pool.Exec(ctx, query, lineIDs, updatedAt, updatedBy)
	if err != nil {
		return fmt.Errorf("failed to clear lettrage: %w", err)
	}
	if tag.RowsAffected() != int64(len(lineIDs)) {
		return fmt.Errorf("%w: %d of %d lines updated", apperrors.ErrNotFound, tag.RowsAffected(), len(lineIDs))
	}
	return nil
}
