package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/OpenGescom/compta_ledger/internal/core/domain"
	"github.com/jackc/pgx/v5"
)

// Sentinel errors surfaced by repositories when a guarded mutation hits a
// business state rather than an infrastructure failure. Services wrap them
// into their own named errors.
var (
	// ErrExerciseNotOpen is returned when an entry mutation targets an
	// exercise that is CLOSED or ARCHIVED (or closure is in flight).
	ErrExerciseNotOpen = errors.New("fiscal exercise is not open")
	// ErrExerciseNotClosed is returned when archiving an exercise that is
	// not in the CLOSED state.
	ErrExerciseNotClosed = errors.New("fiscal exercise is not closed")
	// ErrExerciseUnbalanced is returned when closing an exercise that still
	// contains unbalanced entries.
	ErrExerciseUnbalanced = errors.New("fiscal exercise contains unbalanced entries")
	// ErrEntryValidated is returned when mutating an already validated entry.
	ErrEntryValidated = errors.New("entry is validated and locked")
	// ErrExerciseOverlap is returned when an exercise date range overlaps a
	// sibling exercise.
	ErrExerciseOverlap = errors.New("fiscal exercise dates overlap an existing exercise")
)

// RepositoryProvider bundles all repository implementations for injection
// into the service layer.
type RepositoryProvider struct {
	AccountRepo   AccountRepository
	JournalRepo   JournalRepository
	ExerciseRepo  ExerciseRepository
	EntryRepo     EntryRepository
	IntegrityRepo IntegrityRepository
	AuditRepo     AuditRepository
}

// AccountRepository defines the persistence operations for chart accounts.
type AccountRepository interface {
	SaveAccount(ctx context.Context, account domain.Account) error
	FindAccountByNumber(ctx context.Context, number string) (*domain.Account, error)
	FindAccountsByNumbers(ctx context.Context, numbers []string) (map[string]domain.Account, error)
	ListAccounts(ctx context.Context) ([]domain.Account, error)
	// ApplyBalanceChange adds to the running totals as an atomic SQL
	// increment, never application-level read-modify-write.
	ApplyBalanceChange(ctx context.Context, number string, change domain.BalanceChange, updatedBy string, updatedAt time.Time) error
	// ApplyBalanceChangesInTx applies a batch of balance changes inside an
	// ambient posting transaction.
	ApplyBalanceChangesInTx(ctx context.Context, tx pgx.Tx, changes map[string]domain.BalanceChange, updatedBy string, updatedAt time.Time) error
	DeactivateAccount(ctx context.Context, number string, updatedBy string, updatedAt time.Time) error
}

// JournalRepository defines the persistence operations for journals.
// NextSequenceNumber is the single numbering hot spot and is implemented as
// an atomic UPDATE .. RETURNING on the journal row.
type JournalRepository interface {
	SaveJournal(ctx context.Context, journal domain.Journal) error
	FindJournalByCode(ctx context.Context, code string) (*domain.Journal, error)
	ListJournals(ctx context.Context) ([]domain.Journal, error)
	// NextSequenceNumber issues the next number in its own short transaction.
	// A number once issued is consumed even if the caller discards it.
	NextSequenceNumber(ctx context.Context, code string, updatedBy string, updatedAt time.Time) (int64, error)
	// NextSequenceNumberInTx issues the next number inside an ambient
	// posting transaction.
	NextSequenceNumberInTx(ctx context.Context, tx pgx.Tx, code string, updatedBy string, updatedAt time.Time) (int64, error)
}

// ExerciseRepository defines the persistence operations for fiscal exercises.
type ExerciseRepository interface {
	// SaveExercise inserts a new exercise after checking that its range does
	// not overlap a sibling (ErrExerciseOverlap).
	SaveExercise(ctx context.Context, exercise domain.FiscalExercise) error
	FindExerciseByID(ctx context.Context, exerciseID string) (*domain.FiscalExercise, error)
	// FindExerciseForDate resolves the single exercise containing the date.
	FindExerciseForDate(ctx context.Context, date time.Time) (*domain.FiscalExercise, error)
	ListExercises(ctx context.Context) ([]domain.FiscalExercise, error)
	// CloseExercise locks the exercise row, recomputes and freezes totals,
	// and transitions OPEN -> CLOSED, all in one transaction. Returns
	// ErrExerciseNotOpen or ErrExerciseUnbalanced when refused.
	CloseExercise(ctx context.Context, exerciseID string, closedBy string, closedAt time.Time) (*domain.FiscalExercise, error)
	// ArchiveExercise transitions CLOSED -> ARCHIVED (ErrExerciseNotClosed otherwise).
	ArchiveExercise(ctx context.Context, exerciseID string, updatedBy string, updatedAt time.Time) error
	// ComputeTotals aggregates entry/line totals; deterministic and idempotent.
	ComputeTotals(ctx context.Context, exerciseID string) (domain.ExerciseTotals, error)
	// UpdateTotals persists recomputed running totals on an open exercise.
	UpdateTotals(ctx context.Context, exerciseID string, totals domain.ExerciseTotals, updatedBy string, updatedAt time.Time) error
}

// EntryRepository defines the persistence operations for entries and lines.
// SaveEntry spans the whole posting transaction: exercise check (FOR SHARE),
// journal numbering, entry + line inserts and account balance increments.
type EntryRepository interface {
	SaveEntry(ctx context.Context, journal domain.Journal, entry domain.Entry, changes map[string]domain.BalanceChange) (*domain.Entry, error)
	FindEntryByID(ctx context.Context, entryID string) (*domain.Entry, error)
	FindLinesByEntryID(ctx context.Context, entryID string) ([]domain.EntryLine, error)
	// FindLinesByExerciseID lists all lines of an exercise ordered by entry
	// number then line order (FEC export).
	FindLinesByExerciseID(ctx context.Context, exerciseID string) ([]domain.EntryLine, error)
	FindLinesByIDs(ctx context.Context, lineIDs []string) ([]domain.EntryLine, error)
	// AddLine appends a line to an unvalidated entry in an OPEN exercise,
	// updating entry totals and account balances in the same transaction.
	AddLine(ctx context.Context, entry domain.Entry, line domain.EntryLine, change domain.BalanceChange) error
	// MarkEntryValidated flips the validated flag exactly once
	// (ErrEntryValidated when already validated, ErrExerciseNotOpen when the
	// exercise no longer accepts mutations).
	MarkEntryValidated(ctx context.Context, entryID string, validatedBy string, validatedAt time.Time) error
	SetLettrage(ctx context.Context, lineIDs []string, code string, lettrageDate time.Time, updatedBy string) error
	ClearLettrage(ctx context.Context, lineIDs []string, updatedBy string, updatedAt time.Time) error
}

// IntegrityRepository defines the persistence operations for the document
// hash chain. SealRecord serializes writers per chain scope so PreviousHash
// always reflects the true immediately-preceding record.
type IntegrityRepository interface {
	SealRecord(ctx context.Context, record domain.IntegrityRecord) (*domain.IntegrityRecord, error)
	FindRecordByID(ctx context.Context, recordID string) (*domain.IntegrityRecord, error)
	ListRecordsByScope(ctx context.Context, scope string) ([]domain.IntegrityRecord, error)
	TailHash(ctx context.Context, scope string) (string, error)
	UpdateVerification(ctx context.Context, recordID string, status domain.IntegrityStatus, verifiedAt time.Time, updatedBy string) error
}

// AuditRepository defines the persistence operations for the append-only
// audit trail. There are deliberately no update or delete operations.
type AuditRepository interface {
	SaveRecord(ctx context.Context, record domain.AuditRecord) (*domain.AuditRecord, error)
	ListRecordsByEntity(ctx context.Context, entityType, entityID string) ([]domain.AuditRecord, error)
	// ListRecords returns records in chain order for verification walks.
	ListRecords(ctx context.Context, limit, offset int) ([]domain.AuditRecord, error)
}
