package pgsql

import (
	portsrepo "github.com/OpenGescom/compta_ledger/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5/pgxpool"
)

// NewRepositoryProvider wires all pgsql repositories against one pool.
func NewRepositoryProvider(dbPool *pgxpool.Pool) portsrepo.RepositoryProvider {
	accountRepo := newPgxAccountRepository(dbPool)
	journalRepo := newPgxJournalRepository(dbPool)
	exerciseRepo := newPgxExerciseRepository(dbPool)
	entryRepo := newPgxEntryRepository(dbPool, accountRepo, journalRepo)
	integrityRepo := newPgxIntegrityRepository(dbPool)
	auditRepo := newPgxAuditRepository(dbPool)

	return portsrepo.RepositoryProvider{
		AccountRepo:   accountRepo,
		JournalRepo:   journalRepo,
		ExerciseRepo:  exerciseRepo,
		EntryRepo:     entryRepo,
		IntegrityRepo: integrityRepo,
		AuditRepo:     auditRepo,
	}
}
