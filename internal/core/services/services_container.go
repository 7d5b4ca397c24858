package services

import (
	portsrepo "github.com/OpenGescom/compta_ledger/internal/core/ports/repositories"
	portssvc "github.com/OpenGescom/compta_ledger/internal/core/ports/services"
	"github.com/OpenGescom/compta_ledger/pkg/config"
)

// NewServiceContainer creates a new service container with properly
// initialized dependencies.
func NewServiceContainer(cfg *config.Config, repos portsrepo.RepositoryProvider) *portssvc.ServiceContainer {
	container := &portssvc.ServiceContainer{}

	// Audit and integrity come first since the other services record
	// through them.
	container.Audit = NewAuditService(repos.AuditRepo)
	container.Integrity = NewIntegrityService(repos.IntegrityRepo, repos.EntryRepo)

	container.Chart = NewChartService(repos.AccountRepo)
	container.Journal = NewJournalService(repos.JournalRepo, cfg.SequenceControlStrict)
	container.Exercise = NewExerciseService(repos.ExerciseRepo, container.Audit)

	container.Entry = NewEntryService(
		repos.EntryRepo,
		repos.JournalRepo,
		repos.ExerciseRepo,
		repos.AccountRepo,
		container.Integrity,
		container.Audit,
		cfg.SequenceControlStrict,
	)

	return container
}
