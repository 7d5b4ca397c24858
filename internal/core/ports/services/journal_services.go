package services

import (
	"context"
	"time"

	"github.com/OpenGescom/compta_ledger/internal/core/domain"
	"github.com/OpenGescom/compta_ledger/internal/dto"
)

// JournalSvcFacade exposes journal registration and entry numbering.
type JournalSvcFacade interface {
	RegisterJournal(ctx context.Context, req dto.CreateJournalRequest, creatorUserID string) (*domain.Journal, error)
	GetJournal(ctx context.Context, code string) (*domain.Journal, error)
	ListJournals(ctx context.Context) ([]domain.Journal, error)
	// NextEntryNumber issues and formats the next number of the journal.
	// Issued numbers are consumed even when the caller discards the entry.
	NextEntryNumber(ctx context.Context, code string, date time.Time, userID string) (*dto.NextNumberResponse, error)
}
