package services

import (
	"context"

	"github.com/OpenGescom/compta_ledger/internal/core/domain"
	"github.com/OpenGescom/compta_ledger/internal/dto"
)

// EntrySvcFacade exposes posting, validation, reconciliation and export of
// ledger entries.
type EntrySvcFacade interface {
	PostEntry(ctx context.Context, req dto.PostEntryRequest, userID, ip string) (*domain.Entry, error)
	GetEntry(ctx context.Context, entryID string) (*domain.Entry, error)
	AddLine(ctx context.Context, entryID string, req dto.EntryLineRequest, userID string) (*domain.Entry, error)
	ValidateEntry(ctx context.Context, entryID string, userID string) (*domain.Entry, error)
	ReconcileLines(ctx context.Context, req dto.ReconcileRequest, userID string) error
	UnreconcileLines(ctx context.Context, lineIDs []string, userID string) error
	ExportFEC(ctx context.Context, exerciseID string) (*dto.FECExportResponse, error)
}
