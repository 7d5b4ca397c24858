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
)

// ErrSequenceControlDisabled is returned when strict sequence control is
// required by configuration but disabled on the journal.
var ErrSequenceControlDisabled = errors.New("sequence control is disabled for this journal")

// journalService provides journal registration and entry numbering.
type journalService struct {
	journalRepo    portsrepo.JournalRepository
	strictSequence bool
}

// NewJournalService creates a new journal service. When strictSequence is
// set, numbering is refused on journals with sequence control disabled.
func NewJournalService(journalRepo portsrepo.JournalRepository, strictSequence bool) portssvc.JournalSvcFacade {
	return &journalService{journalRepo: journalRepo, strictSequence: strictSequence}
}

var _ portssvc.JournalSvcFacade = (*journalService)(nil)

// RegisterJournal creates a new journal with an upper-cased 3-char code.
func (s *journalService) RegisterJournal(ctx context.Context, req dto.CreateJournalRequest, creatorUserID string) (*domain.Journal, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	code, err := domain.NormalizeJournalCode(req.Code)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
	}

	sequenceControl := true
	if req.SequenceControl != nil {
		sequenceControl = *req.SequenceControl
	}

	now := time.Now().UTC()
	journal := domain.Journal{
		Code:                 code,
		Label:                req.Label,
		Type:                 domain.JournalType(req.Type),
		LastSequence:         0,
		NumberFormat:         req.NumberFormat,
		DefaultContraAccount: req.DefaultContraAccount,
		SequenceControl:      sequenceControl,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     creatorUserID,
			LastUpdatedAt: now,
			LastUpdatedBy: creatorUserID,
		},
	}

	if err := s.journalRepo.SaveJournal(ctx, journal); err != nil {
		if !errors.Is(err, apperrors.ErrDuplicate) {
			logger.Error("Failed to save journal", slog.String("code", code), slog.String("error", err.Error()))
		}
		return nil, err
	}

	logger.Info("Journal registered", slog.String("code", code), slog.String("type", string(journal.Type)))
	return &journal, nil
}

// GetJournal retrieves a journal by its code.
func (s *journalService) GetJournal(ctx context.Context, code string) (*domain.Journal, error) {
	normalized, err := domain.NormalizeJournalCode(code)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
	}
	return s.journalRepo.FindJournalByCode(ctx, normalized)
}

// ListJournals lists all journals.
func (s *journalService) ListJournals(ctx context.Context) ([]domain.Journal, error) {
	return s.journalRepo.ListJournals(ctx)
}

// NextEntryNumber issues and formats the next entry number of the journal.
// The increment is atomic per journal row; a number once issued is consumed
// even if the caller discards the entry (gaps are acceptable). Never retry
// this operation blindly: it is intentionally not idempotent.
func (s *journalService) NextEntryNumber(ctx context.Context, code string, date time.Time, userID string) (*dto.NextNumberResponse, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	journal, err := s.GetJournal(ctx, code)
	if err != nil {
		return nil, err
	}
	if s.strictSequence && !journal.SequenceControl {
		return nil, fmt.Errorf("%w: journal %s", ErrSequenceControlDisabled, journal.Code)
	}

	seq, err := s.journalRepo.NextSequenceNumber(ctx, journal.Code, userID, time.Now().UTC())
	if err != nil {
		logger.Error("Failed to issue sequence number", slog.String("journal", journal.Code), slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to issue sequence number for journal %s: %w", journal.Code, err)
	}

	number := journal.FormatEntryNumber(date.Year(), seq)
	logger.Info("Entry number issued", slog.String("journal", journal.Code), slog.String("number", number))
	return &dto.NextNumberResponse{JournalCode: journal.Code, EntryNumber: number, Sequence: seq}, nil
}
