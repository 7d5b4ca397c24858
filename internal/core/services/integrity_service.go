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

// ErrChainBroken is returned when a full chain walk finds a link whose
// PreviousHash does not match its predecessor's DocumentHash.
var ErrChainBroken = errors.New("integrity chain is broken")

// integrityService provides the tamper-evident document hash chain.
type integrityService struct {
	integrityRepo portsrepo.IntegrityRepository
	entryRepo     portsrepo.EntryRepository
}

// NewIntegrityService creates a new integrity service. The entry repository
// lets VerifyDocument rebuild ledger entry content from storage; it may be
// nil when only caller-supplied content is verified.
func NewIntegrityService(integrityRepo portsrepo.IntegrityRepository, entryRepo portsrepo.EntryRepository) portssvc.IntegritySvcFacade {
	return &integrityService{integrityRepo: integrityRepo, entryRepo: entryRepo}
}

var _ portssvc.IntegritySvcFacade = (*integrityService)(nil)

// SealDocument hashes the document content and appends a record to the
// chain scope. The repository serializes writers per scope so the stored
// PreviousHash is always the true tail at insert time.
func (s *integrityService) SealDocument(ctx context.Context, req dto.SealDocumentRequest, userID, ip string) (*domain.IntegrityRecord, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	scope := req.ChainScope
	if scope == "" {
		scope = domain.DefaultChainScope
	}

	documentHash, err := domain.ComputeDocumentHash(req.Content)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	record := domain.IntegrityRecord{
		RecordID:       uuid.NewString(),
		ChainScope:     scope,
		DocumentType:   req.DocumentType,
		DocumentID:     req.DocumentID,
		DocumentNumber: req.DocumentNumber,
		HashAlgorithm:  domain.HashAlgorithmSHA256,
		DocumentHash:   documentHash,
		Status:         domain.NonVerifie,
		IP:             ip,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     userID,
			LastUpdatedAt: now,
			LastUpdatedBy: userID,
		},
	}

	// PreviousHash, Position and Signature are finalized by the repository
	// under the per-scope lock; values set here would race other writers.
	sealed, err := s.integrityRepo.SealRecord(ctx, record)
	if err != nil {
		logger.Error("Failed to seal document",
			slog.String("document_type", req.DocumentType), slog.String("document_id", req.DocumentID), slog.String("error", err.Error()))
		return nil, err
	}

	logger.Info("Document sealed",
		slog.String("record_id", sealed.RecordID),
		slog.String("chain_scope", sealed.ChainScope),
		slog.Int64("position", sealed.Position),
		slog.String("document_type", sealed.DocumentType),
	)
	return sealed, nil
}

// VerifyDocument recomputes the hash of the document's current content and
// compares it to the sealed hash. A mismatch flips the record to
// NON_CONFORME and is reported in the result, not as an error. When the
// caller supplies no content, documents of a known type are rebuilt from
// storage in their canonical seal projection.
func (s *integrityService) VerifyDocument(ctx context.Context, recordID string, content any, userID string) (*dto.VerificationReport, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	record, err := s.integrityRepo.FindRecordByID(ctx, recordID)
	if err != nil {
		return nil, err
	}

	if content == nil {
		content, err = s.resolveContent(ctx, record)
		if err != nil {
			return nil, err
		}
	}

	computed, err := domain.ComputeDocumentHash(content)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	status := domain.Conforme
	if computed != record.DocumentHash {
		status = domain.NonConforme
		logger.Warn("Document hash mismatch",
			slog.String("record_id", recordID),
			slog.String("document_type", record.DocumentType),
			slog.String("document_id", record.DocumentID),
		)
	}

	if err := s.integrityRepo.UpdateVerification(ctx, recordID, status, now, userID); err != nil {
		return nil, err
	}

	return &dto.VerificationReport{
		RecordID:     recordID,
		Match:        status == domain.Conforme,
		Status:       string(status),
		StoredHash:   record.DocumentHash,
		ComputedHash: computed,
		VerifiedAt:   now,
	}, nil
}

// resolveContent rebuilds the sealed content of a record from storage.
// Only document types with a canonical seal projection can be resolved.
func (s *integrityService) resolveContent(ctx context.Context, record *domain.IntegrityRecord) (any, error) {
	switch record.DocumentType {
	case domain.DocumentTypeLedgerEntry:
		if s.entryRepo == nil {
			return nil, fmt.Errorf("%w: no entry repository configured to resolve document content", apperrors.ErrValidation)
		}
		entry, err := s.entryRepo.FindEntryByID(ctx, record.DocumentID)
		if err != nil {
			return nil, err
		}
		return entry.SealPayload(), nil
	default:
		return nil, fmt.Errorf("%w: content is required to verify document type %s", apperrors.ErrValidation, record.DocumentType)
	}
}

// VerifyChain walks a whole chain scope in position order and checks every
// PreviousHash link. The report pinpoints the first broken link.
func (s *integrityService) VerifyChain(ctx context.Context, scope string) (*dto.ChainReport, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if scope == "" {
		scope = domain.DefaultChainScope
	}

	records, err := s.integrityRepo.ListRecordsByScope(ctx, scope)
	if err != nil {
		return nil, err
	}

	report := &dto.ChainReport{
		ChainScope:  scope,
		RecordCount: len(records),
		Intact:      true,
		VerifiedAt:  time.Now().UTC(),
	}

	previousHash := ""
	for i := range records {
		if records[i].PreviousHash != previousHash {
			report.Intact = false
			report.BrokenAt = records[i].RecordID
			report.BrokenPosition = records[i].Position
			break
		}
		previousHash = records[i].DocumentHash
	}
	if report.Intact && len(records) > 0 {
		report.TailHash = records[len(records)-1].DocumentHash
	}

	if !report.Intact {
		logger.Error("Integrity chain broken",
			slog.String("chain_scope", scope),
			slog.String("broken_at", report.BrokenAt),
			slog.Int64("broken_position", report.BrokenPosition),
		)
		return report, fmt.Errorf("%w: scope %s at position %d", ErrChainBroken, scope, report.BrokenPosition)
	}

	logger.Info("Integrity chain verified", slog.String("chain_scope", scope), slog.Int("record_count", report.RecordCount))
	return report, nil
}

// GetRecord retrieves an integrity record by ID.
func (s *integrityService) GetRecord(ctx context.Context, recordID string) (*domain.IntegrityRecord, error) {
	return s.integrityRepo.FindRecordByID(ctx, recordID)
}
