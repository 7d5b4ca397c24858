package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/OpenGescom/compta_ledger/internal/core/domain"
	portsrepo "github.com/OpenGescom/compta_ledger/internal/core/ports/repositories"
	portssvc "github.com/OpenGescom/compta_ledger/internal/core/ports/services"
	"github.com/OpenGescom/compta_ledger/internal/dto"
	"github.com/OpenGescom/compta_ledger/internal/middleware"
	"github.com/google/uuid"
)

var (
	// ErrJustificationRequired is returned when a destructive or
	// administrative action is recorded without a justification.
	ErrJustificationRequired = errors.New("justification is required for this action")
	// ErrAuditChainBroken is returned when the audit chain walk finds a
	// record whose hash does not match its recomputation or its predecessor.
	ErrAuditChainBroken = errors.New("audit chain is broken")
)

// auditChainWalkPageSize bounds memory during full chain verification.
const auditChainWalkPageSize = 500

// auditService provides the append-only, hash-chained audit trail.
type auditService struct {
	auditRepo portsrepo.AuditRepository
}

// NewAuditService creates a new audit service.
func NewAuditService(auditRepo portsrepo.AuditRepository) portssvc.AuditSvcFacade {
	return &auditService{auditRepo: auditRepo}
}

var _ portssvc.AuditSvcFacade = (*auditService)(nil)

// RecordAction appends one action to the trail. Changed fields are derived
// from the old/new value maps; DELETE, ADMIN_UPDATE and BULK_UPDATE refuse
// to record without a justification.
func (s *auditService) RecordAction(ctx context.Context, req dto.RecordAuditRequest, userID, ip, userAgent string) (*domain.AuditRecord, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	action := domain.AuditAction(req.Action)
	if action.RequiresJustification() && req.Justification == "" {
		return nil, fmt.Errorf("%w: action %s", ErrJustificationRequired, action)
	}

	record := domain.AuditRecord{
		RecordID:      uuid.NewString(),
		EntityType:    req.EntityType,
		EntityID:      req.EntityID,
		Action:        action,
		OldValues:     req.OldValues,
		NewValues:     req.NewValues,
		ChangedFields: domain.DiffChangedFields(req.OldValues, req.NewValues),
		UserID:        userID,
		IP:            ip,
		UserAgent:     userAgent,
		Justification: req.Justification,
		// Truncated to the precision the timestamptz column keeps, so the
		// stored timestamp matches the one that was hashed.
		CreatedAt: time.Now().UTC().Truncate(time.Microsecond),
	}

	// Position, PreviousHash and RecordHash are finalized by the repository
	// under the chain lock; values set here would race other writers.
	saved, err := s.auditRepo.SaveRecord(ctx, record)
	if err != nil {
		logger.Error("Failed to record audit action",
			slog.String("entity_type", req.EntityType), slog.String("entity_id", req.EntityID),
			slog.String("action", req.Action), slog.String("error", err.Error()))
		return nil, err
	}

	logger.Info("Audit action recorded",
		slog.String("record_id", saved.RecordID),
		slog.String("entity_type", saved.EntityType),
		slog.String("entity_id", saved.EntityID),
		slog.String("action", string(saved.Action)),
	)
	return saved, nil
}

// ListByEntity returns the trail of one entity in creation order.
func (s *auditService) ListByEntity(ctx context.Context, entityType, entityID string) ([]domain.AuditRecord, error) {
	return s.auditRepo.ListRecordsByEntity(ctx, entityType, entityID)
}

// VerifyChain walks the whole audit trail in chain order, recomputing every
// record hash and checking each PreviousHash link.
func (s *auditService) VerifyChain(ctx context.Context) (*dto.ChainReport, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	report := &dto.ChainReport{
		ChainScope: "audit",
		Intact:     true,
		VerifiedAt: time.Now().UTC(),
	}

	previousHash := ""
	offset := 0
	for {
		records, err := s.auditRepo.ListRecords(ctx, auditChainWalkPageSize, offset)
		if err != nil {
			return nil, err
		}
		if len(records) == 0 {
			break
		}
		for i := range records {
			r := &records[i]
			report.RecordCount++
			recomputed, err := r.ComputeHash()
			if err != nil {
				return nil, err
			}
			if r.PreviousHash != previousHash || r.RecordHash != recomputed {
				report.Intact = false
				report.BrokenAt = r.RecordID
				report.BrokenPosition = r.Position
				logger.Error("Audit chain broken",
					slog.String("record_id", r.RecordID), slog.Int64("position", r.Position))
				return report, fmt.Errorf("%w: at position %d", ErrAuditChainBroken, r.Position)
			}
			previousHash = r.RecordHash
		}
		offset += len(records)
	}
	report.TailHash = previousHash

	logger.Info("Audit chain verified", slog.Int("record_count", report.RecordCount))
	return report, nil
}
