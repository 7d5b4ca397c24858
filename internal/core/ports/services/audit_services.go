package services

import (
	"context"

	"github.com/OpenGescom/compta_ledger/internal/core/domain"
	"github.com/OpenGescom/compta_ledger/internal/dto"
)

// AuditSvcFacade exposes the append-only audit trail. No update or delete
// operations exist on this surface by design.
type AuditSvcFacade interface {
	RecordAction(ctx context.Context, req dto.RecordAuditRequest, userID, ip, userAgent string) (*domain.AuditRecord, error)
	ListByEntity(ctx context.Context, entityType, entityID string) ([]domain.AuditRecord, error)
	VerifyChain(ctx context.Context) (*dto.ChainReport, error)
}
