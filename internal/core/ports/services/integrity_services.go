package services

import (
	"context"

	"github.com/OpenGescom/compta_ledger/internal/core/domain"
	"github.com/OpenGescom/compta_ledger/internal/dto"
)

// IntegritySvcFacade exposes the tamper-evident document chain.
type IntegritySvcFacade interface {
	SealDocument(ctx context.Context, req dto.SealDocumentRequest, userID, ip string) (*domain.IntegrityRecord, error)
	// VerifyDocument recomputes the hash of the document's current content.
	// A mismatch flips the record to NON_CONFORME; it is not an error.
	VerifyDocument(ctx context.Context, recordID string, content any, userID string) (*dto.VerificationReport, error)
	VerifyChain(ctx context.Context, scope string) (*dto.ChainReport, error)
	GetRecord(ctx context.Context, recordID string) (*domain.IntegrityRecord, error)
}
