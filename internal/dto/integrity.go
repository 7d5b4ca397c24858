package dto

import (
	"time"

	"github.com/OpenGescom/compta_ledger/internal/core/domain"
)

// SealDocumentRequest anchors an immutable document in the hash chain.
// Content is the document's canonical payload; it is hashed, not stored.
type SealDocumentRequest struct {
	ChainScope     string `json:"chainScope"` // Defaults to the shared document chain
	DocumentType   string `json:"documentType" binding:"required"`
	DocumentID     string `json:"documentID" binding:"required"`
	DocumentNumber string `json:"documentNumber"`
	Content        any    `json:"content" binding:"required"`
}

// VerifyDocumentRequest carries the document's current content for
// re-hashing against the sealed hash. Content may be omitted for document
// types the service can rebuild from storage, such as ledger entries.
type VerifyDocumentRequest struct {
	Content any `json:"content"`
}

// IntegrityRecordResponse is the public shape of an integrity record.
type IntegrityRecordResponse struct {
	RecordID         string     `json:"recordID"`
	ChainScope       string     `json:"chainScope"`
	Position         int64      `json:"position"`
	DocumentType     string     `json:"documentType"`
	DocumentID       string     `json:"documentID"`
	DocumentNumber   string     `json:"documentNumber,omitempty"`
	HashAlgorithm    string     `json:"hashAlgorithm"`
	DocumentHash     string     `json:"documentHash"`
	PreviousHash     string     `json:"previousHash,omitempty"`
	Status           string     `json:"status"`
	LastVerification *time.Time `json:"lastVerification,omitempty"`
}

// ToIntegrityRecordResponse converts a domain.IntegrityRecord to its DTO.
func ToIntegrityRecordResponse(r *domain.IntegrityRecord) IntegrityRecordResponse {
	return IntegrityRecordResponse{
		RecordID:         r.RecordID,
		ChainScope:       r.ChainScope,
		Position:         r.Position,
		DocumentType:     r.DocumentType,
		DocumentID:       r.DocumentID,
		DocumentNumber:   r.DocumentNumber,
		HashAlgorithm:    r.HashAlgorithm,
		DocumentHash:     r.DocumentHash,
		PreviousHash:     r.PreviousHash,
		Status:           string(r.Status),
		LastVerification: r.LastVerification,
	}
}

// VerificationReport is the outcome of verifying one document. A mismatch is
// a recorded status, not an error.
type VerificationReport struct {
	RecordID     string    `json:"recordID"`
	Match        bool      `json:"match"`
	Status       string    `json:"status"`
	StoredHash   string    `json:"storedHash"`
	ComputedHash string    `json:"computedHash"`
	VerifiedAt   time.Time `json:"verifiedAt"`
}

// ChainReport is the outcome of walking a whole chain in creation order.
type ChainReport struct {
	ChainScope     string    `json:"chainScope"`
	RecordCount    int       `json:"recordCount"`
	Intact         bool      `json:"intact"`
	BrokenAt       string    `json:"brokenAt,omitempty"` // RecordID of the first broken link
	BrokenPosition int64     `json:"brokenPosition,omitempty"`
	TailHash       string    `json:"tailHash,omitempty"`
	VerifiedAt     time.Time `json:"verifiedAt"`
}
