package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"
)

// IntegrityStatus is the verification state of a sealed document.
// A verification mismatch is a recorded outcome, not an error.
type IntegrityStatus string

const (
	Conforme    IntegrityStatus = "VALIDE"
	NonConforme IntegrityStatus = "NON_CONFORME"
	NonVerifie  IntegrityStatus = "NON_VERIFIE"
)

// HashAlgorithmSHA256 is the only algorithm currently produced.
const HashAlgorithmSHA256 = "SHA-256"

// DefaultChainScope is the chain used when callers do not segment documents
// into separate chains.
const DefaultChainScope = "documents"

// DocumentTypeLedgerEntry marks records whose content the service can
// rebuild from storage, so verification needs no caller-supplied content.
const DocumentTypeLedgerEntry = "ledger_entry"

// IntegrityRecord anchors one immutable financial document in a hash chain:
// record n's PreviousHash equals record n-1's DocumentHash within the same
// chain scope. PreviousHash is empty only for the first record of a scope.
type IntegrityRecord struct {
	RecordID         string          `json:"recordID"`
	ChainScope       string          `json:"chainScope"`
	Position         int64           `json:"position"` // 1-based rank within the chain
	DocumentType     string          `json:"documentType"`
	DocumentID       string          `json:"documentID"`
	DocumentNumber   string          `json:"documentNumber"`
	HashAlgorithm    string          `json:"hashAlgorithm"`
	DocumentHash     string          `json:"documentHash"`
	PreviousHash     string          `json:"previousHash"`
	Signature        string          `json:"signature"`
	Status           IntegrityStatus `json:"status"`
	LastVerification *time.Time      `json:"lastVerification"`
	AnchorTxID       string          `json:"anchorTxID"` // Optional external anchor
	AnchorURL        string          `json:"anchorURL"`
	IP               string          `json:"ip"`
	AuditFields
}

// ComputeDocumentHash hashes the canonical JSON serialization of content.
// The content is round-tripped through encoding/json so that struct inputs
// and map inputs of the same shape hash identically (object keys sorted).
func ComputeDocumentHash(content any) (string, error) {
	raw, err := json.Marshal(content)
	if err != nil {
		return "", fmt.Errorf("failed to serialize document content: %w", err)
	}
	var normalized any
	if err := json.Unmarshal(raw, &normalized); err != nil {
		return "", fmt.Errorf("failed to normalize document content: %w", err)
	}
	canonical, err := json.Marshal(normalized)
	if err != nil {
		return "", fmt.Errorf("failed to canonicalize document content: %w", err)
	}
	sum := sha256.Sum256(canonical)
	return hex.EncodeToString(sum[:]), nil
}

// ComputeSignature derives the signature payload binding the document hash to
// its chain position and predecessor.
func (r *IntegrityRecord) ComputeSignature() string {
	payload := fmt.Sprintf("%s|%s|%s|%s|%s", r.ChainScope, r.DocumentType, r.DocumentID, r.DocumentHash, r.PreviousHash)
	sum := sha256.Sum256([]byte(payload))
	return hex.EncodeToString(sum[:])
}
