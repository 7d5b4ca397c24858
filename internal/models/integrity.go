package models

import "time"

// IntegrityRecord is the integrity_records table row.
type IntegrityRecord struct {
	RecordID         string     `db:"record_id"`
	ChainScope       string     `db:"chain_scope"`
	Position         int64      `db:"position"`
	DocumentType     string     `db:"document_type"`
	DocumentID       string     `db:"document_id"`
	DocumentNumber   string     `db:"document_number"`
	HashAlgorithm    string     `db:"hash_algorithm"`
	DocumentHash     string     `db:"document_hash"`
	PreviousHash     string     `db:"previous_hash"` // Empty only for the first record of a scope
	Signature        string     `db:"signature"`
	Status           string     `db:"status"`
	LastVerification *time.Time `db:"last_verification"`
	AnchorTxID       string     `db:"anchor_tx_id"` // Nullable
	AnchorURL        string     `db:"anchor_url"`
	IP               string     `db:"ip"`
	AuditFields
}
