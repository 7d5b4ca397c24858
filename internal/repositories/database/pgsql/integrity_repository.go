package pgsql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/OpenGescom/compta_ledger/internal/apperrors"
	"github.com/OpenGescom/compta_ledger/internal/core/domain"
	portsrepo "github.com/OpenGescom/compta_ledger/internal/core/ports/repositories"
	"github.com/OpenGescom/compta_ledger/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgxIntegrityRepository struct {
	BaseRepository
}

func newPgxIntegrityRepository(pool *pgxpool.Pool) *PgxIntegrityRepository {
	return &PgxIntegrityRepository{BaseRepository{Pool: pool}}
}

var _ portsrepo.IntegrityRepository = (*PgxIntegrityRepository)(nil)

func toDomainIntegrityRecord(m models.IntegrityRecord) domain.IntegrityRecord {
	return domain.IntegrityRecord{
		RecordID:         m.RecordID,
		ChainScope:       m.ChainScope,
		Position:         m.Position,
		DocumentType:     m.DocumentType,
		DocumentID:       m.DocumentID,
		DocumentNumber:   m.DocumentNumber,
		HashAlgorithm:    m.HashAlgorithm,
		DocumentHash:     m.DocumentHash,
		PreviousHash:     m.PreviousHash,
		Signature:        m.Signature,
		Status:           domain.IntegrityStatus(m.Status),
		LastVerification: m.LastVerification,
		AnchorTxID:       m.AnchorTxID,
		AnchorURL:        m.AnchorURL,
		IP:               m.IP,
		AuditFields: domain.AuditFields{
			CreatedAt:     m.CreatedAt,
			CreatedBy:     m.CreatedBy,
			LastUpdatedAt: m.LastUpdatedAt,
			LastUpdatedBy: m.LastUpdatedBy,
		},
	}
}

const integrityColumns = `record_id, chain_scope, position, document_type, document_id, document_number, hash_algorithm, document_hash, previous_hash, signature, status, last_verification, anchor_tx_id, anchor_url, ip, created_at, created_by, last_updated_at, last_updated_by`

func scanIntegrityRecord(row pgx.Row) (*models.IntegrityRecord, error) {
	var m models.IntegrityRecord
	var documentNumber, previousHash, anchorTxID, anchorURL, ip sql.NullString
	err := row.Scan(
		&m.RecordID, &m.ChainScope, &m.Position, &m.DocumentType, &m.DocumentID, &documentNumber,
		&m.HashAlgorithm, &m.DocumentHash, &previousHash, &m.Signature, &m.Status, &m.LastVerification,
		&anchorTxID, &anchorURL, &ip,
		&m.CreatedAt, &m.CreatedBy, &m.LastUpdatedAt, &m.LastUpdatedBy,
	)
	if err != nil {
		return nil, err
	}
	m.DocumentNumber = documentNumber.String
	m.PreviousHash = previousHash.String
	m.AnchorTxID = anchorTxID.String
	m.AnchorURL = anchorURL.String
	m.IP = ip.String
	return &m, nil
}

// SealRecord appends a record to its chain scope. The advisory lock
// serializes writers of the same scope, so the PreviousHash read here is
// still the tail when the insert commits.
func (r *PgxIntegrityRepository) SealRecord(ctx context.Context, record domain.IntegrityRecord) (*domain.IntegrityRecord, error) {
	tx, err := r.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer r.Rollback(ctx, tx)

	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext('integrity_chain:' || $1::text));`, record.ChainScope); err != nil {
		return nil, fmt.Errorf("failed to lock chain scope %s: %w", record.ChainScope, err)
	}

	var previousHash sql.NullString
	var position int64
	tailQuery := `SELECT document_hash, position FROM integrity_records WHERE chain_scope = $1 ORDER BY position DESC LIMIT 1;`
	err = tx.QueryRow(ctx, tailQuery, record.ChainScope).Scan(&previousHash, &position)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("failed to read chain tail for scope %s: %w", record.ChainScope, err)
	}
	record.PreviousHash = previousHash.String
	record.Position = position + 1
	record.Signature = record.ComputeSignature()

	insertQuery := `
		INSERT INTO integrity_records (` + integrityColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19);
	`
	_, err = tx.Exec(ctx, insertQuery,
		record.RecordID, record.ChainScope, record.Position, record.DocumentType, record.DocumentID,
		nullIfEmpty(record.DocumentNumber), record.HashAlgorithm, record.DocumentHash,
		nullIfEmpty(record.PreviousHash), record.Signature, string(record.Status), record.LastVerification,
		nullIfEmpty(record.AnchorTxID), nullIfEmpty(record.AnchorURL), nullIfEmpty(record.IP),
		record.CreatedAt, record.CreatedBy, record.LastUpdatedAt, record.LastUpdatedBy,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("%w: integrity record %s already exists", apperrors.ErrDuplicate, record.RecordID)
		}
		return nil, fmt.Errorf("failed to seal record %s: %w", record.RecordID, err)
	}

	if err := r.Commit(ctx, tx); err != nil {
		return nil, err
	}
	return &record, nil
}

// FindRecordByID fetches one integrity record.
func (r *PgxIntegrityRepository) FindRecordByID(ctx context.Context, recordID string) (*domain.IntegrityRecord, error) {
	query := `SELECT ` + integrityColumns + ` FROM integrity_records WHERE record_id = $1;`

	m, err := scanIntegrityRecord(r.Pool.QueryRow(ctx, query, recordID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: integrity record %s", apperrors.ErrNotFound, recordID)
		}
		return nil, fmt.Errorf("failed to find integrity record %s: %w", recordID, err)
	}
	record := toDomainIntegrityRecord(*m)
	return &record, nil
}

// ListRecordsByScope returns all records of a chain in position order.
func (r *PgxIntegrityRepository) ListRecordsByScope(ctx context.Context, scope string) ([]domain.IntegrityRecord, error) {
	query := `SELECT ` + integrityColumns + ` FROM integrity_records WHERE chain_scope = $1 ORDER BY position;`

	rows, err := r.Pool.Query(ctx, query, scope)
	if err != nil {
		return nil, fmt.Errorf("failed to list integrity records: %w", err)
	}
	defer rows.Close()

	var records []domain.IntegrityRecord
	for rows.Next() {
		m, err := scanIntegrityRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan integrity record: %w", err)
		}
		records = append(records, toDomainIntegrityRecord(*m))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read integrity records: %w", err)
	}
	return records, nil
}

// TailHash returns the DocumentHash of the newest record in the scope, or
// an empty string for an empty chain.
func (r *PgxIntegrityRepository) TailHash(ctx context.Context, scope string) (string, error) {
	var hash string
	query := `SELECT document_hash FROM integrity_records WHERE chain_scope = $1 ORDER BY position DESC LIMIT 1;`
	err := r.Pool.QueryRow(ctx, query, scope).Scan(&hash)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read tail hash for scope %s: %w", scope, err)
	}
	return hash, nil
}

// UpdateVerification records a verification outcome on a sealed record.
// Only the verification columns move; the sealed fields stay immutable.
func (r *PgxIntegrityRepository) UpdateVerification(ctx context.Context, recordID string, status domain.IntegrityStatus, verifiedAt time.Time, updatedBy string) error {
	query := `
		UPDATE integrity_records
		SET status = $2, last_verification = $3, last_updated_at = $3, last_updated_by = $4
		WHERE record_id = $1;
	`
	tag, err := r.Pool.Exec(ctx, query, recordID, string(status), verifiedAt, updatedBy)
	if err != nil {
		return fmt.Errorf("failed to update verification for record %s: %w", recordID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: integrity record %s", apperrors.ErrNotFound, recordID)
	}
	return nil
}
