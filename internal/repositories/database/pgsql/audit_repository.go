package pgsql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/OpenGescom/compta_ledger/internal/apperrors"
	"github.com/OpenGescom/compta_ledger/internal/core/domain"
	portsrepo "github.com/OpenGescom/compta_ledger/internal/core/ports/repositories"
	"github.com/OpenGescom/compta_ledger/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgxAuditRepository struct {
	BaseRepository
}

func newPgxAuditRepository(pool *pgxpool.Pool) *PgxAuditRepository {
	return &PgxAuditRepository{BaseRepository{Pool: pool}}
}

var _ portsrepo.AuditRepository = (*PgxAuditRepository)(nil)

func toDomainAuditRecord(m models.AuditRecord) (domain.AuditRecord, error) {
	record := domain.AuditRecord{
		RecordID:      m.RecordID,
		Position:      m.Position,
		EntityType:    m.EntityType,
		EntityID:      m.EntityID,
		Action:        domain.AuditAction(m.Action),
		ChangedFields: m.ChangedFields,
		UserID:        m.UserID,
		IP:            m.IP,
		UserAgent:     m.UserAgent,
		Justification: m.Justification,
		RecordHash:    m.RecordHash,
		PreviousHash:  m.PreviousHash,
		CreatedAt:     m.CreatedAt,
	}
	if len(m.OldValues) > 0 {
		if err := json.Unmarshal(m.OldValues, &record.OldValues); err != nil {
			return domain.AuditRecord{}, fmt.Errorf("failed to decode old values of record %s: %w", m.RecordID, err)
		}
	}
	if len(m.NewValues) > 0 {
		if err := json.Unmarshal(m.NewValues, &record.NewValues); err != nil {
			return domain.AuditRecord{}, fmt.Errorf("failed to decode new values of record %s: %w", m.RecordID, err)
		}
	}
	return record, nil
}

const auditColumns = `record_id, position, entity_type, entity_id, action, old_values, new_values, changed_fields, user_id, ip, user_agent, justification, record_hash, previous_hash, created_at`

func scanAuditRecord(row pgx.Row) (*models.AuditRecord, error) {
	var m models.AuditRecord
	var ip, userAgent, justification, previousHash sql.NullString
	err := row.Scan(
		&m.RecordID, &m.Position, &m.EntityType, &m.EntityID, &m.Action,
		&m.OldValues, &m.NewValues, &m.ChangedFields,
		&m.UserID, &ip, &userAgent, &justification,
		&m.RecordHash, &previousHash, &m.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	m.IP = ip.String
	m.UserAgent = userAgent.String
	m.Justification = justification.String
	m.PreviousHash = previousHash.String
	return &m, nil
}

// SaveRecord appends one record to the audit trail. A single advisory lock
// serializes all audit writers, so the chain has one total order and the
// PreviousHash read here is still the tail at commit.
func (r *PgxAuditRepository) SaveRecord(ctx context.Context, record domain.AuditRecord) (*domain.AuditRecord, error) {
	tx, err := r.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer r.Rollback(ctx, tx)

	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext('audit_chain'));`); err != nil {
		return nil, fmt.Errorf("failed to lock audit chain: %w", err)
	}

	var previousHash sql.NullString
	var position int64
	tailQuery := `SELECT record_hash, position FROM audit_records ORDER BY position DESC LIMIT 1;`
	err = tx.QueryRow(ctx, tailQuery).Scan(&previousHash, &position)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("failed to read audit chain tail: %w", err)
	}
	record.PreviousHash = previousHash.String
	record.Position = position + 1

	record.RecordHash, err = record.ComputeHash()
	if err != nil {
		return nil, err
	}

	var oldValues, newValues []byte
	if record.OldValues != nil {
		if oldValues, err = json.Marshal(record.OldValues); err != nil {
			return nil, fmt.Errorf("failed to encode old values: %w", err)
		}
	}
	if record.NewValues != nil {
		if newValues, err = json.Marshal(record.NewValues); err != nil {
			return nil, fmt.Errorf("failed to encode new values: %w", err)
		}
	}

	insertQuery := `
		INSERT INTO audit_records (` + auditColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15);
	`
	_, err = tx.Exec(ctx, insertQuery,
		record.RecordID, record.Position, record.EntityType, record.EntityID, string(record.Action),
		oldValues, newValues, record.ChangedFields,
		record.UserID, nullIfEmpty(record.IP), nullIfEmpty(record.UserAgent), nullIfEmpty(record.Justification),
		record.RecordHash, nullIfEmpty(record.PreviousHash), record.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("%w: audit record %s already exists", apperrors.ErrDuplicate, record.RecordID)
		}
		return nil, fmt.Errorf("failed to save audit record %s: %w", record.RecordID, err)
	}

	if err := r.Commit(ctx, tx); err != nil {
		return nil, err
	}
	return &record, nil
}

// ListRecordsByEntity returns one entity's trail in chain order.
func (r *PgxAuditRepository) ListRecordsByEntity(ctx context.Context, entityType, entityID string) ([]domain.AuditRecord, error) {
	query := `SELECT ` + auditColumns + ` FROM audit_records WHERE entity_type = $1 AND entity_id = $2 ORDER BY position;`

	rows, err := r.Pool.Query(ctx, query, entityType, entityID)
	if err != nil {
		return nil, fmt.Errorf("failed to list audit records: %w", err)
	}
	defer rows.Close()
	return collectAuditRecords(rows)
}

// ListRecords pages through the whole trail in chain order.
func (r *PgxAuditRepository) ListRecords(ctx context.Context, limit, offset int) ([]domain.AuditRecord, error) {
	query := `SELECT ` + auditColumns + ` FROM audit_records ORDER BY position LIMIT $1 OFFSET $2;`

	rows, err := r.Pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list audit records: %w", err)
	}
	defer rows.Close()
	return collectAuditRecords(rows)
}

func collectAuditRecords(rows pgx.Rows) ([]domain.AuditRecord, error) {
	var records []domain.AuditRecord
	for rows.Next() {
		m, err := scanAuditRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan audit record: %w", err)
		}
		record, err := toDomainAuditRecord(*m)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read audit records: %w", err)
	}
	return records, nil
}
