package models

import "time"

// AuditRecord is the audit_records table row. Old/new values are stored as
// jsonb; changed fields as a text array.
type AuditRecord struct {
	RecordID      string    `db:"record_id"`
	Position      int64     `db:"position"`
	EntityType    string    `db:"entity_type"`
	EntityID      string    `db:"entity_id"`
	Action        string    `db:"action"`
	OldValues     []byte    `db:"old_values"`
	NewValues     []byte    `db:"new_values"`
	ChangedFields []string  `db:"changed_fields"`
	UserID        string    `db:"user_id"`
	IP            string    `db:"ip"`
	UserAgent     string    `db:"user_agent"`
	Justification string    `db:"justification"`
	RecordHash    string    `db:"record_hash"`
	PreviousHash  string    `db:"previous_hash"`
	CreatedAt     time.Time `db:"created_at"`
}
