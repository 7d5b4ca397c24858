package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
	"time"
)

// AuditAction is the business action recorded in the audit trail.
type AuditAction string

const (
	ActionCreate      AuditAction = "CREATE"
	ActionUpdate      AuditAction = "UPDATE"
	ActionDelete      AuditAction = "DELETE"
	ActionView        AuditAction = "VIEW"
	ActionValidate    AuditAction = "VALIDATE"
	ActionClose       AuditAction = "CLOSE"
	ActionAdminUpdate AuditAction = "ADMIN_UPDATE"
	ActionBulkUpdate  AuditAction = "BULK_UPDATE"
)

// RequiresJustification reports whether the action may only be recorded with
// an explicit justification.
func (a AuditAction) RequiresJustification() bool {
	switch a {
	case ActionDelete, ActionAdminUpdate, ActionBulkUpdate:
		return true
	default:
		return false
	}
}

// AuditRecord is one append-only line of the audit trail. Records are
// hash-chained with the same discipline as integrity records, scoped to the
// audit stream, and are never mutated or deleted after creation.
type AuditRecord struct {
	RecordID      string         `json:"recordID"`
	Position      int64          `json:"position"`
	EntityType    string         `json:"entityType"`
	EntityID      string         `json:"entityID"`
	Action        AuditAction    `json:"action"`
	OldValues     map[string]any `json:"oldValues"`
	NewValues     map[string]any `json:"newValues"`
	ChangedFields []string       `json:"changedFields"`
	UserID        string         `json:"userID"`
	IP            string         `json:"ip"`
	UserAgent     string         `json:"userAgent"`
	Justification string         `json:"justification"`
	RecordHash    string         `json:"recordHash"`
	PreviousHash  string         `json:"previousHash"`
	CreatedAt     time.Time      `json:"createdAt"`
}

// DiffChangedFields computes the symmetric key-diff of the old/new value
// maps: keys present on only one side, plus keys whose values differ.
// The result is sorted for determinism.
func DiffChangedFields(oldValues, newValues map[string]any) []string {
	changed := make(map[string]struct{})
	for k, ov := range oldValues {
		nv, ok := newValues[k]
		if !ok || !jsonEqual(ov, nv) {
			changed[k] = struct{}{}
		}
	}
	for k := range newValues {
		if _, ok := oldValues[k]; !ok {
			changed[k] = struct{}{}
		}
	}
	fields := make([]string, 0, len(changed))
	for k := range changed {
		fields = append(fields, k)
	}
	sort.Strings(fields)
	return fields
}

// jsonEqual compares two values by their canonical JSON form. Values arrive
// from jsonb columns or request bodies, so number/representation differences
// must not count as changes.
func jsonEqual(a, b any) bool {
	ra, errA := json.Marshal(a)
	rb, errB := json.Marshal(b)
	if errA != nil || errB != nil {
		return false
	}
	return string(ra) == string(rb)
}

// ComputeHash derives the chained record hash from the record's immutable
// fields and the hash of its predecessor. CreatedAt enters the hash at
// microsecond precision: timestamptz columns drop anything finer, and the
// hash must survive a database round trip.
func (r *AuditRecord) ComputeHash() (string, error) {
	core := struct {
		EntityType    string         `json:"entityType"`
		EntityID      string         `json:"entityID"`
		Action        AuditAction    `json:"action"`
		OldValues     map[string]any `json:"oldValues"`
		NewValues     map[string]any `json:"newValues"`
		ChangedFields []string       `json:"changedFields"`
		UserID        string         `json:"userID"`
		Justification string         `json:"justification"`
		PreviousHash  string         `json:"previousHash"`
		CreatedAt     string         `json:"createdAt"`
	}{
		EntityType:    r.EntityType,
		EntityID:      r.EntityID,
		Action:        r.Action,
		OldValues:     r.OldValues,
		NewValues:     r.NewValues,
		ChangedFields: r.ChangedFields,
		UserID:        r.UserID,
		Justification: r.Justification,
		PreviousHash:  r.PreviousHash,
		CreatedAt:     r.CreatedAt.UTC().Truncate(time.Microsecond).Format(time.RFC3339Nano),
	}
	raw, err := json.Marshal(core)
	if err != nil {
		return "", fmt.Errorf("failed to serialize audit record: %w", err)
	}
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:]), nil
}
