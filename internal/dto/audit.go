package dto

import (
	"time"

	"github.com/OpenGescom/compta_ledger/internal/core/domain"
)

// RecordAuditRequest appends one action to the audit trail. Justification is
// mandatory for DELETE, ADMIN_UPDATE and BULK_UPDATE actions.
type RecordAuditRequest struct {
	EntityType    string         `json:"entityType" binding:"required"`
	EntityID      string         `json:"entityID" binding:"required"`
	Action        string         `json:"action" binding:"required,oneof=CREATE UPDATE DELETE VIEW VALIDATE CLOSE ADMIN_UPDATE BULK_UPDATE"`
	OldValues     map[string]any `json:"oldValues"`
	NewValues     map[string]any `json:"newValues"`
	Justification string         `json:"justification"`
}

// AuditRecordResponse is the public shape of an audit record.
type AuditRecordResponse struct {
	RecordID      string         `json:"recordID"`
	Position      int64          `json:"position"`
	EntityType    string         `json:"entityType"`
	EntityID      string         `json:"entityID"`
	Action        string         `json:"action"`
	OldValues     map[string]any `json:"oldValues,omitempty"`
	NewValues     map[string]any `json:"newValues,omitempty"`
	ChangedFields []string       `json:"changedFields"`
	UserID        string         `json:"userID"`
	IP            string         `json:"ip,omitempty"`
	UserAgent     string         `json:"userAgent,omitempty"`
	Justification string         `json:"justification,omitempty"`
	RecordHash    string         `json:"recordHash"`
	PreviousHash  string         `json:"previousHash,omitempty"`
	CreatedAt     time.Time      `json:"createdAt"`
}

// ToAuditRecordResponse converts a domain.AuditRecord to its response DTO.
func ToAuditRecordResponse(r *domain.AuditRecord) AuditRecordResponse {
	return AuditRecordResponse{
		RecordID:      r.RecordID,
		Position:      r.Position,
		EntityType:    r.EntityType,
		EntityID:      r.EntityID,
		Action:        string(r.Action),
		OldValues:     r.OldValues,
		NewValues:     r.NewValues,
		ChangedFields: r.ChangedFields,
		UserID:        r.UserID,
		IP:            r.IP,
		UserAgent:     r.UserAgent,
		Justification: r.Justification,
		RecordHash:    r.RecordHash,
		PreviousHash:  r.PreviousHash,
		CreatedAt:     r.CreatedAt,
	}
}
