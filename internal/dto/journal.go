package dto

import "github.com/OpenGescom/compta_ledger/internal/core/domain"

// CreateJournalRequest registers a new journal (transaction stream).
type CreateJournalRequest struct {
	Code                 string `json:"code" binding:"required,journalcode"`
	Label                string `json:"label" binding:"required"`
	Type                 string `json:"type" binding:"required,oneof=SALES PURCHASE BANK CASH MISC"`
	NumberFormat         string `json:"numberFormat"`
	DefaultContraAccount string `json:"defaultContraAccount"`
	SequenceControl      *bool  `json:"sequenceControl"` // Defaults to true when omitted
}

// JournalResponse is the public shape of a journal.
type JournalResponse struct {
	Code                 string `json:"code"`
	Label                string `json:"label"`
	Type                 string `json:"type"`
	LastSequence         int64  `json:"lastSequence"`
	NumberFormat         string `json:"numberFormat,omitempty"`
	DefaultContraAccount string `json:"defaultContraAccount,omitempty"`
	SequenceControl      bool   `json:"sequenceControl"`
}

// ToJournalResponse converts a domain.Journal to its response DTO.
func ToJournalResponse(j *domain.Journal) JournalResponse {
	return JournalResponse{
		Code:                 j.Code,
		Label:                j.Label,
		Type:                 string(j.Type),
		LastSequence:         j.LastSequence,
		NumberFormat:         j.NumberFormat,
		DefaultContraAccount: j.DefaultContraAccount,
		SequenceControl:      j.SequenceControl,
	}
}

// NextNumberResponse is a freshly issued entry number. Issued numbers are
// consumed even if the caller discards the entry.
type NextNumberResponse struct {
	JournalCode string `json:"journalCode"`
	EntryNumber string `json:"entryNumber"`
	Sequence    int64  `json:"sequence"`
}
