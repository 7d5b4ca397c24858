package domain

import (
	"fmt"
	"strings"
)

// JournalType categorizes the transaction stream a journal records.
type JournalType string

const (
	Sales    JournalType = "SALES"
	Purchase JournalType = "PURCHASE"
	Bank     JournalType = "BANK"
	Cash     JournalType = "CASH"
	Misc     JournalType = "MISC"
)

// DefaultNumberFormat is used when a journal carries no explicit template.
const DefaultNumberFormat = "{CODE}{YYYY}{SEQ}"

// Journal is a named sequence generator, the sole numbering authority for
// the entries drawn from it. LastSequence never decreases; gaps are
// acceptable (statutory sequences must be monotonic, not contiguous).
type Journal struct {
	Code                 string      `json:"code"` // 3 chars, upper-cased
	Label                string      `json:"label"`
	Type                 JournalType `json:"type"`
	LastSequence         int64       `json:"lastSequence"`
	NumberFormat         string      `json:"numberFormat"` // Optional template
	DefaultContraAccount string      `json:"defaultContraAccount"`
	SequenceControl      bool        `json:"sequenceControl"`
	AuditFields
}

// NormalizeJournalCode upper-cases and validates a journal code.
func NormalizeJournalCode(code string) (string, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if len(code) != 3 {
		return "", fmt.Errorf("journal code %q must be exactly 3 characters", code)
	}
	for _, r := range code {
		if (r < 'A' || r > 'Z') && (r < '0' || r > '9') {
			return "", fmt.Errorf("journal code %q must be alphanumeric", code)
		}
	}
	return code, nil
}

// FormatEntryNumber renders an issued sequence number using the journal's
// template, or the default {CODE}{YYYY}{SEQ} pattern. {SEQ} is zero-padded
// to four digits.
func (j *Journal) FormatEntryNumber(year int, seq int64) string {
	format := j.NumberFormat
	if format == "" {
		format = DefaultNumberFormat
	}
	out := strings.ReplaceAll(format, "{CODE}", j.Code)
	out = strings.ReplaceAll(out, "{YYYY}", fmt.Sprintf("%04d", year))
	out = strings.ReplaceAll(out, "{SEQ}", fmt.Sprintf("%04d", seq))
	return out
}
