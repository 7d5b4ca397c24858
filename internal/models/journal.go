package models

// Journal is the journals table row.
type Journal struct {
	Code                 string `db:"code"`
	Label                string `db:"label"`
	Type                 string `db:"journal_type"`
	LastSequence         int64  `db:"last_sequence"`
	NumberFormat         string `db:"number_format"` // Nullable
	DefaultContraAccount string `db:"default_contra_account"`
	SequenceControl      bool   `db:"sequence_control"`
	AuditFields
}
