package domain

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// Entry is a balanced double-entry record: at least two lines whose debit
// and credit sides sum to the same amount, to the cent. Once validated it is
// read-only except for lettrage, and only while its exercise is still OPEN.
type Entry struct {
	EntryID      string      `json:"entryID"`
	JournalCode  string      `json:"journalCode"`
	ExerciseID   string      `json:"exerciseID"`
	EntryNumber  string      `json:"entryNumber"` // Issued by the journal, unique per journal
	EntryDate    time.Time   `json:"entryDate"`
	Label        string      `json:"label"`
	SourceType   string      `json:"sourceType"` // Source document reference
	SourceNumber string      `json:"sourceNumber"`
	SourceDate   *time.Time  `json:"sourceDate"`
	Validated    bool        `json:"validated"`
	ValidatedBy  string      `json:"validatedBy"`
	ValidatedAt  *time.Time  `json:"validatedAt"`
	TotalDebit   decimal.Decimal `json:"totalDebit"`
	TotalCredit  decimal.Decimal `json:"totalCredit"`
	Balanced     bool        `json:"isBalanced"`
	Lines        []EntryLine `json:"lines,omitempty"`
	AuditFields
}

// RecomputeTotals sums the lines and refreshes the balanced flag using exact
// decimal comparison. Deterministic and idempotent.
func (e *Entry) RecomputeTotals() {
	totalDebit := decimal.Zero
	totalCredit := decimal.Zero
	for i := range e.Lines {
		totalDebit = totalDebit.Add(e.Lines[i].Debit)
		totalCredit = totalCredit.Add(e.Lines[i].Credit)
	}
	e.TotalDebit = totalDebit
	e.TotalCredit = totalCredit
	e.Balanced = totalDebit.Equal(totalCredit)
}

// BalanceChanges returns the net debit/credit to apply per account when this
// entry is posted.
func (e *Entry) BalanceChanges() map[string]BalanceChange {
	changes := make(map[string]BalanceChange)
	for i := range e.Lines {
		c := changes[e.Lines[i].AccountNumber]
		c.Debit = c.Debit.Add(e.Lines[i].Debit)
		c.Credit = c.Credit.Add(e.Lines[i].Credit)
		changes[e.Lines[i].AccountNumber] = c
	}
	return changes
}

// EntryLine targets one account with exactly one of debit/credit non-zero.
// The SetDebit/SetCredit mutators are the only way amounts should be set:
// each one zeroes the other side.
type EntryLine struct {
	LineID          string          `json:"lineID"`
	EntryID         string          `json:"entryID"`
	AccountNumber   string          `json:"accountNumber"`
	AuxNumber       string          `json:"auxNumber"` // Third-party sub-account
	AuxLabel        string          `json:"auxLabel"`
	Label           string          `json:"label"`
	Debit           decimal.Decimal `json:"debit"`
	Credit          decimal.Decimal `json:"credit"`
	Lettrage        string          `json:"lettrage"` // Reconciliation code
	LettrageDate    *time.Time      `json:"lettrageDate"`
	CurrencyAmount  decimal.Decimal `json:"currencyAmount"` // Optional multi-currency info
	CurrencyCode    string          `json:"currencyCode"`
	CurrencyRate    decimal.Decimal `json:"currencyRate"`
	AnalyticCode    string          `json:"analyticCode"`
	AnalyticPercent decimal.Decimal `json:"analyticPercent"`
	LineOrder       int             `json:"lineOrder"`
	AuditFields
}

// SetDebit sets the debit amount and zeroes the credit side.
func (l *EntryLine) SetDebit(amount decimal.Decimal) {
	l.Debit = amount
	l.Credit = decimal.Zero
}

// SetCredit sets the credit amount and zeroes the debit side.
func (l *EntryLine) SetCredit(amount decimal.Decimal) {
	l.Credit = amount
	l.Debit = decimal.Zero
}

// IsExclusive reports whether the debit/credit mutual-exclusivity invariant
// holds (debit * credit == 0).
func (l *EntryLine) IsExclusive() bool {
	return l.Debit.IsZero() || l.Credit.IsZero()
}

// Reconcile marks the line with a lettrage code. Permitted regardless of the
// entry's validation state; the cross-line net-zero check belongs to the
// reconciliation service.
func (l *EntryLine) Reconcile(code string, at time.Time) {
	l.Lettrage = code
	l.LettrageDate = &at
}

// Unreconcile clears the lettrage marker.
func (l *EntryLine) Unreconcile() {
	l.Lettrage = ""
	l.LettrageDate = nil
}

// EntrySealPayload is the canonical projection of an entry used for
// integrity sealing. Every field survives a database round trip unchanged:
// dates are day-precision strings, amounts are fixed two-decimal strings,
// and volatile audit timestamps are excluded. The same payload can thus be
// rebuilt from a reloaded entry and hash identically.
type EntrySealPayload struct {
	EntryID      string                 `json:"entryID"`
	JournalCode  string                 `json:"journalCode"`
	ExerciseID   string                 `json:"exerciseID"`
	EntryNumber  string                 `json:"entryNumber"`
	EntryDate    string                 `json:"entryDate"`
	Label        string                 `json:"label"`
	SourceType   string                 `json:"sourceType"`
	SourceNumber string                 `json:"sourceNumber"`
	TotalDebit   string                 `json:"totalDebit"`
	TotalCredit  string                 `json:"totalCredit"`
	Lines        []EntryLineSealPayload `json:"lines"`
}

// EntryLineSealPayload is one line of the seal payload.
type EntryLineSealPayload struct {
	LineID        string `json:"lineID"`
	AccountNumber string `json:"accountNumber"`
	Label         string `json:"label"`
	Debit         string `json:"debit"`
	Credit        string `json:"credit"`
	AuxNumber     string `json:"auxNumber"`
	LineOrder     int    `json:"lineOrder"`
}

// SealPayload builds the canonical projection sealed in the integrity
// chain. Lines are ordered by LineOrder so the serialization does not
// depend on fetch order.
func (e *Entry) SealPayload() EntrySealPayload {
	payload := EntrySealPayload{
		EntryID:      e.EntryID,
		JournalCode:  e.JournalCode,
		ExerciseID:   e.ExerciseID,
		EntryNumber:  e.EntryNumber,
		EntryDate:    e.EntryDate.UTC().Format(time.DateOnly),
		Label:        e.Label,
		SourceType:   e.SourceType,
		SourceNumber: e.SourceNumber,
		TotalDebit:   e.TotalDebit.StringFixed(2),
		TotalCredit:  e.TotalCredit.StringFixed(2),
		Lines:        make([]EntryLineSealPayload, len(e.Lines)),
	}
	for i := range e.Lines {
		payload.Lines[i] = EntryLineSealPayload{
			LineID:        e.Lines[i].LineID,
			AccountNumber: e.Lines[i].AccountNumber,
			Label:         e.Lines[i].Label,
			Debit:         e.Lines[i].Debit.StringFixed(2),
			Credit:        e.Lines[i].Credit.StringFixed(2),
			AuxNumber:     e.Lines[i].AuxNumber,
			LineOrder:     e.Lines[i].LineOrder,
		}
	}
	sort.Slice(payload.Lines, func(i, j int) bool {
		return payload.Lines[i].LineOrder < payload.Lines[j].LineOrder
	})
	return payload
}
