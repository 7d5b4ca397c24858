package dto

import (
	"time"

	"github.com/OpenGescom/compta_ledger/internal/core/domain"
	"github.com/shopspring/decimal"
)

// EntryLineRequest is one line of a posting request. Exactly one of
// debit/credit must be a positive amount.
type EntryLineRequest struct {
	AccountNumber   string          `json:"accountNumber" binding:"required"`
	Label           string          `json:"label"`
	Debit           decimal.Decimal `json:"debit"`
	Credit          decimal.Decimal `json:"credit"`
	AuxNumber       string          `json:"auxNumber"`
	AuxLabel        string          `json:"auxLabel"`
	CurrencyAmount  decimal.Decimal `json:"currencyAmount"`
	CurrencyCode    string          `json:"currencyCode"`
	CurrencyRate    decimal.Decimal `json:"currencyRate"`
	AnalyticCode    string          `json:"analyticCode"`
	AnalyticPercent decimal.Decimal `json:"analyticPercent"`
}

// PostEntryRequest posts a new ledger entry. The entry number is always
// issued by the journal; callers never self-generate it.
type PostEntryRequest struct {
	JournalCode  string             `json:"journalCode" binding:"required,journalcode"`
	ExerciseID   string             `json:"exerciseID"` // Resolved from Date when empty
	Date         time.Time          `json:"date" binding:"required"`
	Label        string             `json:"label" binding:"required"`
	SourceType   string             `json:"sourceType"`
	SourceNumber string             `json:"sourceNumber"`
	SourceDate   *time.Time         `json:"sourceDate"`
	Lines        []EntryLineRequest `json:"lines" binding:"required,min=2,dive"`
}

// EntryLineResponse is the public shape of an entry line.
type EntryLineResponse struct {
	LineID          string          `json:"lineID"`
	AccountNumber   string          `json:"accountNumber"`
	Label           string          `json:"label,omitempty"`
	Debit           decimal.Decimal `json:"debit"`
	Credit          decimal.Decimal `json:"credit"`
	AuxNumber       string          `json:"auxNumber,omitempty"`
	AuxLabel        string          `json:"auxLabel,omitempty"`
	Lettrage        string          `json:"lettrage,omitempty"`
	LettrageDate    *time.Time      `json:"lettrageDate,omitempty"`
	CurrencyAmount  decimal.Decimal `json:"currencyAmount"`
	CurrencyCode    string          `json:"currencyCode,omitempty"`
	CurrencyRate    decimal.Decimal `json:"currencyRate"`
	AnalyticCode    string          `json:"analyticCode,omitempty"`
	AnalyticPercent decimal.Decimal `json:"analyticPercent"`
	LineOrder       int             `json:"lineOrder"`
}

// EntryResponse is the public shape of a ledger entry.
type EntryResponse struct {
	EntryID     string              `json:"entryID"`
	JournalCode string              `json:"journalCode"`
	ExerciseID  string              `json:"exerciseID"`
	EntryNumber string              `json:"entryNumber"`
	EntryDate   time.Time           `json:"entryDate"`
	Label       string              `json:"label"`
	SourceType  string              `json:"sourceType,omitempty"`
	SourceNumber string             `json:"sourceNumber,omitempty"`
	SourceDate  *time.Time          `json:"sourceDate,omitempty"`
	Validated   bool                `json:"validated"`
	ValidatedBy string              `json:"validatedBy,omitempty"`
	ValidatedAt *time.Time          `json:"validatedAt,omitempty"`
	TotalDebit  decimal.Decimal     `json:"totalDebit"`
	TotalCredit decimal.Decimal     `json:"totalCredit"`
	IsBalanced  bool                `json:"isBalanced"`
	Lines       []EntryLineResponse `json:"lines,omitempty"`
}

// ToEntryLineResponse converts a domain.EntryLine to its response DTO.
func ToEntryLineResponse(l *domain.EntryLine) EntryLineResponse {
	return EntryLineResponse{
		LineID:          l.LineID,
		AccountNumber:   l.AccountNumber,
		Label:           l.Label,
		Debit:           l.Debit,
		Credit:          l.Credit,
		AuxNumber:       l.AuxNumber,
		AuxLabel:        l.AuxLabel,
		Lettrage:        l.Lettrage,
		LettrageDate:    l.LettrageDate,
		CurrencyAmount:  l.CurrencyAmount,
		CurrencyCode:    l.CurrencyCode,
		CurrencyRate:    l.CurrencyRate,
		AnalyticCode:    l.AnalyticCode,
		AnalyticPercent: l.AnalyticPercent,
		LineOrder:       l.LineOrder,
	}
}

// ToEntryResponse converts a domain.Entry (with lines) to its response DTO.
func ToEntryResponse(e *domain.Entry) EntryResponse {
	resp := EntryResponse{
		EntryID:      e.EntryID,
		JournalCode:  e.JournalCode,
		ExerciseID:   e.ExerciseID,
		EntryNumber:  e.EntryNumber,
		EntryDate:    e.EntryDate,
		Label:        e.Label,
		SourceType:   e.SourceType,
		SourceNumber: e.SourceNumber,
		SourceDate:   e.SourceDate,
		Validated:    e.Validated,
		ValidatedBy:  e.ValidatedBy,
		ValidatedAt:  e.ValidatedAt,
		TotalDebit:   e.TotalDebit,
		TotalCredit:  e.TotalCredit,
		IsBalanced:   e.Balanced,
	}
	if len(e.Lines) > 0 {
		resp.Lines = make([]EntryLineResponse, len(e.Lines))
		for i := range e.Lines {
			resp.Lines[i] = ToEntryLineResponse(&e.Lines[i])
		}
	}
	return resp
}

// ReconcileRequest marks a set of lines with a shared lettrage code.
// The reconciled set must net to zero.
type ReconcileRequest struct {
	LineIDs []string `json:"lineIDs" binding:"required,min=2"`
	Code    string   `json:"code" binding:"required,max=8"`
}

// UnreconcileRequest clears the lettrage marker from a set of lines.
type UnreconcileRequest struct {
	LineIDs []string `json:"lineIDs" binding:"required,min=1"`
}
