package domain_test

import (
	"testing"
	"time"

	"github.com/OpenGescom/compta_ledger/internal/core/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestEntry_RecomputeTotals(t *testing.T) {
	tests := []struct {
		name         string
		lines        []domain.EntryLine
		wantDebit    string
		wantCredit   string
		wantBalanced bool
	}{
		{
			name: "balanced sale with VAT",
			lines: []domain.EntryLine{
				{AccountNumber: "411000", Debit: dec("120.00")},
				{AccountNumber: "701000", Credit: dec("100.00")},
				{AccountNumber: "445710", Credit: dec("20.00")},
			},
			wantDebit:    "120.00",
			wantCredit:   "120.00",
			wantBalanced: true,
		},
		{
			name: "unbalanced by one cent",
			lines: []domain.EntryLine{
				{AccountNumber: "411000", Debit: dec("100.00")},
				{AccountNumber: "701000", Credit: dec("99.99")},
			},
			wantDebit:    "100.00",
			wantCredit:   "99.99",
			wantBalanced: false,
		},
		{
			name:         "no lines",
			lines:        nil,
			wantDebit:    "0.00",
			wantCredit:   "0.00",
			wantBalanced: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entry := domain.Entry{Lines: tt.lines}
			entry.RecomputeTotals()
			assert.Equal(t, tt.wantDebit, entry.TotalDebit.StringFixed(2))
			assert.Equal(t, tt.wantCredit, entry.TotalCredit.StringFixed(2))
			assert.Equal(t, tt.wantBalanced, entry.Balanced)
		})
	}
}

func TestEntry_RecomputeTotals_Idempotent(t *testing.T) {
	entry := domain.Entry{Lines: []domain.EntryLine{
		{AccountNumber: "411000", Debit: dec("59.90")},
		{AccountNumber: "706000", Credit: dec("59.90")},
	}}
	entry.RecomputeTotals()
	firstDebit, firstCredit := entry.TotalDebit, entry.TotalCredit
	entry.RecomputeTotals()
	assert.True(t, firstDebit.Equal(entry.TotalDebit))
	assert.True(t, firstCredit.Equal(entry.TotalCredit))
	assert.True(t, entry.Balanced)
}

func TestEntryLine_SetDebitZeroesCredit(t *testing.T) {
	line := domain.EntryLine{}
	line.SetCredit(dec("42.00"))
	require.True(t, line.Debit.IsZero())

	line.SetDebit(dec("17.50"))
	assert.Equal(t, "17.50", line.Debit.StringFixed(2))
	assert.True(t, line.Credit.IsZero())
	assert.True(t, line.IsExclusive())

	line.SetCredit(dec("9.99"))
	assert.True(t, line.Debit.IsZero())
	assert.Equal(t, "9.99", line.Credit.StringFixed(2))
	assert.True(t, line.IsExclusive())
}

func TestEntryLine_ReconcileAndUnreconcile(t *testing.T) {
	at := time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC)
	line := domain.EntryLine{AccountNumber: "411000"}

	line.Reconcile("AA", at)
	assert.Equal(t, "AA", line.Lettrage)
	require.NotNil(t, line.LettrageDate)
	assert.True(t, line.LettrageDate.Equal(at))

	line.Unreconcile()
	assert.Empty(t, line.Lettrage)
	assert.Nil(t, line.LettrageDate)
}

func TestEntry_BalanceChanges(t *testing.T) {
	entry := domain.Entry{Lines: []domain.EntryLine{
		{AccountNumber: "411000", Debit: dec("120.00")},
		{AccountNumber: "411000", Credit: dec("20.00")},
		{AccountNumber: "701000", Credit: dec("100.00")},
	}}
	changes := entry.BalanceChanges()

	require.Len(t, changes, 2)
	assert.Equal(t, "120.00", changes["411000"].Debit.StringFixed(2))
	assert.Equal(t, "20.00", changes["411000"].Credit.StringFixed(2))
	assert.Equal(t, "100.00", changes["701000"].Credit.StringFixed(2))
}

func TestEntryLine_ToFECRow(t *testing.T) {
	letDate := time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC)
	line := domain.EntryLine{
		AccountNumber:  "411000",
		AuxNumber:      "CLI042",
		AuxLabel:       "Dupont SARL",
		Debit:          dec("120.00"),
		Lettrage:       "AB",
		LettrageDate:   &letDate,
		CurrencyAmount: dec("131.40"),
		CurrencyCode:   "USD",
	}

	row := line.ToFECRow("Clients")
	assert.Equal(t, "411000", row.CompteNum)
	assert.Equal(t, "Clients", row.CompteLib)
	assert.Equal(t, "CLI042", row.CompAuxNum)
	assert.Equal(t, "Dupont SARL", row.CompAuxLib)
	assert.Equal(t, "120.00", row.Debit)
	assert.Equal(t, "0.00", row.Credit)
	assert.Equal(t, "AB", row.EcritureLet)
	assert.Equal(t, "20250630", row.DateLet)
	assert.Equal(t, "131.40", row.MontantDevise)
	assert.Equal(t, "USD", row.CodeDevise)
}

func TestEntryLine_ToFECRow_NoCurrencyNoLettrage(t *testing.T) {
	line := domain.EntryLine{AccountNumber: "701000", Credit: dec("100.00")}
	row := line.ToFECRow("Ventes de produits finis")
	assert.Equal(t, "0.00", row.Debit)
	assert.Equal(t, "100.00", row.Credit)
	assert.Empty(t, row.EcritureLet)
	assert.Empty(t, row.DateLet)
	assert.Empty(t, row.MontantDevise)
	assert.Empty(t, row.CodeDevise)
}
