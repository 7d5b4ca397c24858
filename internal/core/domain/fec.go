package domain

// FECRow is one flat record of the statutory FEC export (Fichier des
// Écritures Comptables). Field names and ordering are a compliance contract
// and must be preserved exactly.
type FECRow struct {
	CompteNum     string `json:"compte_num"`
	CompteLib     string `json:"compte_lib"`
	CompAuxNum    string `json:"comp_aux_num"`
	CompAuxLib    string `json:"comp_aux_lib"`
	Debit         string `json:"debit"`
	Credit        string `json:"credit"`
	EcritureLet   string `json:"ecriture_let"`
	DateLet       string `json:"date_let"`
	MontantDevise string `json:"montant_devise"`
	CodeDevise    string `json:"code_devise"`
}

// fecDateLayout is the YYYYMMDD date format mandated by the FEC contract.
const fecDateLayout = "20060102"

// ToFECRow flattens the line into its statutory export form. The account
// label is resolved by the caller from the chart of accounts.
func (l *EntryLine) ToFECRow(accountLabel string) FECRow {
	row := FECRow{
		CompteNum:   l.AccountNumber,
		CompteLib:   accountLabel,
		CompAuxNum:  l.AuxNumber,
		CompAuxLib:  l.AuxLabel,
		Debit:       l.Debit.StringFixed(2),
		Credit:      l.Credit.StringFixed(2),
		EcritureLet: l.Lettrage,
	}
	if l.LettrageDate != nil {
		row.DateLet = l.LettrageDate.Format(fecDateLayout)
	}
	if !l.CurrencyAmount.IsZero() {
		row.MontantDevise = l.CurrencyAmount.StringFixed(2)
		row.CodeDevise = l.CurrencyCode
	}
	return row
}
