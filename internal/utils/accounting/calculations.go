package accounting

import (
	"fmt"

	"github.com/OpenGescom/compta_ledger/internal/core/domain"
	"github.com/shopspring/decimal"
)

// ValidateLineAmounts checks the single-sided amount rule for an entry line:
// exactly one of debit/credit is strictly positive, neither is negative.
func ValidateLineAmounts(debit, credit decimal.Decimal) error {
	if debit.IsNegative() || credit.IsNegative() {
		return fmt.Errorf("amounts must not be negative (debit=%s credit=%s)", debit.String(), credit.String())
	}
	if debit.IsPositive() && credit.IsPositive() {
		return fmt.Errorf("debit and credit are mutually exclusive (debit=%s credit=%s)", debit.String(), credit.String())
	}
	if debit.IsZero() && credit.IsZero() {
		return fmt.Errorf("one of debit or credit must be positive")
	}
	return nil
}

// Net returns sum(debit) - sum(credit) over a set of lines. A reconciled
// (lettrage) set is well-formed when its net is exactly zero.
func Net(lines []domain.EntryLine) decimal.Decimal {
	net := decimal.Zero
	for i := range lines {
		net = net.Add(lines[i].Debit).Sub(lines[i].Credit)
	}
	return net
}

// SignedBalance returns debit-credit signed by account nature: debit-positive
// for ASSET/EXPENSE, credit-positive for LIABILITY/REVENUE.
func SignedBalance(nature domain.AccountNature, totalDebit, totalCredit decimal.Decimal) decimal.Decimal {
	switch nature {
	case domain.Liability, domain.Revenue:
		return totalCredit.Sub(totalDebit)
	default:
		return totalDebit.Sub(totalCredit)
	}
}
