package accounting

import (
	"fmt"

	"github.com/finacct/ledger_posting_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// BalanceDelta computes the signed change a line applies to an account's
// running balance, based on the account's normal-balance polarity.
// This is used in both services and repositories to keep the posting
// arithmetic in one place.
// Debit-normal accounts:  current_balance += debit - credit
// Credit-normal accounts: current_balance += credit - debit
func BalanceDelta(line domain.JournalEntryLine, normal domain.NormalBalance) (decimal.Decimal, error) {
	switch normal {
	case domain.DebitNormal:
		return line.DebitAmount.Sub(line.CreditAmount), nil
	case domain.CreditNormal:
		return line.CreditAmount.Sub(line.DebitAmount), nil
	default:
		return decimal.Zero, fmt.Errorf("unknown normal balance '%s' for account ID %s", normal, line.AccountID)
	}
}

// ActivityMagnitude computes the year-to-date activity contribution of a line:
// ytd_activity += |debit| + |credit|.
func ActivityMagnitude(line domain.JournalEntryLine) decimal.Decimal {
	return line.DebitAmount.Abs().Add(line.CreditAmount.Abs())
}

// ValidateLineAmounts checks the structural rules for a single line: amounts
// must be non-negative, carry at most two decimal places, and exactly one of
// debit/credit must be nonzero.
func ValidateLineAmounts(line domain.JournalEntryLine) error {
	if line.DebitAmount.IsNegative() || line.CreditAmount.IsNegative() {
		return fmt.Errorf("line %d: amounts must not be negative", line.LineNumber)
	}
	if !line.DebitAmount.Equal(line.DebitAmount.Round(2)) || !line.CreditAmount.Equal(line.CreditAmount.Round(2)) {
		return fmt.Errorf("line %d: amounts must have at most two decimal places", line.LineNumber)
	}
	debitSet := !line.DebitAmount.IsZero()
	creditSet := !line.CreditAmount.IsZero()
	if debitSet == creditSet {
		if debitSet {
			return fmt.Errorf("line %d: debit and credit cannot both be set", line.LineNumber)
		}
		return fmt.Errorf("line %d: either debit or credit must be nonzero", line.LineNumber)
	}
	return nil
}

// ValidateEntryBalance checks that an entry's lines balance to the cent and
// returns the imbalance in the error detail when they do not.
func ValidateEntryBalance(lines []domain.JournalEntryLine) error {
	debits := decimal.Zero
	credits := decimal.Zero
	for _, line := range lines {
		debits = debits.Add(line.DebitAmount)
		credits = credits.Add(line.CreditAmount)
	}
	if !debits.Equal(credits) {
		return fmt.Errorf("debits (%s) do not equal credits (%s), imbalance of %s",
			debits.StringFixed(2), credits.StringFixed(2), debits.Sub(credits).Abs().StringFixed(2))
	}
	return nil
}
