package domain

import (
	"github.com/shopspring/decimal"
)

// JournalEntryLine is a single debit or credit against one account within a
// journal entry. Exactly one of DebitAmount/CreditAmount is nonzero. Lines are
// immutable once their owning entry is posted.
type JournalEntryLine struct {
	LineID       string          `json:"lineID"`     // Primary Key (UUID)
	EntryID      string          `json:"entryID"`    // FK -> journal_entries.entry_id (Not Null)
	LineNumber   int             `json:"lineNumber"` // Defines display/audit order
	AccountID    string          `json:"accountID"`  // FK -> accounts.account_id (Not Null)
	DebitAmount  decimal.Decimal `json:"debitAmount"`
	CreditAmount decimal.Decimal `json:"creditAmount"`
	Description  string          `json:"description"` // Nullable
	CostCenter   string          `json:"costCenter"`  // Optional tag
	Project      string          `json:"project"`     // Optional tag
	AuditFields
}

// IsDebit reports whether the line carries its amount on the debit side.
func (l *JournalEntryLine) IsDebit() bool {
	return !l.DebitAmount.IsZero()
}

// Amount returns the nonzero side of the line.
func (l *JournalEntryLine) Amount() decimal.Decimal {
	if l.IsDebit() {
		return l.DebitAmount
	}
	return l.CreditAmount
}
