package models

import (
	"github.com/shopspring/decimal"
)

// JournalEntryLine is the database representation of a single entry line.
type JournalEntryLine struct {
	LineID       string          `db:"line_id"`
	EntryID      string          `db:"entry_id"`
	LineNumber   int             `db:"line_number"`
	AccountID    string          `db:"account_id"`
	DebitAmount  decimal.Decimal `db:"debit_amount"`
	CreditAmount decimal.Decimal `db:"credit_amount"`
	Description  string          `db:"description"`
	CostCenter   string          `db:"cost_center"` // Nullable
	Project      string          `db:"project"`     // Nullable
	AuditFields
}
