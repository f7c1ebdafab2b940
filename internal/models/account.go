package models

import (
	"github.com/shopspring/decimal"
)

// Account is the database representation of a general-ledger account.
// Note: ParentAccountID uses string for the nullable foreign key; repositories
// scan it through sql.NullString.
type Account struct {
	AccountID       string          `db:"account_id"`
	EntityID        string          `db:"entity_id"`
	Code            string          `db:"code"`
	Name            string          `db:"name"`
	AccountType     string          `db:"account_type"`
	NormalBalance   string          `db:"normal_balance"`
	ParentAccountID string          `db:"parent_account_id"` // Nullable
	AllowPosting    bool            `db:"allow_posting"`
	Description     string          `db:"description"`
	IsActive        bool            `db:"is_active"`
	CurrentBalance  decimal.Decimal `db:"current_balance"`
	YTDActivity     decimal.Decimal `db:"ytd_activity"`
	AuditFields
}
