package domain

import (
	"github.com/shopspring/decimal"
)

// AccountType defines the fundamental accounting type of an account.
type AccountType string

const (
	Asset     AccountType = "ASSET"
	Liability AccountType = "LIABILITY"
	Equity    AccountType = "EQUITY"
	Revenue   AccountType = "REVENUE"
	Expense   AccountType = "EXPENSE"
)

// NormalBalance indicates whether an account's natural increase is recorded
// on the debit or the credit side.
type NormalBalance string

const (
	DebitNormal  NormalBalance = "DEBIT"
	CreditNormal NormalBalance = "CREDIT"
)

// NormalBalanceFor derives the normal-balance polarity from the account type.
// Asset and Expense accounts increase with debits; Liability, Equity and
// Revenue accounts increase with credits.
func NormalBalanceFor(t AccountType) NormalBalance {
	switch t {
	case Asset, Expense:
		return DebitNormal
	default:
		return CreditNormal
	}
}

// ValidAccountType reports whether t is one of the five account types.
func ValidAccountType(t AccountType) bool {
	switch t {
	case Asset, Liability, Equity, Revenue, Expense:
		return true
	}
	return false
}

// Account represents a general-ledger account within the core domain.
// This is the primary representation used by services.
type Account struct {
	AccountID       string          `json:"accountID"`       // Primary Key (UUID)
	EntityID        string          `json:"entityID"`        // Owning business entity (partition key, NON-NULL)
	Code            string          `json:"code"`            // Numeric chart-of-accounts code, unique per entity
	Name            string          `json:"name"`            // Display name
	AccountType     AccountType     `json:"accountType"`     // ASSET, LIABILITY, etc.
	NormalBalance   NormalBalance   `json:"normalBalance"`   // Derived from AccountType at creation
	ParentAccountID string          `json:"parentAccountID"` // Nullable FK -> accounts.account_id (self-referencing tree)
	AllowPosting    bool            `json:"allowPosting"`    // Aggregator accounts forbid direct posting
	Description     string          `json:"description"`     // Nullable user description
	IsActive        bool            `json:"isActive"`        // Accounts are deactivated, never deleted
	CurrentBalance  decimal.Decimal `json:"currentBalance"`  // Running balance, mutated only by the posting engine
	YTDActivity     decimal.Decimal `json:"ytdActivity"`     // Year-to-date activity magnitude
	AuditFields
}
