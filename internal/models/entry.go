package models

import (
	"time"
)

// JournalEntry is the database representation of a journal entry header.
type JournalEntry struct {
	EntryID          string     `db:"entry_id"`
	EntityID         string     `db:"entity_id"`
	EntryNumber      string     `db:"entry_number"`
	EntryDate        time.Time  `db:"entry_date"`
	FiscalYear       int        `db:"fiscal_year"`
	FiscalPeriod     int        `db:"fiscal_period"`
	EntryType        string     `db:"entry_type"`
	Memo             string     `db:"memo"`
	Reference        string     `db:"reference"`
	SourceDocumentID string     `db:"source_document_id"` // Nullable
	Status           string     `db:"status"`
	FirstApprovedBy  string     `db:"first_approved_by"` // Nullable
	FirstApprovedAt  *time.Time `db:"first_approved_at"`
	FinalApprovedBy  string     `db:"final_approved_by"` // Nullable
	FinalApprovedAt  *time.Time `db:"final_approved_at"`
	PostedBy         string     `db:"posted_by"` // Nullable
	PostedAt         *time.Time `db:"posted_at"`
	RejectionReason  string     `db:"rejection_reason"` // Nullable
	IsImmutable      bool       `db:"is_immutable"`
	AuditFields
}
