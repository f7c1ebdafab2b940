package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// EntryStatus is the lifecycle state of a journal entry. Status and workflow
// stage are a single enumeration: the stage ordinal is derived from the status
// so the two can never drift apart.
type EntryStatus string

const (
	StatusDraft                EntryStatus = "DRAFT"
	StatusPendingFirstApproval EntryStatus = "PENDING_FIRST_APPROVAL"
	StatusPendingFinalApproval EntryStatus = "PENDING_FINAL_APPROVAL"
	StatusApproved             EntryStatus = "APPROVED"
	StatusPosted               EntryStatus = "POSTED"
)

var statusStages = map[EntryStatus]int{
	StatusDraft:                0,
	StatusPendingFirstApproval: 1,
	StatusPendingFinalApproval: 2,
	StatusApproved:             3,
	StatusPosted:               4,
}

// Stage returns the workflow stage ordinal for the status, or -1 for an
// unknown status.
func (s EntryStatus) Stage() int {
	stage, ok := statusStages[s]
	if !ok {
		return -1
	}
	return stage
}

// Valid reports whether s is a known lifecycle status.
func (s EntryStatus) Valid() bool {
	_, ok := statusStages[s]
	return ok
}

// CanTransitionTo reports whether the forward edge s -> next exists in the
// workflow. Forward movement is monotonic with no skipping; the only reverse
// edge is rejection back to draft from either pending state.
func (s EntryStatus) CanTransitionTo(next EntryStatus) bool {
	if next == StatusDraft {
		return s == StatusPendingFirstApproval || s == StatusPendingFinalApproval
	}
	return next.Stage() == s.Stage()+1
}

// JournalEntry represents a proposed or posted set of balanced debit/credit
// lines against the general ledger.
type JournalEntry struct {
	EntryID          string      `json:"entryID"`     // Primary Key (UUID)
	EntityID         string      `json:"entityID"`    // Owning business entity (partition key)
	EntryNumber      string      `json:"entryNumber"` // Human-meaningful, e.g. "JE-2026-000042"; unique per entity and prefix
	EntryDate        time.Time   `json:"entryDate"`
	FiscalYear       int         `json:"fiscalYear"`
	FiscalPeriod     int         `json:"fiscalPeriod"`
	EntryType        string      `json:"entryType"` // Free-form classification (standard, adjusting, closing, ...)
	Memo             string      `json:"memo"`
	Reference        string      `json:"reference"`
	SourceDocumentID string      `json:"sourceDocumentID"` // Opaque provenance link owned by the document subsystem
	Status           EntryStatus `json:"status"`

	FirstApprovedBy string     `json:"firstApprovedBy,omitempty"`
	FirstApprovedAt *time.Time `json:"firstApprovedAt,omitempty"`
	FinalApprovedBy string     `json:"finalApprovedBy,omitempty"`
	FinalApprovedAt *time.Time `json:"finalApprovedAt,omitempty"`
	PostedBy        string     `json:"postedBy,omitempty"`
	PostedAt        *time.Time `json:"postedAt,omitempty"`
	RejectionReason string     `json:"rejectionReason,omitempty"`
	IsImmutable     bool       `json:"isImmutable"` // Set true exactly once, on posting

	Lines []JournalEntryLine `json:"lines,omitempty"` // Often loaded separately
	AuditFields
}

// TotalDebits sums the debit side of the entry's lines.
func (e *JournalEntry) TotalDebits() decimal.Decimal {
	total := decimal.Zero
	for _, line := range e.Lines {
		total = total.Add(line.DebitAmount)
	}
	return total
}

// TotalCredits sums the credit side of the entry's lines.
func (e *JournalEntry) TotalCredits() decimal.Decimal {
	total := decimal.Zero
	for _, line := range e.Lines {
		total = total.Add(line.CreditAmount)
	}
	return total
}

// IsBalanced reports whether total debits equal total credits to the cent.
func (e *JournalEntry) IsBalanced() bool {
	return e.TotalDebits().Equal(e.TotalCredits())
}

// FormatEntryNumber renders the canonical entry number for a prefix, fiscal
// year and allocated sequence value.
func FormatEntryNumber(prefix string, fiscalYear int, sequence int64) string {
	return fmt.Sprintf("%s-%d-%06d", prefix, fiscalYear, sequence)
}
