package dto

import (
	"time"

	"github.com/finacct/ledger_posting_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreateEntryLineRequest defines one debit/credit line of a proposed entry.
// Exactly one of debitAmount/creditAmount must be nonzero; this is validated
// by the service, not by binding, so the error can cite the offending line.
type CreateEntryLineRequest struct {
	AccountID    string          `json:"accountID" binding:"required"`
	DebitAmount  decimal.Decimal `json:"debitAmount"`
	CreditAmount decimal.Decimal `json:"creditAmount"`
	Description  string          `json:"description"`
	CostCenter   string          `json:"costCenter"`
	Project      string          `json:"project"`
}

// CreateEntryRequest defines the data needed to create a journal entry.
type CreateEntryRequest struct {
	EntryDate        time.Time                `json:"entryDate" binding:"required"`
	FiscalYear       int                      `json:"fiscalYear" binding:"required"`
	FiscalPeriod     int                      `json:"fiscalPeriod" binding:"required,min=1,max=13"`
	EntryType        string                   `json:"entryType"`
	Memo             string                   `json:"memo"`
	Reference        string                   `json:"reference"`
	SourceDocumentID string                   `json:"sourceDocumentID"`
	Lines            []CreateEntryLineRequest `json:"lines" binding:"required"`
}

// UpdateEntryLinesRequest replaces a draft entry's lines wholesale.
type UpdateEntryLinesRequest struct {
	Memo  *string                  `json:"memo"`
	Lines []CreateEntryLineRequest `json:"lines" binding:"required"`
}

// RejectEntryRequest carries the mandatory rejection reason.
type RejectEntryRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// ListEntriesParams holds filter and pagination parameters for listing entries.
type ListEntriesParams struct {
	Status    *domain.EntryStatus
	DateFrom  *time.Time
	DateTo    *time.Time
	Limit     int
	NextToken *string
}

// EntryLineResponse defines the data returned for one entry line.
type EntryLineResponse struct {
	LineID       string          `json:"lineID"`
	LineNumber   int             `json:"lineNumber"`
	AccountID    string          `json:"accountID"`
	DebitAmount  decimal.Decimal `json:"debitAmount"`
	CreditAmount decimal.Decimal `json:"creditAmount"`
	Description  string          `json:"description"`
	CostCenter   string          `json:"costCenter,omitempty"`
	Project      string          `json:"project,omitempty"`
}

// EntrySnapshot is the full read model of an entry: header, lines, computed
// totals and the balanced flag.
type EntrySnapshot struct {
	EntryID          string              `json:"entryID"`
	EntityID         string              `json:"entityID"`
	EntryNumber      string              `json:"entryNumber"`
	EntryDate        time.Time           `json:"entryDate"`
	FiscalYear       int                 `json:"fiscalYear"`
	FiscalPeriod     int                 `json:"fiscalPeriod"`
	EntryType        string              `json:"entryType"`
	Memo             string              `json:"memo"`
	Reference        string              `json:"reference"`
	SourceDocumentID string              `json:"sourceDocumentID,omitempty"`
	Status           domain.EntryStatus  `json:"status"`
	Stage            int                 `json:"stage"`
	IsImmutable      bool                `json:"isImmutable"`
	Lines            []EntryLineResponse `json:"lines"`
	TotalDebits      decimal.Decimal     `json:"totalDebits"`
	TotalCredits     decimal.Decimal     `json:"totalCredits"`
	IsBalanced       bool                `json:"isBalanced"`
	CreatedAt        time.Time           `json:"createdAt"`
	CreatedBy        string              `json:"createdBy"`
}

// ListEntriesResponse wraps a page of entry snapshots with the next cursor.
type ListEntriesResponse struct {
	Entries   []EntrySnapshot `json:"entries"`
	NextToken *string         `json:"nextToken,omitempty"`
}

// WorkflowStatusResponse reports where an entry sits in the approval workflow.
type WorkflowStatusResponse struct {
	EntryID         string             `json:"entryID"`
	Status          domain.EntryStatus `json:"status"`
	Stage           int                `json:"stage"`
	CreatedBy       string             `json:"createdBy"`
	FirstApprovedBy string             `json:"firstApprovedBy,omitempty"`
	FirstApprovedAt *time.Time         `json:"firstApprovedAt,omitempty"`
	FinalApprovedBy string             `json:"finalApprovedBy,omitempty"`
	FinalApprovedAt *time.Time         `json:"finalApprovedAt,omitempty"`
	PostedBy        string             `json:"postedBy,omitempty"`
	PostedAt        *time.Time         `json:"postedAt,omitempty"`
	RejectionReason string             `json:"rejectionReason,omitempty"`
}

// TransitionResponse is the minimal result of a workflow transition call.
type TransitionResponse struct {
	EntryID string             `json:"entryID"`
	Status  domain.EntryStatus `json:"status"`
	Stage   int                `json:"stage"`
}

// AuditLogResponse defines the data returned for one audit record.
type AuditLogResponse struct {
	AuditID    int64              `json:"auditID"`
	EntryID    string             `json:"entryID"`
	Action     domain.AuditAction `json:"action"`
	Actor      string             `json:"actor"`
	OccurredAt time.Time          `json:"occurredAt"`
	FromStatus domain.EntryStatus `json:"fromStatus"`
	ToStatus   domain.EntryStatus `json:"toStatus"`
	Detail     string             `json:"detail,omitempty"`
}

// ToEntryLineResponse converts a domain line to its response DTO.
func ToEntryLineResponse(line *domain.JournalEntryLine) EntryLineResponse {
	return EntryLineResponse{
		LineID:       line.LineID,
		LineNumber:   line.LineNumber,
		AccountID:    line.AccountID,
		DebitAmount:  line.DebitAmount,
		CreditAmount: line.CreditAmount,
		Description:  line.Description,
		CostCenter:   line.CostCenter,
		Project:      line.Project,
	}
}

// ToEntrySnapshot converts a domain entry (with lines populated) to the full
// snapshot read model.
func ToEntrySnapshot(entry *domain.JournalEntry) EntrySnapshot {
	lines := make([]EntryLineResponse, len(entry.Lines))
	for i := range entry.Lines {
		lines[i] = ToEntryLineResponse(&entry.Lines[i])
	}
	return EntrySnapshot{
		EntryID:          entry.EntryID,
		EntityID:         entry.EntityID,
		EntryNumber:      entry.EntryNumber,
		EntryDate:        entry.EntryDate,
		FiscalYear:       entry.FiscalYear,
		FiscalPeriod:     entry.FiscalPeriod,
		EntryType:        entry.EntryType,
		Memo:             entry.Memo,
		Reference:        entry.Reference,
		SourceDocumentID: entry.SourceDocumentID,
		Status:           entry.Status,
		Stage:            entry.Status.Stage(),
		IsImmutable:      entry.IsImmutable,
		Lines:            lines,
		TotalDebits:      entry.TotalDebits(),
		TotalCredits:     entry.TotalCredits(),
		IsBalanced:       entry.IsBalanced(),
		CreatedAt:        entry.CreatedAt,
		CreatedBy:        entry.CreatedBy,
	}
}

// ToWorkflowStatusResponse converts a domain entry to the workflow read model.
func ToWorkflowStatusResponse(entry *domain.JournalEntry) WorkflowStatusResponse {
	return WorkflowStatusResponse{
		EntryID:         entry.EntryID,
		Status:          entry.Status,
		Stage:           entry.Status.Stage(),
		CreatedBy:       entry.CreatedBy,
		FirstApprovedBy: entry.FirstApprovedBy,
		FirstApprovedAt: entry.FirstApprovedAt,
		FinalApprovedBy: entry.FinalApprovedBy,
		FinalApprovedAt: entry.FinalApprovedAt,
		PostedBy:        entry.PostedBy,
		PostedAt:        entry.PostedAt,
		RejectionReason: entry.RejectionReason,
	}
}

// ToAuditLogResponses converts domain audit rows to response DTOs.
func ToAuditLogResponses(records []domain.AuditLogEntry) []AuditLogResponse {
	responses := make([]AuditLogResponse, len(records))
	for i, rec := range records {
		responses[i] = AuditLogResponse{
			AuditID:    rec.AuditID,
			EntryID:    rec.EntryID,
			Action:     rec.Action,
			Actor:      rec.Actor,
			OccurredAt: rec.OccurredAt,
			FromStatus: rec.FromStatus,
			ToStatus:   rec.ToStatus,
			Detail:     rec.Detail,
		}
	}
	return responses
}
