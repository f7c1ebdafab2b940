package domain

import "time"

// AuditAction identifies the kind of lifecycle transition an audit record
// describes.
type AuditAction string

const (
	ActionCreated       AuditAction = "CREATED"
	ActionUpdated       AuditAction = "UPDATED"
	ActionSubmitted     AuditAction = "SUBMITTED"
	ActionFirstApproved AuditAction = "FIRST_APPROVED"
	ActionFinalApproved AuditAction = "FINAL_APPROVED"
	ActionRejected      AuditAction = "REJECTED"
	ActionPosted        AuditAction = "POSTED"
	ActionBalanceChange AuditAction = "BALANCE_CHANGE"
	ActionAttemptFailed AuditAction = "ATTEMPT_FAILED"
)

// AuditLogEntry is one immutable record in the append-only journal-entry audit
// log. Records are keyed by an increasing sequence; no update path exists
// anywhere in the interface.
type AuditLogEntry struct {
	AuditID    int64       `json:"auditID"` // Increasing sequence (bigserial)
	EntryID    string      `json:"entryID"`
	EntityID   string      `json:"entityID"`
	Action     AuditAction `json:"action"`
	Actor      string      `json:"actor"`
	OccurredAt time.Time   `json:"occurredAt"`
	FromStatus EntryStatus `json:"fromStatus"`
	ToStatus   EntryStatus `json:"toStatus"`
	Detail     string      `json:"detail"` // Free text, e.g. affected account and amounts
}
