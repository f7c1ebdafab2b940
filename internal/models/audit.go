package models

import "time"

// AuditLogEntry is the database representation of one append-only audit row.
type AuditLogEntry struct {
	AuditID    int64     `db:"audit_id"`
	EntryID    string    `db:"entry_id"`
	EntityID   string    `db:"entity_id"`
	Action     string    `db:"action"`
	Actor      string    `db:"actor"`
	OccurredAt time.Time `db:"occurred_at"`
	FromStatus string    `db:"from_status"`
	ToStatus   string    `db:"to_status"`
	Detail     string    `db:"detail"`
}
