package repositories

import (
	"context"

	"github.com/finacct/ledger_posting_app/internal/core/domain"
	"github.com/jackc/pgx/v5"
)

// AuditAppender defines the append-only write side of the audit log. There is
// deliberately no update or delete operation anywhere in this interface.
type AuditAppender interface {
	// Record appends one audit row outside of any caller transaction. Used for
	// attempt-failed records, whose triggering transaction has rolled back.
	Record(ctx context.Context, record domain.AuditLogEntry) error

	// RecordInTx appends one audit row within the caller's transaction so the
	// record commits atomically with the state change it describes.
	RecordInTx(ctx context.Context, tx pgx.Tx, record domain.AuditLogEntry) error
}

// AuditReader defines read operations for audit history.
type AuditReader interface {
	// ListByEntryID returns all audit rows for an entry in chronological order.
	ListByEntryID(ctx context.Context, entryID string) ([]domain.AuditLogEntry, error)
}

// AuditRepositoryFacade combines the audit repository interfaces.
type AuditRepositoryFacade interface {
	AuditAppender
	AuditReader
}
