package services

import (
	"context"

	"github.com/finacct/ledger_posting_app/internal/dto"
)

// AuditSvcFacade exposes the read side of the append-only audit log. Writes
// happen inside the repositories' mutating transactions and have no service
// surface of their own.
type AuditSvcFacade interface {
	// GetHistory returns all audit records for an entry in chronological order.
	GetHistory(ctx context.Context, entityID string, entryID string) ([]dto.AuditLogResponse, error)
}
